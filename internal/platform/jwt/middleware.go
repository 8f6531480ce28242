package jwtmw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"evolve_backend/internal/api"
)

// ContextClerkID は検証済みトークンのsubを保持するGinコンテキストのキーです。
const ContextClerkID = "clerkID"

// AuthRequired はBearerトークンを検証し、認証済みのリクエストだけを通すGinミドルウェアを返します。
// verifierがnilの場合は認証が無効化されており、すべてのリクエストを通します。
func AuthRequired(v *Verifier) gin.HandlerFunc {
	if v == nil {
		log.Warn().Msg("CLERK_JWT_KEY is not set: authentication is disabled")
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.MessageResponse{Message: "missing bearer token"})
			return
		}

		sub, err := v.Subject(strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			log.Debug().Err(err).Str("path", c.FullPath()).Msg("rejected session token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, api.MessageResponse{Message: "invalid token"})
			return
		}

		c.Set(ContextClerkID, sub)
		c.Next()
	}
}

// AuthorizeClerkID はリクエストで指定されたClerk IDがトークンの本人と一致するかを確認します。
// 一致しない場合は403を返して処理を中断し、falseを返します。認証が無効な場合は常にtrueです。
func AuthorizeClerkID(c *gin.Context, clerkID string) bool {
	sub, ok := c.Get(ContextClerkID)
	if !ok {
		return true
	}
	if s, _ := sub.(string); s != clerkID {
		c.AbortWithStatusJSON(http.StatusForbidden, api.MessageResponse{Message: "forbidden"})
		return false
	}
	return true
}
