// Package middleware はAI機能のハンドラーを使用量ゲートで保護します。
package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/rs/zerolog/log"

	"evolve_backend/internal/api"
	"evolve_backend/internal/feature/usage/transport/handler"
	"evolve_backend/internal/feature/usage/usecase"
	"evolve_backend/internal/feature/user/domain/entity"
	jwtmw "evolve_backend/internal/platform/jwt"
)

// ContextReservation は確保した予約を保持するGinコンテキストのキーです。
const ContextReservation = "usageReservation"

// Reserver は予約と取り消しを行うユースケースです。
type Reserver interface {
	Reserve(ctx context.Context, clerkID string, metric entity.Metric) (usecase.Reservation, error)
	Release(ctx context.Context, r usecase.Reservation) error
}

// Gate はゲート付きハンドラーの前後で利用枠の確保と取り消しを行います。
type Gate struct {
	uc Reserver
}

// NewGate はGateの新しいインスタンスを生成します。
func NewGate(uc Reserver) *Gate {
	return &Gate{uc: uc}
}

// Run は1回分の利用枠を確保してからactionを実行します。
// 上限到達やユーザー不明の場合はactionを実行せずに中断します。
// actionが2xx以外を返した場合やpanicした場合は確保した枠を取り消し、保存された使用量を元に戻します。
// ボディのclerkIdはShouldBindBodyWithで読むため、actionも同じ方法でバインドしてください。
func (g *Gate) Run(c *gin.Context, metric entity.Metric, action gin.HandlerFunc) {
	clerkID, ok := resolveClerkID(c)
	if !ok {
		return
	}

	r, err := g.uc.Reserve(c.Request.Context(), clerkID, metric)
	if err != nil {
		handler.WriteError(c, err)
		return
	}
	c.Set(ContextReservation, r)

	completed := false
	defer func() {
		if completed && c.Writer.Status() < http.StatusMultipleChoices {
			return
		}
		g.release(c, r)
	}()

	action(c)
	completed = true
}

func (g *Gate) release(c *gin.Context, r usecase.Reservation) {
	ctx := context.WithoutCancel(c.Request.Context())
	if err := g.uc.Release(ctx, r); err != nil {
		log.Error().Err(err).Str("clerk_id", r.ClerkID).Msg("failed to release usage reservation")
		return
	}
	log.Debug().Str("clerk_id", r.ClerkID).Str("metric", string(r.Metric)).Int("status", c.Writer.Status()).Msg("usage reservation released")
}

// resolveClerkID はリクエストのclerkIdを決定します。
// ボディにclerkIdがあればトークンの本人と一致することを確認し、無ければトークンのsubを使います。
func resolveClerkID(c *gin.Context) (string, bool) {
	var req struct {
		ClerkID string `json:"clerkId"`
	}
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, api.MessageResponse{Message: "invalid request"})
			return "", false
		}
	}

	if req.ClerkID != "" {
		return req.ClerkID, jwtmw.AuthorizeClerkID(c, req.ClerkID)
	}
	if sub, ok := c.Get(jwtmw.ContextClerkID); ok {
		if s, _ := sub.(string); s != "" {
			return s, true
		}
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, api.MessageResponse{Message: "clerkId is required"})
	return "", false
}
