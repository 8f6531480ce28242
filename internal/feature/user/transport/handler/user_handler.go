// Package handler はuserフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"evolve_backend/internal/api"
	"evolve_backend/internal/feature/user/domain"
	"evolve_backend/internal/feature/user/domain/entity"
	"evolve_backend/internal/feature/user/usecase"
	jwtmw "evolve_backend/internal/platform/jwt"
)

// UserUsecase はアカウント同期とプロフィール参照のユースケースを定義します。
type UserUsecase interface {
	Sync(ctx context.Context, p usecase.Profile) (*entity.User, bool, error)
	Get(ctx context.Context, clerkID string) (*entity.User, error)
}

// UserHandler はユーザー情報に関するHTTPリクエストを処理します。
type UserHandler struct {
	uc UserUsecase
}

// NewUserHandler はUserHandlerの新しいインスタンスを生成します。
func NewUserHandler(uc UserUsecase) *UserHandler {
	return &UserHandler{uc: uc}
}

// Sync はログイン直後にフロントエンドから呼ばれ、ユーザーを作成または更新します。
// - 新規作成時は201、既存ユーザーの場合は200を返却
// - 入力不備は400を返却
func (h *UserHandler) Sync(c *gin.Context) {
	var req api.SyncUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Str("remote_addr", c.ClientIP()).Msg("user sync validation failed")
		c.JSON(http.StatusBadRequest, api.MessageResponse{Message: "invalid request"})
		return
	}
	if !jwtmw.AuthorizeClerkID(c, req.ClerkId) {
		return
	}

	user, created, err := h.uc.Sync(c.Request.Context(), usecase.Profile{
		ClerkID:   req.ClerkId,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Photo:     req.Photo,
	})
	if err != nil {
		writeError(c, err, "user sync failed")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
		log.Info().Str("clerk_id", user.ClerkID).Msg("user created")
	}
	c.JSON(status, api.NewUser(user))
}

// Get はユーザーのプロフィール・プラン・メトリクスを返します。
func (h *UserHandler) Get(c *gin.Context, clerkID string) {
	if !jwtmw.AuthorizeClerkID(c, clerkID) {
		return
	}

	user, err := h.uc.Get(c.Request.Context(), clerkID)
	if err != nil {
		writeError(c, err, "get user failed")
		return
	}
	c.JSON(http.StatusOK, api.NewUser(user))
}

// writeError はドメインエラーをHTTPステータスに変換します。詳細はログにのみ出力します。
func writeError(c *gin.Context, err error, msg string) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, api.MessageResponse{Message: domain.ErrUserNotFound.Error()})
	case errors.Is(err, domain.ErrValidation):
		log.Warn().Err(err).Msg(msg)
		c.JSON(http.StatusBadRequest, api.MessageResponse{Message: "invalid request"})
	default:
		log.Error().Err(err).Msg(msg)
		c.JSON(http.StatusInternalServerError, api.MessageResponse{Message: "internal server error"})
	}
}
