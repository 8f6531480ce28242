// Package handler はusageフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"evolve_backend/internal/api"
	usagedomain "evolve_backend/internal/feature/usage/domain"
	"evolve_backend/internal/feature/usage/usecase"
	"evolve_backend/internal/feature/user/domain"
	jwtmw "evolve_backend/internal/platform/jwt"
)

// UsageUsecase は使用量の記録と参照のユースケースを定義します。
type UsageUsecase interface {
	Track(ctx context.Context, clerkID string) (usecase.Status, error)
	Status(ctx context.Context, clerkID string) (usecase.Status, error)
}

// UsageHandler は使用量に関するHTTPリクエストを処理します。
type UsageHandler struct {
	uc UsageUsecase
}

// NewUsageHandler はUsageHandlerの新しいインスタンスを生成します。
func NewUsageHandler(uc UsageUsecase) *UsageHandler {
	return &UsageHandler{uc: uc}
}

// Track はAI機能の実行前に呼ばれ、判定と記録をまとめて行います。
// - 成功時は200、ユーザー不明は404、上限到達は429を返却
func (h *UsageHandler) Track(c *gin.Context) {
	var req api.ClerkIDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.MessageResponse{Message: "clerkId is required"})
		return
	}
	if !jwtmw.AuthorizeClerkID(c, req.ClerkId) {
		return
	}

	if _, err := h.uc.Track(c.Request.Context(), req.ClerkId); err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Usage tracked successfully"})
}

// Status は当日の利用回数と残り回数を返します。有料プランの残り回数は"unlimited"です。
func (h *UsageHandler) Status(c *gin.Context, clerkID string) {
	if !jwtmw.AuthorizeClerkID(c, clerkID) {
		return
	}

	st, err := h.uc.Status(c.Request.Context(), clerkID)
	if err != nil {
		WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewStatusResponse(st))
}

// NewStatusResponse はStatusをレスポンスに変換します。
func NewStatusResponse(st usecase.Status) api.UsageStatusResponse {
	out := api.UsageStatusResponse{SubscriptionPlan: string(st.Plan), TodayCount: st.TodayCount, RemainingCount: st.Remaining}
	if st.Unlimited {
		out.RemainingCount = api.Unlimited
	}
	return out
}

// WriteError はゲートのエラーをHTTPステータスに変換します。詳細はログにのみ出力します。
func WriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, api.MessageResponse{Message: domain.ErrUserNotFound.Error()})
	case errors.Is(err, usagedomain.ErrQuotaExceeded):
		c.AbortWithStatusJSON(http.StatusTooManyRequests, api.MessageResponse{Message: usagedomain.QuotaExceededMessage})
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("usage gate failed")
		c.AbortWithStatusJSON(http.StatusInternalServerError, api.MessageResponse{Message: "internal server error"})
	}
}
