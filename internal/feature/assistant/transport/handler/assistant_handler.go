// Package handler はassistantフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/rs/zerolog/log"

	"evolve_backend/internal/api"
	"evolve_backend/internal/feature/user/domain"
)

// AssistantUsecase はAIチャットのユースケースを定義します。
type AssistantUsecase interface {
	Chat(ctx context.Context, prompt string) (string, error)
}

// AssistantHandler はAIチャットのHTTPリクエストを処理します。
// 使用量ゲートの後ろに配置されるため、ボディはShouldBindBodyWithで読み直します。
type AssistantHandler struct {
	uc AssistantUsecase
}

// NewAssistantHandler はAssistantHandlerの新しいインスタンスを生成します。
func NewAssistantHandler(uc AssistantUsecase) *AssistantHandler {
	return &AssistantHandler{uc: uc}
}

// Chat はプロンプトに対するAIの応答を返します。
// - 入力不備は400、外部APIの失敗は502を返却
func (h *AssistantHandler) Chat(c *gin.Context) {
	var req api.ChatRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, api.MessageResponse{Message: "prompt is required"})
		return
	}

	reply, err := h.uc.Chat(c.Request.Context(), req.Prompt)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			c.JSON(http.StatusBadRequest, api.MessageResponse{Message: "invalid prompt"})
		case errors.Is(err, domain.ErrUpstreamUnavailable):
			log.Error().Err(err).Str("clerk_id", req.ClerkId).Msg("assistant upstream failed")
			c.JSON(http.StatusBadGateway, api.MessageResponse{Message: "assistant is temporarily unavailable"})
		default:
			log.Error().Err(err).Str("clerk_id", req.ClerkId).Msg("assistant chat failed")
			c.JSON(http.StatusInternalServerError, api.MessageResponse{Message: "internal server error"})
		}
		return
	}
	c.JSON(http.StatusOK, api.ChatResponse{Reply: reply})
}
