// Package handler はsubscriptionフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"evolve_backend/internal/api"
	"evolve_backend/internal/feature/subscription/usecase"
	"evolve_backend/internal/feature/user/domain"
	"evolve_backend/internal/feature/user/domain/entity"
	jwtmw "evolve_backend/internal/platform/jwt"
)

// SubscriptionUsecase はプラン変更と参照のユースケースを定義します。
type SubscriptionUsecase interface {
	Update(ctx context.Context, in usecase.UpdateInput) (*entity.User, error)
	Status(ctx context.Context, clerkID string) (entity.Plan, *entity.SubscriptionDetails, error)
}

// SubscriptionHandler はサブスクリプションに関するHTTPリクエストを処理します。
type SubscriptionHandler struct {
	uc SubscriptionUsecase
}

// NewSubscriptionHandler はSubscriptionHandlerの新しいインスタンスを生成します。
func NewSubscriptionHandler(uc SubscriptionUsecase) *SubscriptionHandler {
	return &SubscriptionHandler{uc: uc}
}

// Update は決済完了後のプラン変更を受け付けます。
// - 不正なプラン名や日付は400、ユーザー不明は404を返却
// - 成功時は更新後のユーザーを200で返却
func (h *SubscriptionHandler) Update(c *gin.Context) {
	var req api.UpdateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Str("remote_addr", c.ClientIP()).Msg("subscription update validation failed")
		c.JSON(http.StatusBadRequest, api.MessageResponse{Message: "invalid request"})
		return
	}
	if !jwtmw.AuthorizeClerkID(c, req.ClerkId) {
		return
	}

	user, err := h.uc.Update(c.Request.Context(), usecase.UpdateInput{
		ClerkID:         req.ClerkId,
		Plan:            req.SubscriptionPlan,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		PaymentID:       req.PaymentId,
		PriceAtPurchase: req.PriceAtPurchase,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.SubscriptionUpdateResponse{
		Message: "Subscription updated successfully",
		User:    api.NewUser(user),
	})
}

// Status は現在のプランと契約情報を返します。
func (h *SubscriptionHandler) Status(c *gin.Context, clerkID string) {
	if !jwtmw.AuthorizeClerkID(c, clerkID) {
		return
	}

	plan, details, err := h.uc.Status(c.Request.Context(), clerkID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, api.SubscriptionStatusResponse{
		SubscriptionPlan:    string(plan),
		SubscriptionDetails: api.NewSubscriptionDetails(details),
	})
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		c.JSON(http.StatusNotFound, api.MessageResponse{Message: domain.ErrUserNotFound.Error()})
	case errors.Is(err, domain.ErrInvalidPlan):
		c.JSON(http.StatusBadRequest, api.MessageResponse{Message: "Invalid subscription plan. Must be one of Free, Starter or Pro."})
	case errors.Is(err, domain.ErrValidation):
		log.Warn().Err(err).Msg("subscription update rejected")
		c.JSON(http.StatusBadRequest, api.MessageResponse{Message: "invalid request"})
	default:
		log.Error().Err(err).Msg("subscription request failed")
		c.JSON(http.StatusInternalServerError, api.MessageResponse{Message: "internal server error"})
	}
}
