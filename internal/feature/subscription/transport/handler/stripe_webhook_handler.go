package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	stripelib "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"evolve_backend/internal/api"
	"evolve_backend/internal/feature/subscription/usecase"
	"evolve_backend/internal/feature/user/domain"
	"evolve_backend/internal/feature/user/domain/entity"
	"evolve_backend/internal/platform/metrics"
)

// webhookBodyLimit はWebhookのボディの上限サイズです。
const webhookBodyLimit = 1 << 20

// Checkoutのメタデータに設定するキーです。
const (
	MetadataClerkID = "clerkId"
	MetadataPlan    = "subscriptionPlan"
)

// Webhookの処理結果です。
const (
	outcomeApplied  = "applied"
	outcomeIgnored  = "ignored"
	outcomeRejected = "rejected"
	outcomeFailed   = "failed"
)

// errNotApplicable は再送しても結果が変わらないイベントです。200を返してStripeの再送を止めます。
var errNotApplicable = errors.New("event not applicable")

// StripeWebhookHandler はStripeの決済イベントを受け取り、プランを更新します。
type StripeWebhookHandler struct {
	uc     SubscriptionUsecase
	secret string
}

// NewStripeWebhookHandler はStripeWebhookHandlerの新しいインスタンスを生成します。
func NewStripeWebhookHandler(uc SubscriptionUsecase, secret string) *StripeWebhookHandler {
	return &StripeWebhookHandler{uc: uc, secret: secret}
}

// Handle は署名を検証してイベントを処理します。
// - checkout.session.completed はメタデータのプランに変更（支払いIDと金額を記録）
// - customer.subscription.deleted はFreeプランに戻す
// - 署名不正は400、処理失敗は500（Stripeが再送）、それ以外は200を返却
func (h *StripeWebhookHandler) Handle(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, webhookBodyLimit))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.MessageResponse{Message: "failed to read request body"})
		return
	}

	sig := c.GetHeader("Stripe-Signature")
	if strings.TrimSpace(sig) == "" {
		c.JSON(http.StatusBadRequest, api.MessageResponse{Message: "missing Stripe signature"})
		return
	}
	event, err := webhook.ConstructEventWithOptions(payload, sig, h.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		log.Warn().Err(err).Msg("rejected Stripe webhook")
		c.JSON(http.StatusBadRequest, api.MessageResponse{Message: "invalid Stripe signature"})
		return
	}

	eventType := string(event.Type)
	in, err := updateFromEvent(&event)
	if errors.Is(err, errNotApplicable) {
		log.Info().Err(err).Str("event_id", event.ID).Str("type", eventType).Msg("Stripe webhook ignored")
		metrics.RecordWebhookEvent(eventType, outcomeIgnored)
		c.JSON(http.StatusOK, api.MessageResponse{Message: "ignored"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("event_id", event.ID).Str("type", eventType).Msg("failed to decode Stripe event")
		metrics.RecordWebhookEvent(eventType, outcomeRejected)
		c.JSON(http.StatusBadRequest, api.MessageResponse{Message: "invalid event payload"})
		return
	}

	if _, err := h.uc.Update(c.Request.Context(), in); err != nil {
		switch {
		case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrInvalidPlan), errors.Is(err, domain.ErrValidation):
			log.Warn().Err(err).Str("event_id", event.ID).Str("clerk_id", in.ClerkID).Msg("Stripe webhook not applied")
			metrics.RecordWebhookEvent(eventType, outcomeRejected)
			c.JSON(http.StatusOK, api.MessageResponse{Message: "ignored"})
		default:
			log.Error().Err(err).Str("event_id", event.ID).Str("clerk_id", in.ClerkID).Msg("Stripe webhook processing failed")
			metrics.RecordWebhookEvent(eventType, outcomeFailed)
			c.JSON(http.StatusInternalServerError, api.MessageResponse{Message: "processing failed"})
		}
		return
	}

	log.Info().Str("event_id", event.ID).Str("clerk_id", in.ClerkID).Str("plan", in.Plan).Msg("subscription updated from Stripe")
	metrics.RecordWebhookEvent(eventType, outcomeApplied)
	c.JSON(http.StatusOK, api.MessageResponse{Message: "Subscription updated successfully"})
}

// updateFromEvent converts a Stripe event into a plan change.
func updateFromEvent(event *stripelib.Event) (usecase.UpdateInput, error) {
	switch event.Type {
	case stripelib.EventTypeCheckoutSessionCompleted:
		var s stripelib.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
			return usecase.UpdateInput{}, fmt.Errorf("decode checkout.session: %w", err)
		}
		if s.PaymentStatus == stripelib.CheckoutSessionPaymentStatusUnpaid {
			return usecase.UpdateInput{}, fmt.Errorf("%w: checkout %s is unpaid", errNotApplicable, s.ID)
		}
		clerkID, plan := s.Metadata[MetadataClerkID], s.Metadata[MetadataPlan]
		if clerkID == "" || plan == "" {
			return usecase.UpdateInput{}, fmt.Errorf("%w: checkout %s has no plan metadata", errNotApplicable, s.ID)
		}
		paymentID := s.ID
		if s.PaymentIntent != nil && s.PaymentIntent.ID != "" {
			paymentID = s.PaymentIntent.ID
		}
		return usecase.UpdateInput{
			ClerkID:         clerkID,
			Plan:            plan,
			PaymentID:       paymentID,
			PriceAtPurchase: float64(s.AmountTotal) / 100,
		}, nil

	case stripelib.EventTypeCustomerSubscriptionDeleted:
		var sub stripelib.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return usecase.UpdateInput{}, fmt.Errorf("decode subscription: %w", err)
		}
		clerkID := sub.Metadata[MetadataClerkID]
		if clerkID == "" {
			return usecase.UpdateInput{}, fmt.Errorf("%w: subscription %s has no clerkId metadata", errNotApplicable, sub.ID)
		}
		return usecase.UpdateInput{ClerkID: clerkID, Plan: string(entity.PlanFree)}, nil
	}
	return usecase.UpdateInput{}, fmt.Errorf("%w: unhandled type %s", errNotApplicable, event.Type)
}
