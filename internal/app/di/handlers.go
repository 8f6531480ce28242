package di

import (
	"evolve_backend/internal/app/router"
	assistanthandler "evolve_backend/internal/feature/assistant/transport/handler"
	subscriptionhandler "evolve_backend/internal/feature/subscription/transport/handler"
	subscriptionusecase "evolve_backend/internal/feature/subscription/usecase"
	usagehandler "evolve_backend/internal/feature/usage/transport/handler"
	gatemw "evolve_backend/internal/feature/usage/transport/middleware"
	usageusecase "evolve_backend/internal/feature/usage/usecase"
	userhandler "evolve_backend/internal/feature/user/transport/handler"
	userusecase "evolve_backend/internal/feature/user/usecase"
	jwtmw "evolve_backend/internal/platform/jwt"
)

// Options are the optional parts of the router.
type Options struct {
	// Verifier enables authentication when set.
	Verifier *jwtmw.Verifier
	// Assistant mounts the gated chat route when set.
	Assistant *assistanthandler.AssistantHandler
	// StripeWebhookSecret mounts the Stripe webhook when set.
	StripeWebhookSecret string
}

// NewRouterDeps builds every usecase and handler on top of one Store.
// The gate and the usage endpoints share the same gate usecase so that both count against the same quota.
func NewRouterDeps(store userusecase.Store, opts Options) router.Deps {
	gateUC := usageusecase.NewGateUsecase(store)
	subscriptionUC := subscriptionusecase.NewSubscriptionUsecase(store)

	deps := router.Deps{
		User:         userhandler.NewUserHandler(userusecase.NewUserUsecase(store)),
		Usage:        usagehandler.NewUsageHandler(gateUC),
		Subscription: subscriptionhandler.NewSubscriptionHandler(subscriptionUC),
		Gate:         gatemw.NewGate(gateUC),
		Assistant:    opts.Assistant,
		Verifier:     opts.Verifier,
	}
	if opts.StripeWebhookSecret != "" {
		deps.StripeWebhook = subscriptionhandler.NewStripeWebhookHandler(subscriptionUC, opts.StripeWebhookSecret)
	}
	return deps
}
