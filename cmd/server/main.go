package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"evolve_backend/internal/app/di"
	"evolve_backend/internal/app/router"
	"evolve_backend/internal/config"
	jwtmw "evolve_backend/internal/platform/jwt"
	"evolve_backend/internal/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init("evolve-backend", cfg.LogLevel, !cfg.IsProduction())
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Store（必要に応じてRedisキャッシュでラップ）
	store, err := di.NewUserStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Store.Driver).Msg("failed to open user store")
	}
	defer store.Close()

	// Clerkのセッショントークン検証（鍵が無ければ認証無効）
	var verifier *jwtmw.Verifier
	if cfg.Clerk.JWTKey != "" {
		if verifier, err = jwtmw.NewVerifier(cfg.Clerk.JWTKey, cfg.Clerk.Leeway); err != nil {
			log.Fatal().Err(err).Msg("invalid CLERK_JWT_KEY")
		}
	}

	assistant, err := di.NewAssistantHandler(ctx, cfg.Gemini)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create assistant")
	}

	// ルータ生成
	deps := di.NewRouterDeps(store.Store, di.Options{
		Verifier:            verifier,
		Assistant:           assistant,
		StripeWebhookSecret: cfg.Stripe.WebhookSecret,
	})
	deps.AllowedOrigins = cfg.HTTP.AllowedOrigins
	deps.ReadyChecks = store.Checks

	srv := &http.Server{
		Addr:    ":" + cfg.HTTP.Port,
		Handler: router.NewRouter(deps),
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
