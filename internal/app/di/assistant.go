package di

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"evolve_backend/internal/config"
	"evolve_backend/internal/feature/assistant/adapters/gemini"
	assistanthandler "evolve_backend/internal/feature/assistant/transport/handler"
	assistantusecase "evolve_backend/internal/feature/assistant/usecase"
	infrahttp "evolve_backend/internal/platform/http"
	"evolve_backend/internal/shared/ratelimiter"
)

// NewAssistantHandler creates the chat handler backed by Gemini with a timeout-configured HTTP client.
// It returns nil when GEMINI_API_KEY is not set, and the route is then not mounted.
func NewAssistantHandler(ctx context.Context, cfg config.Gemini) (*assistanthandler.AssistantHandler, error) {
	if cfg.APIKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. Assistant route is disabled.")
		return nil, nil
	}
	gen, err := gemini.NewGenerator(ctx, gemini.Config{
		APIKey:     cfg.APIKey,
		Model:      cfg.Model,
		BaseURL:    cfg.BaseURL,
		HTTPClient: infrahttp.NewHTTPClient(cfg.Timeout, infrahttp.WithService("gemini")),
	})
	if err != nil {
		return nil, err
	}
	var limiter ratelimiter.RateLimiterInterface
	if cfg.RequestsPerMinute > 0 {
		limiter = ratelimiter.NewRateLimiter(cfg.RequestsPerMinute, time.Minute)
	}
	return assistanthandler.NewAssistantHandler(assistantusecase.NewAssistantUsecase(gen, limiter)), nil
}
