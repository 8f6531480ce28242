// Package usecase はassistantフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"evolve_backend/internal/feature/user/domain"
	"evolve_backend/internal/platform/metrics"
	"evolve_backend/internal/shared/ratelimiter"
)

// MaxPromptLength はプロンプトの最大文字数（rune数）です。
const MaxPromptLength = 4000

// TextGenerator はプロンプトから応答文を生成する外部AIのインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// assistantUsecase はAIチャットのビジネスロジックを提供します。
type assistantUsecase struct {
	generator   TextGenerator
	rateLimiter ratelimiter.RateLimiterInterface
}

// NewAssistantUsecase はassistantUsecaseの新しいインスタンスを生成します。
// rateLimiterがnilの場合、外部APIの呼び出し頻度は制限しません。
func NewAssistantUsecase(g TextGenerator, rateLimiter ratelimiter.RateLimiterInterface) *assistantUsecase {
	return &assistantUsecase{generator: g, rateLimiter: rateLimiter}
}

// Chat はプロンプトを検証してAIの応答を返します。
// 外部APIの失敗はdomain.ErrUpstreamUnavailableでラップされます。
func (u *assistantUsecase) Chat(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", fmt.Errorf("%w: prompt is required", domain.ErrValidation)
	}
	if utf8.RuneCountInString(prompt) > MaxPromptLength {
		return "", fmt.Errorf("%w: prompt exceeds maximum length of %d characters", domain.ErrValidation, MaxPromptLength)
	}

	// 外部APIのレート制限を超えないように待機
	if u.rateLimiter != nil {
		if err := u.rateLimiter.Wait(ctx); err != nil {
			metrics.RecordAssistantRequest("rate_limited", 0)
			return "", fmt.Errorf("%w: rate limit wait: %w", domain.ErrUpstreamUnavailable, err)
		}
	}

	start := time.Now()
	reply, err := u.generator.Generate(ctx, prompt)
	if err != nil {
		metrics.RecordAssistantRequest("upstream_error", time.Since(start).Seconds())
		return "", fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
	}
	metrics.RecordAssistantRequest("ok", time.Since(start).Seconds())
	return reply, nil
}
