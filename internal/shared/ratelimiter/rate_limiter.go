// Package ratelimiter は外部API呼び出しの頻度を制限します。
package ratelimiter

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// RateLimiterInterface は、API呼び出しなどの操作の頻度を制限するインターフェースです。
type RateLimiterInterface interface {
	Wait(ctx context.Context) error
}

// RateLimiter は一定時間あたりの呼び出し回数を制限します。複数のgoroutineから安全に使用できます。
type RateLimiter struct {
	limiter *rate.Limiter
	limit   int
}

// NewRateLimiter は interval あたり limit 回までの呼び出しを許可するRateLimiterを生成します。
// 最大 limit 回までは連続して呼び出せます。
func NewRateLimiter(limit int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Every(interval/time.Duration(limit)), limit),
		limit:   limit,
	}
}

// Wait は呼び出し可能になるまで待機します。
// ctxのキャンセル、または期限までに枠が空かない場合はエラーを返します。
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if rl.limiter.Allow() {
		return nil
	}
	log.Debug().Int("limit", rl.limit).Msg("rate limit hit, waiting")
	return rl.limiter.Wait(ctx)
}
