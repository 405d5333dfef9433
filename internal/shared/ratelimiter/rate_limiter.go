// Package ratelimiter はプロバイダーごとの呼び出し間隔を制御します。
package ratelimiter

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterInterface は、API呼び出しなどの操作の頻度を制限するインターフェースです。
type RateLimiterInterface interface {
	WaitIfNeeded(ctx context.Context)
}

// RateLimiter は直前の呼び出しから最低 60/callsPerMinute 秒が経過するまで待機させます。
// 1 つのプロバイダーに対して 1 インスタンスを共有して使います。
type RateLimiter struct {
	name     string
	interval time.Duration
	limiter  *rate.Limiter
}

// NewRateLimiter は新しい RateLimiter を生成します。
// callsPerMinute が 0 以下の場合は待機しません。
func NewRateLimiter(name string, callsPerMinute int) *RateLimiter {
	if callsPerMinute <= 0 {
		return &RateLimiter{name: name, limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	interval := time.Minute / time.Duration(callsPerMinute)
	return &RateLimiter{
		name:     name,
		interval: interval,
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Interval は呼び出し間の最小間隔を返します。
func (rl *RateLimiter) Interval() time.Duration {
	return rl.interval
}

// WaitIfNeeded は必要であれば最小間隔に達するまで待機します。失敗することはありません。
// ctx が先に終了した場合は予約を取り消して即座に戻ります。
func (rl *RateLimiter) WaitIfNeeded(ctx context.Context) {
	r := rl.limiter.Reserve()
	d := r.Delay()
	if d <= 0 {
		return
	}
	slog.Debug("rate limit wait", "provider", rl.name, "sleep", d)

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
		r.Cancel()
	}
}
