package service

import (
	"context"
	"time"

	"github.com/JohnCarlosSebuco/bantay-bot-cloud-imgbb-sub000/internal/logger"
)

// runPeriodic calls fn once immediately and then on every tick until ctx is
// cancelled. A panicking fn is logged and the loop keeps going.
func runPeriodic(ctx context.Context, interval time.Duration, log *logger.Logger, name string, fn func(context.Context)) {
	t := time.NewTicker(interval)
	defer t.Stop()

	safeCall(ctx, log, name, fn)
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			safeCall(ctx, log, name, fn)
		}
	}
}

func safeCall(ctx context.Context, log *logger.Logger, name string, fn func(context.Context)) {
	defer func() {
		if r := recover(); r != nil && log != nil {
			log.Errorw("periodic_task_panic", "task", name, "panic", r)
		}
	}()
	fn(ctx)
}
