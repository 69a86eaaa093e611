package service

import (
	"context"
	"time"

	"moeum/internal/cache"
	"moeum/internal/middleware"
	"moeum/internal/observability"
)

// ViewCounter bumps post view counts off the request path. Counting is
// best-effort: failures are logged and counted but never surface to the
// reader, and repeat views by the same viewer inside the dedup window are
// dropped.
type ViewCounter struct {
	increment   func(ctx context.Context, postID string) (bool, error)
	dedupWindow time.Duration
	timeout     time.Duration
}

func NewViewCounter(increment func(ctx context.Context, postID string) (bool, error), dedupWindow time.Duration) *ViewCounter {
	return &ViewCounter{
		increment:   increment,
		dedupWindow: dedupWindow,
		timeout:     5 * time.Second,
	}
}

// Record counts a view asynchronously. The caller's request finishes without
// waiting for, or learning about, the outcome.
func (v *ViewCounter) Record(postID, viewer string) {
	go v.record(postID, viewer)
}

func (v *ViewCounter) record(postID, viewer string) {
	// Detached from the request context so the increment survives the
	// response being written.
	ctx, cancel := context.WithTimeout(context.Background(), v.timeout)
	defer cancel()

	if v.dedupWindow > 0 && viewer != "" {
		if client := cache.GetClient(); client != nil {
			ok, err := client.SetNX(ctx, cache.ViewKey(postID, viewer), "1", v.dedupWindow).Result()
			if err != nil {
				middleware.Logger.WarnContext(ctx, "view dedup check failed", "post_id", postID, "error", err)
			} else if !ok {
				observability.PostViews.WithLabelValues("deduped").Inc()
				return
			}
		}
	}

	counted, err := v.increment(ctx, postID)
	if err != nil {
		observability.PostViews.WithLabelValues("failed").Inc()
		middleware.Logger.ErrorContext(ctx, "failed to increment post views", "post_id", postID, "error", err)
		return
	}
	if !counted {
		observability.PostViews.WithLabelValues("missing").Inc()
		return
	}
	observability.PostViews.WithLabelValues("counted").Inc()
}
