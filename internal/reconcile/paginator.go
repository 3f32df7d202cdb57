package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/ozmsg/gateway/internal/provider"
)

// PaginatorConfig bounds the paging loop.
type PaginatorConfig struct {
	// PageSize is the provider's server-side listing cap. The provider
	// silently truncates larger limits, so paging always requests exactly
	// this many.
	PageSize int
	// MaxPages is a hard iteration cap in case the provider never returns a
	// short page.
	MaxPages int
	// RateLimitBackoff is the wait before retrying a rate-limited page when
	// the provider gives no Retry-After hint.
	RateLimitBackoff time.Duration
}

// Paginator accumulates inbound provider messages page by page.
type Paginator struct {
	fetcher provider.Fetcher
	cfg     PaginatorConfig
	logger  *slog.Logger
}

// NewPaginator creates a Paginator. Zero config fields get safe defaults.
func NewPaginator(fetcher provider.Fetcher, cfg PaginatorConfig, logger *slog.Logger) *Paginator {
	if cfg.PageSize <= 0 {
		cfg.PageSize = 5
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 40
	}
	if cfg.RateLimitBackoff <= 0 {
		cfg.RateLimitBackoff = 2 * time.Second
	}
	return &Paginator{
		fetcher: fetcher,
		cfg:     cfg,
		logger:  logger.With("component", "paginator"),
	}
}

// FetchInbound pages through the provider's incoming listing until target
// messages have been collected, a short page signals end of data, or the
// page cap is hit. Rate-limited pages are retried in place after a backoff;
// any other page failure ends the fetch early. Already-accumulated messages
// are always returned, never discarded, and the batch is deduplicated by
// message identity.
func (p *Paginator) FetchInbound(ctx context.Context, target int) []provider.Message {
	if target <= 0 {
		return nil
	}

	var (
		collected []provider.Message
		seen      = make(map[string]struct{})
		offset    int
	)

	for iter := 0; iter < p.cfg.MaxPages && len(collected) < target; iter++ {
		page, err := p.fetcher.GetMessages(ctx, provider.FetchRequest{
			Direction: provider.DirectionIncoming,
			Limit:     p.cfg.PageSize,
			Offset:    offset,
		})
		if err != nil {
			var rle *provider.RateLimitError
			if errors.As(err, &rle) {
				wait := rle.RetryAfter
				if wait <= 0 {
					wait = p.cfg.RateLimitBackoff
				}
				rateLimitWaitsCounter.Inc()
				p.logger.WarnContext(ctx, "Provider rate limited, retrying page after backoff",
					"offset", offset, "wait", wait)
				if !sleepCtx(ctx, wait) {
					return collected
				}
				// Retry the same page; the iteration still counts toward
				// MaxPages so a permanently rate-limited provider cannot
				// spin forever.
				continue
			}
			p.logger.ErrorContext(ctx, "Provider page fetch failed, stopping early",
				"error", err, "offset", offset, "collected", len(collected))
			return collected
		}

		pagesFetchedCounter.Inc()

		for _, msg := range page {
			id := Identity(msg)
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			collected = append(collected, msg)
			if len(collected) >= target {
				break
			}
		}

		if len(page) < p.cfg.PageSize {
			// Short page: end of data.
			break
		}
		offset += p.cfg.PageSize
	}

	p.logger.DebugContext(ctx, "Inbound fetch complete", "collected", len(collected), "target", target)
	return collected
}

// sleepCtx waits for d unless the context is cancelled first. Blocking here
// is per invocation only; concurrent reconciliation runs are unaffected.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
