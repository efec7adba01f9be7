// Package aggregate fans one search query out to every registered source
// adapter and collects whatever succeeded. Partial failure is the normal
// case, not an error: the result always carries a per-source status report.
package aggregate

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/jobpilot/internal/sources"
	"github.com/jonathan/jobpilot/internal/types"
)

// Options bound the fan-out.
type Options struct {
	// PerSourceTimeout cancels a single adapter that runs long; the adapter
	// is reported as unavailable, not failed fatally.
	PerSourceTimeout time.Duration
	// GlobalBudget is the wall-clock budget for the whole fan-out.
	GlobalBudget time.Duration
	// MaxConcurrent bounds how many adapters run in parallel. Zero means one
	// slot per adapter, capped at 8.
	MaxConcurrent int
}

// Result is one aggregation run's output. Report preserves adapter
// registration order regardless of completion order.
type Result struct {
	Postings []types.Posting
	Report   []types.SourceStatus
}

// Aggregator owns the registered adapters.
type Aggregator struct {
	adapters []sources.Adapter
	opts     Options
	log      *zap.Logger
}

// New builds an aggregator over the given adapters. Registration order is
// the report order.
func New(adapters []sources.Adapter, opts Options, log *zap.Logger) *Aggregator {
	if opts.PerSourceTimeout <= 0 {
		opts.PerSourceTimeout = 15 * time.Second
	}
	if opts.GlobalBudget <= 0 {
		opts.GlobalBudget = 60 * time.Second
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = min(len(adapters), 8)
	}
	if opts.MaxConcurrent < 1 {
		opts.MaxConcurrent = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{adapters: adapters, opts: opts, log: log.Named("aggregator")}
}

// Run executes the fan-out. It never returns an error for source failures;
// the report says what happened per source. Blocked sources contribute their
// manual search URL so the caller can surface a hand-search fallback.
func (a *Aggregator) Run(ctx context.Context, q sources.Query) Result {
	ctx, cancel := context.WithTimeout(ctx, a.opts.GlobalBudget)
	defer cancel()

	report := make([]types.SourceStatus, len(a.adapters))
	collected := make([][]types.Posting, len(a.adapters))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.MaxConcurrent)

	for i, adapter := range a.adapters {
		g.Go(func() error {
			sctx, scancel := context.WithTimeout(gctx, a.opts.PerSourceTimeout)
			defer scancel()

			start := time.Now()
			postings, err := adapter.Search(sctx, q)
			status := a.classify(adapter, q, err, len(postings))

			a.log.Debug("source finished",
				zap.String("source", adapter.Name()),
				zap.Bool("ok", status.OK),
				zap.Int("count", status.Count),
				zap.Duration("took", time.Since(start)),
			)

			mu.Lock()
			report[i] = status
			collected[i] = postings
			mu.Unlock()
			return nil // best effort: one source never cancels the siblings
		})
	}
	_ = g.Wait()

	var postings []types.Posting
	for _, batch := range collected {
		postings = append(postings, batch...)
	}

	a.log.Info("aggregation complete",
		zap.Int("sources", len(a.adapters)),
		zap.Int("postings", len(postings)),
	)
	return Result{Postings: postings, Report: report}
}

// classify maps an adapter outcome onto a status report entry.
func (a *Aggregator) classify(adapter sources.Adapter, q sources.Query, err error, count int) types.SourceStatus {
	status := types.SourceStatus{Source: adapter.Name(), OK: err == nil, Count: count}
	if err == nil {
		return status
	}

	switch {
	case errors.Is(err, sources.ErrSourceBlocked):
		status.Reason = "blocked"
		status.ManualURL = adapter.ManualSearchURL(q)
	case errors.Is(err, sources.ErrSourceParse):
		status.Reason = "parse error"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		status.Reason = "timeout"
	default:
		status.Reason = "unavailable"
	}

	a.log.Warn("source failed",
		zap.String("source", adapter.Name()),
		zap.String("reason", status.Reason),
		zap.Error(err),
	)
	return status
}
