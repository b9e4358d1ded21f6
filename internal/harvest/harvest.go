// Package harvest drives an identifier range through an acquisition
// strategy and routes each outcome to persistence and the run counters.
package harvest

import (
	"context"
	"log"
	"time"

	"github.com/cmorand/tmharvest/internal/record"
	"github.com/cmorand/tmharvest/internal/store"
)

// Strategy produces the normalized record for one identifier. A nil record
// with a nil error means the source has no record at that id. A returned
// error is a transport-level failure; per-record extraction failures arrive
// as records with StatusError instead.
type Strategy interface {
	Fetch(ctx context.Context, id int) (*record.Record, error)
}

// Stats holds the four run counters. Exactly one counter is incremented per
// identifier, so they always sum to the number of ids processed.
type Stats struct {
	Ok      int
	Missing int
	Skipped int
	Failed  int
}

// Total returns the number of identifiers accounted for.
func (s Stats) Total() int {
	return s.Ok + s.Missing + s.Skipped + s.Failed
}

// Options configures one run.
type Options struct {
	Start   int
	End     int
	Delay   time.Duration
	Resume  bool
	Verbose bool
}

// Runner is the per-run orchestrator. Strictly one record at a time; the
// only shared state across identifiers is the counters and the strategy's
// transport handle.
type Runner struct {
	strategy Strategy
	store    *store.Store
	opts     Options
}

// New builds a runner over the given strategy and store.
func New(strategy Strategy, st *store.Store, opts Options) *Runner {
	return &Runner{strategy: strategy, store: st, opts: opts}
}

// Run walks the inclusive identifier range and returns the counters. The
// run stops between iterations when ctx is canceled; records already
// persisted stay valid and resumable.
func (r *Runner) Run(ctx context.Context) (Stats, error) {
	var stats Stats
	for _, id := range IDRange(r.opts.Start, r.opts.End) {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		if r.opts.Resume && r.store.AlreadyComplete(id) {
			if r.opts.Verbose {
				log.Printf("[HARVEST] id %d: already present, skipping", id)
			}
			stats.Skipped++
			continue
		}

		rec, err := r.strategy.Fetch(ctx, id)
		switch {
		case err != nil:
			log.Printf("[HARVEST] id %d: network error: %v", id, err)
			stats.Failed++
		case rec == nil || rec.Status == record.StatusNotFound:
			if r.opts.Verbose {
				log.Printf("[HARVEST] id %d: no record", id)
			}
			stats.Missing++
		case rec.Status == record.StatusError:
			log.Printf("[HARVEST] id %d: %s", id, rec.Error)
			stats.Failed++
		default:
			path, saveErr := r.store.Save(rec)
			if saveErr != nil {
				log.Printf("[HARVEST] id %d: save failed: %v", id, saveErr)
				stats.Failed++
				break
			}
			if r.opts.Verbose {
				log.Printf("[HARVEST] id %d: saved %s", id, path)
			}
			stats.Ok++
		}

		r.wait(ctx)
	}
	return stats, nil
}

// IDRange returns the inclusive identifier sequence from start to end,
// descending when end precedes start.
func IDRange(start, end int) []int {
	step := 1
	if end < start {
		step = -1
	}
	ids := make([]int, 0, (end-start)*step+1)
	for id := start; id != end+step; id += step {
		ids = append(ids, id)
	}
	return ids
}

// wait applies the politeness delay charged after every fetched id. Skips
// never reach here, so they incur no extra wait.
func (r *Runner) wait(ctx context.Context) {
	if r.opts.Delay <= 0 {
		return
	}
	t := time.NewTimer(r.opts.Delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
