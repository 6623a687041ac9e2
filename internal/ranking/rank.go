package ranking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/candidate-matcher/internal/types"
)

// DefaultConcurrency bounds pool scoring when Options.Concurrency is unset
const DefaultConcurrency = 8

// ScorePool scores every candidate in the pool for one job. Candidates are scored
// concurrently into index-addressed slots, then sorted by score descending and
// candidate id ascending, so the order never depends on completion order.
// Cancelling ctx stops scheduling further candidates.
func ScorePool(ctx context.Context, job *types.Job, pool []types.PoolEntry, opts *Options, now time.Time) ([]MatchResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job is required")
	}
	if opts == nil {
		opts = &Options{}
	}
	if now.IsZero() {
		now = time.Now()
	}

	limit := opts.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	results := make([]MatchResult, len(pool))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i := range pool {
		if err := gctx.Err(); err != nil {
			break
		}
		entry := &pool[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = ComputeMatchScore(MatchContext{
				Job:           job,
				Candidate:     &entry.Candidate,
				Link:          entry.Link,
				OutreachCount: entry.OutreachCount,
				Now:           now,
			}, opts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to score candidate pool: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to score candidate pool: %w", err)
	}

	SortResults(results)
	return results, nil
}

// SortResults orders results by score descending, then candidate id ascending.
func SortResults(results []MatchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].CandidateID < results[j].CandidateID
	})
}

// ToScored converts a slice of results for shortlist selection.
func ToScored(results []MatchResult) []types.ScoredCandidate {
	scored := make([]types.ScoredCandidate, 0, len(results))
	for i := range results {
		scored = append(scored, results[i].ToScored())
	}
	return scored
}
