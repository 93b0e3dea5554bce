package schedule

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"catchUpAPI/internal/apperr"
	"catchUpAPI/internal/cache"
	"catchUpAPI/internal/metrics"
	"catchUpAPI/internal/store"
)

const (
	LatestKey = "question_order:latest"
	LatestTTL = 48 * time.Hour

	DefaultAttempts = 5
)

// GraphSource yields one consistent snapshot of the friend graph.
type GraphSource interface {
	FriendGraph(ctx context.Context) (store.Graph, error)
}

// Result is a published question order.
type Result struct {
	Seed        uuid.UUID   `json:"seed"`
	Order       []uuid.UUID `json:"order"`
	Users       int         `json:"users"`
	Attempts    int         `json:"attempts"`
	GeneratedAt time.Time   `json:"generated_at"`
}

type RunOptions struct {
	// Seed pins the starting user. When nil, seeds are drawn at random.
	Seed *uuid.UUID
	// DryRun skips publishing the result to the cache.
	DryRun bool
}

type Runner struct {
	source   GraphSource
	cache    cache.Cache
	attempts int
	now      func() time.Time
	shuffle  func(ids []uuid.UUID)
}

func NewRunner(source GraphSource, c cache.Cache, attempts int) *Runner {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	return &Runner{
		source:   source,
		cache:    c,
		attempts: attempts,
		now:      time.Now,
		shuffle: func(ids []uuid.UUID) {
			rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
		},
	}
}

// Run computes a question order and publishes it as the latest one. Seeds
// that cannot cover the graph are skipped until the attempt budget runs out.
func (r *Runner) Run(ctx context.Context, opts RunOptions) (*Result, error) {
	g, err := r.source.FriendGraph(ctx)
	if err != nil {
		metrics.ScheduleRuns.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to load friend graph: %w", err)
	}

	seeds := []uuid.UUID{}
	if opts.Seed != nil {
		seeds = append(seeds, *opts.Seed)
	} else {
		seeds = Users(g)
		r.shuffle(seeds)
		if len(seeds) > r.attempts {
			seeds = seeds[:r.attempts]
		}
	}
	if len(seeds) == 0 {
		metrics.ScheduleRuns.WithLabelValues("unavailable").Inc()
		return nil, fmt.Errorf("friend graph is empty: %w", apperr.ErrSchedulingUnavailable)
	}

	var lastErr error
	for i, seed := range seeds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		order, err := Order(g, seed)
		if errors.Is(err, apperr.ErrSchedulingUnavailable) {
			log.Printf("QuestionOrder: seed %s rejected: %v", seed, err)
			lastErr = err
			continue
		}
		if err != nil {
			metrics.ScheduleRuns.WithLabelValues("error").Inc()
			return nil, err
		}

		res := &Result{
			Seed:        seed,
			Order:       order,
			Users:       len(g),
			Attempts:    i + 1,
			GeneratedAt: r.now().UTC(),
		}
		if !opts.DryRun {
			if err := r.publish(ctx, res); err != nil {
				metrics.ScheduleRuns.WithLabelValues("error").Inc()
				return nil, err
			}
		}
		metrics.ScheduleRuns.WithLabelValues("ok").Inc()
		return res, nil
	}

	metrics.ScheduleRuns.WithLabelValues("unavailable").Inc()
	return nil, fmt.Errorf("all %d seeds failed: %w", len(seeds), lastErr)
}

func (r *Runner) publish(ctx context.Context, res *Result) error {
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to encode question order: %w", err)
	}
	if err := r.cache.Set(ctx, LatestKey, string(data), LatestTTL); err != nil {
		return fmt.Errorf("failed to publish question order: %w", err)
	}
	return nil
}

// Latest returns the most recently published order, or apperr.ErrNotFound.
func (r *Runner) Latest(ctx context.Context) (*Result, error) {
	raw, err := r.cache.Get(ctx, LatestKey)
	if errors.Is(err, cache.ErrMiss) {
		return nil, fmt.Errorf("question order: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read question order: %w", err)
	}

	var res Result
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return nil, fmt.Errorf("failed to decode question order: %w", err)
	}
	return &res, nil
}
