package jobs

import (
	"context"
	"fmt"
	"time"

	"runnerhub/internal/core/ports"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/rs/zerolog"
)

// Options configures the background job client.
type Options struct {
	MaxWorkers       int
	AnalyticsEnabled bool
	AnalyticsEvery   time.Duration
}

// Migrate brings River's own tables up to date.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		return fmt.Errorf("create river migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		return fmt.Errorf("river migrate up: %w", err)
	}
	return nil
}

// NewClient registers the workers and, when enabled, the periodic analytics
// check. The client is not started.
func NewClient(pool *pgxpool.Pool, monitor ports.AnalyticsMonitor, opts Options, log zerolog.Logger) (*river.Client[pgx.Tx], error) {
	workers := river.NewWorkers()
	if err := river.AddWorkerSafely(workers, NewAnalyticsCheckWorker(monitor, log)); err != nil {
		return nil, fmt.Errorf("register analytics worker: %w", err)
	}

	client, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: max(opts.MaxWorkers, 1)},
		},
		Workers:      workers,
		PeriodicJobs: PeriodicJobs(opts),
	})
	if err != nil {
		return nil, fmt.Errorf("create river client: %w", err)
	}
	return client, nil
}

// PeriodicJobs returns the schedules implied by opts.
func PeriodicJobs(opts Options) []*river.PeriodicJob {
	if !opts.AnalyticsEnabled || opts.AnalyticsEvery <= 0 {
		return nil
	}
	return []*river.PeriodicJob{
		river.NewPeriodicJob(
			river.PeriodicInterval(opts.AnalyticsEvery),
			func() (river.JobArgs, *river.InsertOpts) {
				return AnalyticsCheckArgs{}, nil
			},
			&river.PeriodicJobOpts{RunOnStart: true},
		),
	}
}
