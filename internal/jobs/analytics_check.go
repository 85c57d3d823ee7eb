package jobs

import (
	"context"
	"fmt"
	"time"

	"runnerhub/internal/core/ports"

	"github.com/riverqueue/river"
	"github.com/rs/zerolog"
)

// AnalyticsCheckArgs schedules one pass of the threshold monitor.
type AnalyticsCheckArgs struct{}

func (AnalyticsCheckArgs) Kind() string { return "analytics_threshold_check" }

// InsertOpts collapses duplicate checks queued within the same minute.
func (AnalyticsCheckArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		MaxAttempts: 1,
		UniqueOpts:  river.UniqueOpts{ByPeriod: time.Minute},
	}
}

type AnalyticsCheckWorker struct {
	river.WorkerDefaults[AnalyticsCheckArgs]
	monitor ports.AnalyticsMonitor
	timeout time.Duration
	log     zerolog.Logger
}

func NewAnalyticsCheckWorker(monitor ports.AnalyticsMonitor, log zerolog.Logger) *AnalyticsCheckWorker {
	return &AnalyticsCheckWorker{
		monitor: monitor,
		timeout: 2 * time.Minute,
		log:     log.With().Str("job", "analytics_threshold_check").Logger(),
	}
}

func (w *AnalyticsCheckWorker) Timeout(*river.Job[AnalyticsCheckArgs]) time.Duration {
	return w.timeout
}

func (w *AnalyticsCheckWorker) Work(ctx context.Context, _ *river.Job[AnalyticsCheckArgs]) error {
	start := time.Now()
	alerts, err := w.monitor.Check(ctx)
	if err != nil {
		return fmt.Errorf("analytics check: %w", err)
	}

	evt := w.log.Info().Int("alerts", len(alerts)).Dur("duration", time.Since(start))
	for _, a := range alerts {
		w.log.Warn().Str("metric", a.Metric).Str("value", a.Value.String()).
			Str("threshold", a.Threshold.String()).Msg("threshold breached")
	}
	evt.Msg("analytics check finished")
	return nil
}
