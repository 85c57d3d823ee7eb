package service

import (
	"context"
	"fmt"
	"time"

	"runnerhub/internal/core/domain"
	"runnerhub/internal/core/ports"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// AdminTarget is the notification room that receives analytics alerts.
const AdminTarget = "admin"

// MonitorThresholds are the lower bounds that trigger an alert.
type MonitorThresholds struct {
	WeeklyTasks    int64
	DailyTasks     int64
	MonthlyRevenue decimal.Decimal
	WeeklyRevenue  decimal.Decimal
}

// DefaultMetrics builds the four monitored metrics in evaluation order.
func DefaultMetrics(th MonitorThresholds) []domain.Metric {
	return []domain.Metric{
		{
			Name: "weekly_tasks", Kind: domain.MetricKindTaskCount, Period: domain.PeriodWeek,
			Threshold: decimal.NewFromInt(th.WeeklyTasks), Event: "lowTasks", Subject: "Low Weekly Tasks Alert",
		},
		{
			Name: "monthly_revenue", Kind: domain.MetricKindRevenue, Period: domain.PeriodMonth,
			Threshold: th.MonthlyRevenue, Event: "lowRevenue", Subject: "Low Revenue Alert",
		},
		{
			Name: "daily_tasks", Kind: domain.MetricKindTaskCount, Period: domain.PeriodDay,
			Threshold: decimal.NewFromInt(th.DailyTasks), Event: "lowDailyTasks", Subject: "Low Daily Tasks Alert",
		},
		{
			Name: "weekly_revenue", Kind: domain.MetricKindRevenue, Period: domain.PeriodWeek,
			Threshold: th.WeeklyRevenue, Event: "lowWeeklyRevenue", Subject: "Low Weekly Revenue Alert",
		},
	}
}

// MonitorOptions configures the AnalyticsMonitorImpl.
type MonitorOptions struct {
	Metrics    []domain.Metric
	AdminEmail string        // empty disables email
	Cooldown   time.Duration // 0 re-emits on every run
}

// AnalyticsMonitorImpl implements ports.AnalyticsMonitor.
type AnalyticsMonitorImpl struct {
	taskRepo    ports.TaskRepository
	paymentRepo ports.PaymentRepository
	notifier    ports.Notifier
	mailer      ports.Mailer
	gate        ports.AlertGate
	opts        MonitorOptions
	log         zerolog.Logger
	now         func() time.Time
}

// NewAnalyticsMonitor creates a monitor. mailer and gate may be nil.
func NewAnalyticsMonitor(
	taskRepo ports.TaskRepository,
	paymentRepo ports.PaymentRepository,
	notifier ports.Notifier,
	mailer ports.Mailer,
	gate ports.AlertGate,
	opts MonitorOptions,
	log zerolog.Logger,
) *AnalyticsMonitorImpl {
	return &AnalyticsMonitorImpl{
		taskRepo:    taskRepo,
		paymentRepo: paymentRepo,
		notifier:    notifier,
		mailer:      mailer,
		gate:        gate,
		opts:        opts,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Check evaluates every metric once and returns the alerts that were raised.
// A failing metric is logged and skipped; the error is only returned when
// every metric failed.
func (m *AnalyticsMonitorImpl) Check(ctx context.Context) ([]domain.Alert, error) {
	now := m.now()
	var alerts []domain.Alert
	var failed int
	var lastErr error

	for _, metric := range m.opts.Metrics {
		since := metric.Period.Start(now)
		value, err := m.measure(ctx, metric, since)
		if err != nil {
			failed++
			lastErr = err
			m.log.Error().Err(err).Str("metric", metric.Name).Msg("analytics metric failed")
			continue
		}
		if !value.LessThan(metric.Threshold) {
			continue
		}

		alert := domain.Alert{
			Metric:    metric.Name,
			Event:     metric.Event,
			Value:     value,
			Threshold: metric.Threshold,
			Since:     since,
			Message:   alertMessage(metric, value),
		}

		if !m.allow(ctx, metric.Name) {
			m.log.Debug().Str("metric", metric.Name).Msg("alert suppressed by cool-down")
			continue
		}

		m.dispatch(ctx, metric, alert)
		alerts = append(alerts, alert)
	}

	if failed > 0 && failed == len(m.opts.Metrics) {
		return alerts, fmt.Errorf("all %d analytics metrics failed: %w", failed, lastErr)
	}
	return alerts, nil
}

func (m *AnalyticsMonitorImpl) measure(ctx context.Context, metric domain.Metric, since time.Time) (decimal.Decimal, error) {
	switch metric.Kind {
	case domain.MetricKindTaskCount:
		n, err := m.taskRepo.CountCreatedSince(ctx, since)
		if err != nil {
			return decimal.Zero, fmt.Errorf("count tasks: %w", err)
		}
		return decimal.NewFromInt(n), nil
	case domain.MetricKindRevenue:
		sum, err := m.paymentRepo.SumSuccessfulSince(ctx, &since)
		if err != nil {
			return decimal.Zero, fmt.Errorf("sum revenue: %w", err)
		}
		return sum, nil
	default:
		return decimal.Zero, fmt.Errorf("unknown metric kind %q", metric.Kind)
	}
}

func (m *AnalyticsMonitorImpl) allow(ctx context.Context, name string) bool {
	if m.gate == nil || m.opts.Cooldown <= 0 {
		return true
	}
	ok, err := m.gate.Allow(ctx, name, m.opts.Cooldown)
	if err != nil {
		m.log.Warn().Err(err).Str("metric", name).Msg("alert gate unavailable, sending alert")
		return true
	}
	return ok
}

func (m *AnalyticsMonitorImpl) dispatch(ctx context.Context, metric domain.Metric, alert domain.Alert) {
	payload := map[string]any{
		"message":   alert.Message,
		"metric":    alert.Metric,
		"value":     alert.Value,
		"threshold": alert.Threshold,
	}
	if err := m.notifier.Emit(ctx, AdminTarget, alert.Event, payload); err != nil {
		m.log.Warn().Err(err).Str("event", alert.Event).Msg("realtime alert failed")
	}

	if m.opts.AdminEmail != "" && m.mailer != nil {
		body := fmt.Sprintf("%s has dropped below %s. Current: %s", describe(metric), metric.Threshold, alert.Value)
		if err := m.mailer.Send(ctx, m.opts.AdminEmail, metric.Subject, body); err != nil {
			m.log.Warn().Err(err).Str("event", alert.Event).Msg("alert email failed")
		}
	}

	m.log.Info().
		Str("metric", alert.Metric).
		Str("value", alert.Value.String()).
		Str("threshold", alert.Threshold.String()).
		Msg("analytics threshold breached")
}

func describe(metric domain.Metric) string {
	noun := "tasks"
	if metric.Kind == domain.MetricKindRevenue {
		noun = "revenue"
	}
	switch metric.Period {
	case domain.PeriodDay:
		return "Daily " + noun
	case domain.PeriodWeek:
		return "Weekly " + noun
	case domain.PeriodMonth:
		return "Monthly " + noun
	default:
		return "Yearly " + noun
	}
}

func alertMessage(metric domain.Metric, value decimal.Decimal) string {
	return fmt.Sprintf("%s below threshold %s (%s)", describe(metric), metric.Threshold, value)
}
