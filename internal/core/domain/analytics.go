package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Period is a calendar window in UTC.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

// Valid reports whether p is a known period.
func (p Period) Valid() bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return true
	}
	return false
}

// Start returns the beginning of the period containing now. Weeks start on
// Monday (ISO 8601).
func (p Period) Start(now time.Time) time.Time {
	now = now.UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch p {
	case PeriodWeek:
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case PeriodMonth:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	case PeriodYear:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return day
	}
}

// MetricKind selects what a monitored metric aggregates.
type MetricKind string

const (
	MetricKindTaskCount MetricKind = "task_count"
	MetricKindRevenue   MetricKind = "revenue"
)

// Metric is one monitored aggregate with its alert threshold.
type Metric struct {
	Name      string
	Kind      MetricKind
	Period    Period
	Threshold decimal.Decimal
	Event     string
	Subject   string // email subject
}

// Alert is emitted when a metric falls below its threshold.
type Alert struct {
	Metric    string          `json:"metric"`
	Event     string          `json:"event"`
	Value     decimal.Decimal `json:"value"`
	Threshold decimal.Decimal `json:"threshold"`
	Since     time.Time       `json:"since"`
	Message   string          `json:"message"`
}
