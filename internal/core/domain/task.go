package domain

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaskStatus is a step in the task lifecycle.
type TaskStatus string

const (
	TaskStatusPosted    TaskStatus = "posted"
	TaskStatusAccepted  TaskStatus = "accepted"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusCancelled TaskStatus = "cancelled"
	TaskStatusPaid      TaskStatus = "paid"
)

// ErrInvalidTransition is returned when a transition is not reachable from
// the task's current status.
var ErrInvalidTransition = errors.New("invalid task status transition")

var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskStatusPosted:    {TaskStatusAccepted, TaskStatusCancelled},
	TaskStatusAccepted:  {TaskStatusCompleted, TaskStatusCancelled},
	TaskStatusCompleted: {TaskStatusPaid},
}

// Valid reports whether s is a known status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPosted, TaskStatusAccepted, TaskStatusCompleted, TaskStatusCancelled, TaskStatusPaid:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is directly reachable from s.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	for _, allowed := range taskTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal is true for cancelled and paid.
func (s TaskStatus) IsTerminal() bool {
	return len(taskTransitions[s]) == 0
}

// GeoPoint is a longitude/latitude pair.
type GeoPoint struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`
}

// Valid reports whether the point lies within WGS84 bounds.
func (p GeoPoint) Valid() bool {
	return p.Lng >= -180 && p.Lng <= 180 && p.Lat >= -90 && p.Lat <= 90
}

// DistanceTo is the planar Euclidean distance in degrees. It is only used
// for ranking, never for display.
func (p GeoPoint) DistanceTo(o GeoPoint) float64 {
	return math.Hypot(p.Lng-o.Lng, p.Lat-o.Lat)
}

// Task is a unit of work posted by a client.
type Task struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Budget      decimal.Decimal `json:"budget"`
	Location    GeoPoint        `json:"location"`
	Status      TaskStatus      `json:"status"`
	ClientID    uuid.UUID       `json:"client_id"`
	RunnerID    *uuid.UUID      `json:"runner_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	AcceptedAt  *time.Time      `json:"accepted_at,omitempty"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
	CancelledAt *time.Time      `json:"cancelled_at,omitempty"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
}

// NewTask builds a task in the posted state.
func NewTask(clientID uuid.UUID, title, description string, budget decimal.Decimal, loc GeoPoint, now time.Time) *Task {
	return &Task{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		Budget:      budget,
		Location:    loc,
		Status:      TaskStatusPosted,
		ClientID:    clientID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsAssignedTo reports whether userID is the task's runner.
func (t *Task) IsAssignedTo(userID uuid.UUID) bool {
	return t.RunnerID != nil && *t.RunnerID == userID
}

// Accept assigns the runner. Only valid from posted.
func (t *Task) Accept(runnerID uuid.UUID, at time.Time) error {
	if err := t.moveTo(TaskStatusAccepted, at); err != nil {
		return err
	}
	t.RunnerID = &runnerID
	t.AcceptedAt = &at
	return nil
}

// Complete is only valid from accepted.
func (t *Task) Complete(at time.Time) error {
	if err := t.moveTo(TaskStatusCompleted, at); err != nil {
		return err
	}
	t.CompletedAt = &at
	return nil
}

// Cancel is valid from posted or accepted. The runner and accepted_at of an
// accepted task are kept.
func (t *Task) Cancel(at time.Time) error {
	if err := t.moveTo(TaskStatusCancelled, at); err != nil {
		return err
	}
	t.CancelledAt = &at
	return nil
}

// MarkPaid is only valid from completed.
func (t *Task) MarkPaid(at time.Time) error {
	if err := t.moveTo(TaskStatusPaid, at); err != nil {
		return err
	}
	t.PaidAt = &at
	return nil
}

func (t *Task) moveTo(next TaskStatus, at time.Time) error {
	if !t.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	t.Status = next
	t.UpdatedAt = at
	return nil
}

// TaskReference is the reference string recorded on ledger entries caused by a task.
func TaskReference(taskID uuid.UUID) string {
	return "TASK-" + taskID.String()
}
