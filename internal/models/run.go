package models

import (
	"fmt"
	"time"
)

// Surface names the entry point that fired a run.
type Surface string

const (
	SurfaceCLI Surface = "cli"
	SurfaceTUI Surface = "tui"
	SurfaceWeb Surface = "web"
)

// Run is one settled generate invocation.
type Run struct {
	id        string
	sequence  int
	surface   Surface
	result    GenerationResult
	duration  time.Duration
	createdAt time.Time
	deletedAt *time.Time
}

var _ Model = (*Run)(nil)

// NewRun creates a Run for result, stamped with the current time. ID and sequence are assigned on insert.
func NewRun(surface Surface, result GenerationResult, duration time.Duration) *Run {
	return &Run{
		surface:   surface,
		result:    result,
		duration:  duration,
		createdAt: time.Now().UTC(),
	}
}

func (r *Run) ID() string               { return r.id }
func (r *Run) Sequence() int            { return r.sequence }
func (r *Run) Surface() Surface         { return r.surface }
func (r *Run) Result() GenerationResult { return r.result }
func (r *Run) Success() bool            { return r.result.Success }
func (r *Run) Message() string          { return r.result.Message }
func (r *Run) Duration() time.Duration  { return r.duration }
func (r *Run) CreatedAt() time.Time     { return r.createdAt }
func (r *Run) DeletedAt() *time.Time    { return r.deletedAt }

func (r *Run) SetID(id string)                { r.id = id }
func (r *Run) SetSequence(seq int)            { r.sequence = seq }
func (r *Run) SetCreatedAt(t time.Time)       { r.createdAt = t }
func (r *Run) SetDeletedAt(t *time.Time)      { r.deletedAt = t }
func (r *Run) SetDuration(d time.Duration)    { r.duration = d }
func (r *Run) SetResult(res GenerationResult) { r.result = res }

// Validate checks required fields.
func (r *Run) Validate() error {
	if r.surface == "" {
		return fmt.Errorf("surface is required")
	}
	if r.result.Message == "" {
		return fmt.Errorf("message is required")
	}
	if r.duration < 0 {
		return fmt.Errorf("duration must not be negative")
	}
	return nil
}

// RunView is the JSON projection of a Run used by `history list --json`.
type RunView struct {
	ID         string    `json:"id"`
	Sequence   int       `json:"sequence"`
	Surface    Surface   `json:"surface"`
	Success    bool      `json:"success"`
	Message    string    `json:"message"`
	Count      *int      `json:"count,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// View projects r for serialization.
func (r *Run) View() RunView {
	return RunView{
		ID:         r.id,
		Sequence:   r.sequence,
		Surface:    r.surface,
		Success:    r.result.Success,
		Message:    r.result.Message,
		Count:      r.result.Count,
		DurationMS: r.duration.Milliseconds(),
		CreatedAt:  r.createdAt,
	}
}
