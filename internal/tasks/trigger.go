// package tasks implements the generate action and its busy state.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/playlistinator/internal/models"
	"github.com/desertthunder/playlistinator/internal/services"
	"github.com/desertthunder/playlistinator/internal/shared"
)

// UnexpectedFailureMessage is shown when the gateway call fails in a way it could not encode itself.
const UnexpectedFailureMessage = "Failed to generate playlist. Please try again."

// NotificationKind is positive for a created playlist, negative otherwise.
type NotificationKind int

const (
	Positive NotificationKind = iota
	Negative
)

func (k NotificationKind) String() string {
	switch k {
	case Positive:
		return "success"
	case Negative:
		return "error"
	default:
		return ""
	}
}

// Notification is the one message a surface shows per invocation.
type Notification struct {
	Kind    NotificationKind
	Message string
}

// Notifier displays notifications.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to [Notifier].
type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// Recorder persists settled runs. Errors are logged and never change the outcome.
type Recorder interface {
	RecordRun(run *models.Run) error
}

// Recorders fans a run out to every non-nil recorder and joins their errors.
func Recorders(rs ...Recorder) Recorder {
	var m multiRecorder
	for _, r := range rs {
		if r != nil {
			m = append(m, r)
		}
	}
	return m
}

type multiRecorder []Recorder

func (m multiRecorder) RecordRun(run *models.Run) error {
	var errs []error
	for _, r := range m {
		if err := r.RecordRun(run); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Outcome is what a settled invocation produced.
type Outcome struct {
	Result       models.GenerationResult
	Notification Notification
	Duration     time.Duration
}

// TriggerOpts contains the dependencies of a [Trigger].
type TriggerOpts struct {
	Gateway  services.Gateway
	Notifier Notifier       // optional
	Recorder Recorder       // optional
	Surface  models.Surface // defaults to [models.SurfaceCLI]
	Logger   *log.Logger
}

// Trigger runs the generate action, one call at a time.
type Trigger struct {
	gateway  services.Gateway
	notifier Notifier
	recorder Recorder
	surface  models.Surface
	logger   *log.Logger

	mu        sync.Mutex
	busy      bool
	observers []func(busy bool)
}

// NewTrigger creates an idle Trigger.
func NewTrigger(opts TriggerOpts) *Trigger {
	if opts.Surface == "" {
		opts.Surface = models.SurfaceCLI
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Trigger{
		gateway:  opts.Gateway,
		notifier: opts.Notifier,
		recorder: opts.Recorder,
		surface:  opts.Surface,
		logger:   shared.WithLogger(opts.Logger, "surface", string(opts.Surface)),
	}
}

// Busy reports whether a call is in flight.
func (t *Trigger) Busy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.busy
}

// OnBusyChange registers fn to be called on every busy transition, in registration order.
func (t *Trigger) OnBusyChange(fn func(busy bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.observers = append(t.observers, fn)
}

// Start marks the trigger busy and launches the gateway call.
//
// It returns [shared.ErrBusy] without issuing a request when a call is already
// in flight. The returned channel yields exactly one [Outcome] and is then
// closed; by the time the outcome is received, busy is false again.
func (t *Trigger) Start(ctx context.Context) (<-chan Outcome, error) {
	if t.gateway == nil {
		return nil, fmt.Errorf("%w: gateway not configured", shared.ErrServiceUnavailable)
	}
	if err := t.acquire(); err != nil {
		return nil, err
	}

	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		out <- t.settle(ctx)
	}()

	return out, nil
}

// OnGenerate starts a call and waits for it to settle.
func (t *Trigger) OnGenerate(ctx context.Context) (Outcome, error) {
	ch, err := t.Start(ctx)
	if err != nil {
		return Outcome{}, err
	}
	return <-ch, nil
}

func (t *Trigger) acquire() error {
	t.mu.Lock()
	if t.busy {
		t.mu.Unlock()
		return shared.ErrBusy
	}
	t.busy = true
	observers := append([]func(bool){}, t.observers...)
	t.mu.Unlock()

	for _, fn := range observers {
		fn(true)
	}
	return nil
}

func (t *Trigger) release() {
	t.mu.Lock()
	t.busy = false
	observers := append([]func(bool){}, t.observers...)
	t.mu.Unlock()

	for _, fn := range observers {
		fn(false)
	}
}

// settle runs the call, then notifies, records and clears busy in that order.
func (t *Trigger) settle(ctx context.Context) Outcome {
	defer t.release()

	start := time.Now()
	result := t.call(ctx)

	outcome := Outcome{
		Result:       result,
		Notification: notificationFor(result),
		Duration:     time.Since(start),
	}

	t.logger.Info("generate settled", "success", result.Success, "message", result.Message, "duration", outcome.Duration)

	t.notify(outcome.Notification)
	t.record(outcome)

	return outcome
}

func (t *Trigger) call(ctx context.Context) (result models.GenerationResult) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("gateway call panicked", "panic", r)
			result = models.Failed(UnexpectedFailureMessage)
		}
	}()

	t.logger.Debug("calling gateway")
	return t.gateway.Generate(ctx).Normalize()
}

func (t *Trigger) notify(n Notification) {
	if t.notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			t.logger.Error("notifier panicked", "panic", r)
		}
	}()
	t.notifier.Notify(n)
}

func (t *Trigger) record(o Outcome) {
	if t.recorder == nil {
		return
	}
	run := models.NewRun(t.surface, o.Result, o.Duration)
	if err := t.recorder.RecordRun(run); err != nil {
		t.logger.Warn("failed to record run", "error", err)
	}
}

func notificationFor(r models.GenerationResult) Notification {
	if r.Success {
		return Notification{Kind: Positive, Message: r.Message}
	}
	return Notification{Kind: Negative, Message: r.Message}
}
