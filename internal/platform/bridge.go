// Package platform owns the window and turns platform events into the
// application lifecycle.
package platform

import (
	"github.com/cockroachdb/errors"
	"golang.org/x/exp/slog"
)

// ErrEventWait marks a failure of the platform to deliver events. The event
// loop cannot make progress after it.
var ErrEventWait = errors.New("waiting for platform events failed")

type EventKind int

const (
	EventOther EventKind = iota
	EventCloseRequested
)

func (k EventKind) String() string {
	switch k {
	case EventCloseRequested:
		return "close-requested"
	default:
		return "other"
	}
}

type Event struct {
	Kind EventKind
}

// EventSource is the platform's event queue.
type EventSource interface {
	// WaitEvent blocks until an event is available.
	WaitEvent() (Event, error)

	// PollEvent returns the next pending event without blocking. ok is false
	// when the queue is empty.
	PollEvent() (event Event, ok bool)
}

type State int

const (
	Running State = iota
	Closing
)

func (s State) String() string {
	if s == Closing {
		return "closing"
	}
	return "running"
}

// Bridge consumes an EventSource until a close request is observed. Once
// closing, it never goes back to running and no longer reads events.
type Bridge struct {
	source EventSource
	state  State
	logger *slog.Logger
}

func NewBridge(source EventSource, logger *slog.Logger) *Bridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bridge{source: source, logger: logger}
}

func (b *Bridge) State() State {
	return b.state
}

// PollStep blocks until the platform delivers at least one event, then drains
// every pending event. It returns true once a close request has been seen,
// and an error marked ErrEventWait if the platform failed to deliver events.
func (b *Bridge) PollStep() (bool, error) {
	if b.state == Closing {
		return true, nil
	}

	event, err := b.source.WaitEvent()
	if err != nil {
		err = errors.Mark(errors.Wrap(err, "event loop"), ErrEventWait)
		b.logger.Error("platform event wait failed", slog.Any("error", err))
		return false, err
	}

	ok := true
	for ok {
		if event.Kind == EventCloseRequested && b.state == Running {
			b.state = Closing
			b.logger.Info("window close requested")
		}
		event, ok = b.source.PollEvent()
	}

	return b.state == Closing, nil
}
