package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kalambet/hackmix/internal/participant"
)

// Event is one element of a run's stream. Exactly one field is set. The last
// event of every stream carries Result or Error.
type Event struct {
	Progress *participant.Progress `json:"progress,omitempty"`
	Result   *participant.Result   `json:"results,omitempty"`
	Error    string                `json:"error,omitempty"`
}

// Terminal reports whether e ends the stream.
func (e Event) Terminal() bool {
	return e.Result != nil || e.Error != ""
}

// Stream runs the analysis in a goroutine and returns its events. The channel
// is always closed, after a Result or Error event unless ctx was cancelled
// while nobody was reading. Panics inside the run become an Error event.
func (o *Orchestrator) Stream(ctx context.Context, inputs []participant.Input, reference *participant.Input) <-chan Event {
	ch := make(chan Event, 16)
	send := func(e Event) bool {
		select {
		case ch <- e:
			return true
		case <-ctx.Done():
			return false
		}
	}

	go func() {
		defer close(ch)
		defer func() {
			if r := recover(); r != nil {
				slog.Error("pipeline: run panicked", "panic", r)
				o.deps.Metrics.RecordRun("error")
				send(Event{Error: fmt.Sprintf("internal error: %v", r)})
			}
		}()

		res, err := o.Run(ctx, inputs, reference, func(p participant.Progress) {
			send(Event{Progress: &p})
		})
		if err != nil {
			slog.Warn("pipeline: run failed", "error", err)
			send(Event{Error: err.Error()})
			return
		}
		send(Event{Result: &res})
	}()
	return ch
}
