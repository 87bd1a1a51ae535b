package engine

import (
	"context"
	"fmt"
	"io"
)

// PullProgress reports download progress for a model pull operation.
type PullProgress struct {
	Status    string
	Total     int64
	Completed int64
}

// ModelManager is implemented by local backends that host their own models.
type ModelManager interface {
	IsRunning(ctx context.Context) bool
	HasModel(ctx context.Context, name string) bool
	PullModel(ctx context.Context, name string, onProgress func(PullProgress)) error
}

// EnsureReady checks that a local backend is reachable and pulls model if it
// is missing, writing progress to w. Hosted backends are always ready.
func EnsureReady(ctx context.Context, e Engine, model string, w io.Writer) error {
	mm, ok := e.(ModelManager)
	if !ok {
		return nil
	}
	if !mm.IsRunning(ctx) {
		return fmt.Errorf("%s is not running; start it or set llm.provider to a hosted backend", e.Name())
	}
	if model == "" || mm.HasModel(ctx, model) {
		return nil
	}

	fmt.Fprintf(w, "model %s: pulling...\n", model)
	err := mm.PullModel(ctx, model, func(p PullProgress) {
		if p.Total > 0 {
			fmt.Fprintf(w, "  %s %.0f%%\n", p.Status, float64(p.Completed)/float64(p.Total)*100)
		} else {
			fmt.Fprintf(w, "  %s\n", p.Status)
		}
	})
	if err != nil {
		return fmt.Errorf("pulling model %s: %w", model, err)
	}
	fmt.Fprintf(w, "model %s: ready\n", model)
	return nil
}
