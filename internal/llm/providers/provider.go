package providers

import (
	"context"
	"time"
)

// Provider is the prompt/completion capability the pipeline consumes. The
// core never speaks a vendor protocol directly; it hands over a prompt and
// a deadline and gets text back.
type Provider interface {
	Name() string
	Available() bool
	Complete(ctx context.Context, prompt string, deadline time.Duration) (string, error)
}
