package providers

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned by the local provider; it signals callers to
// use their deterministic fallback path.
var ErrUnavailable = errors.New("llm: no provider configured")

// LocalProvider is the no-network placeholder used when no API key is
// configured. It never completes anything.
type LocalProvider struct{}

func NewLocalProvider() *LocalProvider { return &LocalProvider{} }

func (l *LocalProvider) Name() string { return "local" }

func (l *LocalProvider) Available() bool { return false }

func (l *LocalProvider) Complete(ctx context.Context, prompt string, deadline time.Duration) (string, error) {
	return "", ErrUnavailable
}
