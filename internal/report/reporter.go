package report

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var ErrUnknownReporter = errors.New("unknown reporter")

type Kind string

const (
	Email   Kind = "email"
	Console Kind = "console"
)

// Reporter delivers a non-empty digest.
type Reporter interface {
	Name() string
	Report(ctx context.Context, d Digest) error
}

// CaptureReporter keeps the last digest instead of sending it.
type CaptureReporter struct {
	mu   sync.Mutex
	last *Digest
}

func NewCaptureReporter() *CaptureReporter {
	return &CaptureReporter{}
}

func (c *CaptureReporter) Name() string {
	return "capture"
}

func (c *CaptureReporter) Report(_ context.Context, d Digest) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.last = &d
	return nil
}

// Last returns the captured digest, if any.
func (c *CaptureReporter) Last() (Digest, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last == nil {
		return Digest{}, false
	}
	return *c.last, true
}

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case Email, Console:
		return Kind(s), nil
	case "":
		return Email, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownReporter, s)
	}
}
