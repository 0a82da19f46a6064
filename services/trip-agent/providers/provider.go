package providers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

var (
	// ErrUnavailable means every configured backend for a capability failed.
	ErrUnavailable = errors.New("provider unavailable")
	// ErrUnsupportedCurrency means a backend answered but does not know the
	// requested currency code.
	ErrUnsupportedCurrency = errors.New("unsupported currency")
)

// Query carries the capability-specific parameters of a fetch. Backends read
// only the fields their capability uses.
type Query struct {
	City     string
	Category string
	Limit    int
	Days     int
	From     string
	To       string
}

// Result is the outcome of a chain fetch. Degraded marks a success obtained
// from a fallback backend rather than the first configured one.
type Result struct {
	SourceUsed string `json:"source_used"`
	Degraded   bool   `json:"degraded"`
	Data       any    `json:"data"`
}

// Backend is one concrete external data source for a capability.
type Backend interface {
	Name() string
	Fetch(ctx context.Context, q Query) (any, error)
}

// Chain tries backends in priority order and stops at the first success.
// A fallback success is never retried against the primary.
type Chain struct {
	Capability string
	Backends   []Backend
}

func NewChain(capability string, backends ...Backend) *Chain {
	return &Chain{Capability: capability, Backends: backends}
}

// Fetch attempts each backend in order. Any error from a backend (transport,
// timeout, empty or invalid response) moves on to the next one. When all
// backends fail the joined causes are wrapped in ErrUnavailable.
func (c *Chain) Fetch(ctx context.Context, q Query) (Result, error) {
	if len(c.Backends) == 0 {
		return Result{}, fmt.Errorf("%w: capability %s has no backends configured", ErrUnavailable, c.Capability)
	}

	var failures []error
	for i, backend := range c.Backends {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		start := time.Now()
		data, err := backend.Fetch(ctx, q)
		if err != nil {
			log.Printf("[Provider] capability=%s backend=%s status=error duration=%s err=%v",
				c.Capability, backend.Name(), time.Since(start), err)
			// An unsupported code is an authoritative answer, not an outage,
			// so the remaining backends are not tried.
			if errors.Is(err, ErrUnsupportedCurrency) {
				return Result{}, fmt.Errorf("%s: %w", backend.Name(), err)
			}
			failures = append(failures, fmt.Errorf("%s: %w", backend.Name(), err))
			continue
		}

		degraded := i > 0
		log.Printf("[Provider] capability=%s backend=%s status=ok duration=%s degraded=%t",
			c.Capability, backend.Name(), time.Since(start), degraded)
		return Result{SourceUsed: backend.Name(), Degraded: degraded, Data: data}, nil
	}

	return Result{}, fmt.Errorf("%w: capability %s: %w", ErrUnavailable, c.Capability, errors.Join(failures...))
}
