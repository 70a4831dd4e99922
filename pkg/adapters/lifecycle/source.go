// Package lifecycle exposes store channels as lifecycle sources so a
// supervisor can consume note and key events alongside other signals.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/aretw0/bloco/pkg/core"
)

type source[E lifecycle.Event] struct {
	events <-chan E
	out    chan lifecycle.Event
}

// NewSource creates a lifecycle.Source that emits committed store events.
func NewSource(events <-chan core.Event) lifecycle.Source {
	return newSource(events)
}

// NewKeySource creates a lifecycle.Source that emits external storage changes.
func NewKeySource(events <-chan core.KeyEvent) lifecycle.Source {
	return newSource(events)
}

func newSource[E lifecycle.Event](events <-chan E) *source[E] {
	return &source[E]{
		events: events,
		out:    make(chan lifecycle.Event),
	}
}

func (s *source[E]) Events() <-chan lifecycle.Event {
	return s.out
}

// Start forwards events until ctx is done or the upstream channel closes,
// then closes the output channel.
func (s *source[E]) Start(ctx context.Context) error {
	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(s.out)
		for {
			select {
			case <-ctx.Done():
				return nil
			case e, ok := <-s.events:
				if !ok {
					return nil
				}
				select {
				case s.out <- e:
				case <-ctx.Done():
					return nil
				}
			}
		}
	})
	return nil
}
