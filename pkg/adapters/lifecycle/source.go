// Package lifecycle exposes catalog change events as a lifecycle.Source.
package lifecycle

import (
	"context"

	"github.com/aretw0/lifecycle"

	"github.com/YaroslavMizgirev/shelf/pkg/core"
)

type catalogSource struct {
	events <-chan core.Event
	out    chan lifecycle.Event
}

// NewSource wraps the channel returned by core.Service.Watch.
func NewSource(events <-chan core.Event) lifecycle.Source {
	return &catalogSource{
		events: events,
		out:    make(chan lifecycle.Event),
	}
}

func (s *catalogSource) Events() <-chan lifecycle.Event {
	return s.out
}

// Start forwards events until ctx ends or the catalog channel closes.
func (s *catalogSource) Start(ctx context.Context) error {
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
