package handler

import (
	"context"
	"sync"
)

// Pending tracks an export that is still being encoded and written.
type Pending struct {
	done chan struct{}
	once sync.Once
	err  error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func (p *Pending) complete(err error) {
	p.once.Do(func() {
		p.err = err
		close(p.done)
	})
}

// Done is closed once the export has finished, successfully or not.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Err returns the export's outcome. It is nil until Done is closed.
func (p *Pending) Err() error {
	select {
	case <-p.done:
		return p.err
	default:
		return nil
	}
}

// Wait blocks until the export finishes or ctx ends, whichever comes first.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
