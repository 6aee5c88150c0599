package http

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"
)

var (
	ErrPickerBusy      = errors.New("picker already shown")
	ErrNoPendingPicker = errors.New("no picker pending")
)

// PendingPicker is the capture picker of the daemon: Show parks until the
// presentation layer answers through the control API.
type PendingPicker struct {
	mu      sync.Mutex
	pending chan bool
}

func NewPendingPicker() *PendingPicker { return &PendingPicker{} }

func (p *PendingPicker) Show(ctx context.Context) (bool, error) {
	p.mu.Lock()
	if p.pending != nil {
		p.mu.Unlock()
		return false, ErrPickerBusy
	}
	answer := make(chan bool, 1)
	p.pending = answer
	p.mu.Unlock()
	log.Info().Str("module", "adapters.http").Msg("screen share picker shown")

	defer func() {
		p.mu.Lock()
		if p.pending == answer {
			p.pending = nil
		}
		p.mu.Unlock()
	}()

	select {
	case ok := <-answer:
		return ok, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

// Answer resolves the pending picker.
func (p *PendingPicker) Answer(confirm bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == nil {
		return ErrNoPendingPicker
	}
	p.pending <- confirm
	p.pending = nil
	return nil
}

func (p *PendingPicker) Pending() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pending != nil
}
