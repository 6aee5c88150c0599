// Package device provides config-backed camera enumeration, permission state
// and a virtual capture device for hosts without camera hardware.
package device

import (
	"context"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/domain"
)

// Provider serves a static device list that can be replaced at runtime.
type Provider struct {
	mu       sync.RWMutex
	devices  []domain.CaptureDevice
	onChange []func([]domain.CaptureDevice)
}

func NewProvider(devices []domain.CaptureDevice) *Provider {
	return &Provider{devices: slices.Clone(devices)}
}

func (p *Provider) Devices(ctx context.Context) ([]domain.CaptureDevice, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.devices), nil
}

func (p *Provider) OnChange(fn func([]domain.CaptureDevice)) {
	p.mu.Lock()
	p.onChange = append(p.onChange, fn)
	p.mu.Unlock()
}

// Replace swaps the device list and notifies every OnChange callback.
func (p *Provider) Replace(devices []domain.CaptureDevice) {
	p.mu.Lock()
	p.devices = slices.Clone(devices)
	fns := slices.Clone(p.onChange)
	p.mu.Unlock()

	log.Info().Str("module", "device").Int("devices", len(devices)).Msg("device list changed")
	for _, fn := range fns {
		fn(slices.Clone(devices))
	}
}

// Lookup returns the device with id.
func (p *Provider) Lookup(id string) (domain.CaptureDevice, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	i := slices.IndexFunc(p.devices, func(d domain.CaptureDevice) bool { return d.ID == id })
	if i < 0 {
		return domain.CaptureDevice{}, false
	}
	return p.devices[i], true
}
