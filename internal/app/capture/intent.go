package capture

import (
	"context"
	"fmt"

	"github.com/dkeye/Meet/internal/app/capability"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog/log"
)

// currentLocked returns the filtered formats of the device facing the
// intent's direction.
func (c *Controller) currentLocked() ([]domain.CaptureFormat, domain.CaptureDevice, bool) {
	dev, ok := capability.DeviceFor(c.devices, c.intent.Facing)
	if !ok {
		return nil, domain.CaptureDevice{}, false
	}
	return capability.FilterPixelFormat(dev.Formats, c.cfg.PixelFormat), dev, true
}

func (c *Controller) capabilitiesLocked(formats []domain.CaptureFormat, dev domain.CaptureDevice, resolved domain.ResolvedCaptureConfig) Capabilities {
	dev = capability.ClampZoom(dev, c.cfg.MaxZoom)
	return Capabilities{
		SupportsHDR:        capability.SupportsHDR(formats),
		Supports60FPS:      capability.Supports60FPS(formats),
		CanToggleNightMode: capability.CanToggleNightMode(formats, c.intent, resolved.FrameRate),
		CanFlipCamera:      capability.CanFlipCamera(c.devices),
		HasFlash:           dev.HasFlash,
		MinZoom:            dev.MinZoom,
		MaxZoom:            dev.MaxZoom,
	}
}

// Capabilities is recomputed from the current intent and enumeration.
func (c *Controller) Capabilities() Capabilities {
	c.mu.Lock()
	defer c.mu.Unlock()
	formats, dev, _ := c.currentLocked()
	return c.capabilitiesLocked(formats, dev, capability.Resolve(formats, c.intent))
}

func (c *Controller) Resolved() domain.ResolvedCaptureConfig {
	c.mu.Lock()
	defer c.mu.Unlock()
	formats, _, _ := c.currentLocked()
	return capability.Resolve(formats, c.intent)
}

func (c *Controller) Intent() domain.CaptureIntent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.intent
}

// UpdateDevices replaces the enumeration and re-applies a running preview.
func (c *Controller) UpdateDevices(ctx context.Context, devices []domain.CaptureDevice) error {
	c.mu.Lock()
	c.devices = append([]domain.CaptureDevice(nil), devices...)
	c.commitLocked()
	log.Debug().Str("module", "app.capture").Int("devices", len(devices)).Msg("device list updated")
	return c.refresh(ctx)
}

func (c *Controller) SetHighFrameRate(ctx context.Context, on bool) error {
	return c.updateIntent(ctx, func(in *domain.CaptureIntent, _ []domain.CaptureFormat, _ domain.CaptureDevice) error {
		in.HighFrameRate = on
		return nil
	})
}

func (c *Controller) SetHDR(ctx context.Context, on bool) error {
	return c.updateIntent(ctx, func(in *domain.CaptureIntent, formats []domain.CaptureFormat, _ domain.CaptureDevice) error {
		if on && !capability.SupportsHDR(formats) {
			return fmt.Errorf("hdr: %w", domain.ErrNotSupported)
		}
		in.HDRRequested = on
		return nil
	})
}

func (c *Controller) SetNightMode(ctx context.Context, on bool) error {
	return c.updateIntent(ctx, func(in *domain.CaptureIntent, formats []domain.CaptureFormat, _ domain.CaptureDevice) error {
		fps := capability.Resolve(formats, *in).FrameRate
		if in.NightModeRequested != on && !capability.CanToggleNightMode(formats, *in, fps) {
			return fmt.Errorf("night mode: %w", domain.ErrNotSupported)
		}
		in.NightModeRequested = on
		return nil
	})
}

func (c *Controller) FlipCamera(ctx context.Context) error {
	c.mu.Lock()
	can := capability.CanFlipCamera(c.devices)
	c.mu.Unlock()
	if !can {
		return fmt.Errorf("flip camera: %w", domain.ErrNotSupported)
	}
	return c.updateIntent(ctx, func(in *domain.CaptureIntent, _ []domain.CaptureFormat, _ domain.CaptureDevice) error {
		if in.Facing == domain.FacingBack {
			in.Facing = domain.FacingFront
		} else {
			in.Facing = domain.FacingBack
		}
		return nil
	})
}

func (c *Controller) ToggleFlash(ctx context.Context) error {
	return c.updateIntent(ctx, func(in *domain.CaptureIntent, _ []domain.CaptureFormat, dev domain.CaptureDevice) error {
		if !dev.HasFlash {
			return fmt.Errorf("flash: %w", domain.ErrNotSupported)
		}
		if in.Flash == domain.FlashOn {
			in.Flash = domain.FlashOff
		} else {
			in.Flash = domain.FlashOn
		}
		return nil
	})
}

// updateIntent applies fn to a copy of the intent and keeps it only when fn
// accepts the change.
func (c *Controller) updateIntent(ctx context.Context, fn func(*domain.CaptureIntent, []domain.CaptureFormat, domain.CaptureDevice) error) error {
	c.mu.Lock()
	formats, dev, _ := c.currentLocked()
	next := c.intent
	if err := fn(&next, formats, dev); err != nil {
		c.mu.Unlock()
		return err
	}
	if next == c.intent {
		c.mu.Unlock()
		return nil
	}
	c.intent = next
	c.commitLocked()
	return c.refresh(ctx)
}

// refresh re-applies a running preview against the latest inputs.
func (c *Controller) refresh(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	c.mu.Lock()
	running := c.state == StatePreviewing && !c.closed
	c.mu.Unlock()
	if !running {
		return nil
	}
	return c.startPreview(ctx)
}
