// Package capture owns the camera session: permission, live preview,
// one-shot photos and the post-processing handoff.
package capture

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dkeye/Meet/internal/app/capability"
	"github.com/dkeye/Meet/internal/app/notify"
	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog/log"
)

type State int

const (
	StateUninitialized State = iota
	StatePermissionPending
	StateReady
	StatePreviewing
	StateError
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StatePermissionPending:
		return "permission_pending"
	case StateReady:
		return "ready"
	case StatePreviewing:
		return "previewing"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *State) UnmarshalText(b []byte) error {
	for st := StateUninitialized; st <= StateError; st++ {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown capture state %q", b)
}

const DefaultHandoffTimeout = 30 * time.Second

type Config struct {
	// PixelFormat keeps only formats with this tag; empty keeps all.
	PixelFormat string
	// MaxZoom caps the reported zoom range; zero leaves it alone.
	MaxZoom        float64
	HandoffTimeout time.Duration
}

// Capabilities drives which toggles the presentation layer offers.
type Capabilities struct {
	SupportsHDR        bool    `json:"supports_hdr"`
	Supports60FPS      bool    `json:"supports_60fps"`
	CanToggleNightMode bool    `json:"can_toggle_night_mode"`
	CanFlipCamera      bool    `json:"can_flip_camera"`
	HasFlash           bool    `json:"has_flash"`
	MinZoom            float64 `json:"min_zoom"`
	MaxZoom            float64 `json:"max_zoom"`
}

type Snapshot struct {
	State        State                        `json:"state"`
	Intent       domain.CaptureIntent         `json:"intent"`
	DeviceID     string                       `json:"device_id,omitempty"`
	Resolved     domain.ResolvedCaptureConfig `json:"resolved"`
	Capabilities Capabilities                 `json:"capabilities"`
	Capturing    bool                         `json:"capturing"`
	Error        string                       `json:"error,omitempty"`
	ErrorKind    domain.ErrorKind             `json:"error_kind,omitempty"`
}

// preview identifies a running device configuration.
type preview struct {
	deviceID    string
	width       int
	height      int
	pixelFormat string
	resolved    domain.ResolvedCaptureConfig
}

// Controller is the single owner of the capture device.
type Controller struct {
	perms  core.PermissionProvider
	device core.CaptureDevice
	post   core.PostProcessor
	cfg    Config

	// opMu serializes device start and stop
	opMu sync.Mutex

	mu      sync.Mutex
	state   State
	intent  domain.CaptureIntent
	devices []domain.CaptureDevice
	active  *preview
	lastErr error
	closed  bool

	capturing atomic.Bool
	inflight  sync.WaitGroup

	emitMu sync.Mutex
	hub    notify.Hub[Snapshot]
}

// New builds a controller; post may be nil when nothing consumes photos.
func New(perms core.PermissionProvider, device core.CaptureDevice, post core.PostProcessor, cfg Config) *Controller {
	if cfg.HandoffTimeout <= 0 {
		cfg.HandoffTimeout = DefaultHandoffTimeout
	}
	return &Controller{
		perms:  perms,
		device: device,
		post:   post,
		cfg:    cfg,
		intent: domain.DefaultCaptureIntent(),
	}
}

// EnsurePermission checks kind and prompts at most once. Blocked
// permissions are never prompted for.
func (c *Controller) EnsurePermission(ctx context.Context, kind domain.PermissionKind) (domain.PermissionResult, error) {
	camera := kind == domain.PermissionCamera
	c.mu.Lock()
	prev := c.state
	if camera && prev == StateUninitialized {
		c.state = StatePermissionPending
		c.commitLocked()
	} else {
		c.mu.Unlock()
	}

	status, err := c.perms.Check(ctx, kind)
	if err == nil && (status == domain.PermissionUndetermined || status == domain.PermissionDenied) {
		log.Info().Str("module", "app.capture").Str("kind", string(kind)).Str("status", string(status)).Msg("requesting permission")
		status, err = c.perms.Request(ctx, kind)
	}
	if err == nil && status != domain.PermissionGranted {
		err = fmt.Errorf("%s permission %s: %w", kind, status, domain.ErrPermissionDenied)
	} else if err != nil {
		err = fmt.Errorf("%s permission: %w: %w", kind, domain.ErrPermissionDenied, err)
	}

	c.mu.Lock()
	if err != nil {
		if camera && c.state == StatePermissionPending {
			c.state = StateUninitialized
		}
		c.commitLocked()
		log.Warn().Str("module", "app.capture").Str("kind", string(kind)).Err(err).Msg("permission denied")
		return domain.PermissionResultDenied, err
	}
	if camera && c.state == StatePermissionPending {
		c.state = StateReady
	}
	c.commitLocked()
	return domain.PermissionResultGranted, nil
}

// StartPreview runs the device with the configuration resolved from the
// current intent. A call with an unchanged configuration is a no-op.
func (c *Controller) StartPreview(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	return c.startPreview(ctx)
}

// startPreview requires opMu.
func (c *Controller) startPreview(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return fmt.Errorf("start preview: controller closed: %w", domain.ErrInvalidState)
	}
	if c.state != StateReady && c.state != StatePreviewing {
		st := c.state
		c.mu.Unlock()
		return fmt.Errorf("start preview in %s: %w", st, domain.ErrInvalidState)
	}
	dev, ok := capability.DeviceFor(c.devices, c.intent.Facing)
	if !ok {
		return c.failLocked(fmt.Errorf("no %s camera: %w", c.intent.Facing, domain.ErrDeviceUnavailable))
	}
	formats := capability.FilterPixelFormat(dev.Formats, c.cfg.PixelFormat)
	resolved := capability.Resolve(formats, c.intent)
	format, ok := capability.SelectFormat(formats, resolved)
	if !ok {
		return c.failLocked(fmt.Errorf("camera %s has no usable format: %w", dev.ID, domain.ErrDeviceUnavailable))
	}
	next := preview{
		deviceID:    dev.ID,
		width:       format.Width,
		height:      format.Height,
		pixelFormat: format.PixelFormat,
		resolved:    resolved,
	}
	if c.state == StatePreviewing && c.active != nil && *c.active == next {
		c.mu.Unlock()
		return nil
	}
	constraints := capability.Constraints(dev, format, resolved)
	c.mu.Unlock()

	if err := c.device.Start(ctx, next.deviceID, constraints); err != nil {
		c.mu.Lock()
		c.active = nil
		return c.failLocked(fmt.Errorf("start camera %s: %w: %w", next.deviceID, domain.ErrDeviceUnavailable, err))
	}

	c.mu.Lock()
	c.state = StatePreviewing
	c.active = &next
	c.lastErr = nil
	c.commitLocked()
	log.Info().Str("module", "app.capture").Str("device", next.deviceID).Int("fps", resolved.FrameRate).
		Bool("hdr", resolved.HDREnabled).Bool("low_light_boost", resolved.LowLightBoostEnabled).Msg("preview started")
	return nil
}

// failLocked moves to Error and releases c.mu.
func (c *Controller) failLocked(err error) error {
	c.state = StateError
	c.lastErr = err
	c.commitLocked()
	log.Error().Str("module", "app.capture").Err(err).Msg("capture device error")
	return err
}

// StopPreview stops the device and goes back to Ready.
func (c *Controller) StopPreview() error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if c.state != StatePreviewing {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	err := c.device.Stop()
	c.mu.Lock()
	c.active = nil
	c.state = StateReady
	c.commitLocked()
	if err != nil {
		log.Warn().Str("module", "app.capture").Err(err).Msg("device stop failed")
	}
	return err
}

// Reinitialize leaves Error; permission must be ensured again.
func (c *Controller) Reinitialize() {
	c.mu.Lock()
	if c.state != StateError {
		c.mu.Unlock()
		return
	}
	c.state = StateUninitialized
	c.active = nil
	c.lastErr = nil
	c.commitLocked()
}

// CapturePhoto takes one photo from the running preview. The device call is
// not cancelled with ctx; if the controller closes meanwhile the result is
// dropped.
func (c *Controller) CapturePhoto(ctx context.Context, opts domain.PhotoOptions) (domain.CapturedMedia, error) {
	c.mu.Lock()
	if c.closed || c.state != StatePreviewing {
		st := c.state
		c.mu.Unlock()
		return domain.CapturedMedia{}, fmt.Errorf("capture photo in %s: no active preview: %w", st, domain.ErrCaptureFailed)
	}
	if !c.capturing.CompareAndSwap(false, true) {
		c.mu.Unlock()
		return domain.CapturedMedia{}, fmt.Errorf("capture photo: device busy: %w", domain.ErrCaptureFailed)
	}
	if opts.Flash == "" {
		opts.Flash = c.intent.Flash
	}
	if opts.QualityPriority == "" {
		opts.QualityPriority = domain.QualitySpeed
	}
	c.inflight.Add(1)
	c.commitLocked()

	media, err := c.device.TakePhoto(context.WithoutCancel(ctx), opts)

	c.mu.Lock()
	c.capturing.Store(false)
	closed := c.closed
	if closed {
		c.mu.Unlock()
	} else {
		c.commitLocked()
	}
	c.inflight.Done()

	if closed {
		log.Info().Str("module", "app.capture").Msg("photo discarded, controller closed")
		return domain.CapturedMedia{}, fmt.Errorf("capture photo: controller closed: %w", domain.ErrCaptureFailed)
	}
	if err != nil {
		log.Warn().Str("module", "app.capture").Err(err).Msg("photo capture failed")
		return domain.CapturedMedia{}, fmt.Errorf("capture photo: %w: %w", domain.ErrCaptureFailed, err)
	}
	log.Info().Str("module", "app.capture").Str("path", media.Path).Msg("photo captured")
	return media, nil
}

// Handoff forwards media to the post-processor in the background. Failures
// are logged and never reach the caller.
func (c *Controller) Handoff(media domain.CapturedMedia) {
	c.mu.Lock()
	if c.closed || c.post == nil {
		c.mu.Unlock()
		log.Debug().Str("module", "app.capture").Str("path", media.Path).Msg("handoff skipped")
		return
	}
	c.inflight.Add(1)
	c.mu.Unlock()

	go func() {
		defer c.inflight.Done()
		ctx, cancel := context.WithTimeout(context.Background(), c.cfg.HandoffTimeout)
		defer cancel()
		if err := c.post.Process(ctx, media.Path); err != nil {
			err = fmt.Errorf("%w: %w", domain.ErrPostProcessingFailed, err)
			log.Warn().Str("module", "app.capture").Str("path", media.Path).Err(err).Msg("post processing failed")
			return
		}
		log.Debug().Str("module", "app.capture").Str("path", media.Path).Msg("post processing done")
	}()
}

// Close waits for in-flight captures and handoffs, then stops the device.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.inflight.Wait()

	c.opMu.Lock()
	defer c.opMu.Unlock()
	c.mu.Lock()
	running := c.state == StatePreviewing
	c.mu.Unlock()

	var err error
	if running {
		err = c.device.Stop()
	}
	c.mu.Lock()
	c.active = nil
	c.state = StateUninitialized
	c.commitLocked()
	log.Info().Str("module", "app.capture").Msg("capture controller closed")
	return err
}

// Subscribe registers fn for every change. The returned func unregisters it.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	return c.hub.Subscribe(fn)
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	formats, dev, _ := c.currentLocked()
	resolved := capability.Resolve(formats, c.intent)
	s := Snapshot{
		State:        c.state,
		Intent:       c.intent,
		Resolved:     resolved,
		Capabilities: c.capabilitiesLocked(formats, dev, resolved),
		Capturing:    c.capturing.Load(),
	}
	if c.active != nil {
		s.DeviceID = c.active.deviceID
	}
	if c.lastErr != nil {
		s.Error = c.lastErr.Error()
		s.ErrorKind = domain.KindOf(c.lastErr)
	}
	return s
}

func (c *Controller) commitLocked() {
	snap := c.snapshotLocked()
	c.emitMu.Lock()
	c.mu.Unlock()
	defer c.emitMu.Unlock()
	c.hub.Publish(snap)
}
