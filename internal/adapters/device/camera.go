package device

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pion/mediadevices/pkg/prop"
	"github.com/pion/rtp"
	"github.com/pion/rtp/codecs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/domain"
)

var (
	ErrUnknownDevice = errors.New("unknown device")
	ErrNotStarted    = errors.New("capture not started")
)

const (
	rtpMTU         = 1200
	vp8PayloadType = 96
	videoClockRate = 90000
)

// FrameSink receives the packetized camera stream, usually the transport's
// local participant.
type FrameSink interface {
	WriteRTP(kind domain.TrackKind, pkt *rtp.Packet) error
}

type CameraConfig struct {
	PhotoDir string
	Sink     FrameSink
}

// VirtualCamera is a capture device that emits a synthetic test pattern at
// the negotiated frame rate and writes generated JPEG stills.
type VirtualCamera struct {
	devices *Provider
	cfg     CameraConfig

	mu      sync.Mutex
	running *stream
	frames  uint64
}

type stream struct {
	deviceID string
	width    int
	height   int
	fps      float64
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewVirtualCamera(devices *Provider, cfg CameraConfig) *VirtualCamera {
	if cfg.PhotoDir == "" {
		cfg.PhotoDir = os.TempDir()
	}
	return &VirtualCamera{devices: devices, cfg: cfg}
}

// Start (re)opens the device with the given constraints.
func (c *VirtualCamera) Start(ctx context.Context, deviceID string, constraints prop.Media) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, ok := c.devices.Lookup(deviceID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDevice, deviceID)
	}
	fps := float64(constraints.FrameRate)
	if fps <= 0 {
		return fmt.Errorf("invalid frame rate %v", constraints.FrameRate)
	}

	_ = c.Stop()

	sctx, cancel := context.WithCancel(context.Background())
	s := &stream{
		deviceID: deviceID,
		width:    constraints.Width,
		height:   constraints.Height,
		fps:      fps,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	c.mu.Lock()
	c.running = s
	c.mu.Unlock()

	logger := log.With().Str("module", "device.camera").Str("device_id", deviceID).Logger()
	logger.Info().
		Int("width", s.width).
		Int("height", s.height).
		Float64("fps", fps).
		Str("frame_format", string(constraints.FrameFormat)).
		Msg("capture started")
	go c.run(sctx, s, logger)
	return nil
}

func (c *VirtualCamera) run(ctx context.Context, s *stream, logger zerolog.Logger) {
	defer close(s.done)
	if c.cfg.Sink == nil {
		<-ctx.Done()
		return
	}

	interval := time.Duration(float64(time.Second) / s.fps)
	samples := uint32(videoClockRate / s.fps)
	packetizer := rtp.NewPacketizer(rtpMTU, vp8PayloadType, uuid.New().ID(), &codecs.VP8Payloader{}, rtp.NewRandomSequencer(), videoClockRate)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	var frame uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		frame++
		for _, pkt := range packetizer.Packetize(pattern(frame), samples) {
			if err := c.cfg.Sink.WriteRTP(domain.TrackCamera, pkt); err != nil {
				logger.Debug().Err(err).Msg("write frame")
				break
			}
		}
		c.mu.Lock()
		c.frames++
		c.mu.Unlock()
	}
}

// pattern is a small deterministic payload that changes every frame.
func pattern(n uint64) []byte {
	buf := make([]byte, 160)
	for i := range buf {
		buf[i] = byte(uint64(i) + n)
	}
	return buf
}

func (c *VirtualCamera) Stop() error {
	c.mu.Lock()
	s := c.running
	c.running = nil
	c.mu.Unlock()
	if s == nil {
		return nil
	}
	s.cancel()
	<-s.done
	log.Info().Str("module", "device.camera").Str("device_id", s.deviceID).Msg("capture stopped")
	return nil
}

// Frames reports how many frames were produced since creation.
func (c *VirtualCamera) Frames() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}

// TakePhoto writes a still at the running resolution into the photo dir.
// Once started it runs to completion regardless of ctx.
func (c *VirtualCamera) TakePhoto(ctx context.Context, opts domain.PhotoOptions) (domain.CapturedMedia, error) {
	c.mu.Lock()
	s := c.running
	c.mu.Unlock()
	if s == nil {
		return domain.CapturedMedia{}, ErrNotStarted
	}

	img := image.NewGray(image.Rect(0, 0, s.width, s.height))
	shade := uint8(96)
	if opts.Flash == domain.FlashOn {
		shade = 224
	}
	for y := range s.height {
		for x := range s.width {
			img.SetGray(x, y, color.Gray{Y: shade ^ uint8((x/32+y/32)%2*16)})
		}
	}

	quality := 60
	switch opts.QualityPriority {
	case domain.QualityBalanced:
		quality = 80
	case domain.QualityQuality:
		quality = 95
	}

	if err := os.MkdirAll(c.cfg.PhotoDir, 0o755); err != nil {
		return domain.CapturedMedia{}, fmt.Errorf("photo dir: %w", err)
	}
	path := filepath.Join(c.cfg.PhotoDir, uuid.NewString()+".jpg")
	f, err := os.Create(path)
	if err != nil {
		return domain.CapturedMedia{}, fmt.Errorf("create photo: %w", err)
	}
	defer f.Close()
	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: quality}); err != nil {
		return domain.CapturedMedia{}, fmt.Errorf("encode photo: %w", err)
	}

	log.Info().
		Str("module", "device.camera").
		Str("path", path).
		Str("flash", string(opts.Flash)).
		Str("quality", string(opts.QualityPriority)).
		Msg("photo captured")
	return domain.CapturedMedia{Path: path, Width: s.width, Height: s.height}, nil
}
