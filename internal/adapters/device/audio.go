package device

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pion/rtp"
	"github.com/pion/rtp/codecs"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/domain"
)

const (
	opusPayloadType = 111
	opusClockRate   = 48000
	opusFrame       = 20 * time.Millisecond
)

// opusSilence is a single 20 ms Opus silence frame.
var opusSilence = []byte{0xf8, 0xff, 0xfe}

// Audio is the call audio route. While active it feeds silence to the
// microphone track so the remote side keeps a live stream.
type Audio struct {
	perms *Permissions
	sink  FrameSink

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewAudio(perms *Permissions, sink FrameSink) *Audio {
	return &Audio{perms: perms, sink: sink}
}

func (a *Audio) Start(ctx context.Context) error {
	st, err := a.perms.Check(ctx, domain.PermissionMicrophone)
	if err != nil {
		return err
	}
	if st != domain.PermissionGranted {
		return fmt.Errorf("microphone %s: %w", st, domain.ErrPermissionDenied)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		return nil
	}
	actx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.done = make(chan struct{})
	go a.run(actx, a.done)
	log.Info().Str("module", "device.audio").Msg("audio route active")
	return nil
}

func (a *Audio) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	if a.sink == nil {
		<-ctx.Done()
		return
	}
	packetizer := rtp.NewPacketizer(rtpMTU, opusPayloadType, uuid.New().ID(), &codecs.OpusPayloader{}, rtp.NewRandomSequencer(), opusClockRate)
	samples := uint32(opusClockRate * opusFrame / time.Second)

	ticker := time.NewTicker(opusFrame)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		for _, pkt := range packetizer.Packetize(opusSilence, samples) {
			_ = a.sink.WriteRTP(domain.TrackMicrophone, pkt)
		}
	}
}

func (a *Audio) Stop() error {
	a.mu.Lock()
	cancel, done := a.cancel, a.done
	a.cancel, a.done = nil, nil
	a.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	log.Info().Str("module", "device.audio").Msg("audio route released")
	return nil
}

// Active reports whether the route is started.
func (a *Audio) Active() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cancel != nil
}
