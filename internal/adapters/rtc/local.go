package rtc

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/domain"
)

var ErrNotConnected = errors.New("not connected")

// LocalParticipant publishes local tracks over the session's peer.
type LocalParticipant struct {
	t *Transport

	mu       sync.Mutex
	identity domain.Identity
	tracks   map[domain.TrackKind]*localTrack
}

func newLocalParticipant(t *Transport) *LocalParticipant {
	return &LocalParticipant{t: t, tracks: make(map[domain.TrackKind]*localTrack)}
}

func (lp *LocalParticipant) Identity() domain.Identity {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	return lp.identity
}

func (lp *LocalParticipant) setIdentity(id domain.Identity) {
	lp.mu.Lock()
	lp.identity = id
	lp.mu.Unlock()
}

func (lp *LocalParticipant) SetMicrophoneEnabled(ctx context.Context, enabled bool) error {
	return lp.setEnabled(ctx, domain.TrackMicrophone, enabled)
}

func (lp *LocalParticipant) SetCameraEnabled(ctx context.Context, enabled bool) error {
	return lp.setEnabled(ctx, domain.TrackCamera, enabled)
}

func (lp *LocalParticipant) SetScreenShareEnabled(ctx context.Context, enabled bool) error {
	return lp.setEnabled(ctx, domain.TrackScreen, enabled)
}

// Published reports whether kind currently has a live local track.
func (lp *LocalParticipant) Published(kind domain.TrackKind) bool {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	lt, ok := lp.tracks[kind]
	return ok && lt.State() == trackStateLive
}

func (lp *LocalParticipant) setEnabled(ctx context.Context, kind domain.TrackKind, enabled bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sess := lp.t.current()
	if sess == nil {
		return ErrNotConnected
	}

	lp.mu.Lock()
	defer lp.mu.Unlock()
	lt, ok := lp.tracks[kind]
	if enabled == ok {
		return nil
	}

	if !enabled {
		if err := sess.peer.RemoveSender(lt.Sender); err != nil {
			return fmt.Errorf("remove %s sender: %w", kind, err)
		}
		lt.markRemoved()
		delete(lp.tracks, kind)
		// the sender is gone; the next offer carries the removal either way
		if err := sess.sig.TrySend(envelope{Type: msgUnpublish, Kind: kind, TrackID: lt.Track.ID()}); err != nil {
			log.Warn().Str("module", "rtc.local").Str("kind", string(kind)).Err(err).Msg("unpublish notice not sent")
		}
		log.Info().Str("module", "rtc.local").Str("kind", string(kind)).Msg("track unpublished")
		sess.renegotiate()
		return nil
	}

	track, err := webrtc.NewTrackLocalStaticRTP(
		codecFor(kind),
		fmt.Sprintf("%s-%s", kind, uuid.NewString()),
		string(lp.identity),
	)
	if err != nil {
		return fmt.Errorf("create %s track: %w", kind, err)
	}
	sender, err := sess.peer.AddLocalTrack(track)
	if err != nil {
		return fmt.Errorf("add %s track: %w", kind, err)
	}
	if err := sess.sig.TrySend(envelope{Type: msgPublish, Kind: kind, TrackID: track.ID()}); err != nil {
		if rerr := sess.peer.RemoveSender(sender); rerr != nil {
			log.Warn().Str("module", "rtc.local").Str("kind", string(kind)).Err(rerr).Msg("rollback sender")
		}
		return fmt.Errorf("publish %s: %w", kind, err)
	}
	lp.tracks[kind] = newLocalTrack(kind, track, sender)
	log.Info().Str("module", "rtc.local").Str("kind", string(kind)).Str("track_id", track.ID()).Msg("track published")
	sess.renegotiate()
	return nil
}

// WriteRTP forwards a packet to the local track of kind. Packets for
// unpublished kinds are dropped.
func (lp *LocalParticipant) WriteRTP(kind domain.TrackKind, pkt *rtp.Packet) error {
	lp.mu.Lock()
	lt, ok := lp.tracks[kind]
	lp.mu.Unlock()
	if !ok || lt.State() != trackStateLive {
		return nil
	}
	return lt.Track.WriteRTP(pkt)
}

func (lp *LocalParticipant) reset() {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	for kind, lt := range lp.tracks {
		lt.markRemoved()
		delete(lp.tracks, kind)
	}
	lp.identity = ""
}
