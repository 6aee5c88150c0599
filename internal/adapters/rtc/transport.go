package rtc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
)

var (
	ErrAlreadyConnected = errors.New("already connected")
	ErrJoinRejected     = errors.New("join rejected")
	ErrSessionLost      = errors.New("session lost")
)

const eventBuffer = 256

type Config struct {
	ICEServers []webrtc.ICEServer
}

// Transport implements core.Transport over a websocket signaling channel and
// a single pion peer connection.
type Transport struct {
	cfg   Config
	local *LocalParticipant

	mu   sync.Mutex
	sess *session
	sink func(core.Event)
}

func New(cfg Config) *Transport {
	if cfg.ICEServers == nil {
		cfg.ICEServers = DefaultICEServers()
	}
	t := &Transport{cfg: cfg}
	t.local = newLocalParticipant(t)
	return t
}

func (t *Transport) OnEvent(fn func(core.Event)) {
	t.mu.Lock()
	t.sink = fn
	t.mu.Unlock()
}

func (t *Transport) LocalParticipant() core.LocalParticipant { return t.local }

// Local returns the concrete local participant for media writers.
func (t *Transport) Local() *LocalParticipant { return t.local }

func (t *Transport) current() *session {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sess
}

func (t *Transport) deliver(ev core.Event) {
	t.mu.Lock()
	sink := t.sink
	t.mu.Unlock()
	if sink != nil {
		sink(ev)
	}
}

// Connect dials the signaling server, joins the room and blocks until the
// server confirms or ctx is done.
func (t *Transport) Connect(ctx context.Context, url, token string, opts core.ConnectOptions) error {
	t.mu.Lock()
	if t.sess != nil {
		t.mu.Unlock()
		return ErrAlreadyConnected
	}
	t.mu.Unlock()

	sig, err := dialSignal(ctx, url, token)
	if err != nil {
		return err
	}
	peer, err := NewPeerConnection(t.cfg.ICEServers)
	if err != nil {
		sig.Close()
		return err
	}

	sctx, cancel := context.WithCancel(context.Background())
	s := &session{
		t:      t,
		ctx:    sctx,
		cancel: cancel,
		sig:    sig,
		peer:   peer,
		events: make(chan core.Event, eventBuffer),
		joined: make(chan envelope, 1),
		failed: make(chan error, 1),
		logger: log.With().Str("module", "rtc.transport").Str("url", url).Logger(),
	}
	peer.OnICECandidate(s.sendCandidate)
	peer.OnTrack(s.handleTrack)
	peer.OnFailed(func() { s.lost(errors.New("peer connection failed")) })
	if err := peer.Start(sctx); err != nil {
		s.close()
		return err
	}

	go s.dispatch()
	go s.read()

	if err := sig.TrySend(envelope{
		Type:           msgJoin,
		Simulcast:      opts.Simulcast,
		AdaptiveStream: opts.AdaptiveStream,
	}); err != nil {
		s.close()
		return fmt.Errorf("send join: %w", err)
	}

	var joined envelope
	select {
	case joined = <-s.joined:
	case err := <-s.failed:
		s.close()
		return err
	case <-ctx.Done():
		s.close()
		return ctx.Err()
	}

	t.mu.Lock()
	if s.gone {
		t.mu.Unlock()
		s.close()
		return ErrSessionLost
	}
	t.sess = s
	t.local.setIdentity(joined.Identity)
	t.mu.Unlock()
	s.logger.Info().Str("identity", string(joined.Identity)).Int("participants", len(joined.Participants)).Msg("joined")
	s.renegotiate()

	return nil
}

// Disconnect leaves the room and releases the peer. It is safe on a session
// that never finished joining.
func (t *Transport) Disconnect(ctx context.Context) error {
	t.mu.Lock()
	s := t.sess
	t.sess = nil
	t.mu.Unlock()
	t.local.reset()
	if s == nil {
		return nil
	}
	_ = s.sig.TrySend(envelope{Type: msgLeave})
	done := make(chan struct{})
	go func() {
		s.close()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// session is the state of one joined room.
type session struct {
	t      *Transport
	ctx    context.Context
	cancel context.CancelFunc
	sig    *signalConn
	peer   *PeerConnection
	logger zerolog.Logger

	events chan core.Event
	joined chan envelope
	failed chan error

	// gone is guarded by t.mu.
	gone bool

	// negMu guards the offer/answer exchange. One client offer is in flight
	// at a time; changes made meanwhile set needsOffer and are sent once the
	// answer arrives.
	negMu        sync.Mutex
	offerPending bool
	needsOffer   bool

	isJoined  atomic.Bool
	closing   atomic.Bool
	lostOnce  sync.Once
	closeOnce sync.Once
}

func (s *session) close() {
	s.closeOnce.Do(func() {
		s.closing.Store(true)
		s.cancel()
		s.sig.Close()
		s.peer.Close()
	})
}

// emit queues ev for the dispatcher. Events are dropped once the session is
// closed.
func (s *session) emit(ev core.Event) {
	select {
	case s.events <- ev:
	case <-s.ctx.Done():
	}
}

func (s *session) dispatch() {
	for {
		select {
		case ev := <-s.events:
			s.t.deliver(ev)
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *session) read() {
	err := s.sig.readPump(s.handle)
	if s.closing.Load() {
		return
	}
	s.lost(err)
}

// lost reports an unrecoverable failure once per session.
func (s *session) lost(err error) {
	s.lostOnce.Do(func() {
		if !s.isJoined.Load() {
			select {
			case s.failed <- fmt.Errorf("signaling: %w", err):
			default:
			}
			return
		}
		s.logger.Warn().Err(err).Msg("session lost")
		s.t.mu.Lock()
		s.gone = true
		if s.t.sess == s {
			s.t.sess = nil
		}
		s.t.mu.Unlock()
		s.t.local.reset()
		// delivered directly: the dispatcher stops with the session
		s.t.deliver(core.Event{Type: core.EventDisconnected, Err: err})
		s.close()
	})
}

func (s *session) handle(env envelope) {
	switch env.Type {
	case msgJoined:
		if !s.isJoined.CompareAndSwap(false, true) {
			return
		}
		// participants already in the room, queued ahead of live updates
		for _, p := range env.Participants {
			if p.Identity == env.Identity {
				continue
			}
			s.emit(core.Event{Type: core.EventParticipantJoined, Identity: p.Identity, DisplayName: p.Name})
			for _, tr := range p.Tracks {
				s.emit(core.Event{Type: core.EventTrackPublished, Identity: p.Identity, Kind: tr.Kind})
				if tr.Muted {
					s.emit(core.Event{Type: core.EventTrackMuted, Identity: p.Identity, Kind: tr.Kind})
				}
			}
		}
		s.joined <- env
	case msgError:
		if !s.isJoined.Load() {
			select {
			case s.failed <- fmt.Errorf("%w: %s", ErrJoinRejected, env.Message):
			default:
			}
			return
		}
		s.logger.Warn().Str("message", env.Message).Msg("server error")
	case msgParticipantJoined:
		s.emit(core.Event{Type: core.EventParticipantJoined, Identity: env.Identity, DisplayName: env.Name})
	case msgParticipantLeft:
		s.emit(core.Event{Type: core.EventParticipantLeft, Identity: env.Identity})
	case msgTrackPublished:
		s.emit(core.Event{Type: core.EventTrackPublished, Identity: env.Identity, Kind: env.Kind})
	case msgTrackUnpublished:
		s.emit(core.Event{Type: core.EventTrackUnpublished, Identity: env.Identity, Kind: env.Kind})
	case msgTrackMuted:
		s.emit(core.Event{Type: core.EventTrackMuted, Identity: env.Identity, Kind: env.Kind})
	case msgTrackUnmuted:
		s.emit(core.Event{Type: core.EventTrackUnmuted, Identity: env.Identity, Kind: env.Kind})
	case msgReconnect:
		s.emit(core.Event{Type: core.EventReconnecting})
	case msgReconnected:
		s.emit(core.Event{Type: core.EventReconnected})
	case msgOffer:
		s.negMu.Lock()
		defer s.negMu.Unlock()
		if s.offerPending {
			// the server answers client offers; its own offer waits for that
			s.logger.Warn().Msg("server offer during pending client offer dropped")
			return
		}
		answer, err := s.peer.ApplyOfferAndCreateAnswer(webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: env.SDP})
		if err != nil {
			s.logger.Error().Err(err).Msg("apply offer")
			return
		}
		s.trySend(envelope{Type: msgAnswer, SDP: answer.SDP})
		if s.needsOffer {
			s.offerLocked()
		}
	case msgAnswer:
		s.negMu.Lock()
		defer s.negMu.Unlock()
		if !s.offerPending {
			s.logger.Warn().Msg("answer without pending offer")
			return
		}
		s.offerPending = false
		if err := s.peer.ApplyAnswer(webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: env.SDP}); err != nil {
			s.logger.Error().Err(err).Msg("apply answer")
			if err := s.peer.Rollback(); err != nil {
				s.logger.Error().Err(err).Msg("rollback offer")
			}
		}
		if s.needsOffer {
			s.offerLocked()
		}
	case msgCandidate:
		ci := webrtc.ICECandidateInit{Candidate: env.Candidate, SDPMLineIndex: env.SDPMLineIndex}
		if env.SDPMid != "" {
			mid := env.SDPMid
			ci.SDPMid = &mid
		}
		if err := s.peer.AddICECandidate(ci); err != nil {
			s.logger.Warn().Err(err).Msg("add candidate")
		}
	case msgPing:
		s.trySend(envelope{Type: msgPong})
	default:
		s.logger.Debug().Str("type", env.Type).Msg("unknown message")
	}
}

func (s *session) trySend(env envelope) {
	if err := s.sig.TrySend(env); err != nil {
		s.logger.Warn().Err(err).Str("type", env.Type).Msg("send failed")
	}
}

func (s *session) sendCandidate(ci webrtc.ICECandidateInit) {
	env := envelope{Type: msgCandidate, Candidate: ci.Candidate, SDPMLineIndex: ci.SDPMLineIndex}
	if ci.SDPMid != nil {
		env.SDPMid = *ci.SDPMid
	}
	s.trySend(env)
}

// renegotiate schedules a client offer for the current local track set. With
// an offer already in flight it is sent after that offer's answer.
func (s *session) renegotiate() {
	s.negMu.Lock()
	defer s.negMu.Unlock()
	if s.offerPending {
		s.needsOffer = true
		s.logger.Debug().Msg("offer deferred until answer")
		return
	}
	s.offerLocked()
}

// offerLocked creates and sends one offer. Requires negMu.
func (s *session) offerLocked() {
	s.needsOffer = false
	offer, err := s.peer.CreateOffer()
	if err != nil {
		s.logger.Error().Err(err).Msg("create offer")
		return
	}
	if err := s.sig.TrySend(envelope{Type: msgOffer, SDP: offer.SDP}); err != nil {
		s.logger.Warn().Err(err).Msg("send offer")
		if err := s.peer.Rollback(); err != nil {
			s.logger.Error().Err(err).Msg("rollback offer")
		}
		s.needsOffer = true
		return
	}
	s.offerPending = true
}

// handleTrack reports a remote track as subscribed until its RTP stream ends.
// Track IDs carry the kind as a "<kind>-" prefix and the stream ID is the
// publisher's identity.
func (s *session) handleTrack(ctx context.Context, track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
	id := domain.Identity(track.StreamID())
	kind := remoteKind(track)
	s.emit(core.Event{Type: core.EventTrackSubscribed, Identity: id, Kind: kind})

	go func() {
		for {
			if _, _, err := track.ReadRTP(); err != nil {
				break
			}
		}
		if ctx.Err() == nil {
			s.emit(core.Event{Type: core.EventTrackUnsubscribed, Identity: id, Kind: kind})
		}
	}()
}

func remoteKind(track *webrtc.TrackRemote) domain.TrackKind {
	prefix, _, _ := strings.Cut(track.ID(), "-")
	if kind, err := domain.ParseTrackKind(prefix); err == nil {
		return kind
	}
	if track.Kind() == webrtc.RTPCodecTypeAudio {
		return domain.TrackMicrophone
	}
	return domain.TrackCamera
}
