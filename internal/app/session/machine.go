// Package session drives the room connection lifecycle and reconciles local
// track publication against user intent.
package session

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/dkeye/Meet/internal/app/notify"
	"github.com/dkeye/Meet/internal/app/roster"
	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

const DefaultTeardownTimeout = 5 * time.Second

// Snapshot is an immutable view of the machine handed to readers.
type Snapshot struct {
	State        domain.SessionState       `json:"state"`
	RoomURL      string                    `json:"room_url,omitempty"`
	Reconnecting bool                      `json:"reconnecting"`
	Intents      map[domain.TrackKind]bool `json:"intents"`
	Published    map[domain.TrackKind]bool `json:"published"`
	Participants []domain.Participant      `json:"participants"`
	Error        string                    `json:"error,omitempty"`
	ErrorKind    domain.ErrorKind          `json:"error_kind,omitempty"`
}

type Config struct {
	Connect core.ConnectOptions
	// Audio is optional; started before connect and stopped on leave.
	Audio core.AudioSession
	// Intents seeds the desired state of each kind. Screen is never seeded.
	Intents         map[domain.TrackKind]bool
	TeardownTimeout time.Duration
}

// Machine owns the single SessionConnection of the process.
// Subscribers are called in mutation order and must not call back into
// mutating operations synchronously.
type Machine struct {
	transport core.Transport
	bridge    core.ScreenShareBridge
	roster    *roster.Roster
	cfg       Config

	mu            sync.Mutex
	conn          domain.SessionConnection
	joining       bool
	leaving       bool
	reconnecting  bool
	lastErr       error
	connectCancel context.CancelFunc
	joinDone      chan struct{}
	screenCancel  context.CancelFunc
	intents       map[domain.TrackKind]bool
	published     map[domain.TrackKind]bool

	// one per kind; serializes publish and unpublish of that kind
	locks map[domain.TrackKind]*semaphore.Weighted

	emitMu sync.Mutex
	hub    notify.Hub[Snapshot]
}

func New(t core.Transport, bridge core.ScreenShareBridge, cfg Config) *Machine {
	if cfg.TeardownTimeout <= 0 {
		cfg.TeardownTimeout = DefaultTeardownTimeout
	}
	m := &Machine{
		transport: t,
		bridge:    bridge,
		roster:    roster.New(),
		cfg:       cfg,
		conn:      domain.SessionConnection{State: domain.SessionIdle},
		intents:   make(map[domain.TrackKind]bool),
		published: make(map[domain.TrackKind]bool),
		locks:     make(map[domain.TrackKind]*semaphore.Weighted),
	}
	for _, k := range domain.TrackKinds {
		m.intents[k] = cfg.Intents[k] && k != domain.TrackScreen
		m.published[k] = false
		m.locks[k] = semaphore.NewWeighted(1)
	}
	t.OnEvent(m.handleEvent)
	return m
}

// Join connects to the room. Valid from Idle, Disconnected and Failed; a
// second join or a join during leave is rejected immediately.
func (m *Machine) Join(ctx context.Context, url, token string) error {
	m.mu.Lock()
	if m.joining || m.leaving {
		m.mu.Unlock()
		return fmt.Errorf("join: %w", domain.ErrBusy)
	}
	if !m.conn.State.CanJoin() {
		st := m.conn.State
		m.mu.Unlock()
		return fmt.Errorf("join from %s: %w", st, domain.ErrInvalidState)
	}
	cctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.joining = true
	m.connectCancel = cancel
	m.joinDone = done
	m.conn = domain.SessionConnection{State: domain.SessionConnecting, RoomURL: url, AuthToken: token}
	m.lastErr = nil
	m.reconnecting = false
	m.roster.Reset()
	m.roster.SetLive(false)
	m.commitLocked()

	log.Info().Str("module", "app.session").Str("room", url).Msg("joining")

	if m.cfg.Audio != nil {
		if err := m.cfg.Audio.Start(cctx); err != nil {
			log.Warn().Str("module", "app.session").Err(err).Msg("audio session start failed")
		}
	}
	err := m.transport.Connect(cctx, url, token, m.cfg.Connect)
	cancel()

	m.mu.Lock()
	m.joining = false
	m.connectCancel = nil
	if m.conn.State != domain.SessionConnecting {
		// leave took over; it owns teardown and the final state
		m.mu.Unlock()
		close(done)
		log.Info().Str("module", "app.session").Str("room", url).Msg("join preempted by leave")
		return fmt.Errorf("join: preempted by leave: %w", domain.ErrConnectionFailed)
	}
	if err != nil {
		werr := fmt.Errorf("join %s: %w: %w", url, domain.ErrConnectionFailed, err)
		m.conn.State = domain.SessionFailed
		m.lastErr = werr
		m.commitLocked()
		close(done)
		m.stopAudio()
		log.Warn().Str("module", "app.session").Str("room", url).Err(err).Msg("join failed")
		return werr
	}

	identity := m.transport.LocalParticipant().Identity()
	if local, perr := domain.NewParticipant(identity, "", true); perr == nil {
		m.roster.SetLocal(local)
	} else {
		log.Warn().Str("module", "app.session").Err(perr).Msg("local participant not added")
	}
	m.conn.State = domain.SessionConnected
	m.roster.SetLive(true)
	m.commitLocked()
	close(done)
	log.Info().Str("module", "app.session").Str("room", url).Str("identity", string(identity)).Msg("connected")

	for _, k := range domain.TrackKinds {
		if k == domain.TrackScreen {
			continue
		}
		if err := m.apply(ctx, k); err != nil {
			log.Warn().Str("module", "app.session").Str("kind", string(k)).Err(err).Msg("initial publish failed")
		}
	}
	return nil
}

// SetTrackIntent records the desired state of kind and applies the diff.
// Calls for the same kind run one at a time; the latest intent wins.
func (m *Machine) SetTrackIntent(ctx context.Context, kind domain.TrackKind, enabled bool) error {
	m.mu.Lock()
	if m.conn.State != domain.SessionConnected {
		st := m.conn.State
		m.mu.Unlock()
		return fmt.Errorf("set %s intent in %s: %w", kind, st, domain.ErrInvalidState)
	}
	if m.intents[kind] == enabled {
		m.mu.Unlock()
	} else {
		m.intents[kind] = enabled
		if kind == domain.TrackScreen && !enabled && m.screenCancel != nil {
			m.screenCancel()
		}
		m.commitLocked()
	}
	return m.apply(ctx, kind)
}

// apply brings the actual state of kind in line with its intent. The holder
// of the kind's lock keeps applying until no newer intent is left, so a
// caller that gives up waiting still has its intent applied. The lock is
// released under m.mu so an intent recorded after the last check cannot be
// left behind.
func (m *Machine) apply(ctx context.Context, kind domain.TrackKind) error {
	sem := m.locks[kind]
	if err := sem.Acquire(ctx, 1); err != nil {
		m.mu.Lock()
		if !sem.TryAcquire(1) {
			// the current holder picks up the recorded intent
			m.mu.Unlock()
			return fmt.Errorf("apply %s: %w", kind, err)
		}
		// nobody is applying; drop the intent the caller abandoned
		changed := m.intents[kind] != m.published[kind]
		m.intents[kind] = m.published[kind]
		sem.Release(1)
		if changed {
			m.commitLocked()
		} else {
			m.mu.Unlock()
		}
		return fmt.Errorf("apply %s: %w", kind, err)
	}

	lp := m.transport.LocalParticipant()
	for {
		m.mu.Lock()
		want, have := m.intents[kind], m.published[kind]
		if m.conn.State != domain.SessionConnected || want == have {
			sem.Release(1)
			m.mu.Unlock()
			return nil
		}
		m.mu.Unlock()

		if kind == domain.TrackScreen && want {
			if err := m.startScreen(ctx); err != nil {
				sem.Release(1)
				return err
			}
			continue
		}

		err := setEnabled(ctx, lp, kind, want)
		m.mu.Lock()
		if err != nil {
			if m.intents[kind] == want {
				m.intents[kind] = have
			}
			sem.Release(1)
			m.commitLocked()
			log.Warn().Str("module", "app.session").Str("kind", string(kind)).Bool("enabled", want).Err(err).Msg("track change failed")
			return fmt.Errorf("set %s %t: %w", kind, want, err)
		}
		m.setPublishedLocked(kind, want)
		m.commitLocked()
		log.Info().Str("module", "app.session").Str("kind", string(kind)).Bool("published", want).Msg("track updated")
	}
}

// startScreen runs the platform pre-capture step. A cancelled or failed step
// reverts the screen intent; cancellation is not reported as an error.
func (m *Machine) startScreen(ctx context.Context) error {
	sctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m.mu.Lock()
	if m.conn.State != domain.SessionConnected || !m.intents[domain.TrackScreen] {
		// leave or a newer intent got here first
		m.intents[domain.TrackScreen] = false
		m.commitLocked()
		return nil
	}
	m.screenCancel = cancel
	m.mu.Unlock()

	lp := m.transport.LocalParticipant()
	res, err := m.bridge.StartScreenShare(sctx, func(ectx context.Context) error {
		m.mu.Lock()
		ok := m.conn.State == domain.SessionConnected && m.intents[domain.TrackScreen]
		m.mu.Unlock()
		if !ok {
			return domain.ErrScreenShareCancelled
		}
		return lp.SetScreenShareEnabled(ectx, true)
	})

	m.mu.Lock()
	m.screenCancel = nil
	if err == nil && res == domain.ScreenShareStarted {
		m.setPublishedLocked(domain.TrackScreen, true)
		m.commitLocked()
		log.Info().Str("module", "app.session").Msg("screen share started")
		return nil
	}
	m.intents[domain.TrackScreen] = false
	m.commitLocked()

	if err == nil || errors.Is(err, domain.ErrScreenShareCancelled) || errors.Is(err, context.Canceled) {
		log.Info().Str("module", "app.session").Msg("screen share cancelled")
		return nil
	}
	log.Warn().Str("module", "app.session").Err(err).Msg("screen share failed")
	return fmt.Errorf("start screen share: %w", err)
}

// Leave tears the session down. Always ends in Disconnected; teardown
// failures are logged.
func (m *Machine) Leave(ctx context.Context) error {
	m.mu.Lock()
	if m.leaving {
		m.mu.Unlock()
		return fmt.Errorf("leave: %w", domain.ErrBusy)
	}
	if !m.conn.State.CanLeave() {
		st := m.conn.State
		m.mu.Unlock()
		return fmt.Errorf("leave from %s: %w", st, domain.ErrInvalidState)
	}
	m.leaving = true
	m.conn.State = domain.SessionDisconnecting
	m.reconnecting = false
	m.roster.SetLive(false)
	connectCancel, done, screenCancel := m.connectCancel, m.joinDone, m.screenCancel
	url := m.conn.RoomURL
	m.commitLocked()

	log.Info().Str("module", "app.session").Str("room", url).Msg("leaving")

	if connectCancel != nil {
		connectCancel()
	}
	if screenCancel != nil {
		screenCancel()
	}
	if done != nil {
		<-done
	}

	tctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.cfg.TeardownTimeout)
	defer cancel()

	// wait out in-flight per-kind work; fixed order, apply holds at most one
	for _, k := range domain.TrackKinds {
		// cannot fail: the context is never cancelled
		m.locks[k].Acquire(context.WithoutCancel(ctx), 1)
	}

	m.mu.Lock()
	var pub []domain.TrackKind
	for _, k := range domain.TrackKinds {
		if m.published[k] {
			pub = append(pub, k)
		}
	}
	m.mu.Unlock()

	lp := m.transport.LocalParticipant()
	var g errgroup.Group
	for _, k := range pub {
		g.Go(func() error {
			return setEnabled(tctx, lp, k, false)
		})
	}
	if err := g.Wait(); err != nil {
		log.Warn().Str("module", "app.session").Err(err).Msg("unpublish failed")
	}
	if err := m.transport.Disconnect(tctx); err != nil {
		log.Warn().Str("module", "app.session").Err(err).Msg("disconnect failed")
	}
	m.stopAudio()

	m.mu.Lock()
	for _, k := range domain.TrackKinds {
		m.published[k] = false
	}
	m.intents[domain.TrackScreen] = false
	m.conn = domain.SessionConnection{State: domain.SessionDisconnected, RoomURL: url}
	m.leaving = false
	m.joinDone = nil
	m.roster.Reset()
	m.roster.SetLive(false)
	for _, k := range domain.TrackKinds {
		m.locks[k].Release(1)
	}
	m.commitLocked()

	log.Info().Str("module", "app.session").Str("room", url).Msg("disconnected")
	return nil
}

func (m *Machine) handleEvent(ev core.Event) {
	m.mu.Lock()
	if !m.conn.State.AcceptsEvents() {
		m.mu.Unlock()
		log.Debug().Str("module", "app.session").Str("event", string(ev.Type)).Msg("event ignored")
		return
	}
	switch ev.Type {
	case core.EventDisconnected:
		if m.conn.State != domain.SessionConnected {
			// Connect reports its own failure
			m.mu.Unlock()
			return
		}
		m.conn.State = domain.SessionFailed
		m.lastErr = fmt.Errorf("transport: %w: %v", domain.ErrConnectionFailed, ev.Err)
		m.reconnecting = false
		for _, k := range domain.TrackKinds {
			m.published[k] = false
		}
		m.intents[domain.TrackScreen] = false
		m.roster.SetLive(false)
		if m.screenCancel != nil {
			m.screenCancel()
		}
		m.commitLocked()
		log.Warn().Str("module", "app.session").AnErr("cause", ev.Err).Msg("session failed")
	case core.EventReconnecting, core.EventReconnected:
		m.reconnecting = ev.Type == core.EventReconnecting
		m.commitLocked()
	default:
		if m.roster.Apply(ev) {
			m.commitLocked()
			return
		}
		m.mu.Unlock()
	}
}

func setEnabled(ctx context.Context, lp core.LocalParticipant, kind domain.TrackKind, enabled bool) error {
	switch kind {
	case domain.TrackMicrophone:
		return lp.SetMicrophoneEnabled(ctx, enabled)
	case domain.TrackCamera:
		return lp.SetCameraEnabled(ctx, enabled)
	case domain.TrackScreen:
		return lp.SetScreenShareEnabled(ctx, enabled)
	}
	return fmt.Errorf("track kind %q: %w", kind, domain.ErrNotSupported)
}

func (m *Machine) setPublishedLocked(kind domain.TrackKind, published bool) {
	m.published[kind] = published
	m.roster.SetLocalTrack(kind, published)
}

func (m *Machine) stopAudio() {
	if m.cfg.Audio == nil {
		return
	}
	if err := m.cfg.Audio.Stop(); err != nil {
		log.Warn().Str("module", "app.session").Err(err).Msg("audio session stop failed")
	}
}

// Snapshot returns the current state; safe from any goroutine.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Machine) snapshotLocked() Snapshot {
	s := Snapshot{
		State:        m.conn.State,
		RoomURL:      m.conn.RoomURL,
		Reconnecting: m.reconnecting,
		Intents:      maps.Clone(m.intents),
		Published:    maps.Clone(m.published),
		Participants: m.roster.Snapshot(),
	}
	if m.lastErr != nil && m.conn.State == domain.SessionFailed {
		s.Error = m.lastErr.Error()
		s.ErrorKind = domain.KindOf(m.lastErr)
	}
	return s
}

// Lookup finds a participant by identity.
func (m *Machine) Lookup(id domain.Identity) (domain.Participant, bool) {
	return m.roster.Lookup(id)
}

func (m *Machine) Local() (domain.Participant, bool) {
	return m.roster.Local()
}

// Subscribe registers fn for every change. The returned func unregisters it.
func (m *Machine) Subscribe(fn func(Snapshot)) func() {
	return m.hub.Subscribe(fn)
}

// commitLocked publishes the current state and releases m.mu.
// emitMu is taken before m.mu is released so deliveries keep mutation order.
func (m *Machine) commitLocked() {
	snap := m.snapshotLocked()
	m.emitMu.Lock()
	m.mu.Unlock()
	defer m.emitMu.Unlock()
	m.hub.Publish(snap)
}
