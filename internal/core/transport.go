package core

import (
	"context"

	"github.com/dkeye/Meet/internal/domain"
)

// ConnectOptions are passed through to the transport on every connect.
type ConnectOptions struct {
	Simulcast      bool
	AdaptiveStream bool
}

// Transport is the conferencing session library seen by the state machine.
// Exactly one per process; owned by the session machine.
type Transport interface {
	// Connect blocks until the room is joined or ctx is done.
	Connect(ctx context.Context, url, token string, opts ConnectOptions) error
	// Disconnect tears down the session; safe to call on a half-open session.
	Disconnect(ctx context.Context) error
	LocalParticipant() LocalParticipant
	// OnEvent sets the single sink for participant and track events.
	OnEvent(func(Event))
}

// LocalParticipant publishes and unpublishes local tracks.
type LocalParticipant interface {
	Identity() domain.Identity
	SetMicrophoneEnabled(ctx context.Context, enabled bool) error
	SetCameraEnabled(ctx context.Context, enabled bool) error
	SetScreenShareEnabled(ctx context.Context, enabled bool) error
}

type EventType string

const (
	EventParticipantJoined EventType = "participant_joined"
	EventParticipantLeft   EventType = "participant_left"
	EventTrackPublished    EventType = "track_published"
	EventTrackUnpublished  EventType = "track_unpublished"
	EventTrackSubscribed   EventType = "track_subscribed"
	EventTrackUnsubscribed EventType = "track_unsubscribed"
	EventTrackMuted        EventType = "track_muted"
	EventTrackUnmuted      EventType = "track_unmuted"
	EventReconnecting      EventType = "reconnecting"
	EventReconnected       EventType = "reconnected"
	// EventDisconnected reports an unrecoverable transport error.
	EventDisconnected EventType = "disconnected"
)

// Event is one transport notification. Participant fields are empty for
// session-level events.
type Event struct {
	Type        EventType
	Identity    domain.Identity
	DisplayName string
	Kind        domain.TrackKind
	Err         error
}
