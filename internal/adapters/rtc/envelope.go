package rtc

import "github.com/dkeye/Meet/internal/domain"

// signaling message types
const (
	msgJoin        = "join"
	msgJoined      = "joined"
	msgLeave       = "leave"
	msgError       = "error"
	msgOffer       = "offer"
	msgAnswer      = "answer"
	msgCandidate   = "candidate"
	msgPublish     = "publish"
	msgUnpublish   = "unpublish"
	msgPing        = "ping"
	msgPong        = "pong"
	msgReconnect   = "reconnecting"
	msgReconnected = "reconnected"

	msgParticipantJoined = "participant_joined"
	msgParticipantLeft   = "participant_left"
	msgTrackPublished    = "track_published"
	msgTrackUnpublished  = "track_unpublished"
	msgTrackMuted        = "track_muted"
	msgTrackUnmuted      = "track_unmuted"
)

// envelope is the single JSON shape exchanged with the signaling server.
type envelope struct {
	Type           string            `json:"type"`
	Identity       domain.Identity   `json:"identity,omitempty"`
	Name           string            `json:"name,omitempty"`
	Kind           domain.TrackKind  `json:"kind,omitempty"`
	TrackID        string            `json:"track_id,omitempty"`
	SDP            string            `json:"sdp,omitempty"`
	Candidate      string            `json:"candidate,omitempty"`
	SDPMid         string            `json:"sdpMid,omitempty"`
	SDPMLineIndex  *uint16           `json:"sdpMLineIndex,omitempty"`
	Message        string            `json:"message,omitempty"`
	Simulcast      bool              `json:"simulcast,omitempty"`
	AdaptiveStream bool              `json:"adaptive_stream,omitempty"`
	Participants   []participantInfo `json:"participants,omitempty"`
}

type participantInfo struct {
	Identity domain.Identity `json:"identity"`
	Name     string          `json:"name,omitempty"`
	Tracks   []trackInfo     `json:"tracks,omitempty"`
}

type trackInfo struct {
	Kind  domain.TrackKind `json:"kind"`
	Muted bool             `json:"muted,omitempty"`
}
