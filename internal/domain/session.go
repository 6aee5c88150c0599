package domain

import "fmt"

type SessionState int

const (
	SessionIdle SessionState = iota
	SessionConnecting
	SessionConnected
	SessionDisconnecting
	SessionDisconnected
	SessionFailed
)

func (s SessionState) String() string {
	switch s {
	case SessionIdle:
		return "idle"
	case SessionConnecting:
		return "connecting"
	case SessionConnected:
		return "connected"
	case SessionDisconnecting:
		return "disconnecting"
	case SessionDisconnected:
		return "disconnected"
	case SessionFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s SessionState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *SessionState) UnmarshalText(b []byte) error {
	for st := SessionIdle; st <= SessionFailed; st++ {
		if st.String() == string(b) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown session state %q", b)
}

// CanJoin reports whether a fresh join may start from s.
func (s SessionState) CanJoin() bool {
	return s == SessionIdle || s == SessionDisconnected || s == SessionFailed
}

// CanLeave reports whether leave is accepted from s.
func (s SessionState) CanLeave() bool {
	return s == SessionConnecting || s == SessionConnected || s == SessionFailed
}

// AcceptsEvents reports whether transport events still mutate the roster.
func (s SessionState) AcceptsEvents() bool {
	return s == SessionConnecting || s == SessionConnected
}

// SessionConnection is one attempt to join a room.
type SessionConnection struct {
	State     SessionState `json:"state"`
	RoomURL   string       `json:"room_url"`
	AuthToken string       `json:"-"`
}
