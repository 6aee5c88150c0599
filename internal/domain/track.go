package domain

import "fmt"

type TrackKind string

const (
	TrackMicrophone TrackKind = "microphone"
	TrackCamera     TrackKind = "camera"
	TrackScreen     TrackKind = "screen"
)

// TrackKinds lists every kind in reconciliation order.
var TrackKinds = []TrackKind{TrackMicrophone, TrackCamera, TrackScreen}

func ParseTrackKind(s string) (TrackKind, error) {
	switch k := TrackKind(s); k {
	case TrackMicrophone, TrackCamera, TrackScreen:
		return k, nil
	}
	return "", fmt.Errorf("unknown track kind %q", s)
}

// IsVideo reports whether the kind carries video frames.
func (k TrackKind) IsVideo() bool {
	return k == TrackCamera || k == TrackScreen
}

// TrackIntent is the desired publication state of one kind.
type TrackIntent struct {
	Enabled bool `json:"enabled"`
}
