// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"maps"
)

const MaxDisplayNameLen = 64

var (
	ErrDisplayNameTooLong = errors.New("display name too long")
	ErrIdentityEmpty      = errors.New("identity empty")
)

type Identity string

// TrackPublicationView is what the presentation layer sees of one track kind.
type TrackPublicationView struct {
	Published    bool `json:"published"`
	IsSubscribed bool `json:"is_subscribed"`
	IsMuted      bool `json:"is_muted"`
}

// Visible reports whether a video view should render the track.
func (v TrackPublicationView) Visible() bool {
	return v.IsSubscribed && !v.IsMuted
}

// Participant is a party of the session, local or remote.
// No transport or lifecycle logic here.
type Participant struct {
	Identity    Identity                           `json:"identity"`
	DisplayName string                             `json:"display_name,omitempty"`
	IsLocal     bool                               `json:"is_local"`
	Tracks      map[TrackKind]TrackPublicationView `json:"tracks"`
}

func NewParticipant(id Identity, displayName string, local bool) (*Participant, error) {
	if id == "" {
		return nil, ErrIdentityEmpty
	}
	p := &Participant{
		Identity: id,
		IsLocal:  local,
		Tracks:   make(map[TrackKind]TrackPublicationView),
	}
	if err := p.SetDisplayName(displayName); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Participant) SetDisplayName(name string) error {
	if len(name) > MaxDisplayNameLen {
		return ErrDisplayNameTooLong
	}
	p.DisplayName = name
	return nil
}

// Name falls back to the identity when no display name was announced.
func (p *Participant) Name() string {
	if p.DisplayName != "" {
		return p.DisplayName
	}
	return string(p.Identity)
}

// Track returns the view for kind; a zero view when nothing was published.
func (p *Participant) Track(kind TrackKind) TrackPublicationView {
	return p.Tracks[kind]
}

// VideoTrack picks camera, then screen, like the participant tile does.
func (p *Participant) VideoTrack() (TrackKind, TrackPublicationView, bool) {
	if v, ok := p.Tracks[TrackCamera]; ok && v.Published {
		return TrackCamera, v, true
	}
	if v, ok := p.Tracks[TrackScreen]; ok && v.Published {
		return TrackScreen, v, true
	}
	return "", TrackPublicationView{}, false
}

func (p *Participant) Clone() Participant {
	out := *p
	out.Tracks = maps.Clone(p.Tracks)
	if out.Tracks == nil {
		out.Tracks = make(map[TrackKind]TrackPublicationView)
	}
	return out
}
