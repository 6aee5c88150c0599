// Package roster keeps the ordered view of session participants.
package roster

import (
	"slices"
	"sync"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog/log"
)

// Roster is a threadsafe participant set ordered by join.
// Writes come from the session machine only; everyone else reads snapshots.
type Roster struct {
	mu    sync.RWMutex
	order []domain.Identity
	byID  map[domain.Identity]*domain.Participant
	local domain.Identity
	// live is false whenever the owning connection is not Connected
	live bool
}

func New() *Roster {
	return &Roster{byID: make(map[domain.Identity]*domain.Participant)}
}

// Reset drops everybody, the local participant included.
func (r *Roster) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.order = r.order[:0]
	clear(r.byID)
	r.local = ""
}

// SetLocal puts the local participant at the head of the roster, replacing
// any previous local entry. Remote entries keep their order.
func (r *Roster) SetLocal(local *domain.Participant) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.local != "" {
		delete(r.byID, r.local)
		r.order = slices.DeleteFunc(r.order, func(o domain.Identity) bool { return o == r.local })
	}
	p := local.Clone()
	p.IsLocal = true
	if _, ok := r.byID[p.Identity]; ok {
		r.order = slices.DeleteFunc(r.order, func(o domain.Identity) bool { return o == p.Identity })
	}
	r.local = p.Identity
	r.order = slices.Insert(r.order, 0, p.Identity)
	r.byID[p.Identity] = &p
}

func (r *Roster) SetLive(live bool) {
	r.mu.Lock()
	r.live = live
	r.mu.Unlock()
}

// SetLocalTrack records the actual publication state of a local kind.
func (r *Roster) SetLocalTrack(kind domain.TrackKind, published bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[r.local]
	if !ok {
		return
	}
	if !published {
		delete(p.Tracks, kind)
		return
	}
	v := p.Tracks[kind]
	v.Published = true
	v.IsSubscribed = true
	p.Tracks[kind] = v
}

// Apply folds one transport event into the roster and reports whether
// anything visible changed.
func (r *Roster) Apply(ev core.Event) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch ev.Type {
	case core.EventParticipantJoined:
		return r.join(ev.Identity, ev.DisplayName)
	case core.EventParticipantLeft:
		return r.leave(ev.Identity)
	case core.EventTrackPublished, core.EventTrackUnpublished,
		core.EventTrackSubscribed, core.EventTrackUnsubscribed,
		core.EventTrackMuted, core.EventTrackUnmuted:
		return r.track(ev)
	}
	return false
}

func (r *Roster) join(id domain.Identity, name string) bool {
	if p, ok := r.byID[id]; ok {
		if p.DisplayName == name {
			return false
		}
		if err := p.SetDisplayName(name); err != nil {
			log.Warn().Str("module", "app.roster").Str("identity", string(id)).Err(err).Msg("display name rejected")
			return false
		}
		return true
	}
	p, err := domain.NewParticipant(id, name, false)
	if err != nil {
		log.Warn().Str("module", "app.roster").Str("identity", string(id)).Err(err).Msg("participant rejected")
		return false
	}
	r.order = append(r.order, id)
	r.byID[id] = p
	log.Debug().Str("module", "app.roster").Str("identity", string(id)).Int("count", len(r.order)).Msg("participant joined")
	return true
}

func (r *Roster) leave(id domain.Identity) bool {
	if id == r.local {
		return false
	}
	if _, ok := r.byID[id]; !ok {
		return false
	}
	delete(r.byID, id)
	r.order = slices.DeleteFunc(r.order, func(o domain.Identity) bool { return o == id })
	log.Debug().Str("module", "app.roster").Str("identity", string(id)).Int("count", len(r.order)).Msg("participant left")
	return true
}

func (r *Roster) track(ev core.Event) bool {
	p, ok := r.byID[ev.Identity]
	if !ok {
		log.Warn().Str("module", "app.roster").Str("identity", string(ev.Identity)).Str("event", string(ev.Type)).Msg("track event for unknown participant")
		return false
	}
	prev, had := p.Tracks[ev.Kind]
	v := prev
	switch ev.Type {
	case core.EventTrackUnpublished:
		delete(p.Tracks, ev.Kind)
		return had
	case core.EventTrackPublished:
		v.Published = true
	case core.EventTrackSubscribed:
		v.Published = true
		v.IsSubscribed = true
	case core.EventTrackUnsubscribed:
		v.IsSubscribed = false
	case core.EventTrackMuted:
		v.IsMuted = true
	case core.EventTrackUnmuted:
		v.IsMuted = false
	}
	p.Tracks[ev.Kind] = v
	return !had || v != prev
}

func (r *Roster) view(p *domain.Participant) domain.Participant {
	out := p.Clone()
	if !r.live {
		for k, v := range out.Tracks {
			v.IsSubscribed = false
			out.Tracks[k] = v
		}
	}
	return out
}

func (r *Roster) Lookup(id domain.Identity) (domain.Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return domain.Participant{}, false
	}
	return r.view(p), true
}

func (r *Roster) Local() (domain.Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[r.local]
	if !ok {
		return domain.Participant{}, false
	}
	return r.view(p), true
}

func (r *Roster) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Snapshot returns deep copies in join order.
func (r *Roster) Snapshot() []domain.Participant {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Participant, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.view(r.byID[id]))
	}
	return out
}
