package roster

import (
	"testing"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
)

func joined(id, name string) core.Event {
	return core.Event{Type: core.EventParticipantJoined, Identity: domain.Identity(id), DisplayName: name}
}

func trackEv(t core.EventType, id string, kind domain.TrackKind) core.Event {
	return core.Event{Type: t, Identity: domain.Identity(id), Kind: kind}
}

func identities(ps []domain.Participant) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, string(p.Identity))
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRoster_OrderStableAcrossTrackEvents(t *testing.T) {
	r := New()
	r.SetLive(true)
	r.Apply(joined("a", "A"))
	r.Apply(joined("b", "B"))
	r.Apply(trackEv(core.EventTrackMuted, "a", domain.TrackMicrophone))
	r.Apply(joined("c", "C"))
	r.Apply(trackEv(core.EventTrackUnmuted, "a", domain.TrackMicrophone))
	r.Apply(trackEv(core.EventTrackMuted, "c", domain.TrackCamera))
	r.Apply(trackEv(core.EventTrackSubscribed, "b", domain.TrackCamera))

	got := identities(r.Snapshot())
	if want := []string{"a", "b", "c"}; !equal(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
}

func TestRoster_JoinKnownIdentityUpdatesInPlace(t *testing.T) {
	r := New()
	r.Apply(joined("a", "A"))
	r.Apply(joined("b", "B"))
	if !r.Apply(joined("a", "Alice")) {
		t.Fatal("rename not reported as change")
	}
	if r.Apply(joined("a", "Alice")) {
		t.Fatal("identical join reported as change")
	}
	snap := r.Snapshot()
	if got := identities(snap); !equal(got, []string{"a", "b"}) {
		t.Fatalf("order = %v", got)
	}
	if snap[0].Name() != "Alice" {
		t.Errorf("name = %q", snap[0].Name())
	}
}

func TestRoster_LeaveAndRejoinAppends(t *testing.T) {
	r := New()
	r.Apply(joined("a", ""))
	r.Apply(joined("b", ""))
	r.Apply(core.Event{Type: core.EventParticipantLeft, Identity: "a"})
	r.Apply(joined("a", ""))
	if got := identities(r.Snapshot()); !equal(got, []string{"b", "a"}) {
		t.Fatalf("order = %v", got)
	}
	if r.Apply(core.Event{Type: core.EventParticipantLeft, Identity: "zzz"}) {
		t.Fatal("leave of unknown identity reported as change")
	}
}

func TestRoster_TrackEventForUnknownDropped(t *testing.T) {
	r := New()
	if r.Apply(trackEv(core.EventTrackPublished, "ghost", domain.TrackCamera)) {
		t.Fatal("unknown participant track event applied")
	}
	if r.Len() != 0 {
		t.Fatalf("len = %d", r.Len())
	}
}

func TestRoster_SubscriptionMaskedWhileNotLive(t *testing.T) {
	r := New()
	r.Apply(joined("a", ""))
	r.Apply(trackEv(core.EventTrackSubscribed, "a", domain.TrackCamera))

	p, _ := r.Lookup("a")
	if p.Track(domain.TrackCamera).IsSubscribed {
		t.Fatal("subscribed while not live")
	}
	if !p.Track(domain.TrackCamera).Published {
		t.Fatal("publication lost")
	}

	r.SetLive(true)
	p, _ = r.Lookup("a")
	if !p.Track(domain.TrackCamera).IsSubscribed {
		t.Fatal("subscription not visible once live")
	}

	r.SetLive(false)
	for _, p := range r.Snapshot() {
		for k, v := range p.Tracks {
			if v.IsSubscribed {
				t.Fatalf("%s/%s subscribed after going offline", p.Identity, k)
			}
		}
	}
}

func TestRoster_SnapshotIsDeepCopy(t *testing.T) {
	r := New()
	r.SetLive(true)
	r.Apply(joined("a", ""))
	r.Apply(trackEv(core.EventTrackSubscribed, "a", domain.TrackMicrophone))

	snap := r.Snapshot()
	snap[0].Tracks[domain.TrackMicrophone] = domain.TrackPublicationView{IsMuted: true}
	snap[0].DisplayName = "mutated"

	p, _ := r.Lookup("a")
	if p.Track(domain.TrackMicrophone).IsMuted || p.DisplayName != "" {
		t.Fatalf("roster mutated through snapshot: %+v", p)
	}
}

func TestRoster_LocalParticipant(t *testing.T) {
	r := New()
	local, err := domain.NewParticipant("me", "", true)
	if err != nil {
		t.Fatal(err)
	}
	r.SetLive(true)
	r.Apply(joined("a", ""))
	r.SetLocal(local)
	if got := identities(r.Snapshot()); !equal(got, []string{"me", "a"}) {
		t.Fatalf("order = %v", got)
	}

	if r.Apply(core.Event{Type: core.EventParticipantLeft, Identity: "me"}) {
		t.Fatal("local participant removed by remote event")
	}
	r.SetLocalTrack(domain.TrackCamera, true)
	p, ok := r.Local()
	if !ok || !p.IsLocal || !p.Track(domain.TrackCamera).Visible() {
		t.Fatalf("local = %+v ok=%v", p, ok)
	}
	r.SetLocalTrack(domain.TrackCamera, false)
	p, _ = r.Local()
	if p.Track(domain.TrackCamera).Published {
		t.Fatal("camera still published")
	}

	r.Reset()
	if _, ok := r.Local(); ok {
		t.Fatal("local survived reset")
	}
	if r.Len() != 0 {
		t.Fatalf("len = %d", r.Len())
	}
}

func TestRoster_UnpublishClearsView(t *testing.T) {
	r := New()
	r.SetLive(true)
	r.Apply(joined("a", ""))
	r.Apply(trackEv(core.EventTrackSubscribed, "a", domain.TrackScreen))
	if !r.Apply(trackEv(core.EventTrackUnpublished, "a", domain.TrackScreen)) {
		t.Fatal("unpublish not reported")
	}
	p, _ := r.Lookup("a")
	if _, _, ok := p.VideoTrack(); ok {
		t.Fatal("video track left after unpublish")
	}
}
