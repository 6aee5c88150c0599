package rtc

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
)

const waitFor = 3 * time.Second

type sfuConn struct {
	t    *testing.T
	ws   *websocket.Conn
	auth string
	recv chan envelope
}

func (c *sfuConn) send(env envelope) {
	if err := c.ws.WriteJSON(env); err != nil {
		c.t.Errorf("sfu write: %v", err)
	}
}

// expect skips messages until one of type typ arrives.
func (c *sfuConn) expect(typ string) envelope {
	deadline := time.After(waitFor)
	for {
		select {
		case env, ok := <-c.recv:
			if !ok {
				c.t.Errorf("sfu: connection closed while waiting for %q", typ)
				return envelope{}
			}
			if env.Type == typ {
				return env
			}
		case <-deadline:
			c.t.Errorf("sfu: timeout waiting for %q", typ)
			return envelope{}
		}
	}
}

func (c *sfuConn) join(identity domain.Identity, participants ...participantInfo) {
	c.expect(msgJoin)
	c.send(envelope{Type: msgJoined, Identity: identity, Participants: participants})
}

func newFakeSFU(t *testing.T, script func(c *sfuConn)) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer ws.Close()
		c := &sfuConn{t: t, ws: ws, auth: r.Header.Get("Authorization"), recv: make(chan envelope, 64)}
		done := make(chan struct{})
		go func() {
			defer close(done)
			defer close(c.recv)
			for {
				var env envelope
				if err := ws.ReadJSON(&env); err != nil {
					return
				}
				c.recv <- env
			}
		}()
		script(c)
		<-done
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func newTestTransport(t *testing.T) (*Transport, chan core.Event) {
	t.Helper()
	tr := New(Config{ICEServers: []webrtc.ICEServer{}})
	events := make(chan core.Event, 64)
	tr.OnEvent(func(ev core.Event) { events <- ev })
	t.Cleanup(func() { _ = tr.Disconnect(context.Background()) })
	return tr, events
}

func nextEvent(t *testing.T, events <-chan core.Event) core.Event {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(waitFor):
		t.Fatal("timeout waiting for event")
		return core.Event{}
	}
}

func TestConnect_JoinsAndReportsExistingParticipants(t *testing.T) {
	auth := make(chan string, 1)
	url := newFakeSFU(t, func(c *sfuConn) {
		auth <- c.auth
		c.join("me",
			participantInfo{Identity: "me"},
			participantInfo{Identity: "a", Name: "Alice", Tracks: []trackInfo{{Kind: domain.TrackCamera, Muted: true}}},
		)
	})
	tr, events := newTestTransport(t)

	err := tr.Connect(context.Background(), url, "tok", core.ConnectOptions{AdaptiveStream: true})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if got := <-auth; got != "Bearer tok" {
		t.Errorf("authorization = %q", got)
	}
	if got := tr.LocalParticipant().Identity(); got != "me" {
		t.Errorf("identity = %q, want me", got)
	}

	want := []core.Event{
		{Type: core.EventParticipantJoined, Identity: "a", DisplayName: "Alice"},
		{Type: core.EventTrackPublished, Identity: "a", Kind: domain.TrackCamera},
		{Type: core.EventTrackMuted, Identity: "a", Kind: domain.TrackCamera},
	}
	for i, w := range want {
		if got := nextEvent(t, events); got != w {
			t.Errorf("event %d = %+v, want %+v", i, got, w)
		}
	}
}

func TestConnect_Rejected(t *testing.T) {
	url := newFakeSFU(t, func(c *sfuConn) {
		c.expect(msgJoin)
		c.send(envelope{Type: msgError, Message: "room full"})
	})
	tr, _ := newTestTransport(t)

	err := tr.Connect(context.Background(), url, "", core.ConnectOptions{})
	if !errors.Is(err, ErrJoinRejected) {
		t.Fatalf("err = %v, want ErrJoinRejected", err)
	}
	if tr.current() != nil {
		t.Error("session kept after rejected join")
	}
}

func TestConnect_HonoursContext(t *testing.T) {
	url := newFakeSFU(t, func(c *sfuConn) {
		c.expect(msgJoin)
	})
	tr, _ := newTestTransport(t)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := tr.Connect(ctx, url, "", core.ConnectOptions{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestConnect_DialFailure(t *testing.T) {
	tr, _ := newTestTransport(t)
	if err := tr.Connect(context.Background(), "ws://127.0.0.1:1/rtc", "", core.ConnectOptions{}); err == nil {
		t.Fatal("expected dial error")
	}
}

func TestEvents_ForwardedInOrder(t *testing.T) {
	url := newFakeSFU(t, func(c *sfuConn) {
		c.join("me")
		c.send(envelope{Type: msgParticipantJoined, Identity: "b", Name: "Bob"})
		c.send(envelope{Type: msgTrackPublished, Identity: "b", Kind: domain.TrackMicrophone})
		c.send(envelope{Type: msgTrackUnmuted, Identity: "b", Kind: domain.TrackMicrophone})
		c.send(envelope{Type: msgReconnect})
		c.send(envelope{Type: msgReconnected})
		c.send(envelope{Type: msgTrackUnpublished, Identity: "b", Kind: domain.TrackMicrophone})
		c.send(envelope{Type: msgParticipantLeft, Identity: "b"})
	})
	tr, events := newTestTransport(t)
	if err := tr.Connect(context.Background(), url, "", core.ConnectOptions{}); err != nil {
		t.Fatalf("connect: %v", err)
	}

	want := []core.Event{
		{Type: core.EventParticipantJoined, Identity: "b", DisplayName: "Bob"},
		{Type: core.EventTrackPublished, Identity: "b", Kind: domain.TrackMicrophone},
		{Type: core.EventTrackUnmuted, Identity: "b", Kind: domain.TrackMicrophone},
		{Type: core.EventReconnecting},
		{Type: core.EventReconnected},
		{Type: core.EventTrackUnpublished, Identity: "b", Kind: domain.TrackMicrophone},
		{Type: core.EventParticipantLeft, Identity: "b"},
	}
	for i, w := range want {
		if got := nextEvent(t, events); got != w {
			t.Errorf("event %d = %+v, want %+v", i, got, w)
		}
	}
}

func TestPing_AnsweredWithPong(t *testing.T) {
	pong := make(chan struct{})
	url := newFakeSFU(t, func(c *sfuConn) {
		c.join("me")
		c.send(envelope{Type: msgPing})
		c.expect(msgPong)
		close(pong)
	})
	tr, _ := newTestTransport(t)
	if err := tr.Connect(context.Background(), url, "", core.ConnectOptions{}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	select {
	case <-pong:
	case <-time.After(waitFor):
		t.Fatal("pong not received")
	}
}

func TestServerLoss_ReportsDisconnectedAndAllowsRejoin(t *testing.T) {
	var dropped atomic.Bool
	url := newFakeSFU(t, func(c *sfuConn) {
		c.join("me")
		c.expect(msgOffer)
		if dropped.CompareAndSwap(false, true) {
			_ = c.ws.Close()
		}
	})
	tr, events := newTestTransport(t)
	if err := tr.Connect(context.Background(), url, "", core.ConnectOptions{}); err != nil {
		t.Fatalf("connect: %v", err)
	}

	ev := nextEvent(t, events)
	if ev.Type != core.EventDisconnected || ev.Err == nil {
		t.Fatalf("event = %+v, want disconnected with error", ev)
	}
	if tr.current() != nil {
		t.Fatal("lost session still current")
	}
	if err := tr.Connect(context.Background(), url, "", core.ConnectOptions{}); err != nil {
		t.Fatalf("reconnect: %v", err)
	}
}

func TestConnect_TwiceRejected(t *testing.T) {
	url := newFakeSFU(t, func(c *sfuConn) { c.join("me") })
	tr, _ := newTestTransport(t)
	if err := tr.Connect(context.Background(), url, "", core.ConnectOptions{}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := tr.Connect(context.Background(), url, "", core.ConnectOptions{}); !errors.Is(err, ErrAlreadyConnected) {
		t.Fatalf("err = %v, want ErrAlreadyConnected", err)
	}
}

func TestDisconnect_SendsLeave(t *testing.T) {
	left := make(chan struct{})
	url := newFakeSFU(t, func(c *sfuConn) {
		c.join("me")
		c.expect(msgLeave)
		close(left)
	})
	tr, events := newTestTransport(t)
	if err := tr.Connect(context.Background(), url, "", core.ConnectOptions{}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := tr.Disconnect(context.Background()); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	select {
	case <-left:
	case <-time.After(waitFor):
		t.Fatal("leave not received")
	}
	select {
	case ev := <-events:
		t.Errorf("unexpected event after disconnect: %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
	if err := tr.Disconnect(context.Background()); err != nil {
		t.Errorf("second disconnect: %v", err)
	}
}

func TestLocalParticipant_NotConnected(t *testing.T) {
	tr, _ := newTestTransport(t)
	err := tr.LocalParticipant().SetMicrophoneEnabled(context.Background(), true)
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("err = %v, want ErrNotConnected", err)
	}
}

func TestLocalParticipant_PublishAndUnpublish(t *testing.T) {
	published := make(chan envelope, 1)
	unpublished := make(chan envelope, 1)
	url := newFakeSFU(t, func(c *sfuConn) {
		c.join("me")
		published <- c.expect(msgPublish)
		unpublished <- c.expect(msgUnpublish)
	})
	tr, _ := newTestTransport(t)
	if err := tr.Connect(context.Background(), url, "", core.ConnectOptions{}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	lp := tr.Local()

	if err := lp.SetCameraEnabled(context.Background(), true); err != nil {
		t.Fatalf("enable camera: %v", err)
	}
	if !lp.Published(domain.TrackCamera) {
		t.Fatal("camera not published")
	}
	// idempotent
	if err := lp.SetCameraEnabled(context.Background(), true); err != nil {
		t.Fatalf("enable camera again: %v", err)
	}
	env := <-published
	if env.Kind != domain.TrackCamera || !strings.HasPrefix(env.TrackID, "camera-") {
		t.Errorf("publish = %+v", env)
	}
	if err := lp.WriteRTP(domain.TrackCamera, &rtp.Packet{Header: rtp.Header{Version: 2, SequenceNumber: 1}}); err != nil {
		t.Errorf("write rtp: %v", err)
	}
	if err := lp.WriteRTP(domain.TrackMicrophone, &rtp.Packet{}); err != nil {
		t.Errorf("write to unpublished kind: %v", err)
	}

	if err := lp.SetCameraEnabled(context.Background(), false); err != nil {
		t.Fatalf("disable camera: %v", err)
	}
	if lp.Published(domain.TrackCamera) {
		t.Fatal("camera still published")
	}
	if env := <-unpublished; env.Kind != domain.TrackCamera {
		t.Errorf("unpublish = %+v", env)
	}
}

// answerer plays the server side of offer/answer with a real pion peer.
type answerer struct {
	t  *testing.T
	pc *webrtc.PeerConnection
}

func newAnswerer(t *testing.T) *answerer {
	t.Helper()
	pc, err := webrtc.NewPeerConnection(webrtc.Configuration{})
	if err != nil {
		t.Fatalf("answerer peer: %v", err)
	}
	t.Cleanup(func() { _ = pc.Close() })
	return &answerer{t: t, pc: pc}
}

func (a *answerer) answer(c *sfuConn, offer envelope) {
	if err := a.pc.SetRemoteDescription(webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: offer.SDP}); err != nil {
		a.t.Errorf("answerer remote: %v", err)
		return
	}
	ans, err := a.pc.CreateAnswer(nil)
	if err != nil {
		a.t.Errorf("answerer create: %v", err)
		return
	}
	if err := a.pc.SetLocalDescription(ans); err != nil {
		a.t.Errorf("answerer local: %v", err)
		return
	}
	c.send(envelope{Type: msgAnswer, SDP: a.pc.LocalDescription().SDP})
}

func TestLocalParticipant_OfferDeferredUntilAnswer(t *testing.T) {
	firstOffer := make(chan struct{})
	gotPublish := make(chan struct{})
	published := make(chan envelope, 1)
	second := make(chan envelope, 1)
	url := newFakeSFU(t, func(c *sfuConn) {
		a := newAnswerer(t)
		c.join("me")
		offer := c.expect(msgOffer)
		close(firstOffer)
		pub := c.expect(msgPublish)
		published <- pub
		<-gotPublish

		// nothing but candidates may follow until the first offer is answered
		quiet := time.After(150 * time.Millisecond)
	drain:
		for {
			select {
			case env, ok := <-c.recv:
				if !ok {
					return
				}
				if env.Type == msgOffer {
					t.Errorf("offer sent before the previous one was answered")
				}
			case <-quiet:
				break drain
			}
		}

		a.answer(c, offer)
		next := c.expect(msgOffer)
		second <- next
		a.answer(c, next)
	})
	tr, _ := newTestTransport(t)
	if err := tr.Connect(context.Background(), url, "", core.ConnectOptions{}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	<-firstOffer

	lp := tr.Local()
	if err := lp.SetCameraEnabled(context.Background(), true); err != nil {
		t.Fatalf("enable camera with offer in flight: %v", err)
	}
	if !lp.Published(domain.TrackCamera) {
		t.Fatal("camera not published")
	}
	pub := <-published
	close(gotPublish)

	select {
	case offer := <-second:
		if !strings.Contains(offer.SDP, pub.TrackID) {
			t.Errorf("follow-up offer does not carry track %s", pub.TrackID)
		}
	case <-time.After(waitFor):
		t.Fatal("follow-up offer not sent after answer")
	}
}

func TestLocalParticipant_RemoveFailureKeepsTrack(t *testing.T) {
	url := newFakeSFU(t, func(c *sfuConn) {
		c.join("me")
	})
	tr, _ := newTestTransport(t)
	if err := tr.Connect(context.Background(), url, "", core.ConnectOptions{}); err != nil {
		t.Fatalf("connect: %v", err)
	}
	lp := tr.Local()
	if err := lp.SetMicrophoneEnabled(context.Background(), true); err != nil {
		t.Fatalf("enable microphone: %v", err)
	}

	// a closed peer refuses to remove senders
	tr.current().peer.Close()

	if err := lp.SetMicrophoneEnabled(context.Background(), false); err == nil {
		t.Fatal("expected remove error on closed peer")
	}
	if !lp.Published(domain.TrackMicrophone) {
		t.Fatal("track dropped although its sender was not removed")
	}
}
