package rtc

import (
	"sync/atomic"

	"github.com/pion/webrtc/v4"

	"github.com/dkeye/Meet/internal/domain"
)

type trackState int32

const (
	trackStateOff trackState = iota
	trackStateLive
	trackStateRemoved
)

// localTrack is one published local track. Media writers check the state
// before every packet.
type localTrack struct {
	Kind   domain.TrackKind
	Track  *webrtc.TrackLocalStaticRTP
	Sender *webrtc.RTPSender
	state  atomic.Int32
}

func newLocalTrack(kind domain.TrackKind, track *webrtc.TrackLocalStaticRTP, sender *webrtc.RTPSender) *localTrack {
	lt := &localTrack{Kind: kind, Track: track, Sender: sender}
	lt.markLive()
	return lt
}

func (lt *localTrack) State() trackState { return trackState(lt.state.Load()) }

func (lt *localTrack) markLive()    { lt.state.Store(int32(trackStateLive)) }
func (lt *localTrack) markRemoved() { lt.state.Store(int32(trackStateRemoved)) }

func codecFor(kind domain.TrackKind) webrtc.RTPCodecCapability {
	if kind == domain.TrackMicrophone {
		return webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeOpus, ClockRate: 48000, Channels: 2}
	}
	return webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8, ClockRate: 90000}
}
