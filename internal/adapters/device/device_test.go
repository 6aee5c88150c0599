package device

import (
	"context"
	"errors"
	"image/jpeg"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/pion/mediadevices/pkg/prop"
	"github.com/pion/rtp"

	"github.com/dkeye/Meet/internal/domain"
)

var testDevices = []domain.CaptureDevice{
	{ID: "back", Facing: domain.FacingBack, HasFlash: true},
	{ID: "front", Facing: domain.FacingFront},
}

func TestProvider_DevicesAreCopies(t *testing.T) {
	p := NewProvider(testDevices)
	got, err := p.Devices(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	got[0].ID = "mutated"
	again, _ := p.Devices(context.Background())
	if again[0].ID != "back" {
		t.Fatalf("provider state mutated through returned slice: %q", again[0].ID)
	}
}

func TestProvider_ReplaceNotifies(t *testing.T) {
	p := NewProvider(testDevices)
	var got []domain.CaptureDevice
	p.OnChange(func(d []domain.CaptureDevice) { got = d })

	p.Replace(testDevices[1:])
	if len(got) != 1 || got[0].ID != "front" {
		t.Fatalf("OnChange got %+v", got)
	}
	if _, ok := p.Lookup("back"); ok {
		t.Error("removed device still found")
	}
	if _, ok := p.Lookup("front"); !ok {
		t.Error("front not found")
	}
}

func TestPermissions_Request(t *testing.T) {
	tests := []struct {
		name    string
		initial string
		answer  bool
		want    domain.PermissionStatus
		prompts int
	}{
		{"undetermined allowed", "undetermined", true, domain.PermissionGranted, 1},
		{"undetermined declined", "undetermined", false, domain.PermissionDenied, 1},
		{"denied asked again", "denied", true, domain.PermissionGranted, 1},
		{"granted not prompted", "granted", false, domain.PermissionGranted, 0},
		{"blocked never prompted", "blocked", true, domain.PermissionBlocked, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prompts := 0
			p, err := NewPermissions(map[string]string{"camera": tt.initial}, func(context.Context, domain.PermissionKind) (bool, error) {
				prompts++
				return tt.answer, nil
			})
			if err != nil {
				t.Fatal(err)
			}
			got, err := p.Request(context.Background(), domain.PermissionCamera)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want || prompts != tt.prompts {
				t.Errorf("got %s after %d prompts, want %s after %d", got, prompts, tt.want, tt.prompts)
			}
			if st, _ := p.Check(context.Background(), domain.PermissionCamera); st != tt.want {
				t.Errorf("Check = %s, want %s", st, tt.want)
			}
		})
	}
}

func TestPermissions_PromptErrorKeepsStatus(t *testing.T) {
	boom := errors.New("boom")
	p, _ := NewPermissions(nil, func(context.Context, domain.PermissionKind) (bool, error) { return false, boom })
	st, err := p.Request(context.Background(), domain.PermissionMicrophone)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if st != domain.PermissionUndetermined {
		t.Errorf("status = %s, want undetermined", st)
	}
}

func TestPermissions_RejectsUnknownConfig(t *testing.T) {
	if _, err := NewPermissions(map[string]string{"location": "granted"}, nil); err == nil {
		t.Error("unknown kind accepted")
	}
	if _, err := NewPermissions(map[string]string{"camera": "maybe"}, nil); err == nil {
		t.Error("unknown status accepted")
	}
}

type recordingSink struct {
	mu      sync.Mutex
	packets int
	kinds   map[domain.TrackKind]int
}

func (s *recordingSink) WriteRTP(kind domain.TrackKind, _ *rtp.Packet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.kinds == nil {
		s.kinds = make(map[domain.TrackKind]int)
	}
	s.packets++
	s.kinds[kind]++
	return nil
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.packets
}

func constraints(w, h int, fps float32) prop.Media {
	return prop.Media{
		DeviceID: "back",
		Video:    prop.Video{Width: w, Height: h, FrameRate: fps},
	}
}

func TestVirtualCamera_StreamsUntilStopped(t *testing.T) {
	sink := &recordingSink{}
	cam := NewVirtualCamera(NewProvider(testDevices), CameraConfig{PhotoDir: t.TempDir(), Sink: sink})

	if err := cam.Start(context.Background(), "back", constraints(640, 480, 60)); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for sink.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if err := cam.Stop(); err != nil {
		t.Fatal(err)
	}
	n := sink.count()
	if n == 0 {
		t.Fatal("no packets written")
	}
	if sink.kinds[domain.TrackCamera] != n {
		t.Errorf("packets for other kinds: %+v", sink.kinds)
	}
	time.Sleep(50 * time.Millisecond)
	if sink.count() != n {
		t.Error("packets written after Stop")
	}
	if cam.Frames() == 0 {
		t.Error("frame counter not advanced")
	}
	if err := cam.Stop(); err != nil {
		t.Errorf("second Stop: %v", err)
	}
}

func TestVirtualCamera_StartValidates(t *testing.T) {
	cam := NewVirtualCamera(NewProvider(testDevices), CameraConfig{})
	if err := cam.Start(context.Background(), "side", constraints(640, 480, 30)); !errors.Is(err, ErrUnknownDevice) {
		t.Errorf("err = %v, want ErrUnknownDevice", err)
	}
	if err := cam.Start(context.Background(), "back", constraints(640, 480, 0)); err == nil {
		t.Error("zero frame rate accepted")
	}
}

func TestVirtualCamera_TakePhoto(t *testing.T) {
	dir := t.TempDir()
	cam := NewVirtualCamera(NewProvider(testDevices), CameraConfig{PhotoDir: dir})

	if _, err := cam.TakePhoto(context.Background(), domain.PhotoOptions{}); !errors.Is(err, ErrNotStarted) {
		t.Fatalf("err = %v, want ErrNotStarted", err)
	}

	if err := cam.Start(context.Background(), "back", constraints(64, 48, 30)); err != nil {
		t.Fatal(err)
	}
	defer cam.Stop()

	media, err := cam.TakePhoto(context.Background(), domain.PhotoOptions{Flash: domain.FlashOn, QualityPriority: domain.QualitySpeed})
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Dir(media.Path) != dir || media.Width != 64 || media.Height != 48 {
		t.Fatalf("media = %+v", media)
	}
	f, err := os.Open(media.Path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cfg.Width != 64 || cfg.Height != 48 {
		t.Errorf("jpeg %dx%d", cfg.Width, cfg.Height)
	}
}

func TestAudio_RequiresMicrophone(t *testing.T) {
	perms, _ := NewPermissions(map[string]string{"microphone": "denied"}, nil)
	a := NewAudio(perms, nil)
	if err := a.Start(context.Background()); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("err = %v, want permission denied", err)
	}
	if a.Active() {
		t.Error("active without permission")
	}
}

func TestAudio_FeedsSilenceUntilStopped(t *testing.T) {
	perms, _ := NewPermissions(map[string]string{"microphone": "granted"}, nil)
	sink := &recordingSink{}
	a := NewAudio(perms, sink)

	if err := a.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := a.Start(context.Background()); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for sink.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if err := a.Stop(); err != nil {
		t.Fatal(err)
	}
	if sink.count() == 0 {
		t.Fatal("no audio packets")
	}
	if sink.kinds[domain.TrackMicrophone] != sink.count() {
		t.Errorf("packets for other kinds: %+v", sink.kinds)
	}
	if a.Active() {
		t.Error("still active after Stop")
	}
}
