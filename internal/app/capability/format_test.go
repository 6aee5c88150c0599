package capability

import (
	"testing"

	"github.com/dkeye/Meet/internal/domain"
	"github.com/pion/mediadevices/pkg/frame"
)

func TestFilterPixelFormat(t *testing.T) {
	formats := []domain.CaptureFormat{
		{PixelFormat: "420v", Width: 1920},
		{PixelFormat: "420f", Width: 1920},
		{PixelFormat: "420v", Width: 1280},
	}
	got := FilterPixelFormat(formats, DefaultPixelFormat)
	if len(got) != 2 || got[0].Width != 1920 || got[1].Width != 1280 {
		t.Fatalf("got %+v", got)
	}
	if len(FilterPixelFormat(formats, "")) != 3 {
		t.Fatal("empty tag must keep all formats")
	}
}

func TestSelectFormat(t *testing.T) {
	sdr60 := domain.CaptureFormat{Width: 1280, FrameRateRanges: []domain.FrameRateRange{{Min: 1, Max: 60}}}
	hdr60 := domain.CaptureFormat{Width: 1920, FrameRateRanges: []domain.FrameRateRange{{Min: 1, Max: 60}}, SupportsVideoHDR: true}
	sdr30 := domain.CaptureFormat{Width: 3840, FrameRateRanges: []domain.FrameRateRange{{Min: 1, Max: 30}}}
	formats := []domain.CaptureFormat{sdr30, sdr60, hdr60}

	tests := []struct {
		name  string
		cfg   domain.ResolvedCaptureConfig
		width int
	}{
		{"first at 30", domain.ResolvedCaptureConfig{FrameRate: 30}, 3840},
		{"first at 60", domain.ResolvedCaptureConfig{FrameRate: 60}, 1280},
		{"hdr at 60", domain.ResolvedCaptureConfig{FrameRate: 60, HDREnabled: true}, 1920},
		{"hdr at 30 falls back", domain.ResolvedCaptureConfig{FrameRate: 30, HDREnabled: true}, 1920},
		{"no rate match", domain.ResolvedCaptureConfig{FrameRate: 120}, 3840},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := SelectFormat(formats, tt.cfg)
			if !ok || f.Width != tt.width {
				t.Errorf("got %+v ok=%v, want width %d", f, ok, tt.width)
			}
		})
	}

	if _, ok := SelectFormat(nil, domain.ResolvedCaptureConfig{FrameRate: 30}); ok {
		t.Error("empty format list selected something")
	}
}

func TestClampZoom(t *testing.T) {
	d := ClampZoom(domain.CaptureDevice{MinZoom: 1, MaxZoom: 10}, 1.2)
	if d.MaxZoom != 1.2 || d.MinZoom != 1 {
		t.Errorf("got %+v", d)
	}
	d = ClampZoom(domain.CaptureDevice{MinZoom: 2, MaxZoom: 10}, 1.2)
	if d.MinZoom != 1.2 {
		t.Errorf("min zoom not clamped: %+v", d)
	}
	d = ClampZoom(domain.CaptureDevice{MinZoom: 1, MaxZoom: 10}, 0)
	if d.MaxZoom != 10 {
		t.Errorf("zero limit changed zoom: %+v", d)
	}
}

func TestConstraints(t *testing.T) {
	device := domain.CaptureDevice{ID: "cam0"}
	format := domain.CaptureFormat{Width: 1920, Height: 1080, PixelFormat: "420v"}
	m := Constraints(device, format, domain.ResolvedCaptureConfig{FrameRate: 60})

	if m.DeviceID != "cam0" {
		t.Errorf("DeviceID = %q", m.DeviceID)
	}
	if m.Width != 1920 || m.Height != 1080 {
		t.Errorf("size = %dx%d", m.Width, m.Height)
	}
	if m.FrameRate != 60 {
		t.Errorf("FrameRate = %v", m.FrameRate)
	}
	if m.FrameFormat != frame.FormatNV12 {
		t.Errorf("FrameFormat = %q", m.FrameFormat)
	}
}
