package capability

import (
	"github.com/dkeye/Meet/internal/domain"
	"github.com/pion/mediadevices/pkg/frame"
	"github.com/pion/mediadevices/pkg/prop"
)

// DefaultPixelFormat is the video-range bi-planar 4:2:0 tag.
const DefaultPixelFormat = "420v"

// FilterPixelFormat keeps formats tagged with pixelFormat. An empty tag
// keeps everything.
func FilterPixelFormat(formats []domain.CaptureFormat, pixelFormat string) []domain.CaptureFormat {
	if pixelFormat == "" {
		return formats
	}
	out := make([]domain.CaptureFormat, 0, len(formats))
	for _, f := range formats {
		if f.PixelFormat == pixelFormat {
			out = append(out, f)
		}
	}
	return out
}

// SelectFormat picks the format the device should run for cfg: the first
// one that includes the frame rate and, when HDR is on, supports video HDR.
// Falls back to the first format that includes the frame rate, then to the
// first format.
func SelectFormat(formats []domain.CaptureFormat, cfg domain.ResolvedCaptureConfig) (domain.CaptureFormat, bool) {
	if len(formats) == 0 {
		return domain.CaptureFormat{}, false
	}
	fps := float64(cfg.FrameRate)
	fallback := -1
	for i, f := range formats {
		if !f.IncludesFrameRate(fps) {
			continue
		}
		if !cfg.HDREnabled || f.SupportsVideoHDR {
			return f, true
		}
		if fallback < 0 {
			fallback = i
		}
	}
	if fallback >= 0 {
		return formats[fallback], true
	}
	return formats[0], true
}

// ClampZoom caps the device zoom range at limit. A non-positive limit
// leaves the device untouched.
func ClampZoom(device domain.CaptureDevice, limit float64) domain.CaptureDevice {
	if limit <= 0 {
		return device
	}
	if device.MaxZoom > limit {
		device.MaxZoom = limit
	}
	if device.MinZoom > device.MaxZoom {
		device.MinZoom = device.MaxZoom
	}
	return device
}

// Constraints turns the negotiated format into device start constraints.
func Constraints(device domain.CaptureDevice, format domain.CaptureFormat, cfg domain.ResolvedCaptureConfig) prop.Media {
	return prop.Media{
		DeviceID: device.ID,
		Video: prop.Video{
			Width:       format.Width,
			Height:      format.Height,
			FrameRate:   float32(cfg.FrameRate),
			FrameFormat: frameFormat(format.PixelFormat),
		},
	}
}

func frameFormat(pixelFormat string) frame.Format {
	switch pixelFormat {
	case "420v", "420f":
		return frame.FormatNV12
	case "y420":
		return frame.FormatI420
	case "yuvs", "yuy2":
		return frame.FormatYUY2
	case "":
		return ""
	default:
		return frame.Format(pixelFormat)
	}
}
