// Package capability negotiates capture parameters against a device's
// reported format list. Everything here is a pure function of its inputs.
package capability

import "github.com/dkeye/Meet/internal/domain"

const (
	BaseFrameRate = 30
	HighFrameRate = 60
)

// Resolve picks the capture configuration for intent. Total: an empty
// format set resolves to the base frame rate with nothing enabled.
func Resolve(formats []domain.CaptureFormat, intent domain.CaptureIntent) domain.ResolvedCaptureConfig {
	fps := frameRate(formats, intent)
	return domain.ResolvedCaptureConfig{
		FrameRate:            fps,
		HDREnabled:           intent.HDRRequested && hdrAt(formats, fps),
		LowLightBoostEnabled: intent.NightModeRequested && hasLowLightBoost(formats),
		NightModeAllowed:     CanToggleNightMode(formats, intent, fps),
	}
}

// first matching rule wins
func frameRate(formats []domain.CaptureFormat, intent domain.CaptureIntent) int {
	switch {
	case !intent.HighFrameRate:
		return BaseFrameRate
	case intent.NightModeRequested && !hasLowLightBoost(formats):
		// night mode is simulated by capping the frame rate
		return BaseFrameRate
	case intent.HDRRequested && !hdrAt(formats, HighFrameRate):
		return BaseFrameRate
	case !Supports60FPS(formats):
		return BaseFrameRate
	}
	return HighFrameRate
}

// hdrAt reports whether some video-HDR format includes fps.
func hdrAt(formats []domain.CaptureFormat, fps int) bool {
	for _, f := range formats {
		if f.SupportsVideoHDR && f.IncludesFrameRate(float64(fps)) {
			return true
		}
	}
	return false
}

func hasLowLightBoost(formats []domain.CaptureFormat) bool {
	for _, f := range formats {
		if f.SupportsLowLightBoost {
			return true
		}
	}
	return false
}

// SupportsHDR decides whether the HDR toggle is offered at all.
func SupportsHDR(formats []domain.CaptureFormat) bool {
	for _, f := range formats {
		if f.SupportsHDR() {
			return true
		}
	}
	return false
}

func Supports60FPS(formats []domain.CaptureFormat) bool {
	for _, f := range formats {
		if f.IncludesFrameRate(HighFrameRate) {
			return true
		}
	}
	return false
}

// CanToggleNightMode is always true while night mode is on so it can be
// switched off again.
func CanToggleNightMode(formats []domain.CaptureFormat, intent domain.CaptureIntent, fps int) bool {
	if intent.NightModeRequested {
		return true
	}
	return hasLowLightBoost(formats) || fps > BaseFrameRate
}

func CanFlipCamera(devices []domain.CaptureDevice) bool {
	var front, back bool
	for _, d := range devices {
		switch d.Facing {
		case domain.FacingFront:
			front = true
		case domain.FacingBack:
			back = true
		}
	}
	return front && back
}

// DeviceFor returns the first enumerated device with the given facing.
func DeviceFor(devices []domain.CaptureDevice, facing domain.Facing) (domain.CaptureDevice, bool) {
	for _, d := range devices {
		if d.Facing == facing {
			return d, true
		}
	}
	return domain.CaptureDevice{}, false
}
