package domain

type FrameRateRange struct {
	Min float64 `json:"min" mapstructure:"min"`
	Max float64 `json:"max" mapstructure:"max"`
}

func (r FrameRateRange) Includes(fps float64) bool {
	return r.Min <= fps && fps <= r.Max
}

// CaptureFormat is one device-reported capture mode. Immutable once enumerated.
type CaptureFormat struct {
	Width                 int              `json:"width" mapstructure:"width"`
	Height                int              `json:"height" mapstructure:"height"`
	PixelFormat           string           `json:"pixel_format" mapstructure:"pixel_format"`
	FrameRateRanges       []FrameRateRange `json:"frame_rate_ranges" mapstructure:"frame_rate_ranges"`
	SupportsVideoHDR      bool             `json:"supports_video_hdr" mapstructure:"supports_video_hdr"`
	SupportsPhotoHDR      bool             `json:"supports_photo_hdr" mapstructure:"supports_photo_hdr"`
	SupportsLowLightBoost bool             `json:"supports_low_light_boost" mapstructure:"supports_low_light_boost"`
}

// IncludesFrameRate reports whether any range of the format admits fps.
func (f CaptureFormat) IncludesFrameRate(fps float64) bool {
	for _, r := range f.FrameRateRanges {
		if r.Includes(fps) {
			return true
		}
	}
	return false
}

func (f CaptureFormat) SupportsHDR() bool {
	return f.SupportsVideoHDR || f.SupportsPhotoHDR
}

type Facing string

const (
	FacingFront Facing = "front"
	FacingBack  Facing = "back"
)

type FlashMode string

const (
	FlashOff FlashMode = "off"
	FlashOn  FlashMode = "on"
)

// CaptureDevice is an enumeration entry, not a handle to hardware.
type CaptureDevice struct {
	ID       string          `json:"id" mapstructure:"id"`
	Facing   Facing          `json:"facing" mapstructure:"facing"`
	Formats  []CaptureFormat `json:"formats" mapstructure:"formats"`
	HasFlash bool            `json:"has_flash" mapstructure:"has_flash"`
	MinZoom  float64         `json:"min_zoom" mapstructure:"min_zoom"`
	MaxZoom  float64         `json:"max_zoom" mapstructure:"max_zoom"`
}

type CaptureIntent struct {
	HighFrameRate      bool      `json:"high_frame_rate"`
	HDRRequested       bool      `json:"hdr_requested"`
	NightModeRequested bool      `json:"night_mode_requested"`
	Facing             Facing    `json:"facing"`
	Flash              FlashMode `json:"flash"`
}

func DefaultCaptureIntent() CaptureIntent {
	return CaptureIntent{
		HighFrameRate: true,
		Facing:        FacingBack,
		Flash:         FlashOff,
	}
}

// ResolvedCaptureConfig is derived from intent and formats on every read.
type ResolvedCaptureConfig struct {
	FrameRate            int  `json:"frame_rate"`
	HDREnabled           bool `json:"hdr_enabled"`
	LowLightBoostEnabled bool `json:"low_light_boost_enabled"`
	NightModeAllowed     bool `json:"night_mode_allowed"`
}

type PermissionKind string

const (
	PermissionCamera     PermissionKind = "camera"
	PermissionMicrophone PermissionKind = "microphone"
)

type PermissionStatus string

const (
	PermissionGranted      PermissionStatus = "granted"
	PermissionDenied       PermissionStatus = "denied"
	PermissionBlocked      PermissionStatus = "blocked"
	PermissionUndetermined PermissionStatus = "undetermined"
)

type PermissionResult string

const (
	PermissionResultGranted PermissionResult = "granted"
	PermissionResultDenied  PermissionResult = "denied"
)

type QualityPriority string

const (
	QualitySpeed    QualityPriority = "speed"
	QualityBalanced QualityPriority = "balanced"
	QualityQuality  QualityPriority = "quality"
)

type PhotoOptions struct {
	QualityPriority QualityPriority `json:"quality_priority"`
	Flash           FlashMode       `json:"flash"`
	SkipMetadata    bool            `json:"skip_metadata"`
}

// CapturedMedia points at a photo written by the device.
type CapturedMedia struct {
	Path   string `json:"path"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}
