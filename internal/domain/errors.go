package domain

import "errors"

var (
	ErrPermissionDenied     = errors.New("permission denied")
	ErrConnectionFailed     = errors.New("connection failed")
	ErrDeviceUnavailable    = errors.New("device unavailable")
	ErrCaptureFailed        = errors.New("capture failed")
	ErrScreenShareCancelled = errors.New("screen share cancelled")
	ErrPostProcessingFailed = errors.New("post processing failed")

	ErrInvalidState = errors.New("invalid state")
	ErrBusy         = errors.New("busy")
	ErrNotSupported = errors.New("not supported")
)

type ErrorKind string

const (
	KindNone                 ErrorKind = ""
	KindPermissionDenied     ErrorKind = "permission_denied"
	KindConnectionFailed     ErrorKind = "connection_failed"
	KindDeviceUnavailable    ErrorKind = "device_unavailable"
	KindCaptureFailed        ErrorKind = "capture_failed"
	KindScreenShareCancelled ErrorKind = "screen_share_cancelled"
	KindPostProcessingFailed ErrorKind = "post_processing_failed"
	KindInvalidState         ErrorKind = "invalid_state"
	KindBusy                 ErrorKind = "busy"
	KindNotSupported         ErrorKind = "not_supported"
	KindInternal             ErrorKind = "internal"
)

var kinds = []struct {
	err  error
	kind ErrorKind
}{
	{ErrPermissionDenied, KindPermissionDenied},
	{ErrConnectionFailed, KindConnectionFailed},
	{ErrDeviceUnavailable, KindDeviceUnavailable},
	{ErrCaptureFailed, KindCaptureFailed},
	{ErrScreenShareCancelled, KindScreenShareCancelled},
	{ErrPostProcessingFailed, KindPostProcessingFailed},
	{ErrInvalidState, KindInvalidState},
	{ErrBusy, KindBusy},
	{ErrNotSupported, KindNotSupported},
}

// KindOf maps err onto the first sentinel it wraps.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}
