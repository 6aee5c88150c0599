package core

import (
	"context"

	"github.com/dkeye/Meet/internal/domain"
	"github.com/pion/mediadevices/pkg/prop"
)

type PermissionProvider interface {
	Check(ctx context.Context, kind domain.PermissionKind) (domain.PermissionStatus, error)
	// Request may block on a user prompt.
	Request(ctx context.Context, kind domain.PermissionKind) (domain.PermissionStatus, error)
}

// DeviceProvider exposes the live camera enumeration.
type DeviceProvider interface {
	Devices(ctx context.Context) ([]domain.CaptureDevice, error)
	OnChange(func([]domain.CaptureDevice))
}

// CaptureDevice is the single hardware capture session.
type CaptureDevice interface {
	Start(ctx context.Context, deviceID string, constraints prop.Media) error
	Stop() error
	// TakePhoto must not be interrupted once the sensor is exposing.
	TakePhoto(ctx context.Context, opts domain.PhotoOptions) (domain.CapturedMedia, error)
}

// PostProcessor consumes captured media (OCR or similar).
type PostProcessor interface {
	Process(ctx context.Context, path string) error
}
