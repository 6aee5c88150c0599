package core

import (
	"context"

	"github.com/dkeye/Meet/internal/domain"
)

// CapturePicker is a native capture-source selection surface.
type CapturePicker interface {
	// Show returns true when the user confirmed a source.
	Show(ctx context.Context) (bool, error)
}

// ScreenShareBridge runs the platform pre-capture step and then enable.
type ScreenShareBridge interface {
	StartScreenShare(ctx context.Context, enable func(context.Context) error) (domain.ScreenShareResult, error)
}

// AudioSession configures the platform audio route for a call.
type AudioSession interface {
	Start(ctx context.Context) error
	Stop() error
}
