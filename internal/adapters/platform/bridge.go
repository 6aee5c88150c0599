// Package platform holds the screen share pre-capture procedures.
package platform

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/rs/zerolog/log"
)

// PickerBridge shows a capture-source picker and enables the screen track
// only after the user confirms.
type PickerBridge struct {
	picker core.CapturePicker
}

func NewPickerBridge(picker core.CapturePicker) *PickerBridge {
	return &PickerBridge{picker: picker}
}

func (b *PickerBridge) StartScreenShare(ctx context.Context, enable func(context.Context) error) (domain.ScreenShareResult, error) {
	ok, err := b.picker.Show(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return domain.ScreenShareCancelled, nil
		}
		return domain.ScreenShareCancelled, fmt.Errorf("show picker: %w", err)
	}
	if !ok {
		log.Info().Str("module", "platform.picker").Msg("picker declined")
		return domain.ScreenShareCancelled, nil
	}
	if ctx.Err() != nil {
		return domain.ScreenShareCancelled, nil
	}
	if err := enable(ctx); err != nil {
		return domain.ScreenShareCancelled, err
	}
	return domain.ScreenShareStarted, nil
}

// DirectBridge enables the screen track in one call.
type DirectBridge struct{}

func (DirectBridge) StartScreenShare(ctx context.Context, enable func(context.Context) error) (domain.ScreenShareResult, error) {
	if err := enable(ctx); err != nil {
		return domain.ScreenShareCancelled, err
	}
	return domain.ScreenShareStarted, nil
}

// New picks the bridge for p. iOS requires a picker.
func New(p domain.Platform, picker core.CapturePicker) (core.ScreenShareBridge, error) {
	switch p {
	case domain.PlatformIOS:
		if picker == nil {
			return nil, fmt.Errorf("platform %s needs a capture picker: %w", p, domain.ErrNotSupported)
		}
		return NewPickerBridge(picker), nil
	case domain.PlatformAndroid:
		return DirectBridge{}, nil
	}
	return nil, fmt.Errorf("platform %q: %w", p, domain.ErrNotSupported)
}
