package platform

import (
	"context"
	"errors"
	"testing"

	"github.com/dkeye/Meet/internal/domain"
)

type stubPicker struct {
	confirm bool
	err     error
	shown   int
}

func (p *stubPicker) Show(ctx context.Context) (bool, error) {
	p.shown++
	return p.confirm, p.err
}

type blockingPicker struct{}

func (blockingPicker) Show(ctx context.Context) (bool, error) {
	<-ctx.Done()
	return false, ctx.Err()
}

func enableCounter(n *int, err error) func(context.Context) error {
	return func(context.Context) error {
		*n++
		return err
	}
}

func TestPickerBridge_ConfirmEnables(t *testing.T) {
	p := &stubPicker{confirm: true}
	var calls int
	res, err := NewPickerBridge(p).StartScreenShare(context.Background(), enableCounter(&calls, nil))
	if err != nil || res != domain.ScreenShareStarted {
		t.Fatalf("res = %s, err = %v", res, err)
	}
	if p.shown != 1 || calls != 1 {
		t.Fatalf("shown = %d, enable calls = %d", p.shown, calls)
	}
}

func TestPickerBridge_DeclineIsNotAnError(t *testing.T) {
	var calls int
	res, err := NewPickerBridge(&stubPicker{}).StartScreenShare(context.Background(), enableCounter(&calls, nil))
	if err != nil || res != domain.ScreenShareCancelled {
		t.Fatalf("res = %s, err = %v", res, err)
	}
	if calls != 0 {
		t.Fatal("enable called after decline")
	}
}

func TestPickerBridge_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var calls int
	res, err := NewPickerBridge(blockingPicker{}).StartScreenShare(ctx, enableCounter(&calls, nil))
	if err != nil || res != domain.ScreenShareCancelled || calls != 0 {
		t.Fatalf("res = %s, err = %v, calls = %d", res, err, calls)
	}
}

func TestPickerBridge_PickerAndEnableErrors(t *testing.T) {
	var calls int
	_, err := NewPickerBridge(&stubPicker{err: errors.New("no window")}).StartScreenShare(context.Background(), enableCounter(&calls, nil))
	if err == nil {
		t.Fatal("picker error swallowed")
	}
	enableErr := errors.New("broadcast extension failed")
	res, err := NewPickerBridge(&stubPicker{confirm: true}).StartScreenShare(context.Background(), enableCounter(&calls, enableErr))
	if !errors.Is(err, enableErr) || res != domain.ScreenShareCancelled {
		t.Fatalf("res = %s, err = %v", res, err)
	}
}

func TestDirectBridge(t *testing.T) {
	var calls int
	res, err := DirectBridge{}.StartScreenShare(context.Background(), enableCounter(&calls, nil))
	if err != nil || res != domain.ScreenShareStarted || calls != 1 {
		t.Fatalf("res = %s, err = %v, calls = %d", res, err, calls)
	}
}

func TestNew(t *testing.T) {
	if b, err := New(domain.PlatformIOS, &stubPicker{}); err != nil {
		t.Fatal(err)
	} else if _, ok := b.(*PickerBridge); !ok {
		t.Fatalf("ios bridge = %T", b)
	}
	if b, err := New(domain.PlatformAndroid, nil); err != nil {
		t.Fatal(err)
	} else if _, ok := b.(DirectBridge); !ok {
		t.Fatalf("android bridge = %T", b)
	}
	if _, err := New(domain.PlatformIOS, nil); !errors.Is(err, domain.ErrNotSupported) {
		t.Fatalf("ios without picker: %v", err)
	}
	if _, err := New("web", nil); !errors.Is(err, domain.ErrNotSupported) {
		t.Fatalf("unknown platform: %v", err)
	}
}
