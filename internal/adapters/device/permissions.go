package device

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Meet/internal/domain"
)

// Prompt stands in for the OS permission dialog. It returns true when the
// user allows access.
type Prompt func(ctx context.Context, kind domain.PermissionKind) (bool, error)

// AllowAll answers every prompt with allow.
func AllowAll(context.Context, domain.PermissionKind) (bool, error) { return true, nil }

// Permissions tracks per-kind permission status the way the OS does:
// undetermined and denied kinds may be prompted, blocked kinds never are.
type Permissions struct {
	mu     sync.Mutex
	status map[domain.PermissionKind]domain.PermissionStatus
	prompt Prompt
}

func NewPermissions(initial map[string]string, prompt Prompt) (*Permissions, error) {
	if prompt == nil {
		prompt = AllowAll
	}
	p := &Permissions{
		status: map[domain.PermissionKind]domain.PermissionStatus{
			domain.PermissionCamera:     domain.PermissionUndetermined,
			domain.PermissionMicrophone: domain.PermissionUndetermined,
		},
		prompt: prompt,
	}
	for k, v := range initial {
		kind := domain.PermissionKind(k)
		if _, ok := p.status[kind]; !ok {
			return nil, fmt.Errorf("unknown permission kind %q", k)
		}
		st := domain.PermissionStatus(v)
		switch st {
		case domain.PermissionGranted, domain.PermissionDenied, domain.PermissionBlocked, domain.PermissionUndetermined:
		default:
			return nil, fmt.Errorf("unknown permission status %q for %s", v, k)
		}
		p.status[kind] = st
	}
	return p, nil
}

func (p *Permissions) Check(ctx context.Context, kind domain.PermissionKind) (domain.PermissionStatus, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.statusLocked(kind), nil
}

func (p *Permissions) Request(ctx context.Context, kind domain.PermissionKind) (domain.PermissionStatus, error) {
	p.mu.Lock()
	st := p.statusLocked(kind)
	p.mu.Unlock()
	if st == domain.PermissionGranted || st == domain.PermissionBlocked {
		return st, nil
	}

	ok, err := p.prompt(ctx, kind)
	if err != nil {
		return st, fmt.Errorf("prompt %s: %w", kind, err)
	}
	next := domain.PermissionDenied
	if ok {
		next = domain.PermissionGranted
	}

	p.mu.Lock()
	p.status[kind] = next
	p.mu.Unlock()
	log.Info().Str("module", "device.permissions").Str("kind", string(kind)).Str("status", string(next)).Msg("permission answered")
	return next, nil
}

// Set overrides a status, e.g. when the user changes it in system settings.
func (p *Permissions) Set(kind domain.PermissionKind, st domain.PermissionStatus) {
	p.mu.Lock()
	p.status[kind] = st
	p.mu.Unlock()
}

func (p *Permissions) statusLocked(kind domain.PermissionKind) domain.PermissionStatus {
	if st, ok := p.status[kind]; ok {
		return st
	}
	return domain.PermissionUndetermined
}
