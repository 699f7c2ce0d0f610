package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"warden/config"
	"warden/internal/domain/service"
	"warden/internal/usecase"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestValidator() *usecase.Validator {
	cfg := &config.Config{}
	cfg.Policy = config.PolicyConfig{
		DisplayNameMinLength: 2,
		DisplayNameMaxLength: 100,
		PasswordMinLength:    6,
		PasswordMaxLength:    72,
	}

	return usecase.NewValidator(cfg)
}

// capturePublisher keeps every audit event and can be told to fail.
type capturePublisher struct {
	mu     sync.Mutex
	events []service.AuditEvent
	err    error
}

func (p *capturePublisher) PublishAuditEvent(_ context.Context, event *service.AuditEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, *event)

	return p.err
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}

	return out
}
