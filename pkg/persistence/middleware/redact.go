package middleware

import (
	"context"

	"github.com/aretw0/heartsquest/pkg/domain"
	"github.com/aretw0/heartsquest/pkg/ports"
)

type redactMiddleware struct {
	next ports.StateStore
}

// NewRedactMiddleware creates a middleware that never writes the free-text
// answer buffer to the inner store. A resumed trivia step starts with an
// empty buffer.
func NewRedactMiddleware() Middleware {
	return func(next ports.StateStore) ports.StateStore {
		return &redactMiddleware{next: next}
	}
}

func (m *redactMiddleware) Save(ctx context.Context, sessionID string, p *domain.Progress) error {
	if p.Answer == "" {
		return m.next.Save(ctx, sessionID, p)
	}
	// Copy so the controller's snapshot keeps its buffer.
	cloned := p.Clone()
	cloned.Answer = ""
	return m.next.Save(ctx, sessionID, cloned)
}

func (m *redactMiddleware) Load(ctx context.Context, sessionID string) (*domain.Progress, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *redactMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *redactMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
