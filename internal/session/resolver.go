package session

import (
	"context"
	"errors"

	"github.com/smallbiznis/siftbridge/internal/config"
)

// ErrNoSession means the request context carries no session handle, which
// indicates the middleware is not installed on the route.
var ErrNoSession = errors.New("no session handle in request context")

// Resolver derives the site-scoped session identifier sent to the scoring
// API. The tenant prefix is injected configuration, so one Sift account can
// serve several logical stores without colliding session ids.
type Resolver struct {
	prefix string
}

func NewResolver(cfg config.Config) *Resolver {
	return &Resolver{prefix: cfg.TenantPrefix}
}

// SessionID returns prefix + token, starting a session (and setting the
// visitor cookie) when none exists yet. Calling it is a side effect, not a
// read-only lookup.
func (r *Resolver) SessionID(ctx context.Context) (string, error) {
	h, ok := FromContext(ctx)
	if !ok {
		return "", ErrNoSession
	}

	if !h.Has() {
		if err := h.Start(ctx); err != nil {
			return "", err
		}
	}

	return r.prefix + h.Token(), nil
}
