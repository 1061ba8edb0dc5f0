package session

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handle is the per-request view of the visitor session. It is attached to
// the request context by Middleware and lives for one request only.
type Handle struct {
	manager *Manager
	store   Store
	gin     *gin.Context
	token   string
	data    *Data
}

// Has reports whether the request arrived with an established session.
func (h *Handle) Has() bool {
	return h.token != ""
}

// Start creates a session: a fresh token, a persistent cookie on the
// response, and a server-side record. No-op when a session already exists.
func (h *Handle) Start(ctx context.Context) error {
	if h.Has() {
		return nil
	}

	h.token = uuid.NewString()
	if h.data == nil {
		h.data = &Data{}
	}

	if err := h.store.Save(ctx, h.token, h.data); err != nil {
		h.token = ""
		return err
	}

	if h.gin != nil {
		h.manager.Set(h.gin, h.token, time.Now().Add(DefaultTTL))
	}
	return nil
}

// Token returns the opaque session token, empty when no session exists.
func (h *Handle) Token() string {
	return h.token
}

// Data returns the mutable session data. Call Save to persist changes.
func (h *Handle) Data() *Data {
	if h.data == nil {
		h.data = &Data{}
	}
	return h.data
}

func (h *Handle) Save(ctx context.Context) error {
	if !h.Has() {
		if err := h.Start(ctx); err != nil {
			return err
		}
	}
	return h.store.Save(ctx, h.token, h.Data())
}

// End deletes the server-side record and clears the cookie.
func (h *Handle) End(ctx context.Context) error {
	if !h.Has() {
		return nil
	}
	if err := h.store.Delete(ctx, h.token); err != nil {
		return err
	}
	if h.gin != nil {
		h.manager.Clear(h.gin)
	}
	h.token = ""
	h.data = nil
	return nil
}

type handleKey struct{}

// WithHandle stores the session handle in the context.
func WithHandle(ctx context.Context, h *Handle) context.Context {
	return context.WithValue(ctx, handleKey{}, h)
}

// FromContext returns the session handle from context, if set.
func FromContext(ctx context.Context) (*Handle, bool) {
	if ctx == nil {
		return nil, false
	}
	h, ok := ctx.Value(handleKey{}).(*Handle)
	return h, ok
}

// NewHandle builds a handle bound to a store without a gin context. Used by
// callers outside the HTTP layer, mostly tests.
func NewHandle(manager *Manager, store Store, token string, data *Data) *Handle {
	return &Handle{
		manager: manager,
		store:   store,
		token:   token,
		data:    data,
	}
}
