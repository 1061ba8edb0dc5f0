package session

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Middleware resolves the visitor session cookie and attaches a Handle to
// the request context. It never starts a session on its own; callers that
// need one trigger Start through the handle.
func Middleware(manager *Manager, store Store, log *zap.Logger) gin.HandlerFunc {
	log = log.Named("session")

	return func(c *gin.Context) {
		h := &Handle{
			manager: manager,
			store:   store,
			gin:     c,
		}

		if token, ok := manager.ReadToken(c); ok {
			data, err := store.Get(c.Request.Context(), token)
			if err != nil {
				log.Error("session load failed", zap.Error(err))
				c.AbortWithStatus(500)
				return
			}
			h.token = token
			if data != nil {
				h.data = data
			}
		}

		ctx := WithHandle(c.Request.Context(), h)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
