package middleware

import (
	"go-workforce/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContextLogger assigns a request id and propagates a request-scoped logger
// into the standard context so services can log without knowing gin.
func ContextLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" {
			rid = uuid.New().String()
		}
		c.Set("request_id", rid)
		c.Header("X-Request-ID", rid)

		reqLogger := logger.With(zap.String("request_id", rid))

		ctx := c.Request.Context()
		ctx = contextutil.WithRequestID(ctx, rid)
		ctx = contextutil.WithLogger(ctx, reqLogger)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// ActorContext copies the authenticated user id into the standard context.
// It must run after AuthMiddleware.
func ActorContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString("user_id")
		ctx := contextutil.WithUserID(c.Request.Context(), uid)
		if l := contextutil.GetLogger(ctx, nil); l != nil {
			ctx = contextutil.WithLogger(ctx, l.With(zap.String("user_id", uid)))
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
