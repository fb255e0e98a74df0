package assignment

import (
	"go-workforce/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService middleware.RBACService, auth ...gin.HandlerFunc) {
	schedules := r.Group("/schedules")
	schedules.Use(auth...)
	schedules.GET("/week",
		middleware.RateLimitByUser(3, 10),
		middleware.RBACAuthorize(rbacService, "schedule", "read"),
		handler.Week,
	)

	assignments := r.Group("/assignments")
	assignments.Use(auth...)
	{
		assignments.POST("",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, "schedule", "write"),
			handler.Create,
		)
		assignments.POST("/:id/cancel",
			middleware.RBACAuthorize(rbacService, "schedule", "write"),
			handler.Cancel,
		)
		assignments.PATCH("/:id/status",
			middleware.RBACAuthorize(rbacService, "schedule", "write"),
			handler.UpdateStatus,
		)
	}
}
