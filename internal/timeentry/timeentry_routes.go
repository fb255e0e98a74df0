package timeentry

import (
	"go-workforce/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService middleware.RBACService, auth ...gin.HandlerFunc) {
	entries := r.Group("/time-entries")
	entries.Use(auth...)
	{
		entries.GET("", middleware.RBACAuthorize(rbacService, "attendance", "read"), h.GetAll)
		entries.POST("/clock-in",
			middleware.RateLimitByUser(0.2, 3),
			middleware.RBACAuthorize(rbacService, "attendance", "track"),
			h.ClockIn,
		)
		entries.POST("/break/start", middleware.RBACAuthorize(rbacService, "attendance", "track"), h.StartBreak)
		entries.POST("/break/end", middleware.RBACAuthorize(rbacService, "attendance", "track"), h.EndBreak)
		entries.POST("/clock-out", middleware.RBACAuthorize(rbacService, "attendance", "track"), h.ClockOut)
		entries.POST("/:id/review", middleware.RBACAuthorize(rbacService, "attendance", "approve"), h.Review)
		entries.POST("/no-show", middleware.RBACAuthorize(rbacService, "attendance", "approve"), h.MarkNoShow)
	}
}
