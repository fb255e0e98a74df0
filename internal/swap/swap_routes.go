package swap

import (
	"go-workforce/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService middleware.RBACService, auth ...gin.HandlerFunc) {
	swaps := r.Group("/swaps")
	swaps.Use(auth...)
	{
		swaps.GET("", middleware.RBACAuthorize(rbacService, "swap", "read"), handler.GetAll)
		swaps.GET("/:id", middleware.RBACAuthorize(rbacService, "swap", "read"), handler.GetByID)
		swaps.POST("",
			middleware.RateLimitByUser(0.5, 3),
			middleware.RBACAuthorize(rbacService, "swap", "create"),
			handler.Propose,
		)
		swaps.POST("/:id/resolve",
			middleware.RBACAuthorize(rbacService, "swap", "approve"),
			handler.Resolve,
		)
	}
}
