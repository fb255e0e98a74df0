package shift

import (
	"go-workforce/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService middleware.RBACService, auth ...gin.HandlerFunc) {
	shifts := r.Group("/shifts")
	shifts.Use(auth...)
	{
		shifts.GET("", middleware.RBACAuthorize(rbacService, "shift", "read"), handler.GetAll)
		shifts.POST("", middleware.RBACAuthorize(rbacService, "shift", "write"), handler.Create)
		shifts.POST("/:id/deactivate", middleware.RBACAuthorize(rbacService, "shift", "write"), handler.Deactivate)
	}
}
