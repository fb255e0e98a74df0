package payroll

import (
	"go-workforce/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService middleware.RBACService,
	rdb *redis.Client,
	auth ...gin.HandlerFunc,
) {
	payroll := r.Group("/payroll")
	payroll.Use(auth...)
	{
		payroll.GET("/periods", middleware.RBACAuthorize(rbacService, "payroll", "read"), handler.GetPeriods)
		payroll.POST("/periods", middleware.RBACAuthorize(rbacService, "payroll", "calculate"), handler.CreatePeriod)
		payroll.GET("/periods/:id/records", middleware.RBACAuthorize(rbacService, "payroll", "read"), handler.GetRecords)

		calculate := []gin.HandlerFunc{middleware.RBACAuthorize(rbacService, "payroll", "calculate")}
		if rdb != nil {
			calculate = append(calculate, middleware.Idempotency(rdb))
		}
		calculate = append(calculate, handler.Calculate)
		payroll.POST("/periods/:id/calculate", calculate...)

		payroll.POST("/records/:id/payment-status", middleware.RBACAuthorize(rbacService, "payroll", "pay"), handler.AdvancePayment)
	}
}
