package app

import (
	"database/sql"
	"net/http"

	"go-workforce/internal/assignment"
	"go-workforce/internal/config"
	"go-workforce/internal/employee"
	"go-workforce/internal/leave"
	"go-workforce/internal/messaging/kafka"
	"go-workforce/internal/middleware"
	"go-workforce/internal/notification"
	"go-workforce/internal/payroll"
	"go-workforce/internal/rbac"
	"go-workforce/internal/rbac/infra"
	"go-workforce/internal/shared/apperror"
	"go-workforce/internal/shared/metrics"
	"go-workforce/internal/shared/response"
	"go-workforce/internal/shift"
	"go-workforce/internal/swap"
	"go-workforce/internal/timeentry"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	cfg config.Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	logger := zap.L()

	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	assignmentRepo := assignment.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	shiftRepo := shift.NewRepository(gormDB)
	swapRepo := swap.NewRepository(gormDB)
	timeEntryRepo := timeentry.NewRepository(gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer()
	if err != nil {
		return err
	}
	rbacService, err := rbac.NewService(rbacRepo, enforcer, logger)
	if err != nil {
		return err
	}

	publisher := notification.NewOutboxPublisher(outboxRepo)

	// --- Services ---
	assignmentService := assignment.NewService(db, assignmentRepo, logger)
	employeeService := employee.NewService(db, employeeRepo, logger)
	leaveService := leave.NewService(db, leaveRepo, employeeService, publisher, logger)
	payrollService := newPayrollService(cfg, db, gormDB, logger)
	shiftService := shift.NewService(shiftRepo, logger)
	swapService := swap.NewService(db, swapRepo, assignmentRepo, publisher, logger)
	timeEntryService := timeentry.NewService(db, timeEntryRepo, assignmentRepo, timeentry.Options{
		Policy:   cfg.Attendance,
		Location: cfg.Location(),
	}, logger)

	// --- Handlers ---
	assignmentHandler := assignment.NewHandler(assignmentService, logger)
	employeeHandler := employee.NewHandler(employeeService, logger)
	leaveHandler := leave.NewHandler(leaveService, logger)
	payrollHandler := payroll.NewHandler(payrollService, logger)
	rbacHandler := rbac.NewHandler(rbacService)
	shiftHandler := shift.NewHandler(shiftService, logger)
	swapHandler := swap.NewHandler(swapService, logger)
	timeEntryHandler := timeentry.NewHandler(timeEntryService, logger)

	router.Use(middleware.ContextLogger(logger))
	router.GET("/healthz", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			response.Error(c, http.StatusServiceUnavailable, apperror.CodeServiceUnavailable, "database unreachable", nil)
			return
		}
		response.Success(c, http.StatusOK, gin.H{"status": "ok"}, nil)
	})
	router.GET("/metrics", metrics.Handler())

	auth := []gin.HandlerFunc{middleware.AuthMiddleware(cfg.JWTSecret), middleware.ActorContext()}

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		assignment.RegisterRoutes(api, assignmentHandler, rbacService, auth...)
		employee.RegisterRoutes(api, employeeHandler, rbacService, auth...)
		leave.RegisterRoutes(api, leaveHandler, rbacService, auth...)
		payroll.RegisterRoutes(api, payrollHandler, rbacService, rdb, auth...)
		shift.RegisterRoutes(api, shiftHandler, rbacService, auth...)
		swap.RegisterRoutes(api, swapHandler, rbacService, auth...)
		timeentry.RegisterRoutes(api, timeEntryHandler, rbacService, auth...)
		rbac.RegisterRoutes(api, rbacHandler, auth[0])
	}

	return nil
}
