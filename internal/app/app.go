package app

import (
	"database/sql"
	"fmt"

	"go-workforce/internal/assignment"
	"go-workforce/internal/config"
	"go-workforce/internal/employee"
	"go-workforce/internal/leave"
	"go-workforce/internal/messaging/kafka"
	"go-workforce/internal/payroll"
	"go-workforce/internal/rbac"
	"go-workforce/internal/shared/connection"
	"go-workforce/internal/shift"
	"go-workforce/internal/swap"
	"go-workforce/internal/timeentry"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BuildApp connects infrastructure and registers every module on router.
// The returned func releases the connections.
func BuildApp(router *gin.Engine, cfg config.Config) (func(), error) {
	logger := zap.L().Named("app")

	gormDB, sqlDB, err := openDatabase(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("database connection established")

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = connection.ConnectRedisWithRetry(cfg.Redis.Addr, cfg.DB.MaxRetries)
		if err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		logger.Info("redis connection established")
	} else {
		logger.Warn("REDIS_ADDR not set, idempotency keys are ignored")
	}

	if err := registerModules(router, cfg, sqlDB, gormDB, rdb); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return func() {
		if rdb != nil {
			_ = rdb.Close()
		}
		_ = sqlDB.Close()
	}, nil
}

func openDatabase(cfg config.Config) (*gorm.DB, *sql.DB, error) {
	gormDB, err := connection.ConnectGORMWithRetry(
		cfg.DB.Host,
		cfg.DB.User,
		cfg.DB.Password,
		cfg.DB.Name,
		cfg.DB.Port,
		cfg.DB.SSLMode,
		cfg.DB.MaxRetries,
	)
	if err != nil {
		return nil, nil, err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, nil, err
	}

	if cfg.DB.AutoMigrate {
		if err := migrate(gormDB); err != nil {
			_ = sqlDB.Close()
			return nil, nil, fmt.Errorf("auto migrate: %w", err)
		}
		zap.L().Named("app").Info("schema auto-migrated")
	}

	return gormDB, sqlDB, nil
}

// migrate is for local development; production schemas are managed outside
// this service.
func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&employee.Employee{},
		&employee.TeamMember{},
		&employee.ManagerLocation{},
		&shift.Shift{},
		&assignment.ShiftAssignment{},
		&swap.ShiftSwapRequest{},
		&leave.Leave{},
		&timeentry.TimeEntry{},
		&payroll.Period{},
		&payroll.Record{},
		&rbac.RolePermissionRow{},
		&kafka.OutboxRecord{},
	)
}

// newPayrollService is shared by the API, the consumer and payrollctl so all
// three compute with the same policy.
func newPayrollService(cfg config.Config, sqlDB *sql.DB, gormDB *gorm.DB, logger *zap.Logger) payroll.Service {
	return payroll.NewService(sqlDB, payroll.NewRepository(gormDB), cfg.Payroll, cfg.Location(), logger)
}
