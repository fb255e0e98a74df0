package app

import (
	"context"

	"go-workforce/internal/config"
	"go-workforce/internal/payroll"

	"go.uber.org/zap"
)

// CalculatePayroll runs one period outside the HTTP API.
func CalculatePayroll(ctx context.Context, cfg config.Config, companyID, periodID string) (payroll.CalculateResponse, error) {
	gormDB, sqlDB, err := openDatabase(cfg)
	if err != nil {
		return payroll.CalculateResponse{}, err
	}
	defer sqlDB.Close()

	return newPayrollService(cfg, sqlDB, gormDB, zap.L()).Calculate(ctx, companyID, periodID)
}
