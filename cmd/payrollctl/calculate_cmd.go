package main

import (
	"encoding/json"
	"fmt"
	"time"

	"go-workforce/internal/app"
	"go-workforce/internal/config"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type calculateOutput struct {
	Command            string `json:"command"`
	DurationMS         int64  `json:"duration_ms"`
	PeriodID           string `json:"period_id"`
	EmployeesProcessed int    `json:"employees_processed"`
	EmployeesFailed    int    `json:"employees_failed"`
}

func newCalculateCmd(cfg *config.Config) *cobra.Command {
	var (
		companyID string
		periodID  string
	)

	cmd := &cobra.Command{
		Use:   "calculate",
		Short: "Compute or recompute every payroll record of a period",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := uuid.Parse(companyID); err != nil {
				return fmt.Errorf("invalid --company: %w", err)
			}
			if _, err := uuid.Parse(periodID); err != nil {
				return fmt.Errorf("invalid --period: %w", err)
			}

			start := time.Now()
			res, err := app.CalculatePayroll(cmd.Context(), *cfg, companyID, periodID)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(calculateOutput{
				Command:            "calculate",
				DurationMS:         time.Since(start).Milliseconds(),
				PeriodID:           res.PeriodID,
				EmployeesProcessed: res.EmployeesProcessed,
				EmployeesFailed:    res.EmployeesFailed,
			})
		},
	}

	cmd.Flags().StringVar(&companyID, "company", "", "Company UUID (required)")
	cmd.Flags().StringVar(&periodID, "period", "", "Payroll period UUID (required)")
	_ = cmd.MarkFlagRequired("company")
	_ = cmd.MarkFlagRequired("period")
	return cmd
}
