package payroll

import (
	"time"

	"go-workforce/internal/config"

	"github.com/shopspring/decimal"
)

// Breakdown is the computed part of a payroll record.
type Breakdown struct {
	TotalHours    decimal.Decimal
	RegularHours  decimal.Decimal
	OvertimeHours decimal.Decimal
	HourlyPay     decimal.Decimal
	OvertimePay   decimal.Decimal
	Bonus         decimal.Decimal
	Deductions    decimal.Decimal
	GrossPay      decimal.Decimal
	NetPay        decimal.Decimal
	LateCount     int
	NoShowCount   int
	AverageRating decimal.Decimal
}

// WeeksInPeriod is the inclusive day span divided by seven, rounded up, never below one.
func WeeksInPeriod(start, end time.Time) int {
	days := int(end.Sub(start).Hours()/24) + 1
	weeks := (days + 6) / 7
	if weeks < 1 {
		return 1
	}
	return weeks
}

// Compute splits hours at the weekly ceiling and prices them:
//
//	gross = regular*rate + overtime*rate*multiplier
//	net   = gross + bonus - deductions
//
// Every entry's hours are priced once.
func Compute(entries []EntrySummary, rate decimal.Decimal, weeks int, policy config.PayrollPolicy) Breakdown {
	var (
		b           Breakdown
		ratingSum   int64
		ratingCount int64
	)

	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.TotalHours)
		if e.IsLate {
			b.LateCount++
		}
		if e.IsNoShow {
			b.NoShowCount++
		}
		if e.Rating != nil {
			ratingSum += int64(*e.Rating)
			ratingCount++
		}
	}
	b.TotalHours = total.Round(2)

	ceiling := policy.WeeklyRegularHours.Mul(decimal.NewFromInt(int64(weeks)))
	b.RegularHours = decimal.Min(b.TotalHours, ceiling)
	b.OvertimeHours = b.TotalHours.Sub(b.RegularHours)

	b.HourlyPay = b.RegularHours.Mul(rate).Round(2)
	b.OvertimePay = b.OvertimeHours.Mul(rate).Mul(policy.OvertimeMultiplier).Round(2)
	b.GrossPay = b.HourlyPay.Add(b.OvertimePay)

	b.Deductions = policy.LatePenalty.Mul(decimal.NewFromInt(int64(b.LateCount))).
		Add(policy.NoShowPenalty.Mul(decimal.NewFromInt(int64(b.NoShowCount)))).
		Round(2)

	b.Bonus = decimal.Zero
	b.AverageRating = decimal.Zero
	if ratingCount > 0 {
		avg := decimal.NewFromInt(ratingSum).Div(decimal.NewFromInt(ratingCount))
		b.AverageRating = avg.Round(2)
		if avg.GreaterThanOrEqual(policy.PerformanceThreshold) {
			b.Bonus = policy.PerformanceBonus.Round(2)
		}
	}

	b.NetPay = b.GrossPay.Add(b.Bonus).Sub(b.Deductions)
	return b
}
