package payroll_test

import (
	"testing"
	"time"

	"go-workforce/internal/config"
	"go-workforce/internal/payroll"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func defaultPolicy() config.PayrollPolicy {
	return config.PayrollPolicy{
		WeeklyRegularHours:   decimal.NewFromInt(40),
		OvertimeMultiplier:   decimal.RequireFromString("1.5"),
		LatePenalty:          decimal.NewFromInt(25),
		NoShowPenalty:        decimal.NewFromInt(100),
		PerformanceBonus:     decimal.NewFromInt(1000),
		PerformanceThreshold: decimal.RequireFromString("4.5"),
	}
}

func hours(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func rating(v int) *int {
	return &v
}

func TestWeeksInPeriod(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2026, 3, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		name       string
		start, end time.Time
		want       int
	}{
		{"single day", day(2), day(2), 1},
		{"one week", day(2), day(8), 1},
		{"eight days", day(2), day(9), 2},
		{"two weeks", day(2), day(15), 2},
		{"full month", day(1), day(31), 5},
		{"inverted", day(9), day(2), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, payroll.WeeksInPeriod(tt.start, tt.end))
		})
	}
}

func TestCompute(t *testing.T) {
	policy := defaultPolicy()
	rate := decimal.NewFromInt(20)

	t.Run("overtime with performance bonus", func(t *testing.T) {
		entries := []payroll.EntrySummary{
			{TotalHours: hours("9"), Rating: rating(5)},
			{TotalHours: hours("9"), Rating: rating(5)},
			{TotalHours: hours("9"), Rating: rating(5)},
			{TotalHours: hours("9"), Rating: rating(5)},
			{TotalHours: hours("9"), Rating: rating(5)},
		}

		b := payroll.Compute(entries, rate, 1, policy)

		assert.Equal(t, "45.00", b.TotalHours.StringFixed(2))
		assert.Equal(t, "40.00", b.RegularHours.StringFixed(2))
		assert.Equal(t, "5.00", b.OvertimeHours.StringFixed(2))
		assert.Equal(t, "800.00", b.HourlyPay.StringFixed(2))
		assert.Equal(t, "150.00", b.OvertimePay.StringFixed(2))
		assert.Equal(t, "950.00", b.GrossPay.StringFixed(2))
		assert.Equal(t, "1000.00", b.Bonus.StringFixed(2))
		assert.Equal(t, "1950.00", b.NetPay.StringFixed(2))
		assert.Equal(t, "5.00", b.AverageRating.StringFixed(2))
	})

	t.Run("ceiling scales with weeks", func(t *testing.T) {
		entries := []payroll.EntrySummary{{TotalHours: hours("75.5")}}

		b := payroll.Compute(entries, rate, 2, policy)

		assert.Equal(t, "75.50", b.RegularHours.StringFixed(2))
		assert.True(t, b.OvertimeHours.IsZero())
		assert.Equal(t, "1510.00", b.GrossPay.StringFixed(2))
	})

	t.Run("late and no show deductions", func(t *testing.T) {
		entries := []payroll.EntrySummary{
			{TotalHours: hours("8"), IsLate: true},
			{TotalHours: hours("8"), IsLate: true},
			{TotalHours: decimal.Zero, IsNoShow: true},
		}

		b := payroll.Compute(entries, rate, 1, policy)

		assert.Equal(t, 2, b.LateCount)
		assert.Equal(t, 1, b.NoShowCount)
		assert.Equal(t, "150.00", b.Deductions.StringFixed(2))
		assert.Equal(t, "320.00", b.GrossPay.StringFixed(2))
		assert.Equal(t, "170.00", b.NetPay.StringFixed(2))
	})

	t.Run("rating just below threshold earns no bonus", func(t *testing.T) {
		entries := []payroll.EntrySummary{
			{TotalHours: hours("1"), Rating: rating(5)},
			{TotalHours: hours("1"), Rating: rating(4)},
			{TotalHours: hours("1"), Rating: rating(5)},
			{TotalHours: hours("1"), Rating: rating(4)},
			{TotalHours: hours("1"), Rating: rating(4)},
		}

		b := payroll.Compute(entries, rate, 1, policy)

		assert.Equal(t, "4.40", b.AverageRating.StringFixed(2))
		assert.True(t, b.Bonus.IsZero())
	})

	t.Run("unrated entries are ignored in the average", func(t *testing.T) {
		entries := []payroll.EntrySummary{
			{TotalHours: hours("4"), Rating: rating(5)},
			{TotalHours: hours("4")},
		}

		b := payroll.Compute(entries, rate, 1, policy)

		assert.Equal(t, "5.00", b.AverageRating.StringFixed(2))
		assert.Equal(t, "1000.00", b.Bonus.StringFixed(2))
	})

	t.Run("no entries", func(t *testing.T) {
		b := payroll.Compute(nil, rate, 1, policy)

		assert.True(t, b.NetPay.IsZero())
		assert.True(t, b.AverageRating.IsZero())
		assert.True(t, b.Bonus.IsZero())
	})

	t.Run("deductions can exceed pay", func(t *testing.T) {
		entries := []payroll.EntrySummary{{IsNoShow: true}, {IsNoShow: true}}

		b := payroll.Compute(entries, rate, 1, policy)

		assert.Equal(t, "-200.00", b.NetPay.StringFixed(2))
	})
}
