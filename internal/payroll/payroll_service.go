package payroll

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go-workforce/internal/config"
	payrollerrors "go-workforce/internal/payroll/errors"
	"go-workforce/internal/shared/connection"
	"go-workforce/internal/shared/contextutil"
	"go-workforce/internal/shared/metrics"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const dateLayout = "2006-01-02"

type Service interface {
	CreatePeriod(ctx context.Context, companyID, actorID string, req CreatePeriodRequest) (PeriodResponse, error)
	GetPeriods(ctx context.Context, companyID string) ([]PeriodResponse, error)
	Calculate(ctx context.Context, companyID, periodID string) (CalculateResponse, error)
	GetRecords(ctx context.Context, companyID, periodID string) ([]RecordResponse, error)
	AdvancePayment(ctx context.Context, companyID, actorID, recordID string, req AdvancePaymentRequest) (RecordResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	policy config.PayrollPolicy
	loc    *time.Location
	group  singleflight.Group
	now    func() time.Time
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, policy config.PayrollPolicy, loc *time.Location, logger ...*zap.Logger) Service {
	l := zap.L().Named("payroll.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.service")
	}
	if loc == nil {
		loc = time.UTC
	}
	return &service{
		db:     db,
		repo:   repo,
		policy: policy,
		loc:    loc,
		now:    time.Now,
		logger: l,
	}
}

func (s *service) CreatePeriod(ctx context.Context, companyID, actorID string, req CreatePeriodRequest) (PeriodResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return PeriodResponse{}, payrollerrors.ErrInvalidCompanyID
	}
	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return PeriodResponse{}, payrollerrors.ErrInvalidActorID
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return PeriodResponse{}, err
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return PeriodResponse{}, err
	}
	if start.After(end) {
		return PeriodResponse{}, payrollerrors.ErrInvalidDateRange
	}

	p := &Period{
		ID:        uuid.New(),
		CompanyID: companyUUID,
		Name:      req.Name,
		StartDate: start,
		EndDate:   end,
		Status:    PeriodOpen,
		CreatedBy: actorUUID,
	}
	if err := s.repo.CreatePeriod(ctx, p); err != nil {
		if connection.IsUniqueViolation(err, "uq_payroll_period_range") {
			return PeriodResponse{}, payrollerrors.ErrPeriodExists
		}
		log.Error("create payroll period failed", zap.Error(err))
		return PeriodResponse{}, err
	}

	log.Info("payroll period created",
		zap.String("period_id", p.ID.String()),
		zap.String("start_date", req.StartDate),
		zap.String("end_date", req.EndDate),
	)
	return mapPeriodToResponse(*p), nil
}

func (s *service) GetPeriods(ctx context.Context, companyID string) ([]PeriodResponse, error) {
	periods, err := s.repo.FindPeriods(ctx, companyID)
	if err != nil {
		s.logger.Error("get payroll periods failed", zap.Error(err))
		return nil, err
	}
	res := make([]PeriodResponse, len(periods))
	for i, p := range periods {
		res[i] = mapPeriodToResponse(p)
	}
	return res, nil
}

// Calculate computes and upserts one record per active employee. Concurrent
// calls for the same period share a single run. Each upsert commits on its
// own, so a failing employee is logged and skipped and a re-run is safe.
func (s *service) Calculate(ctx context.Context, companyID, periodID string) (CalculateResponse, error) {
	if _, err := uuid.Parse(periodID); err != nil {
		return CalculateResponse{}, payrollerrors.ErrPeriodNotFound
	}

	v, err, shared := s.group.Do(companyID+":"+periodID, func() (any, error) {
		return s.calculate(context.WithoutCancel(ctx), companyID, periodID)
	})
	if err != nil {
		return CalculateResponse{}, err
	}
	if shared {
		contextutil.GetLogger(ctx, s.logger).Debug("payroll calculation shared with a concurrent caller",
			zap.String("period_id", periodID),
		)
	}
	return v.(CalculateResponse), nil
}

func (s *service) calculate(ctx context.Context, companyID, periodID string) (CalculateResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger).With(
		zap.String("company_id", companyID),
		zap.String("period_id", periodID),
	)
	started := time.Now()
	defer func() {
		metrics.Get().PayrollDuration.Observe(time.Since(started).Seconds())
	}()

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return CalculateResponse{}, payrollerrors.ErrInvalidCompanyID
	}

	period, err := s.repo.FindPeriod(ctx, companyID, periodID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CalculateResponse{}, payrollerrors.ErrPeriodNotFound
		}
		return CalculateResponse{}, err
	}

	employees, err := s.repo.FindActiveEmployees(ctx, companyID)
	if err != nil {
		log.Error("payroll load employees failed", zap.Error(err))
		return CalculateResponse{}, err
	}

	from := time.Date(period.StartDate.Year(), period.StartDate.Month(), period.StartDate.Day(), 0, 0, 0, 0, s.loc)
	to := time.Date(period.EndDate.Year(), period.EndDate.Month(), period.EndDate.Day(), 0, 0, 0, 0, s.loc).AddDate(0, 0, 1)
	weeks := WeeksInPeriod(period.StartDate, period.EndDate)

	resp := CalculateResponse{PeriodID: periodID}
	for _, emp := range employees {
		if err := s.calculateEmployee(ctx, companyUUID, period.ID, emp, from, to, weeks); err != nil {
			resp.EmployeesFailed++
			metrics.Get().PayrollEmployees.WithLabelValues("failed").Inc()
			log.Error("payroll employee skipped",
				zap.String("employee_id", emp.ID.String()),
				zap.Error(err),
			)
			continue
		}
		resp.EmployeesProcessed++
		metrics.Get().PayrollEmployees.WithLabelValues("processed").Inc()
	}

	if err := s.repo.MarkPeriodCalculated(ctx, companyID, periodID, s.now().UTC()); err != nil {
		log.Warn("payroll mark period calculated failed", zap.Error(err))
	}

	log.Info("payroll calculated",
		zap.Int("employees_processed", resp.EmployeesProcessed),
		zap.Int("employees_failed", resp.EmployeesFailed),
		zap.Int("weeks", weeks),
	)
	return resp, nil
}

func (s *service) calculateEmployee(
	ctx context.Context,
	companyID, periodID uuid.UUID,
	emp EmployeeRate,
	from, to time.Time,
	weeks int,
) error {
	entries, err := s.repo.FindEntries(ctx, companyID.String(), emp.ID.String(), from, to)
	if err != nil {
		return err
	}

	rate := decimal.Zero
	if emp.HourlyRate.Valid {
		rate = emp.HourlyRate.Decimal
	}
	b := Compute(entries, rate, weeks, s.policy)

	return s.repo.UpsertRecord(ctx, &Record{
		ID:            uuid.New(),
		CompanyID:     companyID,
		EmployeeID:    emp.ID,
		PeriodID:      periodID,
		TotalHours:    b.TotalHours,
		RegularHours:  b.RegularHours,
		OvertimeHours: b.OvertimeHours,
		HourlyRate:    rate.Round(2),
		HourlyPay:     b.HourlyPay,
		OvertimePay:   b.OvertimePay,
		BonusAmount:   b.Bonus,
		Deductions:    b.Deductions,
		GrossPay:      b.GrossPay,
		NetPay:        b.NetPay,
		LateCount:     b.LateCount,
		NoShowCount:   b.NoShowCount,
		AverageRating: b.AverageRating,
		PaymentStatus: PaymentCalculated,
	})
}

func (s *service) GetRecords(ctx context.Context, companyID, periodID string) ([]RecordResponse, error) {
	if _, err := uuid.Parse(periodID); err != nil {
		return nil, payrollerrors.ErrPeriodNotFound
	}
	if _, err := s.repo.FindPeriod(ctx, companyID, periodID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payrollerrors.ErrPeriodNotFound
		}
		return nil, err
	}

	rows, err := s.repo.FindRecords(ctx, companyID, periodID)
	if err != nil {
		s.logger.Error("get payroll records failed", zap.Error(err))
		return nil, err
	}
	res := make([]RecordResponse, len(rows))
	for i, r := range rows {
		res[i] = mapRecordToResponse(r)
	}
	return res, nil
}

var paymentTransitions = map[string]string{
	PaymentCalculated: PaymentApproved,
	PaymentApproved:   PaymentPaid,
}

// AdvancePayment moves a record one step along calculated -> approved -> paid.
func (s *service) AdvancePayment(ctx context.Context, companyID, actorID, recordID string, req AdvancePaymentRequest) (RecordResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	actorUUID, err := uuid.Parse(actorID)
	if err != nil {
		return RecordResponse{}, payrollerrors.ErrInvalidActorID
	}
	if _, err := uuid.Parse(recordID); err != nil {
		return RecordResponse{}, payrollerrors.ErrRecordNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("advance payment begin tx failed", zap.Error(err))
		return RecordResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	rec, err := qtx.LockRecord(ctx, companyID, recordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RecordResponse{}, payrollerrors.ErrRecordNotFound
		}
		return RecordResponse{}, err
	}
	if paymentTransitions[rec.PaymentStatus] != req.Status {
		return RecordResponse{}, payrollerrors.ErrInvalidStatusTransition
	}

	rec.PaymentStatus = req.Status
	switch req.Status {
	case PaymentApproved:
		rec.ApprovedBy = &actorUUID
	case PaymentPaid:
		at := s.now().UTC()
		rec.PaidAt = &at
	}

	if err := qtx.UpdateRecord(ctx, rec); err != nil {
		log.Error("advance payment persist failed", zap.Error(err))
		return RecordResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		log.Error("advance payment commit failed", zap.Error(err))
		return RecordResponse{}, err
	}

	metrics.Get().WorkflowTransitions.WithLabelValues("payment", req.Status).Inc()
	log.Info("payroll payment advanced",
		zap.String("record_id", recordID),
		zap.String("payment_status", req.Status),
	)
	return mapRecordToResponse(*rec), nil
}

func parseDate(v string) (time.Time, error) {
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, payrollerrors.ErrInvalidDateFormat
	}
	return t, nil
}

func mapPeriodToResponse(p Period) PeriodResponse {
	return PeriodResponse{
		ID:           p.ID.String(),
		Name:         p.Name,
		StartDate:    p.StartDate.Format(dateLayout),
		EndDate:      p.EndDate.Format(dateLayout),
		Status:       p.Status,
		CalculatedAt: p.CalculatedAt,
	}
}

func mapRecordToResponse(r Record) RecordResponse {
	return RecordResponse{
		ID:            r.ID.String(),
		EmployeeID:    r.EmployeeID.String(),
		PeriodID:      r.PeriodID.String(),
		TotalHours:    r.TotalHours.StringFixed(2),
		RegularHours:  r.RegularHours.StringFixed(2),
		OvertimeHours: r.OvertimeHours.StringFixed(2),
		HourlyRate:    r.HourlyRate.StringFixed(2),
		HourlyPay:     r.HourlyPay.StringFixed(2),
		OvertimePay:   r.OvertimePay.StringFixed(2),
		BonusAmount:   r.BonusAmount.StringFixed(2),
		Deductions:    r.Deductions.StringFixed(2),
		GrossPay:      r.GrossPay.StringFixed(2),
		NetPay:        r.NetPay.StringFixed(2),
		LateCount:     r.LateCount,
		NoShowCount:   r.NoShowCount,
		AverageRating: r.AverageRating.StringFixed(2),
		PaymentStatus: r.PaymentStatus,
		PaidAt:        r.PaidAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
