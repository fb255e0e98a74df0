package timeentry

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"net/http"
	"time"

	"go-workforce/internal/assignment"
	"go-workforce/internal/config"
	"go-workforce/internal/shared/apperror"
	"go-workforce/internal/shared/connection"
	"go-workforce/internal/shared/contextutil"
	"go-workforce/internal/shared/metrics"
	timeentryerrors "go-workforce/internal/timeentry/errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const verifyTimeout = 5 * time.Second

//go:generate mockgen -source=timeentry_service.go -destination=mock/timeentry_service_mock.go -package=mock
type Service interface {
	VerifyAndClockIn(ctx context.Context, companyID, employeeID string, req ClockInRequest) (TimeEntryResponse, error)
	StartBreak(ctx context.Context, companyID, employeeID string) (TimeEntryResponse, error)
	EndBreak(ctx context.Context, companyID, employeeID string) (TimeEntryResponse, error)
	ClockOut(ctx context.Context, companyID, employeeID string, req ClockOutRequest) (TimeEntryResponse, error)
	ReviewApproval(ctx context.Context, companyID, reviewerID, id string, req ReviewRequest) (TimeEntryResponse, error)
	MarkNoShow(ctx context.Context, companyID, reviewerID, assignmentID string) (TimeEntryResponse, error)
	GetAll(ctx context.Context, companyID, actorID string, canReadAll bool) ([]TimeEntryResponse, error)
}

type Options struct {
	Policy   config.AttendancePolicy
	Location *time.Location
	// Verifier is optional; without one, submitted verifications are stored as unverified.
	Verifier Verifier
	Now      func() time.Time
}

type service struct {
	db          *sql.DB
	repo        Repository
	assignments assignment.Repository
	policy      config.AttendancePolicy
	loc         *time.Location
	verifier    Verifier
	now         func() time.Time
	logger      *zap.Logger
}

func NewService(db *sql.DB, repo Repository, assignments assignment.Repository, opts Options, logger ...*zap.Logger) Service {
	l := zap.L().Named("timeentry.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("timeentry.service")
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &service{
		db:          db,
		repo:        repo,
		assignments: assignments,
		policy:      opts.Policy,
		loc:         opts.Location,
		verifier:    opts.Verifier,
		now:         opts.Now,
		logger:      l,
	}
}

func (s *service) VerifyAndClockIn(ctx context.Context, companyID, employeeID string, req ClockInRequest) (TimeEntryResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger).With(zap.String("employee_id", employeeID))

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return TimeEntryResponse{}, timeentryerrors.ErrInvalidID
	}
	employeeUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return TimeEntryResponse{}, timeentryerrors.ErrInvalidID
	}
	if req.AssignmentID != "" {
		if _, err := uuid.Parse(req.AssignmentID); err != nil {
			return TimeEntryResponse{}, timeentryerrors.ErrInvalidID
		}
	}

	verification, err := s.verify(ctx, log, companyID, employeeID, req.Verification)
	if err != nil {
		s.rejectClockIn(err)
		return TimeEntryResponse{}, err
	}

	now := s.now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("clock in begin tx failed", zap.Error(err))
		return TimeEntryResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	atx := s.assignments.WithTx(tx)

	if _, err := qtx.LockActiveByEmployee(ctx, companyID, employeeID); err == nil {
		s.rejectClockIn(timeentryerrors.ErrAlreadyClockedIn)
		return TimeEntryResponse{}, timeentryerrors.ErrAlreadyClockedIn
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return TimeEntryResponse{}, err
	}

	a, err := s.resolveAssignment(ctx, atx, companyID, employeeID, req.AssignmentID, now)
	if err != nil {
		s.rejectClockIn(err)
		return TimeEntryResponse{}, err
	}

	entry := &TimeEntry{
		ID:                 uuid.New(),
		CompanyID:          companyUUID,
		EmployeeID:         employeeUUID,
		ClockIn:            now.UTC(),
		Status:             StatusInProgress,
		VerificationStatus: verification,
	}

	if a != nil {
		exists, err := qtx.ExistsForAssignment(ctx, companyID, a.ID.String())
		if err != nil {
			return TimeEntryResponse{}, err
		}
		if exists {
			s.rejectClockIn(timeentryerrors.ErrEntryExists)
			return TimeEntryResponse{}, timeentryerrors.ErrEntryExists
		}

		start, err := s.scheduledStart(ctx, atx, companyID, a)
		if err != nil {
			return TimeEntryResponse{}, err
		}
		if !WithinWindow(now, start, s.policy) {
			log.Warn("clock in outside window",
				zap.String("assignment_id", a.ID.String()),
				zap.Time("scheduled_start", start),
				zap.Time("now", now),
			)
			s.rejectClockIn(timeentryerrors.ErrOutsideWindow)
			return TimeEntryResponse{}, timeentryerrors.ErrOutsideWindow
		}

		entry.AssignmentID = &a.ID
		entry.IsLate = now.After(start.Add(s.policy.LateGrace))

		startedAt := now.UTC()
		a.Status = assignment.StatusInProgress
		a.StartedAt = &startedAt
		if err := atx.Update(ctx, a); err != nil {
			log.Error("clock in assignment update failed", zap.Error(err))
			return TimeEntryResponse{}, err
		}
	}

	if err := qtx.Create(ctx, entry); err != nil {
		if connection.IsUniqueViolation(err, "uq_time_entry_active") {
			return TimeEntryResponse{}, timeentryerrors.ErrAlreadyClockedIn
		}
		log.Error("clock in persist failed", zap.Error(err))
		return TimeEntryResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("clock in commit failed", zap.Error(err))
		return TimeEntryResponse{}, err
	}

	metrics.Get().WorkflowTransitions.WithLabelValues("time_entry", StatusInProgress).Inc()
	log.Info("clocked in",
		zap.String("time_entry_id", entry.ID.String()),
		zap.Bool("scheduled", a != nil),
		zap.Bool("late", entry.IsLate),
		zap.String("verification", verification),
	)
	return mapToResponse(*entry), nil
}

// WithinWindow reports whether now falls in [start-EarlyWindow, start+LateWindow].
func WithinWindow(now, start time.Time, policy config.AttendancePolicy) bool {
	opens := start.Add(-policy.EarlyWindow)
	closes := start.Add(policy.LateWindow)
	return !now.Before(opens) && !now.After(closes)
}

func (s *service) verify(ctx context.Context, log *zap.Logger, companyID, employeeID string, v *Verification) (string, error) {
	if v == nil {
		return VerificationSkipped, nil
	}
	if s.verifier == nil {
		return VerificationUnverified, nil
	}

	vctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	ok, err := s.verifier.Verify(vctx, companyID, employeeID, *v)
	if err != nil {
		log.Warn("clock in verifier unavailable, storing unverified", zap.Error(err))
		return VerificationUnverified, nil
	}
	if !ok {
		return "", timeentryerrors.ErrVerificationRejected
	}
	return VerificationVerified, nil
}

// resolveAssignment returns nil for an unscheduled clock-in.
func (s *service) resolveAssignment(
	ctx context.Context,
	atx assignment.Repository,
	companyID, employeeID, assignmentID string,
	now time.Time,
) (*assignment.ShiftAssignment, error) {
	var (
		a   *assignment.ShiftAssignment
		err error
	)
	if assignmentID != "" {
		a, err = atx.LockByIDAndCompany(ctx, companyID, assignmentID)
	} else {
		today := now.In(s.loc)
		date := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
		a, err = atx.LockActiveByEmployeeAndDate(ctx, companyID, employeeID, date)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, timeentryerrors.ErrAssignmentNotFound
		}
		return nil, err
	}

	if a.EmployeeID.String() != employeeID {
		return nil, timeentryerrors.ErrAssignmentNotFound
	}
	switch a.Status {
	case assignment.StatusCancelled, assignment.StatusCompleted:
		return nil, timeentryerrors.ErrAssignmentNotFound
	}
	if !assignment.CanTransition(a.Status, assignment.StatusInProgress) {
		return nil, timeentryerrors.ErrAssignmentNotStartable
	}
	return a, nil
}

// scheduledStart combines the work date with the resolved shift start in the
// configured timezone.
func (s *service) scheduledStart(ctx context.Context, atx assignment.Repository, companyID string, a *assignment.ShiftAssignment) (time.Time, error) {
	view, err := atx.FindView(ctx, companyID, a.ID.String())
	if err != nil {
		return time.Time{}, err
	}
	return ScheduledStart(a.WorkDate, view.Display().Start, s.loc)
}

func ScheduledStart(workDate time.Time, clock string, loc *time.Location) (time.Time, error) {
	hm, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, apperror.Wrap(err, apperror.CodeInternalError, "assignment has no valid start time", http.StatusInternalServerError)
	}
	return time.Date(workDate.Year(), workDate.Month(), workDate.Day(), hm.Hour(), hm.Minute(), 0, 0, loc), nil
}

func (s *service) rejectClockIn(err error) {
	metrics.Get().ClockInRejected.WithLabelValues(apperror.CodeOf(err)).Inc()
}

func (s *service) StartBreak(ctx context.Context, companyID, employeeID string) (TimeEntryResponse, error) {
	return s.mutateActive(ctx, companyID, employeeID, "start break", func(e *TimeEntry, now time.Time) error {
		if e.Status != StatusInProgress {
			return timeentryerrors.ErrNotInProgress
		}
		e.Status = StatusBreak
		e.BreakStart = &now
		e.BreakEnd = nil
		return nil
	})
}

func (s *service) EndBreak(ctx context.Context, companyID, employeeID string) (TimeEntryResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	return s.mutateActive(ctx, companyID, employeeID, "end break", func(e *TimeEntry, now time.Time) error {
		if e.Status != StatusBreak {
			return timeentryerrors.ErrNotOnBreak
		}
		s.closeBreak(log, e, now)
		e.Status = StatusInProgress
		return nil
	})
}

// closeBreak accumulates the open break. An overlong break is flagged and
// logged but never blocks.
func (s *service) closeBreak(log *zap.Logger, e *TimeEntry, now time.Time) {
	if e.BreakStart == nil {
		return
	}
	e.BreakEnd = &now
	e.BreakSeconds += int(now.Sub(*e.BreakStart) / time.Second)
	e.BreakMinutes = int(math.Round(float64(e.BreakSeconds) / 60))
	if s.policy.MaxBreak > 0 && e.BreakDuration() > s.policy.MaxBreak {
		if !e.BreakExceeded {
			log.Warn("break limit exceeded",
				zap.String("time_entry_id", e.ID.String()),
				zap.String("employee_id", e.EmployeeID.String()),
				zap.Int("break_minutes", e.BreakMinutes),
				zap.Duration("max_break", s.policy.MaxBreak),
			)
		}
		e.BreakExceeded = true
	}
}

func (s *service) ClockOut(ctx context.Context, companyID, employeeID string, req ClockOutRequest) (TimeEntryResponse, error) {
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		return TimeEntryResponse{}, timeentryerrors.ErrInvalidRating
	}
	log := contextutil.GetLogger(ctx, s.logger)

	var parent *uuid.UUID
	resp, err := s.mutateActive(ctx, companyID, employeeID, "clock out", func(e *TimeEntry, now time.Time) error {
		if e.Status == StatusBreak {
			s.closeBreak(log, e, now)
		}
		e.ClockOut = &now
		e.TotalHours = WorkedHours(e.ClockIn, now, e.BreakDuration())
		e.Status = StatusCompleted
		e.ApprovalStatus = ApprovalPending
		e.CallsHandled = req.CallsHandled
		e.Rating = req.Rating
		e.Remarks = req.Remarks
		parent = e.AssignmentID
		return nil
	}, func(ctx context.Context, tx *sql.Tx) error {
		if parent == nil {
			return nil
		}
		return s.completeAssignment(ctx, log, s.assignments.WithTx(tx), companyID, parent.String())
	})
	return resp, err
}

// WorkedHours is clock-out minus clock-in minus breaks, in hours to 2dp, never negative.
func WorkedHours(clockIn, clockOut time.Time, breaks time.Duration) decimal.Decimal {
	worked := clockOut.Sub(clockIn) - breaks
	if worked < 0 {
		worked = 0
	}
	return decimal.NewFromInt(int64(worked / time.Second)).
		Div(decimal.NewFromInt(3600)).
		Round(2)
}

func (s *service) completeAssignment(ctx context.Context, log *zap.Logger, atx assignment.Repository, companyID, assignmentID string) error {
	a, err := atx.LockByIDAndCompany(ctx, companyID, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Warn("clock out parent assignment missing", zap.String("assignment_id", assignmentID))
			return nil
		}
		return err
	}
	if !assignment.CanTransition(a.Status, assignment.StatusCompleted) {
		log.Warn("clock out parent assignment not in progress",
			zap.String("assignment_id", assignmentID),
			zap.String("status", a.Status),
		)
		return nil
	}
	a.Status = assignment.StatusCompleted
	return atx.Update(ctx, a)
}

// mutateActive locks the employee's active entry, applies fn and runs any
// follow-up steps in the same transaction.
func (s *service) mutateActive(
	ctx context.Context,
	companyID, employeeID, op string,
	fn func(e *TimeEntry, now time.Time) error,
	after ...func(ctx context.Context, tx *sql.Tx) error,
) (TimeEntryResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	if _, err := uuid.Parse(employeeID); err != nil {
		return TimeEntryResponse{}, timeentryerrors.ErrInvalidID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error(op+" begin tx failed", zap.Error(err))
		return TimeEntryResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	e, err := qtx.LockActiveByEmployee(ctx, companyID, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TimeEntryResponse{}, timeentryerrors.ErrNoActiveEntry
		}
		return TimeEntryResponse{}, err
	}

	if err := fn(e, s.now().UTC()); err != nil {
		return TimeEntryResponse{}, err
	}
	if err := qtx.Update(ctx, e); err != nil {
		log.Error(op+" persist failed", zap.Error(err))
		return TimeEntryResponse{}, err
	}
	for _, step := range after {
		if err := step(ctx, tx); err != nil {
			log.Error(op+" follow-up failed", zap.Error(err))
			return TimeEntryResponse{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		log.Error(op+" commit failed", zap.Error(err))
		return TimeEntryResponse{}, err
	}

	metrics.Get().WorkflowTransitions.WithLabelValues("time_entry", e.Status).Inc()
	log.Info(op,
		zap.String("time_entry_id", e.ID.String()),
		zap.String("employee_id", employeeID),
		zap.String("status", e.Status),
	)
	return mapToResponse(*e), nil
}

func (s *service) ReviewApproval(ctx context.Context, companyID, reviewerID, id string, req ReviewRequest) (TimeEntryResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	var approval string
	switch req.Action {
	case "approve":
		approval = ApprovalApproved
	case "reject":
		approval = ApprovalRejected
	default:
		return TimeEntryResponse{}, timeentryerrors.ErrInvalidAction
	}
	reviewerUUID, err := uuid.Parse(reviewerID)
	if err != nil {
		return TimeEntryResponse{}, timeentryerrors.ErrInvalidID
	}
	if _, err := uuid.Parse(id); err != nil {
		return TimeEntryResponse{}, timeentryerrors.ErrEntryNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("review time entry begin tx failed", zap.Error(err))
		return TimeEntryResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	e, err := qtx.LockByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TimeEntryResponse{}, timeentryerrors.ErrEntryNotFound
		}
		return TimeEntryResponse{}, err
	}
	if e.Status != StatusCompleted || e.ApprovalStatus != ApprovalPending {
		return TimeEntryResponse{}, timeentryerrors.ErrNotReviewable
	}

	at := s.now().UTC()
	e.ApprovalStatus = approval
	e.ReviewedBy = &reviewerUUID
	e.ReviewedAt = &at
	e.ReviewNotes = req.Notes

	if err := qtx.Update(ctx, e); err != nil {
		log.Error("review time entry persist failed", zap.Error(err))
		return TimeEntryResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		log.Error("review time entry commit failed", zap.Error(err))
		return TimeEntryResponse{}, err
	}

	metrics.Get().WorkflowTransitions.WithLabelValues("time_entry_approval", approval).Inc()
	log.Info("time entry reviewed",
		zap.String("time_entry_id", id),
		zap.String("approval_status", approval),
		zap.String("reviewer_id", reviewerID),
	)
	return mapToResponse(*e), nil
}

// MarkNoShow records a zero-hour completed entry for an assignment nobody
// clocked into. The entry is pre-approved by the reviewer so payroll counts it.
func (s *service) MarkNoShow(ctx context.Context, companyID, reviewerID, assignmentID string) (TimeEntryResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return TimeEntryResponse{}, timeentryerrors.ErrInvalidID
	}
	reviewerUUID, err := uuid.Parse(reviewerID)
	if err != nil {
		return TimeEntryResponse{}, timeentryerrors.ErrInvalidID
	}
	if _, err := uuid.Parse(assignmentID); err != nil {
		return TimeEntryResponse{}, timeentryerrors.ErrAssignmentNotFound
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("mark no-show begin tx failed", zap.Error(err))
		return TimeEntryResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	atx := s.assignments.WithTx(tx)

	a, err := atx.LockByIDAndCompany(ctx, companyID, assignmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return TimeEntryResponse{}, timeentryerrors.ErrAssignmentNotFound
		}
		return TimeEntryResponse{}, err
	}
	if a.Status == assignment.StatusCancelled {
		return TimeEntryResponse{}, timeentryerrors.ErrAssignmentNotFound
	}

	exists, err := qtx.ExistsForAssignment(ctx, companyID, assignmentID)
	if err != nil {
		return TimeEntryResponse{}, err
	}
	if exists {
		return TimeEntryResponse{}, timeentryerrors.ErrEntryExists
	}

	start, err := s.scheduledStart(ctx, atx, companyID, a)
	if err != nil {
		return TimeEntryResponse{}, err
	}
	at := s.now().UTC()
	startUTC := start.UTC()
	entry := &TimeEntry{
		ID:                 uuid.New(),
		CompanyID:          companyUUID,
		EmployeeID:         a.EmployeeID,
		AssignmentID:       &a.ID,
		ClockIn:            startUTC,
		ClockOut:           &startUTC,
		TotalHours:         decimal.Zero,
		Status:             StatusCompleted,
		ApprovalStatus:     ApprovalApproved,
		VerificationStatus: VerificationSkipped,
		IsNoShow:           true,
		ReviewedBy:         &reviewerUUID,
		ReviewedAt:         &at,
	}
	if err := qtx.Create(ctx, entry); err != nil {
		log.Error("mark no-show persist failed", zap.Error(err))
		return TimeEntryResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		log.Error("mark no-show commit failed", zap.Error(err))
		return TimeEntryResponse{}, err
	}

	metrics.Get().WorkflowTransitions.WithLabelValues("time_entry", "no_show").Inc()
	log.Info("no-show recorded",
		zap.String("assignment_id", assignmentID),
		zap.String("employee_id", a.EmployeeID.String()),
	)
	return mapToResponse(*entry), nil
}

func (s *service) GetAll(ctx context.Context, companyID, actorID string, canReadAll bool) ([]TimeEntryResponse, error) {
	var (
		rows []TimeEntry
		err  error
	)
	if canReadAll {
		rows, err = s.repo.FindAllByCompany(ctx, companyID)
	} else {
		if _, parseErr := uuid.Parse(actorID); parseErr != nil {
			return nil, timeentryerrors.ErrInvalidID
		}
		rows, err = s.repo.FindAllByEmployee(ctx, companyID, actorID)
	}
	if err != nil {
		s.logger.Error("get time entries failed", zap.Error(err))
		return nil, err
	}
	res := make([]TimeEntryResponse, len(rows))
	for i, r := range rows {
		res[i] = mapToResponse(r)
	}
	return res, nil
}

func mapToResponse(e TimeEntry) TimeEntryResponse {
	resp := TimeEntryResponse{
		ID:                 e.ID.String(),
		EmployeeID:         e.EmployeeID.String(),
		ClockIn:            e.ClockIn,
		ClockOut:           e.ClockOut,
		BreakStart:         e.BreakStart,
		BreakEnd:           e.BreakEnd,
		BreakMinutes:       e.BreakMinutes,
		BreakExceeded:      e.BreakExceeded,
		TotalHours:         e.TotalHours.StringFixed(2),
		Status:             e.Status,
		ApprovalStatus:     e.ApprovalStatus,
		VerificationStatus: e.VerificationStatus,
		IsLate:             e.IsLate,
		IsNoShow:           e.IsNoShow,
		CallsHandled:       e.CallsHandled,
		Rating:             e.Rating,
		Remarks:            e.Remarks,
		ReviewNotes:        e.ReviewNotes,
	}
	if e.AssignmentID != nil {
		v := e.AssignmentID.String()
		resp.AssignmentID = &v
	}
	if e.ReviewedBy != nil {
		v := e.ReviewedBy.String()
		resp.ReviewedBy = &v
	}
	return resp
}
