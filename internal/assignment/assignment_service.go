package assignment

import (
	"context"
	"database/sql"
	"errors"
	"time"

	assignmenterrors "go-workforce/internal/assignment/errors"
	"go-workforce/internal/shared/connection"
	"go-workforce/internal/shared/contextutil"
	"go-workforce/internal/shift"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const uniqueActiveIndex = "uq_assignment_employee_date_active"

type Service interface {
	Create(ctx context.Context, companyID, actorID string, req CreateAssignmentRequest) (AssignmentResponse, error)
	Cancel(ctx context.Context, companyID, id string) (AssignmentResponse, error)
	UpdateStatus(ctx context.Context, companyID, id string, req UpdateStatusRequest) (AssignmentResponse, error)
	ListForWeek(ctx context.Context, companyID, date, employeeID string) (WeekScheduleResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("assignment.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("assignment.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) Create(
	ctx context.Context,
	companyID, actorID string,
	req CreateAssignmentRequest,
) (AssignmentResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("create assignment requested",
		zap.String("company_id", companyID),
		zap.String("employee_id", req.EmployeeID),
		zap.String("work_date", req.WorkDate),
	)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return AssignmentResponse{}, assignmenterrors.ErrInvalidID
	}
	employeeUUID, err := uuid.Parse(req.EmployeeID)
	if err != nil {
		return AssignmentResponse{}, assignmenterrors.ErrInvalidID
	}
	workDate, err := time.Parse(DateLayout, req.WorkDate)
	if err != nil {
		return AssignmentResponse{}, assignmenterrors.ErrInvalidDate
	}

	a := &ShiftAssignment{
		ID:         uuid.New(),
		CompanyID:  companyUUID,
		EmployeeID: employeeUUID,
		WorkDate:   workDate,
		Status:     StatusAssigned,
		AssignedBy: uuidPtr(actorID),
		Notes:      req.Notes,
	}
	switch {
	case req.ShiftID != "":
		shiftUUID, err := uuid.Parse(req.ShiftID)
		if err != nil {
			return AssignmentResponse{}, assignmenterrors.ErrInvalidID
		}
		a.ShiftID = &shiftUUID
	case req.CustomName != "" && req.CustomStart != "" && req.CustomEnd != "":
	default:
		return AssignmentResponse{}, assignmenterrors.ErrShiftRequired
	}
	if err := applyOverride(a, req); err != nil {
		return AssignmentResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("create assignment begin tx failed", zap.Error(err))
		return AssignmentResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	empl, err := qtx.FindEmployee(ctx, companyID, req.EmployeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AssignmentResponse{}, assignmenterrors.ErrEmployeeNotFound
		}
		return AssignmentResponse{}, err
	}
	if !empl.IsActive {
		return AssignmentResponse{}, assignmenterrors.ErrEmployeeNotFound
	}

	view := AssignmentView{EmployeeName: empl.FullName}
	if a.ShiftID != nil {
		sh, err := qtx.FindShift(ctx, companyID, a.ShiftID.String())
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return AssignmentResponse{}, assignmenterrors.ErrShiftNotFound
			}
			return AssignmentResponse{}, err
		}
		if !sh.IsActive {
			return AssignmentResponse{}, assignmenterrors.ErrShiftNotFound
		}
		view.ShiftName, view.ShiftStart, view.ShiftEnd, view.ShiftColor = &sh.Name, &sh.StartTime, &sh.EndTime, &sh.Color
	}

	if _, err := qtx.FindActiveByEmployeeAndDate(ctx, companyID, req.EmployeeID, workDate); err == nil {
		return AssignmentResponse{}, assignmenterrors.ErrAlreadyAssigned
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return AssignmentResponse{}, err
	}

	if err := qtx.Create(ctx, a); err != nil {
		if connection.IsUniqueViolation(err, uniqueActiveIndex) {
			return AssignmentResponse{}, assignmenterrors.ErrAlreadyAssigned
		}
		log.Error("create assignment persist failed", zap.Error(err))
		return AssignmentResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("create assignment commit failed", zap.Error(err))
		return AssignmentResponse{}, err
	}

	log.Info("assignment created",
		zap.String("assignment_id", a.ID.String()),
		zap.String("employee_id", req.EmployeeID),
		zap.String("work_date", req.WorkDate),
	)

	view.ShiftAssignment = *a
	return MapViewToResponse(view), nil
}

// Cancel is idempotent on an already cancelled assignment.
func (s *service) Cancel(ctx context.Context, companyID, id string) (AssignmentResponse, error) {
	return s.transition(ctx, companyID, id, StatusCancelled)
}

func (s *service) UpdateStatus(ctx context.Context, companyID, id string, req UpdateStatusRequest) (AssignmentResponse, error) {
	if !IsKnownStatus(req.Status) {
		return AssignmentResponse{}, assignmenterrors.ErrInvalidStatus
	}
	return s.transition(ctx, companyID, id, req.Status)
}

func (s *service) transition(ctx context.Context, companyID, id, to string) (AssignmentResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	if _, err := uuid.Parse(id); err != nil {
		return AssignmentResponse{}, assignmenterrors.ErrInvalidID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("assignment transition begin tx failed", zap.Error(err))
		return AssignmentResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	a, err := qtx.LockByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return AssignmentResponse{}, mapRepositoryError(err)
	}

	from := a.Status
	if from != to {
		if !CanTransition(from, to) {
			if to == StatusCancelled && from == StatusCompleted {
				return AssignmentResponse{}, assignmenterrors.ErrAssignmentCompleted
			}
			return AssignmentResponse{}, assignmenterrors.ErrInvalidTransition
		}
		a.Status = to
		if err := qtx.Update(ctx, a); err != nil {
			log.Error("assignment transition persist failed", zap.String("assignment_id", id), zap.Error(err))
			return AssignmentResponse{}, err
		}
	}

	view, err := qtx.FindView(ctx, companyID, id)
	if err != nil {
		return AssignmentResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		log.Error("assignment transition commit failed", zap.Error(err))
		return AssignmentResponse{}, err
	}

	if from != to {
		log.Info("assignment status changed",
			zap.String("assignment_id", id),
			zap.String("from", from),
			zap.String("to", to),
		)
	}
	return MapViewToResponse(*view), nil
}

// ListForWeek returns the Monday to Sunday grid containing date.
func (s *service) ListForWeek(ctx context.Context, companyID, date, employeeID string) (WeekScheduleResponse, error) {
	day, err := time.Parse(DateLayout, date)
	if err != nil {
		return WeekScheduleResponse{}, assignmenterrors.ErrInvalidDate
	}
	if employeeID != "" {
		if _, err := uuid.Parse(employeeID); err != nil {
			return WeekScheduleResponse{}, assignmenterrors.ErrInvalidID
		}
	}
	monday, sunday := WeekBounds(day)

	employees, err := s.repo.FindScheduleEmployees(ctx, companyID, employeeID)
	if err != nil {
		s.logger.Error("list week employees failed", zap.Error(err))
		return WeekScheduleResponse{}, err
	}
	views, err := s.repo.FindViewsInRange(ctx, companyID, monday, sunday, employeeID)
	if err != nil {
		s.logger.Error("list week assignments failed", zap.Error(err))
		return WeekScheduleResponse{}, err
	}

	byEmployee := make(map[uuid.UUID]map[string]AssignmentResponse, len(employees))
	for _, v := range views {
		m, ok := byEmployee[v.EmployeeID]
		if !ok {
			m = make(map[string]AssignmentResponse)
			byEmployee[v.EmployeeID] = m
		}
		m[v.WorkDate.Format(DateLayout)] = MapViewToResponse(v)
	}

	resp := WeekScheduleResponse{
		WeekStart: monday.Format(DateLayout),
		WeekEnd:   sunday.Format(DateLayout),
		Employees: make([]EmployeeWeek, 0, len(employees)),
	}
	for _, e := range employees {
		assignments := byEmployee[e.ID]
		if assignments == nil {
			assignments = map[string]AssignmentResponse{}
		}
		resp.Employees = append(resp.Employees, EmployeeWeek{
			EmployeeID:  e.ID.String(),
			FullName:    e.FullName,
			Assignments: assignments,
		})
	}
	return resp, nil
}

// WeekBounds returns the Monday and Sunday of the week containing day.
func WeekBounds(day time.Time) (time.Time, time.Time) {
	offset := (int(day.Weekday()) + 6) % 7
	monday := time.Date(day.Year(), day.Month(), day.Day()-offset, 0, 0, 0, 0, time.UTC)
	return monday, monday.AddDate(0, 0, 6)
}

func applyOverride(a *ShiftAssignment, req CreateAssignmentRequest) error {
	for _, v := range []string{req.CustomStart, req.CustomEnd} {
		if v != "" && !shift.ValidClock(v) {
			return assignmenterrors.ErrInvalidTime
		}
	}
	a.CustomName = strPtr(req.CustomName)
	a.CustomStart = strPtr(req.CustomStart)
	a.CustomEnd = strPtr(req.CustomEnd)
	a.CustomColor = strPtr(req.CustomColor)
	return nil
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return assignmenterrors.ErrAssignmentNotFound
	}
	return err
}

func MapViewToResponse(v AssignmentView) AssignmentResponse {
	d := v.Display()
	resp := AssignmentResponse{
		ID:           v.ID.String(),
		EmployeeID:   v.EmployeeID.String(),
		EmployeeName: v.EmployeeName,
		WorkDate:     v.WorkDate.Format(DateLayout),
		ShiftName:    d.Name,
		StartTime:    d.Start,
		EndTime:      d.End,
		Color:        d.Color,
		IsOverride:   v.HasOverride(),
		Status:       v.Status,
		StartedAt:    v.StartedAt,
		Notes:        v.Notes,
	}
	if v.ShiftID != nil {
		resp.ShiftID = v.ShiftID.String()
	}
	if v.AssignedBy != nil {
		resp.AssignedBy = v.AssignedBy.String()
	}
	return resp
}

func strPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func uuidPtr(v string) *uuid.UUID {
	id, err := uuid.Parse(v)
	if err != nil {
		return nil
	}
	return &id
}
