package shift

import (
	"context"
	"errors"
	"time"

	"go-workforce/internal/shared/connection"
	shifterrors "go-workforce/internal/shift/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const ClockLayout = "15:04"

type Service interface {
	Create(ctx context.Context, companyID string, req CreateShiftRequest) (ShiftResponse, error)
	GetAll(ctx context.Context, companyID string) ([]ShiftResponse, error)
	Deactivate(ctx context.Context, companyID, id string) (ShiftResponse, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("shift.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("shift.service")
	}
	return &service{repo: repo, logger: l}
}

// ValidClock reports whether v is a zero-padded 24h HH:MM value.
func ValidClock(v string) bool {
	if len(v) != len(ClockLayout) {
		return false
	}
	_, err := time.Parse(ClockLayout, v)
	return err == nil
}

func (s *service) Create(ctx context.Context, companyID string, req CreateShiftRequest) (ShiftResponse, error) {
	if !ValidClock(req.StartTime) || !ValidClock(req.EndTime) {
		return ShiftResponse{}, shifterrors.ErrInvalidTime
	}
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return ShiftResponse{}, shifterrors.ErrInvalidShiftID
	}

	sh := &Shift{
		ID:        uuid.New(),
		CompanyID: companyUUID,
		Name:      req.Name,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Color:     req.Color,
		IsActive:  true,
	}
	if err := s.repo.Create(ctx, sh); err != nil {
		s.logger.Error("create shift failed", zap.String("company_id", companyID), zap.Error(err))
		return ShiftResponse{}, mapRepositoryError(err)
	}

	s.logger.Info("shift template created", zap.String("shift_id", sh.ID.String()), zap.String("name", sh.Name))
	return mapToResponse(*sh), nil
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]ShiftResponse, error) {
	shifts, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		s.logger.Error("get shifts failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	res := make([]ShiftResponse, len(shifts))
	for i, sh := range shifts {
		res[i] = mapToResponse(sh)
	}
	return res, nil
}

// Deactivate hides a template from new assignments; existing assignments keep it.
func (s *service) Deactivate(ctx context.Context, companyID, id string) (ShiftResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return ShiftResponse{}, shifterrors.ErrInvalidShiftID
	}
	sh, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return ShiftResponse{}, mapRepositoryError(err)
	}
	if !sh.IsActive {
		return mapToResponse(*sh), nil
	}

	sh.IsActive = false
	if err := s.repo.Update(ctx, sh); err != nil {
		s.logger.Error("deactivate shift failed", zap.String("shift_id", id), zap.Error(err))
		return ShiftResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*sh), nil
}

func mapRepositoryError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shifterrors.ErrShiftNotFound
	}
	if connection.IsUniqueViolation(err, "uq_shift_name") {
		return shifterrors.ErrShiftNameExists
	}
	return err
}

func mapToResponse(sh Shift) ShiftResponse {
	return ShiftResponse{
		ID:        sh.ID.String(),
		Name:      sh.Name,
		StartTime: sh.StartTime,
		EndTime:   sh.EndTime,
		Color:     sh.Color,
		IsActive:  sh.IsActive,
	}
}
