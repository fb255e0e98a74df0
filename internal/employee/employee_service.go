package employee

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go-workforce/internal/domain"
	employeeerrors "go-workforce/internal/employee/errors"
	"go-workforce/internal/shared/connection"
	"go-workforce/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_service.go -destination=mock/employee_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, companyID string, req CreateEmployeeRequest) (EmployeeResponse, error)
	GetAll(ctx context.Context, companyID string) ([]EmployeeResponse, error)
	GetByID(ctx context.Context, companyID, id string) (EmployeeResponse, error)
	Deactivate(ctx context.Context, companyID, id string) (EmployeeResponse, error)
	Transfer(ctx context.Context, companyID, id string, req TransferEmployeeRequest) (EmployeeResponse, error)
	AddToTeam(ctx context.Context, companyID, id string, req AddToTeamRequest) (EmployeeResponse, error)
	AdministeredLocations(ctx context.Context, companyID, managerID string) ([]string, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("employee.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("employee.service")
	}
	return &service{db: db, repo: repo, logger: l}
}

func (s *service) Create(
	ctx context.Context,
	companyID string,
	req CreateEmployeeRequest,
) (EmployeeResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	log.Debug("create employee requested",
		zap.String("company_id", companyID),
		zap.String("email", req.Email),
	)

	if !domain.IsValidRole(req.Role) {
		return EmployeeResponse{}, employeeerrors.ErrInvalidRole
	}
	if req.HourlyRate.IsNegative() {
		return EmployeeResponse{}, employeeerrors.ErrInvalidHourlyRate
	}
	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidCompanyID
	}

	empl := &Employee{
		ID:         uuid.New(),
		CompanyID:  companyUUID,
		FullName:   req.FullName,
		Email:      req.Email,
		Role:       req.Role,
		LocationID: uuidPtr(req.LocationID),
		HourlyRate: req.HourlyRate.Round(2),
		IsActive:   true,
	}
	if err := s.repo.Create(ctx, empl); err != nil {
		log.Error("create employee persist failed", zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	log.Info("create employee success", zap.String("employee_id", empl.ID.String()))
	return mapToResponse(*empl), nil
}

func (s *service) GetAll(ctx context.Context, companyID string) ([]EmployeeResponse, error) {
	s.logger.Debug("get all employees requested", zap.String("company_id", companyID))
	empls, err := s.repo.FindAllByCompany(ctx, companyID)
	if err != nil {
		s.logger.Error("get all employees failed", zap.Error(err))
		return nil, mapRepositoryError(err)
	}

	return mapToListResponse(empls), nil
}

func (s *service) GetByID(ctx context.Context, companyID, id string) (EmployeeResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}
	empl, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	return mapToResponse(*empl), nil
}

// Deactivate is a soft delete; history keeps pointing at the row.
func (s *service) Deactivate(ctx context.Context, companyID, id string) (EmployeeResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}
	empl, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}
	if !empl.IsActive {
		return mapToResponse(*empl), nil
	}

	empl.IsActive = false
	if err := s.repo.Update(ctx, empl); err != nil {
		s.logger.Error("deactivate employee failed", zap.String("employee_id", id), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	s.logger.Info("employee deactivated", zap.String("employee_id", id))
	return mapToResponse(*empl), nil
}

func (s *service) Transfer(
	ctx context.Context,
	companyID, id string,
	req TransferEmployeeRequest,
) (EmployeeResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}
	if !domain.IsValidRole(req.Role) {
		return EmployeeResponse{}, employeeerrors.ErrInvalidRole
	}

	empl, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}
	if !empl.IsActive {
		return EmployeeResponse{}, employeeerrors.ErrEmployeeInactive
	}

	empl.Role = req.Role
	empl.LocationID = uuidPtr(req.LocationID)
	if err := s.repo.Update(ctx, empl); err != nil {
		s.logger.Error("transfer employee failed", zap.String("employee_id", id), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	s.logger.Info("employee transferred",
		zap.String("employee_id", id),
		zap.String("role", req.Role),
		zap.String("location_id", req.LocationID),
	)
	return mapToResponse(*empl), nil
}

// AddToTeam links the employee to a team and makes it the primary team.
// Both writes share one transaction.
func (s *service) AddToTeam(
	ctx context.Context,
	companyID, id string,
	req AddToTeamRequest,
) (EmployeeResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)
	if _, err := uuid.Parse(id); err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidEmployeeID
	}
	teamID, err := uuid.Parse(req.TeamID)
	if err != nil {
		return EmployeeResponse{}, employeeerrors.ErrInvalidTeamID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("add to team begin tx failed", zap.Error(err))
		return EmployeeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	empl, err := qtx.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		return EmployeeResponse{}, mapRepositoryError(err)
	}
	if !empl.IsActive {
		return EmployeeResponse{}, employeeerrors.ErrEmployeeInactive
	}

	if err := qtx.AddTeamMember(ctx, &TeamMember{
		TeamID:     teamID,
		EmployeeID: empl.ID,
		CompanyID:  empl.CompanyID,
		JoinedAt:   time.Now().UTC(),
	}); err != nil {
		log.Error("add team member failed", zap.String("employee_id", id), zap.Error(err))
		if connection.IsUniqueViolation(err, "") {
			return EmployeeResponse{}, employeeerrors.ErrAlreadyTeamMember
		}
		return EmployeeResponse{}, err
	}

	empl.PrimaryTeamID = &teamID
	if err := qtx.Update(ctx, empl); err != nil {
		log.Error("set primary team failed", zap.String("employee_id", id), zap.Error(err))
		return EmployeeResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		log.Error("add to team commit failed", zap.Error(err))
		return EmployeeResponse{}, err
	}

	log.Info("employee added to team", zap.String("employee_id", id), zap.String("team_id", req.TeamID))
	return mapToResponse(*empl), nil
}

func (s *service) AdministeredLocations(ctx context.Context, companyID, managerID string) ([]string, error) {
	ids, err := s.repo.FindAdministeredLocations(ctx, companyID, managerID)
	if err != nil {
		s.logger.Error("load administered locations failed", zap.String("manager_id", managerID), zap.Error(err))
		return nil, err
	}
	return ids, nil
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return employeeerrors.ErrEmployeeNotFound
	}
	if connection.IsUniqueViolation(err, "uq_employee_email") {
		return employeeerrors.ErrEmployeeAlreadyExists
	}
	return err
}

func mapToResponse(empl Employee) EmployeeResponse {
	return EmployeeResponse{
		ID:            empl.ID.String(),
		CompanyID:     empl.CompanyID.String(),
		FullName:      empl.FullName,
		Email:         empl.Email,
		Role:          empl.Role,
		LocationID:    uuidToString(empl.LocationID),
		PrimaryTeamID: uuidToString(empl.PrimaryTeamID),
		HourlyRate:    empl.HourlyRate,
		IsActive:      empl.IsActive,
	}
}

func mapToListResponse(empls []Employee) []EmployeeResponse {
	res := make([]EmployeeResponse, len(empls))
	for i, e := range empls {
		res[i] = mapToResponse(e)
	}
	return res
}

func uuidPtr(v string) *uuid.UUID {
	id, err := uuid.Parse(v)
	if err != nil {
		return nil
	}
	return &id
}

func uuidToString(v *uuid.UUID) string {
	if v == nil {
		return ""
	}
	return v.String()
}
