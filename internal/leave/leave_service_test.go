package leave_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"go-workforce/internal/domain"
	"go-workforce/internal/events"
	"go-workforce/internal/leave"
	leaveerrors "go-workforce/internal/leave/errors"
	notificationMock "go-workforce/internal/notification/mock"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"gorm.io/gorm"
)

type fakeLeaveRepository struct {
	createFn                 func(ctx context.Context, l *leave.Leave) error
	findAllByCompanyFn       func(ctx context.Context, companyID string) ([]leave.Leave, error)
	findAllByEmployeeFn      func(ctx context.Context, companyID, employeeID string) ([]leave.Leave, error)
	findByIDAndCompanyFn     func(ctx context.Context, companyID, id string) (*leave.Leave, error)
	lockByIDAndCompanyFn     func(ctx context.Context, companyID, id string) (*leave.Leave, error)
	updateFn                 func(ctx context.Context, l *leave.Leave) error
	employeeBelongsToCompany func(ctx context.Context, companyID, employeeID string) (bool, error)
	employeeLocationFn       func(ctx context.Context, companyID, employeeID string) (string, error)
	hasOverlappingPeriodFn   func(ctx context.Context, companyID, employeeID string, startDate, endDate time.Time) (bool, error)
}

func (f *fakeLeaveRepository) WithTx(tx *sql.Tx) leave.Repository {
	return f
}

func (f *fakeLeaveRepository) Create(ctx context.Context, l *leave.Leave) error {
	if f.createFn != nil {
		return f.createFn(ctx, l)
	}
	return nil
}

func (f *fakeLeaveRepository) FindAllByCompany(ctx context.Context, companyID string) ([]leave.Leave, error) {
	if f.findAllByCompanyFn != nil {
		return f.findAllByCompanyFn(ctx, companyID)
	}
	return nil, nil
}

func (f *fakeLeaveRepository) FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]leave.Leave, error) {
	if f.findAllByEmployeeFn != nil {
		return f.findAllByEmployeeFn(ctx, companyID, employeeID)
	}
	return nil, nil
}

func (f *fakeLeaveRepository) FindByIDAndCompany(ctx context.Context, companyID, id string) (*leave.Leave, error) {
	if f.findByIDAndCompanyFn != nil {
		return f.findByIDAndCompanyFn(ctx, companyID, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLeaveRepository) LockByIDAndCompany(ctx context.Context, companyID, id string) (*leave.Leave, error) {
	if f.lockByIDAndCompanyFn != nil {
		return f.lockByIDAndCompanyFn(ctx, companyID, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLeaveRepository) Update(ctx context.Context, l *leave.Leave) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, l)
	}
	return nil
}

func (f *fakeLeaveRepository) EmployeeBelongsToCompany(ctx context.Context, companyID, employeeID string) (bool, error) {
	if f.employeeBelongsToCompany != nil {
		return f.employeeBelongsToCompany(ctx, companyID, employeeID)
	}
	return true, nil
}

func (f *fakeLeaveRepository) EmployeeLocation(ctx context.Context, companyID, employeeID string) (string, error) {
	if f.employeeLocationFn != nil {
		return f.employeeLocationFn(ctx, companyID, employeeID)
	}
	return "", nil
}

func (f *fakeLeaveRepository) HasOverlappingPeriod(ctx context.Context, companyID, employeeID string, startDate, endDate time.Time) (bool, error) {
	if f.hasOverlappingPeriodFn != nil {
		return f.hasOverlappingPeriodFn(ctx, companyID, employeeID, startDate, endDate)
	}
	return false, nil
}

type fakeScope map[string][]string

func (f fakeScope) AdministeredLocations(ctx context.Context, companyID, managerID string) ([]string, error) {
	return f[managerID], nil
}

type leaveServiceDeps struct {
	db        *sql.DB
	sqlMock   sqlmock.Sqlmock
	service   leave.Service
	repo      *fakeLeaveRepository
	scope     fakeScope
	publisher *notificationMock.MockPublisher
}

func setupLeaveServiceTest(t *testing.T) *leaveServiceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := &fakeLeaveRepository{}
	scope := fakeScope{}
	publisher := notificationMock.NewMockPublisher(gomock.NewController(t))

	return &leaveServiceDeps{
		db:        db,
		sqlMock:   sqlMock,
		service:   leave.NewService(db, repo, scope, publisher),
		repo:      repo,
		scope:     scope,
		publisher: publisher,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

func pendingLeave(companyID, employeeID string) *leave.Leave {
	return &leave.Leave{
		ID:         uuid.New(),
		CompanyID:  uuid.MustParse(companyID),
		EmployeeID: uuid.MustParse(employeeID),
		LeaveType:  "annual",
		StartDate:  time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC),
		TotalDays:  3,
		Status:     leave.StatusPending,
		CreatedBy:  uuid.MustParse(employeeID),
	}
}

func TestLeaveService_Create(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actorID := uuid.New().String()
	employeeID := uuid.New().String()

	t.Run("success", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		deps.repo.hasOverlappingPeriodFn = func(ctx context.Context, cid, eid string, startDate, endDate time.Time) (bool, error) {
			assert.Equal(t, employeeID, eid)
			assert.Equal(t, "2026-03-01", startDate.Format("2006-01-02"))
			assert.Equal(t, "2026-03-03", endDate.Format("2006-01-02"))
			return false, nil
		}
		var created *leave.Leave
		deps.repo.createFn = func(ctx context.Context, l *leave.Leave) error {
			created = l
			return nil
		}

		resp, err := deps.service.Create(ctx, companyID, actorID, domain.RoleManager, leave.CreateLeaveRequest{
			EmployeeID: employeeID,
			LeaveType:  "annual",
			StartDate:  "2026-03-01",
			EndDate:    "2026-03-03",
			Reason:     "Family event",
		})

		require.NoError(t, err)
		assert.Equal(t, leave.StatusPending, resp.Status)
		assert.Equal(t, 3, resp.TotalDays)
		assert.Equal(t, actorID, resp.CreatedBy)
		assert.Equal(t, uuid.MustParse(employeeID), created.EmployeeID)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("employee defaults to the actor", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Create(ctx, companyID, actorID, domain.RoleEmployee, leave.CreateLeaveRequest{
			LeaveType: "sick",
			StartDate: "2026-03-01",
			EndDate:   "2026-03-01",
		})

		require.NoError(t, err)
		assert.Equal(t, actorID, resp.EmployeeID)
		assert.Equal(t, 1, resp.TotalDays)
	})

	t.Run("employee cannot file for someone else", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)

		_, err := deps.service.Create(ctx, companyID, actorID, domain.RoleEmployee, leave.CreateLeaveRequest{
			EmployeeID: employeeID,
			LeaveType:  "annual",
			StartDate:  "2026-03-01",
			EndDate:    "2026-03-01",
		})

		assert.ErrorIs(t, err, leaveerrors.ErrNotOwnLeave)
	})

	t.Run("overlap is a conflict", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, false)
		deps.repo.hasOverlappingPeriodFn = func(context.Context, string, string, time.Time, time.Time) (bool, error) {
			return true, nil
		}

		_, err := deps.service.Create(ctx, companyID, actorID, domain.RoleAdmin, leave.CreateLeaveRequest{
			EmployeeID: employeeID,
			LeaveType:  "annual",
			StartDate:  "2026-03-02",
			EndDate:    "2026-03-05",
		})

		assert.ErrorIs(t, err, leaveerrors.ErrLeaveOverlap)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("inactive or foreign employee", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, false)
		deps.repo.employeeBelongsToCompany = func(context.Context, string, string) (bool, error) {
			return false, nil
		}

		_, err := deps.service.Create(ctx, companyID, actorID, domain.RoleAdmin, leave.CreateLeaveRequest{
			EmployeeID: employeeID,
			LeaveType:  "annual",
			StartDate:  "2026-03-02",
			EndDate:    "2026-03-05",
		})

		assert.ErrorIs(t, err, leaveerrors.ErrEmployeeNotInCompany)
	})

	t.Run("validation", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)

		_, err := deps.service.Create(ctx, companyID, actorID, domain.RoleAdmin, leave.CreateLeaveRequest{
			EmployeeID: employeeID, LeaveType: "annual", StartDate: "2026-03-05", EndDate: "2026-03-01",
		})
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateRange)

		_, err = deps.service.Create(ctx, companyID, actorID, domain.RoleAdmin, leave.CreateLeaveRequest{
			EmployeeID: employeeID, LeaveType: "annual", StartDate: "03/01/2026", EndDate: "2026-03-01",
		})
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateFormat)

		_, err = deps.service.Create(ctx, "bad", actorID, domain.RoleAdmin, leave.CreateLeaveRequest{
			EmployeeID: employeeID, LeaveType: "annual", StartDate: "2026-03-01", EndDate: "2026-03-01",
		})
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidCompanyID)
	})
}

func TestLeaveService_Resolve(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	employeeID := uuid.New().String()
	managerID := uuid.New().String()

	t.Run("manager approves within location", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, true)
		l := pendingLeave(companyID, employeeID)
		deps.repo.lockByIDAndCompanyFn = func(context.Context, string, string) (*leave.Leave, error) { return l, nil }
		deps.repo.employeeLocationFn = func(context.Context, string, string) (string, error) { return "loc-a", nil }
		deps.scope[managerID] = []string{"loc-b", "loc-a"}

		var updated bool
		deps.repo.updateFn = func(ctx context.Context, got *leave.Leave) error {
			updated = true
			assert.Equal(t, leave.StatusApproved, got.Status)
			return nil
		}
		deps.publisher.EXPECT().
			Publish(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, ev events.NotificationEvent) error {
				assert.Equal(t, events.LeaveResolved, ev.EventType)
				assert.Equal(t, []string{events.EmployeeAudience(employeeID)}, ev.Recipients)
				assert.Equal(t, "approved", ev.Data["status"])
				assert.Equal(t, "2026-03-01", ev.Data["start_date"])
				assert.Equal(t, "2026-03-03", ev.Data["end_date"])
				return nil
			})

		resp, err := deps.service.Resolve(ctx, companyID, managerID, domain.RoleManager, l.ID.String(), leave.ResolveLeaveRequest{
			Action: leave.ActionApprove,
			Notes:  "enjoy",
		})

		require.NoError(t, err)
		assert.True(t, updated)
		assert.Equal(t, leave.StatusApproved, resp.Status)
		require.NotNil(t, resp.ApprovedBy)
		assert.Equal(t, managerID, *resp.ApprovedBy)
		assert.NotNil(t, resp.ApprovedAt)
		assert.Equal(t, "enjoy", resp.Notes)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("manager outside location is forbidden and request stays pending", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, false)
		l := pendingLeave(companyID, employeeID)
		deps.repo.lockByIDAndCompanyFn = func(context.Context, string, string) (*leave.Leave, error) { return l, nil }
		deps.repo.employeeLocationFn = func(context.Context, string, string) (string, error) { return "loc-a", nil }
		deps.scope[managerID] = []string{"loc-b"}
		deps.repo.updateFn = func(context.Context, *leave.Leave) error {
			t.Fatal("update must not be called")
			return nil
		}

		_, err := deps.service.Resolve(ctx, companyID, managerID, domain.RoleManager, l.ID.String(), leave.ResolveLeaveRequest{
			Action: leave.ActionApprove,
		})

		assert.ErrorIs(t, err, leaveerrors.ErrOutsideLocationScope)
		assert.Equal(t, leave.StatusPending, l.Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("admin bypasses location scope", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, true)
		l := pendingLeave(companyID, employeeID)
		deps.repo.lockByIDAndCompanyFn = func(context.Context, string, string) (*leave.Leave, error) { return l, nil }
		deps.repo.employeeLocationFn = func(context.Context, string, string) (string, error) {
			t.Fatal("location lookup is not needed for admins")
			return "", nil
		}
		deps.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(nil)

		resp, err := deps.service.Resolve(ctx, companyID, managerID, domain.RoleAdmin, l.ID.String(), leave.ResolveLeaveRequest{
			Action: leave.ActionReject,
			Notes:  "coverage",
		})

		require.NoError(t, err)
		assert.Equal(t, leave.StatusRejected, resp.Status)
	})

	t.Run("already resolved is a state error", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, false)
		l := pendingLeave(companyID, employeeID)
		l.Status = leave.StatusApproved
		deps.repo.lockByIDAndCompanyFn = func(context.Context, string, string) (*leave.Leave, error) { return l, nil }

		_, err := deps.service.Resolve(ctx, companyID, managerID, domain.RoleAdmin, l.ID.String(), leave.ResolveLeaveRequest{
			Action: leave.ActionReject,
		})

		assert.ErrorIs(t, err, leaveerrors.ErrNotPending)
	})

	t.Run("not found", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Resolve(ctx, companyID, managerID, domain.RoleManager, uuid.New().String(), leave.ResolveLeaveRequest{
			Action: leave.ActionApprove,
		})

		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
	})

	t.Run("unknown action", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)

		_, err := deps.service.Resolve(ctx, companyID, managerID, domain.RoleAdmin, uuid.New().String(), leave.ResolveLeaveRequest{
			Action: "maybe",
		})

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidAction)
	})

	t.Run("notification failure does not fail the resolution", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, true)
		l := pendingLeave(companyID, employeeID)
		deps.repo.lockByIDAndCompanyFn = func(context.Context, string, string) (*leave.Leave, error) { return l, nil }
		deps.publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))

		resp, err := deps.service.Resolve(ctx, companyID, managerID, domain.RoleAdmin, l.ID.String(), leave.ResolveLeaveRequest{
			Action: leave.ActionApprove,
		})

		require.NoError(t, err)
		assert.Equal(t, leave.StatusApproved, resp.Status)
	})
}

func TestLeaveService_Cancel(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	employeeID := uuid.New().String()

	t.Run("requester cancels pending leave", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, true)
		l := pendingLeave(companyID, employeeID)
		deps.repo.lockByIDAndCompanyFn = func(context.Context, string, string) (*leave.Leave, error) { return l, nil }

		resp, err := deps.service.Cancel(ctx, companyID, employeeID, l.ID.String())

		require.NoError(t, err)
		assert.Equal(t, leave.StatusCancelled, resp.Status)
	})

	t.Run("someone else cannot cancel", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, false)
		l := pendingLeave(companyID, employeeID)
		deps.repo.lockByIDAndCompanyFn = func(context.Context, string, string) (*leave.Leave, error) { return l, nil }

		_, err := deps.service.Cancel(ctx, companyID, uuid.New().String(), l.ID.String())

		assert.ErrorIs(t, err, leaveerrors.ErrNotOwnLeave)
	})

	t.Run("resolved leave cannot be cancelled", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		expectTx(t, deps.sqlMock, false)
		l := pendingLeave(companyID, employeeID)
		l.Status = leave.StatusRejected
		deps.repo.lockByIDAndCompanyFn = func(context.Context, string, string) (*leave.Leave, error) { return l, nil }

		_, err := deps.service.Cancel(ctx, companyID, employeeID, l.ID.String())

		assert.ErrorIs(t, err, leaveerrors.ErrNotPending)
	})
}

func TestLeaveService_GetByID(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()

	t.Run("not found", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)

		_, err := deps.service.GetByID(ctx, companyID, uuid.NewString(), uuid.New().String(), true)

		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
	})

	t.Run("repository error passes through", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		boom := errors.New("db down")
		deps.repo.findByIDAndCompanyFn = func(context.Context, string, string) (*leave.Leave, error) { return nil, boom }

		_, err := deps.service.GetByID(ctx, companyID, uuid.NewString(), uuid.New().String(), true)

		assert.ErrorIs(t, err, boom)
	})

	t.Run("employee cannot read another employee's leave", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		owner, other := uuid.New(), uuid.New()
		deps.repo.findByIDAndCompanyFn = func(_ context.Context, _, id string) (*leave.Leave, error) {
			return &leave.Leave{ID: uuid.MustParse(id), EmployeeID: owner, Status: leave.StatusPending}, nil
		}
		id := uuid.NewString()

		_, err := deps.service.GetByID(ctx, companyID, other.String(), id, false)
		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)

		got, err := deps.service.GetByID(ctx, companyID, owner.String(), id, false)
		require.NoError(t, err)
		assert.Equal(t, owner.String(), got.EmployeeID)
	})
}

func TestLeaveService_GetAll(t *testing.T) {
	ctx := context.Background()
	companyID := uuid.New().String()
	actor := uuid.New()

	t.Run("employee sees only own leaves", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		deps.repo.findAllByCompanyFn = func(context.Context, string) ([]leave.Leave, error) {
			t.Fatal("company-wide list must not be read for an employee")
			return nil, nil
		}
		deps.repo.findAllByEmployeeFn = func(_ context.Context, _, employeeID string) ([]leave.Leave, error) {
			assert.Equal(t, actor.String(), employeeID)
			return []leave.Leave{{ID: uuid.New(), EmployeeID: actor}}, nil
		}

		got, err := deps.service.GetAll(ctx, companyID, actor.String(), false)

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, actor.String(), got[0].EmployeeID)
	})

	t.Run("reviewer sees the company", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)
		deps.repo.findAllByCompanyFn = func(context.Context, string) ([]leave.Leave, error) {
			return []leave.Leave{{ID: uuid.New(), EmployeeID: actor}, {ID: uuid.New(), EmployeeID: uuid.New()}}, nil
		}

		got, err := deps.service.GetAll(ctx, companyID, actor.String(), true)

		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("employee without an employee id", func(t *testing.T) {
		deps := setupLeaveServiceTest(t)

		_, err := deps.service.GetAll(ctx, companyID, "", false)

		assert.ErrorIs(t, err, leaveerrors.ErrInvalidActorID)
	})
}
