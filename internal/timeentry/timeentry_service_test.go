package timeentry_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"go-workforce/internal/assignment"
	"go-workforce/internal/config"
	"go-workforce/internal/timeentry"
	timeentryerrors "go-workforce/internal/timeentry/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeEntries struct {
	rows      map[uuid.UUID]*timeentry.TimeEntry
	createErr error
}

func (f *fakeEntries) WithTx(tx *sql.Tx) timeentry.Repository { return f }

func (f *fakeEntries) Create(ctx context.Context, e *timeentry.TimeEntry) error {
	if f.createErr != nil {
		return f.createErr
	}
	cp := *e
	f.rows[e.ID] = &cp
	return nil
}

func (f *fakeEntries) Update(ctx context.Context, e *timeentry.TimeEntry) error {
	cp := *e
	f.rows[e.ID] = &cp
	return nil
}

func (f *fakeEntries) LockActiveByEmployee(ctx context.Context, companyID, employeeID string) (*timeentry.TimeEntry, error) {
	for _, e := range f.rows {
		if e.EmployeeID.String() == employeeID && e.IsActive() {
			cp := *e
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeEntries) LockByIDAndCompany(ctx context.Context, companyID, id string) (*timeentry.TimeEntry, error) {
	e, ok := f.rows[uuid.MustParse(id)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeEntries) ExistsForAssignment(ctx context.Context, companyID, assignmentID string) (bool, error) {
	for _, e := range f.rows {
		if e.AssignmentID != nil && e.AssignmentID.String() == assignmentID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeEntries) FindAllByCompany(ctx context.Context, companyID string) ([]timeentry.TimeEntry, error) {
	out := make([]timeentry.TimeEntry, 0, len(f.rows))
	for _, e := range f.rows {
		out = append(out, *e)
	}
	return out, nil
}

func (f *fakeEntries) FindAllByEmployee(ctx context.Context, companyID, employeeID string) ([]timeentry.TimeEntry, error) {
	out := make([]timeentry.TimeEntry, 0)
	for _, e := range f.rows {
		if e.EmployeeID.String() == employeeID {
			out = append(out, *e)
		}
	}
	return out, nil
}

type fakeAssignments struct {
	assignment.Repository
	rows  map[uuid.UUID]*assignment.ShiftAssignment
	start string
}

func (f *fakeAssignments) WithTx(tx *sql.Tx) assignment.Repository { return f }

func (f *fakeAssignments) LockByIDAndCompany(ctx context.Context, companyID, id string) (*assignment.ShiftAssignment, error) {
	a, ok := f.rows[uuid.MustParse(id)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAssignments) LockActiveByEmployeeAndDate(ctx context.Context, companyID, employeeID string, date time.Time) (*assignment.ShiftAssignment, error) {
	for _, a := range f.rows {
		if a.EmployeeID.String() == employeeID && a.WorkDate.Equal(date) && a.Status != assignment.StatusCancelled {
			cp := *a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAssignments) FindView(ctx context.Context, companyID, id string) (*assignment.AssignmentView, error) {
	a, ok := f.rows[uuid.MustParse(id)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	start := f.start
	return &assignment.AssignmentView{ShiftAssignment: *a, ShiftStart: &start}, nil
}

func (f *fakeAssignments) Update(ctx context.Context, a *assignment.ShiftAssignment) error {
	cp := *a
	f.rows[a.ID] = &cp
	return nil
}

var workDate = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

// scheduled start of the fixture assignment: 2026-03-02 09:00 UTC
var shiftStart = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc         timeentry.Service
	sql         sqlmock.Sqlmock
	entries     *fakeEntries
	assignments *fakeAssignments
	now         time.Time
	companyID   string
	employeeID  string
	assignment  *assignment.ShiftAssignment
}

func newFixture(t *testing.T, verifier timeentry.Verifier) *fixture {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	companyID := uuid.New()
	employeeID := uuid.New()
	a := &assignment.ShiftAssignment{
		ID:         uuid.New(),
		CompanyID:  companyID,
		EmployeeID: employeeID,
		WorkDate:   workDate,
		Status:     assignment.StatusAssigned,
	}

	f := &fixture{
		sql:         mock,
		entries:     &fakeEntries{rows: map[uuid.UUID]*timeentry.TimeEntry{}},
		assignments: &fakeAssignments{rows: map[uuid.UUID]*assignment.ShiftAssignment{a.ID: a}, start: "09:00"},
		now:         shiftStart,
		companyID:   companyID.String(),
		employeeID:  employeeID.String(),
		assignment:  a,
	}
	f.svc = timeentry.NewService(db, f.entries, f.assignments, timeentry.Options{
		Policy: config.AttendancePolicy{
			EarlyWindow: 15 * time.Minute,
			LateWindow:  30 * time.Minute,
			LateGrace:   5 * time.Minute,
			MaxBreak:    60 * time.Minute,
		},
		Location: time.UTC,
		Verifier: verifier,
		Now:      func() time.Time { return f.now },
	})
	return f
}

func (f *fixture) expectTx(commit bool) {
	f.sql.ExpectBegin()
	if commit {
		f.sql.ExpectCommit()
	} else {
		f.sql.ExpectRollback()
	}
}

func (f *fixture) clockIn(t *testing.T, at time.Time) timeentry.TimeEntryResponse {
	t.Helper()
	f.now = at
	f.expectTx(true)
	resp, err := f.svc.VerifyAndClockIn(context.Background(), f.companyID, f.employeeID, timeentry.ClockInRequest{})
	require.NoError(t, err)
	return resp
}

func TestVerifyAndClockIn_Window(t *testing.T) {
	tests := []struct {
		name    string
		offset  time.Duration
		wantErr error
		late    bool
	}{
		{name: "opens 15 minutes early", offset: -15 * time.Minute},
		{name: "16 minutes early is rejected", offset: -16 * time.Minute, wantErr: timeentryerrors.ErrOutsideWindow},
		{name: "on time", offset: 0},
		{name: "inside grace", offset: 5 * time.Minute},
		{name: "after grace is late", offset: 6 * time.Minute, late: true},
		{name: "closes 30 minutes late", offset: 30 * time.Minute, late: true},
		{name: "31 minutes late is rejected", offset: 31 * time.Minute, wantErr: timeentryerrors.ErrOutsideWindow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			f.now = shiftStart.Add(tt.offset)
			f.expectTx(tt.wantErr == nil)

			resp, err := f.svc.VerifyAndClockIn(context.Background(), f.companyID, f.employeeID, timeentry.ClockInRequest{})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, f.entries.rows)
				assert.Equal(t, assignment.StatusAssigned, f.assignments.rows[f.assignment.ID].Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, timeentry.StatusInProgress, resp.Status)
			assert.Equal(t, tt.late, resp.IsLate)
			require.NotNil(t, resp.AssignmentID)
			assert.Equal(t, f.assignment.ID.String(), *resp.AssignmentID)

			parent := f.assignments.rows[f.assignment.ID]
			assert.Equal(t, assignment.StatusInProgress, parent.Status)
			require.NotNil(t, parent.StartedAt)
			assert.True(t, parent.StartedAt.Equal(f.now))
			assert.NoError(t, f.sql.ExpectationsWereMet())
		})
	}
}

func TestVerifyAndClockIn_Rules(t *testing.T) {
	ctx := context.Background()

	t.Run("second clock-in conflicts", func(t *testing.T) {
		f := newFixture(t, nil)
		f.clockIn(t, shiftStart)

		f.expectTx(false)
		_, err := f.svc.VerifyAndClockIn(ctx, f.companyID, f.employeeID, timeentry.ClockInRequest{})

		assert.ErrorIs(t, err, timeentryerrors.ErrAlreadyClockedIn)
		assert.Len(t, f.entries.rows, 1)
	})

	t.Run("assignment of another employee is not found", func(t *testing.T) {
		f := newFixture(t, nil)
		other := uuid.New().String()
		f.expectTx(false)

		_, err := f.svc.VerifyAndClockIn(ctx, f.companyID, other, timeentry.ClockInRequest{AssignmentID: f.assignment.ID.String()})

		assert.ErrorIs(t, err, timeentryerrors.ErrAssignmentNotFound)
	})

	t.Run("cancelled assignment is not found", func(t *testing.T) {
		f := newFixture(t, nil)
		f.assignments.rows[f.assignment.ID].Status = assignment.StatusCancelled
		f.expectTx(false)

		_, err := f.svc.VerifyAndClockIn(ctx, f.companyID, f.employeeID, timeentry.ClockInRequest{AssignmentID: f.assignment.ID.String()})

		assert.ErrorIs(t, err, timeentryerrors.ErrAssignmentNotFound)
	})

	t.Run("assignment awaiting swap cannot start", func(t *testing.T) {
		f := newFixture(t, nil)
		f.assignments.rows[f.assignment.ID].Status = assignment.StatusSwapRequested
		f.expectTx(false)

		_, err := f.svc.VerifyAndClockIn(ctx, f.companyID, f.employeeID, timeentry.ClockInRequest{})

		assert.ErrorIs(t, err, timeentryerrors.ErrAssignmentNotStartable)
	})

	t.Run("unscheduled clock-in skips the window", func(t *testing.T) {
		f := newFixture(t, nil)
		delete(f.assignments.rows, f.assignment.ID)

		resp := f.clockIn(t, shiftStart.Add(5*time.Hour))

		assert.Nil(t, resp.AssignmentID)
		assert.False(t, resp.IsLate)
	})

	t.Run("concurrent insert loses on the active index", func(t *testing.T) {
		f := newFixture(t, nil)
		f.entries.createErr = errors.New(`ERROR: duplicate key value violates unique constraint "uq_time_entry_active"`)
		f.expectTx(false)

		_, err := f.svc.VerifyAndClockIn(ctx, f.companyID, f.employeeID, timeentry.ClockInRequest{})

		assert.ErrorIs(t, err, timeentryerrors.ErrAlreadyClockedIn)
	})
}

func TestVerifyAndClockIn_Verification(t *testing.T) {
	ctx := context.Background()
	payload := &timeentry.Verification{Method: "selfie", CaptureRef: "cap-1"}

	t.Run("rejected verification fails before any write", func(t *testing.T) {
		f := newFixture(t, timeentry.VerifierFunc(func(context.Context, string, string, timeentry.Verification) (bool, error) {
			return false, nil
		}))

		_, err := f.svc.VerifyAndClockIn(ctx, f.companyID, f.employeeID, timeentry.ClockInRequest{Verification: payload})

		assert.ErrorIs(t, err, timeentryerrors.ErrVerificationRejected)
		assert.Empty(t, f.entries.rows)
		assert.NoError(t, f.sql.ExpectationsWereMet())
	})

	t.Run("unavailable verifier stores the entry unverified", func(t *testing.T) {
		f := newFixture(t, timeentry.VerifierFunc(func(context.Context, string, string, timeentry.Verification) (bool, error) {
			return false, errors.New("verifier timeout")
		}))
		f.expectTx(true)

		resp, err := f.svc.VerifyAndClockIn(ctx, f.companyID, f.employeeID, timeentry.ClockInRequest{Verification: payload})

		require.NoError(t, err)
		assert.Equal(t, timeentry.VerificationUnverified, resp.VerificationStatus)
	})

	t.Run("accepted verification", func(t *testing.T) {
		f := newFixture(t, timeentry.VerifierFunc(func(_ context.Context, _, employeeID string, v timeentry.Verification) (bool, error) {
			assert.Equal(t, "selfie", v.Method)
			return true, nil
		}))
		f.expectTx(true)

		resp, err := f.svc.VerifyAndClockIn(ctx, f.companyID, f.employeeID, timeentry.ClockInRequest{Verification: payload})

		require.NoError(t, err)
		assert.Equal(t, timeentry.VerificationVerified, resp.VerificationStatus)
	})

	t.Run("no payload is skipped", func(t *testing.T) {
		f := newFixture(t, nil)

		resp := f.clockIn(t, shiftStart)

		assert.Equal(t, timeentry.VerificationSkipped, resp.VerificationStatus)
	})
}

func TestBreaksAndClockOut(t *testing.T) {
	ctx := context.Background()

	t.Run("long break is flagged and hours exclude it", func(t *testing.T) {
		f := newFixture(t, nil)
		f.clockIn(t, shiftStart)

		f.now = shiftStart.Add(3 * time.Hour)
		f.expectTx(true)
		resp, err := f.svc.StartBreak(ctx, f.companyID, f.employeeID)
		require.NoError(t, err)
		assert.Equal(t, timeentry.StatusBreak, resp.Status)

		f.now = f.now.Add(70 * time.Minute)
		f.expectTx(true)
		resp, err = f.svc.EndBreak(ctx, f.companyID, f.employeeID)
		require.NoError(t, err)
		assert.Equal(t, timeentry.StatusInProgress, resp.Status)
		assert.Equal(t, 70, resp.BreakMinutes)
		assert.True(t, resp.BreakExceeded)

		rating := 5
		f.now = shiftStart.Add(8 * time.Hour)
		f.expectTx(true)
		resp, err = f.svc.ClockOut(ctx, f.companyID, f.employeeID, timeentry.ClockOutRequest{Rating: &rating, Remarks: "busy"})
		require.NoError(t, err)
		assert.Equal(t, timeentry.StatusCompleted, resp.Status)
		assert.Equal(t, timeentry.ApprovalPending, resp.ApprovalStatus)
		assert.Equal(t, "6.83", resp.TotalHours)
		assert.Equal(t, assignment.StatusCompleted, f.assignments.rows[f.assignment.ID].Status)
		assert.NoError(t, f.sql.ExpectationsWereMet())
	})

	t.Run("clock-out closes an open break", func(t *testing.T) {
		f := newFixture(t, nil)
		f.clockIn(t, shiftStart)

		f.now = shiftStart.Add(4 * time.Hour)
		f.expectTx(true)
		_, err := f.svc.StartBreak(ctx, f.companyID, f.employeeID)
		require.NoError(t, err)

		f.now = f.now.Add(30 * time.Minute)
		f.expectTx(true)
		resp, err := f.svc.ClockOut(ctx, f.companyID, f.employeeID, timeentry.ClockOutRequest{})
		require.NoError(t, err)
		assert.Equal(t, 30, resp.BreakMinutes)
		assert.False(t, resp.BreakExceeded)
		assert.Equal(t, "4.00", resp.TotalHours)
	})

	t.Run("short breaks add up to the second", func(t *testing.T) {
		f := newFixture(t, nil)
		f.clockIn(t, shiftStart)

		for _, at := range []time.Duration{time.Hour, 2 * time.Hour} {
			f.now = shiftStart.Add(at)
			f.expectTx(true)
			_, err := f.svc.StartBreak(ctx, f.companyID, f.employeeID)
			require.NoError(t, err)

			f.now = f.now.Add(90 * time.Second)
			f.expectTx(true)
			_, err = f.svc.EndBreak(ctx, f.companyID, f.employeeID)
			require.NoError(t, err)
		}

		f.now = shiftStart.Add(8 * time.Hour)
		f.expectTx(true)
		resp, err := f.svc.ClockOut(ctx, f.companyID, f.employeeID, timeentry.ClockOutRequest{})
		require.NoError(t, err)
		assert.Equal(t, 3, resp.BreakMinutes)
		assert.Equal(t, "7.95", resp.TotalHours)
		assert.NoError(t, f.sql.ExpectationsWereMet())
	})

	t.Run("state errors", func(t *testing.T) {
		f := newFixture(t, nil)

		f.expectTx(false)
		_, err := f.svc.StartBreak(ctx, f.companyID, f.employeeID)
		assert.ErrorIs(t, err, timeentryerrors.ErrNoActiveEntry)

		f.clockIn(t, shiftStart)

		f.expectTx(false)
		_, err = f.svc.EndBreak(ctx, f.companyID, f.employeeID)
		assert.ErrorIs(t, err, timeentryerrors.ErrNotOnBreak)

		f.expectTx(true)
		_, err = f.svc.StartBreak(ctx, f.companyID, f.employeeID)
		require.NoError(t, err)

		f.expectTx(false)
		_, err = f.svc.StartBreak(ctx, f.companyID, f.employeeID)
		assert.ErrorIs(t, err, timeentryerrors.ErrNotInProgress)
	})

	t.Run("rating out of range", func(t *testing.T) {
		f := newFixture(t, nil)
		rating := 6

		_, err := f.svc.ClockOut(ctx, f.companyID, f.employeeID, timeentry.ClockOutRequest{Rating: &rating})

		assert.ErrorIs(t, err, timeentryerrors.ErrInvalidRating)
	})
}

func TestReviewApproval(t *testing.T) {
	ctx := context.Background()
	reviewer := uuid.New().String()

	f := newFixture(t, nil)
	in := f.clockIn(t, shiftStart)

	f.expectTx(false)
	_, err := f.svc.ReviewApproval(ctx, f.companyID, reviewer, in.ID, timeentry.ReviewRequest{Action: "approve"})
	assert.ErrorIs(t, err, timeentryerrors.ErrNotReviewable)

	f.now = shiftStart.Add(8 * time.Hour)
	f.expectTx(true)
	_, err = f.svc.ClockOut(ctx, f.companyID, f.employeeID, timeentry.ClockOutRequest{})
	require.NoError(t, err)

	f.expectTx(true)
	resp, err := f.svc.ReviewApproval(ctx, f.companyID, reviewer, in.ID, timeentry.ReviewRequest{Action: "reject", Notes: "missing badge scan"})
	require.NoError(t, err)
	assert.Equal(t, timeentry.ApprovalRejected, resp.ApprovalStatus)
	require.NotNil(t, resp.ReviewedBy)
	assert.Equal(t, reviewer, *resp.ReviewedBy)

	f.expectTx(false)
	_, err = f.svc.ReviewApproval(ctx, f.companyID, reviewer, in.ID, timeentry.ReviewRequest{Action: "approve"})
	assert.ErrorIs(t, err, timeentryerrors.ErrNotReviewable)

	f.expectTx(false)
	_, err = f.svc.ReviewApproval(ctx, f.companyID, reviewer, uuid.New().String(), timeentry.ReviewRequest{Action: "approve"})
	assert.ErrorIs(t, err, timeentryerrors.ErrEntryNotFound)

	assert.NoError(t, f.sql.ExpectationsWereMet())
}

func TestMarkNoShow(t *testing.T) {
	ctx := context.Background()
	reviewer := uuid.New().String()
	f := newFixture(t, nil)
	f.now = shiftStart.Add(10 * time.Hour)

	f.expectTx(true)
	resp, err := f.svc.MarkNoShow(ctx, f.companyID, reviewer, f.assignment.ID.String())
	require.NoError(t, err)
	assert.True(t, resp.IsNoShow)
	assert.Equal(t, timeentry.StatusCompleted, resp.Status)
	assert.Equal(t, timeentry.ApprovalApproved, resp.ApprovalStatus)
	assert.Equal(t, "0.00", resp.TotalHours)
	assert.True(t, resp.ClockIn.Equal(shiftStart))

	f.expectTx(false)
	_, err = f.svc.MarkNoShow(ctx, f.companyID, reviewer, f.assignment.ID.String())
	assert.ErrorIs(t, err, timeentryerrors.ErrEntryExists)

	f.now = shiftStart
	f.expectTx(false)
	_, err = f.svc.VerifyAndClockIn(ctx, f.companyID, f.employeeID, timeentry.ClockInRequest{})
	assert.ErrorIs(t, err, timeentryerrors.ErrEntryExists)

	assert.NoError(t, f.sql.ExpectationsWereMet())
}

func TestGetAll_ScopesToActor(t *testing.T) {
	f := newFixture(t, nil)
	f.clockIn(t, shiftStart)

	own, err := f.svc.GetAll(context.Background(), f.companyID, f.employeeID, false)
	require.NoError(t, err)
	assert.Len(t, own, 1)

	other, err := f.svc.GetAll(context.Background(), f.companyID, uuid.New().String(), false)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestWorkedHours(t *testing.T) {
	in := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, "7.50", timeentry.WorkedHours(in, in.Add(8*time.Hour), 30*time.Minute).StringFixed(2))
	assert.Equal(t, "0.33", timeentry.WorkedHours(in, in.Add(20*time.Minute), 0).StringFixed(2))
	assert.Equal(t, "0.00", timeentry.WorkedHours(in, in.Add(10*time.Minute), 30*time.Minute).StringFixed(2))
	assert.Equal(t, "7.95", timeentry.WorkedHours(in, in.Add(8*time.Hour), 3*time.Minute).StringFixed(2))
}

func TestWithinWindow(t *testing.T) {
	policy := config.AttendancePolicy{EarlyWindow: 15 * time.Minute, LateWindow: 30 * time.Minute}

	assert.True(t, timeentry.WithinWindow(shiftStart.Add(-15*time.Minute), shiftStart, policy))
	assert.False(t, timeentry.WithinWindow(shiftStart.Add(-15*time.Minute-time.Second), shiftStart, policy))
	assert.True(t, timeentry.WithinWindow(shiftStart.Add(30*time.Minute), shiftStart, policy))
	assert.False(t, timeentry.WithinWindow(shiftStart.Add(30*time.Minute+time.Second), shiftStart, policy))
}
