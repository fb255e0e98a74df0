package leave_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go-workforce/internal/leave"
	leaveerrors "go-workforce/internal/leave/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiEnvelope struct {
	Ok    bool            `json:"ok"`
	Data  json.RawMessage `json:"data"`
	Error *apiError       `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) apiEnvelope {
	t.Helper()
	var env apiEnvelope
	require.NoError(t, json.Unmarshal(body, &env))
	return env
}

type fakeLeaveService struct {
	leave.Service
	createFn  func(ctx context.Context, companyID, actorID, role string, req leave.CreateLeaveRequest) (leave.LeaveResponse, error)
	resolveFn func(ctx context.Context, companyID, approverID, role, id string, req leave.ResolveLeaveRequest) (leave.LeaveResponse, error)
	getAllFn  func(ctx context.Context, companyID, actorID string, canReadAll bool) ([]leave.LeaveResponse, error)
}

func (f *fakeLeaveService) Create(ctx context.Context, companyID, actorID, role string, req leave.CreateLeaveRequest) (leave.LeaveResponse, error) {
	return f.createFn(ctx, companyID, actorID, role, req)
}

func (f *fakeLeaveService) Resolve(ctx context.Context, companyID, approverID, role, id string, req leave.ResolveLeaveRequest) (leave.LeaveResponse, error) {
	return f.resolveFn(ctx, companyID, approverID, role, id, req)
}

func (f *fakeLeaveService) GetAll(ctx context.Context, companyID, actorID string, canReadAll bool) ([]leave.LeaveResponse, error) {
	return f.getAllFn(ctx, companyID, actorID, canReadAll)
}

func newContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestLeaveHandler_Create(t *testing.T) {
	t.Run("success passes actor and role", func(t *testing.T) {
		companyID := uuid.New().String()
		actorID := uuid.New().String()

		svc := &fakeLeaveService{
			createFn: func(ctx context.Context, cid, aid, role string, req leave.CreateLeaveRequest) (leave.LeaveResponse, error) {
				assert.Equal(t, companyID, cid)
				assert.Equal(t, actorID, aid)
				assert.Equal(t, "employee", role)
				return leave.LeaveResponse{EmployeeID: aid, LeaveType: req.LeaveType, Status: leave.StatusPending}, nil
			},
		}

		c, w := newContext(http.MethodPost, "/leaves", `{"leave_type":"annual","start_date":"2026-03-10","end_date":"2026-03-11"}`)
		c.Set("company_id", companyID)
		c.Set("employee_id", actorID)
		c.Set("role", "employee")

		leave.NewHandler(svc).Create(c)

		assert.Equal(t, http.StatusCreated, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.True(t, env.Ok)
		var got leave.LeaveResponse
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, leave.StatusPending, got.Status)
	})

	t.Run("unknown leave type is rejected before the service", func(t *testing.T) {
		c, w := newContext(http.MethodPost, "/leaves", `{"leave_type":"sabbatical","start_date":"2026-03-10","end_date":"2026-03-11"}`)

		leave.NewHandler(&fakeLeaveService{}).Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.False(t, env.Ok)
	})
}

func TestLeaveHandler_Resolve(t *testing.T) {
	t.Run("outside scope maps to forbidden", func(t *testing.T) {
		svc := &fakeLeaveService{
			resolveFn: func(ctx context.Context, cid, aid, role, id string, req leave.ResolveLeaveRequest) (leave.LeaveResponse, error) {
				assert.Equal(t, "manager", role)
				assert.Equal(t, "approve", req.Action)
				return leave.LeaveResponse{}, leaveerrors.ErrOutsideLocationScope
			},
		}

		c, w := newContext(http.MethodPost, "/leaves/x/resolve", `{"action":"approve"}`)
		c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}
		c.Set("role", "manager")

		leave.NewHandler(svc).Resolve(c)

		assert.Equal(t, http.StatusForbidden, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		require.NotNil(t, env.Error)
		assert.Equal(t, "FORBIDDEN", env.Error.Code)
	})

	t.Run("not pending maps to conflict", func(t *testing.T) {
		svc := &fakeLeaveService{
			resolveFn: func(context.Context, string, string, string, string, leave.ResolveLeaveRequest) (leave.LeaveResponse, error) {
				return leave.LeaveResponse{}, leaveerrors.ErrNotPending
			},
		}

		c, w := newContext(http.MethodPost, "/leaves/x/resolve", `{"action":"reject"}`)

		leave.NewHandler(svc).Resolve(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		env := decodeEnvelope(t, w.Body.Bytes())
		assert.Equal(t, "INVALID_STATE", env.Error.Code)
	})
}

func TestLeaveHandler_GetAll(t *testing.T) {
	svc := &fakeLeaveService{
		getAllFn: func(_ context.Context, _, _ string, canReadAll bool) ([]leave.LeaveResponse, error) {
			assert.True(t, canReadAll)
			return []leave.LeaveResponse{
				{ID: "1", Status: leave.StatusPending},
				{ID: "2", Status: leave.StatusApproved},
				{ID: "3", Status: leave.StatusPending},
			}, nil
		},
	}

	c, w := newContext(http.MethodGet, "/leaves?status=pending&page_size=1", "")
	c.Set("role", "manager")

	leave.NewHandler(svc).GetAll(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var env struct {
		Data []leave.LeaveResponse `json:"data"`
		Meta struct {
			Total int `json:"total"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Len(t, env.Data, 1)
	assert.Equal(t, "1", env.Data[0].ID)
	assert.Equal(t, 2, env.Meta.Total)
}

func TestLeaveHandler_GetAllScopesEmployee(t *testing.T) {
	actorID := uuid.New().String()
	var gotActor string
	svc := &fakeLeaveService{
		getAllFn: func(_ context.Context, _, actor string, canReadAll bool) ([]leave.LeaveResponse, error) {
			gotActor = actor
			assert.False(t, canReadAll)
			return []leave.LeaveResponse{{ID: "1", EmployeeID: actor}}, nil
		},
	}

	c, w := newContext(http.MethodGet, "/leaves", "")
	c.Set("role", "employee")
	c.Set("employee_id", actorID)

	leave.NewHandler(svc).GetAll(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, actorID, gotActor)
}
