package swap

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go-workforce/internal/assignment"
	"go-workforce/internal/events"
	"go-workforce/internal/notification"
	"go-workforce/internal/shared/connection"
	"go-workforce/internal/shared/contextutil"
	"go-workforce/internal/shared/metrics"
	swaperrors "go-workforce/internal/swap/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	Propose(ctx context.Context, companyID, requesterID string, req ProposeSwapRequest) (SwapResponse, error)
	Resolve(ctx context.Context, companyID, approverID, id string, req ResolveSwapRequest) (ResolveSwapResponse, error)
	// Without canReadAll only requests the actor is a party to are visible.
	GetAll(ctx context.Context, companyID, actorID string, canReadAll bool) ([]SwapResponse, error)
	GetByID(ctx context.Context, companyID, actorID, id string, canReadAll bool) (SwapResponse, error)
}

type service struct {
	db          *sql.DB
	repo        Repository
	assignments assignment.Repository
	publisher   notification.Publisher
	now         func() time.Time
	logger      *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	assignments assignment.Repository,
	publisher notification.Publisher,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("swap.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("swap.service")
	}
	return &service{
		db:          db,
		repo:        repo,
		assignments: assignments,
		publisher:   publisher,
		now:         time.Now,
		logger:      l,
	}
}

func (s *service) Propose(
	ctx context.Context,
	companyID, requesterID string,
	req ProposeSwapRequest,
) (SwapResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	companyUUID, err := uuid.Parse(companyID)
	if err != nil {
		return SwapResponse{}, swaperrors.ErrInvalidID
	}
	requesterUUID, err := uuid.Parse(requesterID)
	if err != nil {
		return SwapResponse{}, swaperrors.ErrInvalidID
	}
	targetUUID, err := uuid.Parse(req.TargetID)
	if err != nil {
		return SwapResponse{}, swaperrors.ErrInvalidID
	}
	if requesterUUID == targetUUID {
		return SwapResponse{}, swaperrors.ErrSelfSwap
	}
	date, err := time.Parse(assignment.DateLayout, req.Date)
	if err != nil {
		return SwapResponse{}, swaperrors.ErrInvalidDate
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("propose swap begin tx failed", zap.Error(err))
		return SwapResponse{}, err
	}
	defer tx.Rollback()

	atx := s.assignments.WithTx(tx)
	original, err := atx.FindActiveByEmployeeAndDate(ctx, companyID, requesterID, date)
	if err != nil {
		return SwapResponse{}, mapAssignmentError(err, swaperrors.ErrAssignmentNotFound)
	}
	requested, err := atx.FindActiveByEmployeeAndDate(ctx, companyID, req.TargetID, date)
	if err != nil {
		return SwapResponse{}, mapAssignmentError(err, swaperrors.ErrAssignmentNotFound)
	}

	swapReq := &ShiftSwapRequest{
		ID:                    uuid.New(),
		CompanyID:             companyUUID,
		RequesterID:           requesterUUID,
		TargetID:              targetUUID,
		OriginalAssignmentID:  original.ID,
		RequestedAssignmentID: requested.ID,
		SwapDate:              date,
		Reason:                req.Reason,
		Status:                StatusPending,
	}

	qtx := s.repo.WithTx(tx)
	exists, err := qtx.ExistsPending(ctx, companyID, swapReq)
	if err != nil {
		return SwapResponse{}, err
	}
	if exists {
		return SwapResponse{}, swaperrors.ErrDuplicatePending
	}
	if err := qtx.Create(ctx, swapReq); err != nil {
		if connection.IsUniqueViolation(err, "uq_swap_pending_tuple") {
			return SwapResponse{}, swaperrors.ErrDuplicatePending
		}
		log.Error("propose swap persist failed", zap.Error(err))
		return SwapResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Error("propose swap commit failed", zap.Error(err))
		return SwapResponse{}, err
	}

	metrics.Get().WorkflowTransitions.WithLabelValues("swap", StatusPending).Inc()
	log.Info("swap proposed",
		zap.String("swap_id", swapReq.ID.String()),
		zap.String("requester_id", requesterID),
		zap.String("target_id", req.TargetID),
		zap.String("date", req.Date),
	)

	notification.Emit(ctx, s.publisher, log, events.NotificationEvent{
		EventType:     events.SwapRequested,
		CompanyID:     companyID,
		AggregateType: "shift_swap_request",
		AggregateID:   swapReq.ID.String(),
		Recipients:    notification.Recipients([]string{requesterID, req.TargetID}, true),
		Title:         "Shift swap requested",
		Message:       "A shift swap for " + req.Date + " is waiting for approval",
		Data: map[string]string{
			"swap_id":      swapReq.ID.String(),
			"date":         req.Date,
			"requester_id": requesterID,
			"target_id":    req.TargetID,
		},
	})

	return mapToResponse(*swapReq), nil
}

// Resolve applies the decision in one transaction. On approval both parties'
// current assignments for the swap date are locked and their shift
// references exchanged; if either is gone the request stays pending.
func (s *service) Resolve(
	ctx context.Context,
	companyID, approverID, id string,
	req ResolveSwapRequest,
) (ResolveSwapResponse, error) {
	log := contextutil.GetLogger(ctx, s.logger)

	var status string
	switch req.Action {
	case ActionApprove:
		status = StatusApproved
	case ActionReject:
		status = StatusRejected
	default:
		return ResolveSwapResponse{}, swaperrors.ErrInvalidAction
	}
	if _, err := uuid.Parse(id); err != nil {
		return ResolveSwapResponse{}, swaperrors.ErrInvalidID
	}
	approverUUID, err := uuid.Parse(approverID)
	if err != nil {
		return ResolveSwapResponse{}, swaperrors.ErrInvalidID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("resolve swap begin tx failed", zap.Error(err))
		return ResolveSwapResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	swapReq, err := qtx.LockByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ResolveSwapResponse{}, swaperrors.ErrSwapNotFound
		}
		return ResolveSwapResponse{}, err
	}
	if swapReq.Status != StatusPending {
		return ResolveSwapResponse{}, swaperrors.ErrNotPending
	}

	var mutated []assignment.AssignmentResponse
	if status == StatusApproved {
		mutated, err = s.exchange(ctx, s.assignments.WithTx(tx), companyID, swapReq)
		if err != nil {
			log.Warn("swap exchange failed",
				zap.String("swap_id", id),
				zap.Error(err),
			)
			return ResolveSwapResponse{}, err
		}
	}

	at := s.now().UTC()
	n, err := qtx.ResolvePending(ctx, companyID, id, status, approverID, req.Notes, at)
	if err != nil {
		log.Error("resolve swap persist failed", zap.Error(err))
		return ResolveSwapResponse{}, err
	}
	if n == 0 {
		return ResolveSwapResponse{}, swaperrors.ErrNotPending
	}

	if err := tx.Commit(); err != nil {
		log.Error("resolve swap commit failed", zap.Error(err))
		return ResolveSwapResponse{}, err
	}

	swapReq.Status = status
	swapReq.ApprovedBy = &approverUUID
	swapReq.ResolvedAt = &at
	swapReq.Notes = req.Notes

	metrics.Get().WorkflowTransitions.WithLabelValues("swap", status).Inc()
	log.Info("swap resolved",
		zap.String("swap_id", id),
		zap.String("status", status),
		zap.String("approver_id", approverID),
	)

	date := swapReq.SwapDate.Format(assignment.DateLayout)
	notification.Emit(ctx, s.publisher, log, events.NotificationEvent{
		EventType:     events.SwapResolved,
		CompanyID:     companyID,
		AggregateType: "shift_swap_request",
		AggregateID:   id,
		Recipients:    notification.Recipients([]string{swapReq.RequesterID.String(), swapReq.TargetID.String()}, true),
		Title:         "Shift swap " + status,
		Message:       "The shift swap for " + date + " was " + status,
		Data: map[string]string{
			"swap_id": id,
			"date":    date,
			"status":  status,
		},
	})

	return ResolveSwapResponse{Request: mapToResponse(*swapReq), Assignments: mutated}, nil
}

// exchange swaps the shift reference and override fields of the two current
// assignments. Rows are locked in employee id order so two resolutions over
// the same pair cannot deadlock.
func (s *service) exchange(
	ctx context.Context,
	atx assignment.Repository,
	companyID string,
	swapReq *ShiftSwapRequest,
) ([]assignment.AssignmentResponse, error) {
	first, second := swapReq.RequesterID, swapReq.TargetID
	if second.String() < first.String() {
		first, second = second, first
	}

	locked := make(map[uuid.UUID]*assignment.ShiftAssignment, 2)
	for _, empID := range []uuid.UUID{first, second} {
		a, err := atx.LockActiveByEmployeeAndDate(ctx, companyID, empID.String(), swapReq.SwapDate)
		if err != nil {
			return nil, mapAssignmentError(err, swaperrors.ErrAssignmentMissing)
		}
		locked[empID] = a
	}

	mine, theirs := locked[swapReq.RequesterID], locked[swapReq.TargetID]
	mine.ShiftID, theirs.ShiftID = theirs.ShiftID, mine.ShiftID
	mine.CustomName, theirs.CustomName = theirs.CustomName, mine.CustomName
	mine.CustomStart, theirs.CustomStart = theirs.CustomStart, mine.CustomStart
	mine.CustomEnd, theirs.CustomEnd = theirs.CustomEnd, mine.CustomEnd
	mine.CustomColor, theirs.CustomColor = theirs.CustomColor, mine.CustomColor

	out := make([]assignment.AssignmentResponse, 0, 2)
	for _, a := range []*assignment.ShiftAssignment{mine, theirs} {
		if err := atx.Update(ctx, a); err != nil {
			return nil, err
		}
		view, err := atx.FindView(ctx, companyID, a.ID.String())
		if err != nil {
			return nil, err
		}
		out = append(out, assignment.MapViewToResponse(*view))
	}
	return out, nil
}

func (s *service) GetAll(ctx context.Context, companyID, actorID string, canReadAll bool) ([]SwapResponse, error) {
	var (
		reqs []ShiftSwapRequest
		err  error
	)
	if canReadAll {
		reqs, err = s.repo.FindAllByCompany(ctx, companyID)
	} else {
		if _, parseErr := uuid.Parse(actorID); parseErr != nil {
			return nil, swaperrors.ErrInvalidID
		}
		reqs, err = s.repo.FindAllByParticipant(ctx, companyID, actorID)
	}
	if err != nil {
		s.logger.Error("get swaps failed", zap.Error(err))
		return nil, err
	}

	res := make([]SwapResponse, len(reqs))
	for i, r := range reqs {
		res[i] = mapToResponse(r)
	}
	return res, nil
}

func (s *service) GetByID(ctx context.Context, companyID, actorID, id string, canReadAll bool) (SwapResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return SwapResponse{}, swaperrors.ErrInvalidID
	}
	req, err := s.repo.FindByIDAndCompany(ctx, companyID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SwapResponse{}, swaperrors.ErrSwapNotFound
		}
		return SwapResponse{}, err
	}
	if !canReadAll && req.RequesterID.String() != actorID && req.TargetID.String() != actorID {
		return SwapResponse{}, swaperrors.ErrSwapNotFound
	}
	return mapToResponse(*req), nil
}

func mapAssignmentError(err error, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}

func mapToResponse(r ShiftSwapRequest) SwapResponse {
	resp := SwapResponse{
		ID:                    r.ID.String(),
		RequesterID:           r.RequesterID.String(),
		TargetID:              r.TargetID.String(),
		OriginalAssignmentID:  r.OriginalAssignmentID.String(),
		RequestedAssignmentID: r.RequestedAssignmentID.String(),
		Date:                  r.SwapDate.Format(assignment.DateLayout),
		Reason:                r.Reason,
		Status:                r.Status,
		ResolvedAt:            r.ResolvedAt,
		Notes:                 r.Notes,
		CreatedAt:             r.CreatedAt,
	}
	if r.ApprovedBy != nil {
		resp.ApprovedBy = r.ApprovedBy.String()
	}
	return resp
}
