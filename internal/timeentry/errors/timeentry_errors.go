package timeentryerrors

import (
	"net/http"

	"go-workforce/internal/shared/apperror"
)

var (
	ErrInvalidID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid id",
		http.StatusBadRequest,
	)
	ErrAlreadyClockedIn = apperror.New(
		apperror.CodeConflict,
		"employee already has an active time entry",
		http.StatusConflict,
	)
	ErrAssignmentNotFound = apperror.New(
		apperror.CodeNotFound,
		"assignment not found",
		http.StatusNotFound,
	)
	ErrAssignmentNotStartable = apperror.New(
		apperror.CodeInvalidState,
		"assignment cannot be started in its current status",
		http.StatusConflict,
	)
	ErrOutsideWindow = apperror.New(
		apperror.CodeOutsideWindow,
		"clock-in is outside the allowed window around the scheduled start",
		http.StatusUnprocessableEntity,
	)
	ErrVerificationRejected = apperror.New(
		apperror.CodeInvalidInput,
		"clock-in verification was rejected",
		http.StatusBadRequest,
	)
	ErrNoActiveEntry = apperror.New(
		apperror.CodeNotFound,
		"no active time entry",
		http.StatusNotFound,
	)
	ErrNotInProgress = apperror.New(
		apperror.CodeInvalidState,
		"time entry is not in progress",
		http.StatusConflict,
	)
	ErrNotOnBreak = apperror.New(
		apperror.CodeInvalidState,
		"time entry is not on break",
		http.StatusConflict,
	)
	ErrEntryNotFound = apperror.New(
		apperror.CodeNotFound,
		"time entry not found",
		http.StatusNotFound,
	)
	ErrNotReviewable = apperror.New(
		apperror.CodeInvalidState,
		"only completed entries pending approval can be reviewed",
		http.StatusConflict,
	)
	ErrEntryExists = apperror.New(
		apperror.CodeConflict,
		"a time entry already exists for this assignment",
		http.StatusConflict,
	)
	ErrInvalidAction = apperror.New(
		apperror.CodeInvalidInput,
		"action must be approve or reject",
		http.StatusBadRequest,
	)
	ErrInvalidRating = apperror.New(
		apperror.CodeInvalidInput,
		"rating must be between 1 and 5",
		http.StatusBadRequest,
	)
)
