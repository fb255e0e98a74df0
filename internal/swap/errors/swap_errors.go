package swaperrors

import (
	"go-workforce/internal/shared/apperror"
	"net/http"
)

var (
	ErrSwapNotFound = apperror.New(
		apperror.CodeNotFound,
		"Swap request not found",
		http.StatusNotFound,
	)
	ErrAssignmentNotFound = apperror.New(
		apperror.CodeNotFound,
		"Both employees need an active assignment on the swap date",
		http.StatusNotFound,
	)
	ErrSelfSwap = apperror.New(
		apperror.CodeInvalidInput,
		"Cannot swap a shift with yourself",
		http.StatusBadRequest,
	)
	ErrDuplicatePending = apperror.New(
		apperror.CodeConflict,
		"An identical swap request is already pending",
		http.StatusConflict,
	)
	ErrAssignmentMissing = apperror.New(
		apperror.CodeConflict,
		"An assignment involved in the swap no longer exists",
		http.StatusConflict,
	)
	ErrNotPending = apperror.New(
		apperror.CodeInvalidState,
		"Swap request has already been resolved",
		http.StatusConflict,
	)
	ErrInvalidAction = apperror.New(
		apperror.CodeInvalidInput,
		"Action must be approve or reject",
		http.StatusBadRequest,
	)
	ErrInvalidDate = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid ID",
		http.StatusBadRequest,
	)
)
