package assignmenterrors

import (
	"go-workforce/internal/shared/apperror"
	"net/http"
)

var (
	ErrAssignmentNotFound = apperror.New(
		apperror.CodeNotFound,
		"Shift assignment not found",
		http.StatusNotFound,
	)
	ErrEmployeeNotFound = apperror.New(
		apperror.CodeNotFound,
		"Employee not found or inactive",
		http.StatusNotFound,
	)
	ErrShiftNotFound = apperror.New(
		apperror.CodeNotFound,
		"Shift template not found or inactive",
		http.StatusNotFound,
	)
	ErrAlreadyAssigned = apperror.New(
		apperror.CodeConflict,
		"Employee already has an active assignment on this date",
		http.StatusConflict,
	)
	ErrInvalidTransition = apperror.New(
		apperror.CodeInvalidState,
		"Assignment status transition is not allowed",
		http.StatusConflict,
	)
	ErrAssignmentCompleted = apperror.New(
		apperror.CodeInvalidState,
		"Completed assignments cannot be cancelled",
		http.StatusConflict,
	)
	ErrShiftRequired = apperror.New(
		apperror.CodeInvalidInput,
		"Either shift_id or custom_name, custom_start and custom_end are required",
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
	ErrInvalidTime = apperror.New(
		apperror.CodeInvalidInput,
		"Custom times must be HH:MM",
		http.StatusBadRequest,
	)
	ErrInvalidStatus = apperror.New(
		apperror.CodeInvalidInput,
		"Unknown assignment status",
		http.StatusBadRequest,
	)
)
