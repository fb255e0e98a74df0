package shifterrors

import (
	"go-workforce/internal/shared/apperror"
	"net/http"
)

var (
	ErrShiftNotFound = apperror.New(
		apperror.CodeNotFound,
		"Shift template not found",
		http.StatusNotFound,
	)
	ErrInvalidShiftID = apperror.New(
		apperror.CodeInvalidInput,
		"Invalid shift ID",
		http.StatusBadRequest,
	)
	ErrInvalidTime = apperror.New(
		apperror.CodeInvalidInput,
		"Shift times must be HH:MM",
		http.StatusBadRequest,
	)
	ErrShiftNameExists = apperror.New(
		apperror.CodeConflict,
		"Shift template with the same name already exists",
		http.StatusConflict,
	)
)
