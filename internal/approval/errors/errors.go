package approvalerrors

import (
	"net/http"

	"go-fleet/internal/shared/apperror"
)

var (
	ErrInvalidApprovalID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid approval id",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrApprovalNotFound = apperror.New(
		apperror.CodeNotFound,
		"approval not found",
		http.StatusNotFound,
	)
	ErrForbiddenApprover = apperror.New(
		apperror.CodeForbidden,
		"only the assigned approver can decide this approval",
		http.StatusForbidden,
	)
	ErrApprovalAlreadyResolved = apperror.New(
		apperror.CodeConflict,
		"approval has already been resolved",
		http.StatusConflict,
	)
)
