package vehicleerrors

import (
	"net/http"

	"go-fleet/internal/shared/apperror"
)

var (
	ErrInvalidVehicleID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid vehicle id",
		http.StatusBadRequest,
	)
	ErrInvalidCapacity = apperror.New(
		apperror.CodeInvalidInput,
		"capacity must be positive",
		http.StatusBadRequest,
	)
	ErrInvalidStatus = apperror.New(
		apperror.CodeInvalidInput,
		"invalid vehicle status",
		http.StatusBadRequest,
	)
	ErrVehicleNotFound = apperror.New(
		apperror.CodeNotFound,
		"vehicle not found",
		http.StatusNotFound,
	)
	ErrPlateAlreadyExists = apperror.New(
		apperror.CodeConflict,
		"plate number already registered",
		http.StatusConflict,
	)
)
