package bookingerrors

import (
	"net/http"

	"go-fleet/internal/shared/apperror"
)

var (
	ErrInvalidBookingID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid booking id",
		http.StatusBadRequest,
	)
	ErrInvalidRequesterID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid requester id",
		http.StatusBadRequest,
	)
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid date format, expected YYYY-MM-DD",
		http.StatusBadRequest,
	)
	ErrInvalidTimeFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid time format, expected HH:MM",
		http.StatusBadRequest,
	)
	ErrInvalidTimeWindow = apperror.New(
		apperror.CodeInvalidInput,
		"start time must be before end time",
		http.StatusBadRequest,
	)
	ErrInvalidEndDate = apperror.New(
		apperror.CodeInvalidInput,
		"end date must not be before trip date",
		http.StatusBadRequest,
	)
	ErrInvalidPassengerCount = apperror.New(
		apperror.CodeInvalidInput,
		"passenger count must be positive",
		http.StatusBadRequest,
	)
	ErrBookingNotFound = apperror.New(
		apperror.CodeNotFound,
		"booking not found",
		http.StatusNotFound,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"invalid booking status transition",
		http.StatusBadRequest,
	)
	ErrNoAvailabilityFound = apperror.New(
		apperror.CodeNotFound,
		"no driver and vehicle available for the requested window",
		http.StatusConflict,
	)
	ErrReservationConflict = apperror.New(
		apperror.CodeConflict,
		"reservation lost a concurrent race, please retry",
		http.StatusConflict,
	)
	ErrActualDistanceRequired = apperror.New(
		apperror.CodeInvalidInput,
		"actual distance must not be negative",
		http.StatusBadRequest,
	)
)
