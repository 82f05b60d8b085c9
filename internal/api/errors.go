package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/UnknownOlympus/cellmap/internal/service"
	"github.com/gofiber/fiber/v2"
)

// AppError is the JSON error body of the API.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newAppError(code, message string, statusCode int) *AppError {
	return &AppError{Code: code, Message: message, StatusCode: statusCode}
}

var (
	ErrMissingQuery = newAppError(
		"MISSING_QUERY",
		"Query parameter q is required",
		http.StatusBadRequest,
	)

	ErrMethodNotAllowed = newAppError(
		"METHOD_NOT_ALLOWED",
		"Only GET requests are allowed",
		http.StatusMethodNotAllowed,
	)

	ErrNoResult = newAppError(
		"NO_RESULT",
		"No location found for the given address",
		http.StatusNotFound,
	)

	ErrGeocodingTimeout = newAppError(
		"GEOCODING_TIMEOUT",
		"Geocoding provider did not answer in time",
		http.StatusGatewayTimeout,
	)

	ErrNotFound = newAppError(
		"NOT_FOUND",
		"Resource not found",
		http.StatusNotFound,
	)

	ErrInternalServer = newAppError(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)

// ErrorResponse wraps an AppError in the response body.
type ErrorResponse struct {
	Error *AppError `json:"error"`
}

// toAppError maps domain errors to their API representation.
func toAppError(err error) *AppError {
	var appErr *AppError
	var fiberErr *fiber.Error

	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, service.ErrMissingQuery):
		return ErrMissingQuery
	case errors.Is(err, service.ErrGeocodeTimeout):
		return ErrGeocodingTimeout
	case errors.Is(err, service.ErrNoResult):
		return ErrNoResult
	case errors.As(err, &fiberErr) && fiberErr.Code == http.StatusNotFound:
		return ErrNotFound
	case errors.As(err, &fiberErr) && fiberErr.Code == http.StatusMethodNotAllowed:
		return ErrMethodNotAllowed
	default:
		return ErrInternalServer
	}
}

func sendError(c *fiber.Ctx, appErr *AppError) error {
	if appErr.StatusCode == http.StatusMethodNotAllowed {
		c.Set(fiber.HeaderAllow, allowedMethods)
	}
	return c.Status(appErr.StatusCode).JSON(ErrorResponse{Error: appErr})
}
