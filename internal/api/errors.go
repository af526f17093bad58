package api

import (
	"errors"
	"net/http"

	"lakeboard/internal/domain"
)

// httpStatusFromDomainError maps domain errors to HTTP status codes.
func httpStatusFromDomainError(err error) int {
	var notFound *domain.NotFoundError
	var accessDenied *domain.AccessDeniedError
	var validation *domain.ValidationError
	var conflict *domain.ConflictError
	var cycle *domain.CycleError
	var badConfig *domain.ConfigError

	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &accessDenied):
		return http.StatusForbidden
	case errors.As(err, &validation), errors.As(err, &cycle):
		return http.StatusBadRequest
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &badConfig):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
