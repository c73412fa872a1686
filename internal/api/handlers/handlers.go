package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/mustafanalbant1/Event-Finder/internal/api/respond"
	"github.com/mustafanalbant1/Event-Finder/internal/domain/events"
	"github.com/mustafanalbant1/Event-Finder/internal/domain/users"
)

// writeDomainError maps service errors onto HTTP responses. Anything not
// recognized is a 500 with the detail kept server-side.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var userValidation users.ValidationError
	var eventValidation events.ValidationError
	var filterErr events.FilterError

	switch {
	case errors.As(err, &userValidation):
		respond.ErrorWithFields(w, r, http.StatusBadRequest, "validation failed", err, userValidation.Fields)
	case errors.As(err, &eventValidation):
		respond.ErrorWithFields(w, r, http.StatusBadRequest, "validation failed", err, eventValidation.Fields)
	case errors.As(err, &filterErr):
		respond.ErrorWithFields(w, r, http.StatusBadRequest, "invalid search filters", err, map[string]string{
			filterErr.Field: filterErr.Message,
		})
	case errors.Is(err, users.ErrEmailTaken):
		respond.Error(w, r, http.StatusConflict, "email already registered", err)
	case errors.Is(err, users.ErrInvalidCredentials):
		respond.Error(w, r, http.StatusUnauthorized, "invalid email or password", err)
	case errors.Is(err, users.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, "user not found", err)
	case errors.Is(err, events.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, "event not found", err)
	case errors.Is(err, events.ErrForbidden):
		respond.Error(w, r, http.StatusForbidden, "only the organizer can modify this event", err)
	case errors.Is(err, events.ErrAlreadyJoined):
		respond.Error(w, r, http.StatusConflict, "already joined this event", err)
	case errors.Is(err, events.ErrCapacityExceeded):
		respond.Error(w, r, http.StatusConflict, "event is full", err)
	case respond.IsBodyTooLarge(err):
		respond.Error(w, r, http.StatusRequestEntityTooLarge, "request body too large", err)
	default:
		respond.Internal(w, r, err)
	}
}

func pathParam(r *http.Request, key string) string {
	return strings.TrimSpace(r.PathValue(key))
}
