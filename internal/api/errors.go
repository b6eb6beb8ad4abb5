package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/hlog"

	"github.com/machi-events/eventfinder/internal/api/respond"
	"github.com/machi-events/eventfinder/internal/model"
	"github.com/machi-events/eventfinder/internal/services"
)

// writeServiceError maps domain errors onto the HTTP error taxonomy.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, services.ErrNotRegistered), errors.Is(err, services.ErrIncorrectPassword):
		respond.WriteUnauthorized(w, err.Error())
	case errors.Is(err, model.ErrValidation):
		respond.WriteBadRequest(w, validationMessage(err))
	case errors.Is(err, model.ErrNotFound):
		respond.WriteNotFound(w, "not found")
	case errors.Is(err, services.ErrSourceFailure):
		respond.WriteInternalError(w, services.ErrSourceFailure.Error())
	default:
		hlog.FromRequest(r).Error().Stack().Err(err).Msg("request failed")
		respond.WriteInternalError(w, "internal error")
	}
}

// validationMessage strips the "validation error: " prefix added by wrapping.
func validationMessage(err error) string {
	return strings.TrimPrefix(err.Error(), model.ErrValidation.Error()+": ")
}
