// Package respond writes the JSON bodies every handler returns: plain
// objects, named lists and the {"error","code","message"} error shape.
package respond

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

// WriteJSON sets the content type and status, then encodes data.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	// headers are gone by now, so an encode failure can only be logged
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Int("status", statusCode).Msg("encode response")
	}
}

// WriteList writes {"<name>": items, "count": n}. A nil slice encodes as [].
func WriteList[T any](w http.ResponseWriter, name string, items []T) {
	if items == nil {
		items = []T{}
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{name: items, "count": len(items)})
}

func WriteError(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Code:    statusCode,
		Message: message,
	})
}

func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message)
}

func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message)
}

func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message)
}

func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message)
}
