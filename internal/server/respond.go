package server

import (
	"encoding/json"
	"net/http"

	apperrors "deribit-dashboard/internal/errors"
)

// errorResponse is the JSON body for failed requests.
type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps domain errors to HTTP statuses. Validation failures
// are the caller's fault; everything else is a 500, which should not
// happen on the documented degrade-gracefully paths.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var vErr *apperrors.ValidationError
	switch {
	case apperrors.As(err, &vErr):
		status = http.StatusBadRequest
	case apperrors.Is(err, apperrors.ErrInstrumentNotFound):
		status = http.StatusNotFound
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
