package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"plutus/internal/auth"
	"plutus/internal/core"
	"plutus/internal/storage"
)

// writeJSON serializes v with the given status. A nil v writes a JSON null,
// which is what not-found lookups return.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// writeError maps domain sentinels onto status codes. Not-found resolves to
// a 404 with a null body so absent and expired resources are identical on
// the wire.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeJSON(w, http.StatusNotFound, nil)
	case errors.Is(err, auth.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "unauthorized"})
	case errors.Is(err, auth.ErrEmailTaken):
		writeJSON(w, http.StatusConflict, errorBody{Error: auth.ErrEmailTaken.Error()})
	case errors.Is(err, core.ErrInvalidTransactionData),
		errors.Is(err, core.ErrInvalidAllocationInput),
		errors.Is(err, core.ErrPercentageBudgetExceeded),
		errors.Is(err, core.ErrInvalidPriority),
		errors.Is(err, core.ErrDuplicatePriority):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: err.Error()})
	default:
		slog.Error("internal error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

// decodeJSON parses the request body into dst with unknown fields rejected.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
