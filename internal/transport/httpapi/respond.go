package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"poolkeeper/internal/bootstrap/logging"
	"poolkeeper/internal/errs"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(body)
}

// writeError maps the error taxonomy to a status. Internal failures get a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errs.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errs.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	default:
		logging.Error(r.Context(), "request failed", slog.Any("err", errs.Loggable(err)))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errs.Invalid("request body is required")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var syntax *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &syntax):
			return errs.Invalid("malformed JSON at offset %d", syntax.Offset)
		case errors.As(err, &typeErr):
			return errs.Invalid("field %q must be %s", typeErr.Field, typeErr.Type)
		default:
			return errs.Invalid("invalid request body: %v", err)
		}
	}
	return nil
}
