package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/recordhouse/recordhouse/record"
)

// errorBody is the uniform error envelope: a human-readable string for 404s
// and 500s, a list of field violations for 422s.
type errorBody struct {
	Detail any `json:"detail"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps store failures onto the two user-visible error kinds:
// not-found becomes 404 with the lookup key in the detail, validation
// becomes 422 enumerating every violated constraint. Anything else is a 500
// boundary condition with no further recovery.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var verr *record.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody{Detail: verr.Fields})
	case errors.Is(err, record.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Detail: err.Error()})
	default:
		s.logger.Error("request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Detail: "internal server error"})
	}
}

// decodeBody decodes a JSON request body. A malformed body is reported as a
// validation failure on the body itself, mirroring how field violations are
// surfaced.
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &record.ValidationError{Fields: []record.FieldError{
			{Field: "body", Reason: "must be valid JSON"},
		}}
	}
	return nil
}
