package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/joliday/backend/internal/domain"
)

// Non-standard statuses for failures the client cannot fix.
const (
	statusDataAccess  = 531
	statusPersistence = 532
	statusTokenIssue  = 536
)

// errPayloadTooLarge stands for any *http.MaxBytesError raised under the
// limit installed by middleware.NewMaxBodySizeHandler.
var errPayloadTooLarge = errors.New("request body too large")

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// fieldErrors maps json field paths to a human-readable problem.
// It unwraps to domain.ErrValidation.
type fieldErrors map[string]string

func (f fieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + " " + f[k]
	}
	return strings.Join(parts, "; ")
}

func (f fieldErrors) Unwrap() error { return domain.ErrValidation }

// errorMapping pairs a sentinel with its HTTP status and machine code.
// Fixed messages replace the error text for server-side failures.
type errorMapping struct {
	sentinel error
	status   int
	code     string
	fixed    string
}

var errorMappings = []errorMapping{
	{domain.ErrValidation, http.StatusUnprocessableEntity, "validation_error", ""},
	{errPayloadTooLarge, http.StatusRequestEntityTooLarge, "payload_too_large", ""},
	{domain.ErrConflict, http.StatusBadRequest, "domain_conflict", ""},
	{domain.ErrInvalidExternalToken, http.StatusUnauthorized, "invalid_external_token", ""},
	{domain.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated", ""},
	{domain.ErrForbidden, http.StatusForbidden, "forbidden", ""},
	{domain.ErrNotFound, http.StatusNotFound, "not_found", ""},
	{domain.ErrEmailNotSent, http.StatusBadGateway, "email_not_sent", "the email could not be sent, please try again later"},
	{domain.ErrDataAccess, statusDataAccess, "data_access_error", "the data could not be loaded, please contact the administrator"},
	{domain.ErrPersistence, statusPersistence, "persistence_error", "the change could not be saved, please contact the administrator"},
	{domain.ErrTokenIssue, statusTokenIssue, "token_error", "the session token could not be issued, please contact the administrator"},
}

// writeError renders err using the first matching entry of errorMappings.
// Unknown errors become a generic 500. Server-side failures are logged with
// their full chain; the client only sees the fixed message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) && !errors.Is(err, errPayloadTooLarge) {
		err = fmt.Errorf("%w: limit is %d bytes", errPayloadTooLarge, maxErr.Limit)
	}

	m := errorMapping{status: http.StatusInternalServerError, code: "internal_error", fixed: "internal server error"}
	for _, candidate := range errorMappings {
		if errors.Is(err, candidate.sentinel) {
			m = candidate
			break
		}
	}

	detail := errorDetail{Code: m.code, Message: m.fixed}
	if detail.Message == "" {
		detail.Message = message(err, m.sentinel)
	}
	var fields fieldErrors
	if errors.As(err, &fields) {
		detail.Fields = fields
		detail.Message = fields.Error()
	}

	if m.status >= http.StatusInternalServerError {
		s.log.ErrorContext(r.Context(), "request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", m.status,
			"error", err,
		)
	}
	writeJSON(w, m.status, errorBody{Error: detail})
}

// message extracts the human-readable part that follows the sentinel in a
// wrapped error.
// e.g. "service.TripService.Edit: domain conflict: dates do not fit" → "dates do not fit"
func message(err, sentinel error) string {
	msg := err.Error()
	if sentinel == nil {
		return msg
	}
	prefix := sentinel.Error() + ": "
	if i := strings.LastIndex(msg, prefix); i >= 0 {
		return msg[i+len(prefix):]
	}
	return sentinel.Error()
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
