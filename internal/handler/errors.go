package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/GiacomoGonzales/shopifree/internal/domain"
	"github.com/GiacomoGonzales/shopifree/internal/provisioning"
)

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable machine-readable code and a human-readable message.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// sentinelStatus maps each domain sentinel to its status and code, in match order.
var sentinelStatus = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrValidation, http.StatusUnprocessableEntity, "validation_error"},
	{domain.ErrNotFound, http.StatusNotFound, "not_found"},
	{domain.ErrConflict, http.StatusConflict, "conflict"},
	{domain.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{domain.ErrForbidden, http.StatusForbidden, "forbidden"},
}

// writeError maps err to a status code and writes the error envelope.
// Errors that match no sentinel are logged and reported as a generic 500,
// so internal detail never reaches the client.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *provisioning.APIError
	if errors.As(err, &apiErr) {
		writeJSON(w, http.StatusBadGateway, errorBody("upstream_error", apiErr.Message))
		return
	}

	if errors.Is(err, provisioning.ErrNotConfigured) {
		s.log.WarnContext(r.Context(), "subdomain requested but hosting API is not configured", "path", r.URL.Path)
		writeJSON(w, http.StatusServiceUnavailable, errorBody("upstream_unavailable", "subdomain provisioning is not available right now"))
		return
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("payload_too_large", "request body is too large"))
		return
	}

	for _, m := range sentinelStatus {
		if errors.Is(err, m.err) {
			writeJSON(w, m.status, errorBody(m.code, unwrapMessage(err, m.err)))
			return
		}
	}

	s.log.ErrorContext(r.Context(), "unhandled error",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	writeJSON(w, http.StatusInternalServerError, errorBody("internal_error", "internal server error"))
}

func errorBody(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

// callSitePrefix matches the "pkg.Type.Method: " chain every layer prepends.
var callSitePrefix = regexp.MustCompile(`^(?:[a-z]+\.[A-Za-z]+(?:\.[A-Za-z]+)?: )+`)

// unwrapMessage extracts the human-readable part from a wrapped sentinel error.
// e.g. "service.StoreService.CreateStore: validation error: name is required" → "name is required"
// When the sentinel carries no detail, its own text is returned.
func unwrapMessage(err, sentinel error) string {
	msg := callSitePrefix.ReplaceAllString(err.Error(), "")
	marker := sentinel.Error()
	if rest, ok := strings.CutPrefix(msg, marker+": "); ok {
		return rest
	}
	if msg == "" {
		return marker
	}
	return msg
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
