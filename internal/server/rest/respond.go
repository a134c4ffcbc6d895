package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/gophmarks/internal/common"
	"github.com/dmitrijs2005/gophmarks/internal/logging"
	"github.com/go-playground/validator/v10"
)

const (
	internalErrorMessage = "Internal server error"
	unauthorizedMessage  = "Unauthorized"

	maxBodyBytes = 1 << 20
)

type errorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Error      string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{
		StatusCode: status,
		Message:    message,
		Error:      http.StatusText(status),
	})
}

// writeServiceError is the single place service errors become HTTP
// statuses. Anything unrecognised is logged and reported as a bare 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrValidation):
		writeError(w, http.StatusBadRequest, strings.TrimPrefix(err.Error(), common.ErrValidation.Error()+": "))
	case errors.Is(err, common.ErrDuplicateCredential):
		writeError(w, http.StatusForbidden, "Credentials already taken")
	case errors.Is(err, common.ErrInvalidCredentials):
		writeError(w, http.StatusForbidden, "Invalid credentials")
	case errors.Is(err, common.ErrNotFoundOrForbidden):
		writeError(w, http.StatusForbidden, "Bookmark not found")
	case errors.Is(err, common.ErrorUnauthorized),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		writeError(w, http.StatusUnauthorized, unauthorizedMessage)
	case errors.Is(err, common.ErrExportDisabled):
		writeError(w, http.StatusServiceUnavailable, "Bookmark export is not configured")
	default:
		logging.FromContext(r.Context()).Error(r.Context(), "request failed", "error", err)
		writeError(w, http.StatusInternalServerError, internalErrorMessage)
	}
}

// decode reads a JSON body into dst and validates it. Failures come back
// wrapped in common.ErrValidation. Unknown fields are ignored.
func (s *Server) decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is required", common.ErrValidation)
		}
		return fmt.Errorf("%w: malformed JSON body", common.ErrValidation)
	}

	if err := s.validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %s", common.ErrValidation, describeValidation(err))
	}
	return nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s should not be empty", fe.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be an email", fe.Field()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must not be empty", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}
