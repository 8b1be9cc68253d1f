package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/apperror"
	"github.com/cmlabs-hris/hris-attendance-go/internal/pkg/validator"
)

// ErrMalformedBody is returned by handlers when the request body cannot be decoded.
var ErrMalformedBody = errors.New("malformed request body")

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	if errors.Is(err, ErrMalformedBody) {
		BadRequest(w, "Invalid request body", nil)
		return
	}

	switch apperror.KindOf(err) {
	case apperror.KindNotFound:
		NotFound(w, err.Error())
	case apperror.KindValidation:
		ValidationError(w, map[string]string{"error": err.Error()})
	case apperror.KindConflict:
		Conflict(w, err.Error())
	case apperror.KindInvalidState:
		InvalidState(w, err.Error())
	case apperror.KindForbidden:
		Forbidden(w, err.Error())
	default:
		slog.Error("Unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
