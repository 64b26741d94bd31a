package httpx

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/AngelCh415/stayreport/internal/ingest"
	"github.com/AngelCh415/stayreport/internal/metrics"
)

// APIError is the JSON body of every failed request.
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

func (e *APIError) Error() string { return e.Message }

// Render implements render.Renderer.
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func newAPIError(status int, code, msg string, details any) *APIError {
	return &APIError{StatusCode: status, ErrorCode: code, Message: msg, Details: details}
}

func badParam(msg string) *APIError {
	return newAPIError(http.StatusBadRequest, "INVALID_PARAMETER", msg, nil)
}

// toAPIError maps engine errors onto HTTP answers.
func toAPIError(err error) *APIError {
	var ae *APIError
	if errors.As(err, &ae) {
		return ae
	}
	var pe *ingest.ParseError
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &pe) && errors.Is(err, ingest.ErrUnsupportedFormat):
		return newAPIError(http.StatusUnsupportedMediaType, "UNSUPPORTED_FORMAT", err.Error(), pe)
	case errors.As(err, &pe):
		return newAPIError(http.StatusUnprocessableEntity, "PARSE_ERROR", err.Error(), pe)
	case errors.As(err, &mbe):
		return newAPIError(http.StatusRequestEntityTooLarge, "UPLOAD_TOO_LARGE", err.Error(), nil)
	case errors.Is(err, ingest.ErrInvalidSourceURL):
		return badParam(err.Error())
	case errors.Is(err, ingest.ErrPrivateAddress):
		return newAPIError(http.StatusForbidden, "SOURCE_FORBIDDEN", "source url points to a non-public address", nil)
	case errors.Is(err, ingest.ErrSourceUnavailable):
		return newAPIError(http.StatusBadGateway, "SOURCE_UNAVAILABLE", "remote source could not be fetched", nil)
	case errors.Is(err, metrics.ErrNoRecords):
		return newAPIError(http.StatusUnprocessableEntity, "NO_RECORDS", err.Error(), nil)
	case errors.Is(err, metrics.ErrInvalidPeriod),
		errors.Is(err, metrics.ErrInvalidMonth),
		errors.Is(err, metrics.ErrUnknownMetric):
		return badParam(err.Error())
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return newAPIError(http.StatusBadRequest, "MISSING_FILE", err.Error(), nil)
	}
	return newAPIError(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "internal server error", nil)
}
