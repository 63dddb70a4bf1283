package web

// errors.go maps errors to JSON error responses.
//
// Every error response carries a stable code users can quote:
//
//	REQ001  - invalid query parameter
//	REQ002  - request timed out
//	REQ003  - request cancelled
//	CONV001 - conversion contract violated (styles unusable for a column kind)
//	CONV002 - too many conversions in progress
//	CONV003 - strict mode and some rows failed to convert
//	SCH001  - schema declaration or header binding is invalid
//	FILE001 - body is not readable CSV
//	FILE002 - body exceeds the size limit
//	TBL001  - table name is invalid or the table does not exist
//	DB001   - database copy failed
//	DB002   - database refused the copied values
//	DB003   - no database is configured
//	RATE001 - rate limit exceeded
//	ERR000  - unexpected error
//
// The technical error is logged with the request ID; clients only see the
// mapped message.

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"

	"github.com/JonMunkholm/csvcell/internal/core"
	"github.com/JonMunkholm/csvcell/internal/logging"
	"github.com/JonMunkholm/csvcell/internal/pgsink"
	"github.com/JonMunkholm/csvcell/internal/reader"
	jsoniter "github.com/json-iterator/go"
)

var (
	errRateLimited  = errors.New("rate limit exceeded")
	errSinkDisabled = errors.New("no database configured")
	errStrict       = errors.New("rows failed conversion")
	errCopy         = errors.New("database copy failed")
)

// paramError reports an unusable query parameter.
type paramError struct {
	Param string
	Err   error
}

func (e *paramError) Error() string {
	return fmt.Sprintf("query parameter %q: %v", e.Param, e.Err)
}

func (e *paramError) Unwrap() error {
	return e.Err
}

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// userMessage is the client-facing side of an error.
type userMessage struct {
	Status  int
	Message string
	Action  string
	Code    string
}

// mapError classifies err. Checks run from most to least specific.
func mapError(err error) userMessage {
	var (
		pe      *paramError
		maxErr  *http.MaxBytesError
		parseEr *csv.ParseError
	)

	switch {
	case errors.As(err, &pe):
		return userMessage{http.StatusBadRequest, err.Error(), "Check the query parameters", "REQ001"}
	case errors.As(err, &maxErr):
		return userMessage{http.StatusRequestEntityTooLarge,
			fmt.Sprintf("CSV body exceeds %d bytes", maxErr.Limit), "Split the file into smaller chunks", "FILE002"}
	case errors.Is(err, errRateLimited):
		return userMessage{http.StatusTooManyRequests, "Too many requests", "Please wait a moment before trying again", "RATE001"}
	case errors.Is(err, errBusy):
		return userMessage{http.StatusServiceUnavailable, "The server is busy converting other files", "Please try again shortly", "CONV002"}
	case errors.Is(err, errStrict):
		return userMessage{http.StatusUnprocessableEntity, err.Error(), "Fix the listed cells or retry without strict=true", "CONV003"}
	case errors.Is(err, core.ErrContract):
		return userMessage{http.StatusBadRequest, err.Error(), "Choose number styles that suit the column kinds", "CONV001"}
	case errors.Is(err, core.ErrSchema):
		return userMessage{http.StatusBadRequest, err.Error(), "Check the schema against the CSV header", "SCH001"}
	case errors.Is(err, reader.ErrNoHeader), errors.As(err, &parseEr):
		return userMessage{http.StatusBadRequest, err.Error(), "Ensure the body is valid CSV", "FILE001"}
	case errors.Is(err, pgsink.ErrInvalidTable):
		return userMessage{http.StatusBadRequest, err.Error(), "Use a plain or schema-qualified table name", "TBL001"}
	case errors.Is(err, errSinkDisabled):
		return userMessage{http.StatusServiceUnavailable, "No database is configured", "Set DATABASE_URL to enable copying", "DB003"}
	case pgsink.IsMissingTarget(err):
		return userMessage{http.StatusNotFound, "Target table or column does not exist", "Create the table with the schema's columns first", "TBL001"}
	case pgsink.IsRejectedData(err):
		return userMessage{http.StatusUnprocessableEntity, "The database rejected the converted values", "Check NOT NULL and length constraints on the table", "DB002"}
	case errors.Is(err, context.DeadlineExceeded):
		return userMessage{http.StatusGatewayTimeout, "Request timed out", "Try a smaller file", "REQ002"}
	case errors.Is(err, context.Canceled):
		return userMessage{http.StatusServiceUnavailable, "Request was cancelled", "Please try again", "REQ003"}
	case errors.Is(err, errCopy):
		return userMessage{http.StatusBadGateway, "Copying into the database failed", "Please try again later", "DB001"}
	default:
		return userMessage{http.StatusInternalServerError, "An unexpected error occurred", "Please try again or contact support", "ERR000"}
	}
}

// respondError logs err and writes its mapped JSON response.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	msg := mapError(err)

	logger := logging.FromContext(r.Context())
	args := []any{"path", r.URL.Path, "status", msg.Status, "code", msg.Code, "error", err.Error()}
	if msg.Status >= http.StatusInternalServerError {
		logger.Error("request error", args...)
	} else {
		logger.Warn("request error", args...)
	}

	writeJSON(w, r, msg.Status, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

var jsonAPI = jsoniter.ConfigCompatibleWithStandardLibrary

// writeJSON writes v as the response body with the given status.
func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := jsonAPI.NewEncoder(w).Encode(v); err != nil {
		logging.FromContext(r.Context()).Error("failed to write response", "error", err)
	}
}

// logRequestError logs a failure that happened after the response started.
func logRequestError(r *http.Request, msg string, err error) {
	logging.FromContext(r.Context()).Error(msg, "path", r.URL.Path, "error", err)
}
