package rest

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	domainErrors "github.com/vanshtarar4/predictive-transaction-backend/internal/domain/errors"
)

// writeJSON writes a JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

// writeError maps an error to its HTTP representation.
func writeError(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, err error) {
	status, body := mapError(err)

	if status >= 500 {
		logger.ErrorContext(ctx, "request failed", "status", status, "error", err)
	} else {
		logger.DebugContext(ctx, "request rejected", "status", status, "error", err)
	}

	writeJSON(w, status, body)
}

func mapError(err error) (int, ErrorResponse) {
	var appErr *domainErrors.AppError
	if errors.As(err, &appErr) {
		status := appErr.StatusCode
		if status == 0 {
			status = http.StatusInternalServerError
		}
		return status, ErrorResponse{Error: ErrorBody{
			Code:    appErr.Code,
			Message: appErr.Message,
		}}
	}

	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		fields := make(map[string][]string, len(validationErrs))
		for _, fe := range validationErrs {
			fields[fe.Field()] = append(fields[fe.Field()],
				fmt.Sprintf("failed %s validation", fe.Tag()))
		}
		return http.StatusBadRequest, ErrorResponse{Error: ErrorBody{
			Code:    "VALIDATION_FAILED",
			Message: "request validation failed",
			Fields:  fields,
		}}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) || errors.Is(err, errInvalidBody) {
		return http.StatusBadRequest, ErrorResponse{Error: ErrorBody{
			Code:    "INVALID_JSON",
			Message: "request body is not valid JSON",
		}}
	}

	if errors.Is(err, sql.ErrNoRows) {
		return http.StatusNotFound, ErrorResponse{Error: ErrorBody{
			Code:    "NOT_FOUND",
			Message: "resource not found",
		}}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, ErrorResponse{Error: ErrorBody{
			Code:    "REQUEST_TIMEOUT",
			Message: "request timed out",
		}}
	}

	return http.StatusInternalServerError, ErrorResponse{Error: ErrorBody{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
	}}
}

var errInvalidBody = errors.New("invalid request body")
