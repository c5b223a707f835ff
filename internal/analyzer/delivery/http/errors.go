package http

import (
	"errors"
	"net/http"

	"golang-stock-analyzer/internal/analyzer/dto"
	"golang-stock-analyzer/internal/analyzer/service"

	"github.com/labstack/echo/v4"
)

// statusOf maps a service error to the response status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, dto.ErrTaskNotFound), errors.Is(err, dto.ErrAnalysisNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrTaskFinished):
		return http.StatusConflict
	case errors.Is(err, service.ErrShuttingDown):
		return http.StatusServiceUnavailable
	}

	switch dto.KindOf(err) {
	case dto.KindValidation:
		return http.StatusBadRequest
	case dto.KindDataUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorBody builds the caller-visible error. Only validation errors and the
// sentinel errors carry their own text; upstream and storage failures are
// reduced to their kind.
func errorBody(err error) (int, dto.ErrorResponse) {
	status := statusOf(err)

	var ae *dto.AnalysisError
	if !errors.As(err, &ae) {
		if status == http.StatusInternalServerError {
			return status, dto.ErrorResponse{Error: "internal server error", Kind: string(dto.KindInternal)}
		}
		return status, dto.ErrorResponse{Error: err.Error()}
	}

	body := dto.ErrorResponse{Kind: string(ae.Kind)}
	switch ae.Kind {
	case dto.KindValidation:
		body.Error = ae.Error()
	case dto.KindDataUnavailable:
		body.Error = "market data unavailable"
		if ae.Symbol != "" {
			body.Error += " for " + ae.Symbol
		}
	default:
		body.Error = "internal server error"
	}
	return status, body
}

func errorJSON(c echo.Context, err error) error {
	status, body := errorBody(err)
	return c.JSON(status, body)
}
