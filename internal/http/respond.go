package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/fjod/go_cart/menu-order/internal/cart"
	"github.com/fjod/go_cart/menu-order/internal/catalog"
	"github.com/fjod/go_cart/menu-order/internal/checkout"
	"github.com/fjod/go_cart/menu-order/internal/repository"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		zap.L().Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleError maps domain errors onto HTTP statuses.
func handleError(w http.ResponseWriter, err error) {
	var validation *checkout.ValidationError
	if errors.As(err, &validation) {
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   validation.Reason,
			Code:    "blocked_at_" + validation.Stage.String(),
			Details: strings.Join(validation.Fields, ","),
		})
		return
	}

	var (
		httpStatus int
		code       string
	)
	switch {
	case errors.Is(err, repository.ErrRestaurantNotFound):
		httpStatus, code = http.StatusNotFound, "restaurant_not_found"
	case errors.Is(err, catalog.ErrProductNotFound):
		httpStatus, code = http.StatusNotFound, "product_not_found"
	case errors.Is(err, cart.ErrLineNotFound):
		httpStatus, code = http.StatusNotFound, "line_not_found"
	case errors.Is(err, repository.ErrOrderNotFound):
		httpStatus, code = http.StatusNotFound, "order_not_found"
	case errors.Is(err, cart.ErrInvalidItem):
		httpStatus, code = http.StatusBadRequest, "invalid_item"
	case errors.Is(err, checkout.ErrSubmitInProgress):
		httpStatus, code = http.StatusConflict, "submit_in_progress"
	case errors.Is(err, checkout.ErrSubmissionFailed):
		httpStatus, code = http.StatusBadGateway, "submission_failed"
	case errors.Is(err, context.DeadlineExceeded):
		httpStatus, code = http.StatusGatewayTimeout, "timeout"
	default:
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	respondError(w, httpStatus, code, err.Error())
}
