package checkout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fjod/go_cart/menu-order/internal/domain"
)

var (
	ErrEmptyCart        = errors.New("cart is empty, nothing to submit")
	ErrSubmissionFailed = errors.New("order submission failed")
	ErrSubmitInProgress = errors.New("order is already being submitted")
)

// ValidationError blocks a single transition. The pipeline stays where it is.
type ValidationError struct {
	Stage  domain.Stage
	Reason string
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("%s: %s", e.Stage, e.Reason)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Stage, e.Reason, strings.Join(e.Fields, ", "))
}

func blocked(stage domain.Stage, reason string, fields ...string) *ValidationError {
	return &ValidationError{Stage: stage, Reason: reason, Fields: fields}
}

func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
