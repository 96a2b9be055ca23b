// Package submission defines the result of sending a form to the remote
// backend. Delivery is fire-and-forget: once local checks pass the
// submission counts as successful, whatever happens on the wire.
package submission

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/exoorder/backend/internal/domain/shared"
)

// Status is the result category of a submission
type Status string

const (
	// StatusSuccess means local checks passed and the payload was handed to
	// the transport. It does not mean the backend recorded it.
	StatusSuccess Status = "success"
	// StatusPreconditionFailure means nothing was sent
	StatusPreconditionFailure Status = "precondition_failure"
)

// Outcome is what the user is told about a submission
type Outcome struct {
	Status Status `json:"status"`
	// Reason explains a precondition failure
	Reason string `json:"reason,omitempty"`
	// Field names the missing input of a precondition failure
	Field string `json:"field,omitempty"`
	// TransportAnomaly describes a swallowed delivery failure; informational only
	TransportAnomaly string `json:"transport_anomaly,omitempty"`
}

// Succeeded reports whether the submission counts as delivered
func (o Outcome) Succeeded() bool {
	return o.Status == StatusSuccess
}

// ErrMissingAPIKey is the precondition failure for an unset remote key
var ErrMissingAPIKey = shared.NewValidationError("api_key", "API key is not configured")

// PreconditionFailure converts a validation error into an outcome
func PreconditionFailure(err error) Outcome {
	o := Outcome{Status: StatusPreconditionFailure, Reason: err.Error()}
	var de *shared.DomainError
	if errors.As(err, &de) {
		o.Reason = de.Message
		o.Field = de.Field
	}
	return o
}

// Deliver runs send and folds any error into a successful outcome.
// The failure is logged at warn level and attached as a transport anomaly.
func Deliver(ctx context.Context, logger *zap.Logger, action string, send func(context.Context) error) Outcome {
	o := Outcome{Status: StatusSuccess}
	if err := send(ctx); err != nil {
		logger.Warn("Remote delivery failed, treating submission as sent",
			zap.String("action", action),
			zap.Error(err))
		o.TransportAnomaly = err.Error()
	}
	return o
}
