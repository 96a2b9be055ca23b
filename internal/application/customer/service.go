// Package customer handles the customer-creation form.
package customer

import (
	"context"

	"go.uber.org/zap"

	"github.com/exoorder/backend/internal/application/submission"
	"github.com/exoorder/backend/internal/domain/customer"
	"github.com/exoorder/backend/internal/infrastructure/telemetry"
)

// CustomerSender delivers a customer record to the remote backend
type CustomerSender interface {
	AddCustomer(ctx context.Context, authKey string, payload customer.Payload) error
}

// APIKeyProvider returns the currently configured remote API key
type APIKeyProvider interface {
	APIKey() string
}

// CreateCustomerRequest is the customer form as posted by the client
type CreateCustomerRequest struct {
	Name     string `json:"name" binding:"max=100"`
	NickName string `json:"nick_name" binding:"max=100"`
	Phone    string `json:"phone" binding:"max=30"`
	Address  string `json:"address" binding:"max=300"`
}

// ToDraft converts the request to the domain draft
func (r CreateCustomerRequest) ToDraft() customer.Draft {
	return customer.Draft{
		Name:     r.Name,
		NickName: r.NickName,
		Phone:    r.Phone,
		Address:  r.Address,
	}
}

// Service submits customer forms
type Service struct {
	sender          CustomerSender
	keys            APIKeyProvider
	logger          *zap.Logger
	businessMetrics *telemetry.BusinessMetrics
}

// NewService creates a new customer Service
func NewService(sender CustomerSender, keys APIKeyProvider, logger *zap.Logger) *Service {
	return &Service{
		sender: sender,
		keys:   keys,
		logger: logger,
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *Service) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Submit validates and sends a customer. Precondition failures return the
// validation error and send nothing; delivery failures are swallowed. The
// send is detached from ctx's cancellation so a disconnecting client
// cannot abort it.
func (s *Service) Submit(ctx context.Context, req CreateCustomerRequest) (submission.Outcome, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "customer", "submit")
	defer span.End()

	draft := req.ToDraft()
	authKey := s.keys.APIKey()

	err := draft.Validate()
	if authKey == "" {
		err = submission.ErrMissingAPIKey
	}
	if err != nil {
		outcome := submission.PreconditionFailure(err)
		telemetry.RecordError(span, err)
		s.record(ctx, outcome)
		return outcome, err
	}

	payload := draft.ToPayload()
	outcome := submission.Deliver(context.WithoutCancel(ctx), s.logger, "add_customer", func(ctx context.Context) error {
		return s.sender.AddCustomer(ctx, authKey, payload)
	})
	if outcome.TransportAnomaly != "" {
		telemetry.AddEvent(span, "transport_anomaly", "error", outcome.TransportAnomaly)
	}
	s.record(ctx, outcome)

	s.logger.Info("Customer submitted",
		zap.String("nick_name", payload.NickName),
		zap.Bool("transport_anomaly", outcome.TransportAnomaly != ""))
	return outcome, nil
}

func (s *Service) record(ctx context.Context, outcome submission.Outcome) {
	if s.businessMetrics == nil {
		return
	}
	s.businessMetrics.RecordSubmission(ctx, telemetry.FormTypeCustomer, string(outcome.Status))
	if outcome.TransportAnomaly != "" {
		s.businessMetrics.RecordTransportAnomaly(ctx, telemetry.FormTypeCustomer)
	}
}
