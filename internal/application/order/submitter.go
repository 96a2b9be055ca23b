package order

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/exoorder/backend/internal/application/submission"
	"github.com/exoorder/backend/internal/domain/order"
	"github.com/exoorder/backend/internal/infrastructure/telemetry"
)

const tracerName = "github.com/exoorder/backend/internal/application/order"

// OrderSender delivers an order record to the remote backend
type OrderSender interface {
	AddOrder(ctx context.Context, authKey string, payload order.Payload) error
}

// Submitter validates a draft and hands it to the remote backend
type Submitter struct {
	sender          OrderSender
	banks           *order.BankDirectory
	legacyItems     bool
	logger          *zap.Logger
	tracer          trace.Tracer
	businessMetrics *telemetry.BusinessMetrics
}

// SubmitterOption configures a Submitter
type SubmitterOption func(*Submitter)

// WithLegacyItemFormat sends items as {name, size, price} with quantity and
// unit folded into the name
func WithLegacyItemFormat(enabled bool) SubmitterOption {
	return func(s *Submitter) {
		s.legacyItems = enabled
	}
}

// WithTracerProvider overrides the global tracer provider
func WithTracerProvider(tp trace.TracerProvider) SubmitterOption {
	return func(s *Submitter) {
		s.tracer = tp.Tracer(tracerName)
	}
}

// NewSubmitter creates a new order Submitter
func NewSubmitter(sender OrderSender, banks *order.BankDirectory, logger *zap.Logger, opts ...SubmitterOption) *Submitter {
	s := &Submitter{
		sender: sender,
		banks:  banks,
		logger: logger,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetBusinessMetrics sets the business metrics collector
func (s *Submitter) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// Submit checks the draft and, when every precondition holds, sends it.
// A precondition failure returns the validation error alongside the
// outcome and sends nothing. Delivery failures never produce an error.
func (s *Submitter) Submit(ctx context.Context, draft *order.Draft, authKey string) (submission.Outcome, error) {
	ctx, span := s.tracer.Start(ctx, "order.submit",
		trace.WithAttributes(
			attribute.Int("order.line_items", len(draft.LineItems)),
			attribute.String("order.bank_id", draft.SelectedBankID),
		))
	defer span.End()

	if err := s.checkPreconditions(draft, authKey); err != nil {
		outcome := submission.PreconditionFailure(err)
		span.SetStatus(codes.Error, outcome.Reason)
		s.record(ctx, outcome, draft)
		s.logger.Info("Order submission rejected",
			zap.String("customer_id", draft.CustomerID),
			zap.String("reason", outcome.Reason))
		return outcome, err
	}

	acc, _ := draft.ResolveBank(s.banks)
	payload := order.BuildPayload(draft, acc, s.legacyItems)

	outcome := submission.Deliver(ctx, s.logger, "add_order", func(ctx context.Context) error {
		return s.sender.AddOrder(ctx, authKey, payload)
	})
	if outcome.TransportAnomaly != "" {
		span.AddEvent("transport_anomaly", trace.WithAttributes(attribute.String("error", outcome.TransportAnomaly)))
	}
	s.record(ctx, outcome, draft)

	s.logger.Info("Order submitted",
		zap.String("customer_id", draft.CustomerID),
		zap.String("order_date", draft.DateLabel),
		zap.Int("line_items", len(draft.LineItems)),
		zap.String("total", draft.ComputeTotal().String()),
		zap.Bool("transport_anomaly", outcome.TransportAnomaly != ""))

	return outcome, nil
}

func (s *Submitter) checkPreconditions(draft *order.Draft, authKey string) error {
	if authKey == "" {
		return submission.ErrMissingAPIKey
	}
	return draft.ValidateForSubmission(s.banks)
}

func (s *Submitter) record(ctx context.Context, outcome submission.Outcome, draft *order.Draft) {
	if s.businessMetrics == nil {
		return
	}
	s.businessMetrics.RecordSubmission(ctx, telemetry.FormTypeOrder, string(outcome.Status))
	if !outcome.Succeeded() {
		return
	}
	s.businessMetrics.RecordOrderAmount(ctx, draft.ComputeTotal())
	if outcome.TransportAnomaly != "" {
		s.businessMetrics.RecordTransportAnomaly(ctx, telemetry.FormTypeOrder)
	}
}
