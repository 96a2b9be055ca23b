package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/exoorder/backend/internal/domain/order"
)

// APIKeyProvider returns the currently configured remote API key
type APIKeyProvider interface {
	APIKey() string
}

// FormService handles order form sessions: editing, preview, import and
// submission of drafts
type FormService struct {
	registry  *Registry
	banks     *order.BankDirectory
	submitter *Submitter
	keys      APIKeyProvider
	logger    *zap.Logger
	now       func() time.Time
}

// NewFormService creates a new FormService
func NewFormService(
	registry *Registry,
	banks *order.BankDirectory,
	submitter *Submitter,
	keys APIKeyProvider,
	logger *zap.Logger,
) *FormService {
	return &FormService{
		registry:  registry,
		banks:     banks,
		submitter: submitter,
		keys:      keys,
		logger:    logger,
		now:       time.Now,
	}
}

// SetClock overrides the clock used for date labels
func (s *FormService) SetClock(now func() time.Time) {
	s.now = now
}

// Create opens a new form with an empty draft
func (s *FormService) Create(ctx context.Context) *FormResponse {
	draft := order.NewDraft(s.now(), s.banks.Default().ID)
	f := s.registry.Create(draft)
	s.logger.Debug("Order form created", zap.String("form_id", f.ID.String()))
	return s.view(f)
}

// Get returns the current state of a form
func (s *FormService) Get(ctx context.Context, id uuid.UUID) (*FormResponse, error) {
	f, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}
	return s.view(f), nil
}

// Discard closes a form; an in-flight submission still completes
func (s *FormService) Discard(ctx context.Context, id uuid.UUID) error {
	if err := s.registry.Remove(id); err != nil {
		return err
	}
	s.logger.Debug("Order form discarded", zap.String("form_id", id.String()))
	return nil
}

// Update edits the draft header. Either every change applies or none does.
func (s *FormService) Update(ctx context.Context, id uuid.UUID, req UpdateFormRequest) (*FormResponse, error) {
	f, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}
	err = f.Update(func(d *order.Draft) error {
		if req.SelectedBankID != nil {
			if err := d.SelectBank(s.banks, *req.SelectedBankID); err != nil {
				return err
			}
		}
		if req.CustomerID != nil {
			d.SetCustomerID(*req.CustomerID)
		}
		if req.DateLabel != nil {
			d.SetDateLabel(*req.DateLabel)
		}
		if req.TimeNote != nil {
			d.SetTimeNote(*req.TimeNote)
		}
		if req.ShippingFee != nil {
			d.SetShippingFee(*req.ShippingFee)
		}
		if req.RemittanceTail != nil {
			d.SetRemittanceTail(*req.RemittanceTail)
		}
		if req.OrderNumber != nil {
			d.SetOrderNumber(*req.OrderNumber)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(f), nil
}

// AddLineItem appends an empty line item
func (s *FormService) AddLineItem(ctx context.Context, id uuid.UUID) (*FormResponse, error) {
	f, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}
	err = f.Update(func(d *order.Draft) error {
		d.AddLineItem()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(f), nil
}

// UpdateLineItem replaces one field of a line item
func (s *FormService) UpdateLineItem(ctx context.Context, id, itemID uuid.UUID, req UpdateLineItemRequest) (*FormResponse, error) {
	f, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}
	err = f.Update(func(d *order.Draft) error {
		ok, err := d.UpdateLineItem(itemID, order.LineItemField(req.Field), req.Value)
		if err != nil {
			return err
		}
		if !ok {
			return ErrLineItemNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(f), nil
}

// RemoveLineItem removes a line item. Removing the only item leaves the
// draft unchanged.
func (s *FormService) RemoveLineItem(ctx context.Context, id, itemID uuid.UUID) (*FormResponse, error) {
	f, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}
	err = f.Update(func(d *order.Draft) error {
		if _, ok := d.LineItem(itemID); !ok {
			return ErrLineItemNotFound
		}
		d.RemoveLineItem(itemID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(f), nil
}

// Preview renders the settlement text and backup of the draft
func (s *FormService) Preview(ctx context.Context, id uuid.UUID, req PreviewRequest) (*PreviewResponse, error) {
	f, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}
	var (
		resp    *PreviewResponse
		viewErr error
	)
	f.View(func(d *order.Draft, _ bool) {
		text, err := order.GenerateSettlementText(d, s.banks, req.Options())
		if err != nil {
			viewErr = err
			return
		}
		resp = &PreviewResponse{
			SettlementText: text,
			Backup:         order.Export(d),
			Total:          d.ComputeTotal().String(),
		}
	})
	if viewErr != nil {
		return nil, viewErr
	}
	return resp, nil
}

// Backup returns the portable snapshot of the draft
func (s *FormService) Backup(ctx context.Context, id uuid.UUID) (*order.Snapshot, error) {
	f, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}
	var snap order.Snapshot
	f.View(func(d *order.Draft, _ bool) {
		snap = order.Export(d)
	})
	return &snap, nil
}

// Import overlays a backup onto the draft
func (s *FormService) Import(ctx context.Context, id uuid.UUID, text string) (*FormResponse, error) {
	f, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}
	if err := f.Update(func(d *order.Draft) error {
		return order.Import(text, d)
	}); err != nil {
		s.logger.Debug("Backup import rejected",
			zap.String("form_id", id.String()),
			zap.Error(err))
		return nil, err
	}
	return s.view(f), nil
}

// Submit sends the draft. The send runs detached from ctx's cancellation
// so a disconnecting client cannot abort it; on success the draft is reset.
func (s *FormService) Submit(ctx context.Context, id uuid.UUID) (*SubmitResponse, error) {
	f, err := s.registry.Get(id)
	if err != nil {
		return nil, err
	}
	draft, generation, err := f.beginSubmit()
	if err != nil {
		return nil, err
	}

	outcome, submitErr := s.submitter.Submit(context.WithoutCancel(ctx), draft, s.keys.APIKey())
	reset := f.finishSubmit(generation, outcome.Succeeded(), s.now())
	if submitErr != nil {
		return &SubmitResponse{Outcome: outcome, Form: s.view(f)}, submitErr
	}
	if !reset {
		s.logger.Info("Form changed during submission, draft kept",
			zap.String("form_id", id.String()))
	}
	return &SubmitResponse{Outcome: outcome, Form: s.view(f)}, nil
}

// ActiveForms returns the number of open forms
func (s *FormService) ActiveForms() int {
	return s.registry.ActiveForms()
}

func (s *FormService) view(f *Form) *FormResponse {
	var resp *FormResponse
	f.View(func(d *order.Draft, submitting bool) {
		resp = ToFormResponse(f.ID, d, submitting)
	})
	return resp
}
