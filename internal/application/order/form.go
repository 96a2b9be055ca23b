package order

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/exoorder/backend/internal/domain/order"
	"github.com/exoorder/backend/internal/domain/shared"
)

var (
	// ErrFormNotFound is returned for an unknown or evicted form session
	ErrFormNotFound = shared.NewDomainError(shared.CodeNotFound, "Order form not found")
	// ErrLineItemNotFound is returned for an unknown line item id
	ErrLineItemNotFound = shared.NewDomainError(shared.CodeNotFound, "Line item not found")
	// ErrSubmissionInFlight is returned when a form is submitted twice concurrently
	ErrSubmissionInFlight = shared.NewDomainError(shared.CodeConflict, "A submission is already in progress for this form")
)

// Form is one order-entry session. All access to the draft goes through
// the form's mutex; at most one submission runs at a time.
type Form struct {
	ID uuid.UUID

	mu         sync.Mutex
	draft      *order.Draft
	submitting bool
	generation uint64
	closed     bool
}

func newForm(draft *order.Draft) *Form {
	return &Form{ID: uuid.New(), draft: draft}
}

// View runs fn with read access to the draft
func (f *Form) View(fn func(d *order.Draft, submitting bool)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f.draft, f.submitting)
}

// Update runs fn with write access to the draft. A successful update
// starts a new generation, so an in-flight submission will not reset
// edits made after it began.
func (f *Form) Update(fn func(d *order.Draft) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrFormNotFound
	}
	if err := fn(f.draft); err != nil {
		return err
	}
	f.generation++
	return nil
}

// beginSubmit marks the form as submitting and returns a copy of the
// draft to send along with the generation it was taken from
func (f *Form) beginSubmit() (*order.Draft, uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil, 0, ErrFormNotFound
	}
	if f.submitting {
		return nil, 0, ErrSubmissionInFlight
	}
	f.submitting = true
	return f.draft.Clone(), f.generation, nil
}

// finishSubmit clears the submitting flag. On success the draft is reset,
// unless the form was edited, reset or closed since the submission began.
// Returns true if the draft was reset.
func (f *Form) finishSubmit(generation uint64, succeeded bool, now time.Time) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitting = false
	if !succeeded || f.closed || generation != f.generation {
		return false
	}
	f.resetLocked(now)
	return true
}

// Reset discards the draft content and starts over
func (f *Form) Reset(now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetLocked(now)
}

func (f *Form) resetLocked(now time.Time) {
	f.draft.Reset(now)
	f.generation++
}

func (f *Form) close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

// Registry holds the open form sessions. Sessions idle longer than the
// idle timeout are evicted whenever a new one is created.
type Registry struct {
	mu          sync.Mutex
	forms       map[uuid.UUID]*Form
	lastUsed    map[uuid.UUID]time.Time
	idleTimeout time.Duration
	now         func() time.Time
}

// NewRegistry creates an empty registry; idleTimeout <= 0 disables eviction
func NewRegistry(idleTimeout time.Duration, now func() time.Time) *Registry {
	if now == nil {
		now = time.Now
	}
	return &Registry{
		forms:       make(map[uuid.UUID]*Form),
		lastUsed:    make(map[uuid.UUID]time.Time),
		idleTimeout: idleTimeout,
		now:         now,
	}
}

// Create registers a new form around draft and returns it
func (r *Registry) Create(draft *order.Draft) *Form {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evictIdleLocked()
	f := newForm(draft)
	r.forms[f.ID] = f
	r.lastUsed[f.ID] = r.now()
	return f
}

// Get returns the form and marks it as used
func (r *Registry) Get(id uuid.UUID) (*Form, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.forms[id]
	if !ok {
		return nil, ErrFormNotFound
	}
	r.lastUsed[id] = r.now()
	return f, nil
}

// Remove closes and forgets the form
func (r *Registry) Remove(id uuid.UUID) error {
	r.mu.Lock()
	f, ok := r.forms[id]
	delete(r.forms, id)
	delete(r.lastUsed, id)
	r.mu.Unlock()
	if !ok {
		return ErrFormNotFound
	}
	f.close()
	return nil
}

// ActiveForms returns the number of open forms
func (r *Registry) ActiveForms() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.forms)
}

func (r *Registry) evictIdleLocked() {
	if r.idleTimeout <= 0 {
		return
	}
	cutoff := r.now().Add(-r.idleTimeout)
	for id, used := range r.lastUsed {
		if used.Before(cutoff) {
			f := r.forms[id]
			delete(r.forms, id)
			delete(r.lastUsed, id)
			f.close()
		}
	}
}
