package placement

import (
	"context"
	"sync"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/lock"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
)

// memStore is an in-memory checkout repository.
type memStore struct {
	mu        sync.Mutex
	checkouts map[string]*model.Checkout
	cancelled map[string]bool
	nextOrder int64
	failState error
}

func newMemStore() *memStore {
	return &memStore{
		checkouts: make(map[string]*model.Checkout),
		cancelled: make(map[string]bool),
	}
}

func cloneCheckout(c *model.Checkout) *model.Checkout {
	cp := *c
	cp.Lines = append([]model.CheckoutLine(nil), c.Lines...)
	return &cp
}

func (s *memStore) CreateCheckout(_ context.Context, c *model.Checkout) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.IdempotencyKey != nil {
		for _, existing := range s.checkouts {
			if existing.IdempotencyKey != nil && *existing.IdempotencyKey == *c.IdempotencyKey {
				return db.ErrIdempotencyKeyConflict
			}
		}
	}
	for i := range c.Lines {
		s.nextOrder++
		c.Lines[i].OrderID = s.nextOrder
	}
	c.UpdatedAt = time.Now()
	s.checkouts[c.PaymentID] = cloneCheckout(c)
	return nil
}

func (s *memStore) GetCheckout(_ context.Context, paymentID string) (*model.Checkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.checkouts[paymentID]
	if !ok {
		return nil, db.ErrCheckoutNotFound
	}
	return cloneCheckout(c), nil
}

func (s *memStore) GetCheckoutByIdempotencyKey(_ context.Context, key string) (*model.Checkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.checkouts {
		if c.IdempotencyKey != nil && *c.IdempotencyKey == key {
			return cloneCheckout(c), nil
		}
	}
	return nil, db.ErrCheckoutNotFound
}

func (s *memStore) UpdateLineOutcome(_ context.Context, paymentID string, lineNo int, outcome model.StockOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.checkouts[paymentID]
	if !ok {
		return db.ErrCheckoutNotFound
	}
	for i := range c.Lines {
		if c.Lines[i].LineNo == lineNo {
			c.Lines[i].StockOutcome = outcome
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	return db.ErrCheckoutNotFound
}

func (s *memStore) UpdateCheckoutState(_ context.Context, paymentID string, state model.CheckoutState, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failState != nil {
		return s.failState
	}
	c, ok := s.checkouts[paymentID]
	if !ok {
		return db.ErrCheckoutNotFound
	}
	c.State = state
	c.FailureReason = reason
	c.UpdatedAt = time.Now()
	return nil
}

func (s *memStore) MarkCartCleared(_ context.Context, paymentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.checkouts[paymentID]
	if !ok {
		return db.ErrCheckoutNotFound
	}
	c.CartCleared = true
	return nil
}

func (s *memStore) CancelCheckoutOrders(_ context.Context, paymentID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancelled[paymentID] {
		return 0, nil
	}
	s.cancelled[paymentID] = true
	return int64(len(s.checkouts[paymentID].Lines)), nil
}

func (s *memStore) ListStaleCheckouts(_ context.Context, states []model.CheckoutState, updatedBefore time.Time, limit int) ([]model.Checkout, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Checkout
	for _, c := range s.checkouts {
		if len(out) == limit {
			break
		}
		for _, st := range states {
			if c.State == st && c.UpdatedAt.Before(updatedBefore) {
				out = append(out, *cloneCheckout(c))
				break
			}
		}
	}
	return out, nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.checkouts)
}

type memLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

func newMemLocker() *memLocker {
	return &memLocker{held: make(map[string]bool)}
}

func (l *memLocker) Acquire(_ context.Context, name string) (lock.Handle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[name] {
		return nil, lock.ErrLockNotAcquired
	}
	l.held[name] = true
	return &memHandle{locker: l, name: name}, nil
}

type memHandle struct {
	locker *memLocker
	name   string
}

func (h *memHandle) Release(context.Context) error {
	h.locker.mu.Lock()
	defer h.locker.mu.Unlock()
	delete(h.locker.held, h.name)
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	states []model.CheckoutState
}

func (p *recordingPublisher) PublishCheckout(_ context.Context, c *model.Checkout) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states = append(p.states, c.State)
	return nil
}

func (p *recordingPublisher) published() []model.CheckoutState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]model.CheckoutState(nil), p.states...)
}
