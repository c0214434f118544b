package service

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
)

type fakeProductRepo struct {
	db.IProductRepository
	mu        sync.Mutex
	products  map[int64]*model.Product
	reads     int
	decrement func(productID int64, quantity int, reference string) (*model.StockLevel, error)
}

func (f *fakeProductRepo) GetProductByID(_ context.Context, id int64) (*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	p, ok := f.products[id]
	if !ok {
		return nil, db.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProductRepo) DecrementStock(_ context.Context, productID int64, quantity int, reference string) (*model.StockLevel, error) {
	return f.decrement(productID, quantity, reference)
}

func (f *fakeProductRepo) RestockStock(_ context.Context, productID int64, _ string) (*model.StockLevel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.products[productID]
	if !ok {
		return nil, db.ErrProductNotFound
	}
	return &model.StockLevel{ProductID: productID, InStock: p.InStock}, nil
}

type fakeCartRepo struct {
	db.ICartRepository
	lines []model.CartLine
}

func (f *fakeCartRepo) GetCartLinesByCustomer(_ context.Context, customerID int64) ([]model.CartLine, error) {
	var out []model.CartLine
	for _, l := range f.lines {
		if l.CustomerLink == customerID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeCartRepo) GetCartLineByID(_ context.Context, id int64) (*model.CartLine, error) {
	for _, l := range f.lines {
		if l.ID == id {
			return &l, nil
		}
	}
	return nil, db.ErrCartLineNotFound
}

func (f *fakeCartRepo) AddCartLine(_ context.Context, customerID, productID int64) (*model.CartLine, error) {
	for i := range f.lines {
		if f.lines[i].CustomerLink == customerID && f.lines[i].ProductLink == productID {
			f.lines[i].Quantity++
			l := f.lines[i]
			return &l, nil
		}
	}
	l := model.CartLine{ID: int64(len(f.lines) + 1), CustomerLink: customerID, ProductLink: productID, Quantity: 1}
	f.lines = append(f.lines, l)
	return &l, nil
}

func (f *fakeCartRepo) IncrementCartLine(_ context.Context, id int64) (*model.CartLine, error) {
	for i := range f.lines {
		if f.lines[i].ID == id {
			f.lines[i].Quantity++
			l := f.lines[i]
			return &l, nil
		}
	}
	return nil, db.ErrCartLineNotFound
}

func (f *fakeCartRepo) DecrementCartLine(_ context.Context, id int64) (*model.CartLine, bool, error) {
	for i := range f.lines {
		if f.lines[i].ID != id {
			continue
		}
		l := f.lines[i]
		if l.Quantity <= 1 {
			f.lines = append(f.lines[:i], f.lines[i+1:]...)
			l.Quantity = 0
			return &l, true, nil
		}
		f.lines[i].Quantity--
		l.Quantity--
		return &l, false, nil
	}
	return nil, false, db.ErrCartLineNotFound
}

func (f *fakeCartRepo) DeleteCartLines(_ context.Context, customerID int64, productIDs []int64) (int64, error) {
	drop := make(map[int64]bool, len(productIDs))
	for _, id := range productIDs {
		drop[id] = true
	}
	var deleted int64
	kept := f.lines[:0]
	for _, l := range f.lines {
		if l.CustomerLink == customerID && drop[l.ProductLink] {
			deleted++
			continue
		}
		kept = append(kept, l)
	}
	f.lines = kept
	return deleted, nil
}

// fakeCatalog answers product lookups the way the catalog client does.
type fakeCatalog struct {
	mu       sync.Mutex
	products map[int64]*model.Product
	failWith error
	calls    int
}

func (f *fakeCatalog) GetProduct(_ context.Context, id int64) (*model.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failWith != nil {
		return nil, f.failWith
	}
	p, ok := f.products[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "product not found")
	}
	return p, nil
}

type fakeIdentity struct {
	customers map[int64]*model.Customer
	calls     atomic.Int32
}

func (f *fakeIdentity) GetCustomer(_ context.Context, id int64) (*model.Customer, error) {
	f.calls.Add(1)
	c, ok := f.customers[id]
	if !ok {
		return nil, apperr.New(apperr.KindNotFound, "customer not found")
	}
	return c, nil
}

type fakeOrderRepo struct {
	db.IOrderRepository
	orders []model.Order
}

func (f *fakeOrderRepo) GetAllOrders(_ context.Context) ([]model.Order, error) {
	return append([]model.Order(nil), f.orders...), nil
}

func (f *fakeOrderRepo) GetOrdersByCustomer(_ context.Context, customerID int64) ([]model.Order, error) {
	var out []model.Order
	for _, o := range f.orders {
		if o.CustomerLink == customerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeOrderRepo) GetOrderByID(_ context.Context, id int64) (*model.Order, error) {
	for _, o := range f.orders {
		if o.ID == id {
			cp := o
			return &cp, nil
		}
	}
	return nil, db.ErrOrderNotFound
}

func (f *fakeOrderRepo) UpdateOrderStatus(_ context.Context, id int64, status model.OrderStatus) error {
	for i := range f.orders {
		if f.orders[i].ID == id {
			f.orders[i].Status = status
			return nil
		}
	}
	return db.ErrOrderNotFound
}

type fakeCheckoutRepo struct {
	db.ICheckoutRepository
	checkouts map[string]*model.Checkout
}

func (f *fakeCheckoutRepo) GetCheckout(_ context.Context, paymentID string) (*model.Checkout, error) {
	c, ok := f.checkouts[paymentID]
	if !ok {
		return nil, db.ErrCheckoutNotFound
	}
	return c, nil
}
