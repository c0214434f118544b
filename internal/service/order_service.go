package service

import (
	"context"
	"errors"
	"sync"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type CustomerGateway interface {
	GetCustomer(ctx context.Context, customerID int64) (*model.Customer, error)
}

// OrderView is an order with its product and customer resolved from the
// owning services. Either may be nil when the owner no longer has it.
type OrderView struct {
	model.Order
	Product  *model.Product
	Customer *model.Customer
}

type IOrderService interface {
	GetCustomerOrders(ctx context.Context, customerID int64) ([]OrderView, error)
	GetAllOrders(ctx context.Context) ([]OrderView, error)
	GetOrder(ctx context.Context, orderID int64) (*model.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
	GetCheckout(ctx context.Context, paymentID string) (*model.Checkout, error)
}

type OrderService struct {
	orderRepo    db.IOrderRepository
	checkoutRepo db.ICheckoutRepository
	products     ProductGateway
	customers    CustomerGateway
	logger       *zerolog.Logger
}

func NewOrderService(
	orderRepo db.IOrderRepository,
	checkoutRepo db.ICheckoutRepository,
	products ProductGateway,
	customers CustomerGateway,
	logger *zerolog.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		checkoutRepo: checkoutRepo,
		products:     products,
		customers:    customers,
		logger:       logger,
	}
}

func (s *OrderService) GetCustomerOrders(ctx context.Context, customerID int64) ([]OrderView, error) {
	orders, err := s.orderRepo.GetOrdersByCustomer(ctx, customerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "failed to load orders")
	}
	return s.enrich(ctx, orders)
}

func (s *OrderService) GetAllOrders(ctx context.Context) ([]OrderView, error) {
	orders, err := s.orderRepo.GetAllOrders(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "failed to load orders")
	}
	return s.enrich(ctx, orders)
}

// enrich resolves every distinct product and customer of orders once,
// concurrently. Missing ones stay nil, any other failure aborts.
func (s *OrderService) enrich(ctx context.Context, orders []model.Order) ([]OrderView, error) {
	if len(orders) == 0 {
		return []OrderView{}, nil
	}

	var (
		mu        sync.Mutex
		products  = make(map[int64]*model.Product)
		customers = make(map[int64]*model.Customer)
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(productLookupConcurrency)
	for _, customerID := range distinctCustomers(orders) {
		g.Go(func() error {
			c, err := s.customers.GetCustomer(gctx, customerID)
			if err != nil {
				if apperr.Is(err, apperr.KindNotFound) {
					return nil
				}
				return err
			}
			mu.Lock()
			customers[customerID] = c
			mu.Unlock()
			return nil
		})
	}
	for _, productID := range distinctProducts(orders) {
		g.Go(func() error {
			p, err := s.products.GetProduct(gctx, productID)
			if err != nil {
				if apperr.Is(err, apperr.KindNotFound) {
					return nil
				}
				return err
			}
			mu.Lock()
			products[productID] = p
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	views := make([]OrderView, 0, len(orders))
	for _, order := range orders {
		views = append(views, OrderView{
			Order:    order,
			Product:  products[order.ProductLink],
			Customer: customers[order.CustomerLink],
		})
	}
	return views, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID int64) (*model.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, mapOrderError(err)
	}
	return order, nil
}

func (s *OrderService) UpdateOrderStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	if !status.IsValid() {
		return apperr.Newf(apperr.KindValidation, "invalid order status %q", status)
	}
	if err := s.orderRepo.UpdateOrderStatus(ctx, orderID, status); err != nil {
		return mapOrderError(err)
	}
	s.logger.Info().Int64("order_id", orderID).Str("status", string(status)).Msg("order status updated")
	return nil
}

func (s *OrderService) GetCheckout(ctx context.Context, paymentID string) (*model.Checkout, error) {
	checkout, err := s.checkoutRepo.GetCheckout(ctx, paymentID)
	if err != nil {
		if errors.Is(err, db.ErrCheckoutNotFound) {
			return nil, apperr.Wrap(apperr.KindNotFound, err, "checkout not found")
		}
		return nil, apperr.Wrap(apperr.KindInternal, err, "failed to load checkout")
	}
	return checkout, nil
}

func distinctProducts(orders []model.Order) []int64 {
	seen := make(map[int64]struct{}, len(orders))
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		if _, ok := seen[o.ProductLink]; ok {
			continue
		}
		seen[o.ProductLink] = struct{}{}
		ids = append(ids, o.ProductLink)
	}
	return ids
}

func distinctCustomers(orders []model.Order) []int64 {
	seen := make(map[int64]struct{}, len(orders))
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		if _, ok := seen[o.CustomerLink]; ok {
			continue
		}
		seen[o.CustomerLink] = struct{}{}
		ids = append(ids, o.CustomerLink)
	}
	return ids
}

func mapOrderError(err error) error {
	if errors.Is(err, db.ErrOrderNotFound) {
		return apperr.Wrap(apperr.KindNotFound, err, "Order not found")
	}
	return apperr.Wrap(apperr.KindInternal, err, "order store failure")
}
