package service

import (
	"context"
	"errors"
	"sync"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const productLookupConcurrency = 8

type ProductGateway interface {
	GetProduct(ctx context.Context, productID int64) (*model.Product, error)
}

// CartLineView is a cart line with the catalog product embedded, nil when the
// product no longer exists.
type CartLineView struct {
	model.CartLine
	Product *model.Product
}

type CartTotals struct {
	Quantity int
	Amount   decimal.Decimal
	Total    decimal.Decimal
}

type ICartService interface {
	GetCart(ctx context.Context, customerID int64) ([]CartLineView, error)
	AddToCart(ctx context.Context, customerID, productID int64) (*model.CartLine, error)
	IncrementLine(ctx context.Context, customerID, cartLineID int64) (*CartTotals, error)
	DecrementLine(ctx context.Context, customerID, cartLineID int64) (*CartTotals, error)
	ClearConsumedLines(ctx context.Context, customerID int64, productIDs []int64) (int64, error)
}

type CartService struct {
	cartRepo    db.ICartRepository
	products    ProductGateway
	shippingFee decimal.Decimal
	logger      *zerolog.Logger
}

func NewCartService(cartRepo db.ICartRepository, products ProductGateway, shippingFee decimal.Decimal, logger *zerolog.Logger) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		products:    products,
		shippingFee: shippingFee,
		logger:      logger,
	}
}

func (s *CartService) GetCart(ctx context.Context, customerID int64) ([]CartLineView, error) {
	lines, err := s.cartRepo.GetCartLinesByCustomer(ctx, customerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "failed to load cart")
	}

	products, err := s.lookupProducts(ctx, lines)
	if err != nil {
		return nil, err
	}

	views := make([]CartLineView, 0, len(lines))
	for _, line := range lines {
		views = append(views, CartLineView{CartLine: line, Product: products[line.ProductLink]})
	}
	return views, nil
}

func (s *CartService) AddToCart(ctx context.Context, customerID, productID int64) (*model.CartLine, error) {
	if _, err := s.products.GetProduct(ctx, productID); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, err, "Error fetching product data")
	}

	line, err := s.cartRepo.AddCartLine(ctx, customerID, productID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "failed to add product to cart")
	}
	return line, nil
}

// ownLine makes sure the cart line belongs to customerID. A line of another
// customer is reported as missing.
func (s *CartService) ownLine(ctx context.Context, customerID, cartLineID int64) error {
	line, err := s.cartRepo.GetCartLineByID(ctx, cartLineID)
	if err != nil {
		return mapCartError(err)
	}
	if line.CustomerLink != customerID {
		s.logger.Warn().
			Int64("customer_id", customerID).
			Int64("cart_line_id", cartLineID).
			Msg("cart line of another customer")
		return apperr.New(apperr.KindNotFound, "Cart item not found")
	}
	return nil
}

func (s *CartService) IncrementLine(ctx context.Context, customerID, cartLineID int64) (*CartTotals, error) {
	if err := s.ownLine(ctx, customerID, cartLineID); err != nil {
		return nil, err
	}
	line, err := s.cartRepo.IncrementCartLine(ctx, cartLineID)
	if err != nil {
		return nil, mapCartError(err)
	}
	return s.totals(ctx, line.CustomerLink, line.Quantity)
}

func (s *CartService) DecrementLine(ctx context.Context, customerID, cartLineID int64) (*CartTotals, error) {
	if err := s.ownLine(ctx, customerID, cartLineID); err != nil {
		return nil, err
	}
	line, deleted, err := s.cartRepo.DecrementCartLine(ctx, cartLineID)
	if err != nil {
		return nil, mapCartError(err)
	}
	if deleted {
		return &CartTotals{Quantity: 0, Amount: decimal.Zero, Total: s.shippingFee}, nil
	}
	return s.totals(ctx, line.CustomerLink, line.Quantity)
}

func (s *CartService) ClearConsumedLines(ctx context.Context, customerID int64, productIDs []int64) (int64, error) {
	deleted, err := s.cartRepo.DeleteCartLines(ctx, customerID, productIDs)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindInternal, err, "failed to clear cart lines")
	}
	s.logger.Info().
		Int64("customer_id", customerID).
		Ints64("product_ids", productIDs).
		Int64("deleted", deleted).
		Msg("cart lines cleared")
	return deleted, nil
}

// totals recomputes the customer's cart amount from current catalog prices.
func (s *CartService) totals(ctx context.Context, customerID int64, quantity int) (*CartTotals, error) {
	lines, err := s.cartRepo.GetCartLinesByCustomer(ctx, customerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "failed to load cart")
	}
	products, err := s.lookupProducts(ctx, lines)
	if err != nil {
		return nil, err
	}

	amount := decimal.Zero
	for _, line := range lines {
		if product := products[line.ProductLink]; product != nil {
			amount = amount.Add(product.CurrentPrice.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}
	}
	return &CartTotals{
		Quantity: quantity,
		Amount:   amount,
		Total:    amount.Add(s.shippingFee),
	}, nil
}

// lookupProducts fetches the distinct products of lines concurrently. Missing
// products map to nil, any other failure aborts.
func (s *CartService) lookupProducts(ctx context.Context, lines []model.CartLine) (map[int64]*model.Product, error) {
	ids := make([]int64, 0, len(lines))
	products := make(map[int64]*model.Product, len(lines))
	for _, line := range lines {
		if _, ok := products[line.ProductLink]; ok {
			continue
		}
		products[line.ProductLink] = nil
		ids = append(ids, line.ProductLink)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(productLookupConcurrency)
	for _, productID := range ids {
		g.Go(func() error {
			product, err := s.products.GetProduct(gctx, productID)
			if err != nil {
				if apperr.Is(err, apperr.KindNotFound) {
					return nil
				}
				return err
			}
			mu.Lock()
			products[productID] = product
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return products, nil
}

func mapCartError(err error) error {
	if errors.Is(err, db.ErrCartLineNotFound) {
		return apperr.Wrap(apperr.KindNotFound, err, "Cart item not found")
	}
	return apperr.Wrap(apperr.KindInternal, err, "cart store failure")
}
