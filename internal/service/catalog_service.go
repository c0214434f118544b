package service

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"github.com/RoyceAzure/lab/storefront/internal/infra/cache"
	"github.com/RoyceAzure/lab/storefront/internal/infra/repository/db"
	"github.com/RoyceAzure/lab/storefront/internal/pkg/apperr"
	"github.com/rs/zerolog"
)

type ICatalogService interface {
	GetProduct(ctx context.Context, productID int64) (*model.Product, error)
	DecrementStock(ctx context.Context, productID int64, quantity int, reference string) (*model.StockLevel, error)
	RestockStock(ctx context.Context, productID int64, reference string) (*model.StockLevel, error)
}

type CatalogService struct {
	productRepo db.IProductRepository
	cache       *cache.ProductCache
	logger      *zerolog.Logger
}

// NewCatalogService builds the catalog service. productCache may be nil, reads
// then always hit the database.
func NewCatalogService(productRepo db.IProductRepository, productCache *cache.ProductCache, logger *zerolog.Logger) *CatalogService {
	return &CatalogService{
		productRepo: productRepo,
		cache:       productCache,
		logger:      logger,
	}
}

func (s *CatalogService) GetProduct(ctx context.Context, productID int64) (*model.Product, error) {
	var (
		product *model.Product
		err     error
	)
	if s.cache != nil {
		product, err = s.cache.Get(ctx, productID, s.productRepo.GetProductByID)
	} else {
		product, err = s.productRepo.GetProductByID(ctx, productID)
	}
	if err != nil {
		return nil, mapProductError(err)
	}
	return product, nil
}

func (s *CatalogService) DecrementStock(ctx context.Context, productID int64, quantity int, reference string) (*model.StockLevel, error) {
	if quantity < 1 {
		return nil, apperr.New(apperr.KindValidation, "quantity must be at least 1")
	}
	if reference == "" {
		return nil, apperr.New(apperr.KindValidation, "reference is required")
	}

	level, err := s.productRepo.DecrementStock(ctx, productID, quantity, reference)
	if err != nil {
		return nil, mapProductError(err)
	}
	if !level.Replayed {
		s.invalidate(ctx, productID)
	}
	s.logger.Info().
		Int64("product_id", productID).
		Int("quantity", quantity).
		Str("reference", reference).
		Int("in_stock", level.InStock).
		Bool("replayed", level.Replayed).
		Msg("stock decremented")
	return level, nil
}

func (s *CatalogService) RestockStock(ctx context.Context, productID int64, reference string) (*model.StockLevel, error) {
	if reference == "" {
		return nil, apperr.New(apperr.KindValidation, "reference is required")
	}

	level, err := s.productRepo.RestockStock(ctx, productID, reference)
	if err != nil {
		return nil, mapProductError(err)
	}
	if !level.Replayed {
		s.invalidate(ctx, productID)
	}
	s.logger.Info().
		Int64("product_id", productID).
		Str("reference", reference).
		Int("in_stock", level.InStock).
		Bool("replayed", level.Replayed).
		Msg("stock restocked")
	return level, nil
}

func (s *CatalogService) invalidate(ctx context.Context, productID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, productID); err != nil {
		s.logger.Warn().Err(err).Int64("product_id", productID).Msg("failed to invalidate product cache")
	}
}

func mapProductError(err error) error {
	switch {
	case errors.Is(err, db.ErrProductNotFound):
		return apperr.Wrap(apperr.KindNotFound, err, "product not found")
	case errors.Is(err, db.ErrProductStockNotEnough):
		return apperr.Wrap(apperr.KindInsufficientStock, err, "product stock not enough")
	case errors.Is(err, db.ErrStockReferenceVoided):
		return apperr.Wrap(apperr.KindInsufficientStock, err, "stock reference already compensated")
	default:
		return apperr.Wrap(apperr.KindInternal, err, "catalog store failure")
	}
}
