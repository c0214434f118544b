package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepo struct {
	db *DbDao
}

func NewProductRepo(db *DbDao) *ProductRepo {
	return &ProductRepo{db: db}
}

func (r *ProductRepo) CreateProduct(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *ProductRepo) GetProductByID(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

/*
DecrementStock 以 reference 為冪等鍵扣庫存
先鎖商品列, 同一商品的扣減與補回因此序列化:
  - 已有 decrement movement => replay, 不再扣
  - 已有 restock movement => 該 reference 已被補償作廢
  - 庫存不足 => ErrProductStockNotEnough, 不異動
*/
func (r *ProductRepo) DecrementStock(ctx context.Context, productID int64, quantity int, reference string) (*model.StockLevel, error) {
	level := &model.StockLevel{ProductID: productID}

	err := r.db.ExecTx(ctx, func(tx *gorm.DB) error {
		product, err := lockProduct(tx, productID)
		if err != nil {
			return err
		}
		level.InStock = product.InStock

		movements, err := findMovements(tx, reference)
		if err != nil {
			return err
		}
		if _, ok := movements[model.StockMovementDecrement]; ok {
			level.Replayed = true
			return nil
		}
		if _, ok := movements[model.StockMovementRestock]; ok {
			return ErrStockReferenceVoided
		}

		res := tx.Model(product).
			Clauses(clause.Returning{Columns: []clause.Column{{Name: "in_stock"}}}).
			Where("id = ? AND in_stock >= ?", productID, quantity).
			UpdateColumn("in_stock", gorm.Expr("in_stock - ?", quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrProductStockNotEnough
		}
		level.InStock = product.InStock

		return tx.Create(&model.StockMovement{
			Reference: reference,
			Kind:      model.StockMovementDecrement,
			ProductID: productID,
			Quantity:  quantity,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return level, nil
}

/*
RestockStock 補回 reference 之前扣掉的數量 (數量以 decrement movement 為準)
沒有 decrement 時寫入數量 0 的 restock movement 當作廢標記,
之後遲到的同 reference 扣減會被拒絕
*/
func (r *ProductRepo) RestockStock(ctx context.Context, productID int64, reference string) (*model.StockLevel, error) {
	level := &model.StockLevel{ProductID: productID}

	err := r.db.ExecTx(ctx, func(tx *gorm.DB) error {
		product, err := lockProduct(tx, productID)
		if err != nil {
			return err
		}
		level.InStock = product.InStock

		movements, err := findMovements(tx, reference)
		if err != nil {
			return err
		}
		if _, ok := movements[model.StockMovementRestock]; ok {
			level.Replayed = true
			return nil
		}

		quantity := 0
		if decrement, ok := movements[model.StockMovementDecrement]; ok {
			quantity = decrement.Quantity
		}

		if quantity > 0 {
			res := tx.Model(product).
				Clauses(clause.Returning{Columns: []clause.Column{{Name: "in_stock"}}}).
				Where("id = ?", productID).
				UpdateColumn("in_stock", gorm.Expr("in_stock + ?", quantity))
			if res.Error != nil {
				return res.Error
			}
			level.InStock = product.InStock
		}

		return tx.Create(&model.StockMovement{
			Reference: reference,
			Kind:      model.StockMovementRestock,
			ProductID: productID,
			Quantity:  quantity,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return level, nil
}

func lockProduct(tx *gorm.DB, productID int64) (*model.Product, error) {
	var product model.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", productID).
		Take(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func findMovements(tx *gorm.DB, reference string) (map[model.StockMovementKind]model.StockMovement, error) {
	var movements []model.StockMovement
	if err := tx.Where("reference = ?", reference).Find(&movements).Error; err != nil {
		return nil, err
	}
	res := make(map[model.StockMovementKind]model.StockMovement, len(movements))
	for _, m := range movements {
		res[m.Kind] = m
	}
	return res, nil
}
