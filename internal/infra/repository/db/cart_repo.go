package db

import (
	"context"
	"errors"

	"github.com/RoyceAzure/lab/storefront/internal/domain/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartRepo struct {
	db *DbDao
}

func NewCartRepo(db *DbDao) *CartRepo {
	return &CartRepo{db: db}
}

func (r *CartRepo) GetCartLinesByCustomer(ctx context.Context, customerID int64) ([]model.CartLine, error) {
	var lines []model.CartLine
	err := r.db.WithContext(ctx).
		Where("customer_link = ?", customerID).
		Order("id").
		Find(&lines).Error
	return lines, err
}

func (r *CartRepo) GetCartLineByID(ctx context.Context, id int64) (*model.CartLine, error) {
	var line model.CartLine
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&line).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartLineNotFound
		}
		return nil, err
	}
	return &line, nil
}

// AddCartLine inserts a line with quantity 1, or bumps the quantity of the
// customer's existing line for the product. At most one line per pair exists.
func (r *CartRepo) AddCartLine(ctx context.Context, customerID, productID int64) (*model.CartLine, error) {
	line := model.CartLine{
		ProductLink:  productID,
		CustomerLink: customerID,
		Quantity:     1,
	}
	err := r.db.WithContext(ctx).
		Clauses(
			clause.OnConflict{
				Columns: []clause.Column{{Name: "customer_link"}, {Name: "product_link"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"quantity":   gorm.Expr("cart_lines.quantity + 1"),
					"updated_at": gorm.Expr("now()"),
				}),
			},
			clause.Returning{},
		).
		Create(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *CartRepo) IncrementCartLine(ctx context.Context, id int64) (*model.CartLine, error) {
	var line model.CartLine
	res := r.db.WithContext(ctx).Model(&line).
		Clauses(clause.Returning{}).
		Where("id = ?", id).
		UpdateColumns(map[string]interface{}{
			"quantity":   gorm.Expr("quantity + 1"),
			"updated_at": gorm.Expr("now()"),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrCartLineNotFound
	}
	return &line, nil
}

// DecrementCartLine removes one unit, deleting the line when it reaches zero.
func (r *CartRepo) DecrementCartLine(ctx context.Context, id int64) (*model.CartLine, bool, error) {
	var (
		line    model.CartLine
		deleted bool
	)
	err := r.db.ExecTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id).Take(&line).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCartLineNotFound
			}
			return err
		}

		if line.Quantity <= 1 {
			deleted = true
			line.Quantity = 0
			return tx.Where("id = ?", id).Delete(&model.CartLine{}).Error
		}

		return tx.Model(&line).
			Clauses(clause.Returning{}).
			Where("id = ?", id).
			UpdateColumns(map[string]interface{}{
				"quantity":   gorm.Expr("quantity - 1"),
				"updated_at": gorm.Expr("now()"),
			}).Error
	})
	if err != nil {
		return nil, false, err
	}
	return &line, deleted, nil
}

// DeleteCartLines removes the customer's lines for exactly productIDs and
// returns how many rows went away. Repeating the call is a no-op.
func (r *CartRepo) DeleteCartLines(ctx context.Context, customerID int64, productIDs []int64) (int64, error) {
	if len(productIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("customer_link = ? AND product_link IN ?", customerID, productIDs).
		Delete(&model.CartLine{})
	return res.RowsAffected, res.Error
}
