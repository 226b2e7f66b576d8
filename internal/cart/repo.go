package cart

import (
	"context"
	"time"

	"github.com/angelmondragon/farmcart/pkg/db/models"
	"gorm.io/gorm"
)

// addStmt inserts quantity 1 or bumps the existing row in one statement. On
// conflict only quantity changes, so display fields keep their first snapshot.
const addStmt = `
INSERT INTO cart (user_id, product_id, name, price, quantity, farm, image, added_at)
VALUES (?, ?, ?, ?, COALESCE((SELECT quantity FROM cart WHERE user_id = ? AND product_id = ?), 0) + 1, ?, ?, ?)
ON CONFLICT (user_id, product_id) DO UPDATE SET quantity = excluded.quantity`

// Repository exposes persistence operations for the cart ledger.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Add puts one more unit of product into the user's cart.
func (r *Repository) Add(ctx context.Context, userID int64, product Product, at time.Time) error {
	return r.db.WithContext(ctx).Exec(addStmt,
		userID, product.ID, product.Name, product.Price,
		userID, product.ID,
		product.Farm, product.Image, at,
	).Error
}

// List returns the user's rows in insertion order.
func (r *Repository) List(ctx context.Context, userID int64) ([]models.CartItem, error) {
	var rows []models.CartItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("added_at ASC").
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SetQuantity sets the row's quantity, deleting it when quantity <= 0. A
// missing row is left alone.
func (r *Repository) SetQuantity(ctx context.Context, userID int64, productID string, quantity int) error {
	if quantity <= 0 {
		return r.Remove(ctx, userID, productID)
	}
	return r.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		UpdateColumn("quantity", quantity).Error
}

// Remove deletes the row if present.
func (r *Repository) Remove(ctx context.Context, userID int64, productID string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{}).Error
}

// ClearForUser deletes every row owned by the user.
func (r *Repository) ClearForUser(ctx context.Context, userID int64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.CartItem{}).Error
}
