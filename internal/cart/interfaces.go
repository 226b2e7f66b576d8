package cart

import (
	"context"
	"time"

	"github.com/angelmondragon/farmcart/pkg/db/models"
	"gorm.io/gorm"
)

// CartRepository defines the persistence surface required by the cart ledger.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	Add(ctx context.Context, userID int64, product Product, at time.Time) error
	List(ctx context.Context, userID int64) ([]models.CartItem, error)
	SetQuantity(ctx context.Context, userID int64, productID string, quantity int) error
	Remove(ctx context.Context, userID int64, productID string) error
	ClearForUser(ctx context.Context, userID int64) error
}
