package orders

import (
	"context"

	"github.com/angelmondragon/farmcart/pkg/db/models"
	"gorm.io/gorm"
)

// Repository defines the persistence surface for order records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Order, error)
	FindByIDForUser(ctx context.Context, userID, orderID int64) (*models.Order, error)
}
