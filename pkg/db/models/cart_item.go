package models

import "time"

// CartItem is one product selection in a user's cart. Display fields are
// snapshotted when the product is first added.
type CartItem struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UserID    int64     `gorm:"column:user_id;not null;uniqueIndex:idx_cart_user_product"`
	ProductID string    `gorm:"column:product_id;not null;uniqueIndex:idx_cart_user_product"`
	Name      string    `gorm:"column:name;not null;default:''"`
	Price     string    `gorm:"column:price;not null;default:''"`
	Quantity  int       `gorm:"column:quantity;not null;default:1"`
	Farm      string    `gorm:"column:farm;not null;default:''"`
	Image     string    `gorm:"column:image;not null;default:''"`
	AddedAt   time.Time `gorm:"column:added_at;not null"`
}

func (CartItem) TableName() string { return "cart" }
