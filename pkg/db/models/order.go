package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is a product frozen into an order at checkout time.
type LineItem struct {
	ProductID string `json:"id"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity"`
}

// Order is an immutable checkout record.
type Order struct {
	OrderID     int64           `gorm:"column:order_id;primaryKey;autoIncrement"`
	UserID      int64           `gorm:"column:user_id;not null;index:idx_orders_user_created,priority:1"`
	Products    []LineItem      `gorm:"column:products;type:text;not null;serializer:json"`
	TotalAmount decimal.Decimal `gorm:"column:total_amount;type:text;not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;not null;index:idx_orders_user_created,priority:2"`
}

func (Order) TableName() string { return "orders" }
