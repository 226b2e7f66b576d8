package orders

import (
	"time"

	"github.com/angelmondragon/farmcart/internal/cart"
	"github.com/angelmondragon/farmcart/pkg/db/models"
	"github.com/angelmondragon/farmcart/pkg/pricing"
)

// LineItem is one product frozen into an order.
type LineItem struct {
	ProductID string `json:"id" validate:"required"`
	Name      string `json:"name"`
	Price     string `json:"price"`
	Quantity  int    `json:"quantity" validate:"gte=1"`
}

func (l LineItem) DisplayPrice() string { return l.Price }
func (l LineItem) Units() int           { return l.Quantity }

// OrderDTO is an order as shown in the history screens.
type OrderDTO struct {
	OrderID   int64      `json:"order_id"`
	Items     []LineItem `json:"products"`
	ItemCount int        `json:"item_count"`
	Total     string     `json:"total_amount"`
	CreatedAt time.Time  `json:"created_at"`
}

// LineItemsFromCart freezes cart rows into order line items.
func LineItemsFromCart(items []cart.ItemDTO) []LineItem {
	lines := make([]LineItem, 0, len(items))
	for _, item := range items {
		lines = append(lines, LineItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Price:     item.Price,
			Quantity:  item.Quantity,
		})
	}
	return lines
}

func toModelLines(lines []LineItem) []models.LineItem {
	out := make([]models.LineItem, 0, len(lines))
	for _, l := range lines {
		out = append(out, models.LineItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			Quantity:  l.Quantity,
		})
	}
	return out
}

func FromModel(m *models.Order) *OrderDTO {
	if m == nil {
		return nil
	}
	lines := make([]LineItem, 0, len(m.Products))
	count := 0
	for _, l := range m.Products {
		lines = append(lines, LineItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Price:     l.Price,
			Quantity:  l.Quantity,
		})
		count += l.Quantity
	}
	return &OrderDTO{
		OrderID:   m.OrderID,
		Items:     lines,
		ItemCount: count,
		Total:     pricing.Format(m.TotalAmount),
		CreatedAt: m.CreatedAt,
	}
}

func FromModels(rows []models.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *FromModel(&rows[i]))
	}
	return out
}
