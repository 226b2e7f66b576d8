package cart

import (
	"time"

	"github.com/angelmondragon/farmcart/pkg/db/models"
	"github.com/angelmondragon/farmcart/pkg/pricing"
)

// Product is the catalog snapshot handed over when something is added.
type Product struct {
	ID    string `json:"id" validate:"required"`
	Name  string `json:"name"`
	Price string `json:"price"`
	Farm  string `json:"farm"`
	Image string `json:"image"`
}

// ItemDTO is one cart row as the UI sees it.
type ItemDTO struct {
	ProductID string    `json:"product_id"`
	Name      string    `json:"name"`
	Price     string    `json:"price"`
	Quantity  int       `json:"quantity"`
	Farm      string    `json:"farm"`
	Image     string    `json:"image"`
	AddedAt   time.Time `json:"added_at"`
}

func (i ItemDTO) DisplayPrice() string { return i.Price }
func (i ItemDTO) Units() int           { return i.Quantity }

// SummaryDTO pairs the cart rows with their canonical total.
type SummaryDTO struct {
	Items []ItemDTO `json:"items"`
	Count int       `json:"count"`
	Total string    `json:"total"`
}

func FromModel(m models.CartItem) ItemDTO {
	return ItemDTO{
		ProductID: m.ProductID,
		Name:      m.Name,
		Price:     m.Price,
		Quantity:  m.Quantity,
		Farm:      m.Farm,
		Image:     m.Image,
		AddedAt:   m.AddedAt,
	}
}

func FromModels(rows []models.CartItem) []ItemDTO {
	items := make([]ItemDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, FromModel(row))
	}
	return items
}

// Summarize totals items with the shared pricing rule.
func Summarize(items []ItemDTO) SummaryDTO {
	if items == nil {
		items = []ItemDTO{}
	}
	count := 0
	for _, item := range items {
		count += item.Quantity
	}
	return SummaryDTO{
		Items: items,
		Count: count,
		Total: pricing.Format(pricing.Total(items)),
	}
}
