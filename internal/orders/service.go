package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/farmcart/internal/cart"
	"github.com/angelmondragon/farmcart/pkg/db"
	"github.com/angelmondragon/farmcart/pkg/db/models"
	pkgerrors "github.com/angelmondragon/farmcart/pkg/errors"
	"github.com/angelmondragon/farmcart/pkg/logger"
	"github.com/angelmondragon/farmcart/pkg/metrics"
	"github.com/angelmondragon/farmcart/pkg/pricing"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	opPlace    = "orders.place"
	opCheckout = "orders.checkout"
	opList     = "orders.list"
	opGet      = "orders.get"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service records checkouts and reads order history.
type Service interface {
	PlaceOrder(ctx context.Context, userID int64, items []LineItem, total decimal.Decimal) bool
	Checkout(ctx context.Context, userID int64) (*OrderDTO, error)
	GetOrders(ctx context.Context, userID int64) []OrderDTO
	GetOrder(ctx context.Context, userID, orderID int64) (*OrderDTO, error)
}

type service struct {
	tx       txRunner
	repo     Repository
	cartRepo cart.CartRepository
	logg     *logger.Logger
	metrics  *metrics.StoreMetrics
	now      func() time.Time
}

// ServiceParams bundles the order recorder dependencies.
type ServiceParams struct {
	Tx       txRunner
	Repo     Repository
	CartRepo cart.CartRepository
	Logger   *logger.Logger
	Metrics  *metrics.StoreMetrics
	Clock    func() time.Time
}

// NewService builds an orders service.
func NewService(params ServiceParams) (Service, error) {
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.CartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	clock := params.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		tx:       params.Tx,
		repo:     params.Repo,
		cartRepo: params.CartRepo,
		logg:     params.Logger,
		metrics:  params.Metrics,
		now:      clock,
	}, nil
}

// PlaceOrder stores the order and empties the user's cart in one transaction.
// It reports false when nothing was written.
func (s *service) PlaceOrder(ctx context.Context, userID int64, items []LineItem, total decimal.Decimal) bool {
	ctx = s.logg.WithFields(ctx, map[string]any{"operation": opPlace, "user_id": userID, "line_count": len(items)})
	if err := validatePlacement(userID, items, total); err != nil {
		s.metrics.Reject(opPlace)
		s.logg.Warn(s.logg.WithField(ctx, "reason", err.Error()), "order rejected")
		return false
	}

	start := time.Now()
	_, err := s.record(ctx, userID, items, total)
	if db.IsForeignKeyViolation(err) {
		s.metrics.Reject(opPlace)
		s.logg.Warn(s.logg.WithField(ctx, "reason", "user does not exist"), "order rejected")
		return false
	}
	s.metrics.Observe(opPlace, start, err)
	if err != nil {
		s.logg.Error(ctx, "place order failed", err)
		return false
	}
	s.logg.Info(ctx, "order placed")
	return true
}

// Checkout freezes the current cart into an order priced by pricing.Total.
func (s *service) Checkout(ctx context.Context, userID int64) (*OrderDTO, error) {
	ctx = s.logg.WithFields(ctx, map[string]any{"operation": opCheckout, "user_id": userID})
	if userID <= 0 {
		s.metrics.Reject(opCheckout)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id must be positive")
	}

	start := time.Now()
	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := s.cartRepo.WithTx(tx).List(ctx, userID)
		if err != nil {
			return pkgerrors.Storage(err, "load cart")
		}
		if len(rows) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}
		lines := LineItemsFromCart(cart.FromModels(rows))
		created, err = s.insertAndClear(ctx, tx, userID, lines, pricing.Total(lines))
		return err
	})
	if pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		s.metrics.Reject(opCheckout)
		return nil, err
	}
	s.metrics.Observe(opCheckout, start, err)
	if err != nil {
		s.logg.Error(ctx, "checkout failed", err)
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Storage(err, "checkout")
	}
	s.logg.Info(s.logg.WithField(ctx, "order_id", created.OrderID), "checkout complete")
	return FromModel(created), nil
}

// GetOrders returns the user's history newest first, or an empty list when
// the store cannot be read.
func (s *service) GetOrders(ctx context.Context, userID int64) []OrderDTO {
	ctx = s.logg.WithFields(ctx, map[string]any{"operation": opList, "user_id": userID})
	if userID <= 0 {
		s.metrics.Reject(opList)
		return []OrderDTO{}
	}
	start := time.Now()
	rows, err := s.repo.ListByUser(ctx, userID)
	s.metrics.Observe(opList, start, err)
	if err != nil {
		s.logg.Error(ctx, "load orders failed", err)
		return []OrderDTO{}
	}
	return FromModels(rows)
}

func (s *service) GetOrder(ctx context.Context, userID, orderID int64) (*OrderDTO, error) {
	ctx = s.logg.WithFields(ctx, map[string]any{"operation": opGet, "user_id": userID, "order_id": orderID})
	if userID <= 0 || orderID <= 0 {
		s.metrics.Reject(opGet)
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	start := time.Now()
	row, err := s.repo.FindByIDForUser(ctx, userID, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s.metrics.Observe(opGet, start, nil)
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	s.metrics.Observe(opGet, start, err)
	if err != nil {
		s.logg.Error(ctx, "load order failed", err)
		return nil, pkgerrors.Storage(err, "load order")
	}
	return FromModel(row), nil
}

func (s *service) record(ctx context.Context, userID int64, items []LineItem, total decimal.Decimal) (*models.Order, error) {
	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		created, err = s.insertAndClear(ctx, tx, userID, items, total)
		return err
	})
	return created, err
}

func (s *service) insertAndClear(ctx context.Context, tx *gorm.DB, userID int64, items []LineItem, total decimal.Decimal) (*models.Order, error) {
	order := &models.Order{
		UserID:      userID,
		Products:    toModelLines(items),
		TotalAmount: total.Round(pricing.Places),
		CreatedAt:   s.now().UTC(),
	}
	created, err := s.repo.WithTx(tx).Create(ctx, order)
	if err != nil {
		return nil, pkgerrors.Storage(err, "insert order")
	}
	if err := s.cartRepo.WithTx(tx).ClearForUser(ctx, userID); err != nil {
		return nil, pkgerrors.Storage(err, "clear cart")
	}
	return created, nil
}

func validatePlacement(userID int64, items []LineItem, total decimal.Decimal) error {
	if userID <= 0 {
		return errors.New("user id must be positive")
	}
	if len(items) == 0 {
		return errors.New("order has no line items")
	}
	for _, item := range items {
		if strings.TrimSpace(item.ProductID) == "" {
			return errors.New("line item product id is required")
		}
		if item.Quantity < 1 {
			return fmt.Errorf("line item %s has quantity %d", item.ProductID, item.Quantity)
		}
	}
	if total.IsNegative() {
		return errors.New("total must not be negative")
	}
	return nil
}
