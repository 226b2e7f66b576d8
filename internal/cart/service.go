package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/farmcart/pkg/db"
	"github.com/angelmondragon/farmcart/pkg/logger"
	"github.com/angelmondragon/farmcart/pkg/metrics"
)

const (
	opAdd    = "cart.add"
	opList   = "cart.list"
	opSetQty = "cart.set_quantity"
	opRemove = "cart.remove"
)

var (
	errInvalidUser    = errors.New("user id must be positive")
	errInvalidProduct = errors.New("product id is required")
	errUnknownUser    = errors.New("user does not exist")
)

// Service is the cart ledger. Writes are fire-and-forget and reads degrade to
// an empty cart; failures surface only through logs and metrics.
type Service interface {
	AddToCart(ctx context.Context, userID int64, product Product)
	GetCartItems(ctx context.Context, userID int64) []ItemDTO
	UpdateQuantity(ctx context.Context, userID int64, productID string, quantity int)
	RemoveFromCart(ctx context.Context, userID int64, productID string)
	Summary(ctx context.Context, userID int64) SummaryDTO
}

type service struct {
	repo    CartRepository
	logg    *logger.Logger
	metrics *metrics.StoreMetrics
	now     func() time.Time
}

// ServiceParams bundles the cart ledger dependencies.
type ServiceParams struct {
	Repo    CartRepository
	Logger  *logger.Logger
	Metrics *metrics.StoreMetrics
	Clock   func() time.Time
}

// NewService builds a cart service backed by the provided stack.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
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
		repo:    params.Repo,
		logg:    params.Logger,
		metrics: params.Metrics,
		now:     clock,
	}, nil
}

func (s *service) AddToCart(ctx context.Context, userID int64, product Product) {
	ctx = s.scope(ctx, opAdd, userID, product.ID)
	if err := validate(userID, product.ID); err != nil {
		s.reject(ctx, opAdd, err)
		return
	}
	start := time.Now()
	err := s.repo.Add(ctx, userID, product, s.now())
	s.finish(ctx, opAdd, start, err, "add to cart failed")
}

func (s *service) GetCartItems(ctx context.Context, userID int64) []ItemDTO {
	ctx = s.scope(ctx, opList, userID, "")
	if userID <= 0 {
		s.reject(ctx, opList, errInvalidUser)
		return []ItemDTO{}
	}
	start := time.Now()
	rows, err := s.repo.List(ctx, userID)
	s.finish(ctx, opList, start, err, "load cart failed")
	if err != nil {
		return []ItemDTO{}
	}
	return FromModels(rows)
}

func (s *service) UpdateQuantity(ctx context.Context, userID int64, productID string, quantity int) {
	ctx = s.scope(ctx, opSetQty, userID, productID)
	if err := validate(userID, productID); err != nil {
		s.reject(ctx, opSetQty, err)
		return
	}
	start := time.Now()
	err := s.repo.SetQuantity(ctx, userID, productID, quantity)
	s.finish(ctx, opSetQty, start, err, "update quantity failed")
}

func (s *service) RemoveFromCart(ctx context.Context, userID int64, productID string) {
	ctx = s.scope(ctx, opRemove, userID, productID)
	if err := validate(userID, productID); err != nil {
		s.reject(ctx, opRemove, err)
		return
	}
	start := time.Now()
	err := s.repo.Remove(ctx, userID, productID)
	s.finish(ctx, opRemove, start, err, "remove from cart failed")
}

func (s *service) Summary(ctx context.Context, userID int64) SummaryDTO {
	return Summarize(s.GetCartItems(ctx, userID))
}

func (s *service) scope(ctx context.Context, op string, userID int64, productID string) context.Context {
	fields := map[string]any{"operation": op, "user_id": userID}
	if productID != "" {
		fields["product_id"] = productID
	}
	return s.logg.WithFields(ctx, fields)
}

func (s *service) reject(ctx context.Context, op string, err error) {
	s.metrics.Reject(op)
	s.logg.Warn(s.logg.WithField(ctx, "reason", err.Error()), "cart request rejected")
}

// finish records the outcome of a storage call. A write naming a user the
// directory does not know is the caller's mistake, not a storage failure.
func (s *service) finish(ctx context.Context, op string, start time.Time, err error, msg string) {
	if db.IsForeignKeyViolation(err) {
		s.reject(ctx, op, errUnknownUser)
		return
	}
	s.metrics.Observe(op, start, err)
	if err != nil {
		s.logg.Error(ctx, msg, err)
	}
}

func validate(userID int64, productID string) error {
	if userID <= 0 {
		return errInvalidUser
	}
	if strings.TrimSpace(productID) == "" {
		return errInvalidProduct
	}
	return nil
}
