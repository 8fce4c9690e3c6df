package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Satakshi24/order-management/internal/cache"
	"github.com/Satakshi24/order-management/internal/domain"
	"github.com/Satakshi24/order-management/internal/events"
	"github.com/Satakshi24/order-management/internal/observability"
)

//go:generate mockgen -source internal/service/service.go -destination=internal/service/service_mock_test.go -package=service

type Storage interface {
	CountOrders(ctx context.Context, f domain.Filter) (int64, error)
	ListOrders(ctx context.Context, f domain.Filter, limit, offset int) ([]domain.Order, error)
	GetOrder(ctx context.Context, id int64) (*domain.Order, error)
	CreateOrder(ctx context.Context, in domain.NewOrder) (*domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id int64, status domain.Status) error
}

type ListingCache interface {
	Get(ctx context.Context, page, limit int, term string) (*domain.OrderPage, bool)
	Set(ctx context.Context, term string, p *domain.OrderPage)
	InvalidateAll(ctx context.Context)
}

type OrderCache interface {
	Get(id int64) (*domain.Order, bool)
	Set(order *domain.Order)
	Remove(id int64)
}

type Scheduler interface {
	Schedule(orderID int64)
}

type Publisher interface {
	OrderCreated(ctx context.Context, payload events.OrderCreatedPayload)
	OrderConfirmed(ctx context.Context, orderID int64)
}

type Service struct {
	storage  Storage
	listings ListingCache
	orders   OrderCache
	sched    Scheduler
	producer Publisher
	validate *validator.Validate
	logger   *zap.Logger
	metrics  observability.Metrics
}

func NewService(
	storage Storage,
	listings ListingCache,
	orders OrderCache,
	sched Scheduler,
	producer Publisher,
	logger *zap.Logger,
	metrics observability.Metrics,
) *Service {
	return &Service{
		storage:  storage,
		listings: listings,
		orders:   orders,
		sched:    sched,
		producer: producer,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
		metrics:  metrics,
	}
}

// ListOrders serves one page of the filtered listing through the read-through
// cache. A hit bypasses the store entirely; a miss runs the count and page
// queries and populates the cache.
func (s *Service) ListOrders(ctx context.Context, page, limit int, term string) (*domain.OrderPage, error) {
	fields := map[string]string{}
	if page < 1 {
		fields["page"] = "must be >= 1"
	}
	if limit < 1 {
		fields["limit"] = "must be >= 1"
	}
	if len(fields) > 0 {
		return nil, &domain.ValidationError{Fields: fields}
	}

	norm := cache.NormalizeTerm(term)

	t0 := time.Now()
	if p, ok := s.listings.Get(ctx, page, limit, norm); ok {
		s.metrics.IncCacheHit()
		s.metrics.ObserveList("cache", convertToMs(t0))
		s.logger.Debug("listing served from cache",
			zap.Int("page", page), zap.Int("limit", limit), zap.String("q", norm),
		)
		return p, nil
	}
	s.metrics.IncCacheMiss()

	f := domain.FilterFor(norm)

	total, err := s.storage.CountOrders(ctx, f)
	if err != nil {
		s.logger.Error("count orders failed", zap.Error(err))
		return nil, fmt.Errorf("count orders: %w", err)
	}
	data, err := s.storage.ListOrders(ctx, f, limit, (page-1)*limit)
	if err != nil {
		s.logger.Error("list orders failed", zap.Error(err))
		return nil, fmt.Errorf("list orders: %w", err)
	}

	p := &domain.OrderPage{
		Total: total,
		Page:  page,
		Limit: limit,
		Data:  data,
	}
	s.listings.Set(ctx, norm, p)

	s.metrics.ObserveList("db", convertToMs(t0))
	s.logger.Info("listing served from db",
		zap.Int("page", page), zap.Int("limit", limit), zap.String("q", norm),
		zap.Int64("total", total), zap.Int("rows", len(data)),
	)
	return p, nil
}

// CreateOrder validates the input, persists the order atomically, drops every
// cached listing and schedules the deferred confirmation. The created order
// comes back in the same denormalized shape the listing serves.
func (s *Service) CreateOrder(ctx context.Context, in domain.NewOrder) (*domain.Order, error) {
	if err := s.validateNewOrder(in); err != nil {
		return nil, err
	}

	t0 := time.Now()
	order, err := s.storage.CreateOrder(ctx, in)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, err
		}
		s.logger.Error("create order failed",
			zap.Int64("user_id", in.UserID), zap.Int("items", len(in.Items)), zap.Error(err),
		)
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.listings.InvalidateAll(ctx)
	s.producer.OrderCreated(ctx, events.OrderCreatedPayload{
		OrderID: order.ID,
		UserID:  order.UserID,
		Items:   order.Items,
	})
	s.sched.Schedule(order.ID)

	s.metrics.ObserveCreate(convertToMs(t0))
	s.logger.Info("order created",
		zap.Int64("order_id", order.ID),
		zap.Int64("user_id", order.UserID),
		zap.Int("items", len(order.Items)),
	)
	return order, nil
}

// GetOrder serves a single denormalized order through the LRU order cache.
func (s *Service) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	if id < 1 {
		return nil, domain.NewValidationError("id", "must be >= 1")
	}

	if order, ok := s.orders.Get(id); ok {
		s.metrics.IncCacheHit()
		return order, nil
	}
	s.metrics.IncCacheMiss()

	order, err := s.storage.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	s.orders.Set(order)
	return order, nil
}

// Confirm is the scheduler callback: it flips the order to CONFIRMED and
// invalidates the caches so subsequent reads see the new status. The write is
// unconditional; setting CONFIRMED twice is harmless.
func (s *Service) Confirm(ctx context.Context, orderID int64) error {
	if err := s.storage.UpdateOrderStatus(ctx, orderID, domain.StatusConfirmed); err != nil {
		s.metrics.ObserveConfirm(false)
		return fmt.Errorf("confirm order %d: %w", orderID, err)
	}

	s.listings.InvalidateAll(ctx)
	s.orders.Remove(orderID)
	s.producer.OrderConfirmed(ctx, orderID)

	s.metrics.ObserveConfirm(true)
	return nil
}

func convertToMs(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000.0
}
