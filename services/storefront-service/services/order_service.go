package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	awspkg "github.com/rayhanbeg/Sajbela-sub000/pkg/aws"
	apperrors "github.com/rayhanbeg/Sajbela-sub000/services/common/errors"
	"github.com/rayhanbeg/Sajbela-sub000/services/common/logger"
	"github.com/rayhanbeg/Sajbela-sub000/services/storefront-service/models"
	"github.com/rayhanbeg/Sajbela-sub000/services/storefront-service/repository"
)

const priceTolerance = 0.01

// OrderCreatedEvent is published to SNS after an order is stored.
type OrderCreatedEvent struct {
	Event      string    `json:"event"`
	OrderID    string    `json:"order_id"`
	UserID     string    `json:"user_id"`
	TotalPrice float64   `json:"total_price"`
	Payment    string    `json:"payment_method"`
	Timestamp  time.Time `json:"timestamp"`
}

type OrderService struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	idem     repository.IdempotencyStore
	idemTTL  time.Duration

	snsClient   awspkg.SNSPublisher
	snsTopicArn string
	metrics     awspkg.MetricsRecorder
	logger      *zap.Logger
	locks       *keyedMutex
}

// OrderServiceOptions carries the optional collaborators.
type OrderServiceOptions struct {
	IdempotencyTTL time.Duration
	SNS            awspkg.SNSPublisher
	SNSTopicArn    string
	Metrics        awspkg.MetricsRecorder
	Logger         *zap.Logger
}

func NewOrderService(orders repository.OrderRepository, products repository.ProductRepository, idem repository.IdempotencyStore, opts OrderServiceOptions) *OrderService {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.IdempotencyTTL <= 0 {
		opts.IdempotencyTTL = 24 * time.Hour
	}
	return &OrderService{
		orders:      orders,
		products:    products,
		idem:        idem,
		idemTTL:     opts.IdempotencyTTL,
		snsClient:   opts.SNS,
		snsTopicArn: opts.SNSTopicArn,
		metrics:     opts.Metrics,
		logger:      opts.Logger,
		locks:       newKeyedMutex(),
	}
}

// Create stores an order for userID. When key was seen before, the order it
// produced is returned with created false and nothing is written.
func (s *OrderService) Create(ctx context.Context, userID, key string, req models.CreateOrderRequest) (*models.Order, bool, error) {
	log := logger.For(ctx, s.logger).With(zap.String("user_id", userID))

	if key != "" {
		unlock := s.locks.Lock(key)
		defer unlock()

		existing, err := s.existing(ctx, key)
		if err != nil {
			return nil, false, err
		}
		if existing != nil {
			if existing.UserID != userID {
				return nil, false, apperrors.OnField(apperrors.ErrValidation, "Idempotency-Key", "Idempotency key already used")
			}
			log.Info("duplicate order submission", zap.String("order_id", existing.ID))
			s.count(awspkg.MetricOrdersDeduplicated)
			return existing, false, nil
		}
	}

	items, err := s.priceItems(ctx, req.OrderItems)
	if err != nil {
		return nil, false, err
	}
	if err := checkTotals(items, req); err != nil {
		return nil, false, err
	}

	order := &models.Order{
		ID:              uuid.NewString(),
		UserID:          userID,
		OrderItems:      items,
		ShippingAddress: req.ShippingAddress,
		PaymentMethod:   req.PaymentMethod,
		ItemsPrice:      req.ItemsPrice,
		ShippingPrice:   req.ShippingPrice,
		TotalPrice:      req.TotalPrice,
		Status:          models.OrderStatusPending,
	}
	if order.ShippingAddress.Country == "" {
		order.ShippingAddress.Country = models.DefaultCountry
	}
	if key != "" {
		order.IdempotencyKey = &key
	}

	if err := s.orders.Create(ctx, order); err != nil {
		s.count(awspkg.MetricOrdersFailed)
		return nil, false, apperrors.Wrap(apperrors.ErrInternalServer, "Failed to create order", err)
	}
	if key != "" {
		if err := s.idem.SetIdempotency(ctx, key, order.ID, s.idemTTL); err != nil {
			log.Warn("failed to record idempotency key", zap.Error(err))
		}
	}

	log.Info("order created", zap.String("order_id", order.ID), zap.Float64("total", order.TotalPrice))
	s.count(awspkg.MetricOrdersCreated)
	s.publishEvent(ctx, OrderCreatedEvent{
		Event:      "order.created",
		OrderID:    order.ID,
		UserID:     userID,
		TotalPrice: order.TotalPrice,
		Payment:    order.PaymentMethod,
		Timestamp:  time.Now(),
	})
	return order, true, nil
}

// existing finds the order already produced for key, checking Redis first
// and the unique column second.
func (s *OrderService) existing(ctx context.Context, key string) (*models.Order, error) {
	id, err := s.idem.GetIdempotency(ctx, key)
	if err != nil {
		logger.For(ctx, s.logger).Warn("idempotency lookup failed", zap.Error(err))
	}
	if id != "" {
		o, err := s.orders.FindByID(ctx, id)
		if err == nil {
			return o, nil
		}
		logger.For(ctx, s.logger).Warn("idempotency key points to missing order",
			zap.String("order_id", id), zap.Error(err))
	}
	o, err := s.orders.FindByIdempotencyKey(ctx, key)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, "Failed to look up order", err)
	}
	return o, nil
}

// priceItems checks every line against the catalog and fills in what the
// client left out. Prices must match the catalog.
func (s *OrderService) priceItems(ctx context.Context, in []models.OrderItem) ([]models.OrderItem, error) {
	ids := make([]string, 0, len(in))
	for _, it := range in {
		ids = append(ids, it.ProductID)
	}
	products, err := s.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, "Failed to load products", err)
	}

	out := make([]models.OrderItem, len(in))
	for i, it := range in {
		p, ok := products[it.ProductID]
		if !ok {
			return nil, apperrors.OnField(apperrors.ErrValidation, "orderItems", fmt.Sprintf("Product %s not found", it.ProductID))
		}
		stock, ok := p.StockFor(it.SelectedSize, it.SelectedColor)
		if !ok {
			return nil, apperrors.OnField(apperrors.ErrValidation, "orderItems", fmt.Sprintf("%s: selected variant is not offered", p.Name))
		}
		if it.Quantity > stock {
			return nil, apperrors.Wrap(apperrors.ErrOutOfStock, fmt.Sprintf("%s: only %d left in stock", p.Name, stock), nil)
		}
		if math.Abs(it.Price-p.Price) > priceTolerance {
			return nil, apperrors.OnField(apperrors.ErrValidation, "orderItems", fmt.Sprintf("%s: price has changed", p.Name))
		}
		if it.Name == "" {
			it.Name = p.Name
		}
		if it.Image == "" {
			it.Image = p.Image
		}
		out[i] = it
	}
	return out, nil
}

func checkTotals(items []models.OrderItem, req models.CreateOrderRequest) error {
	var sum float64
	for _, it := range items {
		sum += it.Price * float64(it.Quantity)
	}
	if math.Abs(sum-req.ItemsPrice) > priceTolerance {
		return apperrors.OnField(apperrors.ErrValidation, "itemsPrice", "Items price does not match the items")
	}
	if req.ShippingPrice < 0 {
		return apperrors.OnField(apperrors.ErrValidation, "shippingPrice", "Shipping price cannot be negative")
	}
	if math.Abs(req.ItemsPrice+float64(req.ShippingPrice)-req.TotalPrice) > priceTolerance {
		return apperrors.OnField(apperrors.ErrValidation, "totalPrice", "Total price does not add up")
	}
	return nil
}

func (s *OrderService) count(metric string) {
	if s.metrics == nil || !s.metrics.IsEnabled() {
		return
	}
	go func() {
		metricCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.metrics.RecordCount(metricCtx, metric, map[string]string{"Service": "storefront-service"})
	}()
}

// publishEvent marshals an event and publishes it to SNS (non-fatal on error).
func (s *OrderService) publishEvent(ctx context.Context, event any) {
	if s.snsClient == nil || s.snsTopicArn == "" {
		return
	}
	b, err := json.Marshal(event)
	if err != nil {
		s.logger.Error("Failed to marshal SNS event", zap.Error(err))
		return
	}
	if err := s.snsClient.Publish(ctx, s.snsTopicArn, b); err != nil {
		s.logger.Error("Failed to publish SNS event", zap.Error(err))
		return
	}
	s.logger.Info("Published SNS event", zap.String("topic", s.snsTopicArn))
}
