package orders

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Metric names recorded by the workflow.
const (
	MetricOrdersCreated        = "OrdersCreated"
	MetricOrdersCascadeDeleted = "OrdersCascadeDeleted"
	MetricPublishFailures      = "EventPublishFailures"
)

// Repository is the persistence gateway the workflow depends on.
type Repository interface {
	Create(ctx context.Context, order Order) (string, error)
	Get(ctx context.Context, orderID string) (*Order, error)
	List(ctx context.Context) ([]Order, error)
	Put(ctx context.Context, orderID string, order Order) error
	Delete(ctx context.Context, orderID string) error
	ListByUser(ctx context.Context, userID string) ([]Order, error)
	DeleteByIDs(ctx context.Context, orderIDs []string) error
}

// Publisher sends one event payload to a logical topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// Recorder counts workflow outcomes.
type Recorder interface {
	Count(ctx context.Context, name string, value float64) error
}

// Service orchestrates the order lifecycle. It holds no order state between
// calls; every operation goes to the repository.
type Service struct {
	repo      Repository
	publisher Publisher
	metrics   Recorder
	log       *zap.Logger
}

// NewService wires the workflow. metrics may be nil.
func NewService(repo Repository, publisher Publisher, metrics Recorder, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
	}
}

// CreateOrder persists order and then publishes order-created with the
// comma-joined products. A publish failure is returned even though the order
// is already stored; the returned id is valid in that case.
func (s *Service) CreateOrder(ctx context.Context, order Order) (string, error) {
	id, err := s.repo.Create(ctx, order)
	if err != nil {
		return "", fmt.Errorf("create order: %w", err)
	}

	if err := s.publish(ctx, TopicOrderCreated, order.Products); err != nil {
		s.log.Error("order stored but order-created not published",
			zap.String("order_id", id),
			zap.Error(err),
		)
		return id, err
	}

	s.count(ctx, MetricOrdersCreated, 1)
	s.log.Info("order created", zap.String("order_id", id), zap.String("user_id", order.UserID))
	return id, nil
}

// GetOrderByID returns (nil, nil) when the order does not exist.
func (s *Service) GetOrderByID(ctx context.Context, orderID string) (*Order, error) {
	return s.repo.Get(ctx, orderID)
}

func (s *Service) GetAllOrders(ctx context.Context) ([]Order, error) {
	return s.repo.List(ctx)
}

// UpdateOrder fully overwrites the order at orderID.
func (s *Service) UpdateOrder(ctx context.Context, orderID string, order Order) error {
	return s.repo.Put(ctx, orderID, order)
}

func (s *Service) DeleteOrder(ctx context.Context, orderID string) error {
	return s.repo.Delete(ctx, orderID)
}

// CascadeDeleteByUser removes every order owned by userID and, when there was
// at least one, publishes a single order-deleted event carrying all of their
// products in fetch order. The steps are not atomic: if the publish fails the
// orders stay deleted.
func (s *Service) CascadeDeleteByUser(ctx context.Context, userID string) error {
	found, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("cascade delete user %s: %w", userID, err)
	}

	var (
		orderIDs []string
		products []string
	)
	for _, o := range found {
		orderIDs = append(orderIDs, o.ID)
		products = append(products, o.Products...)
	}

	if len(orderIDs) == 0 {
		s.log.Debug("no orders to cascade delete", zap.String("user_id", userID))
		return nil
	}

	if err := s.repo.DeleteByIDs(ctx, orderIDs); err != nil {
		return fmt.Errorf("cascade delete user %s: %w", userID, err)
	}

	if err := s.publish(ctx, TopicOrderDeleted, products); err != nil {
		return fmt.Errorf("cascade delete user %s: %w", userID, err)
	}

	s.count(ctx, MetricOrdersCascadeDeleted, float64(len(orderIDs)))
	s.log.Info("cascade deleted orders",
		zap.String("user_id", userID),
		zap.Int("orders", len(orderIDs)),
	)
	return nil
}

func (s *Service) publish(ctx context.Context, topic string, products []string) error {
	payload := []byte(strings.Join(products, ","))
	if err := s.publisher.Publish(ctx, topic, payload); err != nil {
		s.count(ctx, MetricPublishFailures, 1)
		return fmt.Errorf("%w: %s: %w", ErrPublishUnavailable, topic, err)
	}
	return nil
}

// count never fails the workflow; metric errors are only logged.
func (s *Service) count(ctx context.Context, name string, value float64) {
	if s.metrics == nil {
		return
	}
	if err := s.metrics.Count(ctx, name, value); err != nil {
		s.log.Warn("metric not recorded", zap.String("metric", name), zap.Error(err))
	}
}
