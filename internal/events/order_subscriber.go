package events

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/sirupsen/logrus"

	"storefront-service/internal/services"
)

// OrderEvent is the slice of the order event payload the storefront needs.
type OrderEvent struct {
	EventType  string    `json:"eventType"`
	TenantID   string    `json:"tenantId"`
	OrderID    string    `json:"orderId"`
	CustomerID string    `json:"customerId"`
	Timestamp  time.Time `json:"timestamp"`
}

// OrderEventSubscriber clears session carts when an order is placed for the
// bound customer.
type OrderEventSubscriber struct {
	js           jetstream.JetStream
	cartService  *services.CartService
	consumerName string
	logger       *logrus.Entry
}

// NewOrderEventSubscriber connects to NATS and prepares the subscriber.
func NewOrderEventSubscriber(cartService *services.CartService, logger *logrus.Logger) (*OrderEventSubscriber, error) {
	if logger == nil {
		logger = logrus.New()
	}

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://nats.devtest.svc.cluster.local:4222"
	}

	nc, err := connect(natsURL, logger)
	if err != nil {
		return nil, err
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	hostname, _ := os.Hostname()
	return &OrderEventSubscriber{
		js:           js,
		cartService:  cartService,
		consumerName: fmt.Sprintf("storefront-orders-%s", hostname),
		logger:       logger.WithField("component", "order-subscriber"),
	}, nil
}

// Start begins consuming order events.
func (s *OrderEventSubscriber) Start(ctx context.Context) error {
	_, err := s.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      "ORDER_EVENTS",
		Subjects:  []string{"order.>"},
		Retention: jetstream.LimitsPolicy,
		MaxAge:    24 * time.Hour * 7,
		Storage:   jetstream.FileStorage,
		Replicas:  1,
	})
	if err != nil {
		s.logger.WithError(err).Warn("Could not ensure order events stream")
	}

	go s.consume(ctx)

	s.logger.Info("Order event subscriber started")
	return nil
}

func (s *OrderEventSubscriber) consume(ctx context.Context) {
	consumer, err := s.js.CreateOrUpdateConsumer(ctx, "ORDER_EVENTS", jetstream.ConsumerConfig{
		Durable:       s.consumerName,
		FilterSubject: "order.>",
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       30 * time.Second,
		MaxDeliver:    3,
		DeliverPolicy: jetstream.DeliverNewPolicy,
	})
	if err != nil {
		s.logger.WithError(err).Error("Failed to create order events consumer")
		return
	}

	msgs, err := consumer.Messages()
	if err != nil {
		s.logger.WithError(err).Error("Failed to get order messages iterator")
		return
	}

	for {
		select {
		case <-ctx.Done():
			msgs.Stop()
			return
		default:
			msg, err := msgs.Next()
			if err != nil {
				if err == context.Canceled {
					return
				}
				s.logger.WithError(err).Error("Error getting next order message")
				time.Sleep(time.Second)
				continue
			}

			if err := s.handleOrderEvent(msg); err != nil {
				s.logger.WithError(err).Error("Error handling order event")
				msg.Nak()
			} else {
				msg.Ack()
			}
		}
	}
}

// handleOrderEvent clears every session cart bound to the ordering customer.
func (s *OrderEventSubscriber) handleOrderEvent(msg jetstream.Msg) error {
	var event OrderEvent
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		return fmt.Errorf("failed to unmarshal order event: %w", err)
	}

	if event.EventType != "order.created" {
		return nil
	}

	customerID, err := uuid.Parse(event.CustomerID)
	if err != nil {
		return fmt.Errorf("order event has invalid customer id %q: %w", event.CustomerID, err)
	}

	cleared := s.cartService.ClearForCustomer(event.TenantID, customerID)
	s.logger.WithFields(logrus.Fields{
		"tenantID":   event.TenantID,
		"orderID":    event.OrderID,
		"customerID": event.CustomerID,
		"sessions":   cleared,
	}).Info("Cleared carts after order placement")
	return nil
}
