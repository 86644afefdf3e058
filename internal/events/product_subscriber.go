package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/sirupsen/logrus"

	"storefront-service/internal/models"
	"storefront-service/internal/repository"
)

// ProductEvent represents an upstream product change event.
type ProductEvent struct {
	EventType string    `json:"eventType"`
	TenantID  string    `json:"tenantId"`
	Timestamp time.Time `json:"timestamp"`
	ProductID string    `json:"productId"`
	Name      string    `json:"name,omitempty"`
	Price     float64   `json:"price,omitempty"`
	Status    string    `json:"status,omitempty"`
}

// ProductEventSubscriber projects upstream product events onto the local
// catalog read model so prices and availability stay current without
// polling the products service.
type ProductEventSubscriber struct {
	js           jetstream.JetStream
	repo         repository.CatalogRepositoryInterface
	consumerName string
	logger       *logrus.Entry
}

// NewProductEventSubscriber connects to NATS and prepares the subscriber.
func NewProductEventSubscriber(repo repository.CatalogRepositoryInterface, logger *logrus.Logger) (*ProductEventSubscriber, error) {
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
	return &ProductEventSubscriber{
		js:           js,
		repo:         repo,
		consumerName: fmt.Sprintf("storefront-catalog-%s", hostname),
		logger:       logger.WithField("component", "catalog-subscriber"),
	}, nil
}

// Start begins consuming product events.
func (s *ProductEventSubscriber) Start(ctx context.Context) error {
	_, err := s.js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      "PRODUCT_EVENTS",
		Subjects:  []string{"product.>"},
		Retention: jetstream.LimitsPolicy,
		MaxAge:    24 * time.Hour * 7,
		Storage:   jetstream.FileStorage,
		Replicas:  1,
	})
	if err != nil {
		s.logger.WithError(err).Warn("Could not ensure product events stream")
	}

	go s.consume(ctx)

	s.logger.Info("Product event subscriber started")
	return nil
}

func (s *ProductEventSubscriber) consume(ctx context.Context) {
	consumer, err := s.js.CreateOrUpdateConsumer(ctx, "PRODUCT_EVENTS", jetstream.ConsumerConfig{
		Durable:       s.consumerName,
		FilterSubject: "product.>",
		AckPolicy:     jetstream.AckExplicitPolicy,
		AckWait:       30 * time.Second,
		MaxDeliver:    3,
		DeliverPolicy: jetstream.DeliverNewPolicy,
	})
	if err != nil {
		s.logger.WithError(err).Error("Failed to create product events consumer")
		return
	}

	msgs, err := consumer.Messages()
	if err != nil {
		s.logger.WithError(err).Error("Failed to get product messages iterator")
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
				s.logger.WithError(err).Error("Error getting next product message")
				time.Sleep(time.Second)
				continue
			}

			if err := s.handleProductEvent(ctx, msg); err != nil {
				s.logger.WithError(err).Error("Error handling product event")
				msg.Nak()
			} else {
				msg.Ack()
			}
		}
	}
}

// handleProductEvent applies one upstream change to the read model. A
// product the read model has never seen is not an error; the catalog is
// seeded by import, not by events.
func (s *ProductEventSubscriber) handleProductEvent(ctx context.Context, msg jetstream.Msg) error {
	var event ProductEvent
	if err := json.Unmarshal(msg.Data(), &event); err != nil {
		return fmt.Errorf("failed to unmarshal product event: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"eventType": event.EventType,
		"productID": event.ProductID,
		"tenantID":  event.TenantID,
	}).Debug("Processing product event")

	switch event.EventType {
	case "product.deleted", "product.archived":
		err := s.repo.SetProductStatus(ctx, event.TenantID, event.ProductID, models.CatalogProductStatusArchived)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("failed to archive product: %w", err)
		}

	case "product.updated":
		if event.Status == "DRAFT" || event.Status == "ARCHIVED" {
			err := s.repo.SetProductStatus(ctx, event.TenantID, event.ProductID, models.CatalogProductStatusInactive)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("failed to deactivate product: %w", err)
			}
			return nil
		}
		if event.Price > 0 {
			err := s.repo.UpdateProductPrice(ctx, event.TenantID, event.ProductID, event.Price)
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("failed to update product price: %w", err)
			}
		}
	}

	return nil
}
