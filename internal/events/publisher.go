// Package events provides NATS JetStream publishing and subscription for
// storefront cart and catalog events.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/sirupsen/logrus"
)

const (
	cartStreamName    = "CART_EVENTS"
	cartSubjectPrefix = "cart."

	publishTimeout = 10 * time.Second
)

// CartEvent is the wire format for cart lifecycle events.
type CartEvent struct {
	EventType string    `json:"eventType"`
	TenantID  string    `json:"tenantId"`
	SessionID string    `json:"sessionId"`
	ProductID string    `json:"productId,omitempty"`
	Size      string    `json:"size,omitempty"`
	Quantity  int       `json:"quantity,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher emits cart events to JetStream. Publishing is asynchronous and
// best-effort: a publish failure is logged, never surfaced to the shopper.
type Publisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	logger *logrus.Entry
}

// NewPublisher connects to NATS and ensures the cart events stream exists.
func NewPublisher(logger *logrus.Logger) (*Publisher, error) {
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.InfoLevel)
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:      cartStreamName,
		Subjects:  []string{cartSubjectPrefix + ">"},
		Retention: jetstream.LimitsPolicy,
		MaxAge:    24 * time.Hour * 7,
		Storage:   jetstream.FileStorage,
		Replicas:  1,
	})
	if err != nil {
		logger.WithError(err).Warn("Failed to ensure cart events stream (may already exist)")
	}

	return &Publisher{
		nc:     nc,
		js:     js,
		logger: logger.WithField("component", "cart-events"),
	}, nil
}

// connect dials NATS with production reconnect settings shared by the
// publisher and the subscribers.
func connect(natsURL string, logger *logrus.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("storefront-service"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.ReconnectBufSize(8*1024*1024),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.WithField("url", nc.ConnectedUrl()).Info("NATS reconnected")
		}),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.WithError(err).Warn("NATS disconnected")
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			logger.WithError(err).Error("NATS error")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return nc, nil
}

// Close closes the NATS connection.
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}

// PublishCartItemAdded publishes a cart.item_added event.
func (p *Publisher) PublishCartItemAdded(tenantID, sessionID, productID, size string, quantity int) {
	p.publish(&CartEvent{
		EventType: "cart.item_added",
		TenantID:  tenantID,
		SessionID: sessionID,
		ProductID: productID,
		Size:      size,
		Quantity:  quantity,
	})
}

// PublishCartItemUpdated publishes a cart.item_updated event.
func (p *Publisher) PublishCartItemUpdated(tenantID, sessionID, productID, size string, quantity int) {
	p.publish(&CartEvent{
		EventType: "cart.item_updated",
		TenantID:  tenantID,
		SessionID: sessionID,
		ProductID: productID,
		Size:      size,
		Quantity:  quantity,
	})
}

// PublishCartCleared publishes a cart.cleared event.
func (p *Publisher) PublishCartCleared(tenantID, sessionID, reason string) {
	p.publish(&CartEvent{
		EventType: "cart.cleared",
		TenantID:  tenantID,
		SessionID: sessionID,
		Reason:    reason,
	})
}

func (p *Publisher) publish(event *CartEvent) {
	event.Timestamp = time.Now().UTC()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		data, err := json.Marshal(event)
		if err != nil {
			p.logger.WithError(err).Error("Failed to marshal cart event")
			return
		}

		if _, err := p.js.Publish(ctx, event.EventType, data); err != nil {
			p.logger.WithFields(logrus.Fields{
				"eventType": event.EventType,
				"tenantID":  event.TenantID,
				"sessionID": event.SessionID,
			}).WithError(err).Error("Failed to publish cart event")
			return
		}

		p.logger.WithFields(logrus.Fields{
			"eventType": event.EventType,
			"tenantID":  event.TenantID,
			"sessionID": event.SessionID,
		}).Debug("Cart event published")
	}()
}
