// Package events publishes product lifecycle events to NATS JetStream for
// downstream audit and notification consumers.
package events

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"

	"github.com/shivajik/prodtracking-sub000/internal/models"
)

const (
	streamName = "SEED_PRODUCTS"

	SubjectProductCreated  = "seedproduct.created"
	SubjectProductApproved = "seedproduct.approved"
	SubjectProductRejected = "seedproduct.rejected"
	SubjectImportCompleted = "seedproduct.import.completed"
)

// ProductEvent is the wire payload for product lifecycle events.
type ProductEvent struct {
	EventType  string    `json:"eventType"`
	ProductID  string    `json:"productId,omitempty"`
	TrackingID string    `json:"trackingId,omitempty"`
	Status     string    `json:"status,omitempty"`
	ActorID    string    `json:"actorId,omitempty"`
	Imported   int       `json:"imported,omitempty"`
	Skipped    int       `json:"skipped,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

type Publisher struct {
	nc     *nats.Conn
	js     nats.JetStreamContext
	logger *logrus.Entry
}

// NewPublisher connects to NATS and ensures the product stream exists.
func NewPublisher(logger *logrus.Logger) (*Publisher, error) {
	if logger == nil {
		logger = logrus.New()
	}

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = nats.DefaultURL
	}

	nc, err := nats.Connect(natsURL,
		nats.Name("prodtracking"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.WithError(err).Warn("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.WithField("url", nc.ConnectedUrl()).Info("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	_, err = js.AddStream(&nats.StreamConfig{
		Name:     streamName,
		Subjects: []string{"seedproduct.>"},
		Storage:  nats.FileStorage,
	})
	if err != nil && !strings.Contains(err.Error(), "already in use") {
		logger.WithError(err).Warn("Failed to ensure product stream (may already exist)")
	}

	return &Publisher{
		nc:     nc,
		js:     js,
		logger: logger.WithField("component", "events"),
	}, nil
}

// Close closes the NATS connection
func (p *Publisher) Close() {
	if p != nil && p.nc != nil {
		p.nc.Close()
	}
}

func (p *Publisher) publish(subject string, event ProductEvent) {
	if p == nil || p.js == nil {
		return
	}
	event.Timestamp = time.Now().UTC()

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.WithError(err).Error("Failed to marshal event")
		return
	}
	if _, err := p.js.Publish(subject, data); err != nil {
		// Event publishing is best-effort; the write already succeeded.
		p.logger.WithError(err).WithField("subject", subject).Warn("Failed to publish event")
	}
}

// PublishProductCreated emits a seedproduct.created event.
func (p *Publisher) PublishProductCreated(product *models.SeedProduct, actorID string) {
	p.publish(SubjectProductCreated, ProductEvent{
		EventType:  "created",
		ProductID:  product.ID.String(),
		TrackingID: product.TrackingID,
		Status:     string(product.Status),
		ActorID:    actorID,
	})
}

// PublishStatusChanged emits an approved or rejected event.
func (p *Publisher) PublishStatusChanged(product *models.SeedProduct, actorID string) {
	subject := SubjectProductApproved
	if product.Status == models.ProductStatusRejected {
		subject = SubjectProductRejected
	}
	p.publish(subject, ProductEvent{
		EventType:  "status_changed",
		ProductID:  product.ID.String(),
		TrackingID: product.TrackingID,
		Status:     string(product.Status),
		ActorID:    actorID,
	})
}

// PublishImportCompleted emits a summary event for one import run.
func (p *Publisher) PublishImportCompleted(run *models.ImportRun, actorID string) {
	p.publish(SubjectImportCompleted, ProductEvent{
		EventType: "import_completed",
		ProductID: run.ID.String(),
		ActorID:   actorID,
		Imported:  run.ImportedCount,
		Skipped:   run.SkippedCount,
	})
}
