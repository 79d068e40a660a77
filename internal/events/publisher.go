package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"docchat/internal/config"
	"docchat/pkg/logger"

	"github.com/segmentio/kafka-go"
)

// Event types emitted over the document lifecycle.
const (
	TypeDocumentIndexed = "document.indexed"
	TypeDocumentDeleted = "document.deleted"
)

// DocumentEvent is the message published when a document is indexed or
// removed.
type DocumentEvent struct {
	Type      string    `json:"type"`
	DocID     string    `json:"doc_id"`
	Filename  string    `json:"filename"`
	Chunks    int       `json:"chunks"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher sends document lifecycle events to Kafka. A nil Publisher is
// valid and drops every event, so callers never need to branch on whether
// eventing is enabled.
type Publisher struct {
	writer *kafka.Writer
	log    *logger.Logger
}

// NewPublisher creates a Kafka-backed publisher, or nil when eventing is
// disabled.
func NewPublisher(cfg *config.EventsConfig, log *logger.Logger) *Publisher {
	if !cfg.Enabled {
		return nil
	}
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers:      cfg.Brokers,
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
	})
	return &Publisher{writer: writer, log: log}
}

// Publish serializes the event and writes it keyed by document ID. Failures
// are logged, not returned: eventing must never fail an upload or delete.
func (p *Publisher) Publish(ctx context.Context, event *DocumentEvent) {
	if p == nil {
		return
	}

	event.Timestamp = time.Now().UTC()
	jsonData, err := json.Marshal(event)
	if err != nil {
		p.log.Error(fmt.Sprintf("Failed to marshal document event: %v", err))
		return
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.DocID),
		Value: jsonData,
	})
	if err != nil {
		p.log.Error(fmt.Sprintf("Failed to publish document event: %v", err))
	}
}

// Close shuts down the underlying writer.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.writer.Close()
}
