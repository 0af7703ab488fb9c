package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/pubsub"
)

const TypeOrderPlaced = "order.placed"

// Envelope is the wire format shared by every publisher.
type Envelope struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	Key        string          `json:"key"`
	OccurredAt time.Time       `json:"occurredAt"`
	Data       json.RawMessage `json:"data"`
}

// NewEnvelope marshals data and stamps a fresh event id.
func NewEnvelope(eventType, key string, occurredAt time.Time, data any) (Envelope, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Envelope{
		ID:         uuid.NewString(),
		Type:       eventType,
		Key:        key,
		OccurredAt: occurredAt.UTC(),
		Data:       raw,
	}, nil
}

// Publisher delivers domain events to a broker.
type Publisher interface {
	Publish(ctx context.Context, env Envelope) error
	Close() error
}

// New builds the publisher selected by cfg.Driver.
func New(ctx context.Context, cfg config.EventsConfig, gcp config.GCPConfig, logg *logger.Logger) (Publisher, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", config.EventsDriverNone:
		return NoopPublisher{}, nil
	case config.EventsDriverKafka:
		return NewKafkaPublisher(cfg.KafkaBrokers, cfg.OrdersTopic, logg), nil
	case config.EventsDriverPubSub:
		client, err := pubsub.NewClient(ctx, gcp, logg)
		if err != nil {
			return nil, err
		}
		if err := client.EnsureTopic(ctx, cfg.OrdersTopic); err != nil {
			_ = client.Close()
			return nil, err
		}
		return NewPubSubPublisher(client, cfg.OrdersTopic, logg), nil
	default:
		return nil, fmt.Errorf("unsupported events driver %q", cfg.Driver)
	}
}

// NoopPublisher drops events; used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Envelope) error { return nil }

func (NoopPublisher) Close() error { return nil }
