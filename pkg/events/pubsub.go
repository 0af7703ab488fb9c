package events

import (
	"context"
	"encoding/json"
	"fmt"

	gpubsub "cloud.google.com/go/pubsub/v2"

	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/pubsub"
)

// PubSubPublisher publishes envelopes to a Google Cloud Pub/Sub topic.
type PubSubPublisher struct {
	client    *pubsub.Client
	publisher *gpubsub.Publisher
	logg      *logger.Logger
}

func NewPubSubPublisher(client *pubsub.Client, topic string, logg *logger.Logger) *PubSubPublisher {
	return &PubSubPublisher{client: client, publisher: client.Publisher(topic), logg: logg}
}

func (p *PubSubPublisher) Publish(ctx context.Context, env Envelope) error {
	if p.publisher == nil {
		return fmt.Errorf("pubsub publisher not configured")
	}
	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	result := p.publisher.Publish(ctx, &gpubsub.Message{
		Data: body,
		Attributes: map[string]string{
			"event_type": env.Type,
			"event_id":   env.ID,
			"event_key":  env.Key,
		},
	})
	serverID, err := result.Get(ctx)
	if err != nil {
		return fmt.Errorf("publish pubsub message: %w", err)
	}

	if p.logg != nil {
		p.logg.Debug(p.logg.WithFields(ctx, map[string]any{"event_type": env.Type, "message_id": serverID}), "event published")
	}
	return nil
}

func (p *PubSubPublisher) Close() error {
	if p.publisher != nil {
		p.publisher.Stop()
	}
	return p.client.Close()
}
