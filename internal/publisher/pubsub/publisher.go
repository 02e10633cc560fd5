// Package pubsub implements the run-event publisher on Google Cloud
// Pub/Sub.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"

	"github.com/stromning/scholartrend/internal/publisher"
)

// Publisher wraps a Pub/Sub topic.
type Publisher struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

// New connects a Pub/Sub client and binds the topic.
func New(ctx context.Context, projectID, topicID string) (*Publisher, error) {
	if projectID == "" || topicID == "" {
		return nil, fmt.Errorf("project id and topic id are required")
	}
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	return &Publisher{
		client: client,
		topic:  client.Topic(topicID),
	}, nil
}

// Publish marshals the event to JSON and publishes it, returning the
// server-assigned message ID.
func (p *Publisher) Publish(ctx context.Context, event publisher.RunEvent) (string, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal run event: %w", err)
	}
	result := p.topic.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"keyword": event.Keyword,
			"run_id":  event.RunID,
		},
	})
	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish run event: %w", err)
	}
	return id, nil
}

// Close flushes the topic and releases the client.
func (p *Publisher) Close() error {
	p.topic.Stop()
	if err := p.client.Close(); err != nil {
		return fmt.Errorf("close pubsub client: %w", err)
	}
	return nil
}
