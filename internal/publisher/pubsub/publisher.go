// Package pubsub implements the event fan-out on Google Cloud Pub/Sub.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"cloud.google.com/go/pubsub"

	"github.com/cdoyle/beacon/internal/event"
)

// Publisher forwards access events to a Pub/Sub topic. It authenticates
// using Application Default Credentials.
type Publisher struct {
	client *pubsub.Client
	topic  *pubsub.Topic
}

// New creates a Publisher for the given project and topic.
func New(ctx context.Context, projectID, topicID string) (*Publisher, error) {
	if projectID == "" || topicID == "" {
		return nil, fmt.Errorf("publisher.project_id and publisher.topic are required")
	}
	client, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("create pubsub client: %w", err)
	}
	return &Publisher{client: client, topic: client.Topic(topicID)}, nil
}

// Publish marshals the event to JSON and hands it to the topic. The send
// is asynchronous; the Pub/Sub client batches and retries in the
// background, so the result is not awaited.
func (p *Publisher) Publish(ctx context.Context, evt event.AccessEvent) error {
	data, err := json.Marshal(struct {
		ID          string `json:"id"`
		Project     string `json:"project"`
		Referer     string `json:"referer"`
		IP          string `json:"ip"`
		UserAgent   string `json:"useragent"`
		RequestedAt int64  `json:"requestdate"`
		ExtraData   string `json:"otherdata"`
	}{
		ID:          evt.ID,
		Project:     evt.Project,
		Referer:     evt.Referer,
		IP:          evt.IP,
		UserAgent:   evt.UserAgent,
		RequestedAt: evt.RequestedAt,
		ExtraData:   evt.ExtraData,
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	_ = p.topic.Publish(ctx, &pubsub.Message{Data: data})
	return nil
}

// Close stops the topic publisher and closes the client.
func (p *Publisher) Close() error {
	p.topic.Stop()
	if err := p.client.Close(); err != nil {
		return fmt.Errorf("close pubsub client: %w", err)
	}
	return nil
}
