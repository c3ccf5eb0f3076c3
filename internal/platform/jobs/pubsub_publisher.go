package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/pubsub"

	"github.com/anvi-leather/api/internal/services"
)

// PubSubInquiryPublisher publishes inquiry lifecycle events to a Pub/Sub topic
// consumed by the notification pipeline.
type PubSubInquiryPublisher struct {
	topic   *pubsub.Topic
	marshal func(any) ([]byte, error)
}

// NewPubSubInquiryPublisher constructs a Pub/Sub backed inquiry event publisher.
func NewPubSubInquiryPublisher(topic *pubsub.Topic) (*PubSubInquiryPublisher, error) {
	if topic == nil {
		return nil, errors.New("pubsub inquiry publisher: topic is required")
	}
	return &PubSubInquiryPublisher{
		topic:   topic,
		marshal: json.Marshal,
	}, nil
}

// PublishInquiryEvent enqueues an inquiry event message on the configured topic.
func (p *PubSubInquiryPublisher) PublishInquiryEvent(ctx context.Context, message services.InquiryEventMessage) (string, error) {
	if p == nil || p.topic == nil {
		return "", errors.New("pubsub inquiry publisher: not initialised")
	}

	data, err := p.marshal(message)
	if err != nil {
		return "", fmt.Errorf("marshal inquiry event: %w", err)
	}

	attrs := make(map[string]string)
	setAttr(attrs, "event", message.Event)
	setAttr(attrs, "inquiryId", message.InquiryID)
	setAttr(attrs, "productId", message.ProductID)
	setAttr(attrs, "email", message.Email)

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attrs,
	})

	id, err := result.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("publish inquiry event: %w", err)
	}
	return id, nil
}

func setAttr(attrs map[string]string, key string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		attrs[key] = v
	}
}
