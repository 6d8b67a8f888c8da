// Package kafka publishes snapshot-published notifications so downstream
// consumers can re-read the published files without polling. The notifier is
// optional: jobs run without it when no brokers are configured, and a failed
// notification is logged, never fatal.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/citybreath/mumbai-aqi-pipeline/internal/domain"
)

// Notifier produces one message per published snapshot.
type Notifier struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewNotifier creates a Kafka producer for the notification topic.
func NewNotifier(brokers []string, topic string, logger *slog.Logger) *Notifier {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Notifier{writer: w, logger: logger}
}

// SnapshotPublished emits a notice keyed by artifact kind, so consumers that
// only care about one artifact can filter on the key.
func (n *Notifier) SnapshotPublished(ctx context.Context, notice domain.SnapshotNotice) error {
	data, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("serialize snapshot notice: %w", err)
	}

	return n.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(notice.Artifact),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "artifact", Value: []byte(notice.Artifact)},
			{Key: "last_updated", Value: []byte(notice.LastUpdated.Format(time.RFC3339))},
		},
	})
}

func (n *Notifier) Close() error {
	return n.writer.Close()
}
