//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/citybreath/mumbai-aqi-pipeline/internal/adapter/kafka"
	"github.com/citybreath/mumbai-aqi-pipeline/internal/domain"
)

const testNotifyTopic = "snapshot-published"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka launches a single-node Kafka container and returns its broker
// address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0",
		tckafka.WithClusterID("test-cluster"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "resolve broker address")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic pre-creates a topic so the first produce does not race topic
// auto-creation.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()

	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer controllerConn.Close()

	require.NoError(t, controllerConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// TestNotifierRoundTrip publishes a snapshot notice through the real broker
// and verifies the key, headers, and payload a downstream consumer observes.
func TestNotifierRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testNotifyTopic)

	notifier := kafka.NewNotifier([]string{broker}, testNotifyTopic, discardLogger())
	t.Cleanup(func() { _ = notifier.Close() })

	published := time.Date(2026, time.March, 1, 6, 0, 0, 0, time.UTC)
	notice := domain.SnapshotNotice{
		Artifact:    "aqi",
		Zones:       12,
		Updated:     10,
		Failed:      2,
		LastUpdated: published,
	}
	require.NoError(t, notifier.SnapshotPublished(ctx, notice))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testNotifyTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read notice from topic")

	assert.Equal(t, "aqi", string(msg.Key))

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "aqi", headers["artifact"])
	assert.Equal(t, published.Format(time.RFC3339), headers["last_updated"])

	var got domain.SnapshotNotice
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, notice.Zones, got.Zones)
	assert.Equal(t, notice.Updated, got.Updated)
	assert.Equal(t, notice.Failed, got.Failed)
	assert.True(t, notice.LastUpdated.Equal(got.LastUpdated))
}
