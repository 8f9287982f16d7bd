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

	"github.com/couchcryptid/fatality-map-service/internal/adapter/kafka"
	"github.com/couchcryptid/fatality-map-service/internal/config"
	"github.com/couchcryptid/fatality-map-service/internal/dataset"
	"github.com/couchcryptid/fatality-map-service/internal/domain"
	"github.com/couchcryptid/fatality-map-service/internal/mapview"
	"github.com/couchcryptid/fatality-map-service/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const (
	testLayerTopic = "test-fatality-layers"
	testdataPath   = "../dataset/testdata/fatal.geojson"
)

// startKafka runs a single-node KRaft broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("fatality-map-test"))
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "start kafka container")

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "get kafka brokers")
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err, "dial broker")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "find controller")

	ctrlConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err, "dial controller")
	defer ctrlConn.Close()

	require.NoError(t, ctrlConn.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}), "create topic %s", topic)
}

// TestLayerPublishing verifies that every layer the service builds reaches the
// layer topic, keyed by year and carrying the year and build time headers.
func TestLayerPublishing(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testLayerTopic)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		KafkaBrokers:    []string{broker},
		KafkaLayerTopic: testLayerTopic,
	}
	writer := kafka.NewWriter(cfg, logger)
	t.Cleanup(func() { _ = writer.Close() })

	svc := mapview.NewService(
		dataset.NewFileLoader(testdataPath),
		config.DefaultMapView(),
		logger,
		observability.NewMetricsForTesting(),
		mapview.WithLayerSink(writer),
	)
	require.NoError(t, svc.Load(ctx))

	built, err := svc.BuildLayer(ctx, "2020", domain.DefaultFilter)
	require.NoError(t, err)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers: []string{broker},
		Topic:   testLayerTopic,
		GroupID: fmt.Sprintf("test-layers-%d", time.Now().UnixNano()),
	})
	t.Cleanup(func() { _ = reader.Close() })

	readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
	defer readCancel()
	msg, err := reader.ReadMessage(readCtx)
	require.NoError(t, err, "read from layer topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, "2020", string(msg.Key))
	assert.Equal(t, "2020", headers["year"])
	assert.Equal(t, built.BuiltAt.Format(time.RFC3339), headers["built_at"])

	var got struct {
		ID      string `json:"id"`
		Year    string `json:"year"`
		Markers []struct {
			State string `json:"state"`
		} `json:"markers"`
	}
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, built.ID, got.ID)
	assert.Equal(t, "2020", got.Year)
	require.Len(t, got.Markers, 2)
	assert.Equal(t, "Alabama", got.Markers[0].State)
	assert.Equal(t, "Texas", got.Markers[1].State)
}
