//go:build integration

package integration_test

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/place-picker/internal/adapter/placesapi"
	"github.com/couchcryptid/place-picker/internal/backend"
	"github.com/couchcryptid/place-picker/internal/domain"
	"github.com/couchcryptid/place-picker/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testCatalog = []domain.Place{
	{ID: "p1", Title: "Forest Waterfall", Image: domain.Image{Src: "forest-waterfall.jpg", Alt: "Forest"}, Lat: 44.5588, Lon: -80.344},
	{ID: "p2", Title: "Sahara Desert Dunes", Image: domain.Image{Src: "desert-dunes.jpg", Alt: "Dunes"}, Lat: 25.0, Lon: 0.0},
	{ID: "p3", Title: "Himalayan Peaks", Image: domain.Image{Src: "majestic-mountains.jpg", Alt: "Peaks"}, Lat: 27.9881, Lon: 86.925},
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startBackend serves the reference places service over store and returns a
// client pointed at it.
func startBackend(t *testing.T, store backend.Store) *placesapi.Client {
	t.Helper()
	ts := httptest.NewServer(backend.NewServer(":0", testCatalog, store, discardLogger()))
	t.Cleanup(ts.Close)
	return placesapi.NewClient(ts.URL, 5*time.Second, discardLogger(), observability.NewMetricsForTesting())
}

// startKafka runs a single-node Kafka broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	kc, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("place-picker-test"))
	testcontainers.CleanupContainer(t, kc)
	require.NoError(t, err, "start kafka container")

	brokers, err := kc.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

// createTopic creates a single-partition topic through the cluster controller.
func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)

	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

// startRedis runs a Redis server and returns its host:port.
func startRedis(ctx context.Context, t *testing.T) string {
	t.Helper()
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	testcontainers.CleanupContainer(t, c)
	require.NoError(t, err, "start redis container")

	endpoint, err := c.Endpoint(ctx, "")
	require.NoError(t, err)
	return endpoint
}
