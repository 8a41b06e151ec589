//go:build integration

package integration

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/NoID1290/WeatherWatch/internal/forecast"
	"github.com/NoID1290/WeatherWatch/internal/models"
)

type countingQuerier struct {
	calls int64
}

func (q *countingQuerier) Query(ctx context.Context, locationID string) (*models.ForecastRecord, error) {
	atomic.AddInt64(&q.calls, 1)
	return &models.ForecastRecord{
		Location:     locationID,
		TemperatureC: 21.5,
		Condition:    "clear",
		WindKPH:      12,
		RetrievedAt:  time.Now().UTC(),
	}, nil
}

func TestForecastCache_Integration(t *testing.T) {
	if !containersAvailable() {
		t.Skip("container runtime not available; skipping container-based integration test")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
	}
	rd, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Fatalf("start container: %v", err)
	}
	t.Cleanup(func() { _ = rd.Terminate(context.Background()) })

	host, _ := rd.Host(ctx)
	port, _ := rd.MappedPort(ctx, "6379")
	url := "redis://" + host + ":" + port.Port()

	client, err := forecast.NewRedisClient(url)
	if err != nil {
		t.Fatalf("NewRedisClient: %v", err)
	}
	defer client.Close()

	inner := &countingQuerier{}
	cached := forecast.NewCachedClient(inner, client, time.Minute)

	first, err := cached.Query(ctx, "toronto")
	if err != nil {
		t.Fatalf("first query: %v", err)
	}
	if first == nil || first.Location != "toronto" {
		t.Fatalf("unexpected first record: %+v", first)
	}

	second, err := cached.Query(ctx, "toronto")
	if err != nil {
		t.Fatalf("second query: %v", err)
	}
	if second == nil || second.TemperatureC != first.TemperatureC {
		t.Fatalf("cached record mismatch: %+v vs %+v", second, first)
	}

	if got := atomic.LoadInt64(&inner.calls); got != 1 {
		t.Errorf("Expected 1 backend call, got %d", got)
	}

	// A different location misses the cache and hits the backend again
	if _, err := cached.Query(ctx, "ottawa"); err != nil {
		t.Fatalf("ottawa query: %v", err)
	}
	if got := atomic.LoadInt64(&inner.calls); got != 2 {
		t.Errorf("Expected 2 backend calls, got %d", got)
	}
}
