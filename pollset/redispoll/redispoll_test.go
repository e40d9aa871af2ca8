package redispoll

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/flowgraph/core/pollset"
)

var (
	testRedis     *redis.Client
	testContainer testcontainers.Container
	skipTests     bool
)

func setupRedis() {
	ctx := context.Background()

	var containerErr error
	func() {
		defer func() {
			if r := recover(); r != nil {
				containerErr = fmt.Errorf("docker not available: %v", r)
			}
		}()
		req := testcontainers.ContainerRequest{
			Image:        "redis:7",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		}
		testContainer, containerErr = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
	}()
	if containerErr != nil {
		skipTests = true
		return
	}

	host, err := testContainer.Host(ctx)
	if err != nil {
		skipTests = true
		return
	}
	port, err := testContainer.MappedPort(ctx, "6379")
	if err != nil {
		skipTests = true
		return
	}
	testRedis = redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	if err := testRedis.Ping(ctx).Err(); err != nil {
		skipTests = true
	}
}

func getRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testRedis == nil && !skipTests {
		setupRedis()
	}
	if skipTests {
		t.Skip("docker not available, skipping Redis integration test")
	}
	return testRedis
}

func TestSignalWakesWatcher(t *testing.T) {
	rdb := getRedis(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := New(rdb, t.Name())
	ready, stop, err := c.Watch(ctx)
	require.NoError(t, err)
	defer stop()

	require.NoError(t, c.Signal(ctx))

	select {
	case cond := <-ready:
		require.Equal(t, pollset.Readable, cond)
	case <-ctx.Done():
		t.Fatal("timed out waiting for wakeup")
	}
}
