package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"user-roster/cmd/api/di"
	"user-roster/internal/config"
)

func freePort(t *testing.T) string {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer lis.Close()
	_, port, err := net.SplitHostPort(lis.Addr().String())
	require.NoError(t, err)
	return port
}

func TestServer_StartAndShutdown(t *testing.T) {
	cfg := &config.Config{
		App: config.AppConfig{
			Env:                    "test",
			HTTPPort:               freePort(t),
			GRPCEnabled:            true,
			GRPCPort:               freePort(t),
			ShutdownTimeoutSeconds: 5,
		},
		Store:  config.StoreConfig{Driver: config.StoreDriverMemory},
		Logger: config.LoggerConfig{Level: "debug"},
	}
	log := zaptest.NewLogger(t)

	c, err := di.NewContainer(context.Background(), cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	srv, err := New(cfg, log, c)
	require.NoError(t, err)
	require.NotNil(t, srv.GRPC)

	done := make(chan error, 1)
	go func() { done <- srv.Start(context.Background()) }()

	url := "http://127.0.0.1:" + cfg.App.HTTPPort + "/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode == http.StatusOK && len(body) > 0
	}, 5*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("servers did not stop")
	}
}

func TestServer_GRPCDisabled(t *testing.T) {
	cfg := &config.Config{
		App: config.AppConfig{
			HTTPPort:               freePort(t),
			ShutdownTimeoutSeconds: 5,
		},
		Store: config.StoreConfig{Driver: config.StoreDriverMemory},
	}
	log := zaptest.NewLogger(t)

	c, err := di.NewContainer(context.Background(), cfg, log)
	require.NoError(t, err)

	srv, err := New(cfg, log, c)
	require.NoError(t, err)
	assert.Nil(t, srv.GRPC)
	assert.Equal(t, ":"+cfg.App.HTTPPort, srv.Gin.Addr)
}

// failingListener refuses every connection with a permanent error.
type failingListener struct {
	net.Listener
}

func (l failingListener) Accept() (net.Conn, error) {
	return nil, errors.New("accept failed")
}

func TestServer_FailureStopsOtherServer(t *testing.T) {
	cfg := &config.Config{
		App: config.AppConfig{
			HTTPPort:               freePort(t),
			GRPCEnabled:            true,
			GRPCPort:               freePort(t),
			ShutdownTimeoutSeconds: 5,
		},
		Store: config.StoreConfig{Driver: config.StoreDriverMemory},
	}
	log := zaptest.NewLogger(t)

	c, err := di.NewContainer(context.Background(), cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	srv, err := New(cfg, log, c)
	require.NoError(t, err)

	ginLis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	grpcLis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- srv.serve(failingListener{ginLis}, grpcLis) }()

	select {
	case err := <-done:
		assert.ErrorContains(t, err, "gin server")
	case <-time.After(5 * time.Second):
		t.Fatal("gRPC server kept running after the Gin server failed")
	}
}
