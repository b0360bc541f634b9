package middleware

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

const listMethod = "/roster.v1.UserRoster/ListUsers"

// setupTestRedis creates a miniredis instance for testing
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() {
		_ = client.Close()
	})
	return client, mr
}

func okHandler(ctx context.Context, req any) (any, error) {
	return "ok", nil
}

func peerContext(t *testing.T, addr string) context.Context {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	require.NoError(t, err)
	return peer.NewContext(context.Background(), &peer.Peer{Addr: tcpAddr})
}

// frozen pins the limiter clock so no tokens refill between calls.
func frozen(rl *RateLimiter) {
	at := time.Unix(1_700_000_000, 0)
	rl.now = func() time.Time { return at }
}

func TestRateLimiter_WithinLimit(t *testing.T) {
	client, _ := setupTestRedis(t)

	rl := NewRateLimiter(client, RateLimiterConfig{
		RequestsPerSecond: 10,
		BurstCapacity:     10,
		Enabled:           true,
	}, zaptest.NewLogger(t))
	frozen(rl)
	interceptor := rl.UnaryInterceptor()

	ctx := peerContext(t, "127.0.0.1:12345")
	info := &grpc.UnaryServerInfo{FullMethod: listMethod}

	for i := 0; i < 10; i++ {
		resp, err := interceptor(ctx, nil, info, okHandler)
		require.NoError(t, err)
		assert.Equal(t, "ok", resp)
	}
}

func TestRateLimiter_ExceedLimit(t *testing.T) {
	client, _ := setupTestRedis(t)

	rl := NewRateLimiter(client, RateLimiterConfig{
		RequestsPerSecond: 5,
		BurstCapacity:     5,
		Enabled:           true,
	}, zaptest.NewLogger(t))
	frozen(rl)
	interceptor := rl.UnaryInterceptor()

	ctx := peerContext(t, "127.0.0.1:12345")
	info := &grpc.UnaryServerInfo{FullMethod: listMethod}

	for i := 0; i < 5; i++ {
		_, err := interceptor(ctx, nil, info, okHandler)
		require.NoError(t, err, "request %d should pass", i+1)
	}

	resp, err := interceptor(ctx, nil, info, okHandler)
	assert.Nil(t, resp)
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.ResourceExhausted, st.Code())
	assert.Contains(t, st.Message(), "rate limit exceeded")
}

func TestRateLimiter_Refill(t *testing.T) {
	client, _ := setupTestRedis(t)

	rl := NewRateLimiter(client, RateLimiterConfig{
		RequestsPerSecond: 2,
		BurstCapacity:     1,
		Enabled:           true,
	}, zaptest.NewLogger(t))
	at := time.Unix(1_700_000_000, 0)
	rl.now = func() time.Time { return at }
	ctx := context.Background()

	allowed, err := rl.Allow(ctx, "bucket")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = rl.Allow(ctx, "bucket")
	require.NoError(t, err)
	assert.False(t, allowed)

	at = at.Add(500 * time.Millisecond)
	allowed, err = rl.Allow(ctx, "bucket")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimiter_SeparateBucketsPerClient(t *testing.T) {
	client, _ := setupTestRedis(t)

	rl := NewRateLimiter(client, RateLimiterConfig{
		RequestsPerSecond: 1,
		BurstCapacity:     1,
		Enabled:           true,
	}, zaptest.NewLogger(t))
	frozen(rl)
	interceptor := rl.UnaryInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: listMethod}

	first := peerContext(t, "10.0.0.1:1000")
	second := peerContext(t, "10.0.0.2:1000")

	_, err := interceptor(first, nil, info, okHandler)
	require.NoError(t, err)
	_, err = interceptor(first, nil, info, okHandler)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))

	_, err = interceptor(second, nil, info, okHandler)
	assert.NoError(t, err)
}

func TestRateLimiter_Disabled(t *testing.T) {
	client, _ := setupTestRedis(t)

	rl := NewRateLimiter(client, RateLimiterConfig{
		RequestsPerSecond: 1,
		BurstCapacity:     1,
		Enabled:           false,
	}, zaptest.NewLogger(t))
	interceptor := rl.UnaryInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: listMethod}

	for i := 0; i < 5; i++ {
		_, err := interceptor(context.Background(), nil, info, okHandler)
		require.NoError(t, err)
	}
}

func TestRateLimiter_NilClient(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimiterConfig{Enabled: true}, zaptest.NewLogger(t))
	assert.False(t, rl.Enabled())

	allowed, err := rl.Allow(context.Background(), "any")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimiter_FailsOpenWhenRedisDown(t *testing.T) {
	client, mr := setupTestRedis(t)

	rl := NewRateLimiter(client, RateLimiterConfig{
		RequestsPerSecond: 1,
		BurstCapacity:     1,
		Enabled:           true,
	}, zaptest.NewLogger(t))
	mr.Close()

	resp, err := rl.UnaryInterceptor()(context.Background(), nil,
		&grpc.UnaryServerInfo{FullMethod: listMethod}, okHandler)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp)
}

func TestRateLimiter_GetClientIP(t *testing.T) {
	rl := NewRateLimiter(nil, RateLimiterConfig{}, zaptest.NewLogger(t))

	spoofed := metadata.NewIncomingContext(peerContext(t, "10.1.1.1:5000"),
		metadata.Pairs("x-forwarded-for", "203.0.113.9", "x-real-ip", "198.51.100.7"))

	tests := []struct {
		name string
		ctx  context.Context
		want string
	}{
		{name: "peer ipv4", ctx: peerContext(t, "127.0.0.1:4000"), want: "127.0.0.1"},
		{name: "peer ipv6", ctx: peerContext(t, "[::1]:4000"), want: "::1"},
		{name: "forwarding metadata ignored", ctx: spoofed, want: "10.1.1.1"},
		{name: "unknown", ctx: context.Background(), want: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rl.getClientIP(tt.ctx))
		})
	}
}

func TestRateLimiter_SameHostSharesBucketAcrossConnections(t *testing.T) {
	client, _ := setupTestRedis(t)

	rl := NewRateLimiter(client, RateLimiterConfig{
		RequestsPerSecond: 1,
		BurstCapacity:     1,
		Enabled:           true,
	}, zaptest.NewLogger(t))
	frozen(rl)
	interceptor := rl.UnaryInterceptor()
	info := &grpc.UnaryServerInfo{FullMethod: listMethod}

	_, err := interceptor(peerContext(t, "10.0.0.1:1000"), nil, info, okHandler)
	require.NoError(t, err)

	_, err = interceptor(peerContext(t, "10.0.0.1:2000"), nil, info, okHandler)
	assert.Equal(t, codes.ResourceExhausted, status.Code(err))
}
