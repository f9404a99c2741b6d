package grpc

import (
	"bytes"
	"context"
	"net"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"liyu1981.xyz/maintenance-service/pkg/auth"
	"liyu1981.xyz/maintenance-service/pkg/common"
	"liyu1981.xyz/maintenance-service/pkg/db"
	"liyu1981.xyz/maintenance-service/pkg/maintenance"
	_ "liyu1981.xyz/maintenance-service/pkg/testing"
)

const bufSize = 1024 * 1024

func startTestServer(t *testing.T, limiter *common.RateLimiterStore) (healthpb.HealthClient, *HealthServer) {
	listener := bufconn.Listen(bufSize)

	dbInstance, err := db.New(db.UseMemorySqliteDialectorNamed(uuid.NewString()), db.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = dbInstance.Close() })

	hs := NewHealthServer(maintenance.New(dbInstance, auth.NewBcryptHasher(auth.MinBcryptCost)), limiter)
	server := hs.NewServer()
	t.Cleanup(server.Stop)

	go func() {
		_ = server.Serve(listener)
	}()

	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(func(ctx context.Context, s string) (net.Conn, error) {
			return listener.Dial()
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return healthpb.NewHealthClient(conn), hs
}

func TestHealthCheck(t *testing.T) {
	common.SetTestLoggerNop()
	client, hs := startTestServer(t, nil)

	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, hs.Probe(context.Background()))

	for _, service := range []string{"", ServiceName} {
		resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
		require.NoError(t, err)
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status, service)
	}

	_, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "unknown"})
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestHealthCheck_DatabaseDown(t *testing.T) {
	common.SetTestLoggerNop()
	client, hs := startTestServer(t, nil)

	require.NoError(t, hs.Maint.Db.Close())
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, hs.Probe(context.Background()))

	resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)
}

func TestWatchShutsDownOnCancel(t *testing.T) {
	common.SetTestLoggerNop()
	client, hs := startTestServer(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hs.Watch(ctx)
		close(done)
	}()
	cancel()
	<-done

	resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)
}

func TestRateLimitInterceptor(t *testing.T) {
	common.SetTestLoggerNop()
	client, hs := startTestServer(t, common.NewRateLimiterStore(0, 2))
	hs.Probe(context.Background())

	for i := 0; i < 3; i++ {
		_, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{})
		if i < 2 {
			require.NoError(t, err, "call %d should be allowed", i+1)
		} else {
			require.Equal(t, codes.ResourceExhausted, status.Code(err), "call %d should be rate limited", i+1)
		}
	}
}

func TestLoggingInterceptor(t *testing.T) {
	var buf bytes.Buffer
	common.SetTestCaptureLogger(&buf, zapcore.InfoLevel)
	defer common.SetTestLoggerNop()

	client, hs := startTestServer(t, nil)
	hs.Probe(context.Background())

	_, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{})
	require.NoError(t, err)

	assert.Contains(t, buf.String(), `"logger":"grpc_server"`)
	assert.Contains(t, buf.String(), healthpb.Health_Check_FullMethodName)
	assert.Contains(t, buf.String(), `"code":"OK"`)
}
