package main

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liyu1981.xyz/maintenance-service/pkg/common"
	_ "liyu1981.xyz/maintenance-service/pkg/testing"
)

func occupiedAddr(t *testing.T) string {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })
	return listener.Addr().String()
}

func runWithTimeout(t *testing.T) error {
	done := make(chan error, 1)
	go func() { done <- run() }()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after a listener failure")
		return nil
	}
}

func setServerEnv(t *testing.T, httpAddr, grpcAddr string) {
	common.SetTestLoggerNop()
	t.Setenv("GO_ENV", "test")
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("HTTP_HOST_PORT", httpAddr)
	t.Setenv("GRPC_HOST_PORT", grpcAddr)
}

func TestRun_HTTPListenFailureIsReturned(t *testing.T) {
	setServerEnv(t, occupiedAddr(t), "")

	err := runWithTimeout(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http server")
}

func TestRun_GrpcListenFailureIsReturned(t *testing.T) {
	setServerEnv(t, "127.0.0.1:0", occupiedAddr(t))

	err := runWithTimeout(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "grpc listen")
}

func TestRun_InvalidConfig(t *testing.T) {
	setServerEnv(t, "127.0.0.1:0", "")
	t.Setenv("DB_DRIVER", "oracle")

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}
