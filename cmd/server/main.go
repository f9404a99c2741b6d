package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"liyu1981.xyz/maintenance-service/pkg/auth"
	"liyu1981.xyz/maintenance-service/pkg/common"
	"liyu1981.xyz/maintenance-service/pkg/db"
	maintGrpc "liyu1981.xyz/maintenance-service/pkg/grpc"
	maintHttp "liyu1981.xyz/maintenance-service/pkg/http"
	"liyu1981.xyz/maintenance-service/pkg/maintenance"
	"liyu1981.xyz/maintenance-service/pkg/metrics"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func run() error {
	cfg, err := common.LoadConfig()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := common.GetLogger()
	defer common.SyncLogger()

	for _, key := range cfg.UsesInsecureDefaults() {
		logger.Warn("Using insecure development default, set it before deploying", zap.String("key", key))
	}

	dialector, err := db.DialectorFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	dbInstance, err := db.New(dialector, db.Options{PoolSize: cfg.DBPoolSize})
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer func() {
		if err := dbInstance.Close(); err != nil {
			logger.Error("Closing database failed", zap.Error(err))
		}
	}()

	sqlDB, err := dbInstance.Conn.DB()
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	metrics.Init(sqlDB)

	m := maintenance.New(dbInstance, auth.NewBcryptHasher(auth.DefaultBcryptCost))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 2)

	if cfg.GrpcHostPort != "" {
		hs := maintGrpc.NewHealthServer(m, common.NewRateLimiterStore(rate.Limit(cfg.GrpcRate), cfg.GrpcBurst))
		s := hs.NewServer()

		listener, err := net.Listen("tcp", cfg.GrpcHostPort)
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		go hs.Watch(ctx)

		go func() {
			logger.Info("Starting gRPC health server on " + cfg.GrpcHostPort)
			if err := s.Serve(listener); err != nil {
				serveErr <- fmt.Errorf("grpc server: %w", err)
			}
		}()
		defer s.GracefulStop()
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	rs := maintHttp.NewRestfulServer(cfg, m)
	rs.Setup()

	logger.Info("http server created with:",
		zap.Float64("login_rate", cfg.LoginRate),
		zap.Int("login_burst", cfg.LoginBurst),
		zap.Bool("secure_cookie", rs.SecureCookie),
		zap.String("static_dir", rs.StaticDir),
	)

	srv := &http.Server{
		Addr:              cfg.HTTPHostPort,
		Handler:           rs.Server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server on: " + cfg.HTTPHostPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("http server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case runErr = <-serveErr:
		logger.Error("Server failed, shutting down", zap.Error(runErr))
	}
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP shutdown failed", zap.Error(err))
	}
	return runErr
}
