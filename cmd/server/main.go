package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc/health/grpc_health_v1"

	"sessiongate/internal/account/repository"
	"sessiongate/internal/audit"
	auditrepo "sessiongate/internal/audit/repository"
	"sessiongate/internal/auth/service"
	"sessiongate/internal/config"
	"sessiongate/internal/db"
	"sessiongate/internal/lockout"
	"sessiongate/internal/security"
	"sessiongate/internal/server"
	"sessiongate/internal/server/interceptors"
	sessiondomain "sessiongate/internal/session/domain"
	"sessiongate/internal/session/store"
	"sessiongate/internal/telemetry/otel"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.AccessTokenSecret == "" || cfg.RefreshTokenSecret == "" {
		log.Fatal("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must be set")
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	ctx := context.Background()

	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "sessiongate", cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = providers.Shutdown(shutdownCtx)
	}()

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	accounts := repository.NewPostgresRepository(conn)
	auditLog := audit.NewRepoLogger(auditrepo.NewPostgresRepository(conn), interceptors.ClientIP)

	codec := security.NewTokenCodec(
		[]byte(cfg.AccessTokenSecret),
		[]byte(cfg.RefreshTokenSecret),
		cfg.TokenIssuer,
		cfg.AccessTTL(),
		cfg.RefreshTTL(),
	)
	sessions := store.NewMemoryStore()
	lockouts := lockout.NewMemoryTracker(cfg.MaxFailedAttempts, cfg.LockoutWindow(), accounts)

	authSvc := service.NewAuthService(
		accounts,
		security.NewHasher(cfg.BcryptCost),
		nil, // no two-factor verifier wired yet
		codec,
		sessions,
		lockouts,
		auditLog,
		service.Config{
			MaxConcurrentSessions: cfg.MaxConcurrentSessions,
			RotateRefreshTokens:   cfg.RotateRefreshTokens,
		},
	)

	sweeper := store.NewSweeper(sessions, cfg.RefreshTTL(), cfg.SweepEvery(), func(s *sessiondomain.Session) {
		auditLog.Record(context.Background(), s.AccountID, audit.EventSessionEvicted,
			fmt.Sprintf("session %s idle past refresh ttl", s.ID))
	})
	sweeper.Start()
	defer sweeper.Stop()

	grpcSrv, healthSrv := server.New(server.Options{
		Authz: authSvc,
		Meter: providers.MeterProvider.Meter("sessiongate"),
	})

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	defer lis.Close()

	go func() {
		healthSrv.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
		log.Printf("gRPC server listening on %s", cfg.GRPCAddr)
		if err := grpcSrv.Serve(lis); err != nil {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down gRPC server...")
	healthSrv.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	grpcSrv.GracefulStop()
	log.Println("gRPC server stopped")
}
