package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"erpgate.dev/internal/auth"
	"erpgate.dev/internal/erp"
	"erpgate.dev/internal/gateway"
	"erpgate.dev/internal/obs"
	"erpgate.dev/internal/ratelimit"
	"erpgate.dev/internal/store/pg"
	"erpgate.dev/internal/tenant"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	secret := os.Getenv("GATE_AUTH_SECRET")
	if secret == "" {
		log.Fatal("GATE_AUTH_SECRET is required")
	}
	tokens, err := auth.NewTokenService([]byte(secret))
	if err != nil {
		log.Fatalf("token service: %v", err)
	}

	// Stores: Postgres when a DSN is configured, in-memory for local runs.
	var (
		keys    auth.KeyStore
		tenants tenant.Store
		erpData erp.Store
		probe   gateway.ReadyProbe
		pgStore *pg.Store
	)
	if dsn := os.Getenv("GATE_PG_DSN"); dsn != "" {
		pgStore, err = pg.Open(dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		keys, tenants, erpData = pgStore, pgStore, pgStore
		probe = gateway.ReadyProbe{DB: pgStore.DB()}
	} else {
		log.Print("GATE_PG_DSN not set, using in-memory stores")
		keys = auth.NewMemoryKeyStore()
		tenants = tenant.NewMemoryStore()
		erpData = erp.NewMemoryStore()
	}

	limiter := ratelimit.New(
		envInt("GATE_RATE_LIMIT", ratelimit.DefaultLimit),
		envDuration("GATE_RATE_WINDOW", ratelimit.DefaultWindow),
	)
	defer limiter.Close()

	api := gateway.New(gateway.Config{
		Version:        version,
		AllowedOrigins: splitCSV(os.Getenv("GATE_ALLOWED_ORIGINS")),
		MaxBodyBytes:   int64(envInt("GATE_MAX_BODY_BYTES", 1<<20)),
		IPBurst:        envInt("GATE_IP_BURST", 0),
		IPPerSecond:    envInt("GATE_IP_PER_SECOND", 0),
	}, auth.NewResolver(tokens, keys), auth.NewGuard(tenants), limiter, erpData, probe)
	defer api.Close()

	addr := os.Getenv("GATE_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional gRPC health surface for platform probes.
	if grpcAddr := os.Getenv("GATE_GRPC_ADDR"); grpcAddr != "" {
		lis, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			log.Fatalf("grpc listen: %v", err)
		}
		grpcSrv, healthSrv := gateway.NewGRPCHealthServer()
		go api.SyncHealth(ctx, healthSrv, 10*time.Second)
		go func() {
			if err := grpcSrv.Serve(lis); err != nil {
				log.Printf("grpc serve: %v", err)
			}
		}()
		defer grpcSrv.GracefulStop()
	}

	log.Printf("Starting erpgate %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	if pgStore != nil {
		_ = pgStore.Close()
	}
	log.Println("Stopped")
}

func envInt(name string, fallback int) int {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("%s: %v", name, err)
	}
	return n
}

func envDuration(name string, fallback time.Duration) time.Duration {
	v := os.Getenv(name)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("%s: %v", name, err)
	}
	return d
}

func splitCSV(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
