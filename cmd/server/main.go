package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/kol-metrics/internal/api"
	"github.com/ignite/kol-metrics/internal/archive"
	"github.com/ignite/kol-metrics/internal/config"
	"github.com/ignite/kol-metrics/internal/pipeline"
	"github.com/ignite/kol-metrics/internal/pkg/distlock"
	"github.com/ignite/kol-metrics/internal/pkg/logger"
	"github.com/ignite/kol-metrics/internal/repository"
	"github.com/ignite/kol-metrics/internal/service/results"
	"github.com/redis/go-redis/v9"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

// connectRedis returns nil when url is empty or the server is unreachable.
func connectRedis(ctx context.Context, url string) *redis.Client {
	if url == "" {
		log.Println("Redis not configured (REDIS_URL not set)")
		return nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		opts = &redis.Options{Addr: url}
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Printf("Warning: Redis connection failed: %v", err)
		client.Close()
		return nil
	}
	log.Printf("Redis connected: %s", opts.Addr)
	return client
}

func main() {
	log.Println("╔════════════════════════════════════════════════════════════╗")
	log.Println("║  KOL Metrics Server (cmd/server/main.go)                   ║")
	log.Println("║  YouTube / Instagram / TikTok post metrics                 ║")
	log.Println("╚════════════════════════════════════════════════════════════╝")

	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
	logger.SetRedact(cfg.Log.RedactEnabled())

	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := repository.Open(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open results store: %v", err)
	}
	defer store.Close()
	log.Printf("Results store ready (driver=%s)", store.Driver)

	svc := results.NewService(store.Results, results.Order(cfg.Results.DefaultOrder))
	handlers := api.NewHandlers(pipeline.NewFromConfig(cfg), svc)
	handlers.SetDefaultYouTubeKey(cfg.YouTube.APIKey)
	if cfg.YouTube.APIKey == "" {
		log.Println("YOUTUBE_API_KEY not set: YouTube rows need a key per request")
	}

	// Advisory locks only exist on PostgreSQL.
	redisClient := connectRedis(ctx, cfg.Redis.URL)
	if redisClient != nil {
		defer redisClient.Close()
	}
	var lockDB *sql.DB
	if store.Driver == repository.DriverPostgres {
		lockDB = store.DB
	}
	locks := distlock.NewFactory(redisClient, lockDB, cfg.Redis.LockTTL())
	handlers.SetLockFactory(locks)
	log.Printf("Upload locking: %s", locks.Backend())

	if cfg.Archive.Enabled() {
		arc, err := archive.NewS3Archive(ctx, archive.Config{
			Bucket:  cfg.Archive.S3Bucket,
			Region:  cfg.Archive.S3Region,
			Prefix:  cfg.Archive.Prefix,
			Profile: cfg.Archive.AWSProfile,
		})
		if err != nil {
			log.Printf("Warning: upload archive disabled: %v", err)
		} else {
			handlers.SetArchiver(arc)
			log.Printf("Upload archive: s3://%s/%s", cfg.Archive.S3Bucket, cfg.Archive.Prefix)
		}
	}

	server := api.NewServer(cfg.Server, handlers)

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", host, port)
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
