package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"lg/stride-api/internal/engine"
)

func main() {
	log.SetPrefix("lg/stride-api: ")

	// .env is optional in production; real env vars win either way.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Error loading .env: %v", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := loadConfig(configPath)
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}
	if err := cfg.validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool := getDBPool(cfg.Database.URL)
	defer pool.Close()

	h := newHandler(pool, engine.New(cfg.Engine))

	router := gin.Default()
	router.SetTrustedProxies(nil)
	h.registerRoutes(router, newRateLimiterStore(cfg.RateLimit.RPS, cfg.RateLimit.Burst))

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	sched := newScheduler(ctx, h)
	if err := sched.register(cfg.Schedule.RefreshCron); err != nil {
		log.Fatalf("Error starting scheduler: %v", err)
	}
	sched.start()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           c.Handler(router),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("Listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown: %v", err)
	}
	sched.stop()
}
