package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lg/stride-api/internal/engine"
)

// Handler holds shared dependencies (db pool, engine, snapshot cache) for all route handlers.
type Handler struct {
	db     *pgxpool.Pool
	engine *engine.Engine
	cache  *snapshotCache
	now    func() time.Time // overridable for tests

	// recordHistory writes a maintenance_history row; overridable for tests.
	recordHistory func(ctx context.Context, userID int, m engine.Metrics) error
}

// newHandler wires a Handler with a fresh snapshot cache.
func newHandler(db *pgxpool.Pool, eng *engine.Engine) *Handler {
	h := &Handler{
		db:     db,
		engine: eng,
		cache:  newSnapshotCache(),
		now:    time.Now,
	}
	h.recordHistory = h.recordMaintenanceHistory
	return h
}

/* ─── Database helpers ────────────────────────────────────────────────── */

// queryOne runs a query and scans the first row into T using RowToStructByName.
// Logs query and scan errors for debugging (e.g. struct/column mismatches).
// Takes a plain context so the scheduler can share it with request handlers.
func queryOne[T any](pool *pgxpool.Pool, ctx context.Context, sql string, args pgx.NamedArgs) (T, error) {
	rows, err := pool.Query(ctx, sql, args)
	if err != nil {
		log.Printf("[queryOne] Query error: %v", err)
		var zero T
		return zero, err
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil && err != pgx.ErrNoRows {
		log.Printf("[queryOne] Scan error: %v", err)
	}
	return result, err
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
func queryMany[T any](pool *pgxpool.Pool, ctx context.Context, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := pool.Query(ctx, sql, args)
	if err != nil {
		log.Printf("[queryMany] Query error: %v", err)
		return nil, err
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		log.Printf("[queryMany] Scan error: %v", err)
	}
	return results, err
}

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// getDBPool creates a connection pool. We use a pool (not a single conn) because
// Neon closes idle connections after ~5 minutes.
func getDBPool(dbURL string) *pgxpool.Pool {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to parse DB URL: %v\n", err)
		os.Exit(1)
	}
	// Simple protocol avoids "cached plan must not change result type" after
	// migrations alter a table behind Neon's statement cache.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	log.Println("DB pool ready!")
	return pool
}

// registerRoutes registers all API routes on the router. limiter may be nil
// when rate limiting is disabled.
func (h *Handler) registerRoutes(router *gin.Engine, limiter *rateLimiterStore) {
	limited := limiter.middleware()

	// Public routes
	router.POST("/api/login", limited, h.login)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())
	api.POST("/calorie-log/items", h.createCalorieLogItem)
	api.PUT("/calorie-log/items/:id", h.updateCalorieLogItem)
	api.DELETE("/calorie-log/items/:id", h.deleteCalorieLogItem)
	api.GET("/calorie-log/user-settings", h.getUserSettings)
	api.PATCH("/calorie-log/user-settings", h.patchUserSettings)
	api.GET("/weight-log", h.getWeightLog)
	api.POST("/weight-log", h.upsertWeightEntry)
	api.PUT("/weight-log/:id", h.updateWeightEntry)
	api.DELETE("/weight-log/:id", h.deleteWeightEntry)
	api.GET("/metrics", limited, h.getMetrics)
	api.GET("/metrics/maintenance-history", h.getMaintenanceHistory)
}
