package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler holds shared dependencies for all route handlers. db backs the plain
// CRUD handlers; the interface-typed stores back anything that needs to be
// exercised without Postgres.
type Handler struct {
	db       *pgxpool.Pool
	store    statsStore
	subs     pushStore
	settings settingsStore
	vapid    *vapidKeyring
	blobs    blobStore        // nil when no bucket is configured
	checkins checkinPublisher // nil when no brokers are configured

	jwtSecret string
	now       func() time.Time // overridable for tests
}

// newHandler wires a Handler to a Postgres pool.
func newHandler(cfg config, pool *pgxpool.Pool) *Handler {
	s := newPGStore(pool)
	return &Handler{
		db:        pool,
		store:     s,
		subs:      s,
		settings:  s,
		vapid:     newVAPIDKeyring(s),
		jwtSecret: cfg.JWTSecret,
	}
}

// clock returns the current time in UTC.
func (h *Handler) clock() time.Time {
	if h.now != nil {
		return h.now().UTC()
	}
	return time.Now().UTC()
}

// today is the current UTC calendar day as YYYY-MM-DD.
func (h *Handler) today() string {
	return h.clock().Format(dateLayout)
}

/* ─── Database helpers ────────────────────────────────────────────────── */

// queryOne runs a query and scans the first row into T using RowToStructByName.
// Logs query and scan errors for debugging (e.g. struct/column mismatches).
func queryOne[T any](pool *pgxpool.Pool, ctx context.Context, sql string, args pgx.NamedArgs) (T, error) {
	rows, err := pool.Query(ctx, sql, args)
	if err != nil {
		log.Printf("[queryOne] Query error: %v", err)
		var zero T
		return zero, err
	}
	result, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[T])
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		log.Printf("[queryOne] Scan error: %v", err)
	}
	return result, err
}

// queryMany runs a query and scans all rows into []T using RowToStructByName.
// Returns an empty (non-nil) slice when nothing matches so JSON renders [].
func queryMany[T any](pool *pgxpool.Pool, ctx context.Context, sql string, args pgx.NamedArgs) ([]T, error) {
	rows, err := pool.Query(ctx, sql, args)
	if err != nil {
		log.Printf("[queryMany] Query error: %v", err)
		return nil, err
	}
	results, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		log.Printf("[queryMany] Scan error: %v", err)
		return nil, err
	}
	if results == nil {
		results = []T{}
	}
	return results, nil
}

// apiError returns a consistent JSON error response: {"error": "message"}.
func apiError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// resolveDate returns the date query param after validating it. A missing or
// empty ?date= means today.
func (h *Handler) resolveDate(c *gin.Context) (string, bool) {
	date := c.Query("date")
	if date == "" {
		return h.today(), true
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return "", false
	}
	return date, true
}

// bodyDate validates an optional YYYY-MM-DD from a request body, defaulting to today.
func (h *Handler) bodyDate(c *gin.Context, date *string) (string, bool) {
	if date == nil || *date == "" {
		return h.today(), true
	}
	if _, err := time.Parse(dateLayout, *date); err != nil {
		apiError(c, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return "", false
	}
	return *date, true
}

/* ─── Server setup ────────────────────────────────────────────────────── */

// getDBPool creates a connection pool or exits.
func getDBPool(ctx context.Context, url string) *pgxpool.Pool {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		log.Fatalf("Unable to parse DB URL: %v", err)
	}
	// Use simple query protocol to avoid "cached plan must not change result type"
	// errors from server-side prepared statement caches after schema changes.
	cfg.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v", err)
	}
	log.Println("DB pool ready!")
	return pool
}

// registerRoutes registers all API routes on the router.
func (h *Handler) registerRoutes(router *gin.Engine) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	// Public routes
	router.GET("/api", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"message": "fit-track API"}) })
	router.POST("/api/login", h.login)
	router.GET("/api/push/vapid-key", h.getVAPIDKey)
	router.GET("/api/files/*key", h.serveFile)

	// Authenticated routes
	api := router.Group("/api", h.authMiddleware())
	api.GET("/auth/me", h.getMe)
	api.GET("/stats", h.getStats)
	api.GET("/profile", h.getProfile)
	api.PUT("/profile", h.updateProfile)
	api.GET("/weight-logs", h.getWeightLogs)
	api.POST("/weight-logs", h.addWeightLog)
	api.GET("/workouts", h.getWorkouts)
	api.POST("/workouts", h.createWorkout)
	api.DELETE("/workouts/:id", h.deleteWorkout)
	api.GET("/workout-heatmap", h.getWorkoutHeatmap)
	api.GET("/measurements", h.getMeasurements)
	api.POST("/measurements", h.addMeasurement)
	api.GET("/steps", h.getSteps)
	api.POST("/steps", h.upsertSteps)
	api.GET("/water", h.getWater)
	api.POST("/water", h.upsertWater)
	api.GET("/nutrition", h.getNutrition)
	api.POST("/nutrition/manual", h.logNutritionManual)
	api.POST("/nutrition/copy-yesterday", h.copyNutritionFromYesterday)
	api.GET("/body-composition", h.getBodyCompositions)
	api.POST("/body-composition", h.calcBodyComposition)
	api.GET("/progress-photos", h.getProgressPhotos)
	api.POST("/progress-photos", h.uploadProgressPhoto)
	api.DELETE("/progress-photos/:id", h.deleteProgressPhoto)
	api.POST("/upload/avatar", h.uploadAvatar)
	api.POST("/push/subscribe", h.pushSubscribe)
	api.POST("/push/send-checkin", h.sendCheckin)
}
