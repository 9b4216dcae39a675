package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

// corsMiddleware allows the configured browser origins ("*" allows any).
func corsMiddleware(origins []string) gin.HandlerFunc {
	allowAny := slices.Contains(origins, "*")
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && (allowAny || slices.Contains(origins, origin)) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Header("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
			c.Header("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func main() {
	log.SetPrefix("lg/fit-track-go-api: ")
	log.SetFlags(log.LstdFlags)

	cfg := loadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool := getDBPool(ctx, cfg.DBURL)
	defer pool.Close()

	h := newHandler(cfg, pool)

	if cfg.S3Bucket != "" {
		blobs, err := newS3BlobStore(ctx, cfg.S3Bucket, cfg.S3Region)
		if err != nil {
			log.Fatalf("Unable to set up file storage: %v", err)
		}
		h.blobs = blobs
	} else {
		log.Println("S3_BUCKET not set; file routes will answer 503")
	}

	if len(cfg.KafkaBrokers) > 0 {
		publisher := newKafkaCheckinPublisher(cfg.KafkaBrokers, cfg.CheckinTopic)
		defer publisher.Close()
		h.checkins = publisher
	} else {
		log.Println("KAFKA_BROKERS not set; check-in push will answer 503")
	}

	if _, err := h.vapid.init(ctx); err != nil {
		log.Printf("VAPID keys not ready, will retry on first request: %v", err)
	}

	router := gin.Default()
	router.SetTrustedProxies(nil)
	router.Use(corsMiddleware(cfg.CORSOrigins))
	h.registerRoutes(router)

	server := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Listening on %s", cfg.HTTPAddress)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
