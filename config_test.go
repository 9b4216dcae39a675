package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSplitAndTrim(t *testing.T) {
	require.Equal(t, []string{"a:9092", "b:9092"}, splitAndTrim(" a:9092, ,b:9092 "))
	require.Empty(t, splitAndTrim(""))
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("HTTP_ADDRESS", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("S3_BUCKET", "")
	t.Setenv("SHUTDOWN_TIMEOUT", "")
	t.Setenv("CHECKIN_TOPIC", "")

	cfg := loadConfig()
	require.Equal(t, "localhost:3000", cfg.HTTPAddress)
	require.Empty(t, cfg.KafkaBrokers)
	require.Empty(t, cfg.S3Bucket)
	require.Equal(t, "push.checkins", cfg.CheckinTopic)
	require.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
}

func TestLoadConfig_FromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDRESS", ":8080")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, http://localhost:5173")
	t.Setenv("SHUTDOWN_TIMEOUT", "3s")

	cfg := loadConfig()
	require.Equal(t, ":8080", cfg.HTTPAddress)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	require.Equal(t, []string{"https://app.example.com", "http://localhost:5173"}, cfg.CORSOrigins)
	require.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
}

func TestGetDurationEnv_InvalidFallsBack(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "soon")
	require.Equal(t, time.Minute, getDurationEnv("SHUTDOWN_TIMEOUT", time.Minute))
}
