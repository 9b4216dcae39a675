//go:build integration

package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
)

// startPostgres runs a throwaway Postgres, applies db/*.sql and returns a pool
// configured the way the server configures it.
func startPostgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	pg, err := postgrescontainer.RunContainer(ctx,
		postgrescontainer.WithDatabase("fittrack"),
		postgrescontainer.WithUsername("fittrack"),
		postgrescontainer.WithPassword("fittrack"),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	var pool *pgxpool.Pool
	deadline := time.Now().Add(30 * time.Second)
	for {
		pool = getDBPool(ctx, connStr)
		if err = pool.Ping(ctx); err == nil {
			break
		}
		pool.Close()
		require.True(t, time.Now().Before(deadline), "postgres not ready: %v", err)
		time.Sleep(500 * time.Millisecond)
	}
	t.Cleanup(pool.Close)

	files, err := filepath.Glob(filepath.Join("db", "*.sql"))
	require.NoError(t, err)
	sort.Strings(files)
	for _, f := range files {
		sql, err := os.ReadFile(f)
		require.NoError(t, err)
		_, err = pool.Exec(ctx, string(sql))
		require.NoError(t, err, f)
	}
	return pool
}

func seedUser(t *testing.T, pool *pgxpool.Pool, userID string) {
	t.Helper()
	ctx := context.Background()
	_, err := pool.Exec(ctx,
		"INSERT INTO users (id, email, name, password) VALUES (@id, @email, 'Alex', 'x')",
		pgx.NamedArgs{"id": userID, "email": userID + "@example.com"})
	require.NoError(t, err)
	_, err = pool.Exec(ctx,
		`INSERT INTO profiles (user_id, name, weight, height_cm, age, gender, cal_target, goal_kg)
		 VALUES (@id, 'Alex', 90, 175, 30, 'male', 1800, 80)`,
		pgx.NamedArgs{"id": userID})
	require.NoError(t, err)
}

func TestPGStore_StatsReads(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	store := newPGStore(pool)
	seedUser(t, pool, "user-1")

	_, err := store.Profile(ctx, "nobody")
	require.ErrorIs(t, err, errNotFound)

	p, err := store.Profile(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, 90.0, p.Weight)
	require.Equal(t, "male", p.Gender)

	for i, date := range []string{"2026-02-17", "2026-02-18", "2026-02-19"} {
		_, err := pool.Exec(ctx,
			"INSERT INTO weight_logs (id, user_id, weight, date) VALUES (@id, 'user-1', @weight, @date)",
			pgx.NamedArgs{"id": date, "weight": 90.4 - 0.2*float64(i), "date": date})
		require.NoError(t, err)
	}
	_, err = pool.Exec(ctx,
		`INSERT INTO workouts (id, user_id, type, duration, calories, date)
		 VALUES ('w1', 'user-1', 'Running', 30, 300, '2026-02-19')`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, "INSERT INTO steps (user_id, date, steps) VALUES ('user-1', '2026-02-19', 10000)")
	require.NoError(t, err)

	total := nutritionTotals{Calories: 1500, Carbs: 150, Protein: 120, Fat: 50}
	_, err = upsertNutrition(ctx, pool, "user-1", "2026-02-19",
		[]nutritionMeal{{Name: "Manual Entry", Calories: 1500, Carbs: 150, Protein: 120, Fat: 50}},
		total, nutritionSourceManual)
	require.NoError(t, err)

	// A second write for the same day replaces the first.
	total.Calories = 1600
	stored, err := upsertNutrition(ctx, pool, "user-1", "2026-02-19",
		[]nutritionMeal{{Name: "Manual Entry", Calories: 1600}}, total, nutritionSourceManual)
	require.NoError(t, err)
	require.Equal(t, 1600.0, stored.Total.Calories)

	in, err := loadDayInputs(ctx, store, p, "2026-02-19")
	require.NoError(t, err)
	require.Len(t, in.weightLogs, 3)
	require.Equal(t, "2026-02-17", in.weightLogs[0].Date.String())
	require.Len(t, in.workouts, 1)
	require.NotNil(t, in.steps)
	require.Equal(t, 10000, in.steps.Steps)
	require.NotNil(t, in.nutrition)
	require.Equal(t, 1600.0, in.nutrition.Total.Calories)
	require.Len(t, in.nutrition.Meals, 1)
	require.Nil(t, in.water)

	result := buildStats(in, "2026-02-19", time.Date(2026, 2, 19, 12, 0, 0, 0, time.UTC))
	require.Equal(t, 3, result.Streak)
	require.True(t, result.HasNutrition)
	require.Equal(t, 300, result.BurnedWorkouts)
	require.Equal(t, 474, result.StepsCalories)

	empty, err := loadDayInputs(ctx, store, p, "2026-01-01")
	require.NoError(t, err)
	require.Empty(t, empty.workouts)
	require.Nil(t, empty.steps)
	require.Nil(t, empty.nutrition)
}

func TestPGStore_PushAndSettings(t *testing.T) {
	pool := startPostgres(t)
	ctx := context.Background()
	store := newPGStore(pool)
	seedUser(t, pool, "user-1")

	sub, err := store.Subscription(ctx, "user-1")
	require.NoError(t, err)
	require.Nil(t, sub)

	require.NoError(t, store.SaveSubscription(ctx, pushSubscription{
		UserID: "user-1", Endpoint: "https://push.example.com/a", Keys: map[string]string{"auth": "a"},
	}))
	require.NoError(t, store.SaveSubscription(ctx, pushSubscription{
		UserID: "user-1", Endpoint: "https://push.example.com/b", Keys: map[string]string{"auth": "b"},
	}))
	sub, err = store.Subscription(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, "https://push.example.com/b", sub.Endpoint)
	require.Equal(t, map[string]string{"auth": "b"}, sub.Keys)

	ring := newVAPIDKeyring(store)
	first, err := ring.init(ctx)
	require.NoError(t, err)

	// A fresh process reads the persisted pair instead of generating a new one.
	second, err := newVAPIDKeyring(store).init(ctx)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

/* ─── Write paths ─────────────────────────────────────────────────────── */

// setupWriteTest serves the write handlers over a real database, with today
// pinned to 2026-02-19 and user-1 already authenticated.
func setupWriteTest(t *testing.T) (*gin.Engine, *pgxpool.Pool) {
	t.Helper()
	pool := startPostgres(t)
	seedUser(t, pool, "user-1")

	gin.SetMode(gin.TestMode)
	h := newHandler(config{JWTSecret: "test-secret"}, pool)
	h.now = func() time.Time { return statsClock }

	router := gin.New()
	api := router.Group("/api", func(c *gin.Context) {
		c.Set("user_id", "user-1")
		c.Next()
	})
	api.PUT("/profile", h.updateProfile)
	api.POST("/weight-logs", h.addWeightLog)
	api.GET("/weight-logs", h.getWeightLogs)
	api.POST("/workouts", h.createWorkout)
	api.DELETE("/workouts/:id", h.deleteWorkout)
	api.POST("/steps", h.upsertSteps)
	api.POST("/water", h.upsertWater)
	api.POST("/nutrition/manual", h.logNutritionManual)
	api.POST("/nutrition/copy-yesterday", h.copyNutritionFromYesterday)
	api.GET("/body-composition", h.getBodyCompositions)
	api.POST("/body-composition", h.calcBodyComposition)
	return router, pool
}

func countRows(t *testing.T, pool *pgxpool.Pool, sql string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, pool.QueryRow(context.Background(), sql, args...).Scan(&n))
	return n
}

func TestUpsertSteps_SecondWriteReplacesFirst(t *testing.T) {
	router, pool := setupWriteTest(t)

	w := doJSONRequest(router, http.MethodPost, "/api/steps", `{"steps":5000,"date":"2026-02-18"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = doJSONRequest(router, http.MethodPost, "/api/steps", `{"steps":8000,"date":"2026-02-18"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.Equal(t, 1, countRows(t, pool,
		"SELECT count(*) FROM steps WHERE user_id = 'user-1' AND date = '2026-02-18'"))
	var steps int
	require.NoError(t, pool.QueryRow(context.Background(),
		"SELECT steps FROM steps WHERE user_id = 'user-1' AND date = '2026-02-18'").Scan(&steps))
	require.Equal(t, 8000, steps)

	// No date means today.
	w = doJSONRequest(router, http.MethodPost, "/api/steps", `{"steps":1200}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, countRows(t, pool,
		"SELECT count(*) FROM steps WHERE user_id = 'user-1' AND date = '2026-02-19'"))
}

func TestUpsertWater_SecondWriteReplacesFirst(t *testing.T) {
	router, pool := setupWriteTest(t)

	for _, body := range []string{`{"glasses":3}`, `{"glasses":7}`} {
		w := doJSONRequest(router, http.MethodPost, "/api/water", body)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	require.Equal(t, 1, countRows(t, pool, "SELECT count(*) FROM water WHERE user_id = 'user-1'"))
	var glasses int
	require.NoError(t, pool.QueryRow(context.Background(),
		"SELECT glasses FROM water WHERE user_id = 'user-1' AND date = '2026-02-19'").Scan(&glasses))
	require.Equal(t, 7, glasses)
}

func TestLogNutritionManual_ReplacesDayAndCopies(t *testing.T) {
	router, pool := setupWriteTest(t)
	ctx := context.Background()
	store := newPGStore(pool)

	w := doJSONRequest(router, http.MethodPost, "/api/nutrition/manual",
		`{"mode":"total","calories":1500,"date":"2026-02-18"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = doJSONRequest(router, http.MethodPost, "/api/nutrition/manual",
		`{"mode":"macros","carbs":100,"protein":100,"fat":50,"date":"2026-02-18"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.Equal(t, 1, countRows(t, pool, "SELECT count(*) FROM nutrition WHERE user_id = 'user-1'"))
	entry, err := store.NutritionOn(ctx, "user-1", "2026-02-18")
	require.NoError(t, err)
	require.NotNil(t, entry)
	require.Equal(t, 1250.0, entry.Total.Calories)
	require.Equal(t, nutritionSourceManual, entry.Source)
	require.Len(t, entry.Meals, 1)
	require.Equal(t, "Manual Entry", entry.Meals[0].Name)

	w = doJSONRequest(router, http.MethodPost, "/api/nutrition/copy-yesterday?date=2026-02-19", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	copied, err := store.NutritionOn(ctx, "user-1", "2026-02-19")
	require.NoError(t, err)
	require.NotNil(t, copied)
	require.Equal(t, nutritionSourceCopied, copied.Source)
	require.Equal(t, entry.Total, copied.Total)
	require.Equal(t, entry.Meals, copied.Meals)
}

func TestUpdateProfile_WeightAlsoLogsToday(t *testing.T) {
	router, pool := setupWriteTest(t)

	w := doJSONRequest(router, http.MethodPut, "/api/profile", `{"weight":88.5,"calTarget":1700}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var p profile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	require.Equal(t, 88.5, p.Weight)
	require.Equal(t, 1700, p.CalTarget)

	stored, err := newPGStore(pool).Profile(context.Background(), "user-1")
	require.NoError(t, err)
	require.Equal(t, 88.5, stored.Weight)

	var weight float64
	require.NoError(t, pool.QueryRow(context.Background(),
		"SELECT weight FROM weight_logs WHERE user_id = 'user-1' AND date = '2026-02-19'").Scan(&weight))
	require.Equal(t, 88.5, weight)

	// Without a weight nothing is appended.
	w = doJSONRequest(router, http.MethodPut, "/api/profile", `{"name":"Sam"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, countRows(t, pool, "SELECT count(*) FROM weight_logs WHERE user_id = 'user-1'"))
}

func TestAddWeightLog_SetsProfileWeight(t *testing.T) {
	router, pool := setupWriteTest(t)

	w := doJSONRequest(router, http.MethodPost, "/api/weight-logs", `{"weight":87.9,"date":"2026-02-18"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var entry weightLogEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entry))
	require.Equal(t, "2026-02-18", entry.Date.String())
	require.Equal(t, 87.9, entry.Weight)

	stored, err := newPGStore(pool).Profile(context.Background(), "user-1")
	require.NoError(t, err)
	require.Equal(t, 87.9, stored.Weight)

	// A second entry on the same date is kept alongside the first.
	w = doJSONRequest(router, http.MethodPost, "/api/weight-logs", `{"weight":87.6,"date":"2026-02-18"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.Equal(t, 2, countRows(t, pool,
		"SELECT count(*) FROM weight_logs WHERE user_id = 'user-1' AND date = '2026-02-18'"))

	w = doJSONRequest(router, http.MethodPost, "/api/weight-logs", `{"weight":0}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWorkouts_CreateThenDelete(t *testing.T) {
	router, pool := setupWriteTest(t)

	w := doJSONRequest(router, http.MethodPost, "/api/workouts",
		`{"type":"Running","duration":30,"calories":300}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created workoutEntry
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	require.Equal(t, "2026-02-19", created.Date.String())

	workouts, err := newPGStore(pool).WorkoutsOn(context.Background(), "user-1", "2026-02-19")
	require.NoError(t, err)
	require.Len(t, workouts, 1)

	w = doJSONRequest(router, http.MethodDelete, "/api/workouts/"+created.ID, "")
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, 0, countRows(t, pool, "SELECT count(*) FROM workouts WHERE user_id = 'user-1'"))

	w = doJSONRequest(router, http.MethodDelete, "/api/workouts/"+created.ID, "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.JSONEq(t, `{"error":"workout not found"}`, w.Body.String())
}

func TestCalcBodyComposition_StoresReading(t *testing.T) {
	router, pool := setupWriteTest(t)

	w := doJSONRequest(router, http.MethodPost, "/api/body-composition", `{"waist":90,"neck":40}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.JSONEq(t,
		`{"body_fat":25.8,"category":"Above Average","lean_mass":66.8,"fat_mass":23.2}`,
		w.Body.String())

	require.Equal(t, 1, countRows(t, pool, "SELECT count(*) FROM body_compositions WHERE user_id = 'user-1'"))

	w = doJSONRequest(router, http.MethodGet, "/api/body-composition", "")
	require.Equal(t, http.StatusOK, w.Code)

	var readings []bodyCompReading
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &readings))
	require.Len(t, readings, 1)
	require.Equal(t, 25.8, readings[0].BodyFat)
	require.Equal(t, "Above Average", readings[0].Category)
	require.Equal(t, 90.0, readings[0].Waist)
	require.Equal(t, 40.0, readings[0].Neck)
	require.Nil(t, readings[0].Hip)
	require.Equal(t, "2026-02-19", readings[0].Date.String())
}
