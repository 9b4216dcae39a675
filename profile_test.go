package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestValidateProfileUpdate(t *testing.T) {
	f := func(v float64) *float64 { return &v }
	i := func(v int) *int { return &v }
	s := func(v string) *string { return &v }

	cases := []struct {
		name string
		body updateProfileRequest
		want string
	}{
		{"empty", updateProfileRequest{}, ""},
		{"valid", updateProfileRequest{Weight: f(82.5), HeightCM: f(180), Age: i(41), Gender: s("female"), CalTarget: i(0), GoalKG: f(70)}, ""},
		{"zero weight", updateProfileRequest{Weight: f(0)}, "weight must be between 0 and 500"},
		{"huge height", updateProfileRequest{HeightCM: f(301)}, "heightCm must be between 0 and 300"},
		{"age zero", updateProfileRequest{Age: i(0)}, "age must be between 1 and 130"},
		{"unknown gender", updateProfileRequest{Gender: s("other")}, "gender must be one of: male, female"},
		{"negative target", updateProfileRequest{CalTarget: i(-1)}, "calTarget must not be negative"},
		{"zero goal", updateProfileRequest{GoalKG: f(0)}, "goalKg must be positive"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, validateProfileUpdate(tc.body))
		})
	}
}

/* ─── Handlers ────────────────────────────────────────────────────────── */

func setupProfileTest(store statsStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := &Handler{store: store, now: func() time.Time { return statsClock }}
	router := gin.New()
	auth := func(c *gin.Context) {
		c.Set("user_id", "user-1")
		c.Next()
	}
	router.GET("/api/profile", auth, h.getProfile)
	router.PUT("/api/profile", auth, h.updateProfile)
	router.POST("/api/body-composition", auth, h.calcBodyComposition)
	return router
}

func doJSONRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetProfile(t *testing.T) {
	router := setupProfileTest(seededStore())

	w := doJSONRequest(router, http.MethodGet, "/api/profile", "")
	require.Equal(t, http.StatusOK, w.Code)

	var p profile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	require.Equal(t, 90.0, p.Weight)
	require.Equal(t, 1800, p.CalTarget)
}

func TestGetProfile_NotFound(t *testing.T) {
	router := setupProfileTest(newMemStore())

	w := doJSONRequest(router, http.MethodGet, "/api/profile", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.JSONEq(t, `{"error":"Profile not found"}`, w.Body.String())
}

func TestUpdateProfile_EmptyBodyReturnsCurrent(t *testing.T) {
	router := setupProfileTest(seededStore())

	w := doJSONRequest(router, http.MethodPut, "/api/profile", `{}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"goalKg":80`)
}

func TestUpdateProfile_RejectsInvalid(t *testing.T) {
	router := setupProfileTest(seededStore())

	w := doJSONRequest(router, http.MethodPut, "/api/profile", `{"gender":"robot"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.JSONEq(t, `{"error":"gender must be one of: male, female"}`, w.Body.String())

	w = doJSONRequest(router, http.MethodPut, "/api/profile", `not json`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCalcBodyComposition_NoProfile(t *testing.T) {
	router := setupProfileTest(newMemStore())

	w := doJSONRequest(router, http.MethodPost, "/api/body-composition", `{"waist":90,"neck":40}`)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.JSONEq(t, `{"error":"Profile not found"}`, w.Body.String())
}

func TestCalcBodyComposition_InvalidMeasurements(t *testing.T) {
	router := setupProfileTest(seededStore())

	// Waist not larger than neck leaves nothing to take the log of.
	w := doJSONRequest(router, http.MethodPost, "/api/body-composition", `{"waist":38,"neck":40}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
