package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"lg/stride-api/internal/engine"
)

// newTestRouter wires handlers without a database or auth. Every case here
// must be rejected (or served from cache) before any query runs.
func newTestRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api", func(c *gin.Context) {
		c.Set("user_id", 7)
		c.Next()
	})
	api.POST("/calorie-log/items", h.createCalorieLogItem)
	api.PUT("/calorie-log/items/:id", h.updateCalorieLogItem)
	api.PATCH("/calorie-log/user-settings", h.patchUserSettings)
	api.GET("/weight-log", h.getWeightLog)
	api.POST("/weight-log", h.upsertWeightEntry)
	api.PUT("/weight-log/:id", h.updateWeightEntry)
	api.GET("/metrics", h.getMetrics)
	api.GET("/metrics/maintenance-history", h.getMaintenanceHistory)
	return r
}

func newTestHandler() *Handler {
	return &Handler{
		cache: newSnapshotCache(),
		now:   func() time.Time { return testToday.Add(15 * time.Hour) },
	}
}

func doRequest(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

/* ─── Validation tests ───────────────────────────────────────────────── */

func TestHandlers_RejectInvalidInput(t *testing.T) {
	cases := []struct {
		name    string
		method  string
		path    string
		body    string
		wantMsg string
	}{
		{"item malformed json", "POST", "/api/calorie-log/items", `{`, "invalid request body"},
		{"item missing name", "POST", "/api/calorie-log/items", `{"type":"lunch","calories":400}`, "item_name is required"},
		{"item bad type", "POST", "/api/calorie-log/items", `{"item_name":"x","type":"brunch","calories":400}`, "type must be one of"},
		{"item negative calories", "POST", "/api/calorie-log/items", `{"item_name":"x","type":"lunch","calories":-1}`, "calories must be between"},
		{"item bad date", "POST", "/api/calorie-log/items", `{"item_name":"x","type":"lunch","calories":1,"date":"03/01/2026"}`, "invalid date"},
		{"item update bad type", "PUT", "/api/calorie-log/items/1", `{"type":"brunch"}`, "type must be one of"},
		{"weight zero", "POST", "/api/weight-log", `{"date":"2026-03-01","weight_kg":0}`, "weight_kg must be between"},
		{"weight too heavy", "POST", "/api/weight-log", `{"weight_kg":701}`, "weight_kg must be between"},
		{"weight bad date", "POST", "/api/weight-log", `{"date":"yesterday","weight_kg":80}`, "invalid date"},
		{"weight update negative", "PUT", "/api/weight-log/3", `{"weight_kg":-2}`, "weight_kg must be between"},
		{"weight range missing", "GET", "/api/weight-log?start=2026-03-01", ``, "start and end"},
		{"weight range reversed", "GET", "/api/weight-log?start=2026-03-02&end=2026-03-01", ``, "start must not be after end"},
		{"history bad start", "GET", "/api/metrics/maintenance-history?start=x&end=2026-03-01", ``, "invalid start"},
		{"settings empty patch", "PATCH", "/api/calorie-log/user-settings", `{}`, "no fields to update"},
		{"settings bad goal", "PATCH", "/api/calorie-log/user-settings", `{"goal_type":"shredding"}`, "goal_type must be one of"},
		{"settings policy source", "PATCH", "/api/calorie-log/user-settings", `{"maintenance_source":"policy_default"}`, "maintenance_source must be one of"},
	}

	r := newTestRouter(newTestHandler())
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(r, tc.method, tc.path, tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body %s)", w.Code, w.Body.String())
			}
			var resp struct {
				Error string `json:"error"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode error body: %v", err)
			}
			if !strings.Contains(resp.Error, tc.wantMsg) {
				t.Errorf("error = %q, want it to contain %q", resp.Error, tc.wantMsg)
			}
		})
	}
}

func TestValidateSettingsPatch(t *testing.T) {
	str := func(s string) *string { return &s }
	f64 := func(v float64) *float64 { return &v }
	num := func(v int) *int { return &v }

	cases := []struct {
		name  string
		body  patchUserSettingsRequest
		valid bool
	}{
		{"all valid", patchUserSettingsRequest{
			CalorieBudget: num(1900), GoalType: str("bulking"), TargetWeightKG: f64(85),
			MaintenanceToleranceKG: f64(0), MaintenanceSource: str("manual"), ManualMaintenanceKcal: num(2700),
			Sex: str("female"), DateOfBirth: str("1992-06-15"), HeightCM: f64(168),
			ActivityLevel: str("active"), Units: str("metric"),
		}, true},
		{"negative budget", patchUserSettingsRequest{CalorieBudget: num(-1)}, false},
		{"zero target", patchUserSettingsRequest{TargetWeightKG: f64(0)}, false},
		{"negative tolerance", patchUserSettingsRequest{MaintenanceToleranceKG: f64(-0.5)}, false},
		{"negative manual", patchUserSettingsRequest{ManualMaintenanceKcal: num(-100)}, false},
		{"unknown sex", patchUserSettingsRequest{Sex: str("other")}, false},
		{"bad dob", patchUserSettingsRequest{DateOfBirth: str("15/06/1992")}, false},
		{"short height", patchUserSettingsRequest{HeightCM: f64(20)}, false},
		{"unknown activity", patchUserSettingsRequest{ActivityLevel: str("couch")}, false},
		{"unknown units", patchUserSettingsRequest{Units: str("stone")}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := validateSettingsPatch(&tc.body)
			if (msg == "") != tc.valid {
				t.Errorf("validateSettingsPatch = %q, valid want %v", msg, tc.valid)
			}
		})
	}
}

/* ─── Metrics cache tests ────────────────────────────────────────────── */

func TestGetMetrics_ServesTodaysSnapshotFromCache(t *testing.T) {
	h := newTestHandler()
	current := 80.0
	h.cache.put(7, h.cache.generation(7), engine.Metrics{
		ComputedFor:     engine.Day(h.now()),
		CurrentWeightKg: &current,
	})

	w := doRequest(newTestRouter(h), "GET", "/api/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	var resp struct {
		Cached          bool     `json:"cached"`
		CurrentWeightKg *float64 `json:"current_weight_kg"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Cached {
		t.Error("expected cached=true")
	}
	if resp.CurrentWeightKg == nil || *resp.CurrentWeightKg != 80 {
		t.Errorf("current_weight_kg = %v, want 80", resp.CurrentWeightKg)
	}
}

// A rejected write leaves the cache alone; only successful writes invalidate.
func TestRejectedWriteKeepsSnapshot(t *testing.T) {
	h := newTestHandler()
	h.cache.put(7, h.cache.generation(7), engine.Metrics{ComputedFor: engine.Day(h.now())})

	doRequest(newTestRouter(h), "POST", "/api/weight-log", `{"weight_kg":-1}`)

	if _, ok := h.cache.get(7); !ok {
		t.Error("rejected write must not evict the snapshot")
	}
}

/* ─── Snapshot store tests ───────────────────────────────────────────── */

// A snapshot computed before an invalidating write is neither cached nor
// recorded to maintenance_history.
func TestStoreSnapshot_SkipsHistoryWhenStale(t *testing.T) {
	cases := []struct {
		name         string
		invalidate   bool
		wantStored   bool
		wantRecorded int
	}{
		{"current generation", false, true, 1},
		{"invalidated mid-compute", true, false, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestHandler()
			recorded := 0
			h.recordHistory = func(ctx context.Context, userID int, m engine.Metrics) error {
				recorded++
				return nil
			}

			gen := h.cache.generation(7)
			if tc.invalidate {
				h.cache.invalidate(7)
			}
			stored := h.storeSnapshot(context.Background(), 7, gen, engine.Metrics{ComputedFor: engine.Day(h.now())})

			if stored != tc.wantStored {
				t.Errorf("storeSnapshot = %v, want %v", stored, tc.wantStored)
			}
			if recorded != tc.wantRecorded {
				t.Errorf("recorded %d history rows, want %d", recorded, tc.wantRecorded)
			}
			if _, ok := h.cache.get(7); ok != tc.wantStored {
				t.Errorf("cached = %v, want %v", ok, tc.wantStored)
			}
		})
	}
}
