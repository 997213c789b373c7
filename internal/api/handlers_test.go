package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/leadroom/internal/domain"
	"github.com/ignite/leadroom/internal/generation"
	"github.com/ignite/leadroom/internal/scoring"
	"github.com/ignite/leadroom/internal/settings"
	"github.com/ignite/leadroom/internal/templates"
	"github.com/ignite/leadroom/internal/tracking"
)

type testServer struct {
	router    http.Handler
	records   *tracking.MemoryStore
	prospects *tracking.MemoryProspectStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	clients := settings.NewMemoryClientStore()
	globals := settings.NewMemoryGlobalStore(settings.DefaultThresholds(), settings.DefaultScoringRules())
	resolver := settings.NewResolver(clients, globals)

	scoringSvc := scoring.NewService(resolver)

	tmplStore := templates.NewMemoryStore()
	require.NoError(t, tmplStore.Add(domain.Template{
		ID:   uuid.New(),
		Room: domain.RoomProblem,
		Name: "global-intro",
		PromptSections: map[string]string{
			domain.SectionObjective:    "Introduce yourself to {{ email }}",
			domain.SectionCallToAction: "Ask for a short reply.",
		},
		Order: 0,
	}))
	templatesSvc := templates.NewService(tmplStore)

	records := tracking.NewMemoryStore()
	prospects := tracking.NewMemoryProspectStore()
	records.SetProspects(prospects)
	prospects.Add(&domain.Prospect{
		ID:       "p-1",
		ClientID: "client-1",
		Email:    "lead@example.com",
	})

	signer := tracking.NewSigner("test-key", "http://localhost:8080")
	trackingSvc := tracking.NewService(records, prospects, signer)

	generationSvc := generation.NewService(
		nil, // static fallback path
		templatesSvc,
		templates.NewPromptRenderer(),
		generation.NewRateLimiter(rdb, generation.Limits{DailyGenerations: 100}),
		prospects,
		records,
		time.Second,
		1000,
		0.003, 0.015,
	)

	h := NewHandlers(resolver, scoringSvc, templatesSvc, generationSvc, trackingSvc)
	return &testServer{
		router:    SetupRoutes(h, nil),
		records:   records,
		prospects: prospects,
	}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestSettingsLifecycle(t *testing.T) {
	ts := newTestServer(t)

	// Fresh client resolves to global.
	rec := ts.do(t, http.MethodGet, "/api/settings/client-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var resolved settings.ResolvedSettings
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resolved))
	assert.Equal(t, domain.SourceGlobal, resolved.Source)

	// Save an override.
	rec = ts.do(t, http.MethodPut, "/api/settings/client-1", map[string]any{
		"thresholds_override": map[string]int{
			"problem_max": 30, "solution_max": 70, "offer_min": 71,
		},
		"version": 0,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/settings/client-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resolved))
	assert.Equal(t, domain.SourceClient, resolved.Source)
	assert.Equal(t, 30, resolved.Thresholds.ProblemMax)

	// Stale version is rejected.
	rec = ts.do(t, http.MethodPut, "/api/settings/client-1", map[string]any{
		"thresholds_override": map[string]int{
			"problem_max": 20, "solution_max": 50, "offer_min": 51,
		},
		"version": 0,
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Reset reverts to global.
	rec = ts.do(t, http.MethodDelete, "/api/settings/client-1", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/settings/client-1", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resolved))
	assert.Equal(t, domain.SourceGlobal, resolved.Source)
}

func TestPutSettingsRejectsBadThresholds(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPut, "/api/settings/client-1", map[string]any{
		"thresholds_override": map[string]int{
			"problem_max": 70, "solution_max": 30, "offer_min": 71,
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScoreEndpoint(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/api/score", map[string]any{
		"client_id": "client-1",
		"room":      "problem",
		"attributes": map[string]any{
			"traits": map[string]string{"revenue": "Over $100M"},
			"counts": map[string]int{"email_opens": 1},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var score scoring.ProspectScore
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &score))
	assert.Equal(t, 15, score.TotalPoints)
	assert.Equal(t, domain.RoomProblem, score.Room)
}

func TestTemplatesEndpoint(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/api/templates/0/problem", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "global-intro")

	rec = ts.do(t, http.MethodGet, "/api/templates/0/lobby", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateCopyAndTrackFlow(t *testing.T) {
	ts := newTestServer(t)

	// Generate.
	rec := ts.do(t, http.MethodPost, "/api/emails/generate", map[string]any{
		"prospect_id":  "p-1",
		"room":         "problem",
		"email_number": 1,
		"include_url":  "https://example.com/offer",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var gen struct {
		TrackingID uuid.UUID `json:"tracking_id"`
		OpenURL    string    `json:"open_url"`
		ClickURL   string    `json:"click_url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &gen))
	require.NotEmpty(t, gen.OpenURL)

	// Copy.
	rec = ts.do(t, http.MethodPost, "/api/emails/"+gen.TrackingID.String()+"/copy", map[string]any{
		"prospect_id": "p-1",
		"url":         "https://example.com/offer",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Open pixel via the signed URL.
	openPath := strings.TrimPrefix(gen.OpenURL, "http://localhost:8080")
	rec = ts.do(t, http.MethodGet, openPath, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/gif", rec.Header().Get("Content-Type"))

	// Click redirects to the included URL.
	clickPath := strings.TrimPrefix(gen.ClickURL, "http://localhost:8080")
	rec = ts.do(t, http.MethodGet, clickPath, nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://example.com/offer", rec.Header().Get("Location"))
}

func TestGenerateUnknownProspect(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodPost, "/api/emails/generate", map[string]any{
		"prospect_id": "ghost",
		"room":        "problem",
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
