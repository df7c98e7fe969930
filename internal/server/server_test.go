package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/tresty/internal/app"
	"github.com/ternarybob/tresty/internal/common"
)

const testFeed = `{"type":"FeatureCollection","features":[
	{"type":"Feature","properties":{"name":"Zuni Cafe","category":"californian","hood":"Hayes Valley","age_score":35,"attractive_score":7.5,"gender_score":0.4,"faces":40},"geometry":{"type":"Point","coordinates":[-122.4216,37.7736]}},
	{"type":"Feature","properties":{"name":"Tartine","category":"bakery","age_score":29,"attractive_score":6.1,"gender_score":0.6,"faces":25},"geometry":{"type":"Point","coordinates":[-122.4241,37.7614]}}
]}`

func feedServer(t *testing.T) *httptest.Server {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(testFeed))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(buf.Bytes())
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestServer(t *testing.T, mutate func(*common.Config)) *Server {
	t.Helper()
	t.Setenv("TRESTY_PLACES_API_KEY", "")
	t.Setenv("GOOGLE_PLACES_API_KEY", "")

	cfg := common.NewDefaultConfig()
	cfg.Storage.Badger.Path = filepath.Join(t.TempDir(), "cache")
	cfg.Storage.EnvFile = ""
	cfg.Dataset.URL = feedServer(t).URL
	cfg.Scheduler.Enabled = false
	cfg.RateLimit.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}

	application, err := app.New(cfg, arbor.NewLogger())
	require.NoError(t, err)
	t.Cleanup(func() { application.Close() })

	return New(application)
}

func get(t *testing.T, s *Server, path string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	zuni := common.NewRestaurantID("Zuni Cafe", 37.7736, -122.4216)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"list", "/api/restaurants?sortBy=name", http.StatusOK, `"total":2`},
		{"top", "/api/restaurants/top", http.StatusOK, `"Zuni Cafe"`},
		{"get", "/api/restaurants/" + zuni, http.StatusOK, `"neighborhood":"Hayes Valley"`},
		{"get unknown", "/api/restaurants/000000000000", http.StatusNotFound, `"Restaurant not found"`},
		{"photo without api key", "/api/restaurants/" + zuni + "/photo", http.StatusNotFound, `"No photo available"`},
		{"photo unknown", "/api/restaurants/000000000000/photo", http.StatusNotFound, `"Restaurant not found"`},
		{"details without api key", "/api/restaurants/" + zuni + "/details", http.StatusOK, `"rating":null`},
		{"categories", "/api/meta/categories", http.StatusOK, `{"values":["bakery","californian"]}`},
		{"neighborhoods", "/api/meta/neighborhoods", http.StatusOK, `{"values":["Hayes Valley","Mission"]}`},
		{"health", "/api/health", http.StatusOK, `"restaurantCount":2`},
		{"jobs", "/api/jobs", http.StatusOK, `"jobs":{}`},
		{"unknown api route", "/api/nope", http.StatusNotFound, `"Not Found"`},
		{"metrics", "/metrics", http.StatusOK, "tresty_http_requests_total"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, s, tt.path, nil)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantBody)
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		})
	}
}

func TestHealthReportsCacheStats(t *testing.T) {
	s := newTestServer(t, nil)

	rec := get(t, s, "/api/health", nil)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Contains(t, body, "cache")
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, func(c *common.Config) {
		c.CORS.Origin = "https://tresty.example.com"
	})

	tests := []struct {
		origin string
		want   string
	}{
		{"https://tresty.example.com", "https://tresty.example.com"},
		{"http://localhost:3000", "http://localhost:3000"},
		{"https://tresty-git-feature.vercel.app", "https://tresty-git-feature.vercel.app"},
		{"https://evil.example.com", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			headers := map[string]string{}
			if tt.origin != "" {
				headers["Origin"] = tt.origin
			}
			rec := get(t, s, "/api/health", headers)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, rec.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/restaurants", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, func(c *common.Config) {
		c.RateLimit.Enabled = true
		c.RateLimit.RequestsPerSecond = 1
		c.RateLimit.Burst = 2
	})

	// httptest requests all come from 192.0.2.1
	assert.Equal(t, http.StatusOK, get(t, s, "/api/health", nil).Code)
	assert.Equal(t, http.StatusOK, get(t, s, "/api/health", nil).Code)

	rec := get(t, s, "/api/health", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}

func TestRateLimit_Disabled(t *testing.T) {
	s := newTestServer(t, func(c *common.Config) {
		c.RateLimit.RequestsPerSecond = 1
		c.RateLimit.Burst = 1
	})

	for i := 0; i < 5; i++ {
		assert.Equal(t, http.StatusOK, get(t, s, "/api/health", nil).Code)
	}
}

func TestIPRateLimiter_PerClient(t *testing.T) {
	l := newIPRateLimiter(1, 1)

	assert.True(t, l.allow("10.0.0.1"))
	assert.False(t, l.allow("10.0.0.1"))
	assert.True(t, l.allow("10.0.0.2"))
}

func TestRecoveryMiddleware(t *testing.T) {
	s := newTestServer(t, nil)
	handler := s.recoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, rec.Body.String())
}
