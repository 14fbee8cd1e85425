package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hellofresh/health-go/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hostel-catalog/internal/config"
)

func checkNames(checks []health.Config) []string {
	names := make([]string, 0, len(checks))
	for _, c := range checks {
		names = append(names, c.Name)
	}
	return names
}

func TestChecks(t *testing.T) {
	cfg := &config.Config{MongoURI: "mongodb://localhost:27017"}

	cfg.Cache.Backend = config.CacheBackendMemory
	assert.Equal(t, []string{"mongodb"}, checkNames(Checks(cfg)))

	cfg.Cache.Backend = config.CacheBackendRedis
	cfg.Cache.RedisURL = "redis://localhost:6379/0"
	checks := Checks(cfg)
	assert.Equal(t, []string{"mongodb", "redis"}, checkNames(checks))
	assert.True(t, checks[1].SkipOnErr)
}

func TestNew_Handler(t *testing.T) {
	tests := []struct {
		name       string
		checkErr   error
		wantStatus int
		wantState  string
	}{
		{name: "healthy", wantStatus: http.StatusOK, wantState: string(health.StatusOK)},
		{name: "mongo down", checkErr: errors.New("no reachable servers"), wantStatus: http.StatusServiceUnavailable, wantState: string(health.StatusUnavailable)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, err := New(health.Config{
				Name:    "mongodb",
				Timeout: time.Second,
				Check:   func(context.Context) error { return tt.checkErr },
			})
			require.NoError(t, err)

			w := httptest.NewRecorder()
			h.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			assert.Equal(t, tt.wantStatus, w.Code)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.wantState, body["status"])
			assert.Equal(t, componentName, body["component"].(map[string]any)["name"])
		})
	}
}
