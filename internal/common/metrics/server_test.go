package metrics_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/central-university-dev/go-portal-realtime/internal/common/metrics"
)

func TestMetricsServer_Health(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	server := metrics.NewMetricsServer(0, func() map[string]string {
		return map[string]string{"notifications": "open"}
	}, logger)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string            `json:"status"`
		Feeds  map[string]string `json:"feeds"`
	}

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "OK", body.Status)
	assert.Equal(t, "open", body.Feeds["notifications"])
}

func TestMetricsServer_Metrics(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	metrics.RecordSocketConnect("server_test", "success")

	server := metrics.NewMetricsServer(0, nil, logger)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "portal_realtime_socket_connects_total")
}
