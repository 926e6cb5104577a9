package observability

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/lostfound-service/internal/config"
	apperrors "github.com/spec-kit/lostfound-service/pkg/util/errorutil"
)

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	logger, err := NewLogger(config.LoggerConfig{Level: "nonsense"})
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zap.InfoLevel))
	assert.False(t, logger.Core().Enabled(zap.DebugLevel))
}

func TestRequestLoggerRecordsMetrics(t *testing.T) {
	metrics := NewMetrics()
	app := fiber.New(fiber.Config{ErrorHandler: func(c *fiber.Ctx, err error) error {
		return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
	}})
	app.Use(RequestLogger(zap.NewNop(), metrics))
	app.Get("/items/:id", func(c *fiber.Ctx) error {
		if c.Params("id") == "404" {
			return apperrors.NewItemNotFound(404)
		}
		return c.SendStatus(http.StatusOK)
	})
	app.Get("/metrics", metrics.Handler())

	for _, id := range []string{"1", "2", "404"} {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/items/"+id, nil))
		require.NoError(t, err)
		resp.Body.Close()
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.requests.WithLabelValues("GET", "/items/:id", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.requests.WithLabelValues("GET", "/items/:id", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.errors.WithLabelValues("GET", "/items/:id", apperrors.CodeItemNotFound)))

	metrics.RecordMatches(2)
	metrics.RecordMatches(0)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.matchesFound))

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.True(t, strings.Contains(string(body), "lostfound_http_requests_total"))
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordRequest("/", "GET", 200, 0)
		m.RecordError("/", "GET", "X")
		m.RecordItemReported("Lost")
		m.RecordMatches(1)
		m.RecordNotification("info")
	})
}
