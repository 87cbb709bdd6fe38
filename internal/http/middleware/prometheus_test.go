package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMetricsApp(t *testing.T) (*fiber.App, *PrometheusMiddleware, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	pm, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(pm.Handler())
	app.Get("/files/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	app.Delete("/files/:id", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })
	app.Post("/owners/:kind/:id/files", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "too large")
	})
	app.Get("/metrics", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	return app, pm, reg
}

func TestPrometheusMiddleware_CountsByRoutePattern(t *testing.T) {
	app, pm, _ := newMetricsApp(t)

	requests := []struct {
		method, target string
	}{
		{"GET", "/files/1"},
		{"GET", "/files/2"},
		{"DELETE", "/files/3"},
		{"POST", "/owners/post/42/files"},
	}
	for _, r := range requests {
		_, err := app.Test(httptest.NewRequest(r.method, r.target, nil))
		require.NoError(t, err)
	}

	tests := []struct {
		method, path, status string
		want                 float64
	}{
		{"GET", "/files/:id", "200", 2},
		{"DELETE", "/files/:id", "204", 1},
		{"POST", "/owners/:kind/:id/files", "413", 1},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			got := testutil.ToFloat64(pm.requestCount.WithLabelValues(tt.method, tt.path, tt.status))
			assert.Equal(t, tt.want, got)
		})
	}

	// one series per (method, path)
	assert.Equal(t, 3, testutil.CollectAndCount(pm.requestDuration))
}

func TestPrometheusMiddleware_LabelsSurviveLaterRequests(t *testing.T) {
	app, _, reg := newMetricsApp(t)

	for _, r := range []struct{ method, target string }{
		{"GET", "/files/1"},
		{"DELETE", "/files/3"},
	} {
		_, err := app.Test(httptest.NewRequest(r.method, r.target, nil))
		require.NoError(t, err)
	}

	mfs, err := reg.Gather()
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, mf := range mfs {
		if mf.GetName() != "http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			seen[labels["method"]+" "+labels["path"]] = true
		}
	}
	assert.Equal(t, map[string]bool{"GET /files/:id": true, "DELETE /files/:id": true}, seen)
}

func TestPrometheusMiddleware_SkipsMetricsEndpoint(t *testing.T) {
	app, _, reg := newMetricsApp(t)

	_, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)

	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		assert.Empty(t, mf.GetMetric(), mf.GetName())
	}
}

func TestPrometheusMiddleware_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewPrometheusMiddleware(reg)
	require.NoError(t, err)

	_, err = NewPrometheusMiddleware(reg)
	assert.Error(t, err)
}
