package server

import (
	"bytes"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/memo-hub/memo-hub/internal/config"
)

func TestRouterRoutesRequestWhenHostMatches(t *testing.T) {
	app := newTestApp(t, 5100)

	req := httptest.NewRequest("GET", "http://lookup.memo.local/onca/xml", nil)
	req.Host = "lookup.memo.local"
	req.Header.Set("Host", "lookup.memo.local")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusNoContent {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 204 status, got %d (body=%s)", resp.StatusCode, string(body))
	}

	if app.recorder.routeName != "lookup" {
		t.Fatalf("expected lookup route, got %s", app.recorder.routeName)
	}

	if reqID := resp.Header.Get("X-Request-ID"); reqID == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}
}

func TestRouterMatchesHostWithPort(t *testing.T) {
	app := newTestApp(t, 5100)

	req := httptest.NewRequest("GET", "http://lookup.memo.local:5100/onca/xml", nil)
	req.Host = "lookup.memo.local:5100"
	req.Header.Set("Host", "lookup.memo.local:5100")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusNoContent {
		t.Fatalf("Host 携带端口也应命中映射, got %d", resp.StatusCode)
	}
}

func TestRouterReturns404WhenHostUnknown(t *testing.T) {
	app := newTestApp(t, 5100)

	req := httptest.NewRequest("GET", "http://unknown.local/onca/xml", nil)
	req.Host = "unknown.local"
	req.Header.Set("Host", "unknown.local")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 status, got %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(body, []byte(`"host_unmapped"`)) {
		t.Fatalf("expected host_unmapped error, got %s", string(body))
	}
}

func TestRouterSkipsDiagnosticsPaths(t *testing.T) {
	app := newTestApp(t, 5100)
	app.Get("/-/ping", func(c fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest("GET", "http://unknown.local/-/ping", nil)
	req.Host = "unknown.local"
	req.Header.Set("Host", "unknown.local")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test failed: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("诊断路径不应受 Host 映射限制, got %d", resp.StatusCode)
	}
	if app.recorder.routeName != "" {
		t.Fatalf("diagnostics request should not reach lookup handler")
	}
}

type testApp struct {
	*fiber.App
	recorder *lookupRecorder
}

func newTestApp(t *testing.T, port int) *testApp {
	t.Helper()

	cfg := &config.Config{
		Global: config.GlobalConfig{
			ListenPort: port,
		},
		Upstreams: []config.UpstreamConfig{
			{
				Name:        "lookup",
				Domain:      "lookup.memo.local",
				BaseURL:     "https://api.example.com",
				ContentType: "application/xml",
			},
		},
	}

	registry, err := NewRegistry(cfg)
	if err != nil {
		t.Fatalf("failed to create registry: %v", err)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	recorder := &lookupRecorder{}
	app, err := NewApp(AppOptions{
		Logger:     logger,
		Registry:   registry,
		Lookup:     recorder,
		ListenPort: port,
	})
	if err != nil {
		t.Fatalf("failed to create app: %v", err)
	}

	return &testApp{App: app, recorder: recorder}
}

type lookupRecorder struct {
	lastRoute *UpstreamRoute
	routeName string
}

func (p *lookupRecorder) Handle(c fiber.Ctx, route *UpstreamRoute) error {
	p.lastRoute = route
	p.routeName = route.Config.Name
	return c.SendStatus(fiber.StatusNoContent)
}
