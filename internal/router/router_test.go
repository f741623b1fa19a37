package router

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/soltixdb/curvecast/internal/analytics/growth"
	"github.com/soltixdb/curvecast/internal/config"
	"github.com/soltixdb/curvecast/internal/logging"
	"github.com/soltixdb/curvecast/internal/models"
)

const testAPIKey = "0123456789abcdef0123456789abcdef"

func newTestApp(authEnabled bool) *fiber.App {
	cfg := config.DefaultConfig()
	cfg.Auth.Enabled = authEnabled
	cfg.Auth.APIKeys = []string{testAPIKey}

	app, _ := New(logging.NewNop(), nil, nil, cfg)
	return app
}

func TestRouter_HealthWithoutAuth(t *testing.T) {
	app := newTestApp(true)

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("Expected a request id header")
	}
}

func TestRouter_V1RequiresKey(t *testing.T) {
	app := newTestApp(true)

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/curves", nil))
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", resp.StatusCode)
	}

	req := httptest.NewRequest("GET", "/v1/curves", nil)
	req.Header.Set("X-API-Key", testAPIKey)
	resp, err = app.Test(req)
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
}

func TestRouter_Fit(t *testing.T) {
	app := newTestApp(false)

	p := growth.NewParams(growth.Logistic, 1000, 0.1, 50, 0)
	values := make([]float64, 101)
	for i := range values {
		values[i] = growth.Evaluate(p, float64(i))
	}
	body, _ := json.Marshal(map[string]interface{}{
		"series": map[string]interface{}{"start": "2020-03-01", "values": values},
		"curve":  "logistic",
	})
	req := httptest.NewRequest("POST", "/v1/fit", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 30000)
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d: %s", resp.StatusCode, data)
	}

	var fit models.FitResponse
	if err := json.NewDecoder(resp.Body).Decode(&fit); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if fit.Params.Kind != growth.Logistic || fit.Observations != 101 {
		t.Errorf("Unexpected fit: %+v", fit)
	}
}

func TestRouter_JobsWithoutQueue(t *testing.T) {
	app := newTestApp(false)

	req := httptest.NewRequest("POST", "/v1/jobs/fit",
		strings.NewReader(`{"series":{"start":"2020-03-01","values":[1,2,3]}}`))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}
	if resp.StatusCode != fiber.StatusServiceUnavailable {
		t.Errorf("Expected status 503, got %d", resp.StatusCode)
	}
}

func TestRouter_NotFound(t *testing.T) {
	app := newTestApp(false)

	resp, err := app.Test(httptest.NewRequest("GET", "/v2/anything", nil))
	if err != nil {
		t.Fatalf("Failed to perform request: %v", err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.StatusCode)
	}

	var errResp models.ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if errResp.Error.Code != "NOT_FOUND" {
		t.Errorf("Expected NOT_FOUND, got %s", errResp.Error.Code)
	}
}
