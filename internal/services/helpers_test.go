package services

import (
	"errors"
	"testing"

	"github.com/soltixdb/curvecast/internal/analytics/growth"
	"github.com/soltixdb/curvecast/internal/config"
	"github.com/soltixdb/curvecast/internal/logging"
	"github.com/soltixdb/curvecast/internal/models"
)

const testStart = "2020-03-01"

// curvePayload renders p over days [0, n) starting at testStart
func curvePayload(p growth.Params, n int) models.SeriesPayload {
	values := make([]models.Float, n)
	for i := range values {
		values[i] = models.Float(growth.Evaluate(p, float64(i)))
	}
	return models.SeriesPayload{Start: testStart, Values: values}
}

// payload builds a series payload from plain values
func payload(start string, values ...float64) models.SeriesPayload {
	return models.SeriesPayload{Start: start, Values: models.Floats(values)}
}

func testLogistic() growth.Params {
	return growth.NewParams(growth.Logistic, 1000, 0.1, 50, 0)
}

func newTestForecastService() *ForecastService {
	cfg := config.DefaultConfig()
	return NewForecastService(logging.NewNop(), cfg.Fitter, cfg.Forecast, nil)
}

// assertCode fails unless err is a *ServiceError with the given code
func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("Expected *ServiceError with code %s, got %v", code, err)
	}
	if svcErr.Code != code {
		t.Errorf("Expected code %s, got %s (%s)", code, svcErr.Code, svcErr.Message)
	}
}
