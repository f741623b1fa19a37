package forecast

import (
	"github.com/soltixdb/curvecast/internal/analytics/growth"
	"github.com/soltixdb/curvecast/internal/analytics/timeseries"
)

// CurveForecaster fits one growth curve family
type CurveForecaster struct {
	kind growth.CurveKind
}

// NewCurveForecaster creates a forecaster for kind
func NewCurveForecaster(kind growth.CurveKind) *CurveForecaster {
	return &CurveForecaster{kind: kind}
}

func init() {
	for _, kind := range growth.Kinds() {
		RegisterForecaster(kind.String(), NewCurveForecaster(kind))
	}
}

// Name returns the curve name
func (f *CurveForecaster) Name() string {
	return f.kind.String()
}

// Kind returns the fitted curve family
func (f *CurveForecaster) Kind() growth.CurveKind {
	return f.kind
}

// Forecast runs the forecast with the forecaster's curve kind
func (f *CurveForecaster) Forecast(series *timeseries.TimeSeries, config Config) (*ForecastStats, error) {
	config.Kind = f.kind
	return Run(series, config)
}
