package services

import (
	"context"
	"time"

	"github.com/soltixdb/curvecast/internal/analytics/extrema"
	"github.com/soltixdb/curvecast/internal/config"
	"github.com/soltixdb/curvecast/internal/logging"
	"github.com/soltixdb/curvecast/internal/models"
)

// ExtremaService summarizes the turning points of a series
type ExtremaService struct {
	logger *logging.Logger
	cfg    config.ExtremaConfig
}

// NewExtremaService creates a new ExtremaService
func NewExtremaService(logger *logging.Logger, cfg config.ExtremaConfig) *ExtremaService {
	return &ExtremaService{logger: logger, cfg: cfg}
}

// Find returns the extrema of a series and the trend legs between them
func (s *ExtremaService) Find(_ context.Context, req *models.ExtremaRequest) (*models.ExtremaResponse, error) {
	series, err := req.Series.ToTimeSeries()
	if err != nil {
		return nil, invalidRequest("%v", err)
	}
	if req.SampleWindow < 0 {
		return nil, invalidRequest("sample_window cannot be negative")
	}

	window := req.SampleWindow
	if window == 0 {
		window = s.cfg.SampleWindow
	}
	if window < 1 {
		window = extrema.DefaultSampleWindow
	}

	start := time.Now()
	summary := extrema.Find(series, window)
	segments := extrema.Segments(summary)

	resp := &models.ExtremaResponse{
		SampleWindow: window,
		Extrema:      make([]models.ExtremumView, len(summary)),
		Segments:     make([]models.SegmentView, len(segments)),
	}
	for i, r := range summary {
		resp.Extrema[i] = models.ExtremumView{
			Date:      models.FormatDate(r.Date),
			Value:     models.Float(r.Value),
			Kind:      string(r.Kind),
			Synthetic: r.Synthetic,
		}
	}
	for i, seg := range segments {
		resp.Segments[i] = models.SegmentView{
			From:          models.FormatDate(seg.From),
			To:            models.FormatDate(seg.To),
			Days:          seg.Days,
			Direction:     string(seg.Direction),
			Change:        models.Float(seg.Change),
			PercentChange: models.Float(seg.PercentChange),
		}
	}

	s.logger.Debug("Extrema found",
		"length", series.Len(),
		"sample_window", window,
		"extrema", len(summary),
		"latency_ms", time.Since(start).Milliseconds())

	return resp, nil
}
