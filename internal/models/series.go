package models

import (
	"fmt"
	"time"

	"github.com/soltixdb/curvecast/internal/analytics"
	"github.com/soltixdb/curvecast/internal/analytics/timeseries"
	"github.com/soltixdb/curvecast/internal/utils"
)

// SeriesPayload is the wire form of a daily time series
type SeriesPayload struct {
	Start   string  `json:"start"`             // Format: YYYY-MM-DD
	Values  []Float `json:"values"`            // null entries are missing data
	Default Float   `json:"default,omitempty"` // value outside the stored range
	Integer bool    `json:"integer,omitempty"`
}

// NewSeriesPayload renders a series for the wire
func NewSeriesPayload(s *timeseries.TimeSeries) SeriesPayload {
	return SeriesPayload{
		Start:   FormatDate(s.Start()),
		Values:  Floats(s.Values()),
		Default: Float(s.Default()),
		Integer: s.IsInteger(),
	}
}

// ToTimeSeries validates the payload and builds the series
func (p SeriesPayload) ToTimeSeries() (*timeseries.TimeSeries, error) {
	if p.Start == "" {
		return nil, fmt.Errorf("series.start is required")
	}
	start, err := analytics.ParseDate(p.Start)
	if err != nil {
		return nil, fmt.Errorf("series.start must be YYYY-MM-DD: %w", err)
	}
	if len(p.Values) > utils.MaxSeriesLength {
		return nil, fmt.Errorf("series has %d values, the limit is %d", len(p.Values), utils.MaxSeriesLength)
	}

	values := make([]float64, len(p.Values))
	for i, v := range p.Values {
		values[i] = float64(v)
	}

	opts := []timeseries.Option{timeseries.WithDefault(float64(p.Default))}
	if p.Integer {
		opts = append(opts, timeseries.AsInteger())
	}
	return timeseries.New(start, values, opts...), nil
}

// WindowPayload is an inclusive date range; empty sides are open
type WindowPayload struct {
	From string `json:"from,omitempty"` // Format: YYYY-MM-DD
	To   string `json:"to,omitempty"`   // Format: YYYY-MM-DD
}

// NewWindowPayload renders a window for the wire
func NewWindowPayload(w analytics.Window) WindowPayload {
	return WindowPayload{From: FormatDate(w.From), To: FormatDate(w.To)}
}

// ToWindow parses the payload; a nil payload is the open window
func (p *WindowPayload) ToWindow() (analytics.Window, error) {
	if p == nil {
		return analytics.Window{}, nil
	}
	from, err := ParseOptionalDate(p.From)
	if err != nil {
		return analytics.Window{}, fmt.Errorf("window.from: %w", err)
	}
	to, err := ParseOptionalDate(p.To)
	if err != nil {
		return analytics.Window{}, fmt.Errorf("window.to: %w", err)
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return analytics.Window{}, fmt.Errorf("window.to is before window.from")
	}
	return analytics.NewWindow(from, to), nil
}

// FormatDate renders a calendar day, or "" for the zero time
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(analytics.DateLayout)
}

// ParseOptionalDate parses YYYY-MM-DD; the empty string is the zero time
func ParseOptionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := analytics.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not a YYYY-MM-DD date", s)
	}
	return t, nil
}
