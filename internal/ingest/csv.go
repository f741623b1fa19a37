// Package ingest loads daily series from delimited text files.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/soltixdb/curvecast/internal/analytics"
	"github.com/soltixdb/curvecast/internal/analytics/timeseries"
)

// ErrNoRows is returned when a file has a header but no data
var ErrNoRows = errors.New("no data rows")

// CSVOptions describes the layout of a CSV file
type CSVOptions struct {
	DateColumn  string // header of the date column (default: "date")
	ValueColumn string // header of the value column (default: "value")
	DateFormat  string // Go time layout (default: "2006-01-02")
	Comma       rune   // field delimiter (default: ',')
	Integer     bool   // mark the series as whole counts
}

func (o CSVOptions) withDefaults() CSVOptions {
	if o.DateColumn == "" {
		o.DateColumn = "date"
	}
	if o.ValueColumn == "" {
		o.ValueColumn = "value"
	}
	if o.DateFormat == "" {
		o.DateFormat = analytics.DateLayout
	}
	if o.Comma == 0 {
		o.Comma = ','
	}
	return o
}

// LoadCSVFile opens path and loads it with LoadCSV
func LoadCSVFile(path string, opts CSVOptions) (*timeseries.TimeSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	series, err := LoadCSV(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return series, nil
}

// LoadCSV reads a header row followed by one row per observation. Rows may be
// unordered and days may be missing; missing days and empty or "NaN" cells
// become NaN. When a day repeats, the last row wins.
func LoadCSV(r io.Reader, opts CSVOptions) (*timeseries.TimeSeries, error) {
	opts = opts.withDefaults()

	reader := csv.NewReader(r)
	reader.Comma = opts.Comma
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	dateIdx, valueIdx := -1, -1
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		switch {
		case strings.EqualFold(name, opts.DateColumn):
			dateIdx = i
		case strings.EqualFold(name, opts.ValueColumn):
			valueIdx = i
		}
	}
	if dateIdx < 0 {
		return nil, fmt.Errorf("column %q not found", opts.DateColumn)
	}
	if valueIdx < 0 {
		return nil, fmt.Errorf("column %q not found", opts.ValueColumn)
	}

	var points analytics.TimeSeriesData
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if len(record) <= dateIdx || len(record) <= valueIdx {
			return nil, fmt.Errorf("line %d: expected at least %d fields, got %d",
				line, max(dateIdx, valueIdx)+1, len(record))
		}

		date, err := time.Parse(opts.DateFormat, strings.TrimSpace(record[dateIdx]))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid date %q: %w", line, record[dateIdx], err)
		}
		value, err := parseValue(record[valueIdx])
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid value %q: %w", line, record[valueIdx], err)
		}
		points = append(points, analytics.TimeSeriesPoint{Time: date, Value: value})
	}

	if len(points) == 0 {
		return nil, ErrNoRows
	}

	seriesOpts := []timeseries.Option{timeseries.WithDefault(math.NaN())}
	if opts.Integer {
		seriesOpts = append(seriesOpts, timeseries.AsInteger())
	}
	return timeseries.FromPoints(points, seriesOpts...), nil
}

func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") || strings.EqualFold(s, "null") {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}
