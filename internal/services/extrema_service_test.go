package services

import (
	"context"
	"math"
	"testing"

	"github.com/soltixdb/curvecast/internal/config"
	"github.com/soltixdb/curvecast/internal/logging"
	"github.com/soltixdb/curvecast/internal/models"
)

func sinePayload() models.SeriesPayload {
	values := make([]float64, 41)
	for i := range values {
		values[i] = 10 * math.Sin(2*math.Pi*float64(i)/20)
	}
	return payload(testStart, values...)
}

func TestExtremaService_Find(t *testing.T) {
	svc := NewExtremaService(logging.NewNop(), config.ExtremaConfig{SampleWindow: 7})

	resp, err := svc.Find(context.Background(), &models.ExtremaRequest{
		Series:       sinePayload(),
		SampleWindow: 3,
	})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}

	if resp.SampleWindow != 3 {
		t.Errorf("Expected sample window 3, got %d", resp.SampleWindow)
	}
	wantKinds := []string{"endpoint", "local_max", "local_min", "local_max", "local_min", "endpoint"}
	if len(resp.Extrema) != len(wantKinds) {
		t.Fatalf("Expected %d extrema, got %+v", len(wantKinds), resp.Extrema)
	}
	for i, k := range wantKinds {
		if resp.Extrema[i].Kind != k {
			t.Errorf("extremum %d: expected %s, got %s", i, k, resp.Extrema[i].Kind)
		}
	}
	if resp.Extrema[1].Date != "2020-03-06" {
		t.Errorf("Expected first maximum on 2020-03-06, got %s", resp.Extrema[1].Date)
	}

	if len(resp.Segments) != len(resp.Extrema)-1 {
		t.Fatalf("Expected %d segments, got %d", len(resp.Extrema)-1, len(resp.Segments))
	}
	first := resp.Segments[0]
	if first.Direction != "rising" || first.Days != 5 || first.From != testStart {
		t.Errorf("Unexpected first segment: %+v", first)
	}
}

func TestExtremaService_DefaultWindow(t *testing.T) {
	svc := NewExtremaService(logging.NewNop(), config.ExtremaConfig{SampleWindow: 5})

	resp, err := svc.Find(context.Background(), &models.ExtremaRequest{Series: sinePayload()})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if resp.SampleWindow != 5 {
		t.Errorf("Expected configured sample window 5, got %d", resp.SampleWindow)
	}

	svc = NewExtremaService(logging.NewNop(), config.ExtremaConfig{})
	resp, err = svc.Find(context.Background(), &models.ExtremaRequest{Series: sinePayload()})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if resp.SampleWindow != 7 {
		t.Errorf("Expected built-in sample window 7, got %d", resp.SampleWindow)
	}
}

func TestExtremaService_Errors(t *testing.T) {
	svc := NewExtremaService(logging.NewNop(), config.ExtremaConfig{})

	_, err := svc.Find(context.Background(), &models.ExtremaRequest{Series: sinePayload(), SampleWindow: -1})
	assertCode(t, err, CodeInvalidRequest)

	_, err = svc.Find(context.Background(), &models.ExtremaRequest{Series: payload("2020-13-01", 1)})
	assertCode(t, err, CodeInvalidRequest)
}

func TestExtremaService_EmptySeries(t *testing.T) {
	svc := NewExtremaService(logging.NewNop(), config.ExtremaConfig{})

	resp, err := svc.Find(context.Background(), &models.ExtremaRequest{Series: payload(testStart)})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(resp.Extrema) != 0 || len(resp.Segments) != 0 {
		t.Errorf("Expected no extrema for an empty series, got %+v", resp)
	}
}
