package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/soltixdb/curvecast/internal/analytics/fitter"
)

func TestServiceError_Error(t *testing.T) {
	err := &ServiceError{
		Code:    CodeInvalidWindow,
		Message: "no observations in fit window",
	}

	if err.Error() != "no observations in fit window" {
		t.Errorf("Expected message as error text, got '%s'", err.Error())
	}

	var _ error = err
}

func TestNewServiceError(t *testing.T) {
	err := NewServiceError(CodeJobNotFound, "job not found: abc")

	if err.Code != CodeJobNotFound {
		t.Errorf("Expected code '%s', got '%s'", CodeJobNotFound, err.Code)
	}
	if err.Message != "job not found: abc" {
		t.Errorf("Expected message 'job not found: abc', got '%s'", err.Message)
	}
	if err.Details != nil {
		t.Errorf("Expected nil details, got %v", err.Details)
	}
}

func TestNewServiceErrorWithDetails(t *testing.T) {
	err := invalidCurve("spline", []string{"logistic", "gompertz"})

	if err.Code != CodeInvalidCurve {
		t.Errorf("Expected code '%s', got '%s'", CodeInvalidCurve, err.Code)
	}
	if !strings.Contains(err.Message, "spline") {
		t.Errorf("Expected message to name the curve, got '%s'", err.Message)
	}
	available, ok := err.Details["available"].([]string)
	if !ok || len(available) != 2 {
		t.Errorf("Expected two available curves in details, got %v", err.Details)
	}
}

func TestInvalidRequest(t *testing.T) {
	err := invalidRequest("window %d exceeds %d", 9, 7)

	if err.Code != CodeInvalidRequest {
		t.Errorf("Expected code '%s', got '%s'", CodeInvalidRequest, err.Code)
	}
	if err.Message != "window 9 exceeds 7" {
		t.Errorf("Expected formatted message, got '%s'", err.Message)
	}
}

func TestServiceError_JSONMarshal(t *testing.T) {
	err := NewServiceErrorWithDetails(CodeInvalidRequest, "bad", map[string]interface{}{"index": 1})

	data, marshalErr := json.Marshal(err)
	if marshalErr != nil {
		t.Fatalf("Failed to marshal: %v", marshalErr)
	}
	if string(data) != `{"code":"INVALID_REQUEST","message":"bad","details":{"index":1}}` {
		t.Errorf("Unexpected JSON: %s", data)
	}

	data, _ = json.Marshal(NewServiceError(CodeInternal, "boom"))
	if strings.Contains(string(data), "details") {
		t.Errorf("Expected details to be omitted, got %s", data)
	}
}

func TestFromAnalyticsError(t *testing.T) {
	passthrough := NewServiceError(CodeJobNotFound, "missing")

	tests := []struct {
		name string
		err  error
		code string
	}{
		{"invalid window", fitter.ErrInvalidWindow, CodeInvalidWindow},
		{"wrapped invalid window", fmt.Errorf("fit logistic: %w", fitter.ErrInvalidWindow), CodeInvalidWindow},
		{"non convergence", fmt.Errorf("after 10 iterations: %w", fitter.ErrNonConvergence), CodeNonConvergence},
		{"peak not bracketed", fitter.ErrPeakNotBracketed, CodePeakNotBracketed},
		{"service error", fmt.Errorf("wrapped: %w", passthrough), CodeJobNotFound},
		{"unknown", errors.New("disk on fire"), CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fromAnalyticsError(tt.err)
			if got.Code != tt.code {
				t.Errorf("Expected code %s, got %s", tt.code, got.Code)
			}
		})
	}

	if fromAnalyticsError(passthrough) != passthrough {
		t.Error("Expected a *ServiceError to pass through unchanged")
	}
}
