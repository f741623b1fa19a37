// Package services provides the business logic layer between handlers and the
// analytics core. Services parse wire requests, run the numeric code and shape
// results for the wire; every failure leaves as a *ServiceError.
package services

import (
	"errors"
	"fmt"

	"github.com/soltixdb/curvecast/internal/analytics/fitter"
)

// Error codes returned by the service layer
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeInvalidCurve     = "INVALID_CURVE"
	CodeInvalidWindow    = "INVALID_WINDOW"
	CodeNonConvergence   = "NON_CONVERGENCE"
	CodePeakNotBracketed = "PEAK_NOT_BRACKETED"
	CodeJobNotFound      = "JOB_NOT_FOUND"
	CodeQueueUnavailable = "QUEUE_UNAVAILABLE"
	CodeCacheUnavailable = "CACHE_UNAVAILABLE"
	CodeInternal         = "INTERNAL_ERROR"
)

// ServiceError represents a service layer error
type ServiceError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *ServiceError) Error() string {
	return e.Message
}

// NewServiceError creates a new ServiceError
func NewServiceError(code, message string) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
	}
}

// NewServiceErrorWithDetails creates a new ServiceError with details
func NewServiceErrorWithDetails(code, message string, details map[string]interface{}) *ServiceError {
	return &ServiceError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// invalidRequest builds an INVALID_REQUEST error
func invalidRequest(format string, args ...interface{}) *ServiceError {
	return NewServiceError(CodeInvalidRequest, fmt.Sprintf(format, args...))
}

// fromAnalyticsError maps fitter sentinel errors onto service codes
func fromAnalyticsError(err error) *ServiceError {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr
	}

	switch {
	case errors.Is(err, fitter.ErrInvalidWindow):
		return NewServiceError(CodeInvalidWindow, err.Error())
	case errors.Is(err, fitter.ErrNonConvergence):
		return NewServiceError(CodeNonConvergence, err.Error())
	case errors.Is(err, fitter.ErrPeakNotBracketed):
		return NewServiceError(CodePeakNotBracketed, err.Error())
	default:
		return NewServiceError(CodeInternal, err.Error())
	}
}
