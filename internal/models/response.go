package models

import (
	"github.com/soltixdb/curvecast/internal/analytics/fitter"
	"github.com/soltixdb/curvecast/internal/analytics/growth"
)

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// FitResponse represents a fitted curve
type FitResponse struct {
	Params       growth.Params `json:"params"`
	DayZero      string        `json:"day_zero"`
	FitWindow    WindowPayload `json:"fit_window"`
	Mode         string        `json:"mode"`
	Observations int           `json:"observations"`
	Iterations   int           `json:"iterations"`
	Evaluations  int           `json:"evaluations"`
	Cost         Float         `json:"cost"`
	RMSE         Float         `json:"rmse"`
}

// PeakView is the day of fastest growth
type PeakView struct {
	Date  string `json:"date"`
	X     Float  `json:"x"`
	Value Float  `json:"value"` // daily growth at the peak
}

// CheckpointView is the projection at one date
type CheckpointView struct {
	Date  string `json:"date"`
	Total Float  `json:"total"`
	Daily Float  `json:"daily"`
}

// AccuracyView holds forecast scores; absent means no data in the window
type AccuracyView struct {
	RMSETotal *Float `json:"rmse_total,omitempty"`
	MASETotal *Float `json:"mase_total,omitempty"`
	RMSEDaily *Float `json:"rmse_daily,omitempty"`
	MASEDaily *Float `json:"mase_daily,omitempty"`
}

// ForecastResponse represents the complete forecast response
type ForecastResponse struct {
	Algorithm        string           `json:"algorithm"`
	Params           growth.Params    `json:"params"`
	DayZero          string           `json:"day_zero"`
	FitWindow        WindowPayload    `json:"fit_window"`
	Mode             string           `json:"mode"`
	FitRMSE          Float            `json:"fit_rmse"`
	Observations     int              `json:"observations"`
	Iterations       int              `json:"iterations"`
	Evaluations      int              `json:"evaluations"`
	Peak             *PeakView        `json:"peak,omitempty"`
	PeakError        string           `json:"peak_error,omitempty"`
	Checkpoints      []CheckpointView `json:"checkpoints"`
	EvaluationWindow WindowPayload    `json:"evaluation_window"`
	Accuracy         AccuracyView     `json:"accuracy"`
	Cached           bool             `json:"cached"`
}

// EvaluatePoint is the curve at one x
type EvaluatePoint struct {
	X          Float  `json:"x"`
	Date       string `json:"date"`
	Total      Float  `json:"total"`
	Daily      Float  `json:"daily"`
	Derivative Float  `json:"derivative"`
}

// EvaluateResponse represents curve evaluation results
type EvaluateResponse struct {
	Params  growth.Params   `json:"params"`
	DayZero string          `json:"day_zero"`
	Points  []EvaluatePoint `json:"points"`
}

// PeakResponse represents the located peak of a curve
type PeakResponse struct {
	Params  growth.Params  `json:"params"`
	DayZero string         `json:"day_zero"`
	Bracket fitter.Bracket `json:"bracket"`
	Peak    PeakView       `json:"peak"`
}

// AccuracyResponse represents RMSE and MASE over a window
type AccuracyResponse struct {
	Window WindowPayload `json:"window"`
	Daily  bool          `json:"daily"`
	RMSE   *Float        `json:"rmse,omitempty"`
	MASE   *Float        `json:"mase,omitempty"`
}

// ExtremumView is one turning point
type ExtremumView struct {
	Date      string `json:"date"`
	Value     Float  `json:"value"`
	Kind      string `json:"kind"`
	Synthetic bool   `json:"synthetic,omitempty"`
}

// SegmentView is the trend between two turning points
type SegmentView struct {
	From          string `json:"from"`
	To            string `json:"to"`
	Days          int    `json:"days"`
	Direction     string `json:"direction"`
	Change        Float  `json:"change"`
	PercentChange Float  `json:"percent_change"`
}

// ExtremaResponse represents an extrema summary
type ExtremaResponse struct {
	SampleWindow int            `json:"sample_window"`
	Extrema      []ExtremumView `json:"extrema"`
	Segments     []SegmentView  `json:"segments"`
}

// SeriesResponse wraps a derived or combined series
type SeriesResponse struct {
	Series SeriesPayload `json:"series"`
}

// CurveInfo describes one curve kind
type CurveInfo struct {
	Name       string   `json:"name"`
	Params     []string `json:"params"`
	Degenerate bool     `json:"degenerate"`
}

// CurveListResponse lists curve kinds and forecasters
type CurveListResponse struct {
	Curves      []CurveInfo `json:"curves"`
	Forecasters []string    `json:"forecasters"`
}

// JobStatus is the lifecycle state of a background fit job
type JobStatus string

const (
	JobPending   JobStatus = "pending"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// FitJob is the queue message for a background forecast
type FitJob struct {
	JobID       string          `json:"job_id"`
	SubmittedAt string          `json:"submitted_at"`
	Request     ForecastRequest `json:"request"`
}

// JobResponse represents a job record
type JobResponse struct {
	JobID       string            `json:"job_id"`
	Status      JobStatus         `json:"status"`
	SubmittedAt string            `json:"submitted_at"`
	CompletedAt string            `json:"completed_at,omitempty"`
	Error       *ErrorDetail      `json:"error,omitempty"`
	Result      *ForecastResponse `json:"result,omitempty"`
}

// ErrorResponse represents error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail represents error details
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Path    string                 `json:"path,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}
