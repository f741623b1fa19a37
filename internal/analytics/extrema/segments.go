package extrema

import (
	"math"
	"time"
)

// Direction describes the movement between two extrema
type Direction string

const (
	Rising  Direction = "rising"
	Falling Direction = "falling"
	Flat    Direction = "flat"
)

// Segment is the stretch between two consecutive extrema
type Segment struct {
	From          time.Time `json:"from"`
	To            time.Time `json:"to"`
	Days          int       `json:"days"`
	Direction     Direction `json:"direction"`
	Change        float64   `json:"change"`
	PercentChange float64   `json:"percent_change"` // relative to the starting value; Inf from zero
}

// Segments turns a summary into the trend legs between its records.
func Segments(s Summary) []Segment {
	if len(s) < 2 {
		return nil
	}
	out := make([]Segment, 0, len(s)-1)
	for i := 1; i < len(s); i++ {
		from, to := s[i-1], s[i]
		change := to.Value - from.Value

		dir := Flat
		switch {
		case change > 0:
			dir = Rising
		case change < 0:
			dir = Falling
		}

		out = append(out, Segment{
			From:          from.Date,
			To:            to.Date,
			Days:          int(math.Round(to.Date.Sub(from.Date).Hours() / 24)),
			Direction:     dir,
			Change:        change,
			PercentChange: change / math.Abs(from.Value) * 100,
		})
	}
	return out
}
