package filters

import (
	"iter"
	"time"
)

// Criteria holds the optional query criteria. A nil field is unset; a
// pointer to a zero value (0, false) is a real criterion.
type Criteria struct {
	Date        *time.Time
	StartDate   *time.Time
	EndDate     *time.Time
	DistanceMin *float64
	DistanceMax *float64
	VelocityMin *float64
	VelocityMax *float64
	DiameterMin *float64
	DiameterMax *float64
	Hazardous   *bool
}

// Create returns one filter per set criterion. An empty Criteria yields no
// filters, which matches everything.
func Create(c Criteria) []Filter {
	var fs []Filter

	if c.Date != nil {
		fs = append(fs, DateFilter{Op: OpEq, Value: *c.Date})
	}
	if c.StartDate != nil {
		fs = append(fs, DateFilter{Op: OpGe, Value: *c.StartDate})
	}
	if c.EndDate != nil {
		fs = append(fs, DateFilter{Op: OpLe, Value: *c.EndDate})
	}
	if c.DistanceMin != nil {
		fs = append(fs, DistanceFilter{Op: OpGe, Value: *c.DistanceMin})
	}
	if c.DistanceMax != nil {
		fs = append(fs, DistanceFilter{Op: OpLe, Value: *c.DistanceMax})
	}
	if c.VelocityMin != nil {
		fs = append(fs, VelocityFilter{Op: OpGe, Value: *c.VelocityMin})
	}
	if c.VelocityMax != nil {
		fs = append(fs, VelocityFilter{Op: OpLe, Value: *c.VelocityMax})
	}
	if c.DiameterMin != nil {
		fs = append(fs, DiameterFilter{Op: OpGe, Value: *c.DiameterMin})
	}
	if c.DiameterMax != nil {
		fs = append(fs, DiameterFilter{Op: OpLe, Value: *c.DiameterMax})
	}
	if c.Hazardous != nil {
		fs = append(fs, HazardousFilter{Op: OpEq, Value: *c.Hazardous})
	}

	return fs
}

// Limit yields at most the first n elements of seq. When n <= 0 seq is
// returned unchanged.
func Limit[T any](seq iter.Seq[T], n int) iter.Seq[T] {
	if n <= 0 {
		return seq
	}
	return func(yield func(T) bool) {
		remaining := n
		for v := range seq {
			if !yield(v) {
				return
			}
			remaining--
			if remaining == 0 {
				return
			}
		}
	}
}
