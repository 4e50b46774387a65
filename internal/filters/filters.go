// Package filters turns user criteria into predicates over close-approach
// records and bounds result streams.
//
// A Filter compares one attribute of a record against a fixed reference value
// with a fixed Op. There are exactly five kinds: DateFilter, DistanceFilter,
// VelocityFilter, DiameterFilter and HazardousFilter. The last two read the
// linked object and report AttributeUnavailableError when there is none.
package filters

import (
	"fmt"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/ajitpratap0/neo-explorer/internal/models"
)

// Op is the comparison a filter applies as attribute OP value.
type Op int

const (
	OpEq Op = iota
	OpGe
	OpLe
)

func (op Op) String() string {
	switch op {
	case OpEq:
		return "=="
	case OpGe:
		return ">="
	case OpLe:
		return "<="
	default:
		return "Op(" + strconv.Itoa(int(op)) + ")"
	}
}

// holds reports whether c, the three-way comparison of attribute and value,
// satisfies op.
func (op Op) holds(c int) bool {
	switch op {
	case OpEq:
		return c == 0
	case OpGe:
		return c >= 0
	case OpLe:
		return c <= 0
	default:
		return false
	}
}

// floats applies op with IEEE semantics, so NaN satisfies nothing.
func (op Op) floats(a, b float64) bool {
	switch op {
	case OpEq:
		return a == b
	case OpGe:
		return a >= b
	case OpLe:
		return a <= b
	default:
		return false
	}
}

// AttributeUnavailableError is returned when a filter needs the linked object
// of an approach that has none.
type AttributeUnavailableError struct {
	Attribute   string
	Designation string
}

func (e *AttributeUnavailableError) Error() string {
	return fmt.Sprintf("%s unavailable: approach of %q is not linked to a near-Earth object", e.Attribute, e.Designation)
}

// IsAttributeUnavailable reports whether err is or wraps an AttributeUnavailableError.
func IsAttributeUnavailable(err error) bool {
	var target *AttributeUnavailableError
	return errors.As(err, &target)
}

// Filter is a predicate over a close-approach record.
type Filter interface {
	Match(r models.Record) (bool, error)
	String() string
}

// DateFilter compares the calendar date (UTC) of the approach time.
type DateFilter struct {
	Op    Op
	Value time.Time
}

func (f DateFilter) Match(r models.Record) (bool, error) {
	return f.Op.holds(dateOf(r.Approach.Time).Compare(dateOf(f.Value))), nil
}

func (f DateFilter) String() string {
	return fmt.Sprintf("DateFilter(date %s %s)", f.Op, f.Value.Format(models.DateLayout))
}

// DistanceFilter compares the nominal approach distance in au.
type DistanceFilter struct {
	Op    Op
	Value float64
}

func (f DistanceFilter) Match(r models.Record) (bool, error) {
	return f.Op.floats(r.Approach.Distance, f.Value), nil
}

func (f DistanceFilter) String() string {
	return fmt.Sprintf("DistanceFilter(distance %s %g)", f.Op, f.Value)
}

// VelocityFilter compares the relative approach velocity in km/s.
type VelocityFilter struct {
	Op    Op
	Value float64
}

func (f VelocityFilter) Match(r models.Record) (bool, error) {
	return f.Op.floats(r.Approach.Velocity, f.Value), nil
}

func (f VelocityFilter) String() string {
	return fmt.Sprintf("VelocityFilter(velocity %s %g)", f.Op, f.Value)
}

// DiameterFilter compares the diameter of the linked object in km.
type DiameterFilter struct {
	Op    Op
	Value float64
}

func (f DiameterFilter) Match(r models.Record) (bool, error) {
	if r.NEO == nil {
		return false, &AttributeUnavailableError{Attribute: "diameter", Designation: r.Approach.Designation}
	}
	return f.Op.floats(r.NEO.Diameter, f.Value), nil
}

func (f DiameterFilter) String() string {
	return fmt.Sprintf("DiameterFilter(diameter %s %g)", f.Op, f.Value)
}

// HazardousFilter compares the hazard flag of the linked object, ordering
// false before true.
type HazardousFilter struct {
	Op    Op
	Value bool
}

func (f HazardousFilter) Match(r models.Record) (bool, error) {
	if r.NEO == nil {
		return false, &AttributeUnavailableError{Attribute: "hazardous", Designation: r.Approach.Designation}
	}
	return f.Op.holds(boolInt(r.NEO.Hazardous) - boolInt(f.Value)), nil
}

func (f HazardousFilter) String() string {
	return fmt.Sprintf("HazardousFilter(hazardous %s %t)", f.Op, f.Value)
}

// MatchAll reports whether r satisfies every filter, stopping at the first
// that fails or errors.
func MatchAll(fs []Filter, r models.Record) (bool, error) {
	for _, f := range fs {
		ok, err := f.Match(r)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		return time.Time{}, errors.WithHint(errors.Wrapf(err, "invalid date %q", s), "dates are written YYYY-MM-DD")
	}
	return t, nil
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
