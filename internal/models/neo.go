package models

import (
	"fmt"
	"math"
	"time"
)

const (
	// TimeLayout is how approach times are rendered in output and on the terminal.
	TimeLayout = "2006-01-02 15:04"

	// CADTimeLayout is the layout of the "cd" column in close-approach extracts.
	CADTimeLayout = "2006-Jan-02 15:04"

	// DateLayout is the layout accepted for calendar-date criteria.
	DateLayout = "2006-01-02"
)

// NEOID indexes a NearEarthObject within the database that owns it.
type NEOID int

// ApproachID indexes a CloseApproach within the database that owns it.
type ApproachID int

// NoNEO marks a close approach whose designation matched no loaded object.
const NoNEO NEOID = -1

// NearEarthObject is a catalogued near-Earth object.
type NearEarthObject struct {
	ID          NEOID
	Designation string
	Name        *string // nil when the object has no name; never points at ""
	Diameter    float64 // km, NaN when unknown
	Hazardous   bool

	// Approaches lists this object's close approaches in load order.
	// Empty until the database links it.
	Approaches []ApproachID
}

// NewNearEarthObject builds an unlinked object. An empty name is stored as
// no name at all.
func NewNearEarthObject(designation, name string, diameter float64, hazardous bool) NearEarthObject {
	neo := NearEarthObject{
		ID:          NoNEO,
		Designation: designation,
		Diameter:    diameter,
		Hazardous:   hazardous,
	}
	if name != "" {
		neo.Name = &name
	}
	return neo
}

// DisplayName returns the name, or "" when the object has none.
func (n *NearEarthObject) DisplayName() string {
	if n.Name == nil {
		return ""
	}
	return *n.Name
}

// Fullname renders the designation followed by the name in parentheses, if any.
func (n *NearEarthObject) Fullname() string {
	if n.Name == nil {
		return n.Designation
	}
	return fmt.Sprintf("%s (%s)", n.Designation, *n.Name)
}

// HasDiameter reports whether a diameter estimate is known.
func (n *NearEarthObject) HasDiameter() bool {
	return !math.IsNaN(n.Diameter)
}

func (n *NearEarthObject) String() string {
	hazard := "is not"
	if n.Hazardous {
		hazard = "is"
	}
	if !n.HasDiameter() {
		return fmt.Sprintf("NEO %s has an unknown diameter and %s potentially hazardous.", n.Fullname(), hazard)
	}
	return fmt.Sprintf("NEO %s has a diameter of %.3f km and %s potentially hazardous.", n.Fullname(), n.Diameter, hazard)
}

// CloseApproach is one recorded pass of an object near Earth.
type CloseApproach struct {
	ID          ApproachID
	Designation string
	Time        time.Time // UTC
	Distance    float64   // au
	Velocity    float64   // km/s
	NEO         NEOID
}

// NewCloseApproach builds an unlinked close approach.
func NewCloseApproach(designation string, t time.Time, distance, velocity float64) CloseApproach {
	return CloseApproach{
		ID:          -1,
		Designation: designation,
		Time:        t.UTC(),
		Distance:    distance,
		Velocity:    velocity,
		NEO:         NoNEO,
	}
}

// Linked reports whether the approach was matched to a loaded object.
func (ca *CloseApproach) Linked() bool {
	return ca.NEO != NoNEO
}

// TimeString renders the approach time with minute resolution.
func (ca *CloseApproach) TimeString() string {
	return ca.Time.Format(TimeLayout)
}

func (ca *CloseApproach) String() string {
	return fmt.Sprintf("At %s, '%s' approaches Earth at a distance of %.2f au and a velocity of %.2f km/s.",
		ca.TimeString(), ca.Designation, ca.Distance, ca.Velocity)
}

// Record pairs a close approach with the object it was linked to. NEO is nil
// when the approach is unlinked.
type Record struct {
	Approach *CloseApproach
	NEO      *NearEarthObject
}

func (r Record) String() string {
	if r.NEO == nil {
		return r.Approach.String()
	}
	return fmt.Sprintf("At %s, '%s' approaches Earth at a distance of %.2f au and a velocity of %.2f km/s.",
		r.Approach.TimeString(), r.NEO.Fullname(), r.Approach.Distance, r.Approach.Velocity)
}
