// Package spatialmath defines the geometric primitives used to visualize
// the reachable sets reported by the safety shield.
package spatialmath

import (
	"fmt"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/safehri/hrgym/utils"
)

// capsuleRecordLen is the width of one flat capsule record as returned by
// the safety shield binding: segment start, segment end, radius.
const capsuleRecordLen = 7

// Capsule is a capsule-shaped bounding volume approximating the swept
// volume a robot or human segment could occupy.
//
// ....___________________
// .../                   \
// ..|  A-------O-------B  |
// ...\___________________/
//
// A and B are the endpoints of the internal line segment; every point
// within Radius of the segment belongs to the capsule.
type Capsule struct {
	start  r3.Vector
	end    r3.Vector
	radius float64
}

// NewCapsule instantiates a new Capsule from its segment endpoints and radius.
func NewCapsule(start, end r3.Vector, radius float64) (*Capsule, error) {
	if radius <= 0 {
		return nil, errors.Errorf("capsule radius must be positive, got %f", radius)
	}
	return &Capsule{start: start, end: end, radius: radius}, nil
}

// Update mutates the capsule in place. Used every control tick so that
// rendering the reach sets does not allocate.
func (c *Capsule) Update(start, end r3.Vector, radius float64) {
	c.start = start
	c.end = end
	c.radius = radius
}

// Start returns the proximal segment endpoint.
func (c *Capsule) Start() r3.Vector {
	return c.start
}

// End returns the distal segment endpoint.
func (c *Capsule) End() r3.Vector {
	return c.end
}

// Radius returns the capsule radius.
func (c *Capsule) Radius() float64 {
	return c.radius
}

// Center returns the midpoint of the capsule segment.
func (c *Capsule) Center() r3.Vector {
	return c.start.Add(c.end).Mul(0.5)
}

// SegmentLength returns the length of the internal line segment.
func (c *Capsule) SegmentLength() float64 {
	return c.end.Sub(c.start).Norm()
}

// Axis returns the unit vector pointing from the start endpoint towards
// the end endpoint, or the zero vector for a degenerate segment.
func (c *Capsule) Axis() r3.Vector {
	seg := c.end.Sub(c.start)
	norm := seg.Norm()
	if norm == 0 {
		return r3.Vector{}
	}
	return seg.Mul(1 / norm)
}

// String returns a human readable string that represents the capsule.
func (c *Capsule) String() string {
	return fmt.Sprintf("Type: Capsule, Radius: %.3f, SegmentLength: %.3f", c.radius, c.SegmentLength())
}

// AlmostEqual compares the capsule with another capsule and checks if they are equivalent.
func (c *Capsule) AlmostEqual(other *Capsule) bool {
	const epsilon = 1e-8
	return R3VectorAlmostEqual(c.start, other.start, epsilon) &&
		R3VectorAlmostEqual(c.end, other.end, epsilon) &&
		utils.Float64AlmostEqual(c.radius, other.radius, epsilon)
}

// R3VectorAlmostEqual compares two r3.Vectors element-wise.
func R3VectorAlmostEqual(a, b r3.Vector, epsilon float64) bool {
	return utils.Float64AlmostEqual(a.X, b.X, epsilon) &&
		utils.Float64AlmostEqual(a.Y, b.Y, epsilon) &&
		utils.Float64AlmostEqual(a.Z, b.Z, epsilon)
}

func capsuleFromRecord(record []float64) (r3.Vector, r3.Vector, float64, error) {
	if len(record) != capsuleRecordLen {
		return r3.Vector{}, r3.Vector{}, 0, errors.Errorf(
			"capsule record must have %d values, got %d", capsuleRecordLen, len(record))
	}
	start := r3.Vector{X: record[0], Y: record[1], Z: record[2]}
	end := r3.Vector{X: record[3], Y: record[4], Z: record[5]}
	return start, end, record[6], nil
}

// CapsulesFromFlat builds a fresh capsule list from the flat records
// returned by the safety shield binding.
func CapsulesFromFlat(records [][]float64) ([]*Capsule, error) {
	capsules := make([]*Capsule, 0, len(records))
	for _, record := range records {
		start, end, radius, err := capsuleFromRecord(record)
		if err != nil {
			return nil, err
		}
		capsule, err := NewCapsule(start, end, radius)
		if err != nil {
			return nil, err
		}
		capsules = append(capsules, capsule)
	}
	return capsules, nil
}

// UpdateCapsulesFromFlat refreshes dst with the given records. The
// capsules are updated in place when the record count is unchanged from
// the previous call, otherwise the list is reinitialized.
func UpdateCapsulesFromFlat(dst []*Capsule, records [][]float64) ([]*Capsule, error) {
	if len(dst) != len(records) {
		return CapsulesFromFlat(records)
	}
	for i, record := range records {
		start, end, radius, err := capsuleFromRecord(record)
		if err != nil {
			return nil, err
		}
		dst[i].Update(start, end, radius)
	}
	return dst, nil
}
