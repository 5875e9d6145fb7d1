// Package shield defines the boundary to the external failsafe trajectory
// shield. The shield certifies or corrects a planned trajectory against
// human-collision risk; all reachability-set computation and intervention
// decisions happen behind this interface.
package shield

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// Type selects the intervention strategy of the shield.
type Type int

// The supported shield types.
const (
	// TypeOff disables all interventions; desired trajectories pass through.
	TypeOff Type = iota
	// TypeSSM is speed and separation monitoring.
	TypeSSM
	// TypePFL is power and force limiting.
	TypePFL
)

// String returns the configuration name of the shield type.
func (t Type) String() string {
	switch t {
	case TypeOff:
		return "OFF"
	case TypeSSM:
		return "SSM"
	case TypePFL:
		return "PFL"
	default:
		return "UNKNOWN"
	}
}

// TypeFromString parses a shield type from its configuration name.
func TypeFromString(s string) (Type, error) {
	switch s {
	case "OFF":
		return TypeOff, nil
	case "SSM":
		return TypeSSM, nil
	case "PFL":
		return TypePFL, nil
	default:
		return TypeOff, errors.Errorf("invalid shield type %q, valid options are: OFF, SSM, PFL", s)
	}
}

// Motion is one sample of the safe desired joint trajectory.
type Motion struct {
	Angle        []float64
	Velocity     []float64
	Acceleration []float64
}

// BasePose is the placement of the robot base in the world frame.
type BasePose struct {
	X     float64
	Y     float64
	Z     float64
	Roll  float64
	Pitch float64
	Yaw   float64
}

// Shield is the narrow, versioned interface behind which the external
// reachability and shielding algorithm lives. Step is the single
// potentially blocking call of a control tick and must complete before
// torques can be computed.
type Shield interface {
	// Step advances the shield to the given simulation time and returns
	// the safe desired motion sample for that time.
	Step(currentTime float64) (Motion, error)

	// NewLongTermTrajectory replaces the long-term trajectory the shield
	// is verifying with a trajectory towards the given joint goal.
	NewLongTermTrajectory(goalPos, goalVel []float64) error

	// HumanMeasurement feeds the latest motion-capture measurement of the
	// human joint positions, with the time it was taken.
	HumanMeasurement(jointPositions []r3.Vector, time float64) error

	// Reset reinitializes the shield at an episode boundary.
	Reset(pose BasePose, initJointPos []float64, currentTime float64, shieldType Type) error

	// Safety reports whether the last step left the planned trajectory
	// untouched (true) or had to intervene (false).
	Safety() bool

	// RobotReachCapsules returns the robot reachable-set capsules as flat
	// records (segment start, segment end, radius).
	RobotReachCapsules() [][]float64

	// HumanReachCapsules returns the human reachable-set capsules in the
	// same layout as RobotReachCapsules.
	HumanReachCapsules() [][]float64
}
