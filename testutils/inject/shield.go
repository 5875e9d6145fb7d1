package inject

import (
	"github.com/golang/geo/r3"

	"github.com/safehri/hrgym/shield"
)

// Shield is an injected safety shield.
type Shield struct {
	shield.Shield
	StepFunc                  func(currentTime float64) (shield.Motion, error)
	NewLongTermTrajectoryFunc func(goalPos, goalVel []float64) error
	HumanMeasurementFunc      func(jointPositions []r3.Vector, time float64) error
	ResetFunc                 func(pose shield.BasePose, initJointPos []float64, currentTime float64, shieldType shield.Type) error
	SafetyFunc                func() bool
	RobotReachCapsulesFunc    func() [][]float64
	HumanReachCapsulesFunc    func() [][]float64
}

// Step calls the injected Step or the real version.
func (s *Shield) Step(currentTime float64) (shield.Motion, error) {
	if s.StepFunc == nil {
		return s.Shield.Step(currentTime)
	}
	return s.StepFunc(currentTime)
}

// NewLongTermTrajectory calls the injected NewLongTermTrajectory or the real version.
func (s *Shield) NewLongTermTrajectory(goalPos, goalVel []float64) error {
	if s.NewLongTermTrajectoryFunc == nil {
		return s.Shield.NewLongTermTrajectory(goalPos, goalVel)
	}
	return s.NewLongTermTrajectoryFunc(goalPos, goalVel)
}

// HumanMeasurement calls the injected HumanMeasurement or the real version.
func (s *Shield) HumanMeasurement(jointPositions []r3.Vector, time float64) error {
	if s.HumanMeasurementFunc == nil {
		return s.Shield.HumanMeasurement(jointPositions, time)
	}
	return s.HumanMeasurementFunc(jointPositions, time)
}

// Reset calls the injected Reset or the real version.
func (s *Shield) Reset(pose shield.BasePose, initJointPos []float64, currentTime float64, shieldType shield.Type) error {
	if s.ResetFunc == nil {
		return s.Shield.Reset(pose, initJointPos, currentTime, shieldType)
	}
	return s.ResetFunc(pose, initJointPos, currentTime, shieldType)
}

// Safety calls the injected Safety or the real version.
func (s *Shield) Safety() bool {
	if s.SafetyFunc == nil {
		return s.Shield.Safety()
	}
	return s.SafetyFunc()
}

// RobotReachCapsules calls the injected RobotReachCapsules or the real version.
func (s *Shield) RobotReachCapsules() [][]float64 {
	if s.RobotReachCapsulesFunc == nil {
		return s.Shield.RobotReachCapsules()
	}
	return s.RobotReachCapsulesFunc()
}

// HumanReachCapsules calls the injected HumanReachCapsules or the real version.
func (s *Shield) HumanReachCapsules() [][]float64 {
	if s.HumanReachCapsulesFunc == nil {
		return s.Shield.HumanReachCapsules()
	}
	return s.HumanReachCapsulesFunc()
}
