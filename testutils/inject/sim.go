// Package inject provides injected implementations of the simulation and
// shield interfaces for testing.
package inject

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"

	"github.com/safehri/hrgym/sim"
)

// Sim is an injected simulation.
type Sim struct {
	sim.Sim
	JointPositionsFunc     func(indices []int) []float64
	JointVelocitiesFunc    func(indices []int) []float64
	MassMatrixFunc         func(indices []int) *mat.Dense
	TorqueCompensationFunc func(indices []int) []float64
	TimeFunc               func() float64
	StepFunc               func(torques []float64) error
}

// JointPositions calls the injected JointPositions or the real version.
func (s *Sim) JointPositions(indices []int) []float64 {
	if s.JointPositionsFunc == nil {
		return s.Sim.JointPositions(indices)
	}
	return s.JointPositionsFunc(indices)
}

// JointVelocities calls the injected JointVelocities or the real version.
func (s *Sim) JointVelocities(indices []int) []float64 {
	if s.JointVelocitiesFunc == nil {
		return s.Sim.JointVelocities(indices)
	}
	return s.JointVelocitiesFunc(indices)
}

// MassMatrix calls the injected MassMatrix or the real version.
func (s *Sim) MassMatrix(indices []int) *mat.Dense {
	if s.MassMatrixFunc == nil {
		return s.Sim.MassMatrix(indices)
	}
	return s.MassMatrixFunc(indices)
}

// TorqueCompensation calls the injected TorqueCompensation or the real version.
func (s *Sim) TorqueCompensation(indices []int) []float64 {
	if s.TorqueCompensationFunc == nil {
		return s.Sim.TorqueCompensation(indices)
	}
	return s.TorqueCompensationFunc(indices)
}

// Time calls the injected Time or the real version.
func (s *Sim) Time() float64 {
	if s.TimeFunc == nil {
		return s.Sim.Time()
	}
	return s.TimeFunc()
}

// Step calls the injected Step or the real version.
func (s *Sim) Step(torques []float64) error {
	if s.StepFunc == nil {
		return s.Sim.Step(torques)
	}
	return s.StepFunc(torques)
}

// Scene is an injected scene.
type Scene struct {
	sim.Scene
	EEFPositionFunc            func() r3.Vector
	GripperQPosFunc            func() []float64
	ObjectPositionFunc         func() r3.Vector
	ObjectGrippedFunc          func() bool
	TargetPositionFunc         func() r3.Vector
	HumanBodyPositionFunc      func(body string) r3.Vector
	HumanJointPositionsFunc    func() []r3.Vector
	SetHumanAnimationFrameFunc func(frame int)
	CollisionFunc              func() bool
}

// EEFPosition calls the injected EEFPosition or the real version.
func (s *Scene) EEFPosition() r3.Vector {
	if s.EEFPositionFunc == nil {
		return s.Scene.EEFPosition()
	}
	return s.EEFPositionFunc()
}

// GripperQPos calls the injected GripperQPos or the real version.
func (s *Scene) GripperQPos() []float64 {
	if s.GripperQPosFunc == nil {
		return s.Scene.GripperQPos()
	}
	return s.GripperQPosFunc()
}

// ObjectPosition calls the injected ObjectPosition or the real version.
func (s *Scene) ObjectPosition() r3.Vector {
	if s.ObjectPositionFunc == nil {
		return s.Scene.ObjectPosition()
	}
	return s.ObjectPositionFunc()
}

// ObjectGripped calls the injected ObjectGripped or the real version.
func (s *Scene) ObjectGripped() bool {
	if s.ObjectGrippedFunc == nil {
		return s.Scene.ObjectGripped()
	}
	return s.ObjectGrippedFunc()
}

// TargetPosition calls the injected TargetPosition or the real version.
func (s *Scene) TargetPosition() r3.Vector {
	if s.TargetPositionFunc == nil {
		return s.Scene.TargetPosition()
	}
	return s.TargetPositionFunc()
}

// HumanBodyPosition calls the injected HumanBodyPosition or the real version.
func (s *Scene) HumanBodyPosition(body string) r3.Vector {
	if s.HumanBodyPositionFunc == nil {
		return s.Scene.HumanBodyPosition(body)
	}
	return s.HumanBodyPositionFunc(body)
}

// HumanJointPositions calls the injected HumanJointPositions or the real version.
func (s *Scene) HumanJointPositions() []r3.Vector {
	if s.HumanJointPositionsFunc == nil {
		return s.Scene.HumanJointPositions()
	}
	return s.HumanJointPositionsFunc()
}

// SetHumanAnimationFrame calls the injected SetHumanAnimationFrame or the real version.
func (s *Scene) SetHumanAnimationFrame(frame int) {
	if s.SetHumanAnimationFrameFunc == nil {
		s.Scene.SetHumanAnimationFrame(frame)
		return
	}
	s.SetHumanAnimationFrameFunc(frame)
}

// Collision calls the injected Collision or the real version.
func (s *Scene) Collision() bool {
	if s.CollisionFunc == nil {
		return s.Scene.Collision()
	}
	return s.CollisionFunc()
}
