// Package sim describes the slice of the simulation framework this module
// consumes. The physics engine, renderer, and scene graph live outside
// this repository; the interfaces here are the read/step surface the
// controller and the environments depend on.
package sim

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/mat"
)

// State exposes the robot state of the running simulation. Values are
// read fresh once per control call.
type State interface {
	// JointPositions returns the joint positions at the given simulation
	// state indices, in rad.
	JointPositions(indices []int) []float64

	// JointVelocities returns the joint velocities at the given simulation
	// state indices, in rad/s.
	JointVelocities(indices []int) []float64

	// MassMatrix returns the joint-space mass matrix restricted to the
	// given joint indices.
	MassMatrix(indices []int) *mat.Dense

	// TorqueCompensation returns the gravity and Coriolis compensation
	// torques for the given joint indices.
	TorqueCompensation(indices []int) []float64

	// Time returns the current simulation time in seconds.
	Time() float64
}

// Sim is a steppable simulation: reading state plus applying torques for
// one physics substep.
type Sim interface {
	State

	// Step applies the given actuator torques and advances the simulation
	// by one substep.
	Step(torques []float64) error
}

// Scene exposes the task-level queries the environments need from the
// scene graph. It is the MuJoCo-side glue boundary; tests inject it.
type Scene interface {
	// EEFPosition returns the world position of the robot end effector.
	EEFPosition() r3.Vector

	// GripperQPos returns the joint angles of the two gripper fingers.
	GripperQPos() []float64

	// ObjectPosition returns the world position of the manipulated object.
	ObjectPosition() r3.Vector

	// ObjectGripped reports whether both finger pads touch the object.
	ObjectGripped() bool

	// TargetPosition returns the world position of the current target.
	TargetPosition() r3.Vector

	// HumanBodyPosition returns the world position of a named human body.
	HumanBodyPosition(body string) r3.Vector

	// HumanJointPositions returns the motion-capture measurement of all
	// human joints, in the order defined by the mocap configuration.
	HumanJointPositions() []r3.Vector

	// SetHumanAnimationFrame seats the human at the given animation frame.
	SetHumanAnimationFrame(frame int)

	// Collision reports whether the robot collided with anything
	// disallowed since the last policy step.
	Collision() bool
}
