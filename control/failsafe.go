// Package control implements the failsafe joint-position controller. Each
// control tick it queries the external safety shield for the safe desired
// motion sample and computes PD plus gravity-compensation torques from the
// tracking error.
package control

import (
	"io"
	"math"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/safehri/hrgym/shield"
	"github.com/safehri/hrgym/sim"
	"github.com/safehri/hrgym/spatialmath"
	"github.com/safehri/hrgym/utils"
)

// Config holds the controller parameters.
//
// Control input actions are taken relative to the current joint positions:
// an action is (dpos_j0, ..., dpos_jn-1) for an n-joint robot.
type Config struct {
	// Kp is the positional gain for the joint position error.
	Kp float64 `json:"kp"`
	// DampingRatio, together with Kp, determines the velocity gain:
	// kd = 2*sqrt(kp)*damping_ratio.
	DampingRatio float64 `json:"damping_ratio"`
	// InputMin and InputMax bound the raw action before scaling.
	InputMin float64 `json:"input_min"`
	InputMax float64 `json:"input_max"`
	// OutputMin and OutputMax define the scaled range of one action, in rad.
	OutputMin float64 `json:"output_min"`
	OutputMax float64 `json:"output_max"`
	// ControlSampleTime is the time between two low-level control steps.
	ControlSampleTime float64 `json:"control_sample_time"`
	// PositionLimits optionally clamps goal joint positions; one (low, high)
	// pair per joint.
	PositionLimits [][2]float64 `json:"position_limits,omitempty"`
	// Interpolator names an interpolation scheme for goal smoothing.
	// Interpolators are not supported.
	Interpolator string `json:"interpolator,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate() error {
	if cfg.Kp <= 0 {
		return errors.New("controller needs a positive kp gain")
	}
	if cfg.DampingRatio <= 0 {
		return errors.New("controller needs a positive damping ratio")
	}
	if cfg.ControlSampleTime <= 0 {
		return errors.New("controller needs a positive control sample time")
	}
	if cfg.InputMax <= cfg.InputMin {
		return errors.New("controller input_max must be greater than input_min")
	}
	if cfg.OutputMax <= cfg.OutputMin {
		return errors.New("controller output_max must be greater than output_min")
	}
	if cfg.Interpolator != "" {
		return errors.Errorf("goal interpolation (%q) is not implemented", cfg.Interpolator)
	}
	return nil
}

// FailsafeController wraps a joint-position controller around the external
// safety shield. Setting a new goal triggers recomputation of a long-term
// trajectory inside the shield; every control tick tracks the shield's
// corrected desired position/velocity/acceleration triple.
type FailsafeController struct {
	cfg    Config
	logger golog.Logger
	shield shield.Shield

	qposIndex []int
	qvelIndex []int
	jointDim  int

	kp []float64
	kd []float64

	actuatorMin []float64
	actuatorMax []float64

	goalQPos   []float64
	commandVel []float64

	// reused buffers, to avoid per-tick allocation
	torques  []float64
	feedback *mat.VecDense

	robotCapsules []*spatialmath.Capsule
	humanCapsules []*spatialmath.Capsule
}

// NewFailsafeController returns a controller for the joints at the given
// simulation state indices, with actuator torque limits (low, high).
func NewFailsafeController(
	cfg Config,
	sh shield.Shield,
	qposIndex, qvelIndex []int,
	actuatorMin, actuatorMax []float64,
	logger golog.Logger,
) (*FailsafeController, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	jointDim := len(qposIndex)
	if jointDim == 0 {
		return nil, errors.New("controller needs at least one joint index")
	}
	if len(qvelIndex) != jointDim {
		return nil, errors.Errorf("qvel index count %d does not match qpos index count %d", len(qvelIndex), jointDim)
	}
	if len(actuatorMin) != jointDim || len(actuatorMax) != jointDim {
		return nil, errors.New("actuator limit count must match the joint count")
	}
	if cfg.PositionLimits != nil && len(cfg.PositionLimits) != jointDim {
		return nil, errors.New("position limit count must match the joint count")
	}

	kp := make([]float64, jointDim)
	kd := make([]float64, jointDim)
	for i := range kp {
		kp[i] = cfg.Kp
		kd[i] = 2 * math.Sqrt(cfg.Kp) * cfg.DampingRatio
	}

	return &FailsafeController{
		cfg:         cfg,
		logger:      logger,
		shield:      sh,
		qposIndex:   qposIndex,
		qvelIndex:   qvelIndex,
		jointDim:    jointDim,
		kp:          kp,
		kd:          kd,
		actuatorMin: actuatorMin,
		actuatorMax: actuatorMax,
		commandVel:  make([]float64, jointDim),
		torques:     make([]float64, jointDim),
		feedback:    mat.NewVecDense(jointDim, nil),
	}, nil
}

// Reset reinitializes the controller and the shield at an episode
// boundary. The goal is cleared; the first control tick after a reset
// substitutes a zero-delta goal unless SetGoal is called before it.
func (c *FailsafeController) Reset(state sim.State, pose shield.BasePose, shieldType shield.Type) error {
	c.goalQPos = nil
	for i := range c.commandVel {
		c.commandVel[i] = 0
	}
	initQPos := state.JointPositions(c.qposIndex)
	return c.shield.Reset(pose, initQPos, state.Time(), shieldType)
}

// SetGoal sets the goal joint position from a relative action and hands
// the resulting long-term trajectory to the shield. An action whose
// length does not match the joint count is a caller error.
func (c *FailsafeController) SetGoal(state sim.State, action []float64) error {
	if len(action) != c.jointDim {
		return errors.Errorf("delta qpos must be equal to the robot's joint dimension %d, got %d", c.jointDim, len(action))
	}

	jointPos := state.JointPositions(c.qposIndex)
	if c.goalQPos == nil {
		c.goalQPos = make([]float64, c.jointDim)
	}
	for i, delta := range action {
		c.goalQPos[i] = jointPos[i] + c.scaleAction(delta)
		if c.cfg.PositionLimits != nil {
			c.goalQPos[i] = utils.ClipToRange(c.goalQPos[i], c.cfg.PositionLimits[i][0], c.cfg.PositionLimits[i][1])
		}
	}

	return c.shield.NewLongTermTrajectory(c.goalQPos, c.commandVel)
}

// scaleAction clips a raw action element to the input range and maps it
// linearly onto the output range.
func (c *FailsafeController) scaleAction(delta float64) float64 {
	clipped := utils.ClipToRange(delta, c.cfg.InputMin, c.cfg.InputMax)
	scale := (c.cfg.OutputMax - c.cfg.OutputMin) / (c.cfg.InputMax - c.cfg.InputMin)
	inputMid := (c.cfg.InputMax + c.cfg.InputMin) / 2
	outputMid := (c.cfg.OutputMax + c.cfg.OutputMin) / 2
	return (clipped-inputMid)*scale + outputMid
}

// Torques calculates the torques required to track the shield's desired
// motion at the current simulation time.
//
// torque = M * (kp*(qd-q) + kd*(vd-v) + qdd_desired) + torque_compensation
func (c *FailsafeController) Torques(state sim.State) ([]float64, error) {
	// A goal must be set before torques can be computed; substitute the
	// zero-delta default otherwise.
	if c.goalQPos == nil {
		if err := c.SetGoal(state, make([]float64, c.jointDim)); err != nil {
			return nil, err
		}
	}

	jointPos := state.JointPositions(c.qposIndex)
	jointVel := state.JointVelocities(c.qvelIndex)

	desired, err := c.shield.Step(state.Time())
	if err != nil {
		return nil, err
	}
	if len(desired.Angle) != c.jointDim {
		return nil, errors.Errorf("shield returned %d joints, controller has %d", len(desired.Angle), c.jointDim)
	}

	for i := 0; i < c.jointDim; i++ {
		posErr := desired.Angle[i] - jointPos[i]
		velErr := desired.Velocity[i] - jointVel[i]
		c.feedback.SetVec(i, c.kp[i]*posErr+c.kd[i]*velErr+desired.Acceleration[i])
	}

	massMatrix := state.MassMatrix(c.qposIndex)
	var torqueVec mat.VecDense
	torqueVec.MulVec(massMatrix, c.feedback)

	compensation := state.TorqueCompensation(c.qposIndex)
	for i := 0; i < c.jointDim; i++ {
		c.torques[i] = utils.ClipToRange(
			torqueVec.AtVec(i)+compensation[i],
			c.actuatorMin[i],
			c.actuatorMax[i],
		)
	}
	return c.torques, nil
}

// SetHumanMeasurement feeds a human motion-capture measurement to the shield.
func (c *FailsafeController) SetHumanMeasurement(jointPositions []r3.Vector, time float64) error {
	return c.shield.HumanMeasurement(jointPositions, time)
}

// Safety reports whether the shield intervened in the last step.
// True means safe, false means the shield had to intervene.
func (c *FailsafeController) Safety() bool {
	return c.shield.Safety()
}

// RobotCapsules returns the robot reachable-set capsules, updating the
// cached list in place when the capsule count is unchanged.
func (c *FailsafeController) RobotCapsules() ([]*spatialmath.Capsule, error) {
	capsules, err := spatialmath.UpdateCapsulesFromFlat(c.robotCapsules, c.shield.RobotReachCapsules())
	if err != nil {
		return nil, err
	}
	c.robotCapsules = capsules
	return c.robotCapsules, nil
}

// HumanCapsules returns the human reachable-set capsules, updating the
// cached list in place when the capsule count is unchanged.
func (c *FailsafeController) HumanCapsules() ([]*spatialmath.Capsule, error) {
	capsules, err := spatialmath.UpdateCapsulesFromFlat(c.humanCapsules, c.shield.HumanReachCapsules())
	if err != nil {
		return nil, err
	}
	c.humanCapsules = capsules
	return c.humanCapsules, nil
}

// CurrentJointPositions reads the positions of the controlled joints from
// the simulation state.
func (c *FailsafeController) CurrentJointPositions(state sim.State) []float64 {
	return state.JointPositions(c.qposIndex)
}

// SampleTime returns the time between two low-level control steps.
func (c *FailsafeController) SampleTime() float64 {
	return c.cfg.ControlSampleTime
}

// JointDim returns the number of controlled joints.
func (c *FailsafeController) JointDim() int {
	return c.jointDim
}

// Goal returns the current goal joint position, or nil if no goal has
// been set since the last reset.
func (c *FailsafeController) Goal() []float64 {
	return c.goalQPos
}

// Close shuts down the shield if it is closeable.
func (c *FailsafeController) Close() error {
	if closer, ok := c.shield.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
