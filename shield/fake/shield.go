// Package fake implements an in-process stand-in for the external safety
// shield, for use in tests and demos. It tracks the long-term goal with a
// bounded joint velocity and flags an intervention whenever the measured
// human comes too close to the robot base.
package fake

import (
	"math"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/safehri/hrgym/shield"
	"github.com/safehri/hrgym/utils"
)

// Config configures a fake shield.
type Config struct {
	// MaxJointVel bounds the per-joint velocity of the tracked trajectory, in rad/s.
	MaxJointVel float64 `json:"max_joint_vel"`
	// SlowdownDist is the human distance below which the fake intervenes
	// by halving the velocity bound.
	SlowdownDist float64 `json:"slowdown_dist"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate() error {
	if cfg.MaxJointVel <= 0 {
		return errors.New("fake shield needs a positive max_joint_vel")
	}
	if cfg.SlowdownDist < 0 {
		return errors.New("fake shield slowdown_dist may not be negative")
	}
	return nil
}

// Shield is a fake safety shield.
type Shield struct {
	cfg    Config
	logger golog.Logger

	pose       shield.BasePose
	shieldType shield.Type

	q        []float64
	v        []float64
	goalPos  []float64
	goalVel  []float64
	lastTime float64

	safe       bool
	humanClose bool

	robotCaps [][]float64
	humanCaps [][]float64
	humanPos  []r3.Vector
}

// NewShield returns a new fake shield initialized at the given joint position.
func NewShield(cfg Config, pose shield.BasePose, initJointPos []float64, logger golog.Logger) (*Shield, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Shield{
		cfg:    cfg,
		logger: logger,
	}
	if err := s.Reset(pose, initJointPos, 0, shield.TypeSSM); err != nil {
		return nil, err
	}
	return s, nil
}

// Reset reinitializes the fake at an episode boundary.
func (s *Shield) Reset(pose shield.BasePose, initJointPos []float64, currentTime float64, shieldType shield.Type) error {
	if len(initJointPos) == 0 {
		return errors.New("fake shield needs at least one joint")
	}
	s.pose = pose
	s.shieldType = shieldType
	s.q = append([]float64(nil), initJointPos...)
	s.v = make([]float64, len(initJointPos))
	s.goalPos = append([]float64(nil), initJointPos...)
	s.goalVel = make([]float64, len(initJointPos))
	s.lastTime = currentTime
	s.safe = true
	s.humanClose = false
	s.humanPos = nil
	s.robotCaps = nil
	s.humanCaps = nil
	return nil
}

// Step moves the desired motion towards the goal at a bounded velocity.
func (s *Shield) Step(currentTime float64) (shield.Motion, error) {
	dt := currentTime - s.lastTime
	if dt < 0 {
		return shield.Motion{}, errors.Errorf("shield stepped backwards in time: %f -> %f", s.lastTime, currentTime)
	}
	s.lastTime = currentTime

	maxVel := s.cfg.MaxJointVel
	s.safe = true
	if s.humanClose && s.shieldType != shield.TypeOff {
		maxVel *= 0.5
		s.safe = false
	}

	for i := range s.q {
		delta := s.goalPos[i] - s.q[i]
		step := utils.ClipToRange(delta, -maxVel*dt, maxVel*dt)
		if dt > 0 {
			s.v[i] = step / dt
		} else {
			s.v[i] = 0
		}
		s.q[i] += step
	}

	return shield.Motion{
		Angle:        append([]float64(nil), s.q...),
		Velocity:     append([]float64(nil), s.v...),
		Acceleration: make([]float64, len(s.q)),
	}, nil
}

// NewLongTermTrajectory replaces the tracked goal.
func (s *Shield) NewLongTermTrajectory(goalPos, goalVel []float64) error {
	if len(goalPos) != len(s.q) || len(goalVel) != len(s.q) {
		return errors.Errorf("goal dimension mismatch: want %d, got pos %d vel %d",
			len(s.q), len(goalPos), len(goalVel))
	}
	copy(s.goalPos, goalPos)
	copy(s.goalVel, goalVel)
	return nil
}

// HumanMeasurement records the human joint positions and recomputes the
// proximity flag.
func (s *Shield) HumanMeasurement(jointPositions []r3.Vector, time float64) error {
	s.humanPos = jointPositions
	base := r3.Vector{X: s.pose.X, Y: s.pose.Y, Z: s.pose.Z}
	s.humanClose = false
	for _, p := range jointPositions {
		if p.Sub(base).Norm() < s.cfg.SlowdownDist {
			s.humanClose = true
			break
		}
	}
	return nil
}

// Safety reports whether the last step was intervention free.
func (s *Shield) Safety() bool {
	return s.safe
}

// RobotReachCapsules returns one capsule per joint, spanning from the base
// towards a point that scales with the joint angle. The count is stable
// across calls so callers can update their render lists in place.
func (s *Shield) RobotReachCapsules() [][]float64 {
	if len(s.robotCaps) != len(s.q) {
		s.robotCaps = make([][]float64, len(s.q))
		for i := range s.robotCaps {
			s.robotCaps[i] = make([]float64, 7)
		}
	}
	for i, angle := range s.q {
		reach := 0.3 * float64(i+1)
		s.robotCaps[i][0] = s.pose.X
		s.robotCaps[i][1] = s.pose.Y
		s.robotCaps[i][2] = s.pose.Z
		s.robotCaps[i][3] = s.pose.X + reach*math.Cos(angle)
		s.robotCaps[i][4] = s.pose.Y + reach*math.Sin(angle)
		s.robotCaps[i][5] = s.pose.Z
		s.robotCaps[i][6] = 0.1
	}
	return s.robotCaps
}

// HumanReachCapsules returns one capsule per measured human joint.
func (s *Shield) HumanReachCapsules() [][]float64 {
	if len(s.humanCaps) != len(s.humanPos) {
		s.humanCaps = make([][]float64, len(s.humanPos))
		for i := range s.humanCaps {
			s.humanCaps[i] = make([]float64, 7)
		}
	}
	for i, p := range s.humanPos {
		s.humanCaps[i][0] = p.X
		s.humanCaps[i][1] = p.Y
		s.humanCaps[i][2] = p.Z
		s.humanCaps[i][3] = p.X
		s.humanCaps[i][4] = p.Y
		s.humanCaps[i][5] = p.Z + 0.2
		s.humanCaps[i][6] = 0.15
	}
	return s.humanCaps
}

// Close does nothing.
func (s *Shield) Close() error {
	return nil
}
