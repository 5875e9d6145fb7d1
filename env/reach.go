package env

import (
	"context"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/floats"

	"github.com/safehri/hrgym/control"
	"github.com/safehri/hrgym/demonstration"
	"github.com/safehri/hrgym/sim"
)

// ReachConfig holds the reach-task parameters on top of the shared Config.
type ReachConfig struct {
	// GoalLow and GoalHigh bound the joint-space goal sampling, one pair
	// per controlled joint.
	GoalLow  []float64 `json:"goal_low"`
	GoalHigh []float64 `json:"goal_high"`
}

// Validate ensures all parts of the config are valid.
func (cfg *ReachConfig) Validate() error {
	if len(cfg.GoalLow) == 0 || len(cfg.GoalLow) != len(cfg.GoalHigh) {
		return errors.New("reach goal bounds must be non-empty and of equal length")
	}
	for i := range cfg.GoalLow {
		if cfg.GoalHigh[i] < cfg.GoalLow[i] {
			return errors.Errorf("reach goal bound %d has high below low", i)
		}
	}
	return nil
}

// ReachEnv is the joint-space reaching task: drive the arm to a sampled
// goal configuration while a human moves through the workspace. A reached
// goal is replaced by a freshly sampled one unless the episode ends there.
type ReachEnv struct {
	*humanEnv
	reachCfg    ReachConfig
	desiredGoal []float64
}

// NewReachEnv returns a reaching environment over the given simulation.
func NewReachEnv(
	cfg Config,
	reachCfg ReachConfig,
	simulation sim.Sim,
	scene sim.Scene,
	controller *control.FailsafeController,
	logger golog.Logger,
) (*ReachEnv, error) {
	if err := reachCfg.Validate(); err != nil {
		return nil, err
	}
	if len(reachCfg.GoalLow) != controller.JointDim() {
		return nil, errors.Errorf(
			"reach goal bounds cover %d joints, controller has %d", len(reachCfg.GoalLow), controller.JointDim())
	}
	base, err := newHumanEnv(cfg, simulation, scene, controller, logger)
	if err != nil {
		return nil, err
	}
	return &ReachEnv{
		humanEnv:    base,
		reachCfg:    reachCfg,
		desiredGoal: make([]float64, controller.JointDim()),
	}, nil
}

// Reset starts a new episode with a freshly sampled goal.
func (e *ReachEnv) Reset(ctx context.Context) (Observation, error) {
	if err := e.resetBase(ctx); err != nil {
		return nil, err
	}
	e.sampleGoal()
	return e.observe(), nil
}

// Step applies one policy action.
func (e *ReachEnv) Step(ctx context.Context, action []float64) (Observation, float64, bool, Info, error) {
	if err := e.advance(ctx, action, linearPlayback); err != nil {
		return nil, 0, false, nil, err
	}

	diff := e.goalDifference()
	dist := floats.Norm(diff, 2)
	success := dist < e.cfg.GoalDist

	reward := -1.0
	if success {
		reward = e.cfg.GoalReward
	} else if e.cfg.RewardShaping {
		reward += 1.0
		reward -= dist * 0.1
	}
	if e.collided {
		reward += e.cfg.CollisionReward
	}
	reward = e.scaled(reward)

	done := e.done(success)
	info := e.baseInfo(success)
	info[InfoKeyExpertObservation] = demonstration.Snapshot{GoalDifference: diff}

	// reached goals are replaced so the episode keeps training signal
	if success && !done {
		e.sampleGoal()
	}
	return e.observe(), reward, done, info, nil
}

// Close releases the environment's resources.
func (e *ReachEnv) Close(ctx context.Context) error {
	return multierr.Combine(e.closeParts(e.simulation, e.scene), e.controller.Close())
}

func (e *ReachEnv) sampleGoal() {
	for i := range e.desiredGoal {
		low, high := e.reachCfg.GoalLow[i], e.reachCfg.GoalHigh[i]
		e.desiredGoal[i] = low + e.rng.Float64()*(high-low)
	}
}

func (e *ReachEnv) goalDifference() []float64 {
	jointPos := e.controller.CurrentJointPositions(e.simulation)
	diff := make([]float64, len(jointPos))
	for i := range diff {
		diff[i] = e.desiredGoal[i] - jointPos[i]
	}
	return diff
}

func (e *ReachEnv) observe() Observation {
	return Observation{
		"goal_difference": e.goalDifference(),
	}
}
