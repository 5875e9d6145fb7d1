package env

import (
	"context"

	"github.com/edaniels/golog"
	"go.uber.org/multierr"

	"github.com/safehri/hrgym/control"
	"github.com/safehri/hrgym/demonstration"
	"github.com/safehri/hrgym/sim"
)

// CollaborativeLiftConfig holds the collaborative lifting task parameters
// on top of the shared Config.
type CollaborativeLiftConfig struct {
	// BoardGrippedReward is the sparse per-step reward while the robot
	// holds its side of the board.
	BoardGrippedReward float64 `json:"board_gripped_reward"`
}

// CollaborativeLiftEnv is the collaborative lifting task: robot and human
// carry a board together, one end each. The robot must keep its grip and
// follow the human's hand; the task succeeds if the board is still held
// when the episode ends.
type CollaborativeLiftEnv struct {
	*humanEnv
	taskCfg     CollaborativeLiftConfig
	humanHand   string
	boardHeld   bool
	boardLosses int
}

// NewCollaborativeLiftEnv returns a collaborative lifting environment
// over the given simulation.
func NewCollaborativeLiftEnv(
	cfg Config,
	taskCfg CollaborativeLiftConfig,
	simulation sim.Sim,
	scene sim.Scene,
	controller *control.FailsafeController,
	logger golog.Logger,
) (*CollaborativeLiftEnv, error) {
	base, err := newHumanEnv(cfg, simulation, scene, controller, logger)
	if err != nil {
		return nil, err
	}
	hand := cfg.Animation.ObjectHoldingHand
	if hand == "" {
		hand = "left"
	}
	info := cfg.Animation
	info.ObjectHoldingHand = hand
	handBody, err := info.HoldingHandBody()
	if err != nil {
		return nil, err
	}
	return &CollaborativeLiftEnv{humanEnv: base, taskCfg: taskCfg, humanHand: handBody}, nil
}

// Reset starts a new episode.
func (e *CollaborativeLiftEnv) Reset(ctx context.Context) (Observation, error) {
	if err := e.resetBase(ctx); err != nil {
		return nil, err
	}
	e.boardHeld = false
	e.boardLosses = 0
	return e.observe(), nil
}

// Step applies one policy action.
func (e *CollaborativeLiftEnv) Step(ctx context.Context, action []float64) (Observation, float64, bool, Info, error) {
	if err := e.advance(ctx, action, linearPlayback); err != nil {
		return nil, 0, false, nil, err
	}

	gripped := e.scene.ObjectGripped()
	if e.boardHeld && !gripped {
		e.boardLosses++
	}
	e.boardHeld = gripped

	toHand := e.scene.HumanBodyPosition(e.humanHand).Sub(e.scene.EEFPosition())
	success := e.timeout() && gripped

	reward := -1.0
	if gripped {
		reward = e.taskCfg.BoardGrippedReward
	}
	if e.cfg.RewardShaping {
		reward += 1.0
		reward -= toHand.Norm() * 0.1
	}
	if e.collided {
		reward += e.cfg.CollisionReward
	}
	reward = e.scaled(reward)

	done := e.done(success)
	info := e.baseInfo(success)
	info["board_losses"] = e.boardLosses
	info[InfoKeyExpertObservation] = demonstration.Snapshot{
		VecEEFToHumanLH: []float64{toHand.X, toHand.Y, toHand.Z},
		BoardGripped:    gripped,
	}

	return e.observe(), reward, done, info, nil
}

// Close releases the environment's resources.
func (e *CollaborativeLiftEnv) Close(ctx context.Context) error {
	return multierr.Combine(e.closeParts(e.simulation, e.scene), e.controller.Close())
}

func (e *CollaborativeLiftEnv) observe() Observation {
	toHand := e.scene.HumanBodyPosition(e.humanHand).Sub(e.scene.EEFPosition())
	return Observation{
		"vec_eef_to_human_lh": []float64{toHand.X, toHand.Y, toHand.Z},
		"board_gripped":       []float64{float64(boolToInt(e.scene.ObjectGripped()))},
	}
}
