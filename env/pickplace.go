package env

import (
	"context"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"go.uber.org/multierr"

	"github.com/safehri/hrgym/control"
	"github.com/safehri/hrgym/demonstration"
	"github.com/safehri/hrgym/sim"
)

// PickPlaceConfig holds the pick-and-place task parameters on top of the
// shared Config.
type PickPlaceConfig struct {
	// ObjectGrippedReward is the sparse reward tier for holding the object
	// without having delivered it yet.
	ObjectGrippedReward float64 `json:"object_gripped_reward"`
}

// PickPlaceEnv is the pick-and-place task: grip the object and carry it
// into the target zone while a human moves through the workspace.
type PickPlaceEnv struct {
	*humanEnv
	taskCfg PickPlaceConfig
}

// NewPickPlaceEnv returns a pick-and-place environment over the given
// simulation.
func NewPickPlaceEnv(
	cfg Config,
	taskCfg PickPlaceConfig,
	simulation sim.Sim,
	scene sim.Scene,
	controller *control.FailsafeController,
	logger golog.Logger,
) (*PickPlaceEnv, error) {
	base, err := newHumanEnv(cfg, simulation, scene, controller, logger)
	if err != nil {
		return nil, err
	}
	return &PickPlaceEnv{humanEnv: base, taskCfg: taskCfg}, nil
}

// Reset starts a new episode.
func (e *PickPlaceEnv) Reset(ctx context.Context) (Observation, error) {
	if err := e.resetBase(ctx); err != nil {
		return nil, err
	}
	return e.observe(), nil
}

// Step applies one policy action.
func (e *PickPlaceEnv) Step(ctx context.Context, action []float64) (Observation, float64, bool, Info, error) {
	if err := e.advance(ctx, action, linearPlayback); err != nil {
		return nil, 0, false, nil, err
	}

	eef := e.scene.EEFPosition()
	object := e.scene.ObjectPosition()
	target := e.scene.TargetPosition()
	gripped := e.scene.ObjectGripped()
	success := object.Distance(target) < e.cfg.GoalDist

	reward := -1.0
	switch {
	case success:
		reward = e.cfg.GoalReward
	case gripped:
		reward = e.taskCfg.ObjectGrippedReward
	}
	if e.cfg.RewardShaping && !success {
		reward += 1.0
		reward -= (eef.Distance(object)*0.2 + object.Distance(target)) * 0.1
	}
	if e.collided {
		reward += e.cfg.CollisionReward
	}
	reward = e.scaled(reward)

	done := e.done(success)
	info := e.baseInfo(success)
	info[InfoKeyExpertObservation] = e.snapshot(eef, target, gripped)

	return e.observe(), reward, done, info, nil
}

// Close releases the environment's resources.
func (e *PickPlaceEnv) Close(ctx context.Context) error {
	return multierr.Combine(e.closeParts(e.simulation, e.scene), e.controller.Close())
}

func (e *PickPlaceEnv) snapshot(eef, target r3.Vector, gripped bool) demonstration.Snapshot {
	toTarget := target.Sub(eef)
	return demonstration.Snapshot{
		VecEEFToTarget: []float64{toTarget.X, toTarget.Y, toTarget.Z},
		GripperQPos:    e.scene.GripperQPos(),
		ObjectGripped:  gripped,
	}
}

func (e *PickPlaceEnv) observe() Observation {
	eef := e.scene.EEFPosition()
	toObject := e.scene.ObjectPosition().Sub(eef)
	toTarget := e.scene.TargetPosition().Sub(eef)
	return Observation{
		"vec_eef_to_object":   []float64{toObject.X, toObject.Y, toObject.Z},
		"vec_eef_to_target":   []float64{toTarget.X, toTarget.Y, toTarget.Z},
		"robot0_gripper_qpos": e.scene.GripperQPos(),
		"object_gripped":      []float64{float64(boolToInt(e.scene.ObjectGripped()))},
	}
}
