package env

import (
	"context"

	"github.com/edaniels/golog"
	"go.uber.org/multierr"

	"github.com/safehri/hrgym/control"
	"github.com/safehri/hrgym/demonstration"
	"github.com/safehri/hrgym/human"
	"github.com/safehri/hrgym/sim"
)

// HandoverConfig holds the handover task parameters on top of the shared
// Config.
type HandoverConfig struct {
	// ObjectGrippedReward is the sparse reward tier for having taken the
	// object from the human hand.
	ObjectGrippedReward float64 `json:"object_gripped_reward"`
	// ObjectAtTargetReward is the sparse reward tier for having brought the
	// object into the target zone while the human retreats.
	ObjectAtTargetReward float64 `json:"object_at_target_reward"`
}

// HandoverEnv is the human-to-robot handover task. The human approaches
// with the object, presents it, and waits; gripping the object and
// delivering it to the target drive the human's animation phases. The
// task succeeds when the human finishes retreating.
type HandoverEnv struct {
	*humanEnv
	taskCfg HandoverConfig
	phase   *human.PhaseMachine
}

// NewHandoverEnv returns a handover environment over the given simulation.
// The animation in the config must carry the approach and presentation
// keyframes.
func NewHandoverEnv(
	cfg Config,
	taskCfg HandoverConfig,
	simulation sim.Sim,
	scene sim.Scene,
	controller *control.FailsafeController,
	logger golog.Logger,
) (*HandoverEnv, error) {
	base, err := newHumanEnv(cfg, simulation, scene, controller, logger)
	if err != nil {
		return nil, err
	}
	phase, err := human.NewPhaseMachine(cfg.Animation)
	if err != nil {
		return nil, err
	}
	if _, err := cfg.Animation.HoldingHandBody(); err != nil {
		return nil, err
	}
	return &HandoverEnv{humanEnv: base, taskCfg: taskCfg, phase: phase}, nil
}

// Reset starts a new episode with resampled animation loop properties.
func (e *HandoverEnv) Reset(ctx context.Context) (Observation, error) {
	if err := e.resetBase(ctx); err != nil {
		return nil, err
	}
	e.phase.Reset(e.rng)
	return e.observe(), nil
}

// Step applies one policy action.
func (e *HandoverEnv) Step(ctx context.Context, action []float64) (Observation, float64, bool, Info, error) {
	if err := e.advance(ctx, action, e.phase.AnimationTime); err != nil {
		return nil, 0, false, nil, err
	}

	gripped := e.scene.ObjectGripped()
	atTarget := e.scene.ObjectPosition().Distance(e.scene.TargetPosition()) < e.cfg.GoalDist
	if gripped {
		e.phase.ObjectGripped()
	}
	if atTarget {
		e.phase.ObjectAtTarget()
	}
	success := e.phase.Phase() == human.PhaseComplete

	reward := -1.0
	switch {
	case success:
		reward = e.cfg.GoalReward
	case atTarget:
		reward = e.taskCfg.ObjectAtTargetReward
	case gripped:
		reward = e.taskCfg.ObjectGrippedReward
	}
	if e.collided {
		reward += e.cfg.CollisionReward
	}
	reward = e.scaled(reward)

	done := e.done(success)
	info := e.baseInfo(success)
	info[InfoKeyExpertObservation] = e.snapshot(gripped)

	return e.observe(), reward, done, info, nil
}

// Close releases the environment's resources.
func (e *HandoverEnv) Close(ctx context.Context) error {
	return multierr.Combine(e.closeParts(e.simulation, e.scene), e.controller.Close())
}

// Phase returns the current handover phase.
func (e *HandoverEnv) Phase() human.Phase {
	return e.phase.Phase()
}

func (e *HandoverEnv) snapshot(gripped bool) demonstration.Snapshot {
	toTarget := e.scene.TargetPosition().Sub(e.scene.EEFPosition())
	return demonstration.Snapshot{
		VecEEFToTarget: []float64{toTarget.X, toTarget.Y, toTarget.Z},
		GripperQPos:    e.scene.GripperQPos(),
		ObjectGripped:  gripped,
	}
}

func (e *HandoverEnv) observe() Observation {
	eef := e.scene.EEFPosition()
	toObject := e.scene.ObjectPosition().Sub(eef)
	toTarget := e.scene.TargetPosition().Sub(eef)
	return Observation{
		"vec_eef_to_object":   []float64{toObject.X, toObject.Y, toObject.Z},
		"vec_eef_to_target":   []float64{toTarget.X, toTarget.Y, toTarget.Z},
		"robot0_gripper_qpos": e.scene.GripperQPos(),
		"object_gripped":      []float64{float64(boolToInt(e.scene.ObjectGripped()))},
		"animation_phase":     []float64{float64(e.phase.Phase())},
	}
}
