package env

import (
	"context"
	"io"
	"math"
	"math/rand"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/safehri/hrgym/control"
	"github.com/safehri/hrgym/human"
	"github.com/safehri/hrgym/shield"
	"github.com/safehri/hrgym/sim"
)

// Config holds the parameters shared by all human environments.
type Config struct {
	// Horizon is the number of policy steps per episode.
	Horizon int `json:"horizon"`
	// ControlFreq is the number of policy steps per second.
	ControlFreq float64 `json:"control_freq"`
	// RewardScale scales the per-step reward; zero leaves it unscaled.
	RewardScale float64 `json:"reward_scale,omitempty"`
	// RewardShaping enables dense rewards instead of sparse ones.
	RewardShaping bool `json:"reward_shaping,omitempty"`
	// GoalDist is the distance threshold for reaching a goal, in m.
	GoalDist float64 `json:"goal_dist"`
	// CollisionReward is added to the reward when a collision occurs.
	CollisionReward float64 `json:"collision_reward"`
	// GoalReward is the reward for achieving the task goal.
	GoalReward float64 `json:"goal_reward"`
	// DoneAtCollision terminates the episode on collision.
	DoneAtCollision bool `json:"done_at_collision,omitempty"`
	// DoneAtSuccess terminates the episode when the goal is achieved.
	DoneAtSuccess bool `json:"done_at_success,omitempty"`
	// Animation is the human animation to play during episodes.
	Animation human.AnimationInfo `json:"animation"`
	// AnimationNoiseAlpha and AnimationNoiseSigma parameterize the
	// Ornstein-Uhlenbeck noise added to the animation playback time.
	AnimationNoiseAlpha float64 `json:"animation_noise_alpha,omitempty"`
	AnimationNoiseSigma float64 `json:"animation_noise_sigma,omitempty"`
	// ShieldType selects the shield operating mode for new episodes.
	ShieldType shield.Type `json:"shield_type"`
	// BasePose is the robot base placement handed to the shield on reset.
	BasePose shield.BasePose `json:"base_pose"`
	// Seed seeds the environment's random number generator.
	Seed int64 `json:"seed,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (cfg *Config) Validate() error {
	if cfg.Horizon <= 0 {
		return errors.New("environment needs a positive horizon")
	}
	if cfg.ControlFreq <= 0 {
		return errors.New("environment needs a positive control frequency")
	}
	if cfg.GoalDist <= 0 {
		return errors.New("environment needs a positive goal distance")
	}
	return cfg.Animation.Validate()
}

// humanEnv carries the machinery every task reuses: the low-level control
// loop, the human animation playback with its noise process, and the
// collision and horizon bookkeeping. Concrete tasks embed it and layer
// their observation and reward logic on top.
type humanEnv struct {
	cfg        Config
	simulation sim.Sim
	scene      sim.Scene
	controller *control.FailsafeController
	logger     golog.Logger
	rng        *rand.Rand

	// low-level control substeps per policy step
	substeps int

	animNoise *human.OUProcess
	animTime  float64

	stepIdx  int
	collided bool
}

func newHumanEnv(
	cfg Config,
	simulation sim.Sim,
	scene sim.Scene,
	controller *control.FailsafeController,
	logger golog.Logger,
) (*humanEnv, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sampleTime := controller.SampleTime()
	substeps := int(math.Round(1 / (cfg.ControlFreq * sampleTime)))
	if substeps < 1 {
		return nil, errors.Errorf(
			"control frequency %.1f Hz leaves no room for control substeps of %.4f s", cfg.ControlFreq, sampleTime)
	}

	alpha := cfg.AnimationNoiseAlpha
	if alpha == 0 {
		alpha = defaultAnimNoiseAlpha
	}
	sigma := cfg.AnimationNoiseSigma
	if sigma == 0 {
		sigma = defaultAnimNoiseSigma
	}

	return &humanEnv{
		cfg:        cfg,
		simulation: simulation,
		scene:      scene,
		controller: controller,
		logger:     logger,
		rng:        rand.New(rand.NewSource(cfg.Seed)),
		substeps:   substeps,
		animNoise:  human.NewReparameterizedOUProcess(1, alpha, 0, sigma, cfg.Seed+1),
	}, nil
}

// Default priors of the animation playback-time noise.
const (
	defaultAnimNoiseAlpha = 0.1
	defaultAnimNoiseSigma = 0.05
)

// resetBase reinitializes the shared machinery for a new episode.
func (h *humanEnv) resetBase(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	h.stepIdx = 0
	h.collided = false
	h.animTime = 0
	if err := h.controller.Reset(h.simulation, h.cfg.BasePose, h.cfg.ShieldType); err != nil {
		return errors.Wrap(err, "resetting controller")
	}
	h.scene.SetHumanAnimationFrame(0)
	return nil
}

// advance runs one policy step: it hands the action to the controller and
// then runs the low-level loop, feeding human measurements to the shield,
// stepping the physics, and playing the human animation. Collisions are
// recorded, not raised.
//
// warp maps the accumulated linear animation time to the played frame;
// tasks without phase logic pass linear playback.
func (h *humanEnv) advance(ctx context.Context, action []float64, warp func(classicTime float64) float64) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := h.controller.SetGoal(h.simulation, action); err != nil {
		return err
	}

	h.collided = false
	dt := h.controller.SampleTime()
	for i := 0; i < h.substeps; i++ {
		if err := h.controller.SetHumanMeasurement(h.scene.HumanJointPositions(), h.simulation.Time()); err != nil {
			return errors.Wrap(err, "measuring human")
		}
		torques, err := h.controller.Torques(h.simulation)
		if err != nil {
			return errors.Wrap(err, "computing torques")
		}
		if err := h.simulation.Step(torques); err != nil {
			return errors.Wrap(err, "stepping simulation")
		}

		h.animTime += (dt + h.animNoise.Step(dt)[0]) * h.cfg.Animation.Freq
		if h.animTime < 0 {
			h.animTime = 0
		}
		h.scene.SetHumanAnimationFrame(h.frameAt(warp(h.animTime)))

		if h.scene.Collision() {
			h.collided = true
		}
	}

	h.stepIdx++
	return nil
}

// frameAt clamps a played animation time to a valid frame index.
func (h *humanEnv) frameAt(animationTime float64) int {
	frame := int(animationTime)
	if frame >= h.cfg.Animation.Length {
		frame = h.cfg.Animation.Length - 1
	}
	if frame < 0 {
		frame = 0
	}
	return frame
}

// linearPlayback is the warp of tasks whose animation simply runs forward.
func linearPlayback(classicTime float64) float64 {
	return classicTime
}

// timeout reports whether the episode horizon has run out.
func (h *humanEnv) timeout() bool {
	return h.stepIdx >= h.cfg.Horizon
}

// scaled applies the optional reward scale.
func (h *humanEnv) scaled(reward float64) float64 {
	if h.cfg.RewardScale != 0 {
		return reward * h.cfg.RewardScale
	}
	return reward
}

// baseInfo assembles the info values shared by all tasks.
func (h *humanEnv) baseInfo(success bool) Info {
	info := Info{
		InfoKeyCollision: boolToInt(h.collided),
		InfoKeySuccess:   boolToInt(success),
		InfoKeyTimeout:   boolToInt(h.timeout()),
	}
	return info
}

// done combines the horizon with the configured termination conditions.
func (h *humanEnv) done(success bool) bool {
	if h.timeout() {
		return true
	}
	if h.cfg.DoneAtCollision && h.collided {
		return true
	}
	if h.cfg.DoneAtSuccess && success {
		return true
	}
	return false
}

// closeParts closes whichever environment parts are closeable.
func (h *humanEnv) closeParts(parts ...interface{}) error {
	var err error
	for _, part := range parts {
		if closer, ok := part.(io.Closer); ok {
			err = multierr.Combine(err, closer.Close())
		}
	}
	return err
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
