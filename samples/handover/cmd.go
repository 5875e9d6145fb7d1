// Package main runs a scripted episode of the human-robot handover task
// against the fake shield and a minimal kinematic simulation, pacing the
// policy steps in wall time.
package main

import (
	"context"
	"flag"
	"math"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"go.viam.com/utils"
	"gonum.org/v1/gonum/mat"

	"github.com/safehri/hrgym/control"
	"github.com/safehri/hrgym/demonstration"
	"github.com/safehri/hrgym/env"
	"github.com/safehri/hrgym/human"
	"github.com/safehri/hrgym/imitation"
	"github.com/safehri/hrgym/shield"
	shieldfake "github.com/safehri/hrgym/shield/fake"
)

var logger = golog.NewDevelopmentLogger("handover")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	episodes := flag.Int("episodes", 3, "number of episodes to run")
	alpha := flag.Float64("alpha", 0.3, "imitation reward weight")
	realtime := flag.Bool("realtime", false, "pace policy steps in wall time")
	flag.Parse()

	animation := human.AnimationInfo{
		Length:             240,
		Freq:               20,
		Keyframes:          []int{60, 120},
		ObjectHoldingHand:  "left",
		LoopAmplitudeMeans: []float64{8},
		LoopAmplitudeStds:  []float64{2},
		LoopSpeedMeans:     []float64{1},
		LoopSpeedStds:      []float64{0.2},
	}

	world := newWorld(3, animation)

	sh, err := shieldfake.NewShield(
		shieldfake.Config{MaxJointVel: 1.5, SlowdownDist: 0.5},
		shield.BasePose{},
		world.qpos,
		logger,
	)
	if err != nil {
		return err
	}

	controller, err := control.NewFailsafeController(
		control.Config{
			Kp:                120,
			DampingRatio:      1,
			InputMin:          -1,
			InputMax:          1,
			OutputMin:         -0.08,
			OutputMax:         0.08,
			ControlSampleTime: 0.004,
		},
		sh,
		[]int{0, 1, 2}, []int{0, 1, 2},
		[]float64{-80, -80, -80}, []float64{80, 80, 80},
		logger,
	)
	if err != nil {
		return err
	}

	handoverEnv, err := env.NewHandoverEnv(
		env.Config{
			Horizon:         200,
			ControlFreq:     10,
			GoalDist:        0.1,
			CollisionReward: -10,
			GoalReward:      1,
			DoneAtSuccess:   true,
			Animation:       animation,
			ShieldType:      shield.TypeSSM,
		},
		env.HandoverConfig{ObjectGrippedReward: -0.4, ObjectAtTargetReward: -0.2},
		world, world, controller, logger,
	)
	if err != nil {
		return err
	}

	metric, err := imitation.NewPickPlaceMetric(0.7, 0.2, 0.05, 4, "gaussian", "gaussian")
	if err != nil {
		return err
	}
	wrapper, err := imitation.NewRewardWrapper(
		handoverEnv,
		scriptedDataset(),
		metric,
		imitation.WrapperConfig{Alpha: *alpha, ObserveTime: true},
		logger,
	)
	if err != nil {
		return err
	}
	defer func() {
		utils.UncheckedError(wrapper.Close(context.Background()))
	}()

	clk := clock.New()
	var stepPeriod time.Duration
	if *realtime {
		stepPeriod = 100 * time.Millisecond
	}

	for ep := 0; ep < *episodes; ep++ {
		world.reset()
		if _, err := wrapper.Reset(ctx); err != nil {
			return err
		}
		var total float64
		done := false
		for !done {
			action := world.scriptedAction(handoverEnv.Phase())
			_, reward, stepDone, info, err := wrapper.Step(ctx, action)
			if err != nil {
				return err
			}
			total += reward
			done = stepDone
			if done {
				logger.Infow("episode finished",
					"episode", ep,
					"return", total,
					"phase", handoverEnv.Phase().String(),
					"success", info[env.InfoKeySuccess],
					"im_rew_mean", info["im_rew_mean"],
				)
			}
			if stepPeriod > 0 && !utils.SelectContextOrWaitChan(ctx, clk.After(stepPeriod)) {
				return ctx.Err()
			}
		}
	}
	return nil
}

// scriptedDataset fabricates one expert episode so the imitation wrapper
// has something to compare against.
func scriptedDataset() *demonstration.Dataset {
	observations := make([]demonstration.Snapshot, 200)
	for i := range observations {
		progress := float64(i) / 200
		observations[i] = demonstration.Snapshot{
			VecEEFToTarget: []float64{0.5 * (1 - progress), 0, 0},
			GripperQPos:    []float64{0.02, -0.02},
			ObjectGripped:  i > 60,
		}
	}
	return demonstration.NewDataset("scripted", []demonstration.Episode{{Observations: observations}})
}

// world is a minimal kinematic stand-in for the physics backend: unit
// point masses on each joint, a human hand circling the workspace, and an
// object that rides the hand until the gripper takes it.
type world struct {
	qpos, qvel []float64
	time       float64
	dt         float64

	animation human.AnimationInfo
	frame     int
	gripped   bool
}

func newWorld(joints int, animation human.AnimationInfo) *world {
	return &world{
		qpos:      make([]float64, joints),
		qvel:      make([]float64, joints),
		dt:        0.004,
		animation: animation,
	}
}

func (w *world) reset() {
	for i := range w.qpos {
		w.qpos[i] = 0
		w.qvel[i] = 0
	}
	w.frame = 0
	w.gripped = false
}

func (w *world) JointPositions(indices []int) []float64 {
	out := make([]float64, len(indices))
	for i, idx := range indices {
		out[i] = w.qpos[idx]
	}
	return out
}

func (w *world) JointVelocities(indices []int) []float64 {
	out := make([]float64, len(indices))
	for i, idx := range indices {
		out[i] = w.qvel[idx]
	}
	return out
}

func (w *world) MassMatrix(indices []int) *mat.Dense {
	m := mat.NewDense(len(indices), len(indices), nil)
	for i := range indices {
		m.Set(i, i, 1)
	}
	return m
}

func (w *world) TorqueCompensation(indices []int) []float64 {
	return make([]float64, len(indices))
}

func (w *world) Time() float64 {
	return w.time
}

func (w *world) Step(torques []float64) error {
	for i := range w.qpos {
		w.qvel[i] += torques[i] * w.dt
		w.qpos[i] += w.qvel[i] * w.dt
	}
	w.time += w.dt
	return nil
}

func (w *world) EEFPosition() r3.Vector {
	return r3.Vector{X: 0.4 + 0.2*w.qpos[0], Y: 0.2 * w.qpos[1], Z: 0.3 + 0.2*w.qpos[2]}
}

func (w *world) GripperQPos() []float64 {
	return []float64{0.02, -0.02}
}

func (w *world) ObjectPosition() r3.Vector {
	if w.gripped {
		return w.EEFPosition()
	}
	return w.handPosition()
}

func (w *world) ObjectGripped() bool {
	if !w.gripped && w.EEFPosition().Distance(w.handPosition()) < 0.08 {
		w.gripped = true
	}
	return w.gripped
}

func (w *world) TargetPosition() r3.Vector {
	return r3.Vector{X: 0.2, Y: -0.4, Z: 0.3}
}

func (w *world) HumanBodyPosition(body string) r3.Vector {
	return w.handPosition()
}

func (w *world) HumanJointPositions() []r3.Vector {
	return []r3.Vector{w.handPosition()}
}

func (w *world) SetHumanAnimationFrame(frame int) {
	w.frame = frame
}

func (w *world) Collision() bool {
	return false
}

// handPosition moves the human hand towards the handover pose as the
// animation progresses.
func (w *world) handPosition() r3.Vector {
	progress := float64(w.frame) / float64(w.animation.Length-1)
	angle := math.Pi * (1 - progress)
	return r3.Vector{
		X: 0.5 + 0.4*math.Cos(angle),
		Y: 0.4 * math.Sin(angle),
		Z: 0.85,
	}
}

// scriptedAction is a crude hand-written policy: move towards the object
// while the human presents it, then towards the target.
func (w *world) scriptedAction(phase human.Phase) []float64 {
	goal := w.handPosition()
	if phase >= human.PhaseWait {
		goal = w.TargetPosition()
	}
	eef := w.EEFPosition()
	return []float64{
		(goal.X - eef.X) * 2,
		(goal.Y - eef.Y) * 2,
		(goal.Z - eef.Z) * 2,
	}
}
