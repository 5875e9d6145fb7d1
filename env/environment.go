// Package env implements reinforcement learning environments in which a
// robot arm acts near an animated human. The physics backend and scene
// graph live behind the sim interfaces; this package owns the control
// loop, the human animation playback, and the task logic.
package env

import (
	"context"
)

// Observation maps feature names to their values.
type Observation map[string][]float64

// Info carries per-step diagnostic values alongside the reward.
type Info map[string]interface{}

// Info keys common to all environments.
const (
	// InfoKeyCollision is 1 when a collision occurred during the step.
	InfoKeyCollision = "collision"
	// InfoKeySuccess is 1 when the task goal was achieved during the step.
	InfoKeySuccess = "success"
	// InfoKeyExpertObservation holds the demonstration.Snapshot of the
	// agent's current state, used by the imitation reward wrapper.
	InfoKeyExpertObservation = "expert_observation"
	// InfoKeyTimeout is 1 when the episode ended because the horizon ran out.
	InfoKeyTimeout = "timeout"
)

// Environment is a task an agent interacts with in episodes. Collisions
// and early terminations are reported through the done flag and Info,
// never as errors; errors mean the environment itself failed.
type Environment interface {
	// Reset starts a new episode and returns its first observation.
	Reset(ctx context.Context) (Observation, error)

	// Step applies one policy action and advances the simulation by one
	// policy timestep. It returns the next observation, the reward, whether
	// the episode is over, and diagnostic info.
	Step(ctx context.Context, action []float64) (Observation, float64, bool, Info, error)

	// Close releases the environment's resources.
	Close(ctx context.Context) error
}
