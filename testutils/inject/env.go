package inject

import (
	"context"

	"github.com/safehri/hrgym/env"
)

// Environment is an injected environment.
type Environment struct {
	env.Environment
	ResetFunc func(ctx context.Context) (env.Observation, error)
	StepFunc  func(ctx context.Context, action []float64) (env.Observation, float64, bool, env.Info, error)
	CloseFunc func(ctx context.Context) error
}

// Reset calls the injected Reset or the real version.
func (e *Environment) Reset(ctx context.Context) (env.Observation, error) {
	if e.ResetFunc == nil {
		return e.Environment.Reset(ctx)
	}
	return e.ResetFunc(ctx)
}

// Step calls the injected Step or the real version.
func (e *Environment) Step(ctx context.Context, action []float64) (env.Observation, float64, bool, env.Info, error) {
	if e.StepFunc == nil {
		return e.Environment.Step(ctx, action)
	}
	return e.StepFunc(ctx, action)
}

// Close calls the injected Close or the real version.
func (e *Environment) Close(ctx context.Context) error {
	if e.CloseFunc == nil {
		return e.Environment.Close(ctx)
	}
	return e.CloseFunc(ctx)
}
