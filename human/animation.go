// Package human contains the animation machinery for the simulated human:
// timing metadata, sinusoidal animation-time warping, the handover phase
// state machine, and the noise process used for animation variability.
package human

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
)

// Hand body names used by the animation playback.
const (
	LeftHandBody  = "Human_L_Hand"
	RightHandBody = "Human_R_Hand"
)

// AnimationInfo is the timing metadata of one source animation.
type AnimationInfo struct {
	// Length is the number of frames in the animation.
	Length int `json:"length"`
	// Freq is the playback speed of the animation in frames per second.
	Freq float64 `json:"freq"`
	// Keyframes are the frame indices of the notable animation events.
	// Handover animations carry two: the end of the approach and the
	// presentation pose.
	Keyframes []int `json:"keyframes"`
	// ObjectHoldingHand is "left" or "right".
	ObjectHoldingHand string `json:"object_holding_hand,omitempty"`
	// Loop priors describe, per modulation layer, the distribution the
	// per-episode wait-phase amplitudes and speeds are sampled from.
	LoopAmplitudeMeans []float64 `json:"loop_amplitude_means,omitempty"`
	LoopAmplitudeStds  []float64 `json:"loop_amplitude_stds,omitempty"`
	LoopSpeedMeans     []float64 `json:"loop_speed_means,omitempty"`
	LoopSpeedStds      []float64 `json:"loop_speed_stds,omitempty"`
}

// Validate ensures all parts of the animation info are valid.
func (info *AnimationInfo) Validate() error {
	if info.Length <= 0 {
		return errors.New("animation needs a positive frame count")
	}
	if info.Freq <= 0 {
		return errors.New("animation needs a positive playback frequency")
	}
	for _, kf := range info.Keyframes {
		if kf < 0 || kf >= info.Length {
			return errors.Errorf("keyframe %d outside animation of length %d", kf, info.Length)
		}
	}
	if len(info.LoopAmplitudeMeans) != len(info.LoopAmplitudeStds) ||
		len(info.LoopSpeedMeans) != len(info.LoopSpeedStds) ||
		len(info.LoopAmplitudeMeans) != len(info.LoopSpeedMeans) {
		return errors.New("animation loop priors must all have the same layer count")
	}
	return nil
}

// HoldingHandBody maps the object_holding_hand value to the body name of
// the human hand. An unrecognized value is a fatal configuration error.
func (info *AnimationInfo) HoldingHandBody() (string, error) {
	switch info.ObjectHoldingHand {
	case "left":
		return LeftHandBody, nil
	case "right":
		return RightHandBody, nil
	default:
		return "", errors.Errorf(
			"animation info does not specify a valid value for object_holding_hand: %q", info.ObjectHoldingHand)
	}
}

// SinModulation warps the linear animation time into a single sinusoidal
// back-and-forth oscillation anchored at startTime.
func SinModulation(classicTime, startTime, amplitude, speed float64) float64 {
	return startTime + amplitude*math.Sin((classicTime-startTime)*speed/amplitude)
}

// LayeredSinModulations warps the linear animation time into a sum of
// sinusoidal oscillations anchored at startTime.
func LayeredSinModulations(classicTime, startTime float64, amplitudes, speeds []float64) float64 {
	t := startTime
	for i := range amplitudes {
		t += amplitudes[i] * math.Sin((classicTime-startTime)*speeds[i]/amplitudes[i])
	}
	return t
}

// SampleLoopProperties draws the per-episode wait-phase modulation
// amplitudes and speeds from the animation's priors. Amplitudes are kept
// at one frame or more so the modulation stays well defined.
func SampleLoopProperties(info AnimationInfo, rng *rand.Rand) ([]float64, []float64) {
	amplitudes := make([]float64, len(info.LoopAmplitudeMeans))
	speeds := make([]float64, len(info.LoopSpeedMeans))
	for i := range amplitudes {
		amplitudes[i] = math.Max(1, info.LoopAmplitudeMeans[i]+rng.NormFloat64()*info.LoopAmplitudeStds[i])
		speeds[i] = math.Max(0, info.LoopSpeedMeans[i]+rng.NormFloat64()*info.LoopSpeedStds[i])
	}
	return amplitudes, speeds
}
