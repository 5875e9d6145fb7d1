package human

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
)

// Phase is the stage of a handover animation. Phases are ordered; the
// machine never moves backward and PhaseComplete is terminal.
type Phase int

// The handover phases.
const (
	// PhaseApproach: the human walks towards the handover location.
	PhaseApproach Phase = iota
	// PhasePresent: the human offers the object to the robot.
	PhasePresent
	// PhaseWait: the object is gripped; the human idles near the
	// presentation pose until the object reaches its target zone.
	PhaseWait
	// PhaseRetreat: the human withdraws.
	PhaseRetreat
	// PhaseComplete: the animation reached its final frame. Terminal.
	PhaseComplete
)

// String returns a readable name for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseApproach:
		return "approach"
	case PhasePresent:
		return "present"
	case PhaseWait:
		return "wait"
	case PhaseRetreat:
		return "retreat"
	case PhaseComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// PhaseMachine governs the human/object interaction phases of a handover
// animation and the animation-time warping within them. Time "borrowed"
// by the oscillating phases is tracked per phase transition so that
// resumed linear playback continues from the correct offset.
type PhaseMachine struct {
	info  AnimationInfo
	phase Phase

	// delay offsets accumulated by the PRESENT and WAIT oscillations
	nDelayedTimesteps [2]float64

	waitAmplitudes []float64
	waitSpeeds     []float64
}

// NewPhaseMachine returns a phase machine for the given animation. The
// machine starts in PhaseComplete until the first Reset.
func NewPhaseMachine(info AnimationInfo) (*PhaseMachine, error) {
	if err := info.Validate(); err != nil {
		return nil, err
	}
	if len(info.Keyframes) < 2 {
		return nil, errors.Errorf("handover animation needs two keyframes, got %d", len(info.Keyframes))
	}
	return &PhaseMachine{info: info, phase: PhaseComplete}, nil
}

// Reset re-enters PhaseApproach, zeroes the delay counters, and resamples
// the wait-phase modulation properties for the new episode.
func (m *PhaseMachine) Reset(rng *rand.Rand) {
	m.phase = PhaseApproach
	m.nDelayedTimesteps = [2]float64{}
	m.waitAmplitudes, m.waitSpeeds = SampleLoopProperties(m.info, rng)
}

// Phase returns the current phase.
func (m *PhaseMachine) Phase() Phase {
	return m.phase
}

// ObjectGripped notifies the machine that the manipulated object was
// detected gripped; during PhasePresent this moves to PhaseWait.
func (m *PhaseMachine) ObjectGripped() {
	if m.phase == PhasePresent {
		m.phase = PhaseWait
	}
}

// ObjectAtTarget notifies the machine that the object reached its target
// zone; during PhaseWait this moves to PhaseRetreat.
func (m *PhaseMachine) ObjectAtTarget() {
	if m.phase == PhaseWait {
		m.phase = PhaseRetreat
	}
}

// AnimationTime maps the raw (linear) animation time onto the played
// animation time for the current phase, advancing phases as their
// conditions are met. Once the computed time reaches the final frame the
// machine irreversibly becomes PhaseComplete and the time stays pinned
// there for the remainder of the episode.
func (m *PhaseMachine) AnimationTime(classicTime float64) float64 {
	finalFrame := float64(m.info.Length - 1)
	if m.phase == PhaseComplete {
		return finalFrame
	}

	animationTime := classicTime
	k0 := float64(m.info.Keyframes[0])
	k1 := float64(m.info.Keyframes[1])

	// progress to the present phase automatically with the animation
	if animationTime > k0 && m.phase == PhaseApproach {
		m.phase = PhasePresent
	}

	// within the present phase, loop back and forth between the two
	// keyframes enclosing it
	if m.phase == PhasePresent && animationTime > k0+(k1-k0)/2 {
		animationTime = math.Floor(SinModulation(classicTime, (k0+k1)/2, (k1-k0)/2, 1))
		m.nDelayedTimesteps[0] = classicTime - animationTime
	}

	// in the wait phase, loop around the second keyframe
	if m.phase == PhaseWait {
		animationTime = math.Floor(LayeredSinModulations(
			animationTime-m.nDelayedTimesteps[0], k1, m.waitAmplitudes, m.waitSpeeds))
		m.nDelayedTimesteps[1] = classicTime - animationTime
	}

	// in the retreat phase, run the animation linearly, offset backward by
	// the delay accumulated while waiting
	if m.phase == PhaseRetreat {
		animationTime -= m.nDelayedTimesteps[1]
	}

	if animationTime >= finalFrame {
		m.phase = PhaseComplete
		animationTime = finalFrame
	}

	return animationTime
}
