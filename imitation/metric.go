package imitation

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/safehri/hrgym/demonstration"
	"github.com/safehri/hrgym/env"
)

// Metric compares one expert snapshot against the agent's snapshot of the
// same step. Implementations are chosen per task at construction time.
type Metric interface {
	// Reward returns the imitation reward in [0, 1].
	Reward(demo, policy demonstration.Snapshot) float64

	// TerminateEarly reports whether the agent diverged far enough from
	// the expert to cut the episode short.
	TerminateEarly(demo, policy demonstration.Snapshot) bool
}

// episodeRecorder is implemented by metrics that accumulate extra
// per-episode statistics. The wrapper drives it across episode
// boundaries.
type episodeRecorder interface {
	resetEpisode()
	addEpisodeStats(info env.Info)
}

// ReachMetric scores reach episodes by the similarity of the joint-space
// goal differences.
type ReachMetric struct {
	iota   float64
	etDist float64
	sim    SimilarityFn
}

// NewReachMetric returns a reach metric with the given tolerance, early
// termination distance factor, and similarity function name.
func NewReachMetric(iota, etDist float64, simFn string) (*ReachMetric, error) {
	sim, err := SimilarityFnByName(simFn)
	if err != nil {
		return nil, err
	}
	return &ReachMetric{iota: iota, etDist: etDist, sim: sim}, nil
}

// Reward returns the similarity of the goal differences.
func (m *ReachMetric) Reward(demo, policy demonstration.Snapshot) float64 {
	return m.sim(floats.Distance(demo.GoalDifference, policy.GoalDifference, 2), m.iota)
}

// TerminateEarly reports whether the goal differences diverged past
// etDist * iota.
func (m *ReachMetric) TerminateEarly(demo, policy demonstration.Snapshot) bool {
	return floats.Distance(demo.GoalDifference, policy.GoalDifference, 2) > m.etDist*m.iota
}

// PickPlaceMetric scores pick-and-place episodes by a weighted blend of
// end-effector motion similarity and gripper joint similarity. If the
// expert holds the object and the agent does not, the reward is zero to
// push the agent towards grasping rather than shadowing the motion.
type PickPlaceMetric struct {
	beta   float64
	iotaM  float64
	iotaG  float64
	etDist float64
	mSim   SimilarityFn
	gSim   SimilarityFn

	motionRewards  []float64
	gripperRewards []float64
}

// NewPickPlaceMetric returns a pick-and-place metric. beta weights the
// motion term against the gripper term; iotaM and iotaG are their
// tolerances; mSimFn and gSimFn name their similarity functions.
func NewPickPlaceMetric(beta, iotaM, iotaG, etDist float64, mSimFn, gSimFn string) (*PickPlaceMetric, error) {
	mSim, err := SimilarityFnByName(mSimFn)
	if err != nil {
		return nil, err
	}
	gSim, err := SimilarityFnByName(gSimFn)
	if err != nil {
		return nil, err
	}
	return &PickPlaceMetric{
		beta:   beta,
		iotaM:  iotaM,
		iotaG:  iotaG,
		etDist: etDist,
		mSim:   mSim,
		gSim:   gSim,
	}, nil
}

// Reward blends motion and gripper similarity, or returns zero while the
// expert holds the object and the agent does not.
func (m *PickPlaceMetric) Reward(demo, policy demonstration.Snapshot) float64 {
	if demo.ObjectGripped && !policy.ObjectGripped {
		return 0
	}

	motionReward := m.mSim(floats.Distance(demo.VecEEFToTarget, policy.VecEEFToTarget, 2), m.iotaM)

	gripperDelta := math.Abs(
		(demo.GripperQPos[0] - policy.GripperQPos[0]) - (demo.GripperQPos[1] - policy.GripperQPos[1]))
	gripperReward := m.gSim(gripperDelta, m.iotaG)

	m.motionRewards = append(m.motionRewards, motionReward)
	m.gripperRewards = append(m.gripperRewards, gripperReward)

	return motionReward*m.beta + gripperReward*(1-m.beta)
}

// TerminateEarly cuts the episode when the expert holds the object, the
// agent does not, and the motion diverged past etDist * 0.1 * iotaM, or
// when the motion alone diverged past etDist * iotaM.
func (m *PickPlaceMetric) TerminateEarly(demo, policy demonstration.Snapshot) bool {
	dist := floats.Distance(demo.VecEEFToTarget, policy.VecEEFToTarget, 2)
	return (demo.ObjectGripped && !policy.ObjectGripped && dist > m.etDist*0.1*m.iotaM) ||
		dist > m.etDist*m.iotaM
}

func (m *PickPlaceMetric) resetEpisode() {
	m.motionRewards = m.motionRewards[:0]
	m.gripperRewards = m.gripperRewards[:0]
}

func (m *PickPlaceMetric) addEpisodeStats(info env.Info) {
	info["ep_m_im_rew_mean"] = floats.Sum(m.motionRewards)
	info["ep_g_im_rew_mean"] = floats.Sum(m.gripperRewards)
	info["m_im_rew_mean"] = meanOrNaN(m.motionRewards)
	info["g_im_rew_mean"] = meanOrNaN(m.gripperRewards)
}

// CollaborativeLiftMetric scores collaborative lifting episodes by the
// similarity of the end-effector-to-human-hand vectors, zeroed while the
// expert holds the board and the agent does not.
type CollaborativeLiftMetric struct {
	iota   float64
	etDist float64
	sim    SimilarityFn
}

// NewCollaborativeLiftMetric returns a collaborative lifting metric with
// the given tolerance, early termination distance factor, and similarity
// function name.
func NewCollaborativeLiftMetric(iota, etDist float64, simFn string) (*CollaborativeLiftMetric, error) {
	sim, err := SimilarityFnByName(simFn)
	if err != nil {
		return nil, err
	}
	return &CollaborativeLiftMetric{iota: iota, etDist: etDist, sim: sim}, nil
}

// Reward returns the similarity of the hand vectors, or zero while the
// expert holds the board and the agent does not.
func (m *CollaborativeLiftMetric) Reward(demo, policy demonstration.Snapshot) float64 {
	if demo.BoardGripped && !policy.BoardGripped {
		return 0
	}
	return m.sim(floats.Distance(demo.VecEEFToHumanLH, policy.VecEEFToHumanLH, 2), m.iota)
}

// TerminateEarly cuts the episode when the expert holds the board and the
// agent does not, or when the hand vectors diverged past etDist * iota.
func (m *CollaborativeLiftMetric) TerminateEarly(demo, policy demonstration.Snapshot) bool {
	if demo.BoardGripped && !policy.BoardGripped {
		return true
	}
	return floats.Distance(demo.VecEEFToHumanLH, policy.VecEEFToHumanLH, 2) > m.etDist*m.iota
}

func meanOrNaN(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return floats.Sum(values) / float64(len(values))
}
