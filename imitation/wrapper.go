package imitation

import (
	"context"
	"math/rand"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/safehri/hrgym/demonstration"
	"github.com/safehri/hrgym/env"
	"github.com/safehri/hrgym/utils"
)

// Observation key of the demonstration progress added when ObserveTime is
// set, and info keys produced by the wrapper.
const (
	ProgressObservationKey = "demonstration_progress"

	// InfoKeyEarlyTermination is 1 when the step triggered early
	// termination, 0 otherwise. Only present when early termination is
	// enabled.
	InfoKeyEarlyTermination = "early_termination"
)

// WrapperConfig holds the reward wrapper parameters.
type WrapperConfig struct {
	// Alpha is the weight of the imitation reward in the combined reward.
	// 0 keeps only the environment reward, 1 only the imitation reward.
	Alpha float64 `json:"alpha"`
	// ObserveTime adds the demonstration progress, normalized to [0, 1],
	// to each observation. Once the agent's episode outlasts the
	// demonstration the progress stays pinned at 1.
	ObserveTime bool `json:"observe_time,omitempty"`
	// RSIProb is the probability of reference state initialization: with
	// this probability a reset starts the demonstration playback at a
	// random index instead of the beginning.
	RSIProb float64 `json:"rsi_prob,omitempty"`
	// UseEarlyTermination terminates episodes whose state diverged too far
	// from the expert's, per the metric.
	UseEarlyTermination bool `json:"use_early_termination,omitempty"`
	// Seed seeds the wrapper's episode and RSI sampling.
	Seed int64 `json:"seed,omitempty"`
}

// Validate ensures all parts of the config are valid.
func (cfg *WrapperConfig) Validate() error {
	if cfg.Alpha < 0 || cfg.Alpha > 1 {
		return errors.Errorf("alpha must be in [0, 1], got %f", cfg.Alpha)
	}
	if cfg.RSIProb < 0 || cfg.RSIProb > 1 {
		return errors.Errorf("rsi_prob must be in [0, 1], got %f", cfg.RSIProb)
	}
	return nil
}

// RewardWrapper blends an imitation reward into the wrapped environment's
// reward:
//
//	combined = alpha * imitation + (1 - alpha) * environment
//
// Each reset samples a demonstration episode; each step advances its
// playback cursor and compares the expert's state at the cursor with the
// agent's state taken from the step's info.
type RewardWrapper struct {
	wrapped env.Environment
	dataset *demonstration.Dataset
	metric  Metric
	cfg     WrapperConfig
	logger  golog.Logger
	rng     *rand.Rand

	episode *demonstration.Episode
	cursor  int

	imitationRewards   []float64
	environmentRewards []float64
}

// NewRewardWrapper wraps the environment with imitation rewards drawn
// from the given dataset and scored by the given metric.
func NewRewardWrapper(
	wrapped env.Environment,
	dataset *demonstration.Dataset,
	metric Metric,
	cfg WrapperConfig,
	logger golog.Logger,
) (*RewardWrapper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if dataset.EpisodeCount() == 0 {
		return nil, errors.New("imitation wrapper needs a non-empty dataset")
	}
	return &RewardWrapper{
		wrapped: wrapped,
		dataset: dataset,
		metric:  metric,
		cfg:     cfg,
		logger:  logger,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Reset starts a new episode and samples the demonstration episode to
// imitate, optionally at a random playback index.
func (w *RewardWrapper) Reset(ctx context.Context) (env.Observation, error) {
	obs, err := w.wrapped.Reset(ctx)
	if err != nil {
		return nil, err
	}

	w.episode = w.dataset.Episode(w.rng.Intn(w.dataset.EpisodeCount()))
	w.cursor = 0
	if w.cfg.RSIProb > 0 && w.rng.Float64() < w.cfg.RSIProb {
		w.cursor = w.rng.Intn(w.episode.TransitionCount())
	}

	w.imitationRewards = w.imitationRewards[:0]
	w.environmentRewards = w.environmentRewards[:0]
	if recorder, ok := w.metric.(episodeRecorder); ok {
		recorder.resetEpisode()
	}

	if w.cfg.ObserveTime {
		obs[ProgressObservationKey] = []float64{w.progress()}
	}
	return obs, nil
}

// Step applies the action to the wrapped environment and blends the
// imitation reward into the returned reward.
func (w *RewardWrapper) Step(ctx context.Context, action []float64) (env.Observation, float64, bool, env.Info, error) {
	if w.episode == nil {
		return nil, 0, false, nil, errors.New("imitation wrapper must be reset before stepping")
	}

	obs, envReward, done, info, err := w.wrapped.Step(ctx, action)
	if err != nil {
		return nil, 0, false, nil, err
	}

	policy, ok := info[env.InfoKeyExpertObservation].(demonstration.Snapshot)
	if !ok {
		return nil, 0, false, nil, errors.New("wrapped environment did not report an expert observation")
	}

	if w.cursor < w.episode.TransitionCount() {
		w.cursor++
	}
	demo := w.episode.At(w.cursor)

	imitationReward := w.metric.Reward(demo, policy)

	if w.cfg.UseEarlyTermination {
		terminate := w.metric.TerminateEarly(demo, policy)
		done = done || terminate
		info[InfoKeyEarlyTermination] = boolToInt(terminate)
	}

	if w.cfg.ObserveTime {
		obs[ProgressObservationKey] = []float64{w.progress()}
	}

	w.imitationRewards = append(w.imitationRewards, imitationReward)
	w.environmentRewards = append(w.environmentRewards, envReward)

	reward := w.combine(envReward, imitationReward)

	if done {
		w.addRewardToInfo(info)
		if recorder, ok := w.metric.(episodeRecorder); ok {
			recorder.addEpisodeStats(info)
		}
	}

	return obs, reward, done, info, nil
}

// Close closes the wrapped environment.
func (w *RewardWrapper) Close(ctx context.Context) error {
	return w.wrapped.Close(ctx)
}

// progress is the normalized demonstration playback position, pinned at 1
// once the agent's episode outlasts the demonstration.
func (w *RewardWrapper) progress() float64 {
	return utils.ClipToRange(float64(w.cursor)/float64(w.episode.TransitionCount()), 0, 1)
}

func (w *RewardWrapper) combine(envReward, imitationReward float64) float64 {
	return imitationReward*w.cfg.Alpha + envReward*(1-w.cfg.Alpha)
}

// addRewardToInfo records the episode reward summary:
// ep_*_rew_mean keys carry the per-episode sums, *_rew_mean the means.
func (w *RewardWrapper) addRewardToInfo(info env.Info) {
	epImitation := floats.Sum(w.imitationRewards)
	epEnvironment := floats.Sum(w.environmentRewards)
	info["ep_im_rew_mean"] = epImitation
	info["ep_env_rew_mean"] = epEnvironment
	info["ep_full_rew_mean"] = w.combine(epEnvironment, epImitation)

	meanImitation := stat.Mean(w.imitationRewards, nil)
	meanEnvironment := stat.Mean(w.environmentRewards, nil)
	info["im_rew_mean"] = meanImitation
	info["env_rew_mean"] = meanEnvironment
	info["full_rew_mean"] = w.combine(meanEnvironment, meanImitation)
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
