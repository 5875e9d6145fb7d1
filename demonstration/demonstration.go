// Package demonstration loads pre-recorded expert demonstration episodes
// from an on-disk dataset. Datasets are produced by the external
// collection tooling; this package only reads them.
package demonstration

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/safehri/hrgym/human"
)

// Snapshot is one per-timestep expert observation. It carries the union
// of the semantic features the imitation metrics compare; a dataset only
// fills the fields its environment produces.
type Snapshot struct {
	// GoalDifference is the joint-space difference to the desired goal.
	GoalDifference []float64 `json:"goal_difference,omitempty"`
	// VecEEFToTarget is the vector from the end effector to the target.
	VecEEFToTarget []float64 `json:"vec_eef_to_target,omitempty"`
	// VecEEFToHumanLH is the vector from the end effector to the human's
	// left hand.
	VecEEFToHumanLH []float64 `json:"vec_eef_to_human_lh,omitempty"`
	// GripperQPos holds the joint angles of both gripper fingers.
	GripperQPos []float64 `json:"robot0_gripper_qpos,omitempty"`
	// ObjectGripped reports whether both finger pads touched the object.
	ObjectGripped bool `json:"object_gripped,omitempty"`
	// BoardGripped reports whether the shared board was held.
	BoardGripped bool `json:"board_gripped,omitempty"`
}

// Metadata describes one demonstration episode.
type Metadata struct {
	// Animation is the timing metadata of the human animation the episode
	// was recorded against.
	Animation human.AnimationInfo `json:"animation"`
}

// Episode is one recorded expert episode: an ordered sequence of
// per-timestep snapshots plus its metadata.
type Episode struct {
	Observations []Snapshot `json:"expert_observations"`
	Metadata     Metadata   `json:"metadata"`
}

// TransitionCount returns the number of transitions in the episode.
func (e *Episode) TransitionCount() int {
	return len(e.Observations)
}

// At returns the snapshot at the given playback index, clamped to the
// final snapshot once the agent's episode outlasts the demonstration.
func (e *Episode) At(idx int) Snapshot {
	if idx >= len(e.Observations) {
		idx = len(e.Observations) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return e.Observations[idx]
}

// Dataset is a named collection of demonstration episodes, loaded once.
type Dataset struct {
	name     string
	episodes []Episode
}

// NewDataset returns an in-memory dataset over the given episodes.
func NewDataset(name string, episodes []Episode) *Dataset {
	return &Dataset{name: name, episodes: episodes}
}

// Name returns the dataset name.
func (d *Dataset) Name() string {
	return d.name
}

// EpisodeCount returns the number of episodes in the dataset.
func (d *Dataset) EpisodeCount() int {
	return len(d.episodes)
}

// Episode returns the episode at the given index.
func (d *Dataset) Episode(idx int) *Episode {
	return &d.episodes[idx]
}

// Store reads datasets from a root directory, keyed by name. Each episode
// is one JSON file inside the dataset directory.
type Store struct {
	rootDir string
}

// NewStore returns a demonstration store rooted at the given directory.
func NewStore(rootDir string) *Store {
	return &Store{rootDir: rootDir}
}

// LoadDataset reads all episodes of the named dataset. Episode files are
// ordered by file name.
func (s *Store) LoadDataset(name string) (*Dataset, error) {
	dir := filepath.Join(s.rootDir, name)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open dataset %q", name)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	if len(files) == 0 {
		return nil, errors.Errorf("dataset %q contains no episodes", name)
	}

	episodes := make([]Episode, 0, len(files))
	for _, file := range files {
		//nolint:gosec
		data, err := os.ReadFile(filepath.Join(dir, file))
		if err != nil {
			return nil, errors.Wrapf(err, "cannot read episode %q of dataset %q", file, name)
		}
		var episode Episode
		if err := json.Unmarshal(data, &episode); err != nil {
			return nil, errors.Wrapf(err, "cannot parse episode %q of dataset %q", file, name)
		}
		if len(episode.Observations) == 0 {
			return nil, errors.Errorf("episode %q of dataset %q has no observations", file, name)
		}
		episodes = append(episodes, episode)
	}

	return &Dataset{name: name, episodes: episodes}, nil
}
