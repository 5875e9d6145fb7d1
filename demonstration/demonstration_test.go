package demonstration

import (
	"os"
	"path/filepath"
	"testing"

	"go.viam.com/test"
)

func writeEpisode(t *testing.T, dir, name, contents string) {
	t.Helper()
	test.That(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644), test.ShouldBeNil)
}

const episodeJSON = `{
	"expert_observations": [
		{"goal_difference": [0.1, 0.2], "robot0_gripper_qpos": [0.01, -0.01], "object_gripped": false},
		{"goal_difference": [0.05, 0.1], "robot0_gripper_qpos": [0.02, -0.02], "object_gripped": true}
	],
	"metadata": {
		"animation": {
			"length": 100,
			"freq": 20,
			"keyframes": [20, 40],
			"object_holding_hand": "left"
		}
	}
}`

func TestStoreLoadDataset(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "handover")
	test.That(t, os.MkdirAll(dir, 0o755), test.ShouldBeNil)
	writeEpisode(t, dir, "ep_001.json", episodeJSON)
	writeEpisode(t, dir, "ep_000.json", episodeJSON)
	writeEpisode(t, dir, "notes.txt", "ignored")

	store := NewStore(root)
	ds, err := store.LoadDataset("handover")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ds.Name(), test.ShouldEqual, "handover")
	test.That(t, ds.EpisodeCount(), test.ShouldEqual, 2)

	ep := ds.Episode(0)
	test.That(t, ep.TransitionCount(), test.ShouldEqual, 2)
	test.That(t, ep.Observations[0].GoalDifference, test.ShouldResemble, []float64{0.1, 0.2})
	test.That(t, ep.Observations[1].ObjectGripped, test.ShouldBeTrue)
	test.That(t, ep.Metadata.Animation.Keyframes, test.ShouldResemble, []int{20, 40})
	test.That(t, ep.Metadata.Animation.ObjectHoldingHand, test.ShouldEqual, "left")
}

func TestEpisodeAtClamps(t *testing.T) {
	ep := Episode{Observations: []Snapshot{
		{ObjectGripped: false},
		{ObjectGripped: true},
	}}
	test.That(t, ep.At(0).ObjectGripped, test.ShouldBeFalse)
	test.That(t, ep.At(1).ObjectGripped, test.ShouldBeTrue)
	test.That(t, ep.At(7).ObjectGripped, test.ShouldBeTrue)
	test.That(t, ep.At(-1).ObjectGripped, test.ShouldBeFalse)
}

func TestStoreLoadDatasetErrors(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)

	_, err := store.LoadDataset("missing")
	test.That(t, err, test.ShouldNotBeNil)

	dir := filepath.Join(root, "empty")
	test.That(t, os.MkdirAll(dir, 0o755), test.ShouldBeNil)
	_, err = store.LoadDataset("empty")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "no episodes")

	dir = filepath.Join(root, "bad")
	test.That(t, os.MkdirAll(dir, 0o755), test.ShouldBeNil)
	writeEpisode(t, dir, "ep_000.json", "{not json")
	_, err = store.LoadDataset("bad")
	test.That(t, err, test.ShouldNotBeNil)
}
