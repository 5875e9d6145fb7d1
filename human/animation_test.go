package human

import (
	"math"
	"math/rand"
	"testing"

	"go.viam.com/test"
)

func testAnimationInfo() AnimationInfo {
	return AnimationInfo{
		Length:             100,
		Freq:               30,
		Keyframes:          []int{20, 40},
		ObjectHoldingHand:  "right",
		LoopAmplitudeMeans: []float64{5},
		LoopAmplitudeStds:  []float64{0},
		LoopSpeedMeans:     []float64{1},
		LoopSpeedStds:      []float64{0},
	}
}

func TestAnimationInfoValidate(t *testing.T) {
	info := testAnimationInfo()
	test.That(t, info.Validate(), test.ShouldBeNil)

	info = testAnimationInfo()
	info.Length = 0
	test.That(t, info.Validate(), test.ShouldNotBeNil)

	info = testAnimationInfo()
	info.Keyframes = []int{20, 200}
	test.That(t, info.Validate(), test.ShouldNotBeNil)

	info = testAnimationInfo()
	info.LoopSpeedMeans = []float64{1, 2}
	test.That(t, info.Validate(), test.ShouldNotBeNil)
}

func TestHoldingHandBody(t *testing.T) {
	info := testAnimationInfo()
	body, err := info.HoldingHandBody()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, body, test.ShouldEqual, RightHandBody)

	info.ObjectHoldingHand = "left"
	body, err = info.HoldingHandBody()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, body, test.ShouldEqual, LeftHandBody)

	info.ObjectHoldingHand = "both"
	_, err = info.HoldingHandBody()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "object_holding_hand")
}

func TestSinModulation(t *testing.T) {
	// at the anchor the modulated time equals the anchor
	test.That(t, SinModulation(30, 30, 10, 1), test.ShouldAlmostEqual, 30)
	// the oscillation is bounded by the amplitude
	for tt := 30.0; tt < 130; tt++ {
		warped := SinModulation(tt, 30, 10, 1)
		test.That(t, warped, test.ShouldBeBetweenOrEqual, 20, 40)
	}
}

func TestLayeredSinModulations(t *testing.T) {
	amplitudes := []float64{5, 2}
	speeds := []float64{1, 3}
	test.That(t, LayeredSinModulations(40, 40, amplitudes, speeds), test.ShouldAlmostEqual, 40)
	for tt := 40.0; tt < 140; tt++ {
		warped := LayeredSinModulations(tt, 40, amplitudes, speeds)
		test.That(t, warped, test.ShouldBeBetweenOrEqual, 33, 47)
	}
	// a single layer reduces to the plain modulation
	test.That(t,
		LayeredSinModulations(37, 40, amplitudes[:1], speeds[:1]),
		test.ShouldAlmostEqual,
		SinModulation(37, 40, 5, 1),
	)
}

func TestSampleLoopProperties(t *testing.T) {
	info := testAnimationInfo()
	info.LoopAmplitudeMeans = []float64{4, 0}
	info.LoopAmplitudeStds = []float64{0.5, 0}
	info.LoopSpeedMeans = []float64{1, 2}
	info.LoopSpeedStds = []float64{0.1, 0}

	rng := rand.New(rand.NewSource(17))
	amplitudes, speeds := SampleLoopProperties(info, rng)
	test.That(t, len(amplitudes), test.ShouldEqual, 2)
	test.That(t, len(speeds), test.ShouldEqual, 2)
	// amplitudes are kept at one frame or more
	test.That(t, amplitudes[1], test.ShouldEqual, 1)
	test.That(t, math.Abs(amplitudes[0]-4), test.ShouldBeLessThan, 3)

	// identical seeds sample identical properties
	rng2 := rand.New(rand.NewSource(17))
	amplitudes2, speeds2 := SampleLoopProperties(info, rng2)
	test.That(t, amplitudes2, test.ShouldResemble, amplitudes)
	test.That(t, speeds2, test.ShouldResemble, speeds)
}
