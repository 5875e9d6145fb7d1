package fake

import (
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/safehri/hrgym/shield"
)

func newTestShield(t *testing.T) *Shield {
	t.Helper()
	s, err := NewShield(
		Config{MaxJointVel: 1, SlowdownDist: 0.5},
		shield.BasePose{},
		[]float64{0, 0},
		golog.NewTestLogger(t),
	)
	test.That(t, err, test.ShouldBeNil)
	return s
}

func TestConfigValidate(t *testing.T) {
	cfg := Config{}
	test.That(t, cfg.Validate(), test.ShouldNotBeNil)
	cfg = Config{MaxJointVel: 1, SlowdownDist: -1}
	test.That(t, cfg.Validate(), test.ShouldNotBeNil)
	cfg = Config{MaxJointVel: 1}
	test.That(t, cfg.Validate(), test.ShouldBeNil)
}

func TestStepTracksGoal(t *testing.T) {
	s := newTestShield(t)
	test.That(t, s.NewLongTermTrajectory([]float64{2, -2}, []float64{0, 0}), test.ShouldBeNil)

	// velocity bounded at 1 rad/s
	motion, err := s.Step(0.5)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, motion.Angle[0], test.ShouldAlmostEqual, 0.5)
	test.That(t, motion.Angle[1], test.ShouldAlmostEqual, -0.5)
	test.That(t, motion.Velocity[0], test.ShouldAlmostEqual, 1)

	// converges to the goal
	motion, err = s.Step(10)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, motion.Angle[0], test.ShouldAlmostEqual, 2)
	test.That(t, motion.Angle[1], test.ShouldAlmostEqual, -2)

	_, err = s.Step(5)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestHumanProximitySlowdown(t *testing.T) {
	s := newTestShield(t)
	test.That(t, s.NewLongTermTrajectory([]float64{2, 2}, []float64{0, 0}), test.ShouldBeNil)
	test.That(t, s.HumanMeasurement([]r3.Vector{{X: 0.1}}, 0), test.ShouldBeNil)

	motion, err := s.Step(1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.Safety(), test.ShouldBeFalse)
	test.That(t, motion.Angle[0], test.ShouldAlmostEqual, 0.5)

	// humans far away leave the trajectory untouched
	test.That(t, s.HumanMeasurement([]r3.Vector{{X: 5}}, 1), test.ShouldBeNil)
	_, err = s.Step(2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.Safety(), test.ShouldBeTrue)
}

func TestShieldTypeOffIgnoresHumans(t *testing.T) {
	s := newTestShield(t)
	test.That(t, s.Reset(shield.BasePose{}, []float64{0, 0}, 0, shield.TypeOff), test.ShouldBeNil)
	test.That(t, s.HumanMeasurement([]r3.Vector{{X: 0.1}}, 0), test.ShouldBeNil)
	_, err := s.Step(1)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, s.Safety(), test.ShouldBeTrue)
}

func TestReachCapsuleCountStable(t *testing.T) {
	s := newTestShield(t)
	caps := s.RobotReachCapsules()
	test.That(t, len(caps), test.ShouldEqual, 2)
	again := s.RobotReachCapsules()
	test.That(t, &again[0][0], test.ShouldEqual, &caps[0][0])

	test.That(t, s.HumanMeasurement([]r3.Vector{{X: 1}, {X: 2}, {X: 3}}, 0), test.ShouldBeNil)
	test.That(t, len(s.HumanReachCapsules()), test.ShouldEqual, 3)
}
