package control_test

import (
	"math"
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"

	"github.com/safehri/hrgym/control"
	"github.com/safehri/hrgym/shield"
	"github.com/safehri/hrgym/testutils/inject"
)

func testConfig() control.Config {
	return control.Config{
		Kp:                50,
		DampingRatio:      1,
		InputMin:          -1,
		InputMax:          1,
		OutputMin:         -0.05,
		OutputMax:         0.05,
		ControlSampleTime: 0.004,
	}
}

func testSim(q, v []float64, now float64) *inject.Sim {
	s := &inject.Sim{}
	s.JointPositionsFunc = func(indices []int) []float64 { return q }
	s.JointVelocitiesFunc = func(indices []int) []float64 { return v }
	s.MassMatrixFunc = func(indices []int) *mat.Dense {
		n := len(indices)
		m := mat.NewDense(n, n, nil)
		for i := 0; i < n; i++ {
			m.Set(i, i, 1)
		}
		return m
	}
	s.TorqueCompensationFunc = func(indices []int) []float64 { return make([]float64, len(indices)) }
	s.TimeFunc = func() float64 { return now }
	return s
}

func TestConfigValidate(t *testing.T) {
	cfg := testConfig()
	test.That(t, cfg.Validate(), test.ShouldBeNil)

	cfg = testConfig()
	cfg.Kp = 0
	test.That(t, cfg.Validate(), test.ShouldNotBeNil)

	cfg = testConfig()
	cfg.InputMax = cfg.InputMin
	test.That(t, cfg.Validate(), test.ShouldNotBeNil)

	cfg = testConfig()
	cfg.Interpolator = "linear"
	err := cfg.Validate()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "not implemented")
}

func TestSetGoalDimensionMismatch(t *testing.T) {
	sh := &inject.Shield{}
	sh.NewLongTermTrajectoryFunc = func(goalPos, goalVel []float64) error { return nil }
	c, err := control.NewFailsafeController(
		testConfig(), sh, []int{0, 1}, []int{0, 1},
		[]float64{-80, -80}, []float64{80, 80},
		golog.NewTestLogger(t),
	)
	test.That(t, err, test.ShouldBeNil)

	s := testSim([]float64{0, 0}, []float64{0, 0}, 0)
	err = c.SetGoal(s, []float64{1})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "joint dimension")
}

func TestSetGoalScalesAndForwards(t *testing.T) {
	var gotGoal []float64
	sh := &inject.Shield{}
	sh.NewLongTermTrajectoryFunc = func(goalPos, goalVel []float64) error {
		gotGoal = append([]float64(nil), goalPos...)
		return nil
	}

	cfg := testConfig()
	cfg.PositionLimits = [][2]float64{{-0.01, 1}, {-1, 1}}
	c, err := control.NewFailsafeController(
		cfg, sh, []int{0, 1}, []int{0, 1},
		[]float64{-80, -80}, []float64{80, 80},
		golog.NewTestLogger(t),
	)
	test.That(t, err, test.ShouldBeNil)

	s := testSim([]float64{0, 0}, []float64{0, 0}, 0)
	// full-scale action maps to output_max; out-of-range input is clipped first
	test.That(t, c.SetGoal(s, []float64{5, 1}), test.ShouldBeNil)
	test.That(t, gotGoal[1], test.ShouldAlmostEqual, 0.05)
	test.That(t, gotGoal[0], test.ShouldAlmostEqual, 0.05)

	// position limits clamp the goal
	test.That(t, c.SetGoal(s, []float64{-1, -1}), test.ShouldBeNil)
	test.That(t, gotGoal[0], test.ShouldAlmostEqual, -0.01)
	test.That(t, gotGoal[1], test.ShouldAlmostEqual, -0.05)
}

func TestTorquesDefaultGoal(t *testing.T) {
	var gotGoal []float64
	sh := &inject.Shield{}
	sh.NewLongTermTrajectoryFunc = func(goalPos, goalVel []float64) error {
		gotGoal = append([]float64(nil), goalPos...)
		return nil
	}
	sh.StepFunc = func(currentTime float64) (shield.Motion, error) {
		return shield.Motion{
			Angle:        []float64{0.4, 0.6},
			Velocity:     []float64{0, 0},
			Acceleration: []float64{0, 0},
		}, nil
	}

	c, err := control.NewFailsafeController(
		testConfig(), sh, []int{0, 1}, []int{0, 1},
		[]float64{-80, -80}, []float64{80, 80},
		golog.NewTestLogger(t),
	)
	test.That(t, err, test.ShouldBeNil)

	q := []float64{0.4, 0.6}
	s := testSim(q, []float64{0, 0}, 0)
	torques, err := c.Torques(s)
	test.That(t, err, test.ShouldBeNil)

	// no goal was set, so a zero-delta default must have been substituted
	test.That(t, gotGoal, test.ShouldResemble, q)
	// desired matches current state, so torques are zero
	test.That(t, torques[0], test.ShouldAlmostEqual, 0)
	test.That(t, torques[1], test.ShouldAlmostEqual, 0)
}

func TestTorquesPDPlusCompensation(t *testing.T) {
	sh := &inject.Shield{}
	sh.NewLongTermTrajectoryFunc = func(goalPos, goalVel []float64) error { return nil }
	sh.StepFunc = func(currentTime float64) (shield.Motion, error) {
		return shield.Motion{
			Angle:        []float64{0.1},
			Velocity:     []float64{0.2},
			Acceleration: []float64{0.3},
		}, nil
	}

	c, err := control.NewFailsafeController(
		testConfig(), sh, []int{0}, []int{0},
		[]float64{-80}, []float64{80},
		golog.NewTestLogger(t),
	)
	test.That(t, err, test.ShouldBeNil)

	s := testSim([]float64{0}, []float64{0}, 0)
	s.MassMatrixFunc = func(indices []int) *mat.Dense {
		return mat.NewDense(1, 1, []float64{2})
	}
	s.TorqueCompensationFunc = func(indices []int) []float64 { return []float64{1.5} }

	torques, err := c.Torques(s)
	test.That(t, err, test.ShouldBeNil)

	kd := 2 * math.Sqrt(50)
	want := 2*(50*0.1+kd*0.2+0.3) + 1.5
	test.That(t, torques[0], test.ShouldAlmostEqual, want)
}

func TestTorquesClippedToActuatorLimits(t *testing.T) {
	sh := &inject.Shield{}
	sh.NewLongTermTrajectoryFunc = func(goalPos, goalVel []float64) error { return nil }
	sh.StepFunc = func(currentTime float64) (shield.Motion, error) {
		return shield.Motion{
			Angle:        []float64{10},
			Velocity:     []float64{0},
			Acceleration: []float64{0},
		}, nil
	}

	c, err := control.NewFailsafeController(
		testConfig(), sh, []int{0}, []int{0},
		[]float64{-5}, []float64{5},
		golog.NewTestLogger(t),
	)
	test.That(t, err, test.ShouldBeNil)

	s := testSim([]float64{0}, []float64{0}, 0)
	torques, err := c.Torques(s)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, torques[0], test.ShouldEqual, 5)
}

func TestCapsulesUpdateInPlace(t *testing.T) {
	records := [][]float64{
		{0, 0, 0, 0, 0, 1, 0.1},
		{0, 0, 1, 0, 0, 2, 0.1},
	}
	sh := &inject.Shield{}
	sh.RobotReachCapsulesFunc = func() [][]float64 { return records }

	c, err := control.NewFailsafeController(
		testConfig(), sh, []int{0}, []int{0},
		[]float64{-80}, []float64{80},
		golog.NewTestLogger(t),
	)
	test.That(t, err, test.ShouldBeNil)

	first, err := c.RobotCapsules()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(first), test.ShouldEqual, 2)

	records[0][6] = 0.25
	second, err := c.RobotCapsules()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, second[0], test.ShouldEqual, first[0])
	test.That(t, second[0].Radius(), test.ShouldEqual, 0.25)

	// count change reinitializes the list
	records = records[:1]
	third, err := c.RobotCapsules()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(third), test.ShouldEqual, 1)
}

func TestResetClearsGoal(t *testing.T) {
	var resetQPos []float64
	sh := &inject.Shield{}
	sh.NewLongTermTrajectoryFunc = func(goalPos, goalVel []float64) error { return nil }
	sh.ResetFunc = func(pose shield.BasePose, initJointPos []float64, currentTime float64, shieldType shield.Type) error {
		resetQPos = append([]float64(nil), initJointPos...)
		return nil
	}

	c, err := control.NewFailsafeController(
		testConfig(), sh, []int{0}, []int{0},
		[]float64{-80}, []float64{80},
		golog.NewTestLogger(t),
	)
	test.That(t, err, test.ShouldBeNil)

	s := testSim([]float64{0.7}, []float64{0}, 3)
	test.That(t, c.SetGoal(s, []float64{1}), test.ShouldBeNil)
	test.That(t, c.Goal(), test.ShouldNotBeNil)

	test.That(t, c.Reset(s, shield.BasePose{}, shield.TypeSSM), test.ShouldBeNil)
	test.That(t, c.Goal(), test.ShouldBeNil)
	test.That(t, resetQPos, test.ShouldResemble, []float64{0.7})
}
