// Package imitation adds expert-imitation rewards on top of an
// environment. Demonstration episodes recorded with an expert policy are
// replayed alongside the agent's episode; per step the agent's state is
// compared to the expert's and the similarity blended into the reward.
//
// The approach follows DeepMimic (Peng et al., 2018),
// https://arxiv.org/abs/1804.02717.
package imitation

import (
	"math"

	"github.com/pkg/errors"
)

// SimilarityFn maps a non-negative distance delta and a tolerance iota to
// a similarity in (0, 1]. All similarity functions return 1 at distance 0
// and exactly 0.5 at distance iota, are strictly decreasing, and vanish
// as the distance grows.
type SimilarityFn func(delta, iota float64) float64

// SimGaussian is the Gaussian-kernel similarity
// exp(-ln(2) * (delta/iota)^2).
func SimGaussian(delta, iota float64) float64 {
	return math.Exp(-math.Ln2 * (delta / iota) * (delta / iota))
}

// SimTanh is the hyperbolic-tangent similarity
// 1 - tanh(atanh(0.5) * delta / iota).
func SimTanh(delta, iota float64) float64 {
	return 1 - math.Tanh(math.Atanh(0.5)*delta/iota)
}

// SimilarityFnByName resolves a similarity function name, either
// "gaussian" or "tanh".
func SimilarityFnByName(name string) (SimilarityFn, error) {
	switch name {
	case "gaussian":
		return SimGaussian, nil
	case "tanh":
		return SimTanh, nil
	default:
		return nil, errors.Errorf("unknown similarity function %q", name)
	}
}
