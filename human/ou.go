package human

import (
	"math"
	"math/rand"
)

// OUProcess generates Ornstein-Uhlenbeck noise:
//
//	dX_t = alpha * (gamma - X_t) dt + beta * dW_t
//
// discretized with the Euler-Maruyama method. The starting value is the
// mean (X_0 = gamma). Each process owns its random number generator, so
// independently seeded instances produce independent, reproducible
// sequences.
type OUProcess struct {
	size  int
	alpha float64
	beta  float64
	gamma float64
	y     []float64
	rng   *rand.Rand
}

// NewOUProcess returns a process of the given vector size. alpha is the
// mean reversion parameter, beta the random shock parameter, and gamma
// the drift parameter.
func NewOUProcess(size int, alpha, beta, gamma float64, seed int64) *OUProcess {
	y := make([]float64, size)
	for i := range y {
		y[i] = gamma
	}
	return &OUProcess{
		size:  size,
		alpha: alpha,
		beta:  beta,
		gamma: gamma,
		y:     y,
		//nolint:gosec
		rng: rand.New(rand.NewSource(seed)),
	}
}

// NewReparameterizedOUProcess re-parameterizes the process in terms of
// its asymptotic mean mu and standard deviation sigma. alpha controls how
// fast the sample distribution converges to N(mu, sigma).
func NewReparameterizedOUProcess(size int, alpha, mu, sigma float64, seed int64) *OUProcess {
	return NewOUProcess(size, alpha, sigma*math.Sqrt(2*alpha), mu, seed)
}

// Step advances the process by dt and returns the new noise values. The
// returned slice is owned by the process and overwritten on the next call.
func (p *OUProcess) Step(dt float64) []float64 {
	sqrtDt := math.Sqrt(dt)
	for i := range p.y {
		p.y[i] += p.alpha*(p.gamma-p.y[i])*dt + p.beta*sqrtDt*p.rng.NormFloat64()
	}
	return p.y
}
