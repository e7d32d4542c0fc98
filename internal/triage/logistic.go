// Package triage fits the alert-priority classifier and produces scores.
// The model is an L2-penalized logistic regression trained by Newton's
// method (iteratively reweighted least squares). Training is deterministic:
// the same matrix always yields the same weights.
package triage

import (
	"math"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
)

// Options holds training hyperparameters.
type Options struct {
	// MaxIter caps Newton iterations.
	MaxIter int
	// Tol stops training once the largest weight update falls below it.
	Tol float64
	// L2 is the ridge penalty on non-intercept weights, applied on
	// standardized features.
	L2 float64
}

// DefaultOptions mirrors the hyperparameters the pipeline ships with.
func DefaultOptions() Options {
	return Options{MaxIter: 1000, Tol: 1e-8, L2: 1.0}
}

// Model is a fitted logistic regression. Standardization parameters are
// folded in so Predict accepts raw feature rows.
type Model struct {
	Names     []string  `json:"names"`
	Weights   []float64 `json:"weights"` // per standardized feature
	Intercept float64   `json:"intercept"`
	Means     []float64 `json:"means"`
	Stds      []float64 `json:"stds"`

	Iterations int  `json:"iterations"`
	Converged  bool `json:"converged"`
}

// probability clamps away from exact 0/1 to keep the Hessian finite.
const probEps = 1e-10

// Fit trains the classifier on raw feature rows X and binary labels y.
func Fit(names []string, X [][]float64, y []float64, opts Options) (*Model, error) {
	n := len(X)
	if n == 0 {
		return nil, eris.New("triage: empty training set")
	}
	if len(y) != n {
		return nil, eris.Errorf("triage: %d rows but %d labels", n, len(y))
	}
	p := len(X[0])
	if p == 0 {
		return nil, eris.New("triage: no feature columns")
	}
	if len(names) != p {
		return nil, eris.Errorf("triage: %d feature names for %d columns", len(names), p)
	}
	var pos int
	for i, row := range X {
		if len(row) != p {
			return nil, eris.Errorf("triage: row %d has %d columns (want %d)", i, len(row), p)
		}
		switch y[i] {
		case 0:
		case 1:
			pos++
		default:
			return nil, eris.Errorf("triage: label at row %d must be 0 or 1 (got %g)", i, y[i])
		}
	}
	if pos == 0 || pos == n {
		return nil, eris.New("triage: training labels contain a single class; cannot fit")
	}
	if opts.MaxIter <= 0 {
		return nil, eris.Errorf("triage: max iterations must be positive (got %d)", opts.MaxIter)
	}

	means, stds := standardization(X)

	// Design matrix with an intercept column, features standardized.
	d := p + 1
	xa := mat.NewDense(n, d, nil)
	for i, row := range X {
		xa.Set(i, 0, 1)
		for j, v := range row {
			xa.Set(i, j+1, (v-means[j])/stds[j])
		}
	}
	yv := mat.NewVecDense(n, append([]float64(nil), y...))

	beta := mat.NewVecDense(d, nil)
	var (
		iterations int
		converged  bool
	)

	eta := mat.NewVecDense(n, nil)
	probs := mat.NewVecDense(n, nil)
	resid := mat.NewVecDense(n, nil)
	grad := mat.NewVecDense(d, nil)
	wx := mat.NewDense(n, d, nil)
	hess := mat.NewDense(d, d, nil)
	delta := mat.NewVecDense(d, nil)

	for iter := 0; iter < opts.MaxIter; iter++ {
		iterations = iter + 1

		eta.MulVec(xa, beta)
		for i := 0; i < n; i++ {
			probs.SetVec(i, clampProb(sigmoid(eta.AtVec(i))))
		}

		// grad = X^T (y - p) - L2 * [0, w...]
		resid.SubVec(yv, probs)
		grad.MulVec(xa.T(), resid)
		for j := 1; j < d; j++ {
			grad.SetVec(j, grad.AtVec(j)-opts.L2*beta.AtVec(j))
		}

		// H = X^T W X + L2 * diag(0, 1, ..., 1), W = diag(p(1-p)).
		for i := 0; i < n; i++ {
			w := probs.AtVec(i) * (1 - probs.AtVec(i))
			for j := 0; j < d; j++ {
				wx.Set(i, j, w*xa.At(i, j))
			}
		}
		hess.Mul(xa.T(), wx)
		for j := 1; j < d; j++ {
			hess.Set(j, j, hess.At(j, j)+opts.L2)
		}

		if err := solveSym(delta, hess, grad); err != nil {
			return nil, err
		}
		beta.AddVec(beta, delta)

		if maxAbs(delta) < opts.Tol {
			converged = true
			break
		}
	}

	m := &Model{
		Names:      append([]string(nil), names...),
		Weights:    make([]float64, p),
		Intercept:  beta.AtVec(0),
		Means:      means,
		Stds:       stds,
		Iterations: iterations,
		Converged:  converged,
	}
	for j := 0; j < p; j++ {
		m.Weights[j] = beta.AtVec(j + 1)
	}

	fields := []zap.Field{
		zap.Int("rows", n),
		zap.Int("positives", pos),
		zap.Int("iterations", iterations),
		zap.Bool("converged", converged),
		zap.Float64("intercept", m.Intercept),
	}
	for j, name := range m.Names {
		fields = append(fields, zap.Float64("w_"+name, m.Weights[j]))
	}
	zap.L().Info("triage: model fitted", fields...)

	return m, nil
}

// Predict returns the probability of the positive class for each raw
// feature row. Every returned value lies in [0, 1].
func (m *Model) Predict(X [][]float64) ([]float64, error) {
	out := make([]float64, len(X))
	for i, row := range X {
		s, err := m.PredictOne(row)
		if err != nil {
			return nil, eris.Wrapf(err, "triage: predict row %d", i)
		}
		out[i] = s
	}
	return out, nil
}

// PredictOne scores a single raw feature row.
func (m *Model) PredictOne(row []float64) (float64, error) {
	if len(row) != len(m.Weights) {
		return 0, eris.Errorf("triage: row has %d features (model expects %d)", len(row), len(m.Weights))
	}
	z := m.Intercept
	for j, v := range row {
		z += m.Weights[j] * (v - m.Means[j]) / m.Stds[j]
	}
	p := sigmoid(z)
	// Guard against float drift at the extremes.
	return math.Min(1, math.Max(0, p)), nil
}

// standardization computes per-column means and standard deviations.
// Constant columns get a unit deviation so they pass through as zeros.
func standardization(X [][]float64) (means, stds []float64) {
	n := float64(len(X))
	p := len(X[0])
	means = make([]float64, p)
	stds = make([]float64, p)

	for _, row := range X {
		for j, v := range row {
			means[j] += v
		}
	}
	for j := range means {
		means[j] /= n
	}
	for _, row := range X {
		for j, v := range row {
			d := v - means[j]
			stds[j] += d * d
		}
	}
	for j := range stds {
		stds[j] = math.Sqrt(stds[j] / n)
		if stds[j] == 0 {
			stds[j] = 1
		}
	}
	return means, stds
}

// solveSym solves H d = g, preferring Cholesky and falling back to LU when
// the Hessian is not numerically positive definite.
func solveSym(dst *mat.VecDense, h *mat.Dense, g *mat.VecDense) error {
	d, _ := h.Dims()
	sym := mat.NewSymDense(d, nil)
	for i := 0; i < d; i++ {
		for j := i; j < d; j++ {
			sym.SetSym(i, j, h.At(i, j))
		}
	}

	var chol mat.Cholesky
	if chol.Factorize(sym) {
		if err := chol.SolveVecTo(dst, g); err != nil {
			return eris.Wrap(err, "triage: solve Newton step")
		}
		return nil
	}

	var lu mat.LU
	lu.Factorize(h)
	if err := lu.SolveVecTo(dst, false, g); err != nil {
		return eris.Wrap(err, "triage: Hessian is singular")
	}
	return nil
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func clampProb(p float64) float64 {
	if p < probEps {
		return probEps
	}
	if p > 1-probEps {
		return 1 - probEps
	}
	return p
}

func maxAbs(v *mat.VecDense) float64 {
	var m float64
	for i := 0; i < v.Len(); i++ {
		if a := math.Abs(v.AtVec(i)); a > m {
			m = a
		}
	}
	return m
}
