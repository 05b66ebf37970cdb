package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// Logistic is an L2-regularised logistic regression fit with L-BFGS.
// The objective is 0.5*|w|² + C*Σ logloss; the intercept is not penalised.
// A fitted model is safe for concurrent prediction.
type Logistic struct {
	C             float64 // inverse regularisation strength
	MaxIterations int
	Tolerance     float64 // gradient norm at which fitting stops
	Logger        *slog.Logger

	weights []float64
	bias    float64
	fitted  bool
}

// NewLogistic returns a Logistic with C = 1 and 100 iterations.
func NewLogistic() *Logistic {
	return &Logistic{
		C:             1.0,
		MaxIterations: 100,
		Tolerance:     1e-4,
		Logger:        slog.Default(),
	}
}

// Fit implements Classifier.
func (l *Logistic) Fit(ctx context.Context, X *mat.Dense, y []float64) error {
	rows, cols := X.Dims()
	if rows != len(y) {
		return fmt.Errorf("%w: %d rows vs %d labels", ErrShape, rows, len(y))
	}
	if l.C <= 0 {
		return fmt.Errorf("classifier: C must be positive, got %g", l.C)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}

	// Parameter layout: weights[0:cols], intercept at cols.
	z := make([]float64, rows)
	residual := make([]float64, rows)

	linear := func(params []float64) {
		w, b := params[:cols], params[cols]
		for i := 0; i < rows; i++ {
			z[i] = floats.Dot(X.RawRowView(i), w) + b
		}
	}

	problem := optimize.Problem{
		Func: func(params []float64) float64 {
			linear(params)
			loss := 0.0
			for i := 0; i < rows; i++ {
				loss += softplus(z[i]) - y[i]*z[i]
			}
			w := params[:cols]
			return 0.5*floats.Dot(w, w) + l.C*loss
		},
		Grad: func(grad, params []float64) {
			linear(params)
			for i := 0; i < rows; i++ {
				residual[i] = l.C * (sigmoid(z[i]) - y[i])
			}
			copy(grad[:cols], params[:cols])
			grad[cols] = 0
			for i := 0; i < rows; i++ {
				floats.AddScaled(grad[:cols], residual[i], X.RawRowView(i))
				grad[cols] += residual[i]
			}
		},
	}

	settings := &optimize.Settings{
		MajorIterations:   l.MaxIterations,
		GradientThreshold: l.Tolerance,
	}
	result, err := optimize.Minimize(problem, make([]float64, cols+1), settings, &optimize.LBFGS{})
	switch {
	case result == nil || !finite(result.X):
		if err == nil {
			err = errDiverged
		}
		return fmt.Errorf("fitting logistic regression: %w", err)
	case result.Status == optimize.IterationLimit:
		logger.Warn("logistic regression did not converge", "iterations", l.MaxIterations)
	case err != nil:
		// Line search stalls close to the optimum; the iterate is still usable.
		logger.Warn("logistic regression stopped early", "status", result.Status.String(), "error", err)
	}

	l.weights = append([]float64(nil), result.X[:cols]...)
	l.bias = result.X[cols]
	l.fitted = true

	logger.Debug("logistic regression fitted",
		"rows", rows,
		"cols", cols,
		"status", result.Status.String(),
		"objective", result.F)
	return nil
}

// PredictProbability implements Classifier.
func (l *Logistic) PredictProbability(ctx context.Context, X *mat.Dense) ([]float64, error) {
	if !l.fitted {
		return nil, ErrNotFitted
	}
	rows, cols := X.Dims()
	if cols != len(l.weights) {
		return nil, fmt.Errorf("%w: %d features, model has %d", ErrShape, cols, len(l.weights))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	probs := make([]float64, rows)
	for i := range probs {
		probs[i] = sigmoid(floats.Dot(X.RawRowView(i), l.weights) + l.bias)
	}
	return probs, nil
}

// Coefficients returns the fitted weights and intercept.
func (l *Logistic) Coefficients() ([]float64, float64, error) {
	if !l.fitted {
		return nil, 0, ErrNotFitted
	}
	return append([]float64(nil), l.weights...), l.bias, nil
}

var errDiverged = errors.New("parameters diverged")

func finite(xs []float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)
	return e / (1 + e)
}

// softplus computes log(1 + e^z) without overflow.
func softplus(z float64) float64 {
	if z > 0 {
		return z + math.Log1p(math.Exp(-z))
	}
	return math.Log1p(math.Exp(z))
}
