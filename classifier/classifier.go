// Package classifier defines the probabilistic boundary classifier
// capability and ships two implementations: a logistic regression trained
// in-process and a pre-trained ONNX model.
package classifier

import (
	"context"
	"errors"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrNotFitted is returned when predicting with an untrained model.
	ErrNotFitted = errors.New("classifier: model is not fitted")

	// ErrShape indicates features and labels of incompatible shapes.
	ErrShape = errors.New("classifier: shape mismatch")
)

// Classifier is a binary probabilistic classifier over feature rows.
type Classifier interface {
	// Fit trains on the rows of X with labels y in {0, 1}.
	Fit(ctx context.Context, X *mat.Dense, y []float64) error

	// PredictProbability returns, per row of X, the probability of the
	// positive (boundary) class.
	PredictProbability(ctx context.Context, X *mat.Dense) ([]float64, error)
}
