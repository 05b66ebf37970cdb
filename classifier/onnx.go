package classifier

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"github.com/jamesainslie/go-wbp/inference"
)

// DefaultBatchRows is the number of feature rows sent per ONNX call.
const DefaultBatchRows = 4096

// ONNX scores rows with a pre-trained model exported to ONNX. The model
// must take a [rows, cols] float tensor and emit [rows, 2] probabilities.
type ONNX struct {
	pool      *inference.Pool
	cols      int
	batchRows int
}

// NewONNX loads modelPath into a pool of sessions. cols is the feature
// width the model was exported with.
func NewONNX(modelPath string, cols, sessions int) (*ONNX, error) {
	if cols <= 0 {
		return nil, fmt.Errorf("%w: feature width %d", ErrShape, cols)
	}
	pool, err := inference.NewPool(modelPath, inference.DefaultIO(), sessions)
	if err != nil {
		return nil, fmt.Errorf("loading ONNX classifier: %w", err)
	}
	return &ONNX{pool: pool, cols: cols, batchRows: DefaultBatchRows}, nil
}

// Fit checks that X matches the model's feature width. The model itself
// is trained offline.
func (o *ONNX) Fit(_ context.Context, X *mat.Dense, y []float64) error {
	rows, cols := X.Dims()
	if rows != len(y) {
		return fmt.Errorf("%w: %d rows vs %d labels", ErrShape, rows, len(y))
	}
	if cols != o.cols {
		return fmt.Errorf("%w: %d features, model has %d", ErrShape, cols, o.cols)
	}
	return nil
}

// PredictProbability implements Classifier. Batches run concurrently, one
// per pooled session.
func (o *ONNX) PredictProbability(ctx context.Context, X *mat.Dense) ([]float64, error) {
	rows, cols := X.Dims()
	if cols != o.cols {
		return nil, fmt.Errorf("%w: %d features, model has %d", ErrShape, cols, o.cols)
	}

	probs := make([]float64, rows)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.pool.Size())

	for lo := 0; lo < rows; lo += o.batchRows {
		hi := min(lo+o.batchRows, rows)
		g.Go(func() error {
			block := make([]float32, 0, (hi-lo)*cols)
			for i := lo; i < hi; i++ {
				for _, v := range X.RawRowView(i) {
					block = append(block, float32(v))
				}
			}
			out, err := o.pool.Infer(ctx, block, hi-lo, cols)
			if err != nil {
				return fmt.Errorf("rows [%d, %d): %w", lo, hi, err)
			}
			copy(probs[lo:hi], out)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return probs, nil
}

// Close releases the model sessions.
func (o *ONNX) Close() error {
	return o.pool.Close()
}
