// Package inference provides ONNX Runtime integration for pre-trained
// boundary classifiers.
package inference

import (
	"context"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

var (
	ortEnvOnce sync.Once
	ortEnvErr  error
)

// initORT initializes ONNX Runtime environment once.
func initORT() error {
	ortEnvOnce.Do(func() {
		ortEnvErr = ort.InitializeEnvironment()
	})
	return ortEnvErr
}

// IO names the graph inputs and outputs of a binary classifier, as written
// by common exporters for scikit-learn style models.
type IO struct {
	Input         string // float32 [rows, cols]
	Label         string // int64 [rows]; destroyed unread
	Probabilities string // float32 [rows, 2]
}

// DefaultIO matches a logistic regression exported with ZipMap disabled.
func DefaultIO() IO {
	return IO{Input: "float_input", Label: "label", Probabilities: "probabilities"}
}

// Session wraps an ONNX Runtime session for boundary classification.
type Session struct {
	session *ort.DynamicAdvancedSession
	mu      sync.Mutex
	closed  bool
}

// NewSession creates a new ONNX session from a model file.
func NewSession(modelPath string, io IO) (*Session, error) {
	// Check file exists
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file: %w", err)
	}

	if err := initORT(); err != nil {
		return nil, fmt.Errorf("initializing ONNX runtime: %w", err)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("creating session options: %w", err)
	}
	defer func() { _ = options.Destroy() }() // Cleanup error doesn't affect success

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{io.Input},
		[]string{io.Label, io.Probabilities},
		options,
	)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	return &Session{session: session}, nil
}

// Infer runs the classifier on a row-major [rows, cols] feature block and
// returns the probability of the positive class for each row.
func (s *Session) Infer(ctx context.Context, features []float32, rows, cols int) ([]float64, error) {
	// Check context before expensive operation
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if rows*cols != len(features) {
		return nil, fmt.Errorf("feature block has %d values, want %d x %d", len(features), rows, cols)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("session is closed")
	}

	input, err := ort.NewTensor(ort.NewShape(int64(rows), int64(cols)), features)
	if err != nil {
		return nil, fmt.Errorf("creating input tensor: %w", err)
	}
	defer func() { _ = input.Destroy() }()

	// nil entries are allocated by Run
	outputs := []ort.Value{nil, nil}
	if err := s.session.Run([]ort.Value{input}, outputs); err != nil {
		return nil, fmt.Errorf("running inference: %w", err)
	}
	for _, o := range outputs {
		if o != nil {
			defer func() { _ = o.Destroy() }()
		}
	}

	probs, ok := outputs[1].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("unexpected probabilities tensor type %T", outputs[1])
	}

	data := probs.GetData()
	if len(data) != rows*2 {
		return nil, fmt.Errorf("probabilities tensor has %d values, want %d", len(data), rows*2)
	}

	out := make([]float64, rows)
	for i := range out {
		out[i] = float64(data[2*i+1])
	}
	return out, nil
}

// Close releases ONNX resources.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	if s.session != nil {
		return s.session.Destroy()
	}
	return nil
}
