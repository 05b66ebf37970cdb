package bench

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// ErrLength is returned when probabilities and labels differ in length.
var ErrLength = errors.New("bench: probabilities and labels differ in length")

// logLossEpsilon bounds probabilities away from 0 and 1 in LogLoss.
const logLossEpsilon = 1e-15

// Config holds evaluation parameters.
type Config struct {
	Threshold       float64 // probability at or above which a position is a boundary
	PrecisionWeight float64
	RecallWeight    float64
}

// DefaultConfig returns default evaluation configuration.
func DefaultConfig() Config {
	return Config{
		Threshold:       0.5,
		PrecisionWeight: 1.0,
		RecallWeight:    1.0,
	}
}

// Metrics holds evaluation results.
type Metrics struct {
	TruePositives   int
	FalsePositives  int
	TrueNegatives   int
	FalseNegatives  int
	Accuracy        float64
	Precision       float64
	Recall          float64
	F1              float64
	WeightedScore   float64
	LogLoss         float64
	MeanProbability float64
}

// Evaluate compares boundary probabilities against 0/1 labels.
func Evaluate(probs, labels []float64, cfg Config) (Metrics, error) {
	if len(probs) != len(labels) {
		return Metrics{}, fmt.Errorf("%w: %d vs %d", ErrLength, len(probs), len(labels))
	}

	var m Metrics
	for i, p := range probs {
		positive := labels[i] >= 0.5
		predicted := p >= cfg.Threshold
		switch {
		case predicted && positive:
			m.TruePositives++
		case predicted:
			m.FalsePositives++
		case positive:
			m.FalseNegatives++
		default:
			m.TrueNegatives++
		}
	}
	m.rates(cfg)

	if len(probs) > 0 {
		m.Accuracy = float64(m.TruePositives+m.TrueNegatives) / float64(len(probs))
		m.LogLoss = logLoss(probs, labels)
		m.MeanProbability = stat.Mean(probs, nil)
	}
	return m, nil
}

// rates fills precision, recall and the scores derived from them.
func (m *Metrics) rates(cfg Config) {
	tp, fp, fn := m.TruePositives, m.FalsePositives, m.FalseNegatives

	if tp+fp > 0 {
		m.Precision = float64(tp) / float64(tp+fp)
	}
	if tp+fn > 0 {
		m.Recall = float64(tp) / float64(tp+fn)
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}

	wp := cfg.PrecisionWeight
	wr := cfg.RecallWeight
	if wp+wr > 0 {
		m.WeightedScore = (wp*m.Precision + wr*m.Recall) / (wp + wr)
	}
}

func logLoss(probs, labels []float64) float64 {
	sum := 0.0
	for i, p := range probs {
		p = math.Min(math.Max(p, logLossEpsilon), 1-logLossEpsilon)
		sum += labels[i]*math.Log(p) + (1-labels[i])*math.Log(1-p)
	}
	return -sum / float64(len(probs))
}
