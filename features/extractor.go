// Package features computes n-gram association feature vectors for
// character positions.
package features

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/jamesainslie/go-wbp/corpus"
	"github.com/jamesainslie/go-wbp/ngram"
)

// ErrPosition indicates a position outside the scored sequence.
var ErrPosition = errors.New("features: position out of range")

// Extractor produces maxN² association scores per position. It holds no
// mutable state and is safe for concurrent use.
type Extractor struct {
	table        *ngram.Table
	maxN         int
	corpusLength int
}

// New creates an Extractor. corpusLength is the rune length of the full
// normalized corpus the table was counted on.
func New(table *ngram.Table, maxN, corpusLength int) (*Extractor, error) {
	if table == nil {
		return nil, errors.New("features: nil table")
	}
	if maxN < 1 {
		return nil, fmt.Errorf("features: max n must be >= 1, got %d", maxN)
	}
	if corpusLength < 1 {
		return nil, fmt.Errorf("features: corpus length must be >= 1, got %d", corpusLength)
	}
	return &Extractor{table: table, maxN: maxN, corpusLength: corpusLength}, nil
}

// Dim returns the feature vector length.
func (e *Extractor) Dim() int {
	return e.maxN * e.maxN
}

// MaxN returns the largest window length.
func (e *Extractor) MaxN() int {
	return e.maxN
}

// Vector writes the features of position i into dst. Element
// (a-1)*maxN + (b-1) scores the a runes left of i against the b runes from
// i on. Windows are clamped to the sequence, so near either end they hold
// fewer runes and are looked up as shorter n-grams.
func (e *Extractor) Vector(text *corpus.Text, i int, dst []float64) error {
	if i < 0 || i >= text.Len() {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrPosition, i, text.Len())
	}
	if len(dst) != e.Dim() {
		return fmt.Errorf("features: destination has length %d, want %d", len(dst), e.Dim())
	}

	s := text.String()
	mid := text.ByteOffset(i)
	for a := 1; a <= e.maxN; a++ {
		lo := text.ByteOffset(i - a)
		for b := 1; b <= e.maxN; b++ {
			hi := text.ByteOffset(i + b)
			score, err := e.table.AssociationSpan(s[lo:hi], mid-lo, e.corpusLength)
			if err != nil {
				return fmt.Errorf("position %d window (%d, %d): %w", i, a, b, err)
			}
			dst[(a-1)*e.maxN+(b-1)] = score
		}
	}
	return nil
}

// Matrix returns the feature rows of positions [lo, hi).
func (e *Extractor) Matrix(text *corpus.Text, lo, hi int) (*mat.Dense, error) {
	if lo < 0 || hi > text.Len() || lo >= hi {
		return nil, fmt.Errorf("%w: range [%d, %d) of %d", ErrPosition, lo, hi, text.Len())
	}

	m := mat.NewDense(hi-lo, e.Dim(), nil)
	for i := lo; i < hi; i++ {
		if err := e.Vector(text, i, m.RawRowView(i-lo)); err != nil {
			return nil, err
		}
	}
	return m, nil
}
