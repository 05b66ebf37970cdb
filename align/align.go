// Package align derives word-boundary labels by aligning a raw sentence
// with its pre-segmented counterpart.
package align

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jamesainslie/go-wbp/corpus"
)

// ErrMisaligned indicates a raw/segmented pair that cannot be aligned: the
// corpora are not properly paired.
var ErrMisaligned = errors.New("align: sentences are not aligned")

// Sentence labels every rune of raw with 1 when it starts a new word and 0
// otherwise. Both sentences must already be cleaned with marker and end in
// a terminal marker.
//
// The walk keeps a drift gap between the raw cursor j and the segmented
// cursor j+gap. Extra markers in segmented push the gap forward and make
// the current raw rune boundary-initiating. A raw marker that segmented
// lacks pulls the gap back by one.
func Sentence(raw, segmented []rune, marker rune) ([]uint8, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	if len(segmented) == 0 || raw[0] != segmented[0] {
		return nil, fmt.Errorf("%w: first characters differ", ErrMisaligned)
	}
	if len(segmented) < len(raw) {
		return nil, fmt.Errorf("%w: segmented sentence shorter than raw (%d < %d)", ErrMisaligned, len(segmented), len(raw))
	}

	labels := make([]uint8, len(raw))
	gap := 0
	newWord := true
	for j, c := range raw {
		k := j + gap
		if k < 0 || k >= len(segmented) {
			return nil, fmt.Errorf("%w: drift %d leaves segmented sentence at raw position %d", ErrMisaligned, gap, j)
		}
		s := segmented[k]

		if c == marker {
			if j > 0 && raw[j-1] == marker {
				return nil, fmt.Errorf("%w: consecutive markers at raw position %d", ErrMisaligned, j)
			}
			labels[j] = 1
			newWord = true
			if s != marker {
				gap--
			}
			continue
		}

		for c != s {
			gap++
			newWord = true
			k = j + gap
			if k >= len(segmented) {
				return nil, fmt.Errorf("%w: segmented sentence exhausted at raw position %d", ErrMisaligned, j)
			}
			s = segmented[k]
		}
		if newWord {
			labels[j] = 1
		}
		newWord = false
	}

	return labels, nil
}

// Batch cleans and aligns each raw/segmented pair, returning the
// concatenated raw text and its labels. len(labels) always equals the rune
// count of text.
func Batch(raw, segmented []string, marker rune) (string, []uint8, error) {
	if len(raw) != len(segmented) {
		return "", nil, fmt.Errorf("%w: %d raw sentences vs %d segmented", ErrMisaligned, len(raw), len(segmented))
	}

	var (
		text   strings.Builder
		labels []uint8
	)
	for i := range raw {
		r := []rune(corpus.CleanSentence(raw[i], marker))
		s := []rune(corpus.CleanSentence(segmented[i], marker))

		l, err := Sentence(r, s, marker)
		if err != nil {
			return "", nil, fmt.Errorf("sentence %d: %w", i, err)
		}

		text.WriteString(string(r))
		labels = append(labels, l...)
	}

	return text.String(), labels, nil
}
