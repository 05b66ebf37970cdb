// Package corpus reads, cleans and addresses the character sequences the
// boundary estimator works on.
package corpus

import "unicode/utf8"

// DefaultMarker is the character every whitespace run is collapsed into.
const DefaultMarker = '␣' // U+2423 OPEN BOX

// Text is an immutable string addressable by rune position.
// It is safe for concurrent use.
type Text struct {
	s    string
	offs []int // offs[i] = byte offset of rune i; offs[Len()] = len(s)
}

// NewText indexes s by rune position.
func NewText(s string) *Text {
	offs := make([]int, 0, utf8.RuneCountInString(s)+1)
	for i := range s {
		offs = append(offs, i)
	}
	offs = append(offs, len(s))
	return &Text{s: s, offs: offs}
}

// Len returns the number of runes.
func (t *Text) Len() int {
	return len(t.offs) - 1
}

// String returns the underlying string.
func (t *Text) String() string {
	return t.s
}

// At returns the rune at position i.
func (t *Text) At(i int) rune {
	r, _ := utf8.DecodeRuneInString(t.s[t.offs[i]:t.offs[i+1]])
	return r
}

// Slice returns the runes in [lo, hi). Bounds are clamped to [0, Len()]
// so windows reaching past either end come back shorter instead of failing.
// An empty string is returned when the clamped range is empty.
func (t *Text) Slice(lo, hi int) string {
	n := t.Len()
	if lo < 0 {
		lo = 0
	}
	if hi > n {
		hi = n
	}
	if lo >= hi {
		return ""
	}
	return t.s[t.offs[lo]:t.offs[hi]]
}

// ByteOffset returns the byte offset of rune position i, clamped to
// [0, len(String())].
func (t *Text) ByteOffset(i int) int {
	if i < 0 {
		return 0
	}
	if i > t.Len() {
		i = t.Len()
	}
	return t.offs[i]
}
