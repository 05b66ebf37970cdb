// Package ngram holds character n-gram frequency tables and the association
// statistic computed from them.
package ngram

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DefaultCount is returned by Lookup for n-grams missing from the table.
const DefaultCount = 1

var (
	// ErrMalformed indicates a table line that is not an `<ngram> <count>` pair.
	ErrMalformed = errors.New("ngram: malformed table line")

	// ErrNonPositive indicates a corpus length or count that is not positive.
	ErrNonPositive = errors.New("ngram: non-positive count")
)

// Table maps character n-grams to occurrence counts with additive
// smoothing. It is read-only after construction and safe for concurrent use.
type Table struct {
	counts map[string]int64
	maxN   int
}

// FromCounts builds a table from counts. Zero counts are dropped; negative
// counts are rejected.
func FromCounts(counts map[string]int64) (*Table, error) {
	t := &Table{counts: make(map[string]int64, len(counts))}
	for ngram, count := range counts {
		if err := t.add(ngram, count); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Load reads a table of whitespace-separated `<ngram> <count>` lines.
// Counts may carry locale grouping separators such as "1,234,567".
func Load(r io.Reader) (*Table, error) {
	t := &Table{counts: make(map[string]int64)}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		// n-grams never contain whitespace; anything after the first field is
		// the count, possibly grouped with space-like separators.
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: line %d has %d fields", ErrMalformed, lineNo, len(fields))
		}

		count, err := ParseCount(strings.Join(fields[1:], ""))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformed, lineNo, err)
		}
		if err := t.add(fields[0], count); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning table: %w", err)
	}

	return t, nil
}

// LoadFile reads the table at path.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	t, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return t, nil
}

// ParseCount parses a non-negative integer that may contain grouping
// separators. Counts never carry a decimal part, so '.' is a separator too.
func ParseCount(s string) (int64, error) {
	digits := strings.Map(func(r rune) rune {
		switch r {
		case ',', '.', '\'', '_', ' ', '\u00a0', '\u202f':
			return -1
		}
		return r
	}, s)

	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing count %q: %w", s, err)
	}
	return n, nil
}

func (t *Table) add(ngram string, count int64) error {
	if count < 0 {
		return fmt.Errorf("%w: %q has count %d", ErrNonPositive, ngram, count)
	}
	if count == 0 || ngram == "" {
		return nil
	}
	t.counts[ngram] += count
	if n := utf8.RuneCountInString(ngram); n > t.maxN {
		t.maxN = n
	}
	return nil
}

// Lookup returns the count of ngram, or DefaultCount when it is absent.
func (t *Table) Lookup(ngram string) int64 {
	if c, ok := t.counts[ngram]; ok {
		return c
	}
	return DefaultCount
}

// Len returns the number of stored n-grams.
func (t *Table) Len() int {
	return len(t.counts)
}

// MaxN returns the rune length of the longest stored n-gram.
func (t *Table) MaxN() int {
	return t.maxN
}

// Association returns log(count(left+right) * corpusLength / (count(left) * count(right))).
func (t *Table) Association(left, right string, corpusLength int) (float64, error) {
	return t.AssociationSpan(left+right, len(left), corpusLength)
}

// AssociationSpan is Association with left = joint[:split] and
// right = joint[split:], where split is a byte offset.
func (t *Table) AssociationSpan(joint string, split int, corpusLength int) (float64, error) {
	if corpusLength <= 0 {
		return 0, fmt.Errorf("%w: corpus length %d", ErrNonPositive, corpusLength)
	}

	cj := t.Lookup(joint)
	cl := t.Lookup(joint[:split])
	cr := t.Lookup(joint[split:])
	if cj <= 0 || cl <= 0 || cr <= 0 {
		return 0, fmt.Errorf("%w: counts (%d, %d, %d)", ErrNonPositive, cj, cl, cr)
	}

	return math.Log(float64(cj) * float64(corpusLength) / (float64(cl) * float64(cr))), nil
}
