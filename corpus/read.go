package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

// ErrNotSingleLine indicates a normalized corpus file that holds more than one line.
var ErrNotSingleLine = errors.New("corpus: normalized corpus must be a single line")

// maxLineSize bounds a single line; normalized corpora are one very long line.
const maxLineSize = 1 << 30

// NewTolerantReader decodes r as UTF-8, dropping ill-formed byte sequences
// instead of failing on them.
func NewTolerantReader(r io.Reader) io.Reader {
	dropInvalid := transform.Chain(
		runes.ReplaceIllFormed(),
		runes.Remove(runes.Predicate(func(r rune) bool { return r == utf8.RuneError })),
	)
	return transform.NewReader(r, dropInvalid)
}

// ReadLines returns every line of r with its line terminator removed.
func ReadLines(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(NewTolerantReader(r))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning lines: %w", err)
	}
	return lines, nil
}

// ReadLinesFile reads the lines of the file at path.
func ReadLinesFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	lines, err := ReadLines(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return lines, nil
}

// ReadNormalized reads a normalized corpus. The input must hold exactly one
// line; a single trailing line break is tolerated.
func ReadNormalized(r io.Reader) (*Text, error) {
	data, err := io.ReadAll(NewTolerantReader(r))
	if err != nil {
		return nil, fmt.Errorf("reading normalized corpus: %w", err)
	}

	s := strings.TrimSuffix(string(data), "\n")
	s = strings.TrimSuffix(s, "\r")
	if s == "" {
		return nil, fmt.Errorf("%w: corpus is empty", ErrNotSingleLine)
	}
	if strings.Contains(s, "\n") {
		return nil, fmt.Errorf("%w: found %d lines", ErrNotSingleLine, strings.Count(s, "\n")+1)
	}

	return NewText(s), nil
}

// ReadNormalizedFile reads the normalized corpus at path.
func ReadNormalizedFile(path string) (*Text, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return ReadNormalized(f)
}
