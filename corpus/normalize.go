package corpus

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"unicode"
)

// Clean replaces every whitespace rune of line with marker and collapses
// runs of markers (including markers already present in line) into one.
// Leading and trailing markers are kept so that a sentence cleaned with a
// trailing space ends in exactly one marker.
func Clean(line string, marker rune) string {
	var builder strings.Builder
	builder.Grow(len(line))

	pending := false
	for _, r := range line {
		if r == marker || unicode.IsSpace(r) {
			pending = true
			continue
		}
		if pending {
			builder.WriteRune(marker)
			pending = false
		}
		builder.WriteRune(r)
	}
	if pending {
		builder.WriteRune(marker)
	}

	return builder.String()
}

// CleanSentence prepares one line of a raw or segmented corpus for
// alignment: surrounding whitespace is stripped, a terminal separator is
// appended and the result is cleaned with marker.
func CleanSentence(line string, marker rune) string {
	return Clean(strings.TrimSpace(line)+" ", marker)
}

// Normalize streams r into w as one line in which every whitespace run,
// line break and empty line collapses into a single marker. The output has
// no leading, trailing or doubled markers. It returns the number of runes
// written.
func Normalize(r io.Reader, w io.Writer, marker rune) (int, error) {
	in := bufio.NewReader(NewTolerantReader(r))
	out := bufio.NewWriter(w)

	written := 0
	needMarker := false // set by whitespace once something has been written
	for {
		c, _, err := in.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return written, fmt.Errorf("reading corpus: %w", err)
		}

		if c == marker || unicode.IsSpace(c) {
			if written > 0 {
				needMarker = true
			}
			continue
		}
		if needMarker {
			if _, err := out.WriteRune(marker); err != nil {
				return written, fmt.Errorf("writing corpus: %w", err)
			}
			written++
			needMarker = false
		}
		if _, err := out.WriteRune(c); err != nil {
			return written, fmt.Errorf("writing corpus: %w", err)
		}
		written++
	}

	if err := out.Flush(); err != nil {
		return written, fmt.Errorf("writing corpus: %w", err)
	}
	return written, nil
}
