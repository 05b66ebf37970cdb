package ngram

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Write writes entries as `<ngram>\t<count>` lines. Counts are grouped the
// way tag formats integers (e.g. "1,234" for English); language.Und
// writes plain digits.
func Write(w io.Writer, entries []Entry, tag language.Tag) error {
	bw := bufio.NewWriter(w)

	format := func(n int64) string { return fmt.Sprint(n) }
	if tag != language.Und {
		p := message.NewPrinter(tag)
		format = func(n int64) string { return p.Sprintf("%d", n) }
	}

	for _, e := range entries {
		if _, err := fmt.Fprintf(bw, "%s\t%s\n", e.NGram, format(e.Count)); err != nil {
			return fmt.Errorf("writing table: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing table: %w", err)
	}
	return nil
}

// WriteFile writes entries to path, replacing any existing file only once
// the whole table has been written.
func WriteFile(path string, entries []Entry, tag language.Tag) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".ngram-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := Write(tmp, entries, tag); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
