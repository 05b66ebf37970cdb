//go:build ignore

// Convert Universal Dependencies CoNLL-U files into raw/segmented sentence
// pairs for `wbp predict`. The segmented line joins the surface tokens with
// spaces; the raw line is the sentence with its spaces removed, or the
// original "# text" line with -keep-spaces.
// Usage: go run ./scripts/conllu-pairs.go -out testdata en_ewt-ud-train.conllu ...
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Sentence is one annotated sentence.
type Sentence struct {
	Text   string
	Tokens []string
}

func main() {
	outDir := flag.String("out", "testdata", "directory for raw.txt and segmented.txt")
	keepSpaces := flag.Bool("keep-spaces", false, "keep the original spacing in raw.txt")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Usage: go run ./scripts/conllu-pairs.go [-out DIR] [-keep-spaces] FILE.conllu...")
		os.Exit(1)
	}

	var sentences []Sentence
	for _, path := range flag.Args() {
		fmt.Printf("Processing %s...\n", path)
		s, err := processCoNLLU(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error processing %s: %v\n", path, err)
			os.Exit(1)
		}
		sentences = append(sentences, s...)
	}

	raw, segmented, skipped := pairs(sentences, *keepSpaces)
	if err := writeLines(filepath.Join(*outDir, "raw.txt"), raw); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := writeLines(filepath.Join(*outDir, "segmented.txt"), segmented); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("  -> %d pairs written to %s (%d skipped)\n", len(raw), *outDir, skipped)
}

func processCoNLLU(path string) ([]Sentence, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()

	var (
		sentences []Sentence
		current   Sentence
		skipUntil int // last word id covered by a multiword token
	)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()

		// Metadata line with sentence text
		if strings.HasPrefix(line, "# text = ") {
			current.Text = strings.TrimPrefix(line, "# text = ")
			continue
		}
		if strings.HasPrefix(line, "#") {
			continue
		}

		// Blank line = end of sentence
		if line == "" {
			if current.Text != "" && len(current.Tokens) > 0 {
				sentences = append(sentences, current)
			}
			current = Sentence{}
			skipUntil = 0
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 2 {
			continue
		}
		id, form := fields[0], fields[1]

		switch {
		case strings.Contains(id, "."):
			// Empty node, no surface form.
		case strings.Contains(id, "-"):
			// Multiword token: keep the surface form, skip its parts.
			var lo, hi int
			if _, err := fmt.Sscanf(id, "%d-%d", &lo, &hi); err == nil {
				skipUntil = hi
			}
			current.Tokens = append(current.Tokens, form)
		default:
			var n int
			if _, err := fmt.Sscanf(id, "%d", &n); err == nil && n <= skipUntil {
				continue
			}
			current.Tokens = append(current.Tokens, form)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning file: %w", err)
	}

	// Don't forget last sentence if no trailing blank
	if current.Text != "" && len(current.Tokens) > 0 {
		sentences = append(sentences, current)
	}
	return sentences, nil
}

// pairs builds aligned raw and segmented lines. Sentences whose tokens do
// not spell out the text are skipped.
func pairs(sentences []Sentence, keepSpaces bool) (raw, segmented []string, skipped int) {
	for _, s := range sentences {
		joined := strings.Join(s.Tokens, "")
		if joined != strings.Join(strings.Fields(s.Text), "") {
			skipped++
			continue
		}

		r := joined
		if keepSpaces {
			r = s.Text
		}
		raw = append(raw, r)
		segmented = append(segmented, strings.Join(s.Tokens, " "))
	}
	return raw, segmented, skipped
}

func writeLines(path string, lines []string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	w := bufio.NewWriter(file)
	for _, l := range lines {
		w.WriteString(l)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
