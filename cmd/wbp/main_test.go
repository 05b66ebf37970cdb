package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jamesainslie/go-wbp/corpus"
	"github.com/jamesainslie/go-wbp/internal/config"
	"github.com/jamesainslie/go-wbp/store"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := newRootCmd()
	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"normalize", "count", "predict", "inspect"}, names)
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
}

func TestWorkflow(t *testing.T) {
	dir := t.TempDir()
	words := []string{"we", "read", "long", "books", "at", "night", "and", "sleep", "late"}

	var raw, segmented []string
	for i := 0; i < 24; i++ {
		line := []string{words[i%9], words[(i+2)%9], words[(i+5)%9], words[(i+7)%9]}
		raw = append(raw, strings.Join(line, ""))
		segmented = append(segmented, strings.Join(line, "  "))
	}
	rawPath := filepath.Join(dir, "raw.txt")
	segPath := filepath.Join(dir, "segmented.txt")
	normPath := filepath.Join(dir, "normalized.txt")
	ngramPath := filepath.Join(dir, "ngrams.tsv")
	outPath := filepath.Join(dir, "boundary.pb")
	writeFile(t, rawPath, strings.Join(raw, "\n")+"\n")
	writeFile(t, segPath, strings.Join(segmented, "\n")+"\n")

	_, err := execute(t, "normalize", segPath, normPath)
	require.NoError(t, err)
	text, err := corpus.ReadNormalizedFile(normPath)
	require.NoError(t, err)
	assert.NotContains(t, text.String(), " ")

	_, err = execute(t, "count", "--max-n", "4", "--locale", "en", "--log-level", "error", normPath, ngramPath)
	require.NoError(t, err)

	cfgPath := filepath.Join(dir, "wbp.yaml")
	writeFile(t, cfgPath, fmt.Sprintf(`paths:
  raw: %s
  segmented: %s
  normalized: %s
  ngrams: %s
  output: %s
max_n: 4
usage_ratio: 1
workers: 2
log_level: error
`, rawPath, segPath, normPath, ngramPath, outPath))

	out, err := execute(t, "predict", "--config", cfgPath, "--max-n", "3", "--seed", "7")
	require.NoError(t, err)
	assert.Contains(t, out, outPath)

	a, err := store.Load(outPath)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), a.MaxN)
	assert.Equal(t, int64(7), a.Seed)
	require.Len(t, a.Values, text.Len())
	assert.Equal(t, 1.0, a.Values[0])

	out, err = execute(t, "inspect", "--head", "2", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "dataset: word_boundary")
	assert.Contains(t, out, fmt.Sprintf("values:  %d", text.Len()))
	assert.Contains(t, out, "       0  1.000000")
}

func TestPredict_MissingInputs(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "predict",
		"--raw", filepath.Join(dir, "absent.txt"),
		"--segmented", filepath.Join(dir, "absent.txt"),
		"--output", filepath.Join(dir, "out.pb"),
		"--log-level", "error")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPredict_InvalidFlag(t *testing.T) {
	_, err := execute(t, "predict", "--classifier", "forest")
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestNormalize_BadMarker(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "normalize", "--marker", "ab", filepath.Join(dir, "in"), filepath.Join(dir, "out"))
	assert.Error(t, err)
}

func TestApplyFlags_OnlyChangedFlags(t *testing.T) {
	cmd := newPredictCmd()
	require.NoError(t, cmd.ParseFlags([]string{"--workers", "3", "--raw", "r.txt"}))

	dst := config.Default()
	dst.MaxN = 6
	dst.Paths.Segmented = "s.txt"

	// src stands in for the flag-bound values.
	src := config.Default()
	src.Workers = 3
	src.Paths.Raw = "r.txt"
	applyFlags(cmd.Flags(), src, dst)

	assert.Equal(t, 3, dst.Workers)
	assert.Equal(t, "r.txt", dst.Paths.Raw)
	assert.Equal(t, 6, dst.MaxN, "unset flags must not override the file")
	assert.Equal(t, "s.txt", dst.Paths.Segmented)
}
