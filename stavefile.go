//go:build stave

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/yaklabco/stave/pkg/sh"
	"github.com/yaklabco/stave/pkg/st"
	"github.com/yaklabco/stave/pkg/target"
)

// Default target when running `stave` with no arguments.
var Default = All

// Aliases for common targets.
var Aliases = map[string]interface{}{
	"b": Build,
	"t": Test,
	"l": Lint,
	"c": Clean,
	"p": Pipeline.All,
}

const binary = "bin/wbp"

// All runs the complete build pipeline: lint, test, and build.
func All() error {
	st.Deps(Init)
	st.Deps(Lint, Test)
	st.Deps(Build)
	return nil
}

// Init ensures the module dependencies are up to date.
func Init() error {
	return sh.Run("go", "mod", "tidy")
}

// Build compiles the wbp binary with version information.
func Build() error {
	st.Deps(Init)

	rebuild, err := target.Glob(binary, "**/*.go", "go.mod", "go.sum")
	if err != nil {
		return fmt.Errorf("checking rebuild: %w", err)
	}
	if !rebuild {
		if st.Verbose() {
			fmt.Println("wbp is up to date")
		}
		return nil
	}

	return sh.RunV("go", "build", "-ldflags", buildLdflags(), "-o", binary, "./cmd/wbp")
}

// buildLdflags returns ldflags for version injection.
func buildLdflags() string {
	version, _ := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	commit, _ := sh.Output("git", "rev-parse", "--short", "HEAD")
	date := time.Now().Format(time.RFC3339)

	return fmt.Sprintf(
		"-X main.version=%s -X main.commit=%s -X main.date=%s",
		strings.TrimSpace(version),
		strings.TrimSpace(commit),
		date,
	)
}

// Test runs all tests with race detection and coverage.
func Test() error {
	st.Deps(Init)
	return sh.RunV("go", "test", "-race", "-cover", "./...")
}

// TestShort runs tests in short mode.
func TestShort() error {
	st.Deps(Init)
	return sh.RunV("go", "test", "-short", "-race", "./...")
}

// Lint runs golangci-lint on the codebase.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Fmt formats all Go code using gofmt and goimports.
func Fmt() error {
	if err := sh.Run("gofmt", "-w", "."); err != nil {
		return fmt.Errorf("gofmt: %w", err)
	}
	if err := sh.Run("goimports", "-w", "."); err != nil {
		return fmt.Errorf("goimports: %w", err)
	}
	return nil
}

// Vet runs go vet on all packages.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Clean removes build and pipeline artifacts.
func Clean() error {
	for _, a := range []string{"bin/", "out/", "coverage.out", "coverage.html"} {
		if err := sh.Rm(a); err != nil {
			return fmt.Errorf("removing %s: %w", a, err)
		}
	}
	return nil
}

// Install builds and installs wbp to GOBIN.
func Install() error {
	st.Deps(Build)

	gocmd := st.GoCmd()
	bin, err := sh.Output(gocmd, "env", "GOBIN")
	if err != nil {
		return fmt.Errorf("determining GOBIN: %w", err)
	}
	if bin == "" {
		gopath, err := sh.Output(gocmd, "env", "GOPATH")
		if err != nil {
			return fmt.Errorf("determining GOPATH: %w", err)
		}
		bin = gopath + "/bin"
	}

	dst := filepath.Join(bin, "wbp")
	if runtime.GOOS == "windows" {
		dst += ".exe"
	}
	if err := sh.Copy(dst, binary); err != nil {
		return fmt.Errorf("installing wbp: %w", err)
	}
	if st.Verbose() {
		fmt.Printf("Installed wbp to %s\n", dst)
	}
	return nil
}

// Pipeline namespace runs the corpus workflow end to end. Inputs default to
// testdata/ and can be overridden with WBP_RAW and WBP_SEGMENTED.
type Pipeline st.Namespace

func pipelineInput(env, fallback string) string {
	if v := os.Getenv(env); v != "" {
		return v
	}
	return fallback
}

// Normalize collapses the segmented corpus into out/normalized.txt.
func (Pipeline) Normalize() error {
	st.Deps(Build)
	if err := os.MkdirAll("out", 0o755); err != nil {
		return err
	}
	return sh.RunV(binary, "normalize",
		pipelineInput("WBP_SEGMENTED", "testdata/segmented.txt"),
		"out/normalized.txt")
}

// Count writes the n-gram table to out/ngrams.tsv.
func (Pipeline) Count() error {
	st.Deps(Pipeline.Normalize)
	return sh.RunV(binary, "count", "out/normalized.txt", "out/ngrams.tsv")
}

// Predict trains the classifier and writes out/boundary.pb.
func (Pipeline) Predict() error {
	st.Deps(Pipeline.Count)
	return sh.RunV(binary, "predict",
		"--config", "testdata/wbp.yaml",
		"--raw", pipelineInput("WBP_RAW", "testdata/raw.txt"),
		"--segmented", pipelineInput("WBP_SEGMENTED", "testdata/segmented.txt"),
	)
}

// All runs every pipeline stage and prints a summary of the result.
func (Pipeline) All() error {
	st.Deps(Pipeline.Predict)
	return sh.RunV(binary, "inspect", "out/boundary.pb")
}

// CI runs the full CI pipeline (lint, test, build).
func CI() error {
	st.Deps(Init)
	st.SerialDeps(Lint, Test, Build)
	return nil
}

// Check runs quick validation (vet, lint, short tests).
func Check() error {
	st.Deps(Vet, Lint, TestShort)
	return nil
}

// Coverage generates a coverage report.
func Coverage() error {
	st.Deps(Init)
	if err := sh.RunV("go", "test", "-race", "-coverprofile=coverage.out", "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "cover", "-html=coverage.out", "-o", "coverage.html")
}
