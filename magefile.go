//go:build mage

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	modulePath = "github.com/dkoosis/tpsync"
	binPath    = "./bin/tpsync"
)

// Default target - build the binary
var Default = Build

// Build builds the tpsync binary with version metadata.
func Build() error {
	fmt.Println("Building tpsync...")
	return sh.RunV("go", "build", "-ldflags", ldflags(), "-o", binPath, "./cmd/tpsync")
}

// Install installs tpsync into GOBIN.
func Install() error {
	return sh.RunV("go", "install", "-ldflags", ldflags(), "./cmd/tpsync")
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll("./bin"); err != nil {
		return err
	}
	return sh.Run("go", "clean")
}

func ldflags() string {
	version := gitVersion()
	commit := gitCommit()
	date := time.Now().UTC().Format(time.RFC3339)
	return fmt.Sprintf("-s -w -X '%s/internal/version.Version=%s' -X '%s/internal/version.CommitHash=%s' -X '%s/internal/version.BuildDate=%s'",
		modulePath, version, modulePath, commit, modulePath, date)
}

func gitVersion() string {
	out, err := sh.Output("git", "describe", "--tags", "--always", "--dirty", "--match=v*")
	if err != nil {
		return "dev"
	}
	return strings.TrimSpace(out)
}

func gitCommit() string {
	out, err := sh.Output("git", "rev-parse", "--short", "HEAD")
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(out)
}

// Lint namespace for linting commands
type Lint mg.Namespace

// All runs every linter.
func (Lint) All() {
	mg.SerialDeps(Lint.Format, Lint.Vet)
}

// Format checks code formatting.
func (Lint) Format() error {
	return sh.RunV("go", "fmt", "./...")
}

// Vet runs go vet.
func (Lint) Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Test namespace for testing commands
type Test mg.Namespace

// All runs all tests.
func (Test) All() error {
	return sh.RunV("go", "test", "./...")
}

// Coverage runs tests with coverage.
func (Test) Coverage() error {
	if err := sh.RunV("go", "test", "-coverprofile=coverage.out", "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "cover", "-func=coverage.out")
}

// Race runs tests with the race detector.
func (Test) Race() error {
	return sh.RunV("go", "test", "-race", "./...")
}
