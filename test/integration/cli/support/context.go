package support

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// TestContext holds the state of one scenario.
type TestContext struct {
	// Command execution state
	LastCommand  string
	LastStdout   string
	LastStderr   string
	LastError    error
	LastExitCode int
	LastDuration time.Duration

	// Test environment
	TempDir string
	EnvVars map[string]string

	// Engine answers every OCR call of the scenario.
	Engine *StubEngine
}

// NewTestContext creates a scenario context with its own scratch directory.
func NewTestContext() (*TestContext, error) {
	tempDir, err := os.MkdirTemp("", "laytext-test-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	return &TestContext{
		TempDir: tempDir,
		EnvVars: map[string]string{},
		Engine:  NewStubEngine("word"),
	}, nil
}

// Cleanup removes the scratch directory.
func (testCtx *TestContext) Cleanup() error {
	if err := os.RemoveAll(testCtx.TempDir); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove temp directory %s: %w", testCtx.TempDir, err)
	}
	return nil
}

// AddEnvVar sets an environment variable for the next commands.
func (testCtx *TestContext) AddEnvVar(name, value string) {
	testCtx.EnvVars[name] = value
}

// Path resolves a scenario-relative path inside the scratch directory.
func (testCtx *TestContext) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(testCtx.TempDir, name)
}

// substituteCommandVariables replaces {tmp} with the scratch directory.
func (testCtx *TestContext) substituteCommandVariables(command string) string {
	return strings.ReplaceAll(command, "{tmp}", testCtx.TempDir)
}

// withEnvironment applies the scenario variables while fn runs.
func (testCtx *TestContext) withEnvironment(fn func()) {
	type saved struct {
		value string
		set   bool
	}
	previous := map[string]saved{}
	for name, value := range testCtx.EnvVars {
		old, ok := os.LookupEnv(name)
		previous[name] = saved{old, ok}
		_ = os.Setenv(name, value)
	}
	defer func() {
		for name, s := range previous {
			if s.set {
				_ = os.Setenv(name, s.value)
			} else {
				_ = os.Unsetenv(name)
			}
		}
	}()
	fn()
}
