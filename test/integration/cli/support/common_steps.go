package support

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cucumber/godog"

	"github.com/MeKo-Tech/laytext/cmd/laytext/cmd"
	"github.com/MeKo-Tech/laytext/internal/config"
	"github.com/MeKo-Tech/laytext/internal/ocr"
)

// iRunCommand executes a laytext command line in-process against the stub engine.
func (testCtx *TestContext) iRunCommand(command string) error {
	command = testCtx.substituteCommandVariables(command)
	testCtx.LastCommand = command

	args := strings.Fields(command)
	if len(args) == 0 {
		return errors.New("empty command")
	}
	if args[0] == "laytext" {
		args = args[1:]
	}

	var stdout, stderr bytes.Buffer
	engine := testCtx.Engine
	root := cmd.NewRootCommand(cmd.WithEngineFactory(func(*config.Config) (ocr.Engine, error) {
		return engine, nil
	}))
	root.SetArgs(args)
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}
	if err := os.Chdir(testCtx.TempDir); err != nil {
		return fmt.Errorf("failed to enter temp directory: %w", err)
	}
	defer func() { _ = os.Chdir(wd) }()

	if _, ok := testCtx.EnvVars["XDG_CONFIG_HOME"]; !ok {
		testCtx.AddEnvVar("XDG_CONFIG_HOME", testCtx.Path(".config"))
	}

	start := time.Now()
	testCtx.withEnvironment(func() {
		testCtx.LastError = root.ExecuteContext(context.Background())
	})
	testCtx.LastDuration = time.Since(start)
	testCtx.LastStdout = stdout.String()
	testCtx.LastStderr = stderr.String()
	testCtx.LastExitCode = cmd.ExitCode(testCtx.LastError)
	return nil
}

func (testCtx *TestContext) theCommandShouldSucceed() error {
	if testCtx.LastExitCode != cmd.ExitOK {
		return fmt.Errorf("command %q failed with exit code %d: %v\nstderr: %s",
			testCtx.LastCommand, testCtx.LastExitCode, testCtx.LastError, testCtx.LastStderr)
	}
	return nil
}

func (testCtx *TestContext) theCommandShouldFailWithExitCode(code int) error {
	if testCtx.LastExitCode != code {
		return fmt.Errorf("expected exit code %d, got %d (error: %v)", code, testCtx.LastExitCode, testCtx.LastError)
	}
	return nil
}

func (testCtx *TestContext) theOutputShouldContain(expected string) error {
	if !strings.Contains(testCtx.LastStdout, expected) {
		return fmt.Errorf("output does not contain %q\nactual output:\n%s", expected, testCtx.LastStdout)
	}
	return nil
}

func (testCtx *TestContext) theOutputShouldNotContain(unexpected string) error {
	if strings.Contains(testCtx.LastStdout, unexpected) {
		return fmt.Errorf("output unexpectedly contains %q", unexpected)
	}
	return nil
}

func (testCtx *TestContext) theOutputShouldBeEmpty() error {
	if strings.TrimSpace(testCtx.LastStdout) != "" {
		return fmt.Errorf("expected empty output, got:\n%s", testCtx.LastStdout)
	}
	return nil
}

// theErrorShouldMention looks in both the returned error and stderr.
func (testCtx *TestContext) theErrorShouldMention(expected string) error {
	if testCtx.LastError != nil && strings.Contains(testCtx.LastError.Error(), expected) {
		return nil
	}
	if strings.Contains(testCtx.LastStderr, expected) {
		return nil
	}
	return fmt.Errorf("error does not mention %q\nerror: %v\nstderr: %s", expected, testCtx.LastError, testCtx.LastStderr)
}

func (testCtx *TestContext) theOutputShouldBeValidJSON() error {
	if !json.Valid([]byte(testCtx.LastStdout)) {
		return fmt.Errorf("output is not valid JSON:\n%s", testCtx.LastStdout)
	}
	return nil
}

// theJSONFieldShouldEqual compares a top-level numeric field of the JSON output.
func (testCtx *TestContext) theJSONFieldShouldEqual(field string, expected int) error {
	var doc map[string]any
	if err := json.Unmarshal([]byte(testCtx.LastStdout), &doc); err != nil {
		return fmt.Errorf("output is not valid JSON: %w", err)
	}
	value, ok := doc[field]
	if !ok {
		return fmt.Errorf("JSON output has no field %q", field)
	}
	number, ok := value.(float64)
	if !ok {
		return fmt.Errorf("JSON field %q is %T, not a number", field, value)
	}
	if int(number) != expected {
		return fmt.Errorf("JSON field %q is %v, expected %d", field, number, expected)
	}
	return nil
}

func (testCtx *TestContext) theEnvironmentVariableIsSetTo(name, value string) error {
	testCtx.AddEnvVar(name, value)
	return nil
}

func (testCtx *TestContext) theFileShouldExist(name string) error {
	if _, err := os.Stat(testCtx.Path(name)); err != nil {
		return fmt.Errorf("file %s does not exist: %w", name, err)
	}
	return nil
}

func (testCtx *TestContext) theFileShouldNotExist(name string) error {
	if _, err := os.Stat(testCtx.Path(name)); err == nil {
		return fmt.Errorf("file %s exists", name)
	}
	return nil
}

func (testCtx *TestContext) theFileShouldContain(name, expected string) error {
	data, err := os.ReadFile(testCtx.Path(name))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	if !strings.Contains(string(data), expected) {
		return fmt.Errorf("file %s does not contain %q\ncontent:\n%s", name, expected, data)
	}
	return nil
}

// theFileShouldHaveLines counts newline separated lines of a text output.
func (testCtx *TestContext) theFileShouldHaveLines(name string, expected int) error {
	data, err := os.ReadFile(testCtx.Path(name))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	lines := 0
	if len(data) > 0 {
		lines = len(strings.Split(string(data), "\n"))
	}
	if lines != expected {
		return fmt.Errorf("file %s has %d lines, expected %d", name, lines, expected)
	}
	return nil
}

func (testCtx *TestContext) aFileContaining(name string, content *godog.DocString) error {
	if err := os.WriteFile(testCtx.Path(name), []byte(content.Content), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// RegisterCommonSteps registers command execution and output steps.
func (testCtx *TestContext) RegisterCommonSteps(sc *godog.ScenarioContext) {
	// Command execution
	sc.Step(`^I run "([^"]*)"$`, testCtx.iRunCommand)
	sc.Step(`^the command should succeed$`, testCtx.theCommandShouldSucceed)
	sc.Step(`^the command should fail with exit code (\d+)$`, testCtx.theCommandShouldFailWithExitCode)

	// Output verification
	sc.Step(`^the output should contain "([^"]*)"$`, testCtx.theOutputShouldContain)
	sc.Step(`^the output should not contain "([^"]*)"$`, testCtx.theOutputShouldNotContain)
	sc.Step(`^the output should be empty$`, testCtx.theOutputShouldBeEmpty)
	sc.Step(`^the output should be valid JSON$`, testCtx.theOutputShouldBeValidJSON)
	sc.Step(`^the JSON field "([^"]*)" should equal (\d+)$`, testCtx.theJSONFieldShouldEqual)
	sc.Step(`^the error should mention "([^"]*)"$`, testCtx.theErrorShouldMention)

	// Environment
	sc.Step(`^the environment variable "([^"]*)" is set to "([^"]*)"$`, testCtx.theEnvironmentVariableIsSetTo)

	// Files
	sc.Step(`^a file "([^"]*)" containing:$`, testCtx.aFileContaining)
	sc.Step(`^the file "([^"]*)" should exist$`, testCtx.theFileShouldExist)
	sc.Step(`^the file "([^"]*)" should not exist$`, testCtx.theFileShouldNotExist)
	sc.Step(`^the file "([^"]*)" should contain "([^"]*)"$`, testCtx.theFileShouldContain)
	sc.Step(`^the file "([^"]*)" should have (\d+) lines$`, testCtx.theFileShouldHaveLines)
}
