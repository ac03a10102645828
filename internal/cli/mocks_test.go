package cli

// Test doubles shared by the cli package tests. MockExecutor records every
// command spec it sees; MockCommand is scripted per invocation through
// CommandFunc or the executor defaults.

import (
	"io"
	"testing"
)

// setConfigEnv sets an environment variable and reloads the package
// config, restoring both when the test finishes. The reload cleanup is
// registered before t.Setenv's restore so it runs after it.
func setConfigEnv(t *testing.T, key, value string) {
	t.Helper()
	t.Cleanup(ReloadCLIConfig)
	t.Setenv(key, value)
	ReloadCLIConfig()
}

// MockCommand is a scripted Command implementation for tests.
type MockCommand struct {
	Args       []string
	OutputData []byte
	Err        error
	RunFunc    func() error

	StdoutW io.Writer
	StderrW io.Writer
	StdinR  io.Reader
}

func (c *MockCommand) Output() ([]byte, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	return c.OutputData, nil
}

func (c *MockCommand) CombinedOutput() ([]byte, error) {
	return c.Output()
}

func (c *MockCommand) Run() error {
	if c.RunFunc != nil {
		return c.RunFunc()
	}
	return c.Err
}

func (c *MockCommand) SetStdout(w io.Writer) { c.StdoutW = w }
func (c *MockCommand) SetStderr(w io.Writer) { c.StderrW = w }
func (c *MockCommand) SetStdin(r io.Reader)  { c.StdinR = r }

// MockExecutor records command invocations and returns scripted results.
// Validators run before a command is recorded, matching osExecutor.
type MockExecutor struct {
	Commands      []ExecSpec
	DefaultOutput []byte
	DefaultErr    error
	CommandFunc   func(ExecSpec) *MockCommand
}

func (m *MockExecutor) Command(name string, args []string, validators ...ExecValidator) (Command, error) {
	spec := ExecSpec{Name: name, Args: args}
	for _, validate := range validators {
		if err := validate(spec); err != nil {
			return nil, err
		}
	}
	m.Commands = append(m.Commands, spec)
	if m.CommandFunc != nil {
		return m.CommandFunc(spec), nil
	}
	return &MockCommand{Args: args, OutputData: m.DefaultOutput, Err: m.DefaultErr}, nil
}

// LastCommand returns the most recent recorded command spec.
func (m *MockExecutor) LastCommand() ExecSpec {
	if len(m.Commands) == 0 {
		return ExecSpec{}
	}
	return m.Commands[len(m.Commands)-1]
}

// HasCommand reports whether a command with the given binary name was run.
func (m *MockExecutor) HasCommand(name string) bool {
	for _, cmd := range m.Commands {
		if cmd.Name == name {
			return true
		}
	}
	return false
}

func contains(slice []string, val string) bool {
	for _, item := range slice {
		if item == val {
			return true
		}
	}
	return false
}

// argsJoined flattens recorded args for substring assertions.
func argsJoined(spec ExecSpec) string {
	out := spec.Name
	for _, a := range spec.Args {
		out += " " + a
	}
	return out
}

// recordedCommands returns every recorded invocation as a full argv,
// binary name first.
func recordedCommands(m *MockExecutor) [][]string {
	var out [][]string
	for _, spec := range m.Commands {
		out = append(out, append([]string{spec.Name}, spec.Args...))
	}
	return out
}
