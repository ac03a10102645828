package cli

import (
	"io"
)

// dockerCompatibleBins are the binaries accepted for SLIPWAY_DOCKER_BIN.
// All of them expose a docker-compatible CLI surface.
var dockerCompatibleBins = []string{"docker", "podman", "nerdctl"}

// DockerClient wraps docker CLI execution with validation.
type DockerClient struct {
	bin        string
	exec       Executor
	validators []ExecValidator
}

// NewDockerClient creates a DockerClient running the given binary.
// An empty bin falls back to "docker".
func NewDockerClient(exec Executor, bin string) *DockerClient {
	if bin == "" {
		bin = "docker"
	}
	return &DockerClient{
		bin:  bin,
		exec: exec,
		validators: []ExecValidator{
			AllowlistBins(dockerCompatibleBins...),
			NoControlChars(), // catch control characters
		},
	}
}

// Bin returns the binary the client invokes.
func (c *DockerClient) Bin() string {
	return c.bin
}

// CommandArgs builds a docker command with the given arguments.
// Validates arguments against configured validators before building.
func (c *DockerClient) CommandArgs(args []string) (Command, error) {
	return c.exec.Command(c.bin, args, c.validators...)
}

// Output runs docker with the given arguments and returns stdout.
func (c *DockerClient) Output(args []string) ([]byte, error) {
	cmd, err := c.CommandArgs(args)
	if err != nil {
		return nil, err
	}
	return cmd.Output()
}

// CombinedOutput runs docker with the given arguments and returns combined stdout/stderr.
func (c *DockerClient) CombinedOutput(args []string) ([]byte, error) {
	cmd, err := c.CommandArgs(args)
	if err != nil {
		return nil, err
	}
	return cmd.CombinedOutput()
}

// Run runs docker with the given arguments.
func (c *DockerClient) Run(args []string) error {
	cmd, err := c.CommandArgs(args)
	if err != nil {
		return err
	}
	return cmd.Run()
}

// RunWithOutput runs docker with the given arguments, piping to the provided writers.
func (c *DockerClient) RunWithOutput(args []string, stdout, stderr io.Writer) error {
	cmd, err := c.CommandArgs(args)
	if err != nil {
		return err
	}
	cmd.SetStdout(stdout)
	cmd.SetStderr(stderr)
	return cmd.Run()
}

// RunWithInput runs docker with the given arguments, feeding stdin from r
// and piping output to the provided writers.
func (c *DockerClient) RunWithInput(args []string, r io.Reader, stdout, stderr io.Writer) error {
	cmd, err := c.CommandArgs(args)
	if err != nil {
		return err
	}
	cmd.SetStdin(r)
	cmd.SetStdout(stdout)
	cmd.SetStderr(stderr)
	return cmd.Run()
}

// DefaultDockerClient returns a DockerClient running the configured
// binary against the real executor. Constructed per call so it sees
// configuration reloaded after .env files are read.
func DefaultDockerClient() *DockerClient {
	return NewDockerClient(execExecutor, DefaultCLIConfig.DockerBin)
}
