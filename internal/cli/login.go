package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

// LoginOptions are the inputs to the login command.
type LoginOptions struct {
	Registry      string
	Username      string
	Password      string
	PasswordStdin bool
	Store         bool
	Delete        bool
}

// LoginManager handles registry login and the credential store.
type LoginManager struct {
	docker *DockerClient
	logger *zap.Logger
	stdin  io.Reader
}

// NewLoginManager creates a LoginManager with the given dependencies.
func NewLoginManager(docker *DockerClient, logger *zap.Logger, stdin io.Reader) *LoginManager {
	return &LoginManager{
		docker: docker,
		logger: logger,
		stdin:  stdin,
	}
}

// DefaultLoginManager returns a LoginManager using default clients.
func DefaultLoginManager(logger *zap.Logger) *LoginManager {
	return NewLoginManager(DefaultDockerClient(), logger, os.Stdin)
}

// NewLoginCmd builds the login subcommand.
func NewLoginCmd(logger *zap.Logger) *cobra.Command {
	mgr := DefaultLoginManager(logger)
	return NewLoginCmdWithManager(mgr)
}

// NewLoginCmdWithManager returns the login subcommand using the provided manager.
func NewLoginCmdWithManager(mgr *LoginManager) *cobra.Command {
	var opts LoginOptions

	cmd := &cobra.Command{
		Use:   "login [REGISTRY]",
		Short: "Log in to a container registry",
		Long: "Log in to a container registry through the docker CLI and optionally " +
			"store the credentials for later build and promote runs. REGISTRY defaults " +
			"to " + DefaultRegistryHost + ".",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.Registry = args[0]
			}
			return mgr.Login(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Username, "username", "u", "", "Registry username (env "+EnvRegistryUsername+")")
	cmd.Flags().StringVarP(&opts.Password, "password", "p", "", "Registry password (env "+EnvRegistryPassword+")")
	cmd.Flags().BoolVar(&opts.PasswordStdin, "password-stdin", false, "Read the password from stdin")
	cmd.Flags().BoolVar(&opts.Store, "store", false, "Store the credentials in "+filepathHint())
	cmd.Flags().BoolVar(&opts.Delete, "delete", false, "Remove stored credentials for the registry")

	return cmd
}

func filepathHint() string {
	path, err := credentialsPath()
	if err != nil {
		return "~/.slipway/registries.yaml"
	}
	return path
}

// Login validates credentials against a registry via docker login and
// optionally persists them. With --delete it removes the stored entry
// without contacting the registry.
func (m *LoginManager) Login(opts LoginOptions) error {
	registryURL := opts.Registry
	if registryURL == "" {
		registryURL = DefaultCLIConfig.DefaultRegistry
	}

	if opts.Delete {
		if err := m.deleteStored(registryURL); err != nil {
			return err
		}
		Success(fmt.Sprintf("Removed stored credentials for %s", registryURL))
		return nil
	}

	username := opts.Username
	if username == "" {
		username = DefaultCLIConfig.RegistryUsername
	}
	if username == "" && registryURL == DefaultCLIConfig.DefaultRegistry {
		username = DefaultCLIConfig.Actor
	}
	if username == "" {
		wrappedErr := newWithSentinel(ErrUsernameRequired, "username is required (use --username)")
		Error("Username required")
		logStructuredError(m.logger, wrappedErr, "Username required")
		return wrappedErr
	}

	password, err := m.resolvePassword(opts)
	if err != nil {
		return err
	}

	if err := dockerLogin(m.docker, m.logger, registryURL, Credentials{Username: username, Password: password}); err != nil {
		return err
	}
	Success(fmt.Sprintf("Logged in to %s as %s", registryURL, username))

	if opts.Store {
		if err := storeCredential(registryURL, username, password); err != nil {
			Error("Failed to store credentials")
			logStructuredError(m.logger, err, "Failed to store credentials")
			return err
		}
		Success(fmt.Sprintf("Stored credentials for %s in %s", registryURL, filepathHint()))
	}

	return nil
}

func (m *LoginManager) deleteStored(registryURL string) error {
	if err := deleteCredential(registryURL); err != nil {
		Error("Failed to remove stored credentials")
		logStructuredError(m.logger, err, "Failed to remove stored credentials")
		return err
	}
	return nil
}

// resolvePassword picks the password from the flag, stdin, the
// environment, or an interactive prompt, in that order.
func (m *LoginManager) resolvePassword(opts LoginOptions) (string, error) {
	if opts.Password != "" {
		return opts.Password, nil
	}

	if opts.PasswordStdin {
		data, err := io.ReadAll(m.stdin)
		if err != nil {
			wrappedErr := wrapWithSentinel(ErrPasswordReadFailed, err, fmt.Sprintf("failed to read password from stdin: %v", err))
			Error("Failed to read password")
			logStructuredError(m.logger, wrappedErr, "Failed to read password")
			return "", wrappedErr
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}

	if DefaultCLIConfig.RegistryPassword != "" {
		return DefaultCLIConfig.RegistryPassword, nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		wrappedErr := newWithSentinel(ErrPasswordReadFailed, "no password provided and stdin is not a terminal (use --password-stdin)")
		Error("Password required")
		logStructuredError(m.logger, wrappedErr, "Password required")
		return "", wrappedErr
	}

	fmt.Fprint(os.Stderr, "Password: ")
	data, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		wrappedErr := wrapWithSentinel(ErrPasswordReadFailed, err, fmt.Sprintf("failed to read password from terminal: %v", err))
		Error("Failed to read password")
		logStructuredError(m.logger, wrappedErr, "Failed to read password")
		return "", wrappedErr
	}
	return string(data), nil
}
