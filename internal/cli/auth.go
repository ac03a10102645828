package cli

// Registry authentication through the docker CLI. The password always
// travels on stdin, never in argv.

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
)

// dockerLogin authenticates the docker CLI against a registry.
// A password without a username is rejected before any command runs.
func dockerLogin(docker *DockerClient, logger *zap.Logger, registryURL string, creds Credentials) error {
	if creds.Username == "" {
		err := newWithSentinel(ErrUsernameRequired, fmt.Sprintf("no username for registry %s (set a username flag or GITHUB_ACTOR)", registryURL))
		Error("Username required for registry login")
		logStructuredError(logger, err, "Username required for registry login")
		return err
	}

	logger.Info("Logging into registry", zap.String("registry", registryURL), zap.String("username", creds.Username))

	// #nosec G204 -- credentials from validated config; password via stdin (not command line).
	args := []string{"login", "-u", creds.Username, "--password-stdin", registryURL}
	if err := docker.RunWithInput(args, strings.NewReader(creds.Password), os.Stdout, os.Stderr); err != nil {
		wrappedErr := wrapWithSentinelAndContext(
			ErrRegistryLoginFailed,
			err,
			fmt.Sprintf("failed to login to registry %s: %v", registryURL, err),
			map[string]any{"registry": registryURL, "username": creds.Username},
		)
		Error(fmt.Sprintf("Failed to login to %s", registryURL))
		logStructuredError(logger, wrappedErr, "Failed to login to registry")
		return wrappedErr
	}

	logger.Info("Logged into registry", zap.String("registry", registryURL))
	return nil
}

// dockerLogout ends a docker CLI registry session. Logout failures are
// reported but never fail the surrounding pipeline.
func dockerLogout(docker *DockerClient, logger *zap.Logger, registryURL string) {
	if err := docker.Run([]string{"logout", registryURL}); err != nil {
		wrappedErr := wrapWithSentinel(ErrRegistryLogoutFailed, err, fmt.Sprintf("failed to logout from registry %s: %v", registryURL, err))
		logger.Warn("Failed to logout from registry", zap.String("registry", registryURL), zap.Error(wrappedErr))
	}
}
