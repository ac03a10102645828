// Package cli provides the slipway CLI commands.
//
// Example usage:
//
//	slipway build --image-name owner/app --image-tag v1.0.0 --push
//	slipway promote --source-image ghcr.io/owner/app --source-tag v1 \
//	    --target-image ghcr.io/owner/app --target-tag staging --additional-tags latest
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"slipway/pkg/actions"
	"slipway/pkg/reference"
)

// BuildOptions are the inputs to the build pipeline.
type BuildOptions struct {
	Dockerfile string
	Context    string
	ImageName  string
	ImageTag   string
	Registry   string
	Push       bool
	Platforms  string
	BuildArgs  string
	Labels     string
	CacheFrom  string
	CacheTo    string
	Username   string
	Password   string
	DryRun     bool
}

// BuildManager handles image build operations with injected dependencies.
type BuildManager struct {
	docker  *DockerClient
	outputs *actions.OutputWriter
	logger  *zap.Logger
}

// NewBuildManager creates a BuildManager with the given dependencies.
func NewBuildManager(docker *DockerClient, outputs *actions.OutputWriter, logger *zap.Logger) *BuildManager {
	return &BuildManager{
		docker:  docker,
		outputs: outputs,
		logger:  logger,
	}
}

// DefaultBuildManager returns a BuildManager using default clients.
func DefaultBuildManager(logger *zap.Logger) *BuildManager {
	return NewBuildManager(DefaultDockerClient(), actions.NewOutputWriter(), logger)
}

// NewBuildCmd builds the build subcommand.
func NewBuildCmd(logger *zap.Logger) *cobra.Command {
	mgr := DefaultBuildManager(logger)
	return NewBuildCmdWithManager(mgr)
}

// NewBuildCmdWithManager returns the build subcommand using the provided manager.
func NewBuildCmdWithManager(mgr *BuildManager) *cobra.Command {
	var opts BuildOptions

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a Docker image and optionally push it",
		Long:  "Build a Docker image from a Dockerfile and optionally push it to a registry.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return mgr.Build(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Dockerfile, "dockerfile", "f", "Dockerfile", "Path to the Dockerfile")
	cmd.Flags().StringVar(&opts.Context, "context", ".", "Build context directory")
	cmd.Flags().StringVar(&opts.ImageName, "image-name", "", "Image name, optionally registry-qualified (required)")
	cmd.Flags().StringVar(&opts.ImageTag, "image-tag", "latest", "Image tag")
	cmd.Flags().StringVar(&opts.Registry, "registry", "", "Registry host (defaults to the host in --image-name, else "+DefaultRegistryHost+")")
	cmd.Flags().BoolVar(&opts.Push, "push", false, "Push the image after building")
	cmd.Flags().StringVar(&opts.Platforms, "platforms", "", "Comma-separated target platforms (uses buildx)")
	cmd.Flags().StringVar(&opts.BuildArgs, "build-args", "", "Build args as a JSON object of strings")
	cmd.Flags().StringVar(&opts.Labels, "labels", "", "Image labels as a JSON object of strings")
	cmd.Flags().StringVar(&opts.CacheFrom, "cache-from", "", "Cache source passed through to the builder")
	cmd.Flags().StringVar(&opts.CacheTo, "cache-to", "", "Cache destination passed through to the builder")
	cmd.Flags().StringVar(&opts.Username, "registry-username", "", "Registry username (env "+EnvRegistryUsername+")")
	cmd.Flags().StringVar(&opts.Password, "registry-password", "", "Registry password (env "+EnvRegistryPassword+")")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Print docker commands instead of running them")

	return cmd
}

// Build runs the build pipeline: validate and parse inputs, resolve the
// full image reference, login when credentials are present, build, and
// optionally push.
func (m *BuildManager) Build(opts BuildOptions) error {
	if strings.TrimSpace(opts.ImageName) == "" {
		err := newWithSentinel(ErrImageNameRequired, "image name is required (use --image-name)")
		Error("Image name required")
		logStructuredError(m.logger, err, "Image name required")
		return err
	}

	buildArgs, err := parseStringMap(opts.BuildArgs)
	if err != nil {
		wrappedErr := wrapWithSentinelAndContext(
			ErrParseBuildArgsFailed,
			err,
			fmt.Sprintf("failed to parse build args: %v", err),
			map[string]any{"build_args": opts.BuildArgs},
		)
		Error("Failed to parse build args")
		logStructuredError(m.logger, wrappedErr, "Failed to parse build args")
		return wrappedErr
	}

	labels, err := parseStringMap(opts.Labels)
	if err != nil {
		wrappedErr := wrapWithSentinelAndContext(
			ErrParseLabelsFailed,
			err,
			fmt.Sprintf("failed to parse labels: %v", err),
			map[string]any{"labels": opts.Labels},
		)
		Error("Failed to parse labels")
		logStructuredError(m.logger, wrappedErr, "Failed to parse labels")
		return wrappedErr
	}

	registryURL := reference.ResolveRegistry(opts.ImageName, opts.Registry, DefaultCLIConfig.DefaultRegistry)
	repo := reference.TrimRegistry(opts.ImageName)
	fullRef := reference.Join(registryURL, repo, opts.ImageTag)

	creds, fromStore, err := resolveCredentials(
		registryURL,
		Credentials{Username: opts.Username, Password: opts.Password},
		Credentials{Username: DefaultCLIConfig.RegistryUsername, Password: DefaultCLIConfig.RegistryPassword},
	)
	if err != nil {
		return err
	}

	if creds.Password != "" {
		if opts.DryRun {
			dryRunEcho(m.docker.Bin(), []string{"login", "-u", creds.Username, "--password-stdin", registryURL})
		} else {
			if err := dockerLogin(m.docker, m.logger, registryURL, creds); err != nil {
				return err
			}
			if !fromStore {
				defer dockerLogout(m.docker, m.logger, registryURL)
			}
		}
	}

	m.logger.Info("Building image",
		zap.String("image", fullRef),
		zap.String("dockerfile", opts.Dockerfile),
		zap.String("context", opts.Context),
		zap.String("platforms", opts.Platforms))

	args := buildCommandArgs(opts, fullRef, buildArgs, labels)
	if opts.DryRun {
		dryRunEcho(m.docker.Bin(), redactBuildArgs(args))
	} else if err := m.docker.RunWithOutput(args, os.Stdout, os.Stderr); err != nil {
		wrappedErr := wrapWithSentinelAndContext(
			ErrBuildImageFailed,
			err,
			fmt.Sprintf("failed to build image %s: %v", fullRef, err),
			map[string]any{"image": fullRef, "dockerfile": opts.Dockerfile, "context": opts.Context},
		)
		Error("Failed to build image")
		logStructuredError(m.logger, wrappedErr, "Failed to build image")
		return wrappedErr
	}

	// Single-platform pushes are a separate docker push; buildx pushes
	// multi-platform images itself via --push.
	if opts.Push && opts.Platforms == "" {
		pushArgs := []string{"push", fullRef}
		if opts.DryRun {
			dryRunEcho(m.docker.Bin(), pushArgs)
		} else if err := m.docker.RunWithOutput(pushArgs, os.Stdout, os.Stderr); err != nil {
			wrappedErr := wrapWithSentinelAndContext(
				ErrPushImageFailed,
				err,
				fmt.Sprintf("failed to push image %s: %v", fullRef, err),
				map[string]any{"target": fullRef},
			)
			Error("Failed to push image")
			logStructuredError(m.logger, wrappedErr, "Failed to push image")
			return wrappedErr
		}
	}

	if opts.Push {
		Success(fmt.Sprintf("Built and pushed %s", fullRef))
	} else {
		Success(fmt.Sprintf("Built %s", fullRef))
	}

	if err := m.outputs.Set("image", fullRef); err != nil {
		m.logger.Warn("Failed to write step output", zap.Error(err))
	}
	fmt.Printf("image=%s\n", fullRef)

	return nil
}

// buildCommandArgs assembles the docker build argv for the resolved
// reference. Build args and labels are emitted in sorted key order so the
// command line is deterministic.
func buildCommandArgs(opts BuildOptions, fullRef string, buildArgs, labels map[string]string) []string {
	multiPlatform := opts.Platforms != ""

	var args []string
	if multiPlatform {
		args = append(args, "buildx", "build", "--platform", opts.Platforms)
	} else {
		args = append(args, "build")
	}
	args = append(args, "-f", opts.Dockerfile, "-t", fullRef)
	for _, key := range sortedKeys(buildArgs) {
		args = append(args, "--build-arg", key+"="+buildArgs[key])
	}
	for _, key := range sortedKeys(labels) {
		args = append(args, "--label", key+"="+labels[key])
	}
	if opts.CacheFrom != "" {
		args = append(args, "--cache-from", opts.CacheFrom)
	}
	if opts.CacheTo != "" {
		args = append(args, "--cache-to", opts.CacheTo)
	}
	if multiPlatform && opts.Push {
		args = append(args, "--push")
	}
	return append(args, opts.Context)
}

// parseStringMap decodes a flat JSON object of string values. Empty input
// yields a nil map; non-object input or a non-string value is a parse
// error. The object check is explicit because Unmarshal treats a JSON
// null as a no-op on maps.
func parseStringMap(input string) (map[string]string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, nil
	}
	if trimmed[0] != '{' {
		return nil, fmt.Errorf("expected a JSON object, got %q", trimmed)
	}
	out := map[string]string{}
	if err := json.Unmarshal([]byte(trimmed), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
