package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"slipway/pkg/actions"
	"slipway/pkg/reference"
	"slipway/pkg/registry"
)

// PromoteOptions are the inputs to the promotion pipeline.
type PromoteOptions struct {
	SourceImage    string
	SourceTag      string
	TargetImage    string
	TargetTag      string
	SourceRegistry string
	TargetRegistry string
	SourceUsername string
	SourcePassword string
	TargetUsername string
	TargetPassword string
	AdditionalTags string
	SkipPull       bool
	Verify         bool
	DryRun         bool
}

// PromoteManager handles image promotion with injected dependencies.
type PromoteManager struct {
	docker  *DockerClient
	outputs *actions.OutputWriter
	logger  *zap.Logger
}

// NewPromoteManager creates a PromoteManager with the given dependencies.
func NewPromoteManager(docker *DockerClient, outputs *actions.OutputWriter, logger *zap.Logger) *PromoteManager {
	return &PromoteManager{
		docker:  docker,
		outputs: outputs,
		logger:  logger,
	}
}

// DefaultPromoteManager returns a PromoteManager using default clients.
func DefaultPromoteManager(logger *zap.Logger) *PromoteManager {
	return NewPromoteManager(DefaultDockerClient(), actions.NewOutputWriter(), logger)
}

// NewPromoteCmd builds the promote subcommand.
func NewPromoteCmd(logger *zap.Logger) *cobra.Command {
	mgr := DefaultPromoteManager(logger)
	return NewPromoteCmdWithManager(mgr)
}

// NewPromoteCmdWithManager returns the promote subcommand using the provided manager.
func NewPromoteCmdWithManager(mgr *PromoteManager) *cobra.Command {
	var opts PromoteOptions

	cmd := &cobra.Command{
		Use:   "promote",
		Short: "Retag an image and push it to a target registry",
		Long: "Promote an image between registries or environments: pull the source image, " +
			"retag it under the target tag plus any additional tags, and push each tag in order.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return mgr.Promote(opts)
		},
	}

	cmd.Flags().StringVar(&opts.SourceImage, "source-image", "", "Source image, optionally registry-qualified (required)")
	cmd.Flags().StringVar(&opts.SourceTag, "source-tag", "", "Source tag (required)")
	cmd.Flags().StringVar(&opts.TargetImage, "target-image", "", "Target image, optionally registry-qualified (required)")
	cmd.Flags().StringVar(&opts.TargetTag, "target-tag", "", "Primary target tag (required)")
	cmd.Flags().StringVar(&opts.SourceRegistry, "source-registry", "", "Source registry host (defaults to the host in --source-image)")
	cmd.Flags().StringVar(&opts.TargetRegistry, "target-registry", "", "Target registry host (defaults to the host in --target-image)")
	cmd.Flags().StringVar(&opts.SourceUsername, "source-username", "", "Source registry username (env "+EnvSourceUsername+")")
	cmd.Flags().StringVar(&opts.SourcePassword, "source-password", "", "Source registry password (env "+EnvSourcePassword+")")
	cmd.Flags().StringVar(&opts.TargetUsername, "target-username", "", "Target registry username (env "+EnvTargetUsername+")")
	cmd.Flags().StringVar(&opts.TargetPassword, "target-password", "", "Target registry password (env "+EnvTargetPassword+")")
	cmd.Flags().StringVar(&opts.AdditionalTags, "additional-tags", "", "Comma-separated extra tags pushed after the target tag")
	cmd.Flags().BoolVar(&opts.SkipPull, "skip-pull", false, "Skip pulling the source image and use the local image store")
	cmd.Flags().BoolVar(&opts.Verify, "verify", false, "Verify pushed tags share one digest after promotion")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Print docker commands instead of running them")

	return cmd
}

// Promote runs the promotion pipeline: resolve registries and credentials,
// authenticate, pull the source image, then tag and push every tag in the
// tag set. A failure on any tag aborts the remaining tags; already-pushed
// tags are not rolled back.
func (m *PromoteManager) Promote(opts PromoteOptions) error {
	if err := m.validate(opts); err != nil {
		return err
	}

	sourceHost := reference.ResolveRegistry(opts.SourceImage, opts.SourceRegistry, DefaultCLIConfig.DefaultRegistry)
	targetHost := reference.ResolveRegistry(opts.TargetImage, opts.TargetRegistry, DefaultCLIConfig.DefaultRegistry)

	sourceCreds, sourceFromStore, err := resolveCredentials(
		sourceHost,
		Credentials{Username: opts.SourceUsername, Password: opts.SourcePassword},
		Credentials{Username: DefaultCLIConfig.SourceUsername, Password: DefaultCLIConfig.SourcePassword},
	)
	if err != nil {
		return err
	}
	targetCreds, targetFromStore, err := resolveCredentials(
		targetHost,
		Credentials{Username: opts.TargetUsername, Password: opts.TargetPassword},
		Credentials{Username: DefaultCLIConfig.TargetUsername, Password: DefaultCLIConfig.TargetPassword},
	)
	if err != nil {
		return err
	}

	// A push without credentials cannot succeed, so an empty target
	// password fails the pipeline before any command runs.
	if targetCreds.Password == "" {
		wrappedErr := newWithSentinel(ErrTargetPasswordRequired,
			"target registry password is required (use --target-password or "+EnvTargetPassword+")")
		Error("Target registry password required")
		logStructuredError(m.logger, wrappedErr, "Target registry password required")
		return wrappedErr
	}

	m.logger.Info("Starting promotion",
		zap.String("source", opts.SourceImage+":"+opts.SourceTag),
		zap.String("target", opts.TargetImage+":"+opts.TargetTag),
		zap.String("source_registry", sourceHost),
		zap.String("target_registry", targetHost),
		zap.String("additional_tags", opts.AdditionalTags))

	if opts.DryRun {
		return m.promoteDryRun(opts, sourceHost, targetHost, sourceCreds, targetCreds)
	}

	if sourceCreds.Password != "" {
		if err := dockerLogin(m.docker, m.logger, sourceHost, sourceCreds); err != nil {
			return err
		}
		if !sourceFromStore {
			defer dockerLogout(m.docker, m.logger, sourceHost)
		}
	}
	if err := dockerLogin(m.docker, m.logger, targetHost, targetCreds); err != nil {
		return err
	}
	if !targetFromStore {
		defer dockerLogout(m.docker, m.logger, targetHost)
	}

	sourceRef := opts.SourceImage + ":" + opts.SourceTag
	if opts.SkipPull {
		Info(fmt.Sprintf("Skipping pull, using local image %s", sourceRef))
		m.logger.Info("Skipping source pull", zap.String("source", sourceRef))
	} else if err := m.pullImage(sourceRef); err != nil {
		return err
	}

	tags := reference.TagSet(opts.TargetTag, opts.AdditionalTags)
	var pushed []string
	for _, tag := range tags {
		targetRef := opts.TargetImage + ":" + tag
		if err := m.tagImage(sourceRef, targetRef); err != nil {
			return m.abortPromotion(err, targetRef, pushed)
		}
		if err := m.pushImage(targetRef); err != nil {
			return m.abortPromotion(err, targetRef, pushed)
		}
		pushed = append(pushed, targetRef)
	}

	if opts.Verify {
		if err := m.verifyPromotion(opts.TargetImage, tags, targetCreds); err != nil {
			return err
		}
	}

	promotedRef := opts.TargetImage + ":" + opts.TargetTag
	Success(fmt.Sprintf("Promoted %s to %s (%d tags)", sourceRef, promotedRef, len(pushed)))
	if err := m.outputs.Set("promoted-image", promotedRef); err != nil {
		m.logger.Warn("Failed to write step output", zap.Error(err))
	}
	fmt.Printf("promoted-image=%s\n", promotedRef)

	return nil
}

func (m *PromoteManager) validate(opts PromoteOptions) error {
	fail := func(sentinel error, msg, title string) error {
		err := newWithSentinel(sentinel, msg)
		Error(title)
		logStructuredError(m.logger, err, title)
		return err
	}
	if strings.TrimSpace(opts.SourceImage) == "" {
		return fail(ErrSourceImageRequired, "source image is required (use --source-image)", "Source image required")
	}
	if strings.TrimSpace(opts.SourceTag) == "" {
		return fail(ErrSourceTagRequired, "source tag is required (use --source-tag)", "Source tag required")
	}
	if strings.TrimSpace(opts.TargetImage) == "" {
		return fail(ErrTargetImageRequired, "target image is required (use --target-image)", "Target image required")
	}
	if strings.TrimSpace(opts.TargetTag) == "" {
		return fail(ErrTargetTagRequired, "target tag is required (use --target-tag)", "Target tag required")
	}
	return nil
}

// promoteDryRun echoes the docker commands the promotion would run and
// still writes the promoted-image output so workflows can be exercised
// end to end.
func (m *PromoteManager) promoteDryRun(opts PromoteOptions, sourceHost, targetHost string, sourceCreds, targetCreds Credentials) error {
	bin := m.docker.Bin()
	if sourceCreds.Password != "" {
		dryRunEcho(bin, []string{"login", "-u", sourceCreds.Username, "--password-stdin", sourceHost})
	}
	dryRunEcho(bin, []string{"login", "-u", targetCreds.Username, "--password-stdin", targetHost})

	sourceRef := opts.SourceImage + ":" + opts.SourceTag
	if !opts.SkipPull {
		dryRunEcho(bin, []string{"pull", sourceRef})
	}
	for _, tag := range reference.TagSet(opts.TargetTag, opts.AdditionalTags) {
		targetRef := opts.TargetImage + ":" + tag
		dryRunEcho(bin, []string{"tag", sourceRef, targetRef})
		dryRunEcho(bin, []string{"push", targetRef})
	}
	if opts.Verify {
		Info("Skipping digest verification in dry-run mode")
	}

	promotedRef := opts.TargetImage + ":" + opts.TargetTag
	if err := m.outputs.Set("promoted-image", promotedRef); err != nil {
		m.logger.Warn("Failed to write step output", zap.Error(err))
	}
	fmt.Printf("promoted-image=%s\n", promotedRef)
	return nil
}

func (m *PromoteManager) pullImage(sourceRef string) error {
	Info(fmt.Sprintf("Pulling %s", sourceRef))
	if err := m.docker.RunWithOutput([]string{"pull", sourceRef}, os.Stdout, os.Stderr); err != nil {
		wrappedErr := wrapWithSentinelAndContext(
			ErrPullImageFailed,
			err,
			fmt.Sprintf("failed to pull image %s: %v", sourceRef, err),
			map[string]any{"source": sourceRef},
		)
		Error("Failed to pull source image")
		logStructuredError(m.logger, wrappedErr, "Failed to pull source image")
		return wrappedErr
	}
	return nil
}

func (m *PromoteManager) tagImage(sourceRef, targetRef string) error {
	if err := m.docker.Run([]string{"tag", sourceRef, targetRef}); err != nil {
		wrappedErr := wrapWithSentinelAndContext(
			ErrTagImageFailed,
			err,
			fmt.Sprintf("failed to tag %s as %s: %v", sourceRef, targetRef, err),
			map[string]any{"source": sourceRef, "target": targetRef},
		)
		Error("Failed to tag image")
		logStructuredError(m.logger, wrappedErr, "Failed to tag image")
		return wrappedErr
	}
	return nil
}

func (m *PromoteManager) pushImage(targetRef string) error {
	Info(fmt.Sprintf("Pushing %s", targetRef))
	if err := m.docker.RunWithOutput([]string{"push", targetRef}, os.Stdout, os.Stderr); err != nil {
		wrappedErr := wrapWithSentinelAndContext(
			ErrPushImageFailed,
			err,
			fmt.Sprintf("failed to push image %s: %v", targetRef, err),
			map[string]any{"target": targetRef},
		)
		Error("Failed to push image")
		logStructuredError(m.logger, wrappedErr, "Failed to push image")
		return wrappedErr
	}
	return nil
}

// abortPromotion wraps a tag or push failure with the promotion sentinel,
// recording which tags were already pushed. Pushed tags stay pushed.
func (m *PromoteManager) abortPromotion(cause error, failedRef string, pushed []string) error {
	if len(pushed) > 0 {
		Warn(fmt.Sprintf("Promotion aborted; already pushed tags remain: %s", strings.Join(pushed, ", ")))
	}
	wrappedErr := wrapWithSentinelAndContext(
		ErrPromotionAborted,
		cause,
		fmt.Sprintf("promotion aborted at %s: %v", failedRef, cause),
		map[string]any{"failed": failedRef, "pushed": strings.Join(pushed, ", ")},
	)
	logStructuredError(m.logger, wrappedErr, "Promotion aborted")
	return wrappedErr
}

// verifyPromotion checks every promoted tag against the registry: each tag
// must resolve to a manifest, and all tags must share the primary tag's
// digest.
func (m *PromoteManager) verifyPromotion(targetImage string, tags []string, creds Credentials) error {
	client := registry.NewClientWithBasicAuth(creds.Username, creds.Password)

	primaryDigest := ""
	for i, tag := range tags {
		ref := targetImage + ":" + tag
		digest, err := client.Digest(ref)
		if err != nil {
			wrappedErr := wrapWithSentinelAndContext(
				ErrManifestUnavailable,
				err,
				fmt.Sprintf("failed to verify %s: %v", ref, err),
				map[string]any{"ref": ref},
			)
			Error("Failed to verify promoted tag")
			logStructuredError(m.logger, wrappedErr, "Failed to verify promoted tag")
			return wrappedErr
		}
		if i == 0 {
			primaryDigest = digest
			continue
		}
		if digest != primaryDigest {
			wrappedErr := newWithSentinelAndContext(
				ErrDigestMismatch,
				fmt.Sprintf("digest mismatch for %s: got %s, want %s", ref, digest, primaryDigest),
				map[string]any{"ref": ref, "digest": digest, "expected": primaryDigest},
			)
			Error("Promoted tag digest mismatch")
			logStructuredError(m.logger, wrappedErr, "Promoted tag digest mismatch")
			return wrappedErr
		}
	}

	Success(fmt.Sprintf("Verified %d tags at digest %s", len(tags), primaryDigest))
	m.logger.Info("Verified promoted tags", zap.Int("tags", len(tags)), zap.String("digest", primaryDigest))
	return nil
}
