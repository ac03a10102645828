package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"slipway/pkg/reference"
	"slipway/pkg/registry"
)

// InspectOptions are the inputs to the inspect command.
type InspectOptions struct {
	Reference string
	Username  string
	Password  string
	JSON      bool
}

// InspectManager queries registries for image metadata.
type InspectManager struct {
	logger *zap.Logger
}

// NewInspectManager creates an InspectManager.
func NewInspectManager(logger *zap.Logger) *InspectManager {
	return &InspectManager{logger: logger}
}

// NewInspectCmd builds the inspect subcommand.
func NewInspectCmd(logger *zap.Logger) *cobra.Command {
	return NewInspectCmdWithManager(NewInspectManager(logger))
}

// NewInspectCmdWithManager returns the inspect subcommand using the provided manager.
func NewInspectCmdWithManager(mgr *InspectManager) *cobra.Command {
	var opts InspectOptions

	cmd := &cobra.Command{
		Use:   "inspect REFERENCE",
		Short: "Show the remote manifest for an image reference",
		Long: "Query a registry for the manifest behind an image reference without " +
			"pulling it, showing the digest, media type, and platforms.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				opts.Reference = args[0]
			}
			return mgr.Inspect(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Username, "username", "u", "", "Registry username (env "+EnvRegistryUsername+")")
	cmd.Flags().StringVarP(&opts.Password, "password", "p", "", "Registry password (env "+EnvRegistryPassword+")")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print the manifest metadata as JSON")

	return cmd
}

// Inspect fetches and prints manifest metadata for an image reference.
func (m *InspectManager) Inspect(opts InspectOptions) error {
	if strings.TrimSpace(opts.Reference) == "" {
		err := newWithSentinel(ErrReferenceRequired, "image reference is required (e.g. slipway inspect ghcr.io/owner/app:latest)")
		Error("Image reference required")
		logStructuredError(m.logger, err, "Image reference required")
		return err
	}

	host := reference.ResolveRegistry(opts.Reference, "", DefaultCLIConfig.DefaultRegistry)
	creds, _, err := resolveCredentials(
		host,
		Credentials{Username: opts.Username, Password: opts.Password},
		Credentials{Username: DefaultCLIConfig.RegistryUsername, Password: DefaultCLIConfig.RegistryPassword},
	)
	if err != nil {
		return err
	}

	client := registry.NewClient()
	if creds.Password != "" {
		client = registry.NewClientWithBasicAuth(creds.Username, creds.Password)
	}

	m.logger.Info("Inspecting image", zap.String("ref", opts.Reference), zap.String("registry", host))

	manifest, err := client.Inspect(opts.Reference)
	if err != nil {
		wrappedErr := wrapWithSentinelAndContext(
			ErrManifestUnavailable,
			err,
			fmt.Sprintf("failed to inspect %s: %v", opts.Reference, err),
			map[string]any{"ref": opts.Reference},
		)
		Error("Failed to inspect image")
		logStructuredError(m.logger, wrappedErr, "Failed to inspect image")
		return wrappedErr
	}

	if opts.JSON {
		data, err := json.MarshalIndent(manifest, "", "  ")
		if err != nil {
			return wrapWithSentinel(ErrManifestUnavailable, err, fmt.Sprintf("failed to encode manifest: %v", err))
		}
		fmt.Println(string(data))
		return nil
	}

	rows := [][]string{
		{"Reference", manifest.Ref},
		{"Digest", manifest.Digest},
		{"Media Type", manifest.MediaType},
		{"Size", strconv.FormatInt(manifest.Size, 10)},
	}
	if len(manifest.Platforms) > 0 {
		rows = append(rows, []string{"Platforms", strings.Join(manifest.Platforms, ", ")})
	}
	if manifest.Layers > 0 {
		rows = append(rows, []string{"Layers", strconv.Itoa(manifest.Layers)})
	}
	TableBoxed(rows)

	return nil
}
