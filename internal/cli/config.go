package cli

// Environment-derived configuration and the on-disk credential store.
// Precedence everywhere is: CLI flags > environment variables > stored
// credentials, with the actor identity as the final username fallback on
// the default registry.

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Environment variables recognized by the CLI. The GITHUB_* names match
// what GitHub Actions exports so workflow runs need no extra wiring.
const (
	EnvDefaultRegistry = "SLIPWAY_DEFAULT_REGISTRY"
	EnvDockerBin       = "SLIPWAY_DOCKER_BIN"
	EnvActor           = "GITHUB_ACTOR"

	EnvRegistryUsername = "REGISTRY_USERNAME"
	EnvRegistryPassword = "REGISTRY_PASSWORD"
	EnvSourceUsername   = "SOURCE_REGISTRY_USERNAME"
	EnvSourcePassword   = "SOURCE_REGISTRY_PASSWORD"
	EnvTargetUsername   = "TARGET_REGISTRY_USERNAME"
	EnvTargetPassword   = "TARGET_REGISTRY_PASSWORD"
)

// DefaultRegistryHost is used when no registry can be derived from inputs
// and SLIPWAY_DEFAULT_REGISTRY is unset.
const DefaultRegistryHost = "ghcr.io"

// CLIConfig holds environment-derived settings shared across commands.
type CLIConfig struct {
	DefaultRegistry string
	DockerBin       string
	Actor           string

	RegistryUsername string
	RegistryPassword string
	SourceUsername   string
	SourcePassword   string
	TargetUsername   string
	TargetPassword   string
}

// LoadCLIConfig reads configuration from the environment.
func LoadCLIConfig() *CLIConfig {
	cfg := &CLIConfig{
		DefaultRegistry: os.Getenv(EnvDefaultRegistry),
		DockerBin:       os.Getenv(EnvDockerBin),
		Actor:           os.Getenv(EnvActor),

		RegistryUsername: os.Getenv(EnvRegistryUsername),
		RegistryPassword: os.Getenv(EnvRegistryPassword),
		SourceUsername:   os.Getenv(EnvSourceUsername),
		SourcePassword:   os.Getenv(EnvSourcePassword),
		TargetUsername:   os.Getenv(EnvTargetUsername),
		TargetPassword:   os.Getenv(EnvTargetPassword),
	}
	if cfg.DefaultRegistry == "" {
		cfg.DefaultRegistry = DefaultRegistryHost
	}
	return cfg
}

// DefaultCLIConfig is loaded once at startup.
var DefaultCLIConfig = LoadCLIConfig()

// ReloadCLIConfig re-reads environment configuration. Called after .env
// loading so file-provided variables are picked up.
func ReloadCLIConfig() {
	DefaultCLIConfig = LoadCLIConfig()
}

// Credentials are the username/password pair for one registry side.
type Credentials struct {
	Username string
	Password string
}

// RegistryCredential is one stored registry login.
type RegistryCredential struct {
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// CredentialsFile is the on-disk credential store written by `slipway login`,
// keyed by registry host.
type CredentialsFile struct {
	Registries map[string]RegistryCredential `yaml:"registries"`
}

func credentialsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", wrapWithSentinel(ErrGetHomeDirectoryFailed, err, fmt.Sprintf("failed to get home directory: %v", err))
	}
	return filepath.Join(home, ".slipway", "registries.yaml"), nil
}

func saveCredentialsFile(store *CredentialsFile) error {
	path, err := credentialsPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return wrapWithSentinel(ErrSaveCredentialsFailed, err, fmt.Sprintf("failed to save credentials: %v", err))
	}
	data, err := yaml.Marshal(store)
	if err != nil {
		return wrapWithSentinel(ErrSaveCredentialsFailed, err, fmt.Sprintf("failed to save credentials: %v", err))
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return wrapWithSentinel(ErrSaveCredentialsFailed, err, fmt.Sprintf("failed to save credentials: %v", err))
	}
	return nil
}

func loadCredentialsFile() (*CredentialsFile, error) {
	path, err := credentialsPath()
	if err != nil {
		return nil, err
	}
	// #nosec G304 -- path is scoped to the user's config directory.
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &CredentialsFile{Registries: map[string]RegistryCredential{}}, nil
		}
		return nil, wrapWithSentinel(ErrReadCredentialsFailed, err, fmt.Sprintf("failed to read credentials file: %v", err))
	}
	var store CredentialsFile
	if err := yaml.Unmarshal(data, &store); err != nil {
		return nil, wrapWithSentinel(ErrUnmarshalCredentialsFailed, err, fmt.Sprintf("failed to unmarshal credentials file: %v", err))
	}
	if store.Registries == nil {
		store.Registries = map[string]RegistryCredential{}
	}
	return &store, nil
}

func storeCredential(registry, username, password string) error {
	if registry == "" {
		return newWithSentinel(ErrRegistryHostRequired, "cannot store credentials without a registry host")
	}
	store, err := loadCredentialsFile()
	if err != nil {
		return err
	}
	store.Registries[registry] = RegistryCredential{Username: username, Password: password}
	return saveCredentialsFile(store)
}

func deleteCredential(registry string) error {
	store, err := loadCredentialsFile()
	if err != nil {
		return err
	}
	if _, ok := store.Registries[registry]; !ok {
		return newWithSentinel(ErrCredentialsNotFound, fmt.Sprintf("no stored credentials for registry %q", registry))
	}
	delete(store.Registries, registry)
	return saveCredentialsFile(store)
}

// resolveCredentials resolves registry credentials using precedence:
// flags > environment > credential store. The username falls back to the
// actor identity when the registry is the default registry; the password
// never has an implicit default. The bool reports whether the password
// came from the credential store, so callers can skip the logout that
// would invalidate a persistent login.
func resolveCredentials(registry string, flag, env Credentials) (Credentials, bool, error) {
	out := flag
	fromStore := false
	if out.Username == "" {
		out.Username = env.Username
	}
	if out.Password == "" {
		out.Password = env.Password
	}
	if out.Username == "" || out.Password == "" {
		store, err := loadCredentialsFile()
		if err != nil {
			return Credentials{}, false, err
		}
		if stored, ok := store.Registries[registry]; ok {
			if out.Username == "" {
				out.Username = stored.Username
			}
			if out.Password == "" {
				out.Password = stored.Password
				fromStore = stored.Password != ""
			}
		}
	}
	if out.Username == "" && registry == DefaultCLIConfig.DefaultRegistry {
		out.Username = DefaultCLIConfig.Actor
	}
	return out, fromStore, nil
}
