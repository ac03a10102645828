package cli

// This file defines error handling utilities for the CLI, including:
//   - Sentinel errors for different error categories (CLI, Auth, Transfer, etc.)
//   - Error wrapping functions that integrate with the errx error system
//   - Structured error logging with context
//   - Debug mode management for error output

import (
	"errors"
	"sync"

	"go.uber.org/zap"

	"slipway/pkg/errx"
)

var (
	debugMode   bool
	debugModeMu sync.RWMutex
)

// SetDebugMode sets the global debug mode flag.
// When enabled, logStructuredError will output structured error logs to terminal.
func SetDebugMode(enabled bool) {
	debugModeMu.Lock()
	defer debugModeMu.Unlock()
	debugMode = enabled
}

// IsDebugMode returns whether debug mode is enabled.
func IsDebugMode() bool {
	debugModeMu.RLock()
	defer debugModeMu.RUnlock()
	return debugMode
}

type errorSpec struct {
	code        string
	description string
}

// newSentinelError creates a sentinel error and registers it in errorSpecs in one step.
// This eliminates redundancy between error definitions and errorSpecs mapping.
func newSentinelError(msg string, code, description string) error {
	err := errors.New(msg)
	errorSpecs[err] = errorSpec{code: code, description: description}
	return err
}

// errorSpecs maps sentinel errors to their error codes and descriptions.
// Populated automatically by newSentinelError() during variable initialization.
// Must be declared before sentinel errors to ensure proper initialization order.
var errorSpecs = make(map[error]errorSpec)

// lookupSpec provides a lookup function for errx.FromSentinel.
func lookupSpec(sentinel error) (code, description string) {
	spec := specFor(sentinel)
	return spec.code, spec.description
}

// newWithSentinel creates a new error using the appropriate errx category helper.
// The base error (sentinel) is used to determine the category, and the message provides context.
func newWithSentinel(base error, msg string) error {
	if base == nil {
		return errx.CreateByCode(errx.CodeCLI, errx.DescCLI, msg, nil)
	}
	return errx.FromSentinel(base, lookupSpec, msg, nil)
}

// wrapWithSentinel wraps a cause error using the appropriate errx category helper.
// The base error (sentinel) is used to determine the category, and the message provides context.
func wrapWithSentinel(base, cause error, msg string) error {
	if base == nil {
		return errx.CreateByCode(errx.CodeCLI, errx.DescCLI, msg, cause)
	}
	return errx.FromSentinel(base, lookupSpec, msg, cause)
}

// newWithSentinelAndContext creates a new error with additional structured context.
func newWithSentinelAndContext(base error, msg string, context map[string]any) error {
	err := newWithSentinel(base, msg)
	if errxErr, ok := err.(*errx.Error); ok && len(context) > 0 {
		return errxErr.WithContextMap(context)
	}
	return err
}

// wrapWithSentinelAndContext wraps an error with additional structured context.
// This is useful for adding debugging information like registry host, image refs, etc.
func wrapWithSentinelAndContext(base, cause error, msg string, context map[string]any) error {
	err := wrapWithSentinel(base, cause, msg)
	if errxErr, ok := err.(*errx.Error); ok && len(context) > 0 {
		return errxErr.WithContextMap(context)
	}
	return err
}

// Sentinel errors for CLI operations.
// Errors are defined and registered in one step using newSentinelError to eliminate redundancy.
var (
	// CLI errors.
	ErrImageNameRequired      = newSentinelError("image name is required", errx.CodeCLI, errx.DescCLI)
	ErrSourceImageRequired    = newSentinelError("source image is required", errx.CodeCLI, errx.DescCLI)
	ErrSourceTagRequired      = newSentinelError("source tag is required", errx.CodeCLI, errx.DescCLI)
	ErrTargetImageRequired    = newSentinelError("target image is required", errx.CodeCLI, errx.DescCLI)
	ErrTargetTagRequired      = newSentinelError("target tag is required", errx.CodeCLI, errx.DescCLI)
	ErrTargetPasswordRequired = newSentinelError("target registry password is required", errx.CodeCLI, errx.DescCLI)
	ErrReferenceRequired      = newSentinelError("image reference is required", errx.CodeCLI, errx.DescCLI)
	ErrRegistryHostRequired   = newSentinelError("registry host is required", errx.CodeCLI, errx.DescCLI)
	ErrControlCharsNotAllowed = newSentinelError("value must not contain control characters", errx.CodeCLI, errx.DescCLI)
	ErrGetHomeDirectoryFailed = newSentinelError("failed to get home directory", errx.CodeCLI, errx.DescCLI)

	// Auth errors.
	ErrRegistryLoginFailed  = newSentinelError("failed to login to registry", errx.CodeAuth, errx.DescAuth)
	ErrUsernameRequired     = newSentinelError("username is required when no password prompt is possible", errx.CodeAuth, errx.DescAuth)
	ErrPasswordReadFailed   = newSentinelError("failed to read password", errx.CodeAuth, errx.DescAuth)
	ErrRegistryLogoutFailed = newSentinelError("failed to logout from registry", errx.CodeAuth, errx.DescAuth)

	// Build errors.
	ErrBuildImageFailed = newSentinelError("failed to build image", errx.CodeBuild, errx.DescBuild)

	// Promotion errors.
	ErrPromotionAborted = newSentinelError("promotion aborted", errx.CodePromote, errx.DescPromote)

	// Transfer errors.
	ErrPullImageFailed = newSentinelError("failed to pull image", errx.CodeTransfer, errx.DescTransfer)
	ErrTagImageFailed  = newSentinelError("failed to tag image", errx.CodeTransfer, errx.DescTransfer)
	ErrPushImageFailed = newSentinelError("failed to push image", errx.CodeTransfer, errx.DescTransfer)

	// Parse errors.
	ErrParseBuildArgsFailed = newSentinelError("failed to parse build args", errx.CodeParse, errx.DescParse)
	ErrParseLabelsFailed    = newSentinelError("failed to parse labels", errx.CodeParse, errx.DescParse)

	// Config errors.
	ErrSaveCredentialsFailed      = newSentinelError("failed to save credentials", errx.CodeConfig, errx.DescConfig)
	ErrReadCredentialsFailed      = newSentinelError("failed to read credentials file", errx.CodeConfig, errx.DescConfig)
	ErrUnmarshalCredentialsFailed = newSentinelError("failed to unmarshal credentials file", errx.CodeConfig, errx.DescConfig)
	ErrCredentialsNotFound        = newSentinelError("no stored credentials for registry", errx.CodeConfig, errx.DescConfig)

	// Registry API errors.
	ErrManifestUnavailable = newSentinelError("manifest not available in registry", errx.CodeRegistry, errx.DescRegistry)
	ErrDigestMismatch      = newSentinelError("pushed tags do not share a digest", errx.CodeRegistry, errx.DescRegistry)
)

func specFor(base error) errorSpec {
	spec, ok := errorSpecs[base]
	if ok {
		return spec
	}
	return errorSpec{code: errx.CodeCLI, description: errx.DescCLI}
}

// logStructuredError logs an error with structured fields to terminal.
// Only logs when debug mode is enabled (via --debug flag).
// The zap logger is configured with console encoding, so structured fields
// are displayed in a human-readable format in the terminal.
//
// This extracts all context from errx.Error and logs it with structured fields:
// - error.code: "74000"
// - error.category: "Image transfer error"
// - error.context.registry: "ghcr.io"
// - error.context.ref: "ghcr.io/owner/app:staging"
func logStructuredError(logger *zap.Logger, err error, msg string) {
	if logger == nil || err == nil || !IsDebugMode() {
		return
	}

	var errxErr *errx.Error
	if errors.As(err, &errxErr) {
		fields := []zap.Field{
			zap.String("error.code", errxErr.Code()),
			zap.String("error.category", errxErr.Description()),
			zap.String("error.message", errxErr.Message()),
			zap.Error(err),
		}

		// Add all context fields as individual zap fields for structured output
		if ctx := errxErr.Context(); ctx != nil {
			for key, value := range ctx {
				fields = append(fields, zap.Any("error.context."+key, value))
			}
		}

		// Add cause if present (use distinct field name to avoid duplicate "error" field)
		if cause := errxErr.Cause(); cause != nil {
			fields = append(fields, zap.NamedError("error.cause", cause))
		}

		logger.Error(msg, fields...)
	} else {
		// Fallback for non-errx errors
		logger.Error(msg, zap.Error(err))
	}
}
