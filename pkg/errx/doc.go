// Package errx provides structured, code-based errors for the slipway CLI.
//
// The package implements a code-based error system where each error has:
//   - A stable 5-digit error code (e.g., "74000" for transfer errors)
//   - A category description (e.g., "Image transfer error")
//   - A user-facing message
//   - Optional structured context (key-value pairs)
//   - Optional cause and base sentinel errors
//
// Error codes follow a scheme where the first two digits represent the domain:
//   - 70xxx: CLI/argument validation errors
//   - 71xxx: Registry authentication errors
//   - 72xxx: Image build errors
//   - 73xxx: Promotion errors
//   - 74xxx: Image transfer errors (pull/tag/push)
//   - 75xxx: Input parse errors
//   - 76xxx: Configuration errors
//   - 77xxx: Registry API errors
//
// The last three digits are reserved for subcodes (future use).
//
// Example usage:
//
//	err := errx.Registry("failed to fetch manifest").
//		WithContext("ref", "ghcr.io/owner/app:v1").
//		WithBase(sentinelErr)
//
//	if errors.Is(err, sentinelErr) {
//		// Handle specific error
//	}
//
//	fmt.Println(errx.UserString(err))  // User-friendly message
//	fmt.Println(errx.DebugString(err)) // Full debug details
package errx
