package cli

// Dry-run support: instead of executing docker, commands are echoed
// shell-quoted so a run can be copied into a terminal. Build-arg values
// with secret-looking keys are redacted in the echo.

import (
	"regexp"
	"strings"
)

var secretKeyPattern = regexp.MustCompile(`(?i)(password|secret|token|credential|api[-_]?key)`)

// dryRunEcho prints one command line in dry-run form.
func dryRunEcho(name string, args []string) {
	quoted := make([]string, 0, len(args)+1)
	quoted = append(quoted, name)
	for _, arg := range args {
		quoted = append(quoted, shellQuote(arg))
	}
	DefaultPrinter.Printf("%s %s\n", Yellow("[dry-run]"), strings.Join(quoted, " "))
}

// redactBuildArgs replaces the value of any --build-arg whose key looks
// secret-bearing. The input slice is not modified.
func redactBuildArgs(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i, arg := range out {
		if arg != "--build-arg" || i+1 >= len(out) {
			continue
		}
		key, _, found := strings.Cut(out[i+1], "=")
		if found && secretKeyPattern.MatchString(key) {
			out[i+1] = key + "=***"
		}
	}
	return out
}

// shellQuote quotes a single argument for copy-paste into a POSIX shell.
func shellQuote(arg string) string {
	if arg == "" {
		return "''"
	}
	if !strings.ContainsAny(arg, " \t\n\"'`$&|;<>()*?[]#~%!{}\\") {
		return arg
	}
	return "'" + strings.ReplaceAll(arg, "'", `'\''`) + "'"
}
