package errx

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestFormat_UserString(t *testing.T) {
	t.Run("message wins", func(t *testing.T) {
		err := New(CodeTransfer, DescTransfer, "failed to push image ghcr.io/owner/app:staging")
		if got := UserString(err); got != "failed to push image ghcr.io/owner/app:staging" {
			t.Errorf("UserString() = %q, want the push message", got)
		}
	})
	t.Run("description when message empty", func(t *testing.T) {
		err := New(CodePromote, DescPromote, "")
		if got := UserString(err); got != DescPromote {
			t.Errorf("UserString() = %q, want %q", got, DescPromote)
		}
	})
	t.Run("code when message and description empty", func(t *testing.T) {
		err := New(CodeParse, "", "")
		if got := UserString(err); got != CodeParse {
			t.Errorf("UserString() = %q, want %q", got, CodeParse)
		}
	})
	t.Run("nil error", func(t *testing.T) {
		if got := UserString(nil); got != "" {
			t.Errorf("UserString(nil) = %q, want empty string", got)
		}
	})
	t.Run("plain error passes through", func(t *testing.T) {
		err := errors.New("manifest unknown")
		if got := UserString(err); got != "manifest unknown" {
			t.Errorf("UserString() = %q, want %q", got, "manifest unknown")
		}
	})
	t.Run("wrapped errx error is found", func(t *testing.T) {
		inner := New(CodeAuth, DescAuth, "login to ghcr.io failed")
		err := fmt.Errorf("promote: %w", inner)
		if got := UserString(err); got != "login to ghcr.io failed" {
			t.Errorf("UserString() = %q, want the inner message", got)
		}
	})
}

func TestFormat_IsError(t *testing.T) {
	t.Run("errx error", func(t *testing.T) {
		if !IsError(CLI("image name is required")) {
			t.Error("IsError() = false for an errx error, want true")
		}
	})
	t.Run("wrapped errx error", func(t *testing.T) {
		err := fmt.Errorf("build: %w", New(CodeBuild, DescBuild, "failed to build image app:latest"))
		if !IsError(err) {
			t.Error("IsError() = false for a wrapped errx error, want true")
		}
	})
	t.Run("plain error", func(t *testing.T) {
		if IsError(errors.New("exit status 1")) {
			t.Error("IsError() = true for a plain error, want false")
		}
	})
	t.Run("nil error", func(t *testing.T) {
		if IsError(nil) {
			t.Error("IsError(nil) = true, want false")
		}
	})
}

func TestFormat_DebugString(t *testing.T) {
	t.Run("single transfer error", func(t *testing.T) {
		err := New(CodeTransfer, DescTransfer, "failed to pull image ghcr.io/owner/app:v1")
		want := `1: *errx.Error: failed to pull image ghcr.io/owner/app:v1 | code=74000 | description="Image transfer error" | message="failed to pull image ghcr.io/owner/app:v1"`
		if got := DebugString(err); got != want {
			t.Errorf("DebugString() = %q, want %q", got, want)
		}
	})
	t.Run("description omitted when empty", func(t *testing.T) {
		err := New(CodeParse, "", "build args are not valid JSON")
		want := `1: *errx.Error: build args are not valid JSON | code=75000 | message="build args are not valid JSON"`
		if got := DebugString(err); got != want {
			t.Errorf("DebugString() = %q, want %q", got, want)
		}
	})
	t.Run("context rendered with sorted keys", func(t *testing.T) {
		err := New(CodeRegistry, DescRegistry, "digest mismatch").
			WithContext("ref", "ghcr.io/owner/app:prod").
			WithContext("digest", "sha256:abc")
		want := `1: *errx.Error: digest mismatch | code=77000 | description="Registry API error" | message="digest mismatch" | context={digest=sha256:abc, ref=ghcr.io/owner/app:prod}`
		if got := DebugString(err); got != want {
			t.Errorf("DebugString() = %q, want %q", got, want)
		}
	})
	t.Run("promotion chain lists every hop", func(t *testing.T) {
		cause := errors.New("denied: insufficient_scope")
		push := Wrap(CodeTransfer, DescTransfer, "failed to push image ghcr.io/owner/app:stable", cause)
		abort := Wrap(CodePromote, DescPromote, "promotion aborted after failed push", push)

		want := strings.Join([]string{
			`1: *errx.Error: promotion aborted after failed push | code=73000 | description="Promotion error" | message="promotion aborted after failed push"`,
			`2: *errx.Error: failed to push image ghcr.io/owner/app:stable | code=74000 | description="Image transfer error" | message="failed to push image ghcr.io/owner/app:stable"`,
			`3: *errors.errorString: denied: insufficient_scope`,
		}, "\n")
		if got := DebugString(abort); got != want {
			t.Errorf("DebugString() = %q, want %q", got, want)
		}
	})
	t.Run("joined errors fan out", func(t *testing.T) {
		joined := errors.Join(errors.New("pull timed out"), errors.New("manifest HEAD failed"))
		got := DebugString(joined)
		for _, part := range []string{"1:", "2:", "3:", "pull timed out", "manifest HEAD failed"} {
			if !strings.Contains(got, part) {
				t.Errorf("DebugString() missing %q:\n%s", part, got)
			}
		}
	})
	t.Run("plain error", func(t *testing.T) {
		err := errors.New("manifest unknown")
		if got := DebugString(err); got != "1: *errors.errorString: manifest unknown" {
			t.Errorf("DebugString() = %q, want the single-entry form", got)
		}
	})
	t.Run("nil error", func(t *testing.T) {
		if got := DebugString(nil); got != "" {
			t.Errorf("DebugString(nil) = %q, want empty string", got)
		}
	})
}

func TestFormat_flattenChain(t *testing.T) {
	t.Run("single error", func(t *testing.T) {
		err := New(CodeBuild, DescBuild, "failed to build image app:latest")
		chain := flattenChain(err)
		if len(chain) != 1 || chain[0] != err {
			t.Errorf("flattenChain() = %v, want just the error itself", chain)
		}
	})
	t.Run("cause follows the wrapper", func(t *testing.T) {
		cause := errors.New("exit status 1")
		err := Wrap(CodeBuild, DescBuild, "failed to build image app:latest", cause)
		chain := flattenChain(err)
		if len(chain) != 2 {
			t.Fatalf("flattenChain() length = %d, want 2", len(chain))
		}
		if chain[0] != err || chain[1] != cause {
			t.Errorf("flattenChain() = %v, want wrapper then cause", chain)
		}
	})
	t.Run("joined causes keep their order", func(t *testing.T) {
		first := errors.New("tag v1 missing")
		second := errors.New("tag latest missing")
		chain := flattenChain(errors.Join(first, second))
		if len(chain) != 3 {
			t.Fatalf("flattenChain() length = %d, want 3", len(chain))
		}
		if chain[1] != first || chain[2] != second {
			t.Errorf("flattenChain()[1:] = %v, want the joined errors in order", chain[1:])
		}
	})
	t.Run("nil error", func(t *testing.T) {
		if chain := flattenChain(nil); len(chain) != 0 {
			t.Errorf("flattenChain(nil) = %v, want empty", chain)
		}
	})
}

func TestFormat_unwrapAll(t *testing.T) {
	t.Run("no cause", func(t *testing.T) {
		if got := unwrapAll(New(CodeConfig, DescConfig, "no credentials stored for ghcr.io")); got != nil {
			t.Errorf("unwrapAll() = %v, want nil", got)
		}
	})
	t.Run("single cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		got := unwrapAll(Wrap(CodeAuth, DescAuth, "login to ghcr.io failed", cause))
		if len(got) != 1 || got[0] != cause {
			t.Errorf("unwrapAll() = %v, want [%v]", got, cause)
		}
	})
	t.Run("joined causes in order", func(t *testing.T) {
		first := errors.New("push app:v1 failed")
		second := errors.New("push app:latest failed")
		third := errors.New("push app:stable failed")
		got := unwrapAll(errors.Join(first, second, third))
		if len(got) != 3 {
			t.Fatalf("unwrapAll() length = %d, want 3", len(got))
		}
		if got[0] != first || got[1] != second || got[2] != third {
			t.Errorf("unwrapAll() = %v, want the joined errors in order", got)
		}
	})
	t.Run("plain error", func(t *testing.T) {
		if got := unwrapAll(errors.New("read-only file system")); got != nil {
			t.Errorf("unwrapAll() = %v, want nil", got)
		}
	})
	t.Run("nil error", func(t *testing.T) {
		if got := unwrapAll(nil); got != nil {
			t.Errorf("unwrapAll(nil) = %v, want nil", got)
		}
	})
}

func TestFormat_formatContext(t *testing.T) {
	t.Run("single pair", func(t *testing.T) {
		if got := formatContext(map[string]any{"registry": "ghcr.io"}); got != "registry=ghcr.io" {
			t.Errorf("formatContext() = %q, want %q", got, "registry=ghcr.io")
		}
	})
	t.Run("keys are sorted", func(t *testing.T) {
		ctx := map[string]any{"target": "ghcr.io/owner/app:staging", "registry": "ghcr.io"}
		want := "registry=ghcr.io, target=ghcr.io/owner/app:staging"
		if got := formatContext(ctx); got != want {
			t.Errorf("formatContext() = %q, want %q", got, want)
		}
	})
	t.Run("non-string values", func(t *testing.T) {
		if got := formatContext(map[string]any{"attempts": 3}); got != "attempts=3" {
			t.Errorf("formatContext() = %q, want %q", got, "attempts=3")
		}
	})
	t.Run("empty context", func(t *testing.T) {
		if got := formatContext(nil); got != "" {
			t.Errorf("formatContext(nil) = %q, want empty string", got)
		}
	})
}
