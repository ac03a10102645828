package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-containerregistry/pkg/v1/remote/transport"
)

func TestNewClientWithBasicAuth(t *testing.T) {
	c := NewClientWithBasicAuth("user", "pass")
	if c.auth == nil {
		t.Fatal("expected basic auth to be set")
	}
	cfg, err := c.auth.Authorization()
	if err != nil {
		t.Fatalf("Authorization returned error: %v", err)
	}
	if cfg.Username != "user" || cfg.Password != "pass" {
		t.Errorf("auth config = %q/%q, want user/pass", cfg.Username, cfg.Password)
	}
}

func TestNewClientUsesKeychain(t *testing.T) {
	c := NewClient()
	if c.auth != nil {
		t.Error("expected default client to defer to the keychain")
	}
	if len(c.options()) != 1 {
		t.Errorf("options() = %d entries, want 1", len(c.options()))
	}
}

func TestDigest_InvalidReference(t *testing.T) {
	c := NewClientWithBasicAuth("user", "pass")
	if _, err := c.Digest("UPPER CASE not a ref"); err == nil {
		t.Error("expected error for invalid reference")
	}
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{&transport.Error{StatusCode: http.StatusNotFound}, true},
		{&transport.Error{StatusCode: http.StatusForbidden}, false},
		{errors.New("plain"), false},
		{nil, false},
	}
	for _, test := range tests {
		if got := isNotFound(test.err); got != test.want {
			t.Errorf("isNotFound(%v) = %v, want %v", test.err, got, test.want)
		}
	}
}

type fakeManifest struct {
	mediaType string
	body      []byte
}

func digestOf(body []byte) string {
	sum := sha256.Sum256(body)
	return "sha256:" + hex.EncodeToString(sum[:])
}

// fakeRegistry serves the registry v2 ping and manifest endpoints, keyed
// by tag. It returns the listener's host:port, which the name package
// treats as a plain-HTTP registry because it is a loopback address.
// HOME is pointed at a temp dir so keychain lookups never reach the
// host's docker config or its credential helpers.
func fakeRegistry(t *testing.T, manifests map[string]fakeManifest) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v2/" {
			w.WriteHeader(http.StatusOK)
			return
		}
		_, tag, found := strings.Cut(strings.TrimPrefix(r.URL.Path, "/v2/"), "/manifests/")
		if !found {
			http.NotFound(w, r)
			return
		}
		m, ok := manifests[tag]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", m.mediaType)
		w.Header().Set("Docker-Content-Digest", digestOf(m.body))
		w.Header().Set("Content-Length", strconv.Itoa(len(m.body)))
		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			w.Write(m.body)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return strings.TrimPrefix(srv.URL, "http://")
}

const indexMediaType = "application/vnd.oci.image.index.v1+json"

func indexBody() []byte {
	amd64 := "sha256:" + strings.Repeat("a", 64)
	arm64 := "sha256:" + strings.Repeat("b", 64)
	attest := "sha256:" + strings.Repeat("c", 64)
	return []byte(`{
  "schemaVersion": 2,
  "mediaType": "` + indexMediaType + `",
  "manifests": [
    {"mediaType": "application/vnd.oci.image.manifest.v1+json", "size": 400, "digest": "` + amd64 + `", "platform": {"architecture": "amd64", "os": "linux"}},
    {"mediaType": "application/vnd.oci.image.manifest.v1+json", "size": 400, "digest": "` + arm64 + `", "platform": {"architecture": "arm64", "os": "linux"}},
    {"mediaType": "application/vnd.oci.image.manifest.v1+json", "size": 120, "digest": "` + attest + `", "platform": {"architecture": "unknown", "os": "unknown"}}
  ]
}`)
}

func TestDigest(t *testing.T) {
	body := indexBody()
	host := fakeRegistry(t, map[string]fakeManifest{
		"v1": {mediaType: indexMediaType, body: body},
	})
	c := NewClientWithBasicAuth("user", "pass")

	digest, err := c.Digest(host + "/team/app:v1")
	if err != nil {
		t.Fatalf("Digest() error: %v", err)
	}
	if digest != digestOf(body) {
		t.Errorf("Digest() = %q, want %q", digest, digestOf(body))
	}
}

func TestExists(t *testing.T) {
	host := fakeRegistry(t, map[string]fakeManifest{
		"v1": {mediaType: indexMediaType, body: indexBody()},
	})
	c := NewClient()

	exists, err := c.Exists(host + "/team/app:v1")
	if err != nil {
		t.Fatalf("Exists() error: %v", err)
	}
	if !exists {
		t.Error("Exists() = false for a published tag, want true")
	}

	exists, err = c.Exists(host + "/team/app:missing")
	if err != nil {
		t.Fatalf("Exists() error for missing tag: %v", err)
	}
	if exists {
		t.Error("Exists() = true for a missing tag, want false")
	}
}

func TestInspect_IndexManifest(t *testing.T) {
	body := indexBody()
	host := fakeRegistry(t, map[string]fakeManifest{
		"v1": {mediaType: indexMediaType, body: body},
	})
	c := NewClient()

	m, err := c.Inspect(host + "/team/app:v1")
	if err != nil {
		t.Fatalf("Inspect() error: %v", err)
	}
	if m.Digest != digestOf(body) {
		t.Errorf("Digest = %q, want %q", m.Digest, digestOf(body))
	}
	if m.MediaType != indexMediaType {
		t.Errorf("MediaType = %q, want %q", m.MediaType, indexMediaType)
	}
	if m.Size != int64(len(body)) {
		t.Errorf("Size = %d, want %d", m.Size, len(body))
	}
	wantPlatforms := []string{"linux/amd64", "linux/arm64"}
	if !reflect.DeepEqual(m.Platforms, wantPlatforms) {
		t.Errorf("Platforms = %v, want %v (attestation manifests skipped)", m.Platforms, wantPlatforms)
	}
}

func TestInspect_UnknownTag(t *testing.T) {
	host := fakeRegistry(t, map[string]fakeManifest{})
	c := NewClient()

	if _, err := c.Inspect(host + "/team/app:missing"); err == nil {
		t.Error("expected error for a missing tag")
	}
}
