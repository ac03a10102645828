// Package registry queries container registries over their HTTP API.
//
// The client talks directly to the registry (no Docker daemon involved)
// and is used for read-only probes: checking that a pushed tag resolved,
// comparing digests, and inspecting manifests.
package registry

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/google/go-containerregistry/pkg/v1/remote/transport"

	"slipway/pkg/errx"
)

// Manifest describes a remote image manifest.
type Manifest struct {
	Ref       string   `json:"ref"`
	Digest    string   `json:"digest"`
	MediaType string   `json:"mediaType"`
	Size      int64    `json:"size"`
	Platforms []string `json:"platforms,omitempty"`
	Layers    int      `json:"layers,omitempty"`
}

// Client fetches image metadata from a registry.
type Client struct {
	auth authn.Authenticator
}

// NewClient returns a client resolving credentials from the local default
// keychain (the Docker config written by docker login).
func NewClient() *Client {
	return &Client{}
}

// NewClientWithBasicAuth returns a client authenticating with an explicit
// username and password.
func NewClientWithBasicAuth(username, password string) *Client {
	return &Client{auth: &authn.Basic{Username: username, Password: password}}
}

func (c *Client) options() []remote.Option {
	if c.auth != nil {
		return []remote.Option{remote.WithAuth(c.auth)}
	}
	return []remote.Option{remote.WithAuthFromKeychain(authn.DefaultKeychain)}
}

// Digest returns the manifest digest for ref via a HEAD request.
func (c *Client) Digest(ref string) (string, error) {
	parsed, err := name.ParseReference(ref)
	if err != nil {
		return "", errx.WrapRegistry(fmt.Sprintf("failed to parse reference %q: %v", ref, err), err)
	}
	desc, err := remote.Head(parsed, c.options()...)
	if err != nil {
		return "", errx.WrapRegistry(fmt.Sprintf("failed to resolve %q: %v", ref, err), err).
			WithContext("ref", ref)
	}
	return desc.Digest.String(), nil
}

// Exists reports whether ref resolves to a manifest in its registry.
// A 404 from the registry is not an error.
func (c *Client) Exists(ref string) (bool, error) {
	parsed, err := name.ParseReference(ref)
	if err != nil {
		return false, errx.WrapRegistry(fmt.Sprintf("failed to parse reference %q: %v", ref, err), err)
	}
	if _, err := remote.Head(parsed, c.options()...); err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, errx.WrapRegistry(fmt.Sprintf("failed to resolve %q: %v", ref, err), err).
			WithContext("ref", ref)
	}
	return true, nil
}

// Inspect fetches the manifest for ref and returns its metadata.
// For a manifest list the per-platform entries are collected; for a single
// image the config platform and layer count are reported.
func (c *Client) Inspect(ref string) (*Manifest, error) {
	parsed, err := name.ParseReference(ref)
	if err != nil {
		return nil, errx.WrapRegistry(fmt.Sprintf("failed to parse reference %q: %v", ref, err), err)
	}
	desc, err := remote.Get(parsed, c.options()...)
	if err != nil {
		return nil, errx.WrapRegistry(fmt.Sprintf("failed to fetch manifest for %q: %v", ref, err), err).
			WithContext("ref", ref)
	}

	out := &Manifest{
		Ref:       parsed.Name(),
		Digest:    desc.Digest.String(),
		MediaType: string(desc.MediaType),
		Size:      desc.Size,
	}

	if desc.MediaType.IsIndex() {
		idx, err := desc.ImageIndex()
		if err != nil {
			return nil, errx.WrapRegistry(fmt.Sprintf("failed to load image index for %q: %v", ref, err), err)
		}
		index, err := idx.IndexManifest()
		if err != nil {
			return nil, errx.WrapRegistry(fmt.Sprintf("failed to read image index for %q: %v", ref, err), err)
		}
		for _, m := range index.Manifests {
			// buildx attestation manifests carry an unknown/unknown platform
			if m.Platform == nil || m.Platform.OS == "unknown" {
				continue
			}
			out.Platforms = append(out.Platforms, m.Platform.String())
		}
		return out, nil
	}

	img, err := desc.Image()
	if err != nil {
		return nil, errx.WrapRegistry(fmt.Sprintf("failed to load image for %q: %v", ref, err), err)
	}
	if cfg, err := img.ConfigFile(); err == nil && cfg != nil {
		out.Platforms = []string{cfg.OS + "/" + cfg.Architecture}
	}
	if layers, err := img.Layers(); err == nil {
		out.Layers = len(layers)
	}
	return out, nil
}

func isNotFound(err error) bool {
	var terr *transport.Error
	if errors.As(err, &terr) {
		return terr.StatusCode == http.StatusNotFound
	}
	return false
}
