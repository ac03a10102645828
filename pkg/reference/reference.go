// Package reference provides syntactic parsing of container image references.
//
// Parsing is purely textual: a leading path segment is treated as a registry
// host only when it contains a dot or a colon or is the literal "localhost".
// No validation of host reachability is performed.
package reference

import "strings"

// Reference is a parsed container image reference.
// An empty Registry means no host segment was recognized in the input.
type Reference struct {
	Registry   string
	Repository string
	Tag        string
}

// String reassembles the reference, omitting empty parts.
func (r Reference) String() string {
	return Join(r.Registry, r.Repository, r.Tag)
}

// Parse splits an image reference into registry, repository, and tag.
// Parsing never fails; malformed references yield an empty Registry and
// the raw input as Repository.
func Parse(ref string) Reference {
	repo, tag := SplitTag(ref)
	host := RegistryHost(repo)
	if host != "" {
		repo = strings.TrimPrefix(repo, host+"/")
	}
	return Reference{Registry: host, Repository: repo, Tag: tag}
}

// SplitTag splits a reference into repository and tag. The tag is the part
// after the last colon, unless that part contains a slash (a registry port
// rather than a tag).
func SplitTag(ref string) (string, string) {
	tag := ""
	parts := strings.Split(ref, ":")
	if len(parts) > 1 && !strings.Contains(parts[len(parts)-1], "/") {
		tag = parts[len(parts)-1]
		ref = strings.Join(parts[:len(parts)-1], ":")
	}
	return ref, tag
}

// RegistryHost returns the leading registry host segment of a reference,
// or "" when the first path segment does not look like a host.
func RegistryHost(ref string) string {
	parts := strings.Split(ref, "/")
	if len(parts) <= 1 {
		return ""
	}
	first := parts[0]
	if strings.Contains(first, ".") || strings.Contains(first, ":") || first == "localhost" {
		return first
	}
	return ""
}

// ResolveRegistry resolves the registry for a reference using precedence:
// explicit override > host parsed from the reference > fallback.
func ResolveRegistry(ref, override, fallback string) string {
	if override != "" {
		return override
	}
	if host := RegistryHost(ref); host != "" {
		return host
	}
	return fallback
}

// TrimRegistry removes a leading registry host from a repository name.
// Example: "registry.example.com/my-image" -> "my-image".
func TrimRegistry(repo string) string {
	parts := strings.Split(repo, "/")
	if len(parts) <= 1 {
		return repo
	}
	if RegistryHost(repo) != "" {
		return strings.Join(parts[1:], "/")
	}
	return repo
}

// Join composes a full reference from registry, repository, and tag,
// omitting empty registry or tag.
func Join(registry, repository, tag string) string {
	ref := repository
	if registry != "" {
		ref = registry + "/" + repository
	}
	if tag != "" {
		ref = ref + ":" + tag
	}
	return ref
}

// TagSet returns the ordered tag list for a promotion: the primary tag
// first, then each comma-separated additional tag in input order.
// Additional entries are whitespace-trimmed and empty entries are dropped.
// Duplicates are preserved.
func TagSet(primary, additional string) []string {
	tags := []string{primary}
	for _, tag := range strings.Split(additional, ",") {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		tags = append(tags, tag)
	}
	return tags
}
