// Package naming maps (project, prefix, environment, name) tuples to the
// identifiers Google Cloud Secret Manager uses, and back.
package naming

import (
	"fmt"
	"strings"
)

// Separator joins the prefix, environment and secret name into one secret ID.
const Separator = "-"

// Resolver builds Secret Manager identifiers for one project and prefix.
// All methods are deterministic string templates with no I/O.
type Resolver struct {
	Project string
	Prefix  string
}

// SecretID returns the short secret identifier: prefix-environment-name.
func (r Resolver) SecretID(environment, name string) string {
	return r.Prefix + Separator + environment + Separator + name
}

// Parent returns the project resource that owns all secrets.
func (r Resolver) Parent() string {
	return "projects/" + r.Project
}

// ResourceName returns the fully-qualified secret resource name.
func (r Resolver) ResourceName(environment, name string) string {
	return fmt.Sprintf("%s/secrets/%s", r.Parent(), r.SecretID(environment, name))
}

// VersionName returns the resource name of one secret version.
// Commands use "latest" unless they need a pinned version.
func (r Resolver) VersionName(environment, name, version string) string {
	return fmt.Sprintf("%s/versions/%s", r.ResourceName(environment, name), version)
}

// EnvironmentPrefix returns the secret ID prefix shared by all secrets of one
// environment, including the trailing separator.
func (r Resolver) EnvironmentPrefix(environment string) string {
	return r.Prefix + Separator + environment + Separator
}

// Parse recovers (environment, name) from a short secret ID.
//
// The mapping is only reversible when the environment itself contains no
// separator: "k8s-us-east-db" parses as environment "us", name "east-db",
// whatever the writer intended. Callers that allow separators in environment
// names must not rely on Parse.
func (r Resolver) Parse(secretID string) (environment, name string, ok bool) {
	rest, found := strings.CutPrefix(secretID, r.Prefix+Separator)
	if !found {
		return "", "", false
	}
	parts := strings.SplitN(rest, Separator, 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
