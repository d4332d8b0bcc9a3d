// Package errors defines the error taxonomy surfaced to users and the
// translation functions applied at the collaborator boundaries, so the rest
// of the code never inspects transport-level error internals.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// Kind classifies an error for exit handling and tests.
type Kind string

const (
	ConfigMissing       Kind = "config-missing"
	NamespaceNotFound   Kind = "namespace-not-found"
	RemoteAuth          Kind = "remote-auth"
	RemotePermission    Kind = "remote-permission"
	RemoteNotFound      Kind = "remote-not-found"
	RemoteAlreadyExists Kind = "remote-already-exists"
	RemoteUnavailable   Kind = "remote-unavailable"
	ClusterAuth         Kind = "cluster-auth"
	ClusterPermission   Kind = "cluster-permission"
	ClusterNotFound     Kind = "cluster-not-found"
	ClusterOther        Kind = "cluster-other"
	ValueNotUtf8        Kind = "value-not-utf8"
	CachePersistence    Kind = "cache-persistence"
)

// Error is a user-facing error with an actionable suggestion.
type Error struct {
	Kind       Kind
	Message    string
	Suggestion string
	Err        error
}

func (e *Error) Error() string {
	var parts []string

	if e.Message != "" {
		parts = append(parts, e.Message)
	} else if e.Err != nil {
		parts = append(parts, e.Err.Error())
	}

	if e.Err != nil && e.Message != "" {
		parts = append(parts, "\n  Details: "+e.Err.Error())
	}

	if e.Suggestion != "" {
		parts = append(parts, "\n  Try: "+e.Suggestion)
	}

	return strings.Join(parts, "")
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a taxonomy error with no wrapped cause.
func New(kind Kind, message, suggestion string) *Error {
	return &Error{Kind: kind, Message: message, Suggestion: suggestion}
}

// Wrap creates a taxonomy error around a cause.
func Wrap(kind Kind, message, suggestion string, err error) *Error {
	return &Error{Kind: kind, Message: message, Suggestion: suggestion, Err: err}
}

// KindOf returns the Kind carried by err, or "" for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given Kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// FromGCP re-expresses a Secret Manager error as a taxonomy error.
// Errors that already carry a Kind pass through unchanged.
func FromGCP(err error) error {
	if err == nil {
		return nil
	}
	var already *Error
	if stderrors.As(err, &already) {
		return err
	}

	s, ok := status.FromError(err)
	if !ok {
		return Wrap(RemoteUnavailable,
			"Google Cloud Secret Manager request failed",
			"Check your network connection and project configuration",
			err)
	}

	switch s.Code() {
	case codes.Unauthenticated:
		return Wrap(RemoteAuth,
			"Authentication with Google Cloud failed",
			"Run 'gcloud auth application-default login' to authenticate your local environment",
			err)
	case codes.PermissionDenied:
		return Wrap(RemotePermission,
			"Permission denied by Google Cloud Secret Manager",
			"Ensure your account has the 'Secret Manager Secret Accessor' role (roles/secretmanager.secretAccessor) for this project",
			err)
	case codes.NotFound:
		return Wrap(RemoteNotFound,
			"Secret not found in Google Cloud Secret Manager",
			"Check that the GCP project ID is correct and the secret exists",
			err)
	case codes.AlreadyExists:
		return Wrap(RemoteAlreadyExists,
			"Secret already exists in Google Cloud Secret Manager",
			"Use 'ksecret set' to add a new version instead of creating the secret",
			err)
	case codes.Unavailable, codes.ResourceExhausted:
		return Wrap(RemoteUnavailable,
			"Google Cloud Secret Manager is unavailable",
			"The service might be experiencing issues or you have connectivity problems; try again later",
			err)
	default:
		return Wrap(RemoteUnavailable,
			fmt.Sprintf("Google Cloud error: %s", s.Message()),
			"",
			err)
	}
}

// FromKube re-expresses a Kubernetes API error as a taxonomy error.
// Errors that already carry a Kind pass through unchanged.
func FromKube(err error) error {
	if err == nil {
		return nil
	}
	var already *Error
	if stderrors.As(err, &already) {
		return err
	}

	switch {
	case apierrors.IsUnauthorized(err):
		return Wrap(ClusterAuth,
			"Kubernetes authentication failed",
			"Check your kubeconfig credentials",
			err)
	case apierrors.IsForbidden(err):
		return Wrap(ClusterPermission,
			"Kubernetes permission denied",
			"You don't have permission to perform this action in the namespace",
			err)
	case apierrors.IsNotFound(err):
		return Wrap(ClusterNotFound,
			"Kubernetes resource not found",
			"",
			err)
	default:
		return Wrap(ClusterOther,
			"Kubernetes API request failed",
			"Check cluster connectivity and your kubeconfig context",
			err)
	}
}
