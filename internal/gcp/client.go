// Package gcp wraps the Google Cloud Secret Manager client behind the narrow
// surface the rest of the tool needs. All API errors are translated into the
// user-facing taxonomy at this boundary.
package gcp

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	kserrors "github.com/systmms/ksecret/internal/errors"
	"github.com/systmms/ksecret/internal/logging"
	"github.com/systmms/ksecret/internal/naming"
)

// LatestVersion addresses the most recent version of a secret.
const LatestVersion = "latest"

// SecretInfo describes one secret of an environment.
type SecretInfo struct {
	Name        string
	Environment string
	CreatedAt   *time.Time
}

// smClient is the slice of the generated Secret Manager client the wrapper
// uses. Narrowing it here lets tests substitute a hand-written fake.
type smClient interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
	GetSecret(ctx context.Context, req *secretmanagerpb.GetSecretRequest, opts ...gax.CallOption) (*secretmanagerpb.Secret, error)
	CreateSecret(ctx context.Context, req *secretmanagerpb.CreateSecretRequest, opts ...gax.CallOption) (*secretmanagerpb.Secret, error)
	AddSecretVersion(ctx context.Context, req *secretmanagerpb.AddSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.SecretVersion, error)
	DeleteSecret(ctx context.Context, req *secretmanagerpb.DeleteSecretRequest, opts ...gax.CallOption) error
	ListSecrets(ctx context.Context, req *secretmanagerpb.ListSecretsRequest, opts ...gax.CallOption) *secretmanager.SecretIterator
	Close() error
}

// Client is the remote secret-store collaborator.
type Client struct {
	sm     smClient
	naming naming.Resolver
	logger *logging.Logger
}

// New creates a Secret Manager client using application-default credentials,
// or whatever client options the caller adds (e.g. a credentials file).
func New(ctx context.Context, res naming.Resolver, logger *logging.Logger, opts ...option.ClientOption) (*Client, error) {
	sm, err := secretmanager.NewClient(ctx, opts...)
	if err != nil {
		return nil, kserrors.FromGCP(err)
	}
	return &Client{sm: sm, naming: res, logger: logger}, nil
}

// NewWithClient wires an existing (possibly fake) low-level client.
func NewWithClient(sm smClient, res naming.Resolver, logger *logging.Logger) *Client {
	return &Client{sm: sm, naming: res, logger: logger}
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.sm.Close()
}

// ListSecrets returns all secrets of an environment, pagination followed to
// exhaustion one page at a time. Short names have the environment prefix
// stripped.
func (c *Client) ListSecrets(ctx context.Context, environment string) ([]SecretInfo, error) {
	envPrefix := c.naming.EnvironmentPrefix(environment)
	c.logger.Debug("Listing secrets under %s with prefix %s", c.naming.Parent(), envPrefix)

	var secrets []SecretInfo
	it := c.sm.ListSecrets(ctx, &secretmanagerpb.ListSecretsRequest{
		Parent: c.naming.Parent(),
	})
	for {
		secret, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, kserrors.FromGCP(err)
		}

		name, ok := matchEnvironment(secret.GetName(), envPrefix)
		if !ok {
			continue
		}
		info := SecretInfo{Name: name, Environment: environment}
		if ct := secret.GetCreateTime(); ct != nil {
			created := ct.AsTime()
			info.CreatedAt = &created
		}
		secrets = append(secrets, info)
	}
	return secrets, nil
}

// matchEnvironment extracts the short secret name from a full resource name
// when its identifier carries the environment prefix.
func matchEnvironment(resourceName, envPrefix string) (string, bool) {
	id := resourceName
	if i := strings.LastIndex(id, "/"); i >= 0 {
		id = id[i+1:]
	}
	if !strings.HasPrefix(id, envPrefix) {
		return "", false
	}
	return strings.TrimPrefix(id, envPrefix), true
}

// GetSecret fetches the latest version's payload. Non-UTF-8 payloads are a
// hard error.
func (c *Client) GetSecret(ctx context.Context, environment, name string) (string, error) {
	versionName := c.naming.VersionName(environment, name, LatestVersion)
	c.logger.Debug("Accessing secret version %s", versionName)

	resp, err := c.sm.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: versionName,
	})
	if err != nil {
		return "", kserrors.FromGCP(err)
	}
	if resp.GetPayload() == nil {
		return "", kserrors.New(kserrors.RemoteNotFound,
			fmt.Sprintf("Secret '%s' has no payload", name), "")
	}

	data := resp.GetPayload().GetData()
	if !utf8.Valid(data) {
		return "", kserrors.New(kserrors.ValueNotUtf8,
			fmt.Sprintf("Secret '%s' contains data that is not valid UTF-8", name),
			"ksecret only handles text payloads; store binary data elsewhere or encode it first")
	}
	return string(data), nil
}

// Exists reports whether the secret resource exists, independent of versions.
func (c *Client) Exists(ctx context.Context, environment, name string) (bool, error) {
	_, err := c.sm.GetSecret(ctx, &secretmanagerpb.GetSecretRequest{
		Name: c.naming.ResourceName(environment, name),
	})
	if err == nil {
		return true, nil
	}
	err = kserrors.FromGCP(err)
	if kserrors.Is(err, kserrors.RemoteNotFound) {
		return false, nil
	}
	return false, err
}

// SetSecret creates the secret if absent (automatic replication) and adds a
// new version holding value.
func (c *Client) SetSecret(ctx context.Context, environment, name string, value []byte) error {
	exists, err := c.Exists(ctx, environment, name)
	if err != nil {
		return err
	}

	if !exists {
		c.logger.Debug("Creating secret %s", c.naming.SecretID(environment, name))
		_, err := c.sm.CreateSecret(ctx, &secretmanagerpb.CreateSecretRequest{
			Parent:   c.naming.Parent(),
			SecretId: c.naming.SecretID(environment, name),
			Secret: &secretmanagerpb.Secret{
				Replication: &secretmanagerpb.Replication{
					Replication: &secretmanagerpb.Replication_Automatic_{
						Automatic: &secretmanagerpb.Replication_Automatic{},
					},
				},
			},
		})
		if err != nil {
			err = kserrors.FromGCP(err)
			// Lost the create race; adding the version still succeeds.
			if !kserrors.Is(err, kserrors.RemoteAlreadyExists) {
				return err
			}
		}
	}

	_, err = c.sm.AddSecretVersion(ctx, &secretmanagerpb.AddSecretVersionRequest{
		Parent: c.naming.ResourceName(environment, name),
		Payload: &secretmanagerpb.SecretPayload{
			Data: value,
		},
	})
	return kserrors.FromGCP(err)
}

// DeleteSecret removes the secret and all its versions.
func (c *Client) DeleteSecret(ctx context.Context, environment, name string) error {
	return kserrors.FromGCP(c.sm.DeleteSecret(ctx, &secretmanagerpb.DeleteSecretRequest{
		Name: c.naming.ResourceName(environment, name),
	}))
}
