package gcp

import (
	"context"
	"testing"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	kserrors "github.com/systmms/ksecret/internal/errors"
	"github.com/systmms/ksecret/internal/logging"
	"github.com/systmms/ksecret/internal/naming"
)

// fakeSM fakes the slice of the generated client the wrapper touches.
// ListSecrets is exercised through matchEnvironment instead, since the
// generated iterator cannot be constructed with canned results.
type fakeSM struct {
	accessFn func(*secretmanagerpb.AccessSecretVersionRequest) (*secretmanagerpb.AccessSecretVersionResponse, error)
	getFn    func(*secretmanagerpb.GetSecretRequest) (*secretmanagerpb.Secret, error)
	deleteFn func(*secretmanagerpb.DeleteSecretRequest) error

	createReqs []*secretmanagerpb.CreateSecretRequest
	createErr  error
	addReqs    []*secretmanagerpb.AddSecretVersionRequest
	addErr     error
}

func (f *fakeSM) AccessSecretVersion(_ context.Context, req *secretmanagerpb.AccessSecretVersionRequest, _ ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error) {
	return f.accessFn(req)
}

func (f *fakeSM) GetSecret(_ context.Context, req *secretmanagerpb.GetSecretRequest, _ ...gax.CallOption) (*secretmanagerpb.Secret, error) {
	return f.getFn(req)
}

func (f *fakeSM) CreateSecret(_ context.Context, req *secretmanagerpb.CreateSecretRequest, _ ...gax.CallOption) (*secretmanagerpb.Secret, error) {
	f.createReqs = append(f.createReqs, req)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &secretmanagerpb.Secret{Name: req.Parent + "/secrets/" + req.SecretId}, nil
}

func (f *fakeSM) AddSecretVersion(_ context.Context, req *secretmanagerpb.AddSecretVersionRequest, _ ...gax.CallOption) (*secretmanagerpb.SecretVersion, error) {
	f.addReqs = append(f.addReqs, req)
	if f.addErr != nil {
		return nil, f.addErr
	}
	return &secretmanagerpb.SecretVersion{Name: req.Parent + "/versions/1"}, nil
}

func (f *fakeSM) DeleteSecret(_ context.Context, req *secretmanagerpb.DeleteSecretRequest, _ ...gax.CallOption) error {
	return f.deleteFn(req)
}

func (f *fakeSM) ListSecrets(_ context.Context, _ *secretmanagerpb.ListSecretsRequest, _ ...gax.CallOption) *secretmanager.SecretIterator {
	panic("not faked")
}

func (f *fakeSM) Close() error { return nil }

func testClient(sm *fakeSM) *Client {
	res := naming.Resolver{Project: "acme-prod", Prefix: "k8s"}
	return NewWithClient(sm, res, logging.New(false, true))
}

func TestGetSecret(t *testing.T) {
	var gotName string
	sm := &fakeSM{
		accessFn: func(req *secretmanagerpb.AccessSecretVersionRequest) (*secretmanagerpb.AccessSecretVersionResponse, error) {
			gotName = req.Name
			return &secretmanagerpb.AccessSecretVersionResponse{
				Payload: &secretmanagerpb.SecretPayload{Data: []byte("hunter2")},
			}, nil
		},
	}

	value, err := testClient(sm).GetSecret(context.Background(), "dev", "db-password")
	require.NoError(t, err)
	assert.Equal(t, "hunter2", value)
	assert.Equal(t, "projects/acme-prod/secrets/k8s-dev-db-password/versions/latest", gotName)
}

func TestGetSecretNotUTF8(t *testing.T) {
	sm := &fakeSM{
		accessFn: func(*secretmanagerpb.AccessSecretVersionRequest) (*secretmanagerpb.AccessSecretVersionResponse, error) {
			return &secretmanagerpb.AccessSecretVersionResponse{
				Payload: &secretmanagerpb.SecretPayload{Data: []byte{0xff, 0xfe, 0x01}},
			}, nil
		},
	}

	_, err := testClient(sm).GetSecret(context.Background(), "dev", "blob")
	require.Error(t, err)
	assert.Equal(t, kserrors.ValueNotUtf8, kserrors.KindOf(err))
}

func TestGetSecretNoPayload(t *testing.T) {
	sm := &fakeSM{
		accessFn: func(*secretmanagerpb.AccessSecretVersionRequest) (*secretmanagerpb.AccessSecretVersionResponse, error) {
			return &secretmanagerpb.AccessSecretVersionResponse{}, nil
		},
	}

	_, err := testClient(sm).GetSecret(context.Background(), "dev", "empty")
	require.Error(t, err)
	assert.Equal(t, kserrors.RemoteNotFound, kserrors.KindOf(err))
}

func TestGetSecretTranslatesAPIErrors(t *testing.T) {
	sm := &fakeSM{
		accessFn: func(*secretmanagerpb.AccessSecretVersionRequest) (*secretmanagerpb.AccessSecretVersionResponse, error) {
			return nil, status.Error(codes.PermissionDenied, "denied")
		},
	}

	_, err := testClient(sm).GetSecret(context.Background(), "dev", "db-password")
	require.Error(t, err)
	assert.Equal(t, kserrors.RemotePermission, kserrors.KindOf(err))
}

func TestExists(t *testing.T) {
	sm := &fakeSM{
		getFn: func(req *secretmanagerpb.GetSecretRequest) (*secretmanagerpb.Secret, error) {
			if req.Name == "projects/acme-prod/secrets/k8s-dev-present" {
				return &secretmanagerpb.Secret{Name: req.Name}, nil
			}
			return nil, status.Error(codes.NotFound, "absent")
		},
	}
	c := testClient(sm)

	ok, err := c.Exists(context.Background(), "dev", "present")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Exists(context.Background(), "dev", "absent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSetSecretCreatesWhenAbsent(t *testing.T) {
	sm := &fakeSM{
		getFn: func(*secretmanagerpb.GetSecretRequest) (*secretmanagerpb.Secret, error) {
			return nil, status.Error(codes.NotFound, "absent")
		},
	}
	c := testClient(sm)

	require.NoError(t, c.SetSecret(context.Background(), "dev", "db-password", []byte("hunter2")))

	require.Len(t, sm.createReqs, 1)
	create := sm.createReqs[0]
	assert.Equal(t, "projects/acme-prod", create.Parent)
	assert.Equal(t, "k8s-dev-db-password", create.SecretId)
	assert.NotNil(t, create.Secret.GetReplication().GetAutomatic())

	require.Len(t, sm.addReqs, 1)
	add := sm.addReqs[0]
	assert.Equal(t, "projects/acme-prod/secrets/k8s-dev-db-password", add.Parent)
	assert.Equal(t, []byte("hunter2"), add.Payload.GetData())
}

func TestSetSecretSkipsCreateWhenPresent(t *testing.T) {
	sm := &fakeSM{
		getFn: func(req *secretmanagerpb.GetSecretRequest) (*secretmanagerpb.Secret, error) {
			return &secretmanagerpb.Secret{Name: req.Name}, nil
		},
	}
	c := testClient(sm)

	require.NoError(t, c.SetSecret(context.Background(), "dev", "db-password", []byte("v2")))
	assert.Empty(t, sm.createReqs)
	assert.Len(t, sm.addReqs, 1)
}

func TestSetSecretToleratesCreateRace(t *testing.T) {
	sm := &fakeSM{
		getFn: func(*secretmanagerpb.GetSecretRequest) (*secretmanagerpb.Secret, error) {
			return nil, status.Error(codes.NotFound, "absent")
		},
		createErr: status.Error(codes.AlreadyExists, "raced"),
	}
	c := testClient(sm)

	require.NoError(t, c.SetSecret(context.Background(), "dev", "db-password", []byte("v")))
	assert.Len(t, sm.addReqs, 1)
}

func TestDeleteSecret(t *testing.T) {
	var gotName string
	sm := &fakeSM{
		deleteFn: func(req *secretmanagerpb.DeleteSecretRequest) error {
			gotName = req.Name
			return nil
		},
	}

	require.NoError(t, testClient(sm).DeleteSecret(context.Background(), "dev", "db-password"))
	assert.Equal(t, "projects/acme-prod/secrets/k8s-dev-db-password", gotName)
}

func TestDeleteSecretNotFound(t *testing.T) {
	sm := &fakeSM{
		deleteFn: func(*secretmanagerpb.DeleteSecretRequest) error {
			return status.Error(codes.NotFound, "absent")
		},
	}

	err := testClient(sm).DeleteSecret(context.Background(), "dev", "ghost")
	require.Error(t, err)
	assert.Equal(t, kserrors.RemoteNotFound, kserrors.KindOf(err))
}

func TestMatchEnvironment(t *testing.T) {
	tests := []struct {
		resourceName string
		envPrefix    string
		want         string
		ok           bool
	}{
		{"projects/acme-prod/secrets/k8s-dev-db-password", "k8s-dev-", "db-password", true},
		{"projects/acme-prod/secrets/k8s-dev-name-with-dashes", "k8s-dev-", "name-with-dashes", true},
		{"projects/acme-prod/secrets/k8s-staging-db", "k8s-dev-", "", false},
		{"projects/acme-prod/secrets/unrelated", "k8s-dev-", "", false},
		{"k8s-dev-bare-id", "k8s-dev-", "bare-id", true},
	}

	for _, tt := range tests {
		got, ok := matchEnvironment(tt.resourceName, tt.envPrefix)
		assert.Equal(t, tt.ok, ok, tt.resourceName)
		assert.Equal(t, tt.want, got, tt.resourceName)
	}
}
