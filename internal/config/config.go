// Package config loads and persists the ksecret configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	kserrors "github.com/systmms/ksecret/internal/errors"
	"github.com/systmms/ksecret/internal/logging"
	"github.com/systmms/ksecret/internal/naming"
)

// DefaultPrefix is the secret prefix used when the config file sets none.
const DefaultPrefix = "k8s"

const fileName = "config.yaml"

// EnvFile overrides the config file location when set.
const EnvFile = "KSECRET_CONFIG_FILE"

// EnvProject overrides the configured project ID when set.
const EnvProject = "KSECRET_GCP_PROJECT"

// Config holds the runtime configuration. The file-backed fields are loaded
// once per invocation and never mutated afterward, except by an explicit
// project override.
type Config struct {
	Path            string          `yaml:"-"`
	Logger          *logging.Logger `yaml:"-"`
	ProjectOverride string          `yaml:"-"`

	GCPProjectID string `yaml:"gcp_project_id"`
	SecretPrefix string `yaml:"secret_prefix,omitempty"`
}

// schema describes the config document. Validation runs on the raw document
// before it lands in the struct, so typos surface as config errors instead of
// silent zero values.
const schema = `{
  "type": "object",
  "additionalProperties": false,
  "properties": {
    "gcp_project_id": {"type": "string", "minLength": 1},
    "secret_prefix": {"type": "string", "minLength": 1}
  }
}`

// DefaultPath returns the config file location: $KSECRET_CONFIG_FILE when
// set, otherwise ~/.config/ksecret/config.yaml.
func DefaultPath() (string, error) {
	if path := os.Getenv(EnvFile); path != "" {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", kserrors.Wrap(kserrors.ConfigMissing,
			"Could not determine home directory for the config file",
			"Set "+EnvFile+" to an explicit config path", err)
	}
	return filepath.Join(home, ".config", "ksecret", fileName), nil
}

// Load reads the config file and applies the project override. Missing file
// plus no override is an error directing the user to 'ksecret init'.
func (c *Config) Load() error {
	if c.Path == "" {
		path, err := DefaultPath()
		if err != nil {
			return err
		}
		c.Path = path
	}

	data, err := os.ReadFile(c.Path)
	switch {
	case os.IsNotExist(err):
		if c.ProjectOverride == "" {
			return kserrors.New(kserrors.ConfigMissing,
				"No configuration found",
				"Run 'ksecret init --project <PROJECT_ID>' to initialize, or pass --project")
		}
		c.SecretPrefix = DefaultPrefix
	case err != nil:
		return kserrors.Wrap(kserrors.ConfigMissing,
			"Failed to read config file "+c.Path,
			"Check file permissions and path", err)
	default:
		if err := validate(data); err != nil {
			return err
		}
		if err := yaml.Unmarshal(data, c); err != nil {
			return kserrors.Wrap(kserrors.ConfigMissing,
				"Failed to parse config file "+c.Path,
				"Check for YAML indentation errors, or re-run 'ksecret init'", err)
		}
		if c.SecretPrefix == "" {
			c.SecretPrefix = DefaultPrefix
		}
	}

	if c.ProjectOverride != "" {
		c.GCPProjectID = c.ProjectOverride
	}
	if c.GCPProjectID == "" {
		return kserrors.New(kserrors.ConfigMissing,
			"No GCP project ID configured",
			"Set gcp_project_id in "+c.Path+" or pass --project")
	}
	return nil
}

// Save writes the file-backed fields to the config path.
func (c *Config) Save() error {
	if c.Path == "" {
		path, err := DefaultPath()
		if err != nil {
			return err
		}
		c.Path = path
	}

	if err := os.MkdirAll(filepath.Dir(c.Path), 0o700); err != nil {
		return kserrors.Wrap(kserrors.ConfigMissing,
			"Failed to create config directory", "", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}
	if err := os.WriteFile(c.Path, data, 0o600); err != nil {
		return kserrors.Wrap(kserrors.ConfigMissing,
			"Failed to write config file "+c.Path,
			"Check directory permissions", err)
	}
	return nil
}

// Resolver returns the naming resolver for the configured project and prefix.
func (c *Config) Resolver() naming.Resolver {
	return naming.Resolver{Project: c.GCPProjectID, Prefix: c.SecretPrefix}
}

// validate checks the raw YAML document against the config schema.
func validate(data []byte) error {
	var doc map[string]interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return kserrors.Wrap(kserrors.ConfigMissing,
			"Failed to parse config file",
			"Check for YAML indentation errors, or re-run 'ksecret init'", err)
	}

	if doc == nil { // empty file
		return nil
	}

	jsonDoc, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal config for validation: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(jsonDoc),
	)
	if err != nil {
		return fmt.Errorf("config schema validation error: %w", err)
	}

	if !result.Valid() {
		var msgs []string
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return kserrors.New(kserrors.ConfigMissing,
			"Invalid configuration:\n  - "+strings.Join(msgs, "\n  - "),
			"Fix the listed fields or re-run 'ksecret init'")
	}
	return nil
}
