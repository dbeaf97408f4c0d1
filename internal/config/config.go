// Package config loads microflame's per-project settings from microflame.yaml.
//
// The configuration is read once per command and passed by value to the
// components that need it; there is no package-level state.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"microflame/internal/fs"
)

// FileName is the project configuration file looked up in the project root.
const FileName = "microflame.yaml"

// Environment variables that override file settings.
const (
	EnvSchema         = "MICROFLAME_SCHEMA"
	EnvEnvironment    = "MICROFLAME_ENV"
	EnvPackageManager = "MICROFLAME_PACKAGE_MANAGER"
)

const (
	DefaultSchema         = "config/schema.json"
	DefaultEnvironment    = "development"
	DefaultPackageManager = "npm"
)

// Config holds the settings for one project directory.
type Config struct {
	ProjectDir string `yaml:"-"`

	// Schema is the configuration schema file, relative to ProjectDir.
	Schema string `yaml:"schema"`
	// EnvFiles lists env files explicitly. When empty every ".env" and
	// ".env.<name>" file in ProjectDir is used.
	EnvFiles []string `yaml:"envFiles,omitempty"`
	// Environment is the env file checked by "check" (".env.<Environment>").
	Environment    string `yaml:"environment"`
	PackageManager string `yaml:"packageManager"`
}

// Default returns the configuration used when no microflame.yaml exists.
func Default(dir string) Config {
	return Config{
		ProjectDir:     dir,
		Schema:         DefaultSchema,
		Environment:    DefaultEnvironment,
		PackageManager: DefaultPackageManager,
	}
}

// Load reads microflame.yaml from dir through fsys, if present, and applies
// overrides from environ (format "KEY=VALUE").
func Load(fsys fs.FS, dir string, environ []string) (Config, error) {
	cfg := Default(dir)

	content, err := fsys.ReadFile(filepath.Join(dir, FileName))
	switch {
	case err == nil:
		if err := cfg.decode(content); err != nil {
			return Config{}, err
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("failed to read %s: %w", FileName, err)
	}

	if v := lookupEnv(environ, EnvSchema); v != "" {
		cfg.Schema = v
	}
	if v := lookupEnv(environ, EnvEnvironment); v != "" {
		cfg.Environment = v
	}
	if v := lookupEnv(environ, EnvPackageManager); v != "" {
		cfg.PackageManager = v
	}

	return cfg, cfg.Validate()
}

func (c *Config) decode(content []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(content))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid %s: %w", FileName, err)
	}
	return nil
}

// Validate checks that required settings are present.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Schema) == "" {
		return fmt.Errorf("%s: schema must not be empty", FileName)
	}
	if strings.TrimSpace(c.Environment) == "" {
		return fmt.Errorf("%s: environment must not be empty", FileName)
	}
	for _, f := range c.EnvFiles {
		if strings.TrimSpace(f) == "" {
			return fmt.Errorf("%s: envFiles entries must not be empty", FileName)
		}
	}
	return nil
}

// SchemaPath returns the schema file path resolved against ProjectDir.
func (c Config) SchemaPath() string {
	return c.resolve(c.Schema)
}

// EnvFilePaths returns the explicitly configured env files resolved against
// ProjectDir, or nil when env files are discovered.
func (c Config) EnvFilePaths() []string {
	if len(c.EnvFiles) == 0 {
		return nil
	}
	paths := make([]string, len(c.EnvFiles))
	for i, f := range c.EnvFiles {
		paths[i] = c.resolve(f)
	}
	return paths
}

// EnvironmentFile returns the env file for the named environment.
func (c Config) EnvironmentFile(name string) string {
	if name == "" {
		name = c.Environment
	}
	return filepath.Join(c.ProjectDir, ".env."+name)
}

// ToYAML serializes the file-backed settings.
func (c Config) ToYAML() ([]byte, error) {
	return yaml.Marshal(&c)
}

func (c Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.ProjectDir, p)
}

// lookupEnv returns the value of name in an environ slice.
func lookupEnv(environ []string, name string) string {
	prefix := name + "="
	for _, env := range environ {
		if strings.HasPrefix(env, prefix) {
			return strings.TrimPrefix(env, prefix)
		}
	}
	return ""
}
