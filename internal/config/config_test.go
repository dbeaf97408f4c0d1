package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microflame/internal/fs"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(fs.NewRealFS(), dir, nil)
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.ProjectDir)
	assert.Equal(t, filepath.Join(dir, "config", "schema.json"), cfg.SchemaPath())
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "npm", cfg.PackageManager)
	assert.Nil(t, cfg.EnvFilePaths())
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	content := `schema: settings/env-schema.json
envFiles:
  - .env.development
  - .env.test
environment: test
packageManager: pnpm
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644))

	cfg, err := Load(fs.NewRealFS(), dir, nil)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "settings", "env-schema.json"), cfg.SchemaPath())
	assert.Equal(t, []string{
		filepath.Join(dir, ".env.development"),
		filepath.Join(dir, ".env.test"),
	}, cfg.EnvFilePaths())
	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, "pnpm", cfg.PackageManager)
	assert.Equal(t, filepath.Join(dir, ".env.test"), cfg.EnvironmentFile(""))
	assert.Equal(t, filepath.Join(dir, ".env.production"), cfg.EnvironmentFile("production"))
}

func TestLoad_EnvironOverrides(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("environment: test\n"), 0644))

	environ := []string{
		"MICROFLAME_SCHEMA=/etc/schema.json",
		"MICROFLAME_ENV=production",
		"MICROFLAME_PACKAGE_MANAGER=yarn",
	}
	cfg, err := Load(fs.NewRealFS(), dir, environ)
	require.NoError(t, err)

	assert.Equal(t, "/etc/schema.json", cfg.SchemaPath())
	assert.Equal(t, "production", cfg.Environment)
	assert.Equal(t, "yarn", cfg.PackageManager)
}

func TestLoad_EmptyFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), nil, 0644))

	cfg, err := Load(fs.NewRealFS(), dir, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultSchema, cfg.Schema)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown field", "shcema: config/schema.json\n"},
		{"invalid yaml", "schema: [unclosed\n"},
		{"empty schema", "schema: \"\"\n"},
		{"empty env file entry", "envFiles:\n  - \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(tt.content), 0644))

			_, err := Load(fs.NewRealFS(), dir, nil)
			assert.Error(t, err)
		})
	}
}

func TestToYAML_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := Default(dir)
	cfg.EnvFiles = []string{".env", ".env.test"}

	data, err := cfg.ToYAML()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), data, 0644))

	loaded, err := Load(fs.NewRealFS(), dir, nil)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

// mapFS serves files from memory and fails everything else.
type mapFS struct {
	fs.FS
	files map[string]string
	err   error
}

func (m *mapFS) ReadFile(path string) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	content, ok := m.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return []byte(content), nil
}

func TestLoad_ReadsThroughFS(t *testing.T) {
	dir := "/project"
	fsys := &mapFS{files: map[string]string{
		filepath.Join(dir, FileName): "environment: test\npackageManager: pnpm\n",
	}}

	cfg, err := Load(fsys, dir, nil)
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Environment)
	assert.Equal(t, "pnpm", cfg.PackageManager)

	cfg, err = Load(fsys, "/elsewhere", nil)
	require.NoError(t, err)
	assert.Equal(t, Default("/elsewhere"), cfg)
}

func TestLoad_ReadError(t *testing.T) {
	_, err := Load(&mapFS{err: os.ErrPermission}, "/project", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.Contains(t, err.Error(), FileName)
}
