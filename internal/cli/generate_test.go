package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microflame/internal/errors"
)

func TestGenerate_Controller(t *testing.T) {
	dir := t.TempDir()

	run := execute(dir, nil, "generate", "controller", "user")
	require.NoError(t, run.err)

	want := filepath.Join("controllers", "api", "v1", "user.controller.js")
	assert.Equal(t, "created "+want+"\n", run.stdout)
	assert.FileExists(t, filepath.Join(dir, want))
}

func TestGenerate_AliasAndMode(t *testing.T) {
	dir := t.TempDir()

	run := execute(dir, nil, "g", "controller", "user", "--mode", "views")
	require.NoError(t, run.err)

	assert.FileExists(t, filepath.Join(dir, "controllers", "views", "user.controller.js"))
}

func TestGenerate_Errors(t *testing.T) {
	dir := t.TempDir()

	run := execute(dir, nil, "generate", "widget", "user")
	require.Error(t, run.err)
	assert.Equal(t, errors.EUsage, errors.GetCode(run.err))

	run = execute(dir, nil, "generate", "model")
	require.Error(t, run.err)
	assert.Equal(t, errors.EUsage, errors.GetCode(run.err))

	require.NoError(t, execute(dir, nil, "generate", "model", "user").err)
	run = execute(dir, nil, "generate", "model", "user")
	require.Error(t, run.err)
	assert.Equal(t, errors.EFileExists, errors.GetCode(run.err))
}
