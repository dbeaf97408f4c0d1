package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// testRun holds the output of one command execution.
type testRun struct {
	stdout string
	stderr string
	err    error
}

// execute runs the command tree in dir with the given environment.
func execute(dir string, environ []string, args ...string) testRun {
	var stdout, stderr bytes.Buffer
	err := Execute(context.Background(), args, Options{
		Stdout:  &stdout,
		Stderr:  &stderr,
		Environ: environ,
		Dir:     dir,
	})
	return testRun{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// writeProject writes files (relative path -> content) into a temp dir.
func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return dir
}

func readProjectFile(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(data)
}
