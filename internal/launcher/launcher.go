// Package launcher runs the package manager of a generated project.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"
)

const waitDelay = 2 * time.Second

// Command describes a child process to run in a project directory.
type Command struct {
	Target string   // executable name, looked up in PATH
	Args   []string // arguments passed to the target
	Dir    string
}

// InstallCommand returns the dependency install command for a package
// manager ("npm install", "yarn install", ...).
func InstallCommand(packageManager, dir string) Command {
	return Command{Target: packageManager, Args: []string{"install"}, Dir: dir}
}

func (c Command) String() string {
	s := c.Target
	for _, a := range c.Args {
		s += " " + a
	}
	return s
}

// Run starts cmd with stdout and stderr forwarded and waits for it.
// Cancelling ctx kills the child process.
//
// Error handling:
//   - Command not found: IsNotFound reports true
//   - Permission denied: IsPermissionDenied reports true
//   - Non-zero exit: returns *exec.ExitError wrapped with the command line
func Run(ctx context.Context, cmd Command, environ []string, stdout, stderr io.Writer) error {
	execPath, err := exec.LookPath(cmd.Target)
	if err != nil {
		return err
	}

	c := exec.CommandContext(ctx, execPath, cmd.Args...)
	c.Dir = cmd.Dir
	c.Env = environ
	c.Stdout = stdout
	c.Stderr = stderr
	// Grandchildren holding the output pipes must not block Wait forever.
	c.WaitDelay = waitDelay

	if err := c.Run(); err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}
	return nil
}

// IsNotFound checks if the error indicates the command was not found
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, os.ErrNotExist) || errors.Is(err, exec.ErrNotFound)
}

// IsPermissionDenied checks if the error indicates permission was denied
func IsPermissionDenied(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, os.ErrPermission)
}

// ExitStatus returns the exit code of a command that ran and failed, or -1.
func ExitStatus(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
