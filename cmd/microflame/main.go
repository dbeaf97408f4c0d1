package main

import (
	"context"
	"io"
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"

	"microflame/internal/cli"
	"microflame/internal/errors"
	"microflame/internal/fs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	exitCode := run(ctx, os.Args[1:], os.Environ(), ".", os.Stdout, os.Stderr)
	stop()
	os.Exit(exitCode)
}

// run executes one command and returns the process exit code.
// It is separated from main() to enable testing.
func run(ctx context.Context, args, environ []string, dir string, stdout, stderr io.Writer) int {
	logger := log.New()
	logger.SetOutput(stderr)
	logger.SetLevel(log.WarnLevel)
	logger.SetFormatter(&log.TextFormatter{DisableTimestamp: true})

	err := cli.Execute(ctx, args, cli.Options{
		Stdout:  stdout,
		Stderr:  stderr,
		Environ: environ,
		Dir:     dir,
		Logger:  logger,
		FS:      fs.NewRealFS(),
	})
	if err != nil {
		errors.Print(stderr, err)
	}
	return errors.ExitCode(err)
}
