// Package cli defines the microflame command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"microflame/internal/config"
	"microflame/internal/errors"
	"microflame/internal/fs"
)

// Version is set via ldflags at build time
var Version = "dev"

// Options carries the process context into the command tree.
type Options struct {
	Stdout  io.Writer
	Stderr  io.Writer
	Environ []string
	Dir     string // project directory used when --dir is not given
	Logger  *logrus.Logger
	FS      fs.FS
}

// app holds the global flags and dependencies shared by all commands.
type app struct {
	opts    Options
	log     *logrus.Entry
	dir     string
	schema  string
	verbose bool
}

// NewRootCmd creates the root command for the 'microflame' CLI
func NewRootCmd(opts Options) *cobra.Command {
	if opts.Dir == "" {
		opts.Dir = "."
	}
	if opts.FS == nil {
		opts.FS = fs.NewRealFS()
	}
	if opts.Logger == nil {
		opts.Logger = logrus.New()
		opts.Logger.SetOutput(io.Discard)
	}

	a := &app{opts: opts, log: logrus.NewEntry(opts.Logger)}

	rootCmd := &cobra.Command{
		Use:     "microflame",
		Short:   "MicroFlame CLI - scaffold your Node.js app fast",
		Version: Version,
		Long: `MicroFlame CLI - scaffold your Node.js app fast

Project:
  init <directory>                       Create a new project and install dependencies
  generate <type> <name> [--mode]        Generate a controller, model, view or route (alias: g)

Configuration:
  add-env <key> <value> <label> [required]
                                         Add a variable to every .env file and the config schema
  check [--env <name>]                   Verify required configuration is set

Settings are read from microflame.yaml in the project directory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if a.verbose {
				a.opts.Logger.SetLevel(logrus.DebugLevel)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Show help if no subcommand provided
			return cmd.Help()
		},
	}

	rootCmd.SetOut(opts.Stdout)
	rootCmd.SetErr(opts.Stderr)
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return errors.Wrap(errors.EUsage, err.Error(), err)
	})

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&a.dir, "dir", "C", "", "Project directory (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&a.schema, "schema", "", "Config schema file, relative to the project directory")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(
		// Project
		newInitCmd(a),
		newGenerateCmd(a),

		// Configuration
		newAddEnvCmd(a),
		newCheckCmd(a),
	)

	return rootCmd
}

// Execute runs the command tree with args. Errors that carry no code, such
// as cobra's argument errors, are reported as usage errors.
func Execute(ctx context.Context, args []string, opts Options) error {
	rootCmd := NewRootCmd(opts)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	if err != nil && errors.GetCode(err) == "" {
		return errors.Wrap(errors.EUsage, err.Error(), err)
	}
	return err
}

// projectDir returns the project directory selected by --dir.
func (a *app) projectDir() string {
	if a.dir == "" {
		return a.opts.Dir
	}
	if filepath.IsAbs(a.dir) {
		return a.dir
	}
	return filepath.Join(a.opts.Dir, a.dir)
}

// loadConfig reads the project configuration and applies global flags.
func (a *app) loadConfig() (config.Config, error) {
	cfg, err := config.Load(a.opts.FS, a.projectDir(), a.opts.Environ)
	if err != nil {
		return config.Config{}, errors.Wrap(errors.EParse, err.Error(), err)
	}
	if a.schema != "" {
		cfg.Schema = a.schema
	}
	a.log.WithFields(logrus.Fields{
		"project": cfg.ProjectDir,
		"schema":  cfg.Schema,
	}).Debug("loaded configuration")
	return cfg, nil
}

// exactArgs is cobra.ExactArgs with a usage hint in the message.
func exactArgs(n int, hint string) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return errors.New(errors.EUsage, fmt.Sprintf("expected %d argument(s), got %d\nusage: %s", n, len(args), hint))
		}
		return nil
	}
}
