package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"microflame/internal/config"
	"microflame/internal/errors"
	"microflame/internal/launcher"
	"microflame/internal/scaffold"
)

func newInitCmd(a *app) *cobra.Command {
	var skipInstall bool
	var packageManager string

	cmd := &cobra.Command{
		Use:   "init <directory>",
		Short: "Initialize a new MicroFlame project in the specified directory",
		Long: `Copy the starter project into <directory> (created if missing) and install its
dependencies. Files that already exist are kept.`,
		Example: `  microflame init my-app
  microflame init my-app --package-manager pnpm
  microflame init my-app --skip-install`,
		Args: exactArgs(1, "microflame init <directory>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, a, args[0], packageManager, skipInstall)
		},
	}

	cmd.Flags().BoolVar(&skipInstall, "skip-install", false, "Do not install dependencies")
	cmd.Flags().StringVar(&packageManager, "package-manager", "", "Package manager used to install dependencies (default: npm)")

	return cmd
}

func runInit(cmd *cobra.Command, a *app, directory, packageManager string, skipInstall bool) error {
	target := directory
	if !filepath.IsAbs(target) {
		target = filepath.Join(a.projectDir(), target)
	}
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Creating project in: %s\n", target)
	result, err := scaffold.CopyProject(a.opts.FS, target, a.log)
	if err != nil {
		return err
	}
	for _, p := range result.Created {
		fmt.Fprintf(out, "  created %s\n", p)
	}
	for _, p := range result.Skipped {
		fmt.Fprintf(out, "  skipped %s (exists)\n", p)
	}

	cfg, err := config.Load(a.opts.FS, target, a.opts.Environ)
	if err != nil {
		return errors.Wrap(errors.EParse, err.Error(), err)
	}
	if packageManager == "" {
		packageManager = cfg.PackageManager
	}

	if !skipInstall {
		install := launcher.InstallCommand(packageManager, target)
		fmt.Fprintf(out, "Installing dependencies (%s)...\n", install)
		if err := launcher.Run(cmd.Context(), install, a.opts.Environ, out, cmd.ErrOrStderr()); err != nil {
			if launcher.IsNotFound(err) {
				return errors.Wrap(errors.EInstallFailed,
					fmt.Sprintf("%s not found in PATH: install it or re-run with --skip-install", packageManager), err)
			}
			return errors.Wrap(errors.EInstallFailed, fmt.Sprintf("dependency install failed: %v", err), err)
		}
	}

	fmt.Fprintf(out, "\nProject initialized in %s\n", directory)
	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintf(out, "  cd %s\n", directory)
	if skipInstall {
		fmt.Fprintf(out, "  %s\n", launcher.InstallCommand(packageManager, target))
	}
	fmt.Fprintf(out, "  Fill in your %s file\n", filepath.Base(cfg.EnvironmentFile("")))
	fmt.Fprintf(out, "  %s run dev\n", packageManager)
	return nil
}
