package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"microflame/internal/errors"
	"microflame/internal/registrar"
)

func newAddEnvCmd(a *app) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "add-env <key> <value> <label> [required]",
		Short: "Add an environment variable to all .env files and config",
		Long: `Add an environment variable to every .env file of the project and declare it
in the config schema file.

Files that already contain the key are left untouched, so running the same
command again is safe. [required] accepts true/false, 1/0 or yes/no and
defaults to false.`,
		Example: `  microflame add-env API_TIMEOUT 3000 "API timeout in ms"
  microflame add-env JWT_PRIVATE_KEY changeme "JWT signing key" true
  microflame add-env DB_REPLICA_HOST localhost "Read replica" --path db.replicaHost`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 3 || len(args) > 4 {
				return errors.New(errors.EUsage, fmt.Sprintf("expected 3 or 4 arguments, got %d\nusage: %s", len(args), cmd.UseLine()))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			required := false
			if len(args) == 4 {
				var err error
				if required, err = parseRequired(args[3]); err != nil {
					return err
				}
			}
			return runAddEnv(cmd, a, registrar.Spec{
				Key:      args[0],
				Value:    args[1],
				Label:    args[2],
				Required: required,
				Path:     path,
			})
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Config path for the schema entry (default: camelCase of the key)")

	return cmd
}

func runAddEnv(cmd *cobra.Command, a *app, spec registrar.Spec) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	result, err := registrar.New(cfg, a.opts.FS, a.log).Register(spec)
	printFileChanges(cmd, result)
	if err != nil {
		return err
	}

	for _, c := range result.Conflicts {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", c.Msg)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s registered as %s\n", result.Key, result.ConfigPath)
	return nil
}

// printFileChanges prints one line per file the registrar looked at.
func printFileChanges(cmd *cobra.Command, result registrar.Result) {
	out := cmd.OutOrStdout()
	for _, f := range result.EnvFiles {
		fmt.Fprintf(out, "%-9s %s\n", f.Status, f.Path)
	}
	if result.Schema.Path != "" {
		fmt.Fprintf(out, "%-9s %s\n", result.Schema.Status, result.Schema.Path)
	}
}

// parseRequired parses the optional [required] argument.
func parseRequired(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	default:
		return false, errors.New(errors.EUsage, fmt.Sprintf("invalid value for required: %q (use true or false)", s))
	}
}
