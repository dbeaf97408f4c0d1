package cli

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"microflame/internal/config"
	"microflame/internal/envfile"
	"microflame/internal/errors"
	"microflame/internal/resolver"
	"microflame/internal/schema"
	"microflame/internal/validator"
)

func newCheckCmd(a *app) *cobra.Command {
	var env string
	var ci, asJSON bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify required configuration is set",
		Long: `Resolve every entry of the config schema the way the project does at startup:
the process environment first, then .env.<environment>, then the declared
default. Fails when a required value is missing or empty.

Keys in the env file that the schema does not declare are reported as warnings.`,
		Example: `  microflame check
  microflame check --env production
  MICROFLAME_ENV=test microflame check --ci
  microflame check --json`,
		Args: exactArgs(0, "microflame check [--env <name>]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			ciMode := ci || envBool(a.opts.Environ, "CI")
			return runCheck(cmd, a, env, ciMode, asJSON)
		},
	}

	cmd.Flags().StringVarP(&env, "env", "e", "", "Environment to check (default: from microflame.yaml)")
	cmd.Flags().BoolVar(&ci, "ci", false, "Print failures as GitHub Actions annotations")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON on stdout")

	return cmd
}

func runCheck(cmd *cobra.Command, a *app, env string, ciMode, asJSON bool) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	doc, err := readSchema(a, cfg)
	if err != nil {
		return err
	}

	envPath := cfg.EnvironmentFile(env)
	envRel := relPath(cfg.ProjectDir, envPath)
	data, err := a.opts.FS.ReadFile(envPath)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return errors.New(errors.EFileNotFound, fmt.Sprintf("env file not found: %s", envRel))
		}
		return errors.WrapPath(errors.EInternal, envRel, err)
	}
	file, err := envfile.Parse(envRel, data)
	if err != nil {
		return errors.Wrap(errors.EParse, err.Error(), err)
	}
	values, err := file.Values()
	if err != nil {
		return errors.Wrap(errors.EParse, err.Error(), err)
	}

	entries := doc.Entries()
	resolved := resolver.Resolve(entries, values, a.opts.Environ)
	result := validator.Validate(entries, resolved)

	a.log.WithFields(logrus.Fields{
		"env_file": envRel,
		"entries":  len(entries),
		"errors":   len(result.Errors),
	}).Debug("validated configuration")

	for _, key := range resolver.Undeclared(entries, file.Keys()) {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s is set in %s but not declared in %s\n", key, envRel, cfg.Schema)
	}

	if asJSON {
		data, err := validator.FormatJSON(validator.NewReport(envRel, resolved, result))
		if err != nil {
			return errors.Wrap(errors.EInternal, "cannot encode report", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		if !result.Valid {
			return errors.New(errors.EValidationFailed,
				fmt.Sprintf("%d required value(s) missing for environment %s", len(result.Errors), envName(cfg, env)))
		}
		return nil
	}

	if !result.Valid {
		for _, verr := range result.Errors {
			if ciMode {
				fmt.Fprintln(cmd.ErrOrStderr(), formatCIAnnotation(cfg.Schema, verr))
			} else {
				fmt.Fprintln(cmd.ErrOrStderr(), validator.FormatError(verr))
			}
		}
		return errors.New(errors.EValidationFailed,
			fmt.Sprintf("%d required value(s) missing for environment %s", len(result.Errors), envName(cfg, env)))
	}

	fmt.Fprintf(cmd.OutOrStdout(), "ok: %d value(s) resolved for environment %s\n", len(resolved), envName(cfg, env))
	return nil
}

// readSchema loads and parses the config schema of the project.
func readSchema(a *app, cfg config.Config) (*schema.Document, error) {
	path := cfg.SchemaPath()
	rel := relPath(cfg.ProjectDir, path)

	data, err := a.opts.FS.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.New(errors.EFileNotFound, fmt.Sprintf("schema file not found: %s", rel))
		}
		return nil, errors.WrapPath(errors.EInternal, rel, err)
	}
	doc, err := schema.Parse(rel, data)
	if err != nil {
		return nil, errors.Wrap(errors.EParse, err.Error(), err)
	}
	return doc, nil
}

func envName(cfg config.Config, env string) string {
	if env == "" {
		return cfg.Environment
	}
	return env
}

// formatCIAnnotation formats a validation error as GitHub Actions annotation
func formatCIAnnotation(schemaFile string, err validator.ValidationError) string {
	return fmt.Sprintf("::error file=%s::%s", schemaFile, validator.FormatError(err))
}

// envBool reports whether name is set to a true value in environ.
func envBool(environ []string, name string) bool {
	prefix := name + "="
	for _, env := range environ {
		if strings.HasPrefix(env, prefix) {
			val := strings.ToLower(strings.TrimPrefix(env, prefix))
			return val == "true" || val == "1" || val == "yes"
		}
	}
	return false
}

// relPath returns path relative to dir for messages.
func relPath(dir, path string) string {
	rel, err := filepath.Rel(dir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}
