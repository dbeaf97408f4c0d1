package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"microflame/internal/scaffold"
)

func newGenerateCmd(a *app) *cobra.Command {
	var mode string

	cmd := &cobra.Command{
		Use:     "generate <type> <name>",
		Aliases: []string{"g"},
		Short:   "Generate a new component (model, view, controller, route)",
		Long: `Generate a new component from the built-in templates.

Types:
  controller   controllers/api/v1/<name>.controller.js (--mode views: controllers/views/)
  model        models/<name>.model.js
  view         views/<name>.ejs
  route        routes/api/v1/<name>.routes.js

Existing files are never overwritten.`,
		Example: `  microflame generate model user
  microflame g controller user --mode views`,
		Args: exactArgs(2, "microflame generate <type> <name> [--mode api|views]"),
		RunE: func(cmd *cobra.Command, args []string) error {
			rel, err := scaffold.Generate(a.opts.FS, a.projectDir(), scaffold.Kind(args[0]), args[1], mode)
			if err != nil {
				return err
			}
			a.log.WithField("file", rel).Debug("generated component")
			fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", rel)
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", scaffold.ModeAPI, "api or views (for controller)")

	return cmd
}
