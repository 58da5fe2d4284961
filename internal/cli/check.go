package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/keymap"
)

func newCheckCommand(o *options) *cobra.Command {
	var structure string
	cmd := &cobra.Command{
		Use:   "check <model> <keymap>",
		Short: "Check that a keymap file matches a classifier model",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			km, err := keymap.Load(args[1])
			if err != nil {
				return err
			}

			if structure == "" {
				structure = o.cfg.Classifier.StructureFile
			}
			c := app.NewClassifier(o.cfg.Classifier)
			defer c.Close()
			n, err := c.Load(args[0], structure)
			if err != nil {
				return fmt.Errorf("load model: %w", err)
			}
			if err := km.Validate(n); err != nil {
				return fmt.Errorf("%w: model has %d labels, keymap has %d", err, n, len(km.Labels))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK: %d labels\n", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&structure, "structure", "", "model structure file")
	return cmd
}
