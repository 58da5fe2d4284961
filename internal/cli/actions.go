package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/store"
)

func newActionsCommand(o *options) *cobra.Command {
	var limit int
	var session string
	cmd := &cobra.Command{
		Use:   "actions",
		Short: "Show recently dispatched actions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.openStore()
			if err != nil {
				return err
			}

			var entries []*store.ActionEntry
			if session != "" {
				entries, err = s.ActionLog().BySession(session, limit)
			} else {
				entries, err = s.ActionLog().Recent(limit)
			}
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No actions logged.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tKIND\tLABEL\tDETAIL")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.CreatedAt.Local().Format("15:04:05.000"), e.Kind, e.Label, e.Detail)
			}
			return w.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of actions to show")
	cmd.Flags().StringVar(&session, "session", "", "only show actions of this session")
	return cmd
}
