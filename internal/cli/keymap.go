package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/keymap"
	"github.com/ayusman/mudra/internal/store"
)

func newKeymapCommand(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keymap",
		Short: "Manage stored keymap profiles",
	}
	cmd.AddCommand(
		newKeymapImportCommand(o),
		newKeymapListCommand(o),
		newKeymapShowCommand(o),
		newKeymapDeleteCommand(o),
		newKeymapUseCommand(o),
	)
	return cmd
}

func newKeymapImportCommand(o *options) *cobra.Command {
	var name string
	var activate bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Store a keymap file as a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			km, err := keymap.Load(args[0])
			if err != nil {
				return err
			}
			if name == "" {
				base := filepath.Base(args[0])
				name = strings.TrimSuffix(base, filepath.Ext(base))
			}

			s, err := o.openStore()
			if err != nil {
				return err
			}
			record := store.FromKeymap(name, km)
			if err := s.Keymaps().Create(record); err != nil {
				if errors.Is(err, store.ErrDuplicate) {
					return fmt.Errorf("keymap %q already exists", name)
				}
				return err
			}
			if activate {
				if err := s.Settings().Set(store.SettingActiveKeymap, record.ID); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (%s) with %d labels\n", record.Name, record.ID, len(record.Labels))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "profile name (default: file name)")
	cmd.Flags().BoolVar(&activate, "use", false, "make the profile the active one")
	return cmd
}

func newKeymapListCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.openStore()
			if err != nil {
				return err
			}
			keymaps, err := s.Keymaps().List()
			if err != nil {
				return err
			}
			if len(keymaps) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No keymaps stored.")
				return nil
			}
			active := s.Settings().GetOr(store.SettingActiveKeymap, "")

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "\tNAME\tID\tLABELS\tUPDATED")
			for _, km := range keymaps {
				mark := ""
				if km.ID == active {
					mark = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", mark, km.Name, km.ID, len(km.Labels), km.UpdatedAt.Format("2006-01-02 15:04"))
			}
			return w.Flush()
		},
	}
}

func newKeymapShowCommand(o *options) *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "show <id|name>",
		Short: "Show the bindings of a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.openStore()
			if err != nil {
				return err
			}
			record, err := s.Keymaps().Resolve(args[0])
			if err != nil {
				return notFound(err, args[0])
			}
			km, err := record.Keymap()
			if err != nil {
				return err
			}
			if raw {
				return km.Encode(cmd.OutOrStdout())
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (%s)\n\n", record.Name, record.ID)
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "INDEX\tLABEL\tBINDING")
			for i := range km.Labels {
				fmt.Fprintf(w, "%d\t%s\t%s\n", i, km.Label(i), binding(km, i))
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&raw, "ini", false, "print the keymap file")
	return cmd
}

func newKeymapDeleteCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id|name>",
		Short: "Delete a stored profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.openStore()
			if err != nil {
				return err
			}
			record, err := s.Keymaps().Resolve(args[0])
			if err != nil {
				return notFound(err, args[0])
			}
			if err := s.Keymaps().Delete(record.ID); err != nil {
				return err
			}
			if s.Settings().GetOr(store.SettingActiveKeymap, "") == record.ID {
				if err := s.Settings().Delete(store.SettingActiveKeymap); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", record.Name)
			return nil
		},
	}
}

func newKeymapUseCommand(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "use <id|name>",
		Short: "Make a profile the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.openStore()
			if err != nil {
				return err
			}
			record, err := s.Keymaps().Resolve(args[0])
			if err != nil {
				return notFound(err, args[0])
			}
			if err := s.Settings().Set(store.SettingActiveKeymap, record.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Active keymap: %s\n", record.Name)
			return nil
		},
	}
}

// binding describes what label i triggers.
func binding(km *keymap.Keymap, i int) string {
	var parts []string
	if keys, ok := km.Keys(i); ok {
		names := make([]string, len(keys))
		for j, k := range keys {
			names[j] = k.String()
		}
		parts = append(parts, strings.Join(names, "+"))
	}
	if code, ok := km.MouseAction(i); ok {
		parts = append(parts, code.String())
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

func notFound(err error, ref string) error {
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("keymap %q not found", ref)
	}
	return err
}
