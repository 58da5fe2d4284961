// Package cli implements the mudra command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/store"
)

// Version is the application version.
const Version = "0.1.0"

// options holds the state shared by all subcommands.
type options struct {
	configPath string
	dataDir    string
	logLevel   string

	cfg   config.Config
	store *store.Store
}

// setup loads the configuration and prepares logging and the data directory.
func (o *options) setup() error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	if cfg.Log.File == "" {
		cfg.Log.File = filepath.Join(cfg.DataDir, "mudra.log")
	}

	logging.Init(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	if err := logging.SetLevel(cfg.Log.Level); err != nil {
		return err
	}

	o.cfg = cfg
	return nil
}

// openStore opens the database once.
func (o *options) openStore() (*store.Store, error) {
	if o.store != nil {
		return o.store, nil
	}
	s, err := store.New(o.cfg.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	o.store = s
	return s, nil
}

func (o *options) close() {
	if o.store != nil {
		o.store.Close()
		o.store = nil
	}
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	cmd, _ := newRoot()
	return cmd
}

func newRoot() (*cobra.Command, *options) {
	o := &options{}

	root := &cobra.Command{
		Use:           "mudra",
		Short:         "Control the mouse and keyboard with hand gestures",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.setup()
		},
	}
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	flags := root.PersistentFlags()
	flags.StringVar(&o.configPath, "config", "", "JSON configuration file")
	flags.StringVar(&o.dataDir, "data-dir", "", "directory holding the database and logs (default ~/.mudra)")
	flags.StringVar(&o.logLevel, "log-level", "", "log level: trace, debug, info, warn or error")

	root.AddCommand(
		newRunCommand(o),
		newKeymapCommand(o),
		newCheckCommand(o),
		newActionsCommand(o),
	)
	return root, o
}

// Execute runs the command line until it finishes or the process is
// interrupted.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root, o := newRoot()
	err := root.ExecuteContext(ctx)
	o.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
