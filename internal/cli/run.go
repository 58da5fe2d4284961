package cli

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/arbiter"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/tray"
)

// actionLogRetention is how long dispatched actions are kept.
const actionLogRetention = 30 * 24 * time.Hour

type runFlags struct {
	model  string
	keymap string
	addr   string
	tray   bool
}

func newRunCommand(o *options) *cobra.Command {
	f := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Capture the camera and serve the control API",
		Long: `Run opens the camera and serves the HTTP API. With --model or --keymap
controlling starts right away; otherwise it is started from the API or the
tray. --keymap accepts a keymap file or the ID or name of a stored profile.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("tray") {
				o.cfg.Server.Tray = f.tray
			}
			if f.addr != "" {
				o.cfg.Server.Addr = f.addr
			}
			return runApp(cmd.Context(), o, f)
		},
	}
	cmd.Flags().StringVar(&f.model, "model", "", "classifier model file")
	cmd.Flags().StringVar(&f.keymap, "keymap", "", "keymap file or stored profile")
	cmd.Flags().StringVar(&f.addr, "addr", "", "HTTP listen address")
	cmd.Flags().BoolVar(&f.tray, "tray", false, "show the system tray menu")
	return cmd
}

func runApp(ctx context.Context, o *options, f *runFlags) error {
	log := logging.Component("cli")
	cfg := o.cfg

	st, err := o.openStore()
	if err != nil {
		return err
	}

	if n, err := st.ActionLog().Prune(time.Now().Add(-actionLogRetention)); err != nil {
		log.WithError(err).Warn("failed to prune action log")
	} else if n > 0 {
		log.WithField("entries", n).Debug("pruned action log")
	}

	a := app.New(app.Options{Config: cfg, Store: st})
	defer a.Close()

	if err := a.Start(); err != nil {
		return err
	}

	start := func() error { return startControlling(a, f.model, keymapRef(f, cfg.KeymapFile)) }
	if f.model != "" || f.keymap != "" {
		if err := start(); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var t *tray.Tray
	if cfg.Server.Tray {
		t = tray.New()
		t.SetControlling(a.IsControlling())
		t.OnToggle(func(on bool) error {
			if !on {
				a.StopControlling()
				return nil
			}
			if err := start(); err != nil {
				log.WithError(err).Error("failed to start controlling")
				return err
			}
			return nil
		})
		t.OnBackground(func() {
			if err := a.SetBackground(); err != nil {
				log.WithError(err).Warn("failed to set background")
			}
		})
		t.OnMonitor(func() { openBrowser("http://" + cfg.Server.Addr) })
		t.OnQuit(cancel)
		a.OnAction(func(act arbiter.Action) { t.SetLastAction(act.Description()) })
	}

	staticDir := cfg.Server.StaticDir
	if staticDir == "" {
		staticDir = findWebDir(cfg.DataDir)
	}
	srv := server.New(server.Config{
		StaticDir:  staticDir,
		Store:      st,
		Controller: a,
		Monitor:    a,
	})

	var srvErr error
	done := make(chan struct{})
	go func() {
		defer close(done)
		srvErr = srv.ListenAndServe(ctx, cfg.Server.Addr)
		cancel()
	}()

	if t != nil {
		go func() {
			<-ctx.Done()
			t.Quit()
		}()
		t.Run()
		cancel()
	} else {
		<-ctx.Done()
	}

	<-done
	log.Info("shutting down")
	return srvErr
}

func keymapRef(f *runFlags, fallback string) string {
	if f.keymap != "" {
		return f.keymap
	}
	return fallback
}

// startControlling treats ref as a keymap file when one exists at that
// path and as a stored profile otherwise.
func startControlling(a *app.App, model, ref string) error {
	if info, err := os.Stat(ref); ref != "" && err == nil && !info.IsDir() {
		return a.StartControlling(model, ref)
	}
	return a.StartControllingProfile(model, ref)
}

// findWebDir looks for the monitor page next to the working directory and
// in the data directory. It returns "" when none is found.
func findWebDir(dataDir string) string {
	candidates := []string{
		"web",
		filepath.Join("..", "web"),
		filepath.Join(dataDir, "web"),
	}
	if exe, err := os.Executable(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(exe), "web"))
	}
	for _, dir := range candidates {
		if _, err := os.Stat(filepath.Join(dir, "index.html")); err == nil {
			return dir
		}
	}
	return ""
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		logging.Component("cli").WithError(err).Warn("failed to open browser")
		return
	}
	go cmd.Wait()
}
