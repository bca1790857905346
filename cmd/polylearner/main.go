package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/alexanderramin/polylearner/internal/app"
	"github.com/alexanderramin/polylearner/internal/calendar"
	"github.com/alexanderramin/polylearner/internal/cli"
	"github.com/alexanderramin/polylearner/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Config path: env var or default ~/.polylearner/config.yaml
	path := os.Getenv("POLYLEARNER_CONFIG")
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	log, err := config.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}

	ctx := context.Background()
	core, err := app.New(ctx, cfg, log, app.Options{})
	if err != nil {
		return err
	}
	defer core.Close()

	a := &cli.App{App: core}

	// Detect interactive terminal for forms and spinners.
	a.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	a.ConnectCalendar = func(ctx context.Context) (calendar.Client, error) {
		c := cfg
		c.Calendar.Enabled = true
		auth := calendar.WebAuthorizer{
			Addr: cfg.Calendar.RedirectAddr,
			ShowURL: func(u string) {
				fmt.Fprintf(os.Stderr, "Open this URL to authorize calendar access:\n\n  %s\n\n", u)
			},
		}
		return app.ConnectCalendar(ctx, c, auth, log)
	}

	a.WatchConfig = func(ctx context.Context) <-chan config.Config {
		w, err := config.NewWatcher(path, log)
		if err != nil {
			log.Warn("config reload disabled", slog.Any("err", err))
			return nil
		}
		updates := w.Subscribe(1)
		go func() {
			if err := w.Watch(ctx); err != nil {
				log.Warn("config watcher stopped", slog.Any("err", err))
			}
		}()
		return updates
	}

	return cli.NewRootCmd(a).ExecuteContext(ctx)
}
