package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"tabsense/internal/cli"
	"tabsense/internal/config"
	"tabsense/internal/detect"
	"tabsense/internal/ui"
	"tabsense/internal/util/logx"
	"tabsense/internal/version"
)

func main() {
	logx.SetLevelFromEnv()
	cfg, err := config.Load(os.Args[1:], os.Stdin, os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(2)
	}
	if cfg.ShowVersion {
		fmt.Println(version.Name, version.String())
		return
	}

	// Setup cancellation on SIGINT/SIGTERM
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := cli.OpenSettings(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "settings:", err)
		os.Exit(1)
	}
	defer store.Close()

	logx.Infof("starting %s %s: %s", version.Name, version.String(), cfg.String())
	if cfg.Mode() == config.ModeTUI {
		err = ui.Run(ctx, cfg, store)
	} else {
		err = cli.Run(ctx, cfg, store, os.Stdin, os.Stdout)
	}
	if err != nil {
		logx.Errorf("%s exited with error: %v", version.Name, err)
		if errors.Is(err, detect.ErrNotTabular) {
			fmt.Fprintln(os.Stderr, "The buffer doesn't appear to be a CSV file")
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		store.Close()
		os.Exit(1)
	}
}
