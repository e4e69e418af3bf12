package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/dgallion1/docversions/internal/app"
	"github.com/dgallion1/docversions/internal/config"
	"github.com/dgallion1/docversions/internal/script"
	"github.com/dgallion1/docversions/internal/versions"
)

var CLI struct {
	Versions    string `short:"f" help:"Versions data file (overrides VERSIONS_FILE)"`
	ContainerID string `help:"Id of the menu container element (overrides MENU_CONTAINER_ID)"`
	Prefix      string `help:"Link prefix for version entries (overrides VERSIONS_PATH_PREFIX)"`
	Strict      bool   `help:"Fail pages that have no menu container"`
	Verbose     bool   `short:"v" help:"Enable verbose logging"`

	Build struct {
		Site   string `short:"s" help:"Site source directory (overrides SITE_DIR)"`
		Output string `short:"o" help:"Output directory (overrides OUTPUT_DIR)"`
		Layout string `help:"HTML layout for markdown pages (overrides LAYOUT_FILE)"`
	} `cmd:"" help:"Bake the versions menu into every page of a site"`

	Script struct{} `cmd:"" help:"Print the client-side versions script"`

	List struct{} `cmd:"" help:"Print the loaded versions, one per line"`

	Serve struct {
		Site string `short:"s" help:"Site source directory (overrides SITE_DIR)"`
		Port string `short:"p" help:"Listen port (overrides PORT)"`
	} `cmd:"" help:"Serve the site with the versions menu injected"`
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("docversions"),
		kong.Description("Render a documentation site's version list into its navigation menu."),
	)

	level := slog.LevelInfo
	if CLI.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)

	cfg := applyFlags(config.Load(), kctx.Command())
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, kctx.Command(), cfg, log); err != nil {
		log.Error("command failed", "command", kctx.Command(), "error", err)
		os.Exit(1)
	}
}

func applyFlags(cfg config.Config, command string) config.Config {
	if CLI.Versions != "" {
		cfg.VersionsFile = CLI.Versions
	}
	if CLI.ContainerID != "" {
		cfg.ContainerID = CLI.ContainerID
	}
	if CLI.Prefix != "" {
		cfg.PathPrefix = CLI.Prefix
	}
	if CLI.Strict {
		cfg.StrictContainer = true
	}

	switch command {
	case "build":
		if CLI.Build.Site != "" {
			cfg.SiteDir = CLI.Build.Site
		}
		if CLI.Build.Output != "" {
			cfg.OutputDir = CLI.Build.Output
		}
		if CLI.Build.Layout != "" {
			cfg.LayoutFile = CLI.Build.Layout
		}
	case "serve":
		if CLI.Serve.Site != "" {
			cfg.SiteDir = CLI.Serve.Site
		}
		if CLI.Serve.Port != "" {
			cfg.Port = CLI.Serve.Port
		}
	}
	return cfg
}

func run(ctx context.Context, command string, cfg config.Config, log *slog.Logger) error {
	switch command {
	case "build":
		report, err := app.Build(ctx, cfg, log)
		if err != nil {
			return err
		}
		for _, page := range report.MissingContainer {
			log.Warn("page has no versions menu container", "page", page)
		}
		for _, page := range report.ClientSide {
			log.Debug("page loads the versions script, not baked", "page", page)
		}
		return nil

	case "script":
		list, err := versions.Load(cfg.VersionsFile)
		if err != nil {
			return err
		}
		return script.Render(os.Stdout, list, app.MenuOptions(cfg))

	case "list":
		list, err := versions.Load(cfg.VersionsFile)
		if err != nil {
			return err
		}
		for _, v := range list {
			fmt.Println(v)
		}
		return nil

	case "serve":
		return app.Serve(ctx, cfg, log)
	}
	return fmt.Errorf("unknown command %q", command)
}
