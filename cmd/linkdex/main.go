// CLAUDE:SUMMARY CLI entry point for linkdex: one-shot fetch/parse/save, search, HTTP API and stdio MCP modes.
// Command linkdex turns a links-list readme into a JSON category tree.
//
// Usage:
//
//	linkdex                                  # fetch the default list, write awesome.json
//	linkdex -url https://.../readme.md -out list.json
//	linkdex -input readme.md -format sqlite -out links.db
//	linkdex -search "rust"                   # search the saved result and exit
//	linkdex -serve :8086                     # HTTP API
//	linkdex -mcp                             # MCP over stdio
//
// Precedence: config file, then LINKDEX_* environment variables, then flags.
// A fetch failure is logged and exits 0; any other failure exits 1.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/linkdex/linkdex"
)

type options struct {
	configPath   string
	url          string
	input        string
	out          string
	format       string
	descriptions bool
	search       string
	limit        int
	serve        string
	mcp          bool
	logLevel     string

	// set records which flags were given explicitly.
	set map[string]bool
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "path to linkdex.yaml config file")
	flag.StringVar(&o.url, "url", "", "document URL (default: the awesome readme)")
	flag.StringVar(&o.input, "input", "", "read the document from a local file instead of fetching")
	flag.StringVar(&o.out, "out", "", "output path (default: awesome.json)")
	flag.StringVar(&o.format, "format", "", "output format: json, yaml, sqlite")
	flag.BoolVar(&o.descriptions, "descriptions", false, "accept '- [title](url) - description' bullets")
	flag.StringVar(&o.search, "search", "", "search the saved result and exit")
	flag.IntVar(&o.limit, "limit", 20, "max search results")
	flag.StringVar(&o.serve, "serve", "", "serve the HTTP API on this address (e.g. :8086)")
	flag.BoolVar(&o.mcp, "mcp", false, "serve MCP tools over stdio")
	flag.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flag.Parse()

	o.set = map[string]bool{}
	flag.Visit(func(f *flag.Flag) { o.set[f.Name] = true })

	cfg, err := resolveConfig(o, os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, "linkdex:", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(cfg.LogLevel)}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = run(ctx, logger, cfg, o)
	switch {
	case err == nil:
	case errors.Is(err, linkdex.ErrFetch):
		logger.Error("linkdex: document unavailable, nothing written", "error", err)
	case errors.Is(err, context.Canceled):
		logger.Info("linkdex: interrupted")
	default:
		logger.Error("linkdex: fatal", "error", err)
	}
	os.Exit(exitCode(err))
}

func run(ctx context.Context, logger *slog.Logger, cfg *linkdex.Config, o options) error {
	svc, err := linkdex.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}
	defer svc.Close()

	switch {
	case o.search != "":
		if err := svc.Restore(ctx); err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(svc.Search(o.search, o.limit))

	case o.mcp:
		if err := svc.Restore(ctx); err != nil {
			return err
		}
		srv := mcp.NewServer(&mcp.Implementation{Name: "linkdex", Version: "1.0.0"}, nil)
		svc.RegisterMCP(srv)
		logger.Info("linkdex: mcp on stdio")
		return srv.Run(ctx, &mcp.StdioTransport{})

	case o.serve != "" || o.set["serve"]:
		return serve(ctx, logger, svc, cfg.HTTP.Addr)
	}

	report, err := svc.Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("linkdex: done",
		"run_id", report.RunID,
		"categories", report.Stats.Categories,
		"links", report.Stats.Links,
	)
	return nil
}

func serve(ctx context.Context, logger *slog.Logger, svc *linkdex.Service, addr string) error {
	if err := svc.Restore(ctx); err != nil {
		return err
	}
	if len(svc.Categories()) == 0 {
		if _, err := svc.Run(ctx); err != nil {
			logger.Warn("linkdex: initial run failed, serving empty result", "error", err)
		}
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           svc.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      90 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info("linkdex: http listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("linkdex: shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// resolveConfig layers the config file, the environment and explicit flags.
func resolveConfig(o options, getenv func(string) string) (*linkdex.Config, error) {
	cfg := &linkdex.Config{}
	if o.configPath != "" {
		c, err := linkdex.LoadConfigFile(o.configPath)
		if err != nil {
			return nil, err
		}
		cfg = c
	}

	env := func(key, def string) string {
		if v := getenv(key); v != "" {
			return v
		}
		return def
	}
	cfg.LogLevel = env("LINKDEX_LOG_LEVEL", cfg.LogLevel)
	cfg.Source.Mode = env("LINKDEX_SOURCE_MODE", cfg.Source.Mode)
	cfg.Source.URL = env("LINKDEX_URL", cfg.Source.URL)
	cfg.Source.Path = env("LINKDEX_INPUT", cfg.Source.Path)
	cfg.Source.CachePath = env("LINKDEX_CACHE", cfg.Source.CachePath)
	cfg.Source.RemoteURL = env("LINKDEX_REMOTE_URL", cfg.Source.RemoteURL)
	cfg.Sink.Format = env("LINKDEX_FORMAT", cfg.Sink.Format)
	cfg.Sink.Path = env("LINKDEX_OUT", cfg.Sink.Path)
	cfg.Parser.FragmentBase = env("LINKDEX_FRAGMENT_BASE", cfg.Parser.FragmentBase)
	cfg.HTTP.Addr = env("LINKDEX_HTTP_ADDR", cfg.HTTP.Addr)
	if v := getenv("LINKDEX_DESCRIPTIONS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("LINKDEX_DESCRIPTIONS: %w", err)
		}
		cfg.Parser.Descriptions = b
	}

	if o.url != "" {
		cfg.Source.URL = o.url
		if o.input == "" && (cfg.Source.Mode == "file" || cfg.Source.Path != "") {
			cfg.Source.Mode = ""
			cfg.Source.Path = ""
		}
	}
	if o.input != "" {
		cfg.Source.Mode = "file"
		cfg.Source.Path = o.input
	} else if cfg.Source.Path != "" && cfg.Source.Mode == "" {
		cfg.Source.Mode = "file"
	}
	if o.out != "" {
		cfg.Sink.Path = o.out
	}
	if o.format != "" {
		cfg.Sink.Format = o.format
	}
	if o.set["descriptions"] {
		cfg.Parser.Descriptions = o.descriptions
	}
	if o.serve != "" {
		cfg.HTTP.Addr = o.serve
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	return cfg, nil
}

// exitCode maps a run error to the process status. A document that could not
// be fetched is not a process failure.
func exitCode(err error) int {
	if err == nil || errors.Is(err, linkdex.ErrFetch) || errors.Is(err, context.Canceled) {
		return 0
	}
	return 1
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
