package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/fontfetch/internal/config"
	"github.com/matzehuels/fontfetch/pkg/buildinfo"
	"github.com/matzehuels/fontfetch/pkg/cache"
	"github.com/matzehuels/fontfetch/pkg/engine"
	"github.com/matzehuels/fontfetch/pkg/observability"
)

// =============================================================================
// Constants
// =============================================================================

const appName = config.AppName

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	flags  globalFlags
}

// globalFlags override config file values for one invocation.
type globalFlags struct {
	configPath string
	catalogURL string
	apiKey     string
	dataDir    string
	noCache    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Fontfetch acquires fonts by family, weight and style",
		Long:         `Fontfetch resolves a font request against installed fonts, local storage and a remote font catalog, downloading and registering the file when needed.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			hooks := observability.LogHooks{Logger: c.Logger}
			observability.SetAcquireHooks(hooks)
			observability.SetHTTPHooks(hooks)
			observability.SetCacheHooks(hooks)
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	pf.StringVar(&c.flags.catalogURL, "catalog-url", "", "font catalog API base URL")
	pf.StringVar(&c.flags.apiKey, "api-key", "", "font catalog API key")
	pf.StringVar(&c.flags.dataDir, "data-dir", "", "directory for downloaded fonts")
	pf.BoolVar(&c.flags.noCache, "no-cache", false, "do not cache catalog responses")

	root.AddCommand(c.getCommand())
	root.AddCommand(c.namesCommand())
	root.AddCommand(c.catalogCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config & Engine
// =============================================================================

// loadConfig reads the config file and applies flag overrides.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.flags.configPath)
	if err != nil {
		return nil, err
	}
	if c.flags.catalogURL != "" {
		cfg.CatalogURL = c.flags.catalogURL
	}
	if c.flags.apiKey != "" {
		cfg.APIKey = c.flags.apiKey
	}
	if c.flags.dataDir != "" {
		cfg.DataDir = c.flags.dataDir
	}
	if c.flags.noCache {
		cfg.CacheBackend = cache.BackendNone
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openEngine builds the acquisition stack for cfg. The caller closes it.
func (c *CLI) openEngine(ctx context.Context, cfg *config.Config, logger *log.Logger, tweak ...func(*engine.Options)) (*engine.Engine, error) {
	rc, err := cache.Open(ctx, cfg.CacheOptions())
	if err != nil {
		return nil, fmt.Errorf("open response cache: %w", err)
	}

	opts := engineOptions(cfg, rc, logger)
	for _, fn := range tweak {
		fn(&opts)
	}
	e, err := engine.New(ctx, opts)
	if err != nil {
		rc.Close()
		return nil, err
	}
	return e, nil
}

func engineOptions(cfg *config.Config, rc cache.Cache, logger *log.Logger) engine.Options {
	return engine.Options{
		StorageDir:       cfg.StorageDir(),
		Cache:            rc,
		CatalogURL:       cfg.CatalogURL,
		APIKey:           cfg.APIKey,
		FileBaseURL:      cfg.FileBaseURL,
		CatalogTTL:       cfg.CatalogTTL.Std(),
		UserAgent:        buildinfo.UserAgent(),
		HTTPTimeout:      cfg.HTTPTimeout.Std(),
		MaxDownloadBytes: cfg.MaxDownload,
		DPI:              cfg.DPI,
		Builtins:         true,
		Logger:           logger,
	}
}
