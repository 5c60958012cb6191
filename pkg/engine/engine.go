// Package engine assembles the font acquisition stack from settings.
//
// An [Engine] owns one instance of every collaborator an acquisition needs
// (storage, name cache, runtime table, catalog, downloader) and a
// [acquire.Loader] over them. Both the CLI and the HTTP server build one per
// process:
//
//	e, err := engine.New(ctx, engine.Options{StorageDir: dir, Cache: c})
//	if err != nil {
//	    return err
//	}
//	defer e.Close()
//	h, err := e.Acquire(ctx, acquire.Request{Font: font.New("Inter", 700, false), Size: 16})
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/fontfetch/pkg/acquire"
	"github.com/matzehuels/fontfetch/pkg/buildinfo"
	"github.com/matzehuels/fontfetch/pkg/cache"
	"github.com/matzehuels/fontfetch/pkg/catalog"
	"github.com/matzehuels/fontfetch/pkg/download"
	"github.com/matzehuels/fontfetch/pkg/font"
	"github.com/matzehuels/fontfetch/pkg/fonts"
	"github.com/matzehuels/fontfetch/pkg/integrations"
	"github.com/matzehuels/fontfetch/pkg/integrations/googlefonts"
	"github.com/matzehuels/fontfetch/pkg/namecache"
	"github.com/matzehuels/fontfetch/pkg/registry"
	"github.com/matzehuels/fontfetch/pkg/storage"
)

// Options configures New. Only StorageDir is required.
type Options struct {
	StorageDir string
	Cache      cache.Cache // catalog response cache; nil disables caching

	CatalogURL  string
	APIKey      string
	FileBaseURL string
	CatalogTTL  time.Duration
	UserAgent   string // defaults to buildinfo.UserAgent()

	HTTPTimeout time.Duration // per request; each stage makes one attempt

	MaxDownloadBytes int64
	Progress         download.Progress
	DPI              float64

	// Builtins installs the embedded Go fonts before any request.
	Builtins bool

	Logger *log.Logger
}

// Engine is a ready-to-use acquisition stack.
type Engine struct {
	Loader    *acquire.Loader
	Storage   *storage.Storage
	Names     *namecache.Cache
	Table     *registry.Table
	Registrar *registry.Registrar
	Catalog   *catalog.Source
	Directory *googlefonts.Client

	cache  cache.Cache
	logger *log.Logger
}

// New builds an Engine. The cache in opts is owned by the engine afterwards
// and closed by Close.
func New(ctx context.Context, opts Options) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if opts.UserAgent == "" {
		opts.UserAgent = buildinfo.UserAgent()
	}
	c := opts.Cache
	if c == nil {
		c = cache.NewNullCache()
	}

	store, err := storage.New(opts.StorageDir)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	names := namecache.New(store.NameDictionaryPath(), namecache.WithLogger(logger))
	table := registry.NewTable(registry.WithDPI(opts.DPI))
	registrar := registry.NewRegistrar(store, names, table, logger)

	dirClient := googlefonts.NewClient(c, googlefonts.Options{
		BaseURL:   opts.CatalogURL,
		APIKey:    opts.APIKey,
		TTL:       opts.CatalogTTL,
		UserAgent: opts.UserAgent,
	})
	fileClient := integrations.NewClient(nil, "", 0, userAgent(opts.UserAgent))
	if opts.HTTPTimeout > 0 {
		dirClient.SetHTTPClient(integrations.NewHTTPClient(opts.HTTPTimeout))
		fileClient.SetHTTPClient(integrations.NewHTTPClient(opts.HTTPTimeout))
	}

	source := catalog.New(dirClient, catalog.WithFileBase(opts.FileBaseURL), catalog.WithLogger(logger))
	downloader := download.New(fileClient, store,
		download.WithLogger(logger),
		download.WithMaxBytes(opts.MaxDownloadBytes),
		download.WithProgress(opts.Progress),
	)

	if opts.Builtins {
		if err := registrar.InstallBuiltins(); err != nil {
			return nil, fmt.Errorf("install builtin fonts: %w", err)
		}
	}

	loader, err := acquire.NewLoader(acquire.Deps{
		Names:      names,
		Storage:    store,
		Catalog:    source,
		Downloader: downloader,
		Registrar:  registrar,
		Runtime:    table,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("engine ready", "storage", store.Root(), "catalog", opts.CatalogURL)
	return &Engine{
		Loader:    loader,
		Storage:   store,
		Names:     names,
		Table:     table,
		Registrar: registrar,
		Catalog:   source,
		Directory: dirClient,
		cache:     c,
		logger:    logger,
	}, nil
}

// Acquire loads req and waits for the instantiated font.
func (e *Engine) Acquire(ctx context.Context, req acquire.Request) (*font.Handle, error) {
	return e.Loader.Fetch(ctx, req)
}

// Load starts req without waiting; see acquire.Loader.Load.
func (e *Engine) Load(req acquire.Request, completion acquire.Completion) *acquire.Handle {
	return e.Loader.Load(req, completion)
}

// Data returns the font file for f, from storage or the builtin set.
func (e *Engine) Data(f font.Font) ([]byte, error) {
	data, err := e.Storage.Read(f)
	if err != nil {
		if ttf, ok := fonts.Lookup(f); ok {
			return ttf, nil
		}
		return nil, err
	}
	return data, nil
}

// Close releases the response cache.
func (e *Engine) Close() error {
	return e.cache.Close()
}

func userAgent(ua string) map[string]string {
	if ua == "" {
		return nil
	}
	return map[string]string{"User-Agent": ua}
}
