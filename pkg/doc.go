// Package pkg provides the libraries behind fontfetch, a font acquisition
// engine.
//
// # Overview
//
// A caller asks for a font by family, weight and style and gets back a sized
// face plus the runtime name it was registered under. Each request walks the
// cheapest source first:
//
//	installed (registry table)
//	         ↓
//	stored file (storage + namecache)
//	         ↓
//	remote catalog (catalog + googlefonts)
//	         ↓
//	download (download + storage), then register
//
// Every request is an [acquire] Operation: a single-use state machine that can
// be cancelled at any point and reports its result exactly once.
//
// # Packages
//
// ## Domain
//
// [font] - Font requests, variant tokens, family dictionaries and handles.
//
// [acquire] - The acquisition operation and the Loader that runs it.
//
// [registry] - The installed-font table and the Registrar that parses,
// validates and registers font files.
//
// [fonts] - The Go font family, installed at startup so common requests never
// touch the network.
//
// ## Infrastructure
//
// [storage] - On-disk font files, one per family and style, written
// atomically.
//
// [namecache] - The persisted font key to runtime name dictionary.
//
// [catalog] - The family dictionary with TTL freshness, backed by [cache].
//
// [cache] - Response cache with file, Redis and no-op backends.
//
// [download] - Streaming downloads with size limits and progress.
//
// [task] - Cancellable background work with a single completion callback.
//
// ## External Integrations
//
// [integrations] - Shared HTTP client, and the [integrations/googlefonts]
// catalog client.
//
// [httputil] - Retry with backoff, used by the explicit catalog refresh
// command. Acquisition itself makes one attempt per stage.
//
// ## Wiring
//
// [engine] - Builds the full stack from options and exposes Acquire.
//
// [observability] - Hooks for operations, HTTP and cache events, plus a log
// adapter and an in-memory stats collector.
//
// [errors] - Coded errors with HTTP status mapping and user-facing messages.
//
// # Quick Start
//
//	eng, _ := engine.New(ctx, engine.Options{
//	    StorageDir: dir,
//	    APIKey:     key,
//	    Builtins:   true,
//	})
//	defer eng.Close()
//
//	h, err := eng.Acquire(ctx, acquire.Request{
//	    Font: font.New("Roboto Mono", font.Bold, false),
//	    Size: 14,
//	})
//
// [font]: https://pkg.go.dev/github.com/matzehuels/fontfetch/pkg/font
// [acquire]: https://pkg.go.dev/github.com/matzehuels/fontfetch/pkg/acquire
// [registry]: https://pkg.go.dev/github.com/matzehuels/fontfetch/pkg/registry
// [fonts]: https://pkg.go.dev/github.com/matzehuels/fontfetch/pkg/fonts
// [storage]: https://pkg.go.dev/github.com/matzehuels/fontfetch/pkg/storage
// [namecache]: https://pkg.go.dev/github.com/matzehuels/fontfetch/pkg/namecache
// [catalog]: https://pkg.go.dev/github.com/matzehuels/fontfetch/pkg/catalog
// [cache]: https://pkg.go.dev/github.com/matzehuels/fontfetch/pkg/cache
// [download]: https://pkg.go.dev/github.com/matzehuels/fontfetch/pkg/download
// [task]: https://pkg.go.dev/github.com/matzehuels/fontfetch/pkg/task
// [integrations]: https://pkg.go.dev/github.com/matzehuels/fontfetch/pkg/integrations
// [integrations/googlefonts]: https://pkg.go.dev/github.com/matzehuels/fontfetch/pkg/integrations/googlefonts
// [httputil]: https://pkg.go.dev/github.com/matzehuels/fontfetch/pkg/httputil
// [engine]: https://pkg.go.dev/github.com/matzehuels/fontfetch/pkg/engine
// [observability]: https://pkg.go.dev/github.com/matzehuels/fontfetch/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/fontfetch/pkg/errors
package pkg
