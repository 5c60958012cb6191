// Package integrations provides HTTP clients for remote font services.
//
// # Overview
//
// The [Client] type is the shared HTTP layer: default headers, a single
// attempt per request, status mapping to [ErrNotFound] and [ErrNetwork], and
// JSON response caching through [cache.Cache]. Service-specific clients embed
// it:
//
//   - [googlefonts]: the Google Fonts developer API (webfonts directory)
//
// # Client Pattern
//
//	c := cache.NewNullCache()
//	gf := googlefonts.NewClient(c, googlefonts.Options{APIKey: key, TTL: 24 * time.Hour})
//	dir, err := gf.FetchDirectory(ctx, false) // false = use cache
//
// Font files themselves are streamed with [Client.GetStream] and never cached
// here; local storage owns them.
//
// [googlefonts]: github.com/matzehuels/fontfetch/pkg/integrations/googlefonts
// [cache.Cache]: github.com/matzehuels/fontfetch/pkg/cache.Cache
package integrations
