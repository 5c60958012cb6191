package googlefonts

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/fontfetch/pkg/cache"
	"github.com/matzehuels/fontfetch/pkg/font"
	"github.com/matzehuels/fontfetch/pkg/integrations"
)

// DefaultBaseURL is the public Google Fonts developer API.
const DefaultBaseURL = "https://www.googleapis.com"

const directoryKey = "directory"

// Family is one catalog entry.
type Family struct {
	Family   string            `json:"family"`
	Category string            `json:"category,omitempty"`
	Variants []string          `json:"variants"`
	Subsets  []string          `json:"subsets,omitempty"`
	Version  string            `json:"version,omitempty"`
	Files    map[string]string `json:"files"`
}

// Options configures a Client.
type Options struct {
	BaseURL   string        // defaults to DefaultBaseURL
	APIKey    string        // sent as the key query parameter when set
	TTL       time.Duration // directory cache lifetime
	UserAgent string
}

// Client fetches the font directory.
type Client struct {
	*integrations.Client
	baseURL string
	apiKey  string
}

// NewClient creates a Client that caches the directory in c.
func NewClient(c cache.Cache, opts Options) *Client {
	base := strings.TrimSuffix(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	var headers map[string]string
	if opts.UserAgent != "" {
		headers = map[string]string{"User-Agent": opts.UserAgent}
	}
	return &Client{
		Client:  integrations.NewClient(c, "googlefonts:", opts.TTL, headers),
		baseURL: base,
		apiKey:  opts.APIKey,
	}
}

// FetchFamilies returns the full family list, from cache unless refresh is set.
func (c *Client) FetchFamilies(ctx context.Context, refresh bool) ([]Family, error) {
	var families []Family
	err := c.Cached(ctx, c.cacheKey(), refresh, &families, func() error {
		return c.fetch(ctx, &families)
	})
	if err != nil {
		return nil, err
	}
	return families, nil
}

// FetchDirectory returns the catalog as a family dictionary.
func (c *Client) FetchDirectory(ctx context.Context, refresh bool) (font.FamilyDictionary, error) {
	families, err := c.FetchFamilies(ctx, refresh)
	if err != nil {
		return nil, err
	}
	return Directory(families), nil
}

// CachedDirectory returns the cached catalog without network access.
func (c *Client) CachedDirectory(ctx context.Context) (font.FamilyDictionary, bool) {
	var families []Family
	ok, err := c.Lookup(ctx, c.cacheKey(), &families)
	if err != nil || !ok {
		return nil, false
	}
	return Directory(families), true
}

// Forget drops the cached directory.
func (c *Client) Forget(ctx context.Context) error {
	return c.Invalidate(ctx, c.cacheKey())
}

func (c *Client) fetch(ctx context.Context, families *[]Family) error {
	u := c.baseURL + "/webfonts/v1/webfonts"
	if c.apiKey != "" {
		u += "?key=" + url.QueryEscape(c.apiKey)
	}

	var data directoryResponse
	if err := c.Get(ctx, u, &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: font directory at %s", err, c.baseURL)
		}
		return err
	}
	if data.Error != nil {
		return fmt.Errorf("%w: %s", integrations.ErrNetwork, data.Error.Message)
	}
	*families = data.Items
	return nil
}

func (c *Client) cacheKey() string {
	return cache.Key(directoryKey, c.baseURL, c.apiKey != "")
}

// Directory converts a family list into a dictionary keyed by family name
// and variant. Variants without a file are left out.
func Directory(families []Family) font.FamilyDictionary {
	dir := make(font.FamilyDictionary, len(families))
	for _, f := range families {
		if f.Family == "" {
			continue
		}
		files := make(map[string]string, len(f.Files))
		for variant, ref := range f.Files {
			if ref != "" {
				files[variant] = ref
			}
		}
		dir[f.Family] = files
	}
	return dir
}

type directoryResponse struct {
	Kind  string    `json:"kind"`
	Items []Family  `json:"items"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
