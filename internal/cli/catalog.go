package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fontfetch/pkg/font"
	"github.com/matzehuels/fontfetch/pkg/httputil"
	"github.com/matzehuels/fontfetch/pkg/storage"
)

func (c *CLI) catalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Fetch and inspect the remote font catalog",
	}
	cmd.AddCommand(c.catalogFetchCommand())
	cmd.AddCommand(c.catalogListCommand())
	cmd.AddCommand(c.catalogShowCommand())
	return cmd
}

func (c *CLI) catalogFetchCommand() *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the catalog into the response cache",
		Long: `Download the catalog into the response cache. Transient failures are
retried up to fetch_attempts times; font acquisition itself never retries.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			eng, err := c.openEngine(ctx, cfg, loggerFromContext(ctx))
			if err != nil {
				return err
			}
			defer eng.Close()

			if !refresh && eng.Catalog.Exist() {
				printSuccess("Catalog already cached (%d families)", len(eng.Catalog.Families()))
				printDetail("Use --refresh to download it again")
				return nil
			}

			spinner := newSpinnerWithContext(ctx, "Fetching catalog from "+cfg.CatalogURL)
			spinner.Start()
			var dir font.FamilyDictionary
			err = httputil.Retry(ctx, cfg.FetchAttempts, cfg.FetchRetryDelay.Std(), func() error {
				var rerr error
				dir, rerr = eng.Catalog.Refresh(ctx)
				return rerr
			})
			if err != nil {
				spinner.StopWithError("Catalog fetch failed")
				return err
			}
			spinner.StopWithSuccess("Fetched %d families", len(dir))
			return nil
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "ignore the cached copy")
	return cmd
}

func (c *CLI) catalogListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list [filter]",
		Short: "List catalog families, optionally filtered by substring",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			eng, err := c.openEngine(ctx, cfg, loggerFromContext(ctx))
			if err != nil {
				return err
			}
			defer eng.Close()

			if !eng.Catalog.Exist() {
				printWarning("No catalog cached")
				printNextStep("Fetch it first", appName+" catalog fetch")
				return nil
			}
			var filter string
			if len(args) == 1 {
				filter = args[0]
			}
			matches := filterFamilies(eng.Catalog.Families(), filter)
			for _, f := range matches {
				fmt.Fprintln(stdout, f)
			}
			printDetail("%d of %d families", len(matches), len(eng.Catalog.Families()))
			return nil
		},
	}
}

func (c *CLI) catalogShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <family>",
		Short:             "Show the variants the catalog offers for a family",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: c.completeFamilies,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			eng, err := c.openEngine(ctx, cfg, loggerFromContext(ctx))
			if err != nil {
				return err
			}
			defer eng.Close()

			variants := eng.Catalog.Variants(args[0])
			if len(variants) == 0 {
				return fmt.Errorf("family %q not in the cached catalog", args[0])
			}
			fmt.Fprintln(stdout, StyleTitle.Render(args[0]))
			for _, v := range variants {
				printKeyValue(v, variantStatus(eng.Storage, args[0], v))
			}
			return nil
		},
	}
}

func variantStatus(store *storage.Storage, family, variant string) string {
	w, italic, err := font.ParseVariant(variant)
	if err != nil {
		return StyleDim.Render("unsupported")
	}
	if store.FileExists(font.New(family, w, italic)) {
		return StyleSuccess.Render("stored")
	}
	return "available"
}

// filterFamilies keeps families containing filter, case-insensitively.
func filterFamilies(families []string, filter string) []string {
	if filter == "" {
		return families
	}
	filter = strings.ToLower(filter)
	var out []string
	for _, f := range families {
		if strings.Contains(strings.ToLower(f), filter) {
			out = append(out, f)
		}
	}
	return out
}
