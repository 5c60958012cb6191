package cli

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/matzehuels/fontfetch/internal/config"
	"github.com/matzehuels/fontfetch/pkg/cache"
)

// cacheCommand groups local state management: stored fonts, the name
// dictionary and cached catalog responses.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage stored fonts and cached catalog responses",
	}

	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheInfoCommand())
	cmd.AddCommand(c.cacheClearCommand())

	return cmd
}

func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the storage, cache and config locations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			printKeyValue("fonts", cfg.StorageDir())
			printKeyValue("responses", cfg.ResponseCacheDir())
			printKeyValue("config", c.configPath())
			return nil
		},
	}
}

func (c *CLI) cacheInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Summarize stored fonts and the catalog cache",
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

			files, size, err := eng.Storage.Usage()
			if err != nil {
				return fmt.Errorf("scan storage: %w", err)
			}
			catalogState := "not cached"
			if eng.Catalog.Exist() {
				catalogState = fmt.Sprintf("%d families", len(eng.Catalog.Families()))
			}

			printKeyValue("fonts", fmt.Sprintf("%d files, %s", files, humanize.Bytes(uint64(size))))
			printKeyValue("names", strconv.Itoa(len(eng.Names.Entries())))
			printKeyValue("catalog", catalogState)
			printKeyValue("backend", cfg.CacheBackend)
			if cfg.CacheBackend == cache.BackendRedis {
				printKeyValue("redis", cfg.RedisAddr)
			}
			return nil
		},
	}
}

func (c *CLI) cacheClearCommand() *cobra.Command {
	var fontsOnly, responsesOnly bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove stored fonts, recorded names and cached catalog responses",
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

			if !responsesOnly {
				files, size, _ := eng.Storage.Usage()
				if err := eng.Storage.Clear(); err != nil {
					return fmt.Errorf("clear storage: %w", err)
				}
				if err := eng.Names.Clear(); err != nil {
					return fmt.Errorf("clear names: %w", err)
				}
				printSuccess("Removed %d stored fonts (%s)", files, humanize.Bytes(uint64(size)))
				printDetail("Directory: %s", eng.Storage.Root())
			}
			if !fontsOnly {
				if err := eng.Directory.Forget(ctx); err != nil {
					return fmt.Errorf("clear catalog cache: %w", err)
				}
				printSuccess("Cleared cached catalog")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&fontsOnly, "fonts", false, "only remove stored fonts and names")
	cmd.Flags().BoolVar(&responsesOnly, "responses", false, "only remove cached catalog responses")
	cmd.MarkFlagsMutuallyExclusive("fonts", "responses")
	return cmd
}

func (c *CLI) configPath() string {
	if c.flags.configPath != "" {
		return c.flags.configPath
	}
	return config.DefaultPath()
}
