package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/matzehuels/fontfetch/pkg/namecache"
	"github.com/matzehuels/fontfetch/pkg/storage"
)

func (c *CLI) namesCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "names",
		Short: "List fonts and the runtime names they were installed under",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			store, err := storage.New(cfg.StorageDir())
			if err != nil {
				return err
			}
			names := namecache.New(store.NameDictionaryPath(), namecache.WithLogger(loggerFromContext(cmd.Context())))
			return printNames(names.Entries(), asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func printNames(entries []namecache.Entry, asJSON bool) error {
	if asJSON {
		if entries == nil {
			entries = []namecache.Entry{}
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	if len(entries) == 0 {
		printInfo("No fonts installed yet")
		printNextStep("Acquire one", appName+" get Inter")
		return nil
	}
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.Key, e.Name}
	}
	printTable([]string{"Font", "Runtime name"}, rows)
	return nil
}
