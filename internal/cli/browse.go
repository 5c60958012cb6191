package cli

import (
	"fmt"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/fontfetch/pkg/acquire"
	"github.com/matzehuels/fontfetch/pkg/engine"
	"github.com/matzehuels/fontfetch/pkg/font"
)

func (c *CLI) browseCommand() *cobra.Command {
	var size float64

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Pick a catalog family interactively and acquire it",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			eng, err := c.openEngine(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer eng.Close()

			if !eng.Catalog.Exist() {
				spinner := newSpinnerWithContext(ctx, "Fetching catalog...")
				spinner.Start()
				_, err := eng.Catalog.Refresh(ctx)
				spinner.Stop()
				if err != nil {
					return err
				}
			}

			families := eng.Catalog.Families()
			model := NewFamilyListModel(families, storedFamilies(eng))
			final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
			if err != nil {
				return fmt.Errorf("browse: %w", err)
			}
			picked := final.(FamilyListModel).Selected
			if picked == "" {
				return nil
			}

			f := font.New(picked, font.Regular, false)
			if v := eng.Catalog.Variants(picked); len(v) > 0 && !slices.Contains(v, f.Variant()) {
				w, italic, err := font.ParseVariant(v[0])
				if err == nil {
					f = font.New(picked, w, italic)
				}
			}

			spinner := newSpinnerWithContext(ctx, "Acquiring "+f.String()+"...")
			spinner.Start()
			h, err := eng.Acquire(ctx, acquire.Request{Font: f, Size: size})
			if err != nil {
				spinner.StopWithError("%s", f)
				logAcquireError(logger, f, err)
				return err
			}
			defer h.Close()
			spinner.StopWithSuccess("%s %s %s", f, StyleDim.Render(iconArrow), StyleHighlight.Render(h.Name))
			return nil
		},
	}
	cmd.Flags().Float64VarP(&size, "size", "s", 12, "point size to instantiate")
	return cmd
}

// storedFamilies marks families with an installed or stored variant, as
// recorded in the name dictionary.
func storedFamilies(eng *engine.Engine) map[string]bool {
	stored := make(map[string]bool)
	for _, e := range eng.Names.Entries() {
		if f, err := font.ParseKey(e.Key); err == nil {
			stored[f.Family] = true
		}
	}
	return stored
}
