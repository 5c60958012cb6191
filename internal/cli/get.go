package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/fontfetch/pkg/acquire"
	"github.com/matzehuels/fontfetch/pkg/engine"
	ferrors "github.com/matzehuels/fontfetch/pkg/errors"
	"github.com/matzehuels/fontfetch/pkg/font"
)

type getOptions struct {
	weight      int
	italic      bool
	size        float64
	fallbackURL string
	timeout     time.Duration
	parallel    int
}

func (c *CLI) getCommand() *cobra.Command {
	var opts getOptions

	cmd := &cobra.Command{
		Use:   "get <family[:variant]>...",
		Short: "Acquire fonts and report their runtime names",
		Long: `Acquire one or more fonts. Each argument is a family name, optionally
followed by a variant such as "700", "italic" or "700italic":

  fontfetch get Inter "Roboto Mono:700" Lato:italic

Installed fonts are used as-is, stored fonts are registered, anything else is
looked up in the catalog and downloaded.`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: c.completeFamilies,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGet(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.weight, "weight", "w", 400, "default weight (100-900)")
	cmd.Flags().BoolVarP(&opts.italic, "italic", "i", false, "default to italic")
	cmd.Flags().Float64VarP(&opts.size, "size", "s", 12, "point size to instantiate")
	cmd.Flags().StringVar(&opts.fallbackURL, "url", "", "download URL when the catalog has no file")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 2*time.Minute, "give up after this long")
	cmd.Flags().IntVarP(&opts.parallel, "parallel", "p", 4, "concurrent acquisitions")

	return cmd
}

type getResult struct {
	font    font.Font
	handle  *font.Handle
	err     error
	elapsed time.Duration
}

func (c *CLI) runGet(ctx context.Context, args []string, opts getOptions) error {
	logger := loggerFromContext(ctx)

	reqs := make([]acquire.Request, len(args))
	for i, arg := range args {
		f, err := parseFontArg(arg, font.Weight(opts.weight), opts.italic)
		if err != nil {
			return err
		}
		reqs[i] = acquire.Request{Font: f, Size: opts.size, FallbackURL: opts.fallbackURL}
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	eng, err := c.openEngine(ctx, cfg, logger, func(o *engine.Options) {
		o.Progress = func(f font.Font, written, total int64) {
			logger.Debug("downloading", "font", f.Key(), "written", humanize.Bytes(uint64(written)))
		}
	})
	if err != nil {
		return err
	}
	defer eng.Close()

	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Acquiring %d font(s)...", len(reqs)))
	spinner.Start()
	prog := newProgress(logger)
	results, err := acquireAll(ctx, eng, reqs, max(opts.parallel, 1))
	spinner.Stop()
	if err != nil {
		return err
	}

	failed := printResults(results)
	prog.done(fmt.Sprintf("Acquired %d of %d fonts", len(results)-failed, len(results)))
	if failed > 0 {
		return fmt.Errorf("%d of %d fonts could not be acquired", failed, len(results))
	}
	return nil
}

// acquirer is the part of engine.Engine that get needs.
type acquirer interface {
	Acquire(ctx context.Context, req acquire.Request) (*font.Handle, error)
}

// acquireAll runs reqs with at most parallel in flight. Individual failures
// are reported in the results; only cancellation of ctx aborts the batch.
func acquireAll(ctx context.Context, a acquirer, reqs []acquire.Request, parallel int) ([]getResult, error) {
	results := make([]getResult, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallel)

	for i, req := range reqs {
		g.Go(func() error {
			start := time.Now()
			h, err := a.Acquire(gctx, req)
			results[i] = getResult{font: req.Font, handle: h, err: err, elapsed: time.Since(start)}
			if errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func printResults(results []getResult) (failed int) {
	for _, r := range results {
		if r.err != nil {
			failed++
			printError("%s: %s", r.font, ferrors.UserMessage(r.err))
			continue
		}
		printSuccess("%s %s %s", r.font, StyleDim.Render(iconArrow), StyleHighlight.Render(r.handle.Name))
		if r.handle.Face != nil {
			m := r.handle.Face.Metrics()
			printDetail("%gpt · ascent %d · descent %d · %s", r.handle.Size, m.Ascent.Ceil(), m.Descent.Ceil(), r.elapsed.Round(time.Millisecond))
		}
		r.handle.Close()
	}
	return failed
}

// parseFontArg reads "Family" or "Family:variant". Flag defaults apply when
// no variant is given.
func parseFontArg(arg string, weight font.Weight, italic bool) (font.Font, error) {
	family, variant, ok := strings.Cut(arg, ":")
	if ok {
		w, it, err := font.ParseVariant(strings.TrimSpace(variant))
		if err != nil {
			return font.Font{}, err
		}
		weight, italic = w, it
	}
	f := font.New(family, weight, italic)
	if err := f.Validate(); err != nil {
		return font.Font{}, err
	}
	return f, nil
}

// logAcquireError is used by commands that acquire a single font in the
// background of an interactive session.
func logAcquireError(logger *log.Logger, f font.Font, err error) {
	if ferrors.Is(err, ferrors.ErrCodeNoDownloadURL) {
		logger.Warn("no download available", "font", f.Key())
		return
	}
	logger.Error("acquire failed", "font", f.Key(), "err", err)
}
