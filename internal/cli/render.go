package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bannerforge/bannerforge/internal/config"
	"github.com/bannerforge/bannerforge/pkg/errors"
	"github.com/bannerforge/bannerforge/pkg/mapping"
	"github.com/bannerforge/bannerforge/pkg/rows"
	"github.com/bannerforge/bannerforge/pkg/template"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	configPath string   // optional TOML config file
	dataPath   string   // CSV data file
	mapPairs   []string // explicit field=column mapping pairs
	outDir     string   // output directory override
	format     string   // output format override
	workers    int      // worker pool size override
	noArchive  bool     // skip the zip archive
}

// newRenderCmd creates the render command for full batch renders.
func newRenderCmd() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [template]",
		Short: "Render one image per data row from a template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.dataPath, "data", "d", "", "CSV data file (required)")
	cmd.Flags().StringSliceVarP(&opts.mapPairs, "map", "m", nil, "explicit field=column mapping (repeatable)")
	cmd.Flags().StringVarP(&opts.outDir, "out", "o", "", "output directory (default from config)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: png or jpeg")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "render worker count")
	cmd.Flags().BoolVar(&opts.noArchive, "no-archive", false, "skip the zip archive")
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "config file")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func runRender(ctx context.Context, templatePath string, opts *renderOpts) error {
	logger := loggerFromContext(ctx)

	cfg, err := loadRenderConfig(opts)
	if err != nil {
		return err
	}

	tpl, m, set, err := loadInputs(templatePath, opts.dataPath, opts.mapPairs)
	if err != nil {
		return err
	}
	logger.Info("starting batch render",
		"template", tpl.ID, "rows", len(set.Rows), "workers", cfg.Render.Workers)

	orch, store, err := buildOrchestrator(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	p := newProgress(logger)
	j, err := orch.Run(ctx, tpl, m, set)
	if err != nil {
		return err
	}
	p.done(fmt.Sprintf("Rendered %d of %d assets", j.CompletedAssets, j.TotalAssets))

	printSummary(os.Stdout, j, orch.JobDir(j.ID))
	return nil
}

// loadRenderConfig layers flag overrides onto the file config.
func loadRenderConfig(opts *renderOpts) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.outDir != "" {
		cfg.Render.OutputDir = opts.outDir
	}
	if opts.format != "" {
		cfg.Render.Format = opts.format
	}
	if opts.workers > 0 {
		cfg.Render.Workers = opts.workers
	}
	if opts.noArchive {
		cfg.Render.Archive = false
	}
	return cfg, cfg.Validate()
}

// loadInputs reads the template and data files and builds the column
// mapping, auto-detecting from the CSV headers unless pairs are given.
func loadInputs(templatePath, dataPath string, mapPairs []string) (*template.Template, mapping.ColumnMapping, *rows.Set, error) {
	tpl, err := template.Load(templatePath)
	if err != nil {
		return nil, nil, nil, err
	}

	f, err := os.Open(dataPath)
	if err != nil {
		return nil, nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "open %s", dataPath)
	}
	defer f.Close()

	set, err := rows.ReadCSV(f)
	if err != nil {
		return nil, nil, nil, err
	}

	if len(mapPairs) == 0 {
		return tpl, mapping.AutoDetect(set.Headers), set, nil
	}

	raw := make(map[string]string, len(mapPairs))
	for _, pair := range mapPairs {
		field, col, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, nil, nil, errors.New(errors.ErrCodeInvalidMapping, "mapping %q must be field=column", pair)
		}
		raw[field] = col
	}
	m, err := mapping.Parse(raw)
	if err != nil {
		return nil, nil, nil, err
	}
	return tpl, m, set, nil
}
