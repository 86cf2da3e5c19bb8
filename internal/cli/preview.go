package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bannerforge/bannerforge/internal/config"
	"github.com/bannerforge/bannerforge/pkg/errors"
	"github.com/bannerforge/bannerforge/pkg/job"
)

// newPreviewCmd creates the preview command. It renders the first rows of
// the data file and writes them to the output directory without creating
// a job.
func newPreviewCmd() *cobra.Command {
	var (
		configPath string
		dataPath   string
		mapPairs   []string
		outDir     string
		count      int
	)

	cmd := &cobra.Command{
		Use:   "preview [template]",
		Short: "Render the first data rows for a quick look",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd.Context(), args[0], configPath, dataPath, mapPairs, outDir, count)
		},
	}

	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "CSV data file (required)")
	cmd.Flags().StringSliceVarP(&mapPairs, "map", "m", nil, "explicit field=column mapping (repeatable)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "preview", "directory for preview images")
	cmd.Flags().IntVarP(&count, "rows", "n", 0, "number of rows to preview")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "config file")
	_ = cmd.MarkFlagRequired("data")

	return cmd
}

func runPreview(ctx context.Context, templatePath, configPath, dataPath string, mapPairs []string, outDir string, count int) error {
	logger := loggerFromContext(ctx)

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	tpl, m, set, err := loadInputs(templatePath, dataPath, mapPairs)
	if err != nil {
		return err
	}

	orch, store, err := buildOrchestrator(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create %s", outDir)
	}

	results := orch.Preview(ctx, tpl, m, set, count)
	written := 0
	for _, res := range results {
		if res.Status != job.AssetCompleted {
			logger.Warn("preview row failed", "row", res.RowIndex, "err", res.Error)
			continue
		}
		path := filepath.Join(outDir, fmt.Sprintf("preview_%d.%s", res.RowIndex, cfg.Render.Format))
		if err := os.WriteFile(path, res.Data, 0644); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
		}
		written++
	}

	logger.Info("preview written", "rows", written, "dir", outDir)
	return nil
}
