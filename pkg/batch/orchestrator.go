// Package batch orchestrates full-batch rendering runs.
//
// Given N rows, a template and a column mapping, the orchestrator creates
// one asset task per row, processes them on a bounded worker pool, tracks
// per-asset outcomes on the job, and packages successful outputs into an
// archive with a manifest once every asset has resolved.
//
// # Failure model
//
// Per-row failures (layout, raster, timeout) are captured on the asset and
// never stop the batch: a job reaches completed even when some assets
// failed. Only orchestration-level failures (output directory unwritable,
// store unavailable) escalate the job to the terminal error state.
//
// # Concurrency
//
// The preview path is serial by design: it renders a handful of rows and
// favors simplicity and latency. The full-render path is the only
// concurrent one. Job counters are owned by the orchestrator and updated
// through the store's atomic Update, so concurrent completions never lose
// counts.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/bannerforge/bannerforge/pkg/errors"
	"github.com/bannerforge/bannerforge/pkg/job"
	"github.com/bannerforge/bannerforge/pkg/mapping"
	"github.com/bannerforge/bannerforge/pkg/pipeline"
	"github.com/bannerforge/bannerforge/pkg/raster"
	"github.com/bannerforge/bannerforge/pkg/rows"
	"github.com/bannerforge/bannerforge/pkg/template"
)

// Default orchestrator settings.
const (
	// DefaultWorkers bounds the worker pool. Large batches must never
	// spawn one goroutine per row.
	DefaultWorkers = 4

	// DefaultAssetTimeout caps one asset task, covering rasterization
	// and output I/O. Expiry fails the asset, not the batch.
	DefaultAssetTimeout = 30 * time.Second

	// DefaultPreviewRows is how many leading rows a preview renders.
	DefaultPreviewRows = 3
)

// Options configures an orchestrator.
type Options struct {
	Workers      int
	AssetTimeout time.Duration
	PreviewRows  int

	// OutputDir is the root under which per-job directories are created.
	OutputDir string

	Format  raster.Format
	Archive bool
}

// withDefaults fills unset options.
func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = DefaultWorkers
	}
	if o.AssetTimeout <= 0 {
		o.AssetTimeout = DefaultAssetTimeout
	}
	if o.PreviewRows <= 0 {
		o.PreviewRows = DefaultPreviewRows
	}
	if o.OutputDir == "" {
		o.OutputDir = "output"
	}
	if o.Format == "" {
		o.Format = raster.DefaultFormat
	}
	return o
}

// Orchestrator runs previews and full batch renders.
type Orchestrator struct {
	runner *pipeline.Runner
	store  job.Store
	logger *log.Logger
	opts   Options

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// New creates an orchestrator. If logger is nil, the default logger is used.
func New(runner *pipeline.Runner, store job.Store, logger *log.Logger, opts Options) *Orchestrator {
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{
		runner:  runner,
		store:   store,
		logger:  logger,
		opts:    opts.withDefaults(),
		cancels: make(map[string]context.CancelFunc),
	}
}

// PreviewResult is the outcome of rendering one preview row.
type PreviewResult struct {
	RowIndex int             `json:"rowIndex"`
	Status   job.AssetStatus `json:"status"`
	Error    string          `json:"error,omitempty"`

	// Data holds the encoded image for completed rows. Previews are not
	// persisted; the caller decides whether to write or stream them.
	Data []byte `json:"-"`
}

// Preview synchronously renders up to limit leading rows without creating
// or mutating any persisted job. A limit of zero uses the configured
// preview row count. Per-row failures land on the result, never abort the
// preview.
func (o *Orchestrator) Preview(ctx context.Context, tpl *template.Template, m mapping.ColumnMapping, set *rows.Set, limit int) []PreviewResult {
	if limit <= 0 {
		limit = o.opts.PreviewRows
	}
	if limit > len(set.Rows) {
		limit = len(set.Rows)
	}

	results := make([]PreviewResult, 0, limit)
	for i := 0; i < limit; i++ {
		res, err := o.runner.RenderRow(ctx, tpl, m, set.Rows[i], o.opts.Format)
		if err != nil {
			results = append(results, PreviewResult{
				RowIndex: i,
				Status:   job.AssetFailed,
				Error:    errors.UserMessage(err),
			})
			continue
		}
		results = append(results, PreviewResult{
			RowIndex: i,
			Status:   job.AssetCompleted,
			Data:     res.Data,
		})
	}
	return results
}

// Start creates a job for a full render and launches it in the
// background. The returned job snapshot carries the ID and total asset
// count for the caller's response; poll the store for progress.
func (o *Orchestrator) Start(ctx context.Context, tpl *template.Template, m mapping.ColumnMapping, set *rows.Set) (*job.Job, error) {
	j, err := o.prepare(ctx, tpl, set)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	o.mu.Lock()
	o.cancels[j.ID] = cancel
	o.mu.Unlock()

	go func() {
		defer o.clearCancel(j.ID)
		o.run(runCtx, j.ID, tpl, m, set)
	}()

	return j, nil
}

// Run executes a full render synchronously and returns the final job.
// Used by the CLI's one-shot mode.
func (o *Orchestrator) Run(ctx context.Context, tpl *template.Template, m mapping.ColumnMapping, set *rows.Set) (*job.Job, error) {
	j, err := o.prepare(ctx, tpl, set)
	if err != nil {
		return nil, err
	}
	o.run(ctx, j.ID, tpl, m, set)
	return o.store.Get(ctx, j.ID)
}

// Cancel stops scheduling new asset tasks for the job. In-flight tasks
// finish but their results are discarded; already-completed assets are
// kept. The job lands in the terminal error state with a cancellation
// message.
func (o *Orchestrator) Cancel(jobID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	cancel, ok := o.cancels[jobID]
	if ok {
		cancel()
	}
	return ok
}

func (o *Orchestrator) clearCancel(jobID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.cancels, jobID)
}

// prepare validates inputs, creates the job record and its pending
// assets, and moves it to rendering. Input errors surface immediately;
// the job is never created.
func (o *Orchestrator) prepare(ctx context.Context, tpl *template.Template, set *rows.Set) (*job.Job, error) {
	if set == nil || len(set.Rows) == 0 {
		return nil, errors.New(errors.ErrCodeEmptyUpload, "no rows to render")
	}
	if err := tpl.Validate(); err != nil {
		return nil, err
	}

	j := job.New(uuid.NewString())
	j.TemplateID = tpl.ID
	j.Format = string(o.opts.Format)
	if err := j.Transition(job.StateMapping); err != nil {
		return nil, err
	}
	j.InitAssets(len(set.Rows))
	if err := j.Transition(job.StateRendering); err != nil {
		return nil, err
	}

	if err := o.store.Put(ctx, j); err != nil {
		return nil, err
	}
	return j.Clone(), nil
}

// run processes all assets and finalizes the job. The template and
// mapping are the values captured at job start: callers mutating either
// mid-run do not affect this batch.
func (o *Orchestrator) run(ctx context.Context, jobID string, tpl *template.Template, m mapping.ColumnMapping, set *rows.Set) {
	dir := o.jobDir(jobID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		o.failJob(jobID, fmt.Sprintf("create output directory: %v", err))
		return
	}

	tasks := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < o.opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range tasks {
				o.renderAsset(ctx, jobID, idx, tpl, m, set.Rows[idx])
			}
		}()
	}

	cancelled := false
schedule:
	for i := range set.Rows {
		select {
		case <-ctx.Done():
			cancelled = true
			break schedule
		case tasks <- i:
		}
	}
	close(tasks)
	wg.Wait()

	if cancelled || ctx.Err() != nil {
		o.failJob(jobID, "job cancelled")
		o.logger.Info("batch cancelled", "job", jobID)
		return
	}

	o.finalize(ctx, jobID, dir)
}

// renderAsset runs one asset task under the per-task timeout and records
// the outcome on the job.
func (o *Orchestrator) renderAsset(ctx context.Context, jobID string, idx int, tpl *template.Template, m mapping.ColumnMapping, row rows.Row) {
	if ctx.Err() != nil {
		// Cancelled before starting: leave the asset pending; the job is
		// about to land in the error state.
		return
	}

	_ = o.store.Update(ctx, jobID, func(j *job.Job) error {
		j.AssetRendering(idx)
		return nil
	})

	taskCtx, cancel := context.WithTimeout(ctx, o.opts.AssetTimeout)
	defer cancel()

	type outcome struct {
		path string
		err  error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := o.runner.RenderRow(taskCtx, tpl, m, row, o.opts.Format)
		if err != nil {
			done <- outcome{err: err}
			return
		}
		path := filepath.Join(o.jobDir(jobID), assetFileName(idx, o.opts.Format))
		if err := os.WriteFile(path, res.Data, 0644); err != nil {
			done <- outcome{err: errors.Wrap(errors.ErrCodeRenderFailed, err, "write asset %d", idx)}
			return
		}
		done <- outcome{path: path}
	}()

	var out outcome
	select {
	case out = <-done:
	case <-taskCtx.Done():
		if ctx.Err() != nil {
			// Job-level cancellation: result is irrelevant.
			return
		}
		out = outcome{err: errors.New(errors.ErrCodeTimeout,
			"asset %d timed out after %s", idx, o.opts.AssetTimeout)}
	}

	if ctx.Err() != nil {
		// Completed after cancellation: discard.
		return
	}

	_ = o.store.Update(ctx, jobID, func(j *job.Job) error {
		if out.err != nil {
			j.AssetFailed(idx, errors.UserMessage(out.err))
		} else {
			j.AssetCompleted(idx, out.path)
		}
		return nil
	})

	if out.err != nil {
		o.logger.Debug("asset failed", "job", jobID, "row", idx, "err", out.err)
	}
}

// finalize transitions the job to completed and writes the manifest and,
// when configured, the archive of completed assets.
func (o *Orchestrator) finalize(ctx context.Context, jobID, dir string) {
	var final *job.Job
	err := o.store.Update(ctx, jobID, func(j *job.Job) error {
		if err := j.Transition(job.StateCompleted); err != nil {
			return err
		}
		final = j.Clone()
		return nil
	})
	if err != nil {
		o.failJob(jobID, fmt.Sprintf("finalize job: %v", err))
		return
	}

	man := BuildManifest(final)
	if err := man.WriteFile(filepath.Join(dir, ManifestFileName)); err != nil {
		o.failJob(jobID, fmt.Sprintf("write manifest: %v", err))
		return
	}

	if o.opts.Archive {
		if err := WriteArchive(filepath.Join(dir, ArchiveFileName), final, man); err != nil {
			o.failJob(jobID, fmt.Sprintf("write archive: %v", err))
			return
		}
	}

	o.logger.Info("batch completed",
		"job", jobID,
		"completed", final.CompletedAssets,
		"failed", final.FailedAssets)
}

// failJob escalates an orchestration-level failure to the job.
func (o *Orchestrator) failJob(jobID, msg string) {
	err := o.store.Update(context.Background(), jobID, func(j *job.Job) error {
		return j.Fail(msg)
	})
	if err != nil {
		o.logger.Error("failed to record job error", "job", jobID, "err", err)
	}
}

// JobDir returns the output directory for a job.
func (o *Orchestrator) JobDir(jobID string) string { return o.jobDir(jobID) }

func (o *Orchestrator) jobDir(jobID string) string {
	return filepath.Join(o.opts.OutputDir, jobID)
}

// assetFileName names an asset output by row index.
func assetFileName(idx int, format raster.Format) string {
	return fmt.Sprintf("asset_%04d.%s", idx, format.Ext())
}
