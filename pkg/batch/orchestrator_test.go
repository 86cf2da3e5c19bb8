package batch

import (
	"archive/zip"
	"context"
	"encoding/json"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bannerforge/bannerforge/pkg/errors"
	"github.com/bannerforge/bannerforge/pkg/job"
	"github.com/bannerforge/bannerforge/pkg/layout"
	"github.com/bannerforge/bannerforge/pkg/mapping"
	"github.com/bannerforge/bannerforge/pkg/pipeline"
	"github.com/bannerforge/bannerforge/pkg/raster"
	"github.com/bannerforge/bannerforge/pkg/rows"
	"github.com/bannerforge/bannerforge/pkg/template"
)

// stubBackend renders solid images. It fails any op list whose text
// contains the marker "FAIL" so tests can target individual rows, and
// can delay each render to exercise timeouts and cancellation.
type stubBackend struct {
	delay time.Duration
}

func (b *stubBackend) Render(ops []layout.Op, width, height int) (image.Image, error) {
	if b.delay > 0 {
		time.Sleep(b.delay)
	}
	for _, op := range ops {
		if text, ok := op.(layout.FillText); ok {
			for _, line := range text.Lines {
				if strings.Contains(line, "FAIL") {
					return nil, errors.New(errors.ErrCodeRenderFailed, "marked row")
				}
			}
		}
	}
	return image.NewRGBA(image.Rect(0, 0, width, height)), nil
}

func (b *stubBackend) Measurer() layout.Measurer { return layout.RatioMeasurer{} }

func testTemplate() *template.Template {
	return &template.Template{
		ID:         "tpl-1",
		Name:       "Launch",
		Variant:    template.VariantHeroText,
		Dimensions: template.Dimensions{Width: 120, Height: 80},
		Content:    template.Content{Headline: "Default headline"},
		Style:      template.DefaultStyle(),
	}
}

func testMapping() mapping.ColumnMapping {
	return mapping.ColumnMapping{template.FieldHeadline: "headline"}
}

func rowSet(headlines ...string) *rows.Set {
	set := &rows.Set{Headers: []string{"headline"}}
	for _, h := range headlines {
		set.Rows = append(set.Rows, rows.Row{"headline": h})
	}
	return set
}

func newTestOrchestrator(t *testing.T, backend *stubBackend, opts Options) (*Orchestrator, job.Store) {
	t.Helper()
	if opts.OutputDir == "" {
		opts.OutputDir = t.TempDir()
	}
	store := job.NewMemoryStore()
	t.Cleanup(func() { store.Close() })
	runner := pipeline.NewRunner(backend, nil, nil)
	return New(runner, store, nil, opts), store
}

func TestRunCompletesWithPartialFailures(t *testing.T) {
	o, _ := newTestOrchestrator(t, &stubBackend{}, Options{Workers: 2})

	set := rowSet("one", "FAIL me", "three", "four")
	j, err := o.Run(context.Background(), testTemplate(), testMapping(), set)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if j.State != job.StateCompleted {
		t.Errorf("state = %s, want completed despite failures", j.State)
	}
	if j.CompletedAssets != 3 || j.FailedAssets != 1 {
		t.Errorf("completed=%d failed=%d", j.CompletedAssets, j.FailedAssets)
	}
	if j.Assets[1].Status != job.AssetFailed {
		t.Errorf("row 1 status = %s, want failed", j.Assets[1].Status)
	}
	if j.Assets[1].Error == "" {
		t.Error("failed asset should carry an error message")
	}
	if j.Progress != 75 {
		t.Errorf("progress = %d, want 75", j.Progress)
	}

	// Completed assets exist on disk.
	for _, a := range j.Assets {
		if a.Status != job.AssetCompleted {
			continue
		}
		if _, err := os.Stat(a.FilePath); err != nil {
			t.Errorf("asset %d file missing: %v", a.RowIndex, err)
		}
	}
}

func TestRunWritesManifestInRowOrder(t *testing.T) {
	o, _ := newTestOrchestrator(t, &stubBackend{}, Options{Workers: 4})

	set := rowSet("a", "b", "FAIL", "d", "e")
	j, err := o.Run(context.Background(), testTemplate(), testMapping(), set)
	if err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(o.JobDir(j.ID), ManifestFileName))
	if err != nil {
		t.Fatalf("read manifest: %v", err)
	}
	var man Manifest
	if err := json.Unmarshal(data, &man); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}

	if man.JobID != j.ID || man.TotalAssets != 5 {
		t.Errorf("jobId=%s total=%d", man.JobID, man.TotalAssets)
	}
	for i, a := range man.Assets {
		if a.RowIndex != i {
			t.Errorf("manifest asset %d has rowIndex %d, order must match rows", i, a.RowIndex)
		}
	}
	if man.Assets[2].Status != job.AssetFailed || man.Assets[2].Error == "" {
		t.Errorf("manifest must record the failure: %+v", man.Assets[2])
	}
}

func TestRunArchiveContainsCompletedAssets(t *testing.T) {
	o, _ := newTestOrchestrator(t, &stubBackend{}, Options{Workers: 2, Archive: true})

	j, err := o.Run(context.Background(), testTemplate(), testMapping(), rowSet("a", "FAIL", "c"))
	if err != nil {
		t.Fatal(err)
	}

	zr, err := zip.OpenReader(filepath.Join(o.JobDir(j.ID), ArchiveFileName))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer zr.Close()

	names := make(map[string]bool)
	for _, f := range zr.File {
		names[f.Name] = true
	}
	if !names[ManifestFileName] {
		t.Error("archive must include the manifest")
	}
	if !names[assetFileName(0, raster.FormatPNG)] || !names[assetFileName(2, raster.FormatPNG)] {
		t.Errorf("archive missing completed assets: %v", names)
	}
	if names[assetFileName(1, raster.FormatPNG)] {
		t.Error("failed asset must not appear in the archive")
	}
}

func TestRunCounterInvariantUnderConcurrency(t *testing.T) {
	o, _ := newTestOrchestrator(t, &stubBackend{}, Options{Workers: 8})

	headlines := make([]string, 40)
	for i := range headlines {
		headlines[i] = "banner"
		if i%5 == 0 {
			headlines[i] = "FAIL"
		}
	}
	j, err := o.Run(context.Background(), testTemplate(), testMapping(), rowSet(headlines...))
	if err != nil {
		t.Fatal(err)
	}

	if j.CompletedAssets+j.FailedAssets != j.TotalAssets {
		t.Errorf("completed=%d failed=%d total=%d",
			j.CompletedAssets, j.FailedAssets, j.TotalAssets)
	}
	if j.FailedAssets != 8 {
		t.Errorf("failed=%d, want 8", j.FailedAssets)
	}
	if j.State != job.StateCompleted {
		t.Errorf("state = %s", j.State)
	}
}

func TestRunAssetTimeout(t *testing.T) {
	o, _ := newTestOrchestrator(t, &stubBackend{delay: 200 * time.Millisecond},
		Options{Workers: 1, AssetTimeout: 20 * time.Millisecond})

	j, err := o.Run(context.Background(), testTemplate(), testMapping(), rowSet("slow"))
	if err != nil {
		t.Fatal(err)
	}

	if j.State != job.StateCompleted {
		t.Errorf("state = %s, timeouts fail the asset not the batch", j.State)
	}
	if j.Assets[0].Status != job.AssetFailed {
		t.Errorf("asset status = %s, want failed", j.Assets[0].Status)
	}
	if !strings.Contains(j.Assets[0].Error, "timed out") {
		t.Errorf("asset error = %q", j.Assets[0].Error)
	}
}

func TestStartAndCancel(t *testing.T) {
	o, store := newTestOrchestrator(t, &stubBackend{delay: 50 * time.Millisecond},
		Options{Workers: 1})

	j, err := o.Start(context.Background(), testTemplate(), testMapping(),
		rowSet("a", "b", "c", "d", "e", "f", "g", "h"))
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if j.State != job.StateRendering || j.TotalAssets != 8 {
		t.Errorf("state=%s total=%d", j.State, j.TotalAssets)
	}

	time.Sleep(75 * time.Millisecond)
	if !o.Cancel(j.ID) {
		t.Fatal("Cancel should find the running job")
	}

	final := waitTerminal(t, store, j.ID)
	if final.State != job.StateError {
		t.Errorf("state = %s, want error after cancellation", final.State)
	}
	if final.Error != "job cancelled" {
		t.Errorf("error = %q", final.Error)
	}
	if final.CompletedAssets >= final.TotalAssets {
		t.Error("cancellation should leave some assets unrendered")
	}
}

func TestCancelUnknownJob(t *testing.T) {
	o, _ := newTestOrchestrator(t, &stubBackend{}, Options{})
	if o.Cancel("nope") {
		t.Error("cancelling an unknown job should report false")
	}
}

func TestRunEmptyRows(t *testing.T) {
	o, store := newTestOrchestrator(t, &stubBackend{}, Options{})

	_, err := o.Run(context.Background(), testTemplate(), testMapping(), &rows.Set{})
	if !errors.Is(err, errors.ErrCodeEmptyUpload) {
		t.Errorf("got %v, want EMPTY_UPLOAD", err)
	}

	jobs, _ := store.List(context.Background())
	if len(jobs) != 0 {
		t.Error("no job should be created for an empty upload")
	}
}

func TestPreviewDoesNotCreateJobs(t *testing.T) {
	o, store := newTestOrchestrator(t, &stubBackend{}, Options{PreviewRows: 2})

	results := o.Preview(context.Background(), testTemplate(), testMapping(),
		rowSet("a", "b", "c", "d"), 0)
	if len(results) != 2 {
		t.Fatalf("len = %d, want configured preview count", len(results))
	}
	for i, r := range results {
		if r.RowIndex != i || r.Status != job.AssetCompleted || len(r.Data) == 0 {
			t.Errorf("result %d: %+v", i, r)
		}
	}

	jobs, _ := store.List(context.Background())
	if len(jobs) != 0 {
		t.Error("preview must not create jobs")
	}
}

func TestPreviewCapturesRowFailures(t *testing.T) {
	o, _ := newTestOrchestrator(t, &stubBackend{}, Options{})

	results := o.Preview(context.Background(), testTemplate(), testMapping(),
		rowSet("ok", "FAIL", "ok"), 3)
	if len(results) != 3 {
		t.Fatalf("len = %d", len(results))
	}
	if results[1].Status != job.AssetFailed || results[1].Error == "" {
		t.Errorf("result 1: %+v", results[1])
	}
	if results[0].Status != job.AssetCompleted || results[2].Status != job.AssetCompleted {
		t.Error("failures must not abort the preview")
	}
}

func TestPreviewLimitClampedToRows(t *testing.T) {
	o, _ := newTestOrchestrator(t, &stubBackend{}, Options{})

	results := o.Preview(context.Background(), testTemplate(), testMapping(), rowSet("only"), 10)
	if len(results) != 1 {
		t.Errorf("len = %d, want 1", len(results))
	}
}

func waitTerminal(t *testing.T, store job.Store, id string) *job.Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		j, err := store.Get(context.Background(), id)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if j.State == job.StateCompleted || j.State == job.StateError {
			return j
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job never reached a terminal state")
	return nil
}

func TestQuoteVariantBatch(t *testing.T) {
	o, _ := newTestOrchestrator(t, &stubBackend{}, Options{Workers: 2})

	tpl := testTemplate()
	tpl.Variant = template.VariantQuote
	m := mapping.ColumnMapping{
		template.FieldHeadline:   "quote",
		template.FieldAuthorName: "author",
	}
	set := &rows.Set{
		Headers: []string{"quote", "author"},
		Rows: []rows.Row{
			{"quote": "First quote", "author": "Ada"},
			{"quote": "Second quote", "author": ""},
			{"quote": "Third quote", "author": "Grace"},
		},
	}

	j, err := o.Run(context.Background(), tpl, m, set)
	if err != nil {
		t.Fatal(err)
	}
	// A missing author renders the quote without attribution, it is not
	// a failure.
	if j.CompletedAssets != 3 || j.FailedAssets != 0 {
		t.Errorf("completed=%d failed=%d", j.CompletedAssets, j.FailedAssets)
	}
}
