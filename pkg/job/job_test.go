package job

import (
	"context"
	"testing"

	"github.com/bannerforge/bannerforge/pkg/errors"
)

func TestTransitionHappyPath(t *testing.T) {
	j := New("j1")
	for _, s := range []State{StateMapping, StatePreviewing, StateRendering, StateCompleted} {
		if err := j.Transition(s); err != nil {
			t.Fatalf("transition to %s: %v", s, err)
		}
	}
	if j.State != StateCompleted {
		t.Errorf("final state = %s", j.State)
	}
}

func TestTransitionSkipPreview(t *testing.T) {
	j := New("j1")
	if err := j.Transition(StateMapping); err != nil {
		t.Fatal(err)
	}
	if err := j.Transition(StateRendering); err != nil {
		t.Errorf("mapping → rendering should be allowed: %v", err)
	}
}

func TestTransitionInvalid(t *testing.T) {
	j := New("j1")
	if err := j.Transition(StateCompleted); err == nil {
		t.Error("idle → completed should fail")
	}

	_ = j.Transition(StateMapping)
	_ = j.Transition(StateRendering)
	_ = j.Transition(StateCompleted)
	if err := j.Transition(StateRendering); err == nil {
		t.Error("completed → rendering should fail")
	}
}

func TestErrorReachableFromNonIdle(t *testing.T) {
	j := New("j1")
	if err := j.Fail("boom"); err == nil {
		t.Error("idle → error should fail")
	}

	_ = j.Transition(StateMapping)
	if err := j.Fail("template unreadable"); err != nil {
		t.Fatalf("mapping → error: %v", err)
	}
	if j.State != StateError || j.Error != "template unreadable" {
		t.Errorf("state=%s error=%q", j.State, j.Error)
	}
}

func TestInitAssets(t *testing.T) {
	j := New("j1")
	j.InitAssets(3)

	if j.TotalAssets != 3 || len(j.Assets) != 3 {
		t.Fatalf("total=%d len=%d", j.TotalAssets, len(j.Assets))
	}
	for i, a := range j.Assets {
		if a.RowIndex != i {
			t.Errorf("asset %d RowIndex = %d", i, a.RowIndex)
		}
		if a.Status != AssetPending {
			t.Errorf("asset %d status = %s", i, a.Status)
		}
	}
}

func TestAssetLifecycleAndCounters(t *testing.T) {
	j := New("j1")
	j.InitAssets(4)

	checkInvariant := func() {
		t.Helper()
		if j.CompletedAssets+j.FailedAssets > j.TotalAssets {
			t.Fatalf("counter invariant violated: %d+%d > %d",
				j.CompletedAssets, j.FailedAssets, j.TotalAssets)
		}
	}

	j.AssetRendering(0)
	j.AssetCompleted(0, "out/asset_0.png")
	checkInvariant()
	if j.Progress != 25 {
		t.Errorf("progress = %d, want 25", j.Progress)
	}

	j.AssetRendering(1)
	j.AssetFailed(1, "font missing")
	checkInvariant()
	// Failed assets do not count toward progress.
	if j.Progress != 25 {
		t.Errorf("progress = %d, want 25", j.Progress)
	}

	j.AssetRendering(2)
	j.AssetCompleted(2, "out/asset_2.png")
	j.AssetRendering(3)
	j.AssetCompleted(3, "out/asset_3.png")
	checkInvariant()

	if !j.Done() {
		t.Error("job should be done")
	}
	if j.Progress != 75 {
		t.Errorf("progress = %d, want 75", j.Progress)
	}
	if j.CompletedAssets != 3 || j.FailedAssets != 1 {
		t.Errorf("completed=%d failed=%d", j.CompletedAssets, j.FailedAssets)
	}
}

func TestAssetTransitionsOneDirectional(t *testing.T) {
	j := New("j1")
	j.InitAssets(1)

	j.AssetRendering(0)
	j.AssetFailed(0, "first failure")

	// No retry path: further transitions are ignored.
	j.AssetCompleted(0, "out/late.png")
	if j.Assets[0].Status != AssetFailed {
		t.Errorf("status = %s, failed assets stay failed", j.Assets[0].Status)
	}
	if j.CompletedAssets != 0 || j.FailedAssets != 1 {
		t.Errorf("completed=%d failed=%d", j.CompletedAssets, j.FailedAssets)
	}
}

func TestProgressRounding(t *testing.T) {
	j := New("j1")
	j.InitAssets(3)
	j.AssetRendering(0)
	j.AssetCompleted(0, "a")
	if j.Progress != 33 {
		t.Errorf("progress = %d, want 33", j.Progress)
	}
	j.AssetRendering(1)
	j.AssetCompleted(1, "b")
	if j.Progress != 67 {
		t.Errorf("progress = %d, want 67 (rounded)", j.Progress)
	}
}

func TestCloneIsDeep(t *testing.T) {
	j := New("j1")
	j.InitAssets(2)

	cp := j.Clone()
	cp.Assets[0].Status = AssetFailed
	cp.Assets[0].Error = "mutated"

	if j.Assets[0].Status != AssetPending {
		t.Error("mutating a clone must not affect the original")
	}
}

func TestAssetBoundsIgnored(t *testing.T) {
	j := New("j1")
	j.InitAssets(1)
	// Out-of-range indices are ignored, not a panic.
	j.AssetRendering(-1)
	j.AssetCompleted(5, "x")
	j.AssetFailed(99, "y")
	if j.CompletedAssets != 0 || j.FailedAssets != 0 {
		t.Error("out-of-range transitions must not affect counters")
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	ctx := context.Background()

	j := New("j1")
	j.InitAssets(2)
	if err := s.Put(ctx, j); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(ctx, "j1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.TotalAssets != 2 {
		t.Errorf("TotalAssets = %d", got.TotalAssets)
	}

	// Mutating the returned copy must not leak into the store.
	got.Assets[0].Status = AssetFailed
	again, _ := s.Get(ctx, "j1")
	if again.Assets[0].Status != AssetPending {
		t.Error("store must hand out independent copies")
	}

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, errors.ErrCodeJobNotFound) {
		t.Errorf("missing job: got %v, want JOB_NOT_FOUND", err)
	}
}

func TestMemoryStoreUpdate(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	j := New("j1")
	j.InitAssets(1)
	_ = s.Put(ctx, j)

	err := s.Update(ctx, "j1", func(j *Job) error {
		j.AssetRendering(0)
		j.AssetCompleted(0, "out.png")
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, _ := s.Get(ctx, "j1")
	if got.CompletedAssets != 1 || got.Progress != 100 {
		t.Errorf("completed=%d progress=%d", got.CompletedAssets, got.Progress)
	}

	if err := s.Update(ctx, "missing", func(*Job) error { return nil }); !errors.Is(err, errors.ErrCodeJobNotFound) {
		t.Errorf("update missing: got %v", err)
	}
}

func TestMemoryStoreList(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_ = s.Put(ctx, New("a"))
	_ = s.Put(ctx, New("b"))

	jobs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(jobs) != 2 {
		t.Errorf("len = %d, want 2", len(jobs))
	}
}
