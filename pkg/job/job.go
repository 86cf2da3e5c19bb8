// Package job defines the batch job model and its status store.
//
// A Job aggregates one Asset per input row and tracks batch-level state
// and progress for polling consumers. Jobs are mutated exclusively by the
// batch orchestrator; every other component reads them through a Store.
//
// # State machine
//
//	idle → mapping → previewing → rendering → completed
//
// The error state is reachable from any non-idle state and is terminal.
// Asset transitions are one-directional: pending → rendering →
// completed|failed, with no retry path. A failed asset stays failed.
package job

import (
	"math"
	"time"

	"github.com/bannerforge/bannerforge/pkg/errors"
)

// State is the lifecycle state of a batch job.
type State string

// Job states.
const (
	StateIdle       State = "idle"
	StateMapping    State = "mapping"
	StatePreviewing State = "previewing"
	StateRendering  State = "rendering"
	StateCompleted  State = "completed"
	StateError      State = "error"
)

// validTransitions encodes the job state machine. The error state is
// handled separately: it is reachable from any non-idle state.
var validTransitions = map[State][]State{
	StateIdle:       {StateMapping},
	StateMapping:    {StatePreviewing, StateRendering},
	StatePreviewing: {StateRendering},
	StateRendering:  {StateCompleted},
}

// AssetStatus is the lifecycle state of a single asset.
type AssetStatus string

// Asset statuses.
const (
	AssetPending   AssetStatus = "pending"
	AssetRendering AssetStatus = "rendering"
	AssetCompleted AssetStatus = "completed"
	AssetFailed    AssetStatus = "failed"
)

// Asset is one output (or failure) corresponding to one input row.
// RowIndex is assigned at task-creation time, so manifest ordering matches
// input order regardless of concurrent completion order.
type Asset struct {
	RowIndex int         `json:"rowIndex"`
	Status   AssetStatus `json:"status"`
	FilePath string      `json:"filePath,omitempty"`
	Error    string      `json:"error,omitempty"`
}

// Job is the aggregate tracking all assets of one batch run.
type Job struct {
	ID    string `json:"id"`
	State State  `json:"state"`

	TemplateID string `json:"templateId,omitempty"`
	Format     string `json:"format,omitempty"`

	TotalAssets     int `json:"totalAssets"`
	CompletedAssets int `json:"completedAssets"`
	FailedAssets    int `json:"failedAssets"`
	Progress        int `json:"progress"`

	Assets []Asset `json:"assets"`

	// Error holds the job-level message when State is error. Per-asset
	// failures live on the assets and never surface here.
	Error string `json:"error,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// New creates a job in the idle state.
func New(id string) *Job {
	now := time.Now().UTC()
	return &Job{
		ID:        id,
		State:     StateIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Transition moves the job to state s, enforcing the state machine.
func (j *Job) Transition(s State) error {
	if s == StateError {
		if j.State == StateIdle {
			return errors.New(errors.ErrCodeInternal, "job %s: cannot fail from idle", j.ID)
		}
		j.State = StateError
		j.UpdatedAt = time.Now().UTC()
		return nil
	}

	for _, next := range validTransitions[j.State] {
		if next == s {
			j.State = s
			j.UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return errors.New(errors.ErrCodeInternal,
		"job %s: invalid transition %s → %s", j.ID, j.State, s)
}

// Fail moves the job to the terminal error state with a job-level message.
func (j *Job) Fail(msg string) error {
	if err := j.Transition(StateError); err != nil {
		return err
	}
	j.Error = msg
	return nil
}

// InitAssets creates one pending asset per row.
func (j *Job) InitAssets(total int) {
	j.TotalAssets = total
	j.CompletedAssets = 0
	j.FailedAssets = 0
	j.Progress = 0
	j.Assets = make([]Asset, total)
	for i := range j.Assets {
		j.Assets[i] = Asset{RowIndex: i, Status: AssetPending}
	}
	j.UpdatedAt = time.Now().UTC()
}

// AssetRendering marks asset i as in-flight.
func (j *Job) AssetRendering(i int) {
	if i < 0 || i >= len(j.Assets) || j.Assets[i].Status != AssetPending {
		return
	}
	j.Assets[i].Status = AssetRendering
	j.UpdatedAt = time.Now().UTC()
}

// AssetCompleted marks asset i as completed with its output path and
// recomputes the aggregate counters.
func (j *Job) AssetCompleted(i int, filePath string) {
	if i < 0 || i >= len(j.Assets) || j.Assets[i].Status == AssetCompleted || j.Assets[i].Status == AssetFailed {
		return
	}
	j.Assets[i].Status = AssetCompleted
	j.Assets[i].FilePath = filePath
	j.recount()
}

// AssetFailed marks asset i as failed with an error message and recomputes
// the aggregate counters. Failed assets stay failed; the batch continues.
func (j *Job) AssetFailed(i int, msg string) {
	if i < 0 || i >= len(j.Assets) || j.Assets[i].Status == AssetCompleted || j.Assets[i].Status == AssetFailed {
		return
	}
	j.Assets[i].Status = AssetFailed
	j.Assets[i].Error = msg
	j.recount()
}

// Done reports whether every asset has reached a terminal status.
func (j *Job) Done() bool {
	return j.TotalAssets > 0 && j.CompletedAssets+j.FailedAssets == j.TotalAssets
}

// recount recomputes counters and progress from asset statuses so a
// polling consumer observes monotonically non-decreasing progress.
func (j *Job) recount() {
	completed, failed := 0, 0
	for _, a := range j.Assets {
		switch a.Status {
		case AssetCompleted:
			completed++
		case AssetFailed:
			failed++
		}
	}
	j.CompletedAssets = completed
	j.FailedAssets = failed
	if j.TotalAssets > 0 {
		j.Progress = int(math.Round(100 * float64(completed) / float64(j.TotalAssets)))
	}
	j.UpdatedAt = time.Now().UTC()
}

// Clone returns a deep copy of the job. Stores hand out clones so callers
// can never mutate shared state.
func (j *Job) Clone() *Job {
	cp := *j
	cp.Assets = make([]Asset, len(j.Assets))
	copy(cp.Assets, j.Assets)
	return &cp
}
