package job

import (
	"context"
)

// Store holds jobs keyed by ID for polling. There is no ambient global
// job list: all access flows through a Store instance. The orchestrator
// is the only writer; API handlers and the CLI read clones.
type Store interface {
	// Put stores a job, replacing any existing job with the same ID.
	Put(ctx context.Context, j *Job) error

	// Get returns a copy of the job, or a JOB_NOT_FOUND error.
	Get(ctx context.Context, id string) (*Job, error)

	// Update applies fn to the stored job atomically with respect to
	// other Update calls and persists the result.
	Update(ctx context.Context, id string, fn func(*Job) error) error

	// List returns copies of all stored jobs in unspecified order.
	List(ctx context.Context) ([]*Job, error)

	// Close releases resources held by the store.
	Close() error
}
