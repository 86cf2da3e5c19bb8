package job

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bannerforge/bannerforge/pkg/errors"
)

// redisKeyPrefix namespaces job keys in Redis.
const redisKeyPrefix = "bannerforge:job:"

// redisJobTTL bounds how long finished jobs stay pollable.
const redisJobTTL = 7 * 24 * time.Hour

// RedisStore is a Redis-backed job store for multi-instance deployments.
//
// The orchestrator is the sole writer for any given job, so Update uses a
// process-local mutex plus read-modify-write rather than optimistic
// transactions; concurrent updates to the same job only ever come from
// the owning orchestrator's worker pool within one process.
type RedisStore struct {
	client *redis.Client
	mu     sync.Mutex
}

// RedisConfig configures the Redis connection.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "connect to redis at %s", cfg.Addr)
	}
	return &RedisStore{client: client}, nil
}

// Put stores the job as JSON.
func (s *RedisStore) Put(ctx context.Context, j *Job) error {
	data, err := json.Marshal(j)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marshal job %s", j.ID)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+j.ID, data, redisJobTTL).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "store job %s", j.ID)
	}
	return nil
}

// Get fetches and decodes the job.
func (s *RedisStore) Get(ctx context.Context, id string) (*Job, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, errors.New(errors.ErrCodeJobNotFound, "job %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "fetch job %s", id)
	}

	var j Job
	if err := json.Unmarshal(data, &j); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "decode job %s", id)
	}
	return &j, nil
}

// Update applies fn to the stored job and writes it back.
func (s *RedisStore) Update(ctx context.Context, id string, fn func(*Job) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := fn(j); err != nil {
		return err
	}
	return s.Put(ctx, j)
}

// List returns all stored jobs by scanning the key prefix.
func (s *RedisStore) List(ctx context.Context) ([]*Job, error) {
	var out []*Job
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		data, err := s.client.Get(ctx, iter.Val()).Bytes()
		if err == redis.Nil {
			continue // expired between scan and get
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "fetch %s", iter.Val())
		}
		var j Job
		if err := json.Unmarshal(data, &j); err != nil {
			continue // skip undecodable entries
		}
		out = append(out, &j)
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "scan jobs")
	}
	return out, nil
}

// Close closes the Redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ensure RedisStore implements Store.
var _ Store = (*RedisStore)(nil)
