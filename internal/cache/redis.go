package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// KV is the key/value backend of the cache.
//
// The production implementation is backed by a Redis connection pool; tests
// use the in-memory implementation from this package.
type KV interface {
	// Get returns the value of a key, or nil if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)
	// Pipelined executes all commands of the pipeline in order on a single
	// connection, in one round-trip.
	Pipelined(ctx context.Context, pipe *Pipeline) error
	// Ping performs a trivial round-trip command to check connectivity.
	Ping(ctx context.Context) error
}

// Options configures the Redis backend.
type Options struct {
	// URI is the Redis connection URI (redis:// scheme).
	URI string
	// PoolSize bounds the number of pooled connections.
	PoolSize int
	// ConnectTimeout bounds connection establishment; it also bounds the
	// checkout of a pooled connection, which surfaces as ErrConnTimeout.
	ConnectTimeout time.Duration
}

// redisKV implements KV on a go-redis client.
type redisKV struct {
	client *redis.Client
}

// NewRedisKV initializes the Redis backend and verifies connectivity with a
// PING command.
func NewRedisKV(ctx context.Context, opts Options) (KV, error) {
	redisOpts, err := redis.ParseURL(opts.URI)
	if err != nil {
		return nil, fmt.Errorf("cache: invalid redis URI: %w", err)
	}

	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 2 * time.Second
	}
	redisOpts.DialTimeout = opts.ConnectTimeout
	redisOpts.PoolTimeout = opts.ConnectTimeout
	if opts.PoolSize > 0 {
		redisOpts.PoolSize = opts.PoolSize
	}

	kv := &redisKV{client: redis.NewClient(redisOpts)}
	if err := kv.Ping(ctx); err != nil {
		return nil, err
	}

	return kv, nil
}

func (r *redisKV) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, wrapRedisErr(err)
	}
	return value, nil
}

func (r *redisKV) Pipelined(ctx context.Context, pipe *Pipeline) error {
	rp := r.client.Pipeline()

	gets := make([]*redis.StringCmd, 0, len(pipe.cmds))
	for _, cmd := range pipe.cmds {
		switch cmd.op {
		case opGet:
			gets = append(gets, rp.Get(ctx, cmd.key))
		case opSet:
			rp.Set(ctx, cmd.key, cmd.value, cmd.ttl)
		case opDel:
			rp.Del(ctx, cmd.key)
		}
	}

	if _, err := rp.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return wrapRedisErr(err)
	}

	pipe.values = make([][]byte, len(gets))
	for i, cmd := range gets {
		value, err := cmd.Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return wrapRedisErr(err)
		}
		pipe.values[i] = value
	}

	return nil
}

func (r *redisKV) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return wrapRedisErr(err)
	}
	return nil
}

// poolTimeoutMsg matches the pooled connection checkout timeout, whose
// sentinel go-redis keeps in an internal package.
const poolTimeoutMsg = "redis: connection pool timeout"

func wrapRedisErr(err error) error {
	if err.Error() == poolTimeoutMsg || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s", ErrConnTimeout, err)
	}
	return fmt.Errorf("cache: redis request failed: %w", err)
}
