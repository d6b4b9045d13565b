// Package lock serializes verification per product id.
package lock

import (
	"context"
	"hash/fnv"

	"productverification/pkg/platform/sentinel"
)

// Locker acquires an exclusive lock for key. The returned release func must
// be called exactly once. Acquisition gives up when ctx is done and returns an
// error wrapping sentinel.ErrUnavailable.
type Locker interface {
	Lock(ctx context.Context, key string) (release func(), err error)
}

const shardCount = 128

// Sharded is an in-process Locker. Keys hash onto a fixed set of shards, so
// unrelated keys may occasionally contend.
type Sharded struct {
	shards [shardCount]chan struct{}
}

func NewSharded() *Sharded {
	s := &Sharded{}
	for i := range s.shards {
		s.shards[i] = make(chan struct{}, 1)
	}
	return s
}

func (s *Sharded) Lock(ctx context.Context, key string) (func(), error) {
	shard := s.shards[shardFor(key)]
	select {
	case shard <- struct{}{}:
		return func() { <-shard }, nil
	case <-ctx.Done():
		return nil, unavailable(key, ctx.Err())
	}
}

func shardFor(key string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return h.Sum32() % shardCount
}

type unavailableError struct {
	key   string
	cause error
}

func (e *unavailableError) Error() string {
	return "lock " + e.key + " unavailable: " + e.cause.Error()
}

func (e *unavailableError) Unwrap() []error {
	return []error{sentinel.ErrUnavailable, e.cause}
}

func unavailable(key string, cause error) error {
	return &unavailableError{key: key, cause: cause}
}
