package user

import (
	"context"
	"hash/fnv"
	"time"

	"trustmatrix/internal/verification/ports"
	id "trustmatrix/pkg/domain"
	dErrors "trustmatrix/pkg/domain-errors"
)

// numShards spreads per-user locks so unrelated members rarely contend.
const numShards = 128

const defaultTxTimeout = 5 * time.Second

// ShardedTx serialises transaction bodies per user over an in-memory store.
// Two bodies for the same user never overlap; bodies for users that hash to
// the same shard also wait on each other, which is harmless.
//
// Each shard is a one-slot semaphore so a waiter gives up when its context
// ends instead of blocking until the holder finishes.
type ShardedTx struct {
	shards  [numShards]chan struct{}
	store   *InMemoryUserStore
	timeout time.Duration
}

func NewShardedTx(store *InMemoryUserStore, timeout time.Duration) *ShardedTx {
	t := &ShardedTx{store: store, timeout: timeout}
	for i := range t.shards {
		t.shards[i] = make(chan struct{}, 1)
	}
	return t
}

func (t *ShardedTx) RunInTx(ctx context.Context, userID id.UserID, fn func(store ports.TxUserStore) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	shard := t.shards[shardFor(userID)]
	select {
	case shard <- struct{}{}:
	case <-ctx.Done():
		return dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "transaction aborted: timed out waiting for user lock")
	}
	defer func() { <-shard }()

	// Both cases can be ready at once; select picks at random.
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	return fn(t.store)
}

func shardFor(userID id.UserID) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID.String()))
	return int(h.Sum32() % numShards)
}
