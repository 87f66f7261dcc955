package storage

import (
	"sync"

	"id5multiplexing/helpers"
	"id5multiplexing/interfaces"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

var _ interfaces.StorageApi = (*ReplicatingStorage)(nil)

type replicatedOp struct {
	value  string
	remove bool
}

// ReplicatingStorage writes to a primary storage and mirrors every write to its replicas. Reads
// only hit the primary. The last operation per key is remembered so a replica attached late is
// brought up to date before it receives new writes.
//
// Replica failures are logged and do not fail the write.
type ReplicatingStorage struct {
	primary interfaces.StorageApi
	logger  log.Logger

	mu       sync.Mutex
	replicas []interfaces.StorageApi
	lastOps  map[string]replicatedOp
	keys     []string
}

// NewReplicatingStorage panics on nil primary or logger.
func NewReplicatingStorage(primary interfaces.StorageApi, logger log.Logger) *ReplicatingStorage {
	return &ReplicatingStorage{
		primary: helpers.NilPanic(primary, "storage.replicating.go: primary is required"),
		logger:  log.With(helpers.NilPanic(logger, "storage.replicating.go: logger is required"), "component", "replicating_storage"),
		lastOps: make(map[string]replicatedOp),
	}
}

func (r *ReplicatingStorage) GetItem(key string) (string, error) {
	return r.primary.GetItem(key)
}

func (r *ReplicatingStorage) SetItem(key string, value string) error {
	return r.apply(key, replicatedOp{value: value})
}

func (r *ReplicatingStorage) RemoveItem(key string) error {
	return r.apply(key, replicatedOp{remove: true})
}

// AddReplica replays the last operation of every key written so far to replica, in first write
// order, then mirrors later writes to it.
func (r *ReplicatingStorage) AddReplica(replica interfaces.StorageApi) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, key := range r.keys {
		r.replicate(replica, key, r.lastOps[key])
	}
	r.replicas = append(r.replicas, replica)
}

// Replicas returns the number of attached replicas.
func (r *ReplicatingStorage) Replicas() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.replicas)
}

func (r *ReplicatingStorage) apply(key string, op replicatedOp) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if op.remove {
		err = r.primary.RemoveItem(key)
	} else {
		err = r.primary.SetItem(key, op.value)
	}
	if _, seen := r.lastOps[key]; !seen {
		r.keys = append(r.keys, key)
	}
	r.lastOps[key] = op
	for _, replica := range r.replicas {
		r.replicate(replica, key, op)
	}
	return err
}

func (r *ReplicatingStorage) replicate(replica interfaces.StorageApi, key string, op replicatedOp) {
	var err error
	if op.remove {
		err = replica.RemoveItem(key)
	} else {
		err = replica.SetItem(key, op.value)
	}
	if err != nil {
		level.Warn(r.logger).Log("msg", "replica write failed", "key", key, "err", err)
	}
}
