// Package iavl provides a CommitKVStore backed by a versioned,
// persisted merkle tree. It is the production persistence substrate;
// tests generally prefer the in-memory btree store.
package iavl

import (
	"github.com/tendermint/iavl"
	dbm "github.com/tendermint/tendermint/libs/db"

	"github.com/commonpool/pool/store"
)

// the cache size of the iavl working tree
const nodeCacheSize = 10000

// CommitStore manages a iavl committed state
type CommitStore struct {
	tree *iavl.MutableTree
}

var _ store.CommitKVStore = CommitStore{}

// NewCommitStore creates a new store with disk backing
func NewCommitStore(path, name string) CommitStore {
	db := dbm.NewDB(name, dbm.GoLevelDBBackend, path)
	tree := iavl.NewMutableTree(db, nodeCacheSize)
	return CommitStore{tree: tree}
}

// MemCommitStore creates a new in-memory store without disk backing,
// useful to run the full commit flow in tests.
func MemCommitStore() CommitStore {
	tree := iavl.NewMutableTree(dbm.NewMemDB(), nodeCacheSize)
	return CommitStore{tree: tree}
}

// Get returns the value stored under given key in the working tree.
// Returns nil iff key doesn't exist.
func (s CommitStore) Get(key []byte) []byte {
	_, value := s.tree.Get(key)
	return value
}

// Has checks if a key exists in the working tree.
func (s CommitStore) Has(key []byte) bool {
	return s.tree.Has(key)
}

// Set updates the working tree. Writes normally arrive here through a
// cache wrap batch, never directly from the engine.
func (s CommitStore) Set(key, value []byte) {
	s.tree.Set(key, value)
}

// Delete removes the key from the working tree.
func (s CommitStore) Delete(key []byte) {
	s.tree.Remove(key)
}

// NewBatch returns a batch that applies its ops to the working tree on
// Write.
func (s CommitStore) NewBatch() store.Batch {
	return store.NewNonAtomicBatch(s)
}

// Iterator over a domain of keys in ascending order. End is exclusive.
//
// The result set is materialized up front: the iavl tree does not
// support writes while a range traversal is open.
func (s CommitStore) Iterator(start, end []byte) store.Iterator {
	return s.rangeIterator(start, end, true)
}

// ReverseIterator over a domain of keys in descending order. End is exclusive.
func (s CommitStore) ReverseIterator(start, end []byte) store.Iterator {
	return s.rangeIterator(start, end, false)
}

func (s CommitStore) rangeIterator(start, end []byte, ascending bool) store.Iterator {
	var models []store.Model
	s.tree.IterateRange(start, end, ascending, func(key, value []byte) bool {
		models = append(models, store.Model{
			Key:   append([]byte(nil), key...),
			Value: append([]byte(nil), value...),
		})
		return false
	})
	return store.NewSliceIterator(models)
}

// CacheWrap gives us a savepoint to perform invocations on
func (s CommitStore) CacheWrap() store.KVCacheWrap {
	return store.NewBTreeCacheWrap(s, s.NewBatch(), nil)
}

// Commit the next version to disk, and returns info
func (s CommitStore) Commit() store.CommitID {
	hash, version, err := s.tree.SaveVersion()
	if err != nil {
		panic(err)
	}
	return store.CommitID{
		Version: version,
		Hash:    hash,
	}
}

// LoadLatestVersion loads the latest persisted version.
// If there was a crash during the last commit, it is guaranteed
// to return a stable state, even if older.
func (s CommitStore) LoadLatestVersion() error {
	_, err := s.tree.Load()
	return err
}

// LatestVersion returns info on the latest version saved to disk
func (s CommitStore) LatestVersion() store.CommitID {
	return store.CommitID{
		Version: s.tree.Version(),
		Hash:    s.tree.Hash(),
	}
}
