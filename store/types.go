//nolint
package store

import "github.com/commonpool/pool"

// Move references for all storage types into this package
// for shorter names everywhere

type ReadOnlyKVStore = pool.ReadOnlyKVStore
type SetDeleter = pool.SetDeleter
type KVStore = pool.KVStore
type Batch = pool.Batch
type Iterator = pool.Iterator
type CacheableKVStore = pool.CacheableKVStore
type KVCacheWrap = pool.KVCacheWrap
type CommitKVStore = pool.CommitKVStore
type CommitID = pool.CommitID
type Model = pool.Model

// Pair constructs a Model from a key-value pair, test helper.
func Pair(key, value []byte) Model {
	return Model{
		Key:   key,
		Value: value,
	}
}
