package store

import (
	"bytes"
	"crypto/rand"
	"sort"
	"testing"
)

/*
TestSuite provides many methods that can be called in package-specific
test code. We just customize the store being tested (pass in
constructor), the rest of the logic is generic to the KVStore
interface.

This is intended in particular to remove duplication between
btree_test.go and iavl/adapter_test.go, but can be used for any
implementation of CacheableKVStore.
*/
type TestSuite struct {
	makeBase TestStoreConstructor
}

// TestStoreConstructor returns a fresh store and a cleanup function.
type TestStoreConstructor func() (base CacheableKVStore, cleanup func())

func NewTestSuite(constructor TestStoreConstructor) *TestSuite {
	return &TestSuite{
		makeBase: constructor,
	}
}

// GetSet does basic sanity checks on our cache
//
// Other tests should handle deletes, setting same value,
// iterating over ranges, and general fuzzing
func (s *TestSuite) GetSet(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	// make sure the store is empty at start but returns results
	// that are written to it
	k, v := []byte("french"), []byte("fry")
	s.assertGetHas(t, base, k, nil, false)
	base.Set(k, v)
	s.assertGetHas(t, base, k, v, true)

	// now layer a cache on top and make sure that we get base data
	cache := base.CacheWrap()
	s.assertGetHas(t, cache, k, v, true)

	// writing more data is only visible in the cache
	k2, v2 := []byte("LA"), []byte("Dodgers")
	s.assertGetHas(t, cache, k2, nil, false)
	cache.Set(k2, v2)
	s.assertGetHas(t, cache, k2, v2, true)
	s.assertGetHas(t, base, k2, nil, false)

	// we can write the cache to the base layer...
	cache.Write()
	s.assertGetHas(t, base, k, v, true)
	s.assertGetHas(t, base, k2, v2, true)

	// we can discard one
	k3, v3 := []byte("Bayern"), []byte("Munich")
	c2 := base.CacheWrap()
	s.assertGetHas(t, c2, k, v, true)
	s.assertGetHas(t, c2, k2, v2, true)
	c2.Set(k3, v3)
	c2.Discard()
	s.assertGetHas(t, base, k3, nil, false)

	// and commit another
	c3 := base.CacheWrap()
	s.assertGetHas(t, c3, k, v, true)
	s.assertGetHas(t, c3, k2, v2, true)
	c3.Delete(k)
	c3.Write()

	// make sure it commits proper
	s.assertGetHas(t, base, k, nil, false)
	s.assertGetHas(t, base, k2, v2, true)
	s.assertGetHas(t, base, k3, nil, false)
}

// CacheConflicts checks that we can handle
// overwriting values and deleting underlying values
func (s *TestSuite) CacheConflicts(t *testing.T) {
	// make 10 keys and 20 values....
	ks := randKeys(10, 16)
	vs := randKeys(20, 40)

	cases := map[string]struct {
		parentOps     []Op
		childOps      []Op
		parentQueries []Model // Key is what we query, Value is what we expect
		childQueries  []Model // Key is what we query, Value is what we expect
	}{
		"overwrite one, delete another, add a third": {
			parentOps:     []Op{SetOp(ks[1], vs[1]), SetOp(ks[2], vs[2])},
			childOps:      []Op{SetOp(ks[1], vs[11]), SetOp(ks[3], vs[7]), DelOp(ks[2])},
			parentQueries: []Model{Pair(ks[1], vs[1]), Pair(ks[2], vs[2]), Pair(ks[3], nil)},
			childQueries:  []Model{Pair(ks[1], vs[11]), Pair(ks[2], nil), Pair(ks[3], vs[7])},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			parent, cleanup := s.makeBase()
			defer cleanup()

			for _, op := range tc.parentOps {
				op.Apply(parent)
			}

			child := parent.CacheWrap()
			for _, op := range tc.childOps {
				op.Apply(child)
			}

			for _, q := range tc.childQueries {
				s.assertGetHas(t, child, q.Key, q.Value, q.Value != nil)
			}
			for _, q := range tc.parentQueries {
				s.assertGetHas(t, parent, q.Key, q.Value, q.Value != nil)
			}

			// write child to parent and make sure the merged
			// state answers like the child did
			child.Write()
			for _, q := range tc.childQueries {
				s.assertGetHas(t, parent, q.Key, q.Value, q.Value != nil)
			}
		})
	}
}

// Iteration ensures that ranges combine cache and backing data in the
// proper order, honoring deletes.
func (s *TestSuite) Iteration(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	expect := []Model{
		Pair([]byte("a"), []byte{1}),
		Pair([]byte("c"), []byte{3}),
		Pair([]byte("d"), []byte{4}),
		Pair([]byte("e"), []byte{5}),
	}

	base.Set([]byte("a"), []byte{1})
	base.Set([]byte("b"), []byte{2})
	base.Set([]byte("e"), []byte{5})

	cache := base.CacheWrap()
	cache.Set([]byte("c"), []byte{3})
	cache.Set([]byte("d"), []byte{4})
	cache.Delete([]byte("b"))

	var got []Model
	for it := cache.Iterator(nil, nil); it.Valid(); it.Next() {
		got = append(got, Pair(
			append([]byte(nil), it.Key()...),
			append([]byte(nil), it.Value()...),
		))
	}
	assertModels(t, expect, got)

	// reverse order as well
	var rev []Model
	for it := cache.ReverseIterator(nil, nil); it.Valid(); it.Next() {
		rev = append(rev, Pair(
			append([]byte(nil), it.Key()...),
			append([]byte(nil), it.Value()...),
		))
	}
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	assertModels(t, expect, rev)

	// bounded domain excludes the upper end
	var bounded []Model
	for it := cache.Iterator([]byte("b"), []byte("d")); it.Valid(); it.Next() {
		bounded = append(bounded, Pair(
			append([]byte(nil), it.Key()...),
			append([]byte(nil), it.Value()...),
		))
	}
	assertModels(t, []Model{Pair([]byte("c"), []byte{3})}, bounded)
}

func (s *TestSuite) assertGetHas(t testing.TB, kv ReadOnlyKVStore, key, val []byte, has bool) {
	t.Helper()
	got := kv.Get(key)
	if !bytes.Equal(got, val) {
		t.Fatalf("value mismatch for key %X: want %X, got %X", key, val, got)
	}
	if kv.Has(key) != has {
		t.Fatalf("presence mismatch for key %X: want %v", key, has)
	}
}

func assertModels(t testing.TB, want, got []Model) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("want %d pairs, got %d", len(want), len(got))
	}
	for i := range want {
		if !bytes.Equal(want[i].Key, got[i].Key) || !bytes.Equal(want[i].Value, got[i].Value) {
			t.Fatalf("pair %d mismatch: want %X=%X, got %X=%X",
				i, want[i].Key, want[i].Value, got[i].Key, got[i].Value)
		}
	}
}

// randKeys returns a slice of count random byte slices of given length.
// All are sorted and unique.
func randKeys(count, length int) [][]byte {
	res := make([][]byte, count)
	for i := 0; i < count; i++ {
		res[i] = make([]byte, length)
		rand.Read(res[i])
	}
	sort.Slice(res, func(i, j int) bool {
		return bytes.Compare(res[i], res[j]) < 0
	})
	return res
}
