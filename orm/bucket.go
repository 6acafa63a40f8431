package orm

import (
	"fmt"
	"regexp"

	"github.com/commonpool/pool"
	"github.com/commonpool/pool/errors"
)

var isBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString

// Bucket is a generic holder that stores data as well
// as references to sequences.
//
// This is a generic building block that should generally
// be embedded in a type-safe wrapper to ensure all data
// is the same type.
// Bucket is a prefixed subspace of the DB
// proto defines the default Model, all elements of this type
type Bucket struct {
	name   string
	prefix []byte
	proto  Object
}

// NewBucket creates a bucket to store data
func NewBucket(name string, proto Object) Bucket {
	if !isBucketName(name) {
		panic(fmt.Sprintf("Illegal bucket: %s", name))
	}

	return Bucket{
		name:   name,
		prefix: append([]byte(name), ':'),
		proto:  proto,
	}
}

// Name returns the name of the bucket
func (b Bucket) Name() string {
	return b.name
}

// DBKey is the full key we store in the db, including prefix
// We copy into a new array rather than use append, as we don't
// want consecutive calls to overwrite the same byte array.
func (b Bucket) DBKey(key []byte) []byte {
	l := len(b.prefix)
	out := make([]byte, l+len(key))
	copy(out, b.prefix)
	copy(out[l:], key)
	return out
}

// Get one element
func (b Bucket) Get(db pool.ReadOnlyKVStore, key []byte) (Object, error) {
	dbkey := b.DBKey(key)
	bz := db.Get(dbkey)
	if bz == nil {
		return nil, nil
	}
	return b.Parse(key, bz)
}

// Parse takes a key and value data and reconstructs the data this
// Bucket would return.
//
// Used internally as part of Get.
// It is exposed mainly as a test helper, but can work for
// any code that wants to parse
func (b Bucket) Parse(key, value []byte) (Object, error) {
	obj := b.proto.Clone()
	if err := obj.Value().Unmarshal(value); err != nil {
		return nil, errors.Wrap(err, "parsing model")
	}
	obj.SetKey(key)
	return obj, nil
}

// Save will write the model, it must be of the same type as proto
func (b Bucket) Save(db pool.KVStore, model Object) error {
	err := model.Validate()
	if err != nil {
		return errors.Wrap(err, "invalid model")
	}

	bz, err := model.Value().Marshal()
	if err != nil {
		return errors.Wrap(err, "cannot serialize model")
	}
	db.Set(b.DBKey(model.Key()), bz)
	return nil
}

// Delete removes the given key from the bucket
func (b Bucket) Delete(db pool.KVStore, key []byte) error {
	dbkey := b.DBKey(key)
	db.Delete(dbkey)
	return nil
}

// Sequence returns a Sequence by name
func (b Bucket) Sequence(name string) Sequence {
	return NewSequence(b.name, name)
}

// Iterator returns an ascending iterator over all models stored in
// this bucket. Keys are returned without the bucket prefix.
func (b Bucket) Iterator(db pool.ReadOnlyKVStore) ObjectIterator {
	start, end := prefixRange(b.prefix)
	return ObjectIterator{
		bucket: b,
		iter:   db.Iterator(start, end),
	}
}

// ObjectIterator walks the raw iterator results and parses them into
// bucket objects.
type ObjectIterator struct {
	bucket Bucket
	iter   pool.Iterator
}

// Valid returns true while there is data left to read
func (o ObjectIterator) Valid() bool {
	return o.iter.Valid()
}

// Next advances the cursor
func (o ObjectIterator) Next() {
	o.iter.Next()
}

// Close releases the underlying iterator
func (o ObjectIterator) Close() {
	o.iter.Close()
}

// Load parses the current position into an Object
func (o ObjectIterator) Load() (Object, error) {
	key := o.iter.Key()[len(o.bucket.prefix):]
	return o.bucket.Parse(
		append([]byte(nil), key...),
		append([]byte(nil), o.iter.Value()...),
	)
}

// prefixRange turns a prefix into (start, end) to create
// and iterator
func prefixRange(prefix []byte) ([]byte, []byte) {
	// special case: no prefix is whole range
	if len(prefix) == 0 {
		return nil, nil
	}

	// copy the prefix and update last byte
	end := make([]byte, len(prefix))
	copy(end, prefix)
	l := len(end) - 1
	end[l]++

	// wait, what if that overflowed the last byte? then we need to carry...
	for l > 0 && end[l] == 0 {
		l--
		end[l]++
	}

	// okay, funny guy, you gave us FFF, no end to this range...
	if l == 0 && end[0] == 0 {
		end = nil
	}
	return prefix, end
}
