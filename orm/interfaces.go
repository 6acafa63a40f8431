/*
Package orm provides an easy to use db wrapper

Break state space into prefixed sections called Buckets.
* Each bucket contains only one type of object.
* It has a primary index (which may be composite).
* Easy queries for one and iteration.
*/
package orm

import (
	"github.com/commonpool/pool"
)

// Persistent supports Marshal and Unmarshal
//
// Records serialize to a fixed-field binary layout: field order and
// widths must match across read and write paths exactly, since the
// store has no schema.
type Persistent interface {
	Marshal() ([]byte, error)
	Unmarshal(data []byte) error
}

// Validater is implemented by any entity that can self-validate
type Validater interface {
	Validate() error
}

// CloneableData is an intelligent Value that can be embedded
// in a simple object to full fill the Object interface
type CloneableData interface {
	Validater
	Persistent
	Copy() CloneableData
}

// Object is what is stored in the bucket
// Key is joined with the prefix to set the full key
// Value is the data stored
type Object interface {
	Validater

	Key() []byte
	Value() CloneableData

	// SetKey may be used to update a simple obj key
	SetKey([]byte)

	// Clone produces an empty copy of this object to load data into
	Clone() Object
}

// Reader defines an interface that allows reading objects from the db
type Reader interface {
	Get(db pool.ReadOnlyKVStore, key []byte) (Object, error)
}
