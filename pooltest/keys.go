package pooltest

import (
	"crypto/rand"

	"github.com/commonpool/pool"
)

// NewCondition returns a random condition, unique with a very high
// probability. Tests do not need real signature verification, only
// distinct identities.
func NewCondition() pool.Condition {
	data := make([]byte, 32)
	if _, err := rand.Read(data); err != nil {
		panic(err)
	}
	return pool.NewCondition("sigs", "ed25519", data)
}

// NewAddress returns the address of a random condition.
func NewAddress() pool.Address {
	return NewCondition().Address()
}

// SequenceID returns an ID encoded as if it was generated by an
// orm.Sequence.
func SequenceID(n uint64) []byte {
	b := []byte{0, 0, 0, 0, 0, 0, 0, 0}
	for i := 7; n > 0; i-- {
		b[i] = byte(n)
		n >>= 8
	}
	return b
}
