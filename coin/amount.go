// Package coin provides the Amount value type used for both native
// currency and yield-bearing receipts.
//
// All arithmetic is integer arithmetic with explicit overflow checks.
// Proportional splits always round down: the engine must never
// over-distribute.
package coin

import (
	"fmt"
	"math/bits"

	"github.com/commonpool/pool/errors"
)

// Amount is a divisible semantic amount of a single instrument. There
// is no ticker: the engine deals with exactly one native currency and
// one kind of receipt, each kept in its own ledger.
type Amount uint64

// maxAmountWidth is the widest serialized magnitude we accept. The wire
// format is a multi-precision little-endian integer; this
// implementation represents values up to 8 bytes and rejects anything
// wider rather than silently truncating.
const maxAmountWidth = 8

// IsZero returns true if the amount is exactly zero.
func (a Amount) IsZero() bool {
	return a == 0
}

// IsPositive returns true if the amount is greater than zero.
func (a Amount) IsPositive() bool {
	return a > 0
}

// Add returns the sum, failing on overflow.
func (a Amount) Add(b Amount) (Amount, error) {
	sum := a + b
	if sum < a {
		return 0, errors.Wrapf(errors.ErrOverflow, "%d + %d", a, b)
	}
	return sum, nil
}

// Sub returns the difference, failing when the result would be
// negative.
func (a Amount) Sub(b Amount) (Amount, error) {
	if b > a {
		return 0, errors.Wrapf(errors.ErrAmount, "%d - %d is negative", a, b)
	}
	return a - b, nil
}

// Divide splits the amount into the given number of equal pieces and
// returns a single piece together with the indivisible remainder.
//   1000 / 4 -> 250, 0
//   1000 / 3 -> 333, 1
func (a Amount) Divide(pieces uint32) (Amount, Amount, error) {
	if pieces == 0 {
		return 0, 0, errors.Wrap(errors.ErrInput, "pieces must be greater than zero")
	}
	p := Amount(pieces)
	return a / p, a % p, nil
}

// Ratio returns floor(a * num / den). The intermediate product is
// computed in 128 bits, so the multiplication itself cannot overflow;
// only a quotient exceeding the Amount range is an error.
func (a Amount) Ratio(num, den Amount) (Amount, error) {
	if den == 0 {
		return 0, errors.Wrap(errors.ErrInput, "zero denominator")
	}
	hi, lo := bits.Mul64(uint64(a), uint64(num))
	if hi >= uint64(den) {
		return 0, errors.Wrapf(errors.ErrOverflow, "%d * %d / %d", a, num, den)
	}
	quo, _ := bits.Div64(hi, lo, uint64(den))
	return Amount(quo), nil
}

func (a Amount) String() string {
	return fmt.Sprintf("%d", a)
}

// Marshal encodes the amount as a multi-precision little-endian
// integer: one length byte followed by the minimal magnitude bytes.
// Zero encodes as a single zero length byte.
func (a Amount) Marshal() []byte {
	raw := make([]byte, 0, maxAmountWidth+1)
	raw = append(raw, 0)
	for v := uint64(a); v > 0; v >>= 8 {
		raw = append(raw, byte(v))
	}
	raw[0] = byte(len(raw) - 1)
	return raw
}

// ReadAmount consumes an encoded amount from the front of raw and
// returns the remaining bytes.
func ReadAmount(raw []byte) (Amount, []byte, error) {
	if len(raw) == 0 {
		return 0, nil, errors.Wrap(errors.ErrInput, "empty amount encoding")
	}
	width := int(raw[0])
	if width > maxAmountWidth {
		return 0, nil, errors.Wrapf(errors.ErrOverflow, "amount magnitude of %d bytes", width)
	}
	if len(raw) < 1+width {
		return 0, nil, errors.Wrapf(errors.ErrInput, "truncated amount: want %d magnitude bytes, got %d", width, len(raw)-1)
	}
	var v uint64
	for i := width - 1; i >= 0; i-- {
		v = v<<8 | uint64(raw[1+i])
	}
	// Reject non-minimal encodings so that every value has exactly one
	// byte representation.
	if width > 0 && raw[width] == 0 {
		return 0, nil, errors.Wrap(errors.ErrInput, "non-minimal amount encoding")
	}
	return Amount(v), raw[1+width:], nil
}
