package yield

import (
	"github.com/commonpool/pool"
	"github.com/commonpool/pool/coin"
	"github.com/commonpool/pool/errors"
	"github.com/commonpool/pool/orm"
)

const receiptSchema = 1

// Receipt is the receipt balance of a single address. Receipts are
// kept strictly separate from native wallets: they live in their own
// bucket and never mix with custody balances.
type Receipt struct {
	Balance coin.Amount
}

var _ orm.CloneableData = (*Receipt)(nil)

func (r *Receipt) Validate() error {
	return nil
}

func (r *Receipt) Copy() orm.CloneableData {
	return &Receipt{Balance: r.Balance}
}

func (r *Receipt) Marshal() ([]byte, error) {
	raw := []byte{receiptSchema}
	raw = append(raw, r.Balance.Marshal()...)
	return raw, nil
}

func (r *Receipt) Unmarshal(raw []byte) error {
	if len(raw) == 0 || raw[0] != receiptSchema {
		return errors.Wrap(errors.ErrInput, "receipt schema")
	}
	balance, rest, err := coin.ReadAmount(raw[1:])
	if err != nil {
		return errors.Wrap(err, "balance")
	}
	if len(rest) != 0 {
		return errors.Wrapf(errors.ErrInput, "%d trailing bytes", len(rest))
	}
	r.Balance = balance
	return nil
}

// AsReceipt extracts a *Receipt value or nil from the object.
func AsReceipt(obj orm.Object) *Receipt {
	if obj == nil || obj.Value() == nil {
		return nil
	}
	return obj.Value().(*Receipt)
}

// ReceiptBucket stores the receipt balance per address.
type ReceiptBucket struct {
	orm.Bucket
}

// NewReceiptBucket initializes a ReceiptBucket
func NewReceiptBucket() ReceiptBucket {
	return ReceiptBucket{
		Bucket: orm.NewBucket("receipt", orm.NewSimpleObj(nil, &Receipt{})),
	}
}

// Balance returns the receipt balance of addr, zero when absent.
func (b ReceiptBucket) Balance(db pool.ReadOnlyKVStore, addr pool.Address) (coin.Amount, error) {
	obj, err := b.Get(db, addr)
	if err != nil {
		return 0, err
	}
	r := AsReceipt(obj)
	if r == nil {
		return 0, nil
	}
	return r.Balance, nil
}

// Credit adds receipts to the balance of addr.
func (b ReceiptBucket) Credit(db pool.KVStore, addr pool.Address, receipts coin.Amount) error {
	balance, err := b.Balance(db, addr)
	if err != nil {
		return err
	}
	sum, err := balance.Add(receipts)
	if err != nil {
		return errors.Wrapf(err, "credit %s", addr)
	}
	return b.Save(db, orm.NewSimpleObj(addr, &Receipt{Balance: sum}))
}

// Debit removes receipts from the balance of addr, failing when the
// balance cannot cover it.
func (b ReceiptBucket) Debit(db pool.KVStore, addr pool.Address, receipts coin.Amount) error {
	balance, err := b.Balance(db, addr)
	if err != nil {
		return err
	}
	rest, err := balance.Sub(receipts)
	if err != nil {
		return errors.Wrapf(err, "debit %s", addr)
	}
	return b.Save(db, orm.NewSimpleObj(addr, &Receipt{Balance: rest}))
}
