package custody

import (
	"github.com/commonpool/pool"
	"github.com/commonpool/pool/coin"
	"github.com/commonpool/pool/errors"
	"github.com/commonpool/pool/orm"
)

const walletSchema = 1

// Wallet is the native currency balance of a single address.
type Wallet struct {
	Balance coin.Amount
}

var _ orm.CloneableData = (*Wallet)(nil)

// Validate ensures the wallet is sensible
func (w *Wallet) Validate() error {
	// Any balance, including zero, is valid.
	return nil
}

// Copy makes a new wallet with the same balance
func (w *Wallet) Copy() orm.CloneableData {
	return &Wallet{Balance: w.Balance}
}

// Marshal serializes the wallet: schema byte, amount.
func (w *Wallet) Marshal() ([]byte, error) {
	raw := []byte{walletSchema}
	raw = append(raw, w.Balance.Marshal()...)
	return raw, nil
}

// Unmarshal restores a wallet from its serialized form.
func (w *Wallet) Unmarshal(raw []byte) error {
	if len(raw) == 0 || raw[0] != walletSchema {
		return errors.Wrap(errors.ErrInput, "wallet schema")
	}
	balance, rest, err := coin.ReadAmount(raw[1:])
	if err != nil {
		return errors.Wrap(err, "balance")
	}
	if len(rest) != 0 {
		return errors.Wrapf(errors.ErrInput, "%d trailing bytes", len(rest))
	}
	w.Balance = balance
	return nil
}

// AsWallet extracts a *Wallet value or nil from the object
// Must be called on a Bucket result that is a *Wallet,
// will panic on bad type.
func AsWallet(obj orm.Object) *Wallet {
	if obj == nil || obj.Value() == nil {
		return nil
	}
	return obj.Value().(*Wallet)
}

// WalletBucket is a type-safe wrapper around the wallet store.
type WalletBucket struct {
	orm.Bucket
}

// NewWalletBucket initializes a WalletBucket
func NewWalletBucket() WalletBucket {
	return WalletBucket{
		Bucket: orm.NewBucket("wallet", orm.NewSimpleObj(nil, &Wallet{})),
	}
}

// Get loads the wallet of given address, nil when absent.
func (b WalletBucket) Get(db pool.ReadOnlyKVStore, addr pool.Address) (orm.Object, error) {
	if err := addr.Validate(); err != nil {
		return nil, err
	}
	return b.Bucket.Get(db, addr)
}

// GetOrCreate loads the wallet of given address, creating an empty one
// when absent.
func (b WalletBucket) GetOrCreate(db pool.ReadOnlyKVStore, addr pool.Address) (orm.Object, error) {
	obj, err := b.Get(db, addr)
	if err == nil && obj == nil {
		obj = orm.NewSimpleObj(addr, &Wallet{})
	}
	return obj, err
}
