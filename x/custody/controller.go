package custody

import (
	"github.com/commonpool/pool"
	"github.com/commonpool/pool/coin"
	"github.com/commonpool/pool/errors"
)

// CoinMover is the custody functionality needed by other extensions.
type CoinMover interface {
	// MoveCoins removes amount from src and adds it to dst.
	// Either both happen or neither does.
	MoveCoins(db pool.KVStore, src, dst pool.Address, amount coin.Amount) error
}

// Controller is the full custody interface, including issuance and
// balance queries for genesis setup and tests.
type Controller interface {
	CoinMover
	// IssueCoins creates amount out of thin air on dst.
	IssueCoins(db pool.KVStore, dst pool.Address, amount coin.Amount) error
	// Balance returns the current balance of an address. A missing
	// wallet reads as zero.
	Balance(db pool.ReadOnlyKVStore, addr pool.Address) (coin.Amount, error)
}

// BaseController implements Controller on top of a WalletBucket.
type BaseController struct {
	bucket WalletBucket
}

var _ Controller = BaseController{}

// NewController returns a base controller implementation.
func NewController(bucket WalletBucket) BaseController {
	return BaseController{bucket: bucket}
}

// Balance returns the amount held by addr, zero when no wallet exists.
func (c BaseController) Balance(db pool.ReadOnlyKVStore, addr pool.Address) (coin.Amount, error) {
	obj, err := c.bucket.Get(db, addr)
	if err != nil {
		return 0, err
	}
	w := AsWallet(obj)
	if w == nil {
		return 0, nil
	}
	return w.Balance, nil
}

// MoveCoins transfers amount from src to dst, failing without any
// partial effect when src cannot cover it.
func (c BaseController) MoveCoins(db pool.KVStore, src, dst pool.Address, amount coin.Amount) error {
	if !amount.IsPositive() {
		return errors.Wrap(ErrTransferFailed, "non-positive amount")
	}

	sender, err := c.bucket.Get(db, src)
	if err != nil {
		return err
	}
	sw := AsWallet(sender)
	if sw == nil {
		return errors.Wrapf(ErrTransferFailed, "no wallet for %s", src)
	}
	rest, err := sw.Balance.Sub(amount)
	if err != nil {
		return errors.Wrapf(ErrTransferFailed, "insufficient funds in %s", src)
	}
	// a covered transfer to self leaves everything as is
	if src.Equals(dst) {
		return nil
	}

	recipient, err := c.bucket.GetOrCreate(db, dst)
	if err != nil {
		return err
	}
	rw := AsWallet(recipient)
	sum, err := rw.Balance.Add(amount)
	if err != nil {
		return errors.Wrapf(ErrTransferFailed, "overflow in %s", dst)
	}

	sw.Balance = rest
	rw.Balance = sum
	if err := c.bucket.Save(db, sender); err != nil {
		return err
	}
	return c.bucket.Save(db, recipient)
}

// IssueCoins attempts to add the given amount to dst.
func (c BaseController) IssueCoins(db pool.KVStore, dst pool.Address, amount coin.Amount) error {
	recipient, err := c.bucket.GetOrCreate(db, dst)
	if err != nil {
		return err
	}
	w := AsWallet(recipient)
	sum, err := w.Balance.Add(amount)
	if err != nil {
		return errors.Wrapf(err, "issue to %s", dst)
	}
	w.Balance = sum
	return c.bucket.Save(db, recipient)
}
