package yield

import (
	"github.com/commonpool/pool"
	"github.com/commonpool/pool/coin"
	"github.com/commonpool/pool/errors"
	"github.com/commonpool/pool/x/custody"
)

// Unit is a deterministic Adapter for tests and local development.
// Staked value is simply parked on the staking account, receipts map
// one to one and no yield ever accrues. Every call can be forced to
// fail by setting the matching error field.
type Unit struct {
	bucket ReceiptBucket

	StakeErr   error
	UnstakeErr error
	BalanceErr error
	MoveErr    error
}

var _ Adapter = (*Unit)(nil)

// NewUnit returns a fresh unit adapter.
func NewUnit() *Unit {
	return &Unit{bucket: NewReceiptBucket()}
}

func (u *Unit) Stake(db pool.KVStore, account pool.Address, amount coin.Amount) (coin.Amount, error) {
	if u.StakeErr != nil {
		return 0, errors.Wrap(ErrStakingFailed, u.StakeErr.Error())
	}
	if err := u.bucket.Credit(db, account, amount); err != nil {
		return 0, errors.Wrap(ErrStakingFailed, err.Error())
	}
	return amount, nil
}

func (u *Unit) Unstake(db pool.KVStore, account pool.Address, receipts coin.Amount) (coin.Amount, error) {
	if u.UnstakeErr != nil {
		return 0, errors.Wrap(ErrUnstakingFailed, u.UnstakeErr.Error())
	}
	if err := u.bucket.Debit(db, account, receipts); err != nil {
		return 0, errors.Wrap(ErrUnstakingFailed, err.Error())
	}
	return receipts, nil
}

func (u *Unit) BalanceOf(db pool.ReadOnlyKVStore, account pool.Address) (coin.Amount, error) {
	if u.BalanceErr != nil {
		return 0, errors.Wrap(ErrBalanceQueryFailed, u.BalanceErr.Error())
	}
	balance, err := u.bucket.Balance(db, account)
	if err != nil {
		return 0, errors.Wrap(ErrBalanceQueryFailed, err.Error())
	}
	return balance, nil
}

func (u *Unit) Move(db pool.KVStore, src, dst pool.Address, receipts coin.Amount) error {
	if u.MoveErr != nil {
		return errors.Wrap(custody.ErrTransferFailed, u.MoveErr.Error())
	}
	if err := u.bucket.Debit(db, src, receipts); err != nil {
		return errors.Wrap(custody.ErrTransferFailed, err.Error())
	}
	if err := u.bucket.Credit(db, dst, receipts); err != nil {
		return errors.Wrap(custody.ErrTransferFailed, err.Error())
	}
	return nil
}

// Accrue mints receipts onto account out of thin air, simulating yield.
func (u *Unit) Accrue(db pool.KVStore, account pool.Address, receipts coin.Amount) error {
	return u.bucket.Credit(db, account, receipts)
}
