package yield

import (
	"github.com/commonpool/pool"
	"github.com/commonpool/pool/coin"
	"github.com/commonpool/pool/errors"
)

var (
	// ErrStakingFailed is returned when the yield source rejects an
	// inbound stake.
	ErrStakingFailed = errors.Register(1111, "staking failed")

	// ErrUnstakingFailed is returned when receipts cannot be redeemed
	// for native currency.
	ErrUnstakingFailed = errors.Register(1112, "unstaking failed")

	// ErrBalanceQueryFailed is returned when the receipt balance of an
	// account cannot be determined.
	ErrBalanceQueryFailed = errors.Register(1113, "balance query failed")
)

// Adapter is the boundary to the yield source. All amounts on the
// receipt side are denominated in receipts, which appreciate against
// the native currency as yield accrues.
type Adapter interface {
	// Stake locks amount of native currency held by account and
	// credits account with receipts. It returns the receipts issued.
	Stake(db pool.KVStore, account pool.Address, amount coin.Amount) (coin.Amount, error)

	// Unstake redeems receipts held by account for native currency,
	// credited back to account. It returns the native amount released.
	Unstake(db pool.KVStore, account pool.Address, receipts coin.Amount) (coin.Amount, error)

	// BalanceOf returns the current receipt balance of account.
	BalanceOf(db pool.ReadOnlyKVStore, account pool.Address) (coin.Amount, error)

	// Move transfers receipts from src to dst without redeeming them.
	Move(db pool.KVStore, src, dst pool.Address, receipts coin.Amount) error
}
