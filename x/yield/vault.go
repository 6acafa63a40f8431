package yield

import (
	"github.com/commonpool/pool"
	"github.com/commonpool/pool/coin"
	"github.com/commonpool/pool/errors"
	"github.com/commonpool/pool/x/custody"
)

// vaultReserve holds all native currency staked through the vault.
var vaultReserve = pool.NewCondition("yield", "vault", []byte("reserve")).Address()

// Vault is an Adapter that custodies staked value in a reserve wallet
// and tracks receipts one to one. Yield enters the system through
// DepositYield: a sponsor pays native currency into the reserve and the
// matching receipts are minted onto the target account, so its receipt
// balance grows past what it staked.
type Vault struct {
	coins  custody.CoinMover
	bucket ReceiptBucket
}

var _ Adapter = Vault{}

// NewVault returns a vault adapter moving native currency with the
// given controller.
func NewVault(coins custody.CoinMover) Vault {
	return Vault{
		coins:  coins,
		bucket: NewReceiptBucket(),
	}
}

// ReserveAddress returns the wallet address backing all receipts.
func (v Vault) ReserveAddress() pool.Address {
	return vaultReserve
}

// Stake locks amount in the reserve and credits account with the same
// number of receipts.
func (v Vault) Stake(db pool.KVStore, account pool.Address, amount coin.Amount) (coin.Amount, error) {
	if err := v.coins.MoveCoins(db, account, vaultReserve, amount); err != nil {
		return 0, errors.Wrap(ErrStakingFailed, err.Error())
	}
	if err := v.bucket.Credit(db, account, amount); err != nil {
		return 0, errors.Wrap(ErrStakingFailed, err.Error())
	}
	return amount, nil
}

// Unstake burns receipts held by account and releases the same amount
// of native currency from the reserve.
func (v Vault) Unstake(db pool.KVStore, account pool.Address, receipts coin.Amount) (coin.Amount, error) {
	if err := v.bucket.Debit(db, account, receipts); err != nil {
		return 0, errors.Wrap(ErrUnstakingFailed, err.Error())
	}
	if err := v.coins.MoveCoins(db, vaultReserve, account, receipts); err != nil {
		return 0, errors.Wrap(ErrUnstakingFailed, err.Error())
	}
	return receipts, nil
}

// BalanceOf returns the receipt balance of account.
func (v Vault) BalanceOf(db pool.ReadOnlyKVStore, account pool.Address) (coin.Amount, error) {
	balance, err := v.bucket.Balance(db, account)
	if err != nil {
		return 0, errors.Wrap(ErrBalanceQueryFailed, err.Error())
	}
	return balance, nil
}

// Move transfers receipts from src to dst without touching the reserve.
func (v Vault) Move(db pool.KVStore, src, dst pool.Address, receipts coin.Amount) error {
	if err := v.bucket.Debit(db, src, receipts); err != nil {
		return errors.Wrap(custody.ErrTransferFailed, err.Error())
	}
	if err := v.bucket.Credit(db, dst, receipts); err != nil {
		return errors.Wrap(custody.ErrTransferFailed, err.Error())
	}
	return nil
}

// DepositYield pays amount from the sponsor into the reserve and mints
// the matching receipts onto account. This is how staking rewards reach
// an escrow account.
func (v Vault) DepositYield(db pool.KVStore, sponsor, account pool.Address, amount coin.Amount) error {
	if err := v.coins.MoveCoins(db, sponsor, vaultReserve, amount); err != nil {
		return errors.Wrap(ErrStakingFailed, err.Error())
	}
	if err := v.bucket.Credit(db, account, amount); err != nil {
		return errors.Wrap(ErrStakingFailed, err.Error())
	}
	return nil
}
