/*
Package yield abstracts the external yield source that pooled escrow
contributions are staked with.

The engine only ever talks to the Adapter interface: stake native
currency and get receipts, query a receipt balance, move receipts
between accounts and unstake receipts back into native currency. Any
yield accrued shows up as additional receipts on the staking account.

Two implementations ship with the package. Vault custodies staked value
in a reserve wallet and mints receipts one to one; yield enters the
system through an explicit deposit. Unit is a deterministic stand-in
for tests where no yield ever accrues and any call can be forced to
fail.
*/
package yield
