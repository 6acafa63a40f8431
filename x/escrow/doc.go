/*
Package escrow implements the pooled-value escrow engine.

A creator opens an escrow with a target amount and a required number of
participants. Each participant joins by paying in exactly one equal
share, which is immediately staked with the yield adapter. The last
join completes the escrow and freezes the receipt balance as the yield
baseline. Once complete, every participant withdraws their receipts
plus a proportional share of any yield accrued above the baseline,
exactly once. While still open, the creator may cancel and refund every
joined participant in full.

The engine is the only writer of the escrow registry and the
contribution ledger. It moves native currency through a custody
controller and receipts through a yield adapter; both are injected at
construction and every operation runs inside a single atomic store
wrap, so a failure in either leaves no partial state behind.
*/
package escrow
