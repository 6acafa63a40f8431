/*
Package pool defines the core contracts of the pooled-value escrow
engine.

A group of participants each contribute a fixed share toward a target
amount. Once the target is reached the pooled principal is converted
into yield-bearing receipts; each participant later withdraws their
principal plus a proportional share of accrued yield, exactly once. A
creator may cancel an under-subscribed escrow, refunding everyone who
joined.

This package holds only the interfaces and value types shared by every
extension: the key-value store contracts, participant identities
(Condition and Address), and the message/handler plumbing. The engine
itself lives in x/escrow, value custody in x/custody, and the yield
conversion boundary in x/yield.
*/
package pool
