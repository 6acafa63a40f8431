/*
Package custody implements value custody: it holds native currency in
addressable accounts and supports moving value between them with
all-or-nothing semantics.

Escrow custody accounts and participant accounts are both plain wallet
entries; an address is an address. The escrow engine is handed a
Controller and never touches wallets directly.
*/
package custody
