/*
Package x contains the interfaces shared between the engine extensions.

Sub-packages implement the actual functionality: x/custody holds native
value, x/yield converts principal into yield-bearing receipts, and
x/escrow runs the pooled escrow lifecycle.
*/
package x

import (
	"github.com/commonpool/pool"
)

// Authenticator is an interface we can use to extract authentication info
// from the context. This should be passed into the constructor of
// handlers, so we can plug in another authentication system,
// rather than hardcoding x/auth for all extensions.
type Authenticator interface {
	// GetConditions reveals all Conditions fulfilled,
	// you may want MainSigner()
	GetConditions(pool.Context) []pool.Condition

	// HasAddress checks if any condition matches this address
	HasAddress(pool.Context, pool.Address) bool
}

// MultiAuth chains together many authenticators into one
type MultiAuth struct {
	impls []Authenticator
}

var _ Authenticator = MultiAuth{}

// ChainAuth groups together a series of authenticators
func ChainAuth(impls ...Authenticator) MultiAuth {
	return MultiAuth{impls}
}

// GetConditions combines all Conditions from all sub-authenticators
func (m MultiAuth) GetConditions(ctx pool.Context) []pool.Condition {
	var res []pool.Condition
	for _, impl := range m.impls {
		add := impl.GetConditions(ctx)
		if len(add) > 0 {
			res = append(res, add...)
		}
	}
	// TODO: remove duplicates
	return res
}

// HasAddress returns true iff any sub-authenticator approves
func (m MultiAuth) HasAddress(ctx pool.Context, addr pool.Address) bool {
	for _, impl := range m.impls {
		if impl.HasAddress(ctx, addr) {
			return true
		}
	}
	return false
}

// MainSigner returns the first signed if any, otherwise nil
func MainSigner(ctx pool.Context, auth Authenticator) pool.Condition {
	signers := auth.GetConditions(ctx)
	if len(signers) == 0 {
		return nil
	}
	return signers[0]
}

// HasAllConditions returns true if all elements in required are
// also in context.
func HasAllConditions(ctx pool.Context, auth Authenticator, required []pool.Condition) bool {
	signers := auth.GetConditions(ctx)
	for _, req := range required {
		found := false
		for _, signer := range signers {
			if req.Equals(signer) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
