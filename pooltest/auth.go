// Package pooltest provides mocks and doubles for testing the engine.
package pooltest

import (
	"context"
	"fmt"

	"github.com/commonpool/pool"
)

// Auth is a mock implementing x.Authenticator interface.
//
// This structure authenticates any of referenced conditions.
// You can use either Signer or Signers (or both) attributes to reference
// conditions. This is for the convenience and each time all signers
// (regardless which attribute) are considered.
type Auth struct {
	// Signer represents an authentication of a single signer. This is a
	// convenience attribute when creating an authentication method for a
	// single signer.
	// When authenticating all signers declared on this structure are
	// considered.
	Signer pool.Condition

	// Signers represents an authentication of multiple signers.
	Signers []pool.Condition
}

func (a *Auth) GetConditions(pool.Context) []pool.Condition {
	if a.Signer != nil {
		return append(a.Signers, a.Signer)
	}
	return a.Signers
}

func (a *Auth) HasAddress(ctx pool.Context, addr pool.Address) bool {
	for _, s := range a.Signers {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	if a.Signer == nil {
		return false
	}
	return addr.Equals(a.Signer.Address())
}

// CtxAuth is a mock implementing x.Authenticator interface.
//
// This implementation is using context to store and retrieve conditions.
// It allows simulating a different caller per invocation against the
// same handler wiring.
type CtxAuth struct {
	// Key used to set and retrieve conditions from the context. For
	// convenience only string type keys are allowed.
	Key string
}

func (a *CtxAuth) SetConditions(ctx pool.Context, conditions ...pool.Condition) pool.Context {
	return context.WithValue(ctx, ctxAuthKey(a.Key), conditions)
}

func (a *CtxAuth) GetConditions(ctx pool.Context) []pool.Condition {
	val := ctx.Value(ctxAuthKey(a.Key))
	if val == nil {
		return nil
	}
	conds, ok := val.([]pool.Condition)
	if !ok {
		panic(fmt.Sprintf("instead of []pool.Condition got %T", val))
	}
	return conds
}

func (a *CtxAuth) HasAddress(ctx pool.Context, addr pool.Address) bool {
	for _, s := range a.GetConditions(ctx) {
		if addr.Equals(s.Address()) {
			return true
		}
	}
	return false
}

type ctxAuthKey string
