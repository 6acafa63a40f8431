package escrow

import (
	"github.com/commonpool/pool"
	"github.com/commonpool/pool/coin"
	"github.com/commonpool/pool/errors"
	"github.com/commonpool/pool/x/yield"
)

// Controller answers read-only queries against the escrow state. It
// shares bucket layouts with the handlers but never writes.
type Controller struct {
	state   state
	adapter yield.Adapter
}

// NewController returns a query controller using the given adapter for
// balance lookups.
func NewController(adapter yield.Adapter) Controller {
	return Controller{state: newState(), adapter: adapter}
}

// GetEscrowInfo returns the escrow registry record for the code.
func (c Controller) GetEscrowInfo(db pool.ReadOnlyKVStore, code []byte) (*Escrow, error) {
	return c.state.escrows.Load(db, code)
}

// GetParticipantStatus returns the participant's contribution in the
// escrow, including the withdrawn flag.
func (c Controller) GetParticipantStatus(db pool.ReadOnlyKVStore, code []byte, participant pool.Address) (*Contribution, error) {
	if _, err := c.state.escrows.Load(db, code); err != nil {
		return nil, err
	}
	contribution, err := c.state.contribs.Load(db, code, participant)
	if err != nil {
		return nil, err
	}
	if contribution == nil {
		return nil, errors.Wrapf(ErrParticipantNotFound, "%s", participant)
	}
	return contribution, nil
}

// ListUserEscrows returns the codes of all escrows the address joined,
// in join order. An address that never joined gets an empty list.
func (c Controller) ListUserEscrows(db pool.ReadOnlyKVStore, participant pool.Address) ([][]byte, error) {
	l, err := c.state.users.Load(db, participant)
	if err != nil {
		return nil, err
	}
	return l.Codes, nil
}

// GetParticipants returns the ordered list of addresses that joined
// the escrow.
func (c Controller) GetParticipants(db pool.ReadOnlyKVStore, code []byte) ([]pool.Address, error) {
	if _, err := c.state.escrows.Load(db, code); err != nil {
		return nil, err
	}
	l, err := c.state.parties.Load(db, code)
	if err != nil {
		return nil, err
	}
	return l.Addresses, nil
}

// PendingYield previews the participant's current yield share without
// mutating state. It is zero while the escrow is open and after the
// participant withdrew.
func (c Controller) PendingYield(db pool.ReadOnlyKVStore, code []byte, participant pool.Address) (coin.Amount, error) {
	escrow, err := c.state.escrows.Load(db, code)
	if err != nil {
		return 0, err
	}
	contribution, err := c.state.contribs.Load(db, code, participant)
	if err != nil {
		return 0, err
	}
	if contribution == nil {
		return 0, errors.Wrapf(ErrParticipantNotFound, "%s", participant)
	}
	if escrow.Status != Complete || contribution.Withdrawn {
		return 0, nil
	}
	payout, err := withdrawalAmount(db, c.adapter, Account(code), escrow, contribution)
	if err != nil {
		return 0, err
	}
	return payout.Sub(contribution.Receipts)
}

// Events returns all persisted lifecycle events in append order.
func (c Controller) Events(db pool.ReadOnlyKVStore) ([]*Event, error) {
	return c.state.events.List(db)
}
