package escrow

import (
	"github.com/commonpool/pool"
	"github.com/commonpool/pool/coin"
	"github.com/commonpool/pool/errors"
)

const (
	pathCreate   = "escrow/create"
	pathJoin     = "escrow/join"
	pathWithdraw = "escrow/withdraw"
	pathCancel   = "escrow/cancel"
)

// CreateMsg opens a new escrow. The first signer becomes the creator.
type CreateMsg struct {
	// TargetTotal is the total principal the escrow collects.
	TargetTotal coin.Amount
	// ParticipantCount is the required number of joiners, at least 2.
	ParticipantCount uint32
}

var _ pool.Msg = (*CreateMsg)(nil)

func (CreateMsg) Path() string {
	return pathCreate
}

func (m *CreateMsg) Validate() error {
	if !m.TargetTotal.IsPositive() {
		return errors.Wrap(errors.ErrAmount, "target total must be positive")
	}
	if m.ParticipantCount < 2 {
		return errors.Wrapf(ErrInsufficientParticipants, "%d", m.ParticipantCount)
	}
	return nil
}

// JoinMsg contributes one share to an open escrow. The first signer is
// the participant.
type JoinMsg struct {
	Code []byte
	// Amount must equal the escrow share amount exactly.
	Amount coin.Amount
}

var _ pool.Msg = (*JoinMsg)(nil)

func (JoinMsg) Path() string {
	return pathJoin
}

func (m *JoinMsg) Validate() error {
	if err := validateCode(m.Code); err != nil {
		return err
	}
	if !m.Amount.IsPositive() {
		return errors.Wrap(errors.ErrAmount, "amount must be positive")
	}
	return nil
}

// WithdrawMsg pays out the first signer's principal plus yield share
// from a complete escrow.
type WithdrawMsg struct {
	Code []byte
}

var _ pool.Msg = (*WithdrawMsg)(nil)

func (WithdrawMsg) Path() string {
	return pathWithdraw
}

func (m *WithdrawMsg) Validate() error {
	return validateCode(m.Code)
}

// CancelMsg cancels an open escrow and refunds everyone who joined.
// Only the creator may sign it.
type CancelMsg struct {
	Code []byte
}

var _ pool.Msg = (*CancelMsg)(nil)

func (CancelMsg) Path() string {
	return pathCancel
}

func (m *CancelMsg) Validate() error {
	return validateCode(m.Code)
}
