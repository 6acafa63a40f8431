package escrow

import "github.com/commonpool/pool/errors"

var (
	// ErrInsufficientParticipants is returned when an escrow is created
	// with fewer than two participants.
	ErrInsufficientParticipants = errors.Register(1100, "insufficient participants")

	// ErrEscrowNotFound is returned when no escrow exists under the
	// given code.
	ErrEscrowNotFound = errors.Register(1101, "escrow not found")

	// ErrAlreadyJoined is returned when a participant tries to join the
	// same escrow a second time.
	ErrAlreadyJoined = errors.Register(1102, "already joined")

	// ErrIncorrectAmount is returned when a join payment differs from
	// the escrow share amount.
	ErrIncorrectAmount = errors.Register(1103, "incorrect amount")

	// ErrEscrowAlreadyFinalized is returned when joining an escrow that
	// is no longer open.
	ErrEscrowAlreadyFinalized = errors.Register(1104, "escrow already finalized")

	// ErrNotCreator is returned when anyone but the creator tries to
	// cancel an escrow.
	ErrNotCreator = errors.Register(1105, "not the escrow creator")

	// ErrCannotCancel is returned when cancelling an escrow that is no
	// longer open.
	ErrCannotCancel = errors.Register(1106, "cannot cancel")

	// ErrParticipantNotFound is returned when the caller has no
	// contribution in the escrow.
	ErrParticipantNotFound = errors.Register(1107, "participant not found")

	// ErrAlreadyWithdrawn is returned on a second withdrawal attempt.
	ErrAlreadyWithdrawn = errors.Register(1108, "already withdrawn")

	// ErrEscrowNotComplete is returned when withdrawing from an escrow
	// that has not reached its participant count.
	ErrEscrowNotComplete = errors.Register(1109, "escrow not complete")
)
