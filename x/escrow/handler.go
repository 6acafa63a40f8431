package escrow

import (
	"github.com/commonpool/pool"
	"github.com/commonpool/pool/coin"
	"github.com/commonpool/pool/errors"
	"github.com/commonpool/pool/orm"
	"github.com/commonpool/pool/x"
	"github.com/commonpool/pool/x/custody"
	"github.com/commonpool/pool/x/yield"
)

const (
	createCost   int64 = 300
	joinCost     int64 = 200
	withdrawCost int64 = 200
	// cancel pays per refunded participant on top of the base cost
	cancelCost       int64 = 100
	cancelRefundCost int64 = 50
)

// RegisterRoutes will instantiate and register all handlers in this
// package.
func RegisterRoutes(r pool.Registry, auth x.Authenticator, coins custody.CoinMover, adapter yield.Adapter) {
	state := newState()
	r.Handle(pathCreate, CreateHandler{auth: auth, state: state})
	r.Handle(pathJoin, JoinHandler{auth: auth, state: state, coins: coins, adapter: adapter})
	r.Handle(pathWithdraw, WithdrawHandler{auth: auth, state: state, adapter: adapter})
	r.Handle(pathCancel, CancelHandler{auth: auth, state: state, coins: coins, adapter: adapter})
}

// state bundles the buckets every handler works against.
type state struct {
	escrows  EscrowBucket
	contribs ContributionBucket
	parties  ParticipantBucket
	users    UserBucket
	events   Emitter
}

func newState() state {
	return state{
		escrows:  NewEscrowBucket(),
		contribs: NewContributionBucket(),
		parties:  NewParticipantBucket(),
		users:    NewUserBucket(),
		events:   NewEmitter(),
	}
}

// CreateHandler opens new escrows.
type CreateHandler struct {
	auth  x.Authenticator
	state state
}

var _ pool.Handler = CreateHandler{}

func (h CreateHandler) Check(ctx pool.Context, db pool.KVStore, tx pool.Tx) (*pool.CheckResult, error) {
	if _, _, err := h.validate(ctx, tx); err != nil {
		return nil, err
	}
	return &pool.CheckResult{GasAllocated: createCost}, nil
}

func (h CreateHandler) Deliver(ctx pool.Context, db pool.KVStore, tx pool.Tx) (*pool.DeliverResult, error) {
	msg, creator, err := h.validate(ctx, tx)
	if err != nil {
		return nil, err
	}
	now, err := pool.BlockTime(ctx)
	if err != nil {
		return nil, err
	}

	share, _, err := msg.TargetTotal.Divide(msg.ParticipantCount)
	if err != nil {
		return nil, err
	}
	escrow := &Escrow{
		Creator:          creator,
		TargetTotal:      msg.TargetTotal,
		ShareAmount:      share,
		ParticipantCount: msg.ParticipantCount,
		Status:           Open,
		CreatedAt:        now.Unix(),
	}
	code, err := h.state.escrows.Create(db, escrow)
	if err != nil {
		return nil, err
	}
	// start the participant list so cancel always finds a record
	if err := h.state.parties.Save(db, orm.NewSimpleObj(code, &ParticipantList{})); err != nil {
		return nil, err
	}

	_ = h.state.events.Emit(db, &Event{
		Topic:   TopicEscrowCreated,
		Code:    code,
		Subject: creator,
		Amount:  msg.TargetTotal,
		Time:    now.Unix(),
	})

	return &pool.DeliverResult{Data: code}, nil
}

func (h CreateHandler) validate(ctx pool.Context, tx pool.Tx) (*CreateMsg, pool.Address, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, nil, err
	}
	create, ok := msg.(*CreateMsg)
	if !ok {
		return nil, nil, errors.Wrapf(errors.ErrMsg, "%T", msg)
	}
	if err := create.Validate(); err != nil {
		return nil, nil, err
	}
	creator := x.MainSigner(ctx, h.auth)
	if creator == nil {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "no signer")
	}
	return create, creator.Address(), nil
}

// JoinHandler contributes one share to an open escrow.
type JoinHandler struct {
	auth    x.Authenticator
	state   state
	coins   custody.CoinMover
	adapter yield.Adapter
}

var _ pool.Handler = JoinHandler{}

func (h JoinHandler) Check(ctx pool.Context, db pool.KVStore, tx pool.Tx) (*pool.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &pool.CheckResult{GasAllocated: joinCost}, nil
}

func (h JoinHandler) Deliver(ctx pool.Context, db pool.KVStore, tx pool.Tx) (*pool.DeliverResult, error) {
	msg, escrow, participant, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := pool.BlockTime(ctx)
	if err != nil {
		return nil, err
	}

	// The transfer and the stake are the only fallible steps after
	// validation. Either failure aborts the invocation before any
	// ledger write.
	account := Account(msg.Code)
	if err := h.coins.MoveCoins(db, participant, account, msg.Amount); err != nil {
		return nil, err
	}
	receipts, err := h.adapter.Stake(db, account, msg.Amount)
	if err != nil {
		return nil, err
	}

	contribution := &Contribution{
		Participant: participant,
		Principal:   msg.Amount,
		Receipts:    receipts,
	}
	if err := h.state.contribs.Save(db, msg.Code, contribution); err != nil {
		return nil, err
	}
	if err := h.state.parties.Append(db, msg.Code, participant); err != nil {
		return nil, err
	}
	if err := h.state.users.Append(db, participant, msg.Code); err != nil {
		return nil, err
	}

	escrow.JoinedCount++
	escrow.AccumulatedReceipts, err = escrow.AccumulatedReceipts.Add(receipts)
	if err != nil {
		return nil, err
	}
	completed := escrow.JoinedCount == escrow.ParticipantCount
	if completed {
		escrow.Status = Complete
		escrow.YieldBaseline = escrow.AccumulatedReceipts
	}
	if err := h.state.escrows.Save(db, orm.NewSimpleObj(msg.Code, escrow)); err != nil {
		return nil, err
	}

	_ = h.state.events.Emit(db, &Event{
		Topic:   TopicParticipantJoined,
		Code:    msg.Code,
		Subject: participant,
		Amount:  msg.Amount,
		Count:   escrow.JoinedCount,
		Time:    now.Unix(),
	})
	if completed {
		_ = h.state.events.Emit(db, &Event{
			Topic:  TopicEscrowCompleted,
			Code:   msg.Code,
			Amount: escrow.YieldBaseline,
			Count:  escrow.JoinedCount,
			Time:   now.Unix(),
		})
	}

	return &pool.DeliverResult{Data: msg.Code}, nil
}

// validate checks the join preconditions in their fixed order: the
// escrow exists, is still open, the caller has not joined yet and pays
// the exact share.
func (h JoinHandler) validate(ctx pool.Context, db pool.KVStore, tx pool.Tx) (*JoinMsg, *Escrow, pool.Address, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, nil, nil, err
	}
	join, ok := msg.(*JoinMsg)
	if !ok {
		return nil, nil, nil, errors.Wrapf(errors.ErrMsg, "%T", msg)
	}
	if err := join.Validate(); err != nil {
		return nil, nil, nil, err
	}
	signer := x.MainSigner(ctx, h.auth)
	if signer == nil {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "no signer")
	}
	participant := signer.Address()

	escrow, err := h.state.escrows.Load(db, join.Code)
	if err != nil {
		return nil, nil, nil, err
	}
	if escrow.Status != Open {
		return nil, nil, nil, errors.Wrapf(ErrEscrowAlreadyFinalized, "status %s", escrow.Status)
	}
	existing, err := h.state.contribs.Load(db, join.Code, participant)
	if err != nil {
		return nil, nil, nil, err
	}
	if existing != nil {
		return nil, nil, nil, errors.Wrapf(ErrAlreadyJoined, "%s", participant)
	}
	if join.Amount != escrow.ShareAmount {
		return nil, nil, nil, errors.Wrapf(ErrIncorrectAmount, "want %s, got %s", escrow.ShareAmount, join.Amount)
	}
	return join, escrow, participant, nil
}

// WithdrawHandler pays out one participant from a complete escrow.
type WithdrawHandler struct {
	auth    x.Authenticator
	state   state
	adapter yield.Adapter
}

var _ pool.Handler = WithdrawHandler{}

func (h WithdrawHandler) Check(ctx pool.Context, db pool.KVStore, tx pool.Tx) (*pool.CheckResult, error) {
	if _, _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &pool.CheckResult{GasAllocated: withdrawCost}, nil
}

func (h WithdrawHandler) Deliver(ctx pool.Context, db pool.KVStore, tx pool.Tx) (*pool.DeliverResult, error) {
	msg, contribution, escrow, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := pool.BlockTime(ctx)
	if err != nil {
		return nil, err
	}

	account := Account(msg.Code)
	payout, err := withdrawalAmount(db, h.adapter, account, escrow, contribution)
	if err != nil {
		return nil, err
	}
	if err := h.adapter.Move(db, account, contribution.Participant, payout); err != nil {
		return nil, err
	}
	// The flag is the last write: a failed transfer leaves the
	// participant able to retry, a successful one is never replayable.
	contribution.Withdrawn = true
	if err := h.state.contribs.Save(db, msg.Code, contribution); err != nil {
		return nil, err
	}
	escrow.WithdrawnReceipts, err = escrow.WithdrawnReceipts.Add(payout)
	if err != nil {
		return nil, err
	}
	if err := h.state.escrows.Save(db, orm.NewSimpleObj(msg.Code, escrow)); err != nil {
		return nil, err
	}

	_ = h.state.events.Emit(db, &Event{
		Topic:   TopicWithdrawalMade,
		Code:    msg.Code,
		Subject: contribution.Participant,
		Amount:  payout,
		Time:    now.Unix(),
	})

	return &pool.DeliverResult{Data: payout.Marshal()}, nil
}

func (h WithdrawHandler) validate(ctx pool.Context, db pool.KVStore, tx pool.Tx) (*WithdrawMsg, *Contribution, *Escrow, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, nil, nil, err
	}
	withdraw, ok := msg.(*WithdrawMsg)
	if !ok {
		return nil, nil, nil, errors.Wrapf(errors.ErrMsg, "%T", msg)
	}
	if err := withdraw.Validate(); err != nil {
		return nil, nil, nil, err
	}
	signer := x.MainSigner(ctx, h.auth)
	if signer == nil {
		return nil, nil, nil, errors.Wrap(errors.ErrUnauthorized, "no signer")
	}

	escrow, err := h.state.escrows.Load(db, withdraw.Code)
	if err != nil {
		return nil, nil, nil, err
	}
	if escrow.Status != Complete {
		return nil, nil, nil, errors.Wrapf(ErrEscrowNotComplete, "status %s", escrow.Status)
	}
	contribution, err := h.state.contribs.Load(db, withdraw.Code, signer.Address())
	if err != nil {
		return nil, nil, nil, err
	}
	if contribution == nil {
		return nil, nil, nil, errors.Wrapf(ErrParticipantNotFound, "%s", signer.Address())
	}
	if contribution.Withdrawn {
		return nil, nil, nil, errors.Wrapf(ErrAlreadyWithdrawn, "%s", signer.Address())
	}
	return withdraw, contribution, escrow, nil
}

// withdrawalAmount computes receipts plus the proportional yield share:
// floor(total_yield * receipts / baseline) against the frozen baseline.
// Receipts already paid out are added back to the account balance, so
// every participant sees the same total yield regardless of how many
// withdrew before them. A total below the baseline reads as zero
// yield, not as an error.
func withdrawalAmount(db pool.ReadOnlyKVStore, adapter yield.Adapter, account pool.Address, escrow *Escrow, c *Contribution) (coin.Amount, error) {
	current, err := adapter.BalanceOf(db, account)
	if err != nil {
		return 0, err
	}
	total, err := current.Add(escrow.WithdrawnReceipts)
	if err != nil {
		return 0, err
	}
	var totalYield coin.Amount
	if total > escrow.YieldBaseline {
		totalYield = total - escrow.YieldBaseline
	}
	var share coin.Amount
	if escrow.YieldBaseline.IsPositive() {
		share, err = totalYield.Ratio(c.Receipts, escrow.YieldBaseline)
		if err != nil {
			return 0, err
		}
	}
	return c.Receipts.Add(share)
}

// CancelHandler refunds every joined participant and closes the
// escrow.
type CancelHandler struct {
	auth    x.Authenticator
	state   state
	coins   custody.CoinMover
	adapter yield.Adapter
}

var _ pool.Handler = CancelHandler{}

func (h CancelHandler) Check(ctx pool.Context, db pool.KVStore, tx pool.Tx) (*pool.CheckResult, error) {
	_, escrow, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	gas := cancelCost + int64(escrow.JoinedCount)*cancelRefundCost
	return &pool.CheckResult{GasAllocated: gas}, nil
}

func (h CancelHandler) Deliver(ctx pool.Context, db pool.KVStore, tx pool.Tx) (*pool.DeliverResult, error) {
	msg, escrow, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	now, err := pool.BlockTime(ctx)
	if err != nil {
		return nil, err
	}

	// Refunds are all or nothing: any single failure aborts the whole
	// cancellation and the store wrap discards the refunds already
	// applied.
	account := Account(msg.Code)
	parties, err := h.state.parties.Load(db, msg.Code)
	if err != nil {
		return nil, err
	}
	for _, participant := range parties.Addresses {
		contribution, err := h.state.contribs.Load(db, msg.Code, participant)
		if err != nil {
			return nil, err
		}
		if contribution == nil {
			return nil, errors.Wrapf(ErrParticipantNotFound, "%s", participant)
		}
		principal, err := h.adapter.Unstake(db, account, contribution.Receipts)
		if err != nil {
			return nil, err
		}
		if err := h.coins.MoveCoins(db, account, participant, principal); err != nil {
			return nil, err
		}
	}

	escrow.Status = Cancelled
	if err := h.state.escrows.Save(db, orm.NewSimpleObj(msg.Code, escrow)); err != nil {
		return nil, err
	}

	_ = h.state.events.Emit(db, &Event{
		Topic:   TopicEscrowCancelled,
		Code:    msg.Code,
		Subject: escrow.Creator,
		Count:   uint32(len(parties.Addresses)),
		Time:    now.Unix(),
	})

	return &pool.DeliverResult{Log: "cancelled"}, nil
}

func (h CancelHandler) validate(ctx pool.Context, db pool.KVStore, tx pool.Tx) (*CancelMsg, *Escrow, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, nil, err
	}
	cancel, ok := msg.(*CancelMsg)
	if !ok {
		return nil, nil, errors.Wrapf(errors.ErrMsg, "%T", msg)
	}
	if err := cancel.Validate(); err != nil {
		return nil, nil, err
	}

	escrow, err := h.state.escrows.Load(db, cancel.Code)
	if err != nil {
		return nil, nil, err
	}
	if !h.auth.HasAddress(ctx, escrow.Creator) {
		return nil, nil, errors.Wrapf(ErrNotCreator, "escrow %X", cancel.Code)
	}
	if escrow.Status != Open {
		return nil, nil, errors.Wrapf(ErrCannotCancel, "status %s", escrow.Status)
	}
	return cancel, escrow, nil
}
