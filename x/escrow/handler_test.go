package escrow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commonpool/pool"
	"github.com/commonpool/pool/coin"
	poolerr "github.com/commonpool/pool/errors"
	"github.com/commonpool/pool/orm"
	"github.com/commonpool/pool/pooltest"
	"github.com/commonpool/pool/store"
	"github.com/commonpool/pool/x/custody"
	"github.com/commonpool/pool/x/yield"
)

var blockNow = time.Unix(1600000000, 0)

type env struct {
	t     *testing.T
	db    pool.CacheableKVStore
	ctx   pool.Context
	auth  *pooltest.CtxAuth
	coins custody.BaseController
	unit  *yield.Unit
	state state

	create   pool.Handler
	join     pool.Handler
	withdraw pool.Handler
	cancel   pool.Handler
}

func newEnv(t *testing.T) *env {
	t.Helper()
	auth := &pooltest.CtxAuth{Key: "auth"}
	coins := custody.NewController(custody.NewWalletBucket())
	unit := yield.NewUnit()
	st := newState()
	return &env{
		t:        t,
		db:       store.MemStore(),
		ctx:      pool.WithBlockTime(context.Background(), blockNow),
		auth:     auth,
		coins:    coins,
		unit:     unit,
		state:    st,
		create:   CreateHandler{auth: auth, state: st},
		join:     JoinHandler{auth: auth, state: st, coins: coins, adapter: unit},
		withdraw: WithdrawHandler{auth: auth, state: st, adapter: unit},
		cancel:   CancelHandler{auth: auth, state: st, coins: coins, adapter: unit},
	}
}

func (e *env) as(signer pool.Condition) pool.Context {
	return e.auth.SetConditions(e.ctx, signer)
}

func (e *env) fund(addr pool.Address, amount coin.Amount) {
	e.t.Helper()
	require.NoError(e.t, e.coins.IssueCoins(e.db, addr, amount))
}

func (e *env) balance(addr pool.Address) coin.Amount {
	e.t.Helper()
	balance, err := e.coins.Balance(e.db, addr)
	require.NoError(e.t, err)
	return balance
}

func (e *env) createEscrow(creator pool.Condition, total coin.Amount, count uint32) []byte {
	e.t.Helper()
	res, err := e.create.Deliver(e.as(creator), e.db, &pooltest.Tx{
		Msg: &CreateMsg{TargetTotal: total, ParticipantCount: count},
	})
	require.NoError(e.t, err)
	require.Len(e.t, res.Data, CodeLength)
	return res.Data
}

func (e *env) joinEscrow(p pool.Condition, code []byte, amount coin.Amount) error {
	e.t.Helper()
	_, err := e.join.Deliver(e.as(p), e.db, &pooltest.Tx{
		Msg: &JoinMsg{Code: code, Amount: amount},
	})
	return err
}

func (e *env) loadEscrow(code []byte) *Escrow {
	e.t.Helper()
	escrow, err := e.state.escrows.Load(e.db, code)
	require.NoError(e.t, err)
	return escrow
}

func TestCreateEscrow(t *testing.T) {
	e := newEnv(t)
	creator := pooltest.NewCondition()

	code := e.createEscrow(creator, 1000, 4)

	escrow := e.loadEscrow(code)
	assert.Equal(t, creator.Address(), escrow.Creator)
	assert.Equal(t, coin.Amount(1000), escrow.TargetTotal)
	assert.Equal(t, coin.Amount(250), escrow.ShareAmount)
	assert.Equal(t, uint32(4), escrow.ParticipantCount)
	assert.Equal(t, uint32(0), escrow.JoinedCount)
	assert.Equal(t, Open, escrow.Status)
	assert.Equal(t, coin.Amount(0), escrow.YieldBaseline)
	assert.Equal(t, blockNow.Unix(), escrow.CreatedAt)

	// identical arguments must still yield a distinct code
	other := e.createEscrow(creator, 1000, 4)
	assert.NotEqual(t, code, other)
}

func TestCreateEscrowShareRemainderDropped(t *testing.T) {
	e := newEnv(t)
	code := e.createEscrow(pooltest.NewCondition(), 1000, 3)
	assert.Equal(t, coin.Amount(333), e.loadEscrow(code).ShareAmount)
}

func TestCreateEscrowErrors(t *testing.T) {
	e := newEnv(t)
	creator := pooltest.NewCondition()

	cases := map[string]struct {
		ctx     pool.Context
		msg     pool.Msg
		wantErr *poolerr.Error
	}{
		"too few participants": {
			ctx:     e.as(creator),
			msg:     &CreateMsg{TargetTotal: 1000, ParticipantCount: 1},
			wantErr: ErrInsufficientParticipants,
		},
		"zero target": {
			ctx:     e.as(creator),
			msg:     &CreateMsg{TargetTotal: 0, ParticipantCount: 2},
			wantErr: poolerr.ErrAmount,
		},
		"no signer": {
			ctx:     e.ctx,
			msg:     &CreateMsg{TargetTotal: 1000, ParticipantCount: 2},
			wantErr: poolerr.ErrUnauthorized,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := e.create.Check(tc.ctx, e.db, &pooltest.Tx{Msg: tc.msg})
			assert.True(t, tc.wantErr.Is(err), "check: %+v", err)
			_, err = e.create.Deliver(tc.ctx, e.db, &pooltest.Tx{Msg: tc.msg})
			assert.True(t, tc.wantErr.Is(err), "deliver: %+v", err)
		})
	}
}

func TestJoinUntilComplete(t *testing.T) {
	e := newEnv(t)
	creator := pooltest.NewCondition()
	code := e.createEscrow(creator, 1000, 4)
	account := Account(code)

	participants := make([]pool.Condition, 4)
	for i := range participants {
		participants[i] = pooltest.NewCondition()
		e.fund(participants[i].Address(), 300)
	}

	for i, p := range participants {
		require.NoError(t, e.joinEscrow(p, code, 250))
		escrow := e.loadEscrow(code)
		assert.Equal(t, uint32(i+1), escrow.JoinedCount)
		if i < len(participants)-1 {
			assert.Equal(t, Open, escrow.Status)
			assert.Equal(t, coin.Amount(0), escrow.YieldBaseline)
		}
		assert.Equal(t, coin.Amount(50), e.balance(p.Address()))
	}

	escrow := e.loadEscrow(code)
	assert.Equal(t, Complete, escrow.Status)
	assert.Equal(t, coin.Amount(1000), escrow.AccumulatedReceipts)
	assert.Equal(t, coin.Amount(1000), escrow.YieldBaseline)

	receipts, err := e.unit.BalanceOf(e.db, account)
	require.NoError(t, err)
	assert.Equal(t, coin.Amount(1000), receipts)

	for _, p := range participants {
		contribution, err := e.state.contribs.Load(e.db, code, p.Address())
		require.NoError(t, err)
		require.NotNil(t, contribution)
		assert.Equal(t, coin.Amount(250), contribution.Principal)
		assert.Equal(t, coin.Amount(250), contribution.Receipts)
		assert.False(t, contribution.Withdrawn)
	}

	parties, err := e.state.parties.Load(e.db, code)
	require.NoError(t, err)
	require.Len(t, parties.Addresses, 4)
	for i, p := range participants {
		assert.Equal(t, p.Address(), parties.Addresses[i])
	}
}

func TestJoinErrors(t *testing.T) {
	e := newEnv(t)
	creator := pooltest.NewCondition()
	code := e.createEscrow(creator, 1000, 2)

	alice := pooltest.NewCondition()
	bob := pooltest.NewCondition()
	carl := pooltest.NewCondition()
	e.fund(alice.Address(), 1000)
	e.fund(bob.Address(), 1000)

	unknown := append([]byte(nil), code...)
	unknown[0]++

	err := e.joinEscrow(alice, unknown, 500)
	assert.True(t, ErrEscrowNotFound.Is(err), "%+v", err)

	// wrong amount leaves the escrow untouched
	err = e.joinEscrow(alice, code, 200)
	assert.True(t, ErrIncorrectAmount.Is(err), "%+v", err)
	assert.Equal(t, uint32(0), e.loadEscrow(code).JoinedCount)
	assert.Equal(t, coin.Amount(1000), e.balance(alice.Address()))

	require.NoError(t, e.joinEscrow(alice, code, 500))
	err = e.joinEscrow(alice, code, 500)
	assert.True(t, ErrAlreadyJoined.Is(err), "%+v", err)

	// unfunded caller fails on the transfer, not earlier
	err = e.joinEscrow(carl, code, 500)
	assert.True(t, custody.ErrTransferFailed.Is(err), "%+v", err)

	require.NoError(t, e.joinEscrow(bob, code, 500))
	err = e.joinEscrow(carl, code, 500)
	assert.True(t, ErrEscrowAlreadyFinalized.Is(err), "%+v", err)
}

func TestJoinStakeFailure(t *testing.T) {
	e := newEnv(t)
	code := e.createEscrow(pooltest.NewCondition(), 1000, 2)
	alice := pooltest.NewCondition()
	e.fund(alice.Address(), 500)

	e.unit.StakeErr = errors.New("yield source offline")
	err := e.joinEscrow(alice, code, 500)
	assert.True(t, yield.ErrStakingFailed.Is(err), "%+v", err)
	assert.Equal(t, uint32(0), e.loadEscrow(code).JoinedCount)
}

// completeEscrow sets up a complete two-party escrow the fast way,
// directly through the buckets, with uneven receipt counts that a
// drifting conversion rate would produce.
func (e *env) completeEscrow(creator, a, b pool.Condition, receiptsA, receiptsB coin.Amount) []byte {
	e.t.Helper()
	baseline, err := receiptsA.Add(receiptsB)
	require.NoError(e.t, err)
	code := e.createEscrow(creator, 1000, 2)
	escrow := e.loadEscrow(code)
	escrow.JoinedCount = 2
	escrow.Status = Complete
	escrow.AccumulatedReceipts = baseline
	escrow.YieldBaseline = baseline
	require.NoError(e.t, e.state.escrows.Save(e.db, orm.NewSimpleObj(code, escrow)))
	for _, c := range []*Contribution{
		{Participant: a.Address(), Principal: 500, Receipts: receiptsA},
		{Participant: b.Address(), Principal: 500, Receipts: receiptsB},
	} {
		require.NoError(e.t, e.state.contribs.Save(e.db, code, c))
		require.NoError(e.t, e.state.parties.Append(e.db, code, c.Participant))
	}
	require.NoError(e.t, e.unit.Accrue(e.db, Account(code), baseline))
	return code
}

func TestWithdrawProportionalYield(t *testing.T) {
	e := newEnv(t)
	creator := pooltest.NewCondition()
	a := pooltest.NewCondition()
	b := pooltest.NewCondition()
	// baseline 1000 receipts: 400 from a, 600 from b
	code := e.completeEscrow(creator, a, b, 400, 600)

	// 50 receipts of yield accrued above the baseline
	require.NoError(t, e.unit.Accrue(e.db, Account(code), 50))

	res, err := e.withdraw.Deliver(e.as(a), e.db, &pooltest.Tx{Msg: &WithdrawMsg{Code: code}})
	require.NoError(t, err)
	assert.Equal(t, coin.Amount(420).Marshal(), res.Data)

	res, err = e.withdraw.Deliver(e.as(b), e.db, &pooltest.Tx{Msg: &WithdrawMsg{Code: code}})
	require.NoError(t, err)
	assert.Equal(t, coin.Amount(630).Marshal(), res.Data)

	// payouts landed as receipts on the participants
	got, err := e.unit.BalanceOf(e.db, a.Address())
	require.NoError(t, err)
	assert.Equal(t, coin.Amount(420), got)
	got, err = e.unit.BalanceOf(e.db, b.Address())
	require.NoError(t, err)
	assert.Equal(t, coin.Amount(630), got)

	// nothing over-distributed: the escrow account is exactly drained
	got, err = e.unit.BalanceOf(e.db, Account(code))
	require.NoError(t, err)
	assert.Equal(t, coin.Amount(0), got)

	// exactly once
	_, err = e.withdraw.Deliver(e.as(a), e.db, &pooltest.Tx{Msg: &WithdrawMsg{Code: code}})
	assert.True(t, ErrAlreadyWithdrawn.Is(err), "%+v", err)
}

// Payouts debit the escrow account, so the yield share of whoever
// withdraws later must be computed against the withdrawn total, not
// against the shrinking balance alone.
func TestWithdrawOrderIndependent(t *testing.T) {
	e := newEnv(t)

	run := func(first, second pool.Condition, code []byte) (coin.Amount, coin.Amount) {
		res, err := e.withdraw.Deliver(e.as(first), e.db, &pooltest.Tx{Msg: &WithdrawMsg{Code: code}})
		require.NoError(t, err)
		p1, _, err := coin.ReadAmount(res.Data)
		require.NoError(t, err)
		res, err = e.withdraw.Deliver(e.as(second), e.db, &pooltest.Tx{Msg: &WithdrawMsg{Code: code}})
		require.NoError(t, err)
		p2, _, err := coin.ReadAmount(res.Data)
		require.NoError(t, err)
		return p1, p2
	}

	a := pooltest.NewCondition()
	b := pooltest.NewCondition()
	code := e.completeEscrow(pooltest.NewCondition(), a, b, 400, 600)
	require.NoError(t, e.unit.Accrue(e.db, Account(code), 50))
	gotA, gotB := run(a, b, code)

	c := pooltest.NewCondition()
	d := pooltest.NewCondition()
	swapped := e.completeEscrow(pooltest.NewCondition(), c, d, 400, 600)
	require.NoError(t, e.unit.Accrue(e.db, Account(swapped), 50))
	gotD, gotC := run(d, c, swapped)

	assert.Equal(t, coin.Amount(420), gotA)
	assert.Equal(t, coin.Amount(630), gotB)
	assert.Equal(t, gotA, gotC)
	assert.Equal(t, gotB, gotD)

	// the paid out total is part of the record
	assert.Equal(t, coin.Amount(1050), e.loadEscrow(code).WithdrawnReceipts)
}

func TestWithdrawRoundsDown(t *testing.T) {
	e := newEnv(t)
	a := pooltest.NewCondition()
	b := pooltest.NewCondition()
	// 7 yield on a 999 baseline: floor(7*333/999) = 2 each
	code := e.completeEscrow(pooltest.NewCondition(), a, b, 333, 666)
	require.NoError(t, e.unit.Accrue(e.db, Account(code), 7))

	res, err := e.withdraw.Deliver(e.as(a), e.db, &pooltest.Tx{Msg: &WithdrawMsg{Code: code}})
	require.NoError(t, err)
	assert.Equal(t, coin.Amount(335).Marshal(), res.Data)
	res, err = e.withdraw.Deliver(e.as(b), e.db, &pooltest.Tx{Msg: &WithdrawMsg{Code: code}})
	require.NoError(t, err)
	assert.Equal(t, coin.Amount(670).Marshal(), res.Data)

	// the rounding residual stays behind, never over-distributed
	got, err := e.unit.BalanceOf(e.db, Account(code))
	require.NoError(t, err)
	assert.Equal(t, coin.Amount(1), got)
}

func TestWithdrawClampsNegativeYield(t *testing.T) {
	e := newEnv(t)
	a := pooltest.NewCondition()
	b := pooltest.NewCondition()
	code := e.completeEscrow(pooltest.NewCondition(), a, b, 400, 600)

	// receipt balance below the baseline reads as zero yield
	_, err := e.unit.Unstake(e.db, Account(code), 100)
	require.NoError(t, err)

	res, err := e.withdraw.Deliver(e.as(a), e.db, &pooltest.Tx{Msg: &WithdrawMsg{Code: code}})
	require.NoError(t, err)
	assert.Equal(t, coin.Amount(400).Marshal(), res.Data)
}

func TestWithdrawErrors(t *testing.T) {
	e := newEnv(t)
	creator := pooltest.NewCondition()
	a := pooltest.NewCondition()
	b := pooltest.NewCondition()
	stranger := pooltest.NewCondition()

	open := e.createEscrow(creator, 1000, 2)
	_, err := e.withdraw.Deliver(e.as(a), e.db, &pooltest.Tx{Msg: &WithdrawMsg{Code: open}})
	assert.True(t, ErrEscrowNotComplete.Is(err), "%+v", err)

	code := e.completeEscrow(creator, a, b, 400, 600)

	unknown := append([]byte(nil), code...)
	unknown[0]++
	_, err = e.withdraw.Deliver(e.as(a), e.db, &pooltest.Tx{Msg: &WithdrawMsg{Code: unknown}})
	assert.True(t, ErrEscrowNotFound.Is(err), "%+v", err)

	_, err = e.withdraw.Deliver(e.as(stranger), e.db, &pooltest.Tx{Msg: &WithdrawMsg{Code: code}})
	assert.True(t, ErrParticipantNotFound.Is(err), "%+v", err)

	e.unit.BalanceErr = errors.New("offline")
	_, err = e.withdraw.Deliver(e.as(a), e.db, &pooltest.Tx{Msg: &WithdrawMsg{Code: code}})
	assert.True(t, yield.ErrBalanceQueryFailed.Is(err), "%+v", err)
	e.unit.BalanceErr = nil

	// a failed transfer leaves withdrawn unset, the participant can retry
	e.unit.MoveErr = errors.New("offline")
	_, err = e.withdraw.Deliver(e.as(a), e.db, &pooltest.Tx{Msg: &WithdrawMsg{Code: code}})
	assert.True(t, custody.ErrTransferFailed.Is(err), "%+v", err)
	contribution, err := e.state.contribs.Load(e.db, code, a.Address())
	require.NoError(t, err)
	assert.False(t, contribution.Withdrawn)

	e.unit.MoveErr = nil
	_, err = e.withdraw.Deliver(e.as(a), e.db, &pooltest.Tx{Msg: &WithdrawMsg{Code: code}})
	require.NoError(t, err)
}

func TestCancelRefundsAll(t *testing.T) {
	e := newEnv(t)
	creator := pooltest.NewCondition()
	code := e.createEscrow(creator, 1000, 5)

	joined := make([]pool.Condition, 3)
	for i := range joined {
		joined[i] = pooltest.NewCondition()
		e.fund(joined[i].Address(), 200)
		require.NoError(t, e.joinEscrow(joined[i], code, 200))
		assert.Equal(t, coin.Amount(0), e.balance(joined[i].Address()))
	}

	_, err := e.cancel.Deliver(e.as(creator), e.db, &pooltest.Tx{Msg: &CancelMsg{Code: code}})
	require.NoError(t, err)

	escrow := e.loadEscrow(code)
	assert.Equal(t, Cancelled, escrow.Status)
	for _, p := range joined {
		assert.Equal(t, coin.Amount(200), e.balance(p.Address()))
	}

	// the remaining slots can never be filled
	late := pooltest.NewCondition()
	e.fund(late.Address(), 200)
	err = e.joinEscrow(late, code, 200)
	assert.True(t, ErrEscrowAlreadyFinalized.Is(err), "%+v", err)

	// and nobody can withdraw
	_, err = e.withdraw.Deliver(e.as(joined[0]), e.db, &pooltest.Tx{Msg: &WithdrawMsg{Code: code}})
	assert.True(t, ErrEscrowNotComplete.Is(err), "%+v", err)

	// cancelling twice fails
	_, err = e.cancel.Deliver(e.as(creator), e.db, &pooltest.Tx{Msg: &CancelMsg{Code: code}})
	assert.True(t, ErrCannotCancel.Is(err), "%+v", err)
}

func TestCancelEmptyEscrow(t *testing.T) {
	e := newEnv(t)
	creator := pooltest.NewCondition()
	code := e.createEscrow(creator, 1000, 2)

	_, err := e.cancel.Deliver(e.as(creator), e.db, &pooltest.Tx{Msg: &CancelMsg{Code: code}})
	require.NoError(t, err)
	assert.Equal(t, Cancelled, e.loadEscrow(code).Status)
}

func TestCancelErrors(t *testing.T) {
	e := newEnv(t)
	creator := pooltest.NewCondition()
	stranger := pooltest.NewCondition()
	code := e.createEscrow(creator, 1000, 2)

	_, err := e.cancel.Deliver(e.as(stranger), e.db, &pooltest.Tx{Msg: &CancelMsg{Code: code}})
	assert.True(t, ErrNotCreator.Is(err), "%+v", err)

	unknown := append([]byte(nil), code...)
	unknown[0]++
	_, err = e.cancel.Deliver(e.as(creator), e.db, &pooltest.Tx{Msg: &CancelMsg{Code: unknown}})
	assert.True(t, ErrEscrowNotFound.Is(err), "%+v", err)

	// a complete escrow can never be cancelled
	alice := pooltest.NewCondition()
	bob := pooltest.NewCondition()
	e.fund(alice.Address(), 500)
	e.fund(bob.Address(), 500)
	require.NoError(t, e.joinEscrow(alice, code, 500))
	require.NoError(t, e.joinEscrow(bob, code, 500))
	_, err = e.cancel.Deliver(e.as(creator), e.db, &pooltest.Tx{Msg: &CancelMsg{Code: code}})
	assert.True(t, ErrCannotCancel.Is(err), "%+v", err)
}

func TestCancelUnstakeFailure(t *testing.T) {
	e := newEnv(t)
	creator := pooltest.NewCondition()
	code := e.createEscrow(creator, 1000, 2)
	alice := pooltest.NewCondition()
	e.fund(alice.Address(), 500)
	require.NoError(t, e.joinEscrow(alice, code, 500))

	e.unit.UnstakeErr = errors.New("yield source offline")
	_, err := e.cancel.Deliver(e.as(creator), e.db, &pooltest.Tx{Msg: &CancelMsg{Code: code}})
	assert.True(t, yield.ErrUnstakingFailed.Is(err), "%+v", err)
}

func TestLifecycleEvents(t *testing.T) {
	e := newEnv(t)
	creator := pooltest.NewCondition()
	code := e.createEscrow(creator, 1000, 2)
	alice := pooltest.NewCondition()
	bob := pooltest.NewCondition()
	e.fund(alice.Address(), 500)
	e.fund(bob.Address(), 500)
	require.NoError(t, e.joinEscrow(alice, code, 500))
	require.NoError(t, e.joinEscrow(bob, code, 500))

	_, err := e.withdraw.Deliver(e.as(alice), e.db, &pooltest.Tx{Msg: &WithdrawMsg{Code: code}})
	require.NoError(t, err)

	events, err := e.state.events.List(e.db)
	require.NoError(t, err)
	require.Len(t, events, 5)

	wantTopics := []Topic{
		TopicEscrowCreated,
		TopicParticipantJoined,
		TopicParticipantJoined,
		TopicEscrowCompleted,
		TopicWithdrawalMade,
	}
	for i, ev := range events {
		assert.Equal(t, wantTopics[i], ev.Topic, "event %d", i)
		assert.Equal(t, code, ev.Code, "event %d", i)
		assert.Equal(t, blockNow.Unix(), ev.Time, "event %d", i)
	}
	assert.Equal(t, uint32(1), events[1].Count)
	assert.Equal(t, uint32(2), events[2].Count)
	assert.Equal(t, coin.Amount(1000), events[3].Amount)
	assert.Equal(t, alice.Address(), events[4].Subject)
}

// The vault closes the loop: native currency in, receipts out, yield
// injected by a sponsor, everything withdrawn exactly once.
func TestVaultBackedLifecycle(t *testing.T) {
	e := newEnv(t)
	vault := yield.NewVault(e.coins)
	st := e.state
	join := JoinHandler{auth: e.auth, state: st, coins: e.coins, adapter: vault}
	withdraw := WithdrawHandler{auth: e.auth, state: st, adapter: vault}

	creator := pooltest.NewCondition()
	alice := pooltest.NewCondition()
	bob := pooltest.NewCondition()
	sponsor := pooltest.NewCondition()
	e.fund(alice.Address(), 500)
	e.fund(bob.Address(), 500)
	e.fund(sponsor.Address(), 100)

	code := e.createEscrow(creator, 1000, 2)
	_, err := join.Deliver(e.as(alice), e.db, &pooltest.Tx{Msg: &JoinMsg{Code: code, Amount: 500}})
	require.NoError(t, err)
	_, err = join.Deliver(e.as(bob), e.db, &pooltest.Tx{Msg: &JoinMsg{Code: code, Amount: 500}})
	require.NoError(t, err)
	require.Equal(t, Complete, e.loadEscrow(code).Status)

	require.NoError(t, vault.DepositYield(e.db, sponsor.Address(), Account(code), 100))

	res, err := withdraw.Deliver(e.as(alice), e.db, &pooltest.Tx{Msg: &WithdrawMsg{Code: code}})
	require.NoError(t, err)
	assert.Equal(t, coin.Amount(550).Marshal(), res.Data)
	res, err = withdraw.Deliver(e.as(bob), e.db, &pooltest.Tx{Msg: &WithdrawMsg{Code: code}})
	require.NoError(t, err)
	assert.Equal(t, coin.Amount(550).Marshal(), res.Data)

	// receipts can be unstaked into native currency in full
	released, err := vault.Unstake(e.db, alice.Address(), 550)
	require.NoError(t, err)
	assert.Equal(t, coin.Amount(550), released)
	assert.Equal(t, coin.Amount(550), e.balance(alice.Address()))
}
