package custody

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/commonpool/pool"
	"github.com/commonpool/pool/coin"
	"github.com/commonpool/pool/errors"
	"github.com/commonpool/pool/pooltest"
	"github.com/commonpool/pool/store"
)

func TestIssueAndBalance(t *testing.T) {
	db := store.MemStore()
	ctrl := NewController(NewWalletBucket())
	addr := pooltest.NewAddress()

	// missing wallet reads as zero
	balance, err := ctrl.Balance(db, addr)
	require.NoError(t, err)
	assert.Equal(t, coin.Amount(0), balance)

	require.NoError(t, ctrl.IssueCoins(db, addr, coin.Amount(500)))
	require.NoError(t, ctrl.IssueCoins(db, addr, coin.Amount(120)))

	balance, err = ctrl.Balance(db, addr)
	require.NoError(t, err)
	assert.Equal(t, coin.Amount(620), balance)
}

func TestMoveCoins(t *testing.T) {
	alice := pooltest.NewAddress()
	bob := pooltest.NewAddress()
	carl := pooltest.NewAddress()

	cases := map[string]struct {
		funds     coin.Amount
		src, dst  pool.Address
		amount    coin.Amount
		wantErr   *errors.Error
		wantSrc   coin.Amount
		wantDst   coin.Amount
	}{
		"full balance": {
			funds:   100,
			src:     alice,
			dst:     bob,
			amount:  100,
			wantSrc: 0,
			wantDst: 100,
		},
		"partial balance": {
			funds:   100,
			src:     alice,
			dst:     bob,
			amount:  30,
			wantSrc: 70,
			wantDst: 30,
		},
		"insufficient funds": {
			funds:   100,
			src:     alice,
			dst:     bob,
			amount:  101,
			wantErr: ErrTransferFailed,
			wantSrc: 100,
			wantDst: 0,
		},
		"no source wallet": {
			funds:   100,
			src:     carl,
			dst:     bob,
			amount:  10,
			wantErr: ErrTransferFailed,
			wantSrc: 0,
			wantDst: 0,
		},
		"zero amount": {
			funds:   100,
			src:     alice,
			dst:     bob,
			amount:  0,
			wantErr: ErrTransferFailed,
			wantSrc: 100,
			wantDst: 0,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			db := store.MemStore()
			ctrl := NewController(NewWalletBucket())
			require.NoError(t, ctrl.IssueCoins(db, alice, tc.funds))

			err := ctrl.MoveCoins(db, tc.src, tc.dst, tc.amount)
			if tc.wantErr != nil {
				require.Error(t, err)
				assert.True(t, tc.wantErr.Is(err), "unexpected error: %+v", err)
			} else {
				require.NoError(t, err)
			}

			got, err := ctrl.Balance(db, tc.src)
			require.NoError(t, err)
			assert.Equal(t, tc.wantSrc, got, "source balance")
			got, err = ctrl.Balance(db, tc.dst)
			require.NoError(t, err)
			assert.Equal(t, tc.wantDst, got, "destination balance")
		})
	}
}

func TestMoveToSelf(t *testing.T) {
	db := store.MemStore()
	ctrl := NewController(NewWalletBucket())
	addr := pooltest.NewAddress()
	require.NoError(t, ctrl.IssueCoins(db, addr, coin.Amount(100)))

	require.NoError(t, ctrl.MoveCoins(db, addr, addr, coin.Amount(40)))
	balance, err := ctrl.Balance(db, addr)
	require.NoError(t, err)
	assert.Equal(t, coin.Amount(100), balance)
}

func TestWalletCodecRoundTrip(t *testing.T) {
	w := Wallet{Balance: 123456}
	raw, err := w.Marshal()
	require.NoError(t, err)

	var got Wallet
	require.NoError(t, got.Unmarshal(raw))
	assert.Equal(t, w, got)

	// reject unknown schema
	raw[0] = 9
	assert.Error(t, got.Unmarshal(raw))
	// reject trailing garbage
	raw[0] = walletSchema
	assert.Error(t, got.Unmarshal(append(raw, 0)))
}
