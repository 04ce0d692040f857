// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"context"
	"math/big"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/binarybit/staking/bnry"
	"github.com/binarybit/staking/builtin/staking"
	"github.com/binarybit/staking/builtin/staking/reverts"
	"github.com/binarybit/staking/builtin/token"
	"github.com/binarybit/staking/eventdb"
	"github.com/binarybit/staking/lvldb"
	"github.com/binarybit/staking/test/datagen"
)

const t0 uint64 = 1_700_000_000

type fakeClock struct{ now uint64 }

func (c *fakeClock) Now() uint64 { return c.now }

func newTestRuntime(t *testing.T, clock *fakeClock) (*Runtime, bnry.Address) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	events, err := eventdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { events.Close() })

	rt, err := New(db, events, clock.Now, Options{MaxSupply: bnry.MaxTokenSupply, TimestampOverride: true})
	require.NoError(t, err)

	owner := datagen.RandAddress()
	_, err = rt.Genesis(context.Background(), owner, 80)
	require.NoError(t, err)
	return rt, owner
}

func fund(t *testing.T, rt *Runtime, owner, to bnry.Address, n int64) {
	ctx := context.Background()
	_, err := rt.Mint(ctx, owner, to, bnry.Tokens(n))
	require.NoError(t, err)
	_, err = rt.Approve(ctx, to, bnry.StakingContractAddress, bnry.Tokens(n))
	require.NoError(t, err)
}

func TestGenesis(t *testing.T) {
	rt, owner := newTestRuntime(t, &fakeClock{now: t0})

	got, err := rt.Owner()
	require.NoError(t, err)
	assert.Equal(t, owner, got)

	tokenAddr, err := rt.TokenAddress()
	require.NoError(t, err)
	assert.Equal(t, bnry.TokenContractAddress, tokenAddr)

	rate, err := rt.AnnualYield()
	require.NoError(t, err)
	assert.Equal(t, uint64(80), rate)

	_, err = rt.Genesis(context.Background(), datagen.RandAddress(), 10)
	assert.Equal(t, staking.ErrAlreadyInitialized, err)
}

func TestOperationEvents(t *testing.T) {
	clock := &fakeClock{now: t0}
	rt, owner := newTestRuntime(t, clock)
	ctx := context.Background()
	user := datagen.RandAddress()
	fund(t, rt, owner, user, 100)
	// the reward part of a later withdraw is paid from the treasury
	fund(t, rt, owner, owner, 100)
	_, err := rt.FundTreasury(ctx, owner, bnry.Tokens(100))
	require.NoError(t, err)

	receipt, err := rt.Stake(ctx, user, bnry.Tokens(10))
	require.NoError(t, err)
	assert.Equal(t, "stake", receipt.Op)
	assert.Equal(t, t0, receipt.Time)
	require.Len(t, receipt.Events, 1)
	assert.Equal(t, staking.EventStake, receipt.Events[0].Name)

	clock.now = t0 + 10
	_, err = rt.Withdraw(ctx, user, bnry.Tokens(1))
	require.NoError(t, err)

	events, err := rt.Events(ctx, nil)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, staking.EventFundTreasury, events[0].Name)
	assert.Equal(t, staking.EventWithdraw, events[2].Name)
	assert.Equal(t, user, events[2].Account)
	assert.Equal(t, t0+10, events[2].Time)

	n, err := rt.events.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)
}

func TestRevertDropsEverything(t *testing.T) {
	rt, owner := newTestRuntime(t, &fakeClock{now: t0})
	ctx := context.Background()
	user := datagen.RandAddress()
	fund(t, rt, owner, user, 100)

	// the transfer into the contract fails after the ledger was updated
	boom := errors.New("boom")
	rt.Token().SetHook(token.HookFunc(func(from, to bnry.Address, _ *big.Int) error {
		if to == bnry.StakingContractAddress {
			return boom
		}
		return nil
	}))

	_, err := rt.Stake(ctx, user, bnry.Tokens(10))
	assert.Equal(t, boom, err)

	p, err := rt.Participant(user)
	require.NoError(t, err)
	assert.True(t, p.IsEmpty())

	total, err := rt.TotalStaked()
	require.NoError(t, err)
	assert.Equal(t, "0", total.String())

	addrs, err := rt.ParticipantAddresses()
	require.NoError(t, err)
	assert.Empty(t, addrs)

	bal, err := rt.TokenBalance(user)
	require.NoError(t, err)
	assert.Equal(t, bnry.Tokens(100).String(), bal.String())

	events, err := rt.Events(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, events)

	// the runtime keeps working afterwards
	rt.Token().SetHook(nil)
	_, err = rt.Stake(ctx, user, bnry.Tokens(10))
	require.NoError(t, err)
}

func TestTreasuryInsufficientReverts(t *testing.T) {
	clock := &fakeClock{now: t0}
	rt, owner := newTestRuntime(t, clock)
	ctx := context.Background()
	user := datagen.RandAddress()
	fund(t, rt, owner, user, 100)

	_, err := rt.Stake(ctx, user, bnry.Tokens(10))
	require.NoError(t, err)

	clock.now = t0 + bnry.SecondsPerYear
	_, err = rt.Withdraw(ctx, user, bnry.Tokens(11))
	assert.Equal(t, reverts.TreasuryInsufficient, reverts.KindOf(err))

	p, err := rt.Participant(user)
	require.NoError(t, err)
	assert.Equal(t, t0, p.LastActionTime)
	assert.Equal(t, "0", p.AccruedReward.String())

	bal, err := rt.CurrentBalance(user, false)
	require.NoError(t, err)
	assert.Equal(t, bnry.Tokens(18).String(), bal.String())

	bal, err = rt.CurrentBalance(user, true)
	require.NoError(t, err)
	assert.Equal(t, bnry.Tokens(18).String(), bal.String())

	p, bal, err = rt.ParticipantBalance(user, false)
	require.NoError(t, err)
	assert.Equal(t, t0, p.LastActionTime)
	assert.Equal(t, bnry.Tokens(10).String(), p.Principal.String())
	assert.Equal(t, bnry.Tokens(18).String(), bal.String())

	p, bal, err = rt.ParticipantBalance(datagen.RandAddress(), false)
	require.NoError(t, err)
	assert.True(t, p.IsEmpty())
	assert.Zero(t, bal.Sign())
}

func TestReentrantCollaborator(t *testing.T) {
	rt, owner := newTestRuntime(t, &fakeClock{now: t0})
	ctx := context.Background()
	user := datagen.RandAddress()
	fund(t, rt, owner, user, 100)

	var observed *big.Int
	rt.Token().SetHook(token.HookFunc(func(from, to bnry.Address, _ *big.Int) error {
		if to != bnry.StakingContractAddress {
			return nil
		}
		// runs while the stake operation holds the runtime
		bal, err := rt.Staking().CalculateCurrentBalanceCompound(from, t0)
		observed = bal
		return err
	}))

	_, err := rt.Stake(ctx, user, bnry.Tokens(10))
	require.NoError(t, err)
	require.NotNil(t, observed)
	assert.Equal(t, bnry.Tokens(10).String(), observed.String())
}

func TestConcurrentStakes(t *testing.T) {
	rt, owner := newTestRuntime(t, &fakeClock{now: t0})
	ctx := context.Background()
	users := datagen.RandAddresses(16)
	for _, u := range users {
		fund(t, rt, owner, u, 10)
	}

	var g errgroup.Group
	for _, u := range users {
		g.Go(func() error {
			for range 10 {
				if _, err := rt.Stake(ctx, u, bnry.Tokens(1)); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	total, err := rt.TotalStaked()
	require.NoError(t, err)
	assert.Equal(t, bnry.Tokens(160).String(), total.String())

	addrs, err := rt.ParticipantAddresses()
	require.NoError(t, err)
	assert.ElementsMatch(t, users, addrs)

	n, err := rt.events.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(160), n)
}

func TestPersistence(t *testing.T) {
	dir := t.TempDir()
	clock := &fakeClock{now: t0}
	user := datagen.RandAddress()
	ctx := context.Background()

	open := func() (*Runtime, func()) {
		db, err := lvldb.New(filepath.Join(dir, "state"), lvldb.Options{})
		require.NoError(t, err)
		rt, err := New(db, nil, clock.Now, Options{})
		require.NoError(t, err)
		return rt, func() { db.Close() }
	}

	rt, closeDB := open()
	owner := datagen.RandAddress()
	_, err := rt.Genesis(ctx, owner, 80)
	require.NoError(t, err)
	fund(t, rt, owner, user, 50)
	_, err = rt.Stake(ctx, user, bnry.Tokens(20))
	require.NoError(t, err)
	closeDB()

	rt, closeDB = open()
	defer closeDB()

	p, err := rt.Participant(user)
	require.NoError(t, err)
	assert.Equal(t, bnry.Tokens(20).String(), p.Principal.String())

	bal, err := rt.TokenBalance(user)
	require.NoError(t, err)
	assert.Equal(t, bnry.Tokens(30).String(), bal.String())

	// overrides stay off unless enabled
	_, err = rt.UpdateTimestamp(ctx, owner, user, 0)
	assert.Equal(t, reverts.Unauthorized, reverts.KindOf(err))
}

func TestOffsetClock(t *testing.T) {
	c := NewOffsetClock(func() uint64 { return 100 })
	assert.Equal(t, uint64(100), c.Now())

	c.SetOffset(-30 * time.Second)
	assert.Equal(t, uint64(70), c.Now())
	assert.Equal(t, -30*time.Second, c.Offset())

	c.SetOffset(-time.Hour)
	assert.Equal(t, uint64(0), c.Now())
}

type recordingObserver struct {
	ops    []string
	events []error
}

func (o *recordingObserver) OperationCommitted(op string, _ uint64) { o.ops = append(o.ops, op) }
func (o *recordingObserver) EventsRecorded(err error)               { o.events = append(o.events, err) }

func TestObserver(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	events, err := eventdb.NewMem()
	require.NoError(t, err)

	obs := &recordingObserver{}
	clock := &fakeClock{now: t0}
	rt, err := New(db, events, clock.Now, Options{Observer: obs})
	require.NoError(t, err)

	owner := datagen.RandAddress()
	_, err = rt.Genesis(context.Background(), owner, 80)
	require.NoError(t, err)
	_, err = rt.Stake(context.Background(), owner, bnry.Tokens(1))
	require.Error(t, err)

	assert.Equal(t, []string{"genesis"}, obs.ops)
	assert.Equal(t, []error{nil}, obs.events)

	// a closed event db still commits the ledger
	require.NoError(t, events.Close())
	receipt, err := rt.ChangeAnnualYield(context.Background(), owner, 40)
	require.Error(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, []string{"genesis", "change_annual_yield"}, obs.ops)
	require.Len(t, obs.events, 2)
	assert.Error(t, obs.events[1])

	rate, err := rt.AnnualYield()
	require.NoError(t, err)
	assert.Equal(t, uint64(40), rate)
}
