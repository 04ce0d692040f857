// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staking

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/binarybit/staking/bnry"
	"github.com/binarybit/staking/builtin/solidity"
	"github.com/binarybit/staking/builtin/staking/reverts"
	"github.com/binarybit/staking/builtin/token"
	"github.com/binarybit/staking/lvldb"
	"github.com/binarybit/staking/state"
	"github.com/binarybit/staking/test/datagen"
)

const (
	t0   uint64 = 1_700_000_000
	year        = bnry.SecondsPerYear
)

type testEnv struct {
	st     *state.State
	token  *token.Token
	stk    *Staking
	owner  bnry.Address
	events []Event
}

func newTestEnv(t *testing.T, annualYield uint64) *testEnv {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st, err := state.New(db, state.Options{})
	require.NoError(t, err)

	env := &testEnv{st: st, owner: datagen.RandAddress()}
	env.token = token.New(solidity.NewContext(bnry.TokenContractAddress, st), bnry.MaxTokenSupply)
	env.token.Initialize(env.owner)
	env.stk = New(bnry.StakingContractAddress, st, env.token, EmitterFunc(func(ev Event) {
		env.events = append(env.events, ev)
	}))
	require.NoError(t, env.stk.Initialize(env.owner, annualYield))
	return env
}

// fund mints n tokens to addr and approves the contract for all of them.
func (env *testEnv) fund(t *testing.T, addr bnry.Address, n int64) {
	require.NoError(t, env.token.Mint(env.owner, addr, bnry.Tokens(n)))
	require.NoError(t, env.token.Approve(addr, bnry.StakingContractAddress, bnry.Tokens(n)))
}

func (env *testEnv) rewind(t *testing.T, addr bnry.Address, now uint64) {
	require.NoError(t, env.stk.UpdateTimestamp(env.owner, addr, now-year, now))
}

func (env *testEnv) participant(t *testing.T, addr bnry.Address) (principal, reward string, last uint64) {
	p, err := env.stk.GetParticipant(addr)
	require.NoError(t, err)
	return p.Principal.String(), p.AccruedReward.String(), p.LastActionTime
}

func (env *testEnv) balanceOf(t *testing.T, addr bnry.Address) string {
	bal, err := env.token.BalanceOf(addr)
	require.NoError(t, err)
	return bal.String()
}

func units(s string) string {
	v, err := bnry.ParseTokens(s)
	if err != nil {
		panic(err)
	}
	return v.String()
}

func TestInitialize(t *testing.T) {
	env := newTestEnv(t, bnry.DefaultAnnualYieldPercent)

	owner, err := env.stk.Owner()
	require.NoError(t, err)
	assert.Equal(t, env.owner, owner)

	tokenAddr, err := env.stk.TokenAddress()
	require.NoError(t, err)
	assert.Equal(t, bnry.TokenContractAddress, tokenAddr)

	rate, err := env.stk.AnnualYield()
	require.NoError(t, err)
	assert.Equal(t, uint64(80), rate)

	assert.Equal(t, ErrAlreadyInitialized, env.stk.Initialize(datagen.RandAddress(), 10))

	fresh := New(datagen.RandAddress(), env.st, env.token, nil)
	assert.Equal(t, ErrZeroOwner, fresh.Initialize(bnry.Address{}, 10))
}

func TestStake(t *testing.T) {
	env := newTestEnv(t, 80)
	user := datagen.RandAddress()
	env.fund(t, user, 1000)

	require.NoError(t, env.stk.Stake(user, bnry.Tokens(10), t0))

	principal, reward, last := env.participant(t, user)
	assert.Equal(t, units("10"), principal)
	assert.Equal(t, "0", reward)
	assert.Equal(t, t0, last)

	p, err := env.stk.GetParticipant(user)
	require.NoError(t, err)
	assert.Equal(t, user, p.Owner)

	assert.Equal(t, units("990"), env.balanceOf(t, user))
	assert.Equal(t, units("10"), env.balanceOf(t, bnry.StakingContractAddress))

	total, err := env.stk.TotalStaked()
	require.NoError(t, err)
	assert.Equal(t, units("10"), total.String())

	addrs, err := env.stk.ParticipantAddresses()
	require.NoError(t, err)
	assert.Equal(t, []bnry.Address{user}, addrs)

	require.Len(t, env.events, 1)
	assert.Equal(t, Event{Name: EventStake, Account: user, Amount: bnry.Tokens(10)}, env.events[0])
}

func TestStakeRegistersOnce(t *testing.T) {
	env := newTestEnv(t, 80)
	a, b := datagen.RandAddress(), datagen.RandAddress()
	env.fund(t, a, 100)
	env.fund(t, b, 100)
	// withdrawing after accrual draws reward from the treasury
	env.fund(t, env.owner, 100)
	require.NoError(t, env.stk.FundTreasury(env.owner, bnry.Tokens(100), t0))

	require.NoError(t, env.stk.Stake(a, bnry.Tokens(1), t0))
	require.NoError(t, env.stk.Stake(b, bnry.Tokens(1), t0))
	require.NoError(t, env.stk.Stake(a, bnry.Tokens(1), t0+10))
	require.NoError(t, env.stk.Withdraw(a, bnry.Tokens(2), t0+10))
	require.NoError(t, env.stk.Stake(a, bnry.Tokens(1), t0+20))

	addrs, err := env.stk.ParticipantAddresses()
	require.NoError(t, err)
	assert.Equal(t, []bnry.Address{a, b}, addrs)

	n, err := env.stk.ParticipantCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)

	second, err := env.stk.ParticipantAt(1)
	require.NoError(t, err)
	assert.Equal(t, b, second)
}

func TestStakeErrors(t *testing.T) {
	env := newTestEnv(t, 80)
	user := datagen.RandAddress()
	require.NoError(t, env.token.Mint(env.owner, user, bnry.Tokens(10)))
	require.NoError(t, env.token.Approve(user, bnry.StakingContractAddress, bnry.Tokens(5)))

	tests := []struct {
		name   string
		amount *big.Int
		kind   reverts.Kind
	}{
		{"zero", big.NewInt(0), reverts.InvalidAmount},
		{"nil", nil, reverts.InvalidAmount},
		{"negative", big.NewInt(-1), reverts.InvalidAmount},
		{"over balance", bnry.Tokens(11), reverts.InsufficientBalance},
		{"over allowance", bnry.Tokens(6), reverts.InsufficientAllowance},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := env.stk.Stake(user, tt.amount, t0)
			require.Error(t, err)
			assert.Equal(t, tt.kind, reverts.KindOf(err))
		})
	}

	err := env.stk.Stake(user, big.NewInt(0), t0)
	assert.Equal(t, "Token amount must be greater than zero", err.Error())
	assert.True(t, errors.Is(err, token.ErrInvalidAmount))
	assert.True(t, errors.Is(env.stk.Stake(user, bnry.Tokens(11), t0), token.ErrInsufficientBalance))

	p, err := env.stk.GetParticipant(user)
	require.NoError(t, err)
	assert.True(t, p.IsEmpty())
	addrs, err := env.stk.ParticipantAddresses()
	require.NoError(t, err)
	assert.Empty(t, addrs)
	assert.Empty(t, env.events)
}

func TestOneYearCompound(t *testing.T) {
	tests := []struct {
		rate uint64
		want string
	}{
		// 80 is the deployment default; 10 grows to about 18 at that rate
		{80, "18"},
		{40, "14"},
		{0, "10"},
	}
	for _, tt := range tests {
		env := newTestEnv(t, tt.rate)
		user := datagen.RandAddress()
		env.fund(t, user, 100)

		require.NoError(t, env.stk.Stake(user, bnry.Tokens(10), t0))
		env.rewind(t, user, t0)

		got, err := env.stk.CalculateCurrentBalanceCompound(user, t0)
		require.NoError(t, err)
		assert.Equal(t, units(tt.want), got.String(), "rate %d", tt.rate)
	}
}

func TestCurrentBalance(t *testing.T) {
	env := newTestEnv(t, 80)
	user := datagen.RandAddress()
	env.fund(t, user, 100)

	got, err := env.stk.CalculateCurrentBalanceCompound(datagen.RandAddress(), t0)
	require.NoError(t, err)
	assert.Equal(t, "0", got.String())

	require.NoError(t, env.stk.Stake(user, bnry.Tokens(10), t0))

	// clock behind the last action
	got, err = env.stk.CalculateCurrentBalanceCompound(user, t0-100)
	require.NoError(t, err)
	assert.Equal(t, units("10"), got.String())

	got, err = env.stk.CalculateCurrentBalanceCompound(user, t0+2*year)
	require.NoError(t, err)
	assert.Equal(t, units("32.4"), got.String())

	got, err = env.stk.CalculateCurrentBalanceLinear(user, t0+2*year)
	require.NoError(t, err)
	assert.Equal(t, units("26"), got.String())

	// queries do not touch the ledger
	for range 3 {
		again, err := env.stk.CalculateCurrentBalanceCompound(user, t0+2*year)
		require.NoError(t, err)
		assert.Equal(t, units("32.4"), again.String())
	}
	_, reward, last := env.participant(t, user)
	assert.Equal(t, "0", reward)
	assert.Equal(t, t0, last)
}

func TestWithdrawRewardFirst(t *testing.T) {
	env := newTestEnv(t, 80)
	user := datagen.RandAddress()
	env.fund(t, user, 100)
	env.fund(t, env.owner, 1000)
	require.NoError(t, env.stk.FundTreasury(env.owner, bnry.Tokens(100), t0))

	require.NoError(t, env.stk.Stake(user, bnry.Tokens(10), t0))
	env.rewind(t, user, t0)

	// 8 of reward, withdraw 5 of it
	require.NoError(t, env.stk.Withdraw(user, bnry.Tokens(5), t0))
	principal, reward, _ := env.participant(t, user)
	assert.Equal(t, units("10"), principal)
	assert.Equal(t, units("3"), reward)

	// 3 of reward left, the other 4 come from principal
	require.NoError(t, env.stk.Withdraw(user, bnry.Tokens(7), t0))
	principal, reward, _ = env.participant(t, user)
	assert.Equal(t, units("6"), principal)
	assert.Equal(t, "0", reward)

	treasury, err := env.stk.TreasuryBalance()
	require.NoError(t, err)
	assert.Equal(t, units("92"), treasury.String())

	total, err := env.stk.TotalStaked()
	require.NoError(t, err)
	assert.Equal(t, units("6"), total.String())

	assert.Equal(t, units("102"), env.balanceOf(t, user))
	assert.Equal(t, units("98"), env.balanceOf(t, bnry.StakingContractAddress))
}

func TestWithdrawPrincipalOnly(t *testing.T) {
	env := newTestEnv(t, 80)
	user := datagen.RandAddress()
	env.fund(t, user, 100)

	require.NoError(t, env.stk.Stake(user, bnry.Tokens(20), t0))
	require.NoError(t, env.stk.Withdraw(user, bnry.Tokens(10), t0))
	require.NoError(t, env.stk.Withdraw(user, bnry.Tokens(9), t0))

	principal, reward, _ := env.participant(t, user)
	assert.Equal(t, units("1"), principal)
	assert.Equal(t, "0", reward)
	assert.Equal(t, units("99"), env.balanceOf(t, user))

	require.Len(t, env.events, 3)
	assert.Equal(t, EventWithdraw, env.events[2].Name)
	assert.Equal(t, bnry.Tokens(9), env.events[2].Amount)
}

func TestWithdrawErrors(t *testing.T) {
	env := newTestEnv(t, 80)
	user := datagen.RandAddress()
	env.fund(t, user, 100)
	require.NoError(t, env.stk.Stake(user, bnry.Tokens(10), t0))

	err := env.stk.Withdraw(user, big.NewInt(0), t0)
	assert.Equal(t, reverts.InvalidAmount, reverts.KindOf(err))

	err = env.stk.Withdraw(user, bnry.Tokens(11), t0)
	assert.Equal(t, reverts.InsufficientStakedBalance, reverts.KindOf(err))
	assert.True(t, errors.Is(err, ErrInsufficientStakedBalance))

	err = env.stk.Withdraw(datagen.RandAddress(), big.NewInt(1), t0)
	assert.Equal(t, reverts.InsufficientStakedBalance, reverts.KindOf(err))

	// reward accrued but the treasury is empty
	env.rewind(t, user, t0)
	_, _, before := env.participant(t, user)

	err = env.stk.Withdraw(user, bnry.Tokens(1), t0+100)
	assert.Equal(t, reverts.TreasuryInsufficient, reverts.KindOf(err))

	principal, reward, last := env.participant(t, user)
	assert.Equal(t, units("10"), principal)
	assert.Equal(t, "0", reward)
	assert.Equal(t, before, last)
	assert.Equal(t, units("90"), env.balanceOf(t, user))
	assert.Len(t, env.events, 1)
}

func TestComplexScenario(t *testing.T) {
	env := newTestEnv(t, 80)
	user := datagen.RandAddress()
	env.fund(t, user, 1000)
	env.fund(t, env.owner, 1000)
	require.NoError(t, env.stk.FundTreasury(env.owner, bnry.Tokens(1000), t0))

	require.NoError(t, env.stk.Stake(user, bnry.Tokens(10), t0))
	env.rewind(t, user, t0)
	require.NoError(t, env.stk.Stake(user, bnry.Tokens(10), t0))
	env.rewind(t, user, t0)
	require.NoError(t, env.stk.Stake(user, bnry.Tokens(10), t0))

	principal, reward, _ := env.participant(t, user)
	assert.Equal(t, units("30"), principal)
	assert.Equal(t, units("30.4"), reward)

	require.NoError(t, env.stk.Withdraw(user, bnry.Tokens(15), t0))

	principal, reward, _ = env.participant(t, user)
	assert.Equal(t, units("30"), principal)
	assert.Equal(t, units("15.4"), reward)

	treasury, err := env.stk.TreasuryBalance()
	require.NoError(t, err)
	assert.Equal(t, units("985"), treasury.String())
	assert.Equal(t, units("985"), env.balanceOf(t, user))
}

func TestFundTreasury(t *testing.T) {
	env := newTestEnv(t, 80)
	env.fund(t, env.owner, 50)
	stranger := datagen.RandAddress()
	env.fund(t, stranger, 50)

	assert.True(t, errors.Is(env.stk.FundTreasury(stranger, bnry.Tokens(1), t0), ErrUnauthorized))
	assert.Equal(t, reverts.InvalidAmount, reverts.KindOf(env.stk.FundTreasury(env.owner, big.NewInt(0), t0)))
	assert.Equal(t, reverts.InsufficientBalance, reverts.KindOf(env.stk.FundTreasury(env.owner, bnry.Tokens(51), t0)))

	require.NoError(t, env.stk.FundTreasury(env.owner, bnry.Tokens(50), t0))
	treasury, err := env.stk.TreasuryBalance()
	require.NoError(t, err)
	assert.Equal(t, units("50"), treasury.String())

	total, err := env.stk.TotalStaked()
	require.NoError(t, err)
	assert.Equal(t, "0", total.String())

	require.Len(t, env.events, 1)
	assert.Equal(t, Event{Name: EventFundTreasury, Account: env.owner, Amount: bnry.Tokens(50)}, env.events[0])
}

func TestChangeAnnualYield(t *testing.T) {
	env := newTestEnv(t, 80)
	user := datagen.RandAddress()
	env.fund(t, user, 100)
	env.fund(t, env.owner, 100)

	require.NoError(t, env.stk.Stake(user, bnry.Tokens(10), t0))
	require.NoError(t, env.stk.Stake(env.owner, bnry.Tokens(10), t0))

	assert.True(t, errors.Is(env.stk.ChangeAnnualYield(user, 10, t0+year), ErrUnauthorized))
	require.NoError(t, env.stk.ChangeAnnualYield(env.owner, 40, t0+year))

	rate, err := env.stk.AnnualYield()
	require.NoError(t, err)
	assert.Equal(t, uint64(40), rate)

	// the caller was rolled at the old rate
	_, reward, last := env.participant(t, env.owner)
	assert.Equal(t, units("8"), reward)
	assert.Equal(t, t0+year, last)

	// everyone else is repriced from their last action
	got, err := env.stk.CalculateCurrentBalanceCompound(user, t0+year)
	require.NoError(t, err)
	assert.Equal(t, units("14"), got.String())

	lastEvent := env.events[len(env.events)-1]
	assert.Equal(t, Event{Name: EventAnnualYieldChanged, Amount: big.NewInt(40)}, lastEvent)
}

func TestChangeAnnualYieldWithoutStake(t *testing.T) {
	env := newTestEnv(t, 80)

	require.NoError(t, env.stk.ChangeAnnualYield(env.owner, 40, t0))

	p, err := env.stk.GetParticipant(env.owner)
	require.NoError(t, err)
	assert.True(t, p.IsEmpty(), "an owner who never staked has no record")
	addrs, err := env.stk.ParticipantAddresses()
	require.NoError(t, err)
	assert.Empty(t, addrs)
}

func TestUpdateTimestamp(t *testing.T) {
	env := newTestEnv(t, 80)
	user := datagen.RandAddress()
	env.fund(t, user, 100)
	require.NoError(t, env.stk.Stake(user, bnry.Tokens(10), t0))

	assert.True(t, errors.Is(env.stk.UpdateTimestamp(user, user, 0, t0), ErrUnauthorized))

	// the accrual up to now is kept before the rewrite
	require.NoError(t, env.stk.UpdateTimestamp(env.owner, user, t0, t0+year))
	_, reward, last := env.participant(t, user)
	assert.Equal(t, units("8"), reward)
	assert.Equal(t, t0, last)

	env.stk.SetTimestampOverride(false)
	err := env.stk.UpdateTimestamp(env.owner, user, 0, t0)
	assert.Equal(t, ErrTimestampOverrideDisabled, err)
	assert.Equal(t, reverts.Unauthorized, reverts.KindOf(err))
}

func TestOverflow(t *testing.T) {
	env := newTestEnv(t, 80)
	user := datagen.RandAddress()
	env.fund(t, user, 100)
	require.NoError(t, env.stk.Stake(user, bnry.Tokens(10), t0))

	require.NoError(t, env.stk.ChangeAnnualYield(env.owner, 1<<62, t0))
	_, err := env.stk.CalculateCurrentBalanceCompound(user, t0+1000*year)
	assert.Equal(t, reverts.ArithmeticOverflow, reverts.KindOf(err))

	err = env.stk.Stake(user, bnry.Tokens(1), t0+1000*year)
	assert.Equal(t, reverts.ArithmeticOverflow, reverts.KindOf(err))
}

func TestReentrantToken(t *testing.T) {
	env := newTestEnv(t, 80)
	user := datagen.RandAddress()
	env.fund(t, user, 100)

	var seen []string
	env.token.SetHook(token.HookFunc(func(from, to bnry.Address, amount *big.Int) error {
		if to != bnry.StakingContractAddress {
			return nil
		}
		principal, _, _ := env.participant(t, from)
		seen = append(seen, principal)

		total, err := env.stk.TotalStaked()
		if err != nil {
			return err
		}
		seen = append(seen, total.String())
		return nil
	}))

	require.NoError(t, env.stk.Stake(user, bnry.Tokens(10), t0))
	assert.Equal(t, []string{units("10"), units("10")}, seen)

	// a failing transfer leaves the effects for the caller to revert
	boom := errors.New("boom")
	env.token.SetHook(token.HookFunc(func(bnry.Address, bnry.Address, *big.Int) error { return boom }))

	cp := env.st.NewCheckpoint()
	err := env.stk.Stake(user, bnry.Tokens(5), t0+10)
	assert.Equal(t, boom, err)
	env.st.RevertTo(cp)

	principal, _, last := env.participant(t, user)
	assert.Equal(t, units("10"), principal)
	assert.Equal(t, t0, last)
	assert.Equal(t, units("90"), env.balanceOf(t, user))
}

func TestEventJSON(t *testing.T) {
	user := bnry.MustParseAddress("0x00000000000000000000000000000000000000aa")

	tests := []struct {
		ev   Event
		want string
	}{
		{
			Event{Name: EventStake, Account: user, Amount: big.NewInt(5)},
			`{"amount_wbnry":"5","customer":"0x00000000000000000000000000000000000000aa","event":"Stake"}`,
		},
		{
			Event{Name: EventFundTreasury, Account: user, Amount: big.NewInt(7)},
			`{"amount_wbnry":"7","event":"FundTreasury","funder":"0x00000000000000000000000000000000000000aa"}`,
		},
		{
			Event{Name: EventAnnualYieldChanged, Amount: big.NewInt(40)},
			`{"event":"AnnualYieldChanged","newAnnualYield":"40"}`,
		},
	}
	for _, tt := range tests {
		data, err := json.Marshal(tt.ev)
		require.NoError(t, err)
		assert.JSONEq(t, tt.want, string(data))
	}
}
