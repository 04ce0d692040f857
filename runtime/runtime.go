// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package runtime executes staking and token operations atomically.
// Every operation runs against a state checkpoint; a failed operation is
// reverted as a whole and its events are dropped, a successful one is
// committed to the kv store and its events are written to the event db.
package runtime

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/binarybit/staking/bnry"
	"github.com/binarybit/staking/builtin/solidity"
	"github.com/binarybit/staking/builtin/staking"
	"github.com/binarybit/staking/builtin/staking/participant"
	"github.com/binarybit/staking/builtin/token"
	"github.com/binarybit/staking/co"
	"github.com/binarybit/staking/eventdb"
	"github.com/binarybit/staking/kv"
	"github.com/binarybit/staking/log"
	"github.com/binarybit/staking/state"
)

var logger = log.WithContext("pkg", "runtime")

// Observer is told about committed operations.
type Observer interface {
	OperationCommitted(op string, now uint64)
	EventsRecorded(err error)
}

// Options configures a Runtime.
type Options struct {
	CacheSize         int      // state cache entries
	MaxSupply         *big.Int // token supply cap, nil for uncapped
	TimestampOverride bool     // allow UpdateTimestamp
	Observer          Observer // optional
}

// Receipt describes a committed operation.
type Receipt struct {
	Op     string
	Time   uint64
	Events []*eventdb.Event
}

// Runtime is safe for concurrent use; operations are serialized.
type Runtime struct {
	mu       sync.Mutex
	state    *state.State
	token    *token.Token
	staking  *staking.Staking
	events   *eventdb.EventDB
	clock    Clock
	observer Observer
	pending  []staking.Event
	newEvs   co.Signal
}

// New binds a runtime to db and events. A nil clock uses the system clock.
func New(db kv.Store, events *eventdb.EventDB, clock Clock, opts Options) (*Runtime, error) {
	st, err := state.New(db, state.Options{CacheSize: opts.CacheSize})
	if err != nil {
		return nil, err
	}
	if clock == nil {
		clock = SystemClock
	}

	rt := &Runtime{
		state:    st,
		events:   events,
		clock:    clock,
		observer: opts.Observer,
	}
	rt.token = token.New(solidity.NewContext(bnry.TokenContractAddress, st), opts.MaxSupply)
	rt.staking = staking.New(bnry.StakingContractAddress, st, rt.token, staking.EmitterFunc(rt.emit))
	rt.staking.SetTimestampOverride(opts.TimestampOverride)
	return rt, nil
}

func (rt *Runtime) emit(ev staking.Event) {
	rt.pending = append(rt.pending, ev)
}

// Staking returns the engine. Calls on it bypass the runtime and are only
// meant for collaborators running inside an operation.
func (rt *Runtime) Staking() *staking.Staking { return rt.staking }

// Token returns the token ledger, see Staking.
func (rt *Runtime) Token() *token.Token { return rt.token }

// Now returns the runtime clock.
func (rt *Runtime) Now() uint64 { return rt.clock() }

// execute runs fn atomically under the runtime lock.
func (rt *Runtime) execute(ctx context.Context, op string, fn func(now uint64) error) (*Receipt, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	start := time.Now()
	now := rt.clock()
	checkpoint := rt.state.NewCheckpoint()
	rt.pending = rt.pending[:0]

	defer func() {
		metricOpDuration().ObserveWithLabels(time.Since(start).Milliseconds(), map[string]string{"op": op})
	}()

	if err := fn(now); err != nil {
		rt.state.RevertTo(checkpoint)
		rt.pending = rt.pending[:0]
		metricOpCounter().AddWithLabel(1, map[string]string{"op": op, "status": "reverted"})
		logger.Debug("operation reverted", "op", op, "now", now, "error", err)
		return nil, err
	}

	if err := rt.state.Stage().Commit(); err != nil {
		rt.state.RevertTo(checkpoint)
		rt.pending = rt.pending[:0]
		metricOpCounter().AddWithLabel(1, map[string]string{"op": op, "status": "failed"})
		logger.Error("failed to commit state", "op", op, "error", err)
		return nil, errors.Wrap(err, "commit state")
	}

	receipt := &Receipt{Op: op, Time: now}
	for _, ev := range rt.pending {
		receipt.Events = append(receipt.Events, eventdb.NewEvent(ev, now))
	}
	rt.pending = rt.pending[:0]
	metricOpCounter().AddWithLabel(1, map[string]string{"op": op, "status": "committed"})
	rt.updateGauges()
	if rt.observer != nil {
		rt.observer.OperationCommitted(op, now)
	}

	if rt.events != nil {
		err := rt.events.Insert(ctx, receipt.Events)
		if rt.observer != nil {
			rt.observer.EventsRecorded(err)
		}
		if err != nil {
			logger.Error("failed to record events", "op", op, "count", len(receipt.Events), "error", err)
			return receipt, errors.Wrap(err, "record events")
		}
	}
	if len(receipt.Events) > 0 {
		rt.newEvs.Broadcast()
	}
	logger.Debug("operation committed", "op", op, "now", now, "events", len(receipt.Events))
	return receipt, nil
}

// UpdateMetrics refreshes the ledger gauges.
func (rt *Runtime) UpdateMetrics() {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.updateGauges()
}

func (rt *Runtime) updateGauges() {
	rt.state.UpdateMetrics()
	if total, err := rt.staking.TotalStaked(); err == nil {
		metricTotalStaked().Set(gaugeValue(total))
	}
	if treasury, err := rt.staking.TreasuryBalance(); err == nil {
		metricTreasury().Set(gaugeValue(treasury))
	}
	if n, err := rt.staking.ParticipantCount(); err == nil {
		metricParticipants().Set(int64(n))
	}
}

// Genesis initializes the token and the staking contract.
func (rt *Runtime) Genesis(ctx context.Context, owner bnry.Address, annualYield uint64) (*Receipt, error) {
	return rt.execute(ctx, "genesis", func(uint64) error {
		if err := rt.staking.Initialize(owner, annualYield); err != nil {
			return err
		}
		rt.token.Initialize(owner)
		return nil
	})
}

// Staking operations

func (rt *Runtime) Stake(ctx context.Context, account bnry.Address, amount *big.Int) (*Receipt, error) {
	return rt.execute(ctx, "stake", func(now uint64) error {
		return rt.staking.Stake(account, amount, now)
	})
}

func (rt *Runtime) Withdraw(ctx context.Context, account bnry.Address, amount *big.Int) (*Receipt, error) {
	return rt.execute(ctx, "withdraw", func(now uint64) error {
		return rt.staking.Withdraw(account, amount, now)
	})
}

func (rt *Runtime) FundTreasury(ctx context.Context, caller bnry.Address, amount *big.Int) (*Receipt, error) {
	return rt.execute(ctx, "fund_treasury", func(now uint64) error {
		return rt.staking.FundTreasury(caller, amount, now)
	})
}

func (rt *Runtime) ChangeAnnualYield(ctx context.Context, caller bnry.Address, percent uint64) (*Receipt, error) {
	return rt.execute(ctx, "change_annual_yield", func(now uint64) error {
		return rt.staking.ChangeAnnualYield(caller, percent, now)
	})
}

func (rt *Runtime) UpdateTimestamp(ctx context.Context, caller, account bnry.Address, timestamp uint64) (*Receipt, error) {
	return rt.execute(ctx, "update_timestamp", func(now uint64) error {
		return rt.staking.UpdateTimestamp(caller, account, timestamp, now)
	})
}

// Token operations

func (rt *Runtime) Mint(ctx context.Context, caller, to bnry.Address, amount *big.Int) (*Receipt, error) {
	return rt.execute(ctx, "mint", func(uint64) error {
		return rt.token.Mint(caller, to, amount)
	})
}

func (rt *Runtime) Approve(ctx context.Context, owner, spender bnry.Address, amount *big.Int) (*Receipt, error) {
	return rt.execute(ctx, "approve", func(uint64) error {
		return rt.token.Approve(owner, spender, amount)
	})
}

func (rt *Runtime) Transfer(ctx context.Context, from, to bnry.Address, amount *big.Int) (*Receipt, error) {
	return rt.execute(ctx, "transfer", func(uint64) error {
		return rt.token.Transfer(from, to, amount)
	})
}

// Queries

func (rt *Runtime) query(fn func() error) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return fn()
}

// CurrentBalance returns principal plus reward of account at the runtime clock.
func (rt *Runtime) CurrentBalance(account bnry.Address, linear bool) (balance *big.Int, err error) {
	err = rt.query(func() error {
		now := rt.clock()
		if linear {
			balance, err = rt.staking.CalculateCurrentBalanceLinear(account, now)
		} else {
			balance, err = rt.staking.CalculateCurrentBalanceCompound(account, now)
		}
		return err
	})
	return
}

// ParticipantBalance returns the stored record of account and its current
// balance, both read under one lock.
func (rt *Runtime) ParticipantBalance(account bnry.Address, linear bool) (p *participant.Participant, balance *big.Int, err error) {
	err = rt.query(func() error {
		if p, err = rt.staking.GetParticipant(account); err != nil {
			return err
		}
		now := rt.clock()
		if linear {
			balance, err = rt.staking.CalculateCurrentBalanceLinear(account, now)
		} else {
			balance, err = rt.staking.CalculateCurrentBalanceCompound(account, now)
		}
		return err
	})
	return
}

func (rt *Runtime) Participant(account bnry.Address) (p *participant.Participant, err error) {
	err = rt.query(func() error {
		p, err = rt.staking.GetParticipant(account)
		return err
	})
	return
}

func (rt *Runtime) ParticipantAddresses() (addrs []bnry.Address, err error) {
	err = rt.query(func() error {
		addrs, err = rt.staking.ParticipantAddresses()
		return err
	})
	return
}

func (rt *Runtime) TotalStaked() (v *big.Int, err error) {
	err = rt.query(func() error {
		v, err = rt.staking.TotalStaked()
		return err
	})
	return
}

func (rt *Runtime) TreasuryBalance() (v *big.Int, err error) {
	err = rt.query(func() error {
		v, err = rt.staking.TreasuryBalance()
		return err
	})
	return
}

func (rt *Runtime) AnnualYield() (v uint64, err error) {
	err = rt.query(func() error {
		v, err = rt.staking.AnnualYield()
		return err
	})
	return
}

func (rt *Runtime) Owner() (v bnry.Address, err error) {
	err = rt.query(func() error {
		v, err = rt.staking.Owner()
		return err
	})
	return
}

func (rt *Runtime) TokenAddress() (v bnry.Address, err error) {
	err = rt.query(func() error {
		v, err = rt.staking.TokenAddress()
		return err
	})
	return
}

func (rt *Runtime) TokenBalance(addr bnry.Address) (v *big.Int, err error) {
	err = rt.query(func() error {
		v, err = rt.token.BalanceOf(addr)
		return err
	})
	return
}

func (rt *Runtime) Allowance(owner, spender bnry.Address) (v *big.Int, err error) {
	err = rt.query(func() error {
		v, err = rt.token.Allowance(owner, spender)
		return err
	})
	return
}

func (rt *Runtime) TotalSupply() (v *big.Int, err error) {
	err = rt.query(func() error {
		v, err = rt.token.TotalSupply()
		return err
	})
	return
}

// WaitEvents returns a channel closed when the next events are recorded.
func (rt *Runtime) WaitEvents() <-chan struct{} {
	return rt.newEvs.Wait()
}

// Events queries the event db. It does not take the runtime lock.
func (rt *Runtime) Events(ctx context.Context, filter *eventdb.Filter) ([]*eventdb.Event, error) {
	if rt.events == nil {
		return nil, nil
	}
	return rt.events.Filter(ctx, filter)
}

// EventsAfter returns up to limit events recorded after seq.
func (rt *Runtime) EventsAfter(ctx context.Context, seq int64, limit uint64) ([]*eventdb.Event, error) {
	if rt.events == nil {
		return nil, nil
	}
	return rt.events.After(ctx, seq, limit)
}
