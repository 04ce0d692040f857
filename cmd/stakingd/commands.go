// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/binarybit/staking/bnry"
	"github.com/binarybit/staking/eventdb"
	"github.com/binarybit/staking/metrics"
	"github.com/binarybit/staking/runtime"
)

// withNode opens the node for the duration of fn.
func withNode(fn func(ctx *cli.Context, n *node) error) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		n, err := openNode(ctx)
		if err != nil {
			return err
		}
		defer n.Close()
		return exitError(fn(ctx, n))
	}
}

// transfer is the shape of every from/amount operation.
type transfer func(rt *runtime.Runtime, from bnry.Address, amount *big.Int) (*runtime.Receipt, error)

func withAmount(op transfer) cli.ActionFunc {
	return withNode(func(ctx *cli.Context, n *node) error {
		from, err := requireAddress(ctx, fromFlag)
		if err != nil {
			return err
		}
		amount, err := requireAmount(ctx)
		if err != nil {
			return err
		}
		receipt, err := op(n.rt, from, amount)
		if err != nil {
			return err
		}
		printReceipt(os.Stdout, receipt)
		return nil
	})
}

var (
	initAction = withNode(func(ctx *cli.Context, n *node) error {
		owner, err := requireAddress(ctx, ownerFlag)
		if err != nil {
			return err
		}
		receipt, err := n.rt.Genesis(context.Background(), owner, ctx.Uint64(yieldFlag.Name))
		if err != nil {
			return err
		}
		printReceipt(os.Stdout, receipt)
		return nil
	})

	stakeAction = withAmount(func(rt *runtime.Runtime, from bnry.Address, amount *big.Int) (*runtime.Receipt, error) {
		return rt.Stake(context.Background(), from, amount)
	})

	withdrawAction = withAmount(func(rt *runtime.Runtime, from bnry.Address, amount *big.Int) (*runtime.Receipt, error) {
		return rt.Withdraw(context.Background(), from, amount)
	})

	fundAction = withAmount(func(rt *runtime.Runtime, from bnry.Address, amount *big.Int) (*runtime.Receipt, error) {
		return rt.FundTreasury(context.Background(), from, amount)
	})

	setYieldAction = withNode(func(ctx *cli.Context, n *node) error {
		from, err := requireAddress(ctx, fromFlag)
		if err != nil {
			return err
		}
		if !ctx.IsSet(percentFlag.Name) {
			return fmt.Errorf("missing --%s", percentFlag.Name)
		}
		receipt, err := n.rt.ChangeAnnualYield(context.Background(), from, ctx.Uint64(percentFlag.Name))
		if err != nil {
			return err
		}
		printReceipt(os.Stdout, receipt)
		return nil
	})

	setTimestampAction = withNode(func(ctx *cli.Context, n *node) error {
		from, err := requireAddress(ctx, fromFlag)
		if err != nil {
			return err
		}
		account, err := requireAddress(ctx, accountFlag)
		if err != nil {
			return err
		}
		receipt, err := n.rt.UpdateTimestamp(context.Background(), from, account, ctx.Uint64(timestampFlag.Name))
		if err != nil {
			return err
		}
		printReceipt(os.Stdout, receipt)
		return nil
	})

	mintAction = withNode(func(ctx *cli.Context, n *node) error {
		from, err := requireAddress(ctx, fromFlag)
		if err != nil {
			return err
		}
		to, err := requireAddress(ctx, toFlag)
		if err != nil {
			return err
		}
		amount, err := requireAmount(ctx)
		if err != nil {
			return err
		}
		receipt, err := n.rt.Mint(context.Background(), from, to, amount)
		if err != nil {
			return err
		}
		printReceipt(os.Stdout, receipt)
		return nil
	})

	approveAction = withNode(func(ctx *cli.Context, n *node) error {
		from, err := requireAddress(ctx, fromFlag)
		if err != nil {
			return err
		}
		spender := bnry.StakingContractAddress
		if ctx.IsSet(spenderFlag.Name) {
			if spender, err = requireAddress(ctx, spenderFlag); err != nil {
				return err
			}
		}
		amount, err := requireAmount(ctx)
		if err != nil {
			return err
		}
		receipt, err := n.rt.Approve(context.Background(), from, spender, amount)
		if err != nil {
			return err
		}
		printReceipt(os.Stdout, receipt)
		return nil
	})

	transferAction = withNode(func(ctx *cli.Context, n *node) error {
		from, err := requireAddress(ctx, fromFlag)
		if err != nil {
			return err
		}
		to, err := requireAddress(ctx, toFlag)
		if err != nil {
			return err
		}
		amount, err := requireAmount(ctx)
		if err != nil {
			return err
		}
		receipt, err := n.rt.Transfer(context.Background(), from, to, amount)
		if err != nil {
			return err
		}
		printReceipt(os.Stdout, receipt)
		return nil
	})

	tokenBalanceAction = withNode(func(ctx *cli.Context, n *node) error {
		account, err := requireAddress(ctx, accountFlag)
		if err != nil {
			return err
		}
		balance, err := n.rt.TokenBalance(account)
		if err != nil {
			return err
		}
		allowance, err := n.rt.Allowance(account, bnry.StakingContractAddress)
		if err != nil {
			return err
		}
		fmt.Printf("balance:   %s %s\n", bnry.FormatTokens(balance), bnry.TokenSymbol)
		fmt.Printf("allowance: %s %s\n", bnry.FormatTokens(allowance), bnry.TokenSymbol)
		return nil
	})

	participantAction = withNode(func(ctx *cli.Context, n *node) error {
		account, err := requireAddress(ctx, accountFlag)
		if err != nil {
			return err
		}
		p, err := n.rt.Participant(account)
		if err != nil {
			return err
		}
		return printJSON(map[string]any{
			"owner":          p.Owner,
			"principal":      bnry.FormatTokens(p.Principal),
			"accruedReward":  bnry.FormatTokens(p.AccruedReward),
			"lastActionTime": p.LastActionTime,
		})
	})

	participantsAction = withNode(func(_ *cli.Context, n *node) error {
		addrs, err := n.rt.ParticipantAddresses()
		if err != nil {
			return err
		}
		for _, addr := range addrs {
			fmt.Println(addr)
		}
		return nil
	})

	balanceAction = withNode(func(ctx *cli.Context, n *node) error {
		account, err := requireAddress(ctx, accountFlag)
		if err != nil {
			return err
		}
		balance, err := n.rt.CurrentBalance(account, ctx.Bool(linearFlag.Name))
		if err != nil {
			return err
		}
		fmt.Printf("%s %s\n", bnry.FormatTokens(balance), bnry.TokenSymbol)
		return nil
	})

	statusAction = withNode(func(_ *cli.Context, n *node) error {
		owner, err := n.rt.Owner()
		if err != nil {
			return err
		}
		tokenAddr, err := n.rt.TokenAddress()
		if err != nil {
			return err
		}
		rate, err := n.rt.AnnualYield()
		if err != nil {
			return err
		}
		total, err := n.rt.TotalStaked()
		if err != nil {
			return err
		}
		treasury, err := n.rt.TreasuryBalance()
		if err != nil {
			return err
		}
		supply, err := n.rt.TotalSupply()
		if err != nil {
			return err
		}
		return printJSON(map[string]any{
			"owner":        owner,
			"token":        tokenAddr,
			"annualYield":  rate,
			"totalStaked":  bnry.FormatTokens(total),
			"treasury":     bnry.FormatTokens(treasury),
			"totalSupply":  bnry.FormatTokens(supply),
			"now":          n.rt.Now(),
			"clockOffset":  n.clock.Offset().String(),
			"participants": participantCount(n.rt),
		})
	})

	eventsAction = withNode(func(ctx *cli.Context, n *node) error {
		filter := &eventdb.Filter{
			Order:   eventdb.ASC,
			Options: &eventdb.Options{Offset: ctx.Uint64(offsetFlag.Name), Limit: ctx.Uint64(limitFlag.Name)},
		}
		if ctx.Bool(descFlag.Name) {
			filter.Order = eventdb.DESC
		}
		criteria := &eventdb.Criteria{}
		if name := ctx.String(nameFlag.Name); name != "" {
			criteria.Name = &name
		}
		if ctx.IsSet(accountFlag.Name) {
			account, err := requireAddress(ctx, accountFlag)
			if err != nil {
				return err
			}
			criteria.Account = &account
		}
		if criteria.Name != nil || criteria.Account != nil {
			filter.CriteriaSet = []*eventdb.Criteria{criteria}
		}

		events, err := n.rt.Events(context.Background(), filter)
		if err != nil {
			return err
		}
		for _, ev := range events {
			printEvent(os.Stdout, ev)
		}
		return nil
	})

	metricsAction = func(ctx *cli.Context) error {
		metrics.InitializePrometheusMetrics()
		n, err := openNode(ctx)
		if err != nil {
			return err
		}
		defer n.Close()

		n.updateMetrics()
		return metrics.WriteText(os.Stdout)
	}
)

func participantCount(rt *runtime.Runtime) int {
	addrs, err := rt.ParticipantAddresses()
	if err != nil {
		return -1
	}
	return len(addrs)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
