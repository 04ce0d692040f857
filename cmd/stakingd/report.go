// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"io"
	"math/big"
	"os"
	"sync"

	"gopkg.in/cheggaaa/pb.v1"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/binarybit/staking/bnry"
	"github.com/binarybit/staking/co"
	"github.com/binarybit/staking/runtime"
)

type reportRow struct {
	Account bnry.Address
	Balance *big.Int
	Err     error
}

// buildReport computes the current balance of every participant, in registry order.
// progress is called once per participant.
func buildReport(rt *runtime.Runtime, linear bool, workers int, progress func()) ([]reportRow, error) {
	addrs, err := rt.ParticipantAddresses()
	if err != nil {
		return nil, err
	}

	rows := make([]reportRow, len(addrs))
	var mu sync.Mutex
	<-co.Parallel(workers, func(queue chan<- func()) {
		for i, addr := range addrs {
			queue <- func() {
				balance, err := rt.CurrentBalance(addr, linear)
				rows[i] = reportRow{Account: addr, Balance: balance, Err: err}
				mu.Lock()
				progress()
				mu.Unlock()
			}
		}
	})
	return rows, nil
}

func writeReport(w io.Writer, rows []reportRow) (total *big.Int) {
	total = new(big.Int)
	for _, row := range rows {
		if row.Err != nil {
			fmt.Fprintf(w, "%s  error: %v\n", row.Account, row.Err)
			continue
		}
		total.Add(total, row.Balance)
		fmt.Fprintf(w, "%s  %s\n", row.Account, bnry.FormatTokens(row.Balance))
	}
	fmt.Fprintf(w, "total  %s %s\n", bnry.FormatTokens(total), bnry.TokenSymbol)
	return total
}

var reportAction = withNode(func(ctx *cli.Context, n *node) error {
	count := participantCount(n.rt)
	if count <= 0 {
		fmt.Println("no participants")
		return nil
	}

	bar := pb.New(count)
	bar.Output = os.Stderr
	bar.SetMaxWidth(90).Start()
	defer func() { bar.NotPrint = true }()

	rows, err := buildReport(n.rt, ctx.Bool(linearFlag.Name), ctx.Int(workersFlag.Name), func() { bar.Increment() })
	if err != nil {
		return err
	}
	bar.Finish()

	writeReport(os.Stdout, rows)
	return nil
})
