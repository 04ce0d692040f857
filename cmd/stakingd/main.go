// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/binarybit/staking/log"
)

var (
	version   string
	gitCommit string
	gitTag    string
	logger    = log.WithContext("pkg", "stakingd")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version: fullVersion(),
		Name:    "stakingd",
		Usage:   "WBNRY staking ledger",
		Flags: []cli.Flag{
			configFlag,
			dataDirFlag,
			cacheFlag,
			verbosityFlag,
			verbosityStakingFlag,
			jsonLogsFlag,
			ntpServerFlag,
			timestampOverrideFlag,
			enableMetricsFlag,
		},
		Commands: []cli.Command{
			{
				Name:   "init",
				Usage:  "deploy the token and staking contracts",
				Flags:  []cli.Flag{ownerFlag, yieldFlag},
				Action: initAction,
			},
			{
				Name:  "token",
				Usage: "operate the WBNRY token",
				Subcommands: []cli.Command{
					{
						Name:   "mint",
						Usage:  "mint tokens (owner only)",
						Flags:  []cli.Flag{fromFlag, toFlag, amountFlag},
						Action: mintAction,
					},
					{
						Name:   "approve",
						Usage:  "allow a spender to move tokens",
						Flags:  []cli.Flag{fromFlag, spenderFlag, amountFlag},
						Action: approveAction,
					},
					{
						Name:   "transfer",
						Usage:  "transfer tokens",
						Flags:  []cli.Flag{fromFlag, toFlag, amountFlag},
						Action: transferAction,
					},
					{
						Name:   "balance",
						Usage:  "show token balance and allowance to the staking contract",
						Flags:  []cli.Flag{accountFlag},
						Action: tokenBalanceAction,
					},
				},
			},
			{
				Name:   "stake",
				Usage:  "stake tokens",
				Flags:  []cli.Flag{fromFlag, amountFlag},
				Action: stakeAction,
			},
			{
				Name:   "withdraw",
				Usage:  "withdraw reward first, then principal",
				Flags:  []cli.Flag{fromFlag, amountFlag},
				Action: withdrawAction,
			},
			{
				Name:   "fund",
				Usage:  "fund the reward treasury (owner only)",
				Flags:  []cli.Flag{fromFlag, amountFlag},
				Action: fundAction,
			},
			{
				Name:   "set-yield",
				Usage:  "change the annual yield (owner only)",
				Flags:  []cli.Flag{fromFlag, percentFlag},
				Action: setYieldAction,
			},
			{
				Name:   "set-timestamp",
				Usage:  "rewrite a participant's last action time (owner only)",
				Flags:  []cli.Flag{fromFlag, accountFlag, timestampFlag},
				Action: setTimestampAction,
			},
			{
				Name:   "participant",
				Usage:  "show a participant record",
				Flags:  []cli.Flag{accountFlag},
				Action: participantAction,
			},
			{
				Name:   "participants",
				Usage:  "list every address that ever staked",
				Action: participantsAction,
			},
			{
				Name:   "balance",
				Usage:  "show principal plus reward at the current time",
				Flags:  []cli.Flag{accountFlag, linearFlag},
				Action: balanceAction,
			},
			{
				Name:   "status",
				Usage:  "show contract totals",
				Action: statusAction,
			},
			{
				Name:   "events",
				Usage:  "query recorded events",
				Flags:  []cli.Flag{nameFlag, accountFlag, limitFlag, offsetFlag, descFlag},
				Action: eventsAction,
			},
			{
				Name:   "report",
				Usage:  "compute the current balance of every participant",
				Flags:  []cli.Flag{linearFlag, workersFlag},
				Action: reportAction,
			},
			{
				Name:  "serve",
				Usage: "serve the ledger over http and websocket",
				Flags: []cli.Flag{
					apiAddrFlag,
					apiCorsFlag,
					apiEventsLimitFlag,
					enableAPILogsFlag,
					apiSlowQueriesThresholdFlag,
					apiLog5xxErrorsFlag,
					adminAddrFlag,
				},
				Action: serveAction,
			},
			{
				Name:   "metrics",
				Usage:  "dump prometheus metrics",
				Action: metricsAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
