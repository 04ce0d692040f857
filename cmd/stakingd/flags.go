// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to a YAML config file",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for the ledger and event databases",
	}
	cacheFlag = cli.IntFlag{
		Name:  "cache",
		Value: 64,
		Usage: "megabytes of ram allocated to the ledger database",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-5)",
	}
	verbosityStakingFlag = cli.IntFlag{
		Name:  "verbosity-staking",
		Value: 2,
		Usage: "log verbosity for the staking contract (0-5)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	ntpServerFlag = cli.StringFlag{
		Name:  "ntp-server",
		Usage: "correct the clock against this NTP server before each operation",
	}
	timestampOverrideFlag = cli.BoolFlag{
		Name:  "allow-timestamp-override",
		Usage: "allow the owner to rewrite a participant's last action time",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "collect prometheus metrics",
	}

	// command flags
	fromFlag = cli.StringFlag{
		Name:  "from",
		Usage: "address performing the operation",
	}
	toFlag = cli.StringFlag{
		Name:  "to",
		Usage: "receiving address",
	}
	spenderFlag = cli.StringFlag{
		Name:  "spender",
		Usage: "address allowed to spend, defaults to the staking contract",
	}
	accountFlag = cli.StringFlag{
		Name:  "account",
		Usage: "participant address",
	}
	amountFlag = cli.StringFlag{
		Name:  "amount",
		Usage: "token amount, e.g. 10 or 0.5",
	}
	ownerFlag = cli.StringFlag{
		Name:  "owner",
		Usage: "owner of the token and staking contracts",
	}
	yieldFlag = cli.Uint64Flag{
		Name:  "yield",
		Value: 80,
		Usage: "annual yield in percent",
	}
	percentFlag = cli.Uint64Flag{
		Name:  "percent",
		Usage: "annual yield in percent",
	}
	timestampFlag = cli.Uint64Flag{
		Name:  "timestamp",
		Usage: "unix time in seconds",
	}
	linearFlag = cli.BoolFlag{
		Name:  "linear",
		Usage: "show the balance without compounding",
	}
	nameFlag = cli.StringFlag{
		Name:  "name",
		Usage: "event name (Stake|Withdraw|FundTreasury|AnnualYieldChanged)",
	}
	limitFlag = cli.Uint64Flag{
		Name:  "limit",
		Value: 100,
		Usage: "maximum number of results",
	}
	offsetFlag = cli.Uint64Flag{
		Name:  "offset",
		Usage: "number of results to skip",
	}
	descFlag = cli.BoolFlag{
		Name:  "desc",
		Usage: "newest first",
	}
	workersFlag = cli.IntFlag{
		Name:  "workers",
		Usage: "parallel workers, 0 for one per CPU",
	}

	// serve flags
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8669",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	apiEventsLimitFlag = cli.Uint64Flag{
		Name:  "api-events-limit",
		Value: 1000,
		Usage: "limit the number of events returned by /events",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	apiSlowQueriesThresholdFlag = cli.Uint64Flag{
		Name:  "api-slow-queries-threshold",
		Usage: "all queries with duration (ms) above the threshold will be logged",
	}
	adminAddrFlag = cli.StringFlag{
		Name:  "admin-addr",
		Usage: "admin service listening address, empty to disable",
	}
	apiLog5xxErrorsFlag = cli.BoolFlag{
		Name:  "api-log-5xx-errors",
		Usage: "log all API requests answered with a 5xx status",
	}
)
