// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"io"
	"math/big"
	"os"
	"os/user"
	"path/filepath"
	"time"

	"github.com/beevik/ntp"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/binarybit/staking/bnry"
	"github.com/binarybit/staking/builtin/staking"
	"github.com/binarybit/staking/builtin/staking/reverts"
	"github.com/binarybit/staking/eventdb"
	"github.com/binarybit/staking/health"
	"github.com/binarybit/staking/log"
	"github.com/binarybit/staking/lvldb"
	"github.com/binarybit/staking/metrics"
	"github.com/binarybit/staking/runtime"
)

// maxClockOffset is the drift tolerated before a warning is logged.
const maxClockOffset = 5 * time.Second

// initLogger installs the root logger and returns its adjustable level.
func initLogger(cfg *config) *log.LevelVar {
	useColor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
	if cfg.JSONLogs {
		root, level := log.NewLeveledLogger(log.JSONHandler(os.Stderr), cfg.Verbosity)
		log.SetDefault(root)
		staking.SetLogger(log.NewJSONLogger(os.Stderr, cfg.VerbosityStaking))
		return level
	}
	root, level := log.NewLeveledLogger(log.TerminalHandler(os.Stderr, useColor), cfg.Verbosity)
	log.SetDefault(root)
	staking.SetLogger(log.NewTerminalLogger(os.Stderr, cfg.VerbosityStaking, useColor))
	return level
}

func defaultDataDir() string {
	if home := homeDir(); home != "" {
		return filepath.Join(home, ".wbnry-staking")
	}
	return filepath.Join(os.TempDir(), "wbnry-staking")
}

func homeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// node bundles everything a command needs.
type node struct {
	cfg      *config
	rt       *runtime.Runtime
	db       *lvldb.LevelDB
	clock    *runtime.OffsetClock
	logLevel *log.LevelVar
	health   *health.Health
	closers  []func() error
}

// updateMetrics refreshes the ledger and database gauges.
func (n *node) updateMetrics() {
	n.rt.UpdateMetrics()
	n.db.UpdateMetrics()
}

func (n *node) Close() {
	for i := len(n.closers) - 1; i >= 0; i-- {
		if err := n.closers[i](); err != nil {
			logger.Warn("close failed", "error", err)
		}
	}
}

func openNode(ctx *cli.Context) (*node, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	logLevel := initLogger(cfg)
	if cfg.EnableMetrics {
		metrics.InitializePrometheusMetrics()
	}

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, errors.Wrap(err, "create data dir")
	}

	n := &node{cfg: cfg, logLevel: logLevel, health: &health.Health{}}
	ok := false
	defer func() {
		if !ok {
			n.Close()
		}
	}()

	db, err := lvldb.New(filepath.Join(cfg.DataDir, "ledger.db"), lvldb.Options{
		CacheSize:              cfg.Cache,
		OpenFilesCacheCapacity: 64,
	})
	if err != nil {
		return nil, err
	}
	n.db = db
	n.closers = append(n.closers, db.Close)

	events, err := eventdb.New(filepath.Join(cfg.DataDir, "events.db"))
	if err != nil {
		return nil, errors.Wrap(err, "open event db")
	}
	n.closers = append(n.closers, events.Close)

	n.clock = runtime.NewOffsetClock(runtime.SystemClock)
	if cfg.NTPServer != "" {
		checkClockOffset(cfg.NTPServer, n.clock, n.health)
	}

	n.rt, err = runtime.New(db, events, n.clock.Now, runtime.Options{
		MaxSupply:         bnry.MaxTokenSupply,
		TimestampOverride: cfg.TimestampOverride,
		Observer:          n.health,
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("node opened", "data-dir", cfg.DataDir, "sqlite", events.DriverVersion())
	ok = true
	return n, nil
}

// checkClockOffset corrects clock by the offset reported by server.
func checkClockOffset(server string, clock *runtime.OffsetClock, h *health.Health) {
	resp, err := ntp.Query(server)
	if err != nil {
		logger.Warn("failed to access NTP", "server", server, "error", err)
		return
	}
	offset := resp.ClockOffset
	if offset > maxClockOffset || offset < -maxClockOffset {
		logger.Warn("clock offset detected", "offset", offset)
	}
	clock.SetOffset(offset)
	h.ClockChecked(offset)
}

func requireAddress(ctx *cli.Context, flag cli.StringFlag) (bnry.Address, error) {
	s := ctx.String(flag.Name)
	if s == "" {
		return bnry.Address{}, fmt.Errorf("missing --%s", flag.Name)
	}
	addr, err := bnry.ParseAddress(s)
	if err != nil {
		return bnry.Address{}, errors.Wrapf(err, "--%s", flag.Name)
	}
	return addr, nil
}

func requireAmount(ctx *cli.Context) (*big.Int, error) {
	s := ctx.String(amountFlag.Name)
	if s == "" {
		return nil, fmt.Errorf("missing --%s", amountFlag.Name)
	}
	amount, err := bnry.ParseTokens(s)
	if err != nil {
		return nil, errors.Wrapf(err, "--%s", amountFlag.Name)
	}
	return amount, nil
}

func printReceipt(w io.Writer, receipt *runtime.Receipt) {
	fmt.Fprintf(w, "%s committed at %d\n", receipt.Op, receipt.Time)
	for _, ev := range receipt.Events {
		printEvent(w, ev)
	}
}

func printEvent(w io.Writer, ev *eventdb.Event) {
	if ev.Name == staking.EventAnnualYieldChanged {
		fmt.Fprintf(w, "  #%d %-18s %d %s%%\n", ev.Seq, ev.Name, ev.Time, ev.Amount)
		return
	}
	fmt.Fprintf(w, "  #%d %-18s %d %s %s %s\n", ev.Seq, ev.Name, ev.Time, ev.Account, bnry.FormatTokens(ev.Amount), bnry.TokenSymbol)
}

// exitError maps a reverted operation to exit code 2.
func exitError(err error) error {
	if err == nil {
		return nil
	}
	if reverts.IsRevertErr(err) {
		return cli.NewExitError(fmt.Sprintf("reverted (%s): %v", reverts.KindOf(err), err), 2)
	}
	return err
}
