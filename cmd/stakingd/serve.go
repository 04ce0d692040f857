// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/binarybit/staking/api"
	"github.com/binarybit/staking/api/admin"
	"github.com/binarybit/staking/co"
)

const housekeepingInterval = 10 * time.Minute

func serveAction(ctx *cli.Context) error {
	n, err := openNode(ctx)
	if err != nil {
		return err
	}
	defer n.Close()

	reqLogger := &atomic.Bool{}
	reqLogger.Store(ctx.Bool(enableAPILogsFlag.Name))

	handler, closeSubs := api.New(n.rt, api.Options{
		AllowedOrigins:       ctx.String(apiCorsFlag.Name),
		EventsLimit:          ctx.Uint64(apiEventsLimitFlag.Name),
		EnableReqLogger:      reqLogger,
		SlowQueriesThreshold: time.Duration(ctx.Uint64(apiSlowQueriesThresholdFlag.Name)) * time.Millisecond,
		Log5xxErrors:         ctx.Bool(apiLog5xxErrorsFlag.Name),
		EnableMetrics:        n.cfg.EnableMetrics,
	})

	addr := ctx.String(apiAddrFlag.Name)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen API addr [%v]", addr)
	}
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: time.Second, ReadTimeout: 5 * time.Second}

	adminURL := "disabled"
	if addr := ctx.String(adminAddrFlag.Name); addr != "" {
		url, stopAdmin, err := admin.StartServer(addr, admin.New(n.logLevel, reqLogger, n.health, maxClockOffset))
		if err != nil {
			return err
		}
		defer stopAdmin()
		adminURL = url
	}

	exitCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var goes co.Goes
	goes.Go(func() {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("api server stopped", "error", err)
			cancel()
		}
	})
	goes.GoContext(exitCtx, func(ctx context.Context) {
		housekeeping(ctx, n)
	})

	fmt.Printf("Serving WBNRY staking ledger\n    API portal   [ http://%v/ ]\n    Admin API    [ %v ]\n    Data dir     [ %v ]\n",
		listener.Addr(), adminURL, n.cfg.DataDir)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(interrupt)

	select {
	case <-interrupt:
		logger.Info("exiting...")
	case <-exitCtx.Done():
	}
	cancel()
	// websocket connections are hijacked, Shutdown does not track them
	closeSubs()
	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("api shutdown", "error", err)
	}
	select {
	case <-goes.Done():
	case <-shutdownCtx.Done():
		logger.Warn("background tasks still running", "count", goes.Running())
	}
	return nil
}

// housekeeping keeps the clock offset and the ledger gauges fresh while serving.
func housekeeping(ctx context.Context, n *node) {
	logger.Debug("enter housekeeping")
	defer logger.Debug("leave housekeeping")

	ticker := time.NewTicker(housekeepingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n.cfg.NTPServer != "" {
				checkClockOffset(n.cfg.NTPServer, n.clock, n.health)
			}
			if n.cfg.EnableMetrics {
				n.updateMetrics()
			}
		}
	}
}
