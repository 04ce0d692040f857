// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package co holds small goroutine helpers shared by the commands.
package co

import (
	"context"
	"sync"
	"sync/atomic"
)

// Goes tracks goroutines so their owner can wait for all of them on exit.
// The zero value is ready to use.
type Goes struct {
	wg      sync.WaitGroup
	running atomic.Int32
}

func (g *Goes) Go(f func()) {
	g.wg.Add(1)
	g.running.Add(1)
	go func() {
		defer g.wg.Done()
		defer g.running.Add(-1)
		f()
	}()
}

// GoContext runs f with ctx; f is expected to return once ctx is done.
func (g *Goes) GoContext(ctx context.Context, f func(ctx context.Context)) {
	g.Go(func() { f(ctx) })
}

// Running reports how many tracked goroutines have not returned.
func (g *Goes) Running() int {
	return int(g.running.Load())
}

func (g *Goes) Wait() {
	g.wg.Wait()
}

// Done returns a channel closed once every tracked goroutine has returned.
func (g *Goes) Done() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		g.wg.Wait()
	}()
	return done
}
