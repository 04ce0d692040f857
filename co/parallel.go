// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"runtime"
)

// Parallel runs the works queued by cb on a pool of workers and returns a
// channel closed once every work has finished. workers <= 0 uses one per CPU.
func Parallel(workers int, cb func(queue chan<- func())) <-chan struct{} {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	queue := make(chan func(), workers*2)
	done := make(chan struct{})

	var goes Goes
	for range workers {
		goes.Go(func() {
			for work := range queue {
				work()
			}
		})
	}

	go func() {
		defer close(done)
		cb(queue)
		close(queue)
		goes.Wait()
	}()
	return done
}
