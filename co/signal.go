// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co

import (
	"sync"
)

// Signal is a channel based rendezvous point. Unlike sync.Cond, waiting can
// be combined with other channels in a select.
type Signal struct {
	l  sync.Mutex
	ch chan struct{}
}

func (s *Signal) init() {
	if s.ch == nil {
		s.ch = make(chan struct{})
	}
}

// Broadcast wakes every goroutine waiting on s.
func (s *Signal) Broadcast() {
	s.l.Lock()
	defer s.l.Unlock()

	s.init()
	close(s.ch)
	s.ch = make(chan struct{})
}

// Wait returns a channel closed by the next Broadcast.
func (s *Signal) Wait() <-chan struct{} {
	s.l.Lock()
	defer s.l.Unlock()

	s.init()
	return s.ch
}
