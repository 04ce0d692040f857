// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/binarybit/staking/api/restutil"
	"github.com/binarybit/staking/eventdb"
	"github.com/binarybit/staking/log"
	"github.com/binarybit/staking/runtime"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	readBatch  = 256
)

// Subscriptions streams newly recorded events over websocket.
type Subscriptions struct {
	rt       *runtime.Runtime
	upgrader *websocket.Upgrader
	done     chan struct{}
	wg       sync.WaitGroup
}

func New(rt *runtime.Runtime, allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		rt: rt,
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || allowed == u.Host || allowed == origin {
						return true
					}
				}
				return false
			},
		},
		done: make(chan struct{}),
	}
}

// parsePos reads the seq to stream after. Missing means only new events.
func parsePos(req *http.Request) (int64, error) {
	pos := req.URL.Query().Get("pos")
	if pos == "" {
		return -1, nil
	}
	v, err := strconv.ParseInt(pos, 10, 64)
	if err != nil || v < 0 {
		return 0, errors.New("invalid pos")
	}
	return v, nil
}

func (s *Subscriptions) handleSubscribeEvents(w http.ResponseWriter, req *http.Request) error {
	pos, err := parsePos(req)
	if err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "pos"))
	}
	name := req.URL.Query().Get("name")

	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// the upgrader has already replied
		logger.Debug("upgrade failed", "err", err)
		return nil
	}
	s.wg.Add(1)
	defer s.wg.Done()
	defer conn.Close()

	closed := make(chan struct{})
	go readPump(conn, closed)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-closed:
		case <-s.done:
		}
		cancel()
	}()

	closeCode, closeText := websocket.CloseNormalClosure, ""
	if err := s.pipe(ctx, conn, pos, name); err != nil && ctx.Err() == nil {
		logger.Debug("subscription failed", "err", err)
		closeCode, closeText = websocket.CloseInternalServerErr, err.Error()
	}
	msg := websocket.FormatCloseMessage(closeCode, closeText)
	conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
	return nil
}

// readPump consumes control frames and reports when the peer goes away.
func readPump(conn *websocket.Conn, closed chan struct{}) {
	defer close(closed)

	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Subscriptions) pipe(ctx context.Context, conn *websocket.Conn, pos int64, name string) error {
	if pos < 0 {
		latest, err := s.latestSeq(ctx)
		if err != nil {
			return err
		}
		pos = latest
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		// wait on the signal before reading so nothing committed in between is missed
		wait := s.rt.WaitEvents()
		for {
			events, err := s.rt.EventsAfter(ctx, pos, readBatch)
			if err != nil {
				return err
			}
			for _, ev := range events {
				pos = ev.Seq
				if name != "" && ev.Name != name {
					continue
				}
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(ev); err != nil {
					return err
				}
			}
			if len(events) < readBatch {
				break
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-wait:
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		}
	}
}

func (s *Subscriptions) latestSeq(ctx context.Context) (int64, error) {
	events, err := s.rt.Events(ctx, &eventdb.Filter{
		Order:   eventdb.DESC,
		Options: &eventdb.Options{Limit: 1},
	})
	if err != nil || len(events) == 0 {
		return 0, err
	}
	return events[0].Seq, nil
}

// Close ends every open subscription and waits for the handlers to return.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/events").
		Methods(http.MethodGet).
		Name("WS /subscriptions/events").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleSubscribeEvents))
}
