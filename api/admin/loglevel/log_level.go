// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package loglevel

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/binarybit/staking/api/restutil"
	"github.com/binarybit/staking/log"
)

type Request struct {
	Level string `json:"level"`
}

type Response struct {
	CurrentLevel string `json:"currentLevel"`
}

type LogLevel struct {
	logLevel *log.LevelVar
}

func New(logLevel *log.LevelVar) *LogLevel {
	return &LogLevel{
		logLevel: logLevel,
	}
}

func (l *LogLevel) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()
	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /admin/loglevel").
		HandlerFunc(restutil.WrapHandlerFunc(l.handleGetLogLevel))

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /admin/loglevel").
		HandlerFunc(restutil.WrapHandlerFunc(l.handlePostLogLevel))
}

func (l *LogLevel) handleGetLogLevel(w http.ResponseWriter, _ *http.Request) error {
	return restutil.WriteJSON(w, Response{
		CurrentLevel: log.LevelName(l.logLevel.Level()),
	})
}

func (l *LogLevel) handlePostLogLevel(w http.ResponseWriter, r *http.Request) error {
	var req Request
	if err := restutil.ParseJSON(r.Body, &req); err != nil {
		return restutil.BadRequest(errors.WithMessage(err, "Invalid request body"))
	}
	level, err := log.ParseLevel(req.Level)
	if err != nil {
		return restutil.BadRequest(errors.New("Invalid verbosity level"))
	}
	l.logLevel.Set(level)

	return restutil.WriteJSON(w, Response{
		CurrentLevel: log.LevelName(l.logLevel.Level()),
	})
}
