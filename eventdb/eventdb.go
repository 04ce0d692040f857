// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package eventdb keeps the staking events in sqlite for off-chain queries.
package eventdb

import (
	"context"
	"database/sql"
	"math/big"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/binarybit/staking/bnry"
)

const insertEventQuery = "INSERT INTO event(name, account, amount, time) VALUES (?, ?, ?, ?);"

// EventDB manages staking events.
type EventDB struct {
	path          string
	db            *sql.DB
	stmtCache     *stmtCache
	driverVersion string
}

// New create or open event db at given path.
func New(path string) (eventDB *EventDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if eventDB == nil {
			db.Close()
		}
	}()
	// an in-memory db lives per connection
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, err
	}

	driverVer, _, _ := sqlite3.Version()
	return &EventDB{
		path:          path,
		db:            db,
		stmtCache:     newStmtCache(db),
		driverVersion: driverVer,
	}, nil
}

// NewMem create an event db in ram.
func NewMem() (*EventDB, error) {
	return New(":memory:")
}

// Close close the event db.
func (db *EventDB) Close() error {
	db.stmtCache.Clear()
	return db.db.Close()
}

func (db *EventDB) Path() string {
	return db.path
}

// DriverVersion returns the version of the linked sqlite library.
func (db *EventDB) DriverVersion() string {
	return db.driverVersion
}

// Insert stores events in one transaction and assigns their Seq.
func (db *EventDB) Insert(ctx context.Context, events []*Event) error {
	if len(events) == 0 {
		return nil
	}
	stmt, err := db.stmtCache.Prepare(insertEventQuery)
	if err != nil {
		return err
	}
	return db.execInTx(ctx, func(tx *sql.Tx) error {
		txStmt := tx.StmtContext(ctx, stmt)
		for _, ev := range events {
			res, err := txStmt.ExecContext(ctx,
				ev.Name,
				accountValue(ev.Account),
				amountValue(ev.Amount),
				ev.Time,
			)
			if err != nil {
				return err
			}
			if ev.Seq, err = res.LastInsertId(); err != nil {
				return err
			}
		}
		metricInsertedCounter().Add(int64(len(events)))
		return nil
	})
}

func (db *EventDB) execInTx(ctx context.Context, proc func(*sql.Tx) error) error {
	tx, err := db.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := proc(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Filter returns events matching filter. A nil filter returns every event in insert order.
func (db *EventDB) Filter(ctx context.Context, filter *Filter) ([]*Event, error) {
	if filter == nil {
		return db.queryEvents(ctx, "SELECT seq, name, account, amount, time FROM event ORDER BY seq ASC")
	}
	metricsHandleFilter(filter)

	where, args := filter.where()
	stmt := "SELECT seq, name, account, amount, time FROM event WHERE 1" + where

	if filter.Order == DESC {
		stmt += " ORDER BY seq DESC "
	} else {
		stmt += " ORDER BY seq ASC "
	}

	if filter.Options != nil {
		stmt += " LIMIT ?, ? "
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.queryEvents(ctx, stmt, args...)
}

// After returns up to limit events with a seq greater than seq, in insert order.
func (db *EventDB) After(ctx context.Context, seq int64, limit uint64) ([]*Event, error) {
	return db.queryEvents(ctx,
		"SELECT seq, name, account, amount, time FROM event WHERE seq > ? ORDER BY seq ASC LIMIT ?",
		seq, limit)
}

// Count returns the number of events matching filter, ignoring its order and options.
func (db *EventDB) Count(ctx context.Context, filter *Filter) (uint64, error) {
	stmt := "SELECT COUNT(*) FROM event WHERE 1"
	var args []any
	if filter != nil {
		where, whereArgs := filter.where()
		stmt += where
		args = whereArgs
	}
	var n uint64
	if err := db.db.QueryRowContext(ctx, stmt, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (f *Filter) where() (string, []any) {
	var (
		stmt string
		args []any
	)
	if f.Range != nil {
		args = append(args, f.Range.From)
		stmt += " AND time >= ? "
		if f.Range.To >= f.Range.From {
			args = append(args, f.Range.To)
			stmt += " AND time <= ? "
		}
	}
	for i, criteria := range f.CriteriaSet {
		if i == 0 {
			stmt += " AND (( 1"
		} else {
			stmt += " OR ( 1"
		}
		if criteria.Name != nil {
			args = append(args, *criteria.Name)
			stmt += " AND name = ? "
		}
		if criteria.Account != nil {
			args = append(args, criteria.Account.Bytes())
			stmt += " AND account = ? "
		}
		stmt += ")"
	}
	if len(f.CriteriaSet) > 0 {
		stmt += ")"
	}
	return stmt, args
}

func (db *EventDB) queryEvents(ctx context.Context, stmt string, args ...any) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq     int64
			name    string
			account []byte
			amount  []byte
			time    uint64
		)
		if err := rows.Scan(&seq, &name, &account, &amount, &time); err != nil {
			return nil, err
		}
		events = append(events, &Event{
			Seq:     seq,
			Name:    name,
			Account: bnry.BytesToAddress(account),
			Amount:  new(big.Int).SetBytes(amount),
			Time:    time,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func accountValue(addr bnry.Address) []byte {
	if addr.IsZero() {
		return nil
	}
	return addr.Bytes()
}

func amountValue(amount *big.Int) []byte {
	if amount == nil {
		return nil
	}
	return amount.Bytes()
}
