// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

// create a table for staking events
const eventTableSchema = `
CREATE TABLE IF NOT EXISTS event (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	account BLOB(20),
	amount BLOB,
	time INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS nameIndex ON event(name);
CREATE INDEX IF NOT EXISTS accountIndex ON event(account);
CREATE INDEX IF NOT EXISTS timeIndex ON event(time);
`
