// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages contract storage of the ledger.
// It follows the flow as bellow:
//
//	        o
//	        |
//	[ revertable state ]
//	        |
//	 [ stacked map ] -> [ journal ] -> [ stage ] -> [ leveldb batch ]
//	        |
//	  [ lru cache ]
//	        |
//	  [ kv store ]
//
// Every write lands in the stacked map. Checkpoints push a level and RevertTo
// drops every write above it. Nothing reaches the store until a Stage is committed,
// which writes the latest value of each touched slot in one batch.
package state
