// Package store is the SQLite audit ledger of fitsweep runs.
//
// Every clean or convert run writes one row to runs and one row per file
// outcome to actions. The ledger is append-only: runs are inserted when
// they start and updated once with their finish time and counters.
//
// # Ordering
//
// Actions keep the order in which the run produced them (seq, starting at
// 0). Runs are listed newest first by start time, ties broken by id.
//
// # Database Configuration
//
//   - WAL mode: concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=ON: actions must reference a run
//
// Times are stored as Unix milliseconds in UTC.
package store
