// Package history keeps a journal of planning runs in SQLite.
//
// Each run stores the request files, the chosen category and reason, the
// oracle usage, and the plan that was produced (or the error that stopped
// it). The CLI reads the journal back for `mediasort history` and can
// re-execute a recorded plan. The database uses WAL mode and a versioned
// schema; a version mismatch is reported instead of migrated.
package history
