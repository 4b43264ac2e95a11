// Package journal provides an append-only SQLite audit trail of spend
// events and admission decisions.
//
// The journal exists for offline analysis: which entities spent what, and
// when they crossed their budget. It is deliberately not read back by the
// trackers; budget state lives in memory only and starts fresh on every
// process start.
//
// Appends are expected to be wired behind the admission registry, which
// treats journal failures as log-and-continue.
package journal
