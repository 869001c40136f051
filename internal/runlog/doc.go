// Package runlog keeps a SQLite ledger of processing runs.
//
// Each row records what was run, by which surface, against which models,
// and how it ended. Lyric content is never stored. The sweeper prunes rows
// with the same age threshold used for staging directories.
package runlog
