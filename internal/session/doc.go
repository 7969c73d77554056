// Package session owns the per-user conversational state: the selected
// calendar, the pending action / selection / handshake slots, and the
// per-chat event snapshots the change watcher diffs against.
//
// One Session exists per user and guards all of its state behind one
// mutex, so mutations for the same user are mutually exclusive while
// different users never contend. At most one pending slot is set at a
// time; setting any slot clears the other two.
package session
