// Package watcher polls each watched calendar on a fixed interval and
// pushes a chat notification when an already-seen event inside the next
// 24 hours moves, is renamed, or disappears. Events seen for the first
// time are recorded silently so that a freshly started watcher never
// replays old changes.
package watcher
