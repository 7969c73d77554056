// Package calendar provides a client for the Google Calendar API shaped
// for the assistant: listing the lookahead window the change watcher
// diffs, fuzzy lookup of events by summary, and create/update/patch/
// delete operations that carry a label's color and invitees.
//
// Clients are built per user from the persisted credential, so a client
// is only ever constructed for an authenticated user.
package calendar
