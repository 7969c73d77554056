// Package xoerr defines the error taxonomy shared across the assistant.
//
// Errors are classified so that the message handler and the change watcher
// can decide between re-prompting the user, asking for re-authorization,
// or reporting a transient failure, without inspecting error strings.
package xoerr
