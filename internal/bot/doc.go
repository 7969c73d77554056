// Package bot is the conversation resolver: the per-user state machine
// that decides how to read each inbound message. A message is, in
// strict priority order, an authorization reply, a calendar pick, a
// label pick for a queued event, or a fresh natural-language command.
// Exactly one branch fires per message, and a branch that fails
// validation reprompts without clearing its pending state.
package bot
