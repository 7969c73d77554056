// Package telegram is the chat transport. It long-polls the Bot API for
// incoming text messages, hands each one to a handler in its own
// goroutine and sends replies. All conversational logic lives above it.
package telegram
