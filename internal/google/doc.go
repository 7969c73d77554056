// Package google owns the per-user Google credential lifecycle: the OAuth
// client configuration, the multi-turn authorization handshake, the local
// redirect listener, and the persisted token store.
//
// Tokens are stored one JSON record per user under a state directory that
// is created lazily on first write. Expired tokens are refreshed through
// the oauth2 token source; an unrecoverable refresh failure deletes
// the record so the user is asked to authorize again.
package google
