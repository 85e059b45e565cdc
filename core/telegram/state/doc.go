// Package state keeps per-conversation session values for Telegram bots.
//
// Sessions are keyed by chat and user, expire after a period of inactivity
// and are bounded in number. Updates for the same key can be serialized with
// the Serialize middleware so a session is never read and written by two
// handlers at once.
package state
