// Package relayapi implements the relay-api service which brokers chat
// widget conversations against hosted assistants.
//
// The service provides:
//   - Conversation creation bound to a configured assistant
//   - Per-assistant origin allow-lists and optional caller authentication
//   - Message relay with a bounded run poll loop against the assistant backend
//   - Idle conversation cleanup via a background janitor
//   - JWT authentication via a JWKS endpoint
//
// For more information, see the README.md file.
package relayapi
