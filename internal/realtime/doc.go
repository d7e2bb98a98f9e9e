// Package realtime implements the change-notification subscription.
//
// The table service pushes INSERT/UPDATE/DELETE events for the watched table
// over a Phoenix-protocol WebSocket. Event payloads are deliberately not
// inspected: every notification triggers a full snapshot re-fetch, so only
// the fact of the change is delivered.
package realtime
