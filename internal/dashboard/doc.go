// Package dashboard implements the Refresh Coordinator.
//
// The Refresh Coordinator:
//   - Fetches the top-N table snapshot on startup and on every change notification
//   - Polls the price feed every 30 seconds with an immediate first poll
//   - Resolves both sources by precedence (live feed wins whenever present)
//   - Exposes the resolved list plus loading/error status to the rendering layer
package dashboard
