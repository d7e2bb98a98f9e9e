// Package model defines shared data types used across the dashboard.
//
// Conventions:
//   - Prices and market caps: float64 in the quote currency (USD by default)
//   - Change percentages: signed float64 (e.g. -3.456 means -3.456%)
//   - IDs: strings; sources without a stable ID fall back to the row index
package model
