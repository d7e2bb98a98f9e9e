package model

// Placeholder values applied when a source omits a display field.
const (
	PlaceholderName   = "Unknown"
	PlaceholderSymbol = "???"
)

// PriceRecord is the unit of display data. Each record is produced whole by
// exactly one source (table service or price feed); fields are never mixed
// across sources within a record.
type PriceRecord struct {
	ID        string  // Asset identity; positional index when the source has none
	Name      string  // Display name (PlaceholderName when absent)
	Symbol    string  // Ticker symbol (PlaceholderSymbol when absent)
	ImageURL  string  // Optional logo URL
	Price     float64 // Current price in the quote currency (0 when absent)
	Change24h float64 // Signed 24-hour change percent (0 when absent)
	MarketCap float64 // Market capitalization (0 when absent)
}

// RefreshState is the coordinator-owned state handed to the rendering layer.
type RefreshState struct {
	// TableRecords is the most recent table snapshot, ordered by market cap
	// descending and capped at the configured page size. Initially empty.
	TableRecords []PriceRecord

	// LiveRecords is the latest successful feed poll result. LivePresent is
	// false until the first poll succeeds; an empty successful poll still
	// counts as present.
	LiveRecords []PriceRecord
	LivePresent bool

	// Loading is true while a table fetch is in flight.
	Loading bool

	// LastError holds the message of the last failed table fetch.
	// Empty means no error.
	LastError string
}

// DisplayList resolves the two sources into the single list shown to users.
// Live records fully supersede the table snapshot whenever a poll has
// completed, even if that poll returned no rows. No re-sorting happens here;
// ordering was fixed at fetch time.
func (s RefreshState) DisplayList() []PriceRecord {
	if s.LivePresent {
		return s.LiveRecords
	}
	return s.TableRecords
}
