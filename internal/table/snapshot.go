package table

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/oli5bo5/supabase-crypto-dashboard/internal/model"
)

// Row is one row of the watched table. Pointer fields distinguish "absent"
// from zero; ID is left loose because the column may be numeric or text.
type Row struct {
	ID        any      `json:"id"`
	Name      string   `json:"name"`
	Symbol    string   `json:"symbol"`
	Price     *float64 `json:"price"`
	MarketCap *float64 `json:"market_cap"`
	Change24h *float64 `json:"change_24h"`
	Image     string   `json:"image"`
}

// TopByMarketCap fetches up to limit rows ordered by market cap descending
// and converts them to display records. This is the snapshot operation used
// by the refresh coordinator.
func (c *Client) TopByMarketCap(ctx context.Context, limit int) ([]model.PriceRecord, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("order", "market_cap.desc.nullslast")
	params.Set("limit", strconv.Itoa(limit))

	var rows []Row
	if err := c.query(ctx, params, &rows); err != nil {
		return nil, fmt.Errorf("fetch table snapshot: %w", err)
	}

	return ToPriceRecords(rows), nil
}

// ToPriceRecords converts table rows to display records with the same
// defaulting rules as the feed: placeholder name/symbol, zero for absent
// numerics, positional index when the id column is missing.
func ToPriceRecords(rows []Row) []model.PriceRecord {
	records := make([]model.PriceRecord, 0, len(rows))
	for i, row := range rows {
		rec := model.PriceRecord{
			ID:       recordID(row.ID, i),
			Name:     row.Name,
			Symbol:   row.Symbol,
			ImageURL: row.Image,
		}
		if rec.Name == "" {
			rec.Name = model.PlaceholderName
		}
		if rec.Symbol == "" {
			rec.Symbol = model.PlaceholderSymbol
		}
		if row.Price != nil {
			rec.Price = *row.Price
		}
		if row.Change24h != nil {
			rec.Change24h = *row.Change24h
		}
		if row.MarketCap != nil {
			rec.MarketCap = *row.MarketCap
		}
		records = append(records, rec)
	}
	return records
}

// recordID normalizes the id column to a string, falling back to the row
// index when the column is absent or has an unexpected type.
func recordID(v any, index int) string {
	switch id := v.(type) {
	case string:
		if id != "" {
			return id
		}
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	}
	return strconv.Itoa(index)
}
