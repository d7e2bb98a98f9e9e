package feed

import (
	"context"
	"net/url"
	"strconv"

	"github.com/oli5bo5/supabase-crypto-dashboard/internal/model"
)

// MarketsOptions are query parameters for the /coins/markets endpoint.
type MarketsOptions struct {
	Currency string // Quote currency (e.g. "usd")
	Order    string // Sort order (default: market_cap_desc)
	PerPage  int    // Page size
	Page     int    // 1-based page number
}

// MarketRow is one element of the /coins/markets response array. Pointer
// fields distinguish "absent" from zero so defaulting stays explicit.
type MarketRow struct {
	ID                       string   `json:"id"`
	Symbol                   string   `json:"symbol"`
	Name                     string   `json:"name"`
	Image                    string   `json:"image"`
	CurrentPrice             *float64 `json:"current_price"`
	MarketCap                *float64 `json:"market_cap"`
	PriceChangePercentage24h *float64 `json:"price_change_percentage_24h"`
}

// Markets fetches one page of coin market data.
func (c *Client) Markets(ctx context.Context, opts MarketsOptions) ([]MarketRow, error) {
	query := url.Values{}

	currency := opts.Currency
	if currency == "" {
		currency = "usd"
	}
	query.Set("vs_currency", currency)

	order := opts.Order
	if order == "" {
		order = "market_cap_desc"
	}
	query.Set("order", order)

	if opts.PerPage > 0 {
		query.Set("per_page", strconv.Itoa(opts.PerPage))
	}
	page := opts.Page
	if page == 0 {
		page = 1
	}
	query.Set("page", strconv.Itoa(page))

	var rows []MarketRow
	if err := c.get(ctx, "/coins/markets", query, &rows); err != nil {
		return nil, err
	}

	return rows, nil
}

// TopMarkets fetches the first page of markets and converts it to display
// records. This is the poll operation used by the refresh coordinator.
func (c *Client) TopMarkets(ctx context.Context, currency string, pageSize int) ([]model.PriceRecord, error) {
	rows, err := c.Markets(ctx, MarketsOptions{
		Currency: currency,
		PerPage:  pageSize,
		Page:     1,
	})
	if err != nil {
		return nil, err
	}
	return ToPriceRecords(rows), nil
}

// ToPriceRecords converts feed rows to display records, applying the
// defaulting rules: placeholder name/symbol, zero for absent numerics, and
// the positional index when a row carries no ID.
func ToPriceRecords(rows []MarketRow) []model.PriceRecord {
	records := make([]model.PriceRecord, 0, len(rows))
	for i, row := range rows {
		rec := model.PriceRecord{
			ID:       row.ID,
			Name:     row.Name,
			Symbol:   row.Symbol,
			ImageURL: row.Image,
		}
		if rec.ID == "" {
			rec.ID = strconv.Itoa(i)
		}
		if rec.Name == "" {
			rec.Name = model.PlaceholderName
		}
		if rec.Symbol == "" {
			rec.Symbol = model.PlaceholderSymbol
		}
		if row.CurrentPrice != nil {
			rec.Price = *row.CurrentPrice
		}
		if row.PriceChangePercentage24h != nil {
			rec.Change24h = *row.PriceChangePercentage24h
		}
		if row.MarketCap != nil {
			rec.MarketCap = *row.MarketCap
		}
		records = append(records, rec)
	}
	return records
}
