package table

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/oli5bo5/supabase-crypto-dashboard/internal/model"
)

func TestTopByMarketCap(t *testing.T) {
	t.Run("request shape", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/rest/v1/crypto_prices" {
				t.Errorf("path = %q, want %q", r.URL.Path, "/rest/v1/crypto_prices")
			}
			q := r.URL.Query()
			if q.Get("select") != "*" {
				t.Errorf("select = %q, want %q", q.Get("select"), "*")
			}
			if q.Get("order") != "market_cap.desc.nullslast" {
				t.Errorf("order = %q, want %q", q.Get("order"), "market_cap.desc.nullslast")
			}
			if q.Get("limit") != "20" {
				t.Errorf("limit = %q, want %q", q.Get("limit"), "20")
			}
			if r.Header.Get("apikey") != "anon-key" {
				t.Errorf("apikey header = %q, want %q", r.Header.Get("apikey"), "anon-key")
			}
			if r.Header.Get("Authorization") != "Bearer anon-key" {
				t.Errorf("Authorization header = %q, want bearer anon key", r.Header.Get("Authorization"))
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[
				{"id":1,"name":"Bitcoin","symbol":"btc","price":64231.5,"market_cap":1260000000000,"change_24h":1.82,"image":"https://img/btc.png"},
				{"id":2,"name":"Ethereum","symbol":"eth","price":3120.25,"market_cap":375000000000,"change_24h":-0.54}
			]`))
		}))
		defer server.Close()

		c := NewClient(server.URL, "anon-key", "crypto_prices")
		records, err := c.TopByMarketCap(context.Background(), 20)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("len(records) = %d, want 2", len(records))
		}
		if records[0].ID != "1" {
			t.Errorf("records[0].ID = %q, want %q", records[0].ID, "1")
		}
		if records[0].Price != 64231.5 {
			t.Errorf("records[0].Price = %v, want 64231.5", records[0].Price)
		}
		if records[1].Change24h != -0.54 {
			t.Errorf("records[1].Change24h = %v, want -0.54", records[1].Change24h)
		}
	})

	t.Run("empty table", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[]`))
		}))
		defer server.Close()

		c := NewClient(server.URL, "key", "crypto_prices")
		records, err := c.TopByMarketCap(context.Background(), 20)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(records) != 0 {
			t.Errorf("len(records) = %d, want 0", len(records))
		}
	})

	t.Run("gateway error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"message":"invalid api key"}`))
		}))
		defer server.Close()

		c := NewClient(server.URL, "bad-key", "crypto_prices")
		_, err := c.TopByMarketCap(context.Background(), 20)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
		if !strings.Contains(err.Error(), "401") {
			t.Errorf("error = %v, want status code mention", err)
		}
	})

	t.Run("unreachable host", func(t *testing.T) {
		c := NewClient("http://127.0.0.1:1", "key", "crypto_prices")
		_, err := c.TopByMarketCap(context.Background(), 20)
		if err == nil {
			t.Fatal("expected error, got nil")
		}
	})
}

func TestToPriceRecords(t *testing.T) {
	f := func(v float64) *float64 { return &v }

	t.Run("defaults for absent fields", func(t *testing.T) {
		records := ToPriceRecords([]Row{
			{Price: f(100)},
			{},
		})

		if records[0].Name != model.PlaceholderName {
			t.Errorf("Name = %q, want placeholder", records[0].Name)
		}
		if records[0].Symbol != model.PlaceholderSymbol {
			t.Errorf("Symbol = %q, want placeholder", records[0].Symbol)
		}
		if records[0].ID != "0" || records[1].ID != "1" {
			t.Errorf("IDs = %q, %q; want positional fallback", records[0].ID, records[1].ID)
		}
		if records[1].Price != 0 || records[1].MarketCap != 0 {
			t.Errorf("absent numerics should default to 0: %+v", records[1])
		}
	})

	t.Run("id normalization", func(t *testing.T) {
		tests := []struct {
			name string
			id   any
			want string
		}{
			{"string id", "bitcoin", "bitcoin"},
			{"numeric id", float64(42), "42"},
			{"empty string falls back", "", "7"},
			{"nil falls back", nil, "7"},
			{"unexpected type falls back", true, "7"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if got := recordID(tt.id, 7); got != tt.want {
					t.Errorf("recordID(%v) = %q, want %q", tt.id, got, tt.want)
				}
			})
		}
	})
}
