// Package feed implements the polled price feed client.
//
// The feed is a public CoinGecko-compatible REST API. The dashboard only
// consumes /coins/markets: one fixed page of records ordered by market cap,
// polled on a fixed interval by the refresh coordinator.
package feed
