// Command query answers a question about current crypto prices by feeding
// the latest table snapshot as context to a local Llama server.
//
// Usage:
//
//	query [-config configs/dashboard.yaml] "Which coin has the highest price?"
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/oli5bo5/supabase-crypto-dashboard/internal/config"
	"github.com/oli5bo5/supabase-crypto-dashboard/internal/llm"
	"github.com/oli5bo5/supabase-crypto-dashboard/internal/table"
)

func main() {
	configPath := flag.String("config", "configs/dashboard.yaml", "path to config file")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: query [-config path] \"your question here\"")
		os.Exit(2)
	}
	question := strings.Join(flag.Args(), " ")

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", "error", err)
	}

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	tableClient := table.NewClient(
		cfg.Supabase.URL,
		cfg.Supabase.AnonKey,
		cfg.Supabase.Table,
		table.WithLogger(logger),
	)

	fmt.Println("Fetching crypto data...")
	records, err := tableClient.TopByMarketCap(ctx, cfg.Feed.PageSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to fetch crypto data: %v\n", err)
		os.Exit(1)
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "no crypto data available")
		os.Exit(1)
	}
	fmt.Printf("Found %d records\n", len(records))

	client := llm.NewClient(cfg.LLM.URL, cfg.LLM.Model, llm.WithLogger(logger))

	fmt.Printf("\nQuestion: %s\n\n", question)
	answer, err := client.Ask(ctx, question, llm.BuildContext(records))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to query llama server: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Answer:")
	fmt.Println(answer)
}
