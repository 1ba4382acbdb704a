package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pricewatch/backend/internal/fetcher"
)

func main() {
	// Flags
	timeout := flag.Duration("timeout", 25*time.Second, "Fetch timeout")
	retries := flag.Int("retries", 0, "Extra attempts for transient failures")
	output := flag.String("output", "", "Output file for JSON result (default: summary to stdout)")
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: fetch [flags] <amazon_link>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	link := flag.Arg(0)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	f := fetcher.New(*timeout)

	startTime := time.Now()

	var result *fetcher.Result
	var err error
	if *retries > 0 {
		cfg := fetcher.DefaultRetryConfig()
		cfg.MaxAttempts = *retries + 1
		err = fetcher.WithRetry(ctx, cfg, logger, func() error {
			r, ferr := f.Fetch(ctx, link)
			if ferr != nil {
				return ferr
			}
			result = r
			return nil
		})
	} else {
		result, err = f.Fetch(ctx, link)
	}

	elapsed := time.Since(startTime)

	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Fetch failed (%.1fs): %v\n", elapsed.Seconds(), err)
		os.Exit(1)
	}

	// Print summary
	fmt.Printf("✅ %s\n", result.Title)
	fmt.Printf("   ASIN:       %s\n", result.ASIN)
	fmt.Printf("   Price:      %s %s\n", result.Currency, result.Price.StringFixed(2))
	fmt.Printf("   In stock:   %t\n", result.InStock)
	fmt.Printf("   Confidence: %s\n", result.Confidence)
	fmt.Printf("   URL:        %s\n", result.URL)
	fmt.Printf("   Elapsed:    %.1fs\n", elapsed.Seconds())

	// Output JSON if requested
	if *output != "" {
		type FetchOutput struct {
			ASIN       string  `json:"asin"`
			Title      string  `json:"title"`
			URL        string  `json:"url"`
			Price      float64 `json:"price"`
			Currency   string  `json:"currency"`
			InStock    bool    `json:"in_stock"`
			Confidence string  `json:"confidence"`
			FetchedAt  string  `json:"fetched_at"`
		}

		data, _ := json.MarshalIndent(FetchOutput{
			ASIN:       result.ASIN,
			Title:      result.Title,
			URL:        result.URL,
			Price:      result.Price.InexactFloat64(),
			Currency:   result.Currency,
			InStock:    result.InStock,
			Confidence: result.Confidence,
			FetchedAt:  time.Now().Format(time.RFC3339),
		}, "", "  ")
		if err := os.WriteFile(*output, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\n✅ Wrote result to %s\n", *output)
	}
}
