// apiprobe runs a sequence of read-only calls against the configured
// Trading212 account and prints what it finds. Useful for checking a
// key, environment and budgets before starting the bridge.
//
// Usage: go run ./cmd/apiprobe --config configs/bridge.local.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/rickgao/t212-bridge/internal/api"
	"github.com/rickgao/t212-bridge/internal/config"
	"github.com/rickgao/t212-bridge/internal/model"
	"github.com/rickgao/t212-bridge/internal/ratelimit"
	"github.com/rickgao/t212-bridge/internal/symbols"
)

func main() {
	configPath := flag.String("config", "configs/bridge.local.yaml", "path to config file")
	flag.Parse()

	godotenv.Load()

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if cfg.API.APIKey == "" {
		cfg.API.APIKey = os.Getenv("T212_API_KEY")
	}
	if cfg.API.APIKey == "" {
		log.Fatal("no API key: set api.api_key in config or T212_API_KEY in the environment")
	}

	limiter, err := ratelimit.NewLimiter(api.DefaultBudgets())
	if err != nil {
		log.Fatalf("build limiter: %v", err)
	}

	client := api.NewClient(
		cfg.API.ResolveBaseURL(),
		cfg.API.APIKey,
		limiter,
		api.WithTimeout(30*time.Second),
		api.WithAuthScheme(api.AuthScheme(cfg.API.AuthScheme)),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	// Test 1: Account info
	fmt.Println("=== Testing Account Info ===")
	info, err := client.GetAccountInfo(ctx)
	if err != nil {
		log.Fatalf("GetAccountInfo failed: %v", err)
	}
	fmt.Printf("Account ID: %d\n", info.ID)
	fmt.Printf("Currency: %s\n", info.CurrencyCode)

	// Test 2: Cash
	fmt.Println("\n=== Testing Account Cash ===")
	cash, err := client.GetCash(ctx)
	if err != nil {
		log.Fatalf("GetCash failed: %v", err)
	}
	fmt.Printf("Total: %s %s\n", cash.Total, info.CurrencyCode)
	fmt.Printf("Free: %s\n", cash.Free)
	fmt.Printf("Invested: %s\n", cash.Invested)
	fmt.Printf("Result: %s\n", cash.Result)

	// Test 3: Working orders
	fmt.Println("\n=== Testing Orders ===")
	orders, err := client.GetOrders(ctx)
	if err != nil {
		log.Fatalf("GetOrders failed: %v", err)
	}
	fmt.Printf("Fetched %d working orders\n", len(orders))
	for i, o := range orders {
		if i >= 5 {
			break
		}
		fmt.Printf("  %d. #%d %s %s qty=%s status=%s\n",
			i+1, o.ID, o.Ticker, o.Type, o.Quantity.Decimal, o.Status)
	}

	// Test 4: Portfolio
	fmt.Println("\n=== Testing Portfolio ===")
	positions, err := client.GetPortfolio(ctx)
	if err != nil {
		log.Fatalf("GetPortfolio failed: %v", err)
	}
	fmt.Printf("Fetched %d positions\n", len(positions))
	for i, p := range positions {
		if i >= 5 {
			break
		}
		fmt.Printf("  %d. %s qty=%s avg=%s current=%s ppl=%s\n",
			i+1, p.Ticker, p.Quantity, p.AveragePrice, p.CurrentPrice, p.PPL)
	}

	// Test 5: Instruments and symbol translation
	fmt.Println("\n=== Testing Instruments ===")
	instruments, err := client.GetInstruments(ctx)
	if err != nil {
		log.Fatalf("GetInstruments failed: %v", err)
	}
	fmt.Printf("Fetched %d instruments\n", len(instruments))

	overrides, err := symbols.LoadOverridesFile(cfg.Symbols.OverridesPath)
	if err != nil {
		log.Fatalf("load symbol overrides: %v", err)
	}
	translator := buildTranslator(instruments, overrides, cfg.Symbols.DefaultQuote)
	fmt.Printf("Translator knows %d tickers\n", translator.Known())
	var samplePair string
	for i, inst := range instruments {
		if i >= 5 {
			break
		}
		pair, err := translator.ToCanonical(inst.Ticker)
		if err != nil {
			log.Fatalf("ToCanonical(%s) failed: %v", inst.Ticker, err)
		}
		if samplePair == "" {
			samplePair = pair
		}
		fmt.Printf("  %s -> %s\n", inst.Ticker, pair)
	}

	// Round trip: build an order body from the canonical pair without
	// sending it.
	if samplePair != "" {
		req, err := api.NewLimitOrderRequest(translator, samplePair,
			decimal.New(1, 0), decimal.New(1, 0), "DAY")
		if err != nil {
			fmt.Printf("Dry-run limit order: %v\n", err)
		} else {
			fmt.Printf("Dry-run limit order body: %s -> ticker %s\n", samplePair, req.Ticker)
		}
	}

	// Test 6: Order history (first page)
	fmt.Println("\n=== Testing Order History ===")
	page, err := client.GetHistoryOrders(ctx, api.HistoryOrdersOptions{Limit: 5})
	if err != nil {
		log.Fatalf("GetHistoryOrders failed: %v", err)
	}
	fmt.Printf("Fetched %d history items (next: %q)\n", len(page.Items), page.NextPagePath)
	for i, o := range page.Items {
		fmt.Printf("  %d. #%d %s %s status=%s\n", i+1, o.ID, o.Ticker, o.Type, o.Status)
	}

	fmt.Println("\n=== All probes passed ===")
}

func buildTranslator(instruments []api.APIInstrument, overrides map[string]string, defaultQuote string) *symbols.Translator {
	models := make([]model.Instrument, 0, len(instruments))
	for i := range instruments {
		inst, err := instruments[i].ToModel()
		if err != nil {
			continue
		}
		models = append(models, inst)
	}
	return symbols.New(
		symbols.WithOverrides(overrides),
		symbols.WithInstruments(models),
		symbols.WithDefaultQuote(defaultQuote),
	)
}
