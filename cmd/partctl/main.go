// Package main provides CLI access to the import flows.
// Usage: partctl search mouser RC0805FR-0710KL
//        partctl preview mouser RC0805FR-0710KL
//        partctl import mouser RC0805FR-0710KL
//        partctl categories
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"partbridge/internal/domain/importer"
	"partbridge/internal/infrastructure/config"
	"partbridge/internal/infrastructure/inventree"
	"partbridge/internal/infrastructure/supplier"
	"partbridge/internal/infrastructure/supplier/digikey"
	"partbridge/internal/infrastructure/supplier/mouser"
	"partbridge/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()

	switch os.Args[1] {
	case "search":
		runSearch(ctx)
	case "preview":
		runPreview(ctx)
	case "import":
		runImport(ctx)
	case "categories":
		runCategories(ctx)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`partbridge CLI

Usage:
  partctl <command> [options]

Commands:
  search <supplier> <part-number>    List raw supplier matches
  preview <supplier> <part-number>   Resolve a part without writing
  import <supplier> <part-number>    Create the inventory records
  categories                         Show the configured category map
  help                               Show this help

Environment Variables:
  INVENTREE_BASE_URL     Inventory system URL (required for preview/import)
  INVENTREE_TOKEN        Inventory system API token
  MOUSER_API_KEY         Mouser search API key
  DIGIKEY_CLIENT_ID      Digi-Key OAuth client id
  DIGIKEY_CLIENT_SECRET  Digi-Key OAuth client secret
  IMPORTER_CONFIG_DIR    Directory with categories.yaml and hooks.yaml

Examples:
  partctl search mouser RC0805FR-0710KL
  partctl preview digikey 296-1234-1-ND
  partctl import mouser RC0805FR-0710KL`)
}

func buildService() (*importer.Service, *config.Loader) {
	cfg := config.FromEnv()
	log, err := logger.New(logger.Config{Level: "warn", Development: true})
	if err != nil {
		fatal(err)
	}

	inv, err := inventree.NewClient(inventree.Config{
		BaseURL: cfg.Inventree.BaseURL,
		Token:   cfg.Inventree.Token,
		Timeout: cfg.RequestTimeout,
	})
	if err != nil {
		fatal(err)
	}

	registry := supplier.NewRegistry(
		mouser.New(mouser.Config{
			APIKey:          cfg.Mouser.APIKey,
			BaseURL:         cfg.Mouser.BaseURL,
			CompanyID:       cfg.Mouser.CompanyID,
			DefaultCurrency: cfg.DefaultCurrency,
			Timeout:         cfg.RequestTimeout,
		}, log),
		digikey.New(digikey.Config{
			ClientID:        cfg.Digikey.ClientID,
			ClientSecret:    cfg.Digikey.ClientSecret,
			BaseURL:         cfg.Digikey.BaseURL,
			TokenURL:        cfg.Digikey.TokenURL,
			CompanyID:       cfg.Digikey.CompanyID,
			DefaultCurrency: cfg.DefaultCurrency,
			Timeout:         cfg.RequestTimeout,
		}, log),
	)

	loader := config.NewLoader(cfg.ConfigDir, log)

	svc, err := importer.NewService(importer.ServiceConfig{
		Registry:        registry,
		Loader:          loader,
		Inventree:       inv,
		Logger:          log,
		DefaultCurrency: cfg.DefaultCurrency,
	})
	if err != nil {
		fatal(err)
	}
	return svc, loader
}

func requireArgs(n int, usage string) []string {
	if len(os.Args) < 2+n {
		fmt.Printf("Usage: partctl %s\n", usage)
		os.Exit(1)
	}
	return os.Args[2 : 2+n]
}

func runSearch(ctx context.Context) {
	args := requireArgs(2, "search <supplier> <part-number>")
	svc, _ := buildService()

	parts, count, err := svc.Search(ctx, args[0], args[1])
	if err != nil {
		fatal(err)
	}

	fmt.Printf("%d result(s)\n", count)
	printJSON(parts)
}

func runPreview(ctx context.Context) {
	args := requireArgs(2, "preview <supplier> <part-number>")
	svc, _ := buildService()

	preview, err := svc.Preview(ctx, args[0], args[1])
	if err != nil {
		fatal(err)
	}
	printJSON(preview)
}

func runImport(ctx context.Context) {
	args := requireArgs(2, "import <supplier> <part-number>")
	svc, _ := buildService()

	attempt, err := svc.Import(ctx, args[0], args[1], nil)
	if err != nil {
		fatal(err)
	}
	printJSON(attempt)

	if !attempt.Result.Committed() {
		os.Exit(1)
	}
}

func runCategories(ctx context.Context) {
	_, loader := buildService()

	snapshot, err := loader.Ensure(ctx, nil)
	if err != nil {
		fatal(err)
	}

	names := snapshot.Categories.Names()
	if len(names) == 0 {
		fmt.Println("no categories configured (set IMPORTER_CONFIG_DIR)")
		return
	}
	for _, name := range names {
		entry, _ := snapshot.Categories.Lookup(name)
		fmt.Printf("%-30s -> %v\n", name, entry.Path)
	}
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fatal(err)
	}
	fmt.Println(string(out))
}

func fatal(err error) {
	fmt.Printf("Error: %v\n", err)
	os.Exit(1)
}
