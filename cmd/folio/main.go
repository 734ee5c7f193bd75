// Command folio reconstructs a brokerage portfolio from transaction history,
// validates it against the broker's statement and annotates it with current
// market prices.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/asafgelber/folio/internal/app"
	"github.com/asafgelber/folio/internal/models"
	"github.com/asafgelber/folio/internal/services/validate"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "build":
		err = runBuild(os.Args[2:])
	case "validate":
		err = runValidate(os.Args[2:])
	case "price":
		err = runPrice(os.Args[2:])
	case "help", "-h", "--help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: folio <command> [flags]

Commands:
  build      rebuild the portfolio from a transaction history file
  validate   compare the rebuilt portfolio against a broker statement
  price      resolve a price or manage manual price overrides

Run 'folio <command> -h' for command flags.`)
}

func runBuild(args []string) error {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	txPath := fs.String("transactions", "", "transactions JSON file (required)")
	outPath := fs.String("out", "", "write positions JSON to file instead of stdout")
	byCurrency := fs.Bool("by-currency", false, "group positions by currency")
	withPrices := fs.Bool("prices", false, "annotate positions with current market prices")
	allowStale := fs.Bool("allow-stale", true, "allow stale cached prices when live fetch fails")
	fs.Parse(args)

	if *txPath == "" {
		return fmt.Errorf("-transactions is required")
	}

	a, err := app.NewApp(*configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	transactions, err := loadTransactions(*txPath)
	if err != nil {
		return err
	}

	if *byCurrency {
		grouped, summary, err := a.Builder.BuildByCurrency(transactions)
		if err != nil {
			return err
		}
		if *withPrices {
			ctx := context.Background()
			for currency, positions := range grouped {
				grouped[currency] = a.PriceService.UpdatePositions(ctx, positions, *allowStale)
			}
		}
		return writeOutput(*outPath, map[string]any{
			"positions_by_currency": grouped,
			"summary":               summary,
		})
	}

	positions, summary, err := a.Builder.Build(transactions)
	if err != nil {
		return err
	}
	if *withPrices {
		positions = a.PriceService.UpdatePositions(context.Background(), positions, *allowStale)
	}
	return writeOutput(*outPath, map[string]any{
		"positions": positions,
		"summary":   summary,
	})
}

func runValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	txPath := fs.String("transactions", "", "transactions JSON file (required)")
	actualPath := fs.String("actual", "", "broker statement positions JSON file (required)")
	report := fs.Bool("report", false, "print a text report instead of JSON")
	fs.Parse(args)

	if *txPath == "" || *actualPath == "" {
		return fmt.Errorf("-transactions and -actual are required")
	}

	a, err := app.NewApp(*configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	transactions, err := loadTransactions(*txPath)
	if err != nil {
		return err
	}
	actual, err := loadActualPositions(*actualPath)
	if err != nil {
		return err
	}

	positions, _, err := a.Builder.Build(transactions)
	if err != nil {
		return err
	}

	result := a.Validator.Validate(positions, actual)
	if *report {
		fmt.Print(validate.Report(result))
	} else if err := writeOutput("", result); err != nil {
		return err
	}

	if !result.Passed {
		return fmt.Errorf("validation failed: %s", result.Summary)
	}
	return nil
}

func runPrice(args []string) error {
	fs := flag.NewFlagSet("price", flag.ExitOnError)
	configPath := fs.String("config", "", "config file path")
	symbol := fs.String("symbol", "", "security symbol (required)")
	currency := fs.String("currency", models.CurrencyUSD, "security currency symbol")
	allowStale := fs.Bool("allow-stale", true, "allow stale cached prices")
	setManual := fs.Float64("set-manual", 0, "set a manual price override and exit")
	clearManual := fs.Bool("clear-manual", false, "remove the manual price override and exit")
	fs.Parse(args)

	if *symbol == "" {
		return fmt.Errorf("-symbol is required")
	}

	a, err := app.NewApp(*configPath)
	if err != nil {
		return err
	}
	defer a.Close()

	if *clearManual {
		if !a.PriceService.RemoveManualPrice(*symbol) {
			return fmt.Errorf("no manual price set for %s", *symbol)
		}
		fmt.Printf("manual price cleared for %s\n", *symbol)
		return nil
	}
	if *setManual > 0 {
		a.PriceService.SetManualPrice(*symbol, *setManual)
		fmt.Printf("manual price set: %s = %s%.2f\n", *symbol, *currency, *setManual)
		return nil
	}

	data := a.PriceService.FetchWithFallback(context.Background(), *symbol, *currency, *allowStale)
	return writeOutput("", data)
}

func loadTransactions(path string) ([]models.Transaction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}
	var transactions []models.Transaction
	if err := json.Unmarshal(data, &transactions); err != nil {
		return nil, fmt.Errorf("failed to parse transactions: %w", err)
	}
	return transactions, nil
}

func loadActualPositions(path string) ([]models.ActualPosition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read broker statement: %w", err)
	}
	var positions []models.ActualPosition
	if err := json.Unmarshal(data, &positions); err != nil {
		return nil, fmt.Errorf("failed to parse broker statement: %w", err)
	}
	return positions, nil
}

func writeOutput(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	data = append(data, '\n')
	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0644)
}
