package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/accessibleworks/scopescan/internal/config"
	"github.com/accessibleworks/scopescan/internal/llm"
	"github.com/accessibleworks/scopescan/internal/logger"
	"github.com/accessibleworks/scopescan/internal/operations"
	"github.com/accessibleworks/scopescan/internal/pricing"
	"github.com/accessibleworks/scopescan/internal/storage"
	"github.com/accessibleworks/scopescan/models"
)

func main() {
	app := &cli.App{
		Name:  "scopescan",
		Usage: "estimate PDF accessibility remediation costs",
		Commands: []*cli.Command{
			{
				Name:      "quote",
				Usage:     "quote one or more PDF files",
				ArgsUsage: "FILE [FILE...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "rush", Usage: "apply rush pricing"},
					&cli.StringFlag{Name: "config", Usage: "rate card YAML `FILE` (defaults to built-in rates)"},
					&cli.IntFlag{Name: "workers", Usage: "max concurrent documents", Value: 4},
					&cli.BoolFlag{Name: "json", Usage: "emit the full project aggregate as JSON"},
					&cli.BoolFlag{Name: "quiet", Usage: "suppress progress output"},
				},
				Action: QuoteAction,
			},
			{
				Name:   "history",
				Usage:  "list stored quotes",
				Action: HistoryAction,
			},
			{
				Name:      "proposal",
				Usage:     "print the proposal text for a stored quote",
				ArgsUsage: "QUOTE_ID",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "polish", Usage: "rewrite as a letter via OPENAI_API_KEY"},
				},
				Action: ProposalAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func QuoteAction(c *cli.Context) error {
	if c.NArg() == 0 {
		return errors.New("no files given")
	}

	cfg, err := config.Load(configPath(c))
	if err != nil {
		return err
	}

	log := logger.NewNoOpLogger()
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	var onProgress func(done, total int)
	if !c.Bool("quiet") && !c.Bool("json") {
		onProgress = func(done, total int) {
			fmt.Fprintf(os.Stderr, "\rquoting %d/%d", done, total)
			if done == total {
				fmt.Fprintln(os.Stderr)
			}
		}
	}

	agg := operations.QuoteBatch(c.Context, c.Args().Slice(), c.Bool("rush"), cfg, store, c.Int("workers"), onProgress, log)

	if c.Bool("json") {
		data, err := json.MarshalIndent(agg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	printAggregate(agg)

	if len(agg.Failures) > 0 && agg.FileCount == 0 {
		return errors.New("no files could be quoted")
	}
	return nil
}

func printAggregate(agg models.ProjectAggregate) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FILE\tPAGES\tTAGGED\tTIER 1\tTIER 2\tTIER 3\tCOST")
	for _, r := range agg.Reports {
		cost := fmt.Sprintf("$%.2f", r.EstimatedCost)
		if r.Pricing.MinimumApplied {
			cost += " (min)"
		}
		fmt.Fprintf(w, "%s\t%d\t%t\t%d\t%d\t%d\t%s\n",
			r.Filename, r.TotalPages, r.IsTagged,
			r.TierCounts[models.Tier1], r.TierCounts[models.Tier2], r.TierCounts[models.Tier3],
			cost)
	}
	w.Flush()

	fmt.Printf("\n%d files, %d pages, total $%.2f\n", agg.FileCount, agg.TotalPages, agg.TotalCost)

	if len(agg.Failures) > 0 {
		fmt.Println("\nSkipped:")
		for _, f := range agg.Failures {
			fmt.Printf("  %s: %s\n", f.Filename, f.Reason)
		}
	}
}

func HistoryAction(c *cli.Context) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	quotes, err := store.ListQuotes(c.Context)
	if err != nil {
		return err
	}
	if len(quotes) == 0 {
		fmt.Println("No stored quotes.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "QUOTE ID\tFILE\tPAGES\tRUSH\tCOST\tCREATED")
	for _, q := range quotes {
		fmt.Fprintf(w, "%s\t%s\t%d\t%t\t$%.2f\t%s\n",
			q.QuoteID, q.Filename, q.TotalPages, q.RushApplied, q.EstimatedCost, q.CreatedAt)
	}
	return w.Flush()
}

func ProposalAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("expected exactly one quote ID")
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	report, err := store.GetReport(c.Context, c.Args().First())
	if err != nil {
		return err
	}

	if c.Bool("polish") {
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return errors.New("OPENAI_API_KEY environment variable not set")
		}
		letter, err := llm.DraftProposal(c.Context, apiKey, report, logger.NewNoOpLogger())
		if err != nil {
			return err
		}
		fmt.Println(letter)
		return nil
	}

	fmt.Print(pricing.ProposalSummary(report))
	return nil
}

// configPath resolves the rate card location: the --config flag wins,
// then SCOPESCAN_CONFIG, then built-in defaults.
func configPath(c *cli.Context) string {
	if c.IsSet("config") {
		return c.String("config")
	}
	return os.Getenv("SCOPESCAN_CONFIG")
}

// openStore opens the quote database at SCOPESCAN_DB_PATH or the
// default ~/.scopescan/scopescan.db.
func openStore() (storage.Store, error) {
	dbPath := os.Getenv("SCOPESCAN_DB_PATH")
	if dbPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		dbDir := filepath.Join(homeDir, ".scopescan")
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dbPath = filepath.Join(dbDir, "scopescan.db")
	}
	return storage.NewSQLiteStore(dbPath)
}
