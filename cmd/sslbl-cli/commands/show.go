package commands

import (
	"context"
	"fmt"
	"os"

	"sslbl-scraper/cmd/sslbl-cli/utils"
	"sslbl-scraper/lib/scrapers/sslbl"
	"sslbl-scraper/services/certcrawl"
	"sslbl-scraper/services/certstore"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var showFile *string
var showDb *string

func init() {
	showFile = showCmd.Flags().String("file", "", "The json file to display, defaults to the configured output.")
	showDb = showCmd.Flags().String("db", "", "Display the records exported to this sqlite database instead.")
	showCmd.MarkFlagsMutuallyExclusive("file", "db")
	rootCmd.AddCommand(showCmd)
}

var showCmd = &cobra.Command{
	Use:   "show [--file <path/to/output.json> | --db <path/to/output.db>]",
	Short: "Displays the records of a previous scrape as a table.",
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := loadRecords(cmd.Context(), *showFile, *showDb)
		if err != nil {
			return err
		}

		t := utils.NewTable(os.Stdout)
		t.AppendHeader(table.Row{"SHA1", "Common name", "Issuer DN", "TLS", "First seen", "Reason", "Listed"})
		for _, r := range records {
			t.AppendRow(table.Row{
				r.SHA1Fingerprint,
				utils.Truncate(r.CertCommonName, 40),
				utils.Truncate(r.IssuerDistinguishedName, 40),
				r.TLSVersion,
				r.FirstSeen,
				utils.Truncate(r.ListingReason, 30),
				r.ListingDate,
			})
		}
		t.AppendFooter(table.Row{"", "", "", "", "", "Total", len(records)})
		t.Render()
		return nil
	},
}

// loadRecords reads from the sqlite database when `db` is set and from the
// json output otherwise.
func loadRecords(ctx context.Context, file, db string) ([]sslbl.CertificateRecord, error) {
	if db != "" {
		// sqlite would create an empty database for a mistyped path
		_, err := os.Stat(db)
		if err != nil {
			return nil, err
		}
		store, err := certstore.Open(db)
		if err != nil {
			return nil, fmt.Errorf("open db: %w", err)
		}
		defer store.Close()
		return store.List(ctx)
	}

	path, err := resultPath(file)
	if err != nil {
		return nil, err
	}
	return certcrawl.ReadResult(path)
}

// resultPath falls back to the output configured for scrape.
func resultPath(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	cfg, err := loadConfig(*configPath)
	if err != nil {
		return "", err
	}
	return cfg.Output, nil
}
