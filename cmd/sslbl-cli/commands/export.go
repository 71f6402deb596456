package commands

import (
	"fmt"
	"log/slog"

	"sslbl-scraper/services/certcrawl"
	"sslbl-scraper/services/certstore"

	"github.com/spf13/cobra"
)

var exportDb *string
var exportFile *string

func init() {
	exportDb = exportCmd.Flags().String("db", "sslbl.db", "The sqlite database to write records to.")
	exportFile = exportCmd.Flags().String("file", "", "The json file to read, defaults to the configured output.")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export [--db <path/to/output.db>] [--file <path/to/output.json>]",
	Short: "Loads the records of a previous scrape into a sqlite database.",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := resultPath(*exportFile)
		if err != nil {
			return err
		}
		records, err := certcrawl.ReadResult(path)
		if err != nil {
			return err
		}

		store, err := certstore.Open(*exportDb)
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer store.Close()

		err = store.Replace(cmd.Context(), records)
		if err != nil {
			return fmt.Errorf("write records: %w", err)
		}
		slog.Info("exported records", "count", len(records), "db", *exportDb)
		return nil
	},
}
