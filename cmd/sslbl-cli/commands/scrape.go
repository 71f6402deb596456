package commands

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"sslbl-scraper/cmd/sslbl-cli/utils"
	"sslbl-scraper/lib/restyutil"
	"sslbl-scraper/lib/scrapers/sslbl"
	"sslbl-scraper/services/certcrawl"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var scrapeOutput *string
var scrapeDumpHttp *string
var scrapeDelayEvery *int

func init() {
	scrapeOutput = scrapeCmd.Flags().String("output", "", "The json file to write, overrides the config.")
	scrapeDumpHttp = scrapeCmd.Flags().String("dump-http", "", "Write every http exchange to this directory (requires --debug).")
	scrapeDelayEvery = scrapeCmd.Flags().Int("delay-every", 0, "Pause after this many pages, overrides the config.")
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [--output <path/to/output.json>] [--dump-http <dir>]",
	Short: "Scrapes every certificate on the listing page and writes them to a json file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		cfg, err := loadConfig(*configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("output") {
			cfg.Output = *scrapeOutput
		}
		if cmd.Flags().Changed("delay-every") {
			cfg.DelayEvery = *scrapeDelayEvery
		}

		opts := sslbl.ClientOptions{
			ListingUrl:       cfg.ListingUrl,
			BaseUrl:          cfg.BaseUrl,
			Timeout:          cfg.HttpTimeout(),
			CloudflareBypass: cfg.CloudflareBypass,
		}
		if *scrapeDumpHttp != "" {
			out, err := restyutil.NewFilesystemOutput(*scrapeDumpHttp)
			if err != nil {
				return fmt.Errorf("prepare http dump directory: %w", err)
			}
			opts.InstrumentOutput = out
		}
		client, err := sslbl.NewClient(opts)
		if err != nil {
			return err
		}

		t1 := time.Now()

		links, err := client.GetCertLinks(ctx)
		if err != nil {
			slog.Error("failed to fetch listing page", "url", cfg.ListingUrl, "err", err)
			return err
		}
		slog.Info("found certificate links", "count", len(links))

		crawler := certcrawl.NewCrawler(client, certcrawl.Options{
			DelayEvery: cfg.DelayEvery,
			Delay:      cfg.Delay(),
			Progress:   certcrawl.NewConsoleProgress(os.Stdout),
		})
		result, err := crawler.Crawl(ctx, links)
		if err != nil {
			return err
		}

		err = certcrawl.WriteResult(cfg.Output, result.Records)
		if err != nil {
			return fmt.Errorf("write %s: %w", cfg.Output, err)
		}

		t2 := time.Now()
		slog.Info("scraping time", "seconds", t2.Sub(t1).Seconds())

		summary := utils.NewTable(os.Stdout)
		summary.AppendHeader(table.Row{"Links", "Records", "Error pages", "Output"})
		summary.AppendRow(table.Row{len(links), len(result.Records), len(result.ErrorPages), cfg.Output})
		summary.Render()

		return nil
	},
}
