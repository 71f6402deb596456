package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sslbl-scraper/lib/telemetry"
	"sslbl-scraper/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

var configPath *string
var debug *bool

var tel telemetry.Telemetry

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "sslbl.json5", "The json5 config file, sslbl.local.json5 overrides it.")
	debug = rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging.")
}

var rootCmd = &cobra.Command{
	Use:           "sslbl-cli",
	Short:         "sslbl-cli scrapes the abuse.ch SSL certificate blacklist into a json file.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		telemetry.InitSlog(*debug)

		var err error
		tel, err = telemetry.SetupFromEnv(cmd.Context(), "sslbl-cli")
		if err != nil {
			return fmt.Errorf("setup telemetry: %w", err)
		}
		if tel.Enabled() {
			telemetry.InstrumentPerfStats(cmd.Context(), time.Second*10)
		}
		return nil
	},
}

func ExecuteContext(ctx context.Context) {
	err := rootCmd.ExecuteContext(ctx)

	shutdownErr := tel.Shutdown(context.Background())
	if shutdownErr != nil {
		slog.Warn("failed to flush telemetry", "err", shutdownErr)
	}

	if err != nil {
		serviceutil.Fatal("sslbl-cli failed", err)
	}
}
