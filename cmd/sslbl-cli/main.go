package main

import (
	"sslbl-scraper/cmd/sslbl-cli/commands"
	"sslbl-scraper/lib/util/serviceutil"
)

func main() {
	ctx, stop := serviceutil.SignalContext()
	defer stop()
	commands.ExecuteContext(ctx)
}
