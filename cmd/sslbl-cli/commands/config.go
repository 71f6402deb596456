package commands

import (
	"fmt"
	"time"

	"sslbl-scraper/lib/configutil"
	"sslbl-scraper/lib/scrapers/sslbl"
	"sslbl-scraper/services/certcrawl"
)

type Config struct {
	ListingUrl string `json:"listing_url"`
	BaseUrl    string `json:"base_url"`
	Output     string `json:"output"`
	// values < 1 disable the courtesy delay
	DelayEvery int `json:"delay_every"`
	DelayMs    int `json:"delay_ms"`
	// 0 means no timeout
	HttpTimeoutMs    int  `json:"http_timeout_ms"`
	CloudflareBypass bool `json:"cloudflare_bypass"`
}

func defaultConfig() Config {
	return Config{
		ListingUrl: sslbl.DefaultListingUrl,
		BaseUrl:    sslbl.DefaultBaseUrl,
		Output:     certcrawl.DefaultOutputFile,
		DelayEvery: certcrawl.DefaultDelayEvery,
		DelayMs:    int(certcrawl.DefaultDelay / time.Millisecond),
	}
}

func loadConfig(path string) (Config, error) {
	cfg, err := configutil.ReadConfigOr(path, defaultConfig())
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Delay() time.Duration {
	return time.Duration(c.DelayMs) * time.Millisecond
}

func (c Config) HttpTimeout() time.Duration {
	return time.Duration(c.HttpTimeoutMs) * time.Millisecond
}
