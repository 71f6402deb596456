package certcrawl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sslbl-scraper/lib/scrapers/sslbl"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("sslbl.services.certcrawl")

const (
	DefaultDelayEvery = 3
	DefaultDelay      = time.Second
)

// Scraper is the subset of *sslbl.Client the crawler depends on.
type Scraper interface {
	ResolveUrl(link string) (string, error)
	GetCertInfo(ctx context.Context, pageUrl string) (sslbl.CertificateRecord, bool, error)
}

// Pauser blocks for the courtesy delay between batches of requests.
type Pauser interface {
	Pause(ctx context.Context, d time.Duration) error
}

type SleepPauser struct{}

func (SleepPauser) Pause(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type Options struct {
	// pause after this many attempted pages, values < 1 disable pausing
	DelayEvery int
	Delay      time.Duration
	Pauser     Pauser
	Progress   Progress
}

type Crawler struct {
	scraper    Scraper
	delayEvery int
	delay      time.Duration
	pauser     Pauser
	progress   Progress
}

func NewCrawler(scraper Scraper, opts Options) Crawler {
	if opts.Pauser == nil {
		opts.Pauser = SleepPauser{}
	}
	if opts.Progress == nil {
		opts.Progress = NopProgress{}
	}
	return Crawler{
		scraper:    scraper,
		delayEvery: opts.DelayEvery,
		delay:      opts.Delay,
		pauser:     opts.Pauser,
		progress:   opts.Progress,
	}
}

type Result struct {
	// in traversal order, duplicates are kept
	Records []sslbl.CertificateRecord
	// absolute urls of pages without a certificate table
	ErrorPages []string
}

// Crawl visits every link in order, one at a time. A page without a
// certificate table is recorded in Result.ErrorPages, any fetch error
// stops the crawl and is returned as is.
func (c Crawler) Crawl(ctx context.Context, links []string) (Result, error) {
	ctx, span := tracer.Start(ctx, "Crawl")
	defer span.End()
	span.SetAttributes(attribute.Int("links", len(links)))

	result := Result{
		Records:    []sslbl.CertificateRecord{},
		ErrorPages: []string{},
	}
	total := len(links)

	for i, link := range links {
		attempted := i + 1

		pageUrl, err := c.scraper.ResolveUrl(link)
		if err != nil {
			c.progress.Abort()
			span.RecordError(err)
			span.SetStatus(codes.Error, "invalid link")
			return result, fmt.Errorf("resolve link %q: %w", link, err)
		}

		record, ok, err := c.scraper.GetCertInfo(ctx, pageUrl)
		if err != nil {
			c.progress.Abort()
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to fetch page")
			slog.ErrorContext(ctx, "failed to fetch certificate page", "url", pageUrl, "err", err)
			return result, err
		}
		if ok {
			result.Records = append(result.Records, record)
		} else {
			result.ErrorPages = append(result.ErrorPages, pageUrl)
		}

		c.progress.Update(attempted, total)

		if c.delayEvery > 0 && attempted%c.delayEvery == 0 {
			err = c.pauser.Pause(ctx, c.delay)
			if err != nil {
				c.progress.Abort()
				return result, err
			}
		}
	}

	c.progress.Done(result.ErrorPages)
	span.SetAttributes(
		attribute.Int("records", len(result.Records)),
		attribute.Int("error_pages", len(result.ErrorPages)),
	)
	return result, nil
}
