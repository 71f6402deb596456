package sslbl

import (
	"context"
	"log/slog"
	"regexp"

	"sslbl-scraper/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
)

var certLinkRegex = regexp.MustCompile(`/ssl-certificates/sha1/.*`)

// ParseCertLinks returns the href of every anchor opening a certificate
// detail page in the parent frame, in document order.
func ParseCertLinks(ctx context.Context, doc *goquery.Document) []string {
	links := []string{}
	for _, a := range htmlutil.GetAnchors(ctx, doc.Find("a")) {
		if a.Target != "_parent" || !certLinkRegex.MatchString(a.Href) {
			continue
		}
		links = append(links, a.Href)
	}
	return links
}

// GetCertLinks fetches the listing page and returns the detail links on it.
func (c *Client) GetCertLinks(ctx context.Context) ([]string, error) {
	ctx, span := tracer.Start(ctx, "GetCertLinks")
	defer span.End()

	doc, err := c.fetchDocument(ctx, c.ListingUrl)
	if err != nil {
		return nil, err
	}

	links := ParseCertLinks(ctx, doc)
	span.SetAttributes(attribute.Int("links", len(links)))
	slog.DebugContext(ctx, "collected certificate links", "url", c.ListingUrl, "count", len(links))
	return links, nil
}
