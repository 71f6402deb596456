package sslbl

import (
	"context"
	"log/slog"

	"sslbl-scraper/lib/htmlutil"

	"github.com/PuerkitoBio/goquery"
	"github.com/antzucaro/matchr"
	"go.opentelemetry.io/otel/attribute"
)

const certTableSelector = "table.table.table-sm.table-bordered"

// the html parser wraps rows in a tbody, which is treated as part of the table
func tableRows(table *goquery.Selection) []*goquery.Selection {
	var rows []*goquery.Selection
	table.Children().Each(func(_ int, child *goquery.Selection) {
		switch goquery.NodeName(child) {
		case "tr":
			rows = append(rows, child)
		case "thead", "tbody", "tfoot":
			child.ChildrenFiltered("tr").Each(func(_ int, tr *goquery.Selection) {
				rows = append(rows, tr)
			})
		}
	})
	return rows
}

// closestLabel is only used to make unknown labels easier to diagnose.
func closestLabel(label string) (labelField, float64) {
	var best labelField
	var bestScore float64
	for _, known := range knownLabels {
		score := matchr.JaroWinkler(label, known.label, false)
		if score > bestScore {
			best = known
			bestScore = score
		}
	}
	return best, bestScore
}

// ParseCertInfo extracts a record from the certificate table of a detail
// page, ok is false when the page has no such table.
func ParseCertInfo(ctx context.Context, doc *goquery.Document) (record CertificateRecord, ok bool) {
	table := doc.Find(certTableSelector).First()
	if table.Length() == 0 {
		return CertificateRecord{}, false
	}

	for _, row := range tableRows(table) {
		cells := row.ChildrenFiltered("th, td")
		if cells.Length() < 2 {
			continue
		}
		// labels are matched byte for byte, padding included
		label := htmlutil.GetText(cells.Get(0))
		value := htmlutil.GetText(cells.Get(1))

		field, known := LookupField(label)
		if !known {
			suggestion, score := closestLabel(label)
			slog.DebugContext(
				ctx, "ignoring unknown row label",
				"label", label,
				"closest", suggestion.label,
				"field", suggestion.field.String(),
				"similarity", score,
			)
			continue
		}
		record.Set(field, value)
	}

	return record, true
}

// GetCertInfo fetches one detail page by absolute url. A page without the
// certificate table is not an error, it is reported with ok = false.
func (c *Client) GetCertInfo(ctx context.Context, pageUrl string) (record CertificateRecord, ok bool, err error) {
	ctx, span := tracer.Start(ctx, "GetCertInfo")
	defer span.End()

	doc, err := c.fetchDocument(ctx, pageUrl)
	if err != nil {
		return CertificateRecord{}, false, err
	}

	record, ok = ParseCertInfo(ctx, doc)
	span.SetAttributes(attribute.Bool("found", ok))
	if !ok {
		pagesMissed.Add(ctx, 1)
		slog.DebugContext(ctx, "certificate table not found", "url", pageUrl)
		return CertificateRecord{}, false, nil
	}
	recordsParsed.Add(ctx, 1)
	return record, true, nil
}
