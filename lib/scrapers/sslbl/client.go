package sslbl

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"
	"unicode/utf8"

	"sslbl-scraper/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultListingUrl = "https://sslbl.abuse.ch/ssl-certificates/"
	DefaultBaseUrl    = "https://sslbl.abuse.ch/"
)

type ClientOptions struct {
	// page enumerating the certificate detail links
	ListingUrl string
	// origin detail links are resolved against
	BaseUrl string
	// zero means requests never time out
	Timeout time.Duration
	// route requests through a transport that mimics a browser
	CloudflareBypass bool
	// receives http exchanges when debug logging is enabled, can be nil
	InstrumentOutput restyutil.InstrumentOutput
}

type Client struct {
	ListingUrl string
	BaseUrl    *url.URL
	http       *resty.Client
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.ListingUrl == "" {
		opts.ListingUrl = DefaultListingUrl
	}
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}

	baseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	_, err = url.Parse(opts.ListingUrl)
	if err != nil {
		return nil, fmt.Errorf("parse listing url: %w", err)
	}

	client := resty.New()
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}
	if opts.CloudflareBypass {
		client.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(client.GetClient().Transport)
	}
	restyutil.InstrumentClient(client, tracer, opts.InstrumentOutput)

	return &Client{
		ListingUrl: opts.ListingUrl,
		BaseUrl:    baseUrl,
		http:       client,
	}, nil
}

// ResolveUrl turns a link found on the listing page into an absolute url.
func (c *Client) ResolveUrl(link string) (string, error) {
	ref, err := url.Parse(link)
	if err != nil {
		return "", err
	}
	return c.BaseUrl.ResolveReference(ref).String(), nil
}

func (c *Client) fetchDocument(ctx context.Context, link string) (*goquery.Document, error) {
	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.String("url", link))

	res, err := c.http.R().
		SetContext(ctx).
		Get(link)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch")
		return nil, &FetchError{Url: link, Err: err}
	}
	if !res.IsSuccess() {
		span.SetStatus(codes.Error, "unexpected status")
		return nil, &FetchError{
			Url:        link,
			StatusCode: res.StatusCode(),
			Err:        fmt.Errorf("unexpected status %q", res.Status()),
		}
	}
	pagesFetched.Add(ctx, 1)

	body := res.Body()
	if !utf8.Valid(body) {
		span.SetStatus(codes.Error, "body is not utf-8")
		return nil, &FetchError{
			Url:        link,
			StatusCode: res.StatusCode(),
			Err:        fmt.Errorf("response body is not valid utf-8"),
		}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return nil, fmt.Errorf("parse html of %s: %w", link, err)
	}
	return doc, nil
}
