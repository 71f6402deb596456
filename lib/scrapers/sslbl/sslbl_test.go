package sslbl

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"sslbl-scraper/lib/telemetry"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	_ "embed"
)

//go:embed testdata/listing.html
var listingPage []byte

//go:embed testdata/detail.html
var detailPage []byte

//go:embed testdata/detail_missing.html
var detailMissingPage []byte

//go:embed testdata/detail_unknown.html
var detailUnknownPage []byte

func parseDoc(t testing.TB, contents []byte) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(contents))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func newTestClient(t testing.TB, handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientOptions{
		ListingUrl: server.URL + "/ssl-certificates/",
		BaseUrl:    server.URL + "/",
	})
	if err != nil {
		t.Fatal(err)
	}
	return client, server
}

func TestParseCertLinks(t *testing.T) {
	links := ParseCertLinks(context.Background(), parseDoc(t, listingPage))

	diff := cmp.Diff([]string{
		"/ssl-certificates/sha1/1e4c5d9a2f2b0b59d2f09ed57a1fd98c3b3e5c11/",
		"/ssl-certificates/sha1/f3a7d0c1b9e84f0e22c5a6d7b8e9f0a1b2c3d4e5/",
		"/ssl-certificates/sha1/1e4c5d9a2f2b0b59d2f09ed57a1fd98c3b3e5c11/",
	}, links)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestParseCertLinksPattern(t *testing.T) {
	testCases := []struct {
		html     string
		expected []string
	}{
		{
			html:     `<a href="/ssl-certificates/sha1/" target="_parent">x</a>`,
			expected: []string{"/ssl-certificates/sha1/"},
		},
		{
			html:     `<a href="https://sslbl.abuse.ch/ssl-certificates/sha1/abc/" target="_parent">x</a>`,
			expected: []string{"https://sslbl.abuse.ch/ssl-certificates/sha1/abc/"},
		},
		{
			html:     `<a href="/ssl-certificates/SHA1/abc/" target="_parent">x</a>`,
			expected: []string{},
		},
		{
			html:     `<a href="/ssl-certificates/sha1/abc/" target="_PARENT">x</a>`,
			expected: []string{},
		},
		{
			html:     `<p>no anchors here</p>`,
			expected: []string{},
		},
	}

	for _, test := range testCases {
		links := ParseCertLinks(context.Background(), parseDoc(t, []byte(test.html)))
		require.Equal(t, test.expected, links, test.html)
	}
}

func TestParseCertInfo(t *testing.T) {
	record, ok := ParseCertInfo(context.Background(), parseDoc(t, detailPage))
	require.True(t, ok)

	diff := cmp.Diff(CertificateRecord{
		SHA1Fingerprint:         "1e4c5d9a2f2b0b59d2f09ed57a1fd98c3b3e5c11",
		CertCommonName:          "AsyncRAT Server",
		IssuerDistinguishedName: "CN=AsyncRAT Server",
		TLSVersion:              "TLSv1.2",
		FirstSeen:               "2024-05-02 08:14:21 UTC",
		ListingReason:           "AsyncRAT C&C",
		ListingDate:             "2024-05-02 08:14:21 UTC",
	}, record)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestParseCertInfoMissingTable(t *testing.T) {
	record, ok := ParseCertInfo(context.Background(), parseDoc(t, detailMissingPage))
	require.False(t, ok)
	require.Equal(t, CertificateRecord{}, record)
}

func TestParseCertInfoUnknownLabels(t *testing.T) {
	record, ok := ParseCertInfo(context.Background(), parseDoc(t, detailUnknownPage))
	require.True(t, ok)

	diff := cmp.Diff(CertificateRecord{
		SHA1Fingerprint: "90b2ce3b6e1f52f6d2c38e4f3c2d6c1f8a0b7e42",
		ListingReason:   "QuasarRAT C&C",
	}, record)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestLookupField(t *testing.T) {
	for _, known := range knownLabels {
		field, ok := LookupField(known.label)
		require.True(t, ok, known.label)
		require.Equal(t, known.field, field)
	}

	_, ok := LookupField("SHA1 Fingerprint")
	require.False(t, ok)
	_, ok = LookupField("first seen:")
	require.False(t, ok)
	_, ok = LookupField(" First seen: ")
	require.False(t, ok)
}

func TestParseCertInfoPaddedLabel(t *testing.T) {
	doc := parseDoc(t, []byte(`<table class="table table-sm table-bordered">
		<tr><th> SHA1 Fingerprint: </th><td>abc</td></tr>
		<tr><th>TLS Version:</th><td> TLSv1.3 </td></tr>
	</table>`))
	record, ok := ParseCertInfo(context.Background(), doc)
	require.True(t, ok)
	require.Equal(t, CertificateRecord{TLSVersion: " TLSv1.3 "}, record)
}

func TestClosestLabel(t *testing.T) {
	known, score := closestLabel("First Seen:")
	require.Equal(t, "First seen:", known.label)
	require.Equal(t, FieldFirstSeen, known.field)
	require.Greater(t, score, 0.9)
}

func TestParseCertInfoLogsUnknownLabels(t *testing.T) {
	var logs bytes.Buffer
	previous := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() {
		slog.SetDefault(previous)
	})

	_, ok := ParseCertInfo(context.Background(), parseDoc(t, detailUnknownPage))
	require.True(t, ok)

	require.Contains(t, logs.String(), `label="Listing date" closest="Listing date:" field=listing_date`)
	require.Contains(t, logs.String(), `label=" First seen: "`)
	require.Contains(t, logs.String(), "field=first_seen")
}

func TestFieldString(t *testing.T) {
	require.Equal(t, "sha1_fingerprint", FieldSHA1Fingerprint.String())
	require.Equal(t, "listing_date", FieldListingDate.String())
	require.Equal(t, "unknown", Field(42).String())
}

func TestClientGetCertLinks(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:scrapers/sslbl")
	defer cleanup()

	mux := http.NewServeMux()
	mux.HandleFunc("/ssl-certificates/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(listingPage)
	})
	client, _ := newTestClient(t, mux)

	links, err := client.GetCertLinks(context.Background())
	require.NoError(t, err)
	require.Len(t, links, 3)
}

func TestClientGetCertInfo(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ssl-certificates/sha1/full/", func(w http.ResponseWriter, r *http.Request) {
		w.Write(detailPage)
	})
	mux.HandleFunc("/ssl-certificates/sha1/missing/", func(w http.ResponseWriter, r *http.Request) {
		w.Write(detailMissingPage)
	})
	client, _ := newTestClient(t, mux)

	full, err := client.ResolveUrl("/ssl-certificates/sha1/full/")
	require.NoError(t, err)
	record, ok, err := client.GetCertInfo(context.Background(), full)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "AsyncRAT Server", record.CertCommonName)

	missing, err := client.ResolveUrl("/ssl-certificates/sha1/missing/")
	require.NoError(t, err)
	record, ok, err = client.GetCertInfo(context.Background(), missing)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, CertificateRecord{}, record)
}

func TestClientFetchErrors(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ssl-certificates/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	})
	mux.HandleFunc("/ssl-certificates/sha1/latin1/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>caf\xe9</html>"))
	})
	client, server := newTestClient(t, mux)

	_, err := client.GetCertLinks(context.Background())
	var fetchErr *FetchError
	require.True(t, errors.As(err, &fetchErr))
	require.Equal(t, http.StatusServiceUnavailable, fetchErr.StatusCode)
	require.Equal(t, server.URL+"/ssl-certificates/", fetchErr.Url)
	require.Contains(t, err.Error(), server.URL+"/ssl-certificates/")

	_, _, err = client.GetCertInfo(context.Background(), server.URL+"/ssl-certificates/sha1/latin1/")
	require.True(t, errors.As(err, &fetchErr))

	// nothing listens here once the server is closed
	server.Close()
	_, _, err = client.GetCertInfo(context.Background(), server.URL+"/ssl-certificates/sha1/full/")
	require.True(t, errors.As(err, &fetchErr))
	require.Equal(t, 0, fetchErr.StatusCode)
}

func TestResolveUrl(t *testing.T) {
	client, err := NewClient(ClientOptions{})
	require.NoError(t, err)

	resolved, err := client.ResolveUrl("/ssl-certificates/sha1/abc/")
	require.NoError(t, err)
	require.Equal(t, "https://sslbl.abuse.ch/ssl-certificates/sha1/abc/", resolved)
	require.Equal(t, DefaultListingUrl, client.ListingUrl)
}
