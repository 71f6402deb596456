package certstore

import (
	"context"
	"path/filepath"
	"testing"

	"sslbl-scraper/lib/scrapers/sslbl"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestReplaceAndList(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	first := []sslbl.CertificateRecord{
		{SHA1Fingerprint: "aa", CertCommonName: "one"},
		{SHA1Fingerprint: "bb", ListingReason: "Dridex C&C"},
		{SHA1Fingerprint: "aa", CertCommonName: "one"},
	}
	require.NoError(t, store.Replace(ctx, first))

	listed, err := store.List(ctx)
	require.NoError(t, err)
	diff := cmp.Diff(first, listed)
	if diff != "" {
		t.Fatal(diff)
	}

	second := []sslbl.CertificateRecord{{SHA1Fingerprint: "cc"}}
	require.NoError(t, store.Replace(ctx, second))
	listed, err = store.List(ctx)
	require.NoError(t, err)
	require.Equal(t, second, listed)
}

func TestOpenFileReusesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sslbl.db")
	ctx := context.Background()

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.Replace(ctx, []sslbl.CertificateRecord{{SHA1Fingerprint: "aa"}}))
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	listed, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
}
