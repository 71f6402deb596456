package certstore

import (
	"context"
	"database/sql"

	"sslbl-scraper/lib/scrapers/sslbl"

	_ "embed"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

// Store keeps the records of the latest scrape in a sqlite table, rows are
// numbered by their position in the scrape.
type Store struct {
	db *sql.DB
}

func Open(path string) (Store, error) {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return Store{}, err
	}
	// every connection to ":memory:" would otherwise see its own database
	database.SetMaxOpenConns(1)

	_, err = database.Exec(Schema)
	if err != nil {
		database.Close()
		return Store{}, err
	}
	return Store{db: database}, nil
}

func (s Store) Close() error {
	return s.db.Close()
}

// Replace drops every stored record and inserts `records` in order.
func (s Store) Replace(ctx context.Context, records []sslbl.CertificateRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, "delete from certificates")
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `insert into certificates (
		idx, sha1, cert_cn, issuer_dn, tls_version, first_seen, listing_reason, listing_date
	) values (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, r := range records {
		_, err = stmt.ExecContext(
			ctx,
			i,
			r.SHA1Fingerprint,
			r.CertCommonName,
			r.IssuerDistinguishedName,
			r.TLSVersion,
			r.FirstSeen,
			r.ListingReason,
			r.ListingDate,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// List returns the stored records in scrape order.
func (s Store) List(ctx context.Context) ([]sslbl.CertificateRecord, error) {
	rows, err := s.db.QueryContext(ctx, `select
		sha1, cert_cn, issuer_dn, tls_version, first_seen, listing_reason, listing_date
	from certificates order by idx`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []sslbl.CertificateRecord{}
	for rows.Next() {
		var r sslbl.CertificateRecord
		err = rows.Scan(
			&r.SHA1Fingerprint,
			&r.CertCommonName,
			&r.IssuerDistinguishedName,
			&r.TLSVersion,
			&r.FirstSeen,
			&r.ListingReason,
			&r.ListingDate,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
