package certcrawl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"unicode/utf16"
	"unicode/utf8"

	"sslbl-scraper/lib/scrapers/sslbl"
)

const DefaultOutputFile = "sslbl_cert_info.json"

// OutputEntry is the serialized form of a record, json keys are emitted
// in field order.
type OutputEntry struct {
	Sha1          string `json:"sha1"`
	CertCN        string `json:"CertCN"`
	IssuerDN      string `json:"IssuerDN"`
	TlsVersion    string `json:"Tls version"`
	FirstSeen     string `json:"First Seen"`
	ListingReason string `json:"Listing Reason"`
	ListingDate   string `json:"Listing Date"`
}

func ToOutputEntry(r sslbl.CertificateRecord) OutputEntry {
	return OutputEntry{
		Sha1:          r.SHA1Fingerprint,
		CertCN:        r.CertCommonName,
		IssuerDN:      r.IssuerDistinguishedName,
		TlsVersion:    r.TLSVersion,
		FirstSeen:     r.FirstSeen,
		ListingReason: r.ListingReason,
		ListingDate:   r.ListingDate,
	}
}

func FromOutputEntry(e OutputEntry) sslbl.CertificateRecord {
	return sslbl.CertificateRecord{
		SHA1Fingerprint:         e.Sha1,
		CertCommonName:          e.CertCN,
		IssuerDistinguishedName: e.IssuerDN,
		TLSVersion:              e.TlsVersion,
		FirstSeen:               e.FirstSeen,
		ListingReason:           e.ListingReason,
		ListingDate:             e.ListingDate,
	}
}

// EncodeResult writes records as a json array indented by 4 spaces. The
// output is pure ascii and has no trailing newline, so files are identical
// to the ones produced by earlier versions of the scraper.
func EncodeResult(w io.Writer, records []sslbl.CertificateRecord) error {
	entries := make([]OutputEntry, len(records))
	for i, r := range records {
		entries[i] = ToOutputEntry(r)
	}

	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "    ")
	err := encoder.Encode(entries)
	if err != nil {
		return err
	}

	_, err = w.Write(escapeNonASCII(bytes.TrimSuffix(buffer.Bytes(), []byte("\n"))))
	return err
}

var shortEscapes = map[string]string{
	`\u0008`: `\b`,
	`\u000c`: `\f`,
}

// escapeNonASCII rewrites encoded json so that every rune outside printable
// ascii is a \uXXXX escape, using surrogate pairs above the BMP.
func escapeNonASCII(src []byte) []byte {
	var out bytes.Buffer
	out.Grow(len(src))
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '\\':
			// escapes are copied whole so their contents are never rewritten
			n := 2
			if i+1 < len(src) && src[i+1] == 'u' {
				n = 6
			}
			n = min(n, len(src)-i)
			seq := string(src[i : i+n])
			if short, ok := shortEscapes[seq]; ok {
				seq = short
			}
			out.WriteString(seq)
			i += n
		case c < 0x7f:
			out.WriteByte(c)
			i++
		default:
			r, size := utf8.DecodeRune(src[i:])
			if r >= 0x10000 {
				r1, r2 := utf16.EncodeRune(r)
				fmt.Fprintf(&out, `\u%04x\u%04x`, r1, r2)
			} else {
				fmt.Fprintf(&out, `\u%04x`, r)
			}
			i += size
		}
	}
	return out.Bytes()
}

// WriteResult replaces the contents of `path` with the encoded records.
func WriteResult(path string, records []sslbl.CertificateRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = EncodeResult(f, records)
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadResult reads back a file written by WriteResult.
func ReadResult(path string) ([]sslbl.CertificateRecord, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []OutputEntry
	err = json.Unmarshal(contents, &entries)
	if err != nil {
		return nil, err
	}

	records := make([]sslbl.CertificateRecord, len(entries))
	for i, e := range entries {
		records[i] = FromOutputEntry(e)
	}
	return records, nil
}
