package sslbl

// CertificateRecord holds the attributes of one blacklisted certificate
// as rendered on its detail page. Fields missing from the page stay empty.
type CertificateRecord struct {
	SHA1Fingerprint         string
	CertCommonName          string
	IssuerDistinguishedName string
	TLSVersion              string
	FirstSeen               string
	ListingReason           string
	ListingDate             string
}

type Field int

const (
	FieldSHA1Fingerprint Field = iota
	FieldCertCommonName
	FieldIssuerDistinguishedName
	FieldTLSVersion
	FieldFirstSeen
	FieldListingReason
	FieldListingDate
)

func (f Field) String() string {
	switch f {
	case FieldSHA1Fingerprint:
		return "sha1_fingerprint"
	case FieldCertCommonName:
		return "cert_common_name"
	case FieldIssuerDistinguishedName:
		return "issuer_distinguished_name"
	case FieldTLSVersion:
		return "tls_version"
	case FieldFirstSeen:
		return "first_seen"
	case FieldListingReason:
		return "listing_reason"
	case FieldListingDate:
		return "listing_date"
	default:
		return "unknown"
	}
}

type labelField struct {
	label string
	field Field
}

// row labels as they appear in the detail table, matched exactly
var knownLabels = []labelField{
	{label: "SHA1 Fingerprint:", field: FieldSHA1Fingerprint},
	{label: "Certificate Common Name (CN):", field: FieldCertCommonName},
	{label: "Issuer Distinguished Name (DN):", field: FieldIssuerDistinguishedName},
	{label: "TLS Version:", field: FieldTLSVersion},
	{label: "First seen:", field: FieldFirstSeen},
	{label: "Listing reason:", field: FieldListingReason},
	{label: "Listing date:", field: FieldListingDate},
}

var labelFields = func() map[string]Field {
	out := make(map[string]Field, len(knownLabels))
	for _, l := range knownLabels {
		out[l.label] = l.field
	}
	return out
}()

// LookupField maps a detail table label to the record field it populates.
func LookupField(label string) (Field, bool) {
	f, ok := labelFields[label]
	return f, ok
}

func (r *CertificateRecord) Set(field Field, value string) {
	switch field {
	case FieldSHA1Fingerprint:
		r.SHA1Fingerprint = value
	case FieldCertCommonName:
		r.CertCommonName = value
	case FieldIssuerDistinguishedName:
		r.IssuerDistinguishedName = value
	case FieldTLSVersion:
		r.TLSVersion = value
	case FieldFirstSeen:
		r.FirstSeen = value
	case FieldListingReason:
		r.ListingReason = value
	case FieldListingDate:
		r.ListingDate = value
	}
}
