// Package parser decodes X.509 certificates from raw file contents.
package parser

import (
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/certwatch-app/cw-inventory/internal/model"
)

// ErrUnrecognized is returned when the data is neither a PEM nor a DER certificate
var ErrUnrecognized = errors.New("no certificate found in PEM or DER encoding")

// Encoding names the encoding a certificate was decoded from
type Encoding string

// Supported encodings, in the order they are attempted
const (
	EncodingPEM Encoding = "PEM"
	EncodingDER Encoding = "DER"
)

// Parse decodes the first certificate in data.
// PEM is attempted first, then raw DER.
func Parse(data []byte) (model.Certificate, error) {
	cert, _, err := ParseWithEncoding(data)
	return cert, err
}

// ParseWithEncoding is Parse that also reports which encoding matched
func ParseWithEncoding(data []byte) (model.Certificate, Encoding, error) {
	pemCert, pemErr := decodePEM(data)
	if pemErr == nil {
		return pemCert, EncodingPEM, nil
	}

	derCert, derErr := parseDER(data)
	if derErr == nil {
		return derCert, EncodingDER, nil
	}

	return model.Certificate{}, "", fmt.Errorf("%w (pem: %v, der: %v)", ErrUnrecognized, pemErr, derErr)
}

// decodePEM returns the first parsable certificate block, skipping keys, CSRs and
// anything else that may share the file.
func decodePEM(data []byte) (model.Certificate, error) {
	rest := data
	var lastErr error
	for {
		block, r := pem.Decode(rest)
		if block == nil {
			break
		}
		rest = r

		switch block.Type {
		case "CERTIFICATE", "TRUSTED CERTIFICATE":
			cert, err := parseDER(block.Bytes)
			if err != nil {
				lastErr = err
				continue
			}
			return cert, nil
		default:
			// keys, CSRs, CRLs
		}
	}

	if lastErr != nil {
		return model.Certificate{}, lastErr
	}
	return model.Certificate{}, errors.New("no CERTIFICATE block")
}

// parseDER parses one DER certificate. A certificate rejected only because of its
// subjectAltName extension is parsed again without it and reported with no SANs; the
// fingerprint is always taken over der as given.
func parseDER(der []byte) (model.Certificate, error) {
	cert, err := x509.ParseCertificate(der)
	if err == nil {
		return extract(cert, der), nil
	}

	stripped, ok := withoutSAN(der)
	if !ok {
		return model.Certificate{}, err
	}
	lenient, lerr := x509.ParseCertificate(stripped)
	if lerr != nil {
		return model.Certificate{}, err
	}
	return extract(lenient, der), nil
}

var (
	oidSubjectAltName = asn1.ObjectIdentifier{2, 5, 29, 17}
	extensionsTag     = cbasn1.Tag(3).Constructed().ContextSpecific()
)

// withoutSAN re-encodes a certificate with the subjectAltName extension removed from
// its TBSCertificate. The signature is carried over unchanged and no longer matches,
// which x509.ParseCertificate does not check. ok is false when der has no such
// extension or is not a certificate at all.
func withoutSAN(der []byte) ([]byte, bool) {
	input := cryptobyte.String(der)
	var certificate, tbs cryptobyte.String
	if !input.ReadASN1(&certificate, cbasn1.SEQUENCE) || !input.Empty() {
		return nil, false
	}
	if !certificate.ReadASN1(&tbs, cbasn1.SEQUENCE) {
		return nil, false
	}
	// what is left is signatureAlgorithm and signatureValue
	trailer := []byte(certificate)

	removed := false
	b := cryptobyte.NewBuilder(nil)
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
			for !tbs.Empty() {
				var element cryptobyte.String
				var tag cbasn1.Tag
				if !tbs.ReadAnyASN1Element(&element, &tag) {
					b.SetError(errors.New("malformed TBSCertificate"))
					return
				}
				if tag != extensionsTag {
					b.AddBytes(element)
					continue
				}

				kept, found, err := dropExtension(element, oidSubjectAltName)
				if err != nil {
					b.SetError(err)
					return
				}
				removed = found
				if len(kept) == 0 {
					continue
				}
				b.AddASN1(extensionsTag, func(b *cryptobyte.Builder) {
					b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
						for _, ext := range kept {
							b.AddBytes(ext)
						}
					})
				})
			}
		})
		b.AddBytes(trailer)
	})

	out, err := b.Bytes()
	if err != nil || !removed {
		return nil, false
	}
	return out, true
}

// dropExtension splits an encoded [3] extensions element into the raw Extension
// elements other than oid, and reports whether oid was present
func dropExtension(element cryptobyte.String, oid asn1.ObjectIdentifier) ([][]byte, bool, error) {
	var explicit, extensions cryptobyte.String
	if !element.ReadASN1(&explicit, extensionsTag) || !explicit.ReadASN1(&extensions, cbasn1.SEQUENCE) {
		return nil, false, errors.New("malformed extensions")
	}

	var kept [][]byte
	found := false
	for !extensions.Empty() {
		var raw, ext cryptobyte.String
		if !extensions.ReadASN1Element(&raw, cbasn1.SEQUENCE) {
			return nil, false, errors.New("malformed extension")
		}
		var id asn1.ObjectIdentifier
		body := raw
		if !body.ReadASN1(&ext, cbasn1.SEQUENCE) || !ext.ReadASN1ObjectIdentifier(&id) {
			return nil, false, errors.New("malformed extension")
		}
		if id.Equal(oid) {
			found = true
			continue
		}
		kept = append(kept, raw)
	}
	return kept, found, nil
}

// extract converts a parsed certificate into the inventory representation. raw is
// fingerprinted; it differs from cert.Raw only for certificates parsed without their
// subjectAltName extension.
func extract(cert *x509.Certificate, raw []byte) model.Certificate {
	fingerprint := sha256.Sum256(raw)

	sans := make([]string, 0, len(cert.DNSNames))
	sans = append(sans, cert.DNSNames...)

	return model.Certificate{
		Fingerprint: hex.EncodeToString(fingerprint[:]),
		Subject:     distinguishedName(cert.RawSubject, cert.Subject),
		Issuer:      distinguishedName(cert.RawIssuer, cert.Issuer),
		NotBefore:   cert.NotBefore.UTC(),
		NotAfter:    cert.NotAfter.UTC(),
		SANs:        sans,
	}
}

// distinguishedName renders the RDN sequence exactly as encoded in the certificate so
// that attribute order and unknown attribute types survive.
func distinguishedName(raw []byte, fallback pkix.Name) string {
	var seq pkix.RDNSequence
	if rest, err := asn1.Unmarshal(raw, &seq); err == nil && len(rest) == 0 {
		return seq.String()
	}
	return fallback.String()
}
