// Package certtest generates throwaway certificates for tests.
package certtest

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

var serial atomic.Int64

// Options describes the certificate to generate
type Options struct {
	NotBefore  time.Time
	NotAfter   time.Time
	CommonName string
	DNSNames   []string
	// ExtraExtensions are copied into the certificate verbatim, overriding any
	// extension of the same OID
	ExtraExtensions []pkix.Extension
}

// MalformedSAN is a subjectAltName extension whose dNSName claims more bytes than it has
func MalformedSAN() pkix.Extension {
	return pkix.Extension{
		Id:    []int{2, 5, 29, 17},
		Value: []byte{0x30, 0x03, 0x82, 0x05, 'x'},
	}
}

// DER generates a self-signed certificate and returns its DER encoding
func DER(t testing.TB, opts Options) []byte {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("ecdsa.GenerateKey() error = %v", err)
	}

	if opts.CommonName == "" {
		opts.CommonName = "test.example.com"
	}
	if opts.NotBefore.IsZero() {
		opts.NotBefore = time.Now().Add(-time.Hour)
	}
	if opts.NotAfter.IsZero() {
		opts.NotAfter = time.Now().Add(90 * 24 * time.Hour)
	}

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano() + serial.Add(1)),
		Subject: pkix.Name{
			CommonName:   opts.CommonName,
			Organization: []string{"CertWatch Test"},
		},
		NotBefore:             opts.NotBefore,
		NotAfter:              opts.NotAfter,
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              opts.DNSNames,
		ExtraExtensions:       opts.ExtraExtensions,
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("x509.CreateCertificate() error = %v", err)
	}
	return der
}

// PEM wraps DER bytes in a CERTIFICATE block
func PEM(der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
}

// WriteFile writes data to dir/name, creating parent directories, and returns the path
func WriteFile(t testing.TB, dir, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("os.MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("os.WriteFile() error = %v", err)
	}
	return path
}
