package discovery

import (
	"context"
	"crypto/x509/pkix"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/certwatch-app/cw-inventory/internal/certtest"
	"github.com/certwatch-app/cw-inventory/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func locations(records []model.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Location)
	}
	return out
}

func TestDiscover_Directory(t *testing.T) {
	dir := t.TempDir()
	der := certtest.DER(t, certtest.Options{CommonName: "a.example.com"})

	pemPath := certtest.WriteFile(t, dir, "a.pem", certtest.PEM(der))
	crtPath := certtest.WriteFile(t, dir, "nested/deeper/b.CRT", certtest.PEM(certtest.DER(t, certtest.Options{})))
	cerPath := certtest.WriteFile(t, dir, "nested/c.cer", certtest.DER(t, certtest.Options{}))
	certtest.WriteFile(t, dir, "nested/key.key", []byte("ignored"))
	certtest.WriteFile(t, dir, "notes.txt", certtest.PEM(der))

	d := New(4, zap.NewNop())
	report, err := d.Discover(context.Background(), []string{dir})
	require.NoError(t, err)
	require.Empty(t, report.Skipped)
	require.ElementsMatch(t, []string{pemPath, crtPath, cerPath}, locations(report.Records))

	for _, r := range report.Records {
		require.Equal(t, model.SourceFilesystem, r.Source)
		require.True(t, filepath.IsAbs(r.Location))
		require.NotEmpty(t, r.Fingerprint)
	}
}

func TestDiscover_SkipsUnparsableFiles(t *testing.T) {
	dir := t.TempDir()
	good := certtest.WriteFile(t, dir, "good.pem", certtest.PEM(certtest.DER(t, certtest.Options{})))
	bad := certtest.WriteFile(t, dir, "bad.pem", []byte("-----BEGIN CERTIFICATE-----\nnope\n-----END CERTIFICATE-----\n"))
	empty := certtest.WriteFile(t, dir, "empty.crt", nil)

	report, err := New(2, nil).Discover(context.Background(), []string{dir})
	require.NoError(t, err)
	require.Equal(t, []string{good}, locations(report.Records))
	require.Len(t, report.Skipped, 2)

	skippedPaths := []string{report.Skipped[0].Path, report.Skipped[1].Path}
	require.ElementsMatch(t, []string{bad, empty}, skippedPaths)
	for _, s := range report.Skipped {
		require.Equal(t, SkipUnparsable, s.Reason)
		require.Error(t, s.Err)
	}
}

func TestDiscover_MalformedSANKeepsCertificate(t *testing.T) {
	dir := t.TempDir()
	der := certtest.DER(t, certtest.Options{
		CommonName:      "broken-san.example.com",
		ExtraExtensions: []pkix.Extension{certtest.MalformedSAN()},
	})
	path := certtest.WriteFile(t, dir, "broken-san.pem", certtest.PEM(der))

	report, err := New(1, zap.NewNop()).Discover(context.Background(), []string{dir})
	require.NoError(t, err)
	require.Empty(t, report.Skipped)
	require.Len(t, report.Records, 1)

	r := report.Records[0]
	require.Equal(t, path, r.Location)
	require.NotNil(t, r.SANs)
	require.Empty(t, r.SANs)
	require.Contains(t, r.Subject, "CN=broken-san.example.com")
}

func TestDiscover_FileRoots(t *testing.T) {
	dir := t.TempDir()
	pemPath := certtest.WriteFile(t, dir, "single.pem", certtest.PEM(certtest.DER(t, certtest.Options{})))
	txtPath := certtest.WriteFile(t, dir, "single.txt", certtest.PEM(certtest.DER(t, certtest.Options{})))
	missing := filepath.Join(dir, "missing.pem")

	report, err := New(1, nil).Discover(context.Background(), []string{pemPath, txtPath, missing})
	require.NoError(t, err)
	require.Equal(t, []string{pemPath}, locations(report.Records))

	reasons := map[string]SkipReason{}
	for _, s := range report.Skipped {
		reasons[s.Path] = s.Reason
	}
	require.Equal(t, SkipExtension, reasons[txtPath])
	require.Equal(t, SkipNotFound, reasons[missing])
}

func TestDiscover_OverlappingRootsDeduplicate(t *testing.T) {
	dir := t.TempDir()
	path := certtest.WriteFile(t, dir, "sub/a.pem", certtest.PEM(certtest.DER(t, certtest.Options{})))

	report, err := New(4, nil).Discover(context.Background(), []string{dir, filepath.Join(dir, "sub"), path})
	require.NoError(t, err)
	require.Equal(t, []string{path}, locations(report.Records))
}

func TestDiscover_SameContentDifferentLocations(t *testing.T) {
	dir := t.TempDir()
	data := certtest.PEM(certtest.DER(t, certtest.Options{}))
	certtest.WriteFile(t, dir, "one/a.pem", data)
	certtest.WriteFile(t, dir, "two/a.pem", data)

	report, err := New(4, nil).Discover(context.Background(), []string{dir})
	require.NoError(t, err)
	require.Len(t, report.Records, 2)
	require.Equal(t, report.Records[0].Fingerprint, report.Records[1].Fingerprint)
	require.NotEqual(t, report.Records[0].Location, report.Records[1].Location)
}

func TestDiscover_Deterministic(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 20; i++ {
		certtest.WriteFile(t, dir, filepath.Join("certs", string(rune('a'+i))+".pem"),
			certtest.PEM(certtest.DER(t, certtest.Options{})))
	}

	d := New(8, nil)
	first, err := d.Discover(context.Background(), []string{dir})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := d.Discover(context.Background(), []string{dir})
		require.NoError(t, err)
		require.Equal(t, first.Records, again.Records)
	}
}

func TestDiscover_RelativeRootIsAbsolute(t *testing.T) {
	dir := t.TempDir()
	certtest.WriteFile(t, dir, "rel.pem", certtest.PEM(certtest.DER(t, certtest.Options{})))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { require.NoError(t, os.Chdir(wd)) }()

	report, err := New(1, nil).Discover(context.Background(), []string{"."})
	require.NoError(t, err)
	require.Len(t, report.Records, 1)
	require.True(t, filepath.IsAbs(report.Records[0].Location))
}

func TestDiscover_CanceledContext(t *testing.T) {
	dir := t.TempDir()
	certtest.WriteFile(t, dir, "a.pem", certtest.PEM(certtest.DER(t, certtest.Options{})))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(1, nil).Discover(ctx, []string{dir})
	require.ErrorIs(t, err, context.Canceled)
}

func TestHasCertExtension(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"a.pem", true},
		{"a.PEM", true},
		{"a.Crt", true},
		{"/x/y/a.cer", true},
		{"a.der", false},
		{"a.pem.bak", false},
		{"pem", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			require.Equal(t, tt.want, HasCertExtension(tt.path))
		})
	}
}
