// Package version reports build metadata injected at link time:
//
//	go build -ldflags "-X github.com/certwatch-app/cw-inventory/internal/version.Version=v0.4.0 \
//	  -X github.com/certwatch-app/cw-inventory/internal/version.GitCommit=$(git rev-parse HEAD)"
package version

import (
	"fmt"
	"runtime"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

const shortCommitLen = 7

// Info is the build of the running binary
type Info struct {
	Version   string
	GitCommit string
	BuildDate string
	GoVersion string
	OS        string
	Arch      string
}

// GetInfo returns the full version information
func GetInfo() Info {
	return Info{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// GetVersion returns just the version string
func GetVersion() string {
	return Version
}

// ShortCommit abbreviates GitCommit the way git log --oneline does
func (i Info) ShortCommit() string {
	if len(i.GitCommit) > shortCommitLen {
		return i.GitCommit[:shortCommitLen]
	}
	return i.GitCommit
}

// String is the one-line form, e.g. "v0.4.0 (3f9c2ab, 2026-10-01)". Development builds
// without link-time metadata render as just "dev".
func (i Info) String() string {
	if i.GitCommit == "unknown" && i.BuildDate == "unknown" {
		return i.Version
	}
	return fmt.Sprintf("%s (%s, %s)", i.Version, i.ShortCommit(), i.BuildDate)
}

// UserAgent is sent on outbound webhook requests
func UserAgent() string {
	return fmt.Sprintf("cw-inventory/%s (%s/%s)", Version, runtime.GOOS, runtime.GOARCH)
}
