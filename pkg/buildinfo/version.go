// Package buildinfo carries the version stamped into the binary at link time:
//
//	go build -ldflags "-X github.com/matzehuels/fontfetch/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/fontfetch/pkg/buildinfo.Commit=$(git rev-parse --short HEAD)"
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies fontfetch to catalog and file servers,
// e.g. "fontfetch/v0.3.0 (+abc1234)".
func UserAgent() string {
	if Commit == "none" {
		return "fontfetch/" + Version
	}
	return fmt.Sprintf("fontfetch/%s (+%s)", Version, Commit)
}

// Template returns the version template string for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (commit %s, built %s)\n", Version, Commit, Date)
}
