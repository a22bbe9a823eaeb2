// Package version holds build metadata for the marketwatch binaries.
//
// Set at link time:
//
//	go build -ldflags "-X github.com/rickgao/idleclans-market/internal/version.Version=1.2.0 \
//	                   -X github.com/rickgao/idleclans-market/internal/version.Commit=$(git rev-parse --short HEAD) \
//	                   -X github.com/rickgao/idleclans-market/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/marketwatch
package version

import "runtime"

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info is build metadata as reported by /health.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
}

// Get returns the current build metadata.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}

// String returns e.g. "1.2.0 (abc1234, built 2024-05-01T12:00:00Z)".
func String() string {
	return Version + " (" + Commit + ", built " + BuildTime + ")"
}

// UserAgent returns the User-Agent sent to the market API.
func UserAgent() string {
	return "idleclans-market/" + Version
}
