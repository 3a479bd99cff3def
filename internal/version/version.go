// Package version carries build information stamped in at release time.
package version

// Build information set by ldflags
var (
	Version = "dev"     // -X github.com/arthur-debert/bootstrap/internal/version.Version={{.Version}}
	Commit  = "unknown" // -X github.com/arthur-debert/bootstrap/internal/version.Commit={{.Commit}}
	Date    = "unknown" // -X github.com/arthur-debert/bootstrap/internal/version.Date={{.Date}}
)

// String renders all three fields for --version.
func String() string {
	return Version + " (commit " + Commit + ", built " + Date + ")"
}
