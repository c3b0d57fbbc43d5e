package version

// These variables are populated by the Go linker (LDFLAGS) at build time.
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)

// String returns the human-readable version line.
func String() string {
	return Version + " (" + CommitHash + ", " + BuildDate + ")"
}
