package buildinfo

// Set with -ldflags at build time, for example:
//
//	-X 'github.com/huellitas-unexpo/rescuebot/core/buildinfo.Version=v0.3.0'
//	-X 'github.com/huellitas-unexpo/rescuebot/core/buildinfo.Commit=abcdef0'
//	-X 'github.com/huellitas-unexpo/rescuebot/core/buildinfo.Date=2026-10-01T12:00:00Z'
var (
	// Version is the release tag of the binary.
	Version = "dev"
	// Commit is the source revision the binary was built from.
	Commit = "local"
	// Date is the build timestamp in RFC3339.
	Date = ""
)
