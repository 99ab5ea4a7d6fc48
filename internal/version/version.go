// Package version holds build identity, stamped at link time:
//
//	go build -ldflags "-X .../internal/version.Version=v0.3.0 -X .../internal/version.GitSHA=$(git rev-parse --short HEAD)"
package version

var (
	// Version is the release tag, or "dev" for local builds.
	Version = "dev"
	// GitSHA is the commit the binary was built from.
	GitSHA = "unknown"
)
