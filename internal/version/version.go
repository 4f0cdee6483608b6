// Package version holds the build version, set with -ldflags.
package version

// Version is overridden at build time with
// -ldflags "-X github.com/hupe1980/copilotmesh/internal/version.Version=v1.2.3".
var Version = "dev"
