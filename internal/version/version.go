// Package version holds the build version, set with
//
//	go build -ldflags "-X github.com/ramonehamilton/seers-orb/internal/version.Version=v1.2.3"
package version

import "runtime/debug"

// Version defaults to "dev".
var Version = "dev"

// String returns Version, or the module version recorded in the binary when
// Version was not set at build time.
func String() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}
