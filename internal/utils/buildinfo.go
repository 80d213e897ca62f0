package utils

import (
	"runtime/debug"
)

const unknownVersion = "unknown"

// ApplicationVersion reports the version recorded in the Go build info, or
// "unknown" for development builds.
func ApplicationVersion() string {
	buildInfo, buildInfoAvailable := debug.ReadBuildInfo()
	if buildInfoAvailable && buildInfo.Main.Version != "" && buildInfo.Main.Version != "(devel)" {
		return buildInfo.Main.Version
	}
	return unknownVersion
}
