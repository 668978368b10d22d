// Package build holds version information set at link time, e.g.
// -ldflags "-X github.com/armadaproject/jobwatch/internal/jobwatchctl/build.ReleaseVersion=v0.1.0".
package build

import "runtime"

var (
	ReleaseVersion = "UNKNOWN"
	GitCommit      = "UNKNOWN"
	BuildTime      = "UNKNOWN"
	GoVersion      = runtime.Version()
)
