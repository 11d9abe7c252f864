// Package buildinfo reports the studymap version.
//
// Release builds set the variables with ldflags:
//
//	go build -ldflags "-X github.com/txwater/studymap/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/txwater/studymap/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/txwater/studymap/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Binaries built with `go install` fall back to the module version and VCS
// stamp embedded by the toolchain.
package buildinfo

import (
	"fmt"
	"runtime/debug"
	"sync"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var resolveOnce sync.Once

func resolve() {
	resolveOnce.Do(func() {
		info, ok := debug.ReadBuildInfo()
		if !ok {
			return
		}
		fillFrom(info)
	})
}

// fillFrom replaces the placeholder values only.
func fillFrom(info *debug.BuildInfo) {
	if v := info.Main.Version; Version == "dev" && v != "" && v != "(devel)" {
		Version = v
	}
	for _, s := range info.Settings {
		switch {
		case s.Key == "vcs.revision" && Commit == "none":
			Commit = s.Value
		case s.Key == "vcs.time" && Date == "unknown":
			Date = s.Value
		}
	}
}

// Current returns the resolved version.
func Current() string {
	resolve()
	return Version
}

// Template is the cobra --version output.
func Template() string {
	resolve()
	return fmt.Sprintf("{{.Name}} %s\ncommit: %s\nbuilt:  %s\n", Version, Commit, Date)
}

// UserAgent returns the User-Agent sent to tile services.
// Public tile servers (OpenStreetMap in particular) reject requests without one.
func UserAgent() string {
	return fmt.Sprintf("studymap/%s (+https://github.com/txwater/studymap)", Current())
}
