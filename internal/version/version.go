package version

import (
	"runtime/debug"
	"sync"
)

// Set via -ldflags at release time.
var (
	Version = "0.1.0"
	Commit  = "unknown"
	Date    = "unknown"
)

var resolveOnce = sync.OnceValue(func() string {
	info, _ := debug.ReadBuildInfo()
	return resolveVersion(Version, Commit, info)
})

// Resolve returns the release version. Builds that were not stamped with a
// commit get the VCS revision recorded by the Go toolchain as a suffix.
func Resolve() string {
	return resolveOnce()
}

// UserAgent identifies r2scribe in outgoing HTTP requests.
func UserAgent() string {
	return "r2scribe/" + Resolve()
}

func resolveVersion(base, commit string, info *debug.BuildInfo) string {
	if base == "" {
		base = "0.0.0"
	}

	if commit != "" && commit != "unknown" {
		return base
	}

	suffix := vcsSuffix(info)
	if suffix == "" {
		return base
	}
	return base + "-" + suffix
}

func vcsSuffix(info *debug.BuildInfo) string {
	if info == nil {
		return ""
	}

	var revision string
	var modified bool
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value == "true"
		}
	}

	if revision == "" {
		return ""
	}
	if len(revision) > 7 {
		revision = revision[:7]
	}
	if modified {
		return revision + "-dirty"
	}
	return revision
}
