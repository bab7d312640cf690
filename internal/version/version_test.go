package version

import (
	"runtime/debug"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildInfo(settings ...string) *debug.BuildInfo {
	info := &debug.BuildInfo{}
	for i := 0; i+1 < len(settings); i += 2 {
		info.Settings = append(info.Settings, debug.BuildSetting{Key: settings[i], Value: settings[i+1]})
	}
	return info
}

func TestResolveVersion_StampedRelease(t *testing.T) {
	t.Parallel()
	got := resolveVersion("1.2.0", "abcdef1", buildInfo("vcs.revision", "0123456789abcdef"))
	require.Equal(t, "1.2.0", got)
}

func TestResolveVersion_VCSRevision(t *testing.T) {
	t.Parallel()
	got := resolveVersion("1.2.0", "unknown", buildInfo("vcs.revision", "0123456789abcdef", "vcs.modified", "false"))
	require.Equal(t, "1.2.0-0123456", got)
}

func TestResolveVersion_DirtyWorkingTree(t *testing.T) {
	t.Parallel()
	got := resolveVersion("1.2.0", "", buildInfo("vcs.revision", "0123456789abcdef", "vcs.modified", "true"))
	require.Equal(t, "1.2.0-0123456-dirty", got)
}

func TestResolveVersion_ShortRevisionKeptAsIs(t *testing.T) {
	t.Parallel()
	got := resolveVersion("1.2.0", "unknown", buildInfo("vcs.revision", "abc"))
	require.Equal(t, "1.2.0-abc", got)
}

func TestResolveVersion_NoBuildInfo(t *testing.T) {
	t.Parallel()
	require.Equal(t, "1.2.0", resolveVersion("1.2.0", "unknown", nil))
	require.Equal(t, "1.2.0", resolveVersion("1.2.0", "unknown", buildInfo()))
}

func TestResolveVersion_EmptyBaseFallsBackToZero(t *testing.T) {
	t.Parallel()
	require.Equal(t, "0.0.0", resolveVersion("", "unknown", nil))
}

func TestUserAgent(t *testing.T) {
	t.Parallel()
	ua := UserAgent()
	require.True(t, strings.HasPrefix(ua, "r2scribe/"))
	require.Equal(t, ua, UserAgent())
}
