package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveSource(t *testing.T) {
	t.Parallel()

	existing := map[string]bool{"audio/call.mp3": true}
	exists := func(p string) bool { return existing[p] }

	tests := []struct {
		name       string
		arg        string
		forceLocal bool
		want       Kind
	}{
		{name: "existing path wins over bucket key", arg: "audio/call.mp3", want: KindLocal},
		{name: "missing path becomes bucket key", arg: "audio/other.mp3", want: KindRemote},
		{name: "flag forces local", arg: "audio/other.mp3", forceLocal: true, want: KindLocal},
		{name: "flag with existing path", arg: "audio/call.mp3", forceLocal: true, want: KindLocal},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := ResolveSource(tt.arg, tt.forceLocal, exists)
			require.Equal(t, tt.want, src.Kind())
			require.Equal(t, tt.arg, src.Ref())
		})
	}
}

func TestResolveSourceDefaultsToFilesystem(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "here.wav")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	require.Equal(t, KindLocal, ResolveSource(path, false, nil).Kind())
	require.Equal(t, KindRemote, ResolveSource(path+".missing", false, nil).Kind())
}

func TestSourceString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "local:a.wav", Local("a.wav").String())
	require.Equal(t, "remote:k/b.wav", Remote("k/b.wav").String())
	require.Equal(t, "kind(0)", Source{}.Kind().String())
}
