package pipeline

import (
	"fmt"
	"os"
)

type Kind int

const (
	KindLocal Kind = iota + 1
	KindRemote
)

func (k Kind) String() string {
	switch k {
	case KindLocal:
		return "local"
	case KindRemote:
		return "remote"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Source names the audio to transcribe: a local path or a bucket key.
type Source struct {
	kind Kind
	ref  string
}

func Local(path string) Source { return Source{kind: KindLocal, ref: path} }

func Remote(key string) Source { return Source{kind: KindRemote, ref: key} }

func (s Source) Kind() Kind { return s.kind }

// Ref is the local path or bucket key, depending on Kind.
func (s Source) Ref() string { return s.ref }

func (s Source) String() string {
	return s.kind.String() + ":" + s.ref
}

// ResolveSource picks Local when forceLocal is set or arg exists on disk,
// and Remote otherwise.
func ResolveSource(arg string, forceLocal bool, exists func(string) bool) Source {
	if exists == nil {
		exists = FileExists
	}
	if forceLocal || exists(arg) {
		return Local(arg)
	}
	return Remote(arg)
}

func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
