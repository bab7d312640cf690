package clipboard

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

var ErrUnavailable = errors.New("no clipboard command available")

const copyTimeout = 4 * time.Second

// A detached tool keeps running to own the selection; we only feed stdin.
type tool struct {
	name     string
	args     []string
	detached bool
}

// Copier writes text to the system clipboard through whichever command-line
// tool is installed.
type Copier struct {
	GOOS     string
	LookPath func(file string) (string, error)
}

func (c Copier) goos() string {
	if c.GOOS == "" {
		return runtime.GOOS
	}
	return c.GOOS
}

func (c Copier) lookPath(name string) bool {
	lookPath := c.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	_, err := lookPath(name)
	return err == nil
}

func (c Copier) detect() (tool, error) {
	if c.goos() == "darwin" {
		if c.lookPath("pbcopy") {
			return tool{name: "pbcopy"}, nil
		}
		return tool{}, ErrUnavailable
	}

	candidates := []tool{
		{name: "wl-copy"},
		{name: "xclip", args: []string{"-selection", "clipboard", "-in", "-silent"}, detached: true},
		{name: "xsel", args: []string{"--clipboard", "--input"}},
	}
	for _, candidate := range candidates {
		if c.lookPath(candidate.name) {
			return candidate, nil
		}
	}

	return tool{}, ErrUnavailable
}

// Copy places value on the clipboard. It returns ErrUnavailable when no
// supported tool is installed.
func (c Copier) Copy(ctx context.Context, value string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	t, err := c.detect()
	if err != nil {
		return err
	}

	if t.detached {
		return copyDetached(t, value)
	}

	copyCtx, cancel := context.WithTimeout(ctx, copyTimeout)
	defer cancel()

	cmd := exec.CommandContext(copyCtx, t.name, t.args...)
	cmd.Stdin = strings.NewReader(value)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	if runErr := cmd.Run(); runErr != nil {
		if errors.Is(copyCtx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("copy to clipboard timed out: %w", copyCtx.Err())
		}
		return fmt.Errorf("copy to clipboard via %s: %w", t.name, runErr)
	}

	return nil
}

// CopyText copies value using the tools available on this machine.
func CopyText(ctx context.Context, value string) error {
	return Copier{}.Copy(ctx, value)
}

func copyDetached(t tool, value string) error {
	cmd := exec.Command(t.name, t.args...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("open clipboard stdin: %w", err)
	}

	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		return fmt.Errorf("start clipboard command: %w", err)
	}

	if _, err := io.WriteString(stdin, value); err != nil {
		_ = stdin.Close()
		_ = cmd.Process.Kill()
		return fmt.Errorf("write clipboard data: %w", err)
	}

	if err := stdin.Close(); err != nil {
		_ = cmd.Process.Kill()
		return fmt.Errorf("close clipboard stdin: %w", err)
	}

	_ = cmd.Process.Release()
	return nil
}
