package execx

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes an external command in dir (or the current directory when
// dir is "") and returns its stdout. Injected so command-parsing code can be
// tested without the real binaries.
type Runner func(ctx context.Context, dir, name string, args ...string) ([]byte, error)

// Output is the default Runner. Failures carry the command name and the
// trimmed stderr so the exit diagnostic is readable.
func Output(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %s: %w", name, msg, err)
		}
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}
