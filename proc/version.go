package proc

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Version runs a runtime's version command and returns the first line
// of its output, trimmed.
func Version(ctx context.Context, command []string) (string, error) {
	if len(command) == 0 {
		return "", fmt.Errorf("version: empty command")
	}

	out, err := exec.CommandContext(ctx, command[0], command[1:]...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("version command %s: %w", command[0], err)
	}

	line, _, _ := strings.Cut(strings.TrimSpace(string(out)), "\n")

	return strings.TrimSpace(line), nil
}
