package executor

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"tinker/internal/logging"
)

// lintFile runs the configured linter for the file's extension and returns a
// diagnostic string, or "" when the file is clean or no linter applies.
// Lint tools are quiet on success, so either a non-zero exit or non-empty
// output counts as a diagnostic (gofmt -l lists offending files but exits 0).
func (e *Executor) lintFile(ctx context.Context, abs string) string {
	command, ok := e.exec.Linters[strings.ToLower(filepath.Ext(abs))]
	if !ok || command == "" {
		return ""
	}

	command = strings.ReplaceAll(command, "{file}", shellQuote(abs))
	logging.ExecutorDebug("lint %s: %s", e.rel(abs), command)

	lintCtx, cancel := context.WithTimeout(ctx, e.exec.CommandTimeoutDuration())
	defer cancel()

	cmd := exec.CommandContext(lintCtx, "sh", "-c", command)
	cmd.Dir = e.root
	cmd.Env = os.Environ()

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	diag := strings.TrimSpace(out.String())

	switch {
	case err != nil && diag != "":
		return fmt.Sprintf("lint failed: %s", diag)
	case err != nil:
		return fmt.Sprintf("lint failed: %v", err)
	case diag != "":
		return fmt.Sprintf("lint reported issues: %s", diag)
	}
	return ""
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
