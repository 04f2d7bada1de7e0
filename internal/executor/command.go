package executor

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sync/errgroup"

	"tinker/internal/protocol"
)

// runCommand executes a command line through the shell in workingDir
// (default: project root) with a wall-clock timeout and a bounded output
// buffer. Non-zero exit and timeout are reported as failures with the partial
// output preserved.
func (e *Executor) runCommand(ctx context.Context, command, workingDir string) *protocol.Result {
	dir, err := e.resolve(workingDir)
	if err != nil {
		return protocol.Failure(workingDir, "%v", err)
	}
	if info, statErr := os.Stat(dir); statErr != nil || !info.IsDir() {
		return protocol.Failure(e.rel(dir), "working directory not found")
	}

	timeout := e.exec.CommandTimeoutDuration()
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, "sh", "-c", command)
	cmd.Dir = dir
	cmd.Env = os.Environ()

	limit := e.exec.MaxOutputBytes
	if limit <= 0 {
		limit = 50_000
	}
	stdout := newBoundedBuffer(limit)
	stderr := newBoundedBuffer(limit)

	outPipe, err := cmd.StdoutPipe()
	if err != nil {
		return protocol.Failure(e.rel(dir), "start command: %v", err)
	}
	errPipe, err := cmd.StderrPipe()
	if err != nil {
		return protocol.Failure(e.rel(dir), "start command: %v", err)
	}
	if err := cmd.Start(); err != nil {
		return protocol.Failure(e.rel(dir), "start command: %v", err)
	}

	// Both pipes must be drained concurrently or a chatty command can
	// deadlock against a full pipe buffer.
	var g errgroup.Group
	g.Go(func() error { _, err := io.Copy(stdout, outPipe); return err })
	g.Go(func() error { _, err := io.Copy(stderr, errPipe); return err })
	copyErr := g.Wait()
	waitErr := cmd.Wait()

	output := stdout.String()
	if stderr.Len() > 0 {
		if output != "" {
			output += "\n"
		}
		output += "--- stderr ---\n" + stderr.String()
	}
	if stdout.Truncated() || stderr.Truncated() {
		output += "\n...[output truncated]"
	}

	result := &protocol.Result{
		Success:       true,
		Path:          e.rel(dir),
		CommandOutput: output,
	}

	switch {
	case execCtx.Err() == context.DeadlineExceeded:
		result.Success = false
		result.Error = fmt.Sprintf("command timed out after %s", timeout)
	case waitErr != nil:
		result.Success = false
		result.Error = fmt.Sprintf("command failed: %v", waitErr)
	case copyErr != nil:
		result.Success = false
		result.Error = fmt.Sprintf("capture output: %v", copyErr)
	}
	return result
}

// boundedBuffer keeps at most max bytes and drains the rest, so runaway
// commands cannot exhaust memory while still being fully consumed.
type boundedBuffer struct {
	max       int
	data      []byte
	truncated bool
}

func newBoundedBuffer(max int) *boundedBuffer {
	return &boundedBuffer{max: max}
}

func (b *boundedBuffer) Write(p []byte) (int, error) {
	room := b.max - len(b.data)
	if room > 0 {
		if len(p) < room {
			room = len(p)
		}
		b.data = append(b.data, p[:room]...)
	}
	if len(p) > room {
		b.truncated = true
	}
	return len(p), nil
}

func (b *boundedBuffer) String() string { return strings.TrimRight(string(b.data), "\n") }

func (b *boundedBuffer) Len() int { return len(b.data) }

func (b *boundedBuffer) Truncated() bool { return b.truncated }
