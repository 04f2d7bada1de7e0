// Package executor implements the filesystem and shell primitives the model
// may request, with path containment against a fixed project root and uniform
// result reporting. Failures are captured into results; nothing here panics
// or propagates operational errors to the loop.
package executor

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"tinker/internal/config"
	"tinker/internal/logging"
	"tinker/internal/protocol"
)

// Executor performs operations against one project root.
type Executor struct {
	root string
	exec config.ExecutionConfig
	scan config.ScanConfig
}

// New creates an executor rooted at the given project directory.
func New(root string, execCfg config.ExecutionConfig, scanCfg config.ScanConfig) (*Executor, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}
	return &Executor{root: abs, exec: execCfg, scan: scanCfg}, nil
}

// Root returns the absolute project root.
func (e *Executor) Root() string {
	return e.root
}

// Dispatch validates the decision and executes its operation. The returned
// result is always non-nil; a validation failure produces a failure result
// without side effects.
func (e *Executor) Dispatch(ctx context.Context, d *protocol.Decision) *protocol.Result {
	if err := d.Validate(); err != nil {
		return protocol.Failure(d.Path, "invalid decision: %v", err)
	}
	if d.Operation == nil {
		return protocol.Failure(d.Path, "no operation to execute")
	}

	op := *d.Operation
	logging.Executor("dispatch %s path=%q", op, d.Path)

	var result *protocol.Result
	switch op {
	case protocol.OpReadFile:
		result = e.readFile(d.Path)
	case protocol.OpWriteFile:
		result = e.writeFile(ctx, d.Path, *d.FileContent)
	case protocol.OpDeleteFile:
		result = e.deleteFile(d.Path)
	case protocol.OpListDirectory:
		result = e.listDirectory(d.Path)
	case protocol.OpCreateDirectory:
		result = e.createDirectory(d.Path)
	case protocol.OpRunCommand:
		result = e.runCommand(ctx, *d.Command, d.Path)
	case protocol.OpScanProject:
		result = e.scanProject(ctx, d.Path)
	default:
		// Unreachable once ParseOperationKind has accepted the tag; report
		// rather than ignore if a new kind is added without a case here.
		result = protocol.Failure(d.Path, "unsupported operation %q", op)
	}

	if result.Success {
		logging.ExecutorDebug("%s succeeded path=%q", op, result.Path)
	} else {
		logging.ExecutorWarn("%s failed path=%q: %s", op, result.Path, result.Error)
	}
	return result
}

// resolve maps a model-supplied path onto the filesystem. Relative paths are
// anchored at the project root, never the process working directory; absolute
// paths pass through unchanged. A relative path that escapes the root is
// rejected.
func (e *Executor) resolve(p string) (string, error) {
	if p == "" {
		return e.root, nil
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	abs := filepath.Join(e.root, p)
	if abs != e.root && !strings.HasPrefix(abs, e.root+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q escapes the project root", p)
	}
	return abs, nil
}

// rel converts an absolute path back to a root-relative slash path for
// reporting. Paths outside the root are reported as-is.
func (e *Executor) rel(abs string) string {
	r, err := filepath.Rel(e.root, abs)
	if err != nil || strings.HasPrefix(r, "..") {
		return abs
	}
	return filepath.ToSlash(r)
}
