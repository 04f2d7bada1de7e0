package executor

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tinker/internal/protocol"
)

func (e *Executor) readFile(path string) *protocol.Result {
	abs, err := e.resolve(path)
	if err != nil {
		return protocol.Failure(path, "%v", err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return protocol.Failure(e.rel(abs), "file not found")
		}
		return protocol.Failure(e.rel(abs), "read failed: %v", err)
	}

	return &protocol.Result{
		Success:     true,
		Path:        e.rel(abs),
		FileContent: string(data),
		ByteCount:   len(data),
	}
}

func (e *Executor) writeFile(ctx context.Context, path, content string) *protocol.Result {
	abs, err := e.resolve(path)
	if err != nil {
		return protocol.Failure(path, "%v", err)
	}

	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return protocol.Failure(e.rel(abs), "create parent directories: %v", err)
	}
	// Full overwrite, no merge semantics.
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		return protocol.Failure(e.rel(abs), "write failed: %v", err)
	}

	result := &protocol.Result{
		Success:   true,
		Path:      e.rel(abs),
		LineCount: countLines(content),
		ByteCount: len(content),
	}

	// The write itself succeeded and the file stays on disk, but a lint
	// diagnostic is reported as this operation's failure so the model fixes
	// style issues before building on top of them.
	if diag := e.lintFile(ctx, abs); diag != "" {
		result.Success = false
		result.Error = diag
	}
	return result
}

func (e *Executor) deleteFile(path string) *protocol.Result {
	abs, err := e.resolve(path)
	if err != nil {
		return protocol.Failure(path, "%v", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return protocol.Failure(e.rel(abs), "file not found")
		}
		return protocol.Failure(e.rel(abs), "stat failed: %v", err)
	}
	if info.IsDir() {
		return protocol.Failure(e.rel(abs), "%q is a directory, not a file", e.rel(abs))
	}

	if err := os.Remove(abs); err != nil {
		return protocol.Failure(e.rel(abs), "delete failed: %v", err)
	}
	return &protocol.Result{Success: true, Path: e.rel(abs)}
}

func (e *Executor) listDirectory(path string) *protocol.Result {
	abs, err := e.resolve(path)
	if err != nil {
		return protocol.Failure(path, "%v", err)
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return protocol.Failure(e.rel(abs), "directory not found")
		}
		return protocol.Failure(e.rel(abs), "list failed: %v", err)
	}

	list := make([]protocol.DirEntry, 0, len(entries))
	for _, entry := range entries {
		kind := protocol.EntryFile
		if entry.IsDir() {
			kind = protocol.EntryDirectory
		}
		list = append(list, protocol.DirEntry{
			Path: filepath.ToSlash(filepath.Join(e.rel(abs), entry.Name())),
			Kind: kind,
		})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Path < list[j].Path })

	return &protocol.Result{
		Success:       true,
		Path:          e.rel(abs),
		DirectoryList: list,
	}
}

func (e *Executor) createDirectory(path string) *protocol.Result {
	abs, err := e.resolve(path)
	if err != nil {
		return protocol.Failure(path, "%v", err)
	}

	// MkdirAll is idempotent; an existing directory is a success.
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return protocol.Failure(e.rel(abs), "create directory failed: %v", err)
	}
	return &protocol.Result{Success: true, Path: e.rel(abs)}
}

func countLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}
