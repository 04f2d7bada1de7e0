package executor

import (
	"context"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"tinker/internal/protocol"
)

// Directory names excluded from scans regardless of the glob pattern:
// dependency managers, version control, and build caches. Scans exist to give
// the model a bounded picture of the project, not its artifacts.
var scanExcluded = map[string]bool{
	"node_modules":     true,
	"vendor":           true,
	"bower_components": true,
	".git":             true,
	".hg":              true,
	".svn":             true,
	"dist":             true,
	"build":            true,
	"out":              true,
	"target":           true,
	"__pycache__":      true,
	".next":            true,
	".nuxt":            true,
	".cache":           true,
	".tinker":          true,
}

// Hidden directories still worth scanning.
var scanHiddenAllowed = map[string]bool{
	".github":   true,
	".vscode":   true,
	".config":   true,
	".circleci": true,
}

// scanProject walks the project root recursively and returns every entry
// matching the glob pattern (default: everything), excluding the directories
// above plus any configured boilerplate subtrees. The listing is ordered and
// capped to bound the payload fed back to the model.
func (e *Executor) scanProject(ctx context.Context, pattern string) *protocol.Result {
	exclude := make(map[string]bool, len(scanExcluded)+len(e.scan.ExcludeDirs))
	for name := range scanExcluded {
		exclude[name] = true
	}
	for _, name := range e.scan.ExcludeDirs {
		exclude[name] = true
	}

	var entries []protocol.DirEntry
	walkErr := filepath.WalkDir(e.root, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			// Unreadable entries are skipped, not fatal.
			return nil
		}
		if p == e.root {
			return nil
		}

		name := d.Name()
		if d.IsDir() {
			if exclude[name] {
				return filepath.SkipDir
			}
			if strings.HasPrefix(name, ".") && !scanHiddenAllowed[name] {
				return filepath.SkipDir
			}
		}

		rel := e.rel(p)
		if !matchPattern(pattern, rel, name) {
			return nil
		}

		kind := protocol.EntryFile
		if d.IsDir() {
			kind = protocol.EntryDirectory
		}
		entries = append(entries, protocol.DirEntry{Path: rel, Kind: kind})
		return nil
	})

	if walkErr != nil && walkErr == ctx.Err() {
		return protocol.Failure(".", "scan cancelled: %v", walkErr)
	}
	if walkErr != nil {
		return protocol.Failure(".", "scan failed: %v", walkErr)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

	truncated := false
	if max := e.scan.MaxEntries; max > 0 && len(entries) > max {
		entries = entries[:max]
		truncated = true
	}

	result := &protocol.Result{
		Success:       true,
		Path:          ".",
		DirectoryList: entries,
	}
	if truncated {
		result.Error = "listing truncated; narrow the pattern to see more"
	}
	return result
}

// matchPattern applies the glob to both the root-relative path and the base
// name, so "*.go" finds nested sources without requiring "**" support.
func matchPattern(pattern, rel, name string) bool {
	switch pattern {
	case "", "*", "**", "**/*":
		return true
	}
	if ok, err := path.Match(pattern, rel); err == nil && ok {
		return true
	}
	ok, err := path.Match(pattern, name)
	return err == nil && ok
}
