package protocol

import (
	"encoding/json"
	"fmt"
)

// EntryKind tags a directory entry as a file or a directory.
type EntryKind string

const (
	EntryFile      EntryKind = "file"
	EntryDirectory EntryKind = "directory"
)

// DirEntry is one row of a listing or project scan.
type DirEntry struct {
	Path string    `json:"path"`
	Kind EntryKind `json:"kind"`
}

// Result is the outcome of executing one operation. It is serialized verbatim
// as the next user-role message so the model sees exactly what happened.
type Result struct {
	Success       bool       `json:"success"`
	Path          string     `json:"path,omitempty"`
	Error         string     `json:"error,omitempty"`
	FileContent   string     `json:"fileContent,omitempty"`
	LineCount     int        `json:"lineCount,omitempty"`
	ByteCount     int        `json:"byteCount,omitempty"`
	DirectoryList []DirEntry `json:"directoryList,omitempty"`
	CommandOutput string     `json:"commandOutput,omitempty"`
}

// Failure builds a failed result for a path with a human-readable error.
func Failure(path, format string, args ...interface{}) *Result {
	return &Result{
		Success: false,
		Path:    path,
		Error:   fmt.Sprintf(format, args...),
	}
}

// MarshalText serializes the result for conversation storage.
func (r *Result) MarshalText() string {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Sprintf(`{"success":%v,"error":%q}`, r.Success, r.Error)
	}
	return string(data)
}
