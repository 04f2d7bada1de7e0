package protocol

import "fmt"

// OperationKind is the closed set of primitives the model may request.
// Dispatch switches exhaustively over these values; an unrecognized wire
// string fails ParseOperationKind rather than reaching the executor.
type OperationKind string

const (
	OpReadFile        OperationKind = "read_file"
	OpWriteFile       OperationKind = "write_file"
	OpDeleteFile      OperationKind = "delete_file"
	OpListDirectory   OperationKind = "list_directory"
	OpCreateDirectory OperationKind = "create_directory"
	OpRunCommand      OperationKind = "run_command"
	OpScanProject     OperationKind = "scan_project"
)

// Kinds lists every operation kind, in a stable order.
func Kinds() []OperationKind {
	return []OperationKind{
		OpReadFile,
		OpWriteFile,
		OpDeleteFile,
		OpListDirectory,
		OpCreateDirectory,
		OpRunCommand,
		OpScanProject,
	}
}

// ParseOperationKind validates a wire string against the closed set.
func ParseOperationKind(s string) (OperationKind, error) {
	kind := OperationKind(s)
	switch kind {
	case OpReadFile, OpWriteFile, OpDeleteFile, OpListDirectory,
		OpCreateDirectory, OpRunCommand, OpScanProject:
		return kind, nil
	}
	return "", fmt.Errorf("unknown operation %q", s)
}

// String returns the wire name.
func (k OperationKind) String() string {
	return string(k)
}

// RequiresContent reports whether the operation needs a fileContent payload.
func (k OperationKind) RequiresContent() bool {
	return k == OpWriteFile
}

// RequiresCommand reports whether the operation needs a command payload.
func (k OperationKind) RequiresCommand() bool {
	return k == OpRunCommand
}
