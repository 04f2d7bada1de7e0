package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Sentinel validation errors. The engine reports these back to the model as
// failure Results so it can self-correct on the next turn.
var (
	ErrExplanationMissing = errors.New("explanation is required")
	ErrContentMissing     = errors.New("write_file requires fileContent")
	ErrCommandMissing     = errors.New("run_command requires command")
	ErrIncompleteNoOp     = errors.New("operation is required unless completed is true")
	ErrImplicitOperation  = errors.New("command or path set without an operation")
)

// Decision is the model's structured output for one step. Exactly one
// operation per decision; Operation may be nil only alongside Completed=true.
type Decision struct {
	// Completed is the model's self-report that the task is done. It is
	// trusted without independent verification.
	Completed bool `json:"completed"`

	// Operation names the primitive to execute, or is nil when the model
	// has nothing left to do.
	Operation *OperationKind `json:"operation,omitempty"`

	// Path is the operation target, resolved against the project root.
	// Empty means the project root itself.
	Path string `json:"path,omitempty"`

	// FileContent is the full file body for write_file.
	FileContent *string `json:"fileContent,omitempty"`

	// Command is the shell command line for run_command.
	Command *string `json:"command,omitempty"`

	// Explanation is the mandatory human-readable rationale, shown to the
	// user before execution.
	Explanation string `json:"explanation"`
}

// decisionWire mirrors Decision with a raw operation string so unknown tags
// surface as validation errors instead of silently zero values.
type decisionWire struct {
	Completed   bool    `json:"completed"`
	Operation   *string `json:"operation"`
	Path        string  `json:"path"`
	FileContent *string `json:"fileContent"`
	Command     *string `json:"command"`
	Explanation string  `json:"explanation"`
}

// ParseDecision decodes and validates one step's model output.
func ParseDecision(raw string) (*Decision, error) {
	var wire decisionWire
	dec := json.NewDecoder(strings.NewReader(raw))
	if err := dec.Decode(&wire); err != nil {
		return nil, fmt.Errorf("malformed decision JSON: %w", err)
	}

	d := &Decision{
		Completed:   wire.Completed,
		Path:        wire.Path,
		FileContent: wire.FileContent,
		Command:     wire.Command,
		Explanation: strings.TrimSpace(wire.Explanation),
	}
	if wire.Operation != nil && *wire.Operation != "" {
		kind, err := ParseOperationKind(*wire.Operation)
		if err != nil {
			return nil, err
		}
		d.Operation = &kind
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// Validate enforces the payload-required rule and the completion contract.
// A violation fails closed: the decision never reaches the executor.
func (d *Decision) Validate() error {
	if d.Explanation == "" {
		return ErrExplanationMissing
	}
	if d.Operation == nil {
		if !d.Completed {
			return ErrIncompleteNoOp
		}
		// An operation-less decision carrying a command or path is a
		// contract violation; nothing implicit is ever executed.
		if (d.Command != nil && *d.Command != "") || d.Path != "" {
			return ErrImplicitOperation
		}
		return nil
	}
	if d.Operation.RequiresContent() && (d.FileContent == nil || *d.FileContent == "") {
		return ErrContentMissing
	}
	if d.Operation.RequiresCommand() && (d.Command == nil || strings.TrimSpace(*d.Command) == "") {
		return ErrCommandMissing
	}
	return nil
}

// MarshalText serializes the decision for conversation storage.
func (d *Decision) MarshalText() string {
	data, err := json.Marshal(d)
	if err != nil {
		// Decision contains only plain strings and bools; marshal cannot
		// fail, but keep the conversation intact if it ever does.
		return fmt.Sprintf(`{"completed":%v,"explanation":%q}`, d.Completed, d.Explanation)
	}
	return string(data)
}
