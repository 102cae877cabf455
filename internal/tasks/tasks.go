// Package tasks models the declarative task list: recurring sync/copy jobs
// identified by (command, srcFs, dstFs) and scheduled by a cron expression.
package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"rcsup/internal/faults"
)

// Spec declares one recurring task. Opts must contain srcFs and dstFs.
type Spec struct {
	Cron    string         `json:"cron"`
	Command string         `json:"command"`
	Opts    map[string]any `json:"opts"`
}

// SrcFs returns the srcFs option, empty when absent.
func (s Spec) SrcFs() string { return optString(s.Opts, "srcFs") }

// DstFs returns the dstFs option, empty when absent.
func (s Spec) DstFs() string { return optString(s.Opts, "dstFs") }

// Key returns the dedup key identifying the logical task independent of its
// schedule or job history.
func (s Spec) Key() string {
	return fmt.Sprintf("%s %s -> %s", s.Command, s.SrcFs(), s.DstFs())
}

// Validate checks the required fields are present.
func (s Spec) Validate() error {
	if strings.TrimSpace(s.Command) == "" {
		return faults.Wrap(faults.ErrValidation, "tasks", "validate", "command is required", nil)
	}
	if s.SrcFs() == "" {
		return faults.Wrap(faults.ErrValidation, "tasks", "validate", "opts.srcFs is required", nil)
	}
	if s.DstFs() == "" {
		return faults.Wrap(faults.ErrValidation, "tasks", "validate", "opts.dstFs is required", nil)
	}
	return nil
}

// Payload serializes the spec for handoff to a schedule-triggered executor
// invocation. Marshaling a validated spec cannot fail.
func (s Spec) Payload() (string, error) {
	raw, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode task payload: %w", err)
	}
	return string(raw), nil
}

// ParsePayload decodes an executor invocation payload back into a spec.
func ParsePayload(payload string) (Spec, error) {
	var spec Spec
	if err := json.Unmarshal([]byte(payload), &spec); err != nil {
		return Spec{}, faults.Wrap(faults.ErrValidation, "tasks", "parse payload", "", err)
	}
	return spec, nil
}

// Load reads the task-list file. A missing file means an empty list;
// malformed JSON yields a config error. Per-entry field validation is left to
// the callers, which skip invalid entries rather than failing the pass.
func Load(path string) ([]Spec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Spec{}, nil
		}
		return nil, faults.Wrap(faults.ErrConfig, "tasks", "read task list", path, err)
	}

	var specs []Spec
	if err := json.Unmarshal(raw, &specs); err != nil {
		return nil, faults.Wrap(faults.ErrConfig, "tasks", "parse task list", path, err)
	}
	return specs, nil
}

func optString(opts map[string]any, key string) string {
	if opts == nil {
		return ""
	}
	value, _ := opts[key].(string)
	return strings.TrimSpace(value)
}
