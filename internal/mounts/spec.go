package mounts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"rcsup/internal/faults"
)

// Spec declares one desired mount. Identity is (Fs, MountPoint).
type Spec struct {
	Fs         string         `json:"fs"`
	MountPoint string         `json:"mountPoint"`
	MountOpt   map[string]any `json:"mountOpt,omitempty"`
	VfsOpt     map[string]any `json:"vfsOpt,omitempty"`
}

// LoadSpecs reads the mount-list file. A missing file means an empty list;
// malformed JSON or entries without fs/mountPoint yield a config error.
func LoadSpecs(path string) ([]Spec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Spec{}, nil
		}
		return nil, faults.Wrap(faults.ErrConfig, "mounts", "read mount list", path, err)
	}

	var specs []Spec
	if err := json.Unmarshal(raw, &specs); err != nil {
		return nil, faults.Wrap(faults.ErrConfig, "mounts", "parse mount list", path, err)
	}
	for i, spec := range specs {
		if strings.TrimSpace(spec.Fs) == "" || strings.TrimSpace(spec.MountPoint) == "" {
			return nil, faults.Wrap(faults.ErrConfig, "mounts", "parse mount list",
				fmt.Sprintf("entry %d missing fs or mountPoint", i), nil)
		}
	}
	return specs, nil
}
