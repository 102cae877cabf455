package mounts

import (
	"context"
	"log/slog"

	"rcsup/internal/logging"
	"rcsup/internal/rcclient"
)

// MountLister is the slice of the RC client the health checker needs.
type MountLister interface {
	ListActiveMounts(ctx context.Context) ([]rcclient.ActiveMount, error)
}

// Checker compares configured mounts to the daemon's reported active mounts.
type Checker struct {
	rc     MountLister
	logger *slog.Logger
}

// NewChecker constructs a health checker.
func NewChecker(rc MountLister, logger *slog.Logger) *Checker {
	return &Checker{rc: rc, logger: logging.NewComponentLogger(logger, "healthcheck")}
}

// Healthy reports whether every configured mount is active on the daemon.
// An empty mount list is trivially healthy and contacts nothing.
func (c *Checker) Healthy(ctx context.Context, specs []Spec) (bool, error) {
	missing, err := c.Missing(ctx, specs)
	if err != nil {
		return false, err
	}
	return len(missing) == 0, nil
}

// Missing returns the configured mounts the daemon does not report as active.
// A configured mount matches an active entry when fs matches exactly and the
// mount point matches exactly or with one trailing path separator appended
// (some daemons echo mount points with a trailing separator).
func (c *Checker) Missing(ctx context.Context, specs []Spec) ([]Spec, error) {
	if len(specs) == 0 {
		return nil, nil
	}

	active, err := c.rc.ListActiveMounts(ctx)
	if err != nil {
		return nil, err
	}

	var missing []Spec
	for _, spec := range specs {
		if !matchesAny(spec, active) {
			c.logger.Error("configured mount not active",
				logging.String(logging.FieldFs, spec.Fs),
				logging.String(logging.FieldMountPoint, spec.MountPoint),
			)
			missing = append(missing, spec)
		}
	}
	return missing, nil
}

func matchesAny(spec Spec, active []rcclient.ActiveMount) bool {
	for _, mount := range active {
		if mount.Fs != spec.Fs {
			continue
		}
		if mount.MountPoint == spec.MountPoint || mount.MountPoint == spec.MountPoint+"/" {
			return true
		}
	}
	return false
}
