package mounts

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"rcsup/internal/faults"
	"rcsup/internal/logging"
	"rcsup/internal/rcclient"
)

// Mounter is the slice of the RC client the reconciler needs.
type Mounter interface {
	CreateMount(ctx context.Context, req rcclient.MountRequest) error
}

// Reconciler brings the daemon's mounts into alignment with the declared
// mount list: unmount everything, then recreate every configured mount.
type Reconciler struct {
	rc      Mounter
	logger  *slog.Logger
	unmount func(path string) error
}

// NewReconciler constructs a reconciler using the OS unmount primitive.
func NewReconciler(rc Mounter, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		rc:      rc,
		logger:  logging.NewComponentLogger(logger, "reconciler"),
		unmount: osUnmount,
	}
}

// Reconcile runs a full pass: best-effort unmount of every configured mount
// point, then recreation of all mounts when the list is non-empty. A single
// entry's failure never blocks the others; the aggregate error reports every
// failed entry.
func (r *Reconciler) Reconcile(ctx context.Context, specs []Spec) error {
	r.UnmountAll(specs)
	if len(specs) == 0 {
		r.logger.Info("mount list empty, nothing to mount")
		return nil
	}

	var failed []string
	for _, spec := range specs {
		if err := r.mountOne(ctx, spec); err != nil {
			r.logger.Error("mount entry failed",
				logging.String(logging.FieldFs, spec.Fs),
				logging.String(logging.FieldMountPoint, spec.MountPoint),
				logging.Error(err),
			)
			failed = append(failed, spec.MountPoint)
			continue
		}
		r.logger.Info("mount created",
			logging.String(logging.FieldFs, spec.Fs),
			logging.String(logging.FieldMountPoint, spec.MountPoint),
		)
	}

	if len(failed) > 0 {
		return faults.Wrap(faults.ErrMount, "reconciler", "reconcile",
			fmt.Sprintf("%d of %d mounts failed: %s", len(failed), len(specs), strings.Join(failed, ", ")), nil)
	}
	return nil
}

// UnmountAll detaches every configured mount point at the OS level.
// Failures are expected for mount points that were never mounted and only
// surface at debug level.
func (r *Reconciler) UnmountAll(specs []Spec) {
	for _, spec := range specs {
		if err := r.unmount(spec.MountPoint); err != nil {
			r.logger.Debug("unmount skipped",
				logging.String(logging.FieldMountPoint, spec.MountPoint),
				logging.Error(err),
			)
			continue
		}
		r.logger.Info("unmounted", logging.String(logging.FieldMountPoint, spec.MountPoint))
	}
}

func (r *Reconciler) mountOne(ctx context.Context, spec Spec) error {
	if err := os.MkdirAll(spec.MountPoint, 0o777); err != nil {
		return faults.Wrap(faults.ErrMount, "reconciler", "create mount point", spec.MountPoint, err)
	}
	req := rcclient.MountRequest{
		Fs:         spec.Fs,
		MountPoint: spec.MountPoint,
		MountOpt:   spec.MountOpt,
		VfsOpt:     spec.VfsOpt,
	}
	if err := r.rc.CreateMount(ctx, req); err != nil {
		return faults.Wrap(faults.ErrMount, "reconciler", "create mount", spec.Fs, err)
	}
	return nil
}
