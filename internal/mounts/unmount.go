package mounts

import (
	"os/exec"

	"golang.org/x/sys/unix"
)

// osUnmount detaches a mount point. The syscall needs CAP_SYS_ADMIN; FUSE
// mounts created by an unprivileged daemon fall back to fusermount, which is
// setuid on most distributions.
func osUnmount(path string) error {
	if err := unix.Unmount(path, 0); err == nil {
		return nil
	}
	if fusermount, lookErr := exec.LookPath("fusermount"); lookErr == nil {
		return exec.Command(fusermount, "-uz", path).Run()
	}
	return unix.Unmount(path, unix.MNT_DETACH)
}
