package mounts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"rcsup/internal/faults"
	"rcsup/internal/logging"
	"rcsup/internal/rcclient"
)

type fakeMounter struct {
	requests []rcclient.MountRequest
	failFs   map[string]error
}

func (f *fakeMounter) CreateMount(_ context.Context, req rcclient.MountRequest) error {
	f.requests = append(f.requests, req)
	if err, ok := f.failFs[req.Fs]; ok {
		return err
	}
	return nil
}

func newTestReconciler(rc Mounter) (*Reconciler, *int) {
	r := NewReconciler(rc, logging.NewNop())
	unmounts := 0
	r.unmount = func(string) error {
		unmounts++
		return errors.New("not mounted")
	}
	return r, &unmounts
}

func TestReconcileUnmountsThenMounts(t *testing.T) {
	rc := &fakeMounter{}
	r, unmounts := newTestReconciler(rc)

	dir := t.TempDir()
	specs := []Spec{
		{Fs: "a:", MountPoint: filepath.Join(dir, "a")},
		{Fs: "b:", MountPoint: filepath.Join(dir, "b")},
	}
	if err := r.Reconcile(context.Background(), specs); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if *unmounts != 2 {
		t.Fatalf("expected 2 unmount attempts, got %d", *unmounts)
	}
	if len(rc.requests) != 2 {
		t.Fatalf("expected 2 mount requests, got %d", len(rc.requests))
	}
}

func TestReconcileEmptyListSkipsMountPhase(t *testing.T) {
	rc := &fakeMounter{}
	r, _ := newTestReconciler(rc)
	if err := r.Reconcile(context.Background(), nil); err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if len(rc.requests) != 0 {
		t.Fatalf("mount phase must not run for an empty list")
	}
}

func TestReconcilePartialFailureIsolation(t *testing.T) {
	rc := &fakeMounter{failFs: map[string]error{"bad:": fmt.Errorf("daemon rejected")}}
	r, _ := newTestReconciler(rc)

	dir := t.TempDir()
	specs := []Spec{
		{Fs: "bad:", MountPoint: filepath.Join(dir, "bad")},
		{Fs: "good:", MountPoint: filepath.Join(dir, "good")},
	}
	err := r.Reconcile(context.Background(), specs)
	if !errors.Is(err, faults.ErrMount) {
		t.Fatalf("expected aggregate mount error, got %v", err)
	}
	// The failing entry must not block the following one.
	if len(rc.requests) != 2 {
		t.Fatalf("expected both entries attempted, got %d", len(rc.requests))
	}
}

func TestReconcileMountPointCreationFailure(t *testing.T) {
	rc := &fakeMounter{}
	r, _ := newTestReconciler(rc)

	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	specs := []Spec{
		{Fs: "a:", MountPoint: filepath.Join(blocker, "nested")},
		{Fs: "b:", MountPoint: filepath.Join(dir, "ok")},
	}
	err := r.Reconcile(context.Background(), specs)
	if !errors.Is(err, faults.ErrMount) {
		t.Fatalf("expected mount error, got %v", err)
	}
	if len(rc.requests) != 1 || rc.requests[0].Fs != "b:" {
		t.Fatalf("expected only the healthy entry to reach the daemon: %+v", rc.requests)
	}
}
