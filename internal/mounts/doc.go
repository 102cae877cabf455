// Package mounts owns the declarative mount list: loading mount specs,
// reconciling them against the daemon (unmount everything, then recreate all
// configured mounts), and verifying the daemon's live mounts match.
package mounts
