// Package supervisor owns the process lifecycle: it spawns the sync daemon,
// waits for RC readiness, runs the one-time initialization sequence (mount
// reconciliation, then schedule publishing), spawns the schedule evaluator,
// polls both children for liveness, and performs ordered shutdown (unmount
// everything, then terminate children).
package supervisor
