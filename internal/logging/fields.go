package logging

// Standardized attribute keys shared across components.
const (
	FieldComponent    = "component"
	FieldEventType    = "event_type"
	FieldErrorHint    = "error_hint"
	FieldTaskKey      = "task_key"
	FieldJobID        = "job_id"
	FieldInvocationID = "invocation_id"
	FieldFs           = "fs"
	FieldMountPoint   = "mount_point"
	FieldChild        = "child"
	FieldPID          = "pid"
	FieldExitCode     = "exit_code"
	FieldState        = "state"
)
