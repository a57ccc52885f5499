// Package task implements the background task management subsystem: it
// accepts units of work, hands back an identifier immediately, executes
// the work on a bounded worker pool off the calling path, tracks
// lifecycle and progress, and serves polling and cancellation.
//
// The primary components are:
// - Manager: owns the id-to-task registry and all state transitions
// - WorkerPool: fixed execution slots with single-resolution futures
// - Reporter/Phase: maps sub-progress onto a task's 0-100 scale
// - RunBatch: bounded fan-out over independent sub-operations
//
// Tasks are kept in memory for the life of the process; there is no
// persistence or eviction.
package task
