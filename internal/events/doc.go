// Package events delivers live task-progress updates to interested
// handlers without coupling the task manager to any delivery channel.
//
// The task manager publishes a ProgressEvent whenever a task's progress
// moves past the forwarding threshold; registered handlers fan the
// update out to whatever surface the deployment wires up (structured
// logs by default, a notification stream in richer setups).
package events
