// Package service implements the admin operations exposed by the API.
// Long-running operations are submitted to the task manager and return
// a task snapshot immediately; the work itself runs on the manager's
// pool and reports progress as it goes.
package service
