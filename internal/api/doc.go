// Package api contains the HTTP handlers for the schema-registry admin
// service: token issuance, task polling and cancellation, and the
// long-running admin operations that run as background tasks.
package api
