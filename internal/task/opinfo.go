package task

import "sort"

// ExpectedDuration classifies how long an operation typically takes.
type ExpectedDuration string

// Duration classes
const (
	DurationShort  ExpectedDuration = "short"
	DurationMedium ExpectedDuration = "medium"
	DurationLong   ExpectedDuration = "long"
)

// ExecutionPattern classifies how an operation is served: directly on
// the request path, or through a background task polled by id.
type ExecutionPattern string

// Execution patterns
const (
	PatternDirect ExecutionPattern = "direct"
	PatternTask   ExecutionPattern = "task"
)

// OperationInfo describes one admin operation for clients deciding
// whether to expect an immediate response or a task id to poll.
type OperationInfo struct {
	Name     string           `json:"name"`
	Duration ExpectedDuration `json:"duration"`
	Pattern  ExecutionPattern `json:"pattern"`
}

// operationCatalog classifies the admin operations this service exposes.
var operationCatalog = map[string]OperationInfo{
	"list_contexts":       {Name: "list_contexts", Duration: DurationShort, Pattern: PatternDirect},
	"list_subjects":       {Name: "list_subjects", Duration: DurationShort, Pattern: PatternDirect},
	"get_schema":          {Name: "get_schema", Duration: DurationShort, Pattern: PatternDirect},
	"register_schema":     {Name: "register_schema", Duration: DurationShort, Pattern: PatternDirect},
	"delete_subject":      {Name: "delete_subject", Duration: DurationShort, Pattern: PatternDirect},
	"clear_context_batch": {Name: "clear_context_batch", Duration: DurationLong, Pattern: PatternTask},
	"migrate_context":     {Name: "migrate_context", Duration: DurationLong, Pattern: PatternTask},
	"export_subjects":     {Name: "export_subjects", Duration: DurationMedium, Pattern: PatternTask},
}

// LookupOperation returns the classification for an operation name.
func LookupOperation(name string) (OperationInfo, bool) {
	info, ok := operationCatalog[name]
	return info, ok
}

// Operations returns the full operation catalog sorted by name.
func Operations() []OperationInfo {
	ops := make([]OperationInfo, 0, len(operationCatalog))
	for _, info := range operationCatalog {
		ops = append(ops, info)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].Name < ops[j].Name })
	return ops
}
