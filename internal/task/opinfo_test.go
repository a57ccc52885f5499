package task

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupOperation(t *testing.T) {
	info, ok := LookupOperation("clear_context_batch")
	require.True(t, ok)
	assert.Equal(t, DurationLong, info.Duration)
	assert.Equal(t, PatternTask, info.Pattern)

	info, ok = LookupOperation("list_subjects")
	require.True(t, ok)
	assert.Equal(t, DurationShort, info.Duration)
	assert.Equal(t, PatternDirect, info.Pattern)

	_, ok = LookupOperation("unknown_operation")
	assert.False(t, ok)
}

func TestOperations_SortedByName(t *testing.T) {
	ops := Operations()
	require.NotEmpty(t, ops)

	assert.True(t, sort.SliceIsSorted(ops, func(i, j int) bool {
		return ops[i].Name < ops[j].Name
	}))

	names := make(map[string]bool, len(ops))
	for _, op := range ops {
		names[op.Name] = true
	}
	assert.True(t, names["migrate_context"])
	assert.True(t, names["export_subjects"])
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusRunning.Terminal())
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.True(t, StatusCancelled.Terminal())
}

func TestTypeValid(t *testing.T) {
	assert.True(t, TypeMigration.Valid())
	assert.True(t, TypeCleanup.Valid())
	assert.False(t, Type("bogus").Valid())
}
