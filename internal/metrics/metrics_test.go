package metrics

import (
	"expvar"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncAndAdd(t *testing.T) {
	before := QueryTotal.Value()
	Inc(QueryTotal)
	assert.Equal(t, before+1, QueryTotal.Value())

	before = RecordsWritten.Value()
	Add(RecordsWritten, 5)
	assert.Equal(t, before+5, RecordsWritten.Value())
}

func TestCountersArePublished(t *testing.T) {
	for _, name := range []string{
		"neo_objects_loaded_total",
		"neo_approaches_loaded_total",
		"neo_rows_skipped_total",
		"neo_approaches_linked_total",
		"neo_approaches_unlinked_total",
		"neo_duplicate_designations_total",
		"neo_query_total",
		"neo_query_matched_total",
		"neo_query_attribute_unavailable_total",
		"neo_records_written_total",
	} {
		v := expvar.Get(name)
		require.NotNil(t, v, name)
		_, ok := v.(*expvar.Int)
		assert.True(t, ok, name)
	}
}

func TestSnapshot(t *testing.T) {
	Inc(RowsSkipped)
	snap := Snapshot()
	assert.Len(t, snap, 10)
	assert.Equal(t, RowsSkipped.Value(), snap["neo_rows_skipped_total"])
}
