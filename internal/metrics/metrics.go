// Package metrics provides application-level counters using stdlib expvar.
// Counters are exported on /debug/vars when a binary serves the expvar
// handler; the CLI logs them at debug level on exit.
package metrics

import (
	"expvar"
	"strings"
)

// Load counters.
var (
	NEOsLoaded       = expvar.NewInt("neo_objects_loaded_total")
	ApproachesLoaded = expvar.NewInt("neo_approaches_loaded_total")
	RowsSkipped      = expvar.NewInt("neo_rows_skipped_total")
)

// Link counters.
var (
	ApproachesLinked      = expvar.NewInt("neo_approaches_linked_total")
	ApproachesUnlinked    = expvar.NewInt("neo_approaches_unlinked_total")
	DuplicateDesignations = expvar.NewInt("neo_duplicate_designations_total")
)

// Query counters.
var (
	QueryTotal       = expvar.NewInt("neo_query_total")
	QueryMatched     = expvar.NewInt("neo_query_matched_total")
	QueryUnavailable = expvar.NewInt("neo_query_attribute_unavailable_total")
	RecordsWritten   = expvar.NewInt("neo_records_written_total")
)

// Inc increments the given counter by 1.
func Inc(counter *expvar.Int) { counter.Add(1) }

// Add increments the given counter by n.
func Add(counter *expvar.Int, n int64) { counter.Add(n) }

// Snapshot returns the current value of every counter in this package, keyed
// by its exported name.
func Snapshot() map[string]int64 {
	out := make(map[string]int64)
	expvar.Do(func(kv expvar.KeyValue) {
		if v, ok := kv.Value.(*expvar.Int); ok && strings.HasPrefix(kv.Key, "neo_") {
			out[kv.Key] = v.Value()
		}
	})
	return out
}
