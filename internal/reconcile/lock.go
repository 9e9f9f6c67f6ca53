package reconcile

import (
	"context"
	"log"

	"floorcheck/api/internal/ledger"
)

// EnsureLocked pins a slot hour for every record that does not yet have one
// in the scope's ledger and returns the full recordKey -> hour map.
//
// This is the write-once contract of the whole subsystem: a record already
// present in the ledger is never recomputed, even if its hints would now
// resolve to a different hour, so a shift report cannot silently reshuffle
// after it has been reviewed. The updated ledger is persisted only when at
// least one new key was added.
//
// An unreadable ledger degrades to an empty one and a failed persist is only
// logged: both cost a deterministic recomputation on the next pass, never
// the report itself.
func EnsureLocked(ctx context.Context, store ledger.Store, scopeKey string, records []Record, hours []int) map[string]int {
	assignments, err := store.Get(ctx, scopeKey)
	if err != nil {
		log.Printf("reconcile: ledger read for scope %s failed, starting fresh: %v", scopeKey, err)
		assignments = map[string]int{}
	}
	if assignments == nil {
		assignments = map[string]int{}
	}

	added := false
	for _, rec := range records {
		key := rec.Key()
		if _, locked := assignments[key]; locked {
			continue
		}
		hour, ok := recordHour(rec, hours)
		if !ok {
			// No hint, no usable timestamp, or no shift window: the
			// record stays unlocked and its events stay off the grid.
			continue
		}
		assignments[key] = hour
		added = true
	}

	if added {
		if err := store.Put(ctx, scopeKey, assignments); err != nil {
			log.Printf("reconcile: ledger write for scope %s failed: %v", scopeKey, err)
		}
	}

	return assignments
}
