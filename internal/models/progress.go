package models

import "time"

// ProgressRecord represents a learner's progress on a single unit.
// ProgressPct has watermark semantics: a new reading only ever raises the
// stored value. Seen is sticky and, for readers, implies completed even if
// the stored Completed flag lags behind.
type ProgressRecord struct {
	ProgressPct float64    `json:"progressPct"`
	Completed   bool       `json:"completed"`
	Seen        bool       `json:"seen"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// Normalize enforces the write invariants on the record:
// completed implies 100%, and completed implies seen.
func (r *ProgressRecord) Normalize() {
	if r.Seen {
		r.Completed = true
	}
	if r.Completed {
		r.ProgressPct = 100
		r.Seen = true
	}
	if r.ProgressPct < 0 {
		r.ProgressPct = 0
	}
	if r.ProgressPct > 100 {
		r.ProgressPct = 100
	}
}

// SeenEntry represents a row of the cross-enrollment seen ledger.
// It is keyed by unit only, not by enrollment, so completion survives
// re-enrollment into a different cohort for the same course.
type SeenEntry struct {
	Seen        bool    `json:"seen"`
	ProgressPct float64 `json:"progressPct"`
}

// CacheSnapshot is the learner's local cache document: one progress record
// per feed id. It is a lossy-tolerant cache tier, never the source of truth
// when the remote ledger is reachable.
type CacheSnapshot map[string]ProgressRecord
