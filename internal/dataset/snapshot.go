package dataset

import "github.com/acmutd/grades-api/internal/types"

// Snapshot is an immutable, in-memory copy of the grade table. It is built
// once at startup and shared by every request without locking.
type Snapshot struct {
	records       []types.GradeRecord
	invalidCounts int
}

// NewSnapshot copies records into a new snapshot.
func NewSnapshot(records []types.GradeRecord) *Snapshot {
	owned := make([]types.GradeRecord, len(records))
	copy(owned, records)
	return &Snapshot{records: owned}
}

// Empty returns a snapshot with no records.
func Empty() *Snapshot {
	return &Snapshot{records: []types.GradeRecord{}}
}

// Len reports the number of records.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// Records returns a copy of all records in table order.
func (s *Snapshot) Records() []types.GradeRecord {
	if s == nil {
		return []types.GradeRecord{}
	}
	out := make([]types.GradeRecord, len(s.records))
	copy(out, s.records)
	return out
}

// Range calls fn for each record in table order until fn returns false.
func (s *Snapshot) Range(fn func(types.GradeRecord) bool) {
	if s == nil {
		return
	}
	for _, r := range s.records {
		if !fn(r) {
			return
		}
	}
}

// InvalidCounts is the number of rows whose Count cell could not be read as
// a number and was replaced with zero.
func (s *Snapshot) InvalidCounts() int {
	if s == nil {
		return 0
	}
	return s.invalidCounts
}
