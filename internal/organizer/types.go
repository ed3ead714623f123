package organizer

import "time"

// Status is the final disposition of one input file within a batch run.
// Every scanned file gets exactly one result; nothing silently disappears
// from the report.
type Status string

const (
	// StatusApplied means the file was moved to its destination.
	StatusApplied Status = "applied"
	// StatusPreview means the move was computed but not performed.
	StatusPreview Status = "preview"
	// StatusSkippedDuplicate means duplicate resolution decided against the
	// source (identical, inferior, or kept alongside an existing extra).
	StatusSkippedDuplicate Status = "skipped-duplicate"
	// StatusSkippedAmbiguous means the file needed human disambiguation and
	// none was supplied.
	StatusSkippedAmbiguous Status = "skipped-ambiguous"
	// StatusSkippedUnknown means no classification could be determined.
	StatusSkippedUnknown Status = "skipped-unknown"
	// StatusError means the operation for this file failed.
	StatusError Status = "error"
)

// Result describes what happened (or would happen) to one file.
type Result struct {
	Source      string
	Destination string
	Show        string
	Label       string
	Kind        string
	Quality     string
	Status      Status
	Detail      string
	Err         error
}

// Summary aggregates one batch run.
type Summary struct {
	Source     string
	Target     string
	Executed   bool
	StartedAt  time.Time
	FinishedAt time.Time
	Results    []Result
}

// Counts tallies results by status.
func (s *Summary) Counts() map[Status]int {
	counts := make(map[Status]int)
	for _, r := range s.Results {
		counts[r.Status]++
	}
	return counts
}

// Total returns the number of input files covered by the run.
func (s *Summary) Total() int {
	return len(s.Results)
}
