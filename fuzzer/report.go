package fuzzer

import (
	"encoding/json"
	"fmt"
	"os"
)

// Summary folds a campaign's results into the totals worth reporting.
type Summary struct {
	Cases              int `json:"cases"`
	MatchedCases       int `json:"matched_cases"`
	TotalMatches       int `json:"total_matches"`
	MutationErrors     int `json:"mutation_errors"`
	MatcherErrors      int `json:"matcher_errors"`
	BoundaryMismatches int `json:"boundary_mismatches"`
}

// Summarize computes campaign totals over results.
func Summarize(results []Result) Summary {
	var s Summary
	s.Cases = len(results)
	for _, r := range results {
		if len(r.Matches) > 0 {
			s.MatchedCases++
			s.TotalMatches += len(r.Matches)
		}
		if r.MutationError != "" {
			s.MutationErrors++
		}
		if r.MatcherError != "" {
			s.MatcherErrors++
		}
		if r.BoundaryMismatch {
			s.BoundaryMismatches++
		}
	}
	return s
}

// WriteTrace writes one JSON object per result to path, the campaign's
// replayable record: every case in it can be regenerated from its
// (seed_id, strategy, rng_seed) triple.
func WriteTrace(path string, results []Result) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("failed to create trace file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	for i := range results {
		if err := enc.Encode(&results[i]); err != nil {
			return fmt.Errorf("failed to write trace entry %d: %w", i, err)
		}
	}
	return nil
}
