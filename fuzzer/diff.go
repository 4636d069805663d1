package fuzzer

import "pmfuzz/matcher"

// sameMatches reports whether two ordered match lists are identical. The
// chunked and whole-payload feeds of one case must agree exactly; any
// discrepancy is a boundary-consistency failure, the central regression
// class this engine exists to catch.
func sameMatches(a, b []matcher.Match) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// matchStarts flattens a match list to its start offsets for log output.
func matchStarts(ms []matcher.Match) []uint64 {
	starts := make([]uint64, len(ms))
	for i, m := range ms {
		starts[i] = m.Start
	}
	return starts
}
