package matcher

import "errors"

// ErrStreamClosed is returned by Feed after Close has been called.
var ErrStreamClosed = errors.New("stream is closed")

// Match is one occurrence of the pattern in a logical stream. Offsets are
// absolute byte positions from the start of the stream, End exclusive, so
// End-Start always equals the pattern length.
type Match struct {
	Start uint64 `json:"start"`
	End   uint64 `json:"end"`
}

// Stream matches one logical byte stream against a compiled pattern,
// carrying only the automaton position and the consumed-byte count between
// Feed calls. Because no chunk bytes are buffered, matches that straddle
// chunk boundaries are found exactly as if the stream arrived in one piece.
//
// A Stream is owned by a single caller; Feed calls for the same stream must
// be serialized. Independent streams over the same Pattern may run in
// parallel.
type Stream struct {
	pattern  *Pattern
	position int    // pattern bytes matched so far, in [0, pattern length]
	consumed uint64 // total bytes processed, for absolute offsets
	closed   bool
}

// NewStream creates a matcher for one logical stream of pattern p.
func NewStream(p *Pattern) *Stream {
	return &Stream{pattern: p}
}

// Feed processes one chunk and returns every match completed inside it,
// in stream order. Feeding an empty chunk is a no-op. There is no rewind:
// restarting means constructing a fresh Stream.
func (s *Stream) Feed(chunk []byte) ([]Match, error) {
	if s.closed {
		return nil, ErrStreamClosed
	}

	var matches []Match
	plen := len(s.pattern.bytes)
	for _, b := range chunk {
		for s.position > 0 && s.pattern.bytes[s.position] != b {
			s.position = s.pattern.failure[s.position-1]
		}
		if s.pattern.bytes[s.position] == b {
			s.position++
		}
		s.consumed++
		if s.position == plen {
			matches = append(matches, Match{
				Start: s.consumed - uint64(plen),
				End:   s.consumed,
			})
			// Fall back instead of resetting to zero so overlapping
			// occurrences are still reported.
			s.position = s.pattern.failure[s.position-1]
		}
	}
	return matches, nil
}

// Close finalizes the stream. Further Feed calls fail with ErrStreamClosed.
// No additional matches are implied at end of stream.
func (s *Stream) Close() error {
	s.closed = true
	return nil
}

// BytesProcessed returns the total number of bytes fed so far.
func (s *Stream) BytesProcessed() uint64 {
	return s.consumed
}
