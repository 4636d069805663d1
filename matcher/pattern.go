package matcher

import "errors"

// ErrEmptyPattern is returned by Compile when the pattern is zero-length.
var ErrEmptyPattern = errors.New("pattern must not be empty")

// Pattern is a compiled byte pattern together with its KMP failure table.
// A Pattern is immutable after Compile and may be shared by any number of
// concurrent streams without locking.
type Pattern struct {
	bytes   []byte
	failure []int
}

// Compile precomputes the failure table for pattern. The table is built in
// linear time with the standard two-pointer preprocessing: failure[i] is the
// length of the longest proper prefix of the pattern that is also a suffix
// of pattern[:i+1].
func Compile(pattern []byte) (*Pattern, error) {
	if len(pattern) == 0 {
		return nil, ErrEmptyPattern
	}

	failure := make([]int, len(pattern))
	k := 0 // length of previous longest prefix-suffix
	for i := 1; i < len(pattern); i++ {
		for k > 0 && pattern[k] != pattern[i] {
			k = failure[k-1]
		}
		if pattern[k] == pattern[i] {
			k++
		}
		failure[i] = k
	}

	return &Pattern{
		bytes:   append([]byte(nil), pattern...),
		failure: failure,
	}, nil
}

// Len returns the pattern length in bytes.
func (p *Pattern) Len() int {
	return len(p.bytes)
}

// Bytes returns a copy of the pattern bytes.
func (p *Pattern) Bytes() []byte {
	return append([]byte(nil), p.bytes...)
}

// FindAll returns the start offset of every occurrence of the pattern in
// text, including overlapping occurrences.
func (p *Pattern) FindAll(text []byte) []uint64 {
	var offsets []uint64
	j := 0
	for i, b := range text {
		for j > 0 && p.bytes[j] != b {
			j = p.failure[j-1]
		}
		if p.bytes[j] == b {
			j++
		}
		if j == len(p.bytes) {
			offsets = append(offsets, uint64(i+1-j))
			j = p.failure[j-1]
		}
	}
	return offsets
}

// FindFirst returns the start offset of the first occurrence of the pattern
// in text. The second return value is false when there is no occurrence.
func (p *Pattern) FindFirst(text []byte) (uint64, bool) {
	j := 0
	for i, b := range text {
		for j > 0 && p.bytes[j] != b {
			j = p.failure[j-1]
		}
		if p.bytes[j] == b {
			j++
		}
		if j == len(p.bytes) {
			return uint64(i + 1 - j), true
		}
	}
	return 0, false
}

// Contains reports whether text contains the pattern at all.
func (p *Pattern) Contains(text []byte) bool {
	_, ok := p.FindFirst(text)
	return ok
}
