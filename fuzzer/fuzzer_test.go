package fuzzer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pmfuzz/matcher"
	"pmfuzz/mutation"
)

func compile(t *testing.T, pattern string) *matcher.Pattern {
	t.Helper()
	p, err := matcher.Compile([]byte(pattern))
	require.NoError(t, err)
	return p
}

// TestRunner_CaseCount tests that a campaign produces one result per
// (seed, strategy, iteration) with sequentially derived RNG seeds.
func TestRunner_CaseCount(t *testing.T) {
	p := compile(t, "ATTACK")
	corpus := []Seed{
		NewSeed("a", []byte("XXXATTACKYYY")),
		NewSeed("b", []byte("no pattern here")),
	}
	strategies := []mutation.Strategy{
		mutation.BitFlip{Count: 2},
		mutation.ByteReplace{Count: 2},
	}

	r := NewRunner(p, ChunkPolicy{Mode: ChunkRandom, Size: 4}, 1000, 4, nil)
	results, err := r.Run(context.Background(), corpus, strategies, 5)
	require.NoError(t, err)
	require.Len(t, results, 2*2*5)

	for i, res := range results {
		assert.Equal(t, i, res.Case.Index)
		assert.Equal(t, uint64(1000+i), res.Case.RngSeed)
		assert.Empty(t, res.MutationError)
		assert.Empty(t, res.MatcherError)
		assert.False(t, res.BoundaryMismatch,
			"case %d: chunked and whole matching disagree", i)
	}
}

// TestRunner_Reproducible tests that two campaigns with the same base seed
// produce byte-identical payloads and match lists.
func TestRunner_Reproducible(t *testing.T) {
	p := compile(t, "AB")
	corpus := []Seed{NewSeed("s", []byte("xxAByyABzz"))}
	strategies := mutation.AllStrategies()

	r := NewRunner(p, ChunkPolicy{Mode: ChunkRandom, Size: 3}, 7, 8, nil)
	first, err := r.Run(context.Background(), corpus, strategies, 4)
	require.NoError(t, err)
	second, err := r.Run(context.Background(), corpus, strategies, 4)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Case.Payload, second[i].Case.Payload, "case %d", i)
		assert.Equal(t, first[i].Matches, second[i].Matches, "case %d", i)
	}
}

// TestRunner_DeleteInsidePattern tests the differential scenario: deleting
// a byte from inside the only pattern occurrence yields a recorded
// non-match, never a crash.
func TestRunner_DeleteInsidePattern(t *testing.T) {
	p := compile(t, "ATTACK")
	// The payload is exactly one pattern occurrence, so any single-byte
	// deletion lands inside the span.
	corpus := []Seed{NewSeed("exact", []byte("ATTACK"))}
	strategies := []mutation.Strategy{mutation.ByteDelete{Count: 1}}

	r := NewRunner(p, ChunkPolicy{Mode: ChunkFixed, Size: 2}, 0, 2, nil)
	results, err := r.Run(context.Background(), corpus, strategies, 20)
	require.NoError(t, err)
	require.Len(t, results, 20)

	for _, res := range results {
		assert.Empty(t, res.MutationError)
		assert.Empty(t, res.MatcherError)
		assert.Empty(t, res.Matches, "rng_seed=%d payload=%q", res.Case.RngSeed, res.Case.Payload)
		assert.False(t, res.BoundaryMismatch)
	}
}

// TestRunner_MutationErrorRecorded tests that a strategy precondition
// violation is recorded per case and never aborts the campaign.
func TestRunner_MutationErrorRecorded(t *testing.T) {
	p := compile(t, "AB")
	corpus := []Seed{NewSeed("s", []byte("ABAB"))}
	strategies := []mutation.Strategy{
		mutation.ChunkShuffle{ChunkSize: 0}, // invalid parameter
		mutation.ByteDelete{Count: 100},     // would empty the payload
		mutation.BitFlip{Count: 1},          // fine
	}

	r := NewRunner(p, ChunkPolicy{Mode: ChunkWhole}, 1, 1, nil)
	results, err := r.Run(context.Background(), corpus, strategies, 2)
	require.NoError(t, err)
	require.Len(t, results, 6)

	assert.Contains(t, results[0].MutationError, "chunk size")
	assert.Contains(t, results[2].MutationError, "empty payload")
	assert.Empty(t, results[4].MutationError)
	assert.Empty(t, results[5].MutationError)
}

// TestRunner_Cancellation tests coarse-grained cancellation at dispatch
func TestRunner_Cancellation(t *testing.T) {
	p := compile(t, "AB")
	corpus := []Seed{NewSeed("s", []byte("ABAB"))}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRunner(p, ChunkPolicy{Mode: ChunkWhole}, 1, 1, nil)
	results, err := r.Run(ctx, corpus, mutation.AllStrategies(), 10)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}

// TestRunner_ValidatesInput tests up-front parameter checks
func TestRunner_ValidatesInput(t *testing.T) {
	p := compile(t, "AB")
	corpus := []Seed{NewSeed("s", []byte("ABAB"))}
	r := NewRunner(p, ChunkPolicy{Mode: ChunkWhole}, 1, 1, nil)

	_, err := r.Run(context.Background(), corpus, nil, 1)
	assert.ErrorContains(t, err, "no mutation strategies")

	_, err = r.Run(context.Background(), corpus, mutation.AllStrategies(), 0)
	assert.ErrorContains(t, err, "iterations")

	bad := NewRunner(p, ChunkPolicy{Mode: "bogus"}, 1, 1, nil)
	_, err = bad.Run(context.Background(), corpus, mutation.AllStrategies(), 1)
	assert.ErrorContains(t, err, "unknown chunk policy")
}

// TestRunner_BitFlipKeepsOtherOccurrence tests that matches survive in
// untouched regions: with two occurrences a single-byte edit can kill at
// most one of them.
func TestRunner_BitFlipKeepsOtherOccurrence(t *testing.T) {
	p := compile(t, "ATTACK")
	corpus := []Seed{NewSeed("two", []byte("XXXATTACKYYYATTACKZZZ"))}
	strategies := []mutation.Strategy{mutation.BitFlip{Count: 1}}

	r := NewRunner(p, ChunkPolicy{Mode: ChunkRandom, Size: 5}, 3, 4, nil)
	results, err := r.Run(context.Background(), corpus, strategies, 30)
	require.NoError(t, err)

	for _, res := range results {
		require.Empty(t, res.MatcherError)
		assert.GreaterOrEqual(t, len(res.Matches), 1,
			"rng_seed=%d payload=%q", res.Case.RngSeed, res.Case.Payload)
		assert.False(t, res.BoundaryMismatch)
	}
}
