// Package mutation generates deterministic, seed-reproducible byte-level
// mutations of captured payloads for differential testing.
package mutation

import (
	"errors"
	"math/rand"
)

var (
	// ErrEmptyResult is returned when a deletion would leave no payload.
	ErrEmptyResult = errors.New("mutation would produce an empty payload")

	// ErrInvalidChunkSize is returned for a zero or negative shuffle chunk size.
	ErrInvalidChunkSize = errors.New("chunk size must be positive")
)

// Mutate applies s to payload and returns the mutated copy. All randomness
// comes from a generator constructed here from seed, so identical
// (payload, strategy, seed) triples always yield byte-identical output and
// concurrent callers never share RNG state.
func Mutate(payload []byte, s Strategy, seed uint64) ([]byte, error) {
	rng := rand.New(rand.NewSource(int64(seed)))
	return s.apply(rng, payload)
}

// AllStrategies returns one default-parameterized instance of every
// strategy, in a stable order.
func AllStrategies() []Strategy {
	return []Strategy{
		BitFlip{Count: 3},
		ByteReplace{Count: 3},
		ByteInsert{Count: 3},
		ByteDelete{Count: 1},
		ChunkShuffle{ChunkSize: 4},
	}
}
