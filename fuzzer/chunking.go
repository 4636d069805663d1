package fuzzer

import (
	"fmt"
	"math/rand"
)

// ChunkMode selects how a candidate payload is partitioned before being
// fed to the stream matcher.
type ChunkMode string

const (
	// ChunkWhole feeds the payload as a single chunk.
	ChunkWhole ChunkMode = "whole"
	// ChunkFixed feeds fixed-size chunks.
	ChunkFixed ChunkMode = "fixed"
	// ChunkRandom feeds randomly sized chunks, the adversarial mode that
	// exercises the chunk-boundary invariant hardest.
	ChunkRandom ChunkMode = "random"
)

// ChunkPolicy describes one way of splitting payloads into feed chunks.
// Chunk boundaries carry no semantic meaning; any policy must produce the
// same match list as whole-payload feeding.
type ChunkPolicy struct {
	Mode ChunkMode
	// Size is the chunk length for ChunkFixed and the upper bound on chunk
	// length for ChunkRandom. Ignored by ChunkWhole.
	Size int
}

// Validate checks the policy parameters.
func (p ChunkPolicy) Validate() error {
	switch p.Mode {
	case ChunkWhole:
		return nil
	case ChunkFixed, ChunkRandom:
		if p.Size <= 0 {
			return fmt.Errorf("chunk policy %q requires a positive size, got %d", p.Mode, p.Size)
		}
		return nil
	default:
		return fmt.Errorf("unknown chunk policy %q", p.Mode)
	}
}

// Split partitions payload according to the policy. Random sizes are drawn
// from rng, so a case's partition is reproducible from its RNG seed. The
// returned chunks alias payload; callers must not modify them.
func (p ChunkPolicy) Split(payload []byte, rng *rand.Rand) [][]byte {
	switch p.Mode {
	case ChunkFixed:
		size := p.Size
		if size <= 0 {
			size = 1
		}
		var chunks [][]byte
		for off := 0; off < len(payload); off += size {
			end := off + size
			if end > len(payload) {
				end = len(payload)
			}
			chunks = append(chunks, payload[off:end])
		}
		return chunks

	case ChunkRandom:
		max := p.Size
		if max <= 0 {
			max = 1
		}
		var chunks [][]byte
		for len(payload) > 0 {
			n := 1 + rng.Intn(max)
			if n > len(payload) {
				n = len(payload)
			}
			chunks = append(chunks, payload[:n])
			payload = payload[n:]
		}
		return chunks

	default:
		return [][]byte{payload}
	}
}
