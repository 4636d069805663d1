package mutation

import (
	"fmt"
	"math/rand"
	"sort"
)

// Strategy is one parameterized byte-level mutation. Implementations are
// pure functions of (payload, parameters, RNG stream): they never touch
// global state and never modify the input slice.
type Strategy interface {
	// Name returns the strategy type name as used in configuration.
	Name() string

	// apply performs the mutation, drawing all randomness from rng.
	apply(rng *rand.Rand, payload []byte) ([]byte, error)
}

// BitFlip XORs Count distinct bits, chosen uniformly over all
// (byte, bit) positions. A Count beyond the available bits flips them all.
type BitFlip struct {
	Count int
}

func (s BitFlip) Name() string   { return "bit_flip" }
func (s BitFlip) String() string { return fmt.Sprintf("bit_flip(count=%d)", s.Count) }

func (s BitFlip) apply(rng *rand.Rand, payload []byte) ([]byte, error) {
	out := append([]byte(nil), payload...)
	total := len(out) * 8
	count := s.Count
	if count > total {
		count = total
	}
	if count <= 0 {
		return out, nil
	}
	for _, pos := range rng.Perm(total)[:count] {
		out[pos/8] ^= 1 << uint(pos%8)
	}
	return out, nil
}

// ByteReplace overwrites Count distinct bytes with uniformly random values,
// resampling a bounded number of times when the draw equals the original so
// the change stays observable.
type ByteReplace struct {
	Count int
}

// replaceRetries bounds resampling when the random byte equals the original.
const replaceRetries = 8

func (s ByteReplace) Name() string   { return "byte_replace" }
func (s ByteReplace) String() string { return fmt.Sprintf("byte_replace(count=%d)", s.Count) }

func (s ByteReplace) apply(rng *rand.Rand, payload []byte) ([]byte, error) {
	out := append([]byte(nil), payload...)
	count := s.Count
	if count > len(out) {
		count = len(out)
	}
	if count <= 0 {
		return out, nil
	}
	for _, idx := range rng.Perm(len(out))[:count] {
		for try := 0; try < replaceRetries; try++ {
			v := byte(rng.Intn(256))
			if v != out[idx] {
				out[idx] = v
				break
			}
		}
	}
	return out, nil
}

// ByteInsert inserts Count uniformly random bytes at positions drawn with
// replacement over the original payload, applied in increasing position
// order so indices stay well-defined as the payload grows.
type ByteInsert struct {
	Count int
}

func (s ByteInsert) Name() string   { return "byte_insert" }
func (s ByteInsert) String() string { return fmt.Sprintf("byte_insert(count=%d)", s.Count) }

func (s ByteInsert) apply(rng *rand.Rand, payload []byte) ([]byte, error) {
	if s.Count <= 0 {
		return append([]byte(nil), payload...), nil
	}
	positions := make([]int, s.Count)
	for i := range positions {
		positions[i] = rng.Intn(len(payload) + 1)
	}
	sort.Ints(positions)

	out := make([]byte, 0, len(payload)+s.Count)
	next := 0
	for i := 0; i <= len(payload); i++ {
		for next < len(positions) && positions[next] == i {
			out = append(out, byte(rng.Intn(256)))
			next++
		}
		if i < len(payload) {
			out = append(out, payload[i])
		}
	}
	return out, nil
}

// ByteDelete removes Count distinct bytes. Deleting the whole payload (or
// more) fails with ErrEmptyResult instead of producing an empty payload.
type ByteDelete struct {
	Count int
}

func (s ByteDelete) Name() string   { return "byte_delete" }
func (s ByteDelete) String() string { return fmt.Sprintf("byte_delete(count=%d)", s.Count) }

func (s ByteDelete) apply(rng *rand.Rand, payload []byte) ([]byte, error) {
	if s.Count >= len(payload) {
		return nil, ErrEmptyResult
	}
	if s.Count <= 0 {
		return append([]byte(nil), payload...), nil
	}
	drop := make([]bool, len(payload))
	for _, idx := range rng.Perm(len(payload))[:s.Count] {
		drop[idx] = true
	}
	out := make([]byte, 0, len(payload)-s.Count)
	for i, b := range payload {
		if !drop[i] {
			out = append(out, b)
		}
	}
	return out, nil
}

// ChunkShuffle partitions the payload into contiguous ChunkSize-byte chunks
// (the final chunk may be shorter and shuffles like any other), permutes the
// chunk order uniformly and concatenates.
type ChunkShuffle struct {
	ChunkSize int
}

func (s ChunkShuffle) Name() string   { return "chunk_shuffle" }
func (s ChunkShuffle) String() string { return fmt.Sprintf("chunk_shuffle(chunk_size=%d)", s.ChunkSize) }

func (s ChunkShuffle) apply(rng *rand.Rand, payload []byte) ([]byte, error) {
	if s.ChunkSize <= 0 {
		return nil, ErrInvalidChunkSize
	}
	var chunks [][]byte
	for off := 0; off < len(payload); off += s.ChunkSize {
		end := off + s.ChunkSize
		if end > len(payload) {
			end = len(payload)
		}
		chunks = append(chunks, payload[off:end])
	}
	rng.Shuffle(len(chunks), func(i, j int) {
		chunks[i], chunks[j] = chunks[j], chunks[i]
	})
	out := make([]byte, 0, len(payload))
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out, nil
}
