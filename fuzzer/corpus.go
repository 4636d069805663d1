package fuzzer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"golang.org/x/crypto/sha3"
)

// Seed is one corpus entry: a named payload the campaign mutates.
type Seed struct {
	ID      string
	Payload []byte
}

// NewSeed wraps payload as a corpus seed, deriving an ID from the payload
// digest when name is empty.
func NewSeed(name string, payload []byte) Seed {
	if name == "" {
		name = payloadID(payload)
	}
	return Seed{ID: name, Payload: append([]byte(nil), payload...)}
}

// payloadID names a payload after the leading bytes of its Keccak digest.
func payloadID(payload []byte) string {
	h := sha3.NewLegacyKeccak256()
	h.Write(payload)
	return fmt.Sprintf("seed-%x", h.Sum(nil)[:8])
}

// LoadCorpusDir reads every regular file under dir as one seed payload,
// named after its file. Entries are returned in name order so campaign
// case numbering is stable across runs.
func LoadCorpusDir(dir string) ([]Seed, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read corpus directory: %w", err)
	}

	var seeds []Seed
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read corpus file %s: %w", e.Name(), err)
		}
		seeds = append(seeds, NewSeed(e.Name(), data))
	}
	if len(seeds) == 0 {
		return nil, fmt.Errorf("corpus directory %s contains no seed files", dir)
	}
	sort.Slice(seeds, func(i, j int) bool { return seeds[i].ID < seeds[j].ID })
	return seeds, nil
}
