// Package fuzzer drives the mutation test loop: it derives reproducible
// cases from corpus seeds, runs each candidate payload through fresh
// stream matchers under a chunking policy, and records every outcome,
// including the differential check between chunked and whole-payload
// matching.
package fuzzer

import (
	"context"
	"fmt"
	"math/rand"

	"golang.org/x/sync/errgroup"

	"pmfuzz/matcher"
	"pmfuzz/mutation"
	"pmfuzz/utils"
)

// Case identifies one reproducible fuzz input. The payload is derived,
// never hand-edited: (SeedID, Strategy, RngSeed) reproduce it exactly.
type Case struct {
	Index    int    `json:"index"`
	SeedID   string `json:"seed_id"`
	Strategy string `json:"strategy"`
	RngSeed  uint64 `json:"rng_seed"`
	Payload  []byte `json:"payload,omitempty"`
}

// Result records the outcome of one case. Mutation-parameter and matcher
// errors are recorded here, never propagated up; BoundaryMismatch marks a
// disagreement between chunked and whole-payload matching.
type Result struct {
	Case             Case            `json:"case"`
	Matches          []matcher.Match `json:"matches"`
	WholeMatches     []matcher.Match `json:"whole_matches,omitempty"`
	BoundaryMismatch bool            `json:"boundary_mismatch"`
	MutationError    string          `json:"mutation_error,omitempty"`
	MatcherError     string          `json:"matcher_error,omitempty"`
}

// Runner executes fuzz campaigns against one compiled pattern.
type Runner struct {
	pattern  *matcher.Pattern
	policy   ChunkPolicy
	baseSeed uint64
	workers  int
	logger   *utils.Logger
}

// NewRunner creates a campaign runner. Case RNG seeds are derived
// sequentially from baseSeed; workers bounds concurrent cases.
func NewRunner(p *matcher.Pattern, policy ChunkPolicy, baseSeed uint64, workers int, logger *utils.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		pattern:  p,
		policy:   policy,
		baseSeed: baseSeed,
		workers:  workers,
		logger:   logger,
	}
}

// Run generates iterations cases per (seed, strategy) pair and executes
// them on a bounded worker pool. Strategies are independent branches: each
// mutates the pristine seed payload, never a previously mutated one. Cases
// share nothing but the read-only pattern, so they run fully in parallel.
// Cancellation is coarse-grained, checked at case dispatch only; a case
// that has started always completes and is recorded.
func (r *Runner) Run(ctx context.Context, corpus []Seed, strategies []mutation.Strategy, iterations int) ([]Result, error) {
	if iterations < 1 {
		return nil, fmt.Errorf("iterations must be positive, got %d", iterations)
	}
	if len(strategies) == 0 {
		return nil, fmt.Errorf("no mutation strategies configured")
	}
	if err := r.policy.Validate(); err != nil {
		return nil, err
	}

	results := make([]Result, len(corpus)*len(strategies)*iterations)
	var g errgroup.Group
	g.SetLimit(r.workers)

	idx := 0
dispatch:
	for _, seed := range corpus {
		for _, strat := range strategies {
			for it := 0; it < iterations; it++ {
				if ctx.Err() != nil {
					break dispatch
				}
				i := idx
				c := Case{
					Index:    i,
					SeedID:   seed.ID,
					Strategy: fmt.Sprintf("%v", strat),
					RngSeed:  r.baseSeed + uint64(i),
				}
				strat, payload := strat, seed.Payload
				g.Go(func() error {
					// Each goroutine owns exactly one result slot.
					results[i] = r.runCase(c, strat, payload)
					return nil
				})
				idx++
			}
		}
	}
	_ = g.Wait()

	return results[:idx], ctx.Err()
}

// runCase mutates one seed, scans the candidate under the chunking policy
// and as a single chunk, and compares the two ordered match lists.
func (r *Runner) runCase(c Case, strat mutation.Strategy, seedPayload []byte) Result {
	payload, err := mutation.Mutate(seedPayload, strat, c.RngSeed)
	if err != nil {
		// Parameter violations are findings, not crashes; record and move on.
		if r.logger != nil {
			r.logger.Debug("case %d (%s): mutation rejected: %v", c.Index, c.Strategy, err)
		}
		return Result{Case: c, MutationError: err.Error()}
	}
	c.Payload = payload

	// The partition itself is part of the case, derived from the same seed.
	chunkRng := rand.New(rand.NewSource(int64(c.RngSeed)))
	chunked, errChunked := scan(r.pattern, r.policy.Split(payload, chunkRng))
	whole, errWhole := scan(r.pattern, [][]byte{payload})

	res := Result{Case: c, Matches: chunked}
	switch {
	case errChunked != nil:
		res.MatcherError = errChunked.Error()
	case errWhole != nil:
		res.MatcherError = errWhole.Error()
	case !sameMatches(chunked, whole):
		res.BoundaryMismatch = true
		res.WholeMatches = whole
		if r.logger != nil {
			r.logger.Error("boundary mismatch: seed=%s strategy=%s rng_seed=%d chunked=%v whole=%v",
				c.SeedID, c.Strategy, c.RngSeed, matchStarts(chunked), matchStarts(whole))
		}
	}
	return res
}

// scan feeds chunks through a fresh stream and collects all matches.
func scan(p *matcher.Pattern, chunks [][]byte) ([]matcher.Match, error) {
	s := matcher.NewStream(p)
	var all []matcher.Match
	for _, chunk := range chunks {
		ms, err := s.Feed(chunk)
		if err != nil {
			return all, err
		}
		all = append(all, ms...)
	}
	if err := s.Close(); err != nil {
		return all, err
	}
	return all, nil
}
