package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"pmfuzz/config"
	"pmfuzz/fuzzer"
	"pmfuzz/matcher"
	"pmfuzz/utils"
)

func initApp() *cli.App {
	app := cli.NewApp()
	app.Name = filepath.Base(os.Args[0])
	app.Usage = "Streaming pattern matcher with a mutation-fuzzing harness"
	app.Commands = []*cli.Command{
		{
			Name:   "fuzz",
			Usage:  "Run a mutation-fuzzing campaign from a config file",
			Flags:  []cli.Flag{configFlag},
			Action: runFuzz,
		},
		{
			Name:      "match",
			Usage:     "Scan a file for a byte pattern in streaming chunks",
			ArgsUsage: "<file>",
			Flags:     []cli.Flag{patternFlag, patternHexFlag, chunkSizeFlag},
			Action:    runMatch,
		},
	}
	return app
}

func main() {
	if err := initApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runFuzz(c *cli.Context) error {
	cfg, err := config.LoadConfig(c.String(configFlag.Name))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := utils.NewLogger(cfg.GetLogPath())
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Close()

	logger.Info("Starting pmfuzz campaign...")
	cfg.PrintConfig()

	patternBytes, err := cfg.PatternBytes()
	if err != nil {
		return err
	}
	pattern, err := matcher.Compile(patternBytes)
	if err != nil {
		return fmt.Errorf("failed to compile pattern: %w", err)
	}

	strategies, err := cfg.BuildStrategies()
	if err != nil {
		return err
	}

	corpus, err := fuzzer.LoadCorpusDir(cfg.Fuzzing.CorpusDir)
	if err != nil {
		return err
	}
	logger.Info("Loaded %d corpus seeds from %s", len(corpus), cfg.Fuzzing.CorpusDir)

	if err := utils.EnsureDir(cfg.GetOutputPath()); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Ctrl-C stops the campaign between cases, never inside one.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := fuzzer.NewRunner(pattern, cfg.ChunkPolicy(), cfg.Fuzzing.Seed, cfg.GetWorkers(), logger)
	results, runErr := runner.Run(ctx, corpus, strategies, cfg.Fuzzing.Iterations)
	if runErr != nil {
		logger.Warn("Campaign stopped early: %v", runErr)
	}

	tracePath := filepath.Join(cfg.GetOutputPath(), "fuzz-trace.jsonl")
	if err := fuzzer.WriteTrace(tracePath, results); err != nil {
		return err
	}
	logger.Info("Trace written to %s", tracePath)

	s := fuzzer.Summarize(results)
	logger.Info("Campaign finished: %d cases, %d with matches (%d matches total)",
		s.Cases, s.MatchedCases, s.TotalMatches)
	logger.Info("Recorded errors: %d mutation, %d matcher", s.MutationErrors, s.MatcherErrors)
	if s.BoundaryMismatches > 0 {
		logger.Error("Boundary-consistency failures: %d", s.BoundaryMismatches)
		return fmt.Errorf("%d boundary-consistency failure(s) recorded, see %s", s.BoundaryMismatches, tracePath)
	}
	return nil
}

func runMatch(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one input file, got %d arguments", c.NArg())
	}

	patternBytes, err := patternFromFlags(c)
	if err != nil {
		return err
	}
	pattern, err := matcher.Compile(patternBytes)
	if err != nil {
		return fmt.Errorf("failed to compile pattern: %w", err)
	}

	f, err := os.Open(c.Args().First())
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	stream := matcher.NewStream(pattern)
	buf := make([]byte, c.Int(chunkSizeFlag.Name))
	total := 0
	for {
		n, readErr := f.Read(buf)
		if n > 0 {
			matches, err := stream.Feed(buf[:n])
			if err != nil {
				return err
			}
			for _, m := range matches {
				fmt.Printf("match at [%d, %d)\n", m.Start, m.End)
				total++
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("read failed: %w", readErr)
		}
	}
	if err := stream.Close(); err != nil {
		return err
	}

	fmt.Printf("%d match(es) in %d bytes\n", total, stream.BytesProcessed())
	return nil
}
