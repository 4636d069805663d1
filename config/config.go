package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"

	"pmfuzz/fuzzer"
	"pmfuzz/mutation"
)

// Config represents the main configuration structure
type Config struct {
	Pattern  PatternConfig  `yaml:"pattern"`
	Fuzzing  FuzzingConfig  `yaml:"fuzzing"`
	Chunking ChunkingConfig `yaml:"chunking"`
	Output   OutputConfig   `yaml:"output"`
	Log      LogConfig      `yaml:"log"`
}

// PatternConfig holds the byte pattern the matcher is compiled from.
// Exactly one of Text or Hex must be set; Hex wins when both are.
type PatternConfig struct {
	Text string `yaml:"text"`
	Hex  string `yaml:"hex"`
}

// FuzzingConfig holds the fuzz campaign parameters
type FuzzingConfig struct {
	Iterations int              `yaml:"iterations"` // cases per (seed, strategy) pair
	Seed       uint64           `yaml:"seed"`       // base RNG seed for the whole campaign
	Workers    int              `yaml:"workers"`    // concurrent cases, 0 = NumCPU
	CorpusDir  string           `yaml:"corpus_dir"`
	Strategies []StrategyConfig `yaml:"strategies"`
}

// StrategyConfig selects one mutation strategy with its parameters
type StrategyConfig struct {
	Type      string `yaml:"type"`
	Count     int    `yaml:"count"`
	ChunkSize int    `yaml:"chunk_size"`
}

// ChunkingConfig holds the feed chunking policy
type ChunkingConfig struct {
	Policy    string `yaml:"policy"` // whole, fixed or random
	ChunkSize int    `yaml:"chunk_size"`
}

// OutputConfig holds output configuration
type OutputConfig struct {
	Directory string `yaml:"directory"`
}

// LogConfig holds log output configuration
type LogConfig struct {
	Directory string `yaml:"directory"`
}

// LoadConfig loads configuration from the specified YAML file
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks the configuration for values the engine cannot run with
func (c *Config) Validate() error {
	if _, err := c.PatternBytes(); err != nil {
		return err
	}
	if c.Fuzzing.Iterations < 1 {
		return fmt.Errorf("fuzzing.iterations must be at least 1, got %d", c.Fuzzing.Iterations)
	}
	if len(c.Fuzzing.Strategies) == 0 {
		return fmt.Errorf("fuzzing.strategies must list at least one strategy")
	}
	for i, s := range c.Fuzzing.Strategies {
		if _, err := s.Build(); err != nil {
			return fmt.Errorf("fuzzing.strategies[%d]: %w", i, err)
		}
	}
	if err := c.ChunkPolicy().Validate(); err != nil {
		return fmt.Errorf("chunking: %w", err)
	}
	return nil
}

// PatternBytes decodes the configured pattern
func (c *Config) PatternBytes() ([]byte, error) {
	if c.Pattern.Hex != "" {
		b, err := hex.DecodeString(c.Pattern.Hex)
		if err != nil {
			return nil, fmt.Errorf("pattern.hex is not valid hex: %w", err)
		}
		if len(b) == 0 {
			return nil, fmt.Errorf("pattern.hex decodes to zero bytes")
		}
		return b, nil
	}
	if c.Pattern.Text == "" {
		return nil, fmt.Errorf("one of pattern.text or pattern.hex must be set")
	}
	return []byte(c.Pattern.Text), nil
}

// Build turns a strategy config entry into a mutation strategy
func (s StrategyConfig) Build() (mutation.Strategy, error) {
	switch s.Type {
	case "bit_flip":
		return mutation.BitFlip{Count: s.Count}, nil
	case "byte_replace":
		return mutation.ByteReplace{Count: s.Count}, nil
	case "byte_insert":
		return mutation.ByteInsert{Count: s.Count}, nil
	case "byte_delete":
		return mutation.ByteDelete{Count: s.Count}, nil
	case "chunk_shuffle":
		return mutation.ChunkShuffle{ChunkSize: s.ChunkSize}, nil
	default:
		return nil, fmt.Errorf("unknown mutation strategy %q", s.Type)
	}
}

// BuildStrategies builds every configured strategy
func (c *Config) BuildStrategies() ([]mutation.Strategy, error) {
	strategies := make([]mutation.Strategy, 0, len(c.Fuzzing.Strategies))
	for i, s := range c.Fuzzing.Strategies {
		strat, err := s.Build()
		if err != nil {
			return nil, fmt.Errorf("fuzzing.strategies[%d]: %w", i, err)
		}
		strategies = append(strategies, strat)
	}
	return strategies, nil
}

// ChunkPolicy returns the configured feed chunking policy
func (c *Config) ChunkPolicy() fuzzer.ChunkPolicy {
	return fuzzer.ChunkPolicy{
		Mode: fuzzer.ChunkMode(c.Chunking.Policy),
		Size: c.Chunking.ChunkSize,
	}
}

// GetWorkers returns the worker count, defaulting to the CPU count
func (c *Config) GetWorkers() int {
	if c.Fuzzing.Workers > 0 {
		return c.Fuzzing.Workers
	}
	return runtime.NumCPU()
}

// GetOutputPath returns the output directory path
func (c *Config) GetOutputPath() string {
	if c.Output.Directory == "" {
		return "out"
	}
	return c.Output.Directory
}

// GetLogPath returns the log directory path
func (c *Config) GetLogPath() string {
	if c.Log.Directory == "" {
		return "logs"
	}
	return c.Log.Directory
}

// PrintConfig prints the current configuration (for debugging)
func (c *Config) PrintConfig() {
	pattern, _ := c.PatternBytes()
	fmt.Println("=== pmfuzz Configuration ===")
	fmt.Printf("Pattern: %q (%d bytes)\n", pattern, len(pattern))
	fmt.Printf("Iterations per seed/strategy: %d\n", c.Fuzzing.Iterations)
	fmt.Printf("Base seed: %d\n", c.Fuzzing.Seed)
	fmt.Printf("Workers: %d\n", c.GetWorkers())
	fmt.Printf("Corpus directory: %s\n", c.Fuzzing.CorpusDir)
	fmt.Printf("Strategies: %d configured\n", len(c.Fuzzing.Strategies))
	fmt.Printf("Chunking policy: %s (size %d)\n", c.Chunking.Policy, c.Chunking.ChunkSize)
	fmt.Printf("Output directory: %s\n", c.GetOutputPath())
	fmt.Printf("Log directory: %s\n", c.GetLogPath())
	fmt.Println("============================")
}
