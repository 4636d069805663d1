package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pmfuzz/fuzzer"
	"pmfuzz/mutation"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test_config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

const validConfig = `
pattern:
  text: "ATTACK"

fuzzing:
  iterations: 50
  seed: 12345
  workers: 4
  corpus_dir: "corpus"
  strategies:
    - type: "bit_flip"
      count: 3
    - type: "byte_replace"
      count: 2
    - type: "byte_insert"
      count: 1
    - type: "byte_delete"
      count: 1
    - type: "chunk_shuffle"
      chunk_size: 4

chunking:
  policy: "random"
  chunk_size: 16

output:
  directory: "/tmp/pmfuzz_out"

log:
  directory: "/tmp/pmfuzz_logs"
`

// TestLoadConfig tests loading configuration from file
func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, validConfig))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "ATTACK", cfg.Pattern.Text)
	assert.Equal(t, 50, cfg.Fuzzing.Iterations)
	assert.Equal(t, uint64(12345), cfg.Fuzzing.Seed)
	assert.Equal(t, 4, cfg.GetWorkers())
	assert.Equal(t, "corpus", cfg.Fuzzing.CorpusDir)
	assert.Len(t, cfg.Fuzzing.Strategies, 5)
	assert.Equal(t, "/tmp/pmfuzz_out", cfg.GetOutputPath())
	assert.Equal(t, "/tmp/pmfuzz_logs", cfg.GetLogPath())

	pattern, err := cfg.PatternBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("ATTACK"), pattern)

	assert.Equal(t, fuzzer.ChunkPolicy{Mode: fuzzer.ChunkRandom, Size: 16}, cfg.ChunkPolicy())
}

// TestLoadConfig_FileErrors tests missing and malformed files
func TestLoadConfig_FileErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	_, err = LoadConfig(writeConfig(t, "pattern: [not: valid"))
	assert.ErrorContains(t, err, "failed to parse config file")
}

// TestConfig_PatternBytes tests text, hex and error cases
func TestConfig_PatternBytes(t *testing.T) {
	cfg := &Config{Pattern: PatternConfig{Hex: "41545441434b"}}
	b, err := cfg.PatternBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte("ATTACK"), b)

	// Hex wins over text when both are set
	cfg = &Config{Pattern: PatternConfig{Text: "AB", Hex: "00ff"}}
	b, err = cfg.PatternBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0xff}, b)

	cfg = &Config{Pattern: PatternConfig{Hex: "zz"}}
	_, err = cfg.PatternBytes()
	assert.ErrorContains(t, err, "not valid hex")

	cfg = &Config{}
	_, err = cfg.PatternBytes()
	assert.ErrorContains(t, err, "pattern.text or pattern.hex")
}

// TestConfig_Validate tests rejection of unusable configurations
func TestConfig_Validate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Pattern: PatternConfig{Text: "AB"},
			Fuzzing: FuzzingConfig{
				Iterations: 1,
				Strategies: []StrategyConfig{{Type: "bit_flip", Count: 1}},
			},
			Chunking: ChunkingConfig{Policy: "whole"},
		}
	}

	require.NoError(t, base().Validate())

	cfg := base()
	cfg.Fuzzing.Iterations = 0
	assert.ErrorContains(t, cfg.Validate(), "iterations")

	cfg = base()
	cfg.Fuzzing.Strategies = nil
	assert.ErrorContains(t, cfg.Validate(), "at least one strategy")

	cfg = base()
	cfg.Fuzzing.Strategies[0].Type = "nonsense"
	assert.ErrorContains(t, cfg.Validate(), "unknown mutation strategy")

	cfg = base()
	cfg.Chunking.Policy = "fixed" // size missing
	assert.ErrorContains(t, cfg.Validate(), "positive size")
}

// TestStrategyConfig_Build tests the strategy table
func TestStrategyConfig_Build(t *testing.T) {
	tests := []struct {
		cfg  StrategyConfig
		want mutation.Strategy
	}{
		{StrategyConfig{Type: "bit_flip", Count: 3}, mutation.BitFlip{Count: 3}},
		{StrategyConfig{Type: "byte_replace", Count: 2}, mutation.ByteReplace{Count: 2}},
		{StrategyConfig{Type: "byte_insert", Count: 1}, mutation.ByteInsert{Count: 1}},
		{StrategyConfig{Type: "byte_delete", Count: 1}, mutation.ByteDelete{Count: 1}},
		{StrategyConfig{Type: "chunk_shuffle", ChunkSize: 4}, mutation.ChunkShuffle{ChunkSize: 4}},
	}

	for _, tt := range tests {
		got, err := tt.cfg.Build()
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := StrategyConfig{Type: "rot13"}.Build()
	assert.ErrorContains(t, err, "unknown mutation strategy")
}

// TestConfig_Defaults tests defaulted paths and worker count
func TestConfig_Defaults(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, "out", cfg.GetOutputPath())
	assert.Equal(t, "logs", cfg.GetLogPath())
	assert.Greater(t, cfg.GetWorkers(), 0)
}
