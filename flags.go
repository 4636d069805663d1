package main

import (
	"encoding/hex"
	"fmt"

	"github.com/urfave/cli/v2"
)

var (
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "Path to the campaign configuration file",
		Value: "config.yaml",
	}

	patternFlag = &cli.StringFlag{
		Name:  "pattern",
		Usage: "Byte pattern to match, as literal text",
	}

	patternHexFlag = &cli.StringFlag{
		Name:  "pattern-hex",
		Usage: "Byte pattern to match, hex encoded (wins over --pattern)",
	}

	chunkSizeFlag = &cli.IntFlag{
		Name:  "chunk-size",
		Usage: "Read size when streaming the input file",
		Value: 4096,
	}
)

// patternFromFlags decodes the pattern flags of the match command
func patternFromFlags(c *cli.Context) ([]byte, error) {
	if h := c.String(patternHexFlag.Name); h != "" {
		b, err := hex.DecodeString(h)
		if err != nil {
			return nil, fmt.Errorf("--pattern-hex is not valid hex: %w", err)
		}
		return b, nil
	}
	if t := c.String(patternFlag.Name); t != "" {
		return []byte(t), nil
	}
	return nil, fmt.Errorf("one of --pattern or --pattern-hex is required")
}
