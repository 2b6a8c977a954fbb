package extract

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"kreuzberg/config"
	"kreuzberg/plugin"
	"kreuzberg/state"
)

// benchPayload is the JSON object the benchmark harness expects on stdout.
type benchPayload struct {
	Content          string  `json:"content"`
	Error            string  `json:"error,omitempty"`
	ExtractionTimeMs float64 `json:"_extraction_time_ms,omitempty"`
}

// RunBench is the "bench" subcommand action implementing the child side of
// the benchmark subprocess protocol. With --serve the process reads
// newline-terminated paths from stdin and writes one JSON object per path;
// otherwise every argument is extracted and a single object (one file) or
// an array (several files) is written.
func RunBench(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	// Serve mode has no positional arguments, so the app-level Before hook
	// skipped configuration loading; fall back to defaults.
	if env.Cfg == nil {
		loaded, err := config.LoadConfiguration("")
		if err != nil {
			return fmt.Errorf("unable to prepare configuration: %w", err)
		}
		env.Cfg = loaded
	}
	if env.Log == nil {
		env.Log = zap.NewNop()
	}

	cfg, err := env.Cfg.Extraction.ExtractionConfig()
	if err != nil {
		return fmt.Errorf("unable to prepare extraction configuration: %w", err)
	}

	reg := plugin.Global()
	RegisterBuiltins(reg, env.Log)

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)

	extractOne := func(path string) benchPayload {
		start := time.Now()
		content, err := os.ReadFile(path)
		if err != nil {
			return benchPayload{Error: err.Error()}
		}
		result, err := Bytes(ctx, reg, content, "", path, cfg, env.Log)
		elapsed := float64(time.Since(start).Microseconds()) / 1000.0
		if err != nil {
			return benchPayload{Error: err.Error(), ExtractionTimeMs: elapsed}
		}
		return benchPayload{Content: result.Content, ExtractionTimeMs: elapsed}
	}

	if cmd.Bool("serve") {
		// Persistent mode: the parent closes stdin to stop us.
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			path := scanner.Text()
			if path == "" {
				continue
			}
			if err := enc.Encode(extractOne(path)); err != nil {
				return err
			}
		}
		return scanner.Err()
	}

	files := cmd.Args().Slice()
	if len(files) == 0 {
		return fmt.Errorf("nothing to do, no files specified")
	}
	if len(files) == 1 {
		return enc.Encode(extractOne(files[0]))
	}

	payloads := make([]benchPayload, 0, len(files))
	for _, path := range files {
		payloads = append(payloads, extractOne(path))
	}
	return enc.Encode(payloads)
}
