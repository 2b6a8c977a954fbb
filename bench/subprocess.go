// Package bench drives extractors as child processes for benchmarking.
// Three modes are supported: one-shot (path as argument, one JSON object on
// stdout), batch (all paths as arguments, JSON array on stdout) and
// persistent (newline-terminated paths on stdin, one JSON object per path
// on stdout).
package bench

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kreuzberg/document"
)

// Output is the JSON contract a child must honor. Content is required;
// a non-empty Error signals a framework-level failure.
type Output struct {
	Content          string  `json:"content"`
	Error            string  `json:"error,omitempty"`
	OCRUsed          bool    `json:"_ocr_used,omitempty"`
	ExtractionTimeMS float64 `json:"_extraction_time_ms,omitempty"`
}

// Result records one extraction attempt.
type Result struct {
	RunID            string
	File             string
	Success          bool
	ExtractedText    string
	OCRUsed          bool
	ExtractionTimeMS float64
	WallClock        time.Duration
	Err              error
}

// Adapter launches an extractor executable and parses its output.
type Adapter struct {
	name             string
	command          string
	args             []string
	env              []string
	workingDir       string
	supportedFormats []string
	persistent       bool
	log              *zap.Logger

	mu   sync.Mutex
	proc *persistentProcess
}

// persistentProcess keeps a server-mode child alive across extractions.
type persistentProcess struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
}

// NewAdapter returns a one-shot/batch adapter.
func NewAdapter(name, command string, args, env, supportedFormats []string, log *zap.Logger) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{
		name:             name,
		command:          command,
		args:             args,
		env:              env,
		supportedFormats: supportedFormats,
		log:              log,
	}
}

// NewPersistentAdapter returns an adapter that keeps the child alive and
// feeds it paths over stdin.
func NewPersistentAdapter(name, command string, args, env, supportedFormats []string, log *zap.Logger) *Adapter {
	a := NewAdapter(name, command, args, env, supportedFormats, log)
	a.persistent = true
	return a
}

// Name returns the framework name.
func (a *Adapter) Name() string { return a.name }

// SetWorkingDir sets the directory the child runs in.
func (a *Adapter) SetWorkingDir(dir string) { a.workingDir = dir }

// SupportsFormat reports whether the adapter handles a file extension.
func (a *Adapter) SupportsFormat(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, f := range a.supportedFormats {
		if f == ext {
			return true
		}
	}
	return false
}

// Setup starts the child for persistent mode; it is a no-op otherwise.
func (a *Adapter) Setup(ctx context.Context) error {
	if !a.persistent {
		return nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.proc != nil {
		return nil
	}

	cmd := exec.CommandContext(ctx, a.command, a.args...)
	cmd.Dir = a.workingDir
	cmd.Env = append(cmd.Environ(), a.env...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return document.NewIO("failed to open stdin pipe", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return document.NewIO("failed to open stdout pipe", err)
	}
	if err := cmd.Start(); err != nil {
		return document.NewIO(fmt.Sprintf("failed to spawn %q", a.command), err)
	}

	a.proc = &persistentProcess{cmd: cmd, stdin: stdin, stdout: bufio.NewReader(stdout)}
	a.log.Debug("Persistent process started", zap.String("framework", a.name), zap.Int("pid", cmd.Process.Pid))
	return nil
}

// Teardown closes stdin (the child exits on EOF) and waits for the child.
func (a *Adapter) Teardown() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.proc == nil {
		return nil
	}
	proc := a.proc
	a.proc = nil

	_ = proc.stdin.Close()
	done := make(chan error, 1)
	go func() { done <- proc.cmd.Wait() }()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		_ = proc.cmd.Process.Kill()
		return <-done
	}
}

// ExtractFile runs one extraction with a wall-clock timeout.
func (a *Adapter) ExtractFile(ctx context.Context, path string, timeout time.Duration) Result {
	result := Result{RunID: uuid.NewString(), File: path}
	start := time.Now()

	absPath, err := filepath.Abs(path)
	if err != nil {
		result.Err = document.NewIO("failed to resolve path", err)
		return result
	}

	var line string
	if a.persistent {
		line, err = a.extractPersistent(ctx, absPath, timeout)
	} else {
		line, err = a.runOnce(ctx, timeout, absPath)
	}
	result.WallClock = time.Since(start)
	if err != nil {
		result.Err = err
		return result
	}

	output, err := parseOutput(line)
	if err != nil {
		result.Err = err
		return result
	}

	result.Success = true
	result.ExtractedText = output.Content
	result.OCRUsed = output.OCRUsed
	result.ExtractionTimeMS = output.ExtractionTimeMS
	return result
}

// ExtractBatch runs all paths in one child invocation. The child writes a
// JSON array of per-file objects. Wall-clock time is amortised evenly
// across files, an approximation rather than per-file truth.
func (a *Adapter) ExtractBatch(ctx context.Context, paths []string, timeout time.Duration) []Result {
	results := make([]Result, len(paths))
	runID := uuid.NewString()
	for i, p := range paths {
		results[i] = Result{RunID: runID, File: p}
	}
	if len(paths) == 0 {
		return results
	}

	absPaths := make([]string, len(paths))
	for i, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			results[i].Err = document.NewIO("failed to resolve path", err)
			return results
		}
		absPaths[i] = abs
	}

	start := time.Now()
	stdout, err := a.runOnce(ctx, timeout, absPaths...)
	wall := time.Since(start)
	perFile := wall / time.Duration(len(paths))

	if err != nil {
		for i := range results {
			results[i].Err = err
		}
		return results
	}

	var outputs []Output
	if err := json.Unmarshal([]byte(stdout), &outputs); err != nil {
		harness := document.NewParsing("failed to parse batch subprocess output as JSON array", err)
		for i := range results {
			results[i].Err = harness
		}
		return results
	}

	for i := range results {
		results[i].WallClock = perFile
		if i >= len(outputs) {
			results[i].Err = document.NewParsing("batch subprocess returned fewer results than inputs", nil)
			continue
		}
		out := outputs[i]
		if out.Error != "" {
			results[i].Err = frameworkError(out.Error)
			continue
		}
		results[i].Success = true
		results[i].ExtractedText = out.Content
		results[i].OCRUsed = out.OCRUsed
		results[i].ExtractionTimeMS = out.ExtractionTimeMS
	}
	return results
}

// runOnce spawns the child with extra path arguments and returns stdout.
// A non-zero exit is a harness-level failure; timeouts surface as Timeout.
func (a *Adapter) runOnce(ctx context.Context, timeout time.Duration, extraArgs ...string) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, a.command, append(append([]string{}, a.args...), extraArgs...)...)
	cmd.Dir = a.workingDir
	cmd.Env = append(cmd.Environ(), a.env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return "", document.NewTimeout(fmt.Sprintf("subprocess exceeded %s", timeout))
	}
	if err != nil {
		msg := fmt.Sprintf("subprocess failed: %v", err)
		if s := strings.TrimSpace(stderr.String()); s != "" {
			msg += "\nstderr: " + s
		}
		return "", document.NewIO(msg, nil)
	}
	return stdout.String(), nil
}

// extractPersistent writes one path and reads stdout lines until a JSON
// object appears. Non-JSON lines (library warnings) are skipped. EOF means
// the child died.
func (a *Adapter) extractPersistent(ctx context.Context, absPath string, timeout time.Duration) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.proc == nil {
		return "", document.NewInvalidParameter("persistent process not started")
	}

	if _, err := io.WriteString(a.proc.stdin, absPath+"\n"); err != nil {
		return "", document.NewIO("failed to write to persistent process", err)
	}

	type readResult struct {
		line string
		err  error
	}
	ch := make(chan readResult, 1)
	go func() {
		for {
			line, err := a.proc.stdout.ReadString('\n')
			if err != nil {
				ch <- readResult{err: document.NewIO("persistent process returned EOF", err)}
				return
			}
			trimmed := strings.TrimSpace(line)
			if strings.HasPrefix(trimmed, "{") {
				ch <- readResult{line: trimmed}
				return
			}
			a.log.Debug("Skipping non-JSON line", zap.String("framework", a.name), zap.String("line", trimmed))
		}
	}()

	select {
	case r := <-ch:
		return r.line, r.err
	case <-time.After(timeout):
		return "", document.NewTimeout(fmt.Sprintf("persistent process response exceeded %s", timeout))
	case <-ctx.Done():
		return "", document.NewIO("extraction cancelled", ctx.Err())
	}
}

// parseOutput validates the child's JSON object. A non-empty error field is
// a framework-level failure; a missing or non-string content field is a
// harness-level failure.
func parseOutput(stdout string) (*Output, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(stdout), &raw); err != nil {
		return nil, document.NewParsing("failed to parse subprocess output as JSON object", err)
	}

	if errRaw, ok := raw["error"]; ok {
		var msg string
		if err := json.Unmarshal(errRaw, &msg); err == nil && msg != "" {
			return nil, frameworkError(msg)
		}
	}

	contentRaw, ok := raw["content"]
	if !ok {
		return nil, document.NewParsing("subprocess output missing required content field", nil)
	}
	var content string
	if err := json.Unmarshal(contentRaw, &content); err != nil {
		return nil, document.NewParsing("subprocess content field must be a string", err)
	}

	var output Output
	if err := json.Unmarshal([]byte(stdout), &output); err != nil {
		return nil, document.NewParsing("failed to decode subprocess output", err)
	}
	return &output, nil
}

// frameworkError wraps a child-reported failure.
func frameworkError(msg string) error {
	return document.NewPlugin("framework", msg, nil)
}

// IsFrameworkError reports whether an extraction failure was reported by
// the framework itself rather than the harness.
func IsFrameworkError(err error) bool {
	return document.KindOf(err) == document.KindPlugin
}

// IsTimeout reports whether an extraction failed on the wall clock.
func IsTimeout(err error) bool {
	return document.KindOf(err) == document.KindTimeout
}
