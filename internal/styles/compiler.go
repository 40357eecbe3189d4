// Package styles orders, concatenates and compiles stylesheet sources.
package styles

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"git.home.luguber.info/inful/assetbuilder/internal/config"
)

// ErrCompilerNotFound is returned when the Sass binary is not on PATH.
var ErrCompilerNotFound = errors.New("sass compiler not found")

// CompileOptions controls a single compilation.
type CompileOptions struct {
	// Compressed selects compressed output.
	Compressed bool
	// LoadPaths are searched for @import and @use targets.
	LoadPaths []string
}

// Compiler turns a concatenated stylesheet source into CSS.
//
// BinaryCompiler runs the dart-sass executable; PassthroughCompiler returns
// the input unchanged for projects whose sources are plain CSS and for tests.
type Compiler interface {
	Compile(ctx context.Context, src []byte, opts CompileOptions) ([]byte, error)
}

// NewCompiler returns the compiler selected by cfg.
func NewCompiler(cfg config.StylesConfig) Compiler {
	if cfg.Compiler == config.StyleCompilerNone {
		return PassthroughCompiler{}
	}
	return &BinaryCompiler{Binary: cfg.SassBinary}
}

// BinaryCompiler invokes a sass binary, feeding the source on stdin.
type BinaryCompiler struct {
	Binary string
}

// Compile runs `sass --stdin --no-source-map` and returns its stdout.
func (b *BinaryCompiler) Compile(ctx context.Context, src []byte, opts CompileOptions) ([]byte, error) {
	bin := b.Binary
	if bin == "" {
		bin = "sass"
	}
	path, err := exec.LookPath(bin)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompilerNotFound, err)
	}

	args := []string{"--stdin", "--no-source-map", "--no-unicode"}
	if opts.Compressed {
		args = append(args, "--style=compressed")
	}
	for _, p := range opts.LoadPaths {
		args = append(args, "--load-path="+p)
	}

	// #nosec G204 - binary comes from configuration
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdin = bytes.NewReader(src)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	slog.Debug("Invoking sass", "binary", path, "args", strings.Join(args, " "))

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, parseSassError(stderr.String(), err)
	}
	if s := strings.TrimSpace(stderr.String()); s != "" {
		slog.Warn("sass reported warnings", "output", s)
	}
	return stdout.Bytes(), nil
}

// PassthroughCompiler returns sources unchanged.
type PassthroughCompiler struct{}

func (PassthroughCompiler) Compile(_ context.Context, src []byte, _ CompileOptions) ([]byte, error) {
	return src, nil
}

// CompileError is a compilation failure with its position in the compiled
// input. Bundle.Locate maps the position back to a source file.
type CompileError struct {
	Line    int
	Column  int
	Message string
	Output  string
	Err     error
}

func (e *CompileError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, e.Message)
	}
	return e.Message
}

func (e *CompileError) Unwrap() error { return e.Err }

var sassLocation = regexp.MustCompile(`(?m)^\s*-?\s*(?:stdin|-)?\s*(\d+):(\d+)\s+root stylesheet`)

func parseSassError(stderr string, runErr error) error {
	ce := &CompileError{Output: stderr, Err: runErr, Message: strings.TrimSpace(runErr.Error())}
	for _, line := range strings.Split(stderr, "\n") {
		if msg, ok := strings.CutPrefix(strings.TrimSpace(line), "Error:"); ok {
			ce.Message = strings.TrimSpace(msg)
			break
		}
	}
	if m := sassLocation.FindStringSubmatch(stderr); m != nil {
		ce.Line, _ = strconv.Atoi(m[1])
		ce.Column, _ = strconv.Atoi(m[2])
	}
	return ce
}
