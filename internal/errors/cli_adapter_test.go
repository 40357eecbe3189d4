package errors

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	a := NewCLIErrorAdapter(false, nil)

	assert.Equal(t, 0, a.ExitCodeFor(nil))
	assert.Equal(t, 1, a.ExitCodeFor(fmt.Errorf("plain")))
	assert.Equal(t, 7, a.ExitCodeFor(ConfigNotFound("x.yaml")))
	assert.Equal(t, 2, a.ExitCodeFor(ValidationFailed("env", "unknown")))
	assert.Equal(t, 3, a.ExitCodeFor(LintFailed(1)))
	assert.Equal(t, 11, a.ExitCodeFor(CompileError("app.scss", fmt.Errorf("line 3: bad"))))
	assert.Equal(t, 11, a.ExitCodeFor(fmt.Errorf("wrapped: %w", FileSystemError("copy", "a", nil))))
	assert.Equal(t, 130, a.ExitCodeFor(Canceled(nil)))
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	quiet := NewCLIErrorAdapter(false, nil)
	verbose := NewCLIErrorAdapter(true, nil)

	cfgErr := ConfigNotFound("assetbuilder.yaml")
	assert.Equal(t, "configuration file not found", quiet.FormatError(cfgErr))
	assert.Equal(t, cfgErr.Error(), verbose.FormatError(cfgErr))

	compileErr := CompileError("app.scss", fmt.Errorf("app.scss:3:1: expected ';'"))
	assert.Equal(t, "compile: compilation failed: app.scss:3:1: expected ';'", quiet.FormatError(compileErr))

	assert.Equal(t, "Error: boom", quiet.FormatError(fmt.Errorf("boom")))
	assert.Empty(t, quiet.FormatError(nil))
}

func TestCLIErrorAdapter_Report(t *testing.T) {
	var out, logs bytes.Buffer
	a := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(&logs, nil)))
	a.out = &out

	assert.Equal(t, 0, a.Report(nil))
	assert.Empty(t, out.String())

	code := a.Report(TemplateError("index.tmpl", fmt.Errorf("index.tmpl:4: no such key")))
	assert.Equal(t, 11, code)
	assert.Contains(t, out.String(), "index.tmpl:4: no such key")
	assert.Empty(t, logs.String(), "user-facing failures are not logged twice")

	out.Reset()
	code = a.Report(InternalError("unknown step", nil).WithContext("step", "x"))
	assert.Equal(t, 10, code)
	assert.Contains(t, logs.String(), "step=x")
}
