// Package minify compacts scripts, stylesheets and HTML fragments.
//
// Scripts and stylesheets go through esbuild's transform API. Identifiers are
// never renamed so code relying on function parameter names for dependency
// injection keeps working.
package minify

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/evanw/esbuild/pkg/api"
)

// SourceError is a diagnostic reported while parsing a source.
type SourceError struct {
	File   string
	Line   int
	Column int
	Text   string
}

func (e *SourceError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %s", e.File, e.Text)
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Text)
}

func firstError(name string, msgs []api.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	m := msgs[0]
	se := &SourceError{File: name, Text: m.Text}
	if m.Location != nil {
		if m.Location.File != "" {
			se.File = m.Location.File
		}
		se.Line = m.Location.Line
		se.Column = m.Location.Column + 1
	}
	return se
}

// JS minifies a script without renaming identifiers.
func JS(name string, src []byte) ([]byte, error) {
	res := api.Transform(string(src), api.TransformOptions{
		Loader:            api.LoaderJS,
		Sourcefile:        name,
		MinifyWhitespace:  true,
		MinifySyntax:      true,
		MinifyIdentifiers: false,
		LegalComments:     api.LegalCommentsNone,
		LogLevel:          api.LogLevelSilent,
	})
	if err := firstError(name, res.Errors); err != nil {
		return nil, err
	}
	return res.Code, nil
}

// CSSOptions controls stylesheet processing.
type CSSOptions struct {
	// Minify removes whitespace and shortens syntax.
	Minify bool
	// Engines lists browser targets used to add vendor prefixes. Empty
	// disables prefixing.
	Engines []api.Engine
}

// CSS prefixes and optionally minifies a stylesheet.
func CSS(name string, src []byte, opts CSSOptions) ([]byte, error) {
	res := api.Transform(string(src), api.TransformOptions{
		Loader:           api.LoaderCSS,
		Sourcefile:       name,
		MinifyWhitespace: opts.Minify,
		MinifySyntax:     opts.Minify,
		Engines:          opts.Engines,
		LegalComments:    api.LegalCommentsNone,
		LogLevel:         api.LogLevelSilent,
	})
	if err := firstError(name, res.Errors); err != nil {
		return nil, err
	}
	return res.Code, nil
}

var engineNames = map[string]api.EngineName{
	"chrome":  api.EngineChrome,
	"edge":    api.EngineEdge,
	"firefox": api.EngineFirefox,
	"ie":      api.EngineIE,
	"ios":     api.EngineIOS,
	"opera":   api.EngineOpera,
	"safari":  api.EngineSafari,
}

// ParseEngines converts targets such as "chrome130" or "safari17.2" into
// esbuild engine constraints.
func ParseEngines(targets []string) ([]api.Engine, error) {
	engines := make([]api.Engine, 0, len(targets))
	for _, raw := range targets {
		t := strings.ToLower(strings.TrimSpace(raw))
		i := strings.IndexFunc(t, unicode.IsDigit)
		if i <= 0 {
			return nil, fmt.Errorf("invalid browser target %q", raw)
		}
		name, ok := engineNames[t[:i]]
		if !ok {
			return nil, fmt.Errorf("unknown browser %q in target %q", t[:i], raw)
		}
		version := t[i:]
		if _, err := strconv.ParseFloat(strings.SplitN(version, ".", 2)[0], 64); err != nil {
			return nil, fmt.Errorf("invalid version in browser target %q", raw)
		}
		engines = append(engines, api.Engine{Name: name, Version: version})
	}
	return engines, nil
}
