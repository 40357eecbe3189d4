// Package templates renders entry pages with the build's environment label
// and script manifests.
package templates

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Masterminds/sprig/v3"
)

// EntryData is the data an entry template is executed with.
type EntryData struct {
	// Env is the environment label (DEV, QA, STAGING, PROD).
	Env string
	// Profile is the build profile (dev or prod).
	Profile string
	// Revision is the VCS revision of the project, empty when unknown.
	Revision string
	// BuildID identifies this build invocation.
	BuildID string
	// AppScripts and VendorScripts list script paths in load order. They are
	// only populated for the dev profile.
	AppScripts    []string
	VendorScripts []string
}

// Source is a template file to parse.
type Source struct {
	// Name is the template name, also used to derive the output name.
	Name string
	// Path is the file to read.
	Path string
}

// Set holds parsed entry templates. Templates may invoke each other by name.
type Set struct {
	root  *template.Template
	names []string
}

func funcMap() template.FuncMap {
	funcs := sprig.FuncMap()
	funcs["scriptTags"] = scriptTags
	return funcs
}

// scriptTags renders one script element per path.
func scriptTags(paths []string) template.HTML {
	var b strings.Builder
	for i, p := range paths {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, `<script src="%s"></script>`, template.HTMLEscapeString(p))
	}
	// #nosec G203 - each path is escaped above
	return template.HTML(b.String())
}

// Parse reads and parses sources into one template set.
func Parse(sources []Source) (*Set, error) {
	root := template.New("").Funcs(funcMap()).Option("missingkey=error")
	s := &Set{root: root}
	for _, src := range sources {
		data, err := os.ReadFile(src.Path)
		if err != nil {
			return nil, err
		}
		if _, err := root.New(src.Name).Parse(string(data)); err != nil {
			return nil, fmt.Errorf("parse template %s: %w", src.Name, err)
		}
		s.names = append(s.names, src.Name)
	}
	return s, nil
}

// Names returns the template names in parse order.
func (s *Set) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Render executes the named template.
func (s *Set) Render(name string, data EntryData) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.root.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("render template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

// OutputName maps a template name to the HTML file it renders to.
func OutputName(name string) string {
	name = filepath.ToSlash(name)
	ext := path.Ext(name)
	switch ext {
	case ".tmpl", ".gohtml", ".ejs":
		return strings.TrimSuffix(name, ext) + ".html"
	case ".html", ".htm":
		return name
	default:
		return name + ".html"
	}
}
