// Package sprite packs SVG icons into a vertical sprite sheet and generates
// the stylesheet that addresses each icon by class.
package sprite

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html/template"
	"path"
	"regexp"
	"strconv"
	"strings"
)

// Icon is a parsed SVG file.
type Icon struct {
	Name    string
	Width   float64
	Height  float64
	ViewBox string
	Inner   []byte
}

type svgDoc struct {
	XMLName xml.Name
	Width   string `xml:"width,attr"`
	Height  string `xml:"height,attr"`
	ViewBox string `xml:"viewBox,attr"`
	Inner   []byte `xml:",innerxml"`
}

// LoadIcon parses an SVG document. name is the file name without extension.
func LoadIcon(name string, data []byte) (Icon, error) {
	var doc svgDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return Icon{}, fmt.Errorf("parse %s.svg: %w", name, err)
	}
	if doc.XMLName.Local != "svg" {
		return Icon{}, fmt.Errorf("%s.svg: root element is <%s>, expected <svg>", name, doc.XMLName.Local)
	}

	icon := Icon{Name: name, ViewBox: strings.TrimSpace(doc.ViewBox), Inner: bytes.TrimSpace(doc.Inner)}
	icon.Width, _ = parseLength(doc.Width)
	icon.Height, _ = parseLength(doc.Height)

	if vb := strings.Fields(strings.ReplaceAll(icon.ViewBox, ",", " ")); len(vb) == 4 {
		vw, errW := strconv.ParseFloat(vb[2], 64)
		vh, errH := strconv.ParseFloat(vb[3], 64)
		if errW == nil && errH == nil {
			if icon.Width == 0 {
				icon.Width = vw
			}
			if icon.Height == 0 {
				icon.Height = vh
			}
		}
	}
	if icon.Width <= 0 || icon.Height <= 0 {
		return Icon{}, fmt.Errorf("%s.svg: cannot determine dimensions (set width/height or viewBox)", name)
	}
	if icon.ViewBox == "" {
		icon.ViewBox = fmt.Sprintf("0 0 %s %s", num(icon.Width), num(icon.Height))
	}
	return icon, nil
}

func parseLength(s string) (float64, bool) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "px")
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	return v, err == nil
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// offset is the background-position for an icon placed y units down.
func offset(y float64) string {
	if y == 0 {
		return "0"
	}
	return num(-y) + "px"
}

var unsafeClassChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Options controls sprite output.
type Options struct {
	// Selector is the class pattern; %f is replaced by the icon name.
	Selector string
	// SpriteFile and Stylesheet are paths relative to the assets directory.
	SpriteFile string
	Stylesheet string
	// Preview enables the HTML preview page.
	Preview     bool
	PreviewFile string
}

// Result holds the generated artifacts.
type Result struct {
	SVG     []byte
	CSS     []byte
	Preview []byte
}

type placed struct {
	Icon
	Class string
	Y     float64
}

// Build lays icons out top to bottom in the given order.
func Build(icons []Icon, opts Options) (*Result, error) {
	if !strings.Contains(opts.Selector, "%f") {
		return nil, fmt.Errorf("selector %q must contain %%f", opts.Selector)
	}

	var (
		items  []placed
		width  float64
		height float64
		seen   = make(map[string]string)
	)
	for _, icon := range icons {
		class := strings.ReplaceAll(opts.Selector, "%f", unsafeClassChars.ReplaceAllString(icon.Name, "-"))
		if prev, dup := seen[class]; dup {
			return nil, fmt.Errorf("icons %q and %q both map to selector .%s", prev, icon.Name, class)
		}
		seen[class] = icon.Name
		items = append(items, placed{Icon: icon, Class: class, Y: height})
		height += icon.Height
		if icon.Width > width {
			width = icon.Width
		}
	}

	res := &Result{SVG: renderSVG(items, width, height)}
	res.CSS = renderCSS(items, spriteURL(opts.Stylesheet, opts.SpriteFile))
	if opts.Preview {
		preview, err := renderPreview(items, opts)
		if err != nil {
			return nil, err
		}
		res.Preview = preview
	}
	return res, nil
}

func renderSVG(items []placed, width, height float64) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="%s" height="%s" viewBox="0 0 %s %s">`,
		num(width), num(height), num(width), num(height))
	b.WriteByte('\n')
	for _, it := range items {
		fmt.Fprintf(&b, `<svg id="%s" x="0" y="%s" width="%s" height="%s" viewBox="%s">`,
			template.HTMLEscapeString(it.Name), num(it.Y), num(it.Width), num(it.Height), template.HTMLEscapeString(it.ViewBox))
		b.Write(it.Inner)
		b.WriteString("</svg>\n")
	}
	b.WriteString("</svg>\n")
	return b.Bytes()
}

// spriteURL returns the sprite path as seen from the stylesheet.
func spriteURL(stylesheet, sprite string) string {
	dir := path.Dir(stylesheet)
	if dir == "." {
		return sprite
	}
	ups := strings.Repeat("../", len(strings.Split(dir, "/")))
	return ups + sprite
}

func renderCSS(items []placed, url string) []byte {
	var b bytes.Buffer
	for _, it := range items {
		fmt.Fprintf(&b, ".%s {\n", it.Class)
		fmt.Fprintf(&b, "  width: %spx;\n", num(it.Width))
		fmt.Fprintf(&b, "  height: %spx;\n", num(it.Height))
		fmt.Fprintf(&b, "  background: url(%q) 0 %s no-repeat;\n", url, offset(it.Y))
		b.WriteString("}\n\n")
	}
	return b.Bytes()
}

var previewTemplate = template.Must(template.New("preview").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Icon sprite preview</title>
<link rel="stylesheet" href="{{ .Stylesheet }}">
<style>
body { font-family: sans-serif; }
li { display: inline-block; margin: 1em; text-align: center; }
li span { display: block; margin: 0 auto 0.5em; }
</style>
</head>
<body>
<h1>{{ len .Icons }} icons</h1>
<ul>
{{- range .Icons }}
<li><span class="{{ .Class }}"></span><code>.{{ .Class }}</code></li>
{{- end }}
</ul>
</body>
</html>
`))

func renderPreview(items []placed, opts Options) ([]byte, error) {
	rel := opts.Stylesheet
	if dir := path.Dir(opts.PreviewFile); dir != "." {
		rel = strings.Repeat("../", len(strings.Split(dir, "/"))) + opts.Stylesheet
	}
	var b bytes.Buffer
	err := previewTemplate.Execute(&b, struct {
		Stylesheet string
		Icons      []placed
	}{Stylesheet: rel, Icons: items})
	return b.Bytes(), err
}
