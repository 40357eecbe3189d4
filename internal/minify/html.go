package minify

import (
	"bytes"
	"errors"
	"io"
	"regexp"

	"golang.org/x/net/html"
)

var whitespaceRun = regexp.MustCompile(`[ \t\r\n\f]+`)

// preserved lists elements whose text content is left untouched.
var preserved = map[string]bool{
	"pre":      true,
	"textarea": true,
	"script":   true,
	"style":    true,
}

// HTML collapses insignificant whitespace in an HTML fragment. Comments,
// conditional comments, attributes and their quoting are kept byte for byte.
// Whitespace-only runs spanning a line break between tags are removed; other
// whitespace runs shrink to a single space.
func HTML(src []byte) ([]byte, error) {
	z := html.NewTokenizer(bytes.NewReader(src))
	var out bytes.Buffer
	out.Grow(len(src))
	depth := 0

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if errors.Is(z.Err(), io.EOF) {
				return out.Bytes(), nil
			}
			return nil, z.Err()
		}
		raw := append([]byte(nil), z.Raw()...)

		switch tt {
		case html.TextToken:
			if depth > 0 {
				out.Write(raw)
				continue
			}
			if len(bytes.TrimSpace(raw)) == 0 {
				if bytes.ContainsAny(raw, "\r\n") {
					continue
				}
				out.WriteByte(' ')
				continue
			}
			out.Write(whitespaceRun.ReplaceAll(raw, []byte(" ")))
		case html.StartTagToken:
			name, _ := z.TagName()
			if preserved[string(name)] {
				depth++
			}
			out.Write(raw)
		case html.EndTagToken:
			name, _ := z.TagName()
			if preserved[string(name)] && depth > 0 {
				depth--
			}
			out.Write(raw)
		default:
			out.Write(raw)
		}
	}
}
