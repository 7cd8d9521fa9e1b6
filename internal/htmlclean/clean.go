// Package htmlclean removes comments and redundant whitespace from rendered
// pages. Markup is streamed through the x/net/html tokenizer and tags are
// written back byte for byte, so attribute values and entities are untouched.
package htmlclean

import (
	"bytes"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/html"

	ferrors "github.com/sandroweb/html-template-project/internal/foundation/errors"
)

// preserved elements keep their text content verbatim.
var preserved = map[string]bool{
	"pre":      true,
	"textarea": true,
	"script":   true,
	"style":    true,
}

// Clean returns a compacted copy of src.
func Clean(src string) (string, error) {
	var out bytes.Buffer
	out.Grow(len(src))
	if err := CleanTo(&out, strings.NewReader(src)); err != nil {
		return "", err
	}
	return out.String(), nil
}

// CleanTo streams a compacted copy of r into w.
func CleanTo(w io.Writer, r io.Reader) error {
	z := html.NewTokenizer(r)
	depth := 0 // nesting inside preserved elements

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if errors.Is(z.Err(), io.EOF) {
				return nil
			}
			return ferrors.WrapError(z.Err(), ferrors.CategoryTransformer, "tokenize html").Build()

		case html.CommentToken:
			raw := z.Raw()
			// Conditional comments carry markup for old browsers.
			if bytes.HasPrefix(raw, []byte("<!--[if")) {
				if _, err := w.Write(raw); err != nil {
					return err
				}
			}

		case html.TextToken:
			raw := z.Raw()
			if depth > 0 {
				if _, err := w.Write(raw); err != nil {
					return err
				}
				continue
			}
			if _, err := io.WriteString(w, collapse(string(raw))); err != nil {
				return err
			}

		case html.StartTagToken, html.EndTagToken:
			raw := append([]byte(nil), z.Raw()...)
			name, _ := z.TagName()
			if preserved[string(name)] {
				if tt == html.StartTagToken {
					depth++
				} else if depth > 0 {
					depth--
				}
			}
			if _, err := w.Write(raw); err != nil {
				return err
			}

		default:
			if _, err := w.Write(z.Raw()); err != nil {
				return err
			}
		}
	}
}

// collapse reduces whitespace runs to one space. Whitespace-only text that
// spans a line break is dropped entirely.
func collapse(text string) string {
	if strings.TrimSpace(text) == "" {
		if strings.ContainsAny(text, "\n\r") || text == "" {
			return ""
		}
		return " "
	}
	var b strings.Builder
	b.Grow(len(text))
	space := false
	for _, r := range text {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			if !space {
				b.WriteByte(' ')
				space = true
			}
		default:
			b.WriteRune(r)
			space = false
		}
	}
	return b.String()
}
