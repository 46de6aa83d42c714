package notification

import (
	"html"
	"strings"
)

// Render substitutes {{name}} placeholders. Every value is HTML-escaped
// unless its key appears in rawKeys; keys carrying links or pre-sanitized
// HTML are allow-listed by the template, never by the caller.
func Render(body string, vars map[string]string, rawKeys []string) string {
	raw := make(map[string]bool, len(rawKeys))
	for _, k := range rawKeys {
		raw[k] = true
	}

	out := body
	for k, v := range vars {
		if !raw[k] {
			v = html.EscapeString(v)
		}
		out = strings.ReplaceAll(out, "{{"+k+"}}", v)
	}
	return out
}
