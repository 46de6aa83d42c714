package notification

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderEscapesVariables(t *testing.T) {
	out := Render("<p>Hello {{name}}</p>", map[string]string{"name": "<b>Mallory</b>"}, nil)
	assert.Equal(t, "<p>Hello &lt;b&gt;Mallory&lt;/b&gt;</p>", out)
}

func TestRenderAllowListedKeysStayRaw(t *testing.T) {
	vars := map[string]string{
		"name": "<i>Anna</i>",
		"link": `<a href="http://x">go</a>`,
	}
	out := Render("{{name}} {{link}}", vars, []string{"link"})
	assert.Equal(t, `&lt;i&gt;Anna&lt;/i&gt; <a href="http://x">go</a>`, out)
}

func TestRenderLeavesUnknownPlaceholders(t *testing.T) {
	out := Render("Hi {{name}}, ref {{missing}}", map[string]string{"name": "Anna"}, nil)
	assert.Equal(t, "Hi Anna, ref {{missing}}", out)
}

func TestRenderReplacesRepeatedPlaceholders(t *testing.T) {
	out := Render("{{n}} and {{n}}", map[string]string{"n": "2"}, nil)
	assert.Equal(t, "2 and 2", out)
}
