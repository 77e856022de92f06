package dom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuery(t *testing.T) {
	doc := mustParse(t, `
		<div id="app" class="box main">
			<p class="note">a</p>
			<p class="note big" data-k="1">b</p>
			<input v-model="name">
		</div>`)

	tests := []struct {
		selector string
		want     string
	}{
		{"#app", "div"},
		{"div#app", "div"},
		{".main.box", "div"},
		{"p.big", "p"},
		{"[data-k]", "p"},
		{`[data-k="1"]`, "p"},
		{"[v-model=name]", "input"},
		{"*", "html"},
	}
	for _, tt := range tests {
		t.Run(tt.selector, func(t *testing.T) {
			n := mustQuery(t, doc, tt.selector)
			assert.Equal(t, tt.want, n.Tag())
		})
	}

	n, err := doc.Query("#missing")
	require.NoError(t, err)
	assert.Nil(t, n)

	all, err := doc.QueryAll(".note")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestParseSelectorErrors(t *testing.T) {
	for _, s := range []string{"", "  ", "#", ".", "div p", "a>b", "[x", "[=1]", "p:hover"} {
		t.Run(s, func(t *testing.T) {
			_, err := ParseSelector(s)
			assert.Error(t, err)
		})
	}

	doc := mustParse(t, `<p></p>`)
	_, err := doc.Query("div p")
	assert.Error(t, err)
	_, err = doc.QueryAll("[")
	assert.Error(t, err)
}

func TestSelectorMatch(t *testing.T) {
	doc := mustParse(t, `<p id="x">t</p>`)
	p := mustQuery(t, doc, "p")

	sel, err := ParseSelector("P#x")
	require.NoError(t, err)
	assert.True(t, sel.Match(p), "tag names are case-insensitive")
	assert.False(t, sel.Match(p.Children()[0]))
}
