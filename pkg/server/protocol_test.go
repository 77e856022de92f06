package server

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/vbind/internal/errors"
)

func TestDecodeClientMessage(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want ClientMessage
		code string
	}{
		{"input", `{"type":"input","id":"vb1","value":"Cy"}`, ClientMessage{Type: "input", ID: "vb1", Value: "Cy"}, ""},
		{"empty input", `{"type":"input","id":"vb1"}`, ClientMessage{Type: "input", ID: "vb1"}, ""},
		{"event", `{"type":"event","id":"vb2","event":" click "}`, ClientMessage{Type: "event", ID: "vb2", Event: "click"}, ""},
		{"malformed", `{"type":`, ClientMessage{}, "E040"},
		{"no id", `{"type":"input","value":"x"}`, ClientMessage{}, "E040"},
		{"no event", `{"type":"event","id":"vb2"}`, ClientMessage{}, "E040"},
		{"unknown type", `{"type":"hover","id":"vb2"}`, ClientMessage{}, "E040"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeClientMessage([]byte(tt.in))
			if tt.code != "" {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, tt.code))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewErrorMessage(t *testing.T) {
	msg := newErrorMessage(errors.New("E041").WithDetail(`no node "vb9"`))
	assert.Equal(t, ErrorMessage{Type: "error", Code: "E041", Message: `Unknown node: no node "vb9"`}, msg)

	msg = newErrorMessage(stderrors.New("boom"))
	assert.Equal(t, "E000", msg.Code)
	assert.Equal(t, "boom", msg.Message)
}

func TestInjectClient(t *testing.T) {
	out := string(injectClient([]byte(`<html><body><p>x</p></BODY></html>`)))
	assert.True(t, strings.HasSuffix(out, "</BODY></html>"))
	assert.Contains(t, out, "<p>x</p><script data-vbind-client>")

	out = string(injectClient([]byte(`<p>fragment</p>`)))
	assert.True(t, strings.HasPrefix(out, "<p>fragment</p><script"))
}

func TestCopyData(t *testing.T) {
	orig := map[string]any{"user": map[string]any{"tags": []any{"a"}}, "n": 1}
	cp := copyData(orig).(map[string]any)
	cp["user"].(map[string]any)["tags"].([]any)[0] = "b"
	cp["n"] = 2

	assert.Equal(t, "a", orig["user"].(map[string]any)["tags"].([]any)[0])
	assert.Equal(t, 1, orig["n"])
}
