package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{name: "config error", code: "E001", wantMsg: "Root element missing", wantCat: CategoryConfig},
		{name: "runtime error", code: "E010", wantMsg: "Handler not found", wantCat: CategoryRuntime},
		{name: "protocol error", code: "E041", wantMsg: "Unknown node", wantCat: CategoryProtocol},
		{name: "unknown error code", code: "E999", wantMsg: "Unknown error", wantCat: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			assert.Equal(t, tt.wantMsg, err.Message)
			assert.Equal(t, tt.wantCat, err.Category)
			assert.Equal(t, tt.code, err.Code)
		})
	}
}

func TestErrorString(t *testing.T) {
	err := New("E003").WithDetail(`selector "#app"`)
	assert.Equal(t, `E003: Root element not found: selector "#app"`, err.Error())

	cause := fmt.Errorf("boom")
	err = New("E020").Wrap(cause)
	assert.Equal(t, "E020: Template parse failed: boom", err.Error())
	assert.True(t, stderrors.Is(err, cause))
}

func TestNewf(t *testing.T) {
	err := Newf(CategoryCLI, "flag %q needs key=value", "--set")
	assert.Equal(t, CategoryCLI, err.Category)
	assert.Empty(t, err.Code)
	assert.Equal(t, `flag "--set" needs key=value`, err.Error())
}

func TestIsAndHasCode(t *testing.T) {
	inner := New("E013")
	outer := fmt.Errorf("propagate: %w", inner)

	assert.True(t, stderrors.Is(outer, New("E013")))
	assert.False(t, stderrors.Is(outer, New("E012")))
	assert.True(t, HasCode(outer, "E013"))
	assert.False(t, HasCode(outer, "E001"))
	assert.False(t, HasCode(fmt.Errorf("plain"), "E001"))
	assert.False(t, HasCode(nil, "E001"))

	chained := New("E031").Wrap(New("E021"))
	assert.True(t, HasCode(chained, "E021"))
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil, "E020"))

	existing := New("E010")
	assert.Same(t, existing, FromError(existing, "E020"))

	wrapped := FromError(fmt.Errorf("io"), "E020")
	require.NotNil(t, wrapped)
	assert.Equal(t, "E020", wrapped.Code)
	assert.EqualError(t, wrapped.Unwrap(), "io")
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	err := New("E003").
		WithFile("index.html").
		WithSuggestion("add an element with id app")
	out := err.Format()

	assert.Contains(t, out, "ERROR E003: Root element not found")
	assert.Contains(t, out, "index.html")
	assert.Contains(t, out, "did not match any element")
	assert.Contains(t, out, "Hint: add an element with id app")
	assert.NotContains(t, out, "\033[")
}

func TestFormatCompact(t *testing.T) {
	err := New("E021").WithFile("data.json")
	assert.Equal(t, "data.json: E021: Data file invalid", err.FormatCompact())
}

func TestFormatJSON(t *testing.T) {
	err := New("E040").WithDetail("bad type").Wrap(fmt.Errorf("eof"))

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(err.FormatJSON()), &got))
	assert.Equal(t, "E040", got["code"])
	assert.Equal(t, "protocol", got["category"])
	assert.Equal(t, "bad type", got["detail"])
	assert.Equal(t, "eof", got["cause"])
}

func TestPrintError(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	PrintError(&buf, New("E002"))
	assert.Contains(t, buf.String(), "ERROR E002: Data missing")

	buf.Reset()
	PrintError(&buf, fmt.Errorf("plain failure"))
	assert.Contains(t, buf.String(), "ERROR: plain failure")
}

func TestWrapText(t *testing.T) {
	assert.Nil(t, wrapText("", 10))
	assert.Equal(t, []string{"short"}, wrapText("short", 10))
	assert.Equal(t, []string{"one two", "three"}, wrapText("one two three", 8))
}

func TestRegistry(t *testing.T) {
	codes := GetAllCodes()
	require.NotEmpty(t, codes)
	assert.IsIncreasing(t, codes)

	for _, code := range codes {
		tmpl, ok := GetTemplate(code)
		require.True(t, ok, code)
		assert.NotEmpty(t, tmpl.Message, code)
		assert.NotEmpty(t, tmpl.Category, code)
	}

	_, ok := GetTemplate("E999")
	assert.False(t, ok)
}
