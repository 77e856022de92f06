package server

import (
	"os"

	"github.com/vango-dev/vbind/internal/config"
	"github.com/vango-dev/vbind/internal/errors"
)

// Page is a template with its initial data.
type Page struct {
	HTML []byte
	Data map[string]any
}

// Source provides the page new sessions are built from.
type Source interface {
	Load() (Page, error)
}

// FileSource reads the template and data files on every Load.
type FileSource struct {
	TemplatePath string
	DataPath     string
}

// Load implements Source.
func (f FileSource) Load() (Page, error) {
	raw, err := os.ReadFile(f.TemplatePath)
	if err != nil {
		return Page{}, errors.New("E020").WithFile(f.TemplatePath).Wrap(err)
	}
	data, err := config.LoadData(f.DataPath)
	if err != nil {
		return Page{}, err
	}
	return Page{HTML: raw, Data: data}, nil
}

// StaticSource always returns the same page.
type StaticSource Page

// Load implements Source.
func (s StaticSource) Load() (Page, error) {
	return Page(s), nil
}

// copyData copies nested maps and slices so sessions never share mutable
// containers.
func copyData(v any) any {
	switch x := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = copyData(val)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = copyData(val)
		}
		return out
	default:
		return v
	}
}
