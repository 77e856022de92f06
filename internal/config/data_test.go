package config

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/vango-dev/vbind/internal/errors"
)

func TestLoadDataJSON(t *testing.T) {
	path := writeFile(t, t.TempDir(), "data.json", `{"name": "Ann", "count": 2, "user": {"tags": ["a", "b"]}}`)
	data, err := LoadData(path)
	if err != nil {
		t.Fatalf("LoadData error: %v", err)
	}
	want := map[string]any{
		"name":  "Ann",
		"count": 2,
		"user":  map[string]any{"tags": []any{"a", "b"}},
	}
	if !reflect.DeepEqual(data, want) {
		t.Errorf("data = %#v\nwant %#v", data, want)
	}
}

func TestLoadDataYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "data.yaml", "name: Ann\nuser:\n  age: 30\n")
	data, err := LoadData(path)
	if err != nil {
		t.Fatalf("LoadData error: %v", err)
	}
	user, ok := data["user"].(map[string]any)
	if !ok || user["age"] != 30 {
		t.Errorf("user = %#v", data["user"])
	}
}

func TestLoadDataEmpty(t *testing.T) {
	data, err := LoadData("")
	if err != nil || len(data) != 0 {
		t.Errorf("LoadData(\"\") = %v, %v", data, err)
	}

	path := writeFile(t, t.TempDir(), "blank.json", "  \n")
	data, err = LoadData(path)
	if err != nil || data == nil || len(data) != 0 {
		t.Errorf("blank file = %v, %v", data, err)
	}
}

func TestLoadDataErrors(t *testing.T) {
	dir := t.TempDir()
	tests := map[string]string{
		"array":     writeFile(t, dir, "array.json", `[1, 2]`),
		"scalar":    writeFile(t, dir, "scalar.yaml", `hello`),
		"malformed": writeFile(t, dir, "bad.json", `{"a": `),
		"missing":   filepath.Join(dir, "missing.json"),
	}
	for name, path := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadData(path)
			if !errors.HasCode(err, "E021") {
				t.Errorf("error = %v, want E021", err)
			}
		})
	}
}
