package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPathHasSegment(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		module string
		want   bool
	}{
		{"Middle Segment", "path/to/module_1/file", "module_1", true},
		{"First Segment", "module_1/file", "module_1", true},
		{"Last Segment", "path/to/module_1", "module_1", true},
		{"Substring Of Segment", "path/to/module_12/file", "module_1", false},
		{"Segment Suffix", "path/to/amodule_1/file", "module_1", false},
		{"Not Present", "path/to/other/file", "module_1", false},
		{"Empty Path", "", "module_1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PathHasSegment(tt.path, tt.module); got != tt.want {
				t.Errorf("PathHasSegment(%q, %q) = %v, want %v", tt.path, tt.module, got, tt.want)
			}
		})
	}
}

func TestFilterModules(t *testing.T) {
	lines := []string{
		"path/to/module_1/a",
		"path/to/module_2/b",
		"path/to/module_1/c.config",
	}
	got := FilterModules(lines, map[string]bool{"module_1": true})
	want := []string{"path/to/module_1/a", "path/to/module_1/c.config"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("FilterModules() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad(t *testing.T) {
	productOut := t.TempDir()
	write := func(name, content string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(productOut, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	// Leading/trailing whitespace and blank lines are tolerated; the build
	// system emits newline-terminated lists.
	write("general-tests_files", "\npath/to/module_1/a\npath/to/module_2/b\n\n")
	write("general-tests_host_files", "path/to/module_1/a\n")
	write("general-tests_target_files", "path/to/module_2/b\n")

	cat, err := Load(productOut)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cat.All) != 2 || len(cat.HostOnly) != 1 || len(cat.TargetOnly) != 1 {
		t.Errorf("Load() sizes = %d/%d/%d, want 2/1/1",
			len(cat.All), len(cat.HostOnly), len(cat.TargetOnly))
	}
	if !cat.HasModuleOutput("module_1") {
		t.Error("HasModuleOutput(module_1) = false, want true")
	}
	if cat.HasModuleOutput("module_3") {
		t.Error("HasModuleOutput(module_3) = true, want false")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("Load() error = nil, want error for missing listing files")
	}
}
