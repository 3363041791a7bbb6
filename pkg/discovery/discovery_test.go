package discovery

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ritzau/build-optimizer/pkg/buildcontext"
)

func TestBuildQuery(t *testing.T) {
	changedDirs := map[string]bool{
		"platform/art/": true,
		"build/ci/src":  true,
	}

	tests := []struct {
		name string
		ti   buildcontext.TestInfo
		want []string
	}{
		{
			name: "Options With Values",
			ti: buildcontext.TestInfo{
				Command: "/tf/command",
				ExtraOptions: []buildcontext.ExtraOption{
					{Key: "additional-files-filter", Values: []string{"general-tests.zip"}},
				},
			},
			want: []string{"/tf/command", "--additional-files-filter", "general-tests.zip"},
		},
		{
			name: "Build ID Substituted",
			ti: buildcontext.TestInfo{
				Command: "/tf/command",
				ExtraOptions: []buildcontext.ExtraOption{
					{Key: "build-id", Values: []string{"declared-value"}},
				},
			},
			want: []string{"/tf/command", "--build-id", "8675309"},
		},
		{
			name: "Bare Flag Without Values",
			ti: buildcontext.TestInfo{
				Command: "/tf/command",
				ExtraOptions: []buildcontext.ExtraOption{
					{Key: "dry-run"},
				},
			},
			want: []string{"/tf/command", "--dry-run"},
		},
		{
			name: "Empty Key Skipped",
			ti: buildcontext.TestInfo{
				Command: "/tf/command",
				ExtraOptions: []buildcontext.ExtraOption{
					{Key: "", Values: []string{"ignored"}},
				},
			},
			want: []string{"/tf/command"},
		},
		{
			name: "Test Mapping Appends Changed Dirs",
			ti: buildcontext.TestInfo{
				Command: "/tf/command",
				ExtraOptions: []buildcontext.ExtraOption{
					{Key: "test-mapping-test-group", Values: []string{"presubmit"}},
				},
			},
			want: []string{
				"/tf/command",
				"--test-mapping-test-group", "presubmit",
				"--test-mapping-path", "build/ci/src",
				"--test-mapping-path", "platform/art/",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildQuery(tt.ti, changedDirs, "8675309")
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("BuildQuery() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMockClientRecordsQueries(t *testing.T) {
	mock := &MockClient{MockModules: []string{"module_1"}}
	modules, _, err := mock.Discover(nil, []string{"/tf/command"}, "dist/test_mappings.zip")
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}
	if len(modules) != 1 || modules[0] != "module_1" {
		t.Errorf("Discover() modules = %v, want [module_1]", modules)
	}
	if len(mock.GotQueries) != 1 {
		t.Errorf("GotQueries = %d entries, want 1", len(mock.GotQueries))
	}
}
