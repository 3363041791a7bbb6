package soong

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestQueryVars(t *testing.T) {
	tests := []struct {
		name    string
		output  string
		mockErr error
		want    map[string]string
		wantErr error
	}{
		{
			name: "Valid Output",
			output: "PRODUCT_OUT='/tmp/top/product_out'\n" +
				"SOONG_HOST_OUT='/tmp/top/soong_host_out'\n" +
				"HOST_OUT='/tmp/top/host_out'\n",
			want: map[string]string{
				"PRODUCT_OUT":    "/tmp/top/product_out",
				"SOONG_HOST_OUT": "/tmp/top/soong_host_out",
				"HOST_OUT":       "/tmp/top/host_out",
			},
		},
		{
			name:    "Empty Output",
			output:  "",
			wantErr: ErrDumpvars,
		},
		{
			name:    "Missing Separator",
			output:  "This output is bad",
			wantErr: ErrVarsOutput,
		},
		{
			name:    "Command Failed",
			mockErr: ErrDumpvars,
			wantErr: ErrDumpvars,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &MockExecutor{MockOutput: []byte(tt.output), MockError: tt.mockErr}
			got, err := QueryVars(context.Background(), mock, "/tmp/top", []string{"PRODUCT_OUT"})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("QueryVars() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("QueryVars() error = %v", err)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("QueryVars()[%s] = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestQueryVarsParseErrorMentionsParsing(t *testing.T) {
	mock := &MockExecutor{MockOutput: []byte("garbage line")}
	_, err := QueryVars(context.Background(), mock, "/tmp/top", []string{"PRODUCT_OUT"})
	if err == nil || !strings.Contains(err.Error(), "parsing") {
		t.Errorf("QueryVars() error = %v, want message containing 'parsing'", err)
	}
}

func writeFakeSoongUI(t *testing.T, top, script string) {
	t.Helper()
	dir := filepath.Join(top, "build", "soong")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "soong_ui.bash"), []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}
}

func TestDefaultExecutorRunsDumpvars(t *testing.T) {
	top := t.TempDir()
	writeFakeSoongUI(t, top, "#!/bin/bash\necho \"PRODUCT_OUT='/tmp/out'\"\n")

	vars, err := QueryVars(context.Background(), NewExecutor(), top, []string{"PRODUCT_OUT"})
	if err != nil {
		t.Fatalf("QueryVars() error = %v", err)
	}
	if vars["PRODUCT_OUT"] != "/tmp/out" {
		t.Errorf("PRODUCT_OUT = %q, want /tmp/out", vars["PRODUCT_OUT"])
	}
}

func TestDefaultExecutorNonZeroExit(t *testing.T) {
	top := t.TempDir()
	writeFakeSoongUI(t, top, "#!/bin/bash\necho 'boom' >&2\nexit 1\n")

	_, err := QueryVars(context.Background(), NewExecutor(), top, []string{"PRODUCT_OUT"})
	if !errors.Is(err, ErrDumpvars) {
		t.Fatalf("QueryVars() error = %v, want ErrDumpvars", err)
	}
	if !strings.Contains(err.Error(), "dumpvars failed") {
		t.Errorf("error %q does not mention 'dumpvars failed'", err)
	}
	if !strings.Contains(err.Error(), "boom") {
		t.Errorf("error %q does not carry captured stderr", err)
	}
}
