package soong

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/ritzau/build-optimizer/pkg/logging"
)

const (
	uiBashPath      = "build/soong/soong_ui.bash"
	prebuiltZipPath = "prebuilts/build-tools/linux-x86/bin/soong_zip"
)

// ErrDumpvars indicates the soong variable dump invocation failed
var ErrDumpvars = errors.New("soong dumpvars failed")

// ErrVarsOutput indicates the variable dump produced unparsable output
var ErrVarsOutput = errors.New("unparsable dumpvars output")

// Executor handles the execution of soong commands
type Executor interface {
	RunDumpvars(ctx context.Context, srcTop string, vars []string) ([]byte, error)
}

// DefaultExecutor is the default implementation of Executor that runs actual commands
type DefaultExecutor struct{}

// NewExecutor creates a new default soong executor
func NewExecutor() Executor {
	return &DefaultExecutor{}
}

// RunDumpvars invokes soong_ui in dumpvars mode and returns its raw stdout.
// It respects the provided context for cancellation.
func (e *DefaultExecutor) RunDumpvars(ctx context.Context, srcTop string, vars []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx,
		filepath.Join(srcTop, uiBashPath),
		"--dumpvars-mode",
		"--abs-vars="+strings.Join(vars, " "),
	)
	cmd.Dir = srcTop

	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		logging.Error("soong dumpvars command failed", "stderr", stderr.String())
		return nil, fmt.Errorf("%w: %v\nstderr: %s", ErrDumpvars, err, stderr.String())
	}
	return []byte(stdout.String()), nil
}

// QueryVars resolves a set of named soong configuration variables. Output
// lines have the form NAME='value'; anything else is a parse failure.
func QueryVars(ctx context.Context, e Executor, srcTop string, vars []string) (map[string]string, error) {
	output, err := e.RunDumpvars(ctx, srcTop, vars)
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(output))) == 0 {
		return nil, fmt.Errorf("%w: necessary soong variables %v not found", ErrDumpvars, vars)
	}

	resolved := make(map[string]string)
	for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		name, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("error parsing soong dumpvars output %q: %w", line, ErrVarsOutput)
		}
		resolved[name] = strings.Trim(value, "'")
	}
	return resolved, nil
}

// ZipCommandPath returns the prebuilt soong_zip binary under the source tree
func ZipCommandPath(srcTop string) string {
	return filepath.Join(srcTop, prebuiltZipPath)
}
