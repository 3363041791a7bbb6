package discovery

import (
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/ritzau/build-optimizer/pkg/buildcontext"
)

// Client queries the test-discovery service: given an assembled tradefed-style
// query and the test-mapping archive, it returns the test modules (and their
// dependencies) transitively exercised by the scheduled invocation.
type Client interface {
	Discover(ctx context.Context, args []string, mappingZip string) (modules, deps []string, err error)
}

// ExecClient shells out to the discovery agent binary
type ExecClient struct {
	Bin string
}

// NewClient creates a discovery client backed by the agent at bin
func NewClient(bin string) *ExecClient {
	return &ExecClient{Bin: bin}
}

// Discover runs one discovery query. Agent stdout carries one result per
// line, "module:<name>" or "dependency:<name>".
func (c *ExecClient) Discover(ctx context.Context, args []string, mappingZip string) ([]string, []string, error) {
	full := append([]string{"--test-mapping-zip", mappingZip}, args...)
	cmd := exec.CommandContext(ctx, c.Bin, full...)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, nil, fmt.Errorf("test discovery failed: %w\nOutput: %s", err, string(output))
	}

	var modules, deps []string
	for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "module:"):
			modules = append(modules, strings.TrimPrefix(line, "module:"))
		case strings.HasPrefix(line, "dependency:"):
			deps = append(deps, strings.TrimPrefix(line, "dependency:"))
		}
	}
	return modules, deps, nil
}

// BuildQuery assembles the discovery query for one test invocation. Extra
// options become --key value tokens; a build-id option is substituted with
// the current build number; test-mapping invocations get one
// --test-mapping-path per changed directory.
func BuildQuery(ti buildcontext.TestInfo, changedDirs map[string]bool, buildNumber string) []string {
	args := []string{ti.Command}
	for _, opt := range ti.ExtraOptions {
		if opt.Key == "" {
			continue
		}
		argKey := "--" + opt.Key
		if argKey == "--build-id" {
			args = append(args, argKey, buildNumber)
			continue
		}
		if len(opt.Values) > 0 {
			for _, v := range opt.Values {
				args = append(args, argKey, v)
			}
		} else {
			args = append(args, argKey)
		}
	}
	if ti.IsTestMapping() {
		for _, dir := range sortedKeys(changedDirs) {
			args = append(args, "--test-mapping-path", dir)
		}
	}
	return args
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
