package buildcontext

import (
	"encoding/json"
	"fmt"
	"os"
)

// BuildContext describes one build request: which optional build features are
// enabled and which test invocations are scheduled against the artifacts.
type BuildContext struct {
	EnabledBuildFeatures map[string]bool
	TestInfos            []TestInfo
}

// TestInfo describes one configured test invocation
type TestInfo struct {
	Name         string
	Command      string
	ExtraOptions []ExtraOption
}

// ExtraOption is a key with zero or more values attached to a test invocation
type ExtraOption struct {
	Key    string   `json:"key"`
	Values []string `json:"values"`
}

type contextDoc struct {
	EnabledBuildFeatures []struct {
		Name string `json:"name"`
	} `json:"enabledBuildFeatures"`
	TestContext struct {
		TestInfos []testInfoDoc `json:"testInfos"`
	} `json:"testContext"`
}

type testInfoDoc struct {
	Name         string        `json:"name"`
	Command      string        `json:"command"`
	ExtraOptions []ExtraOption `json:"extraOptions"`
}

// Load reads and parses the build-context JSON document at path
func Load(path string) (*BuildContext, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading build context %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses a build-context document
func Parse(data []byte) (*BuildContext, error) {
	var doc contextDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing build context: %w", err)
	}

	ctx := &BuildContext{
		EnabledBuildFeatures: make(map[string]bool, len(doc.EnabledBuildFeatures)),
	}
	for _, f := range doc.EnabledBuildFeatures {
		ctx.EnabledBuildFeatures[f.Name] = true
	}
	for _, ti := range doc.TestContext.TestInfos {
		ctx.TestInfos = append(ctx.TestInfos, TestInfo{
			Name:         ti.Name,
			Command:      ti.Command,
			ExtraOptions: ti.ExtraOptions,
		})
	}
	return ctx, nil
}

// FeatureEnabled reports whether a named build feature is enabled for this request
func (c *BuildContext) FeatureEnabled(name string) bool {
	return c.EnabledBuildFeatures[name]
}

// IsTestMapping reports whether this invocation runs test-mapping tests.
// The signal is a test-mapping-test-group option on the invocation.
func (t *TestInfo) IsTestMapping() bool {
	for _, opt := range t.ExtraOptions {
		if opt.Key == "test-mapping-test-group" {
			return true
		}
	}
	return false
}
