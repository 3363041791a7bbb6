package config

import (
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config holds all configuration for one selection pass
type Config struct {
	Top          string `koanf:"top"`           // source tree root
	DistDir      string `koanf:"dist_dir"`      // where packaged artifacts land
	TmpDir       string `koanf:"tmp_dir"`       // scratch dir for list files
	ChangeInfo   string `koanf:"change_info"`   // path to the change-info JSON document
	BuildContext string `koanf:"build_context"` // path to the build-context JSON document
	BuildNumber  string `koanf:"build_number"`  // CI build id, substituted into discovery queries
	Target       string `koanf:"target"`        // requested build target
	DiscoveryBin string `koanf:"discovery_bin"` // test-discovery agent executable
	Package      bool   `koanf:"package"`       // run the emitted zip commands
	Watch        bool   `koanf:"watch"`         // re-run selection when change-info changes
	JSONLog      bool   `koanf:"json_log"`
	Verbose      bool   `koanf:"verbose"`
}

// ciEnvKeys maps the well-known CI environment variables to config keys.
// These are provided out-of-band by the build pipeline.
var ciEnvKeys = map[string]string{
	"TOP":           "top",
	"DIST_DIR":      "dist_dir",
	"TMPDIR":        "tmp_dir",
	"CHANGE_INFO":   "change_info",
	"BUILD_NUMBER":  "build_number",
	"BUILD_CONTEXT": "build_context",
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	cwd, _ := os.Getwd()
	defaults := map[string]interface{}{
		"top":           cwd,
		"dist_dir":      "",
		"tmp_dir":       os.TempDir(),
		"change_info":   "",
		"build_context": "",
		"build_number":  "",
		"target":        "general-tests",
		"discovery_bin": "test_discovery_agent",
		"package":       false,
		"watch":         false,
		"json_log":      false,
		"verbose":       false,
	}
	if err := k.Load(makeMapProvider(defaults), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config File (optional) - build-optimizer.toml
	// We ignore errors here as the file might not exist
	_ = k.Load(file.Provider("build-optimizer.toml"), toml.Parser())

	// 3. Environment Variables
	// Only the pipeline-provided names; everything else is ignored.
	if err := k.Load(env.Provider("", ".", func(s string) string {
		return ciEnvKeys[s]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// Unmarshal into struct
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.DistDir == "" {
		cfg.DistDir = cfg.Top + "/out/dist"
	}

	return &cfg, nil
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
