package selector

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ritzau/build-optimizer/pkg/buildcontext"
	"github.com/ritzau/build-optimizer/pkg/catalog"
	"github.com/ritzau/build-optimizer/pkg/changeinfo"
	"github.com/ritzau/build-optimizer/pkg/config"
	"github.com/ritzau/build-optimizer/pkg/discovery"
	"github.com/ritzau/build-optimizer/pkg/logging"
	"github.com/ritzau/build-optimizer/pkg/metrics"
	"github.com/ritzau/build-optimizer/pkg/soong"
	"github.com/ritzau/build-optimizer/pkg/zipcmd"
)

const generalTestsFlag = "general_tests_optimized"

// requiredModules are built alongside general-tests regardless of what test
// discovery returns. The test harness itself depends on them.
var requiredModules = map[string]bool{
	"cts-tradefed":            true,
	"vts-tradefed":            true,
	"compatibility-host-util": true,
}

// harnessJars are bundled under host/tools in every general-tests.zip. They
// are also hardcoded in general-tests.mk.
var harnessJars = []string{
	"cts-tradefed.jar",
	"compatibility-host-util.jar",
	"vts-tradefed.jar",
}

// GeneralTests is the optimizer for the general-tests target. It asks test
// discovery which modules the scheduled test invocations exercise, keeps the
// ones with actual build outputs, and packages their outputs the same way a
// full build would.
type GeneralTests struct {
	target string
	bctx   *buildcontext.BuildContext
	cfg    *config.Config
	deps   Deps

	selected map[string]bool
	cat      *catalog.Catalog
}

// NewGeneralTests creates the general-tests optimizer
func NewGeneralTests(target string, bctx *buildcontext.BuildContext, cfg *config.Config, deps Deps) Optimizer {
	return &GeneralTests{target: target, bctx: bctx, cfg: cfg, deps: deps}
}

func (g *GeneralTests) BuildTargets(ctx context.Context) (map[string]bool, error) {
	if !g.bctx.FeatureEnabled(generalTestsFlag) {
		g.reportSkippedSilently(ctx)
		return map[string]bool{g.target: true}, nil
	}

	selected, err := g.selectModules(ctx)
	if err != nil {
		return nil, err
	}
	g.selected = selected
	return selected, nil
}

// selectModules runs the selection algorithm: required baseline, union of
// discovered modules, intersected against the output catalog.
func (g *GeneralTests) selectModules(ctx context.Context) (map[string]bool, error) {
	vars, err := soong.QueryVars(ctx, g.deps.Soong, g.cfg.Top, []string{"PRODUCT_OUT"})
	if err != nil {
		return nil, err
	}
	cat, err := catalog.Load(vars["PRODUCT_OUT"])
	if err != nil {
		return nil, err
	}
	g.cat = cat

	ci, err := changeinfo.Load(g.cfg.ChangeInfo)
	if err != nil {
		return nil, err
	}
	changedDirs := ci.ChangedDirs()
	mappingZip := filepath.Join(g.cfg.DistDir, "test_mappings.zip")

	candidates := make(map[string]bool)
	for _, ti := range g.bctx.TestInfos {
		query := discovery.BuildQuery(ti, changedDirs, g.cfg.BuildNumber)
		modules, _, err := g.deps.Discovery.Discover(ctx, query, mappingZip)
		if err != nil {
			return nil, fmt.Errorf("discovery for %s: %w", ti.Name, err)
		}
		for _, m := range modules {
			candidates[m] = true
		}
	}

	selected := make(map[string]bool, len(requiredModules)+len(candidates))
	for m := range requiredModules {
		selected[m] = true
	}
	// A discovered module with no output entry has nothing to build or
	// package; drop it.
	for m := range candidates {
		if cat.HasModuleOutput(m) {
			selected[m] = true
		}
	}
	logging.Debug("selected modules", "count", len(selected), "discovered", len(candidates))
	return selected, nil
}

func (g *GeneralTests) PackageCommands(ctx context.Context) ([][]string, error) {
	if !g.bctx.FeatureEnabled(generalTestsFlag) {
		return nil, nil
	}
	if g.selected == nil {
		if _, err := g.BuildTargets(ctx); err != nil {
			return nil, err
		}
	}

	vars, err := soong.QueryVars(ctx, g.deps.Soong, g.cfg.Top,
		[]string{"PRODUCT_OUT", "SOONG_HOST_OUT", "HOST_OUT"})
	if err != nil {
		return nil, err
	}
	productOut := vars["PRODUCT_OUT"]
	soongHostOut := vars["SOONG_HOST_OUT"]
	hostOut := vars["HOST_OUT"]

	hostOutputs := prefixAll(g.cfg.Top, catalog.FilterModules(g.cat.HostOnly, g.selected))
	targetOutputs := prefixAll(g.cfg.Top, catalog.FilterModules(g.cat.TargetOnly, g.selected))
	hostConfigs := filterSuffix(hostOutputs, ".config")
	targetConfigs := filterSuffix(targetOutputs, ".config")

	hostList := filepath.Join(g.cfg.TmpDir, "host.list")
	targetList := filepath.Join(g.cfg.TmpDir, "target.list")
	if err := writeLines(hostList, hostOutputs); err != nil {
		return nil, err
	}
	if err := writeLines(targetList, targetOutputs); err != nil {
		return nil, err
	}

	var commands [][]string

	// Config archives first; the primary artifact archive must come last.
	configCmds, err := g.configZipCommands(hostOut, productOut, hostConfigs, targetConfigs)
	if err != nil {
		return nil, err
	}
	commands = append(commands, configCmds...)

	zip := zipcmd.BaseCommand(soong.ZipCommandPath(g.cfg.Top), g.cfg.DistDir, "general-tests.zip")
	if len(hostOutputs) > 0 {
		seg, err := zipcmd.Items{
			Prefix:       "host",
			RelativeRoot: hostOut,
			ListFiles:    []string{hostList},
		}.Tokens()
		if err != nil {
			return nil, err
		}
		zip = append(zip, seg...)
	}
	if len(targetOutputs) > 0 {
		seg, err := zipcmd.Items{
			Prefix:       "target",
			RelativeRoot: productOut,
			ListFiles:    []string{targetList},
		}.Tokens()
		if err != nil {
			return nil, err
		}
		zip = append(zip, seg...)
	}

	framework := filepath.Join(soongHostOut, "framework")
	jars := make([]string, len(harnessJars))
	for i, jar := range harnessJars {
		jars[i] = filepath.Join(framework, jar)
	}
	seg, err := zipcmd.Items{
		Prefix:       "host/tools",
		RelativeRoot: framework,
		Files:        jars,
	}.Tokens()
	if err != nil {
		return nil, err
	}
	zip = append(zip, seg...)
	zip = append(zip, "-sha256")

	commands = append(commands, zip)
	return commands, nil
}

// configZipCommands generates general-tests_configs.zip and
// general-tests_list.zip. The configs archive carries every selected .config
// under host/ and target/ prefixes; the list archive carries a single text
// file naming them all, each entry rewritten relative to its root with the
// matching prefix.
func (g *GeneralTests) configZipCommands(hostOut, productOut string, hostConfigs, targetConfigs []string) ([][]string, error) {
	hostListPath := filepath.Join(hostOut, "host_general-tests_list")
	targetListPath := filepath.Join(productOut, "target_general-tests_list")
	combinedPath := filepath.Join(hostOut, "general-tests_list")

	var combined []string
	for _, cf := range hostConfigs {
		combined = append(combined, "host/"+relTo(hostOut, cf))
	}
	for _, cf := range targetConfigs {
		combined = append(combined, "target/"+relTo(productOut, cf))
	}

	if err := writeLines(hostListPath, hostConfigs); err != nil {
		return nil, err
	}
	if err := writeLines(targetListPath, targetConfigs); err != nil {
		return nil, err
	}
	if err := writeLines(combinedPath, combined); err != nil {
		return nil, err
	}

	configsZip := zipcmd.BaseCommand(soong.ZipCommandPath(g.cfg.Top), g.cfg.DistDir, "general-tests_configs.zip")
	seg, err := zipcmd.Items{
		Prefix:       "host",
		RelativeRoot: hostOut,
		ListFiles:    []string{hostListPath},
	}.Tokens()
	if err != nil {
		return nil, err
	}
	configsZip = append(configsZip, seg...)
	seg, err = zipcmd.Items{
		Prefix:       "target",
		RelativeRoot: productOut,
		ListFiles:    []string{targetListPath},
	}.Tokens()
	if err != nil {
		return nil, err
	}
	configsZip = append(configsZip, seg...)

	listZip := zipcmd.BaseCommand(soong.ZipCommandPath(g.cfg.Top), g.cfg.DistDir, "general-tests_list.zip")
	seg, err = zipcmd.Items{
		RelativeRoot: hostOut,
		Files:        []string{combinedPath},
	}.Tokens()
	if err != nil {
		return nil, err
	}
	listZip = append(listZip, seg...)

	return [][]string{configsZip, listZip}, nil
}

// reportSkippedSilently reports what the optimization would have selected
// when the feature is disabled. Any failure here is logged and dropped.
func (g *GeneralTests) reportSkippedSilently(ctx context.Context) {
	metrics.ReportSilently(func() error {
		if err := g.deps.Metrics.ReportOptimizedTarget(g.target); err != nil {
			return err
		}
		wouldSelect, err := g.selectModules(ctx)
		if err != nil {
			return err
		}
		return g.deps.Metrics.AddTargetArtifact(g.target, "general-tests.zip", 0, wouldSelect)
	})
}

func prefixAll(srcTop string, lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = srcTop + "/" + line
	}
	return out
}

func filterSuffix(lines []string, suffix string) []string {
	var out []string
	for _, line := range lines {
		if strings.HasSuffix(line, suffix) {
			out = append(out, line)
		}
	}
	return out
}

func writeLines(path string, lines []string) error {
	var b strings.Builder
	for _, line := range lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing list file %s: %w", path, err)
	}
	return nil
}

// relTo mirrors os.path.relpath for the common case of p living under base
func relTo(base, p string) string {
	rel, err := filepath.Rel(base, p)
	if err != nil {
		return p
	}
	return rel
}
