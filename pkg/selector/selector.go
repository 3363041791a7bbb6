// Package selector decides which modules of a broad test-suite target
// actually need to be built for one CI run, and emits the archive commands
// that reproduce the full build's packaged layout for that subset.
package selector

import (
	"context"

	"github.com/ritzau/build-optimizer/pkg/buildcontext"
	"github.com/ritzau/build-optimizer/pkg/config"
	"github.com/ritzau/build-optimizer/pkg/discovery"
	"github.com/ritzau/build-optimizer/pkg/metrics"
	"github.com/ritzau/build-optimizer/pkg/soong"
)

// Optimizer selects build targets for one requested target and plans the
// packaging of their outputs. BuildTargets must be called before
// PackageCommands; the command list reflects the last selection.
type Optimizer interface {
	BuildTargets(ctx context.Context) (map[string]bool, error)
	PackageCommands(ctx context.Context) ([][]string, error)
}

// Deps bundles the external collaborators an optimizer talks to
type Deps struct {
	Soong     soong.Executor
	Discovery discovery.Client
	Metrics   metrics.Agent
}

// Constructor builds an optimizer for one requested target
type Constructor func(target string, bctx *buildcontext.BuildContext, cfg *config.Config, deps Deps) Optimizer

var registry = map[string]Constructor{
	"general-tests": NewGeneralTests,
}

// ForTarget returns the optimizer registered for target. Targets without a
// registered optimizer get the pass-through null optimizer.
func ForTarget(target string, bctx *buildcontext.BuildContext, cfg *config.Config, deps Deps) Optimizer {
	if ctor, ok := registry[target]; ok {
		return ctor(target, bctx, cfg, deps)
	}
	return &NullOptimizer{Target: target}
}

// NullOptimizer builds the requested target as-is and packages nothing
// specially. It performs no collaborator calls and cannot fail.
type NullOptimizer struct {
	Target string
}

func (n *NullOptimizer) BuildTargets(ctx context.Context) (map[string]bool, error) {
	return map[string]bool{n.Target: true}, nil
}

func (n *NullOptimizer) PackageCommands(ctx context.Context) ([][]string, error) {
	return nil, nil
}
