package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/ritzau/build-optimizer/pkg/buildcontext"
	"github.com/ritzau/build-optimizer/pkg/config"
	"github.com/ritzau/build-optimizer/pkg/discovery"
	"github.com/ritzau/build-optimizer/pkg/logging"
	"github.com/ritzau/build-optimizer/pkg/metrics"
	"github.com/ritzau/build-optimizer/pkg/selector"
	"github.com/ritzau/build-optimizer/pkg/soong"
	"github.com/ritzau/build-optimizer/pkg/watch"
)

func main() {
	f := pflag.NewFlagSet("build-optimizer", pflag.ExitOnError)
	f.String("target", "general-tests", "Build target to optimize")
	f.String("change_info", "", "Path to the change-info JSON document")
	f.String("build_context", "", "Path to the build-context JSON document")
	f.String("discovery_bin", "test_discovery_agent", "Test-discovery agent executable")
	f.Bool("package", false, "Run the emitted packaging commands")
	f.Bool("watch", false, "Re-run selection when the change-info document changes")
	f.Bool("json_log", false, "Emit logs as JSON")
	f.BoolP("verbose", "v", false, "Enable debug logging")
	_ = f.Parse(os.Args[1:])

	cfg, err := config.Load(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	if cfg.JSONLog {
		logging.SetJSONOutput(level)
	} else {
		logging.SetLevel(level)
	}

	if cfg.BuildContext == "" {
		logging.Fatal("no build context supplied (--build_context or BUILD_CONTEXT)")
	}
	bctx, err := buildcontext.Load(cfg.BuildContext)
	if err != nil {
		logging.Fatal("loading build context", "error", err)
	}

	deps := selector.Deps{
		Soong:     soong.NewExecutor(),
		Discovery: discovery.NewClient(cfg.DiscoveryBin),
		Metrics:   metrics.NewFileAgent(filepath.Join(cfg.DistDir, "build_optimizer_metrics.jsonl")),
	}

	ctx := context.Background()

	if cfg.Watch {
		runOnce := func() {
			if err := run(ctx, cfg, bctx, deps); err != nil {
				logging.Error("selection pass failed", "error", err)
			}
		}
		runOnce()
		fw, err := watch.NewFileWatcher(cfg.ChangeInfo, 500*time.Millisecond, runOnce)
		if err != nil {
			logging.Fatal("starting watcher", "error", err)
		}
		if err := fw.Run(ctx); err != nil && ctx.Err() == nil {
			logging.Fatal("watcher stopped", "error", err)
		}
		return
	}

	if err := run(ctx, cfg, bctx, deps); err != nil {
		logging.Fatal("selection pass failed", "error", err)
	}
}

// run performs one full selection pass: select targets, print them, then
// plan (and optionally execute) the packaging commands.
func run(ctx context.Context, cfg *config.Config, bctx *buildcontext.BuildContext, deps selector.Deps) error {
	opt := selector.ForTarget(cfg.Target, bctx, cfg, deps)

	targets, err := opt.BuildTargets(ctx)
	if err != nil {
		return fmt.Errorf("target selection: %w", err)
	}

	names := make([]string, 0, len(targets))
	for t := range targets {
		names = append(names, t)
	}
	sort.Strings(names)
	for _, t := range names {
		fmt.Println(t)
	}
	logging.Info("selected build targets", "target", cfg.Target, "count", len(names))

	commands, err := opt.PackageCommands(ctx)
	if err != nil {
		return fmt.Errorf("packaging plan: %w", err)
	}

	for _, command := range commands {
		if cfg.Package {
			logging.Info("packaging", "archive", command[3])
			cmd := exec.CommandContext(ctx, command[0], command[1:]...)
			if output, err := cmd.CombinedOutput(); err != nil {
				return fmt.Errorf("zip command failed: %w\nOutput: %s", err, string(output))
			}
		} else {
			fmt.Fprintln(os.Stderr, strings.Join(command, " "))
		}
	}
	return nil
}
