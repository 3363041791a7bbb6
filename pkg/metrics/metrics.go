package metrics

import (
	"encoding/json"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ritzau/build-optimizer/pkg/logging"
)

// Agent reports selection telemetry to the CI metrics pipeline. Reporting is
// always best effort; callers go through ReportSilently.
type Agent interface {
	ReportOptimizedTarget(target string) error
	AddTargetArtifact(target, artifact string, size int64, modules map[string]bool) error
}

type event struct {
	ID       string    `json:"id"`
	Time     time.Time `json:"time"`
	Kind     string    `json:"kind"`
	Target   string    `json:"target"`
	Artifact string    `json:"artifact,omitempty"`
	Size     int64     `json:"size,omitempty"`
	Modules  []string  `json:"modules,omitempty"`
}

// FileAgent appends JSON-lines events to a file, typically under DIST_DIR
// where the CI log collector picks them up.
type FileAgent struct {
	Path string
}

// NewFileAgent creates an agent writing to path
func NewFileAgent(path string) *FileAgent {
	return &FileAgent{Path: path}
}

func (a *FileAgent) ReportOptimizedTarget(target string) error {
	return a.append(event{Kind: "optimized_target", Target: target})
}

func (a *FileAgent) AddTargetArtifact(target, artifact string, size int64, modules map[string]bool) error {
	names := make([]string, 0, len(modules))
	for m := range modules {
		names = append(names, m)
	}
	sort.Strings(names)
	return a.append(event{
		Kind:     "target_artifact",
		Target:   target,
		Artifact: artifact,
		Size:     size,
		Modules:  names,
	})
}

func (a *FileAgent) append(e event) error {
	e.ID = uuid.NewString()
	e.Time = time.Now().UTC()

	f, err := os.OpenFile(a.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = f.Write(append(data, '\n'))
	return err
}

// NoopAgent discards all events
type NoopAgent struct{}

func (NoopAgent) ReportOptimizedTarget(string) error { return nil }
func (NoopAgent) AddTargetArtifact(string, string, int64, map[string]bool) error {
	return nil
}

// ReportSilently runs a reporting function and downgrades any failure or
// panic to a log line. Telemetry must never affect the selection pass.
func ReportSilently(fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("panic while silently reporting metrics", "panic", r)
		}
	}()
	if err := fn(); err != nil {
		logging.Error("error while silently reporting metrics", "error", err)
	}
}
