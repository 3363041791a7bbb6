package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// File names generated by the build system under PRODUCT_OUT. Each is a
// newline-delimited list of build-system-relative output paths.
const (
	allFilesName    = "general-tests_files"
	hostFilesName   = "general-tests_host_files"
	targetFilesName = "general-tests_target_files"
)

// Catalog holds the full listing of outputs the unoptimized build would
// produce: everything, the host-side subset and the target-side subset.
type Catalog struct {
	All        []string
	HostOnly   []string
	TargetOnly []string
}

// Load reads the three output listing files from productOut
func Load(productOut string) (*Catalog, error) {
	all, err := readLines(filepath.Join(productOut, allFilesName))
	if err != nil {
		return nil, err
	}
	host, err := readLines(filepath.Join(productOut, hostFilesName))
	if err != nil {
		return nil, err
	}
	target, err := readLines(filepath.Join(productOut, targetFilesName))
	if err != nil {
		return nil, err
	}
	return &Catalog{All: all, HostOnly: host, TargetOnly: target}, nil
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading output list %s: %w", path, err)
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// HasModuleOutput reports whether any output line belongs to module
func (c *Catalog) HasModuleOutput(module string) bool {
	for _, line := range c.All {
		if PathHasSegment(line, module) {
			return true
		}
	}
	return false
}

// FilterModules returns the lines belonging to any of the given modules,
// preserving order.
func FilterModules(lines []string, modules map[string]bool) []string {
	var out []string
	for _, line := range lines {
		for m := range modules {
			if PathHasSegment(line, m) {
				out = append(out, line)
				break
			}
		}
	}
	return out
}

// PathHasSegment reports whether name is a complete path segment of p.
// Matching is anchored on separator boundaries so that a module name which is
// a substring of another segment never matches.
func PathHasSegment(p, name string) bool {
	for _, seg := range strings.Split(p, "/") {
		if seg == name {
			return true
		}
	}
	return false
}
