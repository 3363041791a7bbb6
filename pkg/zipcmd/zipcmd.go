// Package zipcmd assembles soong_zip command lines. The token order per
// segment is part of the contract with the archive tool and with the test
// harness that unpacks the result, so it is reproduced exactly: -P prefix,
// -C root, then -l/-f/-D items. Consult soong_zip --help for the options.
package zipcmd

import (
	"errors"
	"fmt"
	"path/filepath"
)

// ErrNoItems indicates a zip segment with nothing to archive
var ErrNoItems = errors.New("no items specified to be added to zip")

// Items describes one segment of a zip command: a destination prefix, the
// root paths are made relative to, and the members (list files, files,
// directories) to add under it.
type Items struct {
	Prefix       string
	RelativeRoot string
	ListFiles    []string
	Files        []string
	Dirs         []string
}

// Tokens renders the segment as soong_zip options. A segment with no list
// files, files or directories is a planning bug upstream and fails fast.
func (i Items) Tokens() ([]string, error) {
	if len(i.ListFiles) == 0 && len(i.Files) == 0 && len(i.Dirs) == 0 {
		return nil, fmt.Errorf("%w: prefix: %s, relative root: %s", ErrNoItems, i.Prefix, i.RelativeRoot)
	}
	var tokens []string
	if i.Prefix != "" {
		tokens = append(tokens, "-P", i.Prefix)
	}
	if i.RelativeRoot != "" {
		tokens = append(tokens, "-C", i.RelativeRoot)
	}
	for _, lf := range i.ListFiles {
		tokens = append(tokens, "-l", lf)
	}
	for _, f := range i.Files {
		tokens = append(tokens, "-f", f)
	}
	for _, d := range i.Dirs {
		tokens = append(tokens, "-D", d)
	}
	return tokens, nil
}

// BaseCommand starts a zip command: the archiver binary, duplicate handling
// and the destination archive under distDir.
func BaseCommand(zipBin, distDir, name string) []string {
	return []string{zipBin, "-d", "-o", filepath.Join(distDir, name)}
}
