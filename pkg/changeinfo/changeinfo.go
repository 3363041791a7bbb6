package changeinfo

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrParse indicates a malformed change-info document
var ErrParse = errors.New("malformed change info")

// ChangeInfo is the parsed change description for the build: which projects
// were revised and which files inside them.
type ChangeInfo struct {
	changes []change
}

type change struct {
	ProjectPath string     `json:"projectPath"`
	Revisions   []revision `json:"revisions"`
}

type revision struct {
	FileInfos []fileInfo `json:"fileInfos"`
}

type fileInfo struct {
	Path string `json:"path"`
}

type changeDoc struct {
	Changes *[]change `json:"changes"`
}

// Load reads and parses the change-info JSON document at path
func Load(path string) (*ChangeInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading change info %s: %w", path, err)
	}
	ci, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ci, nil
}

// Parse parses a change-info document. The document must be valid JSON with a
// top-level "changes" key.
func Parse(data []byte) (*ChangeInfo, error) {
	var doc changeDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing change info: %v: %w", err, ErrParse)
	}
	if doc.Changes == nil {
		return nil, fmt.Errorf("parsing change info: missing changes key: %w", ErrParse)
	}
	return &ChangeInfo{changes: *doc.Changes}, nil
}

// ChangedFiles returns the set of fully qualified changed file paths,
// projectPath + "/" + file sub-path.
func (c *ChangeInfo) ChangedFiles() map[string]bool {
	files := make(map[string]bool)
	for _, ch := range c.changes {
		for _, rev := range ch.Revisions {
			for _, fi := range rev.FileInfos {
				files[ch.ProjectPath+"/"+fi.Path] = true
			}
		}
	}
	return files
}

// ChangedDirs returns the set of directories containing changed files. The
// directory is the project path joined with the dirname of the file's
// sub-path; a sub-path with no separator yields projectPath + "/". Downstream
// test-mapping discovery expects exactly this shape.
func (c *ChangeInfo) ChangedDirs() map[string]bool {
	dirs := make(map[string]bool)
	for _, ch := range c.changes {
		for _, rev := range ch.Revisions {
			for _, fi := range rev.FileInfos {
				dirs[ch.ProjectPath+"/"+subPathDir(fi.Path)] = true
			}
		}
	}
	return dirs
}

// subPathDir is os.path.dirname on the sub-path: everything before the last
// separator, empty when there is none.
func subPathDir(p string) string {
	i := strings.LastIndex(p, "/")
	if i < 0 {
		return ""
	}
	return p[:i]
}
