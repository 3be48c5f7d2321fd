// Package project detects the project root and module path backing a
// session bootstrap, mirroring inspector/repository.Detector's marker-file
// walk but narrowed to the one case the kernel actually needs: finding a
// go.mod and the module path declared in it (SPEC_FULL.md's DOMAIN STACK).
package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/viant/afs"
	"golang.org/x/mod/modfile"
)

// markers are searched for, in order, walking up from the start path; the
// first directory containing one is the project root.
var markers = []string{"go.mod", ".git"}

// Project describes the detected root of a Go module under analysis.
type Project struct {
	RootPath   string
	ModulePath string // empty if no go.mod was found
}

// Detect walks up from startPath looking for a go.mod (preferred) or a .git
// directory, returning the first root found. If startPath names a file, the
// walk begins at its parent directory.
func Detect(ctx context.Context, startPath string) (*Project, error) {
	abs, err := filepath.Abs(startPath)
	if err != nil {
		return nil, fmt.Errorf("project: resolving %s: %w", startPath, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("project: stat %s: %w", abs, err)
	}
	dir := abs
	if !info.IsDir() {
		dir = filepath.Dir(abs)
	}

	fs := afs.New()
	for {
		for _, marker := range markers {
			markerPath := filepath.Join(dir, marker)
			if _, err := os.Stat(markerPath); err != nil {
				continue
			}
			p := &Project{RootPath: dir}
			if marker == "go.mod" {
				if content, derr := fs.DownloadWithURL(ctx, markerPath); derr == nil {
					if mod, perr := modfile.Parse(markerPath, content, nil); perr == nil && mod.Module != nil {
						p.ModulePath = mod.Module.Mod.Path
					}
				}
			}
			return p, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return &Project{RootPath: abs}, nil
}

// ImportPathFor returns the import path of a file given its enclosing
// project, joining the module path with the file's directory relative to
// the project root. Falls back to the file's directory path (with forward
// slashes) when no module path was detected.
func ImportPathFor(p *Project, filePath string) string {
	dir := filepath.Dir(filePath)
	if p == nil || p.ModulePath == "" {
		return filepath.ToSlash(dir)
	}
	rel, err := filepath.Rel(p.RootPath, dir)
	if err != nil || rel == "." {
		return p.ModulePath
	}
	return p.ModulePath + "/" + filepath.ToSlash(rel)
}
