// Package validator checks pathway documents on disk before they are served.
package validator

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/carepath/internal/compiler"
	"github.com/aretw0/carepath/pkg/adapters/file"
	"github.com/aretw0/carepath/pkg/domain"
)

// Report is the outcome for one document.
type Report struct {
	Path     string
	Pathway  *domain.Pathway
	Warnings []string
	Err      error
}

// OK reports whether the document compiled.
func (r Report) OK() bool { return r.Err == nil }

// ValidateFiles compiles every document named by paths. Directories are expanded
// to the pathway documents they hold, skipping the catalog manifest.
// The returned error joins every failure; warnings never fail validation.
func ValidateFiles(c *compiler.Compiler, paths []string) ([]Report, error) {
	files, err := expand(paths)
	if err != nil {
		return nil, err
	}

	reports := make([]Report, 0, len(files))
	seen := make(map[string]string)
	var errs []error

	for _, path := range files {
		rep := validateFile(c, path)
		if rep.Pathway != nil {
			if prev, ok := seen[rep.Pathway.ID]; ok && rep.Err == nil {
				rep.Err = fmt.Errorf("pathway '%s' is also declared by %s", rep.Pathway.ID, prev)
			} else {
				seen[rep.Pathway.ID] = path
			}
		}
		if rep.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, rep.Err))
		}
		reports = append(reports, rep)
	}
	return reports, errors.Join(errs...)
}

func validateFile(c *compiler.Compiler, path string) Report {
	rep := Report{Path: path}
	format, ok := compiler.FormatFromPath(path)
	if !ok {
		rep.Err = fmt.Errorf("unsupported file type '%s'", filepath.Ext(path))
		return rep
	}
	data, err := os.ReadFile(path)
	if err != nil {
		rep.Err = err
		return rep
	}
	p, err := c.Compile(data, format)
	if err != nil {
		rep.Err = err
		return rep
	}
	rep.Pathway = p

	// Documents are served under their file name, so the two must agree.
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if p.ID != stem {
		rep.Err = fmt.Errorf("declares pathway '%s' but is served as '%s'", p.ID, stem)
	}
	if p.Metadata.Version == "" {
		rep.Warnings = append(rep.Warnings, "metadata has no version")
	}
	for _, n := range p.Nodes() {
		switch n := n.(type) {
		case *domain.TreatmentNode:
			if n.Drug == "" {
				rep.Warnings = append(rep.Warnings, fmt.Sprintf("treatment node '%s' names no drug", n.ID))
			}
		case *domain.ActionNode:
			if len(n.Actions) == 0 {
				rep.Warnings = append(rep.Warnings, fmt.Sprintf("action node '%s' lists no actions", n.ID))
			}
		}
	}
	return rep
}

func expand(paths []string) ([]string, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		var found []string
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || name == file.CatalogFile || strings.HasPrefix(name, ".") {
				continue
			}
			if _, ok := compiler.FormatFromPath(name); ok {
				found = append(found, filepath.Join(path, name))
			}
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}
