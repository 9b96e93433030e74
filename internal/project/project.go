package project

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/sunholo/pywasmc/internal/errors"
	"github.com/sunholo/pywasmc/internal/imports"
)

// ConditionalImport records a try-block import together with the
// fallbacks attempted in the same block (spec §3 IR Import).
type ConditionalImport struct {
	Module    string
	Fallbacks []string
}

// Module bundles everything the driver needs about one resolved source
// file: its dotted path, file path, text, and raw import records.
type Module struct {
	Path    string
	File    string
	Source  string
	Imports []imports.Record
}

// Project is the resolved result of walking a directory (spec §3 Project
// Graph plus side-tables).
type Project struct {
	Root    string
	Modules map[string]*Module // module path -> Module
	Order   []string           // topological compile order

	StarImports    map[string][]string
	DynamicImports map[string][]string
	Renames        map[string]map[string]string // module -> imported name -> alias
	Conditional    map[string][]ConditionalImport

	Warnings []errors.Warning
}

// Load discovers, scans, and orders every source file under root.
func Load(root string) (*Project, error) {
	files, err := discoverFiles(root)
	if err != nil {
		return nil, errors.New(errors.RES001, "resolver", errors.IO,
			fmt.Sprintf("failed to read project root %s: %v", root, err), nil)
	}

	p := &Project{
		Root:           root,
		Modules:        map[string]*Module{},
		StarImports:    map[string][]string{},
		DynamicImports: map[string][]string{},
		Renames:        map[string]map[string]string{},
		Conditional:    map[string][]ConditionalImport{},
	}

	moduleOrder := make([]string, 0, len(files))
	for _, f := range files {
		mp := modulePath(root, f)
		src, err := os.ReadFile(f)
		if err != nil {
			return nil, errors.New(errors.RES001, "resolver", errors.IO,
				fmt.Sprintf("failed to read %s: %v", f, err), nil)
		}
		if existing, ok := p.Modules[mp]; ok {
			return nil, errors.New(errors.RES002, "resolver", errors.Other,
				fmt.Sprintf("module path %q maps to both %s and %s", mp, existing.File, f), nil)
		}
		mod := &Module{Path: mp, File: f, Source: string(src)}
		mod.Imports = imports.Scan(mod.Source)
		p.Modules[mp] = mod
		moduleOrder = append(moduleOrder, mp)
	}

	graph := NewGraph()
	for _, mp := range moduleOrder {
		graph.AddNode(mp)
	}
	for _, mp := range moduleOrder {
		mod := p.Modules[mp]
		for _, rec := range mod.Imports {
			p.resolveOne(graph, mp, rec)
		}
	}

	sort.Strings(moduleOrder)
	p.Order = graph.TopoSort(moduleOrder)
	return p, nil
}

// resolveOne resolves a single import record to zero-or-one dependency
// edges plus side-table bookkeeping (spec §4.2 step 3). Unresolved
// imports are not an error - the target may be a host-provided module -
// but earn a Compatibility warning carrying "did you mean" suggestions.
func (p *Project) resolveOne(g *Graph, from string, rec imports.Record) {
	if rec.IsDynamic {
		p.DynamicImports[from] = append(p.DynamicImports[from], rec.ModuleName)
	}
	if rec.IsStar {
		p.StarImports[from] = append(p.StarImports[from], rec.ModuleName)
	}
	if rec.Alias != "" {
		if p.Renames[from] == nil {
			p.Renames[from] = map[string]string{}
		}
		key := rec.Name
		if key == "" {
			key = rec.ModuleName
		}
		p.Renames[from][key] = rec.Alias
	}
	if rec.IsConditional {
		p.Conditional[from] = append(p.Conditional[from], ConditionalImport{
			Module:    rec.ModuleName,
			Fallbacks: rec.Fallbacks,
		})
	}

	target, ok := p.resolveTarget(from, rec)
	if !ok {
		if !rec.IsDynamic {
			p.Warnings = append(p.Warnings, errors.NewWarning(errors.Compatibility,
				fmt.Sprintf("unresolved import %q in module %q%s", rec.ModuleName, from, p.suggest(rec.ModuleName)), nil))
		}
		return
	}
	g.AddEdge(from, target)
}

func (p *Project) resolveTarget(from string, rec imports.Record) (string, bool) {
	switch rec.Type {
	case imports.Direct, imports.From:
		if _, ok := p.Modules[rec.ModuleName]; ok {
			return rec.ModuleName, true
		}
		first := strings.SplitN(rec.ModuleName, ".", 2)[0]
		if _, ok := p.Modules[first]; ok {
			return first, true
		}
		return "", false
	case imports.RelativeSingle, imports.RelativeMultiple:
		parent := from
		for i := 0; i < rec.Level; i++ {
			idx := strings.LastIndex(parent, ".")
			if idx < 0 {
				return "", false
			}
			parent = parent[:idx]
		}
		if _, ok := p.Modules[parent]; ok {
			return parent, true
		}
		return "", false
	}
	return "", false
}

// suggest renders a "did you mean" hint for an unresolved module name,
// grounded on internal/link/module_linker.go's suggestModules pattern from
// the teacher (nearest-match by shared prefix, cheapest approximation that
// avoids a real edit-distance dependency).
func (p *Project) suggest(name string) string {
	var best string
	for mp := range p.Modules {
		if strings.HasPrefix(mp, name) || strings.HasPrefix(name, mp) {
			if best == "" || len(mp) < len(best) {
				best = mp
			}
		}
	}
	if best == "" {
		return ""
	}
	return fmt.Sprintf(" (did you mean %q?)", best)
}
