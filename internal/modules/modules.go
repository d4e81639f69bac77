// Package modules is the import/export collaborator spec.md §4.5 calls
// "the importable_names / exported_names tables": a small source-keyed
// registry of names a module has exported, consulted by internal/executor
// when running an ImportStatement/ExportStatement. Grounded on funxy's
// internal/evaluator's module cache (it loads a sibling file once and
// reuses the parsed result), simplified here to an in-memory table since
// spec.md's module story is intentionally minimal (no resolver, no
// package manager).
package modules

import (
	"errors"

	"github.com/mcgru/gulfmex/internal/binding"
)

var ErrModuleNotFound = errors.New("module not found")
var ErrNameNotExported = errors.New("name is not exported by this module")

// Registry maps a source identifier (the string literal after `from` in an
// import statement) to the set of Names it has exported.
type Registry struct {
	modules map[string]map[string]*binding.Name
}

func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]map[string]*binding.Name)}
}

// Export records name as importable from source's exported_names table.
func (r *Registry) Export(source, name string, n *binding.Name) {
	tbl, ok := r.modules[source]
	if !ok {
		tbl = make(map[string]*binding.Name)
		r.modules[source] = tbl
	}
	tbl[name] = n
}

// ExportedNames lists every name source has exported, for a bare
// `import from "source"` that imports everything.
func (r *Registry) ExportedNames(source string) (map[string]*binding.Name, error) {
	tbl, ok := r.modules[source]
	if !ok {
		return nil, ErrModuleNotFound
	}
	return tbl, nil
}

// Import resolves a single name against source's importable_names table.
func (r *Registry) Import(source, name string) (*binding.Name, error) {
	tbl, ok := r.modules[source]
	if !ok {
		return nil, ErrModuleNotFound
	}
	n, ok := tbl[name]
	if !ok {
		return nil, ErrNameNotExported
	}
	return n, nil
}
