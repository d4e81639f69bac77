package executor

import (
	"github.com/mcgru/gulfmex/internal/builtins"
	"github.com/mcgru/gulfmex/internal/value"
)

// defaultRootBindings seeds the program's root namespace with spec.md §6's
// builtin table, grounded on funxy's global environment bootstrap
// (internal/evaluator.Builtins merged into the outermost Environment).
func defaultRootBindings() map[string]value.Value {
	return builtins.Root()
}
