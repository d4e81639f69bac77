// Package config holds the Language's static tables: keywords, the
// `function`-alias set, builtin name lists, and the handful of constants the
// reference implementation (original_source/gulfofmexico/constants.py)
// pins down precisely. Grounded on funxy's internal/config package, which
// plays the same "static table" role for its own keyword/operator sets.
package config

import "github.com/mcgru/gulfmex/internal/token"

// Confidence and lifetime constants, taken verbatim from
// gulfofmexico/constants.py so saved/loaded programs agree with the
// reference semantics.
const (
	MaxConfidence     = 100000000000
	DefaultConfidence = 0
	InfiniteLifetime  = 100000000000

	// FloatComparisonEpsilon bounds the "treated as integer" test in
	// spec.md §3: min(x mod 1, 1 - x mod 1) < FloatComparisonEpsilon.
	FloatComparisonEpsilon = 1e-8

	// RuntimeDir / file names for the persisted "runtime" directory,
	// spec.md §6.4.
	RuntimeDir                = ".gulfmex_runtime"
	ImmutableConstantsFile    = "immutable_constants"
	ImmutableConstantValsFile = "immutable_constants_values"
	RuntimeSeparator          = ";;;"
)

// Keywords maps every reserved word (including every accepted spelling of
// "function") to its token type. Built once at init time.
var Keywords = map[string]token.Type{
	"const":     token.CONST,
	"var":       token.VAR,
	"when":      token.WHEN,
	"if":        token.IF,
	"else":      token.ELSE,
	"async":     token.ASYNC,
	"return":    token.RETURN,
	"delete":    token.DELETE,
	"await":     token.AWAIT,
	"previous":  token.PREVIOUS,
	"next":      token.NEXT,
	"reverse":   token.REVERSE,
	"export":    token.EXPORT,
	"import":    token.IMPORT,
	"class":     token.CLASS,
	"className": token.CLASSNAME,
	"after":     token.AFTER,
	"from":      token.FROM,
	"true":      token.TRUE,
	"false":     token.FALSE,
	"maybe":     token.MAYBE,
	"undefined": token.UNDEFINED,
}

// FunctionAliases is every nonempty subsequence of the letters of
// "function", plus the bare token "fn" (spec.md §9 design note). Computed
// once at init so the lexer/parser can do an O(1) set lookup instead of
// re-deriving subsequences per identifier.
var FunctionAliases = buildFunctionAliases()

func buildFunctionAliases() map[string]bool {
	word := "function"
	n := len(word)
	aliases := map[string]bool{"fn": true}
	// Enumerate every subsequence via the 2^n bitmask trick; skip the
	// empty subsequence (mask 0) since `function` with zero letters isn't
	// a usable identifier.
	for mask := 1; mask < (1 << uint(n)); mask++ {
		var b []byte
		for i := 0; i < n; i++ {
			if mask&(1<<uint(i)) != 0 {
				b = append(b, word[i])
			}
		}
		aliases[string(b)] = true
	}
	return aliases
}

// NumberWordsZeroToNineteen lists the literal constants `zero`..`nineteen`
// in value order, per gulfofmexico/builtin.py's NUMBER_NAME_KEYWORDS.
var NumberWordsZeroToNineteen = []string{
	"zero", "one", "two", "three", "four", "five", "six", "seven", "eight",
	"nine", "ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen",
	"sixteen", "seventeen", "eighteen", "ninteen", // reference's own spelling
}

// NumberWordsTens lists `twenty`..`ninety`, each a unary function
// `n -> tens + n` per spec.md §6 builtin table.
var NumberWordsTens = []string{
	"twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety",
}

// MathFunctionNames is the set of numeric-only wrappers over stdlib math
// preloaded into the root namespace (spec.md §6 "math module names").
var MathFunctionNames = []string{
	"abs", "sqrt", "cbrt", "floor", "ceil", "round", "sin", "cos", "tan",
	"asin", "acos", "atan", "log", "log2", "log10", "exp", "pow", "min", "max",
	"sign", "trunc", "atan2",
}

// IsFunctionKeyword reports whether ident is one of the `function` aliases.
func IsFunctionKeyword(ident string) bool {
	return FunctionAliases[ident]
}
