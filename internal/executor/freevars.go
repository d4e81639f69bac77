package executor

import "github.com/mcgru/gulfmex/internal/ast"

// freeIdentifiers walks expr and collects every identifier name it
// references, used to build a `when` watcher's dependency set (spec.md
// §4.5: "records every identifier referenced by cond_expr").
func freeIdentifiers(expr ast.Expression) []string {
	var out []string
	var walk func(ast.Expression)
	walk = func(e ast.Expression) {
		if e == nil {
			return
		}
		switch n := e.(type) {
		case *ast.Identifier:
			out = append(out, n.Value)
		case *ast.PrefixExpression:
			walk(n.Right)
		case *ast.InfixExpression:
			walk(n.Left)
			walk(n.Right)
		case *ast.IndexExpression:
			walk(n.Receiver)
			walk(n.Index)
		case *ast.MemberExpression:
			walk(n.Receiver)
		case *ast.CallExpression:
			walk(n.Function)
			for _, a := range n.Arguments {
				walk(a)
			}
		case *ast.AwaitExpression:
			walk(n.Value)
		case *ast.ListLiteral:
			for _, el := range n.Elements {
				walk(el)
			}
		case *ast.MapLiteral:
			for _, p := range n.Pairs {
				walk(p.Key)
				walk(p.Value)
			}
		}
	}
	walk(expr)
	return out
}
