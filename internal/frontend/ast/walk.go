package ast

// Inspect traverses the tree rooted at node in depth-first order, calling f for
// each node. Children are skipped when f returns false.
func Inspect(node Node, f func(Node) bool) {
	if node == nil || !f(node) {
		return
	}
	switch n := node.(type) {
	case *Module:
		for _, c := range n.Nodes {
			Inspect(c, f)
		}
	case *FuncDecl:
		inspectBlock(n.Body, f)
	case *ImplDecl:
		for _, m := range n.Methods {
			Inspect(m, f)
		}
	case *VarDecl:
		inspectExpr(n.Value, f)
	case *Block:
		for _, c := range n.Nodes {
			Inspect(c, f)
		}
	case *ExprStmt:
		inspectExpr(n.X, f)
	case *AssignStmt:
		inspectExpr(n.Lhs, f)
		inspectExpr(n.Rhs, f)
	case *AssignExpr:
		inspectExpr(n.Lhs, f)
		inspectExpr(n.Rhs, f)
	case *IfStmt:
		inspectExpr(n.Cond, f)
		inspectBlock(n.Body, f)
		if n.Else != nil {
			Inspect(n.Else, f)
		}
	case *WhileStmt:
		inspectExpr(n.Cond, f)
		inspectBlock(n.Body, f)
	case *ForRangeStmt:
		inspectExpr(n.From, f)
		inspectExpr(n.To, f)
		inspectExpr(n.Step, f)
		inspectBlock(n.Body, f)
	case *ForEachStmt:
		inspectExpr(n.Iterable, f)
		inspectBlock(n.Body, f)
	case *ReturnStmt:
		inspectExpr(n.Result, f)
	case *BinaryExpr:
		inspectExpr(n.X, f)
		inspectExpr(n.Y, f)
	case *UnaryExpr:
		inspectExpr(n.X, f)
	case *CallExpr:
		for _, a := range n.Args {
			inspectExpr(a, f)
		}
	case *FieldAccess:
		inspectExpr(n.X, f)
	case *MethodCall:
		inspectExpr(n.X, f)
		for _, a := range n.Args {
			inspectExpr(a, f)
		}
	case *StructInit:
		for _, fi := range n.Fields {
			inspectExpr(fi.Value, f)
		}
	case *AwaitExpr:
		inspectExpr(n.X, f)
	case *MatchExpr:
		inspectExpr(n.Subject, f)
		for _, arm := range n.Arms {
			inspectExpr(arm.Pattern, f)
			inspectExpr(arm.Body, f)
		}
	case *ArrayLit:
		for _, e := range n.Elems {
			inspectExpr(e, f)
		}
	case *IndexExpr:
		inspectExpr(n.X, f)
		inspectExpr(n.Index, f)
	}
}

// inspectExpr guards against typed nil interfaces from optional fields.
func inspectExpr(e Expression, f func(Node) bool) {
	if e != nil {
		Inspect(e, f)
	}
}

func inspectBlock(b *Block, f func(Node) bool) {
	if b != nil {
		Inspect(b, f)
	}
}
