package script

// Walk traverses the tree rooted at n in depth-first order, calling f for
// each node. If f returns false the children of that node are skipped.
func Walk(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}

	switch n := n.(type) {
	case *File:
		walkStmts(n.Stmts, f)
	case *FuncDef:
		for _, p := range n.Params {
			Walk(p, f)
		}
		walkStmts(n.Body, f)
	case *Param:
		walkExpr(n.Default, f)
	case *ReturnStmt:
		walkExpr(n.Result, f)
	case *IfStmt:
		walkExpr(n.Cond, f)
		walkStmts(n.Then, f)
		walkStmts(n.Else, f)
	case *ForStmt:
		walkExpr(n.Vars, f)
		walkExpr(n.X, f)
		walkStmts(n.Body, f)
	case *WhileStmt:
		walkExpr(n.Cond, f)
		walkStmts(n.Body, f)
	case *AssignStmt:
		walkExpr(n.LHS, f)
		walkExpr(n.RHS, f)
	case *ExprStmt:
		walkExpr(n.X, f)
	case *UnaryExpr:
		walkExpr(n.X, f)
	case *BinaryExpr:
		walkExpr(n.X, f)
		walkExpr(n.Y, f)
	case *CondExpr:
		walkExpr(n.Cond, f)
		walkExpr(n.True, f)
		walkExpr(n.False, f)
	case *CallExpr:
		walkExpr(n.Fn, f)
		walkExprs(n.Args, f)
	case *KeywordArg:
		Walk(n.Name, f)
		walkExpr(n.Value, f)
	case *IndexExpr:
		walkExpr(n.X, f)
		walkExpr(n.Index, f)
	case *SliceExpr:
		walkExpr(n.X, f)
		walkExpr(n.Lo, f)
		walkExpr(n.Hi, f)
		walkExpr(n.Step, f)
	case *DotExpr:
		walkExpr(n.X, f)
	case *TupleExpr:
		walkExprs(n.List, f)
	case *ListExpr:
		walkExprs(n.List, f)
	case *DictExpr:
		for _, e := range n.Entries {
			Walk(e, f)
		}
	case *DictEntry:
		walkExpr(n.Key, f)
		walkExpr(n.Value, f)
	}
}

// File positions are not meaningful; it only anchors Walk.
func (f *File) Pos() Position { return Position{Line: 1, Column: 1} }

func walkStmts(stmts []Stmt, f func(Node) bool) {
	for _, s := range stmts {
		Walk(s, f)
	}
}

func walkExprs(exprs []Expr, f func(Node) bool) {
	for _, e := range exprs {
		walkExpr(e, f)
	}
}

// walkExpr guards against typed-nil interface values for optional fields.
func walkExpr(e Expr, f func(Node) bool) {
	if e == nil {
		return
	}
	Walk(e, f)
}
