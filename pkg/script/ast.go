package script

import (
	"strconv"
	"strings"
)

// Node is implemented by every syntax tree node.
type Node interface {
	Pos() Position
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// File is a parsed hybrid script source file.
type File struct {
	Name   string
	Marked bool // first line carries the enabling marker
	Stmts  []Stmt
}

// ---------- Statements ----------

// FuncDef is a function definition: def Name(Params): Body
type FuncDef struct {
	DefPos Position
	Name   string
	Params []*Param
	Body   []Stmt
}

// Param is a function parameter, optionally with a default value.
type Param struct {
	NamePos Position
	Name    string
	Default Expr
}

// ReturnStmt is "return [Result]".
type ReturnStmt struct {
	ReturnPos Position
	Result    Expr // nil for bare return
}

// BranchStmt is pass, break, or continue.
type BranchStmt struct {
	TokPos Position
	Token  TokenType
}

// IfStmt is an if statement. An elif chain is an IfStmt as the sole
// element of Else.
type IfStmt struct {
	IfPos Position
	Cond  Expr
	Then  []Stmt
	Else  []Stmt
}

// ForStmt is "for Vars in X: Body".
type ForStmt struct {
	ForPos Position
	Vars   Expr
	X      Expr
	Body   []Stmt
}

// WhileStmt is "while Cond: Body".
type WhileStmt struct {
	WhilePos Position
	Cond     Expr
	Body     []Stmt
}

// AssignStmt is a plain (Op == EQ) or augmented assignment.
type AssignStmt struct {
	OpPos Position
	Op    TokenType
	LHS   Expr
	RHS   Expr
}

// ExprStmt is an expression evaluated for its effect.
type ExprStmt struct {
	X Expr
}

func (s *FuncDef) Pos() Position    { return s.DefPos }
func (s *ReturnStmt) Pos() Position { return s.ReturnPos }
func (s *BranchStmt) Pos() Position { return s.TokPos }
func (s *IfStmt) Pos() Position     { return s.IfPos }
func (s *ForStmt) Pos() Position    { return s.ForPos }
func (s *WhileStmt) Pos() Position  { return s.WhilePos }
func (s *AssignStmt) Pos() Position { return s.LHS.Pos() }
func (s *ExprStmt) Pos() Position   { return s.X.Pos() }
func (p *Param) Pos() Position      { return p.NamePos }

func (*FuncDef) stmtNode()    {}
func (*ReturnStmt) stmtNode() {}
func (*BranchStmt) stmtNode() {}
func (*IfStmt) stmtNode()     {}
func (*ForStmt) stmtNode()    {}
func (*WhileStmt) stmtNode()  {}
func (*AssignStmt) stmtNode() {}
func (*ExprStmt) stmtNode()   {}

// ParamNames returns the parameter names in declaration order.
func (s *FuncDef) ParamNames() []string {
	names := make([]string, len(s.Params))
	for i, p := range s.Params {
		names[i] = p.Name
	}
	return names
}

// RequiredParams returns the number of parameters without a default.
func (s *FuncDef) RequiredParams() int {
	n := 0
	for _, p := range s.Params {
		if p.Default == nil {
			n++
		}
	}
	return n
}

// Signature returns a human-readable signature such as "add(a, b=1)".
func (s *FuncDef) Signature() string {
	args := make([]string, len(s.Params))
	for i, p := range s.Params {
		if p.Default != nil {
			args[i] = p.Name + "=" + ExprString(p.Default)
		} else {
			args[i] = p.Name
		}
	}
	return s.Name + "(" + strings.Join(args, ", ") + ")"
}

// ---------- Expressions ----------

// Ident is a name reference.
type Ident struct {
	NamePos Position
	Name    string
}

// Literal is an int, float, or string literal.
// Value is int64, *big.Int for ints outside the int64 range, float64, or
// string.
type Literal struct {
	ValuePos Position
	Token    TokenType
	Raw      string
	Value    any
}

// UnaryExpr is "Op X" for +, -, not.
type UnaryExpr struct {
	OpPos Position
	Op    TokenType
	X     Expr
}

// BinaryExpr is "X Op Y".
type BinaryExpr struct {
	OpPos Position
	Op    TokenType
	X     Expr
	Y     Expr
}

// CondExpr is "True if Cond else False".
type CondExpr struct {
	IfPos Position
	Cond  Expr
	True  Expr
	False Expr
}

// CallExpr is "Fn(Args)". Keyword arguments appear as *KeywordArg.
type CallExpr struct {
	Fn     Expr
	Lparen Position
	Args   []Expr
}

// KeywordArg is "Name=Value" inside a call.
type KeywordArg struct {
	Name  *Ident
	Value Expr
}

// IndexExpr is "X[Index]".
type IndexExpr struct {
	X      Expr
	Lbrack Position
	Index  Expr
}

// SliceExpr is "X[Lo:Hi:Step]". Absent bounds are nil.
type SliceExpr struct {
	X      Expr
	Lbrack Position
	Lo     Expr
	Hi     Expr
	Step   Expr
}

// DotExpr is "X.Name".
type DotExpr struct {
	X    Expr
	Dot  Position
	Name *Ident
}

// TupleExpr is a comma-separated expression list, parenthesized or not.
type TupleExpr struct {
	Lparen Position // first element position when unparenthesized
	List   []Expr
}

// ListExpr is "[List]".
type ListExpr struct {
	Lbrack Position
	List   []Expr
}

// DictExpr is "{Key: Value, ...}".
type DictExpr struct {
	Lbrace  Position
	Entries []*DictEntry
}

// DictEntry is a single "Key: Value" pair.
type DictEntry struct {
	Key   Expr
	Value Expr
}

func (e *Ident) Pos() Position      { return e.NamePos }
func (e *Literal) Pos() Position    { return e.ValuePos }
func (e *UnaryExpr) Pos() Position  { return e.OpPos }
func (e *BinaryExpr) Pos() Position { return e.X.Pos() }
func (e *CondExpr) Pos() Position   { return e.True.Pos() }
func (e *CallExpr) Pos() Position   { return e.Fn.Pos() }
func (e *KeywordArg) Pos() Position { return e.Name.Pos() }
func (e *IndexExpr) Pos() Position  { return e.X.Pos() }
func (e *SliceExpr) Pos() Position  { return e.X.Pos() }
func (e *DotExpr) Pos() Position    { return e.X.Pos() }
func (e *TupleExpr) Pos() Position  { return e.Lparen }
func (e *ListExpr) Pos() Position   { return e.Lbrack }
func (e *DictExpr) Pos() Position   { return e.Lbrace }
func (e *DictEntry) Pos() Position  { return e.Key.Pos() }

func (*Ident) exprNode()      {}
func (*Literal) exprNode()    {}
func (*UnaryExpr) exprNode()  {}
func (*BinaryExpr) exprNode() {}
func (*CondExpr) exprNode()   {}
func (*CallExpr) exprNode()   {}
func (*KeywordArg) exprNode() {}
func (*IndexExpr) exprNode()  {}
func (*SliceExpr) exprNode()  {}
func (*DotExpr) exprNode()    {}
func (*TupleExpr) exprNode()  {}
func (*ListExpr) exprNode()   {}
func (*DictExpr) exprNode()   {}

// ExprString renders an expression back to dialect source.
func ExprString(e Expr) string {
	var sb strings.Builder
	writeExpr(&sb, e)
	return sb.String()
}

func writeExpr(sb *strings.Builder, e Expr) {
	switch e := e.(type) {
	case nil:
		sb.WriteString("None")
	case *Ident:
		sb.WriteString(e.Name)
	case *Literal:
		if e.Token == STRING {
			sb.WriteString(strconv.Quote(e.Value.(string)))
			return
		}
		sb.WriteString(e.Raw)
	case *UnaryExpr:
		sb.WriteString(e.Op.String())
		if e.Op == NOT {
			sb.WriteByte(' ')
		}
		writeExpr(sb, e.X)
	case *BinaryExpr:
		writeExpr(sb, e.X)
		sb.WriteString(" " + e.Op.String() + " ")
		writeExpr(sb, e.Y)
	case *CondExpr:
		writeExpr(sb, e.True)
		sb.WriteString(" if ")
		writeExpr(sb, e.Cond)
		sb.WriteString(" else ")
		writeExpr(sb, e.False)
	case *CallExpr:
		writeExpr(sb, e.Fn)
		sb.WriteByte('(')
		writeList(sb, e.Args)
		sb.WriteByte(')')
	case *KeywordArg:
		sb.WriteString(e.Name.Name + "=")
		writeExpr(sb, e.Value)
	case *IndexExpr:
		writeExpr(sb, e.X)
		sb.WriteByte('[')
		if t, ok := e.Index.(*TupleExpr); ok {
			writeList(sb, t.List)
		} else {
			writeExpr(sb, e.Index)
		}
		sb.WriteByte(']')
	case *SliceExpr:
		writeExpr(sb, e.X)
		sb.WriteByte('[')
		writeBound(sb, e.Lo)
		sb.WriteByte(':')
		writeBound(sb, e.Hi)
		if e.Step != nil {
			sb.WriteByte(':')
			writeExpr(sb, e.Step)
		}
		sb.WriteByte(']')
	case *DotExpr:
		writeExpr(sb, e.X)
		sb.WriteString("." + e.Name.Name)
	case *TupleExpr:
		sb.WriteByte('(')
		writeList(sb, e.List)
		if len(e.List) == 1 {
			sb.WriteByte(',')
		}
		sb.WriteByte(')')
	case *ListExpr:
		sb.WriteByte('[')
		writeList(sb, e.List)
		sb.WriteByte(']')
	case *DictExpr:
		sb.WriteByte('{')
		for i, entry := range e.Entries {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeExpr(sb, entry.Key)
			sb.WriteString(": ")
			writeExpr(sb, entry.Value)
		}
		sb.WriteByte('}')
	default:
		sb.WriteString("...")
	}
}

func writeList(sb *strings.Builder, list []Expr) {
	for i, x := range list {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeExpr(sb, x)
	}
}

func writeBound(sb *strings.Builder, e Expr) {
	if e != nil {
		writeExpr(sb, e)
	}
}
