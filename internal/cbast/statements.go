package cbast

// AssignStmt binds the value of Value to Target: either a single Name, a
// TupleTarget destructuring a tuple-shaped value, or a StarTarget absorbing
// a slice's slack.
type AssignStmt struct {
	Target Target
	Value  Expression
}

func (s *AssignStmt) statementNode() {}
func (s *AssignStmt) Accept(v Visitor) { v.VisitAssignStmt(s) }
func (s *AssignStmt) String() string {
	return s.Target.String() + " = " + s.Value.String()
}

// ExprStmt is a bare expression statement: a call kept only for its
// embedded CallNode edges, e.g. `sign(message('hi'))` with no binding.
type ExprStmt struct {
	Value Expression
}

func (s *ExprStmt) statementNode() {}
func (s *ExprStmt) Accept(v Visitor) { v.VisitExprStmt(s) }
func (s *ExprStmt) String() string   { return s.Value.String() }
