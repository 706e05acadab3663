package lattice

import (
	"github.com/mrSundvoll/xun/internal/astutil"
	"github.com/mrSundvoll/xun/internal/cbast"
	"github.com/mrSundvoll/xun/internal/xunerr"
)

// Deducer threads a name -> Value map across a constants block,
// enforcing the lattice rules of spec.md §4.2. It is not runtime code: it
// only runs once, at decomposition time.
type Deducer struct {
	// Known is the set of annotated-function names: calls to these
	// produce Xun, all other calls produce Any.
	Known map[string]bool

	// Types records the deduced Value for every expression visited. No
	// decomposition pass reads it back; Decompose discards the Deducer
	// once the block has been checked.
	Types map[cbast.Expression]Value
}

// NewDeducer creates a Deducer seeded with the known annotated-function
// names.
func NewDeducer(known map[string]bool) *Deducer {
	return &Deducer{Known: known, Types: make(map[cbast.Expression]Value)}
}

// DeduceBlock type-deduces every statement of a (already sorted)
// constants block in order, threading a single root Env. It returns only
// an error; the final name -> Value map is left in env for the caller.
func (d *Deducer) DeduceBlock(env *Env, stmts []cbast.Statement) error {
	for _, stmt := range stmts {
		if err := d.deduceStmt(env, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (d *Deducer) deduceStmt(env *Env, stmt cbast.Statement) error {
	switch s := stmt.(type) {
	case *cbast.ExprStmt:
		_, err := d.deduce(env, s.Value)
		return err

	case *cbast.AssignStmt:
		valueType, err := d.deduce(env, s.Value)
		if err != nil {
			return err
		}
		return d.bindTarget(env, s.Target, valueType, true)

	default:
		return xunerr.NewXunSyntaxError("unsupported statement kind %T in constants block", stmt)
	}
}

// bindTarget implements spec.md §4.2's unpacking-assignment rule: project
// leaf types out of a structural Tuple value, or replicate a non-tuple
// value type to every leaf.
func (d *Deducer) bindTarget(env *Env, target cbast.Target, valueType Value, checkRebind bool) error {
	if name, ok := target.(*cbast.NameTarget); ok {
		if checkRebind && env.DefinedInAncestor(name.Name) {
			return xunerr.NewXunSyntaxError("cannot rebind outer name %q in constants block", name.Name)
		}
		env.Bind(name.Name, valueType)
		return nil
	}

	shape := astutil.TargetShape(target)
	leaves := astutil.FlattenAssignmentTargets(target)
	indices := astutil.IndicesFromShape(shape)

	for i, leaf := range leaves {
		leafType := projectType(valueType, indices[i])
		if checkRebind && env.DefinedInAncestor(leaf.Name) {
			return xunerr.NewXunSyntaxError("cannot rebind outer name %q in constants block", leaf.Name)
		}
		env.Bind(leaf.Name, leafType)
	}
	return nil
}

// projectType walks a multi-index path into a structural Tuple value,
// replicating the whole value at any point the structure stops being a
// Tuple (e.g. a starred leaf over a non-tuple, or any leaf of a value
// that isn't structurally known).
func projectType(v Value, index []int) Value {
	cur := v
	for _, i := range index {
		tup, ok := cur.(Tuple)
		if !ok {
			return v
		}
		if i < 0 || i >= len(tup.Elems) {
			return v
		}
		cur = tup.Elems[i]
	}
	return cur
}

func (d *Deducer) deduce(env *Env, e cbast.Expression) (Value, error) {
	v, err := d.deduceUncached(env, e)
	if err != nil {
		return nil, err
	}
	d.Types[e] = v
	return v, nil
}

func (d *Deducer) deduceUncached(env *Env, e cbast.Expression) (Value, error) {
	switch expr := e.(type) {
	case *cbast.Literal:
		return Any{}, nil

	case *cbast.Name:
		if v, ok := env.Lookup(expr.Value); ok {
			return v, nil
		}
		return Any{}, nil

	case *cbast.CallExpr:
		for _, a := range expr.Args {
			if _, err := d.deduce(env, a.Value); err != nil {
				return nil, err
			}
		}
		if d.Known[expr.Callee] {
			return Xun{}, nil
		}
		return Any{}, nil

	case *cbast.TupleExpr:
		elems := make([]Value, len(expr.Elems))
		for i, el := range expr.Elems {
			v, err := d.deduce(env, el)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return Tuple{Elems: elems}, nil

	case *cbast.ListExpr:
		elems := make([]Value, len(expr.Elems))
		for i, el := range expr.Elems {
			v, err := d.deduce(env, el)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
		return Tuple{Elems: elems}, nil

	case *cbast.DictExpr:
		for _, entry := range expr.Entries {
			if _, err := d.deduce(env, entry.Key); err != nil {
				return nil, err
			}
			if _, err := d.deduce(env, entry.Value); err != nil {
				return nil, err
			}
		}
		return Terminal{Tag: "Dict"}, nil

	case *cbast.SetExpr:
		if len(expr.Elems) == 0 {
			return Terminal{Tag: "Set"}, nil
		}
		first, err := d.deduce(env, expr.Elems[0])
		if err != nil {
			return nil, err
		}
		for _, el := range expr.Elems[1:] {
			v, err := d.deduce(env, el)
			if err != nil {
				return nil, err
			}
			if !Equal(first, v) {
				return nil, xunerr.NewXunSyntaxError("set literal elements must share a type, got %s and %s", first, v)
			}
		}
		return Terminal{Tag: "Set"}, nil

	case *cbast.ListComp:
		return d.deduceComprehension(env, []cbast.Expression{expr.Elt}, expr.Clause, true)

	case *cbast.SetComp:
		if _, err := d.deduceComprehension(env, []cbast.Expression{expr.Elt}, expr.Clause, false); err != nil {
			return nil, err
		}
		return Terminal{Tag: "Set"}, nil

	case *cbast.DictComp:
		if _, err := d.deduceComprehension(env, []cbast.Expression{expr.Key, expr.Value}, expr.Clause, false); err != nil {
			return nil, err
		}
		return Terminal{Tag: "Dict"}, nil

	case *cbast.GenExpr:
		if _, err := d.deduceComprehension(env, []cbast.Expression{expr.Elt}, expr.Clause, false); err != nil {
			return nil, err
		}
		return Terminal{Tag: "Iterator"}, nil

	case *cbast.BinExpr:
		left, err := d.deduce(env, expr.Left)
		if err != nil {
			return nil, err
		}
		right, err := d.deduce(env, expr.Right)
		if err != nil {
			return nil, err
		}
		if _, ok := left.(Xun); ok {
			return nil, xunerr.NewXunSyntaxError("cannot use deferred results as values")
		}
		if _, ok := right.(Xun); ok {
			return nil, xunerr.NewXunSyntaxError("cannot use deferred results as values")
		}
		return Any{}, nil

	case *cbast.IfExpr:
		if _, err := d.deduce(env, expr.Cond); err != nil {
			return nil, err
		}
		thenType, err := d.deduce(env, expr.Then)
		if err != nil {
			return nil, err
		}
		elseType, err := d.deduce(env, expr.Else)
		if err != nil {
			return nil, err
		}
		if Equal(thenType, elseType) {
			return thenType, nil
		}
		return Terminal{Tag: "Union"}, nil

	case *cbast.SubscriptExpr:
		valueType, err := d.deduce(env, expr.Value)
		if err != nil {
			return nil, err
		}
		if _, err := d.deduce(env, expr.Index); err != nil {
			return nil, err
		}
		if _, ok := valueType.(Xun); ok {
			return Xun{}, nil
		}
		if tup, ok := valueType.(Tuple); ok {
			if lit, ok := expr.Index.(*cbast.Literal); ok {
				if i, ok := lit.Value.(int); ok && i >= 0 && i < len(tup.Elems) {
					return tup.Elems[i], nil
				}
			}
		}
		return Any{}, nil

	case *cbast.UnsupportedExpr:
		return nil, xunerr.NewXunSyntaxError("%s not allowed in constants block", expr.Kind)

	default:
		return nil, xunerr.NewXunSyntaxError("unrecognized expression kind %T in constants block", e)
	}
}

// deduceComprehension visits a comprehension's iterable and
// element/key/value expressions in a child scope seeded with the loop
// target's projected type, per spec.md §4.2. When wantResult is true
// (list comprehensions, which produce a structural per-element tuple type)
// the element types are returned as a Tuple; otherwise the caller only
// cares about side effects (the recorded Types map and any error).
func (d *Deducer) deduceComprehension(env *Env, elts []cbast.Expression, clause cbast.Comprehension, wantResult bool) (Value, error) {
	iterType, err := d.deduce(env, clause.Iter)
	if err != nil {
		return nil, err
	}

	child := env.Child()
	if err := d.bindTarget(child, clause.Target, iterType, false); err != nil {
		return nil, err
	}

	results := make([]Value, len(elts))
	for i, elt := range elts {
		v, err := d.deduce(child, elt)
		if err != nil {
			return nil, err
		}
		results[i] = v
	}

	if !wantResult {
		return nil, nil
	}
	return Tuple{Elems: results}, nil
}
