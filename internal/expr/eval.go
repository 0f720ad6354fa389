package expr

import (
	"fmt"
	"math"
	"strings"
)

// DiscardSentinel is the substring an expression's error message must
// contain to suppress the enclosing key silently.
const DiscardSentinel = "__discardError__"

// EvalError wraps a runtime failure raised while evaluating a script body.
type EvalError struct {
	msg string
}

func (e *EvalError) Error() string { return e.msg }

// Discard reports whether an error should be treated as the silent-discard
// case rather than a reported error.
func Discard(err error) bool {
	return err != nil && strings.Contains(err.Error(), DiscardSentinel)
}

func raise(format string, args ...any) error {
	return &EvalError{msg: fmt.Sprintf(format, args...)}
}

// UserFunc is a script function installed from a `[FUNCTION: name]` block
//: ARGUMENTS names its parameters, CODE is its body.
type UserFunc struct {
	Args []string
	Body *Script
}

// Interpreter evaluates parsed Scripts against a Host and a table of
// user-defined functions, one instance per parser.
type Interpreter struct {
	Host  Host
	Funcs map[string]*UserFunc

	// Vars, when non-nil, resolves free identifiers that are neither
	// locals nor function names — the engine points it at the current
	// section's scope for the duration of one evaluation, so a body can
	// reference a variable without the '$' prefix.
	Vars func(name string) (Val, bool)
}

// NewInterpreter returns an Interpreter with an empty function table.
func NewInterpreter(host Host) *Interpreter {
	if host == nil {
		host = NullHost{}
	}
	return &Interpreter{Host: host, Funcs: map[string]*UserFunc{}}
}

// Install registers a user-defined function, overwriting any prior
// definition of the same name.
func (in *Interpreter) Install(name string, fn *UserFunc) {
	in.Funcs[name] = fn
}

// Eval parses and runs body, returning the script's result value (the
// trailing expression statement's value) or an evaluation error. A parse
// failure is itself reported as an *EvalError so callers can apply the
// same discard/error-report logic uniformly.
func (in *Interpreter) Eval(body string) (Val, error) {
	script, err := Parse(body)
	if err != nil {
		return Nil(), raise("%s", err.Error())
	}
	return in.run(script, map[string]Val{})
}

func (in *Interpreter) run(s *Script, locals map[string]Val) (Val, error) {
	result := Nil()
	for _, stmt := range s.Stmts {
		switch {
		case stmt.Assign != nil:
			v, err := in.evalOr(stmt.Assign.Value, locals)
			if err != nil {
				return Nil(), err
			}
			locals[stmt.Assign.Name] = v
			result = v
		case stmt.Expr != nil:
			v, err := in.evalOr(stmt.Expr, locals)
			if err != nil {
				return Nil(), err
			}
			result = v
		}
	}
	return result, nil
}

func (in *Interpreter) evalOr(e *OrExpr, locals map[string]Val) (Val, error) {
	left, err := in.evalAnd(e.Left, locals)
	if err != nil {
		return Nil(), err
	}
	for _, rhs := range e.Right {
		if left.Truthy() {
			continue
		}
		left, err = in.evalAnd(rhs, locals)
		if err != nil {
			return Nil(), err
		}
	}
	return left, nil
}

func (in *Interpreter) evalAnd(e *AndExpr, locals map[string]Val) (Val, error) {
	left, err := in.evalCompare(e.Left, locals)
	if err != nil {
		return Nil(), err
	}
	for _, rhs := range e.Right {
		if !left.Truthy() {
			continue
		}
		left, err = in.evalCompare(rhs, locals)
		if err != nil {
			return Nil(), err
		}
	}
	return left, nil
}

func (in *Interpreter) evalCompare(e *CompareExpr, locals map[string]Val) (Val, error) {
	left, err := in.evalConcat(e.Left, locals)
	if err != nil {
		return Nil(), err
	}
	if e.Op == "" || e.Right == nil {
		return left, nil
	}
	right, err := in.evalConcat(e.Right, locals)
	if err != nil {
		return Nil(), err
	}
	return compareVals(e.Op, left, right)
}

func compareVals(op string, a, b Val) (Val, error) {
	if af, aok := a.AsFloat(); aok {
		if bf, bok := b.AsFloat(); bok {
			switch op {
			case "==":
				return Boolean(af == bf), nil
			case "~=":
				return Boolean(af != bf), nil
			case "<":
				return Boolean(af < bf), nil
			case ">":
				return Boolean(af > bf), nil
			case "<=":
				return Boolean(af <= bf), nil
			case ">=":
				return Boolean(af >= bf), nil
			}
		}
	}
	as, bs := a.AsString(), b.AsString()
	switch op {
	case "==":
		return Boolean(as == bs), nil
	case "~=":
		return Boolean(as != bs), nil
	case "<":
		return Boolean(as < bs), nil
	case ">":
		return Boolean(as > bs), nil
	case "<=":
		return Boolean(as <= bs), nil
	case ">=":
		return Boolean(as >= bs), nil
	}
	return Nil(), raise("unknown comparison operator %q", op)
}

func (in *Interpreter) evalConcat(e *ConcatExpr, locals map[string]Val) (Val, error) {
	left, err := in.evalAdd(e.Left, locals)
	if err != nil {
		return Nil(), err
	}
	var b strings.Builder
	b.WriteString(left.AsString())
	for _, rhs := range e.Right {
		r, err := in.evalAdd(rhs, locals)
		if err != nil {
			return Nil(), err
		}
		b.WriteString(r.AsString())
	}
	if len(e.Right) == 0 {
		return left, nil
	}
	return String(b.String()), nil
}

func (in *Interpreter) evalAdd(e *AddExpr, locals map[string]Val) (Val, error) {
	left, err := in.evalMul(e.Left, locals)
	if err != nil {
		return Nil(), err
	}
	for _, op := range e.Rest {
		right, err := in.evalMul(op.Right, locals)
		if err != nil {
			return Nil(), err
		}
		left, err = arith(op.Op, left, right)
		if err != nil {
			return Nil(), err
		}
	}
	return left, nil
}

func (in *Interpreter) evalMul(e *MulExpr, locals map[string]Val) (Val, error) {
	left, err := in.evalUnary(e.Left, locals)
	if err != nil {
		return Nil(), err
	}
	for _, op := range e.Rest {
		right, err := in.evalUnary(op.Right, locals)
		if err != nil {
			return Nil(), err
		}
		left, err = arith(op.Op, left, right)
		if err != nil {
			return Nil(), err
		}
	}
	return left, nil
}

// arith applies +,-,*,/,% componentwise across vec values, or numerically
// for scalars, matching the stdlib blob's vec2/vec3/vec4 operator overloads.
func arith(op string, a, b Val) (Val, error) {
	if a.Kind == KindVec || b.Kind == KindVec {
		return vecArith(op, a, b)
	}
	af, aok := a.AsFloat()
	bf, bok := b.AsFloat()
	if !aok || !bok {
		if op == "+" {
			return String(a.AsString() + b.AsString()), nil
		}
		return Nil(), raise("arithmetic on non-numeric value")
	}
	switch op {
	case "+":
		return Number(af + bf), nil
	case "-":
		return Number(af - bf), nil
	case "*":
		return Number(af * bf), nil
	case "/":
		if bf == 0 {
			return Nil(), raise("division by zero")
		}
		return Number(af / bf), nil
	case "%":
		return Number(math.Mod(af, bf)), nil
	}
	return Nil(), raise("unknown operator %q", op)
}

func vecArith(op string, a, b Val) (Val, error) {
	av, aIsVec := asVec(a)
	bv, bIsVec := asVec(b)
	switch {
	case aIsVec && bIsVec:
		if len(av) != len(bv) {
			return Nil(), raise("vector arity mismatch")
		}
		out := make([]float64, len(av))
		for i := range av {
			r, err := arith(op, Number(av[i]), Number(bv[i]))
			if err != nil {
				return Nil(), err
			}
			out[i] = r.Num
		}
		return VecOf(out...), nil
	case aIsVec:
		scalar, ok := b.AsFloat()
		if !ok {
			return Nil(), raise("arithmetic on non-numeric value")
		}
		out := make([]float64, len(av))
		for i := range av {
			r, _ := arith(op, Number(av[i]), Number(scalar))
			out[i] = r.Num
		}
		return VecOf(out...), nil
	default:
		scalar, ok := a.AsFloat()
		if !ok {
			return Nil(), raise("arithmetic on non-numeric value")
		}
		out := make([]float64, len(bv))
		for i := range bv {
			r, _ := arith(op, Number(scalar), Number(bv[i]))
			out[i] = r.Num
		}
		return VecOf(out...), nil
	}
}

func asVec(v Val) ([]float64, bool) {
	if v.Kind == KindVec {
		return v.Vec, true
	}
	return nil, false
}

func (in *Interpreter) evalUnary(e *UnaryExpr, locals map[string]Val) (Val, error) {
	if e.Op == "" {
		return in.evalPostfix(e.Primary, locals)
	}
	v, err := in.evalUnary(e.Operand, locals)
	if err != nil {
		return Nil(), err
	}
	switch e.Op {
	case "-":
		if v.Kind == KindVec {
			out := make([]float64, len(v.Vec))
			for i, x := range v.Vec {
				out[i] = -x
			}
			return VecOf(out...), nil
		}
		f, ok := v.AsFloat()
		if !ok {
			return Nil(), raise("negation of non-numeric value")
		}
		return Number(-f), nil
	case "not":
		return Boolean(!v.Truthy()), nil
	case "#":
		switch v.Kind {
		case KindTable:
			return Number(float64(len(v.Table))), nil
		case KindString:
			return Number(float64(len(v.Str))), nil
		case KindVec:
			return Number(float64(len(v.Vec))), nil
		}
		return Number(0), nil
	}
	return Nil(), raise("unknown unary operator %q", e.Op)
}

func (in *Interpreter) evalPostfix(e *Postfix, locals map[string]Val) (Val, error) {
	v, err := in.evalPrimary(e.Primary, locals)
	if err != nil {
		return Nil(), err
	}
	for _, op := range e.Ops {
		if op.Field != "" {
			v, err = fieldAccess(v, op.Field)
			if err != nil {
				return Nil(), err
			}
			continue
		}
		idx, err := in.evalOr(op.Index, locals)
		if err != nil {
			return Nil(), err
		}
		v, err = indexAccess(v, idx)
		if err != nil {
			return Nil(), err
		}
	}
	return v, nil
}

func fieldAccess(v Val, field string) (Val, error) {
	if v.Kind == KindVec {
		idx := map[string]int{"x": 0, "y": 1, "z": 2, "w": 3}[field]
		if idx >= len(v.Vec) {
			return Nil(), raise("vector has no component %q", field)
		}
		return Number(v.Vec[idx]), nil
	}
	return Nil(), raise("cannot access field %q", field)
}

func indexAccess(v Val, idx Val) (Val, error) {
	i, ok := idx.AsFloat()
	if !ok {
		return Nil(), raise("index must be numeric")
	}
	n := int(i)
	switch v.Kind {
	case KindTable:
		if n < 1 || n > len(v.Table) {
			return Nil(), nil
		}
		return v.Table[n-1], nil
	case KindVec:
		if n < 1 || n > len(v.Vec) {
			return Nil(), nil
		}
		return Number(v.Vec[n-1]), nil
	}
	return Nil(), raise("cannot index value")
}

func (in *Interpreter) evalPrimary(p *Primary, locals map[string]Val) (Val, error) {
	switch {
	case p.Number != nil:
		return Number(*p.Number), nil
	case p.Int != nil:
		return Number(float64(*p.Int)), nil
	case p.Str != nil:
		return String(*p.Str), nil
	case p.True:
		return Boolean(true), nil
	case p.False:
		return Boolean(false), nil
	case p.Nil:
		return Nil(), nil
	case p.Table != nil:
		elems := make([]Val, len(p.Table.Elems))
		for i, e := range p.Table.Elems {
			v, err := in.evalOr(e, locals)
			if err != nil {
				return Nil(), err
			}
			elems[i] = v
		}
		return Table(elems...), nil
	case p.Call != nil:
		return in.evalCall(p.Call, locals)
	case p.Ident != nil:
		if v, ok := locals[*p.Ident]; ok {
			return v, nil
		}
		if in.Vars != nil {
			if v, ok := in.Vars(*p.Ident); ok {
				return v, nil
			}
		}
		return Nil(), nil
	case p.Sub != nil:
		return in.evalOr(p.Sub, locals)
	}
	return Nil(), raise("empty expression")
}

func (in *Interpreter) evalCall(c *Call, locals map[string]Val) (Val, error) {
	args := make([]Val, len(c.Args))
	for i, a := range c.Args {
		v, err := in.evalOr(a, locals)
		if err != nil {
			return Nil(), err
		}
		args[i] = v
	}
	if fn, ok := stdlib[c.Name]; ok {
		return fn(args)
	}
	if c.Name == "read" {
		return in.callRead(args)
	}
	if c.Name == "has" {
		return in.callHas(args)
	}
	if c.Name == "get" {
		return in.callGet(args)
	}
	if c.Name == "set" {
		return in.callSet(args)
	}
	if uf, ok := in.Funcs[c.Name]; ok {
		return in.callUser(uf, args)
	}
	return Nil(), raise("unknown function %q", c.Name)
}

func (in *Interpreter) callUser(fn *UserFunc, args []Val) (Val, error) {
	scope := map[string]Val{}
	for i, name := range fn.Args {
		if i < len(args) {
			scope[name] = args[i]
		} else {
			scope[name] = Nil()
		}
	}
	return in.run(fn.Body, scope)
}

func (in *Interpreter) callRead(args []Val) (Val, error) {
	if len(args) == 0 {
		return Nil(), raise("read() requires a key")
	}
	def := Nil()
	if len(args) > 1 {
		def = args[1]
	}
	v, _ := in.Host.Read(args[0].AsString(), def)
	return v, nil
}

func (in *Interpreter) callHas(args []Val) (Val, error) {
	section, key, value := argString(args, 0), argString(args, 1), argString(args, 2)
	return Boolean(in.Host.Has(section, key, value)), nil
}

func (in *Interpreter) callGet(args []Val) (Val, error) {
	if len(args) < 2 {
		return Nil(), raise("get() requires section and key")
	}
	def := Nil()
	if len(args) > 2 {
		def = args[2]
	}
	v, ok := in.Host.Get(args[0].AsString(), args[1].AsString(), def)
	if !ok {
		return Nil(), nil
	}
	return v, nil
}

func (in *Interpreter) callSet(args []Val) (Val, error) {
	if len(args) < 3 {
		return Nil(), raise("set() requires section, key, and value")
	}
	n := in.Host.Set(args[0].AsString(), args[1].AsString(), args[2])
	return Number(float64(n)), nil
}

func argString(args []Val, i int) string {
	if i >= len(args) {
		return ""
	}
	return args[i].AsString()
}

// stdlib implements the built-in function table: vec2/vec3/
// vec4 constructors and the math/aggregate aliases built on top of them.
var stdlib = map[string]func([]Val) (Val, error){
	"vec2": func(a []Val) (Val, error) { return vecCtor(a, 2) },
	"vec3": func(a []Val) (Val, error) { return vecCtor(a, 3) },
	"vec4": func(a []Val) (Val, error) { return vecCtor(a, 4) },
	"abs": func(a []Val) (Val, error) { return unaryMath(a, math.Abs) },
	"sin": func(a []Val) (Val, error) { return unaryMath(a, math.Sin) },
	"cos": func(a []Val) (Val, error) { return unaryMath(a, math.Cos) },
	"sqrt": func(a []Val) (Val, error) { return unaryMath(a, math.Sqrt) },
	"floor": func(a []Val) (Val, error) { return unaryMath(a, math.Floor) },
	"ceil": func(a []Val) (Val, error) { return unaryMath(a, math.Ceil) },
	"pi": func([]Val) (Val, error) { return Number(math.Pi), nil },
	"dot": func(a []Val) (Val, error) {
		if len(a) != 2 {
			return Nil(), raise("dot() requires two vectors")
		}
		x, xok := asVec(a[0])
		y, yok := asVec(a[1])
		if !xok || !yok || len(x) != len(y) {
			return Nil(), raise("dot() requires vectors of equal arity")
		}
		var sum float64
		for i := range x {
			sum += x[i] * y[i]
		}
		return Number(sum), nil
	},
	"min": func(a []Val) (Val, error) { return minmax(a, false) },
	"max": func(a []Val) (Val, error) { return minmax(a, true) },
	"error": func(a []Val) (Val, error) {
		if len(a) == 0 {
			return Nil(), raise("error")
		}
		return Nil(), raise("%s", a[0].AsString())
	},
}

func vecCtor(args []Val, n int) (Val, error) {
	if len(args) == 1 && args[0].Kind == KindVec && len(args[0].Vec) == n {
		return args[0], nil
	}
	if len(args) != n {
		return Nil(), raise("vec%d() requires %d components", n, n)
	}
	out := make([]float64, n)
	for i, a := range args {
		f, ok := a.AsFloat()
		if !ok {
			return Nil(), raise("vec%d() requires numeric components", n)
		}
		out[i] = f
	}
	return VecOf(out...), nil
}

func unaryMath(args []Val, fn func(float64) float64) (Val, error) {
	if len(args) != 1 {
		return Nil(), raise("expected exactly one argument")
	}
	if v, ok := asVec(args[0]); ok {
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = fn(x)
		}
		return VecOf(out...), nil
	}
	f, ok := args[0].AsFloat()
	if !ok {
		return Nil(), raise("expected a numeric argument")
	}
	return Number(fn(f)), nil
}

func minmax(args []Val, wantMax bool) (Val, error) {
	if len(args) == 0 {
		return Nil(), raise("expected at least one argument")
	}
	best, ok := args[0].AsFloat()
	if !ok {
		return Nil(), raise("expected numeric arguments")
	}
	for _, a := range args[1:] {
		f, ok := a.AsFloat()
		if !ok {
			return Nil(), raise("expected numeric arguments")
		}
		if (wantMax && f > best) || (!wantMax && f < best) {
			best = f
		}
	}
	return Number(best), nil
}
