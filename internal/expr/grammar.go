package expr

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Script is the top-level parse of an expression body: zero or more
// statements (only assignment and expression-statement are meaningful here)
// followed by a trailing expression whose value becomes the script result,
// the same shape a `return <body>` wrapper would produce.
type Script struct {
	Stmts []*Stmt `parser:"( @@ ';'? )*"`
}

type Stmt struct {
	Assign *Assign `parser:"  @@"`
	Expr   *OrExpr `parser:"| @@"`
}

type Assign struct {
	Name  string  `parser:"'local'? @Ident '='"`
	Value *OrExpr `parser:"@@"`
}

type OrExpr struct {
	Left  *AndExpr `parser:"@@"`
	Right []*AndExpr `parser:"( 'or' @@ )*"`
}

type AndExpr struct {
	Left  *CompareExpr   `parser:"@@"`
	Right []*CompareExpr `parser:"( 'and' @@ )*"`
}

type CompareExpr struct {
	Left  *ConcatExpr `parser:"@@"`
	Op    string      `parser:"( @( '==' | '~=' | '<=' | '>=' | '<' | '>' )"`
	Right *ConcatExpr `parser:"  @@ )?"`
}

type ConcatExpr struct {
	Left  *AddExpr    `parser:"@@"`
	Right []*AddExpr  `parser:"( '..' @@ )*"`
}

type AddExpr struct {
	Left *MulExpr   `parser:"@@"`
	Rest []*AddOp   `parser:"@@*"`
}

type AddOp struct {
	Op    string   `parser:"@( '+' | '-' )"`
	Right *MulExpr `parser:"@@"`
}

type MulExpr struct {
	Left *UnaryExpr `parser:"@@"`
	Rest []*MulOp   `parser:"@@*"`
}

type MulOp struct {
	Op    string     `parser:"@( '*' | '/' | '%' )"`
	Right *UnaryExpr `parser:"@@"`
}

type UnaryExpr struct {
	Op      string   `parser:"( @( '-' | 'not' | '#' )"`
	Operand *UnaryExpr `parser:"  @@ )"`
	Primary *Postfix `parser:"| @@"`
}

// Postfix handles member/index access after a primary term: vector swizzles
// (`.x`, `.y`, `.z`, `.w`) and table/vector indexing (`[n]`).
type Postfix struct {
	Primary *Primary  `parser:"@@"`
	Ops     []*PostOp `parser:"@@*"`
}

type PostOp struct {
	Field string  `parser:"  '.' @Ident"`
	Index *OrExpr `parser:"| '[' @@ ']'"`
}

type Primary struct {
	Number  *float64  `parser:"  @Float"`
	Int     *int64    `parser:"| @Int"`
	Str     *string   `parser:"| @String"`
	True    bool      `parser:"| @'true'"`
	False   bool      `parser:"| @'false'"`
	Nil     bool      `parser:"| @'nil'"`
	Table   *TableLit `parser:"| @@"`
	Call    *Call     `parser:"| @@"`
	Ident   *string   `parser:"| @Ident"`
	Sub     *OrExpr   `parser:"| '(' @@ ')'"`
}

// TableLit is a brace-delimited sequence literal; the substitutor renders
// longer-than-4 or mixed variable sequences in this form.
type TableLit struct {
	Elems []*OrExpr `parser:"'{' ( @@ ( ',' @@ )* )? '}'"`
}

// Call covers both builtin/sandbox function invocation (read, has, get,
// set, abs, sin, cos, sqrt, dot, min, max, vec2, vec3, vec4, and any
// user-defined [FUNCTION: name] scripts) with a uniform call syntax.
type Call struct {
	Name string    `parser:"@Ident"`
	Args []*OrExpr `parser:"'(' ( @@ ( ',' @@ )* )? ')'"`
}

var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "Comment", Pattern: `--[^\n]*`},
	{Name: "String", Pattern: `"(?:[^"\\]|\\.)*"`},
	{Name: "Float", Pattern: `\d+\.\d+`},
	{Name: "Int", Pattern: `\d+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Eq", Pattern: `==`},
	{Name: "Neq", Pattern: `~=`},
	{Name: "Leq", Pattern: `<=`},
	{Name: "Geq", Pattern: `>=`},
	{Name: "Concat", Pattern: `\.\.`},
	{Name: "Punct", Pattern: `[-+*/%<>=(),.\[\]{}#;]`},
})

var parser = participle.MustBuild[Script](
	participle.Lexer(exprLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.Unquote("String"),
	participle.UseLookahead(2),
)

// Parse compiles an expression body into a Script AST.
func Parse(body string) (*Script, error) {
	return parser.ParseString("", body)
}
