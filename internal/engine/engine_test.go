package engine

import (
	"strconv"
	"testing"

	"github.com/inipp/inipp/internal/diag"
)

// collectingDiag records every warning/error so a test can assert on them
// without requiring an exact string match elsewhere.
type collectingDiag struct {
	warnings []string
	errors   []string
}

func (d *collectingDiag) OnWarning(path, message string) { d.warnings = append(d.warnings, path+": "+message) }
func (d *collectingDiag) OnError(path, message string)   { d.errors = append(d.errors, path+": "+message) }

func buildString(t *testing.T, content string, opts Options) (map[string]map[string]string, *collectingDiag) {
	t.Helper()
	files := map[string]string{"root.ini": content}
	reader := func(path string) (string, bool) {
		c, ok := files[path]
		return c, ok
	}
	d := &collectingDiag{}
	pr := NewParser(Config{Options: opts, Reader: reader, Diag: d})
	result, _, err := pr.Build("root.ini")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	out := make(map[string]map[string]string)
	for name, sec := range result {
		out[name] = make(map[string]string)
		for k, v := range sec {
			out[name][k] = v.String()
		}
	}
	return out, d
}

// Basic substitution: a DEFAULTS value is visible to a plain section and
// substituted into a quoted, multi-word string.
func TestBuild_BasicSubstitution(t *testing.T) {
	content := "[DEFAULTS]\nSIZE=2.5\n[CAR]\nNAME=\"Fast $SIZE m\"\n"
	out, d := buildString(t, content, Options{})
	if len(d.errors) != 0 {
		t.Fatalf("unexpected errors: %v", d.errors)
	}
	car, ok := out["CAR"]
	if !ok {
		t.Fatalf("missing CAR section: %v", out)
	}
	if car["NAME"] != "Fast 2.5 m" {
		t.Fatalf("got NAME=%q", car["NAME"])
	}
}

// Template inheritance with a parameter: Red extends Base and supplies the
// value Base's own key references.
func TestBuild_TemplateInheritanceWithParameter(t *testing.T) {
	content := "[TEMPLATE: Base]\nCOLOR=$C\n[TEMPLATE: Red extends Base]\nC=red\n[OBJ: Red]\n"
	out, d := buildString(t, content, Options{})
	if len(d.errors) != 0 {
		t.Fatalf("unexpected errors: %v", d.errors)
	}
	obj, ok := out["OBJ"]
	if !ok {
		t.Fatalf("missing OBJ section: %v", out)
	}
	if obj["COLOR"] != "red" {
		t.Fatalf("got COLOR=%q", obj["COLOR"])
	}
}

// Parametrized slicing: ${LIST:size}, ${LIST:-1} and ${LIST:1:2:vec2}
// against a four-element list.
func TestBuild_ParametrizedSlicing(t *testing.T) {
	content := "[DEFAULTS]\nLIST=10,20,30,40\n" +
		"[BOX]\nN=${LIST:size}\nLAST=${LIST:-1}\nSLICE=${LIST:1:2:vec2}\n"
	out, d := buildString(t, content, Options{})
	if len(d.errors) != 0 {
		t.Fatalf("unexpected errors: %v", d.errors)
	}
	box, ok := out["BOX"]
	if !ok {
		t.Fatalf("missing BOX section: %v", out)
	}
	if box["N"] != "4" {
		t.Fatalf("got N=%q", box["N"])
	}
	if box["LAST"] != "40" {
		t.Fatalf("got LAST=%q", box["LAST"])
	}
	if box["SLICE"] != "10,20" {
		t.Fatalf("got SLICE=%q", box["SLICE"])
	}
}

// Generator: a template-body @OUTPUT references the loop index, and
// @GENERATOR expands it three times.
func TestBuild_GeneratorExpandsRows(t *testing.T) {
	content := "[TEMPLATE: Row]\n@OUTPUT=ROW_$1\nVAL=$1\n[@GENERATOR=Row, 3]\n"
	out, d := buildString(t, content, Options{})
	if len(d.errors) != 0 {
		t.Fatalf("unexpected errors: %v", d.errors)
	}
	for i := 1; i <= 3; i++ {
		name := "ROW_" + strconv.Itoa(i)
		sec, ok := out[name]
		if !ok {
			t.Fatalf("missing generated section %s: %v", name, out)
		}
		if sec["VAL"] != strconv.Itoa(i) {
			t.Fatalf("%s: got VAL=%q", name, sec["VAL"])
		}
	}
}

// Expression with a vector literal: Q=$"P * 2" scales each component of P.
func TestBuild_ExpressionWithVector(t *testing.T) {
	content := "[BOX]\nP=1,2,3\nQ=$\"P * 2\"\n"
	out, d := buildString(t, content, Options{})
	if len(d.errors) != 0 {
		t.Fatalf("unexpected errors: %v", d.errors)
	}
	box, ok := out["BOX"]
	if !ok {
		t.Fatalf("missing BOX section: %v", out)
	}
	if box["Q"] != "2,4,6" {
		t.Fatalf("got Q=%q", box["Q"])
	}
}

// ACTIVE=0 suppresses a section's content, collapsing it to a single
// ACTIVE=0 stub, unless --ignore-inactive drops it entirely.
func TestBuild_InactiveSectionCollapsesToStub(t *testing.T) {
	content := "[THING]\nACTIVE=0\nX=1\n"
	out, _ := buildString(t, content, Options{})
	thing, ok := out["THING"]
	if !ok {
		t.Fatalf("missing THING section: %v", out)
	}
	if len(thing) != 1 || thing["ACTIVE"] != "0" {
		t.Fatalf("got %v", thing)
	}

	out2, _ := buildString(t, content, Options{IgnoreInactive: true})
	if _, ok := out2["THING"]; ok {
		t.Fatalf("expected THING dropped with IgnoreInactive, got %v", out2)
	}
}

// Sequential section naming: "_..." suffixed sections get distinct numeric
// indices assigned at finalize, skipping any explicitly reserved index.
func TestBuild_SequentialNaming(t *testing.T) {
	content := "[ROW_1]\nX=explicit\n[ROW_...]\nX=a\n[ROW_...]\nX=b\n"
	out, d := buildString(t, content, Options{})
	if len(d.errors) != 0 {
		t.Fatalf("unexpected errors: %v", d.errors)
	}
	if out["ROW_1"]["X"] != "explicit" {
		t.Fatalf("got ROW_1=%v", out["ROW_1"])
	}
	seen := map[string]bool{}
	for name, sec := range out {
		if name == "ROW_1" {
			continue
		}
		seen[sec["X"]] = true
	}
	if !seen["a"] || !seen["b"] {
		t.Fatalf("expected a and b assigned distinct sequential names, got %v", out)
	}
	if _, ok := out["ROW_1"]; !ok {
		t.Fatalf("explicit ROW_1 missing: %v", out)
	}
}

// Include deduplication: including the same file twice with identical
// params only processes it once.
func TestBuild_IncludeDedupesIdenticalParams(t *testing.T) {
	files := map[string]string{
		"root.ini": "[INCLUDE]\nINCLUDE=child.ini\n[INCLUDE]\nINCLUDE=child.ini\n",
		"child.ini": "[LEAF]\nX=1\n",
	}
	reader := func(path string) (string, bool) {
		c, ok := files[path]
		return c, ok
	}
	d := &collectingDiag{}
	pr := NewParser(Config{Reader: reader, Diag: d})
	result, _, err := pr.Build("root.ini")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	count := 0
	for name := range result {
		if name == "LEAF" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected LEAF exactly once, got %d sections: %v", count, result)
	}
}

// Cycle detection: a file that (transitively) includes itself reports an
// error rather than recursing forever.
func TestBuild_CycleDetection(t *testing.T) {
	files := map[string]string{
		"a.ini": "[INCLUDE]\nINCLUDE=b.ini\n",
		"b.ini": "[INCLUDE]\nINCLUDE=a.ini\n",
	}
	reader := func(path string) (string, bool) {
		c, ok := files[path]
		return c, ok
	}
	d := &collectingDiag{}
	pr := NewParser(Config{Reader: reader, Diag: d})
	if _, _, err := pr.Build("a.ini"); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(d.errors) == 0 {
		t.Fatalf("expected a cycle error, got none")
	}
}

// Include with parameters: the same file included under two distinct
// parameter fingerprints is processed once per fingerprint, and the
// duplicate alpha inclusion is skipped.
func TestBuild_IncludeParamsAndFingerprint(t *testing.T) {
	files := map[string]string{
		"main.ini": "[INCLUDE]\nINCLUDE=part.ini\nNAME=alpha\n" +
			"[INCLUDE]\nINCLUDE=part.ini\nNAME=alpha\n" +
			"[INCLUDE]\nINCLUDE=part.ini\nNAME=beta\n",
		"part.ini": "[S_...]\nWHO=$NAME\n",
	}
	reader := func(path string) (string, bool) {
		c, ok := files[path]
		return c, ok
	}
	d := &collectingDiag{}
	pr := NewParser(Config{Reader: reader, Diag: d})
	result, _, err := pr.Build("main.ini")
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(d.errors) != 0 {
		t.Fatalf("unexpected errors: %v", d.errors)
	}
	s0, ok0 := result["S_0"]
	s1, ok1 := result["S_1"]
	if !ok0 || !ok1 {
		t.Fatalf("expected S_0 and S_1, got %v", result)
	}
	if s0["WHO"].String() != "alpha" || s1["WHO"].String() != "beta" {
		t.Fatalf("got S_0=%v S_1=%v", s0, s1)
	}
	if _, ok := result["S_2"]; ok {
		t.Fatalf("duplicate alpha inclusion should have been skipped: %v", result)
	}
}

// A section body can apply a mixin directly, with inline "k=v" pairs
// acting as tier-1 overrides for the application.
func TestBuild_MixinAppliedFromSectionBody(t *testing.T) {
	content := "[MIXIN: Pad]\nMARGIN=$m\n[BOX]\n@MIXIN=Pad, m=4\nW=10\n"
	out, d := buildString(t, content, Options{})
	if len(d.errors) != 0 {
		t.Fatalf("unexpected errors: %v", d.errors)
	}
	box := out["BOX"]
	if box["MARGIN"] != "4" || box["W"] != "10" {
		t.Fatalf("got %v", box)
	}
}

// An expression raising with the discard sentinel suppresses the enclosing
// key silently; other keys and the section survive.
func TestBuild_DiscardSentinelDropsKeySilently(t *testing.T) {
	content := "[A]\nX=$\"error(\\\"__discardError__\\\")\"\nY=1\n"
	out, d := buildString(t, content, Options{})
	if len(d.errors) != 0 {
		t.Fatalf("discard must not report an error: %v", d.errors)
	}
	a := out["A"]
	if _, ok := a["X"]; ok {
		t.Fatalf("expected X dropped, got %v", a)
	}
	if a["Y"] != "1" {
		t.Fatalf("got %v", a)
	}
}

// An ordinary expression failure keeps the key with an empty piece and
// reports an error.
func TestBuild_ExpressionErrorKeepsKey(t *testing.T) {
	content := "[A]\nX=$\"1 / 0\"\n"
	out, d := buildString(t, content, Options{})
	if len(d.errors) == 0 {
		t.Fatal("expected a reported expression error")
	}
	if _, ok := out["A"]["X"]; !ok {
		t.Fatalf("key should survive a failed expression, got %v", out["A"])
	}
}

// Entries before the first header land in the untitled section.
func TestBuild_UntitledSectionHoldsTopOfFileEntries(t *testing.T) {
	content := "VERSION=3\n[A]\nX=1\n"
	out, d := buildString(t, content, Options{})
	if len(d.errors) != 0 {
		t.Fatalf("unexpected errors: %v", d.errors)
	}
	if out[""]["VERSION"] != "3" {
		t.Fatalf("got untitled section %v", out[""])
	}
	if out["A"]["X"] != "1" {
		t.Fatalf("got %v", out["A"])
	}
}

// EraseReferenced removes the variables a template resolution consumed
// from the finished section.
func TestBuild_EraseReferencedRemovesVariables(t *testing.T) {
	content := "[TEMPLATE: Base]\nCOLOR=$C\n[TEMPLATE: Red extends Base]\nC=red\n[OBJ: Red]\n"
	out, d := buildString(t, content, Options{EraseReferenced: true})
	if len(d.errors) != 0 {
		t.Fatalf("unexpected errors: %v", d.errors)
	}
	obj := out["OBJ"]
	if obj["COLOR"] != "red" {
		t.Fatalf("got %v", obj)
	}
	if _, ok := obj["C"]; ok {
		t.Fatalf("expected C erased, got %v", obj)
	}
}

// A final-pass unresolved reference renders back as $Name and warns.
func TestBuild_MissingVariableWarnsAndRendersBareName(t *testing.T) {
	content := "[A]\nX=$Nope\n"
	out, d := buildString(t, content, Options{})
	if out["A"]["X"] != "$Nope" {
		t.Fatalf("got %v", out["A"])
	}
	if len(d.warnings) == 0 {
		t.Fatal("expected a missing-variable warning")
	}
}

// A required reference that stays unresolved drops the enclosing key but
// keeps the section.
func TestBuild_RequiredMissingDropsKey(t *testing.T) {
	content := "[A]\nX=${Nope:required}\nY=1\n"
	out, _ := buildString(t, content, Options{})
	a := out["A"]
	if _, ok := a["X"]; ok {
		t.Fatalf("expected X dropped, got %v", a)
	}
	if a["Y"] != "1" {
		t.Fatalf("got %v", a)
	}
}

// An explicit 0 index against the 1-based slice syntax reports an error
// but still resolves.
func TestBuild_ZeroIndexReportsError(t *testing.T) {
	content := "[A]\nLIST=1,2\nX=${LIST:0}\n"
	_, d := buildString(t, content, Options{})
	if len(d.errors) == 0 {
		t.Fatal("expected a zero-index error")
	}
}

// Generator parameter lines ("<generator-key>: name = value") reach every
// generated section as scope values.
func TestBuild_GeneratorParamsPassedToSections(t *testing.T) {
	content := "[TEMPLATE: Col]\n@OUTPUT=C_$1\nVAL=$w\n" +
		"[GRID]\n@GENERATOR=Col, 2\n@GENERATOR: w = 9\n"
	out, d := buildString(t, content, Options{})
	if len(d.errors) != 0 {
		t.Fatalf("unexpected errors: %v", d.errors)
	}
	for _, name := range []string{"C_1", "C_2"} {
		sec, ok := out[name]
		if !ok {
			t.Fatalf("missing %s: %v", name, out)
		}
		if sec["VAL"] != "9" {
			t.Fatalf("%s: got VAL=%q", name, sec["VAL"])
		}
	}
}

// @GENERATOR_STARTING_INDEX shifts the exposed loop indices.
func TestBuild_GeneratorStartingIndex(t *testing.T) {
	content := "[TEMPLATE: Row]\n@OUTPUT=R_$1\nVAL=$1\n" +
		"[G]\n@GENERATOR=Row, 2\n@GENERATOR_STARTING_INDEX=5\n"
	out, d := buildString(t, content, Options{})
	if len(d.errors) != 0 {
		t.Fatalf("unexpected errors: %v", d.errors)
	}
	if out["R_5"]["VAL"] != "5" || out["R_6"]["VAL"] != "6" {
		t.Fatalf("got %v", out)
	}
}

// When two parent templates both define a key, the first-listed parent
// wins.
func TestBuild_FirstListedParentWins(t *testing.T) {
	content := "[TEMPLATE: A]\nK=from-a\n[TEMPLATE: B]\nK=from-b\n" +
		"[TEMPLATE: Both extends A, B]\n[OBJ: Both]\n"
	out, d := buildString(t, content, Options{})
	if len(d.errors) != 0 {
		t.Fatalf("unexpected errors: %v", d.errors)
	}
	if out["OBJ"]["K"] != "from-a" {
		t.Fatalf("got %v", out["OBJ"])
	}
}

// Keys ending in "_..." receive the smallest free index within their
// group at finalize, skipping explicitly numbered siblings.
func TestBuild_AutoIncrementKeys(t *testing.T) {
	content := "[A]\nITEM_1=explicit\nITEM_...=first\nITEM_...=second\n"
	out, d := buildString(t, content, Options{})
	if len(d.errors) != 0 {
		t.Fatalf("unexpected errors: %v", d.errors)
	}
	a := out["A"]
	if a["ITEM_1"] != "explicit" {
		t.Fatalf("got %v", a)
	}
	if a["ITEM_0"] == "" || a["ITEM_2"] == "" {
		t.Fatalf("expected ITEM_0 and ITEM_2 assigned, got %v", a)
	}
}

// An early-resolve template's values land at header open, so body lines
// can override them; untouched keys survive.
func TestBuild_EarlyResolveTemplateOverridableByBody(t *testing.T) {
	content := "[TEMPLATE: E earlyresolve]\nX=1\nY=1\n[S: E]\nX=2\n"
	out, d := buildString(t, content, Options{})
	if len(d.errors) != 0 {
		t.Fatalf("unexpected errors: %v", d.errors)
	}
	s := out["S"]
	if s["X"] != "2" || s["Y"] != "1" {
		t.Fatalf("got %v", s)
	}
}

// A [FUNCTION: name] block installs a callable into the expression
// sandbox.
func TestBuild_UserFunctionCallableFromExpression(t *testing.T) {
	content := "[FUNCTION: double]\nARGUMENTS=x\nCODE=x * 2\n[A]\nY=$\"double(21)\"\n"
	out, d := buildString(t, content, Options{})
	if len(d.errors) != 0 {
		t.Fatalf("unexpected errors: %v", d.errors)
	}
	if out["A"]["Y"] != "42" {
		t.Fatalf("got %v", out["A"])
	}
}

// A bare '$' inside a single-quoted piece marks an explicitly emptied
// variable: it resolves to nothing in the final output.
func TestBuild_SingleQuoteDollarEmpties(t *testing.T) {
	content := "[A]\nX='$'\n"
	out, d := buildString(t, content, Options{})
	if len(d.errors) != 0 {
		t.Fatalf("unexpected errors: %v", d.errors)
	}
	if out["A"]["X"] != "" {
		t.Fatalf("got %q", out["A"]["X"])
	}
}

var _ diag.Handler = (*collectingDiag)(nil)
