package expr

import "testing"

type fakeHost struct {
	reads map[string]Val
	sets  []string
}

func (h *fakeHost) Read(key string, def Val) (Val, bool) {
	if v, ok := h.reads[key]; ok {
		return v, true
	}
	return def, !def.IsNil()
}

func (h *fakeHost) Has(section, key, value string) bool { return section == "Enemy" }

func (h *fakeHost) Get(section, key string, def Val) (Val, bool) {
	if section == "Enemy" && key == "hp" {
		return CoerceLike(Number(100), def), true
	}
	return Nil(), false
}

func (h *fakeHost) Set(section, key string, value Val) int {
	h.sets = append(h.sets, section+"."+key+"="+value.AsString())
	return 1
}

func mustEval(t *testing.T, body string, host Host) Val {
	t.Helper()
	in := NewInterpreter(host)
	v, err := in.Eval(body)
	if err != nil {
		t.Fatalf("Eval(%q) error: %v", body, err)
	}
	return v
}

func TestEval_Arithmetic(t *testing.T) {
	v := mustEval(t, "1 + 2 * 3", NullHost{})
	if f, _ := v.AsFloat(); f != 7 {
		t.Fatalf("got %v, want 7", f)
	}
}

func TestEval_StringConcat(t *testing.T) {
	v := mustEval(t, `"a" .. "b"`, NullHost{})
	if v.AsString() != "ab" {
		t.Fatalf("got %q", v.AsString())
	}
}

func TestEval_Comparison(t *testing.T) {
	v := mustEval(t, "2 < 3", NullHost{})
	if !v.Truthy() {
		t.Fatal("expected true")
	}
}

func TestEval_Vec3Construction(t *testing.T) {
	v := mustEval(t, "vec3(1,2,3)", NullHost{})
	if v.Kind != KindVec || len(v.Vec) != 3 {
		t.Fatalf("got %+v", v)
	}
}

func TestEval_VecArithmeticComponentwise(t *testing.T) {
	v := mustEval(t, "vec2(1,2) + vec2(3,4)", NullHost{})
	if v.Kind != KindVec || v.Vec[0] != 4 || v.Vec[1] != 6 {
		t.Fatalf("got %+v", v)
	}
}

func TestEval_Dot(t *testing.T) {
	v := mustEval(t, "dot(vec2(1,0), vec2(0,1))", NullHost{})
	if f, _ := v.AsFloat(); f != 0 {
		t.Fatalf("got %v, want 0", f)
	}
}

func TestEval_VectorSwizzle(t *testing.T) {
	v := mustEval(t, "vec3(1,2,3).y", NullHost{})
	if f, _ := v.AsFloat(); f != 2 {
		t.Fatalf("got %v, want 2", f)
	}
}

func TestEval_MinMax(t *testing.T) {
	if f, _ := mustEval(t, "max(1, 5, 3)", NullHost{}).AsFloat(); f != 5 {
		t.Fatalf("max got %v", f)
	}
	if f, _ := mustEval(t, "min(1, 5, 3)", NullHost{}).AsFloat(); f != 1 {
		t.Fatalf("min got %v", f)
	}
}

func TestEval_ReadCallback(t *testing.T) {
	host := &fakeHost{reads: map[string]Val{"difficulty": Number(2)}}
	v := mustEval(t, `read("difficulty")`, host)
	if f, _ := v.AsFloat(); f != 2 {
		t.Fatalf("got %v", f)
	}
}

func TestEval_HasAndGetCallbacks(t *testing.T) {
	host := &fakeHost{}
	v := mustEval(t, `has("Enemy")`, host)
	if !v.Truthy() {
		t.Fatal("expected has() to find Enemy")
	}
	v = mustEval(t, `get("Enemy", "hp", 0)`, host)
	if f, _ := v.AsFloat(); f != 100 {
		t.Fatalf("got %v, want 100", f)
	}
}

func TestEval_SetCallback(t *testing.T) {
	host := &fakeHost{}
	v := mustEval(t, `set("Enemy", "hp", 50)`, host)
	if f, _ := v.AsFloat(); f != 1 {
		t.Fatalf("set() should return affected count, got %v", f)
	}
	if len(host.sets) != 1 || host.sets[0] != "Enemy.hp=50" {
		t.Fatalf("got sets %v", host.sets)
	}
}

func TestEval_UserDefinedFunction(t *testing.T) {
	in := NewInterpreter(NullHost{})
	body, err := Parse("a + b")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	in.Install("add", &UserFunc{Args: []string{"a", "b"}, Body: body})
	v, err := in.Eval("add(2, 3)")
	if err != nil {
		t.Fatalf("Eval error: %v", err)
	}
	if f, _ := v.AsFloat(); f != 5 {
		t.Fatalf("got %v, want 5", f)
	}
}

func TestEval_UnknownFunctionErrors(t *testing.T) {
	_, err := NewInterpreter(NullHost{}).Eval("unknownFn()")
	if err == nil {
		t.Fatal("expected error for unknown function")
	}
}

func TestEval_TableLiteral(t *testing.T) {
	v := mustEval(t, `{1, 2, "three"}`, NullHost{})
	if v.Kind != KindTable || len(v.Table) != 3 {
		t.Fatalf("got %+v", v)
	}
	if v.Table[2].AsString() != "three" {
		t.Fatalf("got %+v", v.Table[2])
	}
	if f, _ := mustEval(t, `{10, 20, 30}[2]`, NullHost{}).AsFloat(); f != 20 {
		t.Fatalf("table index got %v", f)
	}
}

func TestEval_FreeIdentifierResolvesThroughVars(t *testing.T) {
	in := NewInterpreter(NullHost{})
	in.Vars = func(name string) (Val, bool) {
		if name == "P" {
			return VecOf(1, 2, 3), true
		}
		return Nil(), false
	}
	v, err := in.Eval("P * 2")
	if err != nil {
		t.Fatalf("Eval error: %v", err)
	}
	if v.Kind != KindVec || v.Vec[0] != 2 || v.Vec[2] != 6 {
		t.Fatalf("got %+v", v)
	}
}

func TestEval_ErrorBuiltinRaises(t *testing.T) {
	_, err := NewInterpreter(NullHost{}).Eval(`error("boom")`)
	if err == nil || err.Error() != "boom" {
		t.Fatalf("got %v", err)
	}
}

func TestDiscard_RecognizesSentinel(t *testing.T) {
	if !Discard(raise("boom: %s", DiscardSentinel)) {
		t.Fatal("expected Discard to recognize the sentinel")
	}
	if Discard(raise("ordinary failure")) {
		t.Fatal("Discard should not match ordinary errors")
	}
}

// A returned vector produces one piece per component, matching the
// cardinality-preserving Value design rather than collapsing
// to a single comma-joined string: a vec2 result must carry cardinality 2
// through to the section so JSON emission and ${Name:size} see 2 pieces.
func TestRun_VecBecomesOnePiecePerComponent(t *testing.T) {
	in := NewInterpreter(NullHost{})
	pieces, discard, err := in.Run("vec2(1,2)")
	if err != nil || discard {
		t.Fatalf("Run error=%v discard=%v", err, discard)
	}
	if len(pieces) != 2 || pieces[0] != "1" || pieces[1] != "2" {
		t.Fatalf("got %#v", pieces)
	}
}

func TestRun_NilSuppressed(t *testing.T) {
	in := NewInterpreter(NullHost{})
	pieces, discard, err := in.Run("nil")
	if err != nil || discard {
		t.Fatalf("Run error=%v discard=%v", err, discard)
	}
	if pieces != nil {
		t.Fatalf("expected nil to be suppressed, got %#v", pieces)
	}
}
