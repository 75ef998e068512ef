package jslet

import (
	"errors"
	"math"
	"strings"
	"testing"
)

// --- helpers ---------------------------------------------------------------

func evalSrc(t *testing.T, src string) *Object {
	t.Helper()
	obj, err := ExecuteSource(src)
	if err != nil {
		t.Fatalf("ExecuteSource error: %v\nsource:\n%s", err, src)
	}
	return obj
}

func mustExecute(t *testing.T, e *Engine, src string) *Object {
	t.Helper()
	obj, err := e.Execute(src)
	if err != nil {
		t.Fatalf("Execute error for %q: %v", src, err)
	}
	return obj
}

func wantNumber(t *testing.T, obj *Object, f float64) {
	t.Helper()
	if obj.Kind != KindNumber {
		t.Fatalf("want number %g, got %s", f, obj)
	}
	got := obj.Data.(float64)
	if got != f {
		t.Fatalf("want number %g, got %g (%s)", f, got, obj)
	}
}

func wantNaN(t *testing.T, obj *Object) {
	t.Helper()
	if obj.Kind != KindNumber || !math.IsNaN(obj.Data.(float64)) {
		t.Fatalf("want NaN, got %s", obj)
	}
}

func wantString(t *testing.T, obj *Object, s string) {
	t.Helper()
	if obj.Kind != KindString || obj.Data.(string) != s {
		t.Fatalf("want string %q, got %s", s, obj)
	}
}

func wantBoolean(t *testing.T, obj *Object, b bool) {
	t.Helper()
	if obj.Kind != KindBoolean || obj.Data.(bool) != b {
		t.Fatalf("want boolean %v, got %s", b, obj)
	}
}

func wantUndefined(t *testing.T, obj *Object) {
	t.Helper()
	if obj.Kind != KindUndefined {
		t.Fatalf("want undefined, got %s", obj)
	}
}

func wantEngineErr(t *testing.T, src string, kind EngineErrorKind) *EngineError {
	t.Helper()
	_, err := ExecuteSource(src)
	if err == nil {
		t.Fatalf("want engine error for %q, got success", src)
	}
	var ee *EngineError
	if !errors.As(err, &ee) {
		t.Fatalf("want *EngineError for %q, got %T: %v", src, err, err)
	}
	if ee.Kind != kind {
		t.Fatalf("want error kind %d for %q, got %d: %v", kind, src, ee.Kind, ee)
	}
	return ee
}

// --- literals & sequencing -------------------------------------------------

func Test_Engine_Literals(t *testing.T) {
	wantNumber(t, evalSrc(t, "42"), 42)
	wantNumber(t, evalSrc(t, "5."), 5.0)
	wantNumber(t, evalSrc(t, ".5"), 0.5)
	wantNumber(t, evalSrc(t, "1e3"), 1000)
	wantString(t, evalSrc(t, `"hi"`), "hi")
	wantBoolean(t, evalSrc(t, "true"), true)
	wantBoolean(t, evalSrc(t, "false"), false)
	wantUndefined(t, evalSrc(t, "undefined"))
}

func Test_Engine_EmptyProgram_IsUndefined(t *testing.T) {
	wantUndefined(t, evalSrc(t, ""))
	wantUndefined(t, evalSrc(t, "   // just a comment\n"))
}

func Test_Engine_Sequencing_LastValueWins(t *testing.T) {
	wantNumber(t, evalSrc(t, "let a = 1; let b = 2; a + b;"), 3)
	// Earlier children still run for their bindings even though their
	// results are discarded.
	wantNumber(t, evalSrc(t, `"discarded"; let x = 7; x`), 7)
}

// --- arithmetic & precedence -----------------------------------------------

func Test_Engine_Arithmetic_Precedence(t *testing.T) {
	wantNumber(t, evalSrc(t, "2 + 3 * 4"), 14)
	wantNumber(t, evalSrc(t, "2 * 3 + 4"), 10)
	wantNumber(t, evalSrc(t, "(2 + 3) * 4"), 20)
	wantNumber(t, evalSrc(t, "20 - 2 * 5"), 10)
	wantNumber(t, evalSrc(t, "100 / 5 / 2"), 10)
	wantNumber(t, evalSrc(t, "10 - 1 - 2"), 7)
}

func Test_Engine_Arithmetic_Coercion(t *testing.T) {
	wantNumber(t, evalSrc(t, `"3" * "4"`), 12)
	wantNumber(t, evalSrc(t, "true + true"), 2)
	wantNumber(t, evalSrc(t, `"10" - 1`), 9)
	wantNaN(t, evalSrc(t, `"abc" + 1`))
	wantNaN(t, evalSrc(t, "undefined + 1"))
}

func Test_Engine_DivisionByZero_IEEE(t *testing.T) {
	obj := evalSrc(t, "1 / 0")
	if obj.Kind != KindNumber || !math.IsInf(obj.Data.(float64), 1) {
		t.Fatalf("want Infinity, got %s", obj)
	}
	obj = evalSrc(t, "0 / 0")
	wantNaN(t, obj)
}

// --- loose equality ---------------------------------------------------------

func Test_Engine_LooseEquality(t *testing.T) {
	wantBoolean(t, evalSrc(t, `1 == "1"`), true)
	wantBoolean(t, evalSrc(t, "0 == false"), true)
	wantBoolean(t, evalSrc(t, `"" == false`), true)
	wantBoolean(t, evalSrc(t, "undefined == false"), false)
	wantBoolean(t, evalSrc(t, "undefined == undefined"), true)
	wantBoolean(t, evalSrc(t, `"abc" == "abc"`), true)
	wantBoolean(t, evalSrc(t, `"abc" == 0`), false)
}

func Test_Engine_Equality_ReturnsInternedSingleton(t *testing.T) {
	engine := NewEngine()
	result := mustExecute(t, engine, "1 == 1")
	interned, ok := engine.GlobalScope().Get(TrueName)
	if !ok {
		t.Fatalf("no true binding in global scope")
	}
	if result != interned || result.ID != interned.ID {
		t.Fatalf("equality result is not the interned true singleton: %s vs %s", result, interned)
	}
}

// --- identity of interned globals ------------------------------------------

func Test_Engine_UndefinedLookup_IsIdentityStable(t *testing.T) {
	engine := NewEngine()
	first := mustExecute(t, engine, "undefined")
	second := mustExecute(t, engine, "undefined")
	if first != second || first.ID != second.ID {
		t.Fatalf("undefined lookups differ: %s vs %s", first, second)
	}
}

func Test_Engine_Singletons_ArePerEngine(t *testing.T) {
	a := NewEngine()
	b := NewEngine()
	ua := mustExecute(t, a, "undefined")
	ub := mustExecute(t, b, "undefined")
	if ua == ub {
		t.Fatalf("two engines share an undefined singleton")
	}
}

// --- declarations & assignment ---------------------------------------------

func Test_Engine_LetThenAssign(t *testing.T) {
	engine := NewEngine()
	wantNumber(t, mustExecute(t, engine, "let b = 0; b = 10;"), 10)

	obj, ok := engine.GlobalScope().Get("b")
	if !ok {
		t.Fatalf("b not bound after assignment")
	}
	wantNumber(t, obj, 10)
}

func Test_Engine_Assign_RequiresExistingBinding(t *testing.T) {
	wantEngineErr(t, "b = 10", ErrIdentifierNotFound)
}

func Test_Engine_Assign_TargetMustBeIdentifier(t *testing.T) {
	wantEngineErr(t, "1 = 2", ErrInvalidAssignmentTarget)
	wantEngineErr(t, "(a) = 2", ErrInvalidAssignmentTarget)
}

func Test_Engine_Let_DuplicateBindingFails(t *testing.T) {
	ee := wantEngineErr(t, "let x = 1; let x = 2;", ErrDuplicateBinding)

	// The engine surfaces the scope's own message rather than composing
	// a second one.
	m := NewMemory()
	s := NewScope(nil, m)
	if err := s.Define("x", m.AllocateNumber(1)); err != nil {
		t.Fatalf("Define: %v", err)
	}
	defineErr := s.Define("x", m.AllocateNumber(2))
	if defineErr == nil || ee.Msg != defineErr.Error() {
		t.Fatalf("engine message diverged from scope message: %q vs %v", ee.Msg, defineErr)
	}
}

func Test_Engine_Identifier_NotFound(t *testing.T) {
	ee := wantEngineErr(t, "nope", ErrIdentifierNotFound)
	if !strings.Contains(ee.Msg, "nope") {
		t.Fatalf("error does not name the identifier: %v", ee)
	}
}

func Test_Engine_Assignment_IsTheOnlyMutation(t *testing.T) {
	engine := NewEngine()
	mustExecute(t, engine, "let a = 5")
	wantNumber(t, mustExecute(t, engine, "a + 1; a * 2; a == 5; a"), 5)
}

// --- failure semantics ------------------------------------------------------

func Test_Engine_Error_ShortCircuits_Program(t *testing.T) {
	engine := NewEngine()
	_, err := engine.Execute("let a = 1; a = b; a = 99;")
	var ee *EngineError
	if !errors.As(err, &ee) || ee.Kind != ErrIdentifierNotFound {
		t.Fatalf("want identifier-not-found, got %v", err)
	}
	// The third statement never ran: a keeps its original value.
	obj, ok := engine.GlobalScope().Get("a")
	if !ok {
		t.Fatalf("a not bound")
	}
	wantNumber(t, obj, 1)
}

func Test_Engine_LexAndParseErrors_Propagate(t *testing.T) {
	if _, err := ExecuteSource("let s = \"oops"); err == nil {
		t.Fatalf("want lex error")
	} else if _, ok := err.(*LexError); !ok {
		t.Fatalf("want *LexError, got %T: %v", err, err)
	}

	if _, err := ExecuteSource("let x = ;"); err == nil {
		t.Fatalf("want parse error")
	} else if _, ok := err.(*ParseError); !ok {
		t.Fatalf("want *ParseError, got %T: %v", err, err)
	}
}

func Test_Engine_DeepNesting_FailsExplicitly(t *testing.T) {
	depth := maxEvalDepth + 10
	src := strings.Repeat("(", depth) + "1" + strings.Repeat(")", depth)
	_, err := ExecuteSource(src)
	var ee *EngineError
	if !errors.As(err, &ee) || ee.Kind != ErrNestingTooDeep {
		t.Fatalf("want nesting-too-deep, got %v", err)
	}
}

// --- garbage collection -----------------------------------------------------

func Test_Engine_GC_LiveBindingsSurviveSweeps(t *testing.T) {
	engine := NewEngine()

	// Well past the 10-tick sweep interval.
	mustExecute(t, engine, "let a = 1; let b = 2; let c = 3; let d = 4;")
	wantNumber(t, mustExecute(t, engine, "a + b + c + d"), 10)
	wantNumber(t, mustExecute(t, engine, "a * 10 + b * 10 + c * 10 + d * 10"), 100)

	if engine.executionTick < 3*gcTickInterval {
		t.Fatalf("test did not cross the sweep interval (tick=%d)", engine.executionTick)
	}

	for name, want := range map[string]float64{"a": 1, "b": 2, "c": 3, "d": 4} {
		obj, ok := engine.GlobalScope().Get(name)
		if !ok {
			t.Fatalf("%s lost after GC", name)
		}
		wantNumber(t, obj, want)
		if _, live := engine.Memory().Get(obj.ID); !live {
			t.Fatalf("%s is bound in a live scope but missing from the heap table", name)
		}
	}

	// Interned globals survive as well, with identity intact.
	before := mustExecute(t, engine, "undefined")
	mustExecute(t, engine, "1; 2; 3; 4; 5; 6; 7; 8; 9; 10; 11;")
	after := mustExecute(t, engine, "undefined")
	if before != after {
		t.Fatalf("undefined identity changed across sweeps")
	}
}

func Test_Engine_GC_SweepsUnboundIntermediates(t *testing.T) {
	engine := NewEngine()
	mustExecute(t, engine, "let a = 1;")
	sizeBefore := engine.Memory().Size()

	// None of these results is ever bound, so every sweep may reclaim them.
	mustExecute(t, engine, "1 + 2; 3 + 4; 5 + 6; 7 + 8; 9 + 10; 11 + 12;")
	mustExecute(t, engine, "1 + 2; 3 + 4; 5 + 6; 7 + 8; 9 + 10; 11 + 12;")

	// The table cannot have grown without bound: sweeps ran and kept only
	// scope-reachable ids plus allocations newer than the last sweep.
	if size := engine.Memory().Size(); size > sizeBefore+gcTickInterval {
		t.Fatalf("heap table grew past sweep bound: before=%d after=%d", sizeBefore, size)
	}
}

func Test_Engine_GC_SweptHandleRemainsUsable(t *testing.T) {
	engine := NewEngine()
	result := mustExecute(t, engine, "100 + 200")

	// Force sweeps; the result was never bound so its table entry goes away.
	mustExecute(t, engine, "1; 2; 3; 4; 5; 6; 7; 8; 9; 10; 11; 12;")

	if _, live := engine.Memory().Get(result.ID); live {
		t.Fatalf("unbound result should have been swept from the table")
	}
	// The handle itself is still a valid object.
	wantNumber(t, result, 300)
	if result.CastToNumber() != 300 {
		t.Fatalf("swept handle no longer usable")
	}
}

// --- ids --------------------------------------------------------------------

func Test_Engine_ObjectIDs_StrictlyIncrease(t *testing.T) {
	engine := NewEngine()
	a := mustExecute(t, engine, "1")
	b := mustExecute(t, engine, `"two"`)
	c := mustExecute(t, engine, "3")
	if !(a.ID < b.ID && b.ID < c.ID) {
		t.Fatalf("ids not strictly increasing: %d, %d, %d", a.ID, b.ID, c.ID)
	}
}
