package jslet

import "testing"

func Test_Scope_DefineAndGet(t *testing.T) {
	m := NewMemory()
	s := NewScope(nil, m)

	obj := m.AllocateNumber(1)
	if err := s.Define("a", obj); err != nil {
		t.Fatalf("Define: %v", err)
	}
	got, ok := s.Get("a")
	if !ok || got != obj {
		t.Fatalf("Get returned a different handle")
	}
	if _, ok := s.Get("missing"); ok {
		t.Fatalf("Get found a name that was never bound")
	}
}

func Test_Scope_Define_RejectsDuplicateInSameScope(t *testing.T) {
	m := NewMemory()
	s := NewScope(nil, m)
	if err := s.Define("x", m.AllocateNumber(1)); err != nil {
		t.Fatalf("first Define: %v", err)
	}
	if err := s.Define("x", m.AllocateNumber(2)); err == nil {
		t.Fatalf("duplicate Define succeeded")
	}
}

func Test_Scope_Get_WalksParentChain(t *testing.T) {
	m := NewMemory()
	global := NewScope(nil, m)
	inner := NewScope(global, m)

	obj := m.AllocateString("outer")
	if err := global.Define("v", obj); err != nil {
		t.Fatalf("Define: %v", err)
	}
	got, ok := inner.Get("v")
	if !ok || got != obj {
		t.Fatalf("inner scope did not resolve through parent")
	}
}

func Test_Scope_Shadowing_AcrossScopeLevels(t *testing.T) {
	m := NewMemory()
	global := NewScope(nil, m)
	inner := NewScope(global, m)

	outerObj := m.AllocateNumber(1)
	innerObj := m.AllocateNumber(2)
	if err := global.Define("x", outerObj); err != nil {
		t.Fatalf("Define: %v", err)
	}
	// Shadowing an outer binding is allowed; only same-level duplicates fail.
	if err := inner.Define("x", innerObj); err != nil {
		t.Fatalf("shadowing Define: %v", err)
	}
	if got, _ := inner.Get("x"); got != innerObj {
		t.Fatalf("inner lookup did not pick the shadow")
	}
	if got, _ := global.Get("x"); got != outerObj {
		t.Fatalf("outer binding disturbed by shadow")
	}
}

func Test_Scope_Assign_RebindsNearestBinding(t *testing.T) {
	m := NewMemory()
	global := NewScope(nil, m)
	inner := NewScope(global, m)

	if err := global.Define("v", m.AllocateNumber(1)); err != nil {
		t.Fatalf("Define: %v", err)
	}
	replacement := m.AllocateNumber(2)
	inner.Assign("v", replacement)

	// The rebind landed in the scope that holds the binding: both views agree.
	if got, _ := inner.Get("v"); got != replacement {
		t.Fatalf("inner view missed the assignment")
	}
	if got, _ := global.Get("v"); got != replacement {
		t.Fatalf("assignment did not land in the owning scope")
	}
}

func Test_Scope_MaterializeDefaults(t *testing.T) {
	m := NewMemory()
	s := NewScope(nil, m)
	if err := s.MaterializeDefaults(); err != nil {
		t.Fatalf("MaterializeDefaults: %v", err)
	}
	u, ok := s.Get(UndefinedName)
	if !ok || u.Kind != KindUndefined {
		t.Fatalf("undefined binding wrong: %v", u)
	}
	tr, _ := s.Get(TrueName)
	fa, _ := s.Get(FalseName)
	if tr == nil || tr.Kind != KindBoolean || tr.Data.(bool) != true {
		t.Fatalf("true binding wrong: %v", tr)
	}
	if fa == nil || fa.Kind != KindBoolean || fa.Data.(bool) != false {
		t.Fatalf("false binding wrong: %v", fa)
	}
	// A second call collides with the existing bindings.
	if err := s.MaterializeDefaults(); err == nil {
		t.Fatalf("second MaterializeDefaults should fail on duplicates")
	}
}

func Test_Scope_VariableIDs_LocalOnly(t *testing.T) {
	m := NewMemory()
	global := NewScope(nil, m)
	inner := NewScope(global, m)

	g := m.AllocateNumber(1)
	l := m.AllocateNumber(2)
	if err := global.Define("g", g); err != nil {
		t.Fatalf("Define: %v", err)
	}
	if err := inner.Define("l", l); err != nil {
		t.Fatalf("Define: %v", err)
	}

	ids := inner.VariableIDs()
	if _, ok := ids[l.ID]; !ok {
		t.Fatalf("local id missing from VariableIDs")
	}
	if _, ok := ids[g.ID]; ok {
		t.Fatalf("VariableIDs leaked a parent binding")
	}
	if len(ids) != 1 {
		t.Fatalf("VariableIDs size = %d, want 1", len(ids))
	}
}
