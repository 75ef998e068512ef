// scope.go — lexical binding environments.
package jslet

import "fmt"

// Scope is one binding environment: a name → object table, an optional
// parent for lexical chaining, and a shared Memory handle so a scope can
// materialize default bindings without reaching through the engine.
type Scope struct {
	parent    *Scope
	memory    *Memory
	variables map[string]*Object
}

// NewScope creates a scope with the given parent (nil for the global scope).
func NewScope(parent *Scope, memory *Memory) *Scope {
	return &Scope{
		parent:    parent,
		memory:    memory,
		variables: make(map[string]*Object),
	}
}

// Define binds name to obj in this scope only. Re-declaring a name that
// already exists at this scope level is an error; shadowing an outer
// binding is not.
func (s *Scope) Define(name string, obj *Object) error {
	if _, ok := s.variables[name]; ok {
		return fmt.Errorf("variable %s is already declared in this scope", name)
	}
	s.variables[name] = obj
	return nil
}

// Get resolves name in this scope, then walks the parent chain. The second
// result is false when no scope in the chain binds the name.
func (s *Scope) Get(name string) (*Object, bool) {
	if obj, ok := s.variables[name]; ok {
		return obj, true
	}
	if s.parent != nil {
		return s.parent.Get(name)
	}
	return nil, false
}

// Assign rebinds the nearest existing binding of name to obj. The caller is
// responsible for checking existence via Get first; assigning a name bound
// nowhere in the chain does nothing.
func (s *Scope) Assign(name string, obj *Object) {
	if _, ok := s.variables[name]; ok {
		s.variables[name] = obj
		return
	}
	if s.parent != nil {
		s.parent.Assign(name, obj)
	}
}

// MaterializeDefaults allocates the interned undefined/true/false singletons
// through the scope's Memory handle and binds them under their names. The
// engine calls this exactly once, on its global scope.
func (s *Scope) MaterializeDefaults() error {
	if err := s.Define(UndefinedName, s.memory.AllocateUndefined()); err != nil {
		return err
	}
	if err := s.Define(TrueName, s.memory.AllocateBoolean(true)); err != nil {
		return err
	}
	return s.Define(FalseName, s.memory.AllocateBoolean(false))
}

// VariableIDs returns the ids of all objects bound directly in this scope
// (parents excluded). This is the scope's contribution to the GC root set.
func (s *Scope) VariableIDs() map[uint64]struct{} {
	ids := make(map[uint64]struct{}, len(s.variables))
	for _, obj := range s.variables {
		ids[obj.ID] = struct{}{}
	}
	return ids
}
