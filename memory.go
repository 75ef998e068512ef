// memory.go — the object heap.
//
// Memory owns the id → object table and the id counter. Allocation is the
// only way an Object comes into existence; the sweep removes table entries
// whose ids are absent from a supplied live set. Removal is bookkeeping
// only: handles already copied out to scopes or evaluator locals keep
// working, the entry just stops being enumerable for future sweeps.
package jslet

// Memory is the heap/allocator. Ids are unique and strictly increasing for
// the lifetime of one Memory instance; they are never reused.
type Memory struct {
	objects map[uint64]*Object
	nextID  uint64
}

// NewMemory returns an empty heap.
func NewMemory() *Memory {
	return &Memory{objects: make(map[uint64]*Object)}
}

func (m *Memory) allocate(kind ObjectKind, data interface{}) *Object {
	m.nextID++
	obj := &Object{ID: m.nextID, Kind: kind, Data: data}
	m.objects[obj.ID] = obj
	return obj
}

// AllocateUndefined mints a fresh undefined object.
func (m *Memory) AllocateUndefined() *Object {
	return m.allocate(KindUndefined, nil)
}

// AllocateBoolean mints a fresh boolean object.
func (m *Memory) AllocateBoolean(value bool) *Object {
	return m.allocate(KindBoolean, value)
}

// AllocateNumber mints a fresh number object.
func (m *Memory) AllocateNumber(value float64) *Object {
	return m.allocate(KindNumber, value)
}

// AllocateString mints a fresh string object.
func (m *Memory) AllocateString(value string) *Object {
	return m.allocate(KindString, value)
}

// Get returns the object registered under id, if the table still holds it.
func (m *Memory) Get(id uint64) (*Object, bool) {
	obj, ok := m.objects[id]
	return obj, ok
}

// Size reports how many objects the table currently tracks.
func (m *Memory) Size() int { return len(m.objects) }

// DeallocateExceptIDs removes every table entry whose id is not in live.
// It never fails and calling it twice with the same set is a no-op the
// second time. Handles held outside the table remain valid.
func (m *Memory) DeallocateExceptIDs(live map[uint64]struct{}) {
	for id := range m.objects {
		if _, ok := live[id]; !ok {
			delete(m.objects, id)
		}
	}
}
