// interpreter.go — the execution engine.
//
// OVERVIEW
// --------
// The Engine walks the expression tree produced by the parser and evaluates
// it over a scope stack and a shared object heap. Its surface:
//
//   - ExecuteSource(src): the one-shot entry point. Lexes, parses, builds a
//     fresh Engine, evaluates, returns the final object handle or the first
//     error. No state survives across calls.
//   - NewEngine() + (*Engine).Execute(src): the persistent form used by the
//     REPL. Bindings accumulate in the engine's scopes between calls.
//
// SCOPES & SINGLETONS
// -------------------
// The engine owns an ordered stack of scopes; the bottom entry is the global
// scope and the top is the innermost. On construction the global scope is
// populated with three interned singletons bound under the names
// "undefined", "true" and "false". These are allocated exactly once per
// engine: every lookup yields the identical handle, and `==` results are
// wrapped by returning one of the two boolean singletons rather than
// allocating. Singletons are per-engine fields of the instance's global
// scope, never process-wide state, so independent engines don't share
// identity.
//
// GARBAGE COLLECTION
// ------------------
// An execution tick is incremented after every fully-evaluated node,
// including nested ones. Every 10 ticks the engine sweeps the heap once per
// active scope, passing that scope's own variable-id set to
// Memory.DeallocateExceptIDs. The root set is scope bindings only: an
// operand held by an in-flight evaluation is not protected, which is safe
// because a sweep only drops the heap's bookkeeping entry — the handle the
// evaluator holds stays valid. This per-scope (non-union) sweep is the
// load-bearing policy of the memory subsystem; do not "fix" it into a
// single union sweep or a stack scan.
//
// FAILURE
// -------
// Every error is terminal: the first lex, parse or engine error aborts the
// run and is returned to the caller untouched. Evaluation is synchronous,
// single-threaded recursive descent; depth is guarded explicitly so deeply
// nested input fails with an engine error instead of exhausting the
// goroutine stack.
package jslet

// Version is the release version of the interpreter.
const Version = "0.1.0"

const (
	// Names of the interned globals. The lexer treats them as plain
	// identifiers; interning falls out of scope lookup.
	UndefinedName = "undefined"
	TrueName      = "true"
	FalseName     = "false"

	// A GC sweep runs whenever the tick counter reaches a multiple of this.
	gcTickInterval = 10

	// Evaluation deeper than this fails with a nesting-too-deep error.
	maxEvalDepth = 10000
)

// Engine evaluates expression trees. Zero value is not usable; construct
// with NewEngine.
type Engine struct {
	scopes        []*Scope
	memory        *Memory
	executionTick uint64
	depth         int
}

// NewEngine constructs an engine with a fresh heap and a global scope
// holding the interned undefined/true/false singletons.
func NewEngine() *Engine {
	engine := &Engine{memory: NewMemory()}
	engine.initializeGlobalScope()
	return engine
}

// ExecuteSource tokenizes and parses src, then evaluates the program on a
// fresh engine. The result is the program's completion value or the first
// error encountered; no partial results are produced.
func ExecuteSource(src string) (*Object, error) {
	return NewEngine().Execute(src)
}

// Execute evaluates src in this engine, keeping any bindings it creates.
// The REPL uses this to carry state across inputs.
func (e *Engine) Execute(src string) (*Object, error) {
	tokens, err := NewLexer(src).Scan()
	if err != nil {
		return nil, err
	}
	program, err := NewParser(tokens).ParseProgram()
	if err != nil {
		return nil, err
	}
	return e.executeExpression(program)
}

// Memory exposes the engine's heap. Useful for embedding and inspection;
// the CLI and tests read table occupancy through it.
func (e *Engine) Memory() *Memory { return e.memory }

// GlobalScope returns the bottom scope of the stack.
func (e *Engine) GlobalScope() *Scope { return e.scopes[0] }

func (e *Engine) initializeGlobalScope() {
	global := NewScope(nil, e.memory)
	// Defining into a fresh scope cannot fail.
	_ = global.MaterializeDefaults()
	e.scopes = []*Scope{global}
}

func (e *Engine) currentScope() *Scope { return e.scopes[len(e.scopes)-1] }

func (e *Engine) getUndefined() *Object {
	obj, _ := e.GlobalScope().Get(UndefinedName)
	return obj
}

func (e *Engine) getBoolean(value bool) *Object {
	name := FalseName
	if value {
		name = TrueName
	}
	obj, _ := e.GlobalScope().Get(name)
	return obj
}

// executeExpression evaluates one node. On success the execution tick is
// incremented and, at every gcTickInterval-th tick, garbage is collected.
func (e *Engine) executeExpression(expr Expression) (*Object, error) {
	if e.depth >= maxEvalDepth {
		return nil, nestingTooDeep()
	}
	e.depth++
	result, err := e.evaluate(expr)
	e.depth--
	if err != nil {
		return nil, err
	}

	e.executionTick++
	if e.executionTick%gcTickInterval == 0 {
		e.collectGarbage()
	}
	return result, nil
}

func (e *Engine) evaluate(expr Expression) (*Object, error) {
	switch node := expr.(type) {
	case *Program:
		result := e.getUndefined()
		for _, child := range node.Expressions {
			value, err := e.executeExpression(child)
			if err != nil {
				return nil, err
			}
			result = value
		}
		return result, nil

	case *LetVariableDeclaration:
		value, err := e.executeExpression(node.Initializer)
		if err != nil {
			return nil, err
		}
		if err := e.currentScope().Define(node.Name, value); err != nil {
			return nil, duplicateBinding(err)
		}
		return value, nil

	case *NumberLiteral:
		return e.memory.AllocateNumber(node.Value), nil

	case *StringLiteral:
		return e.memory.AllocateString(node.Value), nil

	case *Parenthesized:
		return e.executeExpression(node.Expression)

	case *Identifier:
		if obj, ok := e.currentScope().Get(node.Name); ok {
			return obj, nil
		}
		return nil, identifierNotFound(node.Name)

	case *BinaryOp:
		return e.evaluateBinaryOp(node)

	default:
		// The node set is closed; reaching this means a parser bug.
		return nil, &EngineError{Kind: ErrUnsupportedOperator, Msg: "unknown expression node"}
	}
}

func (e *Engine) evaluateBinaryOp(node *BinaryOp) (*Object, error) {
	if node.Op.IsEquals() {
		return e.evaluateAssignment(node)
	}

	left, err := e.executeExpression(ReorderExpression(node.Left))
	if err != nil {
		return nil, err
	}
	right, err := e.executeExpression(ReorderExpression(node.Right))
	if err != nil {
		return nil, err
	}

	switch node.Op.Kind {
	case EQ:
		return e.getBoolean(left.IsEqualToNonStrict(right)), nil
	case PLUS:
		return e.memory.AllocateNumber(left.CastToNumber() + right.CastToNumber()), nil
	case MINUS:
		return e.memory.AllocateNumber(left.CastToNumber() - right.CastToNumber()), nil
	case MULT:
		return e.memory.AllocateNumber(left.CastToNumber() * right.CastToNumber()), nil
	case DIV:
		// IEEE semantics: x/0 is ±Inf, 0/0 is NaN. Never an error.
		return e.memory.AllocateNumber(left.CastToNumber() / right.CastToNumber()), nil
	default:
		return nil, unsupportedOperator(node.Op)
	}
}

// evaluateAssignment handles `target = value`. The target must be an
// identifier that already resolves somewhere in the scope chain; its
// current value is never read, only its existence is checked. The
// assignment's own value is the assigned value.
func (e *Engine) evaluateAssignment(node *BinaryOp) (*Object, error) {
	name, ok := UnwrapName(node.Left)
	if !ok {
		return nil, invalidAssignmentTarget(node.Left)
	}
	if _, ok := e.currentScope().Get(name); !ok {
		return nil, identifierNotFound(name)
	}
	value, err := e.executeExpression(node.Right)
	if err != nil {
		return nil, err
	}
	e.currentScope().Assign(name, value)
	return value, nil
}

// collectGarbage sweeps the heap once per active scope, each sweep keeping
// only that one scope's own bindings. The sweeps are cumulative over the
// shared table; this is deliberately not a union of all root sets.
func (e *Engine) collectGarbage() {
	for _, scope := range e.scopes {
		e.memory.DeallocateExceptIDs(scope.VariableIDs())
	}
}
