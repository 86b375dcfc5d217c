//go:build cgo
// +build cgo

package z3

/*
#include <stdlib.h>
#include "z3.h"
*/
import "C"

import (
	"errors"
	"runtime"
	"strconv"
	"time"
	"unicode/utf8"
	"unsafe"

	"github.com/smtopt/z3-go/logger"
)

// Optimize wraps a Z3_optimize handle: a solver that accepts hard
// constraints, weighted soft constraints, and maximize/minimize objectives.
// The wrapper acquires exactly one foreign reference at construction and
// releases it exactly once in Close; the owning Context must stay open for
// the whole lifetime of the handle.
//
// An Optimize must not be closed while another goroutine still has a call on
// it in flight, and multi-call sequences (such as Push followed by Assert)
// are not atomic with respect to other goroutines; see the ffi lock.
type Optimize struct {
	ctx *Context
	o   C.Z3_optimize

	// checked records whether a check has ever run on this handle. Z3 hands
	// out an empty model with a clean error code before the first check, so
	// Model cannot learn this from the engine itself.
	checked bool
}

// NewOptimize creates a fresh optimize handle attached to the context. The
// returned handle tracks a Go finalizer so leaked handles are still released
// when the GC runs.
func (ctx *Context) NewOptimize() *Optimize {
	ffi.Lock()
	o := C.Z3_mk_optimize(ctx.c)
	C.Z3_optimize_inc_ref(ctx.c, o)
	ffi.Unlock()
	opt := &Optimize{ctx: ctx, o: o}
	runtime.SetFinalizer(opt, func(x *Optimize) { x.Close() })
	return opt
}

// Close releases the underlying Z3 optimize reference. Repeated calls are
// safe and become no-ops once the handle has been cleared.
func (o *Optimize) Close() {
	if o != nil && o.o != nil {
		ffi.Lock()
		C.Z3_optimize_dec_ref(o.ctx.c, o.o)
		ffi.Unlock()
		o.o = nil
	}
}

// SetTimeout bounds every subsequent Check by the given number of
// milliseconds. A check that exceeds the budget reports Unknown. The setting
// persists until overwritten; there is no mid-check cancellation.
func (o *Optimize) SetTimeout(ms uint32) {
	p := o.ctx.NewParams()
	defer p.Close()
	p.SetUint("timeout", ms)
	o.SetParams(p)
}

// SetParams applies a parameter set to the optimize handle.
func (o *Optimize) SetParams(p *Params) {
	ffi.Lock()
	C.Z3_optimize_set_params(o.ctx.c, o.o, p.p)
	ffi.Unlock()
}

// Assert adds a hard constraint: a condition every accepted solution must
// satisfy. Asserting the same term twice is legal and redundant.
func (o *Optimize) Assert(a AST) {
	ffi.Lock()
	C.Z3_optimize_assert(o.ctx.c, o.o, a.a)
	ffi.Unlock()
}

// AssertSoft adds a soft constraint whose violation is penalized by weight.
// Violated soft constraints reduce solution quality but never make the
// problem unsatisfiable. The weight crosses the C boundary as decimal text
// and no grouping symbol is attached. The returned index identifies the
// objective for Lower/Upper queries.
func (o *Optimize) AssertSoft(a AST, weight int64) uint {
	cweight := C.CString(strconv.FormatInt(weight, 10))
	defer C.free(unsafe.Pointer(cweight))
	ffi.Lock()
	idx := C.Z3_optimize_assert_soft(o.ctx.c, o.o, a.a, cweight, nil)
	ffi.Unlock()
	return uint(idx)
}

// AssertSoftGroup is AssertSoft with a named group: soft constraints sharing
// a group are combined into one objective by Z3.
func (o *Optimize) AssertSoftGroup(a AST, weight int64, group string) uint {
	sym := o.ctx.StringSymbol(group)
	cweight := C.CString(strconv.FormatInt(weight, 10))
	defer C.free(unsafe.Pointer(cweight))
	ffi.Lock()
	idx := C.Z3_optimize_assert_soft(o.ctx.c, o.o, a.a, cweight, sym)
	ffi.Unlock()
	return uint(idx)
}

// Maximize declares an objective to maximize, in addition to previously
// declared objectives and constraints. How multiple objectives combine is
// decided by Z3. The returned index identifies the objective for Lower/Upper
// queries.
func (o *Optimize) Maximize(a AST) uint {
	ffi.Lock()
	idx := C.Z3_optimize_maximize(o.ctx.c, o.o, a.a)
	ffi.Unlock()
	return uint(idx)
}

// Minimize declares an objective to minimize. See Maximize.
func (o *Optimize) Minimize(a AST) uint {
	ffi.Lock()
	idx := C.Z3_optimize_minimize(o.ctx.c, o.o, a.a)
	ffi.Unlock()
	return uint(idx)
}

// Push saves the current set of constraints and objectives as a restore
// point for a later Pop.
func (o *Optimize) Push() {
	ffi.Lock()
	C.Z3_optimize_push(o.ctx.c, o.o)
	ffi.Unlock()
}

// Pop restores the most recent unpopped restore point, discarding everything
// asserted or declared since it. The number of Pop calls over the handle's
// lifetime must never exceed the number of Push calls; Z3's behavior on an
// unmatched Pop is undefined and this layer does not guard against it.
func (o *Optimize) Pop() {
	ffi.Lock()
	C.Z3_optimize_pop(o.ctx.c, o.o)
	ffi.Unlock()
}

// Check runs the engine against the asserted constraints and objectives and
// reports whether they are satisfiable. Unsatisfiable and Unknown both map
// to false; use CheckWithModel to distinguish them.
func (o *Optimize) Check() bool {
	return o.check() == Sat
}

// CheckWithModel runs the engine and returns the full tri-state outcome. For
// Sat the accompanying model holds a satisfying (optimal as far as Z3 could
// determine) assignment; for Unknown it holds Z3's best-effort partial
// assignment when one exists, nil otherwise; for Unsat it is always nil. Any
// result code outside the three Z3_lbool values is a foreign contract
// violation and panics.
func (o *Optimize) CheckWithModel() (CheckResult, *Model) {
	switch res := o.check(); res {
	case Sat, Unknown:
		return res, o.Model()
	default:
		return Unsat, nil
	}
}

func (o *Optimize) check() CheckResult {
	start := time.Now()
	ffi.Lock()
	r := C.Z3_optimize_check(o.ctx.c, o.o, 0, nil)
	o.checked = true
	ffi.Unlock()

	var res CheckResult
	switch r {
	case C.Z3_L_TRUE:
		res = Sat
	case C.Z3_L_FALSE:
		res = Unsat
	case C.Z3_L_UNDEF:
		res = Unknown
	default:
		panic("z3: optimize check returned a result code outside Z3_lbool")
	}
	log := logger.Logger()
	log.Debug().
		Dur("took", time.Since(start)).
		Stringer("result", res).
		Msg("optimize check")
	return res
}

// Model retrieves the model produced by the most recent check. It returns
// nil when Z3 has no model to hand out, which happens when no check has run
// yet or the last check reported Unsat. The returned model must be closed by
// the caller (or allowed to leak for GC finalization).
func (o *Optimize) Model() *Model {
	ffi.Lock()
	if !o.checked {
		ffi.Unlock()
		return nil
	}
	m := C.Z3_optimize_get_model(o.ctx.c, o.o)
	if m == nil || C.Z3_get_error_code(o.ctx.c) != C.Z3_OK {
		ffi.Unlock()
		return nil
	}
	C.Z3_model_inc_ref(o.ctx.c, m)
	ffi.Unlock()
	mod := &Model{o.ctx, m}
	runtime.SetFinalizer(mod, func(x *Model) { x.Close() })
	return mod
}

// ReasonUnknown returns Z3's explanation for an Unknown result, such as
// "timeout", or an empty string when none is available.
func (o *Optimize) ReasonUnknown() string {
	if o == nil || o.o == nil {
		return ""
	}
	ffi.Lock()
	defer ffi.Unlock()
	rstr := C.Z3_optimize_get_reason_unknown(o.ctx.c, o.o)
	if rstr == nil {
		return ""
	}
	return C.GoString(rstr)
}

// Lower returns the current lower bound for the objective with the given
// index, as returned by AssertSoft, Maximize, or Minimize.
func (o *Optimize) Lower(idx uint) AST {
	ffi.Lock()
	a := C.Z3_optimize_get_lower(o.ctx.c, o.o, C.uint(idx))
	if a == nil {
		ffi.Unlock()
		return AST{}
	}
	C.Z3_inc_ref(o.ctx.c, a)
	ffi.Unlock()
	return AST{o.ctx, a}
}

// Upper returns the current upper bound for the objective with the given
// index. See Lower.
func (o *Optimize) Upper(idx uint) AST {
	ffi.Lock()
	a := C.Z3_optimize_get_upper(o.ctx.c, o.o, C.uint(idx))
	if a == nil {
		ffi.Unlock()
		return AST{}
	}
	C.Z3_inc_ref(o.ctx.c, a)
	ffi.Unlock()
	return AST{o.ctx, a}
}

// Assertions returns the hard constraints currently asserted on the handle.
func (o *Optimize) Assertions() []AST {
	ffi.Lock()
	defer ffi.Unlock()
	return copyASTVectorLocked(o.ctx, C.Z3_optimize_get_assertions(o.ctx.c, o.o))
}

// Objectives returns the declared objectives, including the penalty terms
// synthesized for soft constraints.
func (o *Optimize) Objectives() []AST {
	ffi.Lock()
	defer ffi.Unlock()
	return copyASTVectorLocked(o.ctx, C.Z3_optimize_get_objectives(o.ctx.c, o.o))
}

// FromString parses an SMT-LIB2 script, including optimization commands such
// as (maximize ...) and (assert-soft ...), and adds the result to the
// handle. Declarations found in the script are recorded on the owning
// Context so ConstDecl and FuncDeclByName keep working.
func (o *Optimize) FromString(input string) error {
	cstr := C.CString(input)
	defer C.free(unsafe.Pointer(cstr))
	ffi.Lock()
	C.Z3_optimize_from_string(o.ctx.c, o.o, cstr)
	err := foreignErrLocked(o.ctx)
	ffi.Unlock()
	if err != nil {
		return err
	}
	o.recordDecls()
	return nil
}

// FromFile parses an SMT-LIB2 file with optimization commands, mirroring
// FromString but sourcing the input from disk.
func (o *Optimize) FromFile(path string) error {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))
	ffi.Lock()
	C.Z3_optimize_from_file(o.ctx.c, o.o, cpath)
	err := foreignErrLocked(o.ctx)
	ffi.Unlock()
	if err != nil {
		return err
	}
	o.recordDecls()
	return nil
}

func (o *Optimize) recordDecls() {
	o.ctx.recordSortsFromASTs(o.Assertions())
	o.ctx.recordSortsFromASTs(o.Objectives())
}

// MarshalText renders the constraints and objectives currently on the handle
// as an SMT-LIB2 script. It returns an error when Z3 yields no text or text
// that is not valid UTF-8. The output is diagnostic-equivalent, not
// byte-stable across Z3 versions.
func (o *Optimize) MarshalText() ([]byte, error) {
	if o == nil || o.o == nil {
		return nil, errors.New("optimize handle is closed")
	}
	ffi.Lock()
	s := C.Z3_optimize_to_string(o.ctx.c, o.o)
	if s == nil {
		ffi.Unlock()
		return nil, errors.New("no textual form for optimize state")
	}
	text := C.GoString(s)
	ffi.Unlock()
	if !utf8.ValidString(text) {
		return nil, errors.New("optimize state text is not valid UTF-8")
	}
	return []byte(text), nil
}

// String returns the SMT-LIB2 form of the handle's state, or a sentinel when
// rendering fails. Callers that need the failure itself use MarshalText.
func (o *Optimize) String() string {
	text, err := o.MarshalText()
	if err != nil {
		return "<invalid-optimize>"
	}
	return string(text)
}

// foreignErrLocked converts Z3's pending error code into a Go error and
// clears nothing: the context's no-op error handler leaves the code in place
// until the next call. Must be called with the ffi lock held, directly after
// the foreign call it checks.
func foreignErrLocked(ctx *Context) error {
	code := C.Z3_get_error_code(ctx.c)
	if code == C.Z3_OK {
		return nil
	}
	msg := C.Z3_get_error_msg(ctx.c, code)
	if msg != nil {
		return errors.New(C.GoString(msg))
	}
	return errors.New("z3 error")
}
