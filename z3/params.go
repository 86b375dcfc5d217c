//go:build cgo
// +build cgo

package z3

/*
#include <stdlib.h>
#include "z3.h"
*/
import "C"

import "runtime"

// Params wraps a reference-counted Z3_params set: a transient bag of named
// values submitted to a solver or optimize handle in one call. Typical use is
// build, fill, apply, Close.
type Params struct {
	ctx *Context
	p   C.Z3_params
}

// NewParams creates an empty parameter set attached to the context.
func (ctx *Context) NewParams() *Params {
	ffi.Lock()
	p := C.Z3_mk_params(ctx.c)
	C.Z3_params_inc_ref(ctx.c, p)
	ffi.Unlock()
	ps := &Params{ctx, p}
	runtime.SetFinalizer(ps, func(x *Params) { x.Close() })
	return ps
}

// Close releases the underlying Z3 params reference. Repeated calls are safe
// and become no-ops once the handle has been cleared.
func (p *Params) Close() {
	if p != nil && p.p != nil {
		ffi.Lock()
		C.Z3_params_dec_ref(p.ctx.c, p.p)
		ffi.Unlock()
		p.p = nil
	}
}

// SetUint writes a named unsigned-integer value into the set.
func (p *Params) SetUint(name string, value uint32) {
	sym := p.ctx.StringSymbol(name)
	ffi.Lock()
	C.Z3_params_set_uint(p.ctx.c, p.p, sym, C.uint(value))
	ffi.Unlock()
}

// SetBool writes a named boolean value into the set.
func (p *Params) SetBool(name string, value bool) {
	sym := p.ctx.StringSymbol(name)
	ffi.Lock()
	C.Z3_params_set_bool(p.ctx.c, p.p, sym, C.bool(value))
	ffi.Unlock()
}

// String returns the textual form of the parameter set.
func (p *Params) String() string {
	if p == nil || p.p == nil {
		return "<nil-params>"
	}
	ffi.Lock()
	defer ffi.Unlock()
	s := C.Z3_params_to_string(p.ctx.c, p.p)
	if s == nil {
		return "<invalid-params>"
	}
	return C.GoString(s)
}
