//go:build cgo
// +build cgo

package z3

/*
#include "z3.h"
*/
import "C"

import "unsafe"

// mkUnary serializes a one-argument Z3 builder call and takes a reference on
// the result.
func mkUnary(ctx *Context, build func() C.Z3_ast) AST {
	ffi.Lock()
	a := build()
	C.Z3_inc_ref(ctx.c, a)
	ffi.Unlock()
	return AST{ctx, a}
}

// mkNary converts the arguments to raw handles and serializes an n-ary Z3
// builder call. All arguments must share one context.
func mkNary(args []AST, build func(ctx *Context, n C.uint, raw *C.Z3_ast) C.Z3_ast) AST {
	ctx := args[0].ctx
	cargs := make([]C.Z3_ast, len(args))
	for i, a := range args {
		cargs[i] = a.a
	}
	ffi.Lock()
	a := build(ctx, C.uint(len(cargs)), (*C.Z3_ast)(unsafe.Pointer(&cargs[0])))
	C.Z3_inc_ref(ctx.c, a)
	ffi.Unlock()
	return AST{ctx, a}
}

// Not returns the logical negation of the AST.
func (t AST) Not() AST {
	return mkUnary(t.ctx, func() C.Z3_ast { return C.Z3_mk_not(t.ctx.c, t.a) })
}

// And builds a conjunction over all provided ASTs.
func And(args ...AST) AST {
	if len(args) == 0 {
		panic("And requires at least one arg")
	}
	return mkNary(args, func(ctx *Context, n C.uint, raw *C.Z3_ast) C.Z3_ast {
		return C.Z3_mk_and(ctx.c, n, raw)
	})
}

// Or builds a disjunction over all provided ASTs.
func Or(args ...AST) AST {
	if len(args) == 0 {
		panic("Or requires at least one arg")
	}
	return mkNary(args, func(ctx *Context, n C.uint, raw *C.Z3_ast) C.Z3_ast {
		return C.Z3_mk_or(ctx.c, n, raw)
	})
}

// Eq builds an equality between two ASTs.
func Eq(x, y AST) AST {
	return mkUnary(x.ctx, func() C.Z3_ast { return C.Z3_mk_eq(x.ctx.c, x.a, y.a) })
}

// Add sums all provided numeric ASTs.
func Add(args ...AST) AST {
	if len(args) == 0 {
		panic("Add requires at least one arg")
	}
	return mkNary(args, func(ctx *Context, n C.uint, raw *C.Z3_ast) C.Z3_ast {
		return C.Z3_mk_add(ctx.c, n, raw)
	})
}

// Sub subtracts subsequent ASTs from the first argument.
func Sub(args ...AST) AST {
	if len(args) == 0 {
		panic("Sub requires at least one arg")
	}
	return mkNary(args, func(ctx *Context, n C.uint, raw *C.Z3_ast) C.Z3_ast {
		return C.Z3_mk_sub(ctx.c, n, raw)
	})
}

// Mul multiplies all provided numeric ASTs.
func Mul(args ...AST) AST {
	if len(args) == 0 {
		panic("Mul requires at least one arg")
	}
	return mkNary(args, func(ctx *Context, n C.uint, raw *C.Z3_ast) C.Z3_ast {
		return C.Z3_mk_mul(ctx.c, n, raw)
	})
}

// Le builds the constraint x <= y.
func Le(x, y AST) AST {
	return mkUnary(x.ctx, func() C.Z3_ast { return C.Z3_mk_le(x.ctx.c, x.a, y.a) })
}

// Lt builds the constraint x < y.
func Lt(x, y AST) AST {
	return mkUnary(x.ctx, func() C.Z3_ast { return C.Z3_mk_lt(x.ctx.c, x.a, y.a) })
}

// Ge builds the constraint x >= y.
func Ge(x, y AST) AST {
	return mkUnary(x.ctx, func() C.Z3_ast { return C.Z3_mk_ge(x.ctx.c, x.a, y.a) })
}

// Gt builds the constraint x > y.
func Gt(x, y AST) AST {
	return mkUnary(x.ctx, func() C.Z3_ast { return C.Z3_mk_gt(x.ctx.c, x.a, y.a) })
}

// Select builds an array select expression.
func Select(array AST, index AST) AST {
	return mkUnary(array.ctx, func() C.Z3_ast {
		return C.Z3_mk_select(array.ctx.c, array.a, index.a)
	})
}

// Implies builds the implication x => y.
func Implies(x, y AST) AST {
	return mkUnary(x.ctx, func() C.Z3_ast { return C.Z3_mk_implies(x.ctx.c, x.a, y.a) })
}

// Ite builds an if-then-else over c, t, and e.
func Ite(c, t, e AST) AST {
	return mkUnary(c.ctx, func() C.Z3_ast { return C.Z3_mk_ite(c.ctx.c, c.a, t.a, e.a) })
}

// Distinct enforces that all provided ASTs take pairwise different values.
func Distinct(args ...AST) AST {
	if len(args) == 0 {
		panic("Distinct requires at least one arg")
	}
	return mkNary(args, func(ctx *Context, n C.uint, raw *C.Z3_ast) C.Z3_ast {
		return C.Z3_mk_distinct(ctx.c, n, raw)
	})
}

// Concat concatenates the provided sequence (string) ASTs.
func Concat(args ...AST) AST {
	if len(args) == 0 {
		panic("Concat requires at least one arg")
	}
	return mkNary(args, func(ctx *Context, n C.uint, raw *C.Z3_ast) C.Z3_ast {
		return C.Z3_mk_seq_concat(ctx.c, n, raw)
	})
}

// Length returns the sequence length as an Int AST.
func Length(s AST) AST {
	return mkUnary(s.ctx, func() C.Z3_ast { return C.Z3_mk_seq_length(s.ctx.c, s.a) })
}

// Contains builds the predicate (contains s t).
func Contains(s, t AST) AST {
	return mkUnary(s.ctx, func() C.Z3_ast { return C.Z3_mk_seq_contains(s.ctx.c, s.a, t.a) })
}

// App applies a function declaration to the provided arguments and returns the resulting AST.
func (ctx *Context) App(f FuncDecl, args ...AST) AST {
	if len(args) == 0 {
		return mkUnary(ctx, func() C.Z3_ast { return C.Z3_mk_app(ctx.c, f.d, 0, nil) })
	}
	return mkNary(args, func(actx *Context, n C.uint, raw *C.Z3_ast) C.Z3_ast {
		return C.Z3_mk_app(actx.c, f.d, n, raw)
	})
}
