//go:build cgo
// +build cgo

package z3

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestASTTraversalFromSMTLIB(t *testing.T) {
	cfg := NewConfig()
	defer cfg.Close()
	ctx := NewContext(cfg)
	defer ctx.Close()

	const script = `
(set-logic QF_LIA)
(declare-const x Int)
(declare-const y Int)
(assert (= (+ x 3) y))
(assert (= y 10))
`

	asts, err := ctx.ParseSMTLIB2String(script)
	require.NoError(t, err)
	require.NotEmpty(t, asts)

	s := ctx.NewSolver()
	defer s.Close()
	require.NoError(t, s.AssertSMTLIB2String(script))

	var eq AST
	for _, node := range asts {
		if node.Kind() != ASTKindApp {
			continue
		}
		decl := node.Decl()
		if decl.Kind() == DeclOpEq {
			left := node.Child(0)
			if left.IsApp() && left.Decl().Kind() == DeclOpAdd {
				eq = node
				break
			}
		}
	}
	require.NotNil(t, eq.a, "failed to locate equality AST in parsed script")

	left := eq.Child(0)
	right := eq.Child(1)
	require.True(t, left.IsApp(), "expected left child to be an application, got %s", left.String())
	require.Equal(t, DeclOpAdd, left.Decl().Kind(), "expected left child to be addition, got %s", left.String())
	addChildren := left.Children()
	require.Len(t, addChildren, 2)
	require.Equal(t, "x", addChildren[0].Decl().Name(), "expected first summand to be x, got %s", addChildren[0].String())
	val, ok := addChildren[1].AsInt64()
	require.True(t, ok, "expected numeric literal, got %s", addChildren[1].String())
	require.EqualValues(t, 3, val)
	require.Equal(t, "y", right.Decl().Name(), "expected right-hand side to be y, got %s", right.String())

	var walkKinds []ASTKind
	left.Walk(func(node AST) bool {
		walkKinds = append(walkKinds, node.Kind())
		return true
	})
	require.NotEmpty(t, walkKinds, "Walk did not visit any nodes")

	res, err := s.Check()
	require.NoError(t, err)
	require.Equal(t, Sat, res)
	m := s.Model()
	require.NotNil(t, m)
	defer m.Close()

	x := ctx.Const("x", ctx.IntSort())
	xVal := m.Eval(x, true)
	require.NotNil(t, xVal.a, "model evaluation for x returned nil")
	var traversed string
	xVal.Walk(func(node AST) bool {
		if node.Kind() == ASTKindNumeral {
			traversed = node.NumeralString()
		}
		return true
	})
	require.Equal(t, "7", traversed, "expected to discover model value 7 via traversal")
	v, ok := xVal.AsInt64()
	require.True(t, ok)
	require.EqualValues(t, 7, v)
}

func TestASTModelValueFromDatatype(t *testing.T) {
	cfg := NewConfig()
	defer cfg.Close()
	ctx := NewContext(cfg)
	defer ctx.Close()

	const script = `
(declare-datatypes ()
  ((OAtom
    (OString (str String))
    (ONumber (num Int))
    (OBoolean (bool Bool))
    ONull
    OUndef))
)

(declare-datatypes (T)
  ((OGenType
    (Atom (atom OAtom))
    (OObj (obj (Array String T)))
    (OArray (arr (Array Int T)))))
)

(declare-datatypes ()
  ((OGenTypeAtom (Atom (atom OAtom))))
)

(define-sort OTypeD0 () (OGenType OGenTypeAtom))

(declare-fun str_val () OTypeD0)
(assert (is-OString (atom str_val)))
(assert (= (str (atom str_val)) "hello world"))
`

	s := ctx.NewSolver()
	defer s.Close()
	asts, err := ctx.ParseSMTLIB2String(script)
	require.NoError(t, err)
	var strRef AST
	for _, f := range asts {
		found := false
		f.Walk(func(node AST) bool {
			if node.IsApp() && node.NumChildren() == 0 {
				if decl := node.Decl(); decl.Name() == "str_val" {
					strRef = node
					found = true
					return false
				}
			}
			return true
		})
		if found {
			break
		}
	}
	require.NotNil(t, strRef.a, "failed to recover str_val AST reference")
	require.NoError(t, s.AssertSMTLIB2String(script))
	res, err := s.Check()
	require.NoError(t, err)
	require.Equal(t, Sat, res)
	m := s.Model()
	require.NotNil(t, m)
	defer m.Close()

	strVal := m.Eval(strRef, true)
	require.NotNil(t, strVal.a, "model evaluation for str_val returned nil")
	require.True(t, strVal.IsApp(), "expected str_val model value to be application, got %s", strVal.String())
	require.Equal(t, "Atom", strVal.Decl().Name())
	require.EqualValues(t, 1, strVal.NumChildren(), "Atom constructor should have 1 child")
	atomField := strVal.Child(0)
	require.True(t, atomField.IsApp(), "expected atom field to be constructor application, got %s", atomField.String())
	require.Equal(t, "OString", atomField.Decl().Name())
	require.EqualValues(t, 1, atomField.NumChildren(), "OString should have one child")
	stringLit := atomField.Child(0)
	val, ok := stringLit.AsStringLiteral()
	require.True(t, ok, "expected to decode string literal from %s", stringLit.String())
	require.Equal(t, "hello world", val)
}

func TestASTModelArraySelectFromDatatype(t *testing.T) {
	cfg := NewConfig()
	defer cfg.Close()
	ctx := NewContext(cfg)
	defer ctx.Close()

	const script = `
(declare-datatypes ()
  ((OAtom
    (OString (str String))
    (ONumber (num Int))
    (OBoolean (bool Bool))
    ONull
    OUndef))
)

(declare-datatypes (T)
  ((OGenType
    (Atom (atom OAtom))
    (OObj (obj (Array String T)))
    (OArray (arr (Array Int T)))))
)

(declare-datatypes ()
  ((OGenTypeAtom (Atom (atom OAtom))))
)

(define-sort OTypeD0 () (OGenType OGenTypeAtom))

(declare-fun x () OTypeD0)
(assert (is-OString (atom (select (obj x) "a"))))
`

	asts, err := ctx.ParseSMTLIB2String(script)
	require.NoError(t, err)
	var (
		xRef      AST
		selectRef AST
	)
	for _, root := range asts {
		root.Walk(func(node AST) bool {
			if !node.IsApp() {
				return true
			}
			decl := node.Decl()
			switch decl.Name() {
			case "x":
				if node.NumChildren() == 0 && xRef.a == nil {
					xRef = node
				}
			case "select", "Select":
				if selectRef.a == nil {
					selectRef = node
				}
			}
			return xRef.a == nil || selectRef.a == nil
		})
		if xRef.a != nil && selectRef.a != nil {
			break
		}
	}
	require.NotNil(t, xRef.a, "failed to locate AST for x")
	require.NotNil(t, selectRef.a, "failed to locate select(obj x \"a\") AST")

	s := ctx.NewSolver()
	defer s.Close()
	require.NoError(t, s.AssertSMTLIB2String(script))
	res, err := s.Check()
	require.NoError(t, err)
	require.Equal(t, Sat, res)
	m := s.Model()
	require.NotNil(t, m)
	defer m.Close()

	xVal := m.Eval(xRef, true)
	require.NotNil(t, xVal.a, "model evaluation for x returned nil")
	require.True(t, xVal.IsApp(), "expected x value to be application, got %s", xVal.String())

	selected := m.Eval(selectRef, true)
	require.NotNil(t, selected.a, "model evaluation for select(obj x \"a\") returned nil")
	require.True(t, selected.IsApp(), "expected select result to be an application, got %s", selected.String())
	require.Equal(t, "Atom", selected.Decl().Name())
	require.EqualValues(t, 1, selected.NumChildren(), "Atom constructor should have one child")
	atom := selected.Child(0)
	require.True(t, atom.IsApp())
	require.Equal(t, "OString", atom.Decl().Name())
	require.EqualValues(t, 1, atom.NumChildren(), "OString should expose 1 child")
	_, ok := atom.Child(0).AsStringLiteral()
	require.True(t, ok, "expected to read string literal from selected entry")
}
