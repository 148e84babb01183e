/* Copyright 2024 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package pick

import (
	"fmt"
	"reflect"
)

// Matcher is anything that can test a node.
//
// A test that returns an error hasn't decided.  What happens then
// depends on who is asking: a Predicate suppresses some kinds of
// errors, and Pick stops with the error.
type Matcher interface {
	Test(x any) (bool, error)
}

// Func adapts a test function that can fail to a Matcher.
type Func func(x any) (bool, error)

func (f Func) Test(x any) (bool, error) {
	return f(x)
}

// BoolFunc adapts a test function that cannot fail to a Matcher.
type BoolFunc func(x any) bool

func (f BoolFunc) Test(x any) (bool, error) {
	return f(x), nil
}

// Predicate wraps a Matcher with error suppression: when the wrapped
// test fails with an error of a suppressed kind, the Predicate says
// false instead.
//
// Predicates compose with And, Or, and Not.  A composite tests the
// raw functions of its operands and only the outermost Predicate
// suppresses errors.
type Predicate struct {
	fn         Matcher
	suppressed kindSet
}

// PredicateOption configures a Predicate.
type PredicateOption func(*Predicate)

// WithSuppressed replaces the set of suppressed error kinds.  With no
// arguments, nothing is suppressed.
//
// By default, all four kinds are suppressed.
func WithSuppressed(ks ...ErrorKind) PredicateOption {
	return func(p *Predicate) {
		p.suppressed = kinds(ks...)
	}
}

// Wrap makes a Predicate from a Matcher.
//
// Wrapping a Predicate stacks: the inner Predicate still applies its
// own suppression.
func Wrap(m Matcher, opts ...PredicateOption) *Predicate {
	p := &Predicate{
		fn:         m,
		suppressed: defaultSuppressed,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// New makes a Predicate from a test function that can fail.
func New(fn func(x any) (bool, error), opts ...PredicateOption) *Predicate {
	return Wrap(Func(fn), opts...)
}

// Of makes a Predicate from a test function that cannot fail.
func Of(fn func(x any) bool, opts ...PredicateOption) *Predicate {
	return Wrap(BoolFunc(fn), opts...)
}

// Func returns the wrapped Matcher.
func (p *Predicate) Func() Matcher {
	return p.fn
}

// Suppressed returns the kinds of errors that this Predicate turns
// into false.
func (p *Predicate) Suppressed() []ErrorKind {
	return p.suppressed.list()
}

// Suppresses reports whether the given error would be turned into
// false.
func (p *Predicate) Suppresses(err error) bool {
	k, have := ErrorKindOf(err)
	return have && p.suppressed.has(k)
}

// Test runs the wrapped test.  Errors of suppressed kinds give false
// with no error.  Others are returned.
func (p *Predicate) Test(x any) (bool, error) {
	ok, err := p.fn.Test(x)
	if err != nil {
		if p.Suppresses(err) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}

func (p *Predicate) derive(m Matcher) *Predicate {
	return &Predicate{
		fn:         m,
		suppressed: p.suppressed,
	}
}

// raw unwraps one level of Predicate.
func raw(m Matcher) Matcher {
	if p, is := m.(*Predicate); is {
		return p.fn
	}
	return m
}

// And returns a Predicate that is true when both p and q are.  q isn't
// tested when p says false.  The result has p's suppressed kinds.
func (p *Predicate) And(q Matcher) *Predicate {
	return p.derive(and{p.fn, raw(q)})
}

// Or returns a Predicate that is true when either p or q is.  q isn't
// tested when p says true.  The result has p's suppressed kinds.
func (p *Predicate) Or(q Matcher) *Predicate {
	return p.derive(or{p.fn, raw(q)})
}

// Not returns the negation of p with p's suppressed kinds.
func (p *Predicate) Not() *Predicate {
	return p.derive(not{p.fn})
}

type and struct {
	l, r Matcher
}

func (c and) Test(x any) (bool, error) {
	ok, err := c.l.Test(x)
	if err != nil || !ok {
		return false, err
	}
	return c.r.Test(x)
}

type or struct {
	l, r Matcher
}

func (c or) Test(x any) (bool, error) {
	ok, err := c.l.Test(x)
	if err != nil || ok {
		return ok, err
	}
	return c.r.Test(x)
}

type not struct {
	m Matcher
}

func (c not) Test(x any) (bool, error) {
	ok, err := c.m.Test(x)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

// AsMatcher accepts a Matcher, a func(any) (bool, error), or a
// func(any) bool.  Anything else is an ErrUnsupportedOperand.
func AsMatcher(x any) (Matcher, error) {
	switch f := x.(type) {
	case Matcher:
		return f, nil
	case func(any) (bool, error):
		return Func(f), nil
	case func(any) bool:
		return BoolFunc(f), nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedOperand, x)
}

func operands(xs ...any) ([]Matcher, *Predicate, error) {
	ms := make([]Matcher, len(xs))
	var recv *Predicate
	for i, x := range xs {
		m, err := AsMatcher(x)
		if err != nil {
			return nil, nil, err
		}
		if p, is := m.(*Predicate); is && recv == nil {
			recv = p
		}
		ms[i] = raw(m)
	}
	if recv == nil {
		recv = &Predicate{suppressed: defaultSuppressed}
	}
	return ms, recv, nil
}

// And combines two operands when their types aren't known statically.
// The suppressed kinds come from the first operand that is a
// Predicate, or the defaults.
func And(x, y any) (*Predicate, error) {
	ms, recv, err := operands(x, y)
	if err != nil {
		return nil, err
	}
	return recv.derive(and{ms[0], ms[1]}), nil
}

// Or is the disjunctive counterpart of And.
func Or(x, y any) (*Predicate, error) {
	ms, recv, err := operands(x, y)
	if err != nil {
		return nil, err
	}
	return recv.derive(or{ms[0], ms[1]}), nil
}

// Not negates an operand whose type isn't known statically.
func Not(x any) (*Predicate, error) {
	ms, recv, err := operands(x)
	if err != nil {
		return nil, err
	}
	return recv.derive(not{ms[0]}), nil
}

// IsType makes a Predicate that is true for values of type T.  When T
// is an interface type, values implementing T qualify.
func IsType[T any]() *Predicate {
	return Of(func(x any) bool {
		_, is := x.(T)
		return is
	})
}

// NotType is the negation of IsType.
func NotType[T any]() *Predicate {
	return IsType[T]().Not()
}

// IsTypeOf makes a Predicate that is true for values whose dynamic
// type is one of the given types or implements one of the given
// interface types.
func IsTypeOf(types ...reflect.Type) *Predicate {
	return Of(func(x any) bool {
		if x == nil {
			return false
		}
		t := reflect.TypeOf(x)
		for _, want := range types {
			if t == want {
				return true
			}
			if want.Kind() == reflect.Interface && t.Implements(want) {
				return true
			}
		}
		return false
	})
}

// NotTypeOf is the negation of IsTypeOf.
func NotTypeOf(types ...reflect.Type) *Predicate {
	return IsTypeOf(types...).Not()
}

// NoError makes a Predicate that is true when f succeeds on the
// node.  A panic in f counts as failure.
func NoError[R any](f func(x any) (R, error)) *Predicate {
	return Of(func(x any) (ok bool) {
		defer func() {
			if r := recover(); r != nil {
				ok = false
			}
		}()
		_, err := f(x)
		return err == nil
	})
}

var (
	// Collections is true for nodes the walker descends into with
	// default options.
	Collections = Of(func(x any) bool {
		return IsCollection(x, false, false)
	})

	// Mappings is true for key/value containers.
	Mappings = Of(IsMapping)

	// IntStrings is true for strings that parse as integers.
	IntStrings = IsType[string]().And(NoError(toBigInt))

	// FloatStrings is true for strings that parse as floats,
	// including "nan" and "inf".
	FloatStrings = IsType[string]().And(NoError(ToFloat))

	// NumStrings is true for strings that parse as integers, floats,
	// or complex numbers.
	NumStrings = IsType[string]().And(
		NoError(toBigInt).Or(NoError(ToFloat)).Or(NoError(ToComplex)))
)
