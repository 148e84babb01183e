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

// Package pick walks nested data and yields the nodes that satisfy a
// test.
//
// Nodes are classified (see Classify) into scalars, sequences,
// mappings, sets, text, and bytes.  Pick visits the nodes below a root
// depth-first in pre-order: a collection is tested before its
// elements.  The root itself is never tested.  For
// mappings, the walker descends into values (and, optionally, keys)
// in the mapping's own order.  Go maps have no order, so their keys
// are sorted.
//
// Predicates wrap test functions with error suppression so that a
// test like "x[2] is truthy" can be written without first checking
// that x is indexable.
package pick

import (
	"iter"
	"reflect"
)

// Options controls a traversal.
type Options struct {
	// Collections includes collections themselves in the output,
	// not just their elements.
	Collections bool

	// DictKeys also descends into (and tests) mapping keys.  A
	// mapping's keys are visited before its values.
	DictKeys bool

	// Strings treats text longer than one rune as a collection of
	// one-rune strings.  Each byte of invalid UTF-8 counts as a rune
	// and comes out as itself, so the elements concatenate back to
	// the text.
	Strings bool

	// BytesLike treats byte slices as collections of ints.
	BytesLike bool

	test Matcher
}

// Option modifies Options.
type Option func(*Options)

// DefaultOptions returns the defaults: collections are included, and
// keys, text, and bytes are not descended into.
func DefaultOptions() Options {
	return Options{
		Collections: true,
	}
}

// NewOptions applies the given options to the defaults.
func NewOptions(opts ...Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Where sets the test for a traversal.
//
// A *Predicate is used with its error suppression.  Any other Matcher
// or a func(any) bool or func(any) (bool, error) is used as is.
// Anything else (including nil) selects the nodes that are Equal to
// it.  A nil *Predicate, Matcher, or func counts as nil.
//
// Without Where, every node is selected.
func Where(pred any) Option {
	return func(o *Options) {
		o.test = matcherFor(pred)
	}
}

func matcherFor(pred any) Matcher {
	if isNilCallable(pred) {
		pred = nil
	}
	switch p := pred.(type) {
	case Matcher:
		return p
	case func(any) (bool, error):
		return Func(p)
	case func(any) bool:
		return BoolFunc(p)
	}
	return BoolFunc(func(x any) bool {
		return Equal(x, pred)
	})
}

// isNilCallable reports whether pred is a typed nil that would be
// called as a test.
func isNilCallable(pred any) bool {
	switch pred.(type) {
	case Matcher, func(any) (bool, error), func(any) bool:
	default:
		return false
	}
	rv := reflect.ValueOf(pred)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// WithCollections controls whether collections are yielded.
func WithCollections(include bool) Option {
	return func(o *Options) {
		o.Collections = include
	}
}

// WithDictKeys controls whether mapping keys are walked.
func WithDictKeys(include bool) Option {
	return func(o *Options) {
		o.DictKeys = include
	}
}

// WithStrings controls whether text is walked.
func WithStrings(include bool) Option {
	return func(o *Options) {
		o.Strings = include
	}
}

// WithBytesLike controls whether byte slices are walked.
func WithBytesLike(include bool) Option {
	return func(o *Options) {
		o.BytesLike = include
	}
}

// IsCollection applies IsCollection with these options.
func (o Options) IsCollection(x any) bool {
	return IsCollection(x, o.Strings, o.BytesLike)
}

var always = BoolFunc(func(any) bool { return true })

// Pick returns a lazy sequence of the nodes under root that pass the
// test set by Where.  The root isn't a candidate.  If it isn't a
// collection, the sequence is empty.
//
// When the test returns an error, the sequence yields (nil, err) and
// ends.  Nodes already yielded stay yielded.  A *Predicate turns the
// errors it suppresses into false, so they never reach Pick.
//
// The sequence can be ranged over more than once.  Each range walks
// root again.
func Pick(root any, opts ...Option) iter.Seq2[any, error] {
	o := NewOptions(opts...)
	if o.test == nil {
		o.test = always
	}
	return func(yield func(any, error) bool) {
		w := walker{
			opts:  o,
			yield: yield,
		}
		if o.IsCollection(root) {
			w.descend(root)
		}
	}
}

type walker struct {
	opts  Options
	yield func(any, error) bool
}

// walk returns false once the walk should stop.
func (w *walker) walk(x any) bool {
	coll := w.opts.IsCollection(x)
	if !coll || w.opts.Collections {
		ok, err := w.opts.test.Test(x)
		if err != nil {
			w.yield(nil, err)
			return false
		}
		if ok && !w.yield(x, nil) {
			return false
		}
	}
	if !coll {
		return true
	}
	return w.descend(x)
}

// descend walks the elements of the collection x.
func (w *walker) descend(x any) bool {
	k := Classify(x)
	if k == KindMapping && w.opts.DictKeys {
		return eachEntry(x, func(key, val any) bool {
			return w.walk(key) && w.walk(val)
		})
	}
	return each(x, k, func(_, val any) bool {
		return w.walk(val)
	})
}

// Collect gathers the nodes of a sequence from Pick.  On error, the
// nodes collected so far are returned with the error.
func Collect(seq iter.Seq2[any, error]) ([]any, error) {
	acc := make([]any, 0)
	for x, err := range seq {
		if err != nil {
			return acc, err
		}
		acc = append(acc, x)
	}
	return acc, nil
}
