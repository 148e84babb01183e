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

// Package match implements structural pattern matching over the
// nodes that package pick walks.
//
// A pattern is a node.  Text starting with '?' is a variable, which
// matches anything and binds it.  A mapping pattern matches a mapping
// that has (at least) the pattern's keys with matching values.  A
// sequence pattern is a set: every element must match a distinct
// element of the fact, in any order, and the fact can have more.
// Everything else matches by pick.Equal, so 1 matches 1.0.
package match

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/Comcast/handpick/pick"
)

type Matcher struct {
	// AllowPropertyVariables enables a variable as the key of a
	// mapping pattern that has only that one key.  The variable
	// binds to each key of the fact in turn.
	AllowPropertyVariables bool

	// CheckForBadPropertyVariables rejects a mapping pattern that
	// has a variable key along with other keys before any matching
	// starts.  Without the check, such a pattern is only reported
	// when matching reaches the variable.
	CheckForBadPropertyVariables bool

	// Inequalities enables numeric inequality variables.
	//
	// When the bindings have a number for a variable whose name
	// starts with one of "<", ">", "<=", ">=", or "!=" after the
	// '?', a fact X matches that variable only if X compares that
	// way with the bound number.  The match then binds the variable
	// without the operator to X.
	//
	// For example, with bindings {"?<n":10}, pattern {"n":"?<n"}
	// matches {"n":3} and gives {"?<n":10,"?n":3}.
	Inequalities bool
}

var DefaultMatcher = &Matcher{
	AllowPropertyVariables:       true,
	CheckForBadPropertyVariables: true,
	Inequalities:                 true,
}

// Bindings is a map from variables (strings starting with a '?') to
// their values.
type Bindings map[string]interface{}

func NewBindings() Bindings {
	return make(Bindings, 8)
}

// Extend adds the binding; modifies and returns the Bindings.
func (bs Bindings) Extend(p string, v interface{}) Bindings {
	bs[p] = v
	return bs
}

// Copy makes a shallow copy of the Bindings.
func (bs Bindings) Copy() Bindings {
	acc := make(Bindings, len(bs))
	for k, v := range bs {
		acc[k] = v
	}
	return acc
}

var (
	// ErrRepeatedVariable reports a sequence pattern with the same
	// variable more than once.
	ErrRepeatedVariable = errors.New("repeated variables not supported")

	// ErrMultipleVariables reports a sequence pattern with more
	// than one variable.
	ErrMultipleVariables = errors.New("multiple variables not supported here")
)

// UnknownPatternType is an error that includes the thing that's
// causing the trouble.
type UnknownPatternType struct {
	Pattern interface{}
}

func (e *UnknownPatternType) Error() string {
	return fmt.Sprintf("unknown pattern type %T", e.Pattern)
}

// BadPropertyVariable reports a variable used as a mapping key where
// it isn't allowed.
type BadPropertyVariable struct {
	Key string

	// Others is the number of other keys in the pattern.
	Others int
}

func (e *BadPropertyVariable) Error() string {
	if e.Others == 0 {
		return fmt.Sprintf("can't have a variable as a key (%q)", e.Key)
	}
	return fmt.Sprintf("can't have a variable as a key (%q) with other keys", e.Key)
}

// IsVariable reports if the string represents a pattern variable.
//
// All pattern variables start with a '?".
func (m *Matcher) IsVariable(s string) bool {
	return strings.HasPrefix(s, "?")
}

func (m *Matcher) IsOptionalVariable(x interface{}) bool {
	s, is := text(x)
	return is && strings.HasPrefix(s, "??")
}

// IsAnonymousVariable detects a variable of the form '?', which never
// makes it into bindings.
func (m *Matcher) IsAnonymousVariable(s string) bool {
	return s == "?"
}

// IsConstant reports if the string represents a constant (and not a
// pattern variable).
func (m *Matcher) IsConstant(s string) bool {
	return !m.IsVariable(s)
}

func (m *Matcher) variable(x interface{}) (string, bool) {
	s, is := text(x)
	if !is || !m.IsVariable(s) {
		return "", false
	}
	return s, true
}

func text(x interface{}) (string, bool) {
	if pick.Classify(x) != pick.KindText {
		return "", false
	}
	if s, is := x.(string); is {
		return s, true
	}
	return reflect.ValueOf(x).String(), true
}

// atomic reports whether x is a scalar pattern that matches by
// equality.
func atomic(x interface{}) bool {
	switch pick.Classify(x) {
	case pick.KindText, pick.KindBytes:
		return true
	case pick.KindScalar:
	default:
		return false
	}
	if x == nil {
		return true
	}
	switch reflect.ValueOf(x).Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	}
	return false
}

// numeric gives the value of a Go number (but not a bool or text).
func numeric(x interface{}) (float64, bool) {
	switch reflect.ValueOf(x).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		f, err := pick.ToFloat(x)
		return f, err == nil
	}
	return 0, false
}

// Matches attempts to match the given fact with the given pattern.
// Returns an array of Bindings.
//
// Note that this function returns multiple (sets of) bindings.  This
// ambiguity is introduced when a pattern contains a sequence that
// contains a variable or a non-atomic element.
func (m *Matcher) Matches(pattern interface{}, fact interface{}) ([]Bindings, error) {
	return m.Match(pattern, fact, make(Bindings))
}

// Match is a version of Matches that takes initial bindings.
//
// Those initial bindings are not modified.
func (m *Matcher) Match(pattern interface{}, fact interface{}, bindings Bindings) ([]Bindings, error) {
	if bindings == nil {
		return nil, nil
	}
	return m.match(pattern, fact, bindings.Copy())
}

// match is a version of Match that can modify the given bindings.
func (m *Matcher) match(pattern interface{}, fact interface{}, bs Bindings) ([]Bindings, error) {
	switch pick.Classify(pattern) {
	case pick.KindText:
		s, _ := text(pattern)
		if m.IsConstant(s) {
			if pick.Equal(pattern, fact) {
				return []Bindings{bs}, nil
			}
			return nil, nil
		}
		if m.IsAnonymousVariable(s) {
			return []Bindings{bs}, nil
		}
		if using, bss := m.inequal(fact, bs, s); using {
			return bss, nil
		}
		if binding, found := bs[s]; found {
			if pick.Equal(binding, fact) {
				return []Bindings{bs}, nil
			}
			return nil, nil
		}
		bs[s] = fact
		return []Bindings{bs}, nil

	case pick.KindMapping:
		if !pick.IsMapping(fact) {
			return nil, nil
		}
		return m.mapcatMatch(bs, pattern, fact)

	case pick.KindSequence, pick.KindSet:
		switch pick.Classify(fact) {
		case pick.KindSequence, pick.KindSet:
			return m.setMatch(bs, pattern, fact)
		}
		return nil, nil
	}

	if !atomic(pattern) {
		return nil, &UnknownPatternType{pattern}
	}
	if pick.Equal(pattern, fact) {
		return []Bindings{bs}, nil
	}
	return nil, nil
}

type entry struct {
	key, val interface{}
}

// mapcatMatch matches the pattern's entries one at a time, extending
// every set of bindings found so far.
func (m *Matcher) mapcatMatch(bs Bindings, pattern, fact interface{}) ([]Bindings, error) {
	var entries []entry
	for k, v := range pick.Entries(pattern) {
		entries = append(entries, entry{k, v})
	}
	if len(entries) == 0 {
		// Empty mapping pattern matches any mapping.
		return []Bindings{bs}, nil
	}

	if m.CheckForBadPropertyVariables && 1 < len(entries) {
		for _, e := range entries {
			if s, is := m.variable(e.key); is {
				return nil, &BadPropertyVariable{Key: s, Others: len(entries) - 1}
			}
		}
	}

	bss := []Bindings{bs}
	for _, e := range entries {
		if s, is := m.variable(e.key); is {
			if !m.AllowPropertyVariables {
				return nil, &BadPropertyVariable{Key: s}
			}
			if 1 < len(entries) {
				return nil, &BadPropertyVariable{Key: s, Others: len(entries) - 1}
			}
			return m.propertyMatch(bss, e, fact)
		}

		fv, err := pick.Item(fact, e.key)
		if err != nil {
			if m.IsOptionalVariable(e.val) {
				continue
			}
			return nil, nil
		}
		acc, err := m.matchWithBindingss(bss, e.val, fv)
		if err != nil {
			return nil, err
		}
		if len(acc) == 0 {
			return nil, nil
		}
		bss = acc
	}
	return bss, nil
}

// propertyMatch tries the pattern's only entry, whose key is a
// variable, against every entry of the fact.
func (m *Matcher) propertyMatch(bss []Bindings, e entry, fact interface{}) ([]Bindings, error) {
	gather := make([]Bindings, 0)
	for fk, fv := range pick.Entries(fact) {
		ext, err := m.matchWithBindingss(bss, e.key, fk)
		if err != nil {
			return nil, err
		}
		if len(ext) == 0 {
			continue
		}
		if ext, err = m.matchWithBindingss(ext, e.val, fv); err != nil {
			return nil, err
		}
		gather = append(gather, ext...)
	}
	return gather, nil
}

// matchWithBindingss attempts to extend the given bindingss from
// matches of the fact against the pattern.
func (m *Matcher) matchWithBindingss(bss []Bindings, pattern interface{}, fact interface{}) ([]Bindings, error) {
	acc := make([]Bindings, 0, len(bss))
	for _, bs := range bss {
		matches, err := m.Match(pattern, fact, bs)
		if err != nil {
			return nil, err
		}
		acc = append(acc, matches...)
	}
	return acc, nil
}

// getVariable finds the one variable (if any) and the other elements
// of a sequence pattern.
func (m *Matcher) getVariable(pattern interface{}) (string, []interface{}, error) {
	var v string
	acc := make([]interface{}, 0)
	for x := range pick.Elements(pattern) {
		if s, is := m.variable(x); is {
			switch v {
			case "":
				v = s
				continue
			case s:
				return "", nil, ErrRepeatedVariable
			default:
				return "", nil, ErrMultipleVariables
			}
		}
		acc = append(acc, x)
	}
	return v, acc, nil
}

// setMatch matches a sequence pattern as a set.  Each element must
// match a distinct element of the fact.  Atomic elements take the
// first equal fact element.  Other elements try every unused fact
// element, which can backtrack.  The variable, if any, then binds to
// each leftover fact element in turn.  An optional variable with
// nothing left over stays unbound.
func (m *Matcher) setMatch(bs Bindings, pattern, fact interface{}) ([]Bindings, error) {
	v, xs, err := m.getVariable(pattern)
	if err != nil {
		return nil, err
	}

	var facts []interface{}
	for y := range pick.Elements(fact) {
		facts = append(facts, y)
	}

	var (
		used = make([]bool, len(facts))
		acc  []Bindings
		try  func(i int, bs Bindings) error
	)
	try = func(i int, bs Bindings) error {
		if i == len(xs) {
			if v == "" {
				acc = append(acc, bs)
				return nil
			}
			found := false
			for j, y := range facts {
				if used[j] {
					continue
				}
				bss, err := m.Match(v, y, bs)
				if err != nil {
					return err
				}
				found = found || 0 < len(bss)
				acc = append(acc, bss...)
			}
			if !found && m.IsOptionalVariable(v) {
				acc = append(acc, bs)
			}
			return nil
		}

		x := xs[i]
		if atomic(x) {
			for j, y := range facts {
				if !used[j] && pick.Equal(x, y) {
					used[j] = true
					err := try(i+1, bs)
					used[j] = false
					return err
				}
			}
			return nil
		}

		for j, y := range facts {
			if used[j] {
				continue
			}
			bss, err := m.Match(x, y, bs)
			if err != nil {
				return err
			}
			used[j] = true
			for _, ext := range bss {
				if err := try(i+1, ext); err != nil {
					return err
				}
			}
			used[j] = false
		}
		return nil
	}

	if err := try(0, bs); err != nil {
		return nil, err
	}
	return acc, nil
}

var inequalities = []string{"<=", ">=", "!=", ">", "<"}

// inequal handles inequality variables.  The first result is false if
// v isn't being used as one.
func (m *Matcher) inequal(fact interface{}, bs Bindings, v string) (bool, []Bindings) {
	if !m.Inequalities || len(v) < 3 {
		return false, nil
	}

	b, is := numeric(bs[v])
	if !is {
		return false, nil
	}
	a, is := numeric(fact)
	if !is {
		return false, nil
	}

	var op, bare string
	for _, ie := range inequalities {
		if strings.HasPrefix(v[1:], ie) {
			op = ie
			bare = "?" + v[1+len(ie):]
			break
		}
	}
	if op == "" {
		return false, nil
	}

	var satisfied bool
	switch op {
	case "<":
		satisfied = a < b
	case "<=":
		satisfied = a <= b
	case ">":
		satisfied = a > b
	case ">=":
		satisfied = a >= b
	case "!=":
		satisfied = a != b
	}
	if !satisfied {
		return true, nil
	}

	if x, given := bs[bare]; given {
		if c, is := numeric(x); !is || c != a {
			return true, nil
		}
		return true, []Bindings{bs}
	}

	bs[bare] = fact
	return true, []Bindings{bs}
}

// Match uses the DefaultMatcher.
func Match(pattern interface{}, fact interface{}, bindings Bindings) ([]Bindings, error) {
	return DefaultMatcher.Match(pattern, fact, bindings)
}

// Matches uses the DefaultMatcher.
func Matches(pattern interface{}, fact interface{}) ([]Bindings, error) {
	return DefaultMatcher.Matches(pattern, fact)
}
