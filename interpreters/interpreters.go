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

// Package interpreters maps the names of predicate languages to
// compilers that turn source into pick predicates.
package interpreters

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/Comcast/handpick/interpreters/goja"
	"github.com/Comcast/handpick/interpreters/noop"
	"github.com/Comcast/handpick/pick"
	"github.com/Comcast/handpick/predicates"
	"github.com/Comcast/handpick/source"
)

// Compiler makes a Predicate from source in some language.
type Compiler interface {
	Compile(ctx context.Context, src interface{}) (*pick.Predicate, error)
}

// CompilerFunc is a Compiler that's just a function.
type CompilerFunc func(ctx context.Context, src interface{}) (*pick.Predicate, error)

func (f CompilerFunc) Compile(ctx context.Context, src interface{}) (*pick.Predicate, error) {
	return f(ctx, src)
}

// Compilers maps language names to Compilers.
type Compilers map[string]Compiler

var ErrUnknownLanguage = errors.New("unknown predicate language")

func (cs Compilers) Find(lang string) (Compiler, error) {
	c, have := cs[lang]
	if !have {
		return nil, fmt.Errorf("%w %q (have %s)", ErrUnknownLanguage, lang, strings.Join(cs.Names(), ", "))
	}
	return c, nil
}

// Names returns the languages in order.
func (cs Compilers) Names() []string {
	acc := make([]string, 0, len(cs))
	for name := range cs {
		acc = append(acc, name)
	}
	sort.Strings(acc)
	return acc
}

// Compile finds the language's Compiler and uses it.
func (cs Compilers) Compile(ctx context.Context, lang string, src interface{}) (*pick.Predicate, error) {
	c, err := cs.Find(lang)
	if err != nil {
		return nil, err
	}
	return c.Compile(ctx, src)
}

func Standard() Compilers {
	cs := make(Compilers)

	js := goja.NewInterpreter()
	cs["goja"] = js
	cs["ecmascript"] = js
	cs["js"] = js

	cs["pattern"] = CompilerFunc(compilePattern)
	cs["literal"] = CompilerFunc(compileLiteral)
	cs["type"] = CompilerFunc(compileType)
	cs["builtin"] = CompilerFunc(compileBuiltin)

	cs["noop"] = noop.NewInterpreter()

	return cs
}

// value parses text as JSON when it is JSON.  Anything else (including
// data from a query file) is used as is.
func value(src interface{}) interface{} {
	var js []byte
	switch vv := src.(type) {
	case string:
		js = []byte(vv)
	case []byte:
		js = vv
	default:
		return src
	}
	x, err := source.DecodeJSON(js)
	if err != nil {
		return string(js)
	}
	return x
}

func names(src interface{}) ([]string, error) {
	s, is := src.(string)
	if !is {
		return nil, fmt.Errorf("names should be a string, not a %T", src)
	}
	acc := make([]string, 0, 2)
	for _, name := range strings.Split(s, ",") {
		if name = strings.TrimSpace(name); name != "" {
			acc = append(acc, name)
		}
	}
	if len(acc) == 0 {
		return nil, errors.New("no names given")
	}
	return acc, nil
}

func compilePattern(ctx context.Context, src interface{}) (*pick.Predicate, error) {
	return predicates.Pattern(value(src)), nil
}

func compileLiteral(ctx context.Context, src interface{}) (*pick.Predicate, error) {
	want := value(src)
	return pick.Of(func(x any) bool {
		return pick.Equal(x, want)
	}), nil
}

// number reports whether x is a Go integer or float.
func number(x any) bool {
	switch reflect.ValueOf(x).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

var types = map[string]func(x any) bool{
	"null": func(x any) bool { return x == nil },
	"bool": func(x any) bool {
		return reflect.ValueOf(x).Kind() == reflect.Bool
	},
	"int": func(x any) bool {
		return number(x) && !isFloat(x)
	},
	"float":  isFloat,
	"number": number,
	"string": func(x any) bool { return pick.Classify(x) == pick.KindText },
	"bytes":  func(x any) bool { return pick.Classify(x) == pick.KindBytes },
	"list":   func(x any) bool { return pick.Classify(x) == pick.KindSequence },
	"map":    pick.IsMapping,
	"set":    func(x any) bool { return pick.Classify(x) == pick.KindSet },
	"collection": func(x any) bool {
		return pick.IsCollection(x, false, false)
	},
}

func isFloat(x any) bool {
	switch reflect.ValueOf(x).Kind() {
	case reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// compileType makes a Predicate for nodes of any of the
// comma-separated type names.
func compileType(ctx context.Context, src interface{}) (*pick.Predicate, error) {
	ns, err := names(src)
	if err != nil {
		return nil, err
	}
	var p *pick.Predicate
	for _, name := range ns {
		f, have := types[name]
		if !have {
			return nil, fmt.Errorf("unknown type %q", name)
		}
		if p == nil {
			p = pick.Of(f)
		} else {
			p = p.Or(pick.BoolFunc(f))
		}
	}
	return p, nil
}

var builtins = map[string]*pick.Predicate{
	"collection": pick.Collections,
	"mapping":    pick.Mappings,
	"int-str":    pick.IntStrings,
	"float-str":  pick.FloatStrings,
	"num-str":    pick.NumStrings,
	"cron":       predicates.CronStrings,
}

// compileBuiltin gives the named predefined Predicate.  Several
// comma-separated names are or'ed.
func compileBuiltin(ctx context.Context, src interface{}) (*pick.Predicate, error) {
	ns, err := names(src)
	if err != nil {
		return nil, err
	}
	var p *pick.Predicate
	for _, name := range ns {
		q, have := builtins[name]
		if !have {
			return nil, fmt.Errorf("unknown builtin %q", name)
		}
		if p == nil {
			p = q
		} else {
			p = p.Or(q)
		}
	}
	return p, nil
}
