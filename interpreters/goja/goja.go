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

// Package goja compiles JavaScript functions into pick predicates.
package goja

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"
	"github.com/goccy/go-json"
	"github.com/gorhill/cronexpr"

	"github.com/Comcast/handpick/match"
	"github.com/Comcast/handpick/pick"
	"github.com/Comcast/handpick/util"
)

var (
	// InterruptedMessage is the string value of Interrupted.
	InterruptedMessage = "RuntimeError: timeout"

	// Interrupted is returned by a predicate if its execution is
	// interrupted.
	Interrupted = errors.New(InterruptedMessage)
)

// errorKinds maps the names of JavaScript errors to the kinds a
// Predicate can suppress.  Scripts can throw {name:"NotFoundError"}
// to report a missing key or index.
var errorKinds = map[string]pick.ErrorKind{
	"TypeError":     pick.TypeMismatch,
	"RangeError":    pick.InvalidValue,
	"SyntaxError":   pick.InvalidValue,
	"NotFoundError": pick.NotFound,
}

// Interpreter compiles JavaScript using Goja, which is a Go
// implementation of ECMAScript 5.1+.
//
// The source is an expression that evaluates to a function of one
// argument, like
//
//	function(x) { return x.n > 2; }
//
// The function gets each node in its plain form (mappings as
// objects, sequences and sets as arrays).  A truthy result selects
// the node.
//
// See https://github.com/dop251/goja.
type Interpreter struct {

	// Testing is used to expose or hide some runtime
	// capabilities.
	Testing bool

	// Timeout, if positive, limits each call of the function.
	Timeout time.Duration

	// LibraryProvider resolves the names of required libraries.
	// DefaultLibraryProvider is used if this field is nil.
	LibraryProvider func(ctx context.Context, i *Interpreter, libraryName string) (string, error)
}

// NewInterpreter makes a new Interpreter.
func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

// ProvideLibrary resolves the library name into library source.
func (i *Interpreter) ProvideLibrary(ctx context.Context, name string) (string, error) {
	if i.LibraryProvider != nil {
		return i.LibraryProvider(ctx, i, name)
	}
	return DefaultLibraryProvider(ctx, i, name)
}

var DefaultLibraryProvider = MakeFileLibraryProvider(".")

// MakeFileLibraryProvider makes a provider that supports (barely)
// names that are URLs with protocols of "file", "http", and
// "https". File names are relative to dir.  There currently is no
// additional control when using HTTP/HTTPS.
func MakeFileLibraryProvider(dir string) func(context.Context, *Interpreter, string) (string, error) {
	return func(ctx context.Context, i *Interpreter, name string) (string, error) {
		parts := strings.SplitN(name, "://", 2)
		if 2 != len(parts) {
			return "", fmt.Errorf("bad link '%s'", name)
		}
		switch parts[0] {
		case "file":
			bs, err := os.ReadFile(filepath.Join(dir, parts[1]))
			if err != nil {
				return "", err
			}
			return string(bs), nil
		case "http", "https":
			req, err := http.NewRequestWithContext(ctx, "GET", name, nil)
			if err != nil {
				return "", err
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				return "", err
			}
			defer resp.Body.Close()
			switch resp.StatusCode {
			case http.StatusOK:
				bs, err := io.ReadAll(resp.Body)
				if err != nil {
					return "", err
				}
				return string(bs), nil
			default:
				return "", fmt.Errorf("library fetch status %s %d",
					resp.Status, resp.StatusCode)
			}
		default:
			return "", fmt.Errorf("unknown protocol '%s'", parts[0])
		}
	}
}

func MakeMapLibraryProvider(srcs map[string]string) func(context.Context, *Interpreter, string) (string, error) {
	return func(ctx context.Context, i *Interpreter, name string) (string, error) {
		src, have := srcs[name]
		if !have {
			return "", fmt.Errorf("undefined library '%s'", name)
		}
		return src, nil
	}
}

// parseSource looks into the given map to try to find "requires" and
// "code" properties.
func parseSource(vv map[string]interface{}) (code string, libs []string, err error) {
	x := vv["code"]
	if s, is := x.(string); is {
		code = s
	} else {
		err = errors.New("bad Goja predicate code")
		return
	}

	switch vv := vv["requires"].(type) {
	case nil:
	case string:
		libs = []string{vv}
	case []string:
		libs = vv
	case []interface{}:
		libs = make([]string, 0, len(vv))
		for _, x := range vv {
			s, is := x.(string)
			if !is {
				err = fmt.Errorf("bad library (%T)", x)
				return
			}
			libs = append(libs, s)
		}
	default:
		err = fmt.Errorf("bad requires (%T)", vv)
	}

	return
}

// AsSource accepts either plain source or a map with "code" and
// optional "requires".
//
// Maps from gopkg.in/yaml.v2 (map[interface{}]interface{}) and ordered
// pick.Maps are accepted too.
func AsSource(src interface{}) (code string, libs []string, err error) {
	switch vv := src.(type) {
	case string:
		code = vv
		return
	case map[string]interface{}:
		return parseSource(vv)
	case map[interface{}]interface{}, pick.Map:
		m := make(map[string]interface{})
		for k, v := range pick.Entries(vv) {
			str, ok := k.(string)
			if !ok {
				err = fmt.Errorf("bad src key (%T)", k)
				return
			}
			m[str] = v
		}
		return parseSource(m)
	default:
		err = fmt.Errorf("bad Goja source (%T)", src)
		return
	}
}

// libraries gathers the source of the given libraries and whatever
// they require.  Each library is included once.
func (i *Interpreter) libraries(ctx context.Context, libs []string) (string, error) {
	seen := make(map[string]bool)
	var provide func(context.Context, string) (string, error)
	provide = func(ctx context.Context, name string) (string, error) {
		if seen[name] {
			return "", nil
		}
		seen[name] = true
		src, err := i.ProvideLibrary(ctx, name)
		if err != nil {
			return "", err
		}
		return InlineRequires(ctx, src, provide)
	}

	var acc strings.Builder
	for _, lib := range libs {
		src, err := provide(ctx, lib)
		if err != nil {
			return "", err
		}
		acc.WriteString(src)
		acc.WriteString("\n;\n")
	}
	return acc.String(), nil
}

// Compile makes a Predicate from the function given by src.
//
// ctx bounds the life of the Predicate: once ctx is done, a running
// call is interrupted and later calls fail.  Compile can block if the
// interpreter's LibraryProvider blocks.
func (i *Interpreter) Compile(ctx context.Context, src interface{}) (*pick.Predicate, error) {
	code, libs, err := AsSource(src)
	if err != nil {
		return nil, err
	}

	libsSrc, err := i.libraries(ctx, libs)
	if err != nil {
		return nil, err
	}

	prog, err := goja.Compile("", libsSrc+"(\n"+code+"\n);\n", true)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, code)
	}

	f := &function{
		ctx:     ctx,
		timeout: i.Timeout,
		rt:      goja.New(),
	}
	f.rt.Set("_", i.env(f.rt))
	if i.Testing {
		f.rt.Set("sleep", func(ms int) {
			time.Sleep(time.Duration(ms) * time.Millisecond)
		})
	}

	v, err := f.run(func() (goja.Value, error) {
		return f.rt.RunProgram(prog)
	})
	if err != nil {
		return nil, err
	}
	fn, is := goja.AssertFunction(v)
	if !is {
		return nil, fmt.Errorf("Goja source gave %s, not a function", v)
	}
	f.fn = fn

	return pick.New(f.Test), nil
}

func protest(o *goja.Runtime, x interface{}) {
	panic(o.NewTypeError(x))
}

// env makes the following properties available from the runtime at _.
//
//	match(pat, x): Execute the pattern matcher.  Returns an array of
//	  bindings.
//	cronNext(expr): The next time (RFC3339) for the cron expression.
//	log(x): Log x as JSON (if util.Logging).
func (i *Interpreter) env(o *goja.Runtime) map[string]interface{} {
	env := make(map[string]interface{})

	env["cronNext"] = func(x interface{}) interface{} {
		cronExpr, is := x.(string)
		if !is {
			protest(o, "not a string")
		}

		c, err := cronexpr.Parse(cronExpr)
		if err != nil {
			protest(o, err.Error())
		}
		return c.Next(time.Now()).UTC().Format(time.RFC3339Nano)
	}

	env["log"] = func(x interface{}) interface{} {
		js, err := json.Marshal(&x)
		if err != nil {
			util.Logf("goja.log (can't marshal: %s)", err)
		} else {
			util.Logf("goja.log %s", js)
		}
		return x
	}

	env["match"] = func(pat, x goja.Value) interface{} {
		bss, err := match.Matches(pat.Export(), x.Export())
		if err != nil {
			panic(o.NewGoError(err))
		}
		acc := make([]interface{}, len(bss))
		for i, bs := range bss {
			acc[i] = map[string]interface{}(bs)
		}
		return acc
	}

	return env
}

// function is a compiled JavaScript function along with its runtime,
// which can only run one thing at a time.
type function struct {
	sync.Mutex

	ctx     context.Context
	timeout time.Duration
	rt      *goja.Runtime
	fn      goja.Callable
}

// run calls f with interruption for the deadline and ctx.
func (f *function) run(call func() (goja.Value, error)) (goja.Value, error) {
	if err := f.ctx.Err(); err != nil {
		return nil, err
	}

	// pending counts interrupts that are scheduled or running.  The
	// runtime outlives this call, so every interrupt must have landed
	// before ClearInterrupt.
	var pending sync.WaitGroup
	interrupt := func() {
		defer pending.Done()
		f.rt.Interrupt(InterruptedMessage)
	}
	pending.Add(1)
	stop := context.AfterFunc(f.ctx, interrupt)
	var timer *time.Timer
	if 0 < f.timeout {
		pending.Add(1)
		timer = time.AfterFunc(f.timeout, interrupt)
	}

	v, err := call()

	if stop() {
		pending.Done()
	}
	if timer != nil && timer.Stop() {
		pending.Done()
	}
	pending.Wait()
	f.rt.ClearInterrupt()

	if err != nil {
		return nil, f.kinded(err)
	}
	return v, nil
}

// kinded converts a JavaScript exception into an error with a pick
// ErrorKind when the exception's name has one.
func (f *function) kinded(err error) error {
	var ie *goja.InterruptedError
	if errors.As(err, &ie) {
		if ctxErr := f.ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%w: %w", Interrupted, ctxErr)
		}
		return Interrupted
	}
	var ex *goja.Exception
	if !errors.As(err, &ex) {
		return err
	}
	obj, is := ex.Value().(*goja.Object)
	if !is {
		return err
	}
	name := obj.Get("name")
	if name == nil {
		return err
	}
	if k, have := errorKinds[name.String()]; have {
		return k.Errorf("%s", ex.Error())
	}
	return err
}

// Test calls the function with the plain form of x.
func (f *function) Test(x any) (bool, error) {
	f.Lock()
	defer f.Unlock()

	v, err := f.run(func() (goja.Value, error) {
		return f.fn(goja.Undefined(), f.rt.ToValue(pick.Plain(x)))
	})
	if err != nil {
		return false, err
	}
	return v.ToBoolean(), nil
}
