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

// Probes are small operations on nodes of unknown type.  They report
// failure with errors of the kinds a Predicate suppresses by default,
// so a test function can use them without checking types first.

import (
	"bytes"
	"errors"
	"iter"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Len returns the number of elements of a container, the number of
// runes in text, or the number of bytes in a byte slice.
func Len(x any) (int, error) {
	switch k := Classify(x); k {
	case KindText:
		return utf8.RuneCountInString(textOf(x)), nil
	case KindBytes:
		return len(bytesOf(x)), nil
	case KindScalar:
		return 0, TypeMismatch.Errorf("%T has no length", x)
	}

	switch vv := x.(type) {
	case []any:
		return len(vv), nil
	case Map:
		return len(vv), nil
	case Mapping:
		return len(vv.Keys()), nil
	case Sequence:
		return vv.Len(), nil
	case Set:
		return len(vv.Members()), nil
	case iter.Seq[any]:
		return 0, TypeMismatch.Errorf("%T has no length", x)
	case map[string]any:
		return len(vv), nil
	}
	return reflect.ValueOf(x).Len(), nil
}

// Index returns the element at position i of a sequence, text, or
// byte slice.  Negative positions count from the end.  Text gives a
// one-rune string and bytes give an int.
func Index(x any, i int) (any, error) {
	return Item(x, i)
}

// Item subscripts x: mappings are looked up by key and everything
// with a length is indexed by position.
func Item(x any, key any) (any, error) {
	k := Classify(x)
	switch k {
	case KindMapping:
		if v, have := lookup(x, key); have {
			return v, nil
		}
		return nil, NotFound.Errorf("key %v", key)
	case KindSequence, KindText, KindBytes:
	default:
		return nil, TypeMismatch.Errorf("%T is not subscriptable", x)
	}

	if _, is := x.(iter.Seq[any]); is {
		return nil, TypeMismatch.Errorf("%T is not subscriptable", x)
	}
	i, is := integer(key)
	if !is {
		return nil, TypeMismatch.Errorf("indices must be integers, not %T", key)
	}
	n, err := Len(x)
	if err != nil {
		return nil, err
	}
	j := i
	if j < 0 {
		j += int64(n)
	}
	if j < 0 || int64(n) <= j {
		return nil, NotFound.Errorf("index %d out of range", i)
	}
	return at(x, k, int(j)), nil
}

func at(x any, k Kind, i int) any {
	switch k {
	case KindText:
		return string([]rune(textOf(x))[i])
	case KindBytes:
		return int(bytesOf(x)[i])
	}
	switch vv := x.(type) {
	case []any:
		return vv[i]
	case Sequence:
		return vv.Index(i)
	}
	return reflect.ValueOf(x).Index(i).Interface()
}

// Contains reports whether y is in x.  For text, y must be text and
// is searched as a substring.  For bytes, y is a byte value or a byte
// slice.  For mappings, y is a key.  Otherwise y is compared with
// each element using Equal.
func Contains(x, y any) (bool, error) {
	k := Classify(x)
	switch k {
	case KindScalar:
		return false, TypeMismatch.Errorf("%T is not a container", x)
	case KindText:
		if Classify(y) != KindText {
			return false, TypeMismatch.Errorf("text can only contain text, not %T", y)
		}
		return strings.Contains(textOf(x), textOf(y)), nil
	case KindBytes:
		if Classify(y) == KindBytes {
			return bytes.Contains(bytesOf(x), bytesOf(y)), nil
		}
		b, is := integer(y)
		if !is {
			return false, TypeMismatch.Errorf("bytes can only contain bytes or ints, not %T", y)
		}
		if b < 0 || 255 < b {
			return false, InvalidValue.Errorf("byte %d out of range", b)
		}
		return bytes.IndexByte(bytesOf(x), byte(b)) >= 0, nil
	case KindMapping:
		_, have := lookup(x, y)
		return have, nil
	}
	found := false
	each(x, k, func(_, v any) bool {
		found = Equal(v, y)
		return !found
	})
	return found, nil
}

// Attr finds a method or an exported struct field by name.  Methods
// come back as bound method values.
func Attr(x any, name string) (any, error) {
	if x == nil {
		return nil, MissingCapability.Errorf("nil has no attribute %q", name)
	}
	rv := reflect.ValueOf(x)
	if m := rv.MethodByName(name); m.IsValid() {
		return m.Interface(), nil
	}
	v := rv
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, MissingCapability.Errorf("%T has no attribute %q", x, name)
		}
		v = v.Elem()
	}
	if v.Kind() == reflect.Struct {
		if sf, have := v.Type().FieldByName(name); have && sf.IsExported() {
			if f, err := v.FieldByIndexErr(sf.Index); err == nil {
				return f.Interface(), nil
			}
		}
	}
	return nil, MissingCapability.Errorf("%T has no attribute %q", x, name)
}

// Truthy is the usual notion of truth for loosely-typed data: nil,
// false, zero, and empty things are false.  Everything else is true.
func Truthy(x any) bool {
	switch vv := x.(type) {
	case nil:
		return false
	case bool:
		return vv
	}
	if f, is := number(x); is {
		return f != 0
	}
	if c, is := x.(complex128); is {
		return c != 0
	}
	if Classify(x) == KindScalar {
		return true
	}
	n, err := Len(x)
	return err != nil || 0 < n
}

// dropUnderscores removes underscores that separate digits, as in
// "1_000".  Any other underscore makes the text invalid.
func dropUnderscores(s string) (string, bool) {
	if !strings.Contains(s, "_") {
		return s, true
	}
	isDigit := func(i int) bool {
		return 0 <= i && i < len(s) && '0' <= s[i] && s[i] <= '9'
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '_' {
			if !isDigit(i-1) || !isDigit(i+1) {
				return "", false
			}
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String(), true
}

func splitSign(s string) (string, string) {
	if s != "" && (s[0] == '+' || s[0] == '-') {
		return s[:1], s[1:]
	}
	return "", s
}

func numericText(x any) (string, bool) {
	switch Classify(x) {
	case KindText:
		return strings.TrimSpace(textOf(x)), true
	case KindBytes:
		return strings.TrimSpace(string(bytesOf(x))), true
	}
	return "", false
}

func syntaxError(fn, s string) error {
	return &strconv.NumError{Func: fn, Num: s, Err: strconv.ErrSyntax}
}

func toBigInt(x any) (*big.Int, error) {
	if b, is := x.(bool); is {
		if b {
			return big.NewInt(1), nil
		}
		return big.NewInt(0), nil
	}
	if n, is := integer(x); is {
		return big.NewInt(n), nil
	}
	if f, is := number(x); is {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, InvalidValue.Errorf("cannot convert %v to an integer", f)
		}
		// Only huge unsigned values get here besides floats.
		n, _ := big.NewFloat(math.Trunc(f)).Int(nil)
		if u, is := x.(uint64); is {
			n = new(big.Int).SetUint64(u)
		}
		return n, nil
	}
	s, is := numericText(x)
	if !is {
		return nil, TypeMismatch.Errorf("cannot convert %T to an integer", x)
	}
	sign, digits := splitSign(s)
	digits, ok := dropUnderscores(digits)
	if !ok || digits == "" {
		return nil, syntaxError("ToInt", s)
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || '9' < digits[i] {
			return nil, syntaxError("ToInt", s)
		}
	}
	n, ok := new(big.Int).SetString(sign+digits, 10)
	if !ok {
		return nil, syntaxError("ToInt", s)
	}
	return n, nil
}

// ToInt converts numbers, bools, and integer text to an int.  Floats
// are truncated.  Text may have surrounding space, a sign, and
// underscores between digits.
func ToInt(x any) (int, error) {
	n, err := toBigInt(x)
	if err != nil {
		return 0, err
	}
	if !n.IsInt64() || int64(int(n.Int64())) != n.Int64() {
		return 0, &strconv.NumError{Func: "ToInt", Num: n.String(), Err: strconv.ErrRange}
	}
	return int(n.Int64()), nil
}

// ToFloat converts numbers, bools, and decimal text to a float64.
// Text like "inf" and "nan" is accepted, and text too large for a
// float64 gives an infinity.
func ToFloat(x any) (float64, error) {
	if b, is := x.(bool); is {
		if b {
			return 1, nil
		}
		return 0, nil
	}
	if f, is := number(x); is {
		return f, nil
	}
	s, is := numericText(x)
	if !is {
		return 0, TypeMismatch.Errorf("cannot convert %T to a float", x)
	}
	_, body := splitSign(s)
	if strings.HasPrefix(body, "0x") || strings.HasPrefix(body, "0X") {
		return 0, syntaxError("ToFloat", s)
	}
	t, ok := dropUnderscores(s)
	if !ok {
		return 0, syntaxError("ToFloat", s)
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, err
	}
	return f, nil
}

// ToComplex converts numbers and complex text to a complex128.  The
// imaginary unit is written with a trailing "j", as in "1+2j".
func ToComplex(x any) (complex128, error) {
	switch vv := x.(type) {
	case complex128:
		return vv, nil
	case complex64:
		return complex128(vv), nil
	}
	if _, is := numericText(x); !is {
		f, err := ToFloat(x)
		if err != nil {
			return 0, TypeMismatch.Errorf("cannot convert %T to a complex", x)
		}
		return complex(f, 0), nil
	}
	s, _ := numericText(x)
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if s == "" || strings.ContainsAny(s, "xX") {
		return 0, syntaxError("ToComplex", s)
	}
	switch s[len(s)-1] {
	case 'i', 'I':
		return 0, syntaxError("ToComplex", s)
	case 'j', 'J':
		s = s[:len(s)-1] + "i"
	}
	t, ok := dropUnderscores(s)
	if !ok {
		return 0, syntaxError("ToComplex", s)
	}
	c, err := strconv.ParseComplex(t, 128)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, err
	}
	return c, nil
}
